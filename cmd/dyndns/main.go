// dyndns keeps forward and reverse DNS records in step with compute
// instances by sending TSIG-signed dynamic updates to an authoritative server.
//
// It runs either as a one-shot CLI (create, modify, delete, lookup, domains)
// or as a long-running service (serve) exposing a REST API, health and
// metrics endpoints, and an optional Docker lifecycle watcher.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/dyndns/internal/config"
)

// Version and BuildDate are set via ldflags during build.
// Example: -ldflags="-X main.Version=v1.0.0 -X main.BuildDate=2026-01-03"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

// app carries state shared by every subcommand once PersistentPreRunE ran.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	logOut     io.Writer
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	a := &app{logOut: logOut}

	cmd := &cobra.Command{
		Use:     "dyndns",
		Short:   "Dynamic DNS update client",
		Long:    "dyndns publishes and retracts forward and reverse DNS records with signed dynamic updates (RFC 2136).",
		Version: Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Config file, YAML or TOML (env "+config.EnvConfig+")")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		if c.Annotations[skipConfig] == "true" {
			a.logger = setupLogger(a.logOut, config.DefaultLogLevel, config.DefaultLogFormat)
			return nil
		}

		path := a.configPath
		if path == "" {
			path = config.GetConfigFilePath()
		}
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		a.cfg = cfg
		a.logger = setupLogger(a.logOut, cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(a.logger)
		a.logger.Debug("configuration loaded", slog.String("config", cfg.String()))
		return nil
	}

	cmd.AddCommand(
		newCmdCreate(a),
		newCmdModify(a),
		newCmdDelete(a),
		newCmdLookup(a),
		newCmdDomains(a),
		newCmdServe(a),
		newCmdVersion(),
	)
	return cmd
}

func main() {
	root := newRootCmd(os.Stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func setupLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
