package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/dyndns/internal/api"
	"gitlab.bluewillows.net/root/dyndns/internal/docker"
	"gitlab.bluewillows.net/root/dyndns/internal/health"
	"gitlab.bluewillows.net/root/dyndns/internal/metrics"
	"gitlab.bluewillows.net/root/dyndns/internal/watcher"
	"gitlab.bluewillows.net/root/dyndns/pkg/dyndns"
)

func newCmdServe(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API, health endpoints, and optional Docker watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	logger.Info("starting dyndns",
		slog.String("version", Version),
		slog.String("build_date", BuildDate),
		slog.Bool("enabled", cfg.Enabled),
	)

	m := metrics.New()
	m.SetBuildInfo(Version)

	c, err := buildDriver(cfg, logger, dyndns.WithRecorder(m))
	if err != nil {
		return err
	}
	if c.client != nil {
		defer c.client.Close()
	}

	hs := health.New(cfg.Listen,
		health.WithLogger(logger),
		health.WithTimeout(cfg.Timeout),
		health.WithMetrics(m.Handler()),
	)

	if c.client != nil {
		zone := cfg.Domains[0]
		hs.RegisterChecker("dns-server", func(ctx context.Context) error {
			return c.client.Ping(ctx, zone)
		})
	} else {
		hs.RegisterDegradedChecker("dyndns", func(context.Context) (bool, string) {
			return true, "dynamic dns is disabled"
		})
	}

	apiServer := api.New(c.driver,
		api.WithToken(cfg.APIToken),
		api.WithLogger(logger),
	)
	hs.Handle("/v1/", apiServer.Handler())
	if cfg.APIToken == "" {
		logger.Warn("api token not set, the REST API accepts unauthenticated requests")
	}

	var w *watcher.Watcher
	if cfg.DockerWatch {
		dc, err := docker.NewClient(
			docker.WithHost(cfg.DockerHost),
			docker.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("docker client: %w", err)
		}
		defer dc.Close()

		hs.RegisterChecker("docker", dc.Ping)

		w = watcher.New(dc, c.driver,
			watcher.WithLogger(logger),
			watcher.WithRecorder(m),
		)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("docker watcher: %w", err)
		}
	}

	if err := hs.Start(); err != nil {
		if w != nil {
			w.Stop()
		}
		return fmt.Errorf("http server: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutting down...")

	if w != nil {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("dyndns shutdown complete")
	return nil
}
