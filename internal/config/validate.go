package config

import (
	"fmt"
	"net"
	"strings"

	"gitlab.bluewillows.net/root/dyndns/pkg/dnsupdate"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// validateConfig performs field and cross-field validation.
// Returns a list of validation errors.
func validateConfig(cfg *Config) []string {
	var errs []string

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("%s: invalid value %q (must be debug, info, warn, or error)", EnvLogLevel, cfg.LogLevel))
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("%s: invalid value %q (must be json or text)", EnvLogFormat, cfg.LogFormat))
	}

	if cfg.TTL < 1 || cfg.TTL > MaxTTL {
		errs = append(errs, fmt.Sprintf("%s: must be between 1 and %d, got %d", EnvTTL, MaxTTL, cfg.TTL))
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("%s: must be positive, got %s", EnvTimeout, cfg.Timeout))
	}

	switch cfg.ResolverNetwork {
	case "udp", "tcp":
	default:
		errs = append(errs, fmt.Sprintf("%s: invalid value %q (must be udp or tcp)", EnvResolverNet, cfg.ResolverNetwork))
	}

	if cfg.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
			errs = append(errs, fmt.Sprintf("%s: invalid address %q (use host:port or :port)", EnvListen, cfg.Listen))
		}
	}

	if cfg.DockerWatch && cfg.DockerHost == "" {
		errs = append(errs, fmt.Sprintf("%s: required when %s is true", EnvDockerHost, EnvDockerWatch))
	}

	// A disabled driver needs no server or credential.
	if !cfg.Enabled {
		return errs
	}

	if len(cfg.Domains) == 0 {
		errs = append(errs, fmt.Sprintf("%s: at least one zone is required", EnvDomains))
	}

	if cfg.Server == "" {
		errs = append(errs, fmt.Sprintf("%s: required but not set", EnvServer))
	} else if err := cfg.TransportConfig().Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("%s: %v", EnvServer, err))
	}

	errs = append(errs, validateCredential(cfg)...)

	return errs
}

// validateCredential checks the TSIG settings and reports each missing or
// invalid field under its environment variable name.
func validateCredential(cfg *Config) []string {
	var errs []string

	if cfg.KeyName == "" {
		errs = append(errs, fmt.Sprintf("%s: required but not set", EnvKeyName))
	}
	if cfg.Secret == "" {
		errs = append(errs, fmt.Sprintf("%s: required but not set (or set %s_FILE)", EnvSecret, EnvSecret))
	}
	if !dnsupdate.IsValidAlgorithm(dnsupdate.NormalizeAlgorithm(cfg.KeyAlgorithm)) {
		errs = append(errs, fmt.Sprintf("%s: unsupported algorithm %q (supported: %s)",
			EnvKeyAlgorithm, cfg.KeyAlgorithm, strings.Join(dnsupdate.SupportedAlgorithms(), ", ")))
	}

	if len(errs) > 0 {
		return errs
	}

	if _, err := cfg.Credential(); err != nil {
		errs = append(errs, fmt.Sprintf("%s: %v", EnvSecret, err))
	}
	return errs
}
