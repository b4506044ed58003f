package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Configuration defaults.
const (
	DefaultKeyAlgorithm  = "hmac-sha1"
	DefaultTTL           = 300
	DefaultCreateReverse = true
	DefaultTimeout       = 10 * time.Second
	DefaultEnabled       = true
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultListen        = ":8080"
	DefaultResolverNet   = "udp"
	DefaultDockerWatch   = false
	DefaultDockerHost    = "unix:///var/run/docker.sock"

	// MaxTTL is the largest TTL a record may carry (RFC 2181).
	MaxTTL = 2147483647
)

// Environment variable names.
const (
	EnvPrefix       = "DYNDNS_"
	EnvConfig       = EnvPrefix + "CONFIG"
	EnvDomains      = EnvPrefix + "DOMAINS"
	EnvServer       = EnvPrefix + "SERVER"
	EnvKeyName      = EnvPrefix + "KEY_NAME"
	EnvKeyAlgorithm = EnvPrefix + "KEY_ALGORITHM"
	EnvSecret       = EnvPrefix + "SECRET"
	EnvTTL          = EnvPrefix + "TTL"
	EnvReverse      = EnvPrefix + "CREATE_REVERSE"
	EnvTimeout      = EnvPrefix + "TIMEOUT"
	EnvResolver     = EnvPrefix + "RESOLVER"
	EnvResolverNet  = EnvPrefix + "RESOLVER_NETWORK"
	EnvEnabled      = EnvPrefix + "ENABLED"
	EnvLogLevel     = EnvPrefix + "LOG_LEVEL"
	EnvLogFormat    = EnvPrefix + "LOG_FORMAT"
	EnvListen       = EnvPrefix + "LISTEN"
	EnvAPIToken     = EnvPrefix + "API_TOKEN"
	EnvDockerWatch  = EnvPrefix + "DOCKER_WATCH"
	EnvDockerHost   = EnvPrefix + "DOCKER_HOST"
)

// defaults returns a Config with every default applied.
func defaults() *Config {
	return &Config{
		KeyAlgorithm:    DefaultKeyAlgorithm,
		TTL:             DefaultTTL,
		CreateReverse:   DefaultCreateReverse,
		Timeout:         DefaultTimeout,
		Enabled:         DefaultEnabled,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		Listen:          DefaultListen,
		ResolverNetwork: DefaultResolverNet,
		DockerWatch:     DefaultDockerWatch,
		DockerHost:      DefaultDockerHost,
	}
}

// applyEnv overrides cfg with every DYNDNS_* variable that is set.
// Environment variables always take precedence over file values.
// Returns a list of parse errors (may be empty).
func applyEnv(cfg *Config) []string {
	var errs []string

	if v := getEnv(EnvDomains); v != "" {
		cfg.Domains = splitList(v)
	}
	if v := getEnv(EnvServer); v != "" {
		cfg.Server = strings.TrimSpace(v)
	}
	if v := getEnv(EnvKeyName); v != "" {
		cfg.KeyName = strings.TrimSpace(v)
	}
	if v := getEnv(EnvKeyAlgorithm); v != "" {
		cfg.KeyAlgorithm = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getEnvWithFileFallback(EnvSecret); v != "" {
		cfg.Secret = v
	}

	if v := getEnv(EnvTTL); v != "" {
		ttl, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: invalid integer %q", EnvTTL, v))
		} else {
			cfg.TTL = ttl
		}
	}

	if v := getEnv(EnvReverse); v != "" {
		b, err := parseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", EnvReverse, err))
		} else {
			cfg.CreateReverse = b
		}
	}

	if v := getEnv(EnvTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", EnvTimeout, err))
		} else {
			cfg.Timeout = d
		}
	}

	if v := getEnv(EnvResolver); v != "" {
		cfg.Resolver = strings.TrimSpace(v)
	}
	if v := getEnv(EnvResolverNet); v != "" {
		cfg.ResolverNetwork = strings.ToLower(strings.TrimSpace(v))
	}

	if v := getEnv(EnvEnabled); v != "" {
		b, err := parseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", EnvEnabled, err))
		} else {
			cfg.Enabled = b
		}
	}

	if v := getEnv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getEnv(EnvLogFormat); v != "" {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getEnv(EnvListen); v != "" {
		cfg.Listen = strings.TrimSpace(v)
	}
	if v := getEnvWithFileFallback(EnvAPIToken); v != "" {
		cfg.APIToken = v
	}

	if v := getEnv(EnvDockerWatch); v != "" {
		b, err := parseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", EnvDockerWatch, err))
		} else {
			cfg.DockerWatch = b
		}
	}
	if v := getEnv(EnvDockerHost); v != "" {
		cfg.DockerHost = strings.TrimSpace(v)
	}

	return errs
}

// parseTimeout accepts whole seconds ("10") or a Go duration ("1500ms").
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q (use seconds like 10 or a duration like 1500ms)", s)
	}
	return d, nil
}

// splitList splits a comma-separated list, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
