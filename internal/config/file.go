package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig is the configuration file structure. The same keys are used for
// YAML and TOML files.
type FileConfig struct {
	Domains       []string `yaml:"domains,omitempty" toml:"domains"`
	Server        string   `yaml:"server,omitempty" toml:"server"`
	KeyName       string   `yaml:"key_name,omitempty" toml:"key_name"`
	KeyAlgorithm  string   `yaml:"key_algorithm,omitempty" toml:"key_algorithm"`
	Secret        string   `yaml:"secret,omitempty" toml:"secret"`
	SecretFile    string   `yaml:"secret_file,omitempty" toml:"secret_file"`
	TTL           int      `yaml:"ttl,omitempty" toml:"ttl"`
	CreateReverse *bool    `yaml:"create_reverse,omitempty" toml:"create_reverse"` // Pointer to distinguish unset from false
	Timeout       string   `yaml:"timeout,omitempty" toml:"timeout"`               // seconds or Go duration
	Resolver      string   `yaml:"resolver,omitempty" toml:"resolver"`
	ResolverNet   string   `yaml:"resolver_network,omitempty" toml:"resolver_network"` // udp or tcp
	Enabled       *bool    `yaml:"enabled,omitempty" toml:"enabled"`

	Logging *FileLoggingConfig `yaml:"logging,omitempty" toml:"logging"`
	API     *FileAPIConfig     `yaml:"api,omitempty" toml:"api"`
	Docker  *FileDockerConfig  `yaml:"docker,omitempty" toml:"docker"`
}

// FileLoggingConfig holds logging settings.
type FileLoggingConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format,omitempty" toml:"format"` // json, text
}

// FileAPIConfig holds the HTTP listener settings.
type FileAPIConfig struct {
	Listen    string `yaml:"listen,omitempty" toml:"listen"`
	Token     string `yaml:"token,omitempty" toml:"token"`
	TokenFile string `yaml:"token_file,omitempty" toml:"token_file"`
}

// FileDockerConfig holds container watcher settings.
type FileDockerConfig struct {
	Watch *bool  `yaml:"watch,omitempty" toml:"watch"`
	Host  string `yaml:"host,omitempty" toml:"host"` // unix:///var/run/docker.sock or tcp://...
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnvVars replaces ${VAR} patterns with environment variable values.
// Supports ${VAR:-default} syntax for default values.
func InterpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 3 {
			defaultValue = groups[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// interpolateEnvVars interpolates environment variables in every string field.
func (c *FileConfig) interpolateEnvVars() {
	for i := range c.Domains {
		c.Domains[i] = InterpolateEnvVars(c.Domains[i])
	}
	c.Server = InterpolateEnvVars(c.Server)
	c.KeyName = InterpolateEnvVars(c.KeyName)
	c.KeyAlgorithm = InterpolateEnvVars(c.KeyAlgorithm)
	c.Secret = InterpolateEnvVars(c.Secret)
	c.SecretFile = InterpolateEnvVars(c.SecretFile)
	c.Timeout = InterpolateEnvVars(c.Timeout)
	c.Resolver = InterpolateEnvVars(c.Resolver)
	c.ResolverNet = InterpolateEnvVars(c.ResolverNet)

	if c.Logging != nil {
		c.Logging.Level = InterpolateEnvVars(c.Logging.Level)
		c.Logging.Format = InterpolateEnvVars(c.Logging.Format)
	}
	if c.API != nil {
		c.API.Listen = InterpolateEnvVars(c.API.Listen)
		c.API.Token = InterpolateEnvVars(c.API.Token)
		c.API.TokenFile = InterpolateEnvVars(c.API.TokenFile)
	}
	if c.Docker != nil {
		c.Docker.Host = InterpolateEnvVars(c.Docker.Host)
	}
}

// LoadFile reads and parses a configuration file. Files ending in .toml are
// parsed as TOML, everything else as YAML. Unknown keys are rejected.
// Environment variables in ${VAR} format are interpolated.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing TOML config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("parsing TOML config: unknown keys: %s", strings.Join(keys, ", "))
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	}

	cfg.interpolateEnvVars()

	return &cfg, nil
}

// apply copies every value set in the file onto cfg.
// Returns a list of errors (may be empty).
func (c *FileConfig) apply(cfg *Config) []string {
	var errs []string

	if len(c.Domains) > 0 {
		cfg.Domains = splitList(strings.Join(c.Domains, ","))
	}
	if c.Server != "" {
		cfg.Server = strings.TrimSpace(c.Server)
	}
	if c.KeyName != "" {
		cfg.KeyName = strings.TrimSpace(c.KeyName)
	}
	if c.KeyAlgorithm != "" {
		cfg.KeyAlgorithm = strings.ToLower(strings.TrimSpace(c.KeyAlgorithm))
	}

	switch {
	case c.SecretFile != "":
		secret, err := readSecretFile(c.SecretFile)
		if err != nil {
			errs = append(errs, fmt.Sprintf("secret_file: %v", err))
		} else {
			cfg.Secret = secret
		}
	case c.Secret != "":
		cfg.Secret = c.Secret
	}

	if c.TTL != 0 {
		cfg.TTL = c.TTL
	}
	if c.CreateReverse != nil {
		cfg.CreateReverse = *c.CreateReverse
	}
	if c.Timeout != "" {
		d, err := parseTimeout(c.Timeout)
		if err != nil {
			errs = append(errs, fmt.Sprintf("timeout: %v", err))
		} else {
			cfg.Timeout = d
		}
	}
	if c.Resolver != "" {
		cfg.Resolver = strings.TrimSpace(c.Resolver)
	}
	if c.ResolverNet != "" {
		cfg.ResolverNetwork = strings.ToLower(strings.TrimSpace(c.ResolverNet))
	}
	if c.Enabled != nil {
		cfg.Enabled = *c.Enabled
	}

	if c.Logging != nil {
		if c.Logging.Level != "" {
			cfg.LogLevel = strings.ToLower(c.Logging.Level)
		}
		if c.Logging.Format != "" {
			cfg.LogFormat = strings.ToLower(c.Logging.Format)
		}
	}

	if c.API != nil {
		if c.API.Listen != "" {
			cfg.Listen = c.API.Listen
		}
		switch {
		case c.API.TokenFile != "":
			token, err := readSecretFile(c.API.TokenFile)
			if err != nil {
				errs = append(errs, fmt.Sprintf("api.token_file: %v", err))
			} else {
				cfg.APIToken = token
			}
		case c.API.Token != "":
			cfg.APIToken = c.API.Token
		}
	}

	if c.Docker != nil {
		if c.Docker.Watch != nil {
			cfg.DockerWatch = *c.Docker.Watch
		}
		if c.Docker.Host != "" {
			cfg.DockerHost = c.Docker.Host
		}
	}

	return errs
}

// GetConfigFilePath returns the config file path from DYNDNS_CONFIG.
// Returns an empty string if no config file is specified.
func GetConfigFilePath() string {
	return os.Getenv(EnvConfig)
}
