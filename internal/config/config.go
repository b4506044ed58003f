// Package config handles loading and validation of dyndns configuration
// from environment variables and an optional YAML or TOML file.
package config

import (
	"fmt"
	"time"

	"gitlab.bluewillows.net/root/dyndns/pkg/dnsupdate"
	"gitlab.bluewillows.net/root/dyndns/pkg/dyndns"
)

// Config holds the complete runtime configuration.
// All environment variables use the DYNDNS_ prefix.
type Config struct {
	// Zones the driver may mutate.
	Domains []string

	// Authoritative server and TSIG credential.
	Server       string
	KeyName      string
	KeyAlgorithm string
	Secret       string

	// Record behavior
	TTL             int
	CreateReverse   bool
	Timeout         time.Duration
	Resolver        string // host[:port]; empty uses the host resolver
	ResolverNetwork string // udp or tcp, for Resolver only
	Enabled         bool

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// HTTP surface for serve
	Listen   string
	APIToken string

	// Container lifecycle watcher
	DockerWatch bool
	DockerHost  string
}

// Credential builds the TSIG credential from KeyName, Secret, and KeyAlgorithm.
func (c *Config) Credential() (*dnsupdate.Credential, error) {
	return dnsupdate.NewCredential(c.KeyName, c.Secret, c.KeyAlgorithm)
}

// TransportConfig returns the update client configuration.
func (c *Config) TransportConfig() *dnsupdate.Config {
	return &dnsupdate.Config{
		Server:  c.Server,
		Timeout: c.Timeout,
	}
}

// DriverConfig returns the driver configuration. The credential is only
// built when the driver is enabled.
func (c *Config) DriverConfig() (dyndns.Config, error) {
	dc := dyndns.Config{
		Domains:       append([]string(nil), c.Domains...),
		TTL:           uint32(c.TTL),
		CreateReverse: c.CreateReverse,
		Enabled:       c.Enabled,
	}
	if !c.Enabled {
		return dc, nil
	}

	cred, err := c.Credential()
	if err != nil {
		return dyndns.Config{}, err
	}
	dc.Credential = cred
	return dc, nil
}

// String summarizes the configuration for logs. Secrets are redacted.
func (c *Config) String() string {
	return fmt.Sprintf("enabled=%t server=%s domains=%v key=%s algorithm=%s secret=%s ttl=%d reverse=%t timeout=%s resolver=%q resolver_network=%s listen=%s api_token=%s docker_watch=%t",
		c.Enabled, c.Server, c.Domains, c.KeyName, c.KeyAlgorithm, redact(c.Secret), c.TTL,
		c.CreateReverse, c.Timeout, c.Resolver, c.ResolverNetwork, c.Listen, redact(c.APIToken), c.DockerWatch)
}

func redact(s string) string {
	if s == "" {
		return "<unset>"
	}
	return "<redacted>"
}
