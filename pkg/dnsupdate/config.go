package dnsupdate

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Default configuration values.
const (
	// DefaultPort is the standard DNS port.
	DefaultPort = 53

	// DefaultTimeout bounds a single exchange with the server.
	DefaultTimeout = 10 * time.Second
)

// Config holds transport configuration for the update client.
type Config struct {
	// Server is the authoritative server as a hostname or literal IP, with an
	// optional port (required).
	Server string

	// Timeout bounds dialing, writing, and reading one exchange (default: 10s).
	Timeout time.Duration
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Server) == "" {
		errs = append(errs, "server is required")
	} else if _, err := normalizeServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Timeout < 0 {
		errs = append(errs, "timeout must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("dnsupdate config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetServer returns the server address with port, appending DefaultPort when
// none is given. Bare IPv6 literals are bracketed.
func (c *Config) GetServer() string {
	addr, err := normalizeServer(c.Server)
	if err != nil {
		return ""
	}
	return addr
}

// GetTimeout returns the configured timeout or the default.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func normalizeServer(server string) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", fmt.Errorf("server is required")
	}

	if host, port, err := net.SplitHostPort(server); err == nil {
		if host == "" {
			return "", fmt.Errorf("server %q has no host", server)
		}
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return "", fmt.Errorf("server %q has invalid port %q", server, port)
		}
		return net.JoinHostPort(host, port), nil
	}

	// No port: a hostname, an IPv4 literal, or a bare/bracketed IPv6 literal.
	host := strings.TrimSuffix(strings.TrimPrefix(server, "["), "]")
	if strings.ContainsAny(host, "[]/ ") {
		return "", fmt.Errorf("server %q is not a valid host", server)
	}
	return net.JoinHostPort(host, strconv.Itoa(DefaultPort)), nil
}
