// Package resolver discovers the records a name or address currently has,
// using ordinary DNS queries rather than the authoritative update path.
//
// Two implementations are provided: System, which uses the host's resolver
// configuration, and Nameserver, which queries one server directly.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrNotFound is returned when the queried name or address has no records.
var ErrNotFound = errors.New("no such name")

// DefaultTimeout bounds one lookup when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Resolver looks up existing forward and reverse records.
type Resolver interface {
	// LookupAddresses returns the addresses name currently resolves to inside
	// zone. Relative names are qualified with zone.
	LookupAddresses(ctx context.Context, name, zone string) ([]string, error)

	// LookupName returns every name the reverse record of address points to.
	LookupName(ctx context.Context, address string) ([]string, error)
}

// ResolutionError reports a failed lookup.
type ResolutionError struct {
	Query string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %v", e.Query, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the query had no records.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Option configures a resolver.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	timeout time.Duration
	network string
}

func defaultOptions() options {
	return options{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
		network: "udp",
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimeout bounds each lookup. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithNetwork selects "udp" or "tcp" for direct nameserver queries.
func WithNetwork(network string) Option {
	return func(o *options) {
		if network == "udp" || network == "tcp" {
			o.network = network
		}
	}
}

// Qualify joins a relative name to zone and returns it without the trailing
// dot. Names that already end with a dot are only trimmed.
func Qualify(name, zone string) string {
	name = strings.TrimSpace(name)
	zone = strings.Trim(strings.TrimSpace(zone), ".")

	if strings.HasSuffix(name, ".") {
		return strings.TrimSuffix(name, ".")
	}
	if zone == "" {
		return name
	}
	if name == "" || name == "@" {
		return zone
	}
	return name + "." + zone
}

// dedupe keeps the first occurrence of each value, preserving order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
