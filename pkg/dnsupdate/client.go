package dnsupdate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// Client sends update messages to an authoritative server over TCP.
// It holds no per-message state and is safe for concurrent use.
type Client struct {
	config *Config
	logger *slog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	lastUpdate time.Time
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for TSIG signing.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates an update client for the configured server.
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		config: config,
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("dns update client initialized",
		slog.String("server", config.GetServer()),
		slog.Duration("timeout", config.GetTimeout()),
	)

	return c, nil
}

// Send delivers msg to the configured server and waits for the response.
func (c *Client) Send(ctx context.Context, msg UpdateMessage) error {
	return c.SendTo(ctx, msg, c.config.GetServer())
}

// SendTo delivers msg to server (host:port) and waits for the response.
// Any failure is returned as a *TransportError.
func (c *Client) SendTo(ctx context.Context, msg UpdateMessage, server string) error {
	wire, err := msg.signed(c.now())
	if err != nil {
		return fmt.Errorf("building update for zone %s: %w", msg.Zone, err)
	}

	c.logger.Debug("sending dns update",
		slog.String("server", server),
		slog.String("zone", msg.Zone),
		slog.Int("operations", len(msg.Operations)),
		slog.String("key", msg.Credential.KeyName()),
	)

	resp, rtt, err := c.exchangeWithContext(ctx, wire, server, msg.Credential)
	if err != nil {
		return &TransportError{Server: server, Zone: msg.Zone, Rcode: NoRcode, Err: classifyExchangeError(err)}
	}

	if resp.Rcode != dns.RcodeSuccess {
		c.logger.Warn("dns update rejected",
			slog.String("server", server),
			slog.String("zone", msg.Zone),
			slog.String("rcode", dns.RcodeToString[resp.Rcode]),
		)
		return &TransportError{Server: server, Zone: msg.Zone, Rcode: resp.Rcode, Err: RcodeToError(resp.Rcode)}
	}

	c.mu.Lock()
	c.lastUpdate = c.now()
	c.mu.Unlock()

	c.logger.Debug("dns update accepted",
		slog.String("server", server),
		slog.String("zone", msg.Zone),
		slog.Duration("rtt", rtt),
	)

	return nil
}

// Ping verifies connectivity to the server by querying the SOA of zone.
func (c *Client) Ping(ctx context.Context, zone string) error {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(zone), dns.TypeSOA)
	msg.RecursionDesired = false

	server := c.config.GetServer()
	resp, rtt, err := c.exchangeWithContext(ctx, msg, server, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if resp.Rcode != dns.RcodeSuccess {
		return fmt.Errorf("%w: server returned %s for %s SOA", ErrConnectionFailed, dns.RcodeToString[resp.Rcode], zone)
	}

	c.logger.Debug("dns server ping successful",
		slog.String("zone", zone),
		slog.Duration("rtt", rtt),
	)

	return nil
}

// Server returns the configured server address.
func (c *Client) Server() string {
	return c.config.GetServer()
}

// LastUpdate returns the time of the last accepted update.
func (c *Client) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}

// Close releases any resources held by the client.
// Connections are not pooled, so this is a no-op.
func (c *Client) Close() error {
	return nil
}

// exchangeWithContext performs one TCP exchange. A dns.Client is built per
// call so that each message carries only its own credential's secret.
func (c *Client) exchangeWithContext(ctx context.Context, msg *dns.Msg, server string, cred *Credential) (*dns.Msg, time.Duration, error) {
	client := &dns.Client{
		Net:     "tcp",
		Timeout: c.config.GetTimeout(),
	}
	cred.applyToClient(client)

	resp, rtt, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, rtt, err
	}
	if resp == nil {
		return nil, rtt, errors.New("no response from server")
	}
	return resp, rtt, nil
}

func classifyExchangeError(err error) error {
	switch {
	case errors.Is(err, dns.ErrSig), errors.Is(err, dns.ErrTime), errors.Is(err, dns.ErrSecret), errors.Is(err, dns.ErrKeyAlg):
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	default:
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
}
