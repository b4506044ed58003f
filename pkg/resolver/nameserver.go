package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/miekg/dns"
)

// Nameserver queries a single DNS server directly, bypassing the host
// resolver configuration.
type Nameserver struct {
	server string
	opts   options
}

// NewNameserver creates a resolver for server, given as host or host:port.
// Port 53 is assumed when none is given.
func NewNameserver(server string, opts ...Option) (*Nameserver, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return nil, fmt.Errorf("resolver server is required")
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(strings.Trim(server, "[]"), "53")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Nameserver{server: server, opts: o}, nil
}

// Server returns the host:port being queried.
func (n *Nameserver) Server() string {
	return n.server
}

// LookupAddresses implements Resolver. Both A and AAAA records are returned.
func (n *Nameserver) LookupAddresses(ctx context.Context, name, zone string) ([]string, error) {
	host := Qualify(name, zone)
	fqdn := dns.Fqdn(host)

	var addrs []string
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		answers, err := n.query(ctx, fqdn, qtype)
		if err != nil {
			return nil, &ResolutionError{Query: host, Err: err}
		}
		for _, rr := range answers {
			switch v := rr.(type) {
			case *dns.A:
				addrs = append(addrs, v.A.String())
			case *dns.AAAA:
				addrs = append(addrs, v.AAAA.String())
			}
		}
	}

	if len(addrs) == 0 {
		return nil, &ResolutionError{Query: host, Err: ErrNotFound}
	}

	addrs = dedupe(addrs)
	n.opts.logger.Debug("resolved name",
		slog.String("host", host),
		slog.String("server", n.server),
		slog.Any("addresses", addrs),
	)
	return addrs, nil
}

// LookupName implements Resolver.
func (n *Nameserver) LookupName(ctx context.Context, address string) ([]string, error) {
	reverse, err := dns.ReverseAddr(address)
	if err != nil {
		return nil, &ResolutionError{Query: address, Err: err}
	}

	answers, err := n.query(ctx, reverse, dns.TypePTR)
	if err != nil {
		return nil, &ResolutionError{Query: address, Err: err}
	}

	var names []string
	for _, rr := range answers {
		if ptr, ok := rr.(*dns.PTR); ok {
			names = append(names, ptr.Ptr)
		}
	}
	if len(names) == 0 {
		return nil, &ResolutionError{Query: address, Err: ErrNotFound}
	}

	names = dedupe(names)
	n.opts.logger.Debug("resolved address",
		slog.String("address", address),
		slog.String("server", n.server),
		slog.Any("names", names),
	)
	return names, nil
}

// query sends one question and returns the answer section. NXDOMAIN yields
// an empty answer. A truncated UDP reply is retried over TCP.
func (n *Nameserver) query(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(name, qtype)
	msg.RecursionDesired = true

	client := &dns.Client{Net: n.opts.network, Timeout: n.opts.timeout}
	resp, _, err := client.ExchangeContext(ctx, msg, n.server)
	if err == nil && resp != nil && resp.Truncated && client.Net == "udp" {
		client.Net = "tcp"
		resp, _, err = client.ExchangeContext(ctx, msg, n.server)
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from %s", n.server)
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		return resp.Answer, nil
	case dns.RcodeNameError:
		return nil, nil
	default:
		return nil, fmt.Errorf("server %s returned %s for %s %s",
			n.server, dns.RcodeToString[resp.Rcode], name, dns.TypeToString[qtype])
	}
}
