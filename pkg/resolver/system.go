package resolver

import (
	"context"
	"errors"
	"log/slog"
	"net"
)

// System resolves through the host's resolver configuration. It assumes the
// host resolver can see the dynamic zones.
type System struct {
	resolver *net.Resolver
	opts     options
}

// NewSystem creates a resolver backed by net.DefaultResolver.
func NewSystem(opts ...Option) *System {
	return NewSystemWith(net.DefaultResolver, opts...)
}

// NewSystemWith creates a resolver backed by r. Tests use this to point a
// pure-Go resolver at a local server.
func NewSystemWith(r *net.Resolver, opts ...Option) *System {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if r == nil {
		r = net.DefaultResolver
	}
	return &System{resolver: r, opts: o}
}

// LookupAddresses implements Resolver.
func (s *System) LookupAddresses(ctx context.Context, name, zone string) ([]string, error) {
	host := Qualify(name, zone)

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	addrs, err := s.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, s.wrap(host, err)
	}

	addrs = dedupe(addrs)
	s.opts.logger.Debug("resolved name",
		slog.String("host", host),
		slog.Any("addresses", addrs),
	)
	return addrs, nil
}

// LookupName implements Resolver.
func (s *System) LookupName(ctx context.Context, address string) ([]string, error) {
	if net.ParseIP(address) == nil {
		return nil, &ResolutionError{Query: address, Err: errors.New("not an IP address")}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	names, err := s.resolver.LookupAddr(ctx, address)
	if err != nil {
		return nil, s.wrap(address, err)
	}

	names = dedupe(names)
	s.opts.logger.Debug("resolved address",
		slog.String("address", address),
		slog.Any("names", names),
	)
	return names, nil
}

func (s *System) wrap(query string, err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return &ResolutionError{Query: query, Err: ErrNotFound}
	}
	return &ResolutionError{Query: query, Err: err}
}
