package main

import (
	"fmt"
	"log/slog"

	"gitlab.bluewillows.net/root/dyndns/internal/config"
	"gitlab.bluewillows.net/root/dyndns/pkg/dnsupdate"
	"gitlab.bluewillows.net/root/dyndns/pkg/dyndns"
	"gitlab.bluewillows.net/root/dyndns/pkg/resolver"
)

// components is everything built from one Config.
type components struct {
	driver   dyndns.Driver
	client   *dnsupdate.Client // nil when disabled
	resolver resolver.Resolver
}

// buildDriver wires the update client, resolver, and driver. A disabled
// configuration yields the Disabled driver without touching the network.
func buildDriver(cfg *config.Config, logger *slog.Logger, opts ...dyndns.Option) (*components, error) {
	dc, err := cfg.DriverConfig()
	if err != nil {
		return nil, fmt.Errorf("driver config: %w", err)
	}

	opts = append([]dyndns.Option{dyndns.WithLogger(logger)}, opts...)

	if !cfg.Enabled {
		driver, err := dyndns.NewDriver(dc, nil, nil, opts...)
		if err != nil {
			return nil, err
		}
		logger.Warn("dynamic dns is disabled, every operation will be refused")
		return &components{driver: driver}, nil
	}

	client, err := dnsupdate.NewClient(cfg.TransportConfig(), dnsupdate.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	res, err := buildResolver(cfg, logger)
	if err != nil {
		return nil, err
	}

	driver, err := dyndns.NewDriver(dc, client, res, opts...)
	if err != nil {
		return nil, err
	}

	return &components{driver: driver, client: client, resolver: res}, nil
}

func buildResolver(cfg *config.Config, logger *slog.Logger) (resolver.Resolver, error) {
	opts := []resolver.Option{
		resolver.WithLogger(logger),
		resolver.WithTimeout(cfg.Timeout),
	}

	if cfg.Resolver == "" {
		return resolver.NewSystem(opts...), nil
	}
	opts = append(opts, resolver.WithNetwork(cfg.ResolverNetwork))

	ns, err := resolver.NewNameserver(cfg.Resolver, opts...)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	return ns, nil
}
