// Package docker wraps the Docker Engine API client for the container
// lifecycle watcher: event subscription, inspection, and listing of
// labelled containers.
package docker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// API is the part of the Docker SDK client this package uses.
// *client.Client implements it.
type API interface {
	Ping(ctx context.Context) (types.Ping, error)
	Events(ctx context.Context, options events.ListOptions) (<-chan events.Message, <-chan error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	Close() error
}

var _ API = (*client.Client)(nil)

// Client talks to one Docker daemon.
type Client struct {
	api         API
	host        string
	labelPrefix string
	logger      *slog.Logger
}

// NewClient connects to the daemon at the configured host, or the one named
// by DOCKER_HOST when no host is set. The API version is negotiated on first use.
func NewClient(opts ...Option) (*Client, error) {
	c := newClient(nil, opts...)

	clientOpts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if c.host != "" {
		clientOpts = append(clientOpts, client.WithHost(c.host))
	}

	api, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	c.api = api

	return c, nil
}

// NewClientWithAPI wraps an existing API implementation.
func NewClientWithAPI(api API, opts ...Option) *Client {
	return newClient(api, opts...)
}

func newClient(api API, opts ...Option) *Client {
	c := &Client{
		api:         api,
		labelPrefix: DefaultLabelPrefix,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Label returns the full label key for suffix, e.g. "dyndns.name".
func (c *Client) Label(suffix string) string {
	return c.labelPrefix + suffix
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("docker ping: %w", err)
	}
	return nil
}

// Events subscribes to start and die events of containers carrying the
// name label. Both channels close or error when ctx is canceled.
func (c *Client) Events(ctx context.Context) (<-chan events.Message, <-chan error) {
	args := filters.NewArgs(
		filters.Arg("type", string(events.ContainerEventType)),
		filters.Arg("event", string(events.ActionStart)),
		filters.Arg("event", string(events.ActionDie)),
		filters.Arg("label", c.Label(LabelName)),
	)

	c.logger.Debug("subscribing to docker events", slog.Any("filters", args))
	return c.api.Events(ctx, events.ListOptions{Filters: args})
}

// Inspect returns the current state of one container.
func (c *Client) Inspect(ctx context.Context, id string) (Container, error) {
	resp, err := c.api.ContainerInspect(ctx, id)
	if err != nil {
		return Container{}, fmt.Errorf("inspecting container %s: %w", shortID(id), err)
	}

	ctr := Container{ID: id, Networks: map[string]string{}}
	if resp.ContainerJSONBase != nil {
		ctr.ID = resp.ID
		ctr.Name = normalizeContainerName(resp.Name)
	}
	if resp.Config != nil {
		ctr.Labels = resp.Config.Labels
	}
	if resp.NetworkSettings != nil {
		addrs := make(map[string]string, len(resp.NetworkSettings.Networks))
		for name, ep := range resp.NetworkSettings.Networks {
			if ep != nil {
				addrs[name] = ep.IPAddress
			}
		}
		ctr.Networks = ipv4Only(addrs)
	}

	return ctr, nil
}

// ListLabelled returns running containers carrying the name label.
func (c *Client) ListLabelled(ctx context.Context) (Containers, error) {
	summaries, err := c.api.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(
			filters.Arg("status", "running"),
			filters.Arg("label", c.Label(LabelName)),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	result := make(Containers, 0, len(summaries))
	for _, s := range summaries {
		ctr := Container{
			ID:       s.ID,
			Name:     normalizeContainerName(s.Names...),
			Labels:   s.Labels,
			Networks: map[string]string{},
		}
		if s.NetworkSettings != nil {
			addrs := make(map[string]string, len(s.NetworkSettings.Networks))
			for name, ep := range s.NetworkSettings.Networks {
				if ep != nil {
					addrs[name] = ep.IPAddress
				}
			}
			ctr.Networks = ipv4Only(addrs)
		}
		result = append(result, ctr)
	}

	c.logger.Debug("listed labelled containers", slog.Int("count", len(result)))
	return result, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.api == nil {
		return nil
	}
	return c.api.Close()
}
