package docker

import "log/slog"

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHost sets the Docker host address, for example
// "unix:///var/run/docker.sock" or "tcp://docker.example.com:2376".
// If not set, DOCKER_HOST or the default socket is used.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

// WithLabelPrefix changes the label namespace from "dyndns.".
func WithLabelPrefix(prefix string) Option {
	return func(c *Client) {
		if prefix != "" {
			c.labelPrefix = prefix
		}
	}
}

// WithLogger sets a custom slog.Logger for the client.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}
