// Package watcher publishes and retracts DNS entries as containers start and
// die.
//
// A container opts in with two labels, dyndns.name and dyndns.zone. On start
// its IPv4 address is published with CreateEntry (type A); on die the entry is
// removed with DeleteEntry. Labels are read from the event itself, so a die
// event needs no further call to the daemon.
//
// Key features:
//   - Startup sync of containers that are already running
//   - Automatic reconnection on Docker socket errors
//   - Graceful shutdown with context cancellation
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/docker/docker/api/types/events"

	"gitlab.bluewillows.net/root/dyndns/internal/docker"
	"gitlab.bluewillows.net/root/dyndns/pkg/dnsupdate"
	"gitlab.bluewillows.net/root/dyndns/pkg/dyndns"
)

// Event results reported to the Recorder.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Source is the container runtime the watcher observes.
// *docker.Client implements it.
type Source interface {
	Label(suffix string) string
	Events(ctx context.Context) (<-chan events.Message, <-chan error)
	Inspect(ctx context.Context, id string) (docker.Container, error)
	ListLabelled(ctx context.Context) (docker.Containers, error)
}

// Entries is the part of the driver the watcher calls.
type Entries interface {
	CreateEntry(ctx context.Context, name, address string, t dnsupdate.RecordType, zone string) error
	DeleteEntry(ctx context.Context, name, zone string) error
}

var _ Entries = (dyndns.Driver)(nil)

// Recorder counts handled events. internal/metrics implements it.
type Recorder interface {
	RecordWatchEvent(action, result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordWatchEvent(string, string) {}

// Config holds watcher configuration.
type Config struct {
	// ReconnectInterval is the time to wait before resubscribing after the
	// event stream fails. Default: 5 seconds
	ReconnectInterval time.Duration

	// OperationTimeout bounds each driver call made for one event.
	// Default: 30 seconds
	OperationTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconnectInterval: 5 * time.Second,
		OperationTimeout:  30 * time.Second,
	}
}

// Watcher subscribes to container events and mirrors them into DNS.
type Watcher struct {
	source   Source
	entries  Entries
	config   Config
	logger   *slog.Logger
	recorder Recorder

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	done    chan struct{}
}

// Option is a functional option for configuring the Watcher.
type Option func(*Watcher)

// WithConfig sets the watcher configuration.
func WithConfig(cfg Config) Option {
	return func(w *Watcher) {
		w.config = cfg
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRecorder sets where handled events are counted.
func WithRecorder(r Recorder) Option {
	return func(w *Watcher) {
		if r != nil {
			w.recorder = r
		}
	}
}

// New creates a watcher that applies events from source through entries.
func New(source Source, entries Entries, opts ...Option) *Watcher {
	w := &Watcher{
		source:   source,
		entries:  entries,
		config:   DefaultConfig(),
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}

	for _, opt := range opts {
		opt(w)
	}

	defaults := DefaultConfig()
	if w.config.ReconnectInterval <= 0 {
		w.config.ReconnectInterval = defaults.ReconnectInterval
	}
	if w.config.OperationTimeout <= 0 {
		w.config.OperationTimeout = defaults.OperationTimeout
	}

	return w
}

// Start syncs running containers and then watches events in a goroutine.
// It returns immediately. Call Stop to halt watching.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.running = true
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	go func() {
		defer close(done)
		if err := w.Sync(ctx); err != nil && ctx.Err() == nil {
			w.logger.Warn("initial container sync failed", slog.String("error", err.Error()))
		}
		w.watchLoop(ctx)
	}()

	w.logger.Info("docker event watcher started",
		slog.Duration("reconnect_interval", w.config.ReconnectInterval),
	)

	return nil
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	done := w.done
	w.mu.Unlock()

	if done != nil {
		<-done
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	w.logger.Info("docker event watcher stopped")
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Sync publishes an entry for every running labelled container. Entries are
// replaced, so repeating a sync is harmless.
func (w *Watcher) Sync(ctx context.Context) error {
	containers, err := w.source.ListLabelled(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, ctr := range containers {
		if err := w.publish(ctx, ctr); err != nil && !errors.Is(err, errNotLabelled) {
			errs = append(errs, err)
		}
	}

	w.logger.Info("container sync complete",
		slog.Int("containers", len(containers)),
		slog.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		err := w.watch(ctx)
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("event stream error, reconnecting",
			slog.Any("error", err),
			slog.Duration("retry_in", w.config.ReconnectInterval),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.config.ReconnectInterval):
		}
	}
}

func (w *Watcher) watch(ctx context.Context) error {
	eventsChan, errChan := w.source.Events(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-errChan:
			return err

		case event, ok := <-eventsChan:
			if !ok {
				return errors.New("event stream closed")
			}
			w.handleEvent(ctx, event)
		}
	}
}

// handleEvent applies one container event. Failures are logged and counted;
// the next event is processed regardless.
func (w *Watcher) handleEvent(ctx context.Context, event events.Message) {
	action := string(event.Action)
	w.logger.Debug("received docker event",
		slog.String("type", string(event.Type)),
		slog.String("action", action),
		slog.String("actor_id", event.Actor.ID),
	)

	var err error
	switch event.Action {
	case events.ActionStart:
		var ctr docker.Container
		ctr, err = w.source.Inspect(ctx, event.Actor.ID)
		if err == nil {
			err = w.publish(ctx, ctr)
		}
	case events.ActionDie:
		err = w.retract(ctx, event.Actor)
	default:
		return
	}

	switch {
	case errors.Is(err, errNotLabelled):
		w.recorder.RecordWatchEvent(action, ResultSkipped)
	case err != nil:
		w.recorder.RecordWatchEvent(action, ResultError)
		w.logger.Error("failed to apply container event",
			slog.String("action", action),
			slog.String("container", event.Actor.ID),
			slog.String("error", err.Error()),
		)
	default:
		w.recorder.RecordWatchEvent(action, ResultSuccess)
	}
}

var errNotLabelled = errors.New("container is not labelled for dns")

func (w *Watcher) publish(ctx context.Context, ctr docker.Container) error {
	name := ctr.GetLabel(w.source.Label(docker.LabelName))
	zone := ctr.GetLabel(w.source.Label(docker.LabelZone))
	if name == "" || zone == "" {
		return errNotLabelled
	}

	network := ctr.GetLabel(w.source.Label(docker.LabelNetwork))
	addr, ok := ctr.IPv4(network)
	if !ok {
		w.logger.Warn("container has no IPv4 address to publish",
			slog.String("container", ctr.String()),
			slog.String("network", network),
		)
		return errNotLabelled
	}

	opCtx, cancel := context.WithTimeout(ctx, w.config.OperationTimeout)
	defer cancel()

	w.logger.Info("publishing container",
		slog.String("container", ctr.String()),
		slog.String("name", name),
		slog.String("zone", zone),
		slog.String("address", addr),
	)
	return w.entries.CreateEntry(opCtx, name, addr, dnsupdate.TypeA, zone)
}

func (w *Watcher) retract(ctx context.Context, actor events.Actor) error {
	name := actor.Attributes[w.source.Label(docker.LabelName)]
	zone := actor.Attributes[w.source.Label(docker.LabelZone)]
	if name == "" || zone == "" {
		return errNotLabelled
	}

	opCtx, cancel := context.WithTimeout(ctx, w.config.OperationTimeout)
	defer cancel()

	w.logger.Info("retracting container",
		slog.String("container", actor.Attributes["name"]),
		slog.String("name", name),
		slog.String("zone", zone),
	)
	return w.entries.DeleteEntry(opCtx, name, zone)
}
