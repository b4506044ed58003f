// Package metrics provides Prometheus metrics for dyndns.
//
// Metrics live on an explicitly constructed registry rather than the
// process-global default, so tests and embedders get an isolated set.
package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "dyndns"

// Metrics holds every collector and the registry they are registered on.
// It implements dyndns.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	UpdatesTotal   *prometheus.CounterVec
	UpdateDuration *prometheus.HistogramVec
	LookupsTotal   *prometheus.CounterVec
	WatchEvents    *prometheus.CounterVec
	BuildInfo      *prometheus.GaugeVec
}

// New creates a registry and registers every dyndns collector on it,
// together with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		UpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "updates_total",
			Help:      "Update messages sent, by operation, direction, and result.",
		}, []string{"op", "direction", "result"}),
		UpdateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "update_duration_seconds",
			Help:      "Time spent exchanging one update message with the server.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"direction"}),
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lookups_total",
			Help:      "Resolver lookups, by kind and result.",
		}, []string{"kind", "result"}),
		WatchEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "watch_events_total",
			Help:      "Container lifecycle events handled by the watcher.",
		}, []string{"action", "result"}),
		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "build_info",
			Help:      "Build information. Always 1.",
		}, []string{"version", "go_version"}),
	}

	reg.MustRegister(
		m.UpdatesTotal,
		m.UpdateDuration,
		m.LookupsTotal,
		m.WatchEvents,
		m.BuildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SetBuildInfo publishes the running version.
func (m *Metrics) SetBuildInfo(version string) {
	m.BuildInfo.Reset()
	m.BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// RecordUpdate counts one update message and observes its duration.
func (m *Metrics) RecordUpdate(op, direction, result string, d time.Duration) {
	m.UpdatesTotal.WithLabelValues(op, direction, result).Inc()
	m.UpdateDuration.WithLabelValues(direction).Observe(d.Seconds())
}

// RecordLookup counts one resolver lookup.
func (m *Metrics) RecordLookup(kind, result string) {
	m.LookupsTotal.WithLabelValues(kind, result).Inc()
}

// RecordWatchEvent counts one container event handled by the watcher.
func (m *Metrics) RecordWatchEvent(action, result string) {
	m.WatchEvents.WithLabelValues(action, result).Inc()
}

// Reset clears every labelled series. Build info is kept.
func (m *Metrics) Reset() {
	m.UpdatesTotal.Reset()
	m.UpdateDuration.Reset()
	m.LookupsTotal.Reset()
	m.WatchEvents.Reset()
}
