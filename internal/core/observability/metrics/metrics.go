// Package metrics exports client-side counters through Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives engine and session activity. Implementations must be
// safe for concurrent use.
type Recorder interface {
	EventApplied(kind string)
	EventFailed(kind string)
	EventIgnored(wireType string)
	CommandSent()
	TimelineDepth(n int)
	ClockAdvanced(ms int64)
}

var (
	_ Recorder = (*Prometheus)(nil)
	_ Recorder = Nop{}
)

// Nop discards everything.
type Nop struct{}

func (Nop) EventApplied(string) {}
func (Nop) EventFailed(string)  {}
func (Nop) EventIgnored(string) {}
func (Nop) CommandSent()        {}
func (Nop) TimelineDepth(int)   {}
func (Nop) ClockAdvanced(int64) {}

// Prometheus is a Recorder backed by its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	applied  *prometheus.CounterVec
	failed   *prometheus.CounterVec
	ignored  *prometheus.CounterVec
	commands prometheus.Counter
	depth    prometheus.Gauge
	clock    prometheus.Gauge
}

// NewPrometheus registers the client collectors on a fresh registry.
func NewPrometheus(namespace string) *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_applied_total",
			Help:      "Events applied to the world, by kind.",
		}, []string{"kind"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Events whose application failed, by kind.",
		}, []string{"kind"}),
		ignored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ignored_total",
			Help:      "Records dropped because their type has no handler.",
		}, []string{"type"}),
		commands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_sent_total",
			Help:      "Outbound control commands sent to the server.",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "timeline_pending_events",
			Help:      "Events waiting in the timeline after the last advance.",
		}),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "local_clock_milliseconds",
			Help:      "Local simulation clock.",
		}),
	}
	p.registry.MustRegister(p.applied, p.failed, p.ignored, p.commands, p.depth, p.clock)
	return p
}

func (p *Prometheus) EventApplied(kind string) { p.applied.WithLabelValues(kind).Inc() }

func (p *Prometheus) EventFailed(kind string) { p.failed.WithLabelValues(kind).Inc() }

func (p *Prometheus) EventIgnored(wireType string) { p.ignored.WithLabelValues(wireType).Inc() }

func (p *Prometheus) CommandSent() { p.commands.Inc() }

func (p *Prometheus) TimelineDepth(n int) { p.depth.Set(float64(n)) }

func (p *Prometheus) ClockAdvanced(ms int64) { p.clock.Set(float64(ms)) }

// Registry exposes the underlying registry, mainly for tests.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
