package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wayfinder"

// Metrics holds the guide collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	transitions *prometheus.CounterVec
	signals     *prometheus.CounterVec
	segments    *prometheus.HistogramVec
	trips       *prometheus.CounterVec
	errors      prometheus.Counter
	active      prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Automaton state entries by state and previous state",
		}, []string{"state", "from"}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events delivered to or dropped before a state",
		}, []string{"state", "event", "dropped"}),
		segments: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "segment_duration_seconds",
			Help:      "Duration of movement segments by outcome",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"outcome"}),
		trips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_total",
			Help:      "Finished trips by reason",
		}, []string{"reason"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors reported by the automaton",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_trips",
			Help:      "Trips currently running",
		}),
	}
	m.registry.MustRegister(
		m.transitions, m.signals, m.segments, m.trips, m.errors, m.active,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TripStarted and TripFinished track the trip gauge and outcome counter.
func (m *Metrics) TripStarted() { m.active.Inc() }

func (m *Metrics) TripFinished(reason string) {
	m.active.Dec()
	if reason == "" {
		reason = "unknown"
	}
	m.trips.WithLabelValues(reason).Inc()
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			m.transitions.WithLabelValues(e.State, e.Peer).Inc()
		},
		OnSignal: func(_ context.Context, e *domain.SignalEvent) {
			dropped := "false"
			if e.Dropped {
				dropped = "true"
			}
			m.signals.WithLabelValues(e.State, e.Name, dropped).Inc()
		},
		OnSegment: func(_ context.Context, e *domain.SegmentEvent) {
			m.segments.WithLabelValues(string(e.Outcome)).Observe(e.Duration.Seconds())
		},
		OnError: func(context.Context, error) {
			m.errors.Inc()
		},
	}
}
