package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stop"

// Set holds the process collectors and the registry they are registered in.
// It implements client.Observer.
type Set struct {
	registry *prometheus.Registry

	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	refreshTotal  *prometheus.CounterVec
	sessions      prometheus.Gauge
}

// New creates a Set with its own registry, including the Go runtime and
// process collectors.
func New() *Set {
	s := &Set{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Total number of Slurm command fetches",
			},
			[]string{"source", "outcome"}, // outcome: ok or a failure kind
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of Slurm command fetches in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		),
		refreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_total",
				Help:      "Completed screen refresh cycles by resulting state",
			},
			[]string{"view", "state"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of connected browser sessions",
			},
		),
	}
	s.registry.MustRegister(
		s.fetchTotal,
		s.fetchDuration,
		s.refreshTotal,
		s.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// ObserveFetch records one fetch outcome.
func (s *Set) ObserveFetch(source, outcome string, elapsed time.Duration) {
	if s == nil {
		return
	}
	s.fetchTotal.WithLabelValues(source, outcome).Inc()
	s.fetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveRefresh records a completed screen refresh.
func (s *Set) ObserveRefresh(view, state string) {
	if s == nil {
		return
	}
	s.refreshTotal.WithLabelValues(view, state).Inc()
}

// SessionOpened increments the active session gauge.
func (s *Set) SessionOpened() {
	if s == nil {
		return
	}
	s.sessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (s *Set) SessionClosed() {
	if s == nil {
		return
	}
	s.sessions.Dec()
}

// Registry exposes the underlying registry.
func (s *Set) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}
