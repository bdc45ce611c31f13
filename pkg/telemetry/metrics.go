package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for gitfleet runs. A nil *Metrics
// is valid and records nothing, so callers never need to guard.
type Metrics struct {
	config MetricsConfig

	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	runSteps      prometheus.Gauge
	clonesTotal   *prometheus.CounterVec
	actionsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector with its own registry. When
// the configuration disables metrics, the returned instance is a no-op.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{config: cfg}
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "gitfleet"
	}
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Total number of runs started",
		}),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of runs completed",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of run execution in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		runSteps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_steps_planned",
			Help:      "Number of progress steps the current run accounts for",
		}),
		clonesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clones_total",
				Help:      "Total number of clone attempts",
			},
			[]string{"status"},
		),
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Total number of action applications",
			},
			[]string{"phase", "status"},
		),
	}

	registry.MustRegister(
		m.runsStarted,
		m.runsCompleted,
		m.runDuration,
		m.runSteps,
		m.clonesTotal,
		m.actionsTotal,
	)
	return m
}

func (m *Metrics) enabled() bool {
	return m != nil && m.registry != nil
}

// RunStarted counts a run beginning.
func (m *Metrics) RunStarted() {
	if !m.enabled() {
		return
	}
	m.runsStarted.Inc()
}

// RunCompleted counts a finished run and observes its duration.
func (m *Metrics) RunCompleted(status string, duration time.Duration) {
	if !m.enabled() {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// StepsPlanned records how many progress steps the current run will
// account for.
func (m *Metrics) StepsPlanned(total int) {
	if !m.enabled() {
		return
	}
	m.runSteps.Set(float64(total))
}

// CloneRecorded counts one clone attempt by outcome.
func (m *Metrics) CloneRecorded(status string) {
	if !m.enabled() {
		return
	}
	m.clonesTotal.WithLabelValues(status).Inc()
}

// ActionRecorded counts one action application by phase and outcome.
func (m *Metrics) ActionRecorded(phase, status string) {
	if !m.enabled() {
		return
	}
	m.actionsTotal.WithLabelValues(phase, status).Inc()
}

// Registry returns the underlying registry, or nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if !m.enabled() {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler exposing the metrics in Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
