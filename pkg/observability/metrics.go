package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the wizard collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	StepVisits     *prometheus.CounterVec
	StepBlocked    *prometheus.CounterVec
	LocateOutcomes *prometheus.CounterVec
	LocateDuration prometheus.Histogram
	Submissions    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
// Process and Go runtime collectors are included when withRuntime is set.
func NewMetrics(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotlist_step_visits_total",
				Help: "Total number of step entries",
			},
			[]string{"step", "direction"},
		),
		StepBlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotlist_step_blocked_total",
				Help: "Next attempts rejected by the step gate",
			},
			[]string{"step"},
		),
		LocateOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotlist_locate_total",
				Help: "Device geolocation requests by outcome",
			},
			[]string{"outcome"},
		),
		LocateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "spotlist_locate_duration_seconds",
				Help:    "Duration of server-side geolocation requests",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotlist_submissions_total",
				Help: "Completed listings handed to the sink",
			},
			[]string{"owner_type", "slots", "result"},
		),
	}

	m.registry.MustRegister(m.StepVisits, m.StepBlocked, m.LocateOutcomes, m.LocateDuration, m.Submissions)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry exposes the registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(e.Step.String(), string(e.Direction)).Inc()
		},
		OnBlocked: func(ctx context.Context, e *domain.StepEvent) {
			m.StepBlocked.WithLabelValues(e.Step.String()).Inc()
		},
		OnLocate: func(ctx context.Context, e *domain.LocateEvent) {
			m.LocateOutcomes.WithLabelValues(string(e.Outcome)).Inc()
			if e.Duration > 0 {
				m.LocateDuration.Observe(e.Duration.Seconds())
			}
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			result := "ok"
			if e.IsError {
				result = "error"
			}
			m.Submissions.WithLabelValues(string(e.OwnerType), string(e.Slots), result).Inc()
		},
	}
}
