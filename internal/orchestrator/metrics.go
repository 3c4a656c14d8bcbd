package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the pipeline's Prometheus collectors.
type Metrics struct {
	Queries         *prometheus.CounterVec
	Documents       *prometheus.CounterVec
	WebFallbacks    prometheus.Counter
	StateDuration   *prometheus.HistogramVec
	ActivityLookups *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg, or with the default
// registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripd_queries_total",
				Help: "Total queries answered, by evidence outcome",
			},
			[]string{"outcome"},
		),
		Documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripd_documents_total",
				Help: "Retrieved primary documents, by qualification verdict",
			},
			[]string{"verdict"},
		),
		WebFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tripd_web_fallback_total",
				Help: "Queries that fell back to web search",
			},
		),
		StateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tripd_state_duration_seconds",
				Help:    "Duration of each pipeline state in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"state"},
		),
		ActivityLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripd_activity_lookups_total",
				Help: "Activity lookups, by result (found, empty, panicked)",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) observeQuery(outcome string) {
	if m != nil {
		m.Queries.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) observeDocuments(verdict string, n int) {
	if m != nil && n > 0 {
		m.Documents.WithLabelValues(verdict).Add(float64(n))
	}
}

func (m *Metrics) observeWebFallback() {
	if m != nil {
		m.WebFallbacks.Inc()
	}
}

func (m *Metrics) observeState(state State, seconds float64) {
	if m != nil {
		m.StateDuration.WithLabelValues(string(state)).Observe(seconds)
	}
}

func (m *Metrics) observeActivity(result string) {
	if m != nil {
		m.ActivityLookups.WithLabelValues(result).Inc()
	}
}
