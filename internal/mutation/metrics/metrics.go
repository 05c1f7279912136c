package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the mutation engine. All recorders are
// nil-safe so tests can pass a nil *Metrics.
type Metrics struct {
	applied *prometheus.CounterVec
	failed  *prometheus.CounterVec
}

// New creates and registers mutation engine metrics.
func New() *Metrics {
	return &Metrics{
		applied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warga_mutations_applied_total",
			Help: "Lifecycle mutations applied, by event type",
		}, []string{"event_type"}),
		failed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warga_mutations_failed_total",
			Help: "Lifecycle mutations rejected or rolled back, by event type",
		}, []string{"event_type"}),
	}
}

func (m *Metrics) RecordApplied(eventType string) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(eventType).Inc()
}

func (m *Metrics) RecordFailed(eventType string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(eventType).Inc()
}
