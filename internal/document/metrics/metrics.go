package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the document workflow. All recorders
// are nil-safe so tests can pass a nil *Metrics.
type Metrics struct {
	transitions        *prometheus.CounterVec
	allocationDuration prometheus.Histogram
}

// New creates and registers document workflow metrics.
func New() *Metrics {
	return &Metrics{
		transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warga_document_transitions_total",
			Help: "Document workflow transitions, by document type and transition",
		}, []string{"document_type", "transition"}),
		allocationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "warga_document_number_allocation_seconds",
			Help:    "Time spent allocating document numbers inside approvals",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RecordTransition(documentType, transition string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(documentType, transition).Inc()
}

func (m *Metrics) ObserveAllocationDuration(seconds float64) {
	if m == nil {
		return
	}
	m.allocationDuration.Observe(seconds)
}
