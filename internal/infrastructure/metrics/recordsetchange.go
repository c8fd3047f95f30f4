package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordSetChangeOutcomes tracks terminal outcomes of the record-set
	// change handler, labeled "complete" or "failed".
	RecordSetChangeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clouddns_recordsetchange_outcomes_total",
		Help: "Total number of record set change handler runs by terminal outcome",
	}, []string{"outcome"})

	// RecordSetChangeVerifyAttempts tracks how many verify attempts a run
	// consumed before reaching a terminal verify outcome.
	RecordSetChangeVerifyAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clouddns_recordsetchange_verify_attempts",
		Help:    "Number of verify attempts consumed per record set change run",
		Buckets: prometheus.LinearBuckets(1, 1, 12),
	})
)

// PrometheusOutcomeRecorder adapts the package-level Prometheus collectors
// to recordsetchange.OutcomeRecorder.
type PrometheusOutcomeRecorder struct{}

func (PrometheusOutcomeRecorder) RecordOutcome(outcome string) {
	RecordSetChangeOutcomes.WithLabelValues(outcome).Inc()
}

func (PrometheusOutcomeRecorder) RecordVerifyAttempts(n int) {
	RecordSetChangeVerifyAttempts.Observe(float64(n))
}
