// Package metrics exposes Prometheus collectors for the generation pipeline
// and the delivery loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scaffold"

var (
	// PipelineRunsTotal counts finished pipeline runs by outcome
	// (completed, failed, rejected).
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	PipelineStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "step_duration_seconds",
			Help:      "Pipeline step duration in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"step"},
	)

	PipelinesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "in_flight",
			Help:      "Number of pipelines currently running",
		},
	)

	PublishDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "publish_degraded_total",
			Help:      "Runs that completed without a repository URL",
		},
	)

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "intents_total",
			Help:      "Delivered intents by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// QueueDepth is the number of intents waiting in the in-process queue.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "queue_depth",
			Help:      "Intents queued and not yet drained",
		},
	)

	DrainBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "drain_batch_size",
			Help:      "Number of intents taken per drain",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)
)

// Outcome labels.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeOK        = "ok"
	OutcomeError     = "error"
)

// RecordDelivery counts one dispatched intent.
func RecordDelivery(kind string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	DeliveriesTotal.WithLabelValues(kind, outcome).Inc()
}
