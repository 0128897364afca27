package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxWorkerMetrics records dispatch outcomes for the outbox worker.
type OutboxWorkerMetrics struct {
	batchDuration *prometheus.HistogramVec
	dispatched    *prometheus.CounterVec
	failed        *prometheus.CounterVec
	deadLettered  *prometheus.CounterVec
}

// NewOutboxWorkerMetrics registers the worker metrics on the provided registerer.
func NewOutboxWorkerMetrics(reg prometheus.Registerer) *OutboxWorkerMetrics {
	if reg == nil {
		return &OutboxWorkerMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox dispatch batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"worker"})
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_dispatched",
		Help: "Outbox events dispatched successfully.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed",
		Help: "Outbox dispatch attempts that failed and will retry.",
	}, []string{"event_type"})
	deadLettered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_dead_lettered",
		Help: "Outbox events moved to the DLQ.",
	}, []string{"event_type"})
	reg.MustRegister(batchDuration, dispatched, failed, deadLettered)
	return &OutboxWorkerMetrics{
		batchDuration: batchDuration,
		dispatched:    dispatched,
		failed:        failed,
		deadLettered:  deadLettered,
	}
}

// ObserveBatch records how long one dispatch batch took.
func (m *OutboxWorkerMetrics) ObserveBatch(worker string, duration time.Duration) {
	if m == nil || m.batchDuration == nil {
		return
	}
	m.batchDuration.WithLabelValues(normalizeLabel(worker)).Observe(duration.Seconds())
}

// IncDispatched increments the success counter for an event type.
func (m *OutboxWorkerMetrics) IncDispatched(eventType string) {
	if m == nil || m.dispatched == nil {
		return
	}
	m.dispatched.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the retryable-failure counter for an event type.
func (m *OutboxWorkerMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDeadLettered increments the DLQ counter for an event type.
func (m *OutboxWorkerMetrics) IncDeadLettered(eventType string) {
	if m == nil || m.deadLettered == nil {
		return
	}
	m.deadLettered.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
