package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Callback processing metrics
	callbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "Total number of gateway callbacks processed",
		},
		[]string{"method", "outcome"},
	)

	callbackDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_callback_duration_seconds",
			Help:    "Duration of callback processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Background task metrics
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_tasks_total",
			Help: "Total number of background task executions",
		},
		[]string{"type", "outcome"},
	)

	taskRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_task_retries_total",
			Help: "Total number of background task retries scheduled",
		},
		[]string{"type"},
	)

	tasksExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_tasks_exhausted_total",
			Help: "Total number of tasks that exhausted their retry budget",
		},
		[]string{"type"},
	)
)

// RecordCallback records one callback processing attempt with its outcome
// (a terminal payment status, or a rejection reason such as "denied")
func RecordCallback(method, outcome string, duration time.Duration) {
	callbacksTotal.WithLabelValues(method, outcome).Inc()
	callbackDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordTask records one background task execution attempt
func RecordTask(taskType, outcome string) {
	tasksTotal.WithLabelValues(taskType, outcome).Inc()
}

// RecordTaskRetry records a task being rescheduled after a failed attempt
func RecordTaskRetry(taskType string) {
	taskRetriesTotal.WithLabelValues(taskType).Inc()
}

// RecordTaskExhausted records a task being marked permanently failed
func RecordTaskExhausted(taskType string) {
	tasksExhaustedTotal.WithLabelValues(taskType).Inc()
}
