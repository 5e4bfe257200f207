package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ruangpulih_client"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Backend HTTP requests by method and status code.",
		},
		[]string{"method", "code"},
	)

	storeOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Resource store operations by resource, operation and outcome.",
		},
		[]string{"resource", "operation", "outcome"},
	)

	storeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Resource store operation latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource", "operation"},
	)

	refreshTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tasks_total",
			Help:      "Background store reloads by resource and outcome.",
		},
		[]string{"resource", "outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, storeOperations, storeLatency, refreshTasks)
	})
}

// IncHTTP counts one backend request. code is "error" when no response arrived.
func IncHTTP(method, code string) {
	httpRequests.WithLabelValues(method, code).Inc()
}

// ObserveStoreOp records the outcome and latency of one store operation.
func ObserveStoreOp(resource, operation, outcome string, d time.Duration) {
	storeOperations.WithLabelValues(resource, operation, outcome).Inc()
	storeLatency.WithLabelValues(resource, operation).Observe(d.Seconds())
}

// IncRefresh counts one background reload attempt.
func IncRefresh(resource, outcome string) {
	refreshTasks.WithLabelValues(resource, outcome).Inc()
}
