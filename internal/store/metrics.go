package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts collection operations by kind, operation and result.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_store_operations_total",
		Help: "Total number of document store operations",
	}, []string{"kind", "operation", "result"})

	// OperationLatency records collection operation latency.
	OperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialfeed_store_operation_seconds",
		Help:    "Document store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind", "operation"})
)

func observe(kind Kind, op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	OperationsTotal.WithLabelValues(string(kind), op, result).Inc()
	OperationLatency.WithLabelValues(string(kind), op).Observe(time.Since(start).Seconds())
}
