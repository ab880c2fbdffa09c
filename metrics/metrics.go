// Package metrics exposes Prometheus collectors for the HEM service and a
// small HTTP server that serves them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hem"

var (
	// EngineOps counts engine operations by name and outcome (ok/error).
	EngineOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engine_operations_total",
		Help:      "Engine operations by name and outcome.",
	}, []string{"op", "outcome"})

	// OpDuration tracks engine operation latency by operation name.
	OpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "engine_operation_duration_seconds",
		Help:      "Engine operation latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	// KeysGenerated counts key contexts generated since process start.
	KeysGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "keys_generated_total",
		Help:      "Key contexts generated since start.",
	})

	// HTTPRequests counts API requests by route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
)

// ObserveOp records one engine operation: outcome counter plus latency.
func ObserveOp(op string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EngineOps.WithLabelValues(op, outcome).Inc()
	OpDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
