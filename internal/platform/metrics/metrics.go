package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation labels shared by the planner and its adapters.
const (
	OpSearch   = "search"
	OpRoute    = "route"
	OpCharging = "charging"
	OpLocate   = "locate"
)

var (
	RequestsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Subsystem: "session",
		Name:      "requests_issued_total",
		Help:      "Asynchronous requests issued per logical operation",
	}, []string{"operation"})

	StaleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Subsystem: "session",
		Name:      "stale_responses_total",
		Help:      "Completions discarded because a newer request or a reset superseded them",
	}, []string{"operation"})

	RequestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Subsystem: "session",
		Name:      "request_failures_total",
		Help:      "Requests that completed with an error",
	}, []string{"operation"})

	ValidationRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Subsystem: "session",
		Name:      "validation_rejections_total",
		Help:      "User inputs rejected before any network call",
	}, []string{"field"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "planner",
		Subsystem: "upstream",
		Name:      "operation_duration_seconds",
		Help:      "Latency of timed operations",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation", "outcome"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Suggestion cache lookups by result",
	}, []string{"result"})
)

// Handler serves the Prometheus /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
