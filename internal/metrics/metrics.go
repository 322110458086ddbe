// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup outcomes.
const (
	OutcomeFresh       = "fresh"
	OutcomeRefreshed   = "refreshed"
	OutcomeStale       = "stale_fallback"
	OutcomeUnavailable = "unavailable"
	OutcomeStoreError  = "store_error"
)

var (
	// CacheLookups counts fetch-or-refresh decisions per resource kind.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flickstream_cache_lookups_total",
			Help: "Cache lookups by resource and outcome",
		},
		[]string{"resource", "outcome"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flickstream_tmdb_requests_total",
			Help: "TMDB API requests by endpoint and result",
		},
		[]string{"endpoint", "result"}, // success, failure, rejected
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flickstream_tmdb_request_duration_seconds",
			Help:    "Duration of TMDB API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flickstream_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flickstream_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flickstream_http_requests_total",
			Help: "HTTP requests served by method and status",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flickstream_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method"},
	)
)

// RecordCacheLookup records the outcome of one fetch-or-refresh decision.
func RecordCacheLookup(resource, outcome string) {
	CacheLookups.WithLabelValues(resource, outcome).Inc()
}

// RecordUpstream records a TMDB request result and its latency.
func RecordUpstream(endpoint, result string, d time.Duration) {
	UpstreamRequests.WithLabelValues(endpoint, result).Inc()
	UpstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(method string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}
