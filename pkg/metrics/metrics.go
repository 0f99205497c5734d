// Package metrics holds the Prometheus collectors of the service.
//
// Metric types follow one rule: Counter for things that happen, Gauge for
// current values, Histogram for durations.
//
//	func main() {
//	    metrics.InitMetrics()
//	    r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//	}
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP

	// HTTPRequestsTotal labels: method, path (route template), status
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	// Store

	// DBOperationDuration labels: collection, operation
	DBOperationDuration *prometheus.HistogramVec
	DBErrorsTotal       *prometheus.CounterVec

	// Cache

	// CacheRequestsTotal labels: cache, result (hit/miss/error)
	CacheRequestsTotal *prometheus.CounterVec

	// CircuitBreakerState 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState    *prometheus.GaugeVec
	CircuitBreakerRequests *prometheus.CounterVec

	// Cascades

	// CascadeExecutionsTotal labels: cascade, result (success/failure)
	CascadeExecutionsTotal *prometheus.CounterVec
	CascadeDuration        *prometheus.HistogramVec
	// CascadeCompensationsTotal labels: cascade, result (success/failure)
	CascadeCompensationsTotal *prometheus.CounterVec

	// Events

	// EventsPublishedTotal labels: routing_key, result
	EventsPublishedTotal *prometheus.CounterVec
	EventsConsumedTotal  *prometheus.CounterVec
)

// InitMetrics registers every collector on the default registry. Safe to call
// more than once.
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "HTTP requests currently being served.",
		},
	)

	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Document store operation latency in seconds.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"collection", "operation"},
	)

	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Failed document store operations.",
		},
		[]string{"collection", "operation"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Stats cache lookups by result.",
		},
		[]string{"cache", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=CLOSED, 1=OPEN, 2=HALF_OPEN).",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests seen by circuit breakers.",
		},
		[]string{"name", "result"},
	)

	CascadeExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_executions_total",
			Help: "Cascade deletes by outcome.",
		},
		[]string{"cascade", "result"},
	)

	CascadeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cascade_duration_seconds",
			Help:    "Cascade delete latency in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"cascade"},
	)

	CascadeCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_compensations_total",
			Help: "Cascade compensation steps by outcome.",
		},
		[]string{"cascade", "result"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events published to the broker.",
		},
		[]string{"routing_key", "result"},
	)

	EventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Domain events consumed from the broker.",
		},
		[]string{"routing_key", "result"},
	)
}

// IncCounterVec increments a labelled counter.
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec sets a labelled gauge.
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec records a labelled observation.
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// Result turns an error into the "success"/"failure" label value.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
