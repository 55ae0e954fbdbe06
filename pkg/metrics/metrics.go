// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	// Reconciliation metrics
	reconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tuition_reconciliations_total",
			Help: "Total number of student reconciliations by resulting balance status",
		},
		[]string{"status"},
	)

	reconciliationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tuition_reconciliation_duration_seconds",
			Help:    "Time spent loading and reconciling one student",
			Buckets: prometheus.DefBuckets,
		},
	)

	reconciliationCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tuition_reconciliation_cache_total",
			Help: "Reconciliation cache lookups by result",
		},
		[]string{"result"},
	)

	remindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tuition_dues_reminders_total",
			Help: "Dues reminder emails by delivery outcome",
		},
		[]string{"outcome"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tuition_db_query_duration_seconds",
			Help:    "Duration of SQL statements by outcome",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.2, 0.5, 1, 2},
		},
		[]string{"outcome"},
	)

	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// ObserveReconciliation records one completed reconciliation
func ObserveReconciliation(status string, elapsed time.Duration) {
	reconciliationsTotal.WithLabelValues(status).Inc()
	reconciliationDuration.Observe(elapsed.Seconds())
}

// ObserveCache records a cache hit or miss
func ObserveCache(result string) {
	reconciliationCache.WithLabelValues(result).Inc()
}

// ObserveReminder records a reminder delivery outcome ("sent", "failed", "skipped")
func ObserveReminder(outcome string) {
	remindersSent.WithLabelValues(outcome).Inc()
}

// ObserveQuery records one SQL statement traced by the GORM logger
func ObserveQuery(elapsed time.Duration, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	dbQueryDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RequestStarted marks an HTTP request as in flight and returns the func
// that records its completion.
func RequestStarted() func(method, route, status string, elapsed time.Duration) {
	httpRequestsInFlight.Inc()
	return func(method, route, status string, elapsed time.Duration) {
		httpRequestsInFlight.Dec()
		httpRequestsTotal.WithLabelValues(method, route, status).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
	}
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
