package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kunjungan_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kunjungan_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// NotificationsTotal counts email notifications by template and result.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kunjungan_notifications_total",
		Help: "Total number of visit notification emails by template and result",
	}, []string{"template", "result"})

	// ReportsGenerated counts monthly recap documents by result.
	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kunjungan_reports_generated_total",
		Help: "Total number of monthly recap PDF requests by result",
	}, []string{"result"})

	// StatusTransitions counts visit status changes by prior and new status.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kunjungan_status_transitions_total",
		Help: "Total number of visit request status changes",
	}, []string{"from", "to"})

	// SubmissionsTotal counts intake submissions by result.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kunjungan_submissions_total",
		Help: "Total number of visit request submissions by result",
	}, []string{"result"})

	// CacheLookups counts cache-aside lookups by key and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kunjungan_cache_lookups_total",
		Help: "Total number of cache lookups by key and result",
	}, []string{"key", "result"})
)

// Metric result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
	ResultEmpty   = "empty"
)

// DatabaseMetrics records repository query latency for one table.
type DatabaseMetrics struct {
	table string
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(table string) *DatabaseMetrics {
	return &DatabaseMetrics{table: table}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, m.table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, start)
	}
}
