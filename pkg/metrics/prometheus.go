// Package metrics provides Prometheus metrics for the carbon-cost services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// co2Buckets spans the badge thresholds (0.5 and 1.5 kg).
var co2Buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 1, 1.5, 2, 3, 5}

// Manager owns all Prometheus metrics for a process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Business metrics
	recordsTotal     *prometheus.CounterVec
	recordRejections *prometheus.CounterVec
	co2Kg            prometheus.Histogram
	storedRecords    prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Store metrics
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec

	// Dashboard metrics
	dashboardFetches *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "carboncost",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsTotal = auto.NewCounterVec(
		m.counterOpts("records_total", "Emission records accepted, by badge tier"),
		[]string{"badge"},
	)
	m.recordRejections = auto.NewCounterVec(
		m.counterOpts("record_rejections_total", "Emission records rejected before storage"),
		[]string{"reason"},
	)
	m.co2Kg = auto.NewHistogram(
		m.histogramOpts("co2_kg", "Distribution of recorded CO2 estimates in kg", co2Buckets),
	)
	m.storedRecords = auto.NewGauge(
		m.gaugeOpts("stored_records", "Records in the store as of the last stats query"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.storeQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("store_query_latency_milliseconds", "Latency of store operations in milliseconds", m.histogramBuckets),
		[]string{"op"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Failed store operations"),
		[]string{"op"},
	)

	m.dashboardFetches = auto.NewCounterVec(
		m.counterOpts("dashboard_fetch_total", "Dashboard polls of the collector by result"),
		[]string{"result"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// RecordAccepted counts a stored record and observes its CO2 value.
func RecordAccepted(badge string, co2 float64) {
	globalManager.recordsTotal.WithLabelValues(badge).Inc()
	globalManager.co2Kg.Observe(co2)
}

// RecordRejected counts a record that failed validation or decoding.
func RecordRejected(reason string) {
	globalManager.recordRejections.WithLabelValues(reason).Inc()
}

// UpdateStoredRecords sets the number of stored records.
func UpdateStoredRecords(count int) {
	globalManager.storedRecords.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordStoreLatency records the latency of a store operation.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordDashboardFetch counts a dashboard poll; result is "ok" or "error".
func RecordDashboardFetch(result string) {
	globalManager.dashboardFetches.WithLabelValues(result).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
