// Package metrics provides Prometheus metrics for the roster registration services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the roster binaries.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Append store (server side)
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter
	submissionsRejected  *prometheus.CounterVec
	sheetRows            prometheus.Gauge
	sheetAppendLatency   prometheus.Histogram
	sheetInitCount       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Form controller (client side)
	formSubmissions *prometheus.CounterVec
	duplicateCache  prometheus.Gauge

	// Outbox queue
	outboxCapacity      prometheus.Gauge
	outboxSize          prometheus.Gauge
	outboxEnqueued      prometheus.Counter
	outboxEnqueueErrors prometheus.Counter
	outboxDequeued      prometheus.Counter
	outboxWaitLatency   prometheus.Histogram
	dispatchWorkers     prometheus.Gauge
	dispatchOutcomes    *prometheus.CounterVec
	dispatchLatency     prometheus.Histogram
	dispatchesPerSecond prometheus.Gauge

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "roster",
		subsystem:        "registration",
		histogramBuckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.submissionsAccepted = m.counter("submissions_accepted_total",
		"Submissions appended to the sheet")
	m.submissionsDuplicate = m.counter("submissions_duplicate_total",
		"Submissions refused because the normalized id already exists")
	m.submissionsRejected = m.counterVec("submissions_rejected_total",
		"Submissions refused before reaching the sheet", "reason")
	m.sheetRows = m.gauge("sheet_rows",
		"Data rows currently stored in the sheet")
	m.sheetAppendLatency = m.histogram("sheet_append_latency_ms",
		"Latency of check-and-append against the sheet in milliseconds")
	m.sheetInitCount = m.counter("sheet_init_total",
		"Lazy sheet initializations performed")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.formSubmissions = m.counterVec("form_submissions_total",
		"Form controller submit outcomes", "outcome")
	m.duplicateCache = m.gauge("form_duplicate_cache_size",
		"Normalized ids held in the local duplicate cache")

	m.outboxCapacity = m.gauge("outbox_capacity", "Maximum outbox queue capacity")
	m.outboxSize = m.gauge("outbox_size", "Jobs waiting in the outbox queue")
	m.outboxEnqueued = m.counter("outbox_enqueued_total", "Jobs accepted by the outbox")
	m.outboxEnqueueErrors = m.counter("outbox_enqueue_errors_total", "Jobs the outbox refused")
	m.outboxDequeued = m.counter("outbox_dequeued_total", "Jobs handed to dispatch workers")
	m.outboxWaitLatency = m.histogram("outbox_wait_latency_ms",
		"Time a job spent queued before a worker picked it up in milliseconds")
	m.dispatchWorkers = m.gauge("dispatch_workers", "Dispatch workers running")
	m.dispatchOutcomes = m.counterVec("dispatch_outcomes_total",
		"Remote delivery outcomes", "status")
	m.dispatchLatency = m.histogram("dispatch_latency_ms",
		"Round trip to the remote append store in milliseconds")
	m.dispatchesPerSecond = m.gauge("dispatches_per_second",
		"Remote deliveries completed per second")

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"HTTP errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Goroutines running")
	m.systemGCPauseTime = m.histogram("system_gc_pause_ms", "Average GC pause in milliseconds")
}

// Append store metrics.

// RecordSubmissionAccepted increments the accepted submissions counter.
func RecordSubmissionAccepted() { globalManager.submissionsAccepted.Inc() }

// RecordSubmissionDuplicate increments the duplicate submissions counter.
func RecordSubmissionDuplicate() { globalManager.submissionsDuplicate.Inc() }

// RecordSubmissionRejected counts a submission refused for reason.
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

// UpdateSheetRows sets the number of stored data rows.
func UpdateSheetRows(count int) { globalManager.sheetRows.Set(float64(count)) }

// RecordSheetAppendLatency observes a check-and-append duration.
func RecordSheetAppendLatency(latencyMs float64) { globalManager.sheetAppendLatency.Observe(latencyMs) }

// RecordSheetInit counts a lazy sheet initialization.
func RecordSheetInit() { globalManager.sheetInitCount.Inc() }

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Form controller metrics.

// RecordFormSubmission counts a submit outcome: success, invalid, duplicate or persist_error.
func RecordFormSubmission(outcome string) {
	globalManager.formSubmissions.WithLabelValues(outcome).Inc()
}

// UpdateDuplicateCacheSize sets the size of the local duplicate cache.
func UpdateDuplicateCacheSize(size int) { globalManager.duplicateCache.Set(float64(size)) }

// Outbox metrics.

// UpdateOutboxCapacity sets the maximum outbox capacity.
func UpdateOutboxCapacity(capacity int) { globalManager.outboxCapacity.Set(float64(capacity)) }

// UpdateOutboxSize sets the number of queued jobs.
func UpdateOutboxSize(size int) { globalManager.outboxSize.Set(float64(size)) }

// RecordOutboxEnqueue counts an accepted job.
func RecordOutboxEnqueue() { globalManager.outboxEnqueued.Inc() }

// RecordOutboxEnqueueError counts a refused job.
func RecordOutboxEnqueueError() { globalManager.outboxEnqueueErrors.Inc() }

// RecordOutboxDequeue counts a job handed to a worker.
func RecordOutboxDequeue() { globalManager.outboxDequeued.Inc() }

// RecordOutboxWaitLatency observes how long a job waited in the queue.
func RecordOutboxWaitLatency(latencyMs float64) { globalManager.outboxWaitLatency.Observe(latencyMs) }

// UpdateDispatchWorkers sets the number of running dispatch workers.
func UpdateDispatchWorkers(count int) { globalManager.dispatchWorkers.Set(float64(count)) }

// RecordDispatchOutcome counts a remote delivery outcome.
func RecordDispatchOutcome(status string) {
	globalManager.dispatchOutcomes.WithLabelValues(status).Inc()
}

// RecordDispatchLatency observes a remote round trip.
func RecordDispatchLatency(latencyMs float64) { globalManager.dispatchLatency.Observe(latencyMs) }

// UpdateDispatchesPerSecond sets the delivery rate.
func UpdateDispatchesPerSecond(rate float64) { globalManager.dispatchesPerSecond.Set(rate) }

// Error metrics.

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
