// Package metrics provides Prometheus metrics for the podium analysis service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// coverageBuckets spans the share of definite banner cells.
var coverageBuckets = []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99, 1} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the podium service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Analysis metrics
	screenshotsAnalyzed  prometheus.Counter
	screenshotsDuplicate prometheus.Counter
	analysisFailures     *prometheus.CounterVec
	analysisLatency      prometheus.Histogram
	bannerCoverage       prometheus.Histogram
	playerCounts         *prometheus.CounterVec
	victories            *prometheus.CounterVec
	knownPlayers         prometheus.Gauge
	runs                 prometheus.Counter
	runDuration          prometheus.Gauge

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
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

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.screenshotsAnalyzed = m.counter("screenshots_analyzed_total", "Total number of screenshots successfully analysed")
	m.screenshotsDuplicate = m.counter("screenshots_duplicate_total", "Total number of duplicate screenshots skipped")
	m.analysisFailures = m.counterVec("analysis_failures_total", "Screenshots that could not be analysed, by stage", "stage")
	m.analysisLatency = m.histogram("analysis_latency_milliseconds", "Histogram of per-screenshot analysis latency in milliseconds", m.histogramBuckets)
	m.bannerCoverage = m.histogram("banner_coverage_ratio", "Share of definite cells in victor banner fingerprints", coverageBuckets)
	m.playerCounts = m.counterVec("player_count_total", "Analysed rounds by number of players", "players")
	m.victories = m.counterVec("victories_total", "Rounds won, by player", "player")
	m.knownPlayers = m.gauge("known_players", "Number of players in the victor registry")
	m.runs = m.counter("runs_total", "Total number of completed album runs")
	m.runDuration = m.gauge("last_run_duration_seconds", "Duration of the last album run in seconds")

	m.queueSize = m.gauge("queue_size", "Current size of the screenshot queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the screenshot queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization as a ratio of size to capacity")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of screenshots enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of screenshots dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerCount = m.gauge("worker_count", "Number of workers in the pool")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently analysing a screenshot")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Histogram of end-to-end screenshot processing latency in milliseconds", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")
}

// Global convenience functions for recording metrics.

// RecordScreenshotAnalyzed records a successful analysis and its banner coverage.
func RecordScreenshotAnalyzed(players int, coverage float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.screenshotsAnalyzed.Inc()
	globalManager.playerCounts.WithLabelValues(strconv.Itoa(players)).Inc()
	globalManager.bannerCoverage.Observe(coverage)
}

// RecordScreenshotDuplicate records a skipped duplicate screenshot.
func RecordScreenshotDuplicate() {
	if globalManager.enabled {
		globalManager.screenshotsDuplicate.Inc()
	}
}

// RecordAnalysisFailure records a screenshot that failed at stage.
func RecordAnalysisFailure(stage string) {
	if globalManager.enabled {
		globalManager.analysisFailures.WithLabelValues(stage).Inc()
	}
}

// RecordAnalysisLatency records the time spent analysing one screenshot.
func RecordAnalysisLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.analysisLatency.Observe(latencyMs)
	}
}

// RecordVictory records a round won by player.
func RecordVictory(player string) {
	if globalManager.enabled {
		globalManager.victories.WithLabelValues(player).Inc()
	}
}

// UpdateKnownPlayers sets the number of registered players.
func UpdateKnownPlayers(count int) {
	if globalManager.enabled {
		globalManager.knownPlayers.Set(float64(count))
	}
}

// RecordRun records a completed album run.
func RecordRun(durationSeconds float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.runs.Inc()
	globalManager.runDuration.Set(durationSeconds)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if globalManager.enabled {
		globalManager.queueUtilization.Set(utilization)
	}
}

// RecordQueueEnqueue records an accepted enqueue.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueueRate.Inc()
	}
}

// RecordQueueDequeue records a dequeue.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeueRate.Inc()
	}
}

// RecordQueueEnqueueError records a rejected enqueue.
func RecordQueueEnqueueError() {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerCount sets the number of workers in the pool.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// AddWorkerActive adjusts the number of busy workers by delta.
func AddWorkerActive(delta int) {
	if globalManager.enabled {
		globalManager.workerActiveCount.Add(float64(delta))
	}
}

// RecordWorkerProcessingLatency records the end-to-end time for one screenshot.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent records an error in component.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// GetRegistry returns the custom registry the global metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// SetEnabled turns recording through the global functions on or off.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}
