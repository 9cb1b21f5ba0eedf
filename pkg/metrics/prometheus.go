// Package metrics provides Prometheus metrics for the tyretrace service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion metrics
	framesIngested  prometheus.Counter
	framesDuplicate prometheus.Counter
	framesDropped   prometheus.Counter
	samplesRecorded prometheus.Counter
	samplesEvicted  prometheus.Counter

	// Store metrics
	driversTracked prometheus.Gauge
	storeSamples   prometheus.Gauge

	// Derivation metrics
	viewRebuilds        prometheus.Counter
	viewRebuildDuration prometheus.Histogram
	stintsDerived       prometheus.Gauge

	// Feed queue metrics
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tyretrace",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.framesIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_ingested_total",
		Help:      "Total number of telemetry frames accepted for recording",
	})

	m.framesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_duplicate_total",
		Help:      "Total number of telemetry frames rejected as duplicates",
	})

	m.framesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_dropped_total",
		Help:      "Total number of telemetry frames rejected due to feed backpressure",
	})

	m.samplesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_recorded_total",
		Help:      "Total number of per-driver samples appended to the store",
	})

	m.samplesEvicted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_evicted_total",
		Help:      "Total number of samples dropped by per-driver retention",
	})

	m.driversTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "drivers_tracked",
		Help:      "Number of drivers with a retained history",
	})

	m.storeSamples = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_samples",
		Help:      "Total number of samples currently retained across all drivers",
	})

	m.viewRebuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "view_rebuilds_total",
		Help:      "Total number of view model rebuilds (ticks)",
	})

	m.viewRebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "view_rebuild_duration_milliseconds",
		Help:      "Histogram of view model rebuild duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.stintsDerived = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stints_derived",
		Help:      "Number of stints derived across all drivers at the last rebuild",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_queue_size",
		Help:      "Current number of frames waiting in the feed queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_queue_capacity",
		Help:      "Maximum feed queue capacity",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Package-level helpers operating on the global manager.

// RecordFrameIngested increments the accepted-frame counter.
func RecordFrameIngested() {
	globalManager.framesIngested.Inc()
}

// RecordFrameDuplicate increments the duplicate-frame counter.
func RecordFrameDuplicate() {
	globalManager.framesDuplicate.Inc()
}

// RecordFrameDropped increments the backpressure-drop counter.
func RecordFrameDropped() {
	globalManager.framesDropped.Inc()
}

// RecordSamplesRecorded adds n to the recorded-sample counter.
func RecordSamplesRecorded(n int) {
	globalManager.samplesRecorded.Add(float64(n))
}

// RecordSamplesEvicted adds n to the retention-eviction counter.
func RecordSamplesEvicted(n int) {
	globalManager.samplesEvicted.Add(float64(n))
}

// UpdateDriversTracked sets the tracked-driver gauge.
func UpdateDriversTracked(n int) {
	globalManager.driversTracked.Set(float64(n))
}

// UpdateStoreSamples sets the retained-sample gauge.
func UpdateStoreSamples(n int) {
	globalManager.storeSamples.Set(float64(n))
}

// RecordViewRebuild records one view rebuild and its duration.
func RecordViewRebuild(durationMs float64) {
	globalManager.viewRebuilds.Inc()
	globalManager.viewRebuildDuration.Observe(durationMs)
}

// UpdateStintsDerived sets the derived-stint gauge.
func UpdateStintsDerived(n int) {
	globalManager.stintsDerived.Set(float64(n))
}

// UpdateQueueSize sets the feed queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the feed queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
