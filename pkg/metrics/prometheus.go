// Package metrics provides Prometheus metrics for the aggregation engine.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBuckets covers chunk folds and merges, in milliseconds.
var latencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics of the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Throughput
	bytesProcessed  prometheus.Counter
	linesProcessed  prometheus.Counter
	chunksProcessed prometheus.Counter
	runsTotal       *prometheus.CounterVec

	// Latency
	chunkFoldLatency prometheus.Histogram
	mergeLatency     prometheus.Histogram
	runDuration      prometheus.Histogram

	// Sizing
	inputBytes    prometheus.Gauge
	chunkCount    prometheus.Gauge
	stationCount  prometheus.Gauge
	workerCount   prometheus.Gauge
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge

	// HTTP status endpoint
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to keep the exported set small and predictable.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "brc",
		subsystem:        "engine",
		histogramBuckets: latencyBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.bytesProcessed = m.counter("bytes_processed_total", "Input bytes folded by workers")
	m.linesProcessed = m.counter("lines_processed_total", "Records ingested into aggregate maps")
	m.chunksProcessed = m.counter("chunks_processed_total", "Line-aligned chunks folded")
	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("runs_total"),
		Help: "Aggregation runs by outcome", ConstLabels: m.customLabels,
	}, []string{"outcome"})

	m.chunkFoldLatency = m.histogram("chunk_fold_latency_milliseconds", "Time to fold one chunk")
	m.mergeLatency = m.histogram("merge_latency_milliseconds", "Time to merge one partial map into the result")
	m.runDuration = m.histogram("run_duration_milliseconds", "Wall time of a whole aggregation run")

	m.inputBytes = m.gauge("input_bytes", "Size of the current input buffer")
	m.chunkCount = m.gauge("chunk_count", "Chunks the current input was split into")
	m.stationCount = m.gauge("station_count", "Distinct stations in the last result")
	m.workerCount = m.gauge("worker_count", "Fold workers of the current run")
	m.queueSize = m.gauge("queue_size", "Chunks waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the chunk queue")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_requests_total"),
		Help: "Status endpoint requests", ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_request_duration_milliseconds"),
		Help: "Status endpoint latency", ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("errors_total"),
		Help: "Errors by component and type", ConstLabels: m.customLabels,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Live goroutines")
}

// RecordChunk accounts one folded chunk.
func (m *Manager) RecordChunk(bytes, lines int, latency time.Duration) {
	if !m.enabled {
		return
	}
	m.chunksProcessed.Inc()
	m.bytesProcessed.Add(float64(bytes))
	m.linesProcessed.Add(float64(lines))
	m.chunkFoldLatency.Observe(ms(latency))
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// Package-level recorders backed by the global manager.

// RecordChunk accounts one folded chunk.
func RecordChunk(bytes, lines int, latency time.Duration) {
	globalManager.RecordChunk(bytes, lines, latency)
}

// RecordMergeLatency observes one partial-map merge.
func RecordMergeLatency(latency time.Duration) {
	globalManager.mergeLatency.Observe(ms(latency))
}

// RecordRun observes a finished run; outcome is "ok" or "error".
func RecordRun(outcome string, duration time.Duration) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(ms(duration))
}

// UpdateInputBytes sets the input size gauge.
func UpdateInputBytes(n int) { globalManager.inputBytes.Set(float64(n)) }

// UpdateChunkCount sets the chunk count gauge.
func UpdateChunkCount(n int) { globalManager.chunkCount.Set(float64(n)) }

// UpdateStationCount sets the station count gauge.
func UpdateStationCount(n int) { globalManager.stationCount.Set(float64(n)) }

// UpdateWorkerCount sets the worker count gauge.
func UpdateWorkerCount(n int) { globalManager.workerCount.Set(float64(n)) }

// UpdateQueueSize sets the queued chunk gauge.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

// RecordHTTPRequest counts one status endpoint request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one status endpoint request.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry all package-level metrics live in.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the registry in text exposition format, e.g. for the
// node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}
