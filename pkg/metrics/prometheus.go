// Package metrics provides Prometheus metrics for the feature pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the module exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline
	gamesProcessed     prometheus.Counter
	gamesSkipped       *prometheus.CounterVec
	seasonRegressions  prometheus.Counter
	absentFeatures     *prometheus.CounterVec
	orderingViolations prometheus.Counter
	passDuration       prometheus.Histogram
	passesCompleted    *prometheus.CounterVec
	teamsTracked       prometheus.Gauge

	// Stream queue
	queueDepth    prometheus.Gauge
	queueCapacity prometheus.Gauge

	// Weight sweep
	sweepJobs          *prometheus.CounterVec
	sweepWorkersActive prometheus.Gauge

	// Storage
	rowsPersisted prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
	gcPause        prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tipoff",
		subsystem:        "features",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.gamesProcessed = m.counter("games_processed_total", "Games turned into enriched feature rows")
	m.gamesSkipped = m.counterVec("games_skipped_total", "Games dropped without touching engine state", "reason")
	m.seasonRegressions = m.counter("season_regressions_total", "Season-boundary Elo regressions applied")
	m.absentFeatures = m.counterVec("absent_features_total", "Rolling-average features emitted as absent", "side")
	m.orderingViolations = m.counter("ordering_violations_total", "Passes aborted because input went back in time")
	m.passDuration = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pass_duration_seconds",
		Help:        "Wall time of one full pass over a game stream",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
	m.passesCompleted = m.counterVec("passes_total", "Passes finished, by outcome", "outcome")
	m.teamsTracked = m.gauge("teams_tracked", "Teams with live Elo state in the last pass")

	m.queueDepth = m.gauge("queue_depth", "Games waiting in the ordered stream queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the ordered stream queue")

	m.sweepJobs = m.counterVec("sweep_jobs_total", "Weight sweep jobs, by outcome", "outcome")
	m.sweepWorkersActive = m.gauge("sweep_workers_active", "Sweep workers currently running a pass")

	m.rowsPersisted = m.counter("rows_persisted_total", "Feature rows written to the SQLite store")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.memoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.goroutineCount = m.gauge("system_goroutines", "Live goroutines")
	m.gcPause = m.gauge("system_gc_pause_milliseconds", "Average GC pause")
}

// Pipeline.

// RecordGameProcessed counts one enriched row.
func RecordGameProcessed() { globalManager.gamesProcessed.Inc() }

// RecordGameSkipped counts a dropped record.
func RecordGameSkipped(reason string) { globalManager.gamesSkipped.WithLabelValues(reason).Inc() }

// RecordSeasonRegression counts a season-boundary regression.
func RecordSeasonRegression() { globalManager.seasonRegressions.Inc() }

// RecordAbsentFeatures adds n absent rolling features for a side ("home" or "away").
func RecordAbsentFeatures(side string, n int) {
	if n > 0 {
		globalManager.absentFeatures.WithLabelValues(side).Add(float64(n))
	}
}

// RecordOrderingViolation counts an aborted pass.
func RecordOrderingViolation() { globalManager.orderingViolations.Inc() }

// RecordPass records the duration and outcome of a finished pass.
func RecordPass(seconds float64, outcome string) {
	globalManager.passDuration.Observe(seconds)
	globalManager.passesCompleted.WithLabelValues(outcome).Inc()
}

// UpdateTeamsTracked sets the number of teams with Elo state.
func UpdateTeamsTracked(n int) { globalManager.teamsTracked.Set(float64(n)) }

// Queue.

// UpdateQueueDepth sets the number of queued games.
func UpdateQueueDepth(n int) { globalManager.queueDepth.Set(float64(n)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

// Sweep.

// RecordSweepJob counts a finished sweep job.
func RecordSweepJob(outcome string) { globalManager.sweepJobs.WithLabelValues(outcome).Inc() }

// AddSweepWorkersActive adjusts the active sweep worker gauge by delta.
func AddSweepWorkersActive(delta int) { globalManager.sweepWorkersActive.Add(float64(delta)) }

// Storage.

// RecordRowsPersisted adds n persisted rows.
func RecordRowsPersisted(n int) { globalManager.rowsPersisted.Add(float64(n)) }

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.memoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) { globalManager.goroutineCount.Set(float64(n)) }

// RecordSystemGCPauseTime sets the average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) { globalManager.gcPause.Set(ms) }

// GetRegistry returns the custom Prometheus registry used by the package recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
