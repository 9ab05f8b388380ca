// Package metrics provides Prometheus metrics for the elocompare service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch kinds.
const (
	KindRoster  = "roster"
	KindHistory = "history"
)

// Fetch outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeEmpty        = "empty"
	OutcomeNetworkError = "network_error"
	OutcomeAPIError     = "api_error"
	OutcomeSkipped      = "skipped"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Upstream rating API
	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	rosterSize   prometheus.Gauge

	// User actions
	viewActions  *prometheus.CounterVec
	clearActions prometheus.Counter
	messages     *prometheus.CounterVec

	// Chart lifecycle
	chartsCreated   prometheus.Counter
	chartsDestroyed prometheus.Counter
	chartsLive      prometheus.Gauge
	chartErrors     prometheus.Counter
	renderLatency   prometheus.Histogram

	// Action loop
	actionQueueSize     prometheus.Gauge
	actionQueueRejected prometheus.Counter
	actionLatency       *prometheus.HistogramVec

	// Process
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "elocompare",
		subsystem:        "viewer",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
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

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.fetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetches_total"),
		Help:        "Upstream rating API fetches by kind and outcome",
		ConstLabels: labels,
	}, []string{"kind", "outcome"})

	m.fetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_latency_milliseconds"),
		Help:        "Upstream rating API latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"kind"})

	m.rosterSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("roster_entities"),
		Help:        "Number of selectable entities loaded from the roster",
		ConstLabels: labels,
	})

	m.viewActions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("view_actions_total"),
		Help:        "View actions by result",
		ConstLabels: labels,
	}, []string{"result"})

	m.clearActions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("clear_actions_total"),
		Help:        "Clear actions handled",
		ConstLabels: labels,
	})

	m.messages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("user_messages_total"),
		Help:        "User-facing messages by level",
		ConstLabels: labels,
	}, []string{"level"})

	m.chartsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("charts_created_total"),
		Help:        "Chart instances created",
		ConstLabels: labels,
	})

	m.chartsDestroyed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("charts_destroyed_total"),
		Help:        "Chart instances destroyed",
		ConstLabels: labels,
	})

	m.chartsLive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("charts_live"),
		Help:        "Live chart instances (0 or 1)",
		ConstLabels: labels,
	})

	m.chartErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("chart_errors_total"),
		Help:        "Chart creation or rendering failures",
		ConstLabels: labels,
	})

	m.renderLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("chart_render_latency_milliseconds"),
		Help:        "Time spent rasterizing a chart image",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.actionQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("action_queue_size"),
		Help:        "Pending actions on the action loop",
		ConstLabels: labels,
	})

	m.actionQueueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("action_queue_rejected_total"),
		Help:        "Actions rejected because the loop was full or stopped",
		ConstLabels: labels,
	})

	m.actionLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("action_latency_milliseconds"),
		Help:        "Time spent handling an action on the loop",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"action"})

	m.systemMemory = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_bytes"),
		Help:        "Heap bytes allocated",
		ConstLabels: labels,
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutines"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPause = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_milliseconds"),
		Help:        "Average GC pause in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "HTTP requests by endpoint, method and status",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_errors_total"),
		Help:        "HTTP errors by endpoint, method and error type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})
}

// RecordFetch counts one upstream fetch and its latency. Skipped fetches
// never reach the network and carry no latency.
func RecordFetch(kind, outcome string, latencyMs float64) {
	globalManager.fetches.WithLabelValues(kind, outcome).Inc()
	if outcome != OutcomeSkipped {
		globalManager.fetchLatency.WithLabelValues(kind).Observe(latencyMs)
	}
}

// UpdateRosterSize sets the number of loaded roster entities.
func UpdateRosterSize(n int) {
	globalManager.rosterSize.Set(float64(n))
}

// RecordViewAction counts a view action by result.
func RecordViewAction(result string) {
	globalManager.viewActions.WithLabelValues(result).Inc()
}

// RecordClearAction counts a clear action.
func RecordClearAction() {
	globalManager.clearActions.Inc()
}

// RecordMessage counts a user-facing message.
func RecordMessage(level string) {
	globalManager.messages.WithLabelValues(level).Inc()
}

// RecordChartCreated counts a new chart instance and marks it live.
func RecordChartCreated() {
	globalManager.chartsCreated.Inc()
	globalManager.chartsLive.Set(1)
}

// RecordChartDestroyed counts a released chart instance.
func RecordChartDestroyed() {
	globalManager.chartsDestroyed.Inc()
	globalManager.chartsLive.Set(0)
}

// RecordChartError counts a chart creation or rendering failure.
func RecordChartError() {
	globalManager.chartErrors.Inc()
}

// RecordRenderLatency records image rendering time.
func RecordRenderLatency(latencyMs float64) {
	globalManager.renderLatency.Observe(latencyMs)
}

// UpdateActionQueueSize sets the number of pending actions.
func UpdateActionQueueSize(n int) {
	globalManager.actionQueueSize.Set(float64(n))
}

// RecordActionRejected counts an action the loop refused.
func RecordActionRejected() {
	globalManager.actionQueueRejected.Inc()
}

// RecordActionLatency records time spent handling one action.
func RecordActionLatency(action string, latencyMs float64) {
	globalManager.actionLatency.WithLabelValues(action).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemory.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPause.Observe(ms)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
