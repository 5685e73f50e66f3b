// Package metrics provides Prometheus metrics for the teamsplit service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for proposals.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// MillisecondBuckets are the default latency buckets; every latency
// histogram records milliseconds.
var MillisecondBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // bucket layout

// Manager owns every Prometheus collector emitted by teamsplit.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Search metrics
	proposals            *prometheus.CounterVec
	partitionsEnumerated prometheus.Counter
	searchLatency        prometheus.Histogram
	bestScore            prometheus.Gauge
	ties                 prometheus.Histogram
	tieBreakDraws        prometheus.Counter
	rosterSize           prometheus.Gauge

	// History ingestion metrics
	historyLoadLatency prometheus.Histogram
	historyColumns     prometheus.Gauge
	ingestionErrors    *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec
}

var (
	globalMu       sync.RWMutex               //nolint:gochecknoglobals // guards globalManager
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton metrics manager
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /metrics
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "teamsplit",
		subsystem:        "",
		histogramBuckets: MillisecondBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // collector declarations
	reg := m.registry
	if len(m.constLabels) > 0 {
		reg = prometheus.WrapRegistererWith(m.constLabels, reg)
	}
	auto := promauto.With(reg)

	m.proposals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proposals_total",
		Help:      "Total number of team proposals by outcome",
	}, []string{"outcome"})

	m.partitionsEnumerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "partitions_enumerated_total",
		Help:      "Total number of candidate splits scored",
	})

	m.searchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "search_latency_milliseconds",
		Help:      "Histogram of split search latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.bestScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "best_score",
		Help:      "Imbalance of the most recent best split",
	})

	m.ties = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "best_ties",
		Help:      "Number of retained splits tied at the best score",
		Buckets:   prometheus.LinearBuckets(1, 1, 10),
	})

	m.tieBreakDraws = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tiebreak_draws_total",
		Help:      "Total number of seeded tie-break draws",
	})

	m.rosterSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_size",
		Help:      "Number of players in the most recent proposal",
	})

	m.historyLoadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_load_latency_milliseconds",
		Help:      "Histogram of results history load latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.historyColumns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_columns",
		Help:      "Player columns tracked by the last history load",
	})

	m.ingestionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingestion_errors_total",
		Help:      "Total number of history ingestion failures by kind",
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.rateLimited = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter",
	}, []string{"endpoint"})
}

// RecordProposal counts a proposal with the given outcome.
func (m *Manager) RecordProposal(outcome string) {
	m.proposals.WithLabelValues(outcome).Inc()
}

// RecordSearch records one finished split search.
func (m *Manager) RecordSearch(players, combinations, bestScore, ties int, latencyMs float64) {
	m.rosterSize.Set(float64(players))
	m.partitionsEnumerated.Add(float64(combinations))
	m.bestScore.Set(float64(bestScore))
	m.ties.Observe(float64(ties))
	m.searchLatency.Observe(latencyMs)
}

// RecordTieBreak counts a seeded draw.
func (m *Manager) RecordTieBreak() {
	m.tieBreakDraws.Inc()
}

// RecordHistoryLoad records a successful history load.
func (m *Manager) RecordHistoryLoad(columns int, latencyMs float64) {
	m.historyColumns.Set(float64(columns))
	m.historyLoadLatency.Observe(latencyMs)
}

// RecordIngestionError counts a failed history load.
func (m *Manager) RecordIngestionError(kind string) {
	m.ingestionErrors.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest counts an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts an error response.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited counts a request rejected by the limiter.
func (m *Manager) RecordRateLimited(endpoint string) {
	m.rateLimited.WithLabelValues(endpoint).Inc()
}

func global() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// SetGlobal swaps the package-level manager and returns the previous one.
func SetGlobal(m *Manager) *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	prev := globalManager
	globalManager = m
	return prev
}

// RecordProposal counts a proposal on the global manager.
func RecordProposal(outcome string) { global().RecordProposal(outcome) }

// RecordSearch records a finished split search on the global manager.
func RecordSearch(players, combinations, bestScore, ties int, latencyMs float64) {
	global().RecordSearch(players, combinations, bestScore, ties, latencyMs)
}

// RecordTieBreak counts a seeded draw on the global manager.
func RecordTieBreak() { global().RecordTieBreak() }

// RecordHistoryLoad records a history load on the global manager.
func RecordHistoryLoad(columns int, latencyMs float64) { global().RecordHistoryLoad(columns, latencyMs) }

// RecordIngestionError counts an ingestion failure on the global manager.
func RecordIngestionError(kind string) { global().RecordIngestionError(kind) }

// RecordHTTPRequest counts an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	global().RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration observes an HTTP duration on the global manager.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	global().RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint counts an error response on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	global().RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordRateLimited counts a limited request on the global manager.
func RecordRateLimited(endpoint string) { global().RecordRateLimited(endpoint) }

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
