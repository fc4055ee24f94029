// Package metrics provides Prometheus metrics for the fantasy tracker service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the tracker.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring engine metrics
	eventsScored    prometheus.Counter
	scoringErrors   prometheus.Counter
	episodesScored  prometheus.Counter
	sweepRuns       prometheus.Counter
	sweepEvents     prometheus.Counter
	sweepDurationMs prometheus.Histogram

	// Aggregation metrics
	leaderboardBuilds     prometheus.Counter
	leaderboardErrors     prometheus.Counter
	leaderboardDurationMs prometheus.Histogram

	// Suggestion pipeline metrics, labeled by outcome:
	// ok | timeout | upstream_error | unparsable
	suggestionCalls      *prometheus.CounterVec
	suggestionDurationMs prometheus.Histogram

	// Store metrics
	storeQueryLatencyMs prometheus.Histogram

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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tribal",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_scored_total",
		Help:      "Total number of castaway episode events scored",
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of scoring failures",
	})

	m.episodesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "episodes_scored_total",
		Help:      "Total number of full-episode scoring submissions",
	})

	m.sweepRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_sweeps_total",
		Help:      "Total number of season recalculation sweeps",
	})

	m.sweepEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_events_total",
		Help:      "Total number of events recalculated by sweeps",
	})

	m.sweepDurationMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_sweep_duration_milliseconds",
		Help:      "Duration of season recalculation sweeps in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_builds_total",
		Help:      "Total number of leaderboard computations",
	})

	m.leaderboardErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_errors_total",
		Help:      "Total number of leaderboard computation failures",
	})

	m.leaderboardDurationMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_build_duration_milliseconds",
		Help:      "Duration of leaderboard computations in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.suggestionCalls = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "suggestion_calls_total",
			Help:      "Total number of AI suggestion calls by outcome",
		},
		[]string{"outcome"},
	)

	m.suggestionDurationMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "suggestion_duration_milliseconds",
		Help:      "Duration of AI suggestion calls in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeQueryLatencyMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
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

// RecordEventScored increments the scored-events counter.
func RecordEventScored() {
	globalManager.eventsScored.Inc()
}

// RecordScoringError increments the scoring-errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordEpisodeScored increments the full-episode submissions counter.
func RecordEpisodeScored() {
	globalManager.episodesScored.Inc()
}

// RecordSweep records one recalculation sweep and the number of events it touched.
func RecordSweep(events int, durationMs float64) {
	globalManager.sweepRuns.Inc()
	globalManager.sweepEvents.Add(float64(events))
	globalManager.sweepDurationMs.Observe(durationMs)
}

// RecordLeaderboardBuild records one leaderboard computation.
func RecordLeaderboardBuild(durationMs float64) {
	globalManager.leaderboardBuilds.Inc()
	globalManager.leaderboardDurationMs.Observe(durationMs)
}

// RecordLeaderboardError increments the leaderboard-errors counter.
func RecordLeaderboardError() {
	globalManager.leaderboardErrors.Inc()
}

// RecordSuggestionCall records one AI suggestion call with its outcome.
func RecordSuggestionCall(outcome string, durationMs float64) {
	globalManager.suggestionCalls.WithLabelValues(outcome).Inc()
	globalManager.suggestionDurationMs.Observe(durationMs)
}

// RecordStoreQueryLatency records one store query duration.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatencyMs.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
