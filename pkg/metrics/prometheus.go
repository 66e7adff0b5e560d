package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the batch processing metrics. A nil *Manager is valid and
// records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	matchesProcessed prometheus.Counter
	matchesFailed    *prometheus.CounterVec
	matchDuration    prometheus.Histogram
	rowsEmitted      prometheus.Counter
	eventsCleaned    prometheus.Counter
	eventsFetched    prometheus.Counter
	runsCompleted    prometheus.Counter
	inFlight         prometheus.Gauge
}

// Default buckets in seconds; a match takes milliseconds locally and
// seconds over HTTP.
var defaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// NewManager creates a metrics manager. Without WithRegistry it uses a fresh
// registry rather than the process default so Go runtime collectors stay out.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fbmetrics",
		subsystem:        "batch",
		histogramBuckets: defaultBuckets,
		enabled:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_processed_total",
		Help:      "Total number of matches analysed successfully",
	})
	m.matchesFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_failed_total",
		Help:      "Total number of matches skipped after an error",
	}, []string{"stage"})
	m.matchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_duration_seconds",
		Help:      "Time to fetch and analyse one match",
		Buckets:   m.histogramBuckets,
	})
	m.rowsEmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_emitted_total",
		Help:      "Total number of flattened team rows produced",
	})
	m.eventsCleaned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_cleaned_total",
		Help:      "Total number of events removed by the cleaner",
	})
	m.eventsFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_fetched_total",
		Help:      "Total number of raw events read from the source",
	})
	m.runsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_completed_total",
		Help:      "Total number of batch runs finished",
	})
	m.inFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_in_flight",
		Help:      "Matches currently being processed",
	})
}

func (m *Manager) on() bool { return m != nil && m.enabled }

// RecordMatch records one successfully analysed match.
func (m *Manager) RecordMatch(d time.Duration, rawEvents, cleaned, rows int) {
	if !m.on() {
		return
	}
	m.matchesProcessed.Inc()
	m.matchDuration.Observe(d.Seconds())
	m.eventsFetched.Add(float64(rawEvents))
	m.eventsCleaned.Add(float64(rawEvents - cleaned))
	m.rowsEmitted.Add(float64(rows))
}

// RecordFailure records a skipped match; stage is "fetch", "analyze" or "panic".
func (m *Manager) RecordFailure(stage string) {
	if !m.on() {
		return
	}
	m.matchesFailed.WithLabelValues(stage).Inc()
}

// MatchStarted and MatchFinished bracket one in-flight match.
func (m *Manager) MatchStarted() {
	if m.on() {
		m.inFlight.Inc()
	}
}

func (m *Manager) MatchFinished() {
	if m.on() {
		m.inFlight.Dec()
	}
}

// RecordRun records a finished batch run.
func (m *Manager) RecordRun() {
	if m.on() {
		m.runsCompleted.Inc()
	}
}

// Registry returns the registry the metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the manager's registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
