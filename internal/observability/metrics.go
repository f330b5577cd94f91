package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	ItemsFetched    *prometheus.CounterVec // labels: source
	FetchFailures   *prometheus.CounterVec // labels: source
	SourcesSkipped  *prometheus.CounterVec // labels: source (unavailable: no credentials or quota)
	EventsPersisted prometheus.Counter
	EventsDropped   prometheus.Counter // unresolved location sentinel
	PersistFailures prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Pass-level metrics.
	PassDuration  prometheus.Histogram
	GroupsPerPass prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,miss,error}
	GeocodeCache    *prometheus.CounterVec // labels: tier={redis,store}, result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ItemsFetched,
		m.FetchFailures,
		m.SourcesSkipped,
		m.EventsPersisted,
		m.EventsDropped,
		m.PersistFailures,
		m.PipelineRunning,
		m.PassDuration,
		m.GroupsPerPass,
		m.GeocodeRequests,
		m.GeocodeCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ItemsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_radar",
			Name:      "items_fetched_total",
			Help:      "Raw items fetched per source adapter.",
		}, []string{"source"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_radar",
			Name:      "fetch_failures_total",
			Help:      "Adapter fetches that failed after retries.",
		}, []string{"source"}),
		SourcesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_radar",
			Name:      "sources_skipped_total",
			Help:      "Adapters skipped because credentials or quota were missing.",
		}, []string{"source"}),
		EventsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_radar",
			Name:      "events_persisted_total",
			Help:      "Canonical events handed to the store.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_radar",
			Name:      "events_dropped_total",
			Help:      "Events discarded for an unresolved location.",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_radar",
			Name:      "persist_failures_total",
			Help:      "Store upsert calls that failed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "event_radar",
			Name:      "pipeline_running",
			Help:      "1 while a pass is executing, 0 otherwise.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "event_radar",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a complete pipeline pass.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		GroupsPerPass: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "event_radar",
			Name:      "groups_per_pass",
			Help:      "Merged groups produced by deduplication per pass.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_radar",
			Name:      "geocode_requests_total",
			Help:      "External geocoder calls by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_radar",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by tier and result.",
		}, []string{"tier", "result"}),
	}
}
