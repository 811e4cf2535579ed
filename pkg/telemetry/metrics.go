package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the SkiSpot service.
type Metrics struct {
	config MetricsConfig

	// Search metrics
	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	searchStage    *prometheus.HistogramVec
	searchResults  prometheus.Histogram

	// Scrape metrics
	scrapeRuns      *prometheus.CounterVec
	scrapeDuration  prometheus.Histogram
	resortsUpserted *prometheus.CounterVec
	resortsCached   prometheus.Gauge

	// Upstream client metrics
	upstreamCalls    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec

	// Geocode cache metrics
	geocodeCache *prometheus.CounterVec

	// HTTP server metrics
	httpRequests *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of resort searches",
			},
			[]string{"priority", "status"},
		),
		searchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Duration of resort searches in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),
		searchStage: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_stage_duration_seconds",
				Help:      "Duration of individual search pipeline stages in seconds",
				Buckets:   buckets,
			},
			[]string{"stage"},
		),
		searchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results",
				Help:      "Number of resorts returned per search",
				Buckets:   []float64{0, 1, 2, 5, 10},
			},
		),

		scrapeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scrape_runs_total",
				Help:      "Total number of scrape runs",
			},
			[]string{"status"},
		),
		scrapeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scrape_duration_seconds",
				Help:      "Duration of full scrape runs in seconds",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		resortsUpserted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resorts_upserted_total",
				Help:      "Total number of resort records upserted by the scraper",
			},
			[]string{"state"},
		),
		resortsCached: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "resorts_cached",
				Help:      "Current number of resorts in the cache",
			},
		),

		upstreamCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_calls_total",
				Help:      "Total number of upstream API calls",
			},
			[]string{"service", "operation"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_call_duration_seconds",
				Help:      "Duration of upstream API calls in seconds",
				Buckets:   buckets,
			},
			[]string{"service", "operation"},
		),
		upstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream API errors",
			},
			[]string{"service", "operation"},
		),

		geocodeCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "geocode_cache_total",
				Help:      "Geocode cache lookups by outcome",
			},
			[]string{"outcome"},
		),

		httpRequests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   buckets,
			},
			[]string{"route", "status"},
		),
	}

	registry.MustRegister(
		m.searches,
		m.searchDuration,
		m.searchStage,
		m.searchResults,
		m.scrapeRuns,
		m.scrapeDuration,
		m.resortsUpserted,
		m.resortsCached,
		m.upstreamCalls,
		m.upstreamDuration,
		m.upstreamErrors,
		m.geocodeCache,
		m.httpRequests,
	)

	return m, nil
}

// RecordSearch records a completed search with its priority, status, and duration.
func (m *Metrics) RecordSearch(priority, status string, duration time.Duration, results int) {
	if m.searches == nil {
		return
	}
	m.searches.WithLabelValues(priority, status).Inc()
	m.searchDuration.WithLabelValues(status).Observe(duration.Seconds())
	if status == "ok" {
		m.searchResults.Observe(float64(results))
	}
}

// RecordSearchStage records the duration of a single search pipeline stage.
func (m *Metrics) RecordSearchStage(stage string, duration time.Duration) {
	if m.searchStage == nil {
		return
	}
	m.searchStage.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordScrapeRun records a completed scrape run.
func (m *Metrics) RecordScrapeRun(status string, duration time.Duration) {
	if m.scrapeRuns == nil {
		return
	}
	m.scrapeRuns.WithLabelValues(status).Inc()
	m.scrapeDuration.Observe(duration.Seconds())
}

// RecordResortsUpserted adds to the per-state upsert counter.
func (m *Metrics) RecordResortsUpserted(state string, count int) {
	if m.resortsUpserted == nil {
		return
	}
	m.resortsUpserted.WithLabelValues(state).Add(float64(count))
}

// SetResortsCached sets the current cached resort count.
func (m *Metrics) SetResortsCached(count float64) {
	if m.resortsCached == nil {
		return
	}
	m.resortsCached.Set(count)
}

// RecordUpstreamCall records an upstream API call with its duration.
func (m *Metrics) RecordUpstreamCall(service, operation string, duration time.Duration) {
	if m.upstreamCalls == nil {
		return
	}
	m.upstreamCalls.WithLabelValues(service, operation).Inc()
	m.upstreamDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordUpstreamError records an upstream API error.
func (m *Metrics) RecordUpstreamError(service, operation string) {
	if m.upstreamErrors == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(service, operation).Inc()
}

// RecordGeocodeCache records a geocode cache lookup outcome (hit, miss, expired).
func (m *Metrics) RecordGeocodeCache(outcome string) {
	if m.geocodeCache == nil {
		return
	}
	m.geocodeCache.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records an HTTP request duration by route and status.
func (m *Metrics) RecordHTTPRequest(route, status string, duration time.Duration) {
	if m.httpRequests == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, status).Observe(duration.Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Path returns the configured metrics path.
func (m *Metrics) Path() string {
	if m.config.Path == "" {
		return "/metrics"
	}
	return m.config.Path
}

// Enabled reports whether metrics collection is active.
func (m *Metrics) Enabled() bool {
	return m.registry != nil
}
