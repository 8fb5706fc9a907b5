// Package metrics defines the Prometheus metric collectors used by the index
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the search server. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	DocsIndexedTotal    prometheus.Counter
	DocsRemovedTotal    *prometheus.CounterVec
	DocsRejectedTotal   *prometheus.CounterVec
	DuplicatesFlagged   prometheus.Counter
	IndexDocCount       prometheus.Gauge
	IndexTermCount      prometheus.Gauge
	SearchQueriesTotal  *prometheus.CounterVec
	SearchLatency       *prometheus.HistogramVec
	SearchResultsCount  prometheus.Histogram
	NoResultRequests    prometheus.Gauge
	RateLimitedRequests prometheus.Counter
	EventsConsumedTotal *prometheus.CounterVec
}

// New creates all collectors and registers them with reg. When reg is nil
// the collectors are created but not registered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents added to the index.",
			},
		),
		DocsRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docs_removed_total",
				Help: "Total documents removed from the index by policy.",
			},
			[]string{"policy"},
		),
		DocsRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docs_rejected_total",
				Help: "Documents rejected on insert by error code.",
			},
			[]string{"code"},
		),
		DuplicatesFlagged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "duplicates_flagged_total",
				Help: "Documents whose term set matched an earlier document.",
			},
		),
		IndexDocCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_document_count",
				Help: "Number of live documents.",
			},
		),
		IndexTermCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_term_count",
				Help: "Number of distinct terms in the inverted index.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, or an error code).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds by execution policy.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"policy"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 10, 25},
			},
		),
		NoResultRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "request_window_no_result_requests",
				Help: "Zero-result queries within the current request window.",
			},
		),
		RateLimitedRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "request_window_rate_limited_total",
				Help: "Queries rejected by the request window admission limit.",
			},
		),
		EventsConsumedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_events_consumed_total",
				Help: "Document events consumed by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.DocsIndexedTotal,
			m.DocsRemovedTotal,
			m.DocsRejectedTotal,
			m.DuplicatesFlagged,
			m.IndexDocCount,
			m.IndexTermCount,
			m.SearchQueriesTotal,
			m.SearchLatency,
			m.SearchResultsCount,
			m.NoResultRequests,
			m.RateLimitedRequests,
			m.EventsConsumedTotal,
		)
	}

	return m
}

// Handler returns the Prometheus scrape HTTP handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a scrape handler for a specific gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
