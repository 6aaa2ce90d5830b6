package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "benchly",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "benchly",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"})

	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "benchly",
		Name:      "upstream_requests_total",
		Help:      "Calls to the media catalog by operation and outcome.",
	}, []string{"operation", "outcome"})

	UpstreamRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "benchly",
		Name:      "upstream_request_duration_seconds",
		Help:      "Media catalog call duration in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"operation"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "benchly",
		Name:      "search_cache_hits_total",
		Help:      "Searches answered from a fresh cache entry.",
	})

	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "benchly",
		Name:      "search_cache_misses_total",
		Help:      "Searches that had to go upstream, by reason (absent, stale, error).",
	}, []string{"reason"})

	CacheWriteErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "benchly",
		Name:      "search_cache_write_errors_total",
		Help:      "Failed cache upserts.",
	})

	EnrichmentDropsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "benchly",
		Name:      "enrichment_dropped_items_total",
		Help:      "Items dropped because their metadata could not be parsed.",
	})

	TextModelRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "benchly",
		Name:      "text_model_requests_total",
		Help:      "Language model calls by model and outcome.",
	}, []string{"model", "outcome"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheWriteErrorsTotal,
		EnrichmentDropsTotal,
		TextModelRequestsTotal,
	)
}
