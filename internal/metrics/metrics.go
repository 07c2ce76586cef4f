package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookhub_catalog_requests_total",
		Help: "Requests sent to the book catalog",
	}, []string{"operation", "status"})

	CatalogRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookhub_catalog_request_duration_seconds",
		Help:    "Latency of book catalog requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookhub_catalog_cache_total",
		Help: "Catalog volume cache lookups",
	}, []string{"result"})

	FeedBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookhub_feed_build_seconds",
		Help:    "Time to compose an activity feed",
		Buckets: prometheus.DefBuckets,
	})

	ActivityUpsertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookhub_activity_upserts_total",
		Help: "Activity record writes",
	}, []string{"action"})

	MaskedFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookhub_masked_failures_total",
		Help: "Failures masked inside fan-outs instead of failing the request",
	}, []string{"component"})
)

// MustRegister registers every collector.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CatalogRequestsTotal,
		CatalogRequestDuration,
		CatalogCacheTotal,
		FeedBuildSeconds,
		ActivityUpsertsTotal,
		MaskedFailuresTotal,
	)
}

// Handler serves the given gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
