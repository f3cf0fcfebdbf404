package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed requests by cache result",
		},
		[]string{"feed", "result"},
	)

	feedAssembleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_assemble_duration_seconds",
			Help:    "Duration of feed assembly on cache miss",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"feed"},
	)

	feedCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_invalidations_total",
			Help: "Total number of feed cache invalidations",
		},
		[]string{"scope"},
	)

	feedCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_errors_total",
			Help: "Total number of cache backend errors treated as misses",
		},
		[]string{"op"},
	)
)
