package insights

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "questionnaire_insights_cache_hits_total",
		Help: "Total insight requests served from the cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "questionnaire_insights_cache_misses_total",
		Help: "Total insight requests that had to be computed.",
	})
	cacheErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "questionnaire_insights_cache_errors_total",
		Help: "Total insight cache backend failures treated as misses.",
	})
	cacheEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "questionnaire_insights_cache_evictions_total",
		Help: "Total insights evicted to make room for another category.",
	})
	computeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "questionnaire_insights_compute_seconds",
		Help:    "Time spent aggregating one category insight.",
		Buckets: prometheus.DefBuckets,
	})
)
