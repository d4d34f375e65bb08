package generic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// planCacheLookups counts plan cache lookups by operation and result.
	planCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hybrid_plan_cache_lookups_total",
		Help: "Plan cache lookups by operation and result (hit, miss, error)",
	}, []string{"operation", "result"})

	// planBuildDuration tracks how long building a param takes.
	planBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hybrid_plan_build_duration_seconds",
		Help:    "Time spent resolving types and building plans",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1us to ~260ms
	}, []string{"operation"})

	// planCacheEntries tracks the number of cached params.
	planCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hybrid_plan_cache_entries",
		Help: "Number of params held by plan caches",
	})
)
