package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricPrefix = "explorer_"

var BackendQueries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "backend_queries_total",
		Help: "Number of queries issued to the tabular backend.",
	},
	[]string{"operation", "table"},
)

var CacheHits = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: MetricPrefix + "cache_hits_total",
		Help: "Number of query-cache lookups served from a valid cached entry.",
	},
)

var CacheMisses = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: MetricPrefix + "cache_misses_total",
		Help: "Number of query-cache lookups that required a backend call.",
	},
)
