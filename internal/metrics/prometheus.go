package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Query cache metrics
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	CacheLoads         *prometheus.CounterVec
	CacheLoadErrors    *prometheus.CounterVec
	CacheCancellations prometheus.Counter
	CacheInvalidations prometheus.Counter
	CacheDiscarded     prometheus.Counter
	CacheEntries       prometheus.Gauge

	// Mutation metrics
	MutationsTotal    *prometheus.CounterVec
	MutationRollbacks *prometheus.CounterVec
	MutationDuration  *prometheus.HistogramVec
}

// NewMetrics creates Prometheus metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pa_query_cache_hits_total",
				Help: "Total number of fetches served from fresh cached data",
			},
			[]string{"namespace"},
		),

		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pa_query_cache_misses_total",
				Help: "Total number of fetches that needed the loader",
			},
			[]string{"namespace"},
		),

		CacheLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pa_query_cache_loads_total",
				Help: "Total number of loader invocations",
			},
			[]string{"namespace"},
		),

		CacheLoadErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pa_query_cache_load_errors_total",
				Help: "Total number of failed loader invocations",
			},
			[]string{"namespace"},
		),

		CacheCancellations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pa_query_cache_cancellations_total",
				Help: "Total number of in-flight fetches cancelled",
			},
		),

		CacheInvalidations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pa_query_cache_invalidations_total",
				Help: "Total number of entries marked stale",
			},
		),

		CacheDiscarded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pa_query_cache_discarded_responses_total",
				Help: "Total number of responses dropped because their fetch was cancelled",
			},
		),

		CacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pa_query_cache_entries",
				Help: "Number of entries held by the query cache",
			},
		),

		MutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pa_mutations_total",
				Help: "Total number of mutations by outcome",
			},
			[]string{"mutation", "outcome"},
		),

		MutationRollbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pa_mutation_rollbacks_total",
				Help: "Total number of optimistic updates rolled back",
			},
			[]string{"mutation"},
		),

		MutationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pa_mutation_duration_seconds",
				Help:    "Duration of mutations from optimistic edit to settle",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mutation"},
		),
	}
}
