// Package metrics defines the Prometheus instruments for the query pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query Pipeline Metrics
var (
	// QueriesTotal tracks sentiment queries by final status (ok/client_error/empty)
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_queries_total",
			Help: "Total sentiment queries by final status",
		},
		[]string{"status"},
	)

	// QueryDuration tracks end-to-end query latency in seconds
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiment_query_duration_seconds",
			Help:    "End-to-end sentiment query duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
	)

	// PostsFound tracks raw posts returned by adapters, per source
	PostsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_posts_found_total",
			Help: "Raw posts returned by source adapters",
		},
		[]string{"source"},
	)

	// PostsDropped tracks posts removed before aggregation, by reason
	PostsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_posts_dropped_total",
			Help: "Posts dropped before aggregation by reason (no_symbol/duplicate/bot/score_error)",
		},
		[]string{"reason"},
	)
)

// Source Adapter Metrics
var (
	// SourceFetchesTotal tracks per-source fetch outcomes
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetches_total",
			Help: "Source fetch outcomes by source and status",
		},
		[]string{"source", "status"},
	)

	// SourceFetchDuration tracks per-source fetch latency in seconds
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Source fetch duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// SourceRetriesTotal tracks transient-error retries per source
	SourceRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_retries_total",
			Help: "Transient-error retries by source",
		},
		[]string{"source"},
	)
)

// Resolver Metrics
var (
	// ResolverCacheHits tracks resolver cache hits
	ResolverCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resolver_cache_hits_total",
			Help: "Resolver cache hits",
		},
	)

	// ResolverCacheMisses tracks resolver cache misses (including expiries)
	ResolverCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resolver_cache_misses_total",
			Help: "Resolver cache misses including expired entries",
		},
	)

	// ResolverLookupsTotal tracks external symbol lookups by outcome
	ResolverLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_lookups_total",
			Help: "External symbol lookups by outcome (ok/not_found/error)",
		},
		[]string{"outcome"},
	)

	// ResolverCacheSize tracks current resolver cache entry count (in-memory only)
	ResolverCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resolver_cache_size",
			Help: "Current resolver cache entry count",
		},
	)

	// ResolverCacheEvictions tracks expired entries removed by the eviction timer
	ResolverCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resolver_cache_evictions_total",
			Help: "Expired resolver cache entries evicted",
		},
	)
)

// Storage Metrics
var (
	// StoreSaveFailures tracks failed post persistence attempts (non-fatal)
	StoreSaveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_save_failures_total",
			Help: "Failed post persistence attempts (logged, non-fatal)",
		},
	)
)
