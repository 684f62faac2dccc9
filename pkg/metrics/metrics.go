// Package metrics exposes Prometheus metrics for the call-traffic pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the application's own prometheus registry; the default global
// registry is not used.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// EventsGenerated counts synthetic call events written by seed runs.
var EventsGenerated = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callcenter",
	Name:      "events_generated_total",
	Help:      "Total number of synthetic call events generated",
})

// SeedRuns counts finished per-center seed runs, success or failure.
var SeedRuns = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callcenter",
	Name:      "seed_runs_total",
	Help:      "Total number of per-center seed runs",
})

// SeedFailures counts per-center seed runs that ended in error.
var SeedFailures = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callcenter",
	Name:      "seed_failures_total",
	Help:      "Total number of failed per-center seed runs",
})

// IngestedCalls counts real call events accepted by the ingest webhook.
var IngestedCalls = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callcenter",
	Name:      "ingested_calls_total",
	Help:      "Total number of real call events accepted via ingest",
})

// AggregateDuration observes wall time of dashboard aggregations.
var AggregateDuration = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "callcenter",
	Name:      "aggregate_duration_seconds",
	Help:      "Duration of dashboard aggregation requests",
	Buckets:   prometheus.DefBuckets,
})

// AggregateCacheHits counts aggregate results served from the redis cache.
var AggregateCacheHits = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callcenter",
	Name:      "aggregate_cache_hits_total",
	Help:      "Total number of aggregate results served from cache",
})
