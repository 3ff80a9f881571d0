// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeCached  = "cached"
)

var (
	RoutingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "return_router_runs_total",
			Help: "Total number of recommendation runs",
		},
		[]string{"source", "outcome"},
	)

	RoutingRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "return_router_run_duration_seconds",
			Help:    "Duration of recommendation runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"source"},
	)

	RecommendationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "return_router_recommendations_total",
			Help: "Total number of returns that received a store recommendation",
		},
		[]string{"source"},
	)

	ReturnsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "return_router_dropped_returns_total",
			Help: "Total number of returns skipped because no store stocks the product",
		},
		[]string{"source"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "return_router_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"result"},
	)
)

// ObserveRun records the outcome of one run.
func ObserveRun(source, outcome string, elapsed time.Duration, recommended, dropped int) {
	RoutingRuns.WithLabelValues(source, outcome).Inc()
	if outcome == OutcomeError {
		return
	}
	RoutingRunDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	RecommendationsEmitted.WithLabelValues(source).Add(float64(recommended))
	ReturnsDropped.WithLabelValues(source).Add(float64(dropped))
}

// ObserveCache records a cache hit, miss or error.
func ObserveCache(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}
