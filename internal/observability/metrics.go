// Package observability exposes prometheus metrics for the rebalancing
// engine. Degraded-mode paths (advisor fallback, balance-percentage
// allocation) must be visible here so they are distinguishable from the
// primary paths.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdvisorFallbacks counts model-backed advisor failures that fell back
	// to the deterministic heuristic.
	AdvisorFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rebalancer_advisor_fallback_total",
		Help: "Model-backed advisor failures that fell back to the heuristic strategy",
	})

	// AllocatorFallbacks counts balance-percentage allocations taken because
	// the liquidity-math path was invalid.
	AllocatorFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rebalancer_allocator_fallback_total",
		Help: "Degraded balance-percentage allocations (liquidity math unavailable)",
	})

	// PositionsProcessed counts per-position outcomes by result label.
	PositionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rebalancer_positions_processed_total",
		Help: "Per-position workflow outcomes",
	}, []string{"outcome"})

	// CycleDuration observes full monitoring-cycle durations.
	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rebalancer_cycle_duration_seconds",
		Help:    "Duration of one full rebalance cycle",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	// NotifyFailures counts best-effort notification errors (logged only).
	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rebalancer_notify_failures_total",
		Help: "Notification delivery failures (never escalated)",
	})
)

// RecordOutcome increments the per-position outcome counter.
func RecordOutcome(success bool) {
	if success {
		PositionsProcessed.WithLabelValues("success").Inc()
		return
	}
	PositionsProcessed.WithLabelValues("failure").Inc()
}
