// Package advisor decides whether a position should rebalance and proposes
// percentage-based range parameters. Two interchangeable strategies exist: a
// deterministic heuristic with zero external dependencies and an optional
// Gemini-backed strategy that falls back to the heuristic on any failure.
package advisor

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/observability"
)

// Strategy produces a range recommendation from a KPI set.
type Strategy interface {
	Recommend(ctx context.Context, kpis model.KPISet, current model.TickRange, profile model.RiskProfile) (model.RangeRecommendation, error)
}

// Advisor wraps an optional model-backed strategy with the deterministic
// heuristic. Fallback is transparent: callers always get a recommendation of
// the same shape and never see the primary strategy's error.
type Advisor struct {
	primary   Strategy
	heuristic *Heuristic
	logger    *zap.Logger
}

// New builds an Advisor. primary may be nil, in which case only the
// heuristic runs.
func New(primary Strategy, heuristic *Heuristic, logger *zap.Logger) *Advisor {
	if heuristic == nil {
		heuristic = NewHeuristic()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{primary: primary, heuristic: heuristic, logger: logger}
}

// Recommend runs the primary strategy when configured and degrades to the
// heuristic on any error.
func (a *Advisor) Recommend(ctx context.Context, kpis model.KPISet, current model.TickRange, profile model.RiskProfile) (model.RangeRecommendation, error) {
	if a.primary != nil {
		rec, err := a.primary.Recommend(ctx, kpis, current, profile)
		if err == nil {
			return rec, nil
		}
		observability.AdvisorFallbacks.Inc()
		a.logger.Warn("model advisor failed, using heuristic", zap.Error(err))
	}
	return a.heuristic.Recommend(ctx, kpis, current, profile)
}
