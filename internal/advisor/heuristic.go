package advisor

import (
	"context"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// Rebalance triggers for the deterministic strategy.
const (
	lowUtilizationPct      = 20.0
	defaultVolatilityLimit = 5.0
	confidenceOnRebalance  = 0.7
	confidenceOnMaintain   = 0.5
)

// Heuristic is the always-available deterministic strategy.
type Heuristic struct {
	// VolatilityLimit is the percentage volatility above which a rebalance
	// is recommended.
	VolatilityLimit float64
}

func NewHeuristic() *Heuristic {
	return &Heuristic{VolatilityLimit: defaultVolatilityLimit}
}

// Recommend never fails: it triggers a rebalance on low utilization or high
// volatility and otherwise maintains, sizing the half-width at the midpoint
// of the risk profile's policy band.
func (h *Heuristic) Recommend(_ context.Context, kpis model.KPISet, _ model.TickRange, profile model.RiskProfile) (model.RangeRecommendation, error) {
	limit := h.VolatilityLimit
	if limit <= 0 {
		limit = defaultVolatilityLimit
	}

	volatility := kpis.Volatility0Pct
	if kpis.Volatility1Pct > volatility {
		volatility = kpis.Volatility1Pct
	}

	minWidth, maxWidth := profile.PolicyBand()
	rec := model.RangeRecommendation{
		Action:       model.ActionMaintain,
		Confidence:   confidenceOnMaintain,
		HalfWidthPct: (minWidth + maxWidth) / 2,
		RiskProfile:  profile,
		Reasoning:    "utilization and volatility within bounds",
	}

	if kpis.UtilizationPct < lowUtilizationPct || volatility > limit {
		rec.Action = model.ActionRebalance
		rec.Confidence = confidenceOnRebalance
		rec.Reasoning = "low utilization or elevated volatility"
	}

	return rec, nil
}
