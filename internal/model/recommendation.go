package model

import "fmt"

// Action is the advisor's verdict for a position.
type Action string

const (
	ActionRebalance Action = "rebalance"
	ActionMaintain  Action = "maintain"
	ActionWithdraw  Action = "withdraw"
)

// RiskProfile selects the half-width policy band.
type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskMedium       RiskProfile = "medium"
	RiskAggressive   RiskProfile = "aggressive"
)

// ParseRiskProfile validates a configured risk profile string.
func ParseRiskProfile(s string) (RiskProfile, error) {
	switch RiskProfile(s) {
	case RiskConservative, RiskMedium, RiskAggressive:
		return RiskProfile(s), nil
	}
	return "", fmt.Errorf("unknown risk profile %q", s)
}

// PolicyBand returns the allowed half-width percentage band for a profile.
func (p RiskProfile) PolicyBand() (min, max float64) {
	switch p {
	case RiskConservative:
		return 2, 5
	case RiskAggressive:
		return 10, 20
	default:
		return 5, 10
	}
}

// RangeRecommendation is the advisor output. Half-width and center-skew are
// percentage-based and advisory only; the planner validates them.
type RangeRecommendation struct {
	Action        Action      `json:"action"`
	Confidence    float64     `json:"confidence"`
	HalfWidthPct  float64     `json:"half_width_pct"`
	CenterSkewPct float64     `json:"center_skew_pct"`
	RiskProfile   RiskProfile `json:"risk_profile"`
	Reasoning     string      `json:"reasoning,omitempty"`
}
