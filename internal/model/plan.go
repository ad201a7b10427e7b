package model

import "github.com/shopspring/decimal"

// PlannedRange is a tick-aligned, validated price range.
// Invariants: Lower < Upper, both multiples of the pool tick spacing, and the
// current price lies strictly inside the prices the ticks reconstruct.
type PlannedRange struct {
	Lower    int32   `json:"lower"`
	Upper    int32   `json:"upper"`
	WidthPct float64 `json:"width_pct"`
}

// AllocationPlan holds the token amounts to deposit into a planned range.
// Degraded marks the balance-percentage fallback path; callers treat it as a
// distinct, observable mode.
type AllocationPlan struct {
	Amount0  decimal.Decimal `json:"amount0"`
	Amount1  decimal.Decimal `json:"amount1"`
	Degraded bool            `json:"degraded,omitempty"`
}
