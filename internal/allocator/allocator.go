// Package allocator computes the token amounts to deposit into a planned
// range given the current price and the wallet's available balances.
package allocator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/observability"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/planner"
)

const (
	// singleSidedFactor is applied when the price sits outside the range and
	// only one token is deposited.
	singleSidedFactor = 0.99

	// safetyMargin shaves both amounts in the in-range regime so the supply
	// transaction cannot overdraw on rounding.
	safetyMargin = 0.995

	// fallbackFactor sizes the degraded balance-percentage allocation.
	fallbackFactor = 0.95
)

// Allocate splits available balances across the planned range. currentPrice
// is in human orientation (token0 quoted in token1); the sqrt-price math runs
// in pool orientation. Neither returned amount ever exceeds its available
// balance.
func Allocate(currentPrice float64, planned model.PlannedRange, available0, available1 decimal.Decimal) (model.AllocationPlan, error) {
	if currentPrice <= 0 {
		return model.AllocationPlan{}, fmt.Errorf("current price must be positive, got %v", currentPrice)
	}

	sqrtPrice := math.Sqrt(1 / currentPrice)
	sqrtLower := math.Sqrt(planner.TickToPrice(planned.Lower))
	sqrtUpper := math.Sqrt(planner.TickToPrice(planned.Upper))

	if !validBounds(sqrtPrice, sqrtLower, sqrtUpper) {
		return allocateByBalancePercent(available0, available1), nil
	}

	switch {
	case sqrtPrice <= sqrtLower:
		return capToAvailable(model.AllocationPlan{
			Amount0: mulFloat(available0, singleSidedFactor),
			Amount1: decimal.Zero,
		}, available0, available1), nil

	case sqrtPrice >= sqrtUpper:
		return capToAvailable(model.AllocationPlan{
			Amount0: decimal.Zero,
			Amount1: mulFloat(available1, singleSidedFactor),
		}, available0, available1), nil
	}

	// In-range: ratio of amount0 to amount1 implied by equal liquidity at
	// the planned bounds.
	ratio := (sqrtUpper - sqrtPrice) / (sqrtUpper * sqrtPrice * (sqrtPrice - sqrtLower))
	if !isFinite(ratio) || ratio <= 0 {
		return allocateByBalancePercent(available0, available1), nil
	}

	ratioDec := decimal.NewFromFloat(ratio)
	var amount0, amount1 decimal.Decimal
	if available0.LessThan(available1.Mul(ratioDec)) {
		// token0 is the binding constraint
		amount0 = available0
		amount1 = available0.Div(ratioDec)
	} else {
		amount1 = available1
		amount0 = available1.Mul(ratioDec)
	}

	plan := model.AllocationPlan{
		Amount0: mulFloat(amount0, safetyMargin),
		Amount1: mulFloat(amount1, safetyMargin),
	}
	return capToAvailable(plan, available0, available1), nil
}

// allocateByBalancePercent is the degraded sizing mode used only when the
// liquidity math is unusable. It is flagged on the plan and counted so the
// observability layer can tell it apart from the primary path.
func allocateByBalancePercent(available0, available1 decimal.Decimal) model.AllocationPlan {
	observability.AllocatorFallbacks.Inc()
	return model.AllocationPlan{
		Amount0:  mulFloat(available0, fallbackFactor),
		Amount1:  mulFloat(available1, fallbackFactor),
		Degraded: true,
	}
}

func capToAvailable(plan model.AllocationPlan, available0, available1 decimal.Decimal) model.AllocationPlan {
	if plan.Amount0.GreaterThan(available0) {
		plan.Amount0 = available0
	}
	if plan.Amount1.GreaterThan(available1) {
		plan.Amount1 = available1
	}
	if plan.Amount0.IsNegative() {
		plan.Amount0 = decimal.Zero
	}
	if plan.Amount1.IsNegative() {
		plan.Amount1 = decimal.Zero
	}
	return plan
}

func validBounds(sqrtPrice, sqrtLower, sqrtUpper float64) bool {
	if !isFinite(sqrtPrice) || !isFinite(sqrtLower) || !isFinite(sqrtUpper) {
		return false
	}
	return sqrtPrice > 0 && sqrtLower > 0 && sqrtUpper > sqrtLower
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func mulFloat(d decimal.Decimal, f float64) decimal.Decimal {
	return d.Mul(decimal.NewFromFloat(f))
}
