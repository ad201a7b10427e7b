// Package planner converts percentage-based range parameters into a
// tick-aligned, validated price range.
package planner

import (
	"fmt"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// Global policy bounds on the realized range width after tick snapping.
const (
	MinWidthPct = 1.0
	MaxWidthPct = 25.0
)

// Defensive clamp for the requested half-width percentage.
const (
	minHalfWidthPct = 0.1
	maxHalfWidthPct = 50.0
)

// BuildRange turns a half-width/center-skew recommendation into a snapped
// tick range around currentPrice. currentPrice is in human orientation
// (token0 quoted in token1); pool ticks encode the reciprocal, so bounds are
// flipped before tick conversion.
//
// Every caller goes through the same round-trip validation, advisor output
// included, because snapping can silently move a boundary past the current
// price.
func BuildRange(currentPrice, halfWidthPct, centerSkewPct float64, tickSpacing int32) (model.PlannedRange, error) {
	if currentPrice <= 0 {
		return model.PlannedRange{}, fmt.Errorf("%w: current price must be positive, got %v", model.ErrInvalidRange, currentPrice)
	}
	if tickSpacing <= 0 {
		return model.PlannedRange{}, fmt.Errorf("%w: tick spacing must be positive, got %d", model.ErrInvalidRange, tickSpacing)
	}

	if halfWidthPct < minHalfWidthPct {
		halfWidthPct = minHalfWidthPct
	}
	if halfWidthPct > maxHalfWidthPct {
		halfWidthPct = maxHalfWidthPct
	}
	halfWidth := halfWidthPct / 100

	center := currentPrice * (1 + centerSkewPct/100)
	lowerBound := center * (1 - halfWidth)
	upperBound := center * (1 + halfWidth)
	if lowerBound <= 0 {
		return model.PlannedRange{}, fmt.Errorf("%w: lower bound collapsed to %v", model.ErrInvalidRange, lowerBound)
	}

	// Human orientation is token0-in-token1; the pool tick grid encodes
	// token1-per-token0, so the bounds swap under the reciprocal.
	poolLower := 1 / upperBound
	poolUpper := 1 / lowerBound

	rawLower := PriceToTick(poolLower)
	rawUpper := PriceToTick(poolUpper)
	if rawLower >= rawUpper {
		return model.PlannedRange{}, fmt.Errorf("%w: range collapsed (ticks %d..%d)", model.ErrInvalidRange, rawLower, rawUpper)
	}

	lowerTick := snapDown(rawLower, tickSpacing)
	upperTick := snapUp(rawUpper, tickSpacing)
	if lowerTick >= upperTick {
		return model.PlannedRange{}, fmt.Errorf("%w: range collapsed after snapping (ticks %d..%d)", model.ErrInvalidRange, lowerTick, upperTick)
	}

	// Round-trip check against the snapped ticks, back in human orientation.
	snappedUpperPrice := 1 / TickToPrice(lowerTick)
	snappedLowerPrice := 1 / TickToPrice(upperTick)
	if currentPrice <= snappedLowerPrice || currentPrice >= snappedUpperPrice {
		return model.PlannedRange{}, fmt.Errorf("%w: current price %v outside snapped bounds [%v, %v]",
			model.ErrInvalidRange, currentPrice, snappedLowerPrice, snappedUpperPrice)
	}

	widthPct := (snappedUpperPrice - snappedLowerPrice) / currentPrice * 100
	if widthPct < MinWidthPct || widthPct > MaxWidthPct {
		return model.PlannedRange{}, fmt.Errorf("%w: realized width %.2f%% outside [%v%%, %v%%]",
			model.ErrInvalidRange, widthPct, MinWidthPct, MaxWidthPct)
	}

	return model.PlannedRange{
		Lower:    lowerTick,
		Upper:    upperTick,
		WidthPct: widthPct,
	}, nil
}
