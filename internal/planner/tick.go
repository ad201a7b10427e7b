package planner

import "math"

// tickBase is the log-price base of the tick grid: price = 1.0001^tick.
const tickBase = 1.0001

var lnTickBase = math.Log(tickBase)

// PriceToTick converts a pool-orientation price to its raw tick via
// floor(ln(price) / ln(1.0001)). Values within floating-point noise of a
// whole tick are treated as exact so that PriceToTick(TickToPrice(t)) == t.
func PriceToTick(price float64) int32 {
	raw := math.Log(price) / lnTickBase
	rounded := math.Round(raw)
	if math.Abs(raw-rounded) < 1e-6 {
		return int32(rounded)
	}
	return int32(math.Floor(raw))
}

// TickToPrice converts a tick back to a pool-orientation price.
func TickToPrice(tick int32) float64 {
	return math.Pow(tickBase, float64(tick))
}

// snapDown aligns a tick to the nearest spacing multiple at or below it.
func snapDown(tick, spacing int32) int32 {
	return int32(math.Floor(float64(tick)/float64(spacing))) * spacing
}

// snapUp aligns a tick to the nearest spacing multiple at or above it.
func snapUp(tick, spacing int32) int32 {
	return int32(math.Ceil(float64(tick)/float64(spacing))) * spacing
}
