package analytics

import (
	"math"
	"sort"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// liquidityShares normalizes each nonzero tick's absolute liquidity by the
// total. Returns nil shares when there is no liquidity.
func liquidityShares(ticks []model.TickLiquidity) ([]float64, float64) {
	var total float64
	for _, tick := range ticks {
		total += math.Abs(tick.LiquidityNet)
	}
	if total <= 0 {
		return nil, 0
	}

	shares := make([]float64, 0, len(ticks))
	for _, tick := range ticks {
		liq := math.Abs(tick.LiquidityNet)
		if liq == 0 {
			continue
		}
		shares = append(shares, liq/total)
	}
	return shares, total
}

// herfindahl is the Herfindahl-Hirschman index: the sum of squared shares.
func herfindahl(shares []float64) float64 {
	var hhi float64
	for _, share := range shares {
		hhi += share * share
	}
	return hhi
}

// gini computes the Gini coefficient via the sorted cumulative-share formula.
func gini(shares []float64) float64 {
	n := len(shares)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, shares)
	sort.Float64s(sorted)

	var sum, weighted float64
	for i, share := range sorted {
		sum += share
		weighted += float64(i+1) * share
	}
	if sum == 0 {
		return 0
	}
	return (2*weighted)/(float64(n)*sum) - float64(n+1)/float64(n)
}

// topTickShare is the liquidity fraction held by the largest 10% of active
// ticks (at least one tick).
func topTickShare(shares []float64) float64 {
	n := len(shares)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, shares)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	topCount := n / 10
	if topCount == 0 {
		topCount = 1
	}

	var top float64
	for _, share := range sorted[:topCount] {
		top += share
	}
	return top
}
