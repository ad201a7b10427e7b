package analytics

import (
	"testing"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

func TestLiquidityShares(t *testing.T) {
	ticks := []model.TickLiquidity{
		{TickIndex: -10, LiquidityNet: 100},
		{TickIndex: 0, LiquidityNet: 0},
		{TickIndex: 10, LiquidityNet: -300},
	}

	shares, total := liquidityShares(ticks)
	if !almostEqual(total, 400, 1e-9) {
		t.Fatalf("expected total 400, got %v", total)
	}
	if len(shares) != 2 {
		t.Fatalf("zero-liquidity ticks must be dropped, got %d shares", len(shares))
	}
	if !almostEqual(shares[0], 0.25, 1e-9) || !almostEqual(shares[1], 0.75, 1e-9) {
		t.Fatalf("unexpected shares %v", shares)
	}

	if shares, total := liquidityShares(nil); shares != nil || total != 0 {
		t.Fatalf("empty ticks must yield no shares")
	}
}

func TestHerfindahl(t *testing.T) {
	if got := herfindahl([]float64{1}); !almostEqual(got, 1, 1e-9) {
		t.Fatalf("single tick HHI should be 1, got %v", got)
	}
	if got := herfindahl([]float64{0.5, 0.5}); !almostEqual(got, 0.5, 1e-9) {
		t.Fatalf("even split HHI should be 0.5, got %v", got)
	}
}

func TestGini(t *testing.T) {
	if got := gini([]float64{0.25, 0.25, 0.25, 0.25}); !almostEqual(got, 0, 1e-9) {
		t.Fatalf("equal shares Gini should be 0, got %v", got)
	}
	if got := gini([]float64{0.4, 0.3, 0.2, 0.1}); !almostEqual(got, 0.25, 1e-9) {
		t.Fatalf("expected Gini 0.25, got %v", got)
	}
	if got := gini(nil); got != 0 {
		t.Fatalf("empty shares Gini should be 0, got %v", got)
	}
}

func TestTopTickShare(t *testing.T) {
	// Ten equal shares: the top 10% is exactly one tick.
	equal := make([]float64, 10)
	for i := range equal {
		equal[i] = 0.1
	}
	if got := topTickShare(equal); !almostEqual(got, 0.1, 1e-9) {
		t.Fatalf("expected top share 0.1, got %v", got)
	}

	// Fewer than ten ticks still counts at least the single largest.
	if got := topTickShare([]float64{0.7, 0.2, 0.1}); !almostEqual(got, 0.7, 1e-9) {
		t.Fatalf("expected top share 0.7, got %v", got)
	}

	if got := topTickShare(nil); got != 0 {
		t.Fatalf("empty shares must yield 0, got %v", got)
	}
}
