package analytics

import (
	"math"
	"testing"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestComputeKPIsEmptySnapshot(t *testing.T) {
	engine := NewEngine(nil)

	kpis := engine.ComputeKPIs(model.PoolSnapshot{CurrentPrice: 2000}, model.TickRange{Lower: -100, Upper: 100})

	if kpis.UtilizationPct != 0 {
		t.Fatalf("utilization should be 0 on empty ticks, got %v", kpis.UtilizationPct)
	}
	if kpis.Volatility0Pct != 0 || kpis.Volatility1Pct != 0 {
		t.Fatalf("volatility should be 0 on empty history")
	}
	if kpis.ImpermanentLoss != 0 {
		t.Fatalf("impermanent loss should be 0 on empty history, got %v", kpis.ImpermanentLoss)
	}
	if kpis.HHI != 0 || kpis.Gini != 0 || kpis.LiquiditySkew != 0 {
		t.Fatalf("concentration metrics should be 0 on empty ticks")
	}
}

func TestUtilizationBounds(t *testing.T) {
	ticks := []model.TickLiquidity{
		{TickIndex: -100, LiquidityNet: 5},
		{TickIndex: 0, LiquidityNet: -10},
		{TickIndex: 100, LiquidityNet: 5},
	}

	got := utilization(ticks, model.TickRange{Lower: -50, Upper: 150}, 20)
	if !almostEqual(got, 75, 1e-9) {
		t.Fatalf("expected utilization 75, got %v", got)
	}

	full := utilization(ticks, model.TickRange{Lower: -1000, Upper: 1000}, 20)
	if !almostEqual(full, 100, 1e-9) {
		t.Fatalf("expected utilization 100, got %v", full)
	}

	if got := utilization(ticks, model.TickRange{Lower: -50, Upper: 150}, 0); got != 0 {
		t.Fatalf("zero total liquidity must yield 0, got %v", got)
	}
}

func TestLiquiditySkew(t *testing.T) {
	ticks := []model.TickLiquidity{
		{TickIndex: -10, LiquidityNet: 30},
		{TickIndex: 10, LiquidityNet: 10},
	}
	if got := liquiditySkew(ticks, 0); !almostEqual(got, -0.5, 1e-9) {
		t.Fatalf("expected skew -0.5, got %v", got)
	}
	if got := liquiditySkew(nil, 0); got != 0 {
		t.Fatalf("empty ticks must yield 0 skew, got %v", got)
	}

	// Liquidity exactly at the current tick counts on neither side.
	atCurrent := []model.TickLiquidity{{TickIndex: 0, LiquidityNet: 100}}
	if got := liquiditySkew(atCurrent, 0); got != 0 {
		t.Fatalf("expected 0 skew for liquidity at the current tick, got %v", got)
	}
}

func TestImpermanentLoss(t *testing.T) {
	history := []model.PricePoint{
		{Timestamp: 1, Price0USD: 3000, Price1USD: 1},
		{Timestamp: 2, Price0USD: 2500, Price1USD: 1},
	}
	got := impermanentLoss(2000, history)
	if !almostEqual(got, 100.0/3, 1e-6) {
		t.Fatalf("expected IL ~33.33, got %v", got)
	}

	if got := impermanentLoss(2000, nil); got != 0 {
		t.Fatalf("empty history must yield 0, got %v", got)
	}
	if got := impermanentLoss(2000, []model.PricePoint{{Price0USD: 0, Price1USD: 1}}); got != 0 {
		t.Fatalf("zero earliest price must yield 0, got %v", got)
	}
}

func TestComputeKPIsUtilizationWithinRange(t *testing.T) {
	engine := NewEngine(nil)
	snapshot := model.PoolSnapshot{
		CurrentTick:  0,
		CurrentPrice: 2000,
		Ticks: []model.TickLiquidity{
			{TickIndex: -60, LiquidityNet: 100},
			{TickIndex: 60, LiquidityNet: -100},
		},
		TVL0: 10,
		TVL1: 20000,
	}

	kpis := engine.ComputeKPIs(snapshot, model.TickRange{Lower: -60, Upper: 60})
	if kpis.UtilizationPct < 0 || kpis.UtilizationPct > 100 {
		t.Fatalf("utilization out of bounds: %v", kpis.UtilizationPct)
	}
	if !almostEqual(kpis.UtilizationPct, 100, 1e-9) {
		t.Fatalf("expected full utilization, got %v", kpis.UtilizationPct)
	}
	if !almostEqual(kpis.TokenRatio, 10.0/20000, 1e-12) {
		t.Fatalf("unexpected token ratio %v", kpis.TokenRatio)
	}
}
