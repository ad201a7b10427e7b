package allocator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// Pool tick for a human price of 2000 is near -76000; ranges are picked
// relative to that.
const price = 2000.0

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAllocateInRange(t *testing.T) {
	planned := model.PlannedRange{Lower: -76500, Upper: -75480}
	available0, available1 := dec(10), dec(20000)

	plan, err := Allocate(price, planned, available0, available1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Degraded {
		t.Fatalf("in-range allocation must not be degraded")
	}
	if !plan.Amount0.IsPositive() || !plan.Amount1.IsPositive() {
		t.Fatalf("in-range allocation should use both tokens: %s / %s", plan.Amount0, plan.Amount1)
	}
	if plan.Amount0.GreaterThan(available0) || plan.Amount1.GreaterThan(available1) {
		t.Fatalf("allocation exceeds balances: %s / %s", plan.Amount0, plan.Amount1)
	}
}

func TestAllocatePoolPriceBelowRange(t *testing.T) {
	// Range entirely above the current pool price: token0 single-sided.
	planned := model.PlannedRange{Lower: -75000, Upper: -74000}
	plan, err := Allocate(price, planned, dec(10), dec(20000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.Amount1.IsZero() {
		t.Fatalf("expected amount1 = 0, got %s", plan.Amount1)
	}
	want := decimal.RequireFromString("9.9")
	if !plan.Amount0.Equal(want) {
		t.Fatalf("expected amount0 = %s, got %s", want, plan.Amount0)
	}
}

func TestAllocatePoolPriceAboveRangeEmptyToken0(t *testing.T) {
	// Range entirely below the current pool price with no token0 balance:
	// everything goes into token1 at 99%.
	planned := model.PlannedRange{Lower: -78000, Upper: -77000}
	plan, err := Allocate(price, planned, decimal.Zero, dec(20000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.Amount0.IsZero() {
		t.Fatalf("expected amount0 = 0, got %s", plan.Amount0)
	}
	want := decimal.RequireFromString("19800")
	if !plan.Amount1.Equal(want) {
		t.Fatalf("expected amount1 = %s, got %s", want, plan.Amount1)
	}
}

func TestAllocateDegradedOnInvalidBounds(t *testing.T) {
	planned := model.PlannedRange{Lower: 100, Upper: 100}
	plan, err := Allocate(price, planned, dec(10), dec(20000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.Degraded {
		t.Fatalf("expected degraded plan for collapsed bounds")
	}
	if !plan.Amount0.Equal(decimal.RequireFromString("9.5")) || !plan.Amount1.Equal(dec(19000)) {
		t.Fatalf("unexpected degraded amounts: %s / %s", plan.Amount0, plan.Amount1)
	}
}

func TestAllocateNeverExceedsBalances(t *testing.T) {
	ranges := []model.PlannedRange{
		{Lower: -76500, Upper: -75480}, // in range
		{Lower: -75000, Upper: -74000}, // above pool price
		{Lower: -78000, Upper: -77000}, // below pool price
		{Lower: -76020, Upper: -75960}, // narrow, in range
		{Lower: 100, Upper: 100},       // degraded
	}
	balances := []struct{ a0, a1 decimal.Decimal }{
		{dec(0), dec(0)},
		{dec(1), dec(1)},
		{dec(10), dec(20000)},
		{decimal.RequireFromString("0.0001"), dec(1000000)},
		{dec(1000000), decimal.RequireFromString("0.0001")},
	}

	for _, planned := range ranges {
		for _, bal := range balances {
			plan, err := Allocate(price, planned, bal.a0, bal.a1)
			if err != nil {
				t.Fatalf("range %+v balances %s/%s: %v", planned, bal.a0, bal.a1, err)
			}
			if plan.Amount0.GreaterThan(bal.a0) || plan.Amount1.GreaterThan(bal.a1) {
				t.Fatalf("range %+v: allocation %s/%s exceeds balances %s/%s",
					planned, plan.Amount0, plan.Amount1, bal.a0, bal.a1)
			}
			if plan.Amount0.IsNegative() || plan.Amount1.IsNegative() {
				t.Fatalf("range %+v: negative allocation %s/%s", planned, plan.Amount0, plan.Amount1)
			}
		}
	}
}

func TestAllocateRejectsNonPositivePrice(t *testing.T) {
	if _, err := Allocate(0, model.PlannedRange{Lower: -76500, Upper: -75480}, dec(1), dec(1)); err == nil {
		t.Fatalf("expected error for zero price")
	}
}
