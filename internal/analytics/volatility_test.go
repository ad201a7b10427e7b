package analytics

import (
	"testing"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

func price0(p model.PricePoint) float64 { return p.Price0USD }

func TestPriceChanges(t *testing.T) {
	history := []model.PricePoint{
		{Price0USD: 100},
		{Price0USD: 110},
		{Price0USD: 99},
	}

	changes := priceChanges(history, price0)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if !almostEqual(changes[0], 10, 1e-9) || !almostEqual(changes[1], -10, 1e-9) {
		t.Fatalf("unexpected changes %v", changes)
	}
}

func TestPriceChangesSkipsZeroPredecessor(t *testing.T) {
	history := []model.PricePoint{
		{Price0USD: 0},
		{Price0USD: 110},
		{Price0USD: 121},
	}
	changes := priceChanges(history, price0)
	if len(changes) != 1 || !almostEqual(changes[0], 10, 1e-9) {
		t.Fatalf("unexpected changes %v", changes)
	}
}

func TestPriceChangesTrailingWindow(t *testing.T) {
	history := make([]model.PricePoint, 50)
	for i := range history {
		history[i] = model.PricePoint{Price0USD: float64(100 + i)}
	}
	changes := priceChanges(history, price0)
	if len(changes) != volatilityWindow-1 {
		t.Fatalf("expected %d changes from the trailing window, got %d", volatilityWindow-1, len(changes))
	}
}

func TestStddev(t *testing.T) {
	if got := stddev([]float64{10, -10}); !almostEqual(got, 10, 1e-9) {
		t.Fatalf("expected stddev 10, got %v", got)
	}
	if got := stddev([]float64{5, 5, 5}); !almostEqual(got, 0, 1e-9) {
		t.Fatalf("constant series stddev should be 0, got %v", got)
	}
	if got := stddev(nil); got != 0 {
		t.Fatalf("empty series stddev should be 0, got %v", got)
	}
}

func TestLatestChange(t *testing.T) {
	got := latestChange([]float64{1, 3}, []float64{5})
	if !almostEqual(got, 4, 1e-9) {
		t.Fatalf("expected latest change 4, got %v", got)
	}
	if got := latestChange(nil, nil); got != 0 {
		t.Fatalf("expected 0 on empty change series, got %v", got)
	}
}
