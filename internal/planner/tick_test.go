package planner

import (
	"math"
	"testing"
)

func TestTickRoundTrip(t *testing.T) {
	ticks := []int32{-887220, -100000, -76500, -60, -1, 0, 1, 60, 120, 100000, 887220}
	for _, tick := range ticks {
		price := TickToPrice(tick)
		got := PriceToTick(price)
		if got != tick {
			t.Fatalf("round trip mismatch for tick %d: got %d", tick, got)
		}
	}
}

func TestPriceToTickFloors(t *testing.T) {
	// A price strictly between two ticks floors to the lower one.
	price := math.Sqrt(TickToPrice(100) * TickToPrice(101))
	if got := PriceToTick(price); got != 100 {
		t.Fatalf("expected tick 100, got %d", got)
	}
}

func TestSnapAlignment(t *testing.T) {
	if got := snapDown(-76498, 60); got != -76500 {
		t.Fatalf("snapDown: got %d", got)
	}
	if got := snapUp(-75497, 60); got != -75480 {
		t.Fatalf("snapUp: got %d", got)
	}
	if got := snapDown(120, 60); got != 120 {
		t.Fatalf("snapDown aligned: got %d", got)
	}
	if got := snapUp(120, 60); got != 120 {
		t.Fatalf("snapUp aligned: got %d", got)
	}
}
