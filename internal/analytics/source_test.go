package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

func TestHTTPSourceTickDistribution(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pools/0xabcdef/ticks" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"current_tick": -76013,
			"tick_spacing": 60,
			"tvl0": 12.5,
			"tvl1": 25000,
			"ticks": [{"tick_index": -76500, "liquidity_net": 100}]
		}`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, nil)
	// Mixed-case address must be normalized before it hits the wire.
	dist, err := source.TickDistribution(context.Background(), "0xABCdef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dist.CurrentTick != -76013 || dist.TickSpacing != 60 {
		t.Fatalf("unexpected distribution %+v", dist)
	}
	if len(dist.Ticks) != 1 || dist.Ticks[0].TickIndex != -76500 {
		t.Fatalf("unexpected ticks %+v", dist.Ticks)
	}
}

func TestHTTPSourceStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, nil)
	_, err := source.HourlyPrices(context.Background(), "0xabc")
	if !errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestHTTPSourceMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, nil)
	_, err := source.DailyVolumes(context.Background(), "0xabc")
	if !errors.Is(err, model.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestHTTPSourceUnreachable(t *testing.T) {
	source := NewHTTPSource("http://127.0.0.1:1", nil)
	_, err := source.HourlyPrices(context.Background(), "0xabc")
	if !errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
