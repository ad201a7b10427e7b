package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// TickDistribution is the per-tick liquidity view of a pool plus its live
// tick and TVL.
type TickDistribution struct {
	CurrentTick int32                 `json:"current_tick"`
	TickSpacing int32                 `json:"tick_spacing"`
	TVL0        float64               `json:"tvl0"`
	TVL1        float64               `json:"tvl1"`
	Ticks       []model.TickLiquidity `json:"ticks"`
}

// Source is the read-only analytics query interface. The three queries are
// independent: a failure in one must not block the others, and each caller
// degrades only its own KPI fields.
type Source interface {
	TickDistribution(ctx context.Context, poolAddress string) (TickDistribution, error)
	HourlyPrices(ctx context.Context, poolAddress string) ([]model.PricePoint, error)
	DailyVolumes(ctx context.Context, poolAddress string) ([]model.VolumePoint, error)
}

// HTTPSource queries a REST analytics endpoint. Pool addresses are
// normalized to lowercase before use.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPSource(baseURL string, logger *zap.Logger) *HTTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (s *HTTPSource) TickDistribution(ctx context.Context, poolAddress string) (TickDistribution, error) {
	var dist TickDistribution
	path := fmt.Sprintf("/pools/%s/ticks", normalizeAddress(poolAddress))
	if err := s.getJSON(ctx, path, &dist); err != nil {
		return TickDistribution{}, err
	}
	return dist, nil
}

func (s *HTTPSource) HourlyPrices(ctx context.Context, poolAddress string) ([]model.PricePoint, error) {
	var resp struct {
		Points []model.PricePoint `json:"points"`
	}
	path := fmt.Sprintf("/pools/%s/prices/hourly", normalizeAddress(poolAddress))
	if err := s.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Points, nil
}

func (s *HTTPSource) DailyVolumes(ctx context.Context, poolAddress string) ([]model.VolumePoint, error) {
	var resp struct {
		Points []model.VolumePoint `json:"points"`
	}
	path := fmt.Sprintf("/pools/%s/volumes/daily", normalizeAddress(poolAddress))
	if err := s.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Points, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrUpstreamUnavailable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", model.ErrUpstreamUnavailable, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", model.ErrUpstreamUnavailable, path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: decode %s: %v", model.ErrParse, path, err)
	}
	return nil
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
