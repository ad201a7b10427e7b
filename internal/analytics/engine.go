// Package analytics derives pool health KPIs from raw pool snapshots.
// Every metric degrades to 0 on missing input; the engine never errors on
// empty data.
package analytics

import (
	"math"

	"go.uber.org/zap"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// Engine computes KPI sets from pool snapshots.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// ComputeKPIs derives the full KPI set for a snapshot and a position range.
func (e *Engine) ComputeKPIs(snapshot model.PoolSnapshot, positionRange model.TickRange) model.KPISet {
	kpis := model.KPISet{}

	shares, total := liquidityShares(snapshot.Ticks)
	if total > 0 {
		kpis.HHI = herfindahl(shares)
		kpis.Gini = gini(shares)
		kpis.TopTickSharePct = topTickShare(shares) * 100
		kpis.LiquiditySkew = liquiditySkew(snapshot.Ticks, snapshot.CurrentTick)
		kpis.UtilizationPct = utilization(snapshot.Ticks, positionRange, total)
	}

	kpis.TokenRatio = tokenRatio(snapshot.TVL0, snapshot.TVL1)

	if len(snapshot.HourlyPrices) > 1 {
		changes0 := priceChanges(snapshot.HourlyPrices, func(p model.PricePoint) float64 { return p.Price0USD })
		changes1 := priceChanges(snapshot.HourlyPrices, func(p model.PricePoint) float64 { return p.Price1USD })
		kpis.Volatility0Pct = stddev(changes0)
		kpis.Volatility1Pct = stddev(changes1)
		kpis.PriceChangePct = latestChange(changes0, changes1)
	}

	kpis.ImpermanentLoss = impermanentLoss(snapshot.CurrentPrice, snapshot.HourlyPrices)

	e.logger.Debug("kpis computed",
		zap.String("pool", snapshot.Address),
		zap.Float64("utilization_pct", kpis.UtilizationPct),
		zap.Float64("hhi", kpis.HHI),
		zap.Float64("volatility0_pct", kpis.Volatility0Pct),
	)

	return kpis
}

// utilization is the share of total liquidity sitting inside the position
// range, as a percentage in [0, 100].
func utilization(ticks []model.TickLiquidity, positionRange model.TickRange, total float64) float64 {
	if total <= 0 {
		return 0
	}
	var active float64
	for _, tick := range ticks {
		if tick.TickIndex >= positionRange.Lower && tick.TickIndex <= positionRange.Upper {
			active += math.Abs(tick.LiquidityNet)
		}
	}
	pct := active / total * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// liquiditySkew is (above − below) / (above + below) relative to the current
// tick, in [-1, 1]; 0 when both sides are empty.
func liquiditySkew(ticks []model.TickLiquidity, currentTick int32) float64 {
	var above, below float64
	for _, tick := range ticks {
		liq := math.Abs(tick.LiquidityNet)
		switch {
		case tick.TickIndex > currentTick:
			above += liq
		case tick.TickIndex < currentTick:
			below += liq
		}
	}
	if above+below == 0 {
		return 0
	}
	return (above - below) / (above + below)
}

func tokenRatio(tvl0, tvl1 float64) float64 {
	if tvl1 <= 0 {
		return 0
	}
	return tvl0 / tvl1
}

// impermanentLoss estimates divergence against the earliest available hourly
// price: |currentPrice / earliestPrice − 1| × 100.
func impermanentLoss(currentPrice float64, history []model.PricePoint) float64 {
	if currentPrice <= 0 || len(history) == 0 {
		return 0
	}
	earliest := history[0]
	if earliest.Price1USD <= 0 || earliest.Price0USD <= 0 {
		return 0
	}
	earliestPrice := earliest.Price0USD / earliest.Price1USD
	if earliestPrice <= 0 {
		return 0
	}
	return math.Abs(currentPrice/earliestPrice-1) * 100
}
