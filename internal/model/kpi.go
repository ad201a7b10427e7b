package model

// KPISet holds the derived health metrics for a pool and a position range.
// All values are plain numbers; a metric that could not be computed is 0.
type KPISet struct {
	UtilizationPct   float64 `json:"utilization_pct"`
	HHI              float64 `json:"hhi"`
	Gini             float64 `json:"gini"`
	TopTickSharePct  float64 `json:"top_tick_share_pct"`
	LiquiditySkew    float64 `json:"liquidity_skew"`
	TokenRatio       float64 `json:"token_ratio"`
	Volatility0Pct   float64 `json:"volatility0_pct"`
	Volatility1Pct   float64 `json:"volatility1_pct"`
	PriceChangePct   float64 `json:"price_change_pct"`
	ImpermanentLoss  float64 `json:"impermanent_loss_pct"`
}
