package model

// TickLiquidity is one entry of the sparse per-tick liquidity distribution.
// LiquidityNet is the signed liquidity delta crossing the tick.
type TickLiquidity struct {
	TickIndex    int32   `json:"tick_index"`
	LiquidityNet float64 `json:"liquidity_net"`
}

// PricePoint is one hourly price sample for both tokens of a pool,
// quoted in USD.
type PricePoint struct {
	Timestamp uint64  `json:"timestamp"`
	Price0USD float64 `json:"price0_usd"`
	Price1USD float64 `json:"price1_usd"`
}

// VolumePoint is one daily volume/fee sample for a pool.
type VolumePoint struct {
	Date      string  `json:"date"`
	VolumeUSD float64 `json:"volume_usd"`
	FeesUSD   float64 `json:"fees_usd"`
}

// PoolSnapshot is the raw observed state of a pool for one monitoring cycle.
// It is immutable once assembled and re-fetched every cycle.
type PoolSnapshot struct {
	Address      string          `json:"address"`
	CurrentTick  int32           `json:"current_tick"`
	CurrentPrice float64         `json:"current_price"`
	TickSpacing  int32           `json:"tick_spacing"`
	Ticks        []TickLiquidity `json:"ticks"`
	TVL0         float64         `json:"tvl0"`
	TVL1         float64         `json:"tvl1"`
	HourlyPrices []PricePoint    `json:"hourly_prices"`
	DailyVolumes []VolumePoint   `json:"daily_volumes"`
}
