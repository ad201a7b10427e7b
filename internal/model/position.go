package model

import "github.com/shopspring/decimal"

// TickRange is a pool-native tick interval.
type TickRange struct {
	Lower int32 `json:"lower"`
	Upper int32 `json:"upper"`
}

// Position is an on-chain concentrated-liquidity position snapshot.
type Position struct {
	ID          string          `json:"id"`
	PoolAddress string          `json:"pool_address"`
	ChainID     uint64          `json:"chain_id"`
	Token0      Token           `json:"token0"`
	Token1      Token           `json:"token1"`
	Range       TickRange       `json:"range"`
	Liquidity   decimal.Decimal `json:"liquidity"`
	Fees0       decimal.Decimal `json:"fees0"`
	Fees1       decimal.Decimal `json:"fees1"`
}
