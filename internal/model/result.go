package model

import "time"

// RebalanceResult is the terminal per-position outcome of one cycle.
type RebalanceResult struct {
	PositionID    string    `json:"position_id"`
	PoolAddress   string    `json:"pool_address"`
	Success       bool      `json:"success"`
	Action        Action    `json:"action"`
	Stage         string    `json:"stage,omitempty"`
	TxHashes      []string  `json:"tx_hashes,omitempty"`
	NewPositionID string    `json:"new_position_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	CompletedAt   time.Time `json:"completed_at"`
}
