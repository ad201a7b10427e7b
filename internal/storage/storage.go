package storage

import "github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"

// Storage defines a sink for rebalance outcome records.
type Storage interface {
	PutResultBatch(results []model.RebalanceResult) error
}
