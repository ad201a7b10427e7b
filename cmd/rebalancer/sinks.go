package main

import (
	"context"
	"errors"
	"time"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/storage"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/storage/postgres"
)

// multiSink fans results out to every configured sink.
type multiSink []storage.Storage

func (m multiSink) PutResultBatch(results []model.RebalanceResult) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PutResultBatch(results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// pgResultSink adapts the Postgres store to the results sink interface.
type pgResultSink struct {
	store *postgres.Store
}

func (s *pgResultSink) PutResultBatch(results []model.RebalanceResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.store.UpsertResults(ctx, results)
}
