package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// Store provides Postgres persistence for KPI history and rebalance results.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertKPIHistory records a KPI computation for a pool at a point in time.
func (s *Store) UpsertKPIHistory(ctx context.Context, poolAddress string, computedAt time.Time, kpis model.KPISet) error {
	if poolAddress == "" {
		return fmt.Errorf("pool address required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kpi_history (
			pool_address, computed_at, utilization_pct, hhi, gini, top_tick_share_pct,
			liquidity_skew, token_ratio, volatility0_pct, volatility1_pct,
			price_change_pct, impermanent_loss_pct, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
		ON CONFLICT (pool_address, computed_at)
		DO UPDATE SET
			utilization_pct = EXCLUDED.utilization_pct,
			hhi = EXCLUDED.hhi,
			gini = EXCLUDED.gini,
			top_tick_share_pct = EXCLUDED.top_tick_share_pct,
			liquidity_skew = EXCLUDED.liquidity_skew,
			token_ratio = EXCLUDED.token_ratio,
			volatility0_pct = EXCLUDED.volatility0_pct,
			volatility1_pct = EXCLUDED.volatility1_pct,
			price_change_pct = EXCLUDED.price_change_pct,
			impermanent_loss_pct = EXCLUDED.impermanent_loss_pct
	`,
		poolAddress,
		computedAt,
		kpis.UtilizationPct,
		kpis.HHI,
		kpis.Gini,
		kpis.TopTickSharePct,
		kpis.LiquiditySkew,
		kpis.TokenRatio,
		kpis.Volatility0Pct,
		kpis.Volatility1Pct,
		kpis.PriceChangePct,
		kpis.ImpermanentLoss,
	)
	return err
}

// UpsertResults inserts or updates rebalance outcome rows.
func (s *Store) UpsertResults(ctx context.Context, results []model.RebalanceResult) error {
	if len(results) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range results {
		batch.Queue(`
			INSERT INTO rebalance_results (
				position_id, pool_address, success, action, stage,
				tx_hashes, new_position_id, error, completed_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
			ON CONFLICT (position_id, completed_at)
			DO UPDATE SET
				success = EXCLUDED.success,
				action = EXCLUDED.action,
				stage = EXCLUDED.stage,
				tx_hashes = EXCLUDED.tx_hashes,
				new_position_id = EXCLUDED.new_position_id,
				error = EXCLUDED.error
		`,
			r.PositionID,
			r.PoolAddress,
			r.Success,
			string(r.Action),
			r.Stage,
			r.TxHashes,
			r.NewPositionID,
			r.Error,
			r.CompletedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range results {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadCycleState returns the last completed cycle timestamp for a name.
func (s *Store) LoadCycleState(ctx context.Context, name string) (time.Time, bool, error) {
	if name == "" {
		return time.Time{}, false, fmt.Errorf("state name required")
	}
	var ts time.Time
	row := s.pool.QueryRow(ctx, `SELECT last_cycle_at FROM rebalancer_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return ts, true, nil
}

// SaveCycleState upserts the last completed cycle timestamp for a name.
func (s *Store) SaveCycleState(ctx context.Context, name string, ts time.Time) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rebalancer_state (name, last_cycle_at, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_cycle_at = EXCLUDED.last_cycle_at, updated_at = now()
	`, name, ts)
	return err
}
