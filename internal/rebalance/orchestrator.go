// Package rebalance drives the per-position workflow: fetch pool and
// position state, analyze, and when advised, withdraw, optionally swap, and
// resupply into the planned range. Positions are processed strictly
// sequentially because every transaction is signed by the same wallet.
package rebalance

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/allocator"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/analytics"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/executor"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/notify"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/observability"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/planner"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/storage"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/wallet"
)

// Workflow stage labels reported in results and incidents.
const (
	StageFetch    = "FETCH"
	StageAnalyze  = "ANALYZE"
	StageWithdraw = "WITHDRAW"
	StageSwap     = "SWAP"
	StageSupply   = "SUPPLY"
	StageIncident = "INCIDENT"
)

// Recommender produces a range recommendation from a KPI set.
type Recommender interface {
	Recommend(ctx context.Context, kpis model.KPISet, current model.TickRange, profile model.RiskProfile) (model.RangeRecommendation, error)
}

// Executor performs the on-chain mutations of a rebalance.
type Executor interface {
	Withdraw(ctx context.Context, args executor.WithdrawArgs) (executor.TxResult, error)
	Swap(ctx context.Context, args executor.SwapArgs) (executor.TxResult, error)
	Supply(ctx context.Context, args executor.SupplyArgs) (executor.MintResult, error)
}

// KPIRecorder persists per-cycle KPI computations. Optional.
type KPIRecorder interface {
	UpsertKPIHistory(ctx context.Context, poolAddress string, computedAt time.Time, kpis model.KPISet) error
}

// Config holds the static per-engine settings.
type Config struct {
	PoolAddress     common.Address
	PositionManager common.Address
	PositionIDs     []string
	RiskProfile     model.RiskProfile
	IncidentPath    string
	IncidentEnabled bool
}

// Orchestrator owns one wallet and its positions.
type Orchestrator struct {
	cfg       Config
	account   wallet.Account
	fetcher   *Fetcher
	engine    *analytics.Engine
	advisor   Recommender
	exec      Executor
	notifier  notify.Notifier
	results   storage.Storage
	history   KPIRecorder
	incidents *IncidentStore
	logger    *zap.Logger
}

// New builds an Orchestrator. notifier, results, and history may be nil.
func New(cfg Config, account wallet.Account, fetcher *Fetcher, engine *analytics.Engine, adv Recommender, exec Executor, notifier notify.Notifier, results storage.Storage, history KPIRecorder, logger *zap.Logger) *Orchestrator {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:       cfg,
		account:   account,
		fetcher:   fetcher,
		engine:    engine,
		advisor:   adv,
		exec:      exec,
		notifier:  notifier,
		results:   results,
		history:   history,
		incidents: NewIncidentStore(cfg.IncidentPath, cfg.IncidentEnabled),
		logger:    logger,
	}
}

// RunCycle processes every configured position once, in order, and returns
// exactly one result per position. A failed position never stops the cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) ([]model.RebalanceResult, error) {
	if len(o.cfg.PositionIDs) == 0 {
		return nil, fmt.Errorf("no positions configured")
	}

	started := time.Now()
	defer func() {
		observability.CycleDuration.Observe(time.Since(started).Seconds())
	}()

	pending, err := o.incidents.Load()
	if err != nil {
		return nil, fmt.Errorf("load incidents: %w", err)
	}

	results := make([]model.RebalanceResult, 0, len(o.cfg.PositionIDs))
	for _, id := range o.cfg.PositionIDs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		var result model.RebalanceResult
		if incident, ok := pending[id]; ok {
			result = o.failure(id, StageIncident,
				fmt.Errorf("unresolved incident from stage %s; wallet holds withdrawn funds, resolve manually", incident.Stage))
		} else {
			result = o.processPosition(ctx, id)
		}

		observability.RecordOutcome(result.Success)
		o.notifyResult(ctx, result)
		results = append(results, result)
	}

	o.persist(results)
	return results, nil
}

// processPosition runs the full workflow for one position. A panic anywhere
// in the pipeline is confined to this position.
func (o *Orchestrator) processPosition(ctx context.Context, id string) (result model.RebalanceResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("position workflow panicked", zap.String("position_id", id), zap.Any("panic", r))
			result = o.failure(id, result.Stage, fmt.Errorf("panic: %v", r))
		}
	}()

	snapshot, err := o.fetcher.Snapshot(ctx)
	if err != nil {
		return o.failure(id, StageFetch, err)
	}
	position, err := o.fetcher.Position(ctx, id)
	if err != nil {
		return o.failure(id, StageFetch, err)
	}

	kpis := o.engine.ComputeKPIs(snapshot, position.Range)
	o.recordKPIs(ctx, snapshot, kpis)

	rec, err := o.advisor.Recommend(ctx, kpis, position.Range, o.cfg.RiskProfile)
	if err != nil {
		return o.failure(id, StageAnalyze, err)
	}

	o.logger.Info("position analyzed",
		zap.String("position_id", id),
		zap.String("action", string(rec.Action)),
		zap.Float64("confidence", rec.Confidence),
		zap.Float64("utilization_pct", kpis.UtilizationPct))

	switch rec.Action {
	case model.ActionMaintain:
		return model.RebalanceResult{
			PositionID:  id,
			PoolAddress: position.PoolAddress,
			Success:     true,
			Action:      model.ActionMaintain,
			CompletedAt: time.Now().UTC(),
		}
	case model.ActionWithdraw:
		return o.withdrawOnly(ctx, position)
	case model.ActionRebalance:
		return o.rebalance(ctx, snapshot, position, rec)
	}
	return o.failure(id, StageAnalyze, fmt.Errorf("advisor returned unknown action %q", rec.Action))
}

func (o *Orchestrator) withdrawOnly(ctx context.Context, position model.Position) model.RebalanceResult {
	tx, err := o.exec.Withdraw(ctx, executor.WithdrawArgs{ChainID: position.ChainID, PositionID: position.ID})
	if err != nil {
		return o.failure(position.ID, StageWithdraw, err)
	}
	return model.RebalanceResult{
		PositionID:  position.ID,
		PoolAddress: position.PoolAddress,
		Success:     true,
		Action:      model.ActionWithdraw,
		TxHashes:    tx.TxHashes,
		CompletedAt: time.Now().UTC(),
	}
}

func (o *Orchestrator) rebalance(ctx context.Context, snapshot model.PoolSnapshot, position model.Position, rec model.RangeRecommendation) model.RebalanceResult {
	planned, err := planner.BuildRange(snapshot.CurrentPrice, rec.HalfWidthPct, rec.CenterSkewPct, snapshot.TickSpacing)
	if err != nil {
		return o.failure(position.ID, StageAnalyze, err)
	}

	var txHashes []string

	withdrawTx, err := o.exec.Withdraw(ctx, executor.WithdrawArgs{ChainID: position.ChainID, PositionID: position.ID})
	if err != nil {
		return o.failure(position.ID, StageWithdraw, err)
	}
	txHashes = append(txHashes, withdrawTx.TxHashes...)

	// From here on the old position is gone. Any failure leaves the wallet
	// holding the withdrawn tokens; record it and leave resolution to an
	// operator.
	o.recordIncident(position.ID, StageWithdraw, txHashes)

	available0, available1, err := o.balances(ctx, position)
	if err != nil {
		return o.failure(position.ID, StageSwap, err)
	}

	swapTx, available0, available1, err := o.maybeSwap(ctx, snapshot, position, planned, available0, available1)
	if err != nil {
		o.recordIncident(position.ID, StageSwap, txHashes)
		return o.failure(position.ID, StageSwap, err)
	}
	txHashes = append(txHashes, swapTx...)

	if available0.IsZero() && available1.IsZero() {
		return o.failure(position.ID, StageSupply,
			fmt.Errorf("%w: wallet holds neither %s nor %s", model.ErrInsufficientBalance, position.Token0.Symbol, position.Token1.Symbol))
	}

	plan, err := allocator.Allocate(snapshot.CurrentPrice, planned, available0, available1)
	if err != nil {
		return o.failure(position.ID, StageSupply, err)
	}
	if plan.Degraded {
		o.logger.Warn("allocation degraded to balance percentages", zap.String("position_id", position.ID))
	}

	if err := o.checkAllowances(ctx, position, plan); err != nil {
		return o.failure(position.ID, StageSupply, err)
	}

	mint, err := o.exec.Supply(ctx, executor.SupplyArgs{
		ChainID:     position.ChainID,
		PoolAddress: position.PoolAddress,
		LowerTick:   planned.Lower,
		UpperTick:   planned.Upper,
		Amount0:     plan.Amount0,
		Amount1:     plan.Amount1,
		Recipient:   o.account.String(),
	})
	if err != nil {
		o.recordIncident(position.ID, StageSupply, txHashes)
		return o.failure(position.ID, StageSupply, err)
	}
	txHashes = append(txHashes, mint.TxHashes...)
	o.resolveIncident(position.ID)

	return model.RebalanceResult{
		PositionID:    position.ID,
		PoolAddress:   position.PoolAddress,
		Success:       true,
		Action:        model.ActionRebalance,
		TxHashes:      txHashes,
		NewPositionID: mint.PositionID,
		CompletedAt:   time.Now().UTC(),
	}
}

func (o *Orchestrator) balances(ctx context.Context, position model.Position) (decimal.Decimal, decimal.Decimal, error) {
	available0, err := o.fetcher.Balance(ctx, position.Token0)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	available1, err := o.fetcher.Balance(ctx, position.Token1)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return available0, available1, nil
}

// maybeSwap rebalances the wallet's token mix when the planned range needs a
// token the wallet does not hold. Single-sided ranges swap the whole unneeded
// balance; two-sided ranges swap half of the held side.
func (o *Orchestrator) maybeSwap(ctx context.Context, snapshot model.PoolSnapshot, position model.Position, planned model.PlannedRange, available0, available1 decimal.Decimal) ([]string, decimal.Decimal, decimal.Decimal, error) {
	needs0 := snapshot.CurrentTick < planned.Upper
	needs1 := snapshot.CurrentTick > planned.Lower

	var amountIn decimal.Decimal
	var tokenIn, tokenOut model.Token
	switch {
	case needs0 && !needs1 && available0.IsZero() && available1.IsPositive():
		tokenIn, tokenOut = position.Token1, position.Token0
		amountIn = available1
	case needs1 && !needs0 && available1.IsZero() && available0.IsPositive():
		tokenIn, tokenOut = position.Token0, position.Token1
		amountIn = available0
	case needs0 && needs1 && available0.IsZero() && available1.IsPositive():
		tokenIn, tokenOut = position.Token1, position.Token0
		amountIn = available1.Div(decimal.NewFromInt(2))
	case needs0 && needs1 && available1.IsZero() && available0.IsPositive():
		tokenIn, tokenOut = position.Token0, position.Token1
		amountIn = available0.Div(decimal.NewFromInt(2))
	default:
		return nil, available0, available1, nil
	}

	o.logger.Info("swapping to match planned range",
		zap.String("position_id", position.ID),
		zap.String("token_in", tokenIn.Symbol),
		zap.String("amount_in", amountIn.String()))

	tx, err := o.exec.Swap(ctx, executor.SwapArgs{
		ChainID:   position.ChainID,
		TokenIn:   tokenIn.Address,
		TokenOut:  tokenOut.Address,
		AmountIn:  amountIn,
		Recipient: o.account.String(),
	})
	if err != nil {
		return nil, available0, available1, err
	}

	available0, available1, err = o.balances(ctx, position)
	if err != nil {
		return nil, available0, available1, err
	}
	return tx.TxHashes, available0, available1, nil
}

// checkAllowances verifies that the position manager can pull the planned
// amounts from the wallet.
func (o *Orchestrator) checkAllowances(ctx context.Context, position model.Position, plan model.AllocationPlan) error {
	if plan.Amount0.IsPositive() {
		allowance, err := o.fetcher.Allowance(ctx, position.Token0, o.cfg.PositionManager)
		if err != nil {
			return err
		}
		if allowance.LessThan(plan.Amount0) {
			return fmt.Errorf("%w: %s allowance %s below planned %s",
				model.ErrInsufficientBalance, position.Token0.Symbol, allowance, plan.Amount0)
		}
	}
	if plan.Amount1.IsPositive() {
		allowance, err := o.fetcher.Allowance(ctx, position.Token1, o.cfg.PositionManager)
		if err != nil {
			return err
		}
		if allowance.LessThan(plan.Amount1) {
			return fmt.Errorf("%w: %s allowance %s below planned %s",
				model.ErrInsufficientBalance, position.Token1.Symbol, allowance, plan.Amount1)
		}
	}
	return nil
}

func (o *Orchestrator) failure(positionID, stage string, err error) model.RebalanceResult {
	o.logger.Error("position workflow failed",
		zap.String("position_id", positionID),
		zap.String("stage", stage),
		zap.Error(err))
	return model.RebalanceResult{
		PositionID:  positionID,
		PoolAddress: o.cfg.PoolAddress.Hex(),
		Success:     false,
		Stage:       stage,
		Error:       err.Error(),
		CompletedAt: time.Now().UTC(),
	}
}

func (o *Orchestrator) recordIncident(positionID, stage string, txHashes []string) {
	if err := o.incidents.Record(Incident{PositionID: positionID, Stage: stage, TxHashes: txHashes}); err != nil {
		o.logger.Error("failed to record incident", zap.String("position_id", positionID), zap.Error(err))
	}
}

func (o *Orchestrator) resolveIncident(positionID string) {
	if err := o.incidents.Resolve(positionID); err != nil {
		o.logger.Error("failed to resolve incident", zap.String("position_id", positionID), zap.Error(err))
	}
}

func (o *Orchestrator) recordKPIs(ctx context.Context, snapshot model.PoolSnapshot, kpis model.KPISet) {
	if o.history == nil {
		return
	}
	if err := o.history.UpsertKPIHistory(ctx, snapshot.Address, time.Now().UTC(), kpis); err != nil {
		o.logger.Warn("failed to persist kpi history", zap.Error(err))
	}
}

func (o *Orchestrator) notifyResult(ctx context.Context, result model.RebalanceResult) {
	var text string
	if result.Success {
		text = fmt.Sprintf("position %s: %s completed", result.PositionID, result.Action)
		if result.NewPositionID != "" {
			text += fmt.Sprintf(", new position %s", result.NewPositionID)
		}
	} else {
		text = fmt.Sprintf("position %s: failed at %s: %s", result.PositionID, result.Stage, result.Error)
	}

	if err := o.notifier.Notify(ctx, text); err != nil {
		observability.NotifyFailures.Inc()
		o.logger.Warn("notification failed", zap.String("position_id", result.PositionID), zap.Error(err))
	}
}

func (o *Orchestrator) persist(results []model.RebalanceResult) {
	if o.results == nil {
		return
	}
	if err := o.results.PutResultBatch(results); err != nil {
		o.logger.Error("failed to persist results", zap.Error(err))
	}
}
