package executor

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// WithdrawArgs identifies the position to withdraw and burn.
type WithdrawArgs struct {
	ChainID    uint64
	PositionID string
}

// SwapArgs describes a rebalancing swap between the pair tokens.
type SwapArgs struct {
	ChainID   uint64
	TokenIn   string
	TokenOut  string
	AmountIn  decimal.Decimal
	Recipient string
}

// SupplyArgs describes a new-range liquidity supply.
type SupplyArgs struct {
	ChainID     uint64
	PoolAddress string
	LowerTick   int32
	UpperTick   int32
	Amount0     decimal.Decimal
	Amount1     decimal.Decimal
	Recipient   string
}

// Client wraps a Caller with typed operations. Collaborator-reported
// failures come back as ErrExecutionFailure; transport errors as
// ErrUpstreamUnavailable.
type Client struct {
	caller Caller
	logger *zap.Logger
}

func NewClient(caller Caller, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{caller: caller, logger: logger}
}

// Withdraw removes all liquidity from a position and collects fees.
func (c *Client) Withdraw(ctx context.Context, args WithdrawArgs) (TxResult, error) {
	env, err := c.caller.Call(ctx, OpWithdraw, map[string]any{
		"chain_id":    args.ChainID,
		"position_id": args.PositionID,
	})
	if err != nil {
		return TxResult{}, fmt.Errorf("%w: %s: %v", model.ErrUpstreamUnavailable, OpWithdraw, err)
	}

	result, err := ParseTxResult(env)
	if err != nil {
		return TxResult{}, fmt.Errorf("%s: %w", OpWithdraw, err)
	}
	if !result.Success {
		return result, fmt.Errorf("%w: %s: %s", model.ErrExecutionFailure, OpWithdraw, result.Error)
	}

	c.logger.Info("withdraw executed",
		zap.String("position_id", args.PositionID),
		zap.Strings("tx_hashes", result.TxHashes),
	)
	return result, nil
}

// Swap trades AmountIn of TokenIn for TokenOut.
func (c *Client) Swap(ctx context.Context, args SwapArgs) (TxResult, error) {
	env, err := c.caller.Call(ctx, OpSwap, map[string]any{
		"chain_id":  args.ChainID,
		"token_in":  args.TokenIn,
		"token_out": args.TokenOut,
		"amount_in": args.AmountIn.String(),
		"recipient": args.Recipient,
	})
	if err != nil {
		return TxResult{}, fmt.Errorf("%w: %s: %v", model.ErrUpstreamUnavailable, OpSwap, err)
	}

	result, err := ParseTxResult(env)
	if err != nil {
		return TxResult{}, fmt.Errorf("%s: %w", OpSwap, err)
	}
	if !result.Success {
		return result, fmt.Errorf("%w: %s: %s", model.ErrExecutionFailure, OpSwap, result.Error)
	}

	c.logger.Info("swap executed",
		zap.String("token_in", args.TokenIn),
		zap.String("amount_in", args.AmountIn.String()),
		zap.Strings("tx_hashes", result.TxHashes),
	)
	return result, nil
}

// Supply mints a position over the planned range. The returned position id
// is best-effort decoded; UnknownPositionID is a valid outcome.
func (c *Client) Supply(ctx context.Context, args SupplyArgs) (MintResult, error) {
	env, err := c.caller.Call(ctx, OpSupply, map[string]any{
		"chain_id":     args.ChainID,
		"pool_address": args.PoolAddress,
		"lower_tick":   args.LowerTick,
		"upper_tick":   args.UpperTick,
		"amount0":      args.Amount0.String(),
		"amount1":      args.Amount1.String(),
		"recipient":    args.Recipient,
	})
	if err != nil {
		return MintResult{}, fmt.Errorf("%w: %s: %v", model.ErrUpstreamUnavailable, OpSupply, err)
	}

	result, err := ParseMintResult(env)
	if err != nil {
		return MintResult{}, fmt.Errorf("%s: %w", OpSupply, err)
	}
	if !result.Success {
		return result, fmt.Errorf("%w: %s: %s", model.ErrExecutionFailure, OpSupply, result.Error)
	}

	c.logger.Info("supply executed",
		zap.String("pool", args.PoolAddress),
		zap.Int32("lower_tick", args.LowerTick),
		zap.Int32("upper_tick", args.UpperTick),
		zap.String("new_position_id", result.PositionID),
		zap.Strings("tx_hashes", result.TxHashes),
	)
	return result, nil
}
