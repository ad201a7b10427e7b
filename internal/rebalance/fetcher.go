package rebalance

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/analytics"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/dex"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/wallet"
)

// ChainReader is the subset of dex.Reader the fetcher needs.
type ChainReader interface {
	PoolState(ctx context.Context, pool common.Address) (dex.PoolState, error)
	Position(ctx context.Context, manager common.Address, tokenID *big.Int) (dex.PositionState, error)
	TokenMeta(ctx context.Context, token common.Address) (model.Token, error)
	ERC20Balance(ctx context.Context, token, account common.Address) (*big.Int, error)
	ERC20Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// Fetcher assembles pool snapshots and position views from on-chain reads
// and the analytics endpoint. The chain read is authoritative for the live
// tick and price; the analytics queries degrade independently.
type Fetcher struct {
	reader  ChainReader
	source  analytics.Source
	pool    common.Address
	manager common.Address
	account wallet.Account
	logger  *zap.Logger

	mu     sync.Mutex
	tokens map[common.Address]model.Token
}

func NewFetcher(reader ChainReader, source analytics.Source, pool, manager common.Address, account wallet.Account, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		reader:  reader,
		source:  source,
		pool:    pool,
		manager: manager,
		account: account,
		logger:  logger,
		tokens:  make(map[common.Address]model.Token),
	}
}

// Snapshot reads the live pool state and merges in the analytics views.
// A failed analytics query leaves its snapshot fields empty; the KPI engine
// degrades those metrics to zero.
func (f *Fetcher) Snapshot(ctx context.Context) (model.PoolSnapshot, error) {
	state, err := f.reader.PoolState(ctx, f.pool)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("read pool state: %w", err)
	}

	token0, err := f.tokenMeta(ctx, state.Token0)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("read token0 meta: %w", err)
	}
	token1, err := f.tokenMeta(ctx, state.Token1)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("read token1 meta: %w", err)
	}

	snapshot := model.PoolSnapshot{
		Address:     f.pool.Hex(),
		CurrentTick: state.CurrentTick,
		TickSpacing: state.TickSpacing,
	}

	// slot0 encodes token1-per-token0; the engine quotes token0 in token1.
	poolPrice := dex.PriceFromSqrtX96(state.SqrtPriceX96, token0.Decimals, token1.Decimals)
	if poolPrice > 0 {
		snapshot.CurrentPrice = 1 / poolPrice
	}

	if dist, err := f.source.TickDistribution(ctx, f.pool.Hex()); err != nil {
		f.logger.Warn("tick distribution unavailable", zap.Error(err))
	} else {
		snapshot.Ticks = dist.Ticks
		snapshot.TVL0 = dist.TVL0
		snapshot.TVL1 = dist.TVL1
	}

	if prices, err := f.source.HourlyPrices(ctx, f.pool.Hex()); err != nil {
		f.logger.Warn("hourly prices unavailable", zap.Error(err))
	} else {
		snapshot.HourlyPrices = prices
	}

	if volumes, err := f.source.DailyVolumes(ctx, f.pool.Hex()); err != nil {
		f.logger.Warn("daily volumes unavailable", zap.Error(err))
	} else {
		snapshot.DailyVolumes = volumes
	}

	return snapshot, nil
}

// Position reads one position NFT and resolves its token metadata.
func (f *Fetcher) Position(ctx context.Context, id string) (model.Position, error) {
	tokenID, ok := new(big.Int).SetString(id, 10)
	if !ok {
		return model.Position{}, fmt.Errorf("%w: position id %q is not a number", model.ErrParse, id)
	}

	state, err := f.reader.Position(ctx, f.manager, tokenID)
	if err != nil {
		return model.Position{}, fmt.Errorf("read position %s: %w", id, err)
	}

	token0, err := f.tokenMeta(ctx, state.Token0)
	if err != nil {
		return model.Position{}, fmt.Errorf("read token0 meta: %w", err)
	}
	token1, err := f.tokenMeta(ctx, state.Token1)
	if err != nil {
		return model.Position{}, fmt.Errorf("read token1 meta: %w", err)
	}

	return model.Position{
		ID:          id,
		PoolAddress: f.pool.Hex(),
		ChainID:     f.account.ChainID,
		Token0:      token0,
		Token1:      token1,
		Range:       model.TickRange{Lower: state.TickLower, Upper: state.TickUpper},
		Liquidity:   decimal.NewFromBigInt(state.Liquidity, 0),
		Fees0:       decimal.NewFromBigInt(state.TokensOwed0, -int32(token0.Decimals)),
		Fees1:       decimal.NewFromBigInt(state.TokensOwed1, -int32(token1.Decimals)),
	}, nil
}

// Balance returns the wallet balance of a token in human units.
func (f *Fetcher) Balance(ctx context.Context, token model.Token) (decimal.Decimal, error) {
	raw, err := f.reader.ERC20Balance(ctx, common.HexToAddress(token.Address), f.account.Address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read %s balance: %w", token.Symbol, err)
	}
	return decimal.NewFromBigInt(raw, -int32(token.Decimals)), nil
}

// Allowance returns the spending allowance granted to spender in human units.
func (f *Fetcher) Allowance(ctx context.Context, token model.Token, spender common.Address) (decimal.Decimal, error) {
	raw, err := f.reader.ERC20Allowance(ctx, common.HexToAddress(token.Address), f.account.Address, spender)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read %s allowance: %w", token.Symbol, err)
	}
	return decimal.NewFromBigInt(raw, -int32(token.Decimals)), nil
}

// tokenMeta caches token metadata across positions and cycles; symbol and
// decimals are immutable on chain.
func (f *Fetcher) tokenMeta(ctx context.Context, token common.Address) (model.Token, error) {
	f.mu.Lock()
	cached, ok := f.tokens[token]
	f.mu.Unlock()
	if ok {
		return cached, nil
	}

	meta, err := f.reader.TokenMeta(ctx, token)
	if err != nil {
		return model.Token{}, err
	}

	f.mu.Lock()
	f.tokens[token] = meta
	f.mu.Unlock()
	return meta, nil
}
