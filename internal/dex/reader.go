// Package dex reads pool, position, and token state from V3-style DEX
// contracts over eth_call.
package dex

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/chain"
	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// PoolState is the on-chain state of a pool at read time.
type PoolState struct {
	Address      common.Address
	Token0       common.Address
	Token1       common.Address
	Fee          uint32
	TickSpacing  int32
	CurrentTick  int32
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
}

// PositionState is the on-chain state of a position NFT.
type PositionState struct {
	TokenID     *big.Int
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickLower   int32
	TickUpper   int32
	Liquidity   *big.Int
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}

// Reader performs contract reads against a chain client.
type Reader struct {
	client *chain.Client
	logger *zap.Logger
}

// NewReader creates a reader over the given chain client.
func NewReader(client *chain.Client, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{client: client, logger: logger}
}

// PoolState reads the static and slot0 state of a pool.
func (r *Reader) PoolState(ctx context.Context, pool common.Address) (PoolState, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return PoolState{}, err
	}

	state := PoolState{Address: pool}

	token0, err := r.callMethod(ctx, poolABI, pool, "token0")
	if err != nil {
		return PoolState{}, err
	}
	state.Token0, err = asAddress(token0[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("pool token0: %w", err)
	}

	token1, err := r.callMethod(ctx, poolABI, pool, "token1")
	if err != nil {
		return PoolState{}, err
	}
	state.Token1, err = asAddress(token1[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("pool token1: %w", err)
	}

	fee, err := r.callMethod(ctx, poolABI, pool, "fee")
	if err != nil {
		return PoolState{}, err
	}
	feeBig, err := asBigInt(fee[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("pool fee: %w", err)
	}
	state.Fee = uint32(feeBig.Uint64())

	spacing, err := r.callMethod(ctx, poolABI, pool, "tickSpacing")
	if err != nil {
		return PoolState{}, err
	}
	state.TickSpacing, err = int24FromBig(spacing[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("pool tickSpacing: %w", err)
	}

	liquidity, err := r.callMethod(ctx, poolABI, pool, "liquidity")
	if err != nil {
		return PoolState{}, err
	}
	state.Liquidity, err = asBigInt(liquidity[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("pool liquidity: %w", err)
	}

	slot0, err := r.callMethod(ctx, poolABI, pool, "slot0")
	if err != nil {
		return PoolState{}, err
	}
	if len(slot0) < 2 {
		return PoolState{}, fmt.Errorf("%w: slot0 returned %d values", model.ErrParse, len(slot0))
	}
	state.SqrtPriceX96, err = asBigInt(slot0[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("pool slot0 sqrtPriceX96: %w", err)
	}
	state.CurrentTick, err = int24FromBig(slot0[1])
	if err != nil {
		return PoolState{}, fmt.Errorf("pool slot0 tick: %w", err)
	}

	return state, nil
}

// Position reads the position NFT state from the position manager.
func (r *Reader) Position(ctx context.Context, manager common.Address, tokenID *big.Int) (PositionState, error) {
	managerABI, err := PositionManagerABI()
	if err != nil {
		return PositionState{}, err
	}

	values, err := r.callMethod(ctx, managerABI, manager, "positions", tokenID)
	if err != nil {
		return PositionState{}, err
	}
	if len(values) < 12 {
		return PositionState{}, fmt.Errorf("%w: positions returned %d values", model.ErrParse, len(values))
	}

	state := PositionState{TokenID: new(big.Int).Set(tokenID)}
	if state.Token0, err = asAddress(values[2]); err != nil {
		return PositionState{}, fmt.Errorf("position token0: %w", err)
	}
	if state.Token1, err = asAddress(values[3]); err != nil {
		return PositionState{}, fmt.Errorf("position token1: %w", err)
	}
	feeBig, err := asBigInt(values[4])
	if err != nil {
		return PositionState{}, fmt.Errorf("position fee: %w", err)
	}
	state.Fee = uint32(feeBig.Uint64())
	if state.TickLower, err = int24FromBig(values[5]); err != nil {
		return PositionState{}, fmt.Errorf("position tickLower: %w", err)
	}
	if state.TickUpper, err = int24FromBig(values[6]); err != nil {
		return PositionState{}, fmt.Errorf("position tickUpper: %w", err)
	}
	if state.Liquidity, err = asBigInt(values[7]); err != nil {
		return PositionState{}, fmt.Errorf("position liquidity: %w", err)
	}
	if state.TokensOwed0, err = asBigInt(values[10]); err != nil {
		return PositionState{}, fmt.Errorf("position tokensOwed0: %w", err)
	}
	if state.TokensOwed1, err = asBigInt(values[11]); err != nil {
		return PositionState{}, fmt.Errorf("position tokensOwed1: %w", err)
	}
	return state, nil
}

// TokenMeta reads the ERC20 symbol and decimals of a token.
func (r *Reader) TokenMeta(ctx context.Context, token common.Address) (model.Token, error) {
	erc20, err := ERC20ABI()
	if err != nil {
		return model.Token{}, err
	}

	decimals, err := r.callMethod(ctx, erc20, token, "decimals")
	if err != nil {
		return model.Token{}, err
	}
	dec, err := asUint8(decimals[0])
	if err != nil {
		return model.Token{}, fmt.Errorf("token decimals: %w", err)
	}

	meta := model.Token{Address: token.Hex(), Decimals: dec}

	symbol, err := r.callMethod(ctx, erc20, token, "symbol")
	if err != nil {
		// Symbol is cosmetic; keep the address as the display name.
		r.logger.Warn("failed to read token symbol",
			zap.String("token", token.Hex()),
			zap.Error(err))
		meta.Symbol = token.Hex()
		return meta, nil
	}
	str, ok := symbol[0].(string)
	if !ok {
		meta.Symbol = token.Hex()
		return meta, nil
	}
	meta.Symbol = str
	return meta, nil
}

// ERC20Balance reads the token balance of an account.
func (r *Reader) ERC20Balance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, err
	}
	values, err := r.callMethod(ctx, erc20, token, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	balance, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("token balance: %w", err)
	}
	return balance, nil
}

// ERC20Allowance reads the spending allowance of a spender for an owner.
func (r *Reader) ERC20Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, err
	}
	values, err := r.callMethod(ctx, erc20, token, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	allowance, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("token allowance: %w", err)
	}
	return allowance, nil
}

func (r *Reader) callMethod(ctx context.Context, contractABI abi.ABI, contract common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	output, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: call %s on %s: %v", model.ErrUpstreamUnavailable, method, contract.Hex(), err)
	}

	values, err := contractABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %v", model.ErrParse, method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s returned no values", model.ErrParse, method)
	}
	return values, nil
}

// PriceFromSqrtX96 converts a Q64.96 sqrt price to a decimal-adjusted
// token1-per-token0 price.
func PriceFromSqrtX96(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) float64 {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return 0
	}
	sqrt, _ := new(big.Float).SetInt(sqrtPriceX96).Float64()
	ratio := sqrt / math.Pow(2, 96)
	price := ratio * ratio
	return price * math.Pow(10, float64(decimals0)-float64(decimals1))
}

func asAddress(v interface{}) (common.Address, error) {
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: expected address, got %T", model.ErrParse, v)
	}
	return addr, nil
}

func asBigInt(v interface{}) (*big.Int, error) {
	b, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: expected *big.Int, got %T", model.ErrParse, v)
	}
	return b, nil
}

func asUint8(v interface{}) (uint8, error) {
	u, ok := v.(uint8)
	if !ok {
		return 0, fmt.Errorf("%w: expected uint8, got %T", model.ErrParse, v)
	}
	return u, nil
}

func int24FromBig(v interface{}) (int32, error) {
	b, err := asBigInt(v)
	if err != nil {
		return 0, err
	}
	if !b.IsInt64() {
		return 0, fmt.Errorf("%w: int24 out of range: %s", model.ErrParse, b.String())
	}
	n := b.Int64()
	if n < -8388608 || n > 8388607 {
		return 0, fmt.Errorf("%w: int24 out of range: %d", model.ErrParse, n)
	}
	return int32(n), nil
}
