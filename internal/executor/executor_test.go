package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

type fakeCaller struct {
	lastOp   string
	lastArgs map[string]any
	env      Envelope
	err      error
}

func (f *fakeCaller) Call(_ context.Context, operation string, args map[string]any) (Envelope, error) {
	f.lastOp = operation
	f.lastArgs = args
	return f.env, f.err
}

func textEnvelope(text string) Envelope {
	return Envelope{Content: []Payload{{Type: "text", Text: text}}}
}

func TestParseTxResult(t *testing.T) {
	result, err := ParseTxResult(textEnvelope(`{"success":true,"tx_hashes":["0xaa","0xbb"]}`))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"0xaa", "0xbb"}, result.TxHashes)
}

func TestParseTxResultFailures(t *testing.T) {
	cases := []struct {
		name string
		env  Envelope
	}{
		{"empty envelope", Envelope{}},
		{"empty payload", textEnvelope("")},
		{"not json", textEnvelope("transaction went through")},
		{"missing success", textEnvelope(`{"tx_hashes":[]}`)},
		{"success wrong type", textEnvelope(`{"success":"yes"}`)},
		{"tx_hashes wrong type", textEnvelope(`{"success":true,"tx_hashes":"0xaa"}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTxResult(tc.env)
			assert.ErrorIs(t, err, model.ErrParse)
		})
	}
}

func TestParseMintResult(t *testing.T) {
	result, err := ParseMintResult(textEnvelope(`{"success":true,"tx_hashes":["0xcc"],"position_id":"12345"}`))
	require.NoError(t, err)
	assert.Equal(t, "12345", result.PositionID)
}

func TestParseMintResultUnknownID(t *testing.T) {
	// A missing or undecodable minted id is reported as "unknown", not as
	// an error.
	result, err := ParseMintResult(textEnvelope(`{"success":true,"tx_hashes":["0xcc"]}`))
	require.NoError(t, err)
	assert.Equal(t, UnknownPositionID, result.PositionID)

	result, err = ParseMintResult(textEnvelope(`{"success":true,"position_id":42}`))
	require.NoError(t, err)
	assert.Equal(t, UnknownPositionID, result.PositionID)
}

func TestClientWithdraw(t *testing.T) {
	caller := &fakeCaller{env: textEnvelope(`{"success":true,"tx_hashes":["0xdd"]}`)}
	client := NewClient(caller, nil)

	result, err := client.Withdraw(context.Background(), WithdrawArgs{ChainID: 42161, PositionID: "7"})
	require.NoError(t, err)
	assert.Equal(t, OpWithdraw, caller.lastOp)
	assert.Equal(t, "7", caller.lastArgs["position_id"])
	assert.Equal(t, []string{"0xdd"}, result.TxHashes)
}

func TestClientWithdrawExecutionFailure(t *testing.T) {
	caller := &fakeCaller{env: textEnvelope(`{"success":false,"error":"position locked"}`)}
	client := NewClient(caller, nil)

	_, err := client.Withdraw(context.Background(), WithdrawArgs{PositionID: "7"})
	assert.ErrorIs(t, err, model.ErrExecutionFailure)
	assert.Contains(t, err.Error(), "position locked")
}

func TestClientTransportError(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection reset")}
	client := NewClient(caller, nil)

	_, err := client.Swap(context.Background(), SwapArgs{
		TokenIn:  "0xaaa",
		TokenOut: "0xbbb",
		AmountIn: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, model.ErrUpstreamUnavailable)
}

func TestClientSupplyArgsOnWire(t *testing.T) {
	caller := &fakeCaller{env: textEnvelope(`{"success":true,"position_id":"99"}`)}
	client := NewClient(caller, nil)

	result, err := client.Supply(context.Background(), SupplyArgs{
		ChainID:     42161,
		PoolAddress: "0xpool",
		LowerTick:   -76500,
		UpperTick:   -75480,
		Amount0:     decimal.RequireFromString("9.9"),
		Amount1:     decimal.NewFromInt(19800),
	})
	require.NoError(t, err)
	assert.Equal(t, OpSupply, caller.lastOp)
	assert.Equal(t, "9.9", caller.lastArgs["amount0"])
	assert.Equal(t, int32(-76500), caller.lastArgs["lower_tick"])
	assert.Equal(t, "99", result.PositionID)
}
