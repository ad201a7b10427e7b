package dex

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

func TestABIsParse(t *testing.T) {
	poolABI, err := V3PoolABI()
	if err != nil {
		t.Fatalf("parse pool ABI: %v", err)
	}
	for _, method := range []string{"token0", "token1", "fee", "tickSpacing", "liquidity", "slot0"} {
		if _, ok := poolABI.Methods[method]; !ok {
			t.Errorf("pool ABI missing method %s", method)
		}
	}

	managerABI, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("parse position manager ABI: %v", err)
	}
	positions, ok := managerABI.Methods["positions"]
	if !ok {
		t.Fatal("position manager ABI missing positions")
	}
	if len(positions.Outputs) != 12 {
		t.Errorf("positions outputs = %d, want 12", len(positions.Outputs))
	}

	erc20, err := ERC20ABI()
	if err != nil {
		t.Fatalf("parse ERC20 ABI: %v", err)
	}
	if _, err := erc20.Pack("balanceOf", common.HexToAddress("0x1")); err != nil {
		t.Errorf("pack balanceOf: %v", err)
	}
	if _, err := erc20.Pack("allowance", common.HexToAddress("0x1"), common.HexToAddress("0x2")); err != nil {
		t.Errorf("pack allowance: %v", err)
	}
}

func TestPriceFromSqrtX96(t *testing.T) {
	// sqrtPriceX96 == 2^96 encodes a raw price of exactly 1.
	q96 := new(big.Int).Lsh(big.NewInt(1), 96)
	if got := PriceFromSqrtX96(q96, 18, 18); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("price at 2^96 = %v, want 1.0", got)
	}

	// Doubling the sqrt price quadruples the price.
	doubled := new(big.Int).Lsh(big.NewInt(1), 97)
	if got := PriceFromSqrtX96(doubled, 18, 18); math.Abs(got-4.0) > 1e-9 {
		t.Errorf("price at 2^97 = %v, want 4.0", got)
	}

	// Decimal mismatch scales the human-readable price.
	if got := PriceFromSqrtX96(q96, 6, 18); math.Abs(got-1e-12) > 1e-21 {
		t.Errorf("price with 6/18 decimals = %v, want 1e-12", got)
	}

	if got := PriceFromSqrtX96(nil, 18, 18); got != 0 {
		t.Errorf("price of nil sqrt = %v, want 0", got)
	}
	if got := PriceFromSqrtX96(big.NewInt(0), 18, 18); got != 0 {
		t.Errorf("price of zero sqrt = %v, want 0", got)
	}
}

func TestInt24FromBig(t *testing.T) {
	cases := []struct {
		value   int64
		want    int32
		wantErr bool
	}{
		{0, 0, false},
		{-76500, -76500, false},
		{8388607, 8388607, false},
		{-8388608, -8388608, false},
		{8388608, 0, true},
		{-8388609, 0, true},
	}
	for _, tc := range cases {
		got, err := int24FromBig(big.NewInt(tc.value))
		if tc.wantErr {
			if !errors.Is(err, model.ErrParse) {
				t.Errorf("int24FromBig(%d) error = %v, want ErrParse", tc.value, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("int24FromBig(%d) error = %v", tc.value, err)
			continue
		}
		if got != tc.want {
			t.Errorf("int24FromBig(%d) = %d, want %d", tc.value, got, tc.want)
		}
	}
}

func TestInt24FromBigWrongType(t *testing.T) {
	if _, err := int24FromBig("not a big int"); !errors.Is(err, model.ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}
