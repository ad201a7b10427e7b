// Package wallet models the signing account as an owned resource.
//
// All on-chain actions of a cycle are signed by one account, so nonce
// ordering requires that positions are processed strictly sequentially and
// that at most one rebalance cycle runs against the account at a time. The
// engine enforces the former by control flow; the latter is a caller
// contract (a single periodic scheduler), not a lock.
package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Account identifies the wallet that owns the positions of a cycle.
type Account struct {
	Address common.Address
	ChainID uint64
}

// NewAccount validates the configured address.
func NewAccount(address string, chainID uint64) (Account, error) {
	if !common.IsHexAddress(address) {
		return Account{}, fmt.Errorf("invalid wallet address: %s", address)
	}
	if chainID == 0 {
		return Account{}, fmt.Errorf("chain id is required")
	}
	return Account{Address: common.HexToAddress(address), ChainID: chainID}, nil
}

func (a Account) String() string {
	return a.Address.Hex()
}
