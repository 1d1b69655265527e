// Package asset models on-chain tokens and exact token amounts.
// Amounts are big.Int in the token's smallest unit; decimal.Decimal is only
// produced at boundaries (analysis math, display, config parsing).
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// AssetID identifies a token by chain and contract address.
// The symbol is display metadata, never identity.
type AssetID struct {
	chainID uint64
	address common.Address
}

// NewTokenAssetID creates an AssetID for an ERC20 token.
func NewTokenAssetID(chainID uint64, addr common.Address) AssetID {
	if addr == (common.Address{}) {
		panic("asset: token address cannot be zero")
	}
	return AssetID{chainID: chainID, address: addr}
}

// ChainID returns the chain the token lives on.
func (id AssetID) ChainID() uint64 {
	return id.chainID
}

// Address returns the token contract address.
func (id AssetID) Address() common.Address {
	return id.address
}

// String returns "chainID:address".
func (id AssetID) String() string {
	return fmt.Sprintf("%d:%s", id.chainID, id.address.Hex())
}

// Equals compares two AssetIDs.
func (id AssetID) Equals(other AssetID) bool {
	return id.chainID == other.chainID && id.address == other.address
}
