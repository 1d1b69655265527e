// Package domain contains the core domain types for the pricing context.
package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
)

// PairKey identifies a directed pair by token addresses.
type PairKey struct {
	In  common.Address
	Out common.Address
}

// String returns "0xIn->0xOut".
func (k PairKey) String() string {
	return k.In.Hex() + "->" + k.Out.Hex()
}

// TokenPair is a directed pair quoted with a fixed test amount of TokenIn.
// It is built from configuration and never mutated.
type TokenPair struct {
	TokenIn      *asset.Asset
	TokenOut     *asset.Asset
	TestAmountIn asset.Amount
}

// NewTokenPair validates and creates a pair.
func NewTokenPair(in, out *asset.Asset, testAmountIn asset.Amount) (TokenPair, error) {
	if in == nil || out == nil {
		return TokenPair{}, fmt.Errorf("pricing: nil token in pair")
	}
	if in.Equals(out) {
		return TokenPair{}, fmt.Errorf("pricing: pair %s/%s has identical tokens", in.Symbol(), out.Symbol())
	}
	if !testAmountIn.Asset().Equals(in) {
		return TokenPair{}, fmt.Errorf("pricing: test amount of %s is not denominated in %s", testAmountIn.Asset().Symbol(), in.Symbol())
	}
	if !testAmountIn.IsPositive() {
		return TokenPair{}, fmt.Errorf("pricing: pair %s/%s needs a positive test amount", in.Symbol(), out.Symbol())
	}
	return TokenPair{TokenIn: in, TokenOut: out, TestAmountIn: testAmountIn}, nil
}

// Key returns the pair identity.
func (p TokenPair) Key() PairKey {
	return PairKey{In: p.TokenIn.Address(), Out: p.TokenOut.Address()}
}

// String returns the pair symbol (e.g., "USDC/WETH").
func (p TokenPair) String() string {
	return p.TokenIn.Symbol() + "/" + p.TokenOut.Symbol()
}
