package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// GasCost is the native-token cost of a mined transaction, bounded by the
// max fee it was submitted with.
type GasCost struct {
	GasUsed      uint64
	MaxFeePerGas *big.Int // in wei
	TotalWei     *big.Int // gasUsed * maxFeePerGas
	Native       decimal.Decimal
}

// NewGasCost creates a GasCost from a receipt's gas usage.
func NewGasCost(gasUsed uint64, maxFeePerGas *big.Int) *GasCost {
	fee := maxFeePerGas
	if fee == nil {
		fee = new(big.Int)
	}
	total := new(big.Int).Mul(fee, new(big.Int).SetUint64(gasUsed))

	return &GasCost{
		GasUsed:      gasUsed,
		MaxFeePerGas: fee,
		TotalWei:     total,
		Native:       decimal.NewFromBigInt(total, -18),
	}
}
