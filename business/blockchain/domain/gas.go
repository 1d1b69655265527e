// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SpeedTier selects how aggressively a transaction is priced.
type SpeedTier string

const (
	SpeedDefault SpeedTier = "default"
	SpeedFast    SpeedTier = "fast"
	SpeedFastest SpeedTier = "fastest"
)

// ParseSpeedTier parses a config value.
func ParseSpeedTier(s string) (SpeedTier, error) {
	switch t := SpeedTier(strings.ToLower(strings.TrimSpace(s))); t {
	case SpeedDefault, SpeedFast, SpeedFastest:
		return t, nil
	case "":
		return SpeedDefault, nil
	default:
		return "", fmt.Errorf("unknown gas speed tier %q", s)
	}
}

// multiplier returns the tier's fixed multiplier as a percentage.
func (t SpeedTier) multiplier() int64 {
	switch t {
	case SpeedFast:
		return 125
	case SpeedFastest:
		return 150
	default:
		return 100
	}
}

// NetworkFee is the base network fee estimate every tier scales from.
type NetworkFee struct {
	BaseFee     *big.Int
	TipCap      *big.Int
	BlockNumber uint64
	FetchedAt   time.Time
}

// GasParams are the EIP-1559 parameters attached to a transaction.
type GasParams struct {
	Tier                 SpeedTier
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	GasLimit             uint64
}

// ForTier scales the network fee by the tier multiplier.
// maxFeePerGas leaves room for two full base-fee increases: (2*base + tip) * m.
func (f NetworkFee) ForTier(tier SpeedTier, gasLimit uint64) GasParams {
	m := big.NewInt(tier.multiplier())
	hundred := big.NewInt(100)

	tip := new(big.Int).Mul(f.TipCap, m)
	tip.Quo(tip, hundred)

	maxFee := new(big.Int).Mul(f.BaseFee, big.NewInt(2))
	maxFee.Add(maxFee, f.TipCap)
	maxFee.Mul(maxFee, m)
	maxFee.Quo(maxFee, hundred)

	return GasParams{
		Tier:                 tier,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tip,
		GasLimit:             gasLimit,
	}
}

// MaxCostWei is the worst-case fee the transaction can pay.
func (g GasParams) MaxCostWei() *big.Int {
	if g.MaxFeePerGas == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(g.MaxFeePerGas, new(big.Int).SetUint64(g.GasLimit))
}

// WeiToGwei converts wei to gwei for display.
func WeiToGwei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -9)
}
