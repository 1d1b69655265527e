package domain

import "github.com/fd1az/dex-arbitrage-bot/internal/asset"

// SafetyMarginPercent is the share of an insufficient reserve used when
// clamping a flash loan.
const SafetyMarginPercent = 80

// LiquiditySize is the amount the liquidity gate allows for a flash loan.
type LiquiditySize struct {
	Amount       asset.Amount
	WasAdjusted  bool // clamped to the reserve
	UsedFallback bool // reserve query failed, fallback constant used
}

// Insufficient reports whether nothing can be borrowed even after clamping.
func (s LiquiditySize) Insufficient() bool {
	return !s.Amount.IsPositive()
}

// SizeForReserve applies the gate rule: the requested amount passes when the
// reserve covers it, otherwise it is clamped to 80% of the reserve.
func SizeForReserve(requested, reserve asset.Amount) (LiquiditySize, error) {
	cmp, err := reserve.Cmp(requested)
	if err != nil {
		return LiquiditySize{}, err
	}
	if cmp >= 0 {
		return LiquiditySize{Amount: requested}, nil
	}

	clamped, err := reserve.MulFrac(SafetyMarginPercent, 100)
	if err != nil {
		return LiquiditySize{}, err
	}
	return LiquiditySize{Amount: clamped, WasAdjusted: true}, nil
}
