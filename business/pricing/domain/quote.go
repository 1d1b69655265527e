package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
)

// VenueID names a configured DEX router or quoter.
type VenueID string

// Quote is one venue's output for a pair's test amount.
type Quote struct {
	Venue     VenueID
	AmountOut asset.Amount
	// FeeTier is the pool fee in hundredths of a bip. Zero for venues without tiers.
	FeeTier   int
	Timestamp time.Time
}

// NewQuote creates a quote for amountOut raw units of out.
func NewQuote(venue VenueID, out *asset.Asset, amountOut *big.Int, feeTier int) Quote {
	return Quote{
		Venue:     venue,
		AmountOut: asset.NewAmount(out, amountOut),
		FeeTier:   feeTier,
		Timestamp: time.Now(),
	}
}

// Valid reports whether the quote may enter a price table.
func (q Quote) Valid() bool {
	return q.Venue != "" && q.AmountOut.Asset() != nil && q.AmountOut.IsPositive()
}

// FeeTierPercent returns the fee tier as a percentage string (e.g., "0.30%").
func (q Quote) FeeTierPercent() string {
	if q.FeeTier == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", float64(q.FeeTier)/10000.0)
}

// Rate returns amountOut/amountIn in human units for pair.
func (q Quote) Rate(pair TokenPair) decimal.Decimal {
	in := pair.TestAmountIn.ToDecimal()
	if in.IsZero() {
		return decimal.Zero
	}
	return q.AmountOut.ToDecimal().Div(in)
}
