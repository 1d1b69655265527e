// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
)

// ErrSameVenue is returned when an opportunity would buy and sell on the
// same venue.
var ErrSameVenue = errors.New("buy and sell venue are the same")

// Opportunity is a cross-venue price difference for one pair. It is only
// valid for the cycle that produced it.
type Opportunity struct {
	ID              uuid.UUID
	CycleID         uuid.UUID
	Pair            pricingDomain.TokenPair
	BuyVenue        pricingDomain.VenueID // lowest output
	SellVenue       pricingDomain.VenueID // highest output
	BuyAmountOut    asset.Amount
	SellAmountOut   asset.Amount
	SpreadPercent   decimal.Decimal
	EstimatedProfit decimal.Decimal // gross, in output-token units
	DetectedAt      time.Time
}

// NewOpportunity builds an opportunity from a pair's spread.
//
// The profit estimate is testAmountIn * (max - min), a first-order figure
// that ignores the trade's own price impact, fees and gas.
func NewOpportunity(cycleID uuid.UUID, pair pricingDomain.TokenPair, spread pricingDomain.Spread, at time.Time) (Opportunity, error) {
	if spread.Low.Venue == spread.High.Venue {
		return Opportunity{}, ErrSameVenue
	}

	return Opportunity{
		ID:              uuid.New(),
		CycleID:         cycleID,
		Pair:            pair,
		BuyVenue:        spread.Low.Venue,
		SellVenue:       spread.High.Venue,
		BuyAmountOut:    spread.Low.AmountOut,
		SellAmountOut:   spread.High.AmountOut,
		SpreadPercent:   spread.Percent,
		EstimatedProfit: pair.TestAmountIn.ToDecimal().Mul(spread.Absolute),
		DetectedAt:      at,
	}, nil
}

// InputToken is the token the execution contracts are funded with.
func (o Opportunity) InputToken() *asset.Asset {
	return o.Pair.TokenIn
}

// InputAmount is the amount the opportunity was priced at.
func (o Opportunity) InputAmount() asset.Amount {
	return o.Pair.TestAmountIn
}
