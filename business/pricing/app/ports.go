// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
)

// QuoteSource prices a pair on one venue. Any failure is reported as an
// error carrying apperror.CodeQuoteUnavailable; callers treat it as "no quote".
type QuoteSource interface {
	Venue() domain.VenueID
	Kind() string
	Quote(ctx context.Context, pair domain.TokenPair) (domain.Quote, error)
}

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// PairOrderer decides the polling order of pairs.
type PairOrderer interface {
	Order(pairs []domain.TokenPair) []domain.TokenPair
}
