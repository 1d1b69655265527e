// Package uniswapv3 quotes concentrated-liquidity venues through a QuoterV2
// contract, searching the configured fee tiers.
package uniswapv3

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-arbitrage-bot/business/pricing/app"
	"github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
)

const tracerName = "github.com/fd1az/dex-arbitrage-bot/business/pricing/infra/uniswapv3"

// Kind is the venue kind handled by this package.
const Kind = config.VenueKindV3

// Ensure Quoter implements QuoteSource.
var _ app.QuoteSource = (*Quoter)(nil)

// Quoter implements QuoteSource for one QuoterV2 deployment.
type Quoter struct {
	venue     domain.VenueID
	caller    app.ContractCaller
	quoter    common.Address
	quoterABI abi.ABI
	feeTiers  []int
	pins      map[domain.PairKey]int

	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewQuoter creates a quoter for venue. pins fixes the fee tier for specific
// pairs; other pairs search every tier.
func NewQuoter(caller app.ContractCaller, venue config.VenueConfig, pins map[domain.PairKey]int, log logger.LoggerInterface) (*Quoter, error) {
	if !common.IsHexAddress(venue.Quoter) {
		return nil, fmt.Errorf("venue %s: invalid quoter address %q", venue.ID, venue.Quoter)
	}

	// Parse QuoterV2 ABI
	parsedABI, err := abi.JSON(strings.NewReader(QuoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	tiers := venue.FeeTiers
	if len(tiers) == 0 {
		tiers = DefaultFeeTiers
	}

	return &Quoter{
		venue:     domain.VenueID(venue.ID),
		caller:    caller,
		quoter:    common.HexToAddress(venue.Quoter),
		quoterABI: parsedABI,
		feeTiers:  tiers,
		pins:      pins,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// Venue returns the venue id.
func (q *Quoter) Venue() domain.VenueID { return q.venue }

// Kind returns the venue kind.
func (q *Quoter) Kind() string { return Kind }

// Quote returns the best output across fee tiers. A tier that reverts has no
// pool and is skipped.
func (q *Quoter) Quote(ctx context.Context, pair domain.TokenPair) (domain.Quote, error) {
	ctx, span := q.tracer.Start(ctx, "uniswapv3.quote",
		trace.WithAttributes(
			attribute.String("venue", string(q.venue)),
			attribute.String("pair", pair.String()),
		),
	)
	defer span.End()

	tiers := q.feeTiers
	if pinned, ok := q.pins[pair.Key()]; ok {
		tiers = []int{pinned}
	}

	var (
		best     *tierQuote
		bestTier int
		lastErr  error
		reverts  int
	)

	for _, feeTier := range tiers {
		res, err := q.quoteTier(ctx, pair, feeTier)
		if err != nil {
			if apperror.HasCode(err, apperror.CodeExecutionReverted) {
				reverts++
			}
			lastErr = err
			span.AddEvent("fee_tier_failed",
				trace.WithAttributes(
					attribute.Int("fee_tier", feeTier),
					attribute.String("error", err.Error()),
				),
			)
			continue
		}

		// Keep the best (highest output) quote
		if best == nil || res.AmountOut.Cmp(best.AmountOut) > 0 {
			best = res
			bestTier = feeTier
		}
	}

	if best == nil {
		span.SetStatus(codes.Error, "no valid quote")
		return domain.Quote{}, noQuote(pair, lastErr, reverts == len(tiers))
	}

	span.SetAttributes(
		attribute.String("amount_out", best.AmountOut.String()),
		attribute.Int("fee_tier", bestTier),
	)
	span.SetStatus(codes.Ok, "quote received")

	q.logger.Debug(ctx, "v3 quote",
		"venue", q.venue,
		"pair", pair.String(),
		"amount_out", best.AmountOut.String(),
		"fee_tier", bestTier,
	)

	return domain.NewQuote(q.venue, pair.TokenOut, best.AmountOut, bestTier), nil
}

// quoteTier calls QuoterV2.quoteExactInputSingle for a specific fee tier.
func (q *Quoter) quoteTier(ctx context.Context, pair domain.TokenPair, feeTier int) (*tierQuote, error) {
	callData, err := q.quoterABI.Pack("quoteExactInputSingle", QuoteExactInputSingleParams{
		TokenIn:           pair.TokenIn.Address(),
		TokenOut:          pair.TokenOut.Address(),
		AmountIn:          pair.TestAmountIn.Raw(),
		Fee:               big.NewInt(int64(feeTier)),
		SqrtPriceLimitX96: big.NewInt(0), // No price limit
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := q.caller.Call(ctx, q.quoter, callData)
	if err != nil {
		return nil, err
	}

	outputs, err := q.quoterABI.Unpack("quoteExactInputSingle", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(outputs) < 4 {
		return nil, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	amountOut, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected amountOut type %T", outputs[0])
	}
	gas, _ := outputs[3].(*big.Int)

	return &tierQuote{AmountOut: amountOut, GasEstimate: gas}, nil
}

// noQuote wraps the last failure. When every tier reverted the error keeps
// the revert code so callers know retrying is pointless.
func noQuote(pair domain.TokenPair, cause error, allReverted bool) error {
	if allReverted {
		cause = apperror.New(apperror.CodeExecutionReverted,
			apperror.WithContext("no pool at any fee tier"),
			apperror.WithCause(cause))
	}
	return apperror.New(apperror.CodeQuoteUnavailable,
		apperror.WithContext(pair.String()),
		apperror.WithCause(cause))
}
