// Package algebra quotes dynamic-fee concentrated-liquidity venues (Algebra
// pools, e.g. QuickSwap v3). Pools have no fee tiers, so a single quoter call
// prices the pair.
package algebra

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

const tracerName = "github.com/fd1az/dex-arbitrage-bot/business/pricing/infra/algebra"

// Kind is the venue kind handled by this package.
const Kind = config.VenueKindAlgebra

// QuoterABI is the Algebra quoter's quoteExactInputSingle.
const QuoterABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "tokenIn", "type": "address"},
			{"internalType": "address", "name": "tokenOut", "type": "address"},
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "uint160", "name": "limitSqrtPrice", "type": "uint160"}
		],
		"name": "quoteExactInputSingle",
		"outputs": [
			{"internalType": "uint256", "name": "amountOut", "type": "uint256"},
			{"internalType": "uint16", "name": "fee", "type": "uint16"}
		],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

var _ app.QuoteSource = (*Quoter)(nil)

// Quoter implements QuoteSource for an Algebra quoter deployment.
type Quoter struct {
	venue     domain.VenueID
	caller    app.ContractCaller
	quoter    common.Address
	quoterABI abi.ABI
	logger    logger.LoggerInterface
	tracer    trace.Tracer
}

// NewQuoter creates the adapter for venue.
func NewQuoter(caller app.ContractCaller, venue config.VenueConfig, log logger.LoggerInterface) (*Quoter, error) {
	if !common.IsHexAddress(venue.Quoter) {
		return nil, fmt.Errorf("venue %s: invalid quoter address %q", venue.ID, venue.Quoter)
	}

	parsed, err := abi.JSON(strings.NewReader(QuoterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	return &Quoter{
		venue:     domain.VenueID(venue.ID),
		caller:    caller,
		quoter:    common.HexToAddress(venue.Quoter),
		quoterABI: parsed,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// Venue returns the venue id.
func (q *Quoter) Venue() domain.VenueID { return q.venue }

// Kind returns the venue kind.
func (q *Quoter) Kind() string { return Kind }

// Quote simulates the swap. The pool's current dynamic fee is recorded as the
// quote's fee tier.
func (q *Quoter) Quote(ctx context.Context, pair domain.TokenPair) (domain.Quote, error) {
	ctx, span := q.tracer.Start(ctx, "algebra.quote",
		trace.WithAttributes(
			attribute.String("venue", string(q.venue)),
			attribute.String("pair", pair.String()),
		),
	)
	defer span.End()

	data, err := q.quoterABI.Pack("quoteExactInputSingle",
		pair.TokenIn.Address(),
		pair.TokenOut.Address(),
		pair.TestAmountIn.Raw(),
		big.NewInt(0),
	)
	if err != nil {
		return domain.Quote{}, q.fail(span, pair, fmt.Errorf("encode quote: %w", err))
	}

	raw, err := q.caller.Call(ctx, q.quoter, data)
	if err != nil {
		return domain.Quote{}, q.fail(span, pair, err)
	}

	out, err := q.quoterABI.Unpack("quoteExactInputSingle", raw)
	if err != nil {
		return domain.Quote{}, q.fail(span, pair, fmt.Errorf("decode quote: %w", err))
	}
	if len(out) < 2 {
		return domain.Quote{}, q.fail(span, pair, fmt.Errorf("unexpected output length: %d", len(out)))
	}

	amountOut, ok := out[0].(*big.Int)
	if !ok {
		return domain.Quote{}, q.fail(span, pair, fmt.Errorf("unexpected amountOut type %T", out[0]))
	}
	fee, _ := out[1].(uint16)

	span.SetAttributes(
		attribute.String("amount_out", amountOut.String()),
		attribute.Int("fee", int(fee)),
	)
	span.SetStatus(codes.Ok, "quote received")

	return domain.NewQuote(q.venue, pair.TokenOut, amountOut, int(fee)), nil
}

func (q *Quoter) fail(span trace.Span, pair domain.TokenPair, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "no quote")
	return apperror.New(apperror.CodeQuoteUnavailable,
		apperror.WithContext(fmt.Sprintf("%s on %s", pair.String(), q.venue)),
		apperror.WithCause(err))
}
