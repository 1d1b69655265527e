// Package uniswapv2 quotes constant-product venues through their router's
// getAmountsOut.
package uniswapv2

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

const tracerName = "github.com/fd1az/dex-arbitrage-bot/business/pricing/infra/uniswapv2"

// Kind is the venue kind handled by this package.
const Kind = config.VenueKindV2

// RouterABI is the subset of IUniswapV2Router02 used for quoting.
const RouterABI = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "address[]", "name": "path", "type": "address[]"}
		],
		"name": "getAmountsOut",
		"outputs": [
			{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

var _ app.QuoteSource = (*Router)(nil)

// Router implements QuoteSource for a V2-style router.
type Router struct {
	venue     domain.VenueID
	caller    app.ContractCaller
	router    common.Address
	routerABI abi.ABI
	logger    logger.LoggerInterface
	tracer    trace.Tracer
}

// NewRouter creates the adapter for venue.
func NewRouter(caller app.ContractCaller, venue config.VenueConfig, log logger.LoggerInterface) (*Router, error) {
	if !common.IsHexAddress(venue.Router) {
		return nil, fmt.Errorf("venue %s: invalid router address %q", venue.ID, venue.Router)
	}

	parsed, err := abi.JSON(strings.NewReader(RouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}

	return &Router{
		venue:     domain.VenueID(venue.ID),
		caller:    caller,
		router:    common.HexToAddress(venue.Router),
		routerABI: parsed,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// Venue returns the venue id.
func (r *Router) Venue() domain.VenueID { return r.venue }

// Kind returns the venue kind.
func (r *Router) Kind() string { return Kind }

// Quote prices the direct path [tokenIn, tokenOut]; the output is amounts[1].
func (r *Router) Quote(ctx context.Context, pair domain.TokenPair) (domain.Quote, error) {
	ctx, span := r.tracer.Start(ctx, "uniswapv2.quote",
		trace.WithAttributes(
			attribute.String("venue", string(r.venue)),
			attribute.String("pair", pair.String()),
		),
	)
	defer span.End()

	path := []common.Address{pair.TokenIn.Address(), pair.TokenOut.Address()}
	data, err := r.routerABI.Pack("getAmountsOut", pair.TestAmountIn.Raw(), path)
	if err != nil {
		return domain.Quote{}, r.fail(span, pair, fmt.Errorf("encode getAmountsOut: %w", err))
	}

	raw, err := r.caller.Call(ctx, r.router, data)
	if err != nil {
		return domain.Quote{}, r.fail(span, pair, err)
	}

	out, err := r.routerABI.Unpack("getAmountsOut", raw)
	if err != nil {
		return domain.Quote{}, r.fail(span, pair, fmt.Errorf("decode getAmountsOut: %w", err))
	}
	if len(out) == 0 {
		return domain.Quote{}, r.fail(span, pair, fmt.Errorf("empty getAmountsOut result"))
	}
	amounts, ok := out[0].([]*big.Int)
	if !ok || len(amounts) < 2 {
		return domain.Quote{}, r.fail(span, pair, fmt.Errorf("malformed getAmountsOut result %v", out[0]))
	}

	amountOut := amounts[1]
	span.SetAttributes(attribute.String("amount_out", amountOut.String()))
	span.SetStatus(codes.Ok, "quote received")

	return domain.NewQuote(r.venue, pair.TokenOut, amountOut, 0), nil
}

func (r *Router) fail(span trace.Span, pair domain.TokenPair, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "no quote")
	return apperror.New(apperror.CodeQuoteUnavailable,
		apperror.WithContext(fmt.Sprintf("%s on %s", pair.String(), r.venue)),
		apperror.WithCause(err))
}
