package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/app"
	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/cache"
	"github.com/fd1az/dex-arbitrage-bot/internal/circuitbreaker"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
)

// FeeSource supplies the inputs of the network fee estimate.
type FeeSource interface {
	LatestHeader(ctx context.Context) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
}

// GasOracleConfig holds configuration for the gas oracle.
type GasOracleConfig struct {
	CacheTTL  time.Duration // How long a network fee estimate is reused
	MaxFee    *big.Int      // Upper bound on maxFeePerGas (safety)
	GasLimit  uint64        // Gas limit attached to execution transactions
	MinTipCap *big.Int      // Floor for the priority fee
}

// DefaultGasOracleConfig returns sensible defaults.
func DefaultGasOracleConfig() GasOracleConfig {
	maxFee := new(big.Int)
	maxFee.SetString("2000000000000", 10) // 2000 gwei

	return GasOracleConfig{
		CacheTTL:  5 * time.Second,
		MaxFee:    maxFee,
		GasLimit:  1_500_000,
		MinTipCap: big.NewInt(30_000_000_000), // 30 gwei, Polygon's enforced minimum
	}
}

type gasOracleMetrics struct {
	fetches     metric.Int64Counter
	baseFeeGwei metric.Float64Gauge
	cacheHits   metric.Int64Counter
}

// GasOracle implements app.GasEstimator from the latest base fee and the
// node's tip suggestion.
type GasOracle struct {
	config GasOracleConfig
	source FeeSource
	logger logger.LoggerInterface

	feeCache *cache.Cache[string, domain.NetworkFee]
	cb       *circuitbreaker.CircuitBreaker[domain.NetworkFee]

	tracer  trace.Tracer
	metrics *gasOracleMetrics
}

var _ app.GasEstimator = (*GasOracle)(nil)

// NewGasOracle creates a new gas oracle instance.
func NewGasOracle(cfg GasOracleConfig, source FeeSource, log logger.LoggerInterface) (*GasOracle, error) {
	g := &GasOracle{
		config:   cfg,
		source:   source,
		logger:   log,
		feeCache: cache.New[string, domain.NetworkFee](time.Minute),
		tracer:   otel.Tracer(tracerName),
	}

	if err := g.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("gas-oracle")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		g.logger.Warn(context.Background(), "gas oracle breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	g.cb = circuitbreaker.New[domain.NetworkFee](cbCfg)

	return g, nil
}

func (g *GasOracle) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	g.metrics = &gasOracleMetrics{}

	g.metrics.fetches, err = meter.Int64Counter(
		"gas_fee_fetches_total",
		metric.WithDescription("Total network fee fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	g.metrics.baseFeeGwei, err = meter.Float64Gauge(
		"gas_base_fee_gwei",
		metric.WithDescription("Latest block base fee in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	g.metrics.cacheHits, err = meter.Int64Counter(
		"gas_cache_hits_total",
		metric.WithDescription("Network fee cache hits"),
		metric.WithUnit("{hit}"),
	)
	return err
}

// Estimate returns gas parameters for tier.
func (g *GasOracle) Estimate(ctx context.Context, tier domain.SpeedTier) (domain.GasParams, error) {
	ctx, span := g.tracer.Start(ctx, "gas.estimate",
		trace.WithAttributes(attribute.String("tier", string(tier))))
	defer span.End()

	fee, err := g.NetworkFee(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "network fee")
		return domain.GasParams{}, err
	}

	params := fee.ForTier(tier, g.config.GasLimit)

	if g.config.MaxFee != nil && params.MaxFeePerGas.Cmp(g.config.MaxFee) > 0 {
		g.logger.Warn(ctx, "max fee exceeds cap, clamping",
			"max_fee_gwei", domain.WeiToGwei(params.MaxFeePerGas).String(),
			"cap_gwei", domain.WeiToGwei(g.config.MaxFee).String())
		params.MaxFeePerGas = new(big.Int).Set(g.config.MaxFee)
		if params.MaxPriorityFeePerGas.Cmp(params.MaxFeePerGas) > 0 {
			params.MaxPriorityFeePerGas = new(big.Int).Set(params.MaxFeePerGas)
		}
	}

	span.SetAttributes(
		attribute.String("max_fee_gwei", domain.WeiToGwei(params.MaxFeePerGas).String()),
		attribute.Int64("gas_limit", int64(params.GasLimit)),
	)
	span.SetStatus(codes.Ok, "estimated")

	return params, nil
}

// NetworkFee returns the cached or freshly fetched base fee and tip.
func (g *GasOracle) NetworkFee(ctx context.Context) (domain.NetworkFee, error) {
	if fee, ok := g.feeCache.Get(ctx, "latest"); ok {
		g.metrics.cacheHits.Add(ctx, 1)
		return fee, nil
	}

	g.metrics.fetches.Add(ctx, 1)

	fee, err := g.cb.Execute(func() (domain.NetworkFee, error) {
		header, err := g.source.LatestHeader(ctx)
		if err != nil {
			return domain.NetworkFee{}, err
		}
		if header.BaseFee == nil {
			return domain.NetworkFee{}, fmt.Errorf("block %s has no base fee", header.Number)
		}

		tip, err := g.source.SuggestGasTipCap(ctx)
		if err != nil {
			return domain.NetworkFee{}, err
		}
		if g.config.MinTipCap != nil && tip.Cmp(g.config.MinTipCap) < 0 {
			tip = new(big.Int).Set(g.config.MinTipCap)
		}

		return domain.NetworkFee{
			BaseFee:     new(big.Int).Set(header.BaseFee),
			TipCap:      tip,
			BlockNumber: header.Number.Uint64(),
			FetchedAt:   time.Now(),
		}, nil
	})
	if err != nil {
		return domain.NetworkFee{}, apperror.New(apperror.CodeGasEstimationFailed,
			apperror.WithCause(err),
			apperror.WithContext("network fee"))
	}

	baseGwei, _ := domain.WeiToGwei(fee.BaseFee).Float64()
	g.metrics.baseFeeGwei.Record(ctx, baseGwei)
	g.feeCache.Set(ctx, "latest", fee, g.config.CacheTTL)

	return fee, nil
}

// Close releases the cache janitor.
func (g *GasOracle) Close() error {
	g.feeCache.Close()
	return nil
}
