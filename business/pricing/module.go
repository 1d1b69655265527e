// Package pricing implements the pricing bounded context: per-venue quote
// adapters and the price table builder.
package pricing

import (
	"context"

	blockchainDI "github.com/fd1az/dex-arbitrage-bot/business/blockchain/di"
	"github.com/fd1az/dex-arbitrage-bot/business/pricing/app"
	pricingDI "github.com/fd1az/dex-arbitrage-bot/business/pricing/di"
	"github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/business/pricing/infra/algebra"
	"github.com/fd1az/dex-arbitrage-bot/business/pricing/infra/uniswapv2"
	"github.com/fd1az/dex-arbitrage-bot/business/pricing/infra/uniswapv3"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/monolith"
	"github.com/fd1az/dex-arbitrage-bot/internal/retry"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
// Services are resolved after the blockchain module has completed the token
// registry.
func (m *Module) RegisterServices(c di.Container) error {
	// Register VenueRegistry (private)
	di.RegisterToken(c, pricingDI.VenueRegistry, func(sr di.ServiceRegistry) *app.VenueRegistry {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		reg := sr.Get(monolith.ServiceAssetRegistry).(*asset.Registry)
		caller := blockchainDI.GetContractCaller(sr)

		venues := NewRegistry(caller, cfg, reg, log)
		if err := venues.Build(cfg.Venues); err != nil {
			panic("failed to build venues: " + err.Error())
		}
		return venues
	})

	// Register Pairs (public)
	di.RegisterToken(c, pricingDI.Pairs, func(sr di.ServiceRegistry) []domain.TokenPair {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		reg := sr.Get(monolith.ServiceAssetRegistry).(*asset.Registry)

		pairs, err := app.BuildPairs(cfg.Pairs, reg)
		if err != nil {
			panic("failed to build pairs: " + err.Error())
		}
		return pairs
	})

	// Register TableBuilder (public)
	di.RegisterToken(c, pricingDI.TableBuilder, func(sr di.ServiceRegistry) *app.TableBuilder {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		builderCfg := app.DefaultBuilderConfig()
		if cfg.Arbitrage.BatchSize > 0 {
			builderCfg.BatchSize = cfg.Arbitrage.BatchSize
		}
		if cfg.Arbitrage.MaxConcurrency > 0 {
			builderCfg.MaxConcurrency = cfg.Arbitrage.MaxConcurrency
		}
		builderCfg.BatchDelay = cfg.Arbitrage.BatchDelay
		builderCfg.Retry = retry.Policy{MaxRetries: cfg.Retry.MaxRetries, BaseDelay: cfg.Retry.BaseDelay}

		builder, err := app.NewTableBuilder(pricingDI.GetVenueRegistry(sr).Sources(), builderCfg, log)
		if err != nil {
			panic("failed to create table builder: " + err.Error())
		}
		return builder
	})

	return nil
}

// NewRegistry returns a venue registry with every supported kind installed.
func NewRegistry(caller app.ContractCaller, cfg *config.Config, reg *asset.Registry, log logger.LoggerInterface) *app.VenueRegistry {
	venues := app.NewVenueRegistry()

	venues.RegisterKind(uniswapv2.Kind, func(v config.VenueConfig) (app.QuoteSource, error) {
		return uniswapv2.NewRouter(caller, v, log)
	})
	venues.RegisterKind(uniswapv3.Kind, func(v config.VenueConfig) (app.QuoteSource, error) {
		pins, err := app.BuildPins(v.ID, cfg.FeeTierPin, reg)
		if err != nil {
			return nil, err
		}
		return uniswapv3.NewQuoter(caller, v, pins, log)
	})
	venues.RegisterKind(algebra.Kind, func(v config.VenueConfig) (app.QuoteSource, error) {
		return algebra.NewQuoter(caller, v, log)
	})

	return venues
}

// Startup resolves the pricing services so configuration errors surface
// before the first cycle.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	pairs := pricingDI.GetPairs(mono.Services())
	builder := pricingDI.GetTableBuilder(mono.Services())

	log.Info(ctx, "pricing module started",
		"pairs", len(pairs),
		"venues", len(builder.Venues()),
	)
	return nil
}
