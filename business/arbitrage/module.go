// Package arbitrage implements the arbitrage bounded context: spread and
// triangular analysis, pair performance tracking and the monitoring loop.
package arbitrage

import (
	"context"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/dex-arbitrage-bot/business/arbitrage/di"
	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/infra"
	executionDI "github.com/fd1az/dex-arbitrage-bot/business/execution/di"
	pricingDI "github.com/fd1az/dex-arbitrage-bot/business/pricing/di"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/monolith"
)

const redisDialTimeout = 5 * time.Second

// Module implements the arbitrage bounded context.
type Module struct {
	// Program receives dashboard updates when the TUI is running. Nil
	// selects the console reporter.
	Program infra.MessageSender
}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Store (private)
	di.RegisterToken(c, arbitrageDI.Store, func(sr di.ServiceRegistry) app.PerformanceStore {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)

		if cfg.State.Backend == "redis" {
			ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
			defer cancel()

			rdb, err := infra.DialRedis(ctx, infra.RedisConfig{
				Addr:     cfg.State.RedisAddr,
				Password: cfg.State.RedisPass,
				DB:       cfg.State.RedisDB,
			})
			if err != nil {
				panic("failed to connect to redis: " + err.Error())
			}
			return infra.NewRedisStore(rdb, cfg.State.RedisKey)
		}
		return infra.NewFileStore(cfg.StatePath())
	})

	// Register Tracker (public)
	di.RegisterToken(c, arbitrageDI.Tracker, func(sr di.ServiceRegistry) *app.PerformanceTracker {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		return app.NewPerformanceTracker(arbitrageDI.GetStore(sr), cfg.State.FlushEvery, log)
	})

	// Register Analyzer (private)
	di.RegisterToken(c, arbitrageDI.Analyzer, func(sr di.ServiceRegistry) *app.Analyzer {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		return app.NewAnalyzer(decimal.NewFromFloat(cfg.Arbitrage.MinProfitPercent))
	})

	// Register Triangular (private, nil when disabled)
	di.RegisterToken(c, arbitrageDI.Triangular, func(sr di.ServiceRegistry) *app.TriangularAnalyzer {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		reg := sr.Get(monolith.ServiceAssetRegistry).(*asset.Registry)
		if !cfg.Arbitrage.TriangularEnabled || len(cfg.Routes) == 0 {
			return nil
		}

		routes, err := app.BuildRoutes(cfg.Routes, reg)
		if err != nil {
			panic("failed to build triangular routes: " + err.Error())
		}
		return app.NewTriangularAnalyzer(routes,
			app.VenueIDs(cfg.Arbitrage.TriangularVenues),
			decimal.NewFromFloat(cfg.Arbitrage.MinProfitPercent))
	})

	// Register Reporters (private)
	di.RegisterToken(c, arbitrageDI.Reporters, func(sr di.ServiceRegistry) []app.Reporter {
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		if m.Program != nil {
			return []app.Reporter{infra.NewTUIReporter(m.Program, executionDI.GetBreaker(sr))}
		}
		return []app.Reporter{infra.NewConsoleReporter(os.Stdout, log)}
	})

	// Register Monitor (public)
	di.RegisterToken(c, arbitrageDI.Monitor, func(sr di.ServiceRegistry) *app.Monitor {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		monitorCfg := app.MonitorConfig{
			Pairs:        pricingDI.GetPairs(sr),
			PollInterval: cfg.Arbitrage.PollInterval,
			Builder:      pricingDI.GetTableBuilder(sr),
			Analyzer:     arbitrageDI.GetAnalyzer(sr),
			Triangular:   arbitrageDI.GetTriangular(sr),
			Tracker:      arbitrageDI.GetTracker(sr),
			Executor:     executionDI.GetService(sr),
			Reporters:    arbitrageDI.GetReporters(sr),
		}
		monitor, err := app.NewMonitor(monitorCfg, log)
		if err != nil {
			panic("failed to create monitor: " + err.Error())
		}
		return monitor
	})

	return nil
}

// Startup loads persisted pair performance and starts the reporters. A
// store that cannot be read is not fatal; the tracker starts empty.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	tracker := arbitrageDI.GetTracker(mono.Services())
	if err := tracker.Load(ctx); err != nil {
		log.Warn(ctx, "could not load pair performance, starting empty",
			"backend", cfg.State.Backend, "error", err)
	}

	monitor := arbitrageDI.GetMonitor(mono.Services())
	if err := monitor.Start(ctx); err != nil {
		return err
	}

	routes := 0
	if tri := arbitrageDI.GetTriangular(mono.Services()); tri != nil {
		routes = len(tri.Routes())
	}

	log.Info(ctx, "arbitrage module started",
		"min_profit_percent", cfg.Arbitrage.MinProfitPercent,
		"routes", routes,
		"tracked_pairs", len(tracker.Snapshot()),
	)
	return nil
}
