// Package execution implements the execution bounded context: liquidity
// sizing, strategy selection, the execution breaker and the journal.
package execution

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	blockchainDI "github.com/fd1az/dex-arbitrage-bot/business/blockchain/di"
	blockchainDomain "github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/app"
	executionDI "github.com/fd1az/dex-arbitrage-bot/business/execution/di"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/infra/aave"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/infra/contracts"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/infra/journal"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
	"github.com/fd1az/dex-arbitrage-bot/internal/httpclient"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/monolith"
	"github.com/fd1az/dex-arbitrage-bot/internal/notify"
	"github.com/fd1az/dex-arbitrage-bot/internal/retry"
)

const notifyTimeout = 5 * time.Second

// Module implements the execution bounded context.
type Module struct{}

// RegisterServices registers all execution services with the DI container.
// In monitor-only mode only the breaker, journal and notifier are built; the
// service then skips every opportunity.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Breaker (public)
	di.RegisterToken(c, executionDI.Breaker, func(sr di.ServiceRegistry) *app.Breaker {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		return app.NewBreaker(cfg.Execution.MaxConsecutiveFailures)
	})

	// Register Journal (public, nil without journal.path)
	di.RegisterToken(c, executionDI.Journal, func(sr di.ServiceRegistry) *journal.SQLite {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		if cfg.Journal.Path == "" {
			return nil
		}
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			panic("failed to open execution journal: " + err.Error())
		}
		return j
	})

	// Register Notifier (private)
	di.RegisterToken(c, executionDI.Notifier, func(sr di.ServiceRegistry) *notify.Dispatcher {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		var senders []notify.Sender
		if cfg.Notify.DiscordWebhookURL != "" || cfg.Notify.WebhookURL != "" {
			client, err := httpclient.NewInstrumentedClient(
				httpclient.WithProviderName("notify"),
				httpclient.WithRequestTimeout(notifyTimeout),
			)
			if err != nil {
				panic("failed to create notify client: " + err.Error())
			}
			if cfg.Notify.DiscordWebhookURL != "" {
				senders = append(senders, notify.NewDiscord(cfg.Notify.DiscordWebhookURL, client))
			}
			if cfg.Notify.WebhookURL != "" {
				senders = append(senders, notify.NewWebhook(cfg.Notify.WebhookURL, client))
			}
		}
		return notify.NewDispatcher(log, senders...)
	})

	// Register Limits (private)
	di.RegisterToken(c, executionDI.Limits, func(sr di.ServiceRegistry) *app.Limits {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		limits, err := app.NewLimits(cfg.Execution, cfg.Tokens)
		if err != nil {
			panic("failed to parse execution limits: " + err.Error())
		}
		return limits
	})

	// Register Reserves (private)
	di.RegisterToken(c, executionDI.Reserves, func(sr di.ServiceRegistry) *aave.Reserves {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		reserves, err := aave.NewReserves(
			blockchainDI.GetContractCaller(sr),
			blockchainDI.GetTokenService(sr),
			common.HexToAddress(cfg.Execution.LendingPool),
			common.HexToAddress(cfg.Execution.LendingDataProvider),
		)
		if err != nil {
			panic("failed to create reserve reader: " + err.Error())
		}
		return reserves
	})

	// Register Borrowable (private)
	di.RegisterToken(c, executionDI.Borrowable, func(sr di.ServiceRegistry) *app.BorrowableRegistry {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		reg := sr.Get(monolith.ServiceAssetRegistry).(*asset.Registry)

		configured, err := app.NewTokenSet(reg, cfg.Execution.Borrowable)
		if err != nil {
			panic("failed to build borrowable tokens: " + err.Error())
		}
		return app.NewBorrowableRegistry(configured)
	})

	// Register Selector (private, execution mode only)
	di.RegisterToken(c, executionDI.Selector, func(sr di.ServiceRegistry) *app.Selector {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		reg := sr.Get(monolith.ServiceAssetRegistry).(*asset.Registry)

		chain := blockchainDI.GetChainService(sr)
		if chain == nil {
			panic("execution enabled without a signer")
		}

		allowlist, err := app.NewTokenSet(reg, cfg.Execution.FlashAllowlist)
		if err != nil {
			panic("failed to build flash allow-list: " + err.Error())
		}
		speed, err := blockchainDomain.ParseSpeedTier(cfg.Execution.GasSpeed)
		if err != nil {
			panic("invalid execution.gas_speed: " + err.Error())
		}

		direct, err := contracts.NewArbitrage(common.HexToAddress(cfg.Execution.ArbitrageContract), chain)
		if err != nil {
			panic("failed to bind arbitrage contract: " + err.Error())
		}

		var flash app.FlashExecutor
		if cfg.Execution.FlashContract != "" {
			f, err := contracts.NewFlashLoan(common.HexToAddress(cfg.Execution.FlashContract), chain)
			if err != nil {
				panic("failed to bind flash contract: " + err.Error())
			}
			flash = f
		}

		policy := retry.Policy{MaxRetries: cfg.Retry.MaxRetries, BaseDelay: cfg.Retry.BaseDelay}
		limits := executionDI.GetLimits(sr)

		return app.NewSelector(app.SelectorConfig{
			Flash:      flash,
			Direct:     direct,
			Tokens:     blockchainDI.GetTokenService(sr),
			Gas:        blockchainDI.GetGasEstimator(sr),
			Gate:       app.NewLiquidityGate(executionDI.GetReserves(sr), limits, policy, log),
			Limits:     limits,
			Borrowable: executionDI.GetBorrowable(sr),
			Allowlist:  allowlist,
			Owner:      chain.From(),
			GasSpeed:   speed,
			Retry:      policy,
		}, log)
	})

	// Register Service (public)
	di.RegisterToken(c, executionDI.Service, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		enabled := cfg.ExecutionEnabled()
		var selector *app.Selector
		if enabled {
			selector = executionDI.GetSelector(sr)
		}

		var j app.Journal
		if sqlite := executionDI.GetJournal(sr); sqlite != nil {
			j = sqlite
		}

		svc, err := app.NewService(enabled, selector, executionDI.GetBreaker(sr), j, executionDI.GetNotifier(sr), log)
		if err != nil {
			panic("failed to create execution service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup confirms which configured tokens the lending pool can lend.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	svc := executionDI.GetService(mono.Services())

	if !cfg.ExecutionEnabled() {
		log.Info(ctx, "execution module started", "mode", "monitor-only")
		return nil
	}

	borrowable := executionDI.GetBorrowable(mono.Services())
	n, err := borrowable.Refresh(ctx, executionDI.GetReserves(mono.Services()))
	if err != nil {
		log.Warn(ctx, "could not read lending reserves, trusting configured list",
			"borrowable", n, "error", err)
	}

	log.Info(ctx, "execution module started",
		"mode", "live",
		"borrowable", n,
		"flash", cfg.Execution.FlashContract != "",
		"max_failures", svc.Breaker().MaxFailures(),
	)
	return nil
}
