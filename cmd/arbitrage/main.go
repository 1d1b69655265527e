// Package main is the entry point for the DEX arbitrage bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage"
	arbitrageDI "github.com/fd1az/dex-arbitrage-bot/business/arbitrage/di"
	"github.com/fd1az/dex-arbitrage-bot/business/blockchain"
	blockchainDI "github.com/fd1az/dex-arbitrage-bot/business/blockchain/di"
	blockchainDomain "github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/business/execution"
	executionDI "github.com/fd1az/dex-arbitrage-bot/business/execution/di"
	"github.com/fd1az/dex-arbitrage-bot/business/pricing"
	"github.com/fd1az/dex-arbitrage-bot/internal/apm"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
	"github.com/fd1az/dex-arbitrage-bot/internal/health"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/metrics"
	"github.com/fd1az/dex-arbitrage-bot/internal/monolith"
	"github.com/fd1az/dex-arbitrage-bot/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const shutdownTimeout = 10 * time.Second

type flags struct {
	configPath  string
	once        bool
	monitorOnly bool
	tui         bool
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&f.once, "once", false, "Run a single monitoring cycle and exit")
	flag.BoolVar(&f.monitorOnly, "monitor-only", false, "Detect and report, never execute")
	flag.BoolVar(&f.tui, "tui", false, "Run the terminal dashboard")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dex-arbitrage-bot %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// --once prints cycle output; the dashboard makes no sense there.
	if f.once {
		f.tui = false
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, f); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Runtime = config.RuntimeOverrides{
		MonitorOnly: f.monitorOnly,
		Once:        f.once,
		TUIMode:     f.tui,
	}
	if err := cfg.ValidateExecution(); err != nil {
		return fmt.Errorf("invalid execution config: %w", err)
	}

	var out io.Writer = os.Stderr
	if f.tui {
		out = io.Discard
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, logger.SpanTraceID)

	log.Info(ctx, "starting dex arbitrage bot",
		"version", version,
		"environment", cfg.App.Environment,
		"execution", cfg.ExecutionEnabled(),
		"once", f.once,
	)

	stopTelemetry, err := startTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	mono, err := monolith.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	var program *tea.Program
	arbitrageModule := &arbitrage.Module{}
	if f.tui {
		program = ui.NewProgram(ui.New(ui.Options{
			Network: cfg.App.Environment,
			OnResetBreaker: func() {
				executionDI.GetBreaker(mono.Services()).Reset()
			},
		}))
		arbitrageModule.Program = program
	}

	modules := []monolith.Module{
		&blockchain.Module{}, // provides chain access to everything below
		&pricing.Module{},
		&execution.Module{},
		arbitrageModule,
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	services := mono.Services()
	defer shutdown(log, services)

	if cfg.Health.Enabled && !f.once {
		hs := newHealthServer(cfg, services, log)
		if err := hs.Start(ctx); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		} else {
			log.Info(ctx, "health server started", "port", cfg.Health.Port)
		}
		defer hs.Stop(context.Background())
	}

	monitor := arbitrageDI.GetMonitor(services)

	if f.once {
		_, err := monitor.RunCycle(ctx)
		return err
	}

	if program != nil {
		return runTUI(ctx, program, func(ctx context.Context) error {
			return monitor.Run(ctx)
		})
	}

	return monitor.Run(ctx)
}

// runTUI runs the dashboard in the foreground and the monitor behind it.
// Quitting the dashboard cancels the monitor.
func runTUI(ctx context.Context, program *tea.Program, loop func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		err := loop(ctx)
		if err != nil {
			program.Send(ui.ErrorMsg{Error: err})
		}
		errCh <- err
	}()

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	cancel()
	return <-errCh
}

func newHealthServer(cfg *config.Config, services di.ServiceRegistry, log logger.LoggerInterface) *health.Server {
	hs := health.NewServer(cfg.Health.Port, version, log)

	conn := blockchainDI.GetConnection(services)
	hs.RegisterCheck("rpc", func(ctx context.Context) (bool, string) {
		state := conn.State()
		return state != blockchainDomain.StateDisconnected, string(state)
	})

	breaker := executionDI.GetBreaker(services)
	hs.RegisterCheck("execution", func(ctx context.Context) (bool, string) {
		if !cfg.ExecutionEnabled() {
			return true, "monitor-only"
		}
		if !breaker.Enabled() {
			return true, fmt.Sprintf("disabled after %d consecutive failures", breaker.Failures())
		}
		return true, "enabled"
	})
	hs.RegisterAction("breaker/reset", func(ctx context.Context) (string, error) {
		if !cfg.ExecutionEnabled() {
			return "", errors.New("execution is not enabled")
		}
		breaker.Reset()
		return "execution re-enabled", nil
	})

	return hs
}

func startTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}

	provider := apm.ParseProvider(cfg.Telemetry.Exporter, cfg.Telemetry.OTLPEndpoint)
	traceProvider := apm.NewTraceProvider(
		apm.WithServiceName(cfg.Telemetry.ServiceName),
		apm.WithProvider(provider, cfg.Telemetry.OTLPEndpoint, log),
	)
	log.Info(ctx, "tracing initialized", "provider", string(provider), "endpoint", cfg.Telemetry.OTLPEndpoint)

	meterProvider, err := metrics.NewMetricProvider(
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithProviderConfig(metrics.ProviderCfg{
			Provider: metrics.PrometheusProvider,
		}),
	)
	if err != nil {
		traceProvider.Stop()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	promServer := metrics.NewPrometheusServer(log, metrics.WithPort(strconv.Itoa(cfg.Telemetry.PrometheusPort)))
	promServer.Start(ctx)

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		promServer.Stop(stopCtx)
		meterProvider.Shutdown(stopCtx)
		traceProvider.Stop()
	}, nil
}

// shutdown flushes pair performance and closes the journal.
func shutdown(log logger.LoggerInterface, services di.ServiceRegistry) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := arbitrageDI.GetMonitor(services).Close(ctx); err != nil {
		log.Error(ctx, "error closing monitor", "error", err)
	}
	if j := executionDI.GetJournal(services); j != nil {
		if err := j.Close(); err != nil {
			log.Error(ctx, "error closing journal", "error", err)
		}
	}
	log.Info(ctx, "shutdown complete")
}
