package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	executionDomain "github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
)

const (
	tracerName = "github.com/fd1az/dex-arbitrage-bot/business/arbitrage/app"
	meterName  = "github.com/fd1az/dex-arbitrage-bot/business/arbitrage/app"
)

// MonitorConfig holds the monitor's collaborators.
type MonitorConfig struct {
	Pairs        []pricingDomain.TokenPair
	PollInterval time.Duration
	Builder      TableBuilder
	Analyzer     *Analyzer
	Triangular   *TriangularAnalyzer // nil disables triangular analysis
	Tracker      *PerformanceTracker
	Executor     Executor // nil means monitor-only
	Reporters    []Reporter
}

type monitorMetrics struct {
	cycles        metric.Int64Counter
	cycleDuration metric.Float64Histogram
	opportunities metric.Int64Counter
	routes        metric.Int64Counter
}

// Monitor runs detection cycles. Exactly one cycle is in flight at a time,
// and execution only ever sees opportunities from the current cycle.
type Monitor struct {
	cfg    MonitorConfig
	logger logger.LoggerInterface

	tracer  trace.Tracer
	metrics *monitorMetrics
}

// NewMonitor creates a new Monitor.
func NewMonitor(cfg MonitorConfig, log logger.LoggerInterface) (*Monitor, error) {
	if cfg.Builder == nil || cfg.Analyzer == nil || cfg.Tracker == nil {
		return nil, errors.New("monitor: builder, analyzer and tracker are required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}

	m := &Monitor{
		cfg:    cfg,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return m, nil
}

func (m *Monitor) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	m.metrics = &monitorMetrics{}

	m.metrics.cycles, err = meter.Int64Counter(
		"monitor_cycles_total",
		metric.WithDescription("Completed monitoring cycles"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return err
	}

	m.metrics.cycleDuration, err = meter.Float64Histogram(
		"monitor_cycle_duration_ms",
		metric.WithDescription("Duration of one monitoring cycle"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	m.metrics.opportunities, err = meter.Int64Counter(
		"arbitrage_opportunities_total",
		metric.WithDescription("Opportunities above the profit threshold"),
		metric.WithUnit("{opportunity}"),
	)
	if err != nil {
		return err
	}

	m.metrics.routes, err = meter.Int64Counter(
		"triangular_routes_total",
		metric.WithDescription("Profitable triangular venue combinations"),
		metric.WithUnit("{route}"),
	)
	return err
}

// Run repeats RunCycle every poll interval until ctx is cancelled. A failed
// cycle is logged and the loop continues.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info(ctx, "monitor started",
		"pairs", len(m.cfg.Pairs),
		"poll_interval", m.cfg.PollInterval.String(),
		"execution", m.executionEnabled(),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info(ctx, "monitor stopping", "reason", ctx.Err())
			return nil
		case <-timer.C:
		}

		if _, err := m.RunCycle(ctx); err != nil && ctx.Err() == nil {
			m.logger.Warn(ctx, "cycle failed", "error", err)
		}
		timer.Reset(m.cfg.PollInterval)
	}
}

// RunCycle performs exactly one cycle: build the table, analyze it, update
// pair performance, report, and if execution is enabled act on at most one
// opportunity.
func (m *Monitor) RunCycle(ctx context.Context) (CycleReport, error) {
	cycleID := uuid.New()
	ctx, span := m.tracer.Start(ctx, "arbitrage.cycle",
		trace.WithAttributes(attribute.String("cycle_id", cycleID.String())))
	defer span.End()

	start := time.Now()

	pairs := m.cfg.Tracker.Order(m.cfg.Pairs)
	table, err := m.cfg.Builder.Build(ctx, pairs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return CycleReport{}, err
	}

	opps := m.cfg.Analyzer.Analyze(cycleID, table)

	var routes []domain.TriangularRoute
	if m.cfg.Triangular != nil {
		routes = m.cfg.Triangular.Analyze(table)
	}

	m.cfg.Tracker.Update(ctx, table)

	report := CycleReport{
		ID:               cycleID,
		StartedAt:        start,
		Duration:         time.Since(start),
		Table:            table,
		Opportunities:    opps,
		Routes:           routes,
		ExecutionEnabled: m.executionEnabled(),
	}
	for _, r := range m.cfg.Reporters {
		r.ReportCycle(ctx, report)
	}

	if report.ExecutionEnabled && len(opps) > 0 {
		m.execute(ctx, cycleID, opps)
	}

	elapsed := float64(time.Since(start).Milliseconds())
	m.metrics.cycles.Add(ctx, 1)
	m.metrics.cycleDuration.Record(ctx, elapsed)
	m.metrics.opportunities.Add(ctx, int64(len(opps)))
	m.metrics.routes.Add(ctx, int64(len(routes)))

	span.SetAttributes(
		attribute.Int("quotes", table.QuoteCount()),
		attribute.Int("opportunities", len(opps)),
		attribute.Int("routes", len(routes)),
	)
	span.SetStatus(codes.Ok, "cycle complete")

	m.logger.Debug(ctx, "cycle complete",
		"cycle_id", cycleID.String(),
		"quotes", table.QuoteCount(),
		"opportunities", len(opps),
		"routes", len(routes),
		"elapsed_ms", elapsed,
	)

	return report, nil
}

// execute walks candidates by descending spread. Skipped candidates move on
// to the next one; the first attempted execution ends the loop.
func (m *Monitor) execute(ctx context.Context, cycleID uuid.UUID, opps []domain.Opportunity) {
	for _, opp := range opps {
		if ctx.Err() != nil {
			return
		}

		res := m.cfg.Executor.Execute(ctx, opp)
		for _, r := range m.cfg.Reporters {
			r.ReportExecution(ctx, ExecutionReport{
				CycleID:     cycleID,
				Opportunity: opp,
				Result:      res,
			})
		}

		if !res.Skipped {
			return
		}
		if res.ErrorKind == executionDomain.KindExecutionDisabled {
			return
		}
	}
}

// Start starts every reporter.
func (m *Monitor) Start(ctx context.Context) error {
	for _, r := range m.cfg.Reporters {
		if err := r.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes pair performance and stops the reporters. Call it once Run
// has returned.
func (m *Monitor) Close(ctx context.Context) error {
	err := m.cfg.Tracker.Flush(ctx)
	for _, r := range m.cfg.Reporters {
		if stopErr := r.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}
	return err
}

func (m *Monitor) executionEnabled() bool {
	return m.cfg.Executor != nil && m.cfg.Executor.Enabled()
}
