package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	arbitrageDomain "github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/notify"
)

const (
	tracerName = "github.com/fd1az/dex-arbitrage-bot/business/execution/app"
	meterName  = "github.com/fd1az/dex-arbitrage-bot/business/execution/app"
)

type serviceMetrics struct {
	executions metric.Int64Counter
	breaker    metric.Int64Gauge
}

// Service is the execution entry point used by the monitor. It owns the
// breaker and records every non-skipped outcome in it.
type Service struct {
	enabled  bool
	selector *Selector
	breaker  *Breaker
	journal  Journal  // optional
	notifier Notifier // optional
	logger   logger.LoggerInterface

	tracer  trace.Tracer
	metrics *serviceMetrics
}

// NewService creates a Service. enabled is the configured execution mode;
// the breaker can only further disable it.
func NewService(enabled bool, selector *Selector, breaker *Breaker, journal Journal, notifier Notifier, log logger.LoggerInterface) (*Service, error) {
	s := &Service{
		enabled:  enabled,
		selector: selector,
		breaker:  breaker,
		journal:  journal,
		notifier: notifier,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return s, nil
}

func (s *Service) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &serviceMetrics{}

	s.metrics.executions, err = meter.Int64Counter(
		"executions_total",
		metric.WithDescription("Execution attempts by strategy and outcome"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return err
	}

	s.metrics.breaker, err = meter.Int64Gauge(
		"execution_consecutive_failures",
		metric.WithDescription("Consecutive execution failures counted by the breaker"),
		metric.WithUnit("{failure}"),
	)
	return err
}

// Enabled reports whether execution is configured and the breaker is closed.
func (s *Service) Enabled() bool {
	return s.enabled && s.breaker.Enabled()
}

// Breaker exposes the breaker for operator controls.
func (s *Service) Breaker() *Breaker {
	return s.breaker
}

// Execute runs the selector for opp and records the outcome.
func (s *Service) Execute(ctx context.Context, opp arbitrageDomain.Opportunity) domain.Result {
	ctx, span := s.tracer.Start(ctx, "execution.execute",
		trace.WithAttributes(
			attribute.String("pair", opp.Pair.String()),
			attribute.String("buy_venue", string(opp.BuyVenue)),
			attribute.String("sell_venue", string(opp.SellVenue)),
			attribute.String("spread_percent", opp.SpreadPercent.StringFixed(4)),
		),
	)
	defer span.End()

	var res domain.Result
	switch {
	case !s.enabled:
		res = domain.Skip(apperror.New(apperror.CodeExecutionDisabled,
			apperror.WithContext("monitor-only")))
	case !s.breaker.Enabled():
		res = domain.Skip(apperror.New(apperror.CodeCircuitOpen,
			apperror.WithContext(fmt.Sprintf("%d consecutive failures", s.breaker.Failures()))))
	default:
		res = s.selector.Execute(ctx, opp.InputAmount())
	}

	if res.CountsTowardBreaker() {
		if tripped := s.breaker.RecordOutcome(res.Success); tripped {
			s.logger.Error(ctx, "execution disabled by breaker",
				"failures", s.breaker.Failures(),
				"max", s.breaker.MaxFailures())
			s.notify(ctx, notify.Event{
				Level:   notify.LevelError,
				Title:   "Execution disabled",
				Message: fmt.Sprintf("%d consecutive execution failures; monitoring continues", s.breaker.Failures()),
				Fields:  []notify.Field{{Name: "last_error", Value: string(res.ErrorKind)}},
			})
		}
		s.metrics.breaker.Record(ctx, int64(s.breaker.Failures()))
	}

	s.metrics.executions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", string(res.Strategy)),
		attribute.String("outcome", res.Outcome()),
		attribute.String("error_kind", string(res.ErrorKind)),
	))
	span.SetAttributes(
		attribute.String("strategy", string(res.Strategy)),
		attribute.String("outcome", res.Outcome()),
		attribute.Bool("fell_back", res.FellBack),
	)
	if res.Err != nil && !res.Skipped {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, string(res.ErrorKind))
	}

	s.log(ctx, opp, res)
	s.record(ctx, opp, res)

	if !res.Skipped {
		s.notify(ctx, outcomeEvent(opp, res))
	}
	return res
}

func (s *Service) log(ctx context.Context, opp arbitrageDomain.Opportunity, res domain.Result) {
	args := []any{
		"pair", opp.Pair.String(),
		"strategy", string(res.Strategy),
		"amount", res.Amount.String(),
	}
	switch {
	case res.Success:
		s.logger.Info(ctx, "execution succeeded", append(args,
			"tx", res.TxHash.Hex(), "fell_back", res.FellBack)...)
	case res.Skipped:
		s.logger.Info(ctx, "execution skipped", append(args,
			"error_kind", string(res.ErrorKind), "reason", res.Err)...)
	default:
		s.logger.Warn(ctx, "execution failed", append(args,
			"error_kind", string(res.ErrorKind), "fell_back", res.FellBack, "error", res.Err)...)
	}
}

func (s *Service) record(ctx context.Context, opp arbitrageDomain.Opportunity, res domain.Result) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, opp, res); err != nil {
		s.logger.Warn(ctx, "journal write failed", "opportunity", opp.ID.String(), "error", err)
	}
}

func (s *Service) notify(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	// Sender errors are already logged by the notifier.
	_ = s.notifier.Notify(ctx, event)
}

func outcomeEvent(opp arbitrageDomain.Opportunity, res domain.Result) notify.Event {
	ev := notify.Event{
		Fields: []notify.Field{
			{Name: "pair", Value: opp.Pair.String()},
			{Name: "route", Value: fmt.Sprintf("%s -> %s", opp.BuyVenue, opp.SellVenue)},
			{Name: "spread", Value: opp.SpreadPercent.StringFixed(3) + "%"},
			{Name: "strategy", Value: string(res.Strategy)},
			{Name: "amount", Value: res.Amount.String()},
		},
		At: res.CompletedAt,
	}
	if res.Success {
		ev.Level = notify.LevelInfo
		ev.Title = "Arbitrage executed"
		ev.Message = res.TxHash.Hex()
		return ev
	}
	ev.Level = notify.LevelWarn
	ev.Title = "Arbitrage failed"
	ev.Message = string(res.ErrorKind)
	if res.Err != nil {
		ev.Message += ": " + res.Err.Error()
	}
	return ev
}
