package app

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/retry"
)

const (
	tracerName = "github.com/fd1az/dex-arbitrage-bot/business/pricing/app"
	meterName  = "github.com/fd1az/dex-arbitrage-bot/business/pricing/app"
)

// BuilderConfig controls how quote jobs are scheduled.
type BuilderConfig struct {
	BatchSize      int           // Jobs per batch
	BatchDelay     time.Duration // Pause between batches
	MaxConcurrency int           // Parallel jobs inside a batch
	Retry          retry.Policy
}

// DefaultBuilderConfig returns sensible defaults.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		BatchSize:      15,
		BatchDelay:     200 * time.Millisecond,
		MaxConcurrency: 5,
		Retry:          retry.DefaultPolicy(),
	}
}

type builderMetrics struct {
	quotes        metric.Int64Counter
	buildDuration metric.Float64Histogram
}

// TableBuilder queries every venue for every pair and collects the answers
// into a price table. A venue that fails contributes no entry.
type TableBuilder struct {
	sources []QuoteSource
	venues  []domain.VenueID
	config  BuilderConfig
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *builderMetrics
}

// NewTableBuilder creates a builder over sources, in venue order.
func NewTableBuilder(sources []QuoteSource, cfg BuilderConfig, log logger.LoggerInterface) (*TableBuilder, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}

	venues := make([]domain.VenueID, len(sources))
	for i, s := range sources {
		venues[i] = s.Venue()
	}

	b := &TableBuilder{
		sources: sources,
		venues:  venues,
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	if err := b.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return b, nil
}

func (b *TableBuilder) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	b.metrics = &builderMetrics{}

	b.metrics.quotes, err = meter.Int64Counter(
		"dex_quotes_total",
		metric.WithDescription("Quote attempts by venue and outcome"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return err
	}

	b.metrics.buildDuration, err = meter.Float64Histogram(
		"price_table_build_duration_ms",
		metric.WithDescription("Time to build one price table"),
		metric.WithUnit("ms"),
	)
	return err
}

// Venues returns the venue order used for tables.
func (b *TableBuilder) Venues() []domain.VenueID {
	return append([]domain.VenueID(nil), b.venues...)
}

type quoteJob struct {
	pair   domain.TokenPair
	source QuoteSource
}

type quoteResult struct {
	quote domain.Quote
	ok    bool
}

// Build returns the price table for pairs. It only fails when ctx is done.
func (b *TableBuilder) Build(ctx context.Context, pairs []domain.TokenPair) (*domain.PriceTable, error) {
	ctx, span := b.tracer.Start(ctx, "pricing.build_table",
		trace.WithAttributes(
			attribute.Int("pairs", len(pairs)),
			attribute.Int("venues", len(b.sources)),
		))
	defer span.End()

	start := time.Now()

	jobs := make([]quoteJob, 0, len(pairs)*len(b.sources))
	for _, p := range pairs {
		for _, s := range b.sources {
			jobs = append(jobs, quoteJob{pair: p, source: s})
		}
	}
	results := make([]quoteResult, len(jobs))

	for lo := 0; lo < len(jobs); lo += b.config.BatchSize {
		if lo > 0 && b.config.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				span.SetStatus(codes.Error, "cancelled")
				return nil, ctx.Err()
			case <-time.After(b.config.BatchDelay):
			}
		}

		hi := min(lo+b.config.BatchSize, len(jobs))

		var g errgroup.Group
		g.SetLimit(b.config.MaxConcurrency)
		for i := lo; i < hi; i++ {
			g.Go(func() error {
				q, ok := b.quote(ctx, jobs[i])
				results[i] = quoteResult{quote: q, ok: ok}
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return nil, err
		}
	}

	table := domain.NewPriceTable(b.venues)
	for _, p := range pairs {
		table.AddPair(p)
	}
	for i, r := range results {
		if r.ok {
			table.Set(jobs[i].pair, r.quote)
		}
	}

	elapsed := float64(time.Since(start).Milliseconds())
	b.metrics.buildDuration.Record(ctx, elapsed)

	span.SetAttributes(attribute.Int("quotes", table.QuoteCount()))
	span.SetStatus(codes.Ok, "built")

	b.logger.Debug(ctx, "price table built",
		"pairs", len(pairs),
		"jobs", len(jobs),
		"quotes", table.QuoteCount(),
		"elapsed_ms", elapsed,
	)

	return table, nil
}

// quote runs one job with retries. A revert means the pool does not exist and
// is not retried. Zero amounts count as no quote.
func (b *TableBuilder) quote(ctx context.Context, job quoteJob) (domain.Quote, bool) {
	venue := job.source.Venue()

	q, err := retry.Do(ctx, b.config.Retry, func(ctx context.Context) (domain.Quote, error) {
		q, err := job.source.Quote(ctx, job.pair)
		if err != nil && apperror.HasCode(err, apperror.CodeExecutionReverted) {
			return q, retry.Permanent(err)
		}
		return q, err
	})

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "no_quote"
		b.logger.Debug(ctx, "no quote",
			"venue", venue,
			"pair", job.pair.String(),
			"error", err,
		)
	case !q.Valid():
		outcome = "zero"
		err = apperror.New(apperror.CodeQuoteUnavailable)
	}

	b.metrics.quotes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("venue", string(venue)),
		attribute.String("outcome", outcome),
	))

	return q, err == nil
}
