// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	executionDomain "github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
)

// TableBuilder produces the price table for one cycle.
type TableBuilder interface {
	Build(ctx context.Context, pairs []pricingDomain.TokenPair) (*pricingDomain.PriceTable, error)
}

// Executor acts on a candidate opportunity. Enabled reflects both the
// configured mode and the execution breaker.
type Executor interface {
	Enabled() bool
	Execute(ctx context.Context, opp domain.Opportunity) executionDomain.Result
}

// PerformanceStore persists the pair performance map between runs.
type PerformanceStore interface {
	Load(ctx context.Context) (map[string]domain.PairPerformance, error)
	Save(ctx context.Context, records map[string]domain.PairPerformance) error
}

// CycleReport is everything a cycle produced, handed to reporters.
type CycleReport struct {
	ID               uuid.UUID
	StartedAt        time.Time
	Duration         time.Duration
	Table            *pricingDomain.PriceTable
	Opportunities    []domain.Opportunity
	Routes           []domain.TriangularRoute
	ExecutionEnabled bool
}

// ExecutionReport is the outcome of acting on one opportunity.
type ExecutionReport struct {
	CycleID     uuid.UUID
	Opportunity domain.Opportunity
	Result      executionDomain.Result
}

// Reporter presents cycle results to an operator.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// ReportCycle is called once per cycle after analysis.
	ReportCycle(ctx context.Context, report CycleReport)

	// ReportExecution is called after an execution attempt or skip.
	ReportExecution(ctx context.Context, report ExecutionReport)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
