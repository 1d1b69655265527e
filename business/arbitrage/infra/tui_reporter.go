package infra

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/app"
	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/pkg/ui"
	"github.com/fd1az/dex-arbitrage-bot/pkg/ui/components"
)

// MessageSender delivers messages to a running Bubble Tea program.
type MessageSender interface {
	Send(msg tea.Msg)
}

// BreakerStatus exposes the execution breaker to the dashboard.
type BreakerStatus interface {
	Enabled() bool
	Failures() int
	MaxFailures() int
}

// TUIReporter implements Reporter for the Bubble Tea dashboard. It only
// formats; the model owns all display state.
type TUIReporter struct {
	program MessageSender
	breaker BreakerStatus
}

// NewTUIReporter creates a new TUIReporter. breaker may be nil in
// monitor-only mode.
func NewTUIReporter(program MessageSender, breaker BreakerStatus) *TUIReporter {
	return &TUIReporter{program: program, breaker: breaker}
}

// Start sends the initial breaker state. Modules start before the program
// runs and Send blocks until it does, so the send happens off this goroutine.
func (r *TUIReporter) Start(ctx context.Context) error {
	go r.sendBreaker()
	return nil
}

// ReportCycle sends the cycle's table, opportunities and routes.
func (r *TUIReporter) ReportCycle(ctx context.Context, report app.CycleReport) {
	r.program.Send(CycleMessage(report))
	r.sendBreaker()
}

// ReportExecution sends an execution outcome.
func (r *TUIReporter) ReportExecution(ctx context.Context, report app.ExecutionReport) {
	res := report.Result
	msg := ui.ExecutionMsg{
		Pair:      report.Opportunity.Pair.String(),
		Strategy:  string(res.Strategy),
		Outcome:   res.Outcome(),
		ErrorKind: string(res.ErrorKind),
		FellBack:  res.FellBack,
	}
	if res.Success {
		msg.TxHash = res.TxHash.Hex()
	}
	r.program.Send(msg)
	r.sendBreaker()
}

// Stop is a no-op; the program is stopped by its owner.
func (r *TUIReporter) Stop() error {
	return nil
}

func (r *TUIReporter) sendBreaker() {
	if r.breaker == nil {
		return
	}
	r.program.Send(ui.BreakerMsg{
		Enabled:  r.breaker.Enabled(),
		Failures: r.breaker.Failures(),
		Max:      r.breaker.MaxFailures(),
	})
}

// CycleMessage converts a cycle report into its dashboard message.
func CycleMessage(report app.CycleReport) ui.CycleMsg {
	msg := ui.CycleMsg{
		CycleID:          report.ID.String(),
		At:               report.StartedAt,
		Duration:         report.Duration,
		ExecutionEnabled: report.ExecutionEnabled,
	}

	if report.Table != nil {
		for _, v := range report.Table.Venues() {
			msg.Venues = append(msg.Venues, string(v))
		}
		for _, pair := range report.Table.Pairs() {
			msg.Prices = append(msg.Prices, priceRow(report.Table, pair))
		}
	}

	for _, opp := range report.Opportunities {
		msg.Opportunities = append(msg.Opportunities, components.OpportunityRow{
			Time:      opp.DetectedAt.Format("15:04:05"),
			Pair:      opp.Pair.String(),
			BuyVenue:  string(opp.BuyVenue),
			SellVenue: string(opp.SellVenue),
			Spread:    opp.SpreadPercent,
			Profit:    opp.EstimatedProfit,
			Status:    "detected",
		})
	}

	for _, route := range report.Routes {
		msg.Routes = append(msg.Routes, components.RouteRow{
			Name:   route.Name,
			Path:   route.Path(),
			Return: route.CompoundedReturnPercent,
		})
	}

	return msg
}

func priceRow(table *pricingDomain.PriceTable, pair pricingDomain.TokenPair) components.PriceRow {
	row := components.PriceRow{
		Pair:     pair.String(),
		AmountIn: pair.TestAmountIn.String(),
		Quotes:   make(map[string]string),
	}

	quotes := table.Quotes(pair.Key())
	for _, q := range quotes {
		row.Quotes[string(q.Venue)] = q.AmountOut.ToDecimal().StringFixed(6)
	}
	if spread, ok := pricingDomain.CalculateSpread(quotes); ok {
		row.Spread = spread.Percent
		row.HasSpread = true
	}
	return row
}
