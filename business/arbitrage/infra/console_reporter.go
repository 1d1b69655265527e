// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/app"
	executionDomain "github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
)

const rule = "================================================================================"

// ConsoleReporter implements Reporter for CLI output. Every cycle gets a
// structured log line; opportunities and executions are also printed as
// banners to out.
type ConsoleReporter struct {
	out    io.Writer
	logger logger.LoggerInterface
}

// NewConsoleReporter creates a new ConsoleReporter. A nil out writes to
// stdout.
func NewConsoleReporter(out io.Writer, log logger.LoggerInterface) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{
		out:    out,
		logger: log,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "DEX Arbitrage Bot Started")
	fmt.Fprintln(r.out, "=========================")
	return nil
}

// ReportCycle logs the cycle summary and prints each opportunity and route.
func (r *ConsoleReporter) ReportCycle(ctx context.Context, report app.CycleReport) {
	quotes := 0
	if report.Table != nil {
		quotes = report.Table.QuoteCount()
	}
	r.logger.Info(ctx, "cycle",
		"cycle_id", report.ID.String(),
		"quotes", quotes,
		"opportunities", len(report.Opportunities),
		"routes", len(report.Routes),
		"execution_enabled", report.ExecutionEnabled,
		"duration_ms", report.Duration.Milliseconds(),
	)

	for _, opp := range report.Opportunities {
		fmt.Fprintln(r.out, "")
		fmt.Fprintln(r.out, rule)
		fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
		fmt.Fprintln(r.out, rule)
		fmt.Fprintf(r.out, "Cycle:          %s\n", opp.CycleID)
		fmt.Fprintf(r.out, "Timestamp:      %s\n", opp.DetectedAt.Format(time.RFC3339))
		fmt.Fprintf(r.out, "Pair:           %s\n", opp.Pair.String())
		fmt.Fprintf(r.out, "Test amount:    %s\n", opp.Pair.TestAmountIn.String())
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		fmt.Fprintln(r.out, "QUOTES")
		fmt.Fprintf(r.out, "  Buy on:         %s (%s)\n", opp.BuyVenue, opp.BuyAmountOut.String())
		fmt.Fprintf(r.out, "  Sell on:        %s (%s)\n", opp.SellVenue, opp.SellAmountOut.String())
		fmt.Fprintf(r.out, "  Spread:         %s%%\n", opp.SpreadPercent.StringFixed(4))
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		fmt.Fprintf(r.out, "Est. profit:    %s %s (gross)\n", opp.EstimatedProfit.StringFixed(6), opp.Pair.TokenOut.Symbol())
		fmt.Fprintln(r.out, rule)
	}

	for _, route := range report.Routes {
		fmt.Fprintf(r.out, "TRIANGULAR %-20s %s%%  %s\n",
			route.Name, route.CompoundedReturnPercent.StringFixed(4), route.Path())
	}
}

// ReportExecution logs and prints an execution outcome.
func (r *ConsoleReporter) ReportExecution(ctx context.Context, report app.ExecutionReport) {
	res := report.Result
	args := []any{
		"cycle_id", report.CycleID.String(),
		"opportunity_id", report.Opportunity.ID.String(),
		"pair", report.Opportunity.Pair.String(),
		"strategy", string(res.Strategy),
		"outcome", res.Outcome(),
	}

	switch {
	case res.Success:
		args = append(args, "tx", res.TxHash.Hex(), "fell_back", res.FellBack)
		r.logger.Info(ctx, "execution succeeded", args...)
	case res.Skipped:
		args = append(args, "error_kind", string(res.ErrorKind))
		r.logger.Info(ctx, "opportunity skipped", args...)
	default:
		args = append(args, "error_kind", string(res.ErrorKind), "error", res.Err)
		r.logger.Warn(ctx, "execution failed", args...)
	}

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "EXECUTION %s\n", outcomeTitle(res))
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Pair:           %s\n", report.Opportunity.Pair.String())
	fmt.Fprintf(r.out, "Strategy:       %s\n", res.Strategy)
	if res.Amount.Asset() != nil {
		fmt.Fprintf(r.out, "Amount:         %s\n", res.Amount.String())
	}
	if res.Size.WasAdjusted || res.Size.UsedFallback {
		fmt.Fprintf(r.out, "Sizing:         adjusted=%t fallback=%t\n", res.Size.WasAdjusted, res.Size.UsedFallback)
	}
	if res.Success {
		fmt.Fprintf(r.out, "Tx:             %s\n", res.TxHash.Hex())
	}
	if res.GasCost != nil {
		fmt.Fprintf(r.out, "Gas:            %d (max %s native)\n", res.GasCost.GasUsed, res.GasCost.Native.StringFixed(6))
	}
	if res.ErrorKind != executionDomain.KindNone {
		fmt.Fprintf(r.out, "Error:          %s\n", res.ErrorKind)
	}
	fmt.Fprintln(r.out, rule)
}

func outcomeTitle(res executionDomain.Result) string {
	switch {
	case res.Success:
		return "SUCCEEDED"
	case res.Skipped:
		return "SKIPPED"
	default:
		return "FAILED"
	}
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "DEX Arbitrage Bot Stopped")
	return nil
}
