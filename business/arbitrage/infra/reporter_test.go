package infra

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/app"
	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	executionDomain "github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/pkg/ui"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var (
	usdc = asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrUSDCePolygon), "USDC", 6)
	weth = asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrWETHPolygon), "WETH", 18)
)

func mustAmount(t *testing.T, a *asset.Asset, s string) asset.Amount {
	t.Helper()
	v, err := asset.ParseString(a, s)
	if err != nil {
		t.Fatalf("ParseString(%q): %v", s, err)
	}
	return v
}

func testReport(t *testing.T) app.CycleReport {
	t.Helper()
	pair, err := pricingDomain.NewTokenPair(usdc, weth, mustAmount(t, usdc, "1000"))
	if err != nil {
		t.Fatalf("NewTokenPair: %v", err)
	}

	table := pricingDomain.NewPriceTable([]pricingDomain.VenueID{"quickswap", "sushiswap"})
	table.Set(pair, pricingDomain.NewQuote("quickswap", weth, mustAmount(t, weth, "0.40").Raw(), 0))
	table.Set(pair, pricingDomain.NewQuote("sushiswap", weth, mustAmount(t, weth, "0.42").Raw(), 0))

	spread, ok := pricingDomain.CalculateSpread(table.Quotes(pair.Key()))
	if !ok {
		t.Fatal("no spread")
	}
	cycleID := uuid.New()
	opp, err := domain.NewOpportunity(cycleID, pair, spread, time.Now())
	if err != nil {
		t.Fatalf("NewOpportunity: %v", err)
	}

	return app.CycleReport{
		ID:            cycleID,
		StartedAt:     time.Now(),
		Duration:      50 * time.Millisecond,
		Table:         table,
		Opportunities: []domain.Opportunity{opp},
	}
}

func TestConsoleReporter_ReportCycle(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, &mockLogger{})

	r.ReportCycle(context.Background(), testReport(t))

	out := buf.String()
	for _, want := range []string{"ARBITRAGE OPPORTUNITY DETECTED", "USDC/WETH", "quickswap", "sushiswap", "5.0000%", "20.000000 WETH"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporter_ReportExecution(t *testing.T) {
	report := testReport(t)
	tests := []struct {
		name   string
		result executionDomain.Result
		want   string
	}{
		{
			name:   "success",
			result: executionDomain.Succeeded(executionDomain.StrategyFlash, mustAmount(t, usdc, "1000"), common.HexToHash("0xabc"), nil),
			want:   "EXECUTION SUCCEEDED",
		},
		{
			name:   "skipped",
			result: executionDomain.Skip(apperror.New(apperror.CodeUnsafeToken)),
			want:   "EXECUTION SKIPPED",
		},
		{
			name:   "failed",
			result: executionDomain.Failed(executionDomain.StrategyDirect, mustAmount(t, usdc, "100"), apperror.New(apperror.CodeExecutionReverted)),
			want:   "execution_reverted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewConsoleReporter(&buf, &mockLogger{})
			r.ReportExecution(context.Background(), app.ExecutionReport{
				CycleID:     report.ID,
				Opportunity: report.Opportunities[0],
				Result:      tt.result,
			})
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

type fakeBreakerStatus struct{}

func (fakeBreakerStatus) Enabled() bool    { return true }
func (fakeBreakerStatus) Failures() int    { return 2 }
func (fakeBreakerStatus) MaxFailures() int { return 5 }

func TestTUIReporter_ReportCycle(t *testing.T) {
	sender := &fakeSender{}
	r := NewTUIReporter(sender, fakeBreakerStatus{})

	r.ReportCycle(context.Background(), testReport(t))

	if len(sender.msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sender.msgs))
	}
	cycle, ok := sender.msgs[0].(ui.CycleMsg)
	if !ok {
		t.Fatalf("first message = %T, want ui.CycleMsg", sender.msgs[0])
	}
	if len(cycle.Venues) != 2 || len(cycle.Prices) != 1 || len(cycle.Opportunities) != 1 {
		t.Errorf("cycle msg = %d venues, %d prices, %d opportunities", len(cycle.Venues), len(cycle.Prices), len(cycle.Opportunities))
	}
	row := cycle.Prices[0]
	if !row.HasSpread || !row.Spread.Equal(decimal.NewFromInt(5)) {
		t.Errorf("price row spread = %s (has=%t), want 5", row.Spread, row.HasSpread)
	}
	if row.Quotes["sushiswap"] != "0.420000" {
		t.Errorf("sushiswap quote = %q, want 0.420000", row.Quotes["sushiswap"])
	}

	br, ok := sender.msgs[1].(ui.BreakerMsg)
	if !ok || br.Failures != 2 || br.Max != 5 {
		t.Errorf("second message = %#v, want breaker 2/5", sender.msgs[1])
	}
}
