package app

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/retry"
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
	dai  = asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrDAIPolygon), "DAI", 18)
)

// fakeSource returns a fixed raw amount per pair, or err.
type fakeSource struct {
	id      domain.VenueID
	amounts map[domain.PairKey]int64
	err     error

	mu    sync.Mutex
	calls int
}

func (f *fakeSource) Venue() domain.VenueID { return f.id }
func (f *fakeSource) Kind() string          { return "fake" }

func (f *fakeSource) Quote(_ context.Context, pair domain.TokenPair) (domain.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return domain.Quote{}, f.err
	}
	amt, ok := f.amounts[pair.Key()]
	if !ok {
		return domain.Quote{}, apperror.New(apperror.CodeQuoteUnavailable)
	}
	return domain.NewQuote(f.id, pair.TokenOut, big.NewInt(amt), 0), nil
}

func mustPair(t *testing.T, in, out *asset.Asset, raw int64) domain.TokenPair {
	t.Helper()
	p, err := domain.NewTokenPair(in, out, asset.NewAmount(in, big.NewInt(raw)))
	if err != nil {
		t.Fatalf("NewTokenPair: %v", err)
	}
	return p
}

func testBuilderConfig() BuilderConfig {
	return BuilderConfig{
		BatchSize:      2,
		BatchDelay:     time.Millisecond,
		MaxConcurrency: 2,
		Retry:          retry.Policy{MaxRetries: 3, BaseDelay: time.Millisecond},
	}
}

func TestTableBuilderToleratesFailures(t *testing.T) {
	usdcWeth := mustPair(t, usdc, weth, 1_000_000_000)
	usdcDai := mustPair(t, usdc, dai, 1_000_000_000)

	a := &fakeSource{id: "A", amounts: map[domain.PairKey]int64{usdcWeth.Key(): 400, usdcDai.Key(): 1000}}
	b := &fakeSource{id: "B", err: apperror.New(apperror.CodeExecutionReverted)}
	c := &fakeSource{id: "C", amounts: map[domain.PairKey]int64{usdcWeth.Key(): 420, usdcDai.Key(): 0}}

	builder, err := NewTableBuilder([]QuoteSource{a, b, c}, testBuilderConfig(), &mockLogger{})
	if err != nil {
		t.Fatalf("NewTableBuilder: %v", err)
	}

	table, err := builder.Build(context.Background(), []domain.TokenPair{usdcWeth, usdcDai})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	quotes := table.Quotes(usdcWeth.Key())
	if len(quotes) != 2 || quotes[0].Venue != "A" || quotes[1].Venue != "C" {
		t.Errorf("USDC/WETH venues = %v, want [A C]", quotes)
	}

	quotes = table.Quotes(usdcDai.Key())
	if len(quotes) != 1 || quotes[0].Venue != "A" {
		t.Errorf("USDC/DAI venues = %v, want [A] (zero amount excluded)", quotes)
	}

	if len(table.Pairs()) != 2 {
		t.Errorf("pairs = %d, want 2", len(table.Pairs()))
	}
}

func TestTableBuilderRetries(t *testing.T) {
	pair := mustPair(t, usdc, weth, 1_000_000_000)

	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{
			name:      "revert_is_not_retried",
			err:       apperror.New(apperror.CodeQuoteUnavailable, apperror.WithCause(apperror.New(apperror.CodeExecutionReverted))),
			wantCalls: 1,
		},
		{
			name:      "transport_error_uses_all_attempts",
			err:       apperror.New(apperror.CodeTransportError, apperror.WithCause(errors.New("timeout"))),
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{id: "A", err: tt.err}
			builder, err := NewTableBuilder([]QuoteSource{src}, testBuilderConfig(), &mockLogger{})
			if err != nil {
				t.Fatalf("NewTableBuilder: %v", err)
			}

			table, err := builder.Build(context.Background(), []domain.TokenPair{pair})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if n := len(table.Quotes(pair.Key())); n != 0 {
				t.Errorf("quotes = %d, want 0", n)
			}
			if src.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", src.calls, tt.wantCalls)
			}
		})
	}
}

func TestTableBuilderCancelled(t *testing.T) {
	pair := mustPair(t, usdc, weth, 1_000_000_000)
	src := &fakeSource{id: "A", amounts: map[domain.PairKey]int64{pair.Key(): 1}}

	builder, err := NewTableBuilder([]QuoteSource{src}, testBuilderConfig(), &mockLogger{})
	if err != nil {
		t.Fatalf("NewTableBuilder: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := builder.Build(ctx, []domain.TokenPair{pair}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
