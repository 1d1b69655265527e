package app

import (
	"context"
	"testing"

	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
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
	usdc   = asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrUSDCePolygon), "USDC", 6)
	weth   = asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrWETHPolygon), "WETH", 18)
	wmatic = asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrWMATICPolygon), "WMATIC", 18)
)

func amt(t *testing.T, a *asset.Asset, s string) asset.Amount {
	t.Helper()
	v, err := asset.ParseString(a, s)
	if err != nil {
		t.Fatalf("ParseString(%q): %v", s, err)
	}
	return v
}

func pair(t *testing.T, in, out *asset.Asset, testAmount string) pricingDomain.TokenPair {
	t.Helper()
	p, err := pricingDomain.NewTokenPair(in, out, amt(t, in, testAmount))
	if err != nil {
		t.Fatalf("NewTokenPair: %v", err)
	}
	return p
}

// quotes maps venue to human amountOut for one pair.
type quotes map[pricingDomain.VenueID]string

type tableEntry struct {
	pair   pricingDomain.TokenPair
	quotes quotes
}

func newTable(t *testing.T, venues []pricingDomain.VenueID, entries ...tableEntry) *pricingDomain.PriceTable {
	t.Helper()
	table := pricingDomain.NewPriceTable(venues)
	for _, e := range entries {
		table.AddPair(e.pair)
		for v, s := range e.quotes {
			q := pricingDomain.NewQuote(v, e.pair.TokenOut, amt(t, e.pair.TokenOut, s).Raw(), 0)
			if !table.Set(e.pair, q) {
				t.Fatalf("table.Set(%s, %s) rejected", e.pair, v)
			}
		}
	}
	return table
}
