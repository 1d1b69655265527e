package app

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
)

var routeUWM = domain.RouteTemplate{Name: "USDC-WETH-WMATIC", Tokens: [3]*asset.Asset{usdc, weth, wmatic}}

func triangleTable(t *testing.T, wethWmatic quotes) *pricingDomain.PriceTable {
	t.Helper()
	return newTable(t, []pricingDomain.VenueID{"A", "B"},
		tableEntry{pair: pair(t, usdc, weth, "1000"), quotes: quotes{"A": "0.5", "B": "0.4"}},
		tableEntry{pair: pair(t, weth, wmatic, "1"), quotes: wethWmatic},
		tableEntry{pair: pair(t, wmatic, usdc, "1000"), quotes: quotes{"A": "808", "B": "800"}},
	)
}

func TestTriangularAnalyzer_MissingLegAbortsOnlyThatCombination(t *testing.T) {
	table := triangleTable(t, quotes{"A": "2500"})

	a := NewTriangularAnalyzer([]domain.RouteTemplate{routeUWM}, nil, decimal.Zero)
	routes := a.Analyze(table)

	if len(routes) != 1 {
		t.Fatalf("Analyze() returned %d routes, want 1", len(routes))
	}
	r := routes[0]
	if !r.CompoundedReturnPercent.Equal(decimal.NewFromInt(1)) {
		t.Errorf("CompoundedReturnPercent = %s, want 1", r.CompoundedReturnPercent)
	}
	for i, l := range r.Legs {
		if l.Venue != "A" {
			t.Errorf("Legs[%d].Venue = %s, want A", i, l.Venue)
		}
	}
	if r.Name != routeUWM.Name {
		t.Errorf("Name = %s, want %s", r.Name, routeUWM.Name)
	}
}

func TestTriangularAnalyzer_SortedDescending(t *testing.T) {
	table := triangleTable(t, quotes{"A": "2500", "B": "2600"})

	routes := NewTriangularAnalyzer([]domain.RouteTemplate{routeUWM}, nil, decimal.Zero).Analyze(table)

	want := []struct {
		ret    string
		venues [3]pricingDomain.VenueID
	}{
		{"5.04", [3]pricingDomain.VenueID{"A", "B", "A"}},
		{"4", [3]pricingDomain.VenueID{"A", "B", "B"}},
		{"1", [3]pricingDomain.VenueID{"A", "A", "A"}},
	}
	if len(routes) != len(want) {
		t.Fatalf("Analyze() returned %d routes, want %d", len(routes), len(want))
	}
	for i, w := range want {
		if !routes[i].CompoundedReturnPercent.Equal(decimal.RequireFromString(w.ret)) {
			t.Errorf("routes[%d] return = %s, want %s", i, routes[i].CompoundedReturnPercent, w.ret)
		}
		for j, v := range w.venues {
			if routes[i].Legs[j].Venue != v {
				t.Errorf("routes[%d].Legs[%d].Venue = %s, want %s", i, j, routes[i].Legs[j].Venue, v)
			}
		}
	}
}

func TestTriangularAnalyzer_Threshold(t *testing.T) {
	table := triangleTable(t, quotes{"A": "2500", "B": "2600"})

	routes := NewTriangularAnalyzer([]domain.RouteTemplate{routeUWM}, nil, decimal.NewFromInt(4)).Analyze(table)
	if len(routes) != 1 {
		t.Fatalf("Analyze() returned %d routes, want 1", len(routes))
	}
	if !routes[0].CompoundedReturnPercent.Equal(decimal.RequireFromString("5.04")) {
		t.Errorf("return = %s, want 5.04", routes[0].CompoundedReturnPercent)
	}
}

func TestTriangularAnalyzer_RestrictedVenues(t *testing.T) {
	table := triangleTable(t, quotes{"A": "2500", "B": "2600"})

	a := NewTriangularAnalyzer([]domain.RouteTemplate{routeUWM}, []pricingDomain.VenueID{"A"}, decimal.Zero)
	routes := a.Analyze(table)
	if len(routes) != 1 {
		t.Fatalf("Analyze() returned %d routes, want 1", len(routes))
	}
	if !routes[0].CompoundedReturnPercent.Equal(decimal.NewFromInt(1)) {
		t.Errorf("return = %s, want 1", routes[0].CompoundedReturnPercent)
	}
}

func TestTriangularAnalyzer_PairNotInTable(t *testing.T) {
	table := newTable(t, []pricingDomain.VenueID{"A"},
		tableEntry{pair: pair(t, usdc, weth, "1000"), quotes: quotes{"A": "0.5"}})

	routes := NewTriangularAnalyzer([]domain.RouteTemplate{routeUWM}, nil, decimal.Zero).Analyze(table)
	if len(routes) != 0 {
		t.Errorf("Analyze() returned %d routes, want 0", len(routes))
	}
}
