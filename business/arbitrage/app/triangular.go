package app

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
)

var notional = decimal.NewFromInt(1)

// TriangularAnalyzer evaluates closed 3-leg routes over every venue
// combination. The work is routes x venues^3, so both lists are meant to be
// small and hand-picked.
type TriangularAnalyzer struct {
	routes           []domain.RouteTemplate
	venues           []pricingDomain.VenueID
	minProfitPercent decimal.Decimal
}

// NewTriangularAnalyzer creates a TriangularAnalyzer. An empty venue list
// means every venue in the table.
func NewTriangularAnalyzer(routes []domain.RouteTemplate, venues []pricingDomain.VenueID, minProfitPercent decimal.Decimal) *TriangularAnalyzer {
	return &TriangularAnalyzer{
		routes:           routes,
		venues:           venues,
		minProfitPercent: minProfitPercent,
	}
}

// Routes returns the configured templates.
func (a *TriangularAnalyzer) Routes() []domain.RouteTemplate {
	return a.routes
}

// Analyze returns every profitable venue combination sorted by descending
// compounded return. A leg without a quote drops only that combination.
func (a *TriangularAnalyzer) Analyze(table *pricingDomain.PriceTable) []domain.TriangularRoute {
	venues := a.venues
	if len(venues) == 0 {
		venues = table.Venues()
	}

	var found []domain.TriangularRoute
	for _, tmpl := range a.routes {
		hops := tmpl.Hops()

		// Leg candidates per hop, in venue order.
		var options [3][]domain.Leg
		for i, hop := range hops {
			options[i] = a.legOptions(table, hop[0].Address(), hop[1].Address(), venues)
		}

		for _, l0 := range options[0] {
			for _, l1 := range options[1] {
				for _, l2 := range options[2] {
					legs := [3]domain.Leg{l0, l1, l2}
					ret := domain.Compound(legs, notional)
					if !ret.IsPositive() || !ret.GreaterThan(a.minProfitPercent) {
						continue
					}
					found = append(found, domain.TriangularRoute{
						Name:                    tmpl.Name,
						Legs:                    legs,
						CompoundedReturnPercent: ret,
					})
				}
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].CompoundedReturnPercent.GreaterThan(found[j].CompoundedReturnPercent)
	})
	return found
}

func (a *TriangularAnalyzer) legOptions(table *pricingDomain.PriceTable, from, to common.Address, venues []pricingDomain.VenueID) []domain.Leg {
	pair, ok := table.Pair(from, to)
	if !ok {
		return nil
	}

	legs := make([]domain.Leg, 0, len(venues))
	for _, v := range venues {
		q, ok := table.Quote(pair.Key(), v)
		if !ok {
			continue
		}
		rate := q.Rate(pair)
		if !rate.IsPositive() {
			continue
		}
		legs = append(legs, domain.Leg{
			From:  pair.TokenIn,
			To:    pair.TokenOut,
			Venue: v,
			Rate:  rate,
		})
	}
	return legs
}
