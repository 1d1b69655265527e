package app

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
)

// Analyzer finds cross-venue spreads in a price table.
type Analyzer struct {
	minProfitPercent decimal.Decimal
}

// NewAnalyzer creates an Analyzer that emits spreads strictly above
// minProfitPercent.
func NewAnalyzer(minProfitPercent decimal.Decimal) *Analyzer {
	return &Analyzer{minProfitPercent: minProfitPercent}
}

// MinProfitPercent returns the emission threshold.
func (a *Analyzer) MinProfitPercent() decimal.Decimal {
	return a.minProfitPercent
}

// Analyze returns the opportunities in table sorted by descending spread.
// Pairs with fewer than two quotes are skipped.
func (a *Analyzer) Analyze(cycleID uuid.UUID, table *pricingDomain.PriceTable) []domain.Opportunity {
	now := time.Now()
	var opps []domain.Opportunity

	for _, pair := range table.Pairs() {
		spread, ok := pricingDomain.CalculateSpread(table.Quotes(pair.Key()))
		if !ok || !spread.Percent.GreaterThan(a.minProfitPercent) {
			continue
		}

		opp, err := domain.NewOpportunity(cycleID, pair, spread, now)
		if err != nil {
			continue
		}
		opps = append(opps, opp)
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].SpreadPercent.GreaterThan(opps[j].SpreadPercent)
	})
	return opps
}
