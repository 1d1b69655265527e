package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
)

// RouteTemplate is a closed route A->B->C->A to evaluate every cycle.
type RouteTemplate struct {
	Name   string
	Tokens [3]*asset.Asset
}

// Hops returns the three (from, to) legs of the route in order.
func (r RouteTemplate) Hops() [3][2]*asset.Asset {
	return [3][2]*asset.Asset{
		{r.Tokens[0], r.Tokens[1]},
		{r.Tokens[1], r.Tokens[2]},
		{r.Tokens[2], r.Tokens[0]},
	}
}

// Leg is one hop of a triangular route priced on a single venue.
type Leg struct {
	From  *asset.Asset
	To    *asset.Asset
	Venue pricingDomain.VenueID
	Rate  decimal.Decimal // To per From, human units
}

// TriangularRoute is a priced venue combination for a route template.
type TriangularRoute struct {
	Name                    string
	Legs                    [3]Leg
	CompoundedReturnPercent decimal.Decimal
}

// Compound multiplies the leg rates starting from notional and returns the
// return over the principal in percent.
func Compound(legs [3]Leg, notional decimal.Decimal) decimal.Decimal {
	if !notional.IsPositive() {
		return decimal.Zero
	}
	out := notional
	for _, l := range legs {
		out = out.Mul(l.Rate)
	}
	return out.Sub(notional).Div(notional).Mul(decimal.NewFromInt(100))
}

// Path renders the route as "USDC -quickswap-> WETH -sushiswap-> ...".
func (r TriangularRoute) Path() string {
	var b strings.Builder
	b.WriteString(r.Legs[0].From.Symbol())
	for _, l := range r.Legs {
		fmt.Fprintf(&b, " -%s-> %s", l.Venue, l.To.Symbol())
	}
	return b.String()
}
