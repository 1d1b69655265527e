package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Spread is the cross-venue price difference for one pair. Low is the cheapest
// venue to buy the output token on (smallest output), High the best venue to
// sell into (largest output).
type Spread struct {
	Low      Quote
	High     Quote
	Absolute decimal.Decimal // High - Low in output-token units
	Percent  decimal.Decimal // (High - Low) / Low * 100
}

// CalculateSpread finds the lowest and highest quote. Ties go to the quote
// seen first. It reports false for fewer than two quotes or a zero low quote.
//
// Amounts are compared as exact decimals scaled by each quote's own token
// decimals, so quotes reported in different bases still compare correctly.
func CalculateSpread(quotes []Quote) (Spread, bool) {
	if len(quotes) < 2 {
		return Spread{}, false
	}

	low, high := quotes[0], quotes[0]
	lowDec, highDec := low.AmountOut.ToDecimal(), high.AmountOut.ToDecimal()

	for _, q := range quotes[1:] {
		d := q.AmountOut.ToDecimal()
		if d.LessThan(lowDec) {
			low, lowDec = q, d
		}
		if d.GreaterThan(highDec) {
			high, highDec = q, d
		}
	}

	if !lowDec.IsPositive() {
		return Spread{}, false
	}

	abs := highDec.Sub(lowDec)
	return Spread{
		Low:      low,
		High:     high,
		Absolute: abs,
		Percent:  abs.Div(lowDec).Mul(hundred),
	}, true
}
