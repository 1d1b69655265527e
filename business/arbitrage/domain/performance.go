package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PairPerformance is the rolling record kept per pair across cycles. It only
// influences polling order.
type PairPerformance struct {
	MaxObservedSpread  decimal.Decimal `json:"maxObservedSpread"`
	CheckCount         int64           `json:"checkCount"`
	LastProfitEstimate decimal.Decimal `json:"lastProfitEstimate"`
	LastCheckedAt      time.Time       `json:"lastCheckedAt"`
}

// Observe folds one cycle's measurement into the record.
func (p PairPerformance) Observe(spread, profit decimal.Decimal, at time.Time) PairPerformance {
	if spread.GreaterThan(p.MaxObservedSpread) {
		p.MaxObservedSpread = spread
	}
	p.CheckCount++
	p.LastProfitEstimate = profit
	p.LastCheckedAt = at
	return p
}
