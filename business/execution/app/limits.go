package app

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
)

// Limits holds the per-token constant amounts used when the gate cannot
// size a trade from live liquidity.
type Limits struct {
	fallback      decimal.Decimal
	directDefault decimal.Decimal
	fallbackBy    map[string]decimal.Decimal
	directBy      map[string]decimal.Decimal
}

// NewLimits builds Limits from the execution section and per-token overrides.
func NewLimits(exec config.ExecutionConfig, tokens []config.TokenConfig) (*Limits, error) {
	l := &Limits{
		fallbackBy: make(map[string]decimal.Decimal),
		directBy:   make(map[string]decimal.Decimal),
	}

	var err error
	if l.fallback, err = parseLimit(exec.LiquidityFallbackAmount, "execution.liquidity_fallback_amount"); err != nil {
		return nil, err
	}
	if l.directDefault, err = parseLimit(exec.DirectDefaultAmount, "execution.direct_default_amount"); err != nil {
		return nil, err
	}

	for _, t := range tokens {
		key := strings.ToUpper(t.Symbol)
		if t.FallbackAmount != "" {
			d, err := parseLimit(t.FallbackAmount, "tokens."+t.Symbol+".fallback_amount")
			if err != nil {
				return nil, err
			}
			l.fallbackBy[key] = d
		}
		if t.DirectMaxAmount != "" {
			d, err := parseLimit(t.DirectMaxAmount, "tokens."+t.Symbol+".direct_max_amount")
			if err != nil {
				return nil, err
			}
			l.directBy[key] = d
		}
	}
	return l, nil
}

// Fallback is the amount used when the reserve query fails.
func (l *Limits) Fallback(a *asset.Asset) (asset.Amount, error) {
	if d, ok := l.fallbackBy[strings.ToUpper(a.Symbol())]; ok {
		return asset.ParseDecimal(a, d)
	}
	return asset.ParseDecimal(a, l.fallback)
}

// DirectCap bounds direct trades for tokens that cannot be flash borrowed.
func (l *Limits) DirectCap(a *asset.Asset) (asset.Amount, error) {
	if d, ok := l.directBy[strings.ToUpper(a.Symbol())]; ok {
		return asset.ParseDecimal(a, d)
	}
	return asset.ParseDecimal(a, l.directDefault)
}

func parseLimit(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err), apperror.WithContext(field))
	}
	return d, nil
}
