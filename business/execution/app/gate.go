package app

import (
	"context"

	"github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/retry"
)

// LiquidityGate sizes flash loans against the lending reserve.
type LiquidityGate struct {
	reserves ReserveQuerier
	limits   *Limits
	retry    retry.Policy
	logger   logger.LoggerInterface
}

// NewLiquidityGate creates a gate over reserves.
func NewLiquidityGate(reserves ReserveQuerier, limits *Limits, policy retry.Policy, log logger.LoggerInterface) *LiquidityGate {
	return &LiquidityGate{
		reserves: reserves,
		limits:   limits,
		retry:    policy,
		logger:   log,
	}
}

// Size returns how much of requested can be borrowed. A failed reserve query
// yields the smaller of requested and the token's fallback amount instead of
// an error; the returned error is reserved for amounts that cannot be
// represented.
func (g *LiquidityGate) Size(ctx context.Context, requested asset.Amount) (domain.LiquiditySize, error) {
	token := requested.Asset()

	reserve, err := retry.Do(ctx, g.retry, func(ctx context.Context) (asset.Amount, error) {
		bal, err := g.reserves.ReserveBalance(ctx, token.Address())
		if err != nil {
			return asset.Amount{}, err
		}
		return asset.NewAmount(token, bal), nil
	})
	if err != nil {
		fallback, ferr := g.limits.Fallback(token)
		if ferr != nil {
			return domain.LiquiditySize{}, ferr
		}
		sized, merr := requested.Min(fallback)
		if merr != nil {
			return domain.LiquiditySize{}, merr
		}
		g.logger.Warn(ctx, "reserve query failed, using fallback amount",
			"token", token.Symbol(),
			"requested", requested.String(),
			"fallback", fallback.String(),
			"amount", sized.String(),
			"error", err)
		return domain.LiquiditySize{Amount: sized, UsedFallback: true}, nil
	}

	size, err := domain.SizeForReserve(requested, reserve)
	if err != nil {
		return domain.LiquiditySize{}, err
	}
	if size.WasAdjusted {
		g.logger.Info(ctx, "flash amount clamped to reserve",
			"token", token.Symbol(),
			"requested", requested.String(),
			"reserve", reserve.String(),
			"amount", size.Amount.String())
	}
	return size, nil
}
