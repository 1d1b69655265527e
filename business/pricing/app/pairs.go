package app

import (
	"fmt"

	"github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
)

// BuildPairs resolves configured pairs against the token registry.
func BuildPairs(pairs []config.PairConfig, reg *asset.Registry) ([]domain.TokenPair, error) {
	out := make([]domain.TokenPair, 0, len(pairs))
	seen := make(map[domain.PairKey]bool, len(pairs))

	for _, pc := range pairs {
		in, ok := reg.GetBySymbol(pc.TokenIn)
		if !ok {
			return nil, unknownToken(pc.TokenIn)
		}
		tokenOut, ok := reg.GetBySymbol(pc.TokenOut)
		if !ok {
			return nil, unknownToken(pc.TokenOut)
		}

		amount, err := asset.ParseString(in, pc.TestAmountIn)
		if err != nil {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext(fmt.Sprintf("pair %s/%s test_amount_in", pc.TokenIn, pc.TokenOut)),
				apperror.WithCause(err))
		}

		pair, err := domain.NewTokenPair(in, tokenOut, amount)
		if err != nil {
			return nil, apperror.New(apperror.CodeConfigurationError, apperror.WithCause(err))
		}
		if seen[pair.Key()] {
			continue
		}
		seen[pair.Key()] = true
		out = append(out, pair)
	}
	return out, nil
}

// BuildPins resolves fee tier pins for one venue.
func BuildPins(venue string, pins []config.FeeTierPin, reg *asset.Registry) (map[domain.PairKey]int, error) {
	out := make(map[domain.PairKey]int)
	for _, p := range pins {
		if p.Venue != venue {
			continue
		}
		in, ok := reg.GetBySymbol(p.TokenIn)
		if !ok {
			return nil, unknownToken(p.TokenIn)
		}
		tokenOut, ok := reg.GetBySymbol(p.TokenOut)
		if !ok {
			return nil, unknownToken(p.TokenOut)
		}
		out[domain.PairKey{In: in.Address(), Out: tokenOut.Address()}] = p.Fee
	}
	return out, nil
}

func unknownToken(symbol string) error {
	return apperror.New(apperror.CodeConfigurationError,
		apperror.WithContext(fmt.Sprintf("unknown token %q", symbol)))
}
