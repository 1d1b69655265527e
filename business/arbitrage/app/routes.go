package app

import (
	"fmt"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
)

// BuildRoutes resolves configured triangular routes against the token
// registry.
func BuildRoutes(routes []config.RouteConfig, reg *asset.Registry) ([]domain.RouteTemplate, error) {
	out := make([]domain.RouteTemplate, 0, len(routes))
	for _, r := range routes {
		if len(r.Tokens) != 3 {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext(fmt.Sprintf("route %s: want 3 tokens, got %d", r.Name, len(r.Tokens))))
		}

		var tmpl domain.RouteTemplate
		tmpl.Name = r.Name
		for i, sym := range r.Tokens {
			a, ok := reg.GetBySymbol(sym)
			if !ok {
				return nil, apperror.New(apperror.CodeConfigurationError,
					apperror.WithContext(fmt.Sprintf("route %s: unknown token %s", r.Name, sym)))
			}
			tmpl.Tokens[i] = a
		}
		if tmpl.Name == "" {
			tmpl.Name = fmt.Sprintf("%s-%s-%s", tmpl.Tokens[0].Symbol(), tmpl.Tokens[1].Symbol(), tmpl.Tokens[2].Symbol())
		}
		out = append(out, tmpl)
	}
	return out, nil
}

// VenueIDs converts configured venue names.
func VenueIDs(names []string) []pricingDomain.VenueID {
	ids := make([]pricingDomain.VenueID, len(names))
	for i, n := range names {
		ids[i] = pricingDomain.VenueID(n)
	}
	return ids
}
