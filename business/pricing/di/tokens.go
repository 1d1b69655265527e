// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fd1az/dex-arbitrage-bot/business/pricing/app"
	"github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	TableBuilder = di.NewToken[*app.TableBuilder]("pricing.TableBuilder")
	Pairs        = di.NewToken[[]domain.TokenPair]("pricing.Pairs")
)

// Private dependency tokens - internal to pricing module
var (
	VenueRegistry = di.NewToken[*app.VenueRegistry]("pricing:venueRegistry")
)

// Helper functions for type-safe access
func GetTableBuilder(c di.ServiceRegistry) *app.TableBuilder {
	return di.GetToken(c, TableBuilder)
}

func GetPairs(c di.ServiceRegistry) []domain.TokenPair {
	return di.GetToken(c, Pairs)
}

func GetVenueRegistry(c di.ServiceRegistry) *app.VenueRegistry {
	return di.GetToken(c, VenueRegistry)
}
