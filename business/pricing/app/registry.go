package app

import (
	"fmt"

	"github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
)

// SourceFactory builds the adapter for one configured venue.
type SourceFactory func(cfg config.VenueConfig) (QuoteSource, error)

// VenueRegistry maps venue kinds to factories and venue ids to adapters.
// Venue order is the configuration order.
type VenueRegistry struct {
	factories map[string]SourceFactory
	sources   []QuoteSource
	byID      map[domain.VenueID]QuoteSource
}

// NewVenueRegistry creates an empty registry.
func NewVenueRegistry() *VenueRegistry {
	return &VenueRegistry{
		factories: make(map[string]SourceFactory),
		byID:      make(map[domain.VenueID]QuoteSource),
	}
}

// RegisterKind installs the factory for a venue kind.
func (r *VenueRegistry) RegisterKind(kind string, f SourceFactory) {
	r.factories[kind] = f
}

// Add registers an already built source.
func (r *VenueRegistry) Add(src QuoteSource) error {
	id := src.Venue()
	if _, dup := r.byID[id]; dup {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(fmt.Sprintf("duplicate venue %q", id)))
	}
	r.sources = append(r.sources, src)
	r.byID[id] = src
	return nil
}

// Build creates an adapter for every enabled venue.
func (r *VenueRegistry) Build(venues []config.VenueConfig) error {
	for _, v := range venues {
		if v.Disabled {
			continue
		}
		f, ok := r.factories[v.Kind]
		if !ok {
			return apperror.New(apperror.CodeUnknownVenueKind,
				apperror.WithContext(fmt.Sprintf("venue %q kind %q", v.ID, v.Kind)))
		}
		src, err := f(v)
		if err != nil {
			return apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext(fmt.Sprintf("venue %q", v.ID)),
				apperror.WithCause(err))
		}
		if err := r.Add(src); err != nil {
			return err
		}
	}
	return nil
}

// Sources returns the adapters in venue order.
func (r *VenueRegistry) Sources() []QuoteSource {
	return append([]QuoteSource(nil), r.sources...)
}

// Get returns the adapter for id.
func (r *VenueRegistry) Get(id domain.VenueID) (QuoteSource, error) {
	src, ok := r.byID[id]
	if !ok {
		return nil, apperror.New(apperror.CodeUnknownVenue, apperror.WithContext(string(id)))
	}
	return src, nil
}

// IDs returns the venue ids in order.
func (r *VenueRegistry) IDs() []domain.VenueID {
	ids := make([]domain.VenueID, len(r.sources))
	for i, s := range r.sources {
		ids[i] = s.Venue()
	}
	return ids
}
