package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/core/ports"
)

// GeocodeService turns free-text place queries into coordinates via an
// external geocoder, caching candidate lists so repeated searches for the
// same place don't hit the provider.
type GeocodeService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
}

// NewGeocodeService creates a new GeocodeService. cache may be nil.
func NewGeocodeService(geocoder ports.Geocoder, cache ports.CacheService) *GeocodeService {
	return &GeocodeService{geocoder: geocoder, cache: cache}
}

// Lookup returns the provider's ranked candidate list for a query.
// An empty list with a nil error means the place was not found.
func (s *GeocodeService) Lookup(ctx context.Context, query string) ([]domain.PlaceCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("place query must not be empty")
	}

	cacheKey := "geocode:" + strings.ToLower(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var candidates []domain.PlaceCandidate
			if err := json.Unmarshal(data, &candidates); err == nil {
				return candidates, nil
			}
		}
	}

	candidates, err := s.geocoder.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	// Cache for an hour; place names don't move.
	if s.cache != nil {
		if data, err := json.Marshal(candidates); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}

	return candidates, nil
}

// Resolve implements ports.PlaceResolver: the first (highest-ranked)
// candidate wins, the rest are discarded. found is false when the provider
// returned nothing, a neutral outcome rather than an error.
func (s *GeocodeService) Resolve(ctx context.Context, query string) (*domain.PlaceCandidate, bool, error) {
	candidates, err := s.Lookup(ctx, query)
	if err != nil {
		return nil, false, err
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	best := candidates[0]
	return &best, true, nil
}
