package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/core/ports"
)

const markerListCacheKey = "markers:all"

// MarkerService handles marker business logic: validated creates and the
// full-list read that map clients bootstrap from.
type MarkerService struct {
	markers   ports.MarkerRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewMarkerService creates a new MarkerService. cache and publisher may be
// nil; the service degrades to direct store access with no fan-out.
func NewMarkerService(markers ports.MarkerRepository, cache ports.CacheService, publisher ports.EventPublisher) *MarkerService {
	return &MarkerService{markers: markers, cache: cache, publisher: publisher}
}

// Create validates and persists a marker, invalidates the list cache, and
// announces the new marker on the event bus. The announcement is
// fire-and-forget: a broker failure never fails the create.
func (s *MarkerService) Create(ctx context.Context, name string, lat, lon float64) (*domain.Marker, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name")
	}

	m, err := s.markers.Create(ctx, name, lat, lon)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, markerListCacheKey)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishMarkerCreated(ctx, m); err != nil {
			slog.Warn("marker created event not published", "id", m.ID, "error", err)
		}
	}

	return m, nil
}

// InvalidateList drops the cached marker list. Wired to marker-created
// events so replicas that did not serve the create still converge within
// one fetch instead of one cache TTL.
func (s *MarkerService) InvalidateList(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, markerListCacheKey)
}

// ListAll returns every persisted marker. Cached briefly so bootstrap
// storms from reconnecting clients don't all hit the store; Create
// invalidates the key, so a list after a successful create always includes
// the new record.
func (s *MarkerService) ListAll(ctx context.Context) ([]domain.Marker, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, markerListCacheKey); err == nil {
			var markers []domain.Marker
			if err := json.Unmarshal(data, &markers); err == nil {
				return markers, nil
			}
		}
	}

	markers, err := s.markers.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(markers); err == nil {
			_ = s.cache.Set(ctx, markerListCacheKey, data, 30)
		}
	}

	return markers, nil
}
