package ports

import (
	"context"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
)

// MarkerAPI is the client-side view of the marker service's wire contract:
// create and list-all, nothing else.
type MarkerAPI interface {
	Create(ctx context.Context, name string, lat, lon float64) (*domain.Marker, error)
	ListAll(ctx context.Context) ([]domain.Marker, error)
}

// Geocoder translates free text into ranked coordinate candidates.
// An empty slice with a nil error means "no match" and is not a failure.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]domain.PlaceCandidate, error)
}

// PlaceResolver resolves free text to the single best-match candidate.
// found is false when the provider returned no candidates.
type PlaceResolver interface {
	Resolve(ctx context.Context, query string) (candidate *domain.PlaceCandidate, found bool, err error)
}

// WatchOptions configures a position subscription, mirroring the device
// facility's accuracy/timeout/staleness knobs.
type WatchOptions struct {
	HighAccuracy bool
	TimeoutSec   int
	MaxAgeSec    int
}

// LocationProvider exposes the device location facility: a permission
// gate, a one-shot read, and a continuous subscription. Watch blocks
// until ctx is cancelled, invoking handler for every sample as it arrives.
type LocationProvider interface {
	RequestPermission(ctx context.Context) (granted bool, err error)
	Current(ctx context.Context, opts WatchOptions) (*domain.PositionSample, error)
	Watch(ctx context.Context, opts WatchOptions, handler func(domain.PositionSample)) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishMarkerCreated(ctx context.Context, m *domain.Marker) error
	PublishPosition(ctx context.Context, sample *domain.PositionSample) error
}

// EventSubscriber consumes domain events from a message broker.
type EventSubscriber interface {
	SubscribeMarkerCreated(ctx context.Context, handler func(ctx context.Context, m *domain.Marker) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
