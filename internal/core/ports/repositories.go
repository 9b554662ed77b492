package ports

import (
	"context"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
)

// MarkerRepository persists markers. The store is append-only: records
// are never updated or deleted, and IDs are never reused.
type MarkerRepository interface {
	// Create validates, assigns ID and CreatedAt, and persists the marker.
	// Returns *domain.ValidationError for an empty name and
	// *domain.StorageError for write failures.
	Create(ctx context.Context, name string, lat, lon float64) (*domain.Marker, error)
	// ListAll returns every persisted marker in a stable order.
	ListAll(ctx context.Context) ([]domain.Marker, error)
}
