package postgres

import (
	"context"
	"strings"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
)

// MarkerRepo implements ports.MarkerRepository with pgx.
//
// The markers table is append-only. IDs come from a BIGSERIAL sequence, so
// concurrent creates can never collide or reuse a value, and every new ID
// is strictly greater than all previously assigned ones.
type MarkerRepo struct {
	db *DB
}

// NewMarkerRepo creates a new MarkerRepo.
func NewMarkerRepo(db *DB) *MarkerRepo {
	return &MarkerRepo{db: db}
}

// Create persists a marker and returns the full record including the
// generated id and created_at. The name check is duplicated at the API
// boundary; it is repeated here so the store never accepts an invalid row
// regardless of the caller.
func (r *MarkerRepo) Create(ctx context.Context, name string, lat, lon float64) (*domain.Marker, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name")
	}

	m := domain.Marker{Name: name, Lat: lat, Lon: lon}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO markers (name, lat, lon)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, name, lat, lon).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, domain.NewStorageError("insert marker", err)
	}
	return &m, nil
}

// ListAll returns every marker. Ordered by id so the order is stable for
// an unmodified dataset; no sort key is part of the contract.
func (r *MarkerRepo) ListAll(ctx context.Context) ([]domain.Marker, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, lat::float8, lon::float8, created_at
		FROM markers
		ORDER BY id
	`)
	if err != nil {
		return nil, domain.NewStorageError("list markers", err)
	}
	defer rows.Close()

	var markers []domain.Marker
	for rows.Next() {
		var m domain.Marker
		if err := rows.Scan(&m.ID, &m.Name, &m.Lat, &m.Lon, &m.CreatedAt); err != nil {
			return nil, domain.NewStorageError("scan marker", err)
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list markers", err)
	}
	return markers, nil
}
