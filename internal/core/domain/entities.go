package domain

import (
	"time"
)

// Marker is the sole persisted entity: a named point of interest dropped on
// the map. The store assigns ID and CreatedAt; records are append-only and
// never mutated once written.
type Marker struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"createdAt"`
}

// Location returns the marker's coordinates as a GeoPoint.
func (m Marker) Location() GeoPoint {
	return GeoPoint{Lat: m.Lat, Lon: m.Lon}
}

// PlaceCandidate is one geocoding result for a free-text place query.
// Candidates arrive ranked; callers use only the first.
type PlaceCandidate struct {
	DisplayName string   `json:"display_name"`
	Location    GeoPoint `json:"location"`
}

// PositionSample is a single reading from a device's location facility.
type PositionSample struct {
	DeviceID string    `json:"device_id"`
	Location GeoPoint  `json:"location"`
	Accuracy float64   `json:"accuracy,omitempty"` // meters, 0 = unknown
	Time     time.Time `json:"time"`
}

// DraftStatus tags a locally created marker with its persistence state.
type DraftStatus int

const (
	// DraftPending renders optimistically while the create call is in flight.
	DraftPending DraftStatus = iota
	// DraftConfirmed means the store accepted the marker and returned the
	// canonical record.
	DraftConfirmed
	// DraftFailed means the create call was rejected or the store failed;
	// renderers must flag or remove the pin rather than leave it
	// indistinguishable from a confirmed one.
	DraftFailed
)

func (s DraftStatus) String() string {
	switch s {
	case DraftPending:
		return "pending"
	case DraftConfirmed:
		return "confirmed"
	case DraftFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarkerDraft is the transient long-press capture: coordinates plus a
// user-entered name, alive while the creation modal is open or the create
// call is unresolved.
type MarkerDraft struct {
	Name     string      `json:"name"`
	Location GeoPoint    `json:"location"`
	Status   DraftStatus `json:"status"`
	Marker   *Marker     `json:"marker,omitempty"` // canonical record once confirmed
}
