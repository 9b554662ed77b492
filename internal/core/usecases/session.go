package usecases

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/core/ports"
	"github.com/Rakshita2/pinpoint/internal/pkg/geospatial"
)

// Initial viewport and the zoom used when focusing a search result or a
// position update.
var defaultCenter = domain.GeoPoint{Lat: 28.36131, Lon: 75.59212}

const (
	defaultZoom = 15
	focusZoom   = 13
)

// ErrLocationDenied is returned by Track and LocateOnce when the device's
// location permission is refused.
var ErrLocationDenied = errors.New("location permission denied")

// ErrNoOpenDraft is returned by SaveDraft when no long-press capture is
// pending.
var ErrNoOpenDraft = errors.New("no open marker draft")

// SessionState is the coarse lifecycle of a map session.
type SessionState int

const (
	// StateIdle is the initial state; the marker set is empty until the
	// bootstrap list-fetch completes.
	StateIdle SessionState = iota
	// StateLoaded means the snapshot holds the last successful list fetch.
	StateLoaded
)

// Pin is a renderable marker. Status distinguishes persisted markers
// (confirmed) from optimistic drafts still in flight (pending) and drafts
// whose create call failed (failed); renderers must not draw failed pins
// as if they were confirmed.
type Pin struct {
	Name      string             `json:"name"`
	Location  domain.GeoPoint    `json:"location"`
	CreatedAt time.Time          `json:"created_at,omitempty"`
	Status    domain.DraftStatus `json:"status"`
	LabelOpen bool               `json:"label_open"`
	Distance  *float64           `json:"distance,omitempty"` // meters from live pin
}

// MapSession reconciles one client's rendered map state: the marker
// snapshot, at most one search pin, at most one live-location pin, and the
// transient marker draft. All pin mutations go through named transition
// methods; there is no ad-hoc shared state.
//
// Search and name-filter operate on the last fetched snapshot, so they can
// lag markers created by other clients since the fetch. That is deliberate
// (no round-trip per keystroke); callers wanting fresh data re-Bootstrap.
type MapSession struct {
	api      ports.MarkerAPI
	places   ports.PlaceResolver
	location ports.LocationProvider
	logger   *slog.Logger

	mu         sync.Mutex
	state      SessionState
	markers    []domain.Marker
	drafts     []*domain.MarkerDraft
	openDraft  *domain.MarkerDraft
	openLabels map[int64]bool
	searchPin  *domain.GeoPoint
	livePin    *domain.GeoPoint
	viewport   domain.Viewport

	// Fencing for the search-pin slot: a completion is applied only if its
	// sequence number is the latest issued, so a slow early request can
	// never overwrite the result of a later one.
	searchSeq uint64
}

// NewMapSession creates an idle session. location may be nil when the
// client has no position facility; Track and LocateOnce then fail.
func NewMapSession(api ports.MarkerAPI, places ports.PlaceResolver, location ports.LocationProvider, logger *slog.Logger) *MapSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &MapSession{
		api:        api,
		places:     places,
		location:   location,
		logger:     logger,
		openLabels: make(map[int64]bool),
		viewport:   domain.Viewport{Center: defaultCenter, Zoom: defaultZoom},
	}
}

// Bootstrap fetches the full marker list and enters Loaded. Calling it
// again refreshes the snapshot; open labels are kept for markers that
// still exist.
func (s *MapSession) Bootstrap(ctx context.Context) error {
	markers, err := s.api.ListAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = markers
	s.state = StateLoaded
	return nil
}

// State returns the session lifecycle state.
func (s *MapSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Viewport returns the current map window.
func (s *MapSession) Viewport() domain.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// SearchPin returns a copy of the single search pin, or nil.
func (s *MapSession) SearchPin() *domain.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchPin == nil {
		return nil
	}
	p := *s.searchPin
	return &p
}

// LivePin returns a copy of the single live-location pin, or nil.
func (s *MapSession) LivePin() *domain.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.livePin == nil {
		return nil
	}
	p := *s.livePin
	return &p
}

// Snapshot returns a copy of the last fetched marker set.
func (s *MapSession) Snapshot() []domain.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Pins returns every renderable marker pin: the snapshot plus unresolved
// drafts. When a live pin is present each pin carries its haversine
// distance from the current position.
func (s *MapSession) Pins() []Pin {
	s.mu.Lock()
	defer s.mu.Unlock()

	pins := make([]Pin, 0, len(s.markers)+len(s.drafts))
	for _, m := range s.markers {
		pins = append(pins, Pin{
			Name:      m.Name,
			Location:  m.Location(),
			CreatedAt: m.CreatedAt,
			Status:    domain.DraftConfirmed,
			LabelOpen: s.openLabels[m.ID],
		})
	}
	for _, d := range s.drafts {
		pins = append(pins, Pin{
			Name:     d.Name,
			Location: d.Location,
			Status:   d.Status,
		})
	}

	if s.livePin != nil {
		for i := range pins {
			d := geospatial.Haversine(s.livePin.Lat, s.livePin.Lon, pins[i].Location.Lat, pins[i].Location.Lon)
			pins[i].Distance = &d
		}
	}
	return pins
}

// ResolvePlace submits a place-search query. On a match the search pin is
// created or moved to the first candidate and the view recenters on it.
// found is false for a no-candidate outcome (pin and view untouched) and
// for a stale completion superseded by a newer query.
func (s *MapSession) ResolvePlace(ctx context.Context, query string) (*domain.PlaceCandidate, bool, error) {
	s.mu.Lock()
	s.searchSeq++
	seq := s.searchSeq
	s.mu.Unlock()

	candidate, found, err := s.places.Resolve(ctx, query)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.searchSeq {
		s.logger.Debug("discarding stale place search", "query", query, "seq", seq, "latest", s.searchSeq)
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}

	loc := candidate.Location
	s.searchPin = &loc
	s.viewport = domain.Viewport{Center: loc, Zoom: focusZoom}
	return candidate, true, nil
}

// FilterMarkersByName runs the marker-name search: a case-insensitive,
// unanchored substring match against the snapshot. On at least one match
// the view recenters on the first match (store order) and every match gets
// an open label; on zero matches nothing on the map changes and found is
// false. This mode never calls the marker API.
func (s *MapSession) FilterMarkersByName(query string) ([]domain.Marker, bool) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []domain.Marker
	for _, m := range s.markers {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil, false
	}

	s.openLabels = make(map[int64]bool, len(matches))
	for _, m := range matches {
		s.openLabels[m.ID] = true
	}
	s.viewport = domain.Viewport{Center: matches[0].Location(), Zoom: focusZoom}
	return matches, true
}

// OpenDraft captures long-press coordinates and opens the naming modal.
// Reopening replaces any previous unnamed draft.
func (s *MapSession) OpenDraft(lat, lon float64) *domain.MarkerDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openDraft = &domain.MarkerDraft{
		Location: domain.GeoPoint{Lat: lat, Lon: lon},
		Status:   domain.DraftPending,
	}
	return s.openDraft
}

// CancelDraft discards the open draft with no side effect.
func (s *MapSession) CancelDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openDraft = nil
}

// SaveDraft names the open draft and commits it: the pin renders
// immediately as pending, then the create call runs. On success the draft
// becomes confirmed and the canonical record joins the snapshot (the store
// echoes the full record, so there is no re-fetch). On failure the draft
// becomes failed and stays visible only as a flagged pin, never left
// looking confirmed.
func (s *MapSession) SaveDraft(ctx context.Context, name string) (*domain.MarkerDraft, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	draft := s.openDraft
	if draft == nil {
		s.mu.Unlock()
		return nil, ErrNoOpenDraft
	}
	if name == "" {
		s.mu.Unlock()
		return draft, domain.NewValidationError("name")
	}

	// Optimistic render before the call is issued.
	draft.Name = name
	draft.Status = domain.DraftPending
	s.drafts = append(s.drafts, draft)
	s.openDraft = nil
	s.mu.Unlock()

	m, err := s.api.Create(ctx, name, draft.Location.Lat, draft.Location.Lon)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		draft.Status = domain.DraftFailed
		s.logger.Warn("marker create failed, pin flagged", "name", name, "error", err)
		return draft, err
	}

	draft.Status = domain.DraftConfirmed
	draft.Marker = m
	s.markers = append(s.markers, *m)
	s.state = StateLoaded
	s.removeDraftLocked(draft)
	return draft, nil
}

// removeDraftLocked drops a draft from the optimistic render list.
// Caller holds s.mu.
func (s *MapSession) removeDraftLocked(draft *domain.MarkerDraft) {
	for i, d := range s.drafts {
		if d == draft {
			s.drafts = append(s.drafts[:i], s.drafts[i+1:]...)
			return
		}
	}
}

// LocateOnce reads the device position once and moves the search pin to
// it, recentering the view.
func (s *MapSession) LocateOnce(ctx context.Context, opts ports.WatchOptions) (*domain.PositionSample, error) {
	if s.location == nil {
		return nil, ErrLocationDenied
	}
	granted, err := s.location.RequestPermission(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, ErrLocationDenied
	}

	sample, err := s.location.Current(ctx, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loc := sample.Location
	s.searchPin = &loc
	s.viewport = domain.Viewport{Center: loc, Zoom: focusZoom}
	return sample, nil
}

// Track subscribes to the continuous position feed. Every sample moves the
// single live pin (never duplicated) and recenters the view, superseding
// the previous position unconditionally. Blocks until ctx is cancelled.
func (s *MapSession) Track(ctx context.Context, opts ports.WatchOptions) error {
	if s.location == nil {
		return ErrLocationDenied
	}
	granted, err := s.location.RequestPermission(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return ErrLocationDenied
	}

	return s.location.Watch(ctx, opts, func(sample domain.PositionSample) {
		s.mu.Lock()
		defer s.mu.Unlock()
		loc := sample.Location
		s.livePin = &loc
		s.viewport = domain.Viewport{Center: loc, Zoom: focusZoom}
	})
}
