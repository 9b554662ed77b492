package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/pkg/metrics"
)

// createMarkerRequest uses pointer coordinates so an absent field is
// distinguishable from a legitimate zero (the equator exists).
type createMarkerRequest struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

// createMarkerResponse is the create echo: the canonical record minus the
// creation time, which clients pick up on their next list fetch.
type createMarkerResponse struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// CreateMarkerHandler persists a marker. Field presence is checked here
// even though the store validates again: the boundary owes the client a
// structured error, not a surfaced internal one.
func CreateMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createMarkerRequest
		if err := c.BodyParser(&req); err != nil {
			metrics.MarkerCreateRejected.WithLabelValues("bad_body").Inc()
			return errBadRequest(c, "invalid request body")
		}

		if strings.TrimSpace(req.Name) == "" || req.Lat == nil || req.Lon == nil {
			metrics.MarkerCreateRejected.WithLabelValues("missing_field").Inc()
			return errBadRequest(c, "missing required fields")
		}

		m, err := deps.Markers.Create(c.Context(), req.Name, *req.Lat, *req.Lon)
		if err != nil {
			var vErr *domain.ValidationError
			if errors.As(err, &vErr) {
				metrics.MarkerCreateRejected.WithLabelValues("missing_field").Inc()
				return errBadRequest(c, vErr.Error())
			}
			return errInternal(c, "database error")
		}

		metrics.MarkersCreated.Inc()
		return c.Status(fiber.StatusCreated).JSON(createMarkerResponse{
			ID:   m.ID,
			Name: m.Name,
			Lat:  m.Lat,
			Lon:  m.Lon,
		})
	}
}

// ListMarkersHandler returns the full marker set as a flat array.
func ListMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		markers, err := deps.Markers.ListAll(c.Context())
		if err != nil {
			return errInternal(c, "database error")
		}
		if markers == nil {
			markers = []domain.Marker{}
		}
		return c.JSON(markers)
	}
}

// GeocodeHandler proxies free-text place search to the geocoding resolver,
// returning the full ranked candidate list; clients apply first-wins.
func GeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if strings.TrimSpace(query) == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		candidates, err := deps.Geocode.Lookup(c.Context(), query)
		if err != nil {
			return errInternal(c, "geocoding failed")
		}
		if candidates == nil {
			candidates = []domain.PlaceCandidate{}
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(candidates)
	}
}
