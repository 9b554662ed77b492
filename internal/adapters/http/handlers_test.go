package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/Rakshita2/pinpoint/internal/adapters/http"
	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/core/usecases"
)

// ---- Mock repositories ----

type mockMarkerRepo struct {
	createFn func(ctx context.Context, name string, lat, lon float64) (*domain.Marker, error)
	listFn   func(ctx context.Context) ([]domain.Marker, error)
}

func (m *mockMarkerRepo) Create(ctx context.Context, name string, lat, lon float64) (*domain.Marker, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, lat, lon)
	}
	return &domain.Marker{ID: 1, Name: name, Lat: lat, Lon: lon}, nil
}

func (m *mockMarkerRepo) ListAll(ctx context.Context) ([]domain.Marker, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockGeocoder struct {
	searchFn func(ctx context.Context, query string) ([]domain.PlaceCandidate, error)
}

func (m *mockGeocoder) Search(ctx context.Context, query string) ([]domain.PlaceCandidate, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Markers: usecases.NewMarkerService(&mockMarkerRepo{}, nil, nil),
		Geocode: usecases.NewGeocodeService(&mockGeocoder{}, nil),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---- Create marker tests ----

func TestCreateMarker_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Markers = usecases.NewMarkerService(&mockMarkerRepo{
			createFn: func(ctx context.Context, name string, lat, lon float64) (*domain.Marker, error) {
				return &domain.Marker{ID: 7, Name: name, Lat: lat, Lon: lon}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/api/markers", strings.NewReader(`{"name":"Coffee place","lat":28.36131,"lon":75.59212}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["id"] != float64(7) {
		t.Errorf("expected id 7, got %v", body["id"])
	}
	if body["name"] != "Coffee place" {
		t.Errorf("expected echoed name, got %v", body["name"])
	}
	if body["lat"] != 28.36131 || body["lon"] != 75.59212 {
		t.Errorf("expected echoed coordinates, got lat=%v lon=%v", body["lat"], body["lon"])
	}
	if _, ok := body["createdAt"]; ok {
		t.Error("create response must not include createdAt")
	}
}

func TestCreateMarker_ZeroCoordinatesAllowed(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/api/markers", strings.NewReader(`{"name":"Null Island","lat":0,"lon":0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("zero lat/lon is a valid coordinate, expected 201, got %d", resp.StatusCode)
	}
}

func TestCreateMarker_MissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no name", `{"lat":1.5,"lon":2.5}`},
		{"empty name", `{"name":"","lat":1.5,"lon":2.5}`},
		{"whitespace name", `{"name":"   ","lat":1.5,"lon":2.5}`},
		{"no lat", `{"name":"x","lon":2.5}`},
		{"no lon", `{"name":"x","lat":1.5}`},
		{"empty body", `{}`},
	}

	app := setupApp(makeDeps())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/markers", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != 400 {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error == "" {
				t.Error("expected non-empty error message")
			}
		})
	}
}

func TestCreateMarker_StoreFailure(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Markers = usecases.NewMarkerService(&mockMarkerRepo{
			createFn: func(ctx context.Context, name string, lat, lon float64) (*domain.Marker, error) {
				return nil, domain.NewStorageError("insert marker", context.DeadlineExceeded)
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/api/markers", strings.NewReader(`{"name":"x","lat":1,"lon":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "database error" {
		t.Errorf("expected generic database error, got %q", body.Error)
	}
}

// ---- List marker tests ----

func TestListMarkers_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Markers = usecases.NewMarkerService(&mockMarkerRepo{
			listFn: func(ctx context.Context) ([]domain.Marker, error) {
				return []domain.Marker{
					{ID: 1, Name: "Home", Lat: 28.36131, Lon: 75.59212},
					{ID: 2, Name: "Work", Lat: 28.4, Lon: 75.6},
				}, nil
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/api/markers", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var markers []domain.Marker
	if err := json.NewDecoder(resp.Body).Decode(&markers); err != nil {
		t.Fatalf("list response must be a bare array: %v", err)
	}
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if markers[0].ID != 1 || markers[1].ID != 2 {
		t.Error("expected markers in creation order")
	}
}

func TestListMarkers_EmptyIsArray(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/api/markers", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		t.Fatalf("empty store must serialize as [], got %s", raw)
	}
}

func TestListMarkers_StoreFailure(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Markers = usecases.NewMarkerService(&mockMarkerRepo{
			listFn: func(ctx context.Context) ([]domain.Marker, error) {
				return nil, domain.NewStorageError("list markers", context.DeadlineExceeded)
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/api/markers", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

// ---- Geocode tests ----

func TestGeocode_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Geocode = usecases.NewGeocodeService(&mockGeocoder{
			searchFn: func(ctx context.Context, query string) ([]domain.PlaceCandidate, error) {
				return []domain.PlaceCandidate{
					{DisplayName: "Central Park, NYC", Location: domain.GeoPoint{Lat: 40.78, Lon: -73.96}},
					{DisplayName: "Central Park, Other", Location: domain.GeoPoint{Lat: 1, Lon: 2}},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/api/geocode?q=central+park", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var candidates []domain.PlaceCandidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].DisplayName != "Central Park, NYC" {
		t.Error("candidate order must be preserved, first is the best match")
	}
}

func TestGeocode_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/api/geocode", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Health tests ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
