//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	handler "github.com/Rakshita2/pinpoint/internal/adapters/http"
	"github.com/Rakshita2/pinpoint/internal/adapters/postgres"
	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/core/usecases"
	"github.com/Rakshita2/pinpoint/internal/pkg/config"
)

// setupTestDB connects to the test database and clears marker data.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("pinpoint-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE markers RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate markers: %v", err)
	}

	return &postgres.DB{Pool: pool}
}

func setupIntegrationApp(t *testing.T, db *postgres.DB) *fiber.App {
	repo := postgres.NewMarkerRepo(db)
	deps := &handler.Dependencies{
		Markers: usecases.NewMarkerService(repo, nil, nil),
		DB:      db,
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func TestIntegration_CreateThenList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupIntegrationApp(t, db)

	// Create two markers.
	for _, body := range []string{
		`{"name":"First","lat":28.36131,"lon":75.59212}`,
		`{"name":"Second","lat":28.4,"lon":75.6}`,
	} {
		req := httptest.NewRequest("POST", "/api/markers", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 201 {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
	}

	// List returns both, in id order, with assigned timestamps.
	req := httptest.NewRequest("GET", "/api/markers", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var markers []domain.Marker
	if err := json.NewDecoder(resp.Body).Decode(&markers); err != nil {
		t.Fatal(err)
	}
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if markers[0].ID >= markers[1].ID {
		t.Error("ids must increase in creation order")
	}
	if markers[0].Name != "First" || markers[1].Name != "Second" {
		t.Errorf("unexpected order: %+v", markers)
	}
	if markers[0].CreatedAt.IsZero() {
		t.Error("store must assign createdAt")
	}
}

func TestIntegration_RejectedCreateLeavesNoRow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupIntegrationApp(t, db)

	req := httptest.NewRequest("POST", "/api/markers", strings.NewReader(`{"name":"","lat":1,"lon":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var count int
	if err := db.Pool.QueryRow(context.Background(), `SELECT count(*) FROM markers`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("rejected create must not write, found %d rows", count)
	}
}
