package markerapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rakshita2/pinpoint/internal/adapters/markerapi"
	"github.com/Rakshita2/pinpoint/internal/core/domain"
)

func TestCreate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/markers" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Name string  `json:"name"`
			Lat  float64 `json:"lat"`
			Lon  float64 `json:"lon"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 12, "name": body.Name, "lat": body.Lat, "lon": body.Lon,
		})
	}))
	defer srv.Close()

	client := markerapi.New(srv.URL, 5*time.Second)
	m, err := client.Create(context.Background(), "Coffee place", 28.36131, 75.59212)
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != 12 || m.Name != "Coffee place" {
		t.Errorf("unexpected marker: %+v", m)
	}
}

func TestCreate_ValidationRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"missing required fields"}`))
	}))
	defer srv.Close()

	client := markerapi.New(srv.URL, 5*time.Second)
	_, err := client.Create(context.Background(), "", 1, 2)

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for a 400, got %v", err)
	}
}

func TestCreate_ServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"database error"}`))
	}))
	defer srv.Close()

	client := markerapi.New(srv.URL, 5*time.Second)
	_, err := client.Create(context.Background(), "x", 1, 2)

	var sErr *domain.ExternalServiceError
	if !errors.As(err, &sErr) {
		t.Fatalf("expected ExternalServiceError for a 500, got %v", err)
	}
}

func TestListAll_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/markers" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`[
			{"id":1,"name":"Home","lat":1.5,"lon":2.5,"createdAt":"2026-01-15T10:00:00Z"},
			{"id":2,"name":"Work","lat":3.5,"lon":4.5,"createdAt":"2026-01-16T10:00:00Z"}
		]`))
	}))
	defer srv.Close()

	client := markerapi.New(srv.URL, 5*time.Second)
	markers, err := client.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if markers[0].ID != 1 || markers[1].Name != "Work" {
		t.Errorf("unexpected markers: %+v", markers)
	}
	if markers[0].CreatedAt.IsZero() {
		t.Error("createdAt must be parsed from the list payload")
	}
}

func TestListAll_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := markerapi.New(srv.URL, 5*time.Second)
	markers, err := client.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(markers) != 0 {
		t.Errorf("expected empty list, got %d", len(markers))
	}
}

func TestListAll_ServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"database error"}`))
	}))
	defer srv.Close()

	client := markerapi.New(srv.URL, 5*time.Second)
	if _, err := client.ListAll(context.Background()); err == nil {
		t.Error("expected error on HTTP 500")
	}
}
