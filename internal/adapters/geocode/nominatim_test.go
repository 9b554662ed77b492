package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rakshita2/pinpoint/internal/adapters/geocode"
)

func newTestClient(handler http.HandlerFunc) (*geocode.Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return geocode.New(srv.URL, "pinpoint-test/1.0", 5*time.Second), srv
}

func TestSearch_ParsesStringCoordinates(t *testing.T) {
	var gotQuery, gotAgent string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"lat":"40.7828","lon":"-73.9653","display_name":"Central Park, Manhattan"},
			{"lat":"40.7580","lon":"-73.9855","display_name":"Central Park Tower"}
		]`))
	})
	defer srv.Close()

	candidates, err := client.Search(context.Background(), "central park")
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery != "central park" {
		t.Errorf("query not forwarded, got %q", gotQuery)
	}
	if gotAgent != "pinpoint-test/1.0" {
		t.Errorf("User-Agent not set, got %q", gotAgent)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].DisplayName != "Central Park, Manhattan" {
		t.Error("candidate order must be preserved")
	}
	if candidates[0].Location.Lat != 40.7828 || candidates[0].Location.Lon != -73.9653 {
		t.Errorf("string coordinates not parsed: %+v", candidates[0].Location)
	}
}

func TestSearch_EmptyResultIsNotAnError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	candidates, err := client.Search(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("empty result set must not error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestSearch_SkipsMalformedCandidates(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"lat":"not-a-number","lon":"2.0","display_name":"broken"},
			{"lat":"1.5","lon":"2.5","display_name":"good"}
		]`))
	})
	defer srv.Close()

	candidates, err := client.Search(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 || candidates[0].DisplayName != "good" {
		t.Errorf("malformed candidate must be skipped, got %+v", candidates)
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	if _, err := client.Search(context.Background(), "q"); err == nil {
		t.Error("expected error on HTTP 502")
	}
}

func TestSearch_MalformedBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	})
	defer srv.Close()

	if _, err := client.Search(context.Background(), "q"); err == nil {
		t.Error("expected decode error")
	}
}
