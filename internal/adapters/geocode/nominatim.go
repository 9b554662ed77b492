package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/pkg/metrics"
)

// Client consumes a Nominatim-compatible search endpoint. Only the minimal
// contract is relied on: an ordered JSON array of candidates carrying lat,
// lon, and a display name.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a geocoding client. timeout guards each lookup.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// result is the provider's wire shape; coordinates arrive as decimal
// strings.
type result struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search implements ports.Geocoder. An empty candidate list with a nil
// error means the place was not found; transport and decode failures are
// ExternalServiceError.
func (c *Client) Search(ctx context.Context, query string) ([]domain.PlaceCandidate, error) {
	start := time.Now()
	candidates, err := c.search(ctx, query)
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
	case len(candidates) == 0:
		metrics.GeocodeLookups.WithLabelValues("not_found").Inc()
	default:
		metrics.GeocodeLookups.WithLabelValues("found").Inc()
	}
	return candidates, err
}

func (c *Client) search(ctx context.Context, query string) ([]domain.PlaceCandidate, error) {
	u := fmt.Sprintf("%s/search?format=json&q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, domain.NewExternalServiceError("geocoder", err)
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewExternalServiceError("geocoder", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewExternalServiceError("geocoder", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewExternalServiceError("geocoder", err)
	}

	var results []result
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, domain.NewExternalServiceError("geocoder", fmt.Errorf("decode response: %w", err))
	}

	candidates := make([]domain.PlaceCandidate, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			// Skip malformed candidates rather than failing the lookup.
			continue
		}
		candidates = append(candidates, domain.PlaceCandidate{
			DisplayName: r.DisplayName,
			Location:    domain.GeoPoint{Lat: lat, Lon: lon},
		})
	}
	return candidates, nil
}
