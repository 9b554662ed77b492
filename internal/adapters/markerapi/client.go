package markerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
)

// Client implements ports.MarkerAPI against the marker service's wire
// protocol. Map sessions use it for bootstrap fetches and draft commits.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a marker API client.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type createRequest struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Create submits a marker and returns the canonical record. A 400 from the
// boundary surfaces as ValidationError; 5xx as ExternalServiceError. Not
// retried: a failed create is terminal for the caller's draft.
func (c *Client) Create(ctx context.Context, name string, lat, lon float64) (*domain.Marker, error) {
	payload, err := json.Marshal(createRequest{Name: name, Lat: lat, Lon: lon})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/markers", bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewExternalServiceError("marker api", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewExternalServiceError("marker api", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewExternalServiceError("marker api", err)
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		var m domain.Marker
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, domain.NewExternalServiceError("marker api", fmt.Errorf("decode response: %w", err))
		}
		return &m, nil
	case http.StatusBadRequest:
		return nil, domain.NewValidationError(decodeError(body))
	default:
		return nil, domain.NewExternalServiceError("marker api", fmt.Errorf("HTTP %d: %s", resp.StatusCode, decodeError(body)))
	}
}

// ListAll fetches every persisted marker.
func (c *Client) ListAll(ctx context.Context) ([]domain.Marker, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/markers", nil)
	if err != nil {
		return nil, domain.NewExternalServiceError("marker api", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewExternalServiceError("marker api", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewExternalServiceError("marker api", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewExternalServiceError("marker api", fmt.Errorf("HTTP %d: %s", resp.StatusCode, decodeError(body)))
	}

	var markers []domain.Marker
	if err := json.Unmarshal(body, &markers); err != nil {
		return nil, domain.NewExternalServiceError("marker api", fmt.Errorf("decode response: %w", err))
	}
	return markers, nil
}

// decodeError extracts the {error} body, falling back to the raw text.
func decodeError(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return string(body)
}
