package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	natsadapter "github.com/Rakshita2/pinpoint/internal/adapters/nats"
	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/pkg/config"
	"github.com/Rakshita2/pinpoint/internal/pkg/metrics"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

// Manifest lists the devices whose position feeds the tracker bridges
// onto NATS. Each device exposes an HTTP endpoint returning its latest
// position as JSON.
type Manifest struct {
	Source  string        `json:"source"`
	Devices []DeviceEntry `json:"devices"`
}

type DeviceEntry struct {
	ID      string `json:"id"`
	FeedURL string `json:"feed_url"`
}

// feedPosition is the wire shape of a device feed response.
type feedPosition struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Accuracy float64 `json:"accuracy,omitempty"`
	Time     string  `json:"time,omitempty"` // RFC 3339, feed clock
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("pinpoint-tracker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// NATS
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	// Load manifest
	manifestPath := cfg.Tracker.ManifestPath
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	if len(manifest.Devices) == 0 {
		log.Fatalf("manifest %s lists no devices", manifestPath)
	}

	log.Printf("Pinpoint Tracker — %d device feeds", len(manifest.Devices))

	client := &http.Client{Timeout: 10 * time.Second}
	pollInterval := time.Duration(cfg.Tracker.PollInterval) * time.Second

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Printf("polling every %s", pollInterval)

	// Signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Run once immediately
	pollAll(ctx, pub, client, manifest.Devices)

	for {
		select {
		case <-ticker.C:
			pollAll(ctx, pub, client, manifest.Devices)
		case <-ctx.Done():
			return
		case sig := <-quit:
			log.Printf("received signal %v, shutting down tracker", sig)
			cancel()
			// Give in-flight polls time to finish
			time.Sleep(2 * time.Second)
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Poll all devices
// ---------------------------------------------------------------------------

func pollAll(ctx context.Context, pub *natsadapter.Publisher, client *http.Client, devices []DeviceEntry) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, 8) // max 8 concurrent fetches

	for _, d := range devices {
		wg.Add(1)
		go func(device DeviceEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := pollDevice(ctx, pub, client, device); err != nil {
				metrics.TrackerPollErrors.WithLabelValues(device.ID).Inc()
				log.Printf("[%s] poll: %v", device.ID, err)
			}
		}(d)
	}

	wg.Wait()
}

// pollDevice fetches one device's latest position and publishes it. A feed
// without a timestamp gets the poll time; samples are published as-is and
// consumers decide how a new one supersedes the last.
func pollDevice(ctx context.Context, pub *natsadapter.Publisher, client *http.Client, device DeviceEntry) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, device.FeedURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", device.FeedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, device.FeedURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	var pos feedPosition
	if err := json.Unmarshal(body, &pos); err != nil {
		return fmt.Errorf("parse position: %w", err)
	}

	ts := time.Now()
	if pos.Time != "" {
		if parsed, err := time.Parse(time.RFC3339, pos.Time); err == nil {
			ts = parsed
		}
	}

	sample := domain.PositionSample{
		DeviceID: device.ID,
		Location: domain.GeoPoint{Lat: pos.Lat, Lon: pos.Lon},
		Accuracy: pos.Accuracy,
		Time:     ts,
	}

	if err := pub.PublishPosition(ctx, &sample); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	metrics.PositionsPublished.WithLabelValues(device.ID).Inc()
	return nil
}
