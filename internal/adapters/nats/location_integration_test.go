//go:build integration
// +build integration

package natsadapter_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	natsadapter "github.com/Rakshita2/pinpoint/internal/adapters/nats"
	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/core/ports"
)

func connectNATS(t *testing.T) *nats.Conn {
	t.Helper()
	conn, err := nats.Connect(nats.DefaultURL)
	if err != nil {
		t.Skipf("nats not available: %v", err)
	}
	t.Cleanup(conn.Close)
	return conn
}

// A device that never publishes must not hang Current past its timeout,
// even when the caller's context carries no deadline of its own.
func TestIntegration_CurrentTimesOutOnSilentDevice(t *testing.T) {
	conn := connectNATS(t)
	feed := natsadapter.NewLocationFeed(conn, fmt.Sprintf("silent-%d", time.Now().UnixNano()))

	start := time.Now()
	_, err := feed.Current(context.Background(), ports.WatchOptions{TimeoutSec: 1})
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error from silent device")
	}
	if elapsed > 3*time.Second {
		t.Fatalf("Current blocked %s past its 1s timeout", elapsed)
	}
}

func TestIntegration_CurrentReturnsPublishedSample(t *testing.T) {
	conn := connectNATS(t)
	device := fmt.Sprintf("live-%d", time.Now().UnixNano())
	feed := natsadapter.NewLocationFeed(conn, device)

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		sample := domain.PositionSample{
			DeviceID: device,
			Location: domain.GeoPoint{Lat: 28.36131, Lon: 75.59212},
			Time:     time.Now(),
		}
		data, _ := json.Marshal(sample)
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = conn.Publish(natsadapter.SubjectPositionPrefix+device, data)
			}
		}
	}()

	sample, err := feed.Current(context.Background(), ports.WatchOptions{TimeoutSec: 5})
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if sample.Location.Lat != 28.36131 {
		t.Fatalf("unexpected sample %+v", sample)
	}
}
