package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
)

// Subject layout:
//
//	geo.marker.created       JetStream, durable marker fan-out
//	geo.position.<device>    core NATS, ephemeral position samples
const (
	SubjectMarkerCreated  = "geo.marker.created"
	SubjectPositionPrefix = "geo.position."
)

// ErrUnavailable is returned by every publish on a nil Publisher.
var ErrUnavailable = errors.New("nats unavailable")

// Publisher implements ports.EventPublisher using NATS. Marker events go
// through JetStream so clients that reconnect still observe creates;
// position samples are ephemeral and use core NATS.
//
// A nil *Publisher is usable: publishes fail with ErrUnavailable, so a
// failed construction wired through the EventPublisher interface degrades
// to dropped events instead of panicking.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the marker stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "MARKERS",
		Subjects:  []string{"geo.marker.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishMarkerCreated announces a freshly persisted marker.
func (p *Publisher) PublishMarkerCreated(ctx context.Context, m *domain.Marker) error {
	if p == nil || p.js == nil {
		return ErrUnavailable
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectMarkerCreated, data)
	return err
}

// PublishPosition fans a device position sample out to subscribed sessions.
func (p *Publisher) PublishPosition(ctx context.Context, sample *domain.PositionSample) error {
	if p == nil || p.conn == nil {
		return ErrUnavailable
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectPositionPrefix+sample.DeviceID, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. the
// WebSocket relay and session location feeds).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
