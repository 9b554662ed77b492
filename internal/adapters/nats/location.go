package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/core/ports"
)

// LocationFeed implements ports.LocationProvider over the position
// subjects the tracker bridge publishes to. "Permission" maps to feed
// availability: a session may track iff the broker connection is up.
type LocationFeed struct {
	conn     *nats.Conn
	deviceID string
}

// NewLocationFeed subscribes to one device's position subject.
func NewLocationFeed(conn *nats.Conn, deviceID string) *LocationFeed {
	return &LocationFeed{conn: conn, deviceID: deviceID}
}

func (f *LocationFeed) subject() string {
	return SubjectPositionPrefix + f.deviceID
}

// RequestPermission reports whether the position feed is reachable.
func (f *LocationFeed) RequestPermission(ctx context.Context) (bool, error) {
	return f.conn != nil && f.conn.IsConnected(), nil
}

// Current blocks for the next non-stale sample, up to the configured
// timeout (10s when unset, matching the device facility's default).
func (f *LocationFeed) Current(ctx context.Context, opts ports.WatchOptions) (*domain.PositionSample, error) {
	timeout := time.Duration(opts.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sub, err := f.conn.SubscribeSync(f.subject())
	if err != nil {
		return nil, domain.NewExternalServiceError("location feed", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	// The timeout bounds the whole wait. NextMsgWithContext only honors
	// its context, so a deadline checked between messages would never
	// fire on a silent subject.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		msg, err := sub.NextMsgWithContext(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, domain.NewExternalServiceError("location feed", fmt.Errorf("no position within %s", timeout))
			}
			return nil, domain.NewExternalServiceError("location feed", err)
		}
		var sample domain.PositionSample
		if err := json.Unmarshal(msg.Data, &sample); err != nil {
			continue
		}
		if stale(sample, opts) {
			continue
		}
		return &sample, nil
	}
}

// Watch delivers every sample as it arrives until ctx is cancelled. Each
// sample supersedes the previous one; ordering is the broker's.
func (f *LocationFeed) Watch(ctx context.Context, opts ports.WatchOptions, handler func(domain.PositionSample)) error {
	sub, err := f.conn.Subscribe(f.subject(), func(msg *nats.Msg) {
		var sample domain.PositionSample
		if err := json.Unmarshal(msg.Data, &sample); err != nil {
			return
		}
		if stale(sample, opts) {
			return
		}
		handler(sample)
	})
	if err != nil {
		return domain.NewExternalServiceError("location feed", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	<-ctx.Done()
	return ctx.Err()
}

// stale applies the caller's max-age option. MaxAgeSec 0 means any cached
// sample is rejected only if it predates the watch by more than a minute,
// a guard against replayed history on reconnect.
func stale(sample domain.PositionSample, opts ports.WatchOptions) bool {
	maxAge := time.Duration(opts.MaxAgeSec) * time.Second
	if maxAge <= 0 {
		maxAge = time.Minute
	}
	return !sample.Time.IsZero() && time.Since(sample.Time) > maxAge
}
