// Command mapclient is a terminal map client: it drives a MapSession
// against a running API server, resolving place searches, dropping marker
// drafts, and following a device's live position feed. It exists to
// exercise the client stack end to end from a shell.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rakshita2/pinpoint/internal/adapters/geocode"
	"github.com/Rakshita2/pinpoint/internal/adapters/markerapi"
	natsadapter "github.com/Rakshita2/pinpoint/internal/adapters/nats"
	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/core/ports"
	"github.com/Rakshita2/pinpoint/internal/core/usecases"
	"github.com/Rakshita2/pinpoint/internal/pkg/config"
	"github.com/Rakshita2/pinpoint/internal/pkg/logging"
)

const usage = `commands:
  search <place>         resolve a place and move the search pin
  filter <text>          filter loaded markers by name
  drop <lat> <lon> <name> save a marker at the given coordinates
  locate                 move the search pin to the device position
  track                  follow the device position feed (live pin)
  pins                   list rendered pins
  view                   show the current viewport
  refresh                re-fetch the marker list
  quit`

func main() {
	cfg, err := config.Load("pinpoint-mapclient")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("pinpoint-mapclient", "warn", "text")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := markerapi.New(cfg.Client.APIURL, 10*time.Second)

	geocoder := geocode.New(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.UserAgent,
		time.Duration(cfg.Geocoder.Timeout)*time.Second,
	)
	resolver := usecases.NewGeocodeService(geocoder, nil)

	// The interface variable stays nil when the broker is unreachable,
	// so locate and track report an error instead of hanging.
	var location ports.LocationProvider
	if conn, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, locate/track disabled", "error", err)
	} else {
		defer conn.Close()
		location = natsadapter.NewLocationFeed(conn, cfg.Client.Device)
	}

	session := usecases.NewMapSession(api, resolver, location, slog.Default())
	if err := session.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	fmt.Printf("loaded %d markers from %s\n%s\n", len(session.Snapshot()), cfg.Client.APIURL, usage)

	var trackCancel context.CancelFunc
	defer func() {
		if trackCancel != nil {
			trackCancel()
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for prompt(); scanner.Scan(); prompt() {
		cmd, rest := splitCommand(scanner.Text())
		switch cmd {
		case "":
		case "search":
			doSearch(ctx, session, rest)
		case "filter":
			doFilter(session, rest)
		case "drop":
			doDrop(ctx, session, rest)
		case "locate":
			doLocate(ctx, session)
		case "track":
			if trackCancel != nil {
				fmt.Println("already tracking")
				continue
			}
			var trackCtx context.Context
			trackCtx, trackCancel = context.WithCancel(ctx)
			go func() {
				if err := session.Track(trackCtx, ports.WatchOptions{HighAccuracy: true}); err != nil && trackCtx.Err() == nil {
					fmt.Printf("track: %v\n", err)
				}
			}()
			fmt.Printf("tracking device %s\n", cfg.Client.Device)
		case "pins":
			printPins(session.Pins())
		case "view":
			vp := session.Viewport()
			fmt.Printf("center %.5f,%.5f zoom %d\n", vp.Center.Lat, vp.Center.Lon, vp.Zoom)
		case "refresh":
			if err := session.Bootstrap(ctx); err != nil {
				fmt.Printf("refresh: %v\n", err)
				continue
			}
			fmt.Printf("loaded %d markers\n", len(session.Snapshot()))
		case "quit", "exit":
			return
		default:
			fmt.Println(usage)
		}
	}
}

func prompt() {
	fmt.Print("> ")
}

func splitCommand(line string) (string, string) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(fields) < 2 {
		return fields[0], ""
	}
	return fields[0], strings.TrimSpace(fields[1])
}

func doSearch(ctx context.Context, session *usecases.MapSession, query string) {
	place, found, err := session.ResolvePlace(ctx, query)
	if err != nil {
		fmt.Printf("search: %v\n", err)
		return
	}
	if !found {
		fmt.Printf("no match for %q\n", query)
		return
	}
	fmt.Printf("%s (%.5f,%.5f)\n", place.DisplayName, place.Location.Lat, place.Location.Lon)
}

func doFilter(session *usecases.MapSession, query string) {
	matches, found := session.FilterMarkersByName(query)
	if !found {
		fmt.Printf("no loaded marker matches %q\n", query)
		return
	}
	for _, m := range matches {
		fmt.Printf("  #%d %s (%.5f,%.5f)\n", m.ID, m.Name, m.Lat, m.Lon)
	}
}

func doDrop(ctx context.Context, session *usecases.MapSession, rest string) {
	fields := strings.SplitN(rest, " ", 3)
	if len(fields) < 3 {
		fmt.Println("usage: drop <lat> <lon> <name>")
		return
	}
	lat, latErr := strconv.ParseFloat(fields[0], 64)
	lon, lonErr := strconv.ParseFloat(fields[1], 64)
	if latErr != nil || lonErr != nil {
		fmt.Println("usage: drop <lat> <lon> <name>")
		return
	}

	session.OpenDraft(lat, lon)
	draft, err := session.SaveDraft(ctx, fields[2])
	if err != nil {
		if draft != nil && draft.Status == domain.DraftFailed {
			fmt.Printf("drop: %v (pin kept flagged at %.5f,%.5f)\n", err, lat, lon)
		} else {
			session.CancelDraft()
			fmt.Printf("drop: %v\n", err)
		}
		return
	}
	fmt.Printf("saved #%d %s\n", draft.Marker.ID, draft.Marker.Name)
}

func doLocate(ctx context.Context, session *usecases.MapSession) {
	sample, err := session.LocateOnce(ctx, ports.WatchOptions{HighAccuracy: true, TimeoutSec: 10})
	if err != nil {
		fmt.Printf("locate: %v\n", err)
		return
	}
	fmt.Printf("device at %.5f,%.5f\n", sample.Location.Lat, sample.Location.Lon)
}

func printPins(pins []usecases.Pin) {
	if len(pins) == 0 {
		fmt.Println("no pins")
		return
	}
	for _, p := range pins {
		line := fmt.Sprintf("  %s (%.5f,%.5f)", p.Name, p.Location.Lat, p.Location.Lon)
		switch p.Status {
		case domain.DraftPending:
			line += " [saving]"
		case domain.DraftFailed:
			line += " [failed]"
		}
		if p.LabelOpen {
			line += " [label]"
		}
		if p.Distance != nil {
			line += fmt.Sprintf(" %.0fm away", *p.Distance)
		}
		fmt.Println(line)
	}
}
