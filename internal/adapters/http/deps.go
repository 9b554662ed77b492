package http

import (
	"github.com/nats-io/nats.go"

	"github.com/Rakshita2/pinpoint/internal/adapters/postgres"
	"github.com/Rakshita2/pinpoint/internal/adapters/valkey"
	"github.com/Rakshita2/pinpoint/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Markers *usecases.MarkerService
	Geocode *usecases.GeocodeService
	NATS    *nats.Conn
	DB      *postgres.DB
	Cache   *valkey.Cache
}
