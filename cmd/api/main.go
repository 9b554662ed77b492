package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Rakshita2/pinpoint/internal/adapters/geocode"
	"github.com/Rakshita2/pinpoint/internal/adapters/http"
	natsadapter "github.com/Rakshita2/pinpoint/internal/adapters/nats"
	"github.com/Rakshita2/pinpoint/internal/adapters/postgres"
	"github.com/Rakshita2/pinpoint/internal/adapters/valkey"
	"github.com/Rakshita2/pinpoint/internal/core/domain"
	"github.com/Rakshita2/pinpoint/internal/core/ports"
	"github.com/Rakshita2/pinpoint/internal/core/usecases"
	"github.com/Rakshita2/pinpoint/internal/pkg/config"
	"github.com/Rakshita2/pinpoint/internal/pkg/logging"
	"github.com/Rakshita2/pinpoint/internal/pkg/metrics"
	"github.com/Rakshita2/pinpoint/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("pinpoint-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("pinpoint-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Periodic DB pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Cache. The interface variable stays nil on failure; assigning the
	// failed *valkey.Cache would make the services' nil checks pass on a
	// non-nil interface holding a nil pointer.
	var cache *valkey.Cache
	var cacheSvc ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		cache = c
		cacheSvc = c
		defer c.Close()
	}

	// NATS publisher for marker-created events, same nil discipline.
	var pubSvc ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		pubSvc = p
		defer p.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Geocoder
	geocoder := geocode.New(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.UserAgent,
		time.Duration(cfg.Geocoder.Timeout)*time.Second,
	)

	// Repos and use cases
	markerRepo := postgres.NewMarkerRepo(db)
	markerSvc := usecases.NewMarkerService(markerRepo, cacheSvc, pubSvc)
	geocodeSvc := usecases.NewGeocodeService(geocoder, cacheSvc)

	// Cross-replica cache invalidation: creates served by other replicas
	// drop our cached list too.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		if err := sub.SubscribeMarkerCreated(ctx, func(ctx context.Context, m *domain.Marker) error {
			return markerSvc.InvalidateList(ctx)
		}); err != nil {
			slog.Warn("marker fanout subscribe failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Markers: markerSvc,
		Geocode: geocodeSvc,
		NATS:    natsConn,
		DB:      db,
		Cache:   cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Pinpoint API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
