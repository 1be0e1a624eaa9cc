package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	recoverer "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"kumpul/server/internal/chat"
	"kumpul/server/internal/config"
	"kumpul/server/internal/handlers"
	"kumpul/server/internal/middleware"
	"kumpul/server/internal/routes"
	"kumpul/server/internal/store"
	"kumpul/server/internal/utils"
	"kumpul/server/internal/ws"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Storage: PostgreSQL when configured, in-memory otherwise (dev only;
	// config.Load refuses a production start without DATABASE_URL).
	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		st = pg
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		st = store.NewMemoryStore()
		logger.Warn().Msg("DATABASE_URL not set, using in-memory store")
	}
	defer st.Close()

	// Presence: Redis-backed when configured, so multiple gateway
	// instances can observe each other's connections.
	var presence ws.Presence = ws.NoopPresence{}
	if cfg.RedisURL != "" {
		rp, err := ws.NewRedisPresence(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rp.Close()
		presence = rp
		logger.Info().Msg("connected to Redis")
	}

	svc := chat.NewService(st, logger)
	hub := ws.NewHub(presence, logger)
	tokens := utils.NewTokenManager(cfg.JWTSecret)
	h := handlers.NewHandler(svc, hub, logger)

	app := fiber.New(fiber.Config{
		AppName: "Kumpul Chat Server v1.0",
	})

	app.Use(recoverer.New())
	app.Use(middleware.Logger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowCredentials: true,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	routes.SetupRoutes(app, h, middleware.Auth(tokens))

	// Shut down on SIGINT/SIGTERM, closing active websocket sessions.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info().Msg("shutting down")
		hub.Close()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
