package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/auth"
	"github.com/Nixie-Tech-LLC/signage/internal/config"
	"github.com/Nixie-Tech-LLC/signage/internal/credentials"
	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/pairing"
	"github.com/Nixie-Tech-LLC/signage/internal/realtime"
	"github.com/Nixie-Tech-LLC/signage/internal/redis"
)

const shutdownTimeout = 10 * time.Second

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func openStore(ctx context.Context, cfg *config.Config) (db.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory store (development only)")
		return db.NewMemoryStore(), func() {}, nil
	}

	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx, conn, cfg.MigrationsPath); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return db.NewStore(conn), func() { conn.Close() }, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	files, err := InitStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	var closers []io.Closer

	var limiter *redis.Limiter
	if cfg.RedisAddress != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, link attempts are not throttled")
		} else {
			closers = append(closers, rdb)
			limiter = redis.NewLimiter(rdb, cfg.LinkAttemptsPerMinute, time.Minute)
		}
	}

	var mirrors []realtime.Mirror
	if cfg.MQTTBrokerURL != "" {
		client, err := realtime.CreateMQTTClient(cfg.MQTTBrokerURL, "signage-server")
		if err != nil {
			log.Warn().Err(err).Msg("MQTT unavailable, refresh events go over WebSocket only")
		} else {
			mirror := realtime.NewMQTTMirror(client)
			defer mirror.Close()
			mirrors = append(mirrors, mirror)
		}
	}

	registry := realtime.NewRegistry()
	authenticator := auth.NewTokenAuthenticator(store)
	deps := Deps{
		JWTSecret:     cfg.JWTSecret,
		Store:         store,
		Storage:       files,
		Pairing:       pairing.NewService(store, credentials.NewIssuer(), pairing.WithRevokeHook(registry.Drop)),
		Authenticator: authenticator,
		Hub:           realtime.NewHub(registry, authenticator),
		Dispatcher:    realtime.NewDispatcher(registry, mirrors...),
	}
	if limiter != nil {
		deps.LinkLimiter = limiter
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

// requestLogger logs one line per request through zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
