// Package main provides the entrypoint for the smart city API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/alert"
	"github.com/smartcity/smartcity/internal/api"
	"github.com/smartcity/smartcity/internal/api/handler"
	"github.com/smartcity/smartcity/internal/api/middleware"
	"github.com/smartcity/smartcity/internal/auth"
	"github.com/smartcity/smartcity/internal/config"
	"github.com/smartcity/smartcity/internal/dashboard"
	"github.com/smartcity/smartcity/internal/database"
	"github.com/smartcity/smartcity/internal/iot"
	"github.com/smartcity/smartcity/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// redisPinger adapts a Redis client to handler.Pinger.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", api.DefaultServiceName).
		Str("version", Version).
		Logger()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to read .env")
	}
	cfg := config.FromEnv()

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting smart city API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    api.DefaultServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.Telemetry.Enabled {
		log.Info().Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetricsWithMeter(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize http metrics")
	}
	instruments, err := telemetry.NewInstruments(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize domain metrics")
	}

	// Storage: PostgreSQL when enabled, in-memory otherwise.
	var (
		readingRepo airquality.Repository = airquality.NewInMemoryRepository()
		alertRepo   alert.Repository      = alert.NewInMemoryRepository()
		dbPinger    handler.Pinger
		pool        *pgxpool.Pool
	)
	if cfg.Storage.DatabaseEnabled {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to create schema")
		}
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		readingRepo = airquality.NewPostgresRepository(pool)
		alertRepo = alert.NewPostgresRepository(pool)
		dbPinger = pool
	} else {
		log.Warn().Msg("database disabled, using in-memory storage")
	}

	var (
		latestStore iot.LatestStore = iot.NewMemoryLatestStore()
		cachePinger handler.Pinger
	)
	if cfg.Storage.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		defer rdb.Close()

		latestStore = iot.NewRedisLatestStore(rdb, cfg.Storage.LatestTTL)
		cachePinger = redisPinger{client: rdb}
		log.Info().Str("addr", cfg.Storage.RedisAddr).Msg("redis latest store configured")
	}

	readings := airquality.NewService(airquality.ServiceConfig{Repository: readingRepo, Logger: log})
	alerts := alert.NewService(alert.ServiceConfig{Repository: alertRepo, Logger: log})
	iotService := iot.NewService(iot.ServiceConfig{
		City:     cfg.Providers.Cities[0],
		Readings: readings,
		Alerts:   alerts,
		Latest:   latestStore,
		Logger:   log,
	})
	dashboardService := dashboard.NewService(dashboard.ServiceConfig{
		Live:     dashboard.NewLiveSource(readings),
		Readings: readings,
		Alerts:   alerts,
		IoT:      iotService,
		Logger:   log,
	})

	if cfg.UsingDefaultJWTKey() {
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	authService := auth.NewService(auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.JWTSigningKey,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
	}))

	router := api.NewRouter(api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		Metrics:          metrics,
		Instruments:      instruments,
		RequireTLS:       cfg.RequireTLS,
		AuthService:      authService,
		DashboardService: dashboardService,
		Alerts:           alerts,
		IoT:              iotService,
		Database:         dbPinger,
		Cache:            cachePinger,
		Readings:         readingRepo,
		Counter:          alerts,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
