// Package main provides the entrypoint for the collection worker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/airquality/aqicn"
	"github.com/smartcity/smartcity/internal/alert"
	"github.com/smartcity/smartcity/internal/archive"
	"github.com/smartcity/smartcity/internal/config"
	"github.com/smartcity/smartcity/internal/database"
	"github.com/smartcity/smartcity/internal/provider/resilience"
	"github.com/smartcity/smartcity/internal/weather/openweathermap"
	"github.com/smartcity/smartcity/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "smartcity-worker"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to read .env")
	}
	cfg := config.FromEnv()

	log.Info().Str("build_time", BuildTime).Msg("starting collection worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		readingRepo airquality.Repository = airquality.NewInMemoryRepository()
		alertRepo   alert.Repository      = alert.NewInMemoryRepository()
	)
	if cfg.Storage.DatabaseEnabled {
		pool, err := database.Connect(ctx, database.ConfigFromEnv())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to create schema")
		}
		readingRepo = airquality.NewPostgresRepository(pool)
		alertRepo = alert.NewPostgresRepository(pool)
	} else {
		log.Warn().Msg("database disabled, collected readings are kept in memory only")
	}

	var store archive.Store = archive.NoopStore{}
	minioCfg := archive.MinIOConfig{
		Endpoint:  cfg.Storage.S3Endpoint,
		AccessKey: cfg.Storage.S3AccessKey,
		SecretKey: cfg.Storage.S3SecretKey,
		Bucket:    cfg.Storage.S3Bucket,
		UseSSL:    cfg.Storage.S3UseSSL,
	}
	if minioCfg.Enabled() {
		s, err := archive.NewMinIOStore(ctx, minioCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize raw payload archive")
		}
		store = s
		log.Info().Str("bucket", minioCfg.Bucket).Msg("raw payload archive enabled")
	}

	registry := resilience.NewRegistry()
	providers := buildProviders(cfg.Providers, registry, log)
	if len(providers) == 0 {
		log.Warn().Msg("no provider credentials configured, collection runs will be empty")
	}

	metrics := worker.NewMetrics()
	collectCfg := worker.DefaultCollectConfig()
	collectCfg.Cities = cfg.Providers.Cities
	collectCfg.AutoCollect = cfg.AutoCollect
	collectCfg.Interval = cfg.CollectInterval

	job := worker.NewCollectJob(worker.CollectJobConfig{
		Config:    collectCfg,
		Providers: providers,
		Readings:  airquality.NewService(airquality.ServiceConfig{Repository: readingRepo, Logger: log}),
		Logs:      readingRepo,
		Alerts:    alert.NewService(alert.ServiceConfig{Repository: alertRepo, Logger: log}),
		Archive:   store,
		Metrics:   metrics,
		Logger:    log,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		health := map[string]any{
			"status":  "healthy",
			"version": Version,
			"stats":   job.StatsSnapshot(),
		}
		providerStatus := make(map[string]string, registry.Len())
		for _, h := range registry.All() {
			providerStatus[h.Name] = h.Status()
		}
		health["providers"] = providerStatus

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(health) //nolint:errcheck // client went away
	})
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health and metrics server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	go job.Schedule(ctx)

	if cfg.PubSub.Enabled() {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSub.ProjectID,
			SubscriptionName: cfg.PubSub.Subscription,
			Job:              job,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize pubsub")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub receive stopped")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// buildProviders creates a resilient client for every provider that has
// credentials.
func buildProviders(cfg config.Providers, registry *resilience.Registry, log zerolog.Logger) []airquality.Provider {
	var providers []airquality.Provider

	if cfg.AQICNToken != "" {
		clientCfg := resilience.DefaultClientConfig(aqicn.ProviderName)
		clientCfg.Registry = registry
		clientCfg.Logger = &log
		providers = append(providers, aqicn.NewClient(aqicn.ClientConfig{
			Token:      cfg.AQICNToken,
			HTTPClient: resilience.NewClient(clientCfg),
		}))
	}

	if cfg.OpenWeatherKey != "" {
		clientCfg := resilience.DefaultClientConfig(openweathermap.ProviderName)
		clientCfg.Registry = registry
		clientCfg.Logger = &log
		providers = append(providers, openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:     cfg.OpenWeatherKey,
			HTTPClient: resilience.NewClient(clientCfg),
			Logger:     log,
		}))
	}

	return providers
}
