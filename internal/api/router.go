// Package api provides the HTTP API of the smart city dashboard backend.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/api/handler"
	"github.com/smartcity/smartcity/internal/api/middleware"
	"github.com/smartcity/smartcity/internal/auth"
	"github.com/smartcity/smartcity/internal/dashboard"
	"github.com/smartcity/smartcity/internal/telemetry"
)

// DefaultServiceName names the API in traces.
const DefaultServiceName = "smartcity-api"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Instruments *telemetry.Instruments
	RequireTLS  bool
	CORS        *middleware.CORSConfig

	AuthService      *auth.Service
	DashboardService *dashboard.Service
	Alerts           handler.AlertMarker
	IoT              handler.IoTService

	// Ops dependencies. Nil stores are reported as not configured.
	Database handler.Pinger
	Cache    handler.Pinger
	Readings handler.ReadingStats
	Counter  handler.AlertCounter

	// Now overrides the clock of the prediction endpoints.
	Now func() time.Time
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsCfg = *cfg.CORS
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Database:  cfg.Database,
		Cache:     cfg.Cache,
		Readings:  cfg.Readings,
		Alerts:    cfg.Counter,
		Dashboard: cfg.DashboardService,
		Logger:    cfg.Logger,
	})
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	dashboardHandler := handler.NewDashboardHandler(cfg.DashboardService, cfg.Alerts, cfg.Instruments, cfg.Logger)
	iotHandler := handler.NewIoTHandler(cfg.IoT, cfg.Instruments, cfg.Logger)
	analyticsHandler := handler.NewAnalyticsHandler(cfg.Now)
	metadataHandler := handler.NewMetadataHandler()

	authMiddleware := middleware.Auth(cfg.AuthService)

	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)
	ingestRateLimit := middleware.RateLimitByIP(middleware.IngestRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(authRateLimit).Post("/login", authHandler.Login)
			r.With(authMiddleware).Get("/me", authHandler.Me)
		})

		// Dashboard reads
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/dashboard", dashboardHandler.Dashboard)
			r.Get("/dashboard/overview", dashboardHandler.Dashboard)
			r.Get("/snapshot", dashboardHandler.Snapshot)
			r.Get("/alerts", dashboardHandler.ListAlerts)
			r.Get("/predictions/pm25", analyticsHandler.PredictPM25)
			r.Get("/mobility", analyticsHandler.Mobility)
		})

		r.With(authMiddleware).Post("/alerts/{alertId}/read", dashboardHandler.MarkAlertRead)

		r.Route("/iot", func(r chi.Router) {
			r.With(ingestRateLimit, middleware.RequireJSON).Post("/ingest", iotHandler.Ingest)
			r.Get("/latest", iotHandler.Latest)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/zones", metadataHandler.ListZones)
			r.Get("/pollutants", metadataHandler.ListPollutants)
		})
	})

	return r
}
