// Package main runs the IoT sensor simulator that pushes ticks to the API.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/config"
	"github.com/smartcity/smartcity/internal/iot"
	"github.com/smartcity/smartcity/internal/provider/resilience"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "smartcity-iotsim").
		Str("version", Version).
		Logger()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to read .env")
	}

	apiBase := config.String("API_BASE", "http://localhost:8080")
	interval := config.Duration("INTERVAL", iot.DefaultSimulatorInterval)

	clientCfg := resilience.DefaultClientConfig("smartcity-api")
	clientCfg.MaxRetries = 1
	clientCfg.Logger = &log

	sim := iot.NewSimulator(iot.SimulatorConfig{
		APIBase:  apiBase,
		Interval: interval,
		Client:   resilience.NewClient(clientCfg),
		Logger:   log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("simulator stopped")
	}
}
