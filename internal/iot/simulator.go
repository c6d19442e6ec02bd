package iot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/airquality"
)

// IngestPath is the API route the simulator pushes to.
const IngestPath = "/v1/iot/ingest"

// DefaultSimulatorInterval is the push period when none is configured.
const DefaultSimulatorInterval = 15 * time.Minute

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SimulatorConfig holds configuration for the sensor simulator.
type SimulatorConfig struct {
	APIBase  string
	Interval time.Duration
	Client   HTTPDoer
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Simulator pushes one deterministic tick per sensor zone every interval.
type Simulator struct {
	apiBase  string
	interval time.Duration
	client   HTTPDoer
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSimulator creates a simulator.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultSimulatorInterval
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Simulator{
		apiBase:  strings.TrimSuffix(cfg.APIBase, "/"),
		interval: interval,
		client:   client,
		logger:   cfg.Logger,
		now:      now,
	}
}

// Run pushes rounds until ctx is cancelled. The tick counter starts at 0 and
// advances after every round.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info().
		Str("api_base", s.apiBase).
		Dur("interval", s.interval).
		Msg("iot simulator started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for tick := 0; ; tick++ {
		s.PushRound(ctx, tick)

		select {
		case <-ctx.Done():
			s.logger.Info().Int("ticks", tick+1).Msg("iot simulator stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// PushRound pushes tick t for every sensor zone and returns the number of
// accepted pushes. Failures are logged and do not stop the round.
func (s *Simulator) PushRound(ctx context.Context, t int) int {
	accepted := 0
	for _, zone := range airquality.SensorZones {
		status, err := s.Push(ctx, PayloadFromTick(zone, t, s.now()))
		if err != nil {
			s.logger.Warn().Err(err).Str("zone", string(zone)).Int("tick", t).Msg("push failed")
			continue
		}
		s.logger.Info().Str("zone", string(zone)).Int("tick", t).Int("status", status).Msg("pushed")
		if status < http.StatusBadRequest {
			accepted++
		}
	}
	return accepted
}

// Push sends one payload and returns the response status.
func (s *Simulator) Push(ctx context.Context, p Payload) (int, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+IngestPath, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post ingest: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
