package iot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/alert"
)

// ReadingRecorder stores readings.
type ReadingRecorder interface {
	Record(ctx context.Context, r *airquality.Reading) error
}

// AlertRaiser stores alerts and reports how many were new.
type AlertRaiser interface {
	Raise(ctx context.Context, alerts []alert.Alert) (int, error)
}

// ServiceConfig holds configuration for the ingest service.
type ServiceConfig struct {
	City     string
	Readings ReadingRecorder
	Alerts   AlertRaiser
	Latest   LatestStore
	Logger   zerolog.Logger

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Service handles sensor pushes.
type Service struct {
	city     string
	readings ReadingRecorder
	alerts   AlertRaiser
	latest   LatestStore
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates an ingest service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	latest := cfg.Latest
	if latest == nil {
		latest = NewMemoryLatestStore()
	}
	return &Service{
		city:     cfg.City,
		readings: cfg.Readings,
		alerts:   cfg.Alerts,
		latest:   latest,
		logger:   cfg.Logger,
		now:      now,
	}
}

// IngestResult summarizes one accepted push.
type IngestResult struct {
	ReadingID     int64
	AlertsStored  int
	LatestUpdated bool
}

// Ingest validates a push, stores its reading and alerts, and updates the
// latest cache. A cache failure is logged but does not reject the push.
func (s *Service) Ingest(ctx context.Context, p *Payload) (*IngestResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	at := s.now()
	reading := p.Reading(s.city, at)
	if err := s.readings.Record(ctx, reading); err != nil {
		return nil, fmt.Errorf("store reading: %w", err)
	}

	alerts := p.DomainAlerts(at)
	stored := 0
	if len(alerts) > 0 {
		n, err := s.alerts.Raise(ctx, alerts)
		if err != nil {
			return nil, fmt.Errorf("store alerts: %w", err)
		}
		stored = n
	}

	result := &IngestResult{ReadingID: reading.ID, AlertsStored: stored}

	err := s.latest.Set(ctx, Latest{
		Zone:       p.Zone,
		KPIs:       p.KPIs,
		AlertCount: len(alerts),
		ReceivedAt: at,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("zone", p.Zone).Msg("failed to update latest iot cache")
	} else {
		result.LatestUpdated = true
	}

	s.logger.Debug().
		Str("zone", p.Zone).
		Int64("reading_id", reading.ID).
		Int("alerts", len(alerts)).
		Int("alerts_stored", stored).
		Msg("iot push ingested")

	return result, nil
}

// Latest returns the latest push of every zone.
func (s *Service) Latest(ctx context.Context) ([]Latest, error) {
	return s.latest.All(ctx)
}
