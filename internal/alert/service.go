package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RecentWindow and RecentLimit bound the alerts shown on the snapshot.
const (
	RecentWindow = 24 * time.Hour
	RecentLimit  = 10
)

// ServiceConfig holds configuration for the alert service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service stores and lists alerts.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new alert service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// Raise stores alerts, assigning IDs and timestamps where missing. It returns
// how many were inserted; alerts whose ID is already stored are skipped.
func (s *Service) Raise(ctx context.Context, alerts []Alert) (int, error) {
	stored := 0
	for i := range alerts {
		a := &alerts[i]
		if a.ID == "" {
			a.ID = "alt_" + uuid.NewString()[:13]
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		if a.Unit == "" && a.Pollutant != PollutantAQI {
			a.Unit = UnitMicrograms
		}

		inserted, err := s.repo.Create(ctx, a)
		if err != nil {
			return stored, fmt.Errorf("store alert %s: %w", a.ID, err)
		}
		if !inserted {
			s.logger.Debug().Str("alert_id", a.ID).Msg("duplicate alert ignored")
			continue
		}
		stored++

		s.logger.Info().
			Str("alert_id", a.ID).
			Str("zone", a.Zone).
			Str("pollutant", a.Pollutant).
			Float64("value", a.Value).
			Bool("critical", a.Critical).
			Msg("alert raised")
	}
	return stored, nil
}

// Recent returns at most RecentLimit alerts from the last RecentWindow.
func (s *Service) Recent(ctx context.Context, now time.Time) ([]*Alert, error) {
	return s.repo.ListSince(ctx, now.Add(-RecentWindow), RecentLimit)
}

// MarkRead flags an alert as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

// Count returns the number of stored alerts.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
