package airquality

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider defines the interface for upstream air quality providers.
type Provider interface {
	// FetchCurrent fetches the current conditions for a city.
	FetchCurrent(ctx context.Context, city string) (*Fetch, error)

	// Name identifies the provider in logs and collection records.
	Name() Source
}

// Fetch is a provider result. Raw holds the upstream payloads for archiving.
type Fetch struct {
	Reading *Reading
	Raw     map[string][]byte
}

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Repository stores readings.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache the latest reading (default: 30 seconds).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving a stale reading on storage errors (default: 10 minutes).
	StaleIfErrorTTL time.Duration
}

// Service provides read access to stored readings with a short-lived cache
// of the latest one.
type Service struct {
	repo            Repository
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu          sync.RWMutex
	latest      *Reading
	fetchedAt   time.Time
	cacheExpiry time.Time
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Second
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 10 * time.Minute
	}

	return &Service{
		repo:            cfg.Repository,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
	}
}

// Latest returns the most recent reading, cached for CacheTTL.
func (s *Service) Latest(ctx context.Context) (*Reading, error) {
	s.mu.RLock()
	if s.latest != nil && time.Now().Before(s.cacheExpiry) {
		latest := s.latest
		s.mu.RUnlock()
		return latest, nil
	}
	s.mu.RUnlock()

	return s.refreshLatest(ctx)
}

// History returns stored values for a pollutant recorded in zone after since.
func (s *Service) History(ctx context.Context, pollutant Pollutant, zone Zone, since time.Time) ([]HistoryPoint, error) {
	return s.repo.History(ctx, pollutant, zone, since)
}

// Record stores a reading and drops the cached latest reading.
func (s *Service) Record(ctx context.Context, r *Reading) error {
	if err := s.repo.SaveReading(ctx, r); err != nil {
		return err
	}
	s.InvalidateCache()
	return nil
}

// InvalidateCache clears the cached reading.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = nil
	s.cacheExpiry = time.Time{}
}

// CacheStatus represents the current state of the cache.
type CacheStatus struct {
	HasData   bool
	FetchedAt time.Time
	ExpiresAt time.Time
	IsExpired bool
	Source    Source
}

// CacheStatus returns information about the current cache state.
func (s *Service) CacheStatus() CacheStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return CacheStatus{}
	}

	return CacheStatus{
		HasData:   true,
		FetchedAt: s.fetchedAt,
		ExpiresAt: s.cacheExpiry,
		IsExpired: time.Now().After(s.cacheExpiry),
		Source:    s.latest.Source,
	}
}

func (s *Service) refreshLatest(ctx context.Context) (*Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine might have refreshed while we waited.
	if s.latest != nil && time.Now().Before(s.cacheExpiry) {
		return s.latest, nil
	}

	latest, err := s.repo.LatestReading(ctx)
	if err != nil {
		if errors.Is(err, ErrNoReadings) {
			return nil, err
		}

		s.logger.Error().Err(err).Msg("failed to load latest reading")
		if s.latest != nil && time.Now().Before(s.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", s.fetchedAt).
				Msg("serving stale reading due to storage error")
			return s.latest, nil
		}
		return nil, err
	}

	s.latest = latest
	s.fetchedAt = time.Now()
	s.cacheExpiry = s.fetchedAt.Add(s.cacheTTL)

	s.logger.Debug().
		Str("source", string(latest.Source)).
		Time("recorded_at", latest.RecordedAt).
		Msg("latest reading refreshed")

	return latest, nil
}
