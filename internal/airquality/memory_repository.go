package airquality

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// It backs the API when no database is configured and serves as a test fake.
type InMemoryRepository struct {
	mu       sync.RWMutex
	readings []*Reading
	logs     []*CollectionLog
	nextID   int64
}

// NewInMemoryRepository creates a new in-memory air quality repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// SaveReading stores a reading and assigns its ID.
func (r *InMemoryRepository) SaveReading(_ context.Context, reading *Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	reading.ID = r.nextID
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now()
	}

	cpy := *reading
	r.readings = append(r.readings, &cpy)
	return nil
}

// LatestReading returns the most recent reading.
func (r *InMemoryRepository) LatestReading(_ context.Context) (*Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Reading
	for _, reading := range r.readings {
		if latest == nil || !reading.RecordedAt.Before(latest.RecordedAt) {
			latest = reading
		}
	}
	if latest == nil {
		return nil, ErrNoReadings
	}

	cpy := *latest
	return &cpy, nil
}

// History returns the non-empty values of a pollutant recorded in zone after
// since, oldest first.
func (r *InMemoryRepository) History(_ context.Context, pollutant Pollutant, zone Zone, since time.Time) ([]HistoryPoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var points []HistoryPoint
	for _, reading := range r.readings {
		if !reading.RecordedAt.After(since) {
			continue
		}
		if zone != ZoneAll && reading.Zone != zone {
			continue
		}
		v := reading.Value(pollutant)
		if v == nil || *v == 0 {
			continue
		}
		points = append(points, HistoryPoint{RecordedAt: reading.RecordedAt, Value: *v})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].RecordedAt.Before(points[j].RecordedAt)
	})
	return points, nil
}

// CountReadings returns the number of stored readings.
func (r *InMemoryRepository) CountReadings(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.readings), nil
}

// SaveCollectionLog records a provider collection attempt.
func (r *InMemoryRepository) SaveCollectionLog(_ context.Context, l *CollectionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.ID = int64(len(r.logs) + 1)
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	cpy := *l
	r.logs = append(r.logs, &cpy)
	return nil
}

// RecentCollectionLogs returns the latest collection attempts, newest first.
func (r *InMemoryRepository) RecentCollectionLogs(_ context.Context, limit int) ([]*CollectionLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	out := make([]*CollectionLog, 0, limit)
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		cpy := *r.logs[i]
		out = append(out, &cpy)
	}
	return out, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
