package airquality

import (
	"context"
	"time"
)

// Repository defines the interface for air quality persistence.
type Repository interface {
	// SaveReading stores a reading and assigns its ID.
	SaveReading(ctx context.Context, r *Reading) error

	// LatestReading returns the most recent reading.
	// Returns ErrNoReadings if nothing has been stored yet.
	LatestReading(ctx context.Context) (*Reading, error)

	// History returns the non-empty values of a pollutant recorded in zone after
	// since, oldest first. ZoneAll matches every zone.
	History(ctx context.Context, pollutant Pollutant, zone Zone, since time.Time) ([]HistoryPoint, error)

	// CountReadings returns the number of stored readings.
	CountReadings(ctx context.Context) (int, error)

	// SaveCollectionLog records a provider collection attempt.
	SaveCollectionLog(ctx context.Context, l *CollectionLog) error

	// RecentCollectionLogs returns the latest collection attempts, newest first.
	RecentCollectionLogs(ctx context.Context, limit int) ([]*CollectionLog, error)
}
