package airquality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL air quality repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveReading stores a reading and assigns its ID.
func (r *PostgresRepository) SaveReading(ctx context.Context, reading *Reading) error {
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now()
	}

	query := `
		INSERT INTO air_quality (
			recorded_at, city, zone, aqi,
			pm25, pm10, no2, o3, so2, co,
			temperature, humidity, wind_speed, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		reading.RecordedAt,
		reading.City,
		string(reading.Zone),
		reading.AQI,
		reading.PM25,
		reading.PM10,
		reading.NO2,
		reading.O3,
		reading.SO2,
		reading.CO,
		reading.Temperature,
		reading.Humidity,
		reading.WindSpeed,
		string(reading.Source),
	).Scan(&reading.ID)
}

// LatestReading returns the most recent reading.
func (r *PostgresRepository) LatestReading(ctx context.Context) (*Reading, error) {
	query := `
		SELECT
			id, recorded_at, city, zone, aqi,
			pm25, pm10, no2, o3, so2, co,
			temperature, humidity, wind_speed, source
		FROM air_quality
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var (
		reading Reading
		zone    string
		source  string
	)
	err := r.pool.QueryRow(ctx, query).Scan(
		&reading.ID,
		&reading.RecordedAt,
		&reading.City,
		&zone,
		&reading.AQI,
		&reading.PM25,
		&reading.PM10,
		&reading.NO2,
		&reading.O3,
		&reading.SO2,
		&reading.CO,
		&reading.Temperature,
		&reading.Humidity,
		&reading.WindSpeed,
		&source,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoReadings
		}
		return nil, err
	}

	reading.Zone = Zone(zone)
	reading.Source = Source(source)
	return &reading, nil
}

// History returns the non-empty values of a pollutant recorded in zone after
// since, oldest first.
func (r *PostgresRepository) History(ctx context.Context, pollutant Pollutant, zone Zone, since time.Time) ([]HistoryPoint, error) {
	column, err := pollutantColumn(pollutant)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT recorded_at, %s
		FROM air_quality
		WHERE recorded_at > $1
		  AND ($2 = 'all' OR zone = $2)
		  AND %s IS NOT NULL AND %s <> 0
		ORDER BY recorded_at ASC
	`, column, column, column)

	rows, err := r.pool.Query(ctx, query, since, string(zone))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []HistoryPoint
	for rows.Next() {
		var p HistoryPoint
		if err := rows.Scan(&p.RecordedAt, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// pollutantColumn maps a pollutant to its column. Only fixed identifiers are returned.
func pollutantColumn(p Pollutant) (string, error) {
	switch p {
	case PollutantPM25:
		return "pm25", nil
	case PollutantPM10:
		return "pm10", nil
	case PollutantNO2:
		return "no2", nil
	case PollutantO3:
		return "o3", nil
	case PollutantSO2:
		return "so2", nil
	default:
		return "", fmt.Errorf("unsupported pollutant %q", p)
	}
}

// CountReadings returns the number of stored readings.
func (r *PostgresRepository) CountReadings(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM air_quality`).Scan(&n)
	return n, err
}

// SaveCollectionLog records a provider collection attempt.
func (r *PostgresRepository) SaveCollectionLog(ctx context.Context, l *CollectionLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO collection_logs (created_at, source, status, records_collected, error_message)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		l.CreatedAt,
		string(l.Source),
		string(l.Status),
		l.RecordsCollected,
		l.ErrorMessage,
	).Scan(&l.ID)
}

// RecentCollectionLogs returns the latest collection attempts, newest first.
func (r *PostgresRepository) RecentCollectionLogs(ctx context.Context, limit int) ([]*CollectionLog, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, created_at, source, status, records_collected, COALESCE(error_message, '')
		FROM collection_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*CollectionLog
	for rows.Next() {
		var (
			l      CollectionLog
			source string
			status string
		)
		if err := rows.Scan(&l.ID, &l.CreatedAt, &source, &status, &l.RecordsCollected, &l.ErrorMessage); err != nil {
			return nil, err
		}
		l.Source = Source(source)
		l.Status = CollectionStatus(status)
		logs = append(logs, &l)
	}

	return logs, rows.Err()
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
