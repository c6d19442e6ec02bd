package alert

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alert repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores an alert unless its ID is already present.
func (r *PostgresRepository) Create(ctx context.Context, a *Alert) (bool, error) {
	query := `
		INSERT INTO alerts (
			id, created_at, title, message, zone, pollutant,
			value, unit, threshold, critical, read, people_affected
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		a.ID,
		a.CreatedAt,
		a.Title,
		a.Message,
		a.Zone,
		a.Pollutant,
		a.Value,
		a.Unit,
		a.Threshold,
		a.Critical,
		a.Read,
		a.PeopleAffected,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListSince returns alerts created after since, newest first.
func (r *PostgresRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			id, created_at, title, message, zone, pollutant,
			value, unit, threshold, critical, read, people_affected
		FROM alerts
		WHERE created_at > $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		var a Alert
		err := rows.Scan(
			&a.ID,
			&a.CreatedAt,
			&a.Title,
			&a.Message,
			&a.Zone,
			&a.Pollutant,
			&a.Value,
			&a.Unit,
			&a.Threshold,
			&a.Critical,
			&a.Read,
			&a.PeopleAffected,
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, &a)
	}

	return alerts, rows.Err()
}

// MarkRead flags an alert as read.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `UPDATE alerts SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrAlertNotFound
	}

	return nil
}

// Count returns the number of stored alerts.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&n)
	return n, err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
