package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema creates the tables used by the readings, alerts and collection log
// repositories. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS air_quality (
		id          BIGSERIAL PRIMARY KEY,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		city        TEXT NOT NULL,
		zone        TEXT NOT NULL DEFAULT 'all',
		aqi         INTEGER,
		pm25        DOUBLE PRECISION,
		pm10        DOUBLE PRECISION,
		no2         DOUBLE PRECISION,
		o3          DOUBLE PRECISION,
		so2         DOUBLE PRECISION,
		co          DOUBLE PRECISION,
		temperature DOUBLE PRECISION,
		humidity    DOUBLE PRECISION,
		wind_speed  DOUBLE PRECISION,
		source      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_air_quality_recorded_at ON air_quality (recorded_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_air_quality_zone_recorded_at ON air_quality (zone, recorded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id              TEXT PRIMARY KEY,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		title           TEXT NOT NULL,
		message         TEXT NOT NULL,
		zone            TEXT NOT NULL,
		pollutant       TEXT,
		value           DOUBLE PRECISION,
		unit            TEXT,
		threshold       DOUBLE PRECISION,
		critical        BOOLEAN NOT NULL DEFAULT FALSE,
		read            BOOLEAN NOT NULL DEFAULT FALSE,
		people_affected INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS collection_logs (
		id                BIGSERIAL PRIMARY KEY,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		source            TEXT NOT NULL,
		status            TEXT NOT NULL,
		records_collected INTEGER NOT NULL DEFAULT 0,
		error_message     TEXT
	)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
