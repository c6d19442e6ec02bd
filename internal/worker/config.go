// Package worker runs the periodic provider collection and its Pub/Sub trigger.
package worker

import (
	"time"
)

// DefaultCity is collected when no targets are configured.
const DefaultCity = "Marseille"

// CollectConfig holds configuration for the collection job.
type CollectConfig struct {
	// Cities are the collection targets.
	// If empty, uses DefaultCity.
	Cities []string

	// Concurrency is the number of concurrent provider fetches.
	// Default: 3
	Concurrency int

	// Timeout bounds each provider fetch.
	// Default: 30 seconds
	Timeout time.Duration

	// AutoCollect enables the periodic loop.
	// Default: true
	AutoCollect bool

	// Interval between two collection runs.
	// Default: 15 minutes
	Interval time.Duration

	// InitialDelay before the first run.
	// Default: 30 seconds
	InitialDelay time.Duration
}

// DefaultCollectConfig returns the default collection configuration.
func DefaultCollectConfig() CollectConfig {
	return CollectConfig{
		Cities:       []string{DefaultCity},
		Concurrency:  3,
		Timeout:      30 * time.Second,
		AutoCollect:  true,
		Interval:     15 * time.Minute,
		InitialDelay: 30 * time.Second,
	}
}

// withDefaults fills zero values from DefaultCollectConfig.
func (c CollectConfig) withDefaults() CollectConfig {
	d := DefaultCollectConfig()
	if len(c.Cities) == 0 {
		c.Cities = d.Cities
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	return c
}
