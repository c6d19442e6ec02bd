// Package config loads process configuration from the environment.
// An optional .env file is read first; real environment variables win.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the given dotenv files, or ".env" when none are given.
// Missing files are ignored. Variables already set are not overridden.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// String returns the trimmed value of key, or def when unset or blank.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Int returns key parsed as an integer, or def when unset or invalid.
func Int(key string, def int) int {
	v, err := strconv.Atoi(String(key, ""))
	if err != nil {
		return def
	}
	return v
}

// Float returns key parsed as a float, or def when unset or invalid.
func Float(key string, def float64) float64 {
	v, err := strconv.ParseFloat(String(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}

// Bool returns key parsed as a boolean, or def when unset or invalid.
// "1", "true", "yes" and "on" are true; "0", "false", "no" and "off" are false.
func Bool(key string, def bool) bool {
	switch strings.ToLower(String(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Duration returns key parsed as a duration, or def when unset or invalid.
// Bare integers are read as seconds.
func Duration(key string, def time.Duration) time.Duration {
	v := String(key, "")
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// List returns key split on commas with blanks dropped, or def when empty.
func List(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(String(key, ""), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
