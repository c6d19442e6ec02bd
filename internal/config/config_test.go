package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/config"
)

func TestGetters(t *testing.T) {
	t.Setenv("SC_STRING", "  value ")
	t.Setenv("SC_INT", "42")
	t.Setenv("SC_BAD_INT", "forty")
	t.Setenv("SC_BOOL", "Yes")
	t.Setenv("SC_DURATION", "90s")
	t.Setenv("SC_SECONDS", "30")
	t.Setenv("SC_LIST", "Marseille, ,Lyon")
	t.Setenv("SC_FLOAT", "0.25")

	assert.Equal(t, "value", config.String("SC_STRING", "def"))
	assert.Equal(t, "def", config.String("SC_MISSING", "def"))
	assert.Equal(t, 42, config.Int("SC_INT", 1))
	assert.Equal(t, 1, config.Int("SC_BAD_INT", 1))
	assert.True(t, config.Bool("SC_BOOL", false))
	assert.True(t, config.Bool("SC_MISSING", true))
	assert.Equal(t, 90*time.Second, config.Duration("SC_DURATION", time.Minute))
	assert.Equal(t, 30*time.Second, config.Duration("SC_SECONDS", time.Minute))
	assert.Equal(t, time.Minute, config.Duration("SC_MISSING", time.Minute))
	assert.Equal(t, []string{"Marseille", "Lyon"}, config.List("SC_LIST", nil))
	assert.Equal(t, []string{"x"}, config.List("SC_MISSING", []string{"x"}))
	assert.InDelta(t, 0.25, config.Float("SC_FLOAT", 1), 1e-9)
	assert.InDelta(t, 1.0, config.Float("SC_BAD_INT", 1), 1e-9)
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "JWT_SIGNING_KEY", "ENABLE_AUTO_COLLECT", "COLLECT_INTERVAL", "CITY", "DATABASE_ENABLED", "PUBSUB_PROJECT_ID", "PUBSUB_SUBSCRIPTION", "REQUIRE_TLS", "OTEL_SAMPLE_RATIO", "IOT_LATEST_TTL"} {
		t.Setenv(key, "")
	}

	cfg := config.FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.AutoCollect)
	assert.Equal(t, 15*time.Minute, cfg.CollectInterval)
	assert.Equal(t, []string{"Marseille"}, cfg.Providers.Cities)
	assert.False(t, cfg.Storage.DatabaseEnabled)
	assert.False(t, cfg.PubSub.Enabled())
	assert.True(t, cfg.UsingDefaultJWTKey())
	assert.False(t, cfg.RequireTLS)
	assert.InDelta(t, 1.0, cfg.Telemetry.SampleRatio, 1e-9)
	assert.Equal(t, 24*time.Hour, cfg.Storage.LatestTTL)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SC_FROM_FILE=file\nSC_PRESET=file\n"), 0o600))

	t.Setenv("SC_PRESET", "env")
	t.Cleanup(func() { os.Unsetenv("SC_FROM_FILE") })

	require.NoError(t, config.Load(path))
	assert.Equal(t, "file", os.Getenv("SC_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("SC_PRESET"))

	assert.NoError(t, config.Load(filepath.Join(dir, "missing.env")))
}
