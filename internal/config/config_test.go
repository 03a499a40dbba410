package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 1500*time.Millisecond, cfg.DebounceDelay)
	assert.Equal(t, 5*time.Second, cfg.MinSyncInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBase)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.S3Bucket)
}

func TestParseEnv_Overlays(t *testing.T) {
	t.Setenv("LIFETRACK_DATA_DIR", "/tmp/lt")
	t.Setenv("LIFETRACK_DATABASE_DSN", "postgres://x")
	t.Setenv("LIFETRACK_MIN_SYNC_INTERVAL", "9s")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, "/tmp/lt", cfg.DataDir)
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, 9*time.Second, cfg.MinSyncInterval)
}

func TestParseEnv_IgnoresBadDuration(t *testing.T) {
	t.Setenv("LIFETRACK_MIN_SYNC_INTERVAL", "soon")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, 5*time.Second, cfg.MinSyncInterval)
}
