// Package config assembles runtime settings for the lifetrack core from
// defaults, an optional JSON file, environment variables and command-line
// flags, in that order of precedence (later sources win).
package config

import "time"

// Config holds every tunable the core layers need.
type Config struct {
	// DataDir is where the per-user SQLite databases live.
	DataDir string

	// DatabaseDSN selects the Postgres backup backend when non-empty.
	DatabaseDSN string

	// S3 settings select the S3/MinIO backup backend when Bucket is
	// non-empty and no DatabaseDSN is configured.
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	// Sync engine tunables.
	DebounceDelay   time.Duration
	MinSyncInterval time.Duration
	RetryBase       time.Duration
	MaxRetries      int
	BatchSize       int

	// UserID and Action drive the command-line tool.
	UserID string
	Action string
}

// LoadDefaults populates c with the defaults the sync protocol was tuned
// around.
func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.DebounceDelay = 1500 * time.Millisecond
	c.MinSyncInterval = 5 * time.Second
	c.RetryBase = 500 * time.Millisecond
	c.MaxRetries = 3
	c.BatchSize = 5
	c.Action = "backup"
}

// LoadConfig constructs a Config by applying defaults, then overlaying the
// JSON file (if any), environment variables and finally command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
