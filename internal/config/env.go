package config

import (
	"os"
	"time"
)

// parseEnv overlays cfg with LIFETRACK_* environment variables. Only
// deployment-ish settings are exposed via env; sync tunables stay in the
// JSON file and flags.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv("LIFETRACK_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := os.LookupEnv("LIFETRACK_DATABASE_DSN"); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("LIFETRACK_S3_BUCKET"); ok {
		cfg.S3Bucket = v
	}
	if v, ok := os.LookupEnv("LIFETRACK_S3_REGION"); ok {
		cfg.S3Region = v
	}
	if v, ok := os.LookupEnv("LIFETRACK_S3_ENDPOINT"); ok {
		cfg.S3BaseEndpoint = v
	}
	if v, ok := os.LookupEnv("LIFETRACK_S3_ACCESS_KEY"); ok {
		cfg.S3AccessKey = v
	}
	if v, ok := os.LookupEnv("LIFETRACK_S3_SECRET_KEY"); ok {
		cfg.S3SecretKey = v
	}
	if v, ok := os.LookupEnv("LIFETRACK_MIN_SYNC_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.MinSyncInterval = d
		}
	}
}
