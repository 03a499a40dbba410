package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lifetrack/internal/flagx"
	"github.com/dmitrijs2005/lifetrack/internal/timex"
)

// jsonConfig is a DTO used only for unmarshalling the config file. It uses
// timex.Duration so intervals can be written as "1.5s" or as integer
// nanoseconds.
type jsonConfig struct {
	DataDir         *string         `json:"data_dir"`
	DatabaseDSN     *string         `json:"database_dsn"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`
	S3AccessKey     *string         `json:"s3_access_key"`
	S3SecretKey     *string         `json:"s3_secret_key"`
	DebounceDelay   *timex.Duration `json:"debounce_delay"`
	MinSyncInterval *timex.Duration `json:"min_sync_interval"`
	RetryBase       *timex.Duration `json:"retry_base"`
	MaxRetries      *int            `json:"max_retries"`
	BatchSize       *int            `json:"batch_size"`
}

// parseJSON overlays cfg with values from the JSON file named by the
// -c/-config flag. Missing file path means no overlay; unreadable or
// malformed content is a startup error.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigFile()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: reading %s: %v", path, err))
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(fmt.Sprintf("config: parsing %s: %v", path, err))
	}

	applyJSON(cfg, &jc)
}

func applyJSON(cfg *Config, jc *jsonConfig) {
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.S3Bucket != nil {
		cfg.S3Bucket = *jc.S3Bucket
	}
	if jc.S3Region != nil {
		cfg.S3Region = *jc.S3Region
	}
	if jc.S3BaseEndpoint != nil {
		cfg.S3BaseEndpoint = *jc.S3BaseEndpoint
	}
	if jc.S3AccessKey != nil {
		cfg.S3AccessKey = *jc.S3AccessKey
	}
	if jc.S3SecretKey != nil {
		cfg.S3SecretKey = *jc.S3SecretKey
	}
	if jc.DebounceDelay != nil {
		cfg.DebounceDelay = jc.DebounceDelay.Duration
	}
	if jc.MinSyncInterval != nil {
		cfg.MinSyncInterval = jc.MinSyncInterval.Duration
	}
	if jc.RetryBase != nil {
		cfg.RetryBase = jc.RetryBase.Duration
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
	if jc.BatchSize != nil {
		cfg.BatchSize = *jc.BatchSize
	}
}
