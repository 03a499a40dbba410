package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string    data directory for per-user databases
//	-dsn string  Postgres DSN of the backup backend
//	-u string    user id to operate on
//	-do string   action: backup | restore | erase | setpin
//	-w int       debounce window in milliseconds
//	-i int       minimum full-sync interval in seconds
//
// os.Args is filtered to the flags handled here so the shared -c/-config
// flag (and test runner flags) do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-dsn", "-u", "-do", "-w", "-i"})

	fs := flag.NewFlagSet("lifetrack", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory for per-user databases")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "postgres DSN of the backup backend")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "user id to operate on")
	fs.StringVar(&cfg.Action, "do", cfg.Action, "action: backup | restore | erase | setpin")
	debounceMs := fs.Int("w", int(cfg.DebounceDelay.Milliseconds()), "debounce window (ms)")
	syncIntervalSec := fs.Int("i", int(cfg.MinSyncInterval.Seconds()), "minimum full-sync interval (s)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.DebounceDelay = time.Duration(*debounceMs) * time.Millisecond
	cfg.MinSyncInterval = time.Duration(*syncIntervalSec) * time.Second
}
