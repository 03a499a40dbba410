package localstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var gooseSetup sync.Once

// runMigrations brings a freshly opened per-user database up to the
// current schema. Every user database carries the same single versioned
// schema (goose tracks the version inside the database itself).
func runMigrations(ctx context.Context, db *sql.DB) error {
	var setupErr error
	gooseSetup.Do(func() {
		goose.SetLogger(goose.NopLogger())
		if err := goose.SetDialect("sqlite3"); err != nil {
			setupErr = err
		}
	})
	if setupErr != nil {
		return fmt.Errorf("setting goose dialect: %w", setupErr)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
