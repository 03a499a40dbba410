package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps backup rows in a single table with a uniqueness
// constraint on (user_id, data_type):
//
//	backup_rows(user_id, data_type, data, updated_at)
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to the backup backend. An empty DSN yields an
// unconfigured adapter whose operations fail with FailureNotConfigured.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return &PostgresStore{}, nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening backup backend: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Available implements Store.
func (p *PostgresStore) Available() bool { return p.db != nil }

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// InitSchema creates the backup table if it does not exist. Optional
// bootstrap helper; the classifier treats a missing table as transient so
// sync keeps retrying until provisioning finishes either way.
func (p *PostgresStore) InitSchema(ctx context.Context) error {
	if p.db == nil {
		return newError(FailureNotConfigured, "init", errNoBackend)
	}
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS backup_rows (
			user_id    TEXT NOT NULL,
			data_type  TEXT NOT NULL,
			data       TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, data_type)
		)`)
	if err != nil {
		return p.classify("init", err)
	}
	return nil
}

var errNoBackend = errors.New("no backend configured")

// FetchRow implements Store.
func (p *PostgresStore) FetchRow(ctx context.Context, userID string, kind models.Kind) ([]json.RawMessage, error) {
	if p.db == nil {
		return nil, newError(FailureNotConfigured, "fetch", errNoBackend)
	}

	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM backup_rows WHERE user_id = $1 AND data_type = $2`,
		userID, string(kind)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, p.classify("fetch", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, newError(FailurePermanent, "fetch", fmt.Errorf("malformed payload: %w", err))
	}
	return records, nil
}

// UpsertRow implements Store.
func (p *PostgresStore) UpsertRow(ctx context.Context, userID string, kind models.Kind, records []json.RawMessage) error {
	if p.db == nil {
		return newError(FailureNotConfigured, "upsert", errNoBackend)
	}

	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return newError(FailurePermanent, "upsert", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO backup_rows (user_id, data_type, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, data_type)
		DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		userID, string(kind), data)
	if err != nil {
		return p.classify("upsert", err)
	}
	return nil
}

// classify maps driver errors onto the retry taxonomy. Unknown failures
// default to transient so the engine errs on the side of retrying.
func (p *PostgresStore) classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return newError(classifyPgCode(pgErr.Code), op, err)
	}

	// driver and network failures carry no SQLSTATE; treat as retryable
	return newError(FailureTransient, op, err)
}

func classifyPgCode(code string) FailureKind {
	switch {
	case code == "42P01":
		// undefined_table: backend provisioned but table not ready yet
		return FailureTransient
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"), strings.HasPrefix(code, "57"):
		// connection, resources, operator intervention
		return FailureTransient
	case strings.HasPrefix(code, "28"):
		// invalid authorization
		return FailurePermanent
	case strings.HasPrefix(code, "22"), strings.HasPrefix(code, "23"), strings.HasPrefix(code, "42"):
		// data exception, constraint violation, other syntax/access errors
		return FailurePermanent
	default:
		return FailureTransient
	}
}
