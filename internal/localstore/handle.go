package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/dbx"
	"github.com/dmitrijs2005/lifetrack/internal/models"
)

// Handle is one user's open database. Typed access goes through Table;
// the raw methods below operate on whole tables as opaque JSON documents
// and exist for the sync engine, which never interprets domain fields.
type Handle struct {
	userID string
	db     *sql.DB
}

// UserID returns the owning user id.
func (h *Handle) UserID() string { return h.userID }

// idProbe extracts the one field the generic layers require of every
// serialized record.
type idProbe struct {
	ID string `json:"id"`
}

func recordID(raw json.RawMessage) (string, error) {
	var p idProbe
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedRecord, err)
	}
	if p.ID == "" {
		return "", fmt.Errorf("%w: missing id", common.ErrMalformedRecord)
	}
	return p.ID, nil
}

func checkKind(kind models.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown data type %q", kind)
	}
	return nil
}

// GetAllRaw returns every record of the given kind as stored, without
// decoding into a domain type. The sync engine serializes exactly this
// slice into the remote row.
func (h *Handle) GetAllRaw(ctx context.Context, kind models.Kind) ([]json.RawMessage, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	rows, err := h.db.QueryContext(ctx, fmt.Sprintf(`SELECT data FROM %s ORDER BY id`, kind))
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", kind, err)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceAllRaw atomically replaces the entire table contents with the
// given records. Pull merges land through here: either the whole merged
// collection is written, or nothing changes. Records without an id abort
// the replacement.
func (h *Handle) ReplaceAllRaw(ctx context.Context, kind models.Kind, records []json.RawMessage) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	return dbx.WithTx(ctx, h.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, kind)); err != nil {
			return fmt.Errorf("clearing %s: %w", kind, err)
		}
		for _, rec := range records {
			id, err := recordID(rec)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s (id, data) VALUES (?, ?)`, kind), id, []byte(rec)); err != nil {
				return fmt.Errorf("inserting into %s: %w", kind, err)
			}
		}
		return nil
	})
}

// CountRaw returns the number of records of the given kind.
func (h *Handle) CountRaw(ctx context.Context, kind models.Kind) (int, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	var n int
	if err := h.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, kind)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
