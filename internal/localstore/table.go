package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/dbx"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	sqlite "modernc.org/sqlite"
)

const sqliteConstraint = 19 // primary SQLITE_CONSTRAINT result code

// Table provides typed access to one data type inside one user's
// database. T only needs to satisfy models.Record; the store never special
// cases individual entity kinds.
type Table[T models.Record] struct {
	h    *Handle
	kind models.Kind
}

// NewTable binds a typed table to a handle. Kind and T must correspond;
// that correspondence is the caller's contract, the store just persists
// JSON.
func NewTable[T models.Record](h *Handle, kind models.Kind) *Table[T] {
	return &Table[T]{h: h, kind: kind}
}

// GetAll returns every record in the table.
func (t *Table[T]) GetAll(ctx context.Context) ([]T, error) {
	raw, err := t.h.GetAllRaw(ctx, t.kind)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var rec T
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformedRecord, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetByKey returns the record with the given id, or common.ErrNotFound.
func (t *Table[T]) GetByKey(ctx context.Context, id string) (T, error) {
	var rec T
	if err := checkKind(t.kind); err != nil {
		return rec, err
	}

	var data []byte
	err := t.h.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, t.kind), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("%s %q: %w", t.kind, id, common.ErrNotFound)
	}
	if err != nil {
		return rec, fmt.Errorf("selecting %s: %w", t.kind, err)
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", common.ErrMalformedRecord, err)
	}
	return rec, nil
}

// Add inserts a new record. The write is immediately durable; the sync
// engine reads current table state right after mutations return. Fails
// with common.ErrDuplicateKey if the id already exists.
func (t *Table[T]) Add(ctx context.Context, rec T) error {
	if err := checkKind(t.kind); err != nil {
		return err
	}

	id := rec.RecordID()
	if id == "" {
		return fmt.Errorf("%w: missing id", common.ErrMalformedRecord)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", t.kind, err)
	}

	_, err = t.h.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, data) VALUES (?, ?)`, t.kind), id, data)
	if err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) && se.Code()&0xff == sqliteConstraint {
			return fmt.Errorf("%s %q: %w", t.kind, id, common.ErrDuplicateKey)
		}
		return fmt.Errorf("inserting into %s: %w", t.kind, err)
	}
	return nil
}

// Update merges the given partial fields into the stored record and
// refreshes updatedAt. Patching id or createdAt is rejected; a missing id
// fails with common.ErrNotFound.
func (t *Table[T]) Update(ctx context.Context, id string, patch map[string]any) error {
	if err := checkKind(t.kind); err != nil {
		return err
	}
	for field := range patch {
		if field == "id" || field == "createdAt" {
			return fmt.Errorf("%q: %w", field, common.ErrImmutableField)
		}
	}

	return dbx.WithTx(ctx, t.h.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var data []byte
		err := tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, t.kind), id).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s %q: %w", t.kind, id, common.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("selecting %s: %w", t.kind, err)
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%w: %v", common.ErrMalformedRecord, err)
		}
		for field, value := range patch {
			doc[field] = value
		}
		doc["updatedAt"] = common.NowMillis()

		updated, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding %s record: %w", t.kind, err)
		}

		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET data = ? WHERE id = ?`, t.kind), updated, id); err != nil {
			return fmt.Errorf("updating %s: %w", t.kind, err)
		}
		return nil
	})
}

// Delete removes the record outright (hard delete; the isDeleted flag is
// not used by current mutation paths). Fails with common.ErrNotFound if
// the id is absent.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	if err := checkKind(t.kind); err != nil {
		return err
	}

	res, err := t.h.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.kind), id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", t.kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", t.kind, id, common.ErrNotFound)
	}
	return nil
}

// WhereEquals returns records whose field equals value. The field must be
// one of the table's declared secondary indexes.
func (t *Table[T]) WhereEquals(ctx context.Context, field string, value any) ([]T, error) {
	if err := t.checkIndexed(field); err != nil {
		return nil, err
	}
	return t.query(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE json_extract(data, '$.%s') = ?`, t.kind, field), value)
}

// WhereBetween returns records whose field is within [lo, hi] inclusive.
// The field must be one of the table's declared secondary indexes.
func (t *Table[T]) WhereBetween(ctx context.Context, field string, lo, hi any) ([]T, error) {
	if err := t.checkIndexed(field); err != nil {
		return nil, err
	}
	return t.query(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE json_extract(data, '$.%s') BETWEEN ? AND ?`, t.kind, field), lo, hi)
}

func (t *Table[T]) checkIndexed(field string) error {
	if err := checkKind(t.kind); err != nil {
		return err
	}
	if !t.kind.Indexed(field) {
		return fmt.Errorf("field %q is not indexed on %s", field, t.kind)
	}
	return nil
}

func (t *Table[T]) query(ctx context.Context, q string, args ...any) ([]T, error) {
	rows, err := t.h.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.kind, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec T
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformedRecord, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
