package remote

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/lifetrack/internal/models"
)

type rowKey struct {
	userID string
	kind   models.Kind
}

// MemoryStore is an in-process Store used by tests and as the reference
// implementation of the row contract.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[rowKey][]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[rowKey][]json.RawMessage)}
}

// Available implements Store.
func (m *MemoryStore) Available() bool { return true }

// FetchRow implements Store.
func (m *MemoryStore) FetchRow(_ context.Context, userID string, kind models.Kind) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[rowKey{userID, kind}]
	if !ok {
		return []json.RawMessage{}, nil
	}
	out := make([]json.RawMessage, len(row))
	copy(out, row)
	return out, nil
}

// UpsertRow implements Store.
func (m *MemoryStore) UpsertRow(_ context.Context, userID string, kind models.Kind, records []json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := make([]json.RawMessage, len(records))
	copy(row, records)
	m.rows[rowKey{userID, kind}] = row
	return nil
}

// Rows returns the number of stored rows, for assertions.
func (m *MemoryStore) Rows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
