// Package localstore implements the per-user local database layer: a
// registry of wholly separate SQLite databases, one per user, each holding
// one table per data type. Isolation between users is structural (separate
// database files), not a userId filter, so queries can never leak across
// users.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/dmitrijs2005/lifetrack/internal/logging"
	_ "modernc.org/sqlite"
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]*$`)

// Store is the process-wide registry mapping user ids to open database
// handles. Handles are created lazily on first access and cached for the
// process lifetime; evicting the cache never touches the durable files.
type Store struct {
	dir string
	log logging.Logger

	mu      sync.Mutex
	handles map[string]*Handle
}

// New returns a registry rooted at dir. The directory is created on first
// Open.
func New(dir string, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{dir: dir, log: log, handles: make(map[string]*Handle)}
}

// Open returns the cached handle for userID, initializing the on-disk
// database (and its schema) on first use. It is idempotent and safe for
// concurrent callers: the registry lock guarantees a single handle per
// user within the process.
func (s *Store) Open(ctx context.Context, userID string) (*Handle, error) {
	if !userIDPattern.MatchString(userID) {
		return nil, fmt.Errorf("invalid user id %q", userID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.handles[userID]; ok {
		return h, nil
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	path := s.path(userID)
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database for %s: %w", userID, err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating database for %s: %w", userID, err)
	}

	h := &Handle{userID: userID, db: db}
	s.handles[userID] = h
	s.log.Debug(ctx, "opened local store", "userId", userID)
	return h, nil
}

// EvictCache drops the in-memory handles for the given users, or for all
// users when none are named. Durable data is untouched; a later Open sees
// everything that was written before eviction. Sign-out uses this.
func (s *Store) EvictCache(userIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(userIDs) == 0 {
		for id, h := range s.handles {
			_ = h.db.Close()
			delete(s.handles, id)
		}
		return
	}
	for _, id := range userIDs {
		if h, ok := s.handles[id]; ok {
			_ = h.db.Close()
			delete(s.handles, id)
		}
	}
}

// Destroy evicts the cache entry AND irreversibly deletes the underlying
// storage for userID. Only the "erase all data" danger-zone action and
// user deletion call this.
func (s *Store) Destroy(ctx context.Context, userID string) error {
	if !userIDPattern.MatchString(userID) {
		return fmt.Errorf("invalid user id %q", userID)
	}

	s.EvictCache(userID)

	path := s.path(userID)
	for _, f := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", f, err)
		}
	}
	s.log.Info(ctx, "destroyed local store", "userId", userID)
	return nil
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.dir, userID+".db")
}
