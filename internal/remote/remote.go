// Package remote defines the thin contract to the cloud backup backend:
// one row per (user, data type), whose payload is the opaque serialized
// collection of that type's records. Adapters never merge; the sync
// engine owns reconciliation.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifetrack/internal/models"
)

// FailureKind classifies adapter failures for the sync engine's retry
// policy.
type FailureKind int

const (
	// FailureNotConfigured means no backend credentials are present. The
	// engine treats it as a silent no-op success: offline-first operation
	// is never gated on cloud presence.
	FailureNotConfigured FailureKind = iota + 1

	// FailureTransient covers network failures and backend "table not
	// ready" conditions. Only these are retried.
	FailureTransient

	// FailurePermanent covers malformed requests and rejected auth.
	// Surfaced immediately, never retried.
	FailurePermanent
)

func (k FailureKind) String() string {
	switch k {
	case FailureNotConfigured:
		return "not_configured"
	case FailureTransient:
		return "transient"
	case FailurePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Error is the classified failure every adapter surfaces.
type Error struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind FailureKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsTransient reports whether err is a retryable remote failure.
func IsTransient(err error) bool { return failureKind(err) == FailureTransient }

// IsNotConfigured reports whether err means the backend is absent.
func IsNotConfigured(err error) bool { return failureKind(err) == FailureNotConfigured }

// IsPermanent reports whether err is a non-retryable remote failure.
func IsPermanent(err error) bool { return failureKind(err) == FailurePermanent }

func failureKind(err error) FailureKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Store is the backup backend contract. Both operations work on whole
// collections, never individual records.
type Store interface {
	// FetchRow returns the stored collection for (userID, kind). A row
	// that does not exist yet is an empty collection, not an error.
	FetchRow(ctx context.Context, userID string, kind models.Kind) ([]json.RawMessage, error)

	// UpsertRow replaces the entire stored collection for (userID, kind).
	// Last writer wins at this level; upserts are idempotent by
	// replacement.
	UpsertRow(ctx context.Context, userID string, kind models.Kind, records []json.RawMessage) error

	// Available reports whether the adapter has backend credentials.
	Available() bool
}
