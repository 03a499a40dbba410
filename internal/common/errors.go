// Package common contains shared constants, sentinel errors and small
// helpers used across lifetrack components. Callers should use errors.Is
// to match the sentinel values.
package common

import "errors"

var (
	// Local store contract violations. These indicate a bug in the calling
	// feature code and propagate as hard errors.
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate record id")

	// ErrImmutableField is returned when an update patch tries to touch a
	// field that never changes after creation (id, createdAt).
	ErrImmutableField = errors.New("immutable field")

	// ErrMalformedRecord is returned when a serialized record cannot be
	// decoded or is missing its id.
	ErrMalformedRecord = errors.New("malformed record")
)
