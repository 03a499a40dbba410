// Package models defines the record shapes shared by every lifetrack
// feature: the common base every entity embeds, the fourteen domain
// entities, and the data-type catalog the store and sync layers iterate
// over.
package models

import "github.com/dmitrijs2005/lifetrack/internal/common"

// SyncStatus is advisory sync metadata carried on every record. Nothing
// currently gates behavior on it, but it must be stored and round-tripped.
type SyncStatus string

const (
	SyncPending  SyncStatus = "pending"
	SyncSynced   SyncStatus = "synced"
	SyncConflict SyncStatus = "conflict"
)

// Base is the common shape every domain entity embeds. The JSON field
// names are the wire format shared with the remote backup rows, so they
// must not change.
type Base struct {
	// ID is an opaque client-generated identifier, unique within a user's
	// data.
	ID string `json:"id"`

	// UserID is the owning user. The local store is already partitioned
	// per user, but the field is kept because records cross into the
	// shared remote store.
	UserID string `json:"userId"`

	// CreatedAt is set once at creation and never changes afterwards.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is refreshed on every mutation. Both timestamps are epoch
	// milliseconds.
	UpdatedAt int64 `json:"updatedAt"`

	SyncStatus SyncStatus `json:"syncStatus"`

	// Version starts at 1. It is reserved for optimistic concurrency and
	// is intentionally not incremented on update; no conflict logic reads
	// it yet.
	Version int `json:"version"`

	// IsDeleted is a soft-delete flag kept in the schema for forward
	// compatibility. Current delete paths remove records outright.
	IsDeleted bool `json:"isDeleted,omitempty"`
}

// RecordID implements Record.
func (b Base) RecordID() string { return b.ID }

// Record is the structural conformance hook the generic store and sync
// code operate through. Any entity with an id qualifies.
type Record interface {
	RecordID() string
}

// NewBase returns base fields for a freshly created record owned by
// userID: new id, both timestamps set to now, sync status pending,
// version 1.
func NewBase(userID string) Base {
	now := common.NowMillis()
	return Base{
		ID:         common.GenerateID(),
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: SyncPending,
		Version:    1,
	}
}
