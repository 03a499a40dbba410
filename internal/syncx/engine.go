// Package syncx orchestrates reconciliation between the per-user local
// store and the cloud backup rows: debounced pushes of whole tables,
// pulls that merge remote and local collections, and rate-limited full
// sweeps across every data type.
//
// Conflict policy: merges are last-write-wins at table-snapshot
// granularity. If the same id diverged on both sides, the remote version
// wins and the local edit is discarded. That is a known data-loss risk
// under concurrent multi-device edits, accepted for simplicity.
package syncx

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/localstore"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/remote"
	"golang.org/x/sync/errgroup"
)

// Options are the engine tunables. Zero values fall back to the defaults
// the protocol was tuned around; tests shrink the windows.
type Options struct {
	// DebounceDelay is how long a push waits for further mutations before
	// the table is actually uploaded.
	DebounceDelay time.Duration

	// MaxRetries is the number of additional attempts after a transient
	// failure (total attempts = MaxRetries + 1).
	MaxRetries int

	// RetryBase scales the linear backoff: attempt n sleeps n*RetryBase.
	RetryBase time.Duration

	// MinSyncInterval gates back-to-back PullAll sweeps.
	MinSyncInterval time.Duration

	// BatchSize bounds how many data types a sweep touches concurrently.
	BatchSize int
}

func (o *Options) normalize() {
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = 1500 * time.Millisecond
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryBase <= 0 {
		o.RetryBase = 500 * time.Millisecond
	}
	if o.MinSyncInterval <= 0 {
		o.MinSyncInterval = 5 * time.Second
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
}

// Result reports the outcome of one push or pull. Failures are carried in
// Err, never raised: a failing data type must not abort anything else.
// Skipped marks operations that intentionally did no remote work (cloud
// absent, superseded debounce, degraded pull); those still count as
// success.
type Result struct {
	Kind    models.Kind
	Success bool
	Skipped bool
	Err     error
}

// SweepResult reports a PullAll/PushAll fan-out. Synced lists the data
// types whose remote work completed; Errors records per-type failures.
// Success is true even when individual types failed or the sweep was
// rate-gated; sweeps never fail as a whole.
type SweepResult struct {
	Success bool
	Synced  []models.Kind
	Errors  map[models.Kind]error
}

type pushKey struct {
	userID string
	kind   models.Kind
}

type pendingPush struct {
	timer *time.Timer
	done  chan Result
}

// Engine is constructed once per process. The debounce timers and the two
// sweep gates (syncing flag, last sweep time) are engine-wide state,
// which is acceptable under the single-active-user-per-process
// assumption; a multi-tenant server would need them scoped per user.
type Engine struct {
	local *localstore.Store
	rem   remote.Store
	log   logging.Logger
	opts  Options

	mu        sync.Mutex
	pending   map[pushKey]*pendingPush
	syncing   bool
	lastSweep time.Time
}

// New builds an engine. rem may be nil when no cloud backend is
// configured; every operation then degrades to a silent no-op success.
func New(local *localstore.Store, rem remote.Store, log logging.Logger, opts Options) *Engine {
	opts.normalize()
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Engine{
		local:   local,
		rem:     rem,
		log:     log,
		opts:    opts,
		pending: make(map[pushKey]*pendingPush),
	}
}

// CloudAvailable reports whether a configured backup backend is present.
func (e *Engine) CloudAvailable() bool {
	return e.rem != nil && e.rem.Available()
}

// Push schedules a debounced upload of the entire local table for
// (userID, kind). Each call re-arms the per-key timer; only the last
// scheduled execution runs. The returned channel receives exactly one
// Result: the upload outcome, or an immediate skipped success if a later
// Push superseded this one.
//
// Per key the cycle is Idle -> Debouncing -> Inflight -> Idle. A Push
// that arrives while an upload is inflight starts a fresh cycle; two
// overlapping uploads for one key are harmless because an upsert is a
// full-row replacement.
func (e *Engine) Push(userID string, kind models.Kind) <-chan Result {
	done := make(chan Result, 1)
	key := pushKey{userID, kind}

	e.mu.Lock()
	if prev, ok := e.pending[key]; ok {
		prev.timer.Stop()
		prev.done <- Result{Kind: kind, Success: true, Skipped: true}
	}
	p := &pendingPush{done: done}
	p.timer = time.AfterFunc(e.opts.DebounceDelay, func() {
		e.mu.Lock()
		current := e.pending[key] == p
		if current {
			delete(e.pending, key)
		}
		e.mu.Unlock()
		if !current {
			// A later Push superseded this cycle between the timer firing
			// and this callback taking the lock. That call already resolved
			// our channel; running the upload too would break the
			// one-result, last-execution-only contract.
			return
		}
		// Debounced work outlives its trigger call, so it cannot borrow a
		// caller context.
		p.done <- e.pushNow(context.Background(), userID, kind)
	})
	e.pending[key] = p
	e.mu.Unlock()

	return done
}

// PushImmediate uploads the table without debouncing. Used by explicit
// "back up now" actions.
func (e *Engine) PushImmediate(ctx context.Context, userID string, kind models.Kind) Result {
	return e.pushNow(ctx, userID, kind)
}

func (e *Engine) pushNow(ctx context.Context, userID string, kind models.Kind) Result {
	if !e.CloudAvailable() {
		return Result{Kind: kind, Success: true, Skipped: true}
	}

	h, err := e.local.Open(ctx, userID)
	if err != nil {
		return Result{Kind: kind, Err: fmt.Errorf("opening local store: %w", err)}
	}
	records, err := h.GetAllRaw(ctx, kind)
	if err != nil {
		return Result{Kind: kind, Err: fmt.Errorf("reading local %s: %w", kind, err)}
	}

	err = e.withRetry(ctx, func(ctx context.Context) error {
		return e.rem.UpsertRow(ctx, userID, kind, records)
	})
	if err != nil {
		if remote.IsNotConfigured(err) {
			return Result{Kind: kind, Success: true, Skipped: true}
		}
		e.log.Warn(ctx, "push failed", "userId", userID, "kind", kind, "err", err)
		return Result{Kind: kind, Err: err}
	}

	e.log.Debug(ctx, "pushed", "userId", userID, "kind", kind, "records", len(records))
	return Result{Kind: kind, Success: true}
}

// Pull fetches the remote row for (userID, kind) and merges it into the
// local table: every remote record wins for its id, local records whose
// ids are absent remotely are preserved, and the merged collection
// replaces the table atomically.
//
// Cloud unavailability must never prevent offline use, so any remote
// failure degrades to a skipped success (logged, Err carried for
// information). Local store failures remain hard failures.
func (e *Engine) Pull(ctx context.Context, userID string, kind models.Kind) Result {
	if !e.CloudAvailable() {
		return Result{Kind: kind, Success: true, Skipped: true}
	}

	var remoteRecords []json.RawMessage
	err := e.withRetry(ctx, func(ctx context.Context) error {
		var ferr error
		remoteRecords, ferr = e.rem.FetchRow(ctx, userID, kind)
		return ferr
	})
	if err != nil {
		if !remote.IsNotConfigured(err) {
			e.log.Warn(ctx, "pull degraded to no-op", "userId", userID, "kind", kind, "err", err)
		}
		return Result{Kind: kind, Success: true, Skipped: true, Err: err}
	}

	h, err := e.local.Open(ctx, userID)
	if err != nil {
		return Result{Kind: kind, Err: fmt.Errorf("opening local store: %w", err)}
	}

	merged, err := e.merge(ctx, h, kind, remoteRecords)
	if err != nil {
		// Malformed remote payloads degrade like any other remote fault.
		e.log.Warn(ctx, "pull discarded malformed remote row", "userId", userID, "kind", kind, "err", err)
		return Result{Kind: kind, Success: true, Skipped: true, Err: err}
	}

	if err := h.ReplaceAllRaw(ctx, kind, merged); err != nil {
		return Result{Kind: kind, Err: fmt.Errorf("writing merged %s: %w", kind, err)}
	}

	e.log.Debug(ctx, "pulled", "userId", userID, "kind", kind, "records", len(merged))
	return Result{Kind: kind, Success: true}
}

// merge builds the reconciled collection: remote records first (remote is
// authoritative for any id it carries), then local-only records.
func (e *Engine) merge(ctx context.Context, h *localstore.Handle, kind models.Kind, remoteRecords []json.RawMessage) ([]json.RawMessage, error) {
	type probe struct {
		ID string `json:"id"`
	}

	seen := make(map[string]struct{}, len(remoteRecords))
	merged := make([]json.RawMessage, 0, len(remoteRecords))
	for _, rec := range remoteRecords {
		var p probe
		if err := json.Unmarshal(rec, &p); err != nil || p.ID == "" {
			return nil, fmt.Errorf("remote record without id in %s row", kind)
		}
		seen[p.ID] = struct{}{}
		merged = append(merged, rec)
	}

	local, err := h.GetAllRaw(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, rec := range local {
		var p probe
		if err := json.Unmarshal(rec, &p); err != nil || p.ID == "" {
			continue
		}
		if _, ok := seen[p.ID]; !ok {
			merged = append(merged, rec)
		}
	}
	return merged, nil
}

// PullAll fans Pull out across every known data type in batches of
// BatchSize. Two gates protect the backend from rapid triggers (login
// plus navigation): at most one sweep runs at a time, and sweeps closer
// together than MinSyncInterval are skipped. A gated call returns success
// with nothing synced.
func (e *Engine) PullAll(ctx context.Context, userID string) SweepResult {
	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		e.log.Debug(ctx, "pull-all skipped: sync in progress", "userId", userID)
		return SweepResult{Success: true}
	}
	if !e.lastSweep.IsZero() && time.Since(e.lastSweep) < e.opts.MinSyncInterval {
		e.mu.Unlock()
		e.log.Debug(ctx, "pull-all skipped: rate limited", "userId", userID)
		return SweepResult{Success: true}
	}
	e.syncing = true
	e.lastSweep = time.Now()
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	return e.sweep(ctx, func(kind models.Kind) Result {
		return e.Pull(ctx, userID, kind)
	})
}

// PushAll uploads every data type immediately (no debounce, no rate
// gate): it backs an explicit user action, assumed infrequent.
func (e *Engine) PushAll(ctx context.Context, userID string) SweepResult {
	return e.sweep(ctx, func(kind models.Kind) Result {
		return e.pushNow(ctx, userID, kind)
	})
}

// sweep runs op for every kind with bounded concurrency. A single type's
// failure never aborts the others.
func (e *Engine) sweep(ctx context.Context, op func(models.Kind) Result) SweepResult {
	kinds := models.AllKinds()
	results := make([]Result, len(kinds))

	g := &errgroup.Group{}
	g.SetLimit(e.opts.BatchSize)
	for i, kind := range kinds {
		g.Go(func() error {
			results[i] = op(kind)
			return nil
		})
	}
	_ = g.Wait()

	out := SweepResult{Success: true, Errors: make(map[models.Kind]error)}
	for _, r := range results {
		if r.Success && !r.Skipped {
			out.Synced = append(out.Synced, r.Kind)
		}
		if r.Err != nil {
			out.Errors[r.Kind] = r.Err
		}
	}
	return out
}
