package syncx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/localstore"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRemote records calls and fails on a script. Errors are consumed in
// order; once the script is exhausted, calls succeed.
type stubRemote struct {
	mu         sync.Mutex
	rows       map[string][]json.RawMessage
	fetches    int
	upserts    int
	fetchErrs  []error
	upsertErrs []error
	offline    bool
}

func newStubRemote() *stubRemote {
	return &stubRemote{rows: make(map[string][]json.RawMessage)}
}

func rowKeyOf(userID string, kind models.Kind) string {
	return userID + "|" + string(kind)
}

func (s *stubRemote) FetchRow(_ context.Context, userID string, kind models.Kind) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if len(s.fetchErrs) > 0 {
		err := s.fetchErrs[0]
		s.fetchErrs = s.fetchErrs[1:]
		return nil, err
	}
	return s.rows[rowKeyOf(userID, kind)], nil
}

func (s *stubRemote) UpsertRow(_ context.Context, userID string, kind models.Kind, records []json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if len(s.upsertErrs) > 0 {
		err := s.upsertErrs[0]
		s.upsertErrs = s.upsertErrs[1:]
		return err
	}
	s.rows[rowKeyOf(userID, kind)] = records
	return nil
}

func (s *stubRemote) Available() bool { return !s.offline }

func (s *stubRemote) counts() (fetches, upserts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches, s.upserts
}

func transientErr(op string) error {
	return &remote.Error{Kind: remote.FailureTransient, Op: op, Err: errors.New("conn reset")}
}

func permanentErr(op string) error {
	return &remote.Error{Kind: remote.FailurePermanent, Op: op, Err: errors.New("access denied")}
}

func fastOpts() Options {
	return Options{
		DebounceDelay:   20 * time.Millisecond,
		MaxRetries:      2,
		RetryBase:       time.Millisecond,
		MinSyncInterval: time.Minute,
		BatchSize:       4,
	}
}

func setupEngine(t *testing.T, rem remote.Store) (*Engine, *localstore.Store) {
	t.Helper()
	store := localstore.New(t.TempDir(), nil)
	t.Cleanup(func() { store.EvictCache() })
	return New(store, rem, nil, fastOpts()), store
}

func seedHabit(t *testing.T, store *localstore.Store, userID, id, name string) {
	t.Helper()
	h, err := store.Open(context.Background(), userID)
	require.NoError(t, err)

	existing, err := h.GetAllRaw(context.Background(), models.KindHabits)
	require.NoError(t, err)
	rec := json.RawMessage(fmt.Sprintf(`{"id":%q,"name":%q}`, id, name))
	require.NoError(t, h.ReplaceAllRaw(context.Background(), models.KindHabits, append(existing, rec)))
}

func TestPush_DebounceCoalescesBursts(t *testing.T) {
	rem := newStubRemote()
	e, store := setupEngine(t, rem)

	seedHabit(t, store, "u1", "h1", "Read")
	d1 := e.Push("u1", models.KindHabits)
	seedHabit(t, store, "u1", "h2", "Run")
	d2 := e.Push("u1", models.KindHabits)

	r1 := <-d1
	assert.True(t, r1.Success)
	assert.True(t, r1.Skipped, "superseded push resolves without uploading")

	r2 := <-d2
	require.NoError(t, r2.Err)
	assert.True(t, r2.Success)
	assert.False(t, r2.Skipped)

	_, upserts := rem.counts()
	assert.Equal(t, 1, upserts, "burst collapses to one upload")

	// the single upload carried the final table state
	require.Len(t, rem.rows[rowKeyOf("u1", models.KindHabits)], 2)
}

func TestPush_SupersededAtTimerFireResolvesOnce(t *testing.T) {
	rem := newStubRemote()
	store := localstore.New(t.TempDir(), nil)
	t.Cleanup(func() { store.EvictCache() })

	opts := fastOpts()
	// Shrink the window so the superseding Push lands right around the
	// moment the timer fires.
	opts.DebounceDelay = 50 * time.Microsecond
	e := New(store, rem, nil, opts)

	seedHabit(t, store, "u1", "h1", "Read")

	for i := 0; i < 200; i++ {
		first := e.Push("u1", models.KindHabits)
		time.Sleep(opts.DebounceDelay)
		second := e.Push("u1", models.KindHabits)

		r2 := <-second
		require.NoError(t, r2.Err)
		require.True(t, r2.Success)

		r1 := <-first
		require.True(t, r1.Success)

		select {
		case extra := <-first:
			t.Fatalf("iteration %d: superseded channel delivered a second result %+v (first was %+v)", i, extra, r1)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestPush_DifferentKindsDoNotCoalesce(t *testing.T) {
	rem := newStubRemote()
	e, store := setupEngine(t, rem)
	seedHabit(t, store, "u1", "h1", "Read")

	d1 := e.Push("u1", models.KindHabits)
	d2 := e.Push("u1", models.KindTasks)

	r1, r2 := <-d1, <-d2
	assert.False(t, r1.Skipped)
	assert.False(t, r2.Skipped)

	_, upserts := rem.counts()
	assert.Equal(t, 2, upserts)
}

func TestPushImmediate_UploadsWithoutDelay(t *testing.T) {
	rem := newStubRemote()
	e, store := setupEngine(t, rem)
	seedHabit(t, store, "u1", "h1", "Read")

	res := e.PushImmediate(context.Background(), "u1", models.KindHabits)
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	require.Len(t, rem.rows[rowKeyOf("u1", models.KindHabits)], 1)
}

func TestPush_NoBackendIsSilentSuccess(t *testing.T) {
	e, _ := setupEngine(t, nil)

	res := <-e.Push("u1", models.KindHabits)
	assert.True(t, res.Success)
	assert.True(t, res.Skipped)
	assert.NoError(t, res.Err)
}

func TestPush_OfflineBackendIsSilentSuccess(t *testing.T) {
	rem := newStubRemote()
	rem.offline = true
	e, _ := setupEngine(t, rem)

	res := e.PushImmediate(context.Background(), "u1", models.KindHabits)
	assert.True(t, res.Success)
	assert.True(t, res.Skipped)

	fetches, upserts := rem.counts()
	assert.Zero(t, fetches)
	assert.Zero(t, upserts)
}

func TestPushImmediate_RetriesTransientThenSucceeds(t *testing.T) {
	rem := newStubRemote()
	rem.upsertErrs = []error{transientErr("upsert"), transientErr("upsert")}
	e, store := setupEngine(t, rem)
	seedHabit(t, store, "u1", "h1", "Read")

	res := e.PushImmediate(context.Background(), "u1", models.KindHabits)
	require.NoError(t, res.Err)
	assert.True(t, res.Success)

	_, upserts := rem.counts()
	assert.Equal(t, 3, upserts)
}

func TestPushImmediate_GivesUpAfterMaxRetries(t *testing.T) {
	rem := newStubRemote()
	// MaxRetries=2 means three attempts total; script one more failure
	// than the budget allows
	rem.upsertErrs = []error{transientErr("upsert"), transientErr("upsert"), transientErr("upsert")}
	e, store := setupEngine(t, rem)
	seedHabit(t, store, "u1", "h1", "Read")

	res := e.PushImmediate(context.Background(), "u1", models.KindHabits)
	assert.False(t, res.Success)
	assert.True(t, remote.IsTransient(res.Err))

	_, upserts := rem.counts()
	assert.Equal(t, 3, upserts)
}

func TestPushImmediate_PermanentFailureIsNotRetried(t *testing.T) {
	rem := newStubRemote()
	rem.upsertErrs = []error{permanentErr("upsert")}
	e, store := setupEngine(t, rem)
	seedHabit(t, store, "u1", "h1", "Read")

	res := e.PushImmediate(context.Background(), "u1", models.KindHabits)
	assert.False(t, res.Success)
	assert.True(t, remote.IsPermanent(res.Err))

	_, upserts := rem.counts()
	assert.Equal(t, 1, upserts)
}

func TestPull_RemoteWinsByIDLocalOnlyPreserved(t *testing.T) {
	rem := newStubRemote()
	e, store := setupEngine(t, rem)
	ctx := context.Background()

	seedHabit(t, store, "u1", "a", "Read (local)")
	seedHabit(t, store, "u1", "b", "Run")
	rem.rows[rowKeyOf("u1", models.KindHabits)] = []json.RawMessage{
		json.RawMessage(`{"id":"a","name":"Read (remote)"}`),
		json.RawMessage(`{"id":"c","name":"Meditate"}`),
	}

	res := e.Pull(ctx, "u1", models.KindHabits)
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.False(t, res.Skipped)

	h, err := store.Open(ctx, "u1")
	require.NoError(t, err)
	got, err := h.GetAllRaw(ctx, models.KindHabits)
	require.NoError(t, err)
	require.Len(t, got, 3)

	byID := make(map[string]string)
	for _, rec := range got {
		var p struct{ ID, Name string }
		require.NoError(t, json.Unmarshal(rec, &p))
		byID[p.ID] = p.Name
	}
	assert.Equal(t, "Read (remote)", byID["a"], "remote version wins for shared ids")
	assert.Equal(t, "Run", byID["b"], "local-only record survives")
	assert.Equal(t, "Meditate", byID["c"])
}

func TestPull_IntoEmptyLocal(t *testing.T) {
	rem := newStubRemote()
	rem.rows[rowKeyOf("u1", models.KindHabits)] = []json.RawMessage{json.RawMessage(`{"id":"h1"}`)}
	e, store := setupEngine(t, rem)
	ctx := context.Background()

	res := e.Pull(ctx, "u1", models.KindHabits)
	require.NoError(t, res.Err)

	h, err := store.Open(ctx, "u1")
	require.NoError(t, err)
	n, err := h.CountRaw(ctx, models.KindHabits)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPull_RemoteFailureLeavesLocalUntouched(t *testing.T) {
	rem := newStubRemote()
	rem.fetchErrs = []error{permanentErr("fetch")}
	e, store := setupEngine(t, rem)
	ctx := context.Background()

	seedHabit(t, store, "u1", "h1", "Read")

	res := e.Pull(ctx, "u1", models.KindHabits)
	assert.True(t, res.Success, "offline pull degrades to a no-op, not a failure")
	assert.True(t, res.Skipped)
	assert.Error(t, res.Err)

	h, err := store.Open(ctx, "u1")
	require.NoError(t, err)
	n, err := h.CountRaw(ctx, models.KindHabits)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPull_MalformedRemoteRecordIsDiscarded(t *testing.T) {
	rem := newStubRemote()
	rem.rows[rowKeyOf("u1", models.KindHabits)] = []json.RawMessage{json.RawMessage(`{"name":"no id"}`)}
	e, store := setupEngine(t, rem)
	ctx := context.Background()

	seedHabit(t, store, "u1", "h1", "Read")

	res := e.Pull(ctx, "u1", models.KindHabits)
	assert.True(t, res.Success)
	assert.True(t, res.Skipped)
	assert.Error(t, res.Err)

	h, err := store.Open(ctx, "u1")
	require.NoError(t, err)
	n, err := h.CountRaw(ctx, models.KindHabits)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "local table untouched by a bad remote row")
}

func TestPullAll_SweepsEveryKind(t *testing.T) {
	rem := newStubRemote()
	e, _ := setupEngine(t, rem)

	res := e.PullAll(context.Background(), "u1")
	assert.True(t, res.Success)
	assert.Len(t, res.Synced, len(models.AllKinds()))
	assert.Empty(t, res.Errors)

	fetches, _ := rem.counts()
	assert.Equal(t, len(models.AllKinds()), fetches)
}

func TestPullAll_RateLimited(t *testing.T) {
	rem := newStubRemote()
	e, _ := setupEngine(t, rem)
	ctx := context.Background()

	first := e.PullAll(ctx, "u1")
	require.True(t, first.Success)
	fetchesAfterFirst, _ := rem.counts()

	second := e.PullAll(ctx, "u1")
	assert.True(t, second.Success, "gated sweep still reports success")
	assert.Empty(t, second.Synced)

	fetches, _ := rem.counts()
	assert.Equal(t, fetchesAfterFirst, fetches, "gated sweep makes no remote calls")
}

func TestPush_NewExpenseReachesRemoteAfterDebounce(t *testing.T) {
	rem := newStubRemote()
	e, store := setupEngine(t, rem)
	ctx := context.Background()

	h, err := store.Open(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, h.ReplaceAllRaw(ctx, models.KindExpenses, []json.RawMessage{
		json.RawMessage(`{"id":"e1","amount":100,"date":"2024-01-01"}`),
	}))

	res := <-e.Push("u1", models.KindExpenses)
	require.NoError(t, res.Err)

	row := rem.rows[rowKeyOf("u1", models.KindExpenses)]
	require.Len(t, row, 1)
	assert.JSONEq(t, `{"id":"e1","amount":100,"date":"2024-01-01"}`, string(row[0]))
}

func TestPull_NoBackendIsSilentSuccess(t *testing.T) {
	e, _ := setupEngine(t, nil)

	res := e.Pull(context.Background(), "u1", models.KindHabits)
	assert.True(t, res.Success)
	assert.True(t, res.Skipped)
	assert.NoError(t, res.Err)
}

func TestPushAll_IsNotRateLimited(t *testing.T) {
	rem := newStubRemote()
	e, _ := setupEngine(t, rem)
	ctx := context.Background()

	require.True(t, e.PushAll(ctx, "u1").Success)
	require.True(t, e.PushAll(ctx, "u1").Success)

	_, upserts := rem.counts()
	assert.Equal(t, 2*len(models.AllKinds()), upserts)
}

func TestPullAll_NoBackendIsSilentSuccess(t *testing.T) {
	e, _ := setupEngine(t, nil)

	res := e.PullAll(context.Background(), "u1")
	assert.True(t, res.Success)
	assert.Empty(t, res.Synced)
	assert.Empty(t, res.Errors)
}
