package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/masonlet/starlet-setup/internal/foundation/errors"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_RecordAndGet(t *testing.T) {
	store := newStore(t)
	started := time.UnixMilli(time.Now().UnixMilli())
	run := Run{
		ID:        "0b4c3a52-8d0e-4a43-9a43-5a2bb0e8f6f1",
		Mode:      "batch",
		Target:    "masonlet/starlet-samples",
		Modules:   []string{"starlet-math", "starlet-logger", "starlet-samples"},
		BuildPath: "/work/build-batch/build",
		BuildType: "Debug",
		Status:    StatusSucceeded,
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
	}
	require.NoError(t, store.Record(t.Context(), run))

	got, err := store.Get(t.Context(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, *got)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	_, err := newStore(t).Get(t.Context(), "nope")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryHistory))
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := newStore(t)
	base := time.Now()
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, store.Record(t.Context(), Run{
			ID:        id,
			Mode:      "single",
			Target:    "masonlet/task-tracker",
			Status:    StatusFailed,
			ExitCode:  4,
			Error:     "clone failed",
			StartedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	runs, err := store.List(t.Context(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)
	assert.Nil(t, runs[0].Modules)

	all, err := store.List(t.Context(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteStore_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(t.Context(), Run{ID: "a", Mode: "single", Target: "x/y", Status: StatusSucceeded, StartedAt: time.Now()}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	runs, err := reopened.List(t.Context(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
