package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "miner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_QueueItemsRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	second := &jobs.QueueItem{
		ID:             "b",
		Seq:            2,
		AnimeFolder:    "/anime/b",
		SubtitleFolder: "/subs/b",
		DisplayName:    "B",
		Status:         jobs.StatusPending,
		SubtitleOffset: -1.25,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	first := &jobs.QueueItem{
		ID:             "a",
		Seq:            1,
		AnimeFolder:    "/anime/a",
		SubtitleFolder: "/subs/a",
		DisplayName:    "A",
		Status:         jobs.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, store.UpsertItem(ctx, second))
	require.NoError(t, store.UpsertItem(ctx, first))

	first.Status = jobs.StatusError
	first.CardsCreated = 3
	first.ErrorMessage = "boom"
	require.NoError(t, store.UpsertItem(ctx, first))

	items, err := store.LoadItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, jobs.StatusError, items[0].Status)
	assert.Equal(t, 3, items[0].CardsCreated)
	assert.Equal(t, "boom", items[0].ErrorMessage)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, -1.25, items[1].SubtitleOffset)
	assert.True(t, now.Equal(items[1].CreatedAt))

	require.NoError(t, store.DeleteItem(ctx, "a"))
	items, err = store.LoadItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestSQLiteStore_QueueSurvivesReopen(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "miner.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	q := jobs.NewQueue(store)
	item, err := q.Add(jobs.AddRequest{AnimeFolder: "/anime/a", SubtitleFolder: "/subs/a"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	restored := jobs.NewQueue(reopened)
	got, ok := restored.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, "a", got.DisplayName)
	assert.Equal(t, jobs.StatusPending, got.Status)
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(" ")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.ErrStore))
}

func TestMigrationVersion(t *testing.T) {
	assert.Equal(t, 1, migrationVersion("001_init.sql"))
	assert.Equal(t, 12, migrationVersion("12"))
	assert.Equal(t, 0, migrationVersion("init.sql"))
}
