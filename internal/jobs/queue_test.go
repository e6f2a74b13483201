package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
)

func addItem(t *testing.T, q *Queue, anime string) *QueueItem {
	t.Helper()
	item, err := q.Add(AddRequest{AnimeFolder: anime, SubtitleFolder: anime + "/subs"})
	require.NoError(t, err)
	return item
}

func TestQueue_Add(t *testing.T) {
	q := NewQueue(nil)

	item, err := q.Add(AddRequest{
		AnimeFolder:    "/anime/Frieren/",
		SubtitleFolder: "/subs/Frieren",
		SubtitleOffset: -1500 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Frieren", item.DisplayName)
	assert.Equal(t, StatusPending, item.Status)
	assert.Equal(t, -1.5, item.SubtitleOffset)
	assert.Equal(t, -1500*time.Millisecond, item.Offset())

	named, err := q.Add(AddRequest{AnimeFolder: "/a", SubtitleFolder: "/b", DisplayName: "Custom"})
	require.NoError(t, err)
	assert.Equal(t, "Custom", named.DisplayName)
	assert.NotEqual(t, item.ID, named.ID)
	assert.Greater(t, named.Seq, item.Seq)

	_, err = q.Add(AddRequest{AnimeFolder: " ", SubtitleFolder: "/b"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.ErrValidation))
}

func TestQueue_PreservesInsertionOrder(t *testing.T) {
	q := NewQueue(nil)
	a := addItem(t, q, "/a")
	b := addItem(t, q, "/b")
	c := addItem(t, q, "/c")

	ids := func() []string {
		ret := []string{}
		for _, item := range q.Items() {
			ret = append(ret, item.ID)
		}
		return ret
	}
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids())

	require.NoError(t, q.Remove(b.ID))
	assert.Equal(t, []string{a.ID, c.ID}, ids())
	assert.ErrorIs(t, q.Remove(b.ID), ErrItemNotFound)
}

func TestQueue_SnapshotsAreCopies(t *testing.T) {
	q := NewQueue(nil)
	item := addItem(t, q, "/a")

	item.Status = StatusCompleted
	q.Items()[0].DisplayName = "changed"

	got, ok := q.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "a", got.DisplayName)
}

func TestQueue_Transitions(t *testing.T) {
	q := NewQueue(nil)
	item := addItem(t, q, "/a")

	_, err := q.complete(item.ID, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)

	started, err := q.start(item.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, started.Status)

	_, err = q.start(item.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	failed, err := q.fail(item.ID, 2, "boom")
	require.NoError(t, err)
	assert.Equal(t, StatusError, failed.Status)
	assert.Equal(t, 2, failed.CardsCreated)
	assert.Equal(t, "boom", failed.ErrorMessage)

	_, err = q.complete(item.ID, 3)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = q.start("missing")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusProcessing))
	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusError))
	assert.False(t, StatusProcessing.CanTransitionTo(StatusPending))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusPending))
	assert.False(t, StatusError.CanTransitionTo(StatusProcessing))
	assert.True(t, StatusError.Terminal())
	assert.False(t, Status("bogus").Valid())
}

func TestQueue_RemoveAndClearSkipProcessing(t *testing.T) {
	q := NewQueue(nil)
	a := addItem(t, q, "/a")
	addItem(t, q, "/b")
	addItem(t, q, "/c")

	_, err := q.start(a.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, q.Remove(a.ID), ErrItemBusy)

	assert.Equal(t, 2, q.Clear())
	items := q.Items()
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)
}

func TestQueue_NextPendingAndCounts(t *testing.T) {
	q := NewQueue(nil)
	a := addItem(t, q, "/a")
	b := addItem(t, q, "/b")

	next, ok := q.NextPending()
	require.True(t, ok)
	assert.Equal(t, a.ID, next.ID)

	_, err := q.start(a.ID)
	require.NoError(t, err)
	next, ok = q.NextPending()
	require.True(t, ok)
	assert.Equal(t, b.ID, next.ID)

	counts := q.Counts()
	assert.Equal(t, 1, counts[StatusPending])
	assert.Equal(t, 1, counts[StatusProcessing])
	assert.Equal(t, 0, counts[StatusCompleted])
}

func TestQueue_Requeue(t *testing.T) {
	q := NewQueue(nil)
	item, err := q.Add(AddRequest{AnimeFolder: "/a", SubtitleFolder: "/s", DisplayName: "A", SubtitleOffset: time.Second})
	require.NoError(t, err)

	_, err = q.Requeue(item.ID)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.ErrValidation))

	_, err = q.start(item.ID)
	require.NoError(t, err)
	_, err = q.fail(item.ID, 0, "boom")
	require.NoError(t, err)

	copied, err := q.Requeue(item.ID)
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, copied.ID)
	assert.Equal(t, StatusPending, copied.Status)
	assert.Equal(t, "A", copied.DisplayName)
	assert.Equal(t, time.Second, copied.Offset())

	original, _ := q.Get(item.ID)
	assert.Equal(t, StatusError, original.Status)

	_, err = q.Requeue("missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
