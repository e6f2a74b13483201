package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu    sync.Mutex
	items map[string]*QueueItem
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[string]*QueueItem)}
}

func (m *memoryStore) LoadItems(_ context.Context) ([]*QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]*QueueItem, 0, len(m.items))
	for _, item := range m.items {
		ret = append(ret, cloneItem(item))
	}
	return ret, nil
}

func (m *memoryStore) UpsertItem(_ context.Context, item *QueueItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = cloneItem(item)
	return nil
}

func (m *memoryStore) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *memoryStore) get(id string) (*QueueItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	return cloneItem(item), ok
}

func TestQueue_RestoresItemsFromStoreInOrder(t *testing.T) {
	store := newMemoryStore()
	now := time.Now()
	store.items["b"] = &QueueItem{ID: "b", AnimeFolder: "/b", SubtitleFolder: "/b", Status: StatusProcessing, Seq: 2, CreatedAt: now}
	store.items["a"] = &QueueItem{ID: "a", AnimeFolder: "/a", SubtitleFolder: "/a", Status: StatusCompleted, Seq: 1, CreatedAt: now}
	store.items["c"] = &QueueItem{ID: "c", AnimeFolder: "/c", SubtitleFolder: "/c", Status: StatusPending, Seq: 3, CreatedAt: now}
	store.items["x"] = &QueueItem{ID: "x", Status: Status("bogus"), Seq: 4}

	q := NewQueue(store)

	items := q.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	// Interrupted items are not reset.
	assert.Equal(t, StatusProcessing, items[1].Status)
	assert.Equal(t, "c", items[2].ID)

	added := addItem(t, q, "/d")
	assert.Equal(t, int64(4), added.Seq)
}

func TestQueue_PersistsChanges(t *testing.T) {
	store := newMemoryStore()
	q := NewQueue(store)

	item := addItem(t, q, "/a")
	persisted, ok := store.get(item.ID)
	require.True(t, ok)
	assert.Equal(t, StatusPending, persisted.Status)

	_, err := q.start(item.ID)
	require.NoError(t, err)
	_, err = q.complete(item.ID, 7)
	require.NoError(t, err)

	persisted, _ = store.get(item.ID)
	assert.Equal(t, StatusCompleted, persisted.Status)
	assert.Equal(t, 7, persisted.CardsCreated)

	require.NoError(t, q.Remove(item.ID))
	_, ok = store.get(item.ID)
	assert.False(t, ok)
}
