package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

var (
	ErrItemNotFound      = errors.New("queue item not found")
	ErrItemBusy          = errors.New("queue item is processing")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Queue keeps items in insertion order. Readers get copies; only the runner
// moves items between statuses.
type Queue struct {
	store Store

	mu      sync.RWMutex
	items   []*QueueItem
	index   map[string]*QueueItem
	nextSeq int64
}

func NewQueue(store Store) *Queue {
	q := &Queue{
		store: store,
		items: make([]*QueueItem, 0),
		index: make(map[string]*QueueItem),
	}
	q.hydrateFromStore(context.Background())
	return q
}

func (q *Queue) Add(req AddRequest) (*QueueItem, error) {
	anime := strings.TrimSpace(req.AnimeFolder)
	subs := strings.TrimSpace(req.SubtitleFolder)
	if anime == "" || subs == "" {
		return nil, apperror.New(apperror.ErrValidation, "anime folder and subtitle folder are required")
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = defaultDisplayName(anime)
	}

	now := time.Now()
	q.mu.Lock()
	q.nextSeq++
	item := &QueueItem{
		ID:             uuid.NewString(),
		AnimeFolder:    anime,
		SubtitleFolder: subs,
		DisplayName:    name,
		Status:         StatusPending,
		SubtitleOffset: req.SubtitleOffset.Seconds(),
		Seq:            q.nextSeq,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	q.appendLocked(item)
	snapshot := cloneItem(item)
	q.mu.Unlock()

	q.persistItem(snapshot)
	return snapshot, nil
}

// Requeue appends a fresh pending copy of a finished or interrupted item.
// The original keeps its status.
func (q *Queue) Requeue(id string) (*QueueItem, error) {
	q.mu.RLock()
	item, ok := q.index[id]
	var req AddRequest
	var status Status
	if ok {
		status = item.Status
		req = AddRequest{
			AnimeFolder:    item.AnimeFolder,
			SubtitleFolder: item.SubtitleFolder,
			DisplayName:    item.DisplayName,
			SubtitleOffset: item.Offset(),
		}
	}
	q.mu.RUnlock()

	if !ok {
		return nil, ErrItemNotFound
	}
	if status == StatusPending {
		return nil, apperror.New(apperror.ErrValidation, "item is already pending").WithContext("id", id)
	}
	return q.Add(req)
}

func (q *Queue) Get(id string) (*QueueItem, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	item, ok := q.index[id]
	if !ok {
		return nil, false
	}
	return cloneItem(item), true
}

// Items returns a snapshot of all items in insertion order.
func (q *Queue) Items() []*QueueItem {
	q.mu.RLock()
	defer q.mu.RUnlock()

	ret := make([]*QueueItem, 0, len(q.items))
	for _, item := range q.items {
		ret = append(ret, cloneItem(item))
	}
	return ret
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

func (q *Queue) Counts() map[Status]int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	ret := map[Status]int{
		StatusPending:    0,
		StatusProcessing: 0,
		StatusCompleted:  0,
		StatusError:      0,
	}
	for _, item := range q.items {
		ret[item.Status]++
	}
	return ret
}

// NextPending returns the earliest pending item.
func (q *Queue) NextPending() (*QueueItem, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, item := range q.items {
		if item.Status == StatusPending {
			return cloneItem(item), true
		}
	}
	return nil, false
}

// Remove deletes an item. Items being processed cannot be removed.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	item, ok := q.index[id]
	if !ok {
		q.mu.Unlock()
		return ErrItemNotFound
	}
	if item.Status == StatusProcessing {
		q.mu.Unlock()
		return ErrItemBusy
	}
	q.removeLocked(id)
	q.mu.Unlock()

	q.deleteFromStore(id)
	return nil
}

// Clear removes every item that is not processing and returns how many
// were removed.
func (q *Queue) Clear() int {
	q.mu.Lock()
	removed := make([]string, 0, len(q.items))
	kept := make([]*QueueItem, 0)
	for _, item := range q.items {
		if item.Status == StatusProcessing {
			kept = append(kept, item)
			continue
		}
		removed = append(removed, item.ID)
		delete(q.index, item.ID)
	}
	q.items = kept
	q.mu.Unlock()

	for _, id := range removed {
		q.deleteFromStore(id)
	}
	return len(removed)
}

func (q *Queue) start(id string) (*QueueItem, error) {
	return q.transition(id, StatusProcessing, func(item *QueueItem) {
		item.CardsCreated = 0
		item.ErrorMessage = ""
	})
}

func (q *Queue) complete(id string, cards int) (*QueueItem, error) {
	return q.transition(id, StatusCompleted, func(item *QueueItem) {
		item.CardsCreated = cards
	})
}

func (q *Queue) fail(id string, cards int, message string) (*QueueItem, error) {
	return q.transition(id, StatusError, func(item *QueueItem) {
		item.CardsCreated = cards
		item.ErrorMessage = message
	})
}

func (q *Queue) transition(id string, next Status, apply func(*QueueItem)) (*QueueItem, error) {
	q.mu.Lock()
	item, ok := q.index[id]
	if !ok {
		q.mu.Unlock()
		return nil, ErrItemNotFound
	}
	if !item.Status.CanTransitionTo(next) {
		from := item.Status
		q.mu.Unlock()
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
	}
	item.Status = next
	if apply != nil {
		apply(item)
	}
	item.UpdatedAt = time.Now()
	snapshot := cloneItem(item)
	q.mu.Unlock()

	q.persistItem(snapshot)
	return snapshot, nil
}

func (q *Queue) appendLocked(item *QueueItem) {
	q.items = append(q.items, item)
	q.index[item.ID] = item
}

func (q *Queue) removeLocked(id string) {
	delete(q.index, id)
	for i, item := range q.items {
		if item.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// hydrateFromStore restores items as persisted. An item left processing by
// an interrupted run stays processing; Requeue gives it a new pending copy.
func (q *Queue) hydrateFromStore(ctx context.Context) {
	if q.store == nil {
		return
	}
	loaded, err := q.store.LoadItems(ctx)
	if err != nil {
		log.Error("Failed to load queue items from store: %v", err)
		return
	}

	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].Seq < loaded[j].Seq
	})

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, raw := range loaded {
		if raw == nil || raw.ID == "" || !raw.Status.Valid() {
			continue
		}
		if _, dup := q.index[raw.ID]; dup {
			continue
		}
		q.appendLocked(cloneItem(raw))
		if raw.Seq > q.nextSeq {
			q.nextSeq = raw.Seq
		}
	}
}

func (q *Queue) persistItem(item *QueueItem) {
	if q.store == nil || item == nil {
		return
	}
	if err := q.store.UpsertItem(context.Background(), item); err != nil {
		log.Error("Failed to persist queue item %s: %v", item.ID, err)
	}
}

func (q *Queue) deleteFromStore(id string) {
	if q.store == nil {
		return
	}
	if err := q.store.DeleteItem(context.Background(), id); err != nil {
		log.Error("Failed to delete queue item %s from store: %v", id, err)
	}
}

func cloneItem(item *QueueItem) *QueueItem {
	if item == nil {
		return nil
	}
	tmp := *item
	return &tmp
}
