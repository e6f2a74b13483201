package jobs

import "context"

// Store persists queue items so the queue survives restarts.
type Store interface {
	LoadItems(ctx context.Context) ([]*QueueItem, error)
	UpsertItem(ctx context.Context, item *QueueItem) error
	DeleteItem(ctx context.Context, id string) error
}
