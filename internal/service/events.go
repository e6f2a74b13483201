package service

import (
	"sync"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
)

// EventHub fans queue events out to subscribers. Slow subscribers miss
// events rather than stall the run.
type EventHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan jobs.Event
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[int]chan jobs.Event)}
}

// Subscribe returns a channel of events and a function that closes it.
func (h *EventHub) Subscribe(buffer int) (<-chan jobs.Event, func()) {
	ch := make(chan jobs.Event, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *EventHub) Publish(event jobs.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
