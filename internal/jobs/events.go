package jobs

import "time"

type EventType string

const (
	EventItemStarted    EventType = "item_started"
	EventItemCompleted  EventType = "item_completed"
	EventItemFailed     EventType = "item_failed"
	EventQueueFinished  EventType = "queue_finished"
	EventQueueCancelled EventType = "queue_cancelled"
)

// Event reports one step of a queue run. Item fields are set for item
// events, totals for queue events.
type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`

	ItemID       string `json:"item_id,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	CardsCreated int    `json:"cards_created,omitempty"`
	Error        string `json:"error,omitempty"`

	Completed  int `json:"completed,omitempty"`
	Failed     int `json:"failed,omitempty"`
	TotalCards int `json:"total_cards,omitempty"`
}

// ProgressReporter receives coarse progress for a whole run: one OnStart,
// any number of OnProgress and OnError calls, then OnComplete unless the run
// was cancelled.
type ProgressReporter interface {
	OnStart(total int, description string)
	OnProgress(current int, description string)
	OnComplete()
	OnError(description, message string)
}

type nopReporter struct{}

func (nopReporter) OnStart(int, string)    {}
func (nopReporter) OnProgress(int, string) {}
func (nopReporter) OnComplete()            {}
func (nopReporter) OnError(string, string) {}

// NopReporter discards progress.
func NopReporter() ProgressReporter {
	return nopReporter{}
}
