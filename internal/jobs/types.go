package jobs

import (
	"path/filepath"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// CanTransitionTo reports whether next is a legal successor of s. Items move
// forward only: pending, processing, then completed or error.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusError
	}
	return false
}

type AddRequest struct {
	AnimeFolder    string
	SubtitleFolder string
	// DisplayName defaults to the anime folder's base name.
	DisplayName    string
	SubtitleOffset time.Duration
}

// QueueItem is one folder pair waiting to be mined.
type QueueItem struct {
	ID             string `json:"id"`
	AnimeFolder    string `json:"anime_folder"`
	SubtitleFolder string `json:"subtitle_folder"`
	DisplayName    string `json:"display_name"`
	Status         Status `json:"status"`
	CardsCreated   int    `json:"cards_created"`
	ErrorMessage   string `json:"error_message,omitempty"`
	// SubtitleOffset is in seconds and may be negative.
	SubtitleOffset float64 `json:"subtitle_offset"`

	// Seq orders items by insertion and survives restarts.
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *QueueItem) Offset() time.Duration {
	return time.Duration(i.SubtitleOffset * float64(time.Second))
}

func defaultDisplayName(animeFolder string) string {
	return filepath.Base(filepath.Clean(animeFolder))
}
