package media

import (
	"context"
	"time"
)

// Clip names the files extracted for one card. A name is empty when that
// extraction failed.
type Clip struct {
	Screenshot string `json:"screenshot,omitempty"`
	Audio      string `json:"audio,omitempty"`
}

func (c Clip) HasScreenshot() bool {
	return c.Screenshot != ""
}

// AudioStream is one audio track of a video as reported by ffprobe.
type AudioStream struct {
	Index    int    `json:"index"`
	Language string `json:"language"`
	Title    string `json:"title"`
}

// Operator runs media tools against one video file.
type Operator interface {
	AudioStreams(ctx context.Context) ([]AudioStream, error)
	Screenshot(ctx context.Context, at time.Duration, output string) error
	// AudioClip cuts length from start. A negative stream selects the
	// first audio track.
	AudioClip(ctx context.Context, start, length time.Duration, stream int, output string) error
}

func NewOperator(videoPath string) Operator {
	return NewFfmpeg(videoPath)
}
