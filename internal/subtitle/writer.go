package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astisub"
)

// SRTWriter writes cues as SubRip.
type SRTWriter struct{}

func NewWriter() *SRTWriter {
	return &SRTWriter{}
}

// Write replaces path atomically with cues rendered as SRT.
func (w *SRTWriter) Write(path string, cues []Cue) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path is required")
	}

	subs := astisub.NewSubtitles()
	for i, cue := range cues {
		item := &astisub.Item{
			Index:   i + 1,
			StartAt: cue.Start,
			EndAt:   cue.End,
		}
		for _, line := range strings.Split(cue.Text, "\n") {
			item.Lines = append(item.Lines, astisub.Line{
				Items: []astisub.LineItem{{Text: line}},
			})
		}
		subs.Items = append(subs.Items, item)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := subs.WriteToSRT(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write srt: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
