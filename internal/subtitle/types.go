package subtitle

import (
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Reader loads the cues of a subtitle file in source order.
type Reader interface {
	Read(path string) ([]Cue, error)
}

// Writer stores cues to a subtitle file.
type Writer interface {
	Write(path string, cues []Cue) error
}

type Format string

const (
	FormatASS Format = "ass"
	FormatSRT Format = "srt"
	FormatSSA Format = "ssa"
)

// Extensions lists recognised subtitle extensions in exact-name matching priority.
var Extensions = []string{".ass", ".srt", ".ssa"}

// FormatOf returns the format for path's extension and false when it is not recognised.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ass":
		return FormatASS, true
	case ".srt":
		return FormatSRT, true
	case ".ssa":
		return FormatSSA, true
	default:
		return "", false
	}
}

// Cue is one timed subtitle entry. End is never before Start.
type Cue struct {
	Index int           `json:"index"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

// Shift moves the cue by offset and clamps it so that 0 <= Start <= End.
func (c Cue) Shift(offset time.Duration) Cue {
	start := max(0, c.Start+offset)
	end := max(start, c.End+offset)
	c.Start = start
	c.End = end
	return c
}

// Seconds converts a float offset in seconds to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// File is a decoded subtitle with its detected language.
type File struct {
	Path     string
	Format   Format
	Language language.Tag
	Cues     []Cue
}
