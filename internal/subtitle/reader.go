package subtitle

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/asticode/go-astisub"
)

// FileReader decodes .srt, .ass and .ssa files.
type FileReader struct{}

func NewReader() *FileReader {
	return &FileReader{}
}

// Read returns the cues of path in source order. Failures are *ParseError.
func (r *FileReader) Read(path string) ([]Cue, error) {
	file, err := r.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return file.Cues, nil
}

// ReadFile is Read plus format and detected language.
func (r *FileReader) ReadFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ParseError{Kind: NotFound, Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &ParseError{Kind: NotFound, Path: path, Err: fmt.Errorf("path is a directory")}
	}

	format, ok := FormatOf(path)
	if !ok {
		return nil, &ParseError{Kind: Malformed, Path: path, Err: fmt.Errorf("unsupported subtitle format")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Kind: NotFound, Path: path, Err: err}
	}

	cues, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, &ParseError{Kind: Malformed, Path: path, Err: err}
	}

	return &File{
		Path:     path,
		Format:   format,
		Language: DetectLanguage(cues),
		Cues:     cues,
	}, nil
}

// Decode parses subtitle data of the given format.
func Decode(in io.Reader, format Format) ([]Cue, error) {
	var (
		subs *astisub.Subtitles
		err  error
	)
	switch format {
	case FormatSRT:
		subs, err = astisub.ReadFromSRT(in)
	case FormatASS, FormatSSA:
		subs, err = astisub.ReadFromSSA(in)
	default:
		return nil, fmt.Errorf("unsupported subtitle format %q", format)
	}
	if err != nil {
		return nil, err
	}

	cues := make([]Cue, 0, len(subs.Items))
	for i, item := range subs.Items {
		if item == nil {
			continue
		}
		cue := Cue{
			Index: i + 1,
			Start: item.StartAt,
			End:   item.EndAt,
			Text:  itemText(item),
		}
		if cue.End < cue.Start {
			cue.End = cue.Start
		}
		cues = append(cues, cue)
	}
	return cues, nil
}

func itemText(item *astisub.Item) string {
	lines := make([]string, 0, len(item.Lines))
	for _, line := range item.Lines {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
