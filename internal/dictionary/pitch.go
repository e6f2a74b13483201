package dictionary

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/textutil"
)

// PitchAccents maps a written form or a kana reading to its pitch accent
// pattern, e.g. "0" for heiban.
type PitchAccents map[string]string

// LoadPitchAccents reads a Kanjium style pitch accent file.
func LoadPitchAccents(path string) (PitchAccents, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ret, err := ParsePitchAccents(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ret, nil
}

// ParsePitchAccents reads "reading,written,pattern" rows, comma or tab
// separated. The written form and the reading both point at the pattern;
// the first row for a key wins.
func ParsePitchAccents(r io.Reader) (PitchAccents, error) {
	br := bufio.NewReader(r)
	reader := csv.NewReader(br)
	if head, _ := br.Peek(br.Size()); bytes.ContainsRune(firstLine(head), '\t') {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	ret := make(PitchAccents)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 3 {
			continue
		}
		reading := strings.TrimSpace(row[0])
		written := strings.TrimSpace(row[1])
		pattern := strings.TrimSpace(row[2])
		if pattern == "" {
			continue
		}
		for _, key := range []string{written, reading} {
			if _, ok := ret[key]; !ok && key != "" {
				ret[key] = pattern
			}
		}
	}
	return ret, nil
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i]
	}
	return b
}

// Lookup tries the word, then its reading as given and in hiragana.
func (p PitchAccents) Lookup(word, reading string) (string, bool) {
	for _, key := range []string{word, reading, textutil.KatakanaToHiragana(reading)} {
		if key == "" {
			continue
		}
		if pattern, ok := p[key]; ok {
			return pattern, true
		}
	}
	return "", false
}
