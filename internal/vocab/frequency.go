package vocab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FrequencyList maps a word to its frequency rank, 1 being the most common.
type FrequencyList map[string]int

// LoadFrequencyList reads a frequency list CSV file. See ParseFrequencyList.
func LoadFrequencyList(path string) (FrequencyList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ret, err := ParseFrequencyList(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ret, nil
}

// ParseFrequencyList reads "rank,word" or "word,rank" rows; the order is
// decided per row by which column is numeric. Rows that have neither, such
// as a header, are skipped. The first rank seen for a word wins.
func ParseFrequencyList(r io.Reader) (FrequencyList, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	ret := make(FrequencyList)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 2 {
			continue
		}
		first := strings.TrimSpace(strings.TrimPrefix(row[0], "\ufeff"))
		second := strings.TrimSpace(row[1])

		word, rankText := second, first
		if _, err := strconv.Atoi(first); err != nil {
			word, rankText = first, second
		}
		rank, err := strconv.Atoi(rankText)
		if err != nil || rank < 1 || word == "" {
			continue
		}
		if _, ok := ret[word]; !ok {
			ret[word] = rank
		}
	}
	return ret, nil
}

func (f FrequencyList) Rank(word string) (int, bool) {
	rank, ok := f[word]
	return rank, ok
}

// AttachFrequency sets the rank of every entry from its lemma and returns
// how many were ranked.
func AttachFrequency(entries []Entry, ranks FrequencyList) int {
	ranked := 0
	for i := range entries {
		if rank, ok := ranks.Rank(entries[i].Lemma); ok {
			entries[i].FrequencyRank = rank
			ranked++
		}
	}
	return ranked
}

// FilterByFrequency keeps entries ranked within maxRank. Unranked entries
// are always kept and a maxRank of 0 keeps everything.
func FilterByFrequency(entries []Entry, maxRank int) []Entry {
	if maxRank <= 0 {
		return entries
	}
	ret := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.FrequencyRank == 0 || e.FrequencyRank <= maxRank {
			ret = append(ret, e)
		}
	}
	return ret
}
