package service

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/library"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/media"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/persistence"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
)

// CardSink stores mined words and reports how many were new.
type CardSink interface {
	CreateCards(ctx context.Context, cards []persistence.Card) (int, error)
}

// StatsSink records per-episode statistics.
type StatsSink interface {
	RecordSession(ctx context.Context, session persistence.MiningSession) (int64, error)
	RecordDifficulty(ctx context.Context, seriesName, episodeName string, totalWords, unknownWords int) error
}

// KnownWordStore is the vocabulary the user already knows.
type KnownWordStore interface {
	KnownWords(ctx context.Context) (vocab.WordSet, error)
	AddKnownWords(ctx context.Context, words []string, source string) (int, error)
}

// MediaExtractor cuts a screenshot and audio clip per entry, in entry order.
type MediaExtractor interface {
	ExtractClips(ctx context.Context, videoPath string, entries []vocab.Entry) ([]media.Clip, error)
}

// Dictionary returns the senses of a word, none when it is unknown.
type Dictionary interface {
	Lookup(ctx context.Context, word string) ([]string, error)
}

// PitchLookup finds the pitch accent pattern of a word or its reading.
type PitchLookup interface {
	Lookup(word, reading string) (string, bool)
}

// Settings control filtering after extraction. A MaxFrequencyRank of 0
// keeps words of any rank.
type Settings struct {
	Rules                vocab.Rules
	DeduplicateSentences bool
	UseKnownWords        bool
	ExpectedLanguage     language.Tag
	MaxFrequencyRank     int
}

// Outcome is the result of mining one pair. Entries are the words that
// survived every filter, whether or not they were stored.
type Outcome struct {
	Pair     library.FilePair   `json:"pair"`
	Result   jobs.EpisodeResult `json:"result"`
	Entries  []vocab.Entry      `json:"entries"`
	Language language.Tag       `json:"language"`
	Preview  bool               `json:"preview"`
}

// FolderOutcome collects the episodes of one folder run. Err is set on
// episodes that failed; the others were mined.
type FolderOutcome struct {
	Episodes   []EpisodeOutcome `json:"episodes"`
	TotalCards int              `json:"total_cards"`
	Unpaired   library.Unpaired `json:"unpaired"`
}

type EpisodeOutcome struct {
	Outcome
	Err error `json:"-"`
}

func (f FolderOutcome) Failed() int {
	n := 0
	for _, ep := range f.Episodes {
		if ep.Err != nil {
			n++
		}
	}
	return n
}

// SeriesName is the show title from tvshow.nfo, or the folder holding the
// video.
func SeriesName(pair library.FilePair) string {
	return library.SeriesTitle(filepath.Dir(pair.Video))
}

// EpisodeName is the video file name without its extension.
func EpisodeName(pair library.FilePair) string {
	name := filepath.Base(pair.Video)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
