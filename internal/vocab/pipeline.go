package vocab

import (
	"context"
	"time"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/subtitle"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/textutil"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/tokenizer"
)

// Entry is one mined word together with the line it was first heard in.
type Entry struct {
	Surface string `json:"surface"`
	Lemma   string `json:"lemma"`
	Reading string `json:"reading"`

	Sentence string `json:"sentence"`
	// Times are in seconds from the start of the video.
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Duration  float64 `json:"duration"`

	ExpressionFurigana string `json:"expression_furigana"`
	SentenceFurigana   string `json:"sentence_furigana"`

	// FrequencyRank is 1 for the most common word, 0 when unranked.
	FrequencyRank int `json:"frequency_rank,omitempty"`
}

// Extractor turns subtitle cues into an ordered, deduplicated word list.
type Extractor struct {
	tokenizer tokenizer.Tokenizer
	reader    subtitle.Reader
	rules     Rules
}

func NewExtractor(tok tokenizer.Tokenizer, reader subtitle.Reader, rules Rules) *Extractor {
	return &Extractor{
		tokenizer: tok,
		reader:    reader,
		rules:     rules,
	}
}

func (e *Extractor) Rules() Rules {
	return e.rules
}

// ExtractFile reads path and extracts its vocabulary. Reader errors are
// returned unchanged so callers can tell a missing file from a broken one.
func (e *Extractor) ExtractFile(ctx context.Context, path string, offset time.Duration) ([]Entry, error) {
	cues, err := e.reader.Read(path)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, cues, offset)
}

// Extract walks cues in order and returns one entry per word the first time
// either its lemma or its surface is seen. Cancellation is checked before
// every cue; on cancellation the entries found so far are returned with the
// context error.
func (e *Extractor) Extract(ctx context.Context, cues []subtitle.Cue, offset time.Duration) ([]Entry, error) {
	seenLemmas := make(map[string]struct{})
	seenSurfaces := make(map[string]struct{})
	ret := make([]Entry, 0)

	for _, cue := range cues {
		if err := ctx.Err(); err != nil {
			return ret, err
		}

		text := textutil.Normalize(cue.Text)
		if text == "" {
			continue
		}
		shifted := cue.Shift(offset)
		start := shifted.Start.Seconds()
		end := shifted.End.Seconds()

		var sentenceFurigana string
		for _, tok := range e.tokenizer.Tokenize(text) {
			if !e.rules.Admit(tok) {
				continue
			}
			lemma := TrimGloss(tok.Lemma)
			if lemma == "" {
				lemma = tok.Surface
			}
			_, lemmaSeen := seenLemmas[lemma]
			_, surfaceSeen := seenSurfaces[tok.Surface]
			if lemmaSeen || surfaceSeen {
				continue
			}
			seenLemmas[lemma] = struct{}{}
			seenSurfaces[tok.Surface] = struct{}{}

			reading := tok.Reading
			if reading == "" {
				reading = tok.Surface
			}
			if sentenceFurigana == "" {
				sentenceFurigana = Annotate(text, e.tokenizer)
			}

			ret = append(ret, Entry{
				Surface:            tok.Surface,
				Lemma:              lemma,
				Reading:            reading,
				Sentence:           text,
				StartTime:          start,
				EndTime:            end,
				Duration:           end - start,
				ExpressionFurigana: Annotate(lemma, e.tokenizer),
				SentenceFurigana:   sentenceFurigana,
			})
		}
	}
	return ret, nil
}
