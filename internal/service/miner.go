package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/config"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/dictionary"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/library"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/media"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/persistence"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/subtitle"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/tokenizer"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

// SettingsFromConfig builds miner settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Rules:                cfg.Mining.Rules(),
		DeduplicateSentences: cfg.Mining.DeduplicateSentences,
		UseKnownWords:        cfg.Mining.UseKnownWords,
		ExpectedLanguage:     cfg.Mining.ExpectedLanguage,
		MaxFrequencyRank:     cfg.Mining.MaxFrequencyRank,
	}
}

// WithRuntime returns s with the runtime-editable fields replaced.
func (s Settings) WithRuntime(rs config.RuntimeSettings) Settings {
	s.Rules = rs.Rules()
	s.DeduplicateSentences = rs.DeduplicateSentences
	return s
}

type MinerOption func(*Miner)

func WithKnownWords(store KnownWordStore) MinerOption {
	return func(m *Miner) {
		m.known = store
	}
}

func WithWordLists(lists vocab.WordLists) MinerOption {
	return func(m *Miner) {
		m.lists = lists
	}
}

func WithCardSink(sink CardSink) MinerOption {
	return func(m *Miner) {
		m.cards = sink
	}
}

func WithStatsSink(sink StatsSink) MinerOption {
	return func(m *Miner) {
		m.stats = sink
	}
}

// WithMediaExtractor attaches a screenshot and audio clip to every stored
// card.
func WithMediaExtractor(extractor MediaExtractor) MinerOption {
	return func(m *Miner) {
		m.media = extractor
	}
}

// WithFrequencyList ranks every extracted word so Settings.MaxFrequencyRank
// can drop rare ones.
func WithFrequencyList(ranks vocab.FrequencyList) MinerOption {
	return func(m *Miner) {
		m.frequency = ranks
	}
}

// WithDictionary fills in card definitions.
func WithDictionary(dict Dictionary) MinerOption {
	return func(m *Miner) {
		m.dict = dict
	}
}

func WithPitchAccents(pitch PitchLookup) MinerOption {
	return func(m *Miner) {
		m.pitch = pitch
	}
}

// WithPreview makes the miner extract and filter without storing anything.
func WithPreview(preview bool) MinerOption {
	return func(m *Miner) {
		m.preview = preview
	}
}

// Miner mines video/subtitle pairs: it extracts vocabulary, drops what the
// user already knows and stores the rest as cards.
type Miner struct {
	tokenizer tokenizer.Tokenizer
	reader    subtitle.Reader
	known     KnownWordStore
	lists     vocab.WordLists
	cards     CardSink
	stats     StatsSink
	media     MediaExtractor
	frequency vocab.FrequencyList
	dict      Dictionary
	pitch     PitchLookup
	preview   bool

	mu        sync.RWMutex
	settings  Settings
	extractor *vocab.Extractor
}

var _ jobs.EpisodeProcessor = (*Miner)(nil)

func NewMiner(tok tokenizer.Tokenizer, reader subtitle.Reader, settings Settings, opts ...MinerOption) *Miner {
	m := &Miner{
		tokenizer: tok,
		reader:    reader,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ApplySettings(settings)
	return m
}

func (m *Miner) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// ApplySettings takes effect from the next episode on.
func (m *Miner) ApplySettings(settings Settings) {
	extractor := vocab.NewExtractor(m.tokenizer, m.reader, settings.Rules)

	m.mu.Lock()
	m.settings = settings
	m.extractor = extractor
	m.mu.Unlock()
}

func (m *Miner) snapshot() (Settings, *vocab.Extractor) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, m.extractor
}

// ProcessEpisode mines one queue pair.
func (m *Miner) ProcessEpisode(ctx context.Context, pair library.FilePair, offset time.Duration) (jobs.EpisodeResult, error) {
	out, err := m.MineEpisode(ctx, pair, offset)
	return out.Result, err
}

// MineEpisode mines a single pair. On a storage failure the outcome still
// reports the cards created before it.
func (m *Miner) MineEpisode(ctx context.Context, pair library.FilePair, offset time.Duration) (Outcome, error) {
	h, err := m.harvest(ctx, pair, offset)
	if err != nil {
		return Outcome{Pair: pair, Preview: m.preview}, err
	}
	return m.commit(ctx, h)
}

// MineFolder mines every pair found in folder, where videos and subtitles
// sit side by side. With minEpisodes above one, only words heard in at
// least that many episodes are kept. A failing episode is reported and the
// folder run goes on; cancellation stops it.
func (m *Miner) MineFolder(ctx context.Context, folder string, offset time.Duration, minEpisodes int) (FolderOutcome, error) {
	pairs, unpaired, err := library.FindPairs(folder, folder, library.StrategyEpisode)
	if err != nil {
		return FolderOutcome{}, apperror.Wrap(err, apperror.ErrNoPairsFound, "cannot list folder").WithContext("folder", folder)
	}
	if len(pairs) == 0 {
		return FolderOutcome{Unpaired: unpaired}, apperror.New(apperror.ErrNoPairsFound, "no matching video/subtitle pairs found").
			WithContext("folder", folder)
	}
	log.Info("Mining %d episodes in %s", len(pairs), folder)

	ret := FolderOutcome{
		Episodes: make([]EpisodeOutcome, len(pairs)),
		Unpaired: unpaired,
	}
	harvests := make([]harvest, len(pairs))
	ok := make([]bool, len(pairs))
	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return ret, err
		}
		h, err := m.harvest(ctx, pair, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ret, ctx.Err()
			}
			log.Error("Failed to mine %s: %v", pair.VideoName(), err)
			ret.Episodes[i] = EpisodeOutcome{Outcome: Outcome{Pair: pair, Preview: m.preview}, Err: err}
			continue
		}
		harvests[i] = h
		ok[i] = true
	}

	if minEpisodes > 1 {
		perEpisode := make([][]vocab.Entry, 0, len(harvests))
		for i, h := range harvests {
			if ok[i] {
				perEpisode = append(perEpisode, h.entries)
			}
		}
		counts := vocab.EpisodeFrequency(perEpisode)
		for i := range harvests {
			harvests[i].entries = vocab.FilterByEpisodeCount(harvests[i].entries, counts, minEpisodes)
		}
	}

	for i, h := range harvests {
		if !ok[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return ret, err
		}
		out, err := m.commit(ctx, h)
		ret.TotalCards += out.Result.CardsCreated
		if err != nil {
			log.Error("Failed to store %s: %v", h.pair.VideoName(), err)
		}
		ret.Episodes[i] = EpisodeOutcome{Outcome: out, Err: err}
	}
	return ret, nil
}

// harvest is an extracted and filtered episode that is not stored yet.
type harvest struct {
	pair     library.FilePair
	entries  []vocab.Entry
	total    int
	language language.Tag
	started  time.Time
}

func (m *Miner) harvest(ctx context.Context, pair library.FilePair, offset time.Duration) (harvest, error) {
	started := time.Now()
	settings, extractor := m.snapshot()

	cues, err := m.reader.Read(pair.Subtitle)
	if err != nil {
		return harvest{}, err
	}

	detected := subtitle.DetectLanguage(cues)
	if detected != language.Und && settings.ExpectedLanguage != language.Und &&
		!subtitle.IsLanguage(detected, settings.ExpectedLanguage) {
		log.Warn("Subtitle %s looks like %s, expected %s", pair.SubtitleName(), detected, settings.ExpectedLanguage)
	}

	entries, err := extractor.Extract(ctx, cues, offset)
	if err != nil {
		return harvest{}, err
	}
	total := len(entries)
	if len(m.frequency) > 0 {
		ranked := vocab.AttachFrequency(entries, m.frequency)
		log.Debug("Episode %s: %d of %d words ranked", pair.VideoName(), ranked, total)
	}

	if settings.UseKnownWords && m.known != nil {
		known, err := m.known.KnownWords(ctx)
		if err != nil {
			return harvest{}, apperror.Wrap(err, apperror.ErrStore, "load known words")
		}
		entries = vocab.FilterUnknown(entries, known)
	}
	if settings.MaxFrequencyRank > 0 {
		entries = vocab.FilterByFrequency(entries, settings.MaxFrequencyRank)
	}
	if m.lists != nil {
		entries = vocab.ApplyWordLists(entries, m.lists)
	}
	if settings.DeduplicateSentences {
		entries = vocab.DeduplicateBySentence(entries)
	}

	log.Debug("Episode %s: %d words, %d new", pair.VideoName(), total, len(entries))
	return harvest{
		pair:     pair,
		entries:  entries,
		total:    total,
		language: detected,
		started:  started,
	}, nil
}

func (m *Miner) commit(ctx context.Context, h harvest) (Outcome, error) {
	out := Outcome{
		Pair:     h.pair,
		Entries:  h.entries,
		Language: h.language,
		Preview:  m.preview,
		Result: jobs.EpisodeResult{
			TotalWords: h.total,
			NewWords:   len(h.entries),
		},
	}
	if m.preview {
		out.Result.Elapsed = time.Since(h.started)
		return out, nil
	}

	series, episode := SeriesName(h.pair), EpisodeName(h.pair)
	if m.cards != nil && len(h.entries) > 0 {
		cards := toCards(h.pair, h.entries)
		if m.media != nil {
			clips, err := m.media.ExtractClips(ctx, h.pair.Video, h.entries)
			if err != nil {
				return out, err
			}
			attachClips(cards, clips)
		}
		if err := m.enrich(ctx, cards); err != nil {
			return out, err
		}
		created, err := m.cards.CreateCards(ctx, cards)
		out.Result.CardsCreated = created
		if err != nil {
			return out, apperror.Wrap(err, apperror.ErrStore, "create cards").WithContext("episode", episode)
		}
	}
	out.Result.Elapsed = time.Since(h.started)

	if m.stats == nil {
		return out, nil
	}
	if err := m.stats.RecordDifficulty(ctx, series, episode, h.total, len(h.entries)); err != nil {
		log.Warn("Failed to record difficulty of %s: %v", episode, err)
	}
	_, err := m.stats.RecordSession(ctx, persistence.MiningSession{
		SeriesName:   series,
		EpisodeName:  episode,
		TotalWords:   h.total,
		UnknownWords: len(h.entries),
		CardsCreated: out.Result.CardsCreated,
		Elapsed:      out.Result.Elapsed,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return out, apperror.Wrap(err, apperror.ErrStore, "record session").WithContext("episode", episode)
	}
	return out, err
}

// enrich adds definitions and pitch accents. A failed lookup leaves that
// card without a definition; cancellation stops before anything is stored.
func (m *Miner) enrich(ctx context.Context, cards []persistence.Card) error {
	if m.dict == nil && m.pitch == nil {
		return nil
	}
	found := 0
	for i := range cards {
		c := &cards[i]
		if m.pitch != nil {
			c.PitchAccent, _ = m.pitch.Lookup(c.Lemma, c.Reading)
		}
		if m.dict == nil {
			continue
		}
		senses, err := m.dict.Lookup(ctx, c.Lemma)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("Definition lookup for %s failed: %v", c.Lemma, err)
			continue
		}
		if len(senses) > 0 {
			c.Definition = dictionary.Format(senses)
			found++
		}
	}
	if m.dict != nil {
		log.Info("Found definitions for %d of %d words", found, len(cards))
	}
	return nil
}

func attachClips(cards []persistence.Card, clips []media.Clip) {
	for i := range cards {
		if i >= len(clips) {
			return
		}
		cards[i].ScreenshotFile = clips[i].Screenshot
		cards[i].AudioFile = clips[i].Audio
	}
}

func toCards(pair library.FilePair, entries []vocab.Entry) []persistence.Card {
	series, episode := SeriesName(pair), EpisodeName(pair)
	cards := make([]persistence.Card, 0, len(entries))
	for _, e := range entries {
		cards = append(cards, persistence.Card{
			Lemma:              e.Lemma,
			Surface:            e.Surface,
			Reading:            e.Reading,
			Sentence:           e.Sentence,
			StartSeconds:       e.StartTime,
			EndSeconds:         e.EndTime,
			ExpressionFurigana: e.ExpressionFurigana,
			SentenceFurigana:   e.SentenceFurigana,
			SeriesName:         series,
			EpisodeName:        episode,
			VideoPath:          pair.Video,
			SubtitlePath:       pair.Subtitle,
			FrequencyRank:      e.FrequencyRank,
		})
	}
	return cards
}
