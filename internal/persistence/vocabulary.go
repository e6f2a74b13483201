package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
)

const (
	SourceManual = "manual"
	SourceImport = "import"
	SourceMined  = "mined"
)

// KnownWords returns every known word together with the lemmas of all
// stored cards.
func (s *SQLiteStore) KnownWords(ctx context.Context) (vocab.WordSet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM known_words UNION SELECT lemma FROM cards`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make(vocab.WordSet)
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, err
		}
		ret[word] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// AddKnownWords inserts words, ignoring blanks and words already known, and
// returns how many were new.
func (s *SQLiteStore) AddKnownWords(ctx context.Context, words []string, source string) (added int, err error) {
	if len(words) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		res, execErr := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO known_words (word, source, added_at) VALUES (?, ?, ?)`,
			word, source, now,
		)
		if execErr != nil {
			err = execErr
			return 0, err
		}
		n, _ := res.RowsAffected()
		added += int(n)
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *SQLiteStore) KnownWordCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM known_words`).Scan(&n)
	return n, err
}

// CreateCards stores cards and returns how many were created. A card whose
// lemma is already stored is skipped.
func (s *SQLiteStore) CreateCards(ctx context.Context, cards []Card) (created int, err error) {
	if len(cards) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, c := range cards {
		createdAt := c.CreatedAt.UTC()
		if c.CreatedAt.IsZero() {
			createdAt = now
		}
		res, execErr := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO cards (
				lemma, surface, reading, sentence, start_seconds, end_seconds,
				expression_furigana, sentence_furigana, series_name, episode_name,
				video_path, subtitle_path, screenshot_file, audio_file,
				definition, pitch_accent, frequency_rank, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Lemma,
			c.Surface,
			c.Reading,
			c.Sentence,
			c.StartSeconds,
			c.EndSeconds,
			c.ExpressionFurigana,
			c.SentenceFurigana,
			c.SeriesName,
			c.EpisodeName,
			c.VideoPath,
			c.SubtitlePath,
			c.ScreenshotFile,
			c.AudioFile,
			c.Definition,
			c.PitchAccent,
			c.FrequencyRank,
			createdAt,
		)
		if execErr != nil {
			err = execErr
			return 0, err
		}
		n, _ := res.RowsAffected()
		created += int(n)
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return created, nil
}

// ListCards returns up to limit cards, newest first.
func (s *SQLiteStore) ListCards(ctx context.Context, limit int) ([]Card, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, lemma, surface, reading, sentence, start_seconds, end_seconds,
			expression_furigana, sentence_furigana, series_name, episode_name,
			video_path, subtitle_path, screenshot_file, audio_file,
			definition, pitch_accent, frequency_rank, created_at
		 FROM cards
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]Card, 0)
	for rows.Next() {
		var c Card
		if err := rows.Scan(
			&c.ID,
			&c.Lemma,
			&c.Surface,
			&c.Reading,
			&c.Sentence,
			&c.StartSeconds,
			&c.EndSeconds,
			&c.ExpressionFurigana,
			&c.SentenceFurigana,
			&c.SeriesName,
			&c.EpisodeName,
			&c.VideoPath,
			&c.SubtitlePath,
			&c.ScreenshotFile,
			&c.AudioFile,
			&c.Definition,
			&c.PitchAccent,
			&c.FrequencyRank,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
