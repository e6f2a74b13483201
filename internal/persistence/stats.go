package persistence

import (
	"context"
	"fmt"
	"time"
)

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// RecordSession appends a mining session and returns its row id.
func (s *SQLiteStore) RecordSession(ctx context.Context, session MiningSession) (int64, error) {
	minedAt := session.MinedAt.UTC()
	if minedAt.IsZero() {
		minedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO mining_sessions (
			series_name, episode_name, total_words, unknown_words, cards_created, elapsed_seconds, mined_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.SeriesName,
		session.EpisodeName,
		session.TotalWords,
		session.UnknownWords,
		session.CardsCreated,
		seconds(session.Elapsed),
		minedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("record session: %w", err)
	}
	return res.LastInsertId()
}

// RecordDifficulty stores the unknown-word ratio of an episode. Episodes
// without words are skipped.
func (s *SQLiteStore) RecordDifficulty(ctx context.Context, seriesName, episodeName string, totalWords, unknownWords int) error {
	if totalWords <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO series_difficulty (
			series_name, episode_name, total_words, unknown_words, difficulty_score, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		seriesName,
		episodeName,
		totalWords,
		unknownWords,
		float64(unknownWords)/float64(totalWords),
		time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) OverallStats(ctx context.Context) (OverallStats, error) {
	var ret OverallStats
	var totalTime float64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT
			COUNT(*),
			COALESCE(SUM(cards_created), 0),
			COALESCE(SUM(total_words), 0),
			COALESCE(SUM(unknown_words), 0),
			COALESCE(SUM(elapsed_seconds), 0.0),
			COUNT(DISTINCT series_name)
		 FROM mining_sessions`,
	).Scan(
		&ret.TotalSessions,
		&ret.CardsCreated,
		&ret.TotalWords,
		&ret.TotalUnknown,
		&totalTime,
		&ret.SeriesCount,
	)
	if err != nil {
		return OverallStats{}, err
	}
	ret.TotalTimeSpent = fromSeconds(totalTime)
	return ret, nil
}

// SeriesStats groups sessions by series, most cards first.
func (s *SQLiteStore) SeriesStats(ctx context.Context) ([]SeriesStats, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT
			series_name,
			COUNT(*),
			COALESCE(SUM(total_words), 0),
			COALESCE(SUM(unknown_words), 0),
			COALESCE(SUM(cards_created), 0) AS total_cards,
			COALESCE(SUM(elapsed_seconds), 0.0)
		 FROM mining_sessions
		 GROUP BY series_name
		 ORDER BY total_cards DESC, series_name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]SeriesStats, 0)
	for rows.Next() {
		var item SeriesStats
		var totalTime float64
		if err := rows.Scan(
			&item.SeriesName,
			&item.EpisodesMined,
			&item.TotalWords,
			&item.TotalUnknown,
			&item.CardsCreated,
			&totalTime,
		); err != nil {
			return nil, err
		}
		item.TotalTimeSpent = fromSeconds(totalTime)
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *SQLiteStore) RecentSessions(ctx context.Context, limit int) ([]MiningSession, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, series_name, episode_name, total_words, unknown_words, cards_created, elapsed_seconds, mined_at
		 FROM mining_sessions
		 ORDER BY mined_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]MiningSession, 0)
	for rows.Next() {
		var item MiningSession
		var elapsed float64
		if err := rows.Scan(
			&item.ID,
			&item.SeriesName,
			&item.EpisodeName,
			&item.TotalWords,
			&item.UnknownWords,
			&item.CardsCreated,
			&elapsed,
			&item.MinedAt,
		); err != nil {
			return nil, err
		}
		item.Elapsed = fromSeconds(elapsed)
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// DifficultyRanking lists series from hardest to easiest.
func (s *SQLiteStore) DifficultyRanking(ctx context.Context) ([]SeriesDifficulty, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT series_name, COUNT(*), AVG(difficulty_score) AS avg_score
		 FROM series_difficulty
		 GROUP BY series_name
		 ORDER BY avg_score DESC, series_name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]SeriesDifficulty, 0)
	for rows.Next() {
		var item SeriesDifficulty
		if err := rows.Scan(&item.SeriesName, &item.Episodes, &item.AvgScore); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
