package persistence

import "time"

// MiningSession is the record of one mined episode.
type MiningSession struct {
	ID           int64         `json:"id"`
	SeriesName   string        `json:"series_name"`
	EpisodeName  string        `json:"episode_name"`
	TotalWords   int           `json:"total_words"`
	UnknownWords int           `json:"unknown_words"`
	CardsCreated int           `json:"cards_created"`
	Elapsed      time.Duration `json:"elapsed"`
	MinedAt      time.Time     `json:"mined_at"`
}

type SeriesStats struct {
	SeriesName     string        `json:"series_name"`
	EpisodesMined  int           `json:"episodes_mined"`
	TotalWords     int           `json:"total_words"`
	TotalUnknown   int           `json:"total_unknown"`
	CardsCreated   int           `json:"cards_created"`
	TotalTimeSpent time.Duration `json:"total_time_spent"`
}

type OverallStats struct {
	TotalSessions  int           `json:"total_sessions"`
	CardsCreated   int           `json:"cards_created"`
	TotalWords     int           `json:"total_words"`
	TotalUnknown   int           `json:"total_unknown"`
	TotalTimeSpent time.Duration `json:"total_time_spent"`
	SeriesCount    int           `json:"series_count"`
}

func (s OverallStats) AvgCardsPerSession() float64 {
	if s.TotalSessions == 0 {
		return 0
	}
	return float64(s.CardsCreated) / float64(s.TotalSessions)
}

// SeriesDifficulty averages the unknown-word ratio of a series' episodes.
// Score runs from 0 (everything known) to 1.
type SeriesDifficulty struct {
	SeriesName string  `json:"series_name"`
	Episodes   int     `json:"episodes"`
	AvgScore   float64 `json:"avg_score"`
}

// Card is one mined word stored for review.
type Card struct {
	ID                 int64   `json:"id"`
	Lemma              string  `json:"lemma"`
	Surface            string  `json:"surface"`
	Reading            string  `json:"reading"`
	Sentence           string  `json:"sentence"`
	StartSeconds       float64 `json:"start_seconds"`
	EndSeconds         float64 `json:"end_seconds"`
	ExpressionFurigana string  `json:"expression_furigana"`
	SentenceFurigana   string  `json:"sentence_furigana"`
	SeriesName         string  `json:"series_name"`
	EpisodeName        string  `json:"episode_name"`
	VideoPath          string  `json:"video_path"`
	SubtitlePath       string  `json:"subtitle_path"`
	// Media files live in the media directory; empty when not extracted.
	ScreenshotFile string `json:"screenshot_file,omitempty"`
	AudioFile      string `json:"audio_file,omitempty"`
	// Definition holds numbered senses, one per line.
	Definition    string    `json:"definition,omitempty"`
	PitchAccent   string    `json:"pitch_accent,omitempty"`
	FrequencyRank int       `json:"frequency_rank,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
