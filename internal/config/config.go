package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

// Config holds all application configuration, read from MINER_* environment
// variables with defaults.
//
// Environment Variables:
// Mining:
// - MINER_MIN_WORD_LENGTH: shortest surface form kept (default: 2)
// - MINER_ALLOWED_POS: comma separated primary parts of speech to keep
// - MINER_EXCLUDED_SUBTYPES: comma separated secondary parts of speech to drop
// - MINER_SUBTITLE_OFFSET: seconds added to every cue, may be negative (default: 0)
// - MINER_DEDUPLICATE_SENTENCES: keep one word per sentence (default: true)
// - MINER_USE_KNOWN_WORDS: skip words already known (default: true)
// - MINER_EXPECTED_LANGUAGE: language subtitles should be in (default: ja)
// - MINER_MIN_EPISODE_APPEARANCES: folder mining keeps words seen in this many episodes (default: 0, off)
// - MINER_MAX_FREQUENCY_RANK: drop ranked words less common than this rank (default: 0, off)
//
// Word lists:
// - MINER_BLACKLIST_FILE, MINER_WHITELIST_FILE: one word per line (optional)
//
// Dictionaries (all optional):
// - MINER_FREQUENCY_FILE: frequency list CSV, "rank,word" or "word,rank"
// - MINER_JMDICT_FILE: JMdict_e XML for offline definitions
// - MINER_JISHO_ENABLED: look up definitions JMdict lacks on jisho.org (default: false)
// - MINER_JISHO_URL: Jisho search API (default: https://jisho.org/api/v1/search/words)
// - MINER_JISHO_DELAY: seconds between Jisho requests (default: 0.5)
// - MINER_PITCH_ACCENT_FILE: Kanjium style "reading,word,pattern" file
//
// Media (needs ffmpeg and ffprobe on PATH):
// - MINER_MEDIA_ENABLED: cut a screenshot and audio clip per card (default: false)
// - MINER_MEDIA_DIR: where media files go (default: <data dir>/media)
// - MINER_AUDIO_PADDING: seconds of audio kept around each line (default: 0.3)
// - MINER_SCREENSHOT_OFFSET: seconds into the line the frame is taken (default: 1.0)
// - MINER_MEDIA_WORKERS: parallel ffmpeg processes (default: 6)
//
// System:
// - MINER_DATA_DIR: data directory (default: ~/.vocab-miner)
// - MINER_DB_PATH: SQLite database (default: <data dir>/miner.db)
// - MINER_LOG_LEVEL: DEBUG, INFO, WARN or ERROR (default: INFO)
// - MINER_LOG_FILE: log to this file instead of stdout (optional)
// - SETTINGS_FILE: runtime settings JSON (default: <data dir>/settings.json)
//
// Server:
// - MINER_HTTP_ADDR: listen address for serve (default: 127.0.0.1:8765)
// - MINER_UI_ENABLED: serve the web UI (default: true)
// - MINER_UI_STATIC_DIR: built UI assets (default: web/dist)
// - MINER_CRON_EXPR: schedule for queue runs, empty disables (default: "")
type Config struct {
	Mining   MiningConfig   `json:"mining"`
	Lists    WordListConfig `json:"lists"`
	Dict     DictConfig     `json:"dictionary"`
	Media    MediaConfig    `json:"media"`
	System   SystemConfig   `json:"system"`
	HTTP     HTTPConfig     `json:"http"`
	Schedule ScheduleConfig `json:"schedule"`
}

type MiningConfig struct {
	MinWordLength         int          `json:"min_word_length"`
	AllowedPOS            []string     `json:"allowed_pos"`
	ExcludedSubtypes      []string     `json:"excluded_subtypes"`
	SubtitleOffset        float64      `json:"subtitle_offset"`
	DeduplicateSentences  bool         `json:"deduplicate_sentences"`
	UseKnownWords         bool         `json:"use_known_words"`
	ExpectedLanguage      language.Tag `json:"expected_language"`
	MinEpisodeAppearances int          `json:"min_episode_appearances"`
	MaxFrequencyRank      int          `json:"max_frequency_rank"`
}

// Rules builds the admission rules for the configured mining settings.
func (c MiningConfig) Rules() vocab.Rules {
	return vocab.NewRules(c.MinWordLength, c.AllowedPOS, c.ExcludedSubtypes)
}

func (c MiningConfig) Offset() time.Duration {
	return time.Duration(c.SubtitleOffset * float64(time.Second))
}

type WordListConfig struct {
	BlacklistFile string `json:"blacklist_file"`
	WhitelistFile string `json:"whitelist_file"`
}

type DictConfig struct {
	FrequencyFile   string  `json:"frequency_file"`
	JMdictFile      string  `json:"jmdict_file"`
	JishoEnabled    bool    `json:"jisho_enabled"`
	JishoURL        string  `json:"jisho_url"`
	JishoDelay      float64 `json:"jisho_delay"`
	PitchAccentFile string  `json:"pitch_accent_file"`
}

func (c DictConfig) Delay() time.Duration {
	return time.Duration(c.JishoDelay * float64(time.Second))
}

// HasDefinitions reports whether any definition source is configured.
func (c DictConfig) HasDefinitions() bool {
	return c.JMdictFile != "" || c.JishoEnabled
}

type SystemConfig struct {
	DataDir      string `json:"data_dir"`
	DBFile       string `json:"db_file"`
	LogLevel     string `json:"log_level"`
	LogFile      string `json:"log_file"`
	SettingsFile string `json:"settings_file"`
}

type MediaConfig struct {
	Enabled          bool    `json:"enabled"`
	Dir              string  `json:"dir"`
	AudioPadding     float64 `json:"audio_padding"`
	ScreenshotOffset float64 `json:"screenshot_offset"`
	Workers          int     `json:"workers"`
}

func (c MediaConfig) Padding() time.Duration {
	return time.Duration(c.AudioPadding * float64(time.Second))
}

func (c MediaConfig) Offset() time.Duration {
	return time.Duration(c.ScreenshotOffset * float64(time.Second))
}

type HTTPConfig struct {
	Addr        string `json:"addr"`
	UIEnabled   bool   `json:"ui_enabled"`
	UIStaticDir string `json:"ui_static_dir"`
}

type ScheduleConfig struct {
	CronExpr string `json:"cron_expr"`
}

func (c *Config) DBPath() string {
	if c.System.DBFile != "" {
		return c.System.DBFile
	}
	return filepath.Join(c.System.DataDir, "miner.db")
}

// LockPath is the file locked while a queue run is active.
func (c *Config) LockPath() string {
	return filepath.Join(c.System.DataDir, "queue.lock")
}

func (c *Config) MediaDir() string {
	if c.Media.Dir != "" {
		return c.Media.Dir
	}
	return filepath.Join(c.System.DataDir, "media")
}

func (c *Config) SettingsPath() string {
	if c.System.SettingsFile != "" {
		return c.System.SettingsFile
	}
	return filepath.Join(c.System.DataDir, "settings.json")
}

// Option is a function type for configuring Config
type Option func(*Config)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".vocab-miner"
	}
	return filepath.Join(home, ".vocab-miner")
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	expected, err := language.Parse(getEnvString("MINER_EXPECTED_LANGUAGE", "ja"))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrConfig, "invalid MINER_EXPECTED_LANGUAGE")
	}

	config := &Config{
		Mining: MiningConfig{
			MinWordLength:         getEnvInt("MINER_MIN_WORD_LENGTH", vocab.DefaultMinLength),
			AllowedPOS:            getEnvList("MINER_ALLOWED_POS", vocab.DefaultAllowedPOS),
			ExcludedSubtypes:      getEnvList("MINER_EXCLUDED_SUBTYPES", vocab.DefaultExcludedSubtypes),
			SubtitleOffset:        getEnvFloat("MINER_SUBTITLE_OFFSET", 0),
			DeduplicateSentences:  getEnvBool("MINER_DEDUPLICATE_SENTENCES", true),
			UseKnownWords:         getEnvBool("MINER_USE_KNOWN_WORDS", true),
			ExpectedLanguage:      expected,
			MinEpisodeAppearances: getEnvInt("MINER_MIN_EPISODE_APPEARANCES", 0),
			MaxFrequencyRank:      getEnvInt("MINER_MAX_FREQUENCY_RANK", 0),
		},
		Lists: WordListConfig{
			BlacklistFile: getEnvString("MINER_BLACKLIST_FILE", ""),
			WhitelistFile: getEnvString("MINER_WHITELIST_FILE", ""),
		},
		Dict: DictConfig{
			FrequencyFile:   getEnvString("MINER_FREQUENCY_FILE", ""),
			JMdictFile:      getEnvString("MINER_JMDICT_FILE", ""),
			JishoEnabled:    getEnvBool("MINER_JISHO_ENABLED", false),
			JishoURL:        getEnvString("MINER_JISHO_URL", "https://jisho.org/api/v1/search/words"),
			JishoDelay:      getEnvFloat("MINER_JISHO_DELAY", 0.5),
			PitchAccentFile: getEnvString("MINER_PITCH_ACCENT_FILE", ""),
		},
		Media: MediaConfig{
			Enabled:          getEnvBool("MINER_MEDIA_ENABLED", false),
			Dir:              getEnvString("MINER_MEDIA_DIR", ""),
			AudioPadding:     getEnvFloat("MINER_AUDIO_PADDING", 0.3),
			ScreenshotOffset: getEnvFloat("MINER_SCREENSHOT_OFFSET", 1.0),
			Workers:          getEnvInt("MINER_MEDIA_WORKERS", 6),
		},
		System: SystemConfig{
			DataDir:      getEnvString("MINER_DATA_DIR", defaultDataDir()),
			DBFile:       getEnvString("MINER_DB_PATH", ""),
			LogLevel:     getEnvString("MINER_LOG_LEVEL", "INFO"),
			LogFile:      getEnvString("MINER_LOG_FILE", ""),
			SettingsFile: getEnvString("SETTINGS_FILE", ""),
		},
		HTTP: HTTPConfig{
			Addr:        getEnvString("MINER_HTTP_ADDR", "127.0.0.1:8765"),
			UIEnabled:   getEnvBool("MINER_UI_ENABLED", true),
			UIStaticDir: getEnvString("MINER_UI_STATIC_DIR", "web/dist"),
		},
		Schedule: ScheduleConfig{
			CronExpr: getEnvString("MINER_CRON_EXPR", ""),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	log.Debug("Config: %+v", config)

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Mining.MinWordLength < 1 {
		return apperror.New(apperror.ErrConfig, "MINER_MIN_WORD_LENGTH must be at least 1")
	}
	if len(c.Mining.AllowedPOS) == 0 {
		return apperror.New(apperror.ErrConfig, "MINER_ALLOWED_POS must not be empty")
	}
	if c.Mining.MinEpisodeAppearances < 0 {
		return apperror.New(apperror.ErrConfig, "MINER_MIN_EPISODE_APPEARANCES must not be negative")
	}
	if c.Mining.MaxFrequencyRank < 0 {
		return apperror.New(apperror.ErrConfig, "MINER_MAX_FREQUENCY_RANK must not be negative")
	}
	if c.Dict.JishoDelay < 0 {
		return apperror.New(apperror.ErrConfig, "MINER_JISHO_DELAY must not be negative")
	}
	if c.Media.Workers < 1 {
		return apperror.New(apperror.ErrConfig, "MINER_MEDIA_WORKERS must be at least 1")
	}
	if c.Media.AudioPadding < 0 || c.Media.ScreenshotOffset < 0 {
		return apperror.New(apperror.ErrConfig, "MINER_AUDIO_PADDING and MINER_SCREENSHOT_OFFSET must not be negative")
	}
	if strings.TrimSpace(c.System.DataDir) == "" {
		return apperror.New(apperror.ErrConfig, "MINER_DATA_DIR is required")
	}
	if expr := strings.TrimSpace(c.Schedule.CronExpr); expr != "" {
		if _, err := cron.ParseStandard(expr); err != nil {
			return apperror.Wrap(err, apperror.ErrConfig, "invalid MINER_CRON_EXPR")
		}
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool accepts the forms strconv.ParseBool does.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	return splitList(value)
}

func splitList(value string) []string {
	ret := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ret = append(ret, part)
		}
	}
	return ret
}
