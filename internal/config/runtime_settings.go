package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
)

// RuntimeSettings are the mining settings editable while the server runs.
type RuntimeSettings struct {
	MinWordLength        int      `json:"min_word_length"`
	AllowedPOS           []string `json:"allowed_pos"`
	ExcludedSubtypes     []string `json:"excluded_subtypes"`
	DeduplicateSentences bool     `json:"deduplicate_sentences"`
	// CronExpr is a standard five field expression; empty disables scheduling.
	CronExpr string `json:"cron_expr"`
}

func (s RuntimeSettings) Validate() error {
	if s.MinWordLength < 1 {
		return apperror.New(apperror.ErrValidation, "min_word_length must be at least 1")
	}
	if len(s.AllowedPOS) == 0 {
		return apperror.New(apperror.ErrValidation, "allowed_pos must not be empty")
	}
	for _, pos := range s.AllowedPOS {
		if strings.TrimSpace(pos) == "" {
			return apperror.New(apperror.ErrValidation, "allowed_pos must not contain empty entries")
		}
	}
	if strings.TrimSpace(s.CronExpr) != "" {
		if _, err := cron.ParseStandard(s.CronExpr); err != nil {
			return apperror.Wrap(err, apperror.ErrValidation, "invalid cron_expr")
		}
	}
	return nil
}

func (s RuntimeSettings) Rules() vocab.Rules {
	return vocab.NewRules(s.MinWordLength, s.AllowedPOS, s.ExcludedSubtypes)
}

func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		MinWordLength:        c.Mining.MinWordLength,
		AllowedPOS:           append([]string(nil), c.Mining.AllowedPOS...),
		ExcludedSubtypes:     append([]string(nil), c.Mining.ExcludedSubtypes...),
		DeduplicateSentences: c.Mining.DeduplicateSentences,
		CronExpr:             c.Schedule.CronExpr,
	}
}

// WithRuntimeSettings overlays a settings file on the environment config.
// Zero values leave the environment value in place, except the boolean
// which the file always decides.
func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		if settings.MinWordLength > 0 {
			c.Mining.MinWordLength = settings.MinWordLength
		}
		if len(settings.AllowedPOS) > 0 {
			c.Mining.AllowedPOS = append([]string(nil), settings.AllowedPOS...)
		}
		if settings.ExcludedSubtypes != nil {
			c.Mining.ExcludedSubtypes = append([]string(nil), settings.ExcludedSubtypes...)
		}
		c.Mining.DeduplicateSentences = settings.DeduplicateSentences
		if strings.TrimSpace(settings.CronExpr) != "" {
			c.Schedule.CronExpr = settings.CronExpr
		}
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

// LoadRuntimeSettingsIfExists returns ok=false when path does not exist.
func LoadRuntimeSettingsIfExists(path string) (settings RuntimeSettings, ok bool, err error) {
	settings, err = LoadRuntimeSettingsFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return RuntimeSettings{}, false, nil
	}
	if err != nil {
		return RuntimeSettings{}, false, apperror.Wrap(err, apperror.ErrConfig, "load settings file").WithContext("path", path)
	}
	return settings, true, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperror.New(apperror.ErrConfig, "settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}
