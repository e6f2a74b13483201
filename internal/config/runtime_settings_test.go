package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
)

func validSettings() RuntimeSettings {
	return RuntimeSettings{
		MinWordLength:        2,
		AllowedPOS:           []string{"名詞", "動詞"},
		ExcludedSubtypes:     []string{"代名詞"},
		DeduplicateSentences: true,
		CronExpr:             "*/5 * * * *",
	}
}

func TestRuntimeSettings_Validate(t *testing.T) {
	valid := validSettings()
	require.NoError(t, valid.Validate())

	noCron := valid
	noCron.CronExpr = ""
	require.NoError(t, noCron.Validate())

	invalid := valid
	invalid.CronExpr = "bad cron"
	err := invalid.Validate()
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.ErrValidation))

	noPOS := valid
	noPOS.AllowedPOS = nil
	require.Error(t, noPOS.Validate())

	blankPOS := valid
	blankPOS.AllowedPOS = []string{"名詞", " "}
	require.Error(t, blankPOS.Validate())

	short := valid
	short.MinWordLength = 0
	require.Error(t, short.Validate())
}

func TestRuntimeSettings_Rules(t *testing.T) {
	rules := validSettings().Rules()
	assert.Equal(t, 2, rules.MinLength)
	assert.True(t, rules.AllowedPOS["動詞"])
	assert.True(t, rules.ExcludedSubtypes["代名詞"])
}

func TestRuntimeSettingsFile_RoundTrip(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "settings", "runtime.json")
	input := validSettings()

	require.NoError(t, WriteRuntimeSettingsFile(filePath, input))

	got, err := LoadRuntimeSettingsFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, input, got)

	info, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	_, err = os.Stat(filePath + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadRuntimeSettingsIfExists(t *testing.T) {
	tmp := t.TempDir()

	_, ok, err := LoadRuntimeSettingsIfExists(filepath.Join(tmp, "missing.json"))
	require.NoError(t, err)
	assert.False(t, ok)

	broken := filepath.Join(tmp, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o600))
	_, _, err = LoadRuntimeSettingsIfExists(broken)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.ErrConfig))
}

func TestWithRuntimeSettings_OverridesConfig(t *testing.T) {
	t.Setenv("MINER_DATA_DIR", t.TempDir())
	t.Setenv("MINER_MIN_WORD_LENGTH", "3")
	t.Setenv("MINER_DEDUPLICATE_SENTENCES", "true")
	t.Setenv("MINER_CRON_EXPR", "0 1 * * *")

	override := RuntimeSettings{
		MinWordLength:        4,
		AllowedPOS:           []string{"名詞"},
		ExcludedSubtypes:     []string{"接尾"},
		DeduplicateSentences: false,
		CronExpr:             "*/30 * * * *",
	}

	cfg, err := NewFromEnv(WithRuntimeSettings(override))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Mining.MinWordLength)
	assert.Equal(t, []string{"名詞"}, cfg.Mining.AllowedPOS)
	assert.Equal(t, []string{"接尾"}, cfg.Mining.ExcludedSubtypes)
	assert.False(t, cfg.Mining.DeduplicateSentences)
	assert.Equal(t, "*/30 * * * *", cfg.Schedule.CronExpr)
	assert.Equal(t, override, cfg.RuntimeSettings())
}

func TestRuntimeSettingsStore_UpdatePersistsFile(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "runtime-settings.json")

	store, err := NewRuntimeSettingsStore(filePath, validSettings())
	require.NoError(t, err)

	next := validSettings()
	next.MinWordLength = 3
	next.CronExpr = ""
	got, err := store.UpdateRuntimeSettings(next)
	require.NoError(t, err)
	assert.Equal(t, next, got)

	current, err := store.GetRuntimeSettings()
	require.NoError(t, err)
	assert.Equal(t, next, current)

	loaded, err := LoadRuntimeSettingsFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, next, loaded)

	bad := next
	bad.MinWordLength = 0
	_, err = store.UpdateRuntimeSettings(bad)
	require.Error(t, err)
	current, _ = store.GetRuntimeSettings()
	assert.Equal(t, 3, current.MinWordLength)

	_, err = NewRuntimeSettingsStore(" ", validSettings())
	require.Error(t, err)
}
