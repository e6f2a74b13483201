package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/config"
)

func TestDictionaryOptions(t *testing.T) {
	dir := t.TempDir()
	freq := filepath.Join(dir, "freq.csv")
	jmdict := filepath.Join(dir, "JMdict_e")
	pitch := filepath.Join(dir, "accents.csv")
	require.NoError(t, os.WriteFile(freq, []byte("1,する\n"), 0o644))
	require.NoError(t, os.WriteFile(jmdict, []byte("<JMdict><entry><k_ele><keb>猫</keb></k_ele><sense><gloss>cat</gloss></sense></entry></JMdict>"), 0o644))
	require.NoError(t, os.WriteFile(pitch, []byte("ねこ,猫,1\n"), 0o644))
	missing := filepath.Join(dir, "missing")

	t.Run("nothing configured", func(t *testing.T) {
		opts, err := dictionaryOptions(&config.Config{}, false)
		require.NoError(t, err)
		assert.Empty(t, opts)
	})

	t.Run("all sources", func(t *testing.T) {
		cfg := &config.Config{Dict: config.DictConfig{
			FrequencyFile:   freq,
			JMdictFile:      jmdict,
			JishoEnabled:    true,
			PitchAccentFile: pitch,
		}}
		opts, err := dictionaryOptions(cfg, false)
		require.NoError(t, err)
		assert.Len(t, opts, 3)
	})

	t.Run("preview only ranks", func(t *testing.T) {
		cfg := &config.Config{Dict: config.DictConfig{
			FrequencyFile:   freq,
			JMdictFile:      missing,
			PitchAccentFile: missing,
		}}
		opts, err := dictionaryOptions(cfg, true)
		require.NoError(t, err)
		assert.Len(t, opts, 1)
	})

	for name, dict := range map[string]config.DictConfig{
		"missing frequency list": {FrequencyFile: missing},
		"missing jmdict":         {JMdictFile: missing},
		"missing pitch accents":  {PitchAccentFile: missing},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := dictionaryOptions(&config.Config{Dict: dict}, false)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.ErrConfig))
		})
	}
}
