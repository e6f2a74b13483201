package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceExt(t *testing.T) {
	cases := []struct {
		path, ext, want string
	}{
		{"/subs/ep01.ass", ".srt", "/subs/ep01.srt"},
		{"/subs/ep01.ass", "shifted.srt", "/subs/ep01.shifted.srt"},
		{"/subs/ep01", ".srt", "/subs/ep01.srt"},
		{"/subs/.hidden", "srt", "/subs/.hidden.srt"},
		{"", ".srt", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ReplaceExt(tc.path, tc.ext), tc.path)
	}
}

func TestFindRecentAfter(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.srt")
	newFile := filepath.Join(dir, "season", "new.srt")
	require.NoError(t, os.MkdirAll(filepath.Dir(newFile), 0o755))
	require.NoError(t, os.WriteFile(oldFile, nil, 0o644))
	require.NoError(t, os.WriteFile(newFile, nil, 0o644))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	recent, err := FindRecentAfter(dir, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Contains(t, recent, newFile)
	assert.NotContains(t, recent, oldFile)

	_, err = FindRecentAfter(filepath.Join(dir, "missing"), time.Now())
	require.Error(t, err)
}
