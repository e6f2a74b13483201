package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
)

// execute runs the root command against an isolated data directory.
func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MINER_DATA_DIR", dataDir)
	t.Setenv("MINER_LOG_LEVEL", "ERROR")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
}

func TestShouldSkipConfig(t *testing.T) {
	for name, want := range map[string]bool{
		"help":     true,
		"pairs":    true,
		"subtitle": true,
		"mine":     false,
		"queue":    false,
	} {
		assert.Equal(t, want, shouldSkipConfig(&cobra.Command{Use: name}), name)
	}
}

func TestPairsCommand(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Show S01E01.mkv", "Show S01E01.srt", "Show S01E02.mkv")

	out, err := execute(t, t.TempDir(), "pairs", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Show S01E01.srt")
	assert.Contains(t, out, "1 pairs")
	assert.Contains(t, out, "unpaired video: Show S01E02.mkv")
}

func TestPairsCommand_UnknownStrategy(t *testing.T) {
	_, err := execute(t, t.TempDir(), "pairs", t.TempDir(), "--strategy", "size")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestSubtitleCommand_ShiftAndWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ep01.srt")
	srt := "1\n00:00:01,000 --> 00:00:02,500\n<i>猫が好き</i>\n\n2\n00:00:03,000 --> 00:00:04,000\n犬も好き\n"
	require.NoError(t, os.WriteFile(path, []byte(srt), 0o644))

	out, err := execute(t, t.TempDir(), "subtitle", path, "--offset", "1.5", "--write")
	require.NoError(t, err)

	assert.Contains(t, out, "猫が好き")
	assert.NotContains(t, out, "<i>")
	assert.Contains(t, out, "0:02.500")
	assert.Contains(t, out, "2 cues")

	shifted := filepath.Join(dir, "ep01.shifted.srt")
	data, err := os.ReadFile(shifted)
	require.NoError(t, err)
	assert.Contains(t, string(data), "00:00:02,500 --> 00:00:04,000")
}

func TestKnownCommands(t *testing.T) {
	dataDir := t.TempDir()

	out, err := execute(t, dataDir, "known", "add", "猫", "犬", "猫")
	require.NoError(t, err)
	assert.Contains(t, out, "added 2 known words")

	list := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(list, []byte("# anki export\n犬\n鳥\n\n"), 0o644))
	out, err = execute(t, dataDir, "known", "import", list)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 of 2 words")

	out, err = execute(t, dataDir, "known", "count")
	require.NoError(t, err)
	assert.Equal(t, "3", strings.TrimSpace(out))
}

func TestQueueCommands(t *testing.T) {
	dataDir := t.TempDir()
	anime := t.TempDir()

	out, err := execute(t, dataDir, "queue", "add", anime, "--name", "Frieren", "--offset=-2")
	require.NoError(t, err)
	assert.Contains(t, out, "queued Frieren")

	out, err = execute(t, dataDir, "queue", "list", "--json")
	require.NoError(t, err)
	var items []*jobs.QueueItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Frieren", items[0].DisplayName)
	assert.Equal(t, anime, items[0].SubtitleFolder)
	assert.Equal(t, -2.0, items[0].SubtitleOffset)
	assert.Equal(t, jobs.StatusPending, items[0].Status)

	out, err = execute(t, dataDir, "queue", "remove", items[0].ID[:6])
	require.NoError(t, err)
	assert.Contains(t, out, "removed "+shortID(items[0].ID))

	out, err = execute(t, dataDir, "queue", "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestQueueRemove_UnknownID(t *testing.T) {
	_, err := execute(t, t.TempDir(), "queue", "remove", "nope")
	require.ErrorIs(t, err, jobs.ErrItemNotFound)
}

func TestResolveItemID(t *testing.T) {
	queue := jobs.NewQueue(nil)
	a, err := queue.Add(jobs.AddRequest{AnimeFolder: "/a", SubtitleFolder: "/a"})
	require.NoError(t, err)
	b, err := queue.Add(jobs.AddRequest{AnimeFolder: "/b", SubtitleFolder: "/b"})
	require.NoError(t, err)

	id, err := resolveItemID(queue, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	id, err = resolveItemID(queue, b.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)

	_, err = resolveItemID(queue, "")
	require.ErrorIs(t, err, jobs.ErrItemNotFound)
}
