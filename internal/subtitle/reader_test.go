package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,500
こんにちは、世界!

2
00:00:03,000 --> 00:00:04,000
今日は天気がいい
ですね
`

const sampleASS = `[Script Info]
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:03.50,Default,,0,0,0,,勉強しよう
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileReader_ReadSRT(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ep01.srt", sampleSRT)

	file, err := NewReader().ReadFile(path)
	require.NoError(t, err)
	require.Len(t, file.Cues, 2)

	assert.Equal(t, FormatSRT, file.Format)
	assert.Equal(t, time.Second, file.Cues[0].Start)
	assert.Equal(t, 2500*time.Millisecond, file.Cues[0].End)
	assert.Equal(t, "こんにちは、世界!", file.Cues[0].Text)
	assert.Contains(t, file.Cues[1].Text, "今日は天気がいい")
	assert.Contains(t, file.Cues[1].Text, "ですね")
	assert.Equal(t, language.Japanese, file.Language)
}

func TestFileReader_ReadASS(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ep01.ass", sampleASS)

	cues, err := NewReader().Read(path)
	require.NoError(t, err)
	require.Len(t, cues, 1)
	assert.Equal(t, time.Second, cues[0].Start)
	assert.Equal(t, 3500*time.Millisecond, cues[0].End)
	assert.True(t, strings.Contains(cues[0].Text, "勉強しよう"))
}

func TestFileReader_NotFound(t *testing.T) {
	_, err := NewReader().Read(filepath.Join(t.TempDir(), "missing.srt"))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsMalformed(err))
	assert.True(t, apperror.Is(err, apperror.ErrSubtitleNotFound))
}

func TestFileReader_Malformed(t *testing.T) {
	dir := t.TempDir()

	unsupported := writeFile(t, dir, "ep01.txt", "hello")
	_, err := NewReader().Read(unsupported)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))

	broken := writeFile(t, dir, "ep02.srt", "1\n00:00:01,000 --> nonsense\nテキスト\n")
	_, err = NewReader().Read(broken)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.True(t, apperror.Is(err, apperror.ErrSubtitleMalformed))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, broken, pe.Path)
}

func TestCue_Shift(t *testing.T) {
	cue := Cue{Start: 2 * time.Second, End: 3 * time.Second}

	shifted := cue.Shift(Seconds(1.5))
	assert.Equal(t, 3500*time.Millisecond, shifted.Start)
	assert.Equal(t, 4500*time.Millisecond, shifted.End)

	clamped := cue.Shift(Seconds(-5))
	assert.Equal(t, time.Duration(0), clamped.Start)
	assert.Equal(t, time.Duration(0), clamped.End)

	partial := cue.Shift(Seconds(-2.5))
	assert.Equal(t, time.Duration(0), partial.Start)
	assert.Equal(t, 500*time.Millisecond, partial.End)
}

func TestDetectLanguage(t *testing.T) {
	cues := []Cue{
		{Text: "Hello, world!"},
		{Text: "こんにちは、世界!"},
		{Text: "こんにちは、世界!"},
		{Text: "Привет, мир!"},
	}
	lang := DetectLanguage(cues)
	assert.Equal(t, language.Japanese, lang)
	assert.True(t, IsLanguage(lang, language.MustParse("ja")))
	assert.Equal(t, language.Und, DetectLanguage(nil))
}

func TestSRTWriter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "retimed.srt")

	cues := []Cue{
		{Start: time.Second, End: 2 * time.Second, Text: "一行目"},
		{Start: 3 * time.Second, End: 4 * time.Second, Text: "二行目"},
	}
	require.NoError(t, NewWriter().Write(out, cues))

	got, err := NewReader().Read(out)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "一行目", got[0].Text)
	assert.Equal(t, 3*time.Second, got[1].Start)
}
