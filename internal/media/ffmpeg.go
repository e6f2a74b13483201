package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const commandTimeout = 30 * time.Second

type ffmpeg struct {
	ffmpegCmd  string
	ffprobeCmd string
	filePath   string
}

func NewFfmpeg(mediaPath string) ffmpeg {
	return ffmpeg{
		ffmpegCmd:  "ffmpeg",
		ffprobeCmd: "ffprobe",
		filePath:   filepath.Clean(mediaPath),
	}
}

// AudioStreams lists the audio tracks of the video. Output that parses is
// accepted even when ffprobe exits non-zero.
func (ff ffmpeg) AudioStreams(ctx context.Context) ([]AudioStream, error) {
	cmdPath, err := exec.LookPath(ff.ffprobeCmd)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	output, runErr := exec.CommandContext(ctx, cmdPath, ff.readProbeArgs()...).Output()

	var probeResult struct {
		Streams []struct {
			Index     int    `json:"index"`
			CodecType string `json:"codec_type"`
			Tags      struct {
				Language string `json:"language"`
				Title    string `json:"title"`
			} `json:"tags"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &probeResult); err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("ffprobe %s: %w", ff.filePath, runErr)
		}
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if runErr != nil && len(probeResult.Streams) == 0 {
		return nil, fmt.Errorf("ffprobe %s: %w", ff.filePath, runErr)
	}

	streams := make([]AudioStream, 0, len(probeResult.Streams))
	for _, s := range probeResult.Streams {
		if s.CodecType != "" && s.CodecType != "audio" {
			continue
		}
		lang := strings.ToLower(strings.TrimSpace(s.Tags.Language))
		if lang == "" {
			lang = "und"
		}
		streams = append(streams, AudioStream{Index: s.Index, Language: lang, Title: s.Tags.Title})
	}
	return streams, nil
}

func (ff ffmpeg) Screenshot(ctx context.Context, at time.Duration, output string) error {
	return ff.run(ctx, ff.screenshotArgs(at, output))
}

func (ff ffmpeg) AudioClip(ctx context.Context, start, length time.Duration, stream int, output string) error {
	return ff.run(ctx, ff.audioArgs(start, length, stream, output))
}

func (ff ffmpeg) run(ctx context.Context, args []string) error {
	cmdPath, err := exec.LookPath(ff.ffmpegCmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cmdPath, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (ff ffmpeg) readProbeArgs() []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a",
		ff.filePath,
	}
}

func (ff ffmpeg) screenshotArgs(at time.Duration, output string) []string {
	return []string{
		"-y",
		"-ss", seconds(at),
		"-i", ff.filePath,
		"-frames:v", "1",
		"-q:v", "2",
		output,
	}
}

func (ff ffmpeg) audioArgs(start, length time.Duration, stream int, output string) []string {
	mapping := "0:a:0"
	if stream >= 0 {
		mapping = "0:" + strconv.Itoa(stream)
	}
	return []string{
		"-y",
		"-ss", seconds(start),
		"-t", seconds(length),
		"-i", ff.filePath,
		"-map", mapping,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		output,
	}
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
