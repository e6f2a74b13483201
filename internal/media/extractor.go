package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

var japaneseCodes = map[string]bool{"jpn": true, "ja": true, "japanese": true, "jp": true}

type Options struct {
	OutputDir string
	// AudioPadding is added before and after the cue.
	AudioPadding time.Duration
	// ScreenshotOffset is how far into the cue the frame is taken, capped
	// at half the cue.
	ScreenshotOffset time.Duration
	Workers          int
}

type ExtractorOption func(*Extractor)

// WithOperatorFactory replaces the ffmpeg operator.
func WithOperatorFactory(factory func(videoPath string) Operator) ExtractorOption {
	return func(e *Extractor) {
		e.newOperator = factory
	}
}

// Extractor cuts a screenshot and an audio clip for every mined word.
type Extractor struct {
	opts        Options
	newOperator func(videoPath string) Operator

	mu      sync.Mutex
	streams map[string]int
}

func NewExtractor(opts Options, extra ...ExtractorOption) (*Extractor, error) {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, fmt.Errorf("media output directory is required")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	e := &Extractor{
		opts:        opts,
		newOperator: NewOperator,
		streams:     make(map[string]int),
	}
	for _, opt := range extra {
		opt(e)
	}
	return e, nil
}

func (e *Extractor) OutputDir() string {
	return e.opts.OutputDir
}

// ExtractClips returns one clip per entry in entry order. Failed
// extractions leave empty names; only cancellation is returned as an error.
func (e *Extractor) ExtractClips(ctx context.Context, videoPath string, entries []vocab.Entry) ([]Clip, error) {
	clips := make([]Clip, len(entries))
	if len(entries) == 0 {
		return clips, nil
	}
	op := e.newOperator(videoPath)
	stream := e.japaneseStream(ctx, videoPath, op)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			clips[i] = e.extract(gctx, op, stream, entry)
			return nil
		})
	}
	return clips, g.Wait()
}

func (e *Extractor) extract(ctx context.Context, op Operator, stream int, entry vocab.Entry) Clip {
	base := fmt.Sprintf("%s_%d", safeFilename(entry.Lemma), int64(entry.StartTime*1000))
	start := secondsToDuration(entry.StartTime)
	length := secondsToDuration(entry.Duration)

	var clip Clip
	shot := base + ".jpg"
	at := start + min(e.opts.ScreenshotOffset, length/2)
	if err := op.Screenshot(ctx, at, filepath.Join(e.opts.OutputDir, shot)); err != nil {
		log.Warn("Screenshot for %s failed: %v", entry.Lemma, err)
	} else {
		clip.Screenshot = shot
	}

	audio := base + ".mp3"
	audioStart := max(0, start-e.opts.AudioPadding)
	audioEnd := start + length + e.opts.AudioPadding
	if err := op.AudioClip(ctx, audioStart, audioEnd-audioStart, stream, filepath.Join(e.opts.OutputDir, audio)); err != nil {
		log.Warn("Audio clip for %s failed: %v", entry.Lemma, err)
	} else {
		clip.Audio = audio
	}
	return clip
}

// japaneseStream returns the index of the first Japanese audio track, or -1
// to fall back to the first track. Results are cached per video.
func (e *Extractor) japaneseStream(ctx context.Context, videoPath string, op Operator) int {
	e.mu.Lock()
	if idx, ok := e.streams[videoPath]; ok {
		e.mu.Unlock()
		return idx
	}
	e.mu.Unlock()

	idx := -1
	streams, err := op.AudioStreams(ctx)
	if err != nil {
		log.Warn("Probing audio of %s failed: %v", filepath.Base(videoPath), err)
	}
	for _, s := range streams {
		if japaneseCodes[s.Language] {
			idx = s.Index
			break
		}
	}
	if err == nil && idx < 0 {
		log.Warn("No Japanese audio in %s, using the first track", filepath.Base(videoPath))
	}

	e.mu.Lock()
	e.streams[videoPath] = idx
	e.mu.Unlock()
	return idx
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func safeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, " .")
	if name == "" {
		return "word"
	}
	return name
}
