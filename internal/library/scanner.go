package library

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/textutil"
)

type scannerOptions struct {
	cacheTTL time.Duration
	strategy Strategy
}

type Option func(*scannerOptions)

func WithCacheTTL(ttl time.Duration) Option {
	return func(o *scannerOptions) {
		o.cacheTTL = ttl
	}
}

func WithStrategy(strategy Strategy) Option {
	return func(o *scannerOptions) {
		o.strategy = strategy
	}
}

type scanCache struct {
	root    string
	scanned time.Time
	series  []Series
}

// Scanner finds folders under a root that hold video files and reports how
// many of their videos pair with a subtitle in the same folder.
type Scanner struct {
	strategy Strategy

	mu       sync.RWMutex
	cacheTTL time.Duration
	cache    *scanCache
}

func NewScanner(opts ...Option) *Scanner {
	options := scannerOptions{
		cacheTTL: 5 * time.Second,
		strategy: StrategyEpisode,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Scanner{
		strategy: options.strategy,
		cacheTTL: options.cacheTTL,
	}
}

func (s *Scanner) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

func (s *Scanner) Scan(ctx context.Context, root string) ([]Series, error) {
	root = filepath.Clean(root)

	s.mu.RLock()
	if s.cache != nil && s.cache.root == root && (s.cacheTTL <= 0 || time.Since(s.cache.scanned) < s.cacheTTL) {
		cached := append([]Series(nil), s.cache.series...)
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	type folder struct {
		videos    []string
		subtitles []string
	}
	folders := make(map[string]*folder)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		isVideo, isSub := IsVideo(path), IsSubtitle(path)
		if !isVideo && !isSub {
			return nil
		}
		dir := filepath.Dir(path)
		f, ok := folders[dir]
		if !ok {
			f = &folder{}
			folders[dir] = f
		}
		if isVideo {
			f.videos = append(f.videos, path)
		} else {
			f.subtitles = append(f.subtitles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ret := make([]Series, 0, len(folders))
	for dir, f := range folders {
		if len(f.videos) == 0 {
			continue
		}
		ret = append(ret, Series{
			Name:          SeriesTitle(dir),
			Path:          dir,
			VideoCount:    len(f.videos),
			SubtitleCount: len(f.subtitles),
			PairCount:     len(Pair(s.strategy, f.videos, f.subtitles)),
		})
	}
	textutil.SortNatural(ret, func(series Series) string { return series.Path })

	s.mu.Lock()
	s.cache = &scanCache{root: root, scanned: time.Now(), series: append([]Series(nil), ret...)}
	s.mu.Unlock()

	return ret, nil
}
