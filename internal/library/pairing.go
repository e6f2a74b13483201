package library

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/subtitle"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/textutil"
)

// VideoExtensions are the recognised video container extensions.
var VideoExtensions = []string{".mp4", ".mkv", ".avi", ".m4v", ".mov"}

func IsVideo(path string) bool {
	return slices.Contains(VideoExtensions, strings.ToLower(filepath.Ext(path)))
}

func IsSubtitle(path string) bool {
	return slices.Contains(subtitle.Extensions, strings.ToLower(filepath.Ext(path)))
}

type Strategy string

const (
	StrategyName    Strategy = "name"
	StrategyEpisode Strategy = "episode"
)

// Pair dispatches to PairByName or PairByEpisode.
func Pair(strategy Strategy, videos, subtitles []string) []FilePair {
	if strategy == StrategyName {
		return PairByName(videos, subtitles)
	}
	return PairByEpisode(videos, subtitles)
}

// PairByName pairs each video with the subtitle sharing its base name,
// trying subtitle extensions in priority order. Results are in natural
// order of the video file name.
func PairByName(videos, subtitles []string) []FilePair {
	byName := make(map[string]string, len(subtitles))
	for _, sub := range subtitles {
		base := filepath.Base(sub)
		ext := filepath.Ext(base)
		byName[strings.TrimSuffix(base, ext)+strings.ToLower(ext)] = sub
	}

	pairs := make([]FilePair, 0)
	for _, video := range videos {
		if !IsVideo(video) {
			continue
		}
		base := filepath.Base(video)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		for _, ext := range subtitle.Extensions {
			if sub, ok := byName[stem+ext]; ok {
				pairs = append(pairs, FilePair{Video: video, Subtitle: sub})
				break
			}
		}
	}

	textutil.SortNatural(pairs, func(p FilePair) string { return p.VideoName() })
	return pairs
}

// PairByEpisode pairs videos and subtitles by extracted episode number.
// Candidates are visited in natural order. A video takes the first unused
// subtitle with the same episode; when both names carry a season the seasons
// must match too. Results are ordered by episode number.
func PairByEpisode(videos, subtitles []string) []FilePair {
	videoInfos := episodeInfos(videos, IsVideo)
	subInfos := episodeInfos(subtitles, IsSubtitle)

	type matched struct {
		pair    FilePair
		episode int
	}
	found := make([]matched, 0)
	used := make([]bool, len(subInfos))

	for _, v := range videoInfos {
		for j, s := range subInfos {
			if used[j] || s.Episode != v.Episode {
				continue
			}
			if v.Season != nil && s.Season != nil && *v.Season != *s.Season {
				continue
			}
			used[j] = true
			found = append(found, matched{
				pair:    FilePair{Video: v.FilePath, Subtitle: s.FilePath},
				episode: v.Episode,
			})
			break
		}
	}

	slices.SortStableFunc(found, func(a, b matched) int {
		return a.episode - b.episode
	})

	pairs := make([]FilePair, len(found))
	for i, m := range found {
		pairs[i] = m.pair
	}
	return pairs
}

func episodeInfos(paths []string, keep func(string) bool) []EpisodeInfo {
	sorted := make([]string, 0, len(paths))
	for _, p := range paths {
		if keep(p) {
			sorted = append(sorted, p)
		}
	}
	slices.SortFunc(sorted, func(a, b string) int {
		return textutil.CompareNatural(filepath.Base(a), filepath.Base(b))
	})

	infos := make([]EpisodeInfo, 0, len(sorted))
	for _, p := range sorted {
		if info, ok := ExtractEpisodeInfo(p); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// FindUnpaired returns the recognised files not used by pairs.
func FindUnpaired(videos, subtitles []string, pairs []FilePair) Unpaired {
	pairedVideos := make(map[string]bool, len(pairs))
	pairedSubs := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		pairedVideos[p.Video] = true
		pairedSubs[p.Subtitle] = true
	}

	ret := Unpaired{Videos: make([]string, 0), Subtitles: make([]string, 0)}
	for _, v := range videos {
		if IsVideo(v) && !pairedVideos[v] {
			ret.Videos = append(ret.Videos, v)
		}
	}
	for _, s := range subtitles {
		if IsSubtitle(s) && !pairedSubs[s] {
			ret.Subtitles = append(ret.Subtitles, s)
		}
	}
	textutil.SortNatural(ret.Videos, filepath.Base)
	textutil.SortNatural(ret.Subtitles, filepath.Base)
	return ret
}

// ListFiles returns the regular files directly inside dir.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ret = append(ret, filepath.Join(dir, entry.Name()))
	}
	return ret, nil
}

// FindPairs lists videoDir and subtitleDir and pairs them with strategy.
func FindPairs(videoDir, subtitleDir string, strategy Strategy) ([]FilePair, Unpaired, error) {
	videos, err := ListFiles(videoDir)
	if err != nil {
		return nil, Unpaired{}, err
	}
	subtitles := videos
	if filepath.Clean(subtitleDir) != filepath.Clean(videoDir) {
		subtitles, err = ListFiles(subtitleDir)
		if err != nil {
			return nil, Unpaired{}, err
		}
	}
	pairs := Pair(strategy, videos, subtitles)
	return pairs, FindUnpaired(videos, subtitles, pairs), nil
}
