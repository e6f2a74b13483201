package library

import "path/filepath"

// FilePair is one accepted (video, subtitle) combination.
type FilePair struct {
	Video    string `json:"video"`
	Subtitle string `json:"subtitle"`
}

func (p FilePair) VideoName() string {
	return filepath.Base(p.Video)
}

func (p FilePair) SubtitleName() string {
	return filepath.Base(p.Subtitle)
}

// EpisodeInfo is the (season, episode) read from a file name. Season is nil
// when the name carries only an episode number.
type EpisodeInfo struct {
	FilePath string `json:"file_path"`
	Episode  int    `json:"episode"`
	Season   *int   `json:"season,omitempty"`
}

func (e EpisodeInfo) HasSeason() bool {
	return e.Season != nil
}

// Unpaired lists recognised files left without a partner.
type Unpaired struct {
	Videos    []string `json:"videos"`
	Subtitles []string `json:"subtitles"`
}

// Series is a folder holding video files.
type Series struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	VideoCount    int    `json:"video_count"`
	SubtitleCount int    `json:"subtitle_count"`
	PairCount     int    `json:"pair_count"`
}
