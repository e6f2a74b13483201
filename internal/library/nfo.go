package library

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const showNFO = "tvshow.nfo"

// ShowInfo is the part of a tvshow.nfo file (Kodi, Jellyfin) used to name
// a series.
type ShowInfo struct {
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title,omitempty"`
	Year          int    `json:"year,omitempty"`
	Season        int    `json:"season,omitempty"`
}

type xmlTVShow struct {
	Title         string `xml:"title"`
	OriginalTitle string `xml:"originaltitle"`
	Year          int    `xml:"year"`
	Season        int    `xml:"season"`
}

func ReadShowInfo(path string) (*ShowInfo, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".nfo") {
		return nil, fmt.Errorf("file extension must be .nfo: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var show xmlTVShow
	if err := xml.Unmarshal(data, &show); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &ShowInfo{
		Title:         strings.TrimSpace(show.Title),
		OriginalTitle: strings.TrimSpace(show.OriginalTitle),
		Year:          show.Year,
		Season:        show.Season,
	}, nil
}

// FindShowInfo reads tvshow.nfo from dir, or from its parent when dir is a
// season folder.
func FindShowInfo(dir string) (*ShowInfo, bool) {
	dir = filepath.Clean(dir)
	for _, candidate := range []string{dir, filepath.Dir(dir)} {
		info, err := ReadShowInfo(filepath.Join(candidate, showNFO))
		if err == nil && info.Title != "" {
			return info, true
		}
	}
	return nil, false
}

// SeriesTitle names the series stored in dir: the tvshow.nfo title when
// there is one, the folder name otherwise.
func SeriesTitle(dir string) string {
	if info, ok := FindShowInfo(dir); ok {
		return info.Title
	}
	return filepath.Base(filepath.Clean(dir))
}
