package library

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

type episodePattern struct {
	re        *regexp.Regexp
	hasSeason bool
}

// Checked in order; the first pattern that matches wins.
var episodePatterns = []episodePattern{
	{re: regexp.MustCompile(`[Ss](\d+)[Ee](\d+)`), hasSeason: true},
	{re: regexp.MustCompile(`(\d+)[xX](\d+)`), hasSeason: true},
	{re: regexp.MustCompile(`(?i)ep(?:isode)?[\s._-]*(\d+)`)},
	{re: regexp.MustCompile(`(?:^|[^\d])(\d{1,3})(?:[^\d]|$)`)},
}

// ExtractEpisodeInfo reads the episode number from the file name of path,
// ignoring its extension. ok is false when no pattern matches.
func ExtractEpisodeInfo(path string) (info EpisodeInfo, ok bool) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	info, ok = ExtractEpisode(stem)
	info.FilePath = path
	return info, ok
}

// ExtractEpisode applies the pattern ladder to a file name stem.
// Full-width digits are read as ASCII digits.
func ExtractEpisode(stem string) (EpisodeInfo, bool) {
	stem = width.Fold.String(stem)

	for _, p := range episodePatterns {
		m := p.re.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		if p.hasSeason {
			season, err1 := strconv.Atoi(m[1])
			episode, err2 := strconv.Atoi(m[2])
			if err1 != nil || err2 != nil {
				continue
			}
			return EpisodeInfo{Episode: episode, Season: &season}, true
		}
		episode, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return EpisodeInfo{Episode: episode}, true
	}
	return EpisodeInfo{}, false
}
