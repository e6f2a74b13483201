package subtitle

import (
	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// DetectLanguage returns the language most cues are written in.
func DetectLanguage(cues []Cue) language.Tag {
	if len(cues) == 0 {
		return language.Und
	}

	counts := make(map[string]int)
	for _, cue := range cues {
		if cue.Text == "" {
			continue
		}
		counts[whatlanggo.DetectLang(cue.Text).Iso6391()]++
	}

	var topLang string
	var topCount int
	for lang, count := range counts {
		if count > topCount || (count == topCount && lang < topLang) {
			topLang = lang
			topCount = count
		}
	}
	if topLang == "" {
		return language.Und
	}

	tag, err := language.Parse(topLang)
	if err != nil {
		return language.Und
	}
	return tag
}

// IsLanguage reports whether tag has the same base language as want.
func IsLanguage(tag, want language.Tag) bool {
	got, _ := tag.Base()
	base, _ := want.Base()
	return got == base
}
