package vocab

import (
	"strings"
	"unicode/utf8"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/textutil"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/tokenizer"
)

var (
	// Particles, auxiliary verbs, symbols and punctuation.
	functionPOS = map[string]bool{
		"助詞":   true,
		"助動詞":  true,
		"記号":   true,
		"補助記号": true,
	}
	// Interjections and fillers.
	interjectionPOS = map[string]bool{
		"感動詞":  true,
		"フィラー": true,
	}
)

var (
	DefaultAllowedPOS       = []string{"名詞", "動詞", "形容詞", "副詞", "形状詞"}
	DefaultExcludedSubtypes = []string{"非自立", "代名詞", "数詞", "数", "接尾", "助動詞", "接頭", "固有名詞"}
)

const DefaultMinLength = 2

// Rules decides which tokens are worth mining.
type Rules struct {
	MinLength        int
	AllowedPOS       map[string]bool
	ExcludedSubtypes map[string]bool
}

func NewRules(minLength int, allowedPOS, excludedSubtypes []string) Rules {
	return Rules{
		MinLength:        minLength,
		AllowedPOS:       toSet(allowedPOS),
		ExcludedSubtypes: toSet(excludedSubtypes),
	}
}

func DefaultRules() Rules {
	return NewRules(DefaultMinLength, DefaultAllowedPOS, DefaultExcludedSubtypes)
}

func toSet(items []string) map[string]bool {
	ret := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			ret[item] = true
		}
	}
	return ret
}

// Admit reports whether tok should become a vocabulary entry. The checks run
// in a fixed order and the first failing one rejects the token.
func (r Rules) Admit(tok tokenizer.Token) bool {
	surface := tok.Surface
	if strings.TrimSpace(surface) == "" {
		return false
	}
	length := utf8.RuneCountInString(surface)
	if length < r.MinLength {
		return false
	}
	if tok.POSPrimary == "" {
		return false
	}
	if functionPOS[tok.POSPrimary] || interjectionPOS[tok.POSPrimary] {
		return false
	}
	if !r.AllowedPOS[tok.POSPrimary] {
		return false
	}
	if tok.POSSecondary != "" && r.ExcludedSubtypes[tok.POSSecondary] {
		return false
	}
	if tok.Lemma == "" {
		return false
	}
	return admitScript(surface, length)
}

func admitScript(surface string, length int) bool {
	hasKanji := textutil.HasKanji(surface)

	if !hasKanji && textutil.IsKatakanaOnly(surface) {
		stripped := strings.NewReplacer("ッ", "", "ー", "", "・", "").Replace(surface)
		unique := make(map[rune]struct{})
		for _, r := range stripped {
			unique[r] = struct{}{}
		}
		// Repeated sounds like ドキドキ or ワーワー.
		if len(unique) <= 2 && length <= 4 {
			return false
		}
		// Clipped sound effects like ガッ.
		if strings.HasSuffix(surface, "ッ") && length <= 3 {
			return false
		}
		return length >= 2
	}

	if hasKanji {
		return !(textutil.CountKanji(surface) == 1 && length == 1)
	}
	return false
}

// TrimGloss drops an annotation appended to a lemma after a hyphen, as in
// "スクランブル-scramble".
func TrimGloss(lemma string) string {
	if i := strings.Index(lemma, "-"); i >= 0 {
		return lemma[:i]
	}
	return lemma
}
