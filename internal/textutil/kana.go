package textutil

import (
	"strings"
	"unicode"
)

// IsKanji reports whether r is in the CJK Unified Ideographs block.
func IsKanji(r rune) bool {
	return r >= '\u4e00' && r <= '\u9fff'
}

func HasKanji(s string) bool {
	return strings.IndexFunc(s, IsKanji) >= 0
}

func CountKanji(s string) int {
	n := 0
	for _, r := range s {
		if IsKanji(r) {
			n++
		}
	}
	return n
}

func isKatakanaRune(r rune) bool {
	return (r >= '\u30a0' && r <= '\u30ff') || r == 'ー' || r == '・'
}

// IsKatakanaOnly reports whether every non-blank rune of s is katakana,
// the long vowel mark or the middle dot.
func IsKatakanaOnly(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !isKatakanaRune(r) {
			return false
		}
	}
	return true
}

// KatakanaToHiragana shifts ァ..ヶ into the hiragana block. Other runes pass through.
func KatakanaToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '\u30a1' && r <= '\u30f6' {
			return r - 0x60
		}
		return r
	}, s)
}

// IsJapanese reports whether s contains any hiragana, katakana or kanji.
func IsJapanese(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return (r >= '\u3040' && r <= '\u309f') || isKatakanaRune(r) || IsKanji(r)
	}) >= 0
}
