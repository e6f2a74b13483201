package vocab

import (
	"strings"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/textutil"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/tokenizer"
)

// Annotate renders text with readings after each kanji-bearing token in
// the "王国[おうこく]です" form. Tokens without kanji, without a reading, or
// whose reading spells the surface are emitted unchanged.
func Annotate(text string, tok tokenizer.Tokenizer) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	for _, t := range tok.Tokenize(text) {
		surface := t.Surface
		if !textutil.HasKanji(surface) || t.Reading == "" {
			b.WriteString(surface)
			continue
		}
		hiragana := textutil.KatakanaToHiragana(t.Reading)
		if hiragana == surface {
			b.WriteString(surface)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(surface)
		b.WriteByte('[')
		b.WriteString(hiragana)
		b.WriteByte(']')
	}
	return b.String()
}
