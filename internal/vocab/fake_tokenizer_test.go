package vocab

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/tokenizer"
)

// dictTokenizer splits text by longest match against a fixed dictionary.
// Runes it does not know become symbol tokens without a reading.
type dictTokenizer struct {
	dict map[string]tokenizer.Token

	mu    sync.Mutex
	calls []string
}

func newDictTokenizer(words ...tokenizer.Token) *dictTokenizer {
	dict := make(map[string]tokenizer.Token, len(words))
	for _, w := range words {
		dict[w.Surface] = w
	}
	return &dictTokenizer{dict: dict}
}

func (d *dictTokenizer) Tokenize(text string) []tokenizer.Token {
	d.mu.Lock()
	d.calls = append(d.calls, text)
	d.mu.Unlock()

	ret := make([]tokenizer.Token, 0)
	for text != "" {
		best := ""
		for surface := range d.dict {
			if strings.HasPrefix(text, surface) && len(surface) > len(best) {
				best = surface
			}
		}
		if best == "" {
			_, size := utf8.DecodeRuneInString(text)
			best = text[:size]
			ret = append(ret, tokenizer.Token{Surface: best, Lemma: best, POSPrimary: "記号"})
		} else {
			ret = append(ret, d.dict[best])
		}
		text = text[len(best):]
	}
	return ret
}

func (d *dictTokenizer) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func word(surface, lemma, reading, primary, secondary string) tokenizer.Token {
	return tokenizer.Token{
		Surface:      surface,
		Lemma:        lemma,
		Reading:      reading,
		POSPrimary:   primary,
		POSSecondary: secondary,
	}
}

func testTokenizer() *dictTokenizer {
	return newDictTokenizer(
		word("王国", "王国", "オウコク", "名詞", "一般"),
		word("です", "です", "デス", "助動詞", ""),
		word("と", "と", "ト", "助詞", "並立助詞"),
		word("を", "を", "ヲ", "助詞", "格助詞"),
		word("勉強", "勉強", "ベンキョウ", "名詞", "サ変接続"),
		word("日本語", "日本語", "ニホンゴ", "名詞", "一般"),
		word("日", "日", "ヒ", "名詞", "一般"),
		word("食べ", "食べる", "タベ", "動詞", "自立"),
		word("食べる", "食べる", "タベル", "動詞", "自立"),
		word("た", "た", "タ", "助動詞", ""),
		word("スクランブル", "スクランブル-scramble", "スクランブル", "名詞", "一般"),
		word("ドキドキ", "ドキドキ", "ドキドキ", "副詞", "一般"),
	)
}
