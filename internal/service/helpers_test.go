package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/persistence"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/subtitle"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/tokenizer"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/vocab"
)

var testDict = map[string]tokenizer.Token{
	"勉強":  {Surface: "勉強", Lemma: "勉強", Reading: "ベンキョウ", POSPrimary: "名詞", POSSecondary: "サ変接続"},
	"日本語": {Surface: "日本語", Lemma: "日本語", Reading: "ニホンゴ", POSPrimary: "名詞", POSSecondary: "一般"},
	"王国":  {Surface: "王国", Lemma: "王国", Reading: "オウコク", POSPrimary: "名詞", POSSecondary: "一般"},
	"食べる": {Surface: "食べる", Lemma: "食べる", Reading: "タベル", POSPrimary: "動詞", POSSecondary: "自立"},
	"魔法":  {Surface: "魔法", Lemma: "魔法", Reading: "マホウ", POSPrimary: "名詞", POSSecondary: "一般"},
	"を":   {Surface: "を", Lemma: "を", Reading: "ヲ", POSPrimary: "助詞", POSSecondary: "格助詞"},
	"です":  {Surface: "です", Lemma: "です", Reading: "デス", POSPrimary: "助動詞"},
}

// spaceTokenizer splits on spaces and looks words up in testDict.
var spaceTokenizer = tokenizer.Func(func(text string) []tokenizer.Token {
	ret := make([]tokenizer.Token, 0)
	for i, field := range strings.Split(text, " ") {
		if i > 0 {
			ret = append(ret, tokenizer.Token{Surface: " ", Lemma: " ", POSPrimary: "記号"})
		}
		if tok, ok := testDict[field]; ok {
			ret = append(ret, tok)
			continue
		}
		ret = append(ret, tokenizer.Token{Surface: field, Lemma: field, POSPrimary: "記号"})
	}
	return ret
})

// mapReader serves cues by path.
type mapReader map[string][]subtitle.Cue

func (m mapReader) Read(path string) ([]subtitle.Cue, error) {
	cues, ok := m[path]
	if !ok {
		return nil, &subtitle.ParseError{Kind: subtitle.NotFound, Path: path, Err: os.ErrNotExist}
	}
	return cues, nil
}

func lines(texts ...string) []subtitle.Cue {
	cues := make([]subtitle.Cue, len(texts))
	for i, text := range texts {
		cues[i] = subtitle.Cue{
			Index: i + 1,
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i+1) * time.Second,
			Text:  text,
		}
	}
	return cues
}

func testSettings() Settings {
	return Settings{
		Rules:            vocab.DefaultRules(),
		UseKnownWords:    true,
		ExpectedLanguage: language.Japanese,
	}
}

func newTestStore(t *testing.T) *persistence.SQLiteStore {
	t.Helper()
	store, err := persistence.NewSQLiteStore(filepath.Join(t.TempDir(), "miner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func cardLemmas(t *testing.T, store *persistence.SQLiteStore) []string {
	t.Helper()
	cards, err := store.ListCards(context.Background(), 0)
	require.NoError(t, err)
	ret := make([]string, 0, len(cards))
	for _, c := range cards {
		ret = append(ret, c.Lemma)
	}
	return ret
}

func entryLemmas(entries []vocab.Entry) []string {
	ret := make([]string, 0, len(entries))
	for _, e := range entries {
		ret = append(ret, e.Lemma)
	}
	return ret
}
