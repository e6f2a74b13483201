package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKagome_Tokenize(t *testing.T) {
	k, err := NewKagome()
	require.NoError(t, err)

	tokens := k.Tokenize("王国です")
	require.Len(t, tokens, 2)

	assert.Equal(t, "王国", tokens[0].Surface)
	assert.Equal(t, "王国", tokens[0].Lemma)
	assert.Equal(t, "オウコク", tokens[0].Reading)
	assert.Equal(t, "名詞", tokens[0].POSPrimary)

	assert.Equal(t, "です", tokens[1].Surface)
	assert.Equal(t, "助動詞", tokens[1].POSPrimary)
	assert.Empty(t, tokens[1].POSSecondary)
}

func TestKagome_SurfacesCoverInput(t *testing.T) {
	k, err := NewKagome()
	require.NoError(t, err)

	text := "今日は学校で日本語を勉強しました"
	var b strings.Builder
	for _, tok := range k.Tokenize(text) {
		b.WriteString(tok.Surface)
		assert.NotEqual(t, "*", tok.Lemma)
		assert.NotEqual(t, "*", tok.POSSecondary)
	}
	assert.Equal(t, text, b.String())
	assert.Empty(t, k.Tokenize(""))
}

func TestFunc_Adapter(t *testing.T) {
	var tk Tokenizer = Func(func(text string) []Token {
		return []Token{{Surface: text, Lemma: text}}
	})
	assert.Equal(t, "x", tk.Tokenize("x")[0].Surface)
}
