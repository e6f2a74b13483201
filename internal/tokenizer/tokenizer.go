package tokenizer

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Token is one morpheme of analysed text.
type Token struct {
	Surface string `json:"surface"`
	// Lemma is the dictionary form; equal to Surface when the analyser has none.
	Lemma   string `json:"lemma"`
	Reading string `json:"reading"`

	POSPrimary string `json:"pos_primary"`
	// POSSecondary is empty when the analyser reports no subtype.
	POSSecondary string `json:"pos_secondary,omitempty"`
}

// Tokenizer splits text into ordered tokens. Implementations must not keep
// state between calls.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// Func adapts a plain function to the Tokenizer interface.
type Func func(text string) []Token

func (f Func) Tokenize(text string) []Token {
	return f(text)
}

// Kagome analyses text with kagome and the IPA dictionary.
type Kagome struct {
	t *tokenizer.Tokenizer
}

func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("create kagome tokenizer: %w", err)
	}
	return &Kagome{t: t}, nil
}

func (k *Kagome) Tokenize(text string) []Token {
	if text == "" {
		return nil
	}
	raw := k.t.Tokenize(text)
	ret := make([]Token, 0, len(raw))
	for _, kt := range raw {
		ret = append(ret, convert(kt))
	}
	return ret
}

func convert(kt tokenizer.Token) Token {
	tok := Token{
		Surface: kt.Surface,
		Lemma:   kt.Surface,
	}

	pos := kt.POS()
	if len(pos) > 0 {
		tok.POSPrimary = feature(pos[0])
	}
	if len(pos) > 1 {
		tok.POSSecondary = feature(pos[1])
	}
	if base, ok := kt.BaseForm(); ok && feature(base) != "" {
		tok.Lemma = base
	}
	if reading, ok := kt.Reading(); ok {
		tok.Reading = feature(reading)
	}
	return tok
}

// feature maps the dictionary's "*" placeholder to the empty string.
func feature(s string) string {
	if s == "*" {
		return ""
	}
	return s
}
