// Package dictionary looks up English definitions and pitch accents for
// mined Japanese words.
package dictionary

import (
	"context"
	"fmt"
	"strings"

	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

// MaxSenses is how many senses Format keeps.
const MaxSenses = 5

// Provider looks up the senses of a word. A word it does not know yields
// no senses and no error.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, word string) ([]string, error)
}

// Chain asks each provider in turn and returns the first non-empty answer.
// A failing provider is logged and skipped.
type Chain []Provider

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return strings.Join(names, ", ")
}

func (c Chain) Lookup(ctx context.Context, word string) ([]string, error) {
	for _, p := range c {
		senses, err := p.Lookup(ctx, word)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("%s lookup of %s failed: %v", p.Name(), word, err)
			continue
		}
		if len(senses) > 0 {
			return senses, nil
		}
	}
	return nil, nil
}

// Format numbers the first MaxSenses senses, one per line.
func Format(senses []string) string {
	var b strings.Builder
	for i, sense := range senses {
		if i == MaxSenses {
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, sense)
	}
	return b.String()
}

func joinGlosses(glosses []string) string {
	kept := make([]string, 0, len(glosses))
	for _, g := range glosses {
		if g = strings.TrimSpace(g); g != "" {
			kept = append(kept, g)
		}
	}
	return strings.Join(kept, "; ")
}
