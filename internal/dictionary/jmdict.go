package dictionary

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// JMdict is the offline JMdict_e dictionary held in memory, keyed by every
// kanji and kana form of each entry.
type JMdict struct {
	senses map[string][]string
}

var _ Provider = (*JMdict)(nil)

type jmdictEntry struct {
	Kanji  []string `xml:"k_ele>keb"`
	Kana   []string `xml:"r_ele>reb"`
	Senses []struct {
		Glosses []string `xml:"gloss"`
	} `xml:"sense"`
}

// LoadJMdict parses the JMdict XML file at path.
func LoadJMdict(path string) (*JMdict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := ParseJMdict(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

// ParseJMdict streams the entries of a JMdict document. The first entry
// listing a form owns it. Entity references declared in the DTD, such as
// &n;, are kept as literal text.
func ParseJMdict(r io.Reader) (*JMdict, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity

	d := &JMdict{senses: make(map[string][]string)}
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "entry" {
			continue
		}
		var entry jmdictEntry
		if err := decoder.DecodeElement(&entry, &start); err != nil {
			return nil, err
		}
		d.add(entry)
	}
	return d, nil
}

func (d *JMdict) add(entry jmdictEntry) {
	senses := make([]string, 0, len(entry.Senses))
	for _, s := range entry.Senses {
		if joined := joinGlosses(s.Glosses); joined != "" {
			senses = append(senses, joined)
		}
	}
	if len(senses) == 0 {
		return
	}
	for _, forms := range [][]string{entry.Kanji, entry.Kana} {
		for _, form := range forms {
			if _, ok := d.senses[form]; !ok && form != "" {
				d.senses[form] = senses
			}
		}
	}
}

func (d *JMdict) Len() int {
	return len(d.senses)
}

func (d *JMdict) Name() string {
	return "JMdict"
}

func (d *JMdict) Lookup(_ context.Context, word string) ([]string, error) {
	senses := d.senses[word]
	if len(senses) == 0 {
		return nil, nil
	}
	return append([]string(nil), senses...), nil
}
