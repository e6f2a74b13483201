package vocab

// KnownSet answers whether a word is already known.
type KnownSet interface {
	Contains(word string) bool
}

// WordSet is a plain set of words.
type WordSet map[string]struct{}

func NewWordSet(words ...string) WordSet {
	ret := make(WordSet, len(words))
	for _, w := range words {
		ret[w] = struct{}{}
	}
	return ret
}

func (s WordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// FilterUnknown keeps entries whose lemma and surface are both unknown.
func FilterUnknown(entries []Entry, known KnownSet) []Entry {
	ret := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if known.Contains(e.Lemma) || known.Contains(e.Surface) {
			continue
		}
		ret = append(ret, e)
	}
	return ret
}

// WordLists provides blacklist and whitelist lookups by lemma.
type WordLists interface {
	IsBlacklisted(word string) bool
	IsWhitelisted(word string) bool
}

// ApplyWordLists removes blacklisted lemmas. A whitelisted lemma is always
// kept, even when it is also blacklisted.
func ApplyWordLists(entries []Entry, lists WordLists) []Entry {
	ret := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if lists.IsWhitelisted(e.Lemma) || !lists.IsBlacklisted(e.Lemma) {
			ret = append(ret, e)
		}
	}
	return ret
}

// DeduplicateBySentence keeps only the first entry for each sentence.
func DeduplicateBySentence(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	ret := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Sentence]; ok {
			continue
		}
		seen[e.Sentence] = struct{}{}
		ret = append(ret, e)
	}
	return ret
}

// EpisodeFrequency counts, for each lemma, the number of episodes whose
// entries contain it.
func EpisodeFrequency(episodes [][]Entry) map[string]int {
	counts := make(map[string]int)
	for _, entries := range episodes {
		seen := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			if _, ok := seen[e.Lemma]; ok {
				continue
			}
			seen[e.Lemma] = struct{}{}
			counts[e.Lemma]++
		}
	}
	return counts
}

// FilterByEpisodeCount keeps entries whose lemma appears in at least
// minEpisodes episodes. A minimum of one or less disables the filter.
func FilterByEpisodeCount(entries []Entry, counts map[string]int, minEpisodes int) []Entry {
	if minEpisodes <= 1 {
		return entries
	}
	ret := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if counts[e.Lemma] >= minEpisodes {
			ret = append(ret, e)
		}
	}
	return ret
}
