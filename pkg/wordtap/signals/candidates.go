package signals

import (
	"sort"
	"strings"
)

// BuildCandidates returns the multi-word strings worth looking up in a
// dictionary for a selection, in priority order.
//
// A multi-index selection yields one candidate: the selected tokens joined
// in index order. A single index yields word+next, word+next+next,
// prev+word and prev+word+next, skipping punctuation and dropping any
// candidate that is a single word.
func BuildCandidates(tokens []string, indexes []int) []string {
	if len(indexes) == 0 {
		return nil
	}

	if len(indexes) > 1 {
		sorted := append([]int(nil), indexes...)
		sort.Ints(sorted)
		parts := make([]string, 0, len(sorted))
		for _, idx := range sorted {
			if tok := tokenAt(tokens, idx); tok != "" {
				parts = append(parts, tok)
			}
		}
		if len(parts) == 0 {
			return nil
		}
		return []string{strings.Join(parts, " ")}
	}

	index := indexes[0]
	word := tokenAt(tokens, index)
	if word == "" {
		return nil
	}
	prev := prevWord(tokens, index)
	next := nextWord(tokens, index, 1)
	afterNext := nextWord(tokens, index, 2)

	var out []string
	addCandidate := func(parts ...string) {
		for _, p := range parts {
			if p == "" {
				return
			}
		}
		candidate := strings.Join(parts, " ")
		if !strings.Contains(candidate, " ") {
			return
		}
		for _, existing := range out {
			if existing == candidate {
				return
			}
		}
		out = append(out, candidate)
	}

	addCandidate(word, next)
	addCandidate(word, next, afterNext)
	addCandidate(prev, word)
	addCandidate(prev, word, next)
	return out
}
