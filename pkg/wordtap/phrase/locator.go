package phrase

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

// Locate maps token indexes to the ID of the saved phrase covering them.
//
// Links recorded for the current text are tried first: a contiguous link
// whose tokens are still in place maps directly, otherwise the first window
// of the word-only token sequence matching the link's words is used. Every
// known phrase is then scanned across every window, so a phrase that recurs
// is mapped at each occurrence. Indexes mapped by a link are never
// overwritten by the scan; otherwise, when windows of different phrases
// overlap, the later phrase in known wins.
func Locate(tokens []string, known []store.ContextPhrase, links []store.ContextLink) map[int]string {
	result := make(map[int]string)
	if len(tokens) == 0 {
		return result
	}

	words, positions := wordProjection(tokens)

	for _, link := range links {
		matchLink(tokens, words, positions, link, result)
	}
	linked := make(map[int]bool, len(result))
	for idx := range result {
		linked[idx] = true
	}

	for _, p := range known {
		if p.ID == "" {
			continue
		}
		target := targetTokens(p)
		if len(target) == 0 {
			continue
		}
		for start := 0; start+len(target) <= len(words); start++ {
			if !windowEquals(words[start:start+len(target)], target) {
				continue
			}
			for k := range target {
				if pos := positions[start+k]; !linked[pos] {
					result[pos] = p.ID
				}
			}
		}
	}
	return result
}

// wordProjection returns the normalized word tokens of tokens together with
// their positions in the original sequence.
func wordProjection(tokens []string) ([]string, []int) {
	words := make([]string, 0, len(tokens))
	positions := make([]int, 0, len(tokens))
	for i, tok := range tokens {
		if !ingest.IsWordToken(tok) {
			continue
		}
		norm := ingest.NormalizeWord(tok)
		if norm == "" {
			continue
		}
		words = append(words, norm)
		positions = append(positions, i)
	}
	return words, positions
}

func matchLink(tokens, words []string, positions []int, link store.ContextLink, result map[int]string) bool {
	if link.ContextID == "" {
		return false
	}

	normalized := link.NormalizedTokens
	if len(normalized) == 0 {
		normalized = projectIndexes(tokens, link.WordIndexes)
	}
	if len(normalized) == 0 {
		return false
	}

	// Fast path: the recorded span is contiguous and unchanged.
	if lo, hi, ok := span(link.WordIndexes, len(tokens)); ok {
		size := hi - lo + 1
		if size == link.TokenCount && size == len(normalized) && spanEquals(tokens[lo:hi+1], normalized) {
			for i := lo; i <= hi; i++ {
				result[i] = link.ContextID
			}
			return true
		}
	}

	target := wordEntries(normalized)
	if len(target) == 0 {
		return false
	}
	for start := 0; start+len(target) <= len(words); start++ {
		if windowEquals(words[start:start+len(target)], target) {
			for k := range target {
				result[positions[start+k]] = link.ContextID
			}
			return true
		}
	}
	return false
}

// wordEntries drops the punctuation entries of a link's normalized tokens.
func wordEntries(normalized []string) []string {
	out := make([]string, 0, len(normalized))
	for _, tok := range normalized {
		if ingest.IsWordToken(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func projectIndexes(tokens []string, indexes []int) []string {
	var out []string
	for _, idx := range indexes {
		if idx < 0 || idx >= len(tokens) || !ingest.IsWordToken(tokens[idx]) {
			continue
		}
		if norm := ingest.NormalizeWord(tokens[idx]); norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

// span returns the bounds of indexes when they all fall inside [0, n).
func span(indexes []int, n int) (lo, hi int, ok bool) {
	if len(indexes) == 0 {
		return 0, 0, false
	}
	lo, hi = indexes[0], indexes[0]
	for _, idx := range indexes {
		if idx < 0 || idx >= n {
			return 0, 0, false
		}
		if idx < lo {
			lo = idx
		}
		if idx > hi {
			hi = idx
		}
	}
	return lo, hi, true
}

func spanEquals(raw, normalized []string) bool {
	for k, tok := range raw {
		if ingest.NormalizeWord(tok) != normalized[k] {
			return false
		}
	}
	return true
}

func windowEquals(window, target []string) bool {
	for k := range target {
		if window[k] != target[k] {
			return false
		}
	}
	return true
}

func targetTokens(p store.ContextPhrase) []string {
	if len(p.NormalizedTokens) > 0 {
		return p.NormalizedTokens
	}
	return ingest.NormalizeTokens(p.Tokens)
}

// Locator memoizes Locate for the last set of inputs it saw. Views that
// recompute on every render only pay for a scan when the tokens, phrases or
// links actually change. It is safe for concurrent use.
type Locator struct {
	mu     sync.Mutex
	key    string
	result map[int]string
	hits   int
	misses int
}

// Locate returns Locate(tokens, known, links), reusing the previous result
// when the inputs are unchanged.
func (l *Locator) Locate(tokens []string, known []store.ContextPhrase, links []store.ContextLink) map[int]string {
	key := inputKey(tokens, known, links)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.result != nil && key == l.key {
		l.hits++
		return copyResult(l.result)
	}
	l.misses++
	l.key = key
	l.result = Locate(tokens, known, links)
	return copyResult(l.result)
}

// Stats reports cache hits and misses.
func (l *Locator) Stats() (hits, misses int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits, l.misses
}

// Reset drops the memoized result.
func (l *Locator) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.key = ""
	l.result = nil
}

// inputKey digests everything Locate reads.
func inputKey(tokens []string, known []store.ContextPhrase, links []store.ContextLink) string {
	var b strings.Builder
	writeList := func(items []string) {
		b.WriteString(strconv.Itoa(len(items)))
		b.WriteByte(':')
		for _, item := range items {
			b.WriteString(strconv.Itoa(len(item)))
			b.WriteByte('.')
			b.WriteString(item)
		}
		b.WriteByte(';')
	}

	writeList(tokens)
	for _, p := range known {
		writeList([]string{p.ID})
		writeList(p.NormalizedTokens)
		writeList(p.Tokens)
	}
	b.WriteByte('|')
	for _, link := range links {
		writeList([]string{link.ContextID, strconv.Itoa(link.TokenCount)})
		writeList(link.NormalizedTokens)
		for _, idx := range link.WordIndexes {
			b.WriteString(strconv.Itoa(idx))
			b.WriteByte(',')
		}
		b.WriteByte(';')
	}
	return Hash(b.String())
}

func copyResult(in map[int]string) map[int]string {
	out := make(map[int]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
