package phrase

import (
	"sort"
	"strings"
	"time"

	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

// NewRecord builds the phrase record for a selection of tokens. The text is
// the tokens joined by single spaces; ID, normalized text and normalized
// word tokens are derived from it.
func NewRecord(tokens []string, translation string, status store.Status) store.ContextPhrase {
	text := strings.Join(nonEmpty(tokens), " ")
	normalized := ingest.NormalizeContext(text)
	return store.ContextPhrase{
		ID:               BuildContextID(normalized),
		Text:             text,
		NormalizedText:   normalized,
		NormalizedTokens: ingest.NormalizeTokens(tokens),
		Translation:      strings.TrimSpace(translation),
		Tokens:           append([]string(nil), tokens...),
		TokenCount:       len(tokens),
		Status:           status,
	}
}

// NewLink records that contextID was selected at indexes of tokens inside
// textID. Indexes are sorted and deduplicated; out-of-range indexes are
// dropped. NormalizedTokens holds one normalized token per index,
// punctuation included, so the span can be checked in place later.
func NewLink(textID, contextID string, indexes []int, tokens []string, now time.Time) store.ContextLink {
	sorted := SortedIndexes(indexes, len(tokens))

	normalized := make([]string, len(sorted))
	for i, idx := range sorted {
		normalized[i] = ingest.NormalizeWord(tokens[idx])
	}

	return store.ContextLink{
		TextID:           textID,
		ContextID:        contextID,
		WordIndexes:      sorted,
		NormalizedTokens: normalized,
		TokenCount:       len(sorted),
		UpdatedAt:        now,
	}
}

// SortedIndexes returns the distinct indexes in [0, n) in ascending order.
func SortedIndexes(indexes []int, n int) []int {
	seen := make(map[int]struct{}, len(indexes))
	out := make([]int, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= n {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func nonEmpty(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
