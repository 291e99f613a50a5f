package phrase

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

// SuggestThreshold is the minimum Jaro-Winkler similarity for a saved phrase
// to be suggested.
const SuggestThreshold = 0.85

// Suggestion is a saved phrase similar to a selection.
type Suggestion struct {
	Phrase store.ContextPhrase
	Score  float64
}

// Suggest ranks known phrases by similarity to selection and returns at most
// limit of them (all when limit <= 0). Exact matches score 1. Phrases are
// compared on normalized text, falling back to the best score of the
// space-stripped forms so "give up" still finds "giveup".
func Suggest(selection string, known []store.ContextPhrase, limit int) []Suggestion {
	query := ingest.NormalizeContext(selection)
	if query == "" {
		return nil
	}

	var out []Suggestion
	for _, p := range known {
		target := p.NormalizedText
		if target == "" {
			target = ingest.NormalizeContext(p.Text)
		}
		if target == "" {
			continue
		}
		score := similarity(query, target)
		if score >= SuggestThreshold {
			out = append(out, Suggestion{Phrase: p, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	score := matchr.JaroWinkler(a, b, false)
	if strings.Contains(a, " ") || strings.Contains(b, " ") {
		joinedA := strings.ReplaceAll(a, " ", "")
		joinedB := strings.ReplaceAll(b, " ", "")
		if s := matchr.JaroWinkler(joinedA, joinedB, false); s > score {
			score = s
		}
	}
	return score
}
