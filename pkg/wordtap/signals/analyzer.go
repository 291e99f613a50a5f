// Package signals scores words and selections with heuristic part-of-speech,
// phrasal-verb and idiom signals and recommends whether a selection should be
// studied as a single word or as a phrase in context.
package signals

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
)

// Recommendation says how a selection should be studied.
type Recommendation string

const (
	RecommendWord    Recommendation = "word"
	RecommendContext Recommendation = "context"
)

// contextThreshold is the ambiguity score from which a selection is studied
// in context.
const contextThreshold = 3

// Result is the signal analysis of a word or selection. It is derived and
// never persisted.
type Result struct {
	POS            POS
	AmbiguityScore int
	PhrasalVerb    bool
	Idiomatic      bool
	Recommendation Recommendation
	Reasons        []string
}

func neutral() Result {
	return Result{POS: POSUnknown, Recommendation: RecommendWord, Reasons: []string{}}
}

// Analyzer derives signals from a token sequence using a Lexicon.
type Analyzer struct {
	lex *Lexicon
}

// NewAnalyzer returns an analyzer over lex, or over DefaultLexicon when lex
// is nil.
func NewAnalyzer(lex *Lexicon) *Analyzer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Analyzer{lex: lex}
}

var defaultAnalyzer = NewAnalyzer(nil)

// AnalyzeWord analyzes tokens[index] with the default lexicon.
func AnalyzeWord(tokens []string, index int) Result {
	return defaultAnalyzer.AnalyzeWord(tokens, index)
}

// AnalyzeSelection analyzes the tokens at indexes with the default lexicon.
func AnalyzeSelection(tokens []string, indexes []int) Result {
	return defaultAnalyzer.AnalyzeSelection(tokens, indexes)
}

// AnalyzeWord analyzes the token at index. Missing tokens and punctuation
// yield the neutral result.
func (a *Analyzer) AnalyzeWord(tokens []string, index int) Result {
	token := tokenAt(tokens, index)
	if token == "" || ingest.IsPunctuation(token) {
		return neutral()
	}

	lower := ingest.NormalizeWord(token)
	var reasons reasonSet
	var hints posSet

	sentenceInitial := index == 0 && startsUpper(token)
	if sentenceInitial {
		reasons.add("capitalized at sentence start")
	}

	for _, hint := range a.lex.Suffixes {
		if utf8.RuneCountInString(lower) > utf8.RuneCountInString(hint.Suffix)+1 && strings.HasSuffix(lower, hint.Suffix) {
			hints.add(hint.POS)
			reasons.add(fmt.Sprintf("ends with '-%s'", hint.Suffix))
			break
		}
	}

	prev := ingest.NormalizeWord(prevWord(tokens, index))
	if prev != "" {
		if a.lex.Articles[prev] {
			hints.add(POSNoun)
			reasons.add(fmt.Sprintf("follows the article %q", prev))
		}
		if a.lex.ToMarkers[prev] {
			hints.add(POSVerb)
			reasons.add(fmt.Sprintf("follows %q", prev))
		}
		if a.lex.Intensifiers[prev] {
			hints.add(POSAdjective)
			hints.add(POSAdverb)
			reasons.add(fmt.Sprintf("follows %q", prev))
		}
	}

	next := ingest.NormalizeWord(nextWord(tokens, index, 1))
	afterNext := ingest.NormalizeWord(nextWord(tokens, index, 2))

	res := Result{POS: POSUnknown}
	if next != "" && a.lex.Particles[next] {
		res.PhrasalVerb = true
		reasons.add(fmt.Sprintf("followed by the particle %q", next))
	}
	if afterNext != "" && a.lex.Particles[afterNext] && next != "" && !a.lex.Particles[next] {
		res.PhrasalVerb = true
		reasons.add(fmt.Sprintf("separable pattern (verb + object + %q)", afterNext))
	}
	if next != "" && a.lex.Prepositions[next] {
		res.Idiomatic = true
		reasons.add(fmt.Sprintf("followed by %q", next))
	}

	switch {
	case len(hints) >= 2:
		res.AmbiguityScore += 2
	case len(hints) == 1:
		res.AmbiguityScore++
		res.POS = hints[0]
	}
	if sentenceInitial {
		res.AmbiguityScore++
	}
	if res.PhrasalVerb {
		res.AmbiguityScore += 2
	}
	if res.Idiomatic {
		res.AmbiguityScore++
	}

	res.Recommendation = RecommendWord
	if res.AmbiguityScore >= contextThreshold || res.PhrasalVerb || res.Idiomatic {
		res.Recommendation = RecommendContext
	}
	res.Reasons = reasons.list()
	return res
}

// AnalyzeSelection combines the signals of every selected token. Selections
// of more than one index, or containing punctuation, are always studied in
// context.
func (a *Analyzer) AnalyzeSelection(tokens []string, indexes []int) Result {
	if len(indexes) == 0 {
		return neutral()
	}

	var reasons reasonSet
	hasPunct := false
	for _, idx := range indexes {
		if tok := tokenAt(tokens, idx); tok != "" && ingest.IsPunctuation(tok) {
			hasPunct = true
		}
	}
	if len(indexes) > 1 {
		reasons.add("multi-word selection")
	}
	if hasPunct {
		reasons.add("selection includes punctuation")
	}

	res := Result{POS: POSUnknown}
	for _, idx := range indexes {
		word := a.AnalyzeWord(tokens, idx)
		if word.AmbiguityScore > res.AmbiguityScore {
			res.AmbiguityScore = word.AmbiguityScore
		}
		res.PhrasalVerb = res.PhrasalVerb || word.PhrasalVerb
		res.Idiomatic = res.Idiomatic || word.Idiomatic

		tok := tokenAt(tokens, idx)
		if tok == "" || ingest.IsPunctuation(tok) {
			continue
		}
		for _, r := range word.Reasons {
			reasons.add(tok + ": " + r)
		}
	}

	res.Recommendation = RecommendWord
	if res.AmbiguityScore >= contextThreshold || res.PhrasalVerb || res.Idiomatic || len(indexes) > 1 || hasPunct {
		res.Recommendation = RecommendContext
	}
	res.Reasons = reasons.list()
	return res
}

// WithDictionaryMatch upgrades res after term was found in a dictionary.
// An empty term leaves res unchanged.
func WithDictionaryMatch(res Result, term string) Result {
	if term == "" {
		return res
	}
	var reasons reasonSet
	for _, r := range res.Reasons {
		reasons.add(r)
	}
	reasons.add(fmt.Sprintf("found in dictionary: %q", term))

	res.Idiomatic = true
	res.Recommendation = RecommendContext
	if res.AmbiguityScore < contextThreshold {
		res.AmbiguityScore = contextThreshold
	}
	res.Reasons = reasons.list()
	return res
}

func tokenAt(tokens []string, index int) string {
	if index < 0 || index >= len(tokens) {
		return ""
	}
	return tokens[index]
}

// prevWord returns the nearest word token before index.
func prevWord(tokens []string, index int) string {
	for i := index - 1; i >= 0; i-- {
		if ingest.IsWordToken(tokens[i]) {
			return tokens[i]
		}
	}
	return ""
}

// nextWord returns the nth word token after index (n starts at 1).
func nextWord(tokens []string, index, n int) string {
	for i := index + 1; i < len(tokens); i++ {
		if !ingest.IsWordToken(tokens[i]) {
			continue
		}
		n--
		if n == 0 {
			return tokens[i]
		}
	}
	return ""
}

// startsUpper reports whether the first rune is unchanged by uppercasing.
// Caseless scripts and digits count as uppercase.
func startsUpper(token string) bool {
	r, size := utf8.DecodeRuneInString(token)
	if r == utf8.RuneError && size <= 1 {
		return false
	}
	first := token[:size]
	return cases.Upper(language.Und).String(first) == first
}

type reasonSet []string

func (s *reasonSet) add(reason string) {
	for _, r := range *s {
		if r == reason {
			return
		}
	}
	*s = append(*s, reason)
}

func (s reasonSet) list() []string {
	if len(s) == 0 {
		return []string{}
	}
	return append([]string(nil), s...)
}

type posSet []POS

func (s *posSet) add(p POS) {
	for _, existing := range *s {
		if existing == p {
			return
		}
	}
	*s = append(*s, p)
}
