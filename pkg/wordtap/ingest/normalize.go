package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeWord lowercases and trims a single token. Internal punctuation is
// kept so that differently punctuated tokens never compare equal.
func NormalizeWord(token string) string {
	return strings.TrimFunc(lower(token), isSpace)
}

// NormalizeContext converts a phrase into its canonical comparison form:
// lowercase, only letters, digits, whitespace and apostrophes kept, and
// whitespace runs collapsed to a single space with no leading or trailing
// space. It is idempotent.
func NormalizeContext(text string) string {
	lowered := lower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	pendingSpace := false
	for _, r := range lowered {
		switch {
		case isSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'':
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTokens normalizes the word tokens of tokens and drops the rest.
func NormalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !IsWordToken(tok) {
			continue
		}
		if n := NormalizeWord(tok); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// lower uses a fresh Caser per call; Casers are not safe for concurrent use.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
