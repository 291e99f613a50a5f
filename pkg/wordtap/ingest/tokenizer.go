package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	KindWord Kind = iota
	KindPunct
	KindSpace
)

// String returns the upper-case kind name (WORD, PUNCT, SPACE).
func (k Kind) String() string {
	switch k {
	case KindWord:
		return "WORD"
	case KindPunct:
		return "PUNCT"
	case KindSpace:
		return "SPACE"
	default:
		return "UNKNOWN"
	}
}

// Token is a classified slice of the source text. Its position in the
// token sequence is significant.
type Token struct {
	Kind  Kind
	Value string
}

// Tokenize splits text into WORD, PUNCT and SPACE tokens.
//
// A word is a maximal run of letters and combining marks, optionally joined
// by a single apostrophe (' or ’) or hyphen followed by more letters
// ("don't", "well-known"). Every other non-space rune is its own PUNCT token,
// so "!!" yields two tokens. Whitespace runs become a single SPACE token.
// Concatenating the values of the result always reproduces text.
func Tokenize(text string) []Token {
	if text == "" {
		return nil
	}

	var tokens []Token
	i := 0
	for i < len(text) {
		r, w := utf8.DecodeRuneInString(text[i:])
		switch {
		case r != utf8.RuneError && isLetterOrMark(r):
			end := scanWord(text, i)
			tokens = append(tokens, Token{Kind: KindWord, Value: text[i:end]})
			i = end
		case r != utf8.RuneError && isSpace(r):
			end := i + w
			for end < len(text) {
				next, nw := utf8.DecodeRuneInString(text[end:])
				if next == utf8.RuneError || !isSpace(next) {
					break
				}
				end += nw
			}
			tokens = append(tokens, Token{Kind: KindSpace, Value: text[i:end]})
			i = end
		default:
			// Invalid bytes land here too (w == 1), which keeps the
			// round trip lossless.
			tokens = append(tokens, Token{Kind: KindPunct, Value: text[i : i+w]})
			i += w
		}
	}
	return tokens
}

// scanWord returns the end offset of the word starting at start.
func scanWord(text string, start int) int {
	end := consumeLetters(text, start)
	for end < len(text) {
		j, jw := utf8.DecodeRuneInString(text[end:])
		if !isJoiner(j) {
			break
		}
		after := end + jw
		if after >= len(text) {
			break
		}
		next, _ := utf8.DecodeRuneInString(text[after:])
		if next == utf8.RuneError || !isLetterOrMark(next) {
			break
		}
		end = consumeLetters(text, after)
	}
	return end
}

func consumeLetters(text string, pos int) int {
	for pos < len(text) {
		r, w := utf8.DecodeRuneInString(text[pos:])
		if r == utf8.RuneError || !isLetterOrMark(r) {
			break
		}
		pos += w
	}
	return pos
}

// ExtractWords returns the values of the WORD and PUNCT tokens of text in
// order. This is the sequence callers index into.
func ExtractWords(text string) []string {
	tokens := Tokenize(text)
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == KindSpace {
			continue
		}
		words = append(words, tok.Value)
	}
	return words
}

// IsWordToken reports whether s contains at least one letter or mark.
func IsWordToken(s string) bool {
	return strings.IndexFunc(s, isLetterOrMark) >= 0
}

// IsPunctuation reports whether s is non-empty and made only of
// punctuation and symbol runes.
func IsPunctuation(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

func isLetterOrMark(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-'
}

// isSpace also treats the byte order mark as whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
