package ingest

import (
	"strings"
	"testing"
)

func TestTokenizeBasic(t *testing.T) {
	tokens := Tokenize("Don't stop!!")

	want := []Token{
		{Kind: KindWord, Value: "Don't"},
		{Kind: KindSpace, Value: " "},
		{Kind: KindWord, Value: "stop"},
		{Kind: KindPunct, Value: "!"},
		{Kind: KindPunct, Value: "!"},
	}
	if !equalTokenSeq(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	if tokens := Tokenize(""); len(tokens) != 0 {
		t.Errorf("Empty input should produce no tokens, got %v", tokens)
	}
	if words := ExtractWords(""); len(words) != 0 {
		t.Errorf("Empty input should produce no words, got %v", words)
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"The quick brown fox jumps over the lazy dog.",
		"  leading and trailing  ",
		"don't!!",
		"well-known state-of-the-art",
		"-dangling- hyphens -- here",
		"it's  l’été, naïve café",
		"Привет, мир! 你好世界",
		"tabs\tand\nnewlines\r\n",
		"price: $42.50 (approx.)",
		"emoji 🙂 and symbols ©®",
		"bad \xff\xfe bytes",
		"e\u0301 combining",
		"\uFEFFbom",
	}

	for _, in := range inputs {
		var b strings.Builder
		for _, tok := range Tokenize(in) {
			b.WriteString(tok.Value)
		}
		if b.String() != in {
			t.Errorf("round trip of %q produced %q", in, b.String())
		}
	}
}

func TestTokenizeJoiners(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"well-known", []string{"well-known"}},
		{"don’t", []string{"don’t"}},
		{"rock'n'roll", []string{"rock'n'roll"}},
		{"end-", []string{"end", "-"}},
		{"-start", []string{"-", "start"}},
		{"double--hyphen", []string{"double", "-", "-", "hyphen"}},
		{"students'", []string{"students", "'"}},
	}

	for _, tt := range tests {
		got := ExtractWords(tt.in)
		if !equalStrings(got, tt.want) {
			t.Errorf("ExtractWords(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenizeUnicodeWords(t *testing.T) {
	tokens := Tokenize("café résumé naïve Ελληνικά")

	words := 0
	for _, tok := range tokens {
		if tok.Kind == KindWord {
			words++
		}
	}
	if words != 4 {
		t.Errorf("Expected 4 unicode words, got %d: %v", words, tokens)
	}
}

func TestTokenizeCombiningMarks(t *testing.T) {
	// "é" written as e + COMBINING ACUTE ACCENT stays a single word.
	tokens := Tokenize("cafe\u0301")
	if len(tokens) != 1 || tokens[0].Kind != KindWord {
		t.Errorf("Combining mark should stay inside the word, got %v", tokens)
	}
}

func TestTokenizeDigitsArePunct(t *testing.T) {
	tokens := Tokenize("42")
	if len(tokens) != 2 {
		t.Fatalf("Expected one token per digit, got %v", tokens)
	}
	for _, tok := range tokens {
		if tok.Kind != KindPunct {
			t.Errorf("Digit %q should be PUNCT, got %s", tok.Value, tok.Kind)
		}
	}
}

func TestTokenizeWhitespaceRuns(t *testing.T) {
	tokens := Tokenize("a \t\n b")
	if len(tokens) != 3 {
		t.Fatalf("Expected 3 tokens, got %v", tokens)
	}
	if tokens[1].Kind != KindSpace || tokens[1].Value != " \t\n " {
		t.Errorf("Whitespace run should be one SPACE token, got %v", tokens[1])
	}
}

func TestTokenizeInvalidUTF8(t *testing.T) {
	tokens := Tokenize("a\xffb")
	want := []Token{
		{Kind: KindWord, Value: "a"},
		{Kind: KindPunct, Value: "\xff"},
		{Kind: KindWord, Value: "b"},
	}
	if !equalTokenSeq(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}
}

func TestExtractWordsDropsSpaces(t *testing.T) {
	got := ExtractWords("I gave up, smoking.")
	want := []string{"I", "gave", "up", ",", "smoking", "."}
	if !equalStrings(got, want) {
		t.Errorf("ExtractWords = %q, want %q", got, want)
	}
}

func TestIsWordTokenAndPunctuation(t *testing.T) {
	tests := []struct {
		in    string
		word  bool
		punct bool
	}{
		{"cat", true, false},
		{"don't", true, false},
		{"!", false, true},
		{"$", false, true},
		{"\u2014", false, true},
		{"7", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		if got := IsWordToken(tt.in); got != tt.word {
			t.Errorf("IsWordToken(%q) = %v, want %v", tt.in, got, tt.word)
		}
		if got := IsPunctuation(tt.in); got != tt.punct {
			t.Errorf("IsPunctuation(%q) = %v, want %v", tt.in, got, tt.punct)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindWord.String() != "WORD" || KindPunct.String() != "PUNCT" || KindSpace.String() != "SPACE" {
		t.Error("Unexpected kind names")
	}
}

func equalTokenSeq(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
