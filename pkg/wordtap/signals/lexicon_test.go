package signals

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLexicon(t *testing.T) {
	lex := DefaultLexicon()
	if !lex.Articles["the"] || !lex.Particles["through"] || !lex.Prepositions["with"] {
		t.Error("default lists incomplete")
	}
	if len(lex.Suffixes) != 7 || lex.Suffixes[0].Suffix != "ly" {
		t.Errorf("unexpected suffix table %+v", lex.Suffixes)
	}
}

func TestParseLexiconOverrides(t *testing.T) {
	input := `
particles: [Up, around]
suffixes:
  - suffix: ness
    pos: noun
`
	lex, err := ParseLexicon(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseLexicon: %v", err)
	}
	if !lex.Particles["around"] || !lex.Particles["up"] || lex.Particles["down"] {
		t.Errorf("particles not replaced: %v", lex.Particles)
	}
	if len(lex.Suffixes) != 1 || lex.Suffixes[0].POS != POSNoun {
		t.Errorf("suffixes = %+v", lex.Suffixes)
	}
	if !lex.Articles["the"] {
		t.Error("omitted lists should keep defaults")
	}
}

func TestParseLexiconErrors(t *testing.T) {
	tests := []string{
		"unknown_key: [x]",
		"suffixes:\n  - suffix: ness\n    pos: pronoun\n",
		"suffixes:\n  - suffix: ''\n    pos: noun\n",
	}
	for _, input := range tests {
		if _, err := ParseLexicon(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestParseLexiconEmpty(t *testing.T) {
	lex, err := ParseLexicon(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseLexicon: %v", err)
	}
	if len(lex.Particles) != 10 {
		t.Errorf("expected default particles, got %d", len(lex.Particles))
	}
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte("intensifiers: [really]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	if !lex.Intensifiers["really"] || lex.Intensifiers["very"] {
		t.Errorf("intensifiers = %v", lex.Intensifiers)
	}

	if _, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
