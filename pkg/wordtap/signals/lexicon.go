package signals

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// POS is a coarse part-of-speech guess.
type POS string

const (
	POSUnknown   POS = "unknown"
	POSNoun      POS = "noun"
	POSVerb      POS = "verb"
	POSAdjective POS = "adjective"
	POSAdverb    POS = "adverb"
)

// SuffixHint maps a word ending to a part of speech.
type SuffixHint struct {
	Suffix string `yaml:"suffix"`
	POS    POS    `yaml:"pos"`
}

// Lexicon holds the closed word lists the analyzer consults. Entries are
// lowercase.
type Lexicon struct {
	Articles     map[string]bool
	ToMarkers    map[string]bool
	Intensifiers map[string]bool
	Prepositions map[string]bool
	Particles    map[string]bool
	// Suffixes are checked in order; the first match wins.
	Suffixes []SuffixHint
}

// DefaultLexicon returns the built-in English word lists.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Articles:     setOf("a", "an", "the"),
		ToMarkers:    setOf("to"),
		Intensifiers: setOf("very", "so", "too"),
		Prepositions: setOf("of", "to", "for", "with"),
		Particles:    setOf("up", "down", "out", "in", "on", "off", "over", "away", "back", "through"),
		Suffixes: []SuffixHint{
			{Suffix: "ly", POS: POSAdverb},
			{Suffix: "ing", POS: POSVerb},
			{Suffix: "ed", POS: POSVerb},
			{Suffix: "tion", POS: POSNoun},
			{Suffix: "ment", POS: POSNoun},
			{Suffix: "ous", POS: POSAdjective},
			{Suffix: "able", POS: POSAdjective},
		},
	}
}

// lexiconFile is the YAML shape accepted by LoadLexicon. Omitted lists keep
// their default values.
type lexiconFile struct {
	Articles     []string     `yaml:"articles"`
	ToMarkers    []string     `yaml:"to_markers"`
	Intensifiers []string     `yaml:"intensifiers"`
	Prepositions []string     `yaml:"prepositions"`
	Particles    []string     `yaml:"particles"`
	Suffixes     []SuffixHint `yaml:"suffixes"`
}

// LoadLexicon reads word-list overrides from a YAML file.
//
// Expected format:
//
//	particles: [up, down, out, in, on, off, over, away, back, through, around]
//	suffixes:
//	  - suffix: ness
//	    pos: noun
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return ParseLexicon(bytes.NewReader(data))
}

// ParseLexicon decodes a lexicon override from r. Unknown keys are rejected.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	var file lexiconFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	lex := DefaultLexicon()
	if file.Articles != nil {
		lex.Articles = setOf(file.Articles...)
	}
	if file.ToMarkers != nil {
		lex.ToMarkers = setOf(file.ToMarkers...)
	}
	if file.Intensifiers != nil {
		lex.Intensifiers = setOf(file.Intensifiers...)
	}
	if file.Prepositions != nil {
		lex.Prepositions = setOf(file.Prepositions...)
	}
	if file.Particles != nil {
		lex.Particles = setOf(file.Particles...)
	}
	if file.Suffixes != nil {
		suffixes := make([]SuffixHint, 0, len(file.Suffixes))
		for i, hint := range file.Suffixes {
			hint.Suffix = strings.ToLower(strings.TrimSpace(hint.Suffix))
			if hint.Suffix == "" {
				return nil, fmt.Errorf("parse lexicon: suffixes[%d]: empty suffix", i)
			}
			switch hint.POS {
			case POSNoun, POSVerb, POSAdjective, POSAdverb:
			default:
				return nil, fmt.Errorf("parse lexicon: suffixes[%d]: unknown pos %q", i, hint.POS)
			}
			suffixes = append(suffixes, hint)
		}
		lex.Suffixes = suffixes
	}
	return lex, nil
}

func setOf(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = true
		}
	}
	return set
}
