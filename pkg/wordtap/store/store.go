package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Store is the persistence interface for words, saved phrases, phrase links,
// the active text and translation usage.
type Store interface {
	Close() error

	// Words
	GetWord(ctx context.Context, key string) (Word, bool, error)
	GetWordsByKeys(ctx context.Context, keys []string) ([]Word, error)
	WordsByStem(ctx context.Context, stem string) ([]Word, error)
	ListWords(ctx context.Context) ([]Word, error)
	SaveWord(ctx context.Context, w Word) error

	// Context phrases
	GetPhrase(ctx context.Context, id string) (ContextPhrase, bool, error)
	ListPhrases(ctx context.Context) ([]ContextPhrase, error)
	ListPhrasesByTokens(ctx context.Context, tokens []string) ([]ContextPhrase, error)
	SavePhrase(ctx context.Context, p ContextPhrase) error

	// Phrase links
	LinksForText(ctx context.Context, textID string) ([]ContextLink, error)
	SaveLink(ctx context.Context, l ContextLink) error

	// Active text
	ActiveText(ctx context.Context) (Text, bool, error)
	SaveActiveText(ctx context.Context, t Text) error
	ClearActiveText(ctx context.Context) error

	// Translation usage
	GetUsage(ctx context.Context) (Usage, error)
	SaveUsage(ctx context.Context, u Usage) error
}

// Status is the learning status of a word or phrase.
type Status string

const (
	StatusNotLearned Status = "not_learned"
	StatusLearning   Status = "learning"
	StatusLearned    Status = "learned"
)

// ParseStatus accepts the canonical names plus a few short aliases.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "not_learned", "not-learned", "new", "n":
		return StatusNotLearned, nil
	case "learning", "l":
		return StatusLearning, nil
	case "learned", "done", "d":
		return StatusLearned, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotLearned, StatusLearning, StatusLearned:
		return true
	}
	return false
}

// Word is a saved single-word translation. Key is the normalized text and
// Stem its English stem (used for word-family lookups).
type Word struct {
	Key         string
	Text        string
	Stem        string
	Status      Status
	Translation string
	UpdatedAt   time.Time
}

// ContextPhrase is a saved multi-token phrase, addressed by the content
// hash of its normalized text.
type ContextPhrase struct {
	ID               string
	Text             string
	NormalizedText   string
	NormalizedTokens []string // optional; absent on legacy records
	Translation      string
	Tokens           []string
	TokenCount       int
	Status           Status
}

// ContextLink records where a phrase was found inside a specific text.
// It is a cache over re-scanning and may be stale.
type ContextLink struct {
	TextID           string
	ContextID        string
	WordIndexes      []int
	NormalizedTokens []string
	TokenCount       int
	UpdatedAt        time.Time
}

// Key is the storage key of a link: textID_contextID_i1-i2-...
// Saving a link with the same key merges into the existing record.
func (l ContextLink) Key() string {
	parts := make([]string, len(l.WordIndexes))
	for i, idx := range l.WordIndexes {
		parts[i] = strconv.Itoa(idx)
	}
	return l.TextID + "_" + l.ContextID + "_" + strings.Join(parts, "-")
}

// Text is the pasted source text currently being studied.
type Text struct {
	ID        string
	RawText   string
	CreatedAt time.Time
}

// Usage counts translated characters since StartedAt.
type Usage struct {
	TotalChars int
	StartedAt  time.Time
}
