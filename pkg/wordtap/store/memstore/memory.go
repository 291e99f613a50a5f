package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu          sync.RWMutex
	words       map[string]store.Word
	phrases     map[string]store.ContextPhrase
	phraseOrder []string
	links       map[string]store.ContextLink
	linkOrder   []string
	active      *store.Text
	usage       store.Usage
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		words:   make(map[string]store.Word),
		phrases: make(map[string]store.ContextPhrase),
		links:   make(map[string]store.ContextLink),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// GetWord returns a word by its normalized key.
func (s *Store) GetWord(ctx context.Context, key string) (store.Word, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.words[key]
	return w, ok, nil
}

// GetWordsByKeys returns the words stored under any of keys, sorted by key.
func (s *Store) GetWordsByKeys(ctx context.Context, keys []string) ([]store.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(keys))
	var out []store.Word
	for _, k := range keys {
		if _, dup := seen[k]; dup || k == "" {
			continue
		}
		seen[k] = struct{}{}
		if w, ok := s.words[k]; ok {
			out = append(out, w)
		}
	}
	sortWords(out)
	return out, nil
}

// WordsByStem returns every word sharing stem.
func (s *Store) WordsByStem(ctx context.Context, stem string) ([]store.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if stem == "" {
		return nil, nil
	}
	var out []store.Word
	for _, w := range s.words {
		if w.Stem == stem {
			out = append(out, w)
		}
	}
	sortWords(out)
	return out, nil
}

// ListWords returns all words sorted by key.
func (s *Store) ListWords(ctx context.Context) ([]store.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Word, 0, len(s.words))
	for _, w := range s.words {
		out = append(out, w)
	}
	sortWords(out)
	return out, nil
}

// SaveWord inserts or replaces a word, keyed by Key.
func (s *Store) SaveWord(ctx context.Context, w store.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.Key == "" {
		return nil
	}
	s.words[w.Key] = w
	return nil
}

// GetPhrase returns a phrase by ID.
func (s *Store) GetPhrase(ctx context.Context, id string) (store.ContextPhrase, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.phrases[id]
	if !ok {
		return store.ContextPhrase{}, false, nil
	}
	return copyPhrase(p), true, nil
}

// ListPhrases returns all phrases in insertion order.
func (s *Store) ListPhrases(ctx context.Context) ([]store.ContextPhrase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.ContextPhrase, 0, len(s.phraseOrder))
	for _, id := range s.phraseOrder {
		out = append(out, copyPhrase(s.phrases[id]))
	}
	return out, nil
}

// ListPhrasesByTokens returns phrases whose normalized tokens share at least
// one token with tokens, plus legacy phrases stored without normalized
// tokens. When nothing intersects, every phrase is returned.
func (s *Store) ListPhrasesByTokens(ctx context.Context, tokens []string) ([]store.ContextPhrase, error) {
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		tokenSet[tok] = struct{}{}
	}
	if len(tokenSet) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	var matched, legacy []store.ContextPhrase
	for _, id := range s.phraseOrder {
		p := s.phrases[id]
		if len(p.NormalizedTokens) == 0 {
			legacy = append(legacy, copyPhrase(p))
			continue
		}
		if containsAny(p.NormalizedTokens, tokenSet) {
			matched = append(matched, copyPhrase(p))
		}
	}
	s.mu.RUnlock()

	if len(matched) == 0 {
		return s.ListPhrases(ctx)
	}
	return append(matched, legacy...), nil
}

// SavePhrase inserts or replaces a phrase, keyed by ID.
func (s *Store) SavePhrase(ctx context.Context, p store.ContextPhrase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		return nil
	}
	if _, exists := s.phrases[p.ID]; !exists {
		s.phraseOrder = append(s.phraseOrder, p.ID)
	}
	s.phrases[p.ID] = copyPhrase(p)
	return nil
}

// LinksForText returns the links recorded for textID in insertion order.
func (s *Store) LinksForText(ctx context.Context, textID string) ([]store.ContextLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.ContextLink
	for _, key := range s.linkOrder {
		l := s.links[key]
		if l.TextID == textID {
			out = append(out, copyLink(l))
		}
	}
	return out, nil
}

// SaveLink inserts or merges a link, keyed by ContextLink.Key.
func (s *Store) SaveLink(ctx context.Context, l store.ContextLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.TextID == "" || l.ContextID == "" {
		return nil
	}
	key := l.Key()
	if _, exists := s.links[key]; !exists {
		s.linkOrder = append(s.linkOrder, key)
	}
	s.links[key] = copyLink(l)
	return nil
}

// ActiveText returns the active text, if any.
func (s *Store) ActiveText(ctx context.Context) (store.Text, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return store.Text{}, false, nil
	}
	return *s.active, true, nil
}

// SaveActiveText replaces the active text.
func (s *Store) SaveActiveText(ctx context.Context, t store.Text) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &t
	return nil
}

// ClearActiveText removes the active text.
func (s *Store) ClearActiveText(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	return nil
}

// GetUsage returns the translation usage counter.
func (s *Store) GetUsage(ctx context.Context) (store.Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage, nil
}

// SaveUsage replaces the translation usage counter.
func (s *Store) SaveUsage(ctx context.Context, u store.Usage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = u
	return nil
}

func containsAny(tokens []string, set map[string]struct{}) bool {
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}

func sortWords(words []store.Word) {
	sort.Slice(words, func(i, j int) bool {
		return words[i].Key < words[j].Key
	})
}

func copyPhrase(p store.ContextPhrase) store.ContextPhrase {
	p.Tokens = append([]string(nil), p.Tokens...)
	if p.NormalizedTokens != nil {
		p.NormalizedTokens = append([]string(nil), p.NormalizedTokens...)
	}
	return p
}

func copyLink(l store.ContextLink) store.ContextLink {
	l.WordIndexes = append([]int(nil), l.WordIndexes...)
	l.NormalizedTokens = append([]string(nil), l.NormalizedTokens...)
	return l
}
