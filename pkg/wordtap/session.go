package wordtap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cognicore/wordtap/pkg/wordtap/dictionary"
	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
	"github.com/cognicore/wordtap/pkg/wordtap/internalerr"
	"github.com/cognicore/wordtap/pkg/wordtap/phrase"
	"github.com/cognicore/wordtap/pkg/wordtap/signals"
	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

// Session is the study state of one open text: its tokens, the saved
// phrases located in it and the current selection. It is safe for
// concurrent use.
type Session struct {
	engine      *Engine
	text        store.Text
	tokens      []string
	wordSignals []signals.Result
	locator     phrase.Locator

	mu         sync.Mutex
	contexts   map[int]string
	selected   []int
	generation uint64
}

func (e *Engine) newSession(ctx context.Context, t store.Text) (*Session, error) {
	tokens := ingest.ExtractWords(t.RawText)
	s := &Session{
		engine:      e,
		text:        t,
		tokens:      tokens,
		wordSignals: make([]signals.Result, len(tokens)),
		contexts:    make(map[int]string),
	}
	for i := range tokens {
		s.wordSignals[i] = e.analyzer.AnalyzeWord(tokens, i)
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Text returns the session's text.
func (s *Session) Text() store.Text {
	return s.text
}

// Tokens returns the word and punctuation tokens of the text.
func (s *Session) Tokens() []string {
	return append([]string(nil), s.tokens...)
}

// WordSignals returns the signals of the token at index.
func (s *Session) WordSignals(index int) signals.Result {
	if index < 0 || index >= len(s.wordSignals) {
		return s.engine.analyzer.AnalyzeWord(s.tokens, index)
	}
	return s.wordSignals[index]
}

// Refresh re-locates saved phrases in the text.
func (s *Session) Refresh(ctx context.Context) error {
	st := s.engine.store

	known, err := st.ListPhrasesByTokens(ctx, ingest.NormalizeTokens(s.tokens))
	if err != nil {
		return fmt.Errorf("list phrases: %w", err)
	}
	links, err := st.LinksForText(ctx, s.text.ID)
	if err != nil {
		return fmt.Errorf("list links: %w", err)
	}

	located := s.locator.Locate(s.tokens, known, links)
	hits, misses := s.locator.Stats()
	slog.Debug("phrases located",
		"text_id", s.text.ID,
		"phrases", len(known),
		"links", len(links),
		"mapped", len(located),
		"memo_hits", hits,
		"memo_misses", misses,
	)

	s.mu.Lock()
	s.contexts = located
	s.mu.Unlock()
	return nil
}

// ContextAt returns the ID of the saved phrase covering index.
func (s *Session) ContextAt(index int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.contexts[index]
	return id, ok
}

// Contexts returns the index to phrase ID map of the text.
func (s *Session) Contexts() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]string, len(s.contexts))
	for k, v := range s.contexts {
		out[k] = v
	}
	return out
}

// WordStatuses returns the learning status of every token with a saved
// word.
func (s *Session) WordStatuses(ctx context.Context) (map[int]store.Status, error) {
	keys := make([]string, len(s.tokens))
	for i, tok := range s.tokens {
		keys[i] = ingest.NormalizeWord(tok)
	}
	words, err := s.engine.store.GetWordsByKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	byKey := make(map[string]store.Status, len(words))
	for _, w := range words {
		byKey[w.Key] = w.Status
	}

	out := make(map[int]store.Status)
	for i, key := range keys {
		if status, ok := byKey[key]; ok {
			out[i] = status
		}
	}
	return out, nil
}

// Toggle taps the token at index. A tap more than one position away from
// the last selected index is ignored; tapping a selected index deselects
// it. It reports whether the selection changed.
func (s *Session) Toggle(index int) bool {
	if index < 0 || index >= len(s.tokens) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.selected); n > 0 {
		if d := index - s.selected[n-1]; d > 1 || d < -1 {
			return false
		}
	}
	for i, idx := range s.selected {
		if idx == index {
			s.selected = append(s.selected[:i:i], s.selected[i+1:]...)
			s.generation++
			return true
		}
	}
	s.selected = append(s.selected, index)
	s.generation++
	return true
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.generation++
}

// Selection returns the selected indexes in ascending order.
func (s *Session) Selection() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedSelection()
}

// SelectedTokens returns the selected tokens in text order.
func (s *Session) SelectedTokens() []string {
	sel := s.Selection()
	out := make([]string, len(sel))
	for i, idx := range sel {
		out[i] = s.tokens[idx]
	}
	return out
}

// SelectionSignals analyzes the current selection without a dictionary
// lookup.
func (s *Session) SelectionSignals() signals.Result {
	return s.engine.analyzer.AnalyzeSelection(s.tokens, s.Selection())
}

// ResolveSelection analyzes the current selection and upgrades it when one
// of its dictionary candidates is a known expression. If the selection
// changes while the lookup is in flight, the result is discarded and
// internalerr.ErrStaleSelection is returned.
func (s *Session) ResolveSelection(ctx context.Context) (signals.Result, error) {
	s.mu.Lock()
	gen := s.generation
	sel := s.sortedSelection()
	s.mu.Unlock()

	res := s.engine.analyzer.AnalyzeSelection(s.tokens, sel)
	if len(sel) == 0 || s.engine.dict == nil {
		return res, nil
	}
	candidates := signals.BuildCandidates(s.tokens, sel)
	if len(candidates) == 0 {
		return res, nil
	}

	term, found, err := dictionary.FindMatch(ctx, s.engine.dict, candidates)
	if err != nil {
		return signals.Result{}, err
	}

	s.mu.Lock()
	stale := s.generation != gen
	s.mu.Unlock()
	if stale {
		slog.Debug("discarding stale dictionary result", "text_id", s.text.ID, "term", term)
		return signals.Result{}, internalerr.ErrStaleSelection
	}
	if found {
		res = signals.WithDictionaryMatch(res, term)
	}
	return res, nil
}

// SavePhrase saves the selected tokens as a phrase, links it to this text,
// clears the selection and re-locates phrases so the new one is mapped at
// every occurrence.
func (s *Session) SavePhrase(ctx context.Context, translation string, status store.Status) (store.ContextPhrase, error) {
	if !status.Valid() {
		return store.ContextPhrase{}, fmt.Errorf("save phrase: status %q: %w", status, internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	sel := s.sortedSelection()
	s.mu.Unlock()
	if len(sel) == 0 {
		return store.ContextPhrase{}, fmt.Errorf("save phrase: empty selection: %w", internalerr.ErrInvalidInput)
	}

	selTokens := make([]string, len(sel))
	for i, idx := range sel {
		selTokens[i] = s.tokens[idx]
	}
	rec := phrase.NewRecord(selTokens, translation, status)
	if rec.NormalizedText == "" {
		return store.ContextPhrase{}, fmt.Errorf("save phrase: selection has no words: %w", internalerr.ErrInvalidInput)
	}

	st := s.engine.store
	if err := st.SavePhrase(ctx, rec); err != nil {
		return store.ContextPhrase{}, fmt.Errorf("save phrase: %w", err)
	}
	link := phrase.NewLink(s.text.ID, rec.ID, sel, s.tokens, s.engine.now())
	if err := st.SaveLink(ctx, link); err != nil {
		return store.ContextPhrase{}, fmt.Errorf("save link: %w", err)
	}
	slog.Info("phrase saved", "id", rec.ID, "text", rec.Text, "text_id", s.text.ID)

	s.mu.Lock()
	s.selected = nil
	s.generation++
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		slog.Warn("refresh after saving phrase", "text_id", s.text.ID, "error", err)
		s.mu.Lock()
		for _, idx := range sel {
			s.contexts[idx] = rec.ID
		}
		s.mu.Unlock()
	}
	return rec, nil
}

// Phrase returns the saved phrase covering index.
func (s *Session) Phrase(ctx context.Context, index int) (store.ContextPhrase, error) {
	id, ok := s.ContextAt(index)
	if !ok {
		return store.ContextPhrase{}, fmt.Errorf("phrase at %d: %w", index, internalerr.ErrNotFound)
	}
	p, ok, err := s.engine.store.GetPhrase(ctx, id)
	if err != nil {
		return store.ContextPhrase{}, err
	}
	if !ok {
		return store.ContextPhrase{}, fmt.Errorf("phrase %s: %w", id, internalerr.ErrNotFound)
	}
	return p, nil
}

func (s *Session) sortedSelection() []int {
	out := append([]int(nil), s.selected...)
	sort.Ints(out)
	return out
}
