// Package wordtap is the vocabulary engine facade: it opens texts, tracks
// word statuses, saves phrases and wires signal analysis, dictionary
// lookups and translation together.
package wordtap

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/kljensen/snowball"
	"github.com/oklog/ulid/v2"

	"github.com/cognicore/wordtap/pkg/wordtap/dictionary"
	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
	"github.com/cognicore/wordtap/pkg/wordtap/internalerr"
	"github.com/cognicore/wordtap/pkg/wordtap/phrase"
	"github.com/cognicore/wordtap/pkg/wordtap/signals"
	"github.com/cognicore/wordtap/pkg/wordtap/store"
	"github.com/cognicore/wordtap/pkg/wordtap/translate"
)

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (translate.Result, error)
}

// Engine is the main vocabulary engine facade
type Engine struct {
	store      store.Store
	analyzer   *signals.Analyzer
	dict       dictionary.Lookup
	translator Translator
	usage      *translate.Usage

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// Options configures an Engine. Store is required; Analyzer defaults to the
// built-in lexicon. Without Dictionary, selections are never upgraded;
// without Translator, Translate fails with internalerr.ErrInvalidConfig.
type Options struct {
	Store      store.Store
	Analyzer   *signals.Analyzer
	Dictionary dictionary.Lookup
	Translator Translator
	Usage      *translate.Usage
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	analyzer := opts.Analyzer
	if analyzer == nil {
		analyzer = signals.NewAnalyzer(nil)
	}
	usage := opts.Usage
	if usage == nil {
		usage = translate.NewUsage(opts.Store)
	}
	return &Engine{
		store:      opts.Store,
		analyzer:   analyzer,
		dict:       opts.Dictionary,
		translator: opts.Translator,
		usage:      usage,
		entropy:    ulid.Monotonic(rand.Reader, 0),
		now:        time.Now,
	}
}

// Close cleanly shuts down the engine
func (e *Engine) Close() error {
	return e.store.Close()
}

// OpenText makes raw the active text and starts a session over it. HTML
// input is reduced to its visible text first.
func (e *Engine) OpenText(ctx context.Context, raw string) (*Session, error) {
	text := ingest.ExtractText(raw)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("open text: empty text: %w", internalerr.ErrInvalidInput)
	}

	t := store.Text{ID: e.newID(), RawText: text, CreatedAt: e.now()}
	if err := e.store.SaveActiveText(ctx, t); err != nil {
		return nil, fmt.Errorf("save active text: %w", err)
	}
	slog.Info("text opened", "text_id", t.ID, "chars", utf8.RuneCountInString(text))
	return e.newSession(ctx, t)
}

// ResumeText starts a session over the active text.
func (e *Engine) ResumeText(ctx context.Context) (*Session, error) {
	t, ok, err := e.store.ActiveText(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active text: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("active text: %w", internalerr.ErrNotFound)
	}
	return e.newSession(ctx, t)
}

// CloseText forgets the active text.
func (e *Engine) CloseText(ctx context.Context) error {
	return e.store.ClearActiveText(ctx)
}

// SaveWord stores a translation and status for a single word. The word is
// keyed by its normalized form and stemmed for family lookups.
func (e *Engine) SaveWord(ctx context.Context, text, translation string, status store.Status) (store.Word, error) {
	key := ingest.NormalizeWord(text)
	if key == "" || !ingest.IsWordToken(key) {
		return store.Word{}, fmt.Errorf("save word %q: %w", text, internalerr.ErrInvalidInput)
	}
	if !status.Valid() {
		return store.Word{}, fmt.Errorf("save word %q: status %q: %w", text, status, internalerr.ErrInvalidInput)
	}

	w := store.Word{
		Key:         key,
		Text:        strings.TrimSpace(text),
		Stem:        stem(key),
		Status:      status,
		Translation: strings.TrimSpace(translation),
		UpdatedAt:   e.now(),
	}
	if err := e.store.SaveWord(ctx, w); err != nil {
		return store.Word{}, fmt.Errorf("save word: %w", err)
	}
	return w, nil
}

// LookupWord returns the saved word for text.
func (e *Engine) LookupWord(ctx context.Context, text string) (store.Word, error) {
	w, ok, err := e.store.GetWord(ctx, ingest.NormalizeWord(text))
	if err != nil {
		return store.Word{}, err
	}
	if !ok {
		return store.Word{}, fmt.Errorf("word %q: %w", text, internalerr.ErrNotFound)
	}
	return w, nil
}

// WordFamily returns saved words sharing text's stem, e.g. "play",
// "played" and "playing".
func (e *Engine) WordFamily(ctx context.Context, text string) ([]store.Word, error) {
	key := ingest.NormalizeWord(text)
	if key == "" {
		return nil, nil
	}
	return e.store.WordsByStem(ctx, stem(key))
}

// Stats counts saved words per learning status.
type Stats struct {
	Learned    int
	Learning   int
	NotLearned int
	Total      int
}

// Stats returns learning statistics over all saved words.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	words, err := e.store.ListWords(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list words: %w", err)
	}
	var s Stats
	for _, w := range words {
		switch w.Status {
		case store.StatusLearned:
			s.Learned++
		case store.StatusLearning:
			s.Learning++
		default:
			s.NotLearned++
		}
	}
	s.Total = len(words)
	return s, nil
}

// Translate translates text and records the characters used. It returns the
// translation and the usage total for the current window.
func (e *Engine) Translate(ctx context.Context, text, targetLang string) (translate.Result, int, error) {
	if e.translator == nil {
		return translate.Result{}, 0, fmt.Errorf("translate: no translator configured: %w", internalerr.ErrInvalidConfig)
	}
	res, err := e.translator.Translate(ctx, text, targetLang)
	if err != nil {
		return translate.Result{}, 0, err
	}
	total, err := e.usage.Add(ctx, utf8.RuneCountInString(text))
	if err != nil {
		// The translation succeeded; a lost usage update is not fatal.
		slog.Warn("record translation usage", "error", err)
	}
	return res, total, nil
}

// Usage returns the translation usage for the current window.
func (e *Engine) Usage(ctx context.Context) (store.Usage, error) {
	return e.usage.Current(ctx)
}

// Suggest returns saved phrases similar to selection.
func (e *Engine) Suggest(ctx context.Context, selection string, limit int) ([]phrase.Suggestion, error) {
	known, err := e.store.ListPhrases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	return phrase.Suggest(selection, known, limit), nil
}

func (e *Engine) newID() string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(e.now()), e.entropy).String()
}

// stem returns the English stem of a normalized word, or the word itself
// when it cannot be stemmed.
func stem(word string) string {
	s, err := snowball.Stem(word, "english", true)
	if err != nil || s == "" {
		return word
	}
	return s
}
