package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/wordtap/pkg/wordtap/internalerr"
	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed. ":memory:" opens a private in-memory database.
// Failures to open or prepare the database wrap internalerr.ErrStoreUnavailable.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable(path, err)
	}
	if path == ":memory:" {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	return &sqliteStore{db: db}, nil
}

func unavailable(path string, err error) error {
	return fmt.Errorf("sqlite %s: %w: %v", path, internalerr.ErrStoreUnavailable, err)
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS words (
	key TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	stem TEXT,
	status TEXT NOT NULL,
	translation TEXT,
	updated_at TEXT
);

CREATE INDEX IF NOT EXISTS words_stem ON words(stem);

CREATE TABLE IF NOT EXISTS phrases (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	normalized_text TEXT NOT NULL,
	normalized_tokens TEXT,
	translation TEXT,
	tokens TEXT NOT NULL,
	token_count INTEGER NOT NULL,
	status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS phrase_tokens (
	phrase_id TEXT NOT NULL,
	token TEXT NOT NULL,
	UNIQUE(phrase_id, token),
	FOREIGN KEY(phrase_id) REFERENCES phrases(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS links (
	key TEXT PRIMARY KEY,
	text_id TEXT NOT NULL,
	context_id TEXT NOT NULL,
	word_indexes TEXT NOT NULL,
	normalized_tokens TEXT NOT NULL,
	token_count INTEGER NOT NULL,
	updated_at TEXT
);

CREATE INDEX IF NOT EXISTS links_text ON links(text_id);

CREATE TABLE IF NOT EXISTS active_text (
	slot INTEGER PRIMARY KEY CHECK (slot = 1),
	id TEXT NOT NULL,
	raw_text TEXT NOT NULL,
	created_at TEXT
);

CREATE TABLE IF NOT EXISTS translation_usage (
	slot INTEGER PRIMARY KEY CHECK (slot = 1),
	total_chars INTEGER NOT NULL,
	started_at TEXT
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// GetWord retrieves a word by key
func (s *sqliteStore) GetWord(ctx context.Context, key string) (store.Word, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT key, text, stem, status, translation, updated_at FROM words WHERE key = ?`, key)
	w, err := scanWord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Word{}, false, nil
	}
	if err != nil {
		return store.Word{}, false, err
	}
	return w, true, nil
}

// GetWordsByKeys retrieves all words stored under keys
func (s *sqliteStore) GetWordsByKeys(ctx context.Context, keys []string) ([]store.Word, error) {
	unique := uniqueStrings(keys)
	if len(unique) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
SELECT key, text, stem, status, translation, updated_at
FROM words
WHERE key IN (%s)
ORDER BY key;
`, placeholders(len(unique)))
	return s.queryWords(ctx, query, stringArgs(unique)...)
}

// WordsByStem retrieves the word family sharing stem
func (s *sqliteStore) WordsByStem(ctx context.Context, stem string) ([]store.Word, error) {
	if stem == "" {
		return nil, nil
	}
	return s.queryWords(ctx, `SELECT key, text, stem, status, translation, updated_at FROM words WHERE stem = ? ORDER BY key`, stem)
}

// ListWords retrieves every word
func (s *sqliteStore) ListWords(ctx context.Context) ([]store.Word, error) {
	return s.queryWords(ctx, `SELECT key, text, stem, status, translation, updated_at FROM words ORDER BY key`)
}

// SaveWord inserts or updates a word
func (s *sqliteStore) SaveWord(ctx context.Context, w store.Word) error {
	if w.Key == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO words (key, text, stem, status, translation, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	text=excluded.text,
	stem=excluded.stem,
	status=excluded.status,
	translation=excluded.translation,
	updated_at=excluded.updated_at;
`, w.Key, w.Text, w.Stem, string(w.Status), w.Translation, formatTime(w.UpdatedAt))
	return err
}

func (s *sqliteStore) queryWords(ctx context.Context, query string, args ...interface{}) ([]store.Word, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWord(sc scanner) (store.Word, error) {
	var (
		w                 store.Word
		stem, translation sql.NullString
		status            string
		updated           sql.NullString
	)
	if err := sc.Scan(&w.Key, &w.Text, &stem, &status, &translation, &updated); err != nil {
		return store.Word{}, err
	}
	w.Stem = stem.String
	w.Status = store.Status(status)
	w.Translation = translation.String
	w.UpdatedAt = parseTime(updated.String)
	return w, nil
}

// GetPhrase retrieves a phrase by ID
func (s *sqliteStore) GetPhrase(ctx context.Context, id string) (store.ContextPhrase, bool, error) {
	row := s.db.QueryRowContext(ctx, phraseSelect+` WHERE id = ?`, id)
	p, err := scanPhrase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ContextPhrase{}, false, nil
	}
	if err != nil {
		return store.ContextPhrase{}, false, err
	}
	return p, true, nil
}

// ListPhrases retrieves every phrase in insertion order
func (s *sqliteStore) ListPhrases(ctx context.Context) ([]store.ContextPhrase, error) {
	return s.queryPhrases(ctx, phraseSelect+` ORDER BY rowid`)
}

// ListPhrasesByTokens retrieves phrases sharing a normalized token with
// tokens plus legacy phrases without normalized tokens. When nothing
// intersects it falls back to every phrase.
func (s *sqliteStore) ListPhrasesByTokens(ctx context.Context, tokens []string) ([]store.ContextPhrase, error) {
	unique := uniqueStrings(tokens)
	if len(unique) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(phraseSelect+`
WHERE id IN (SELECT phrase_id FROM phrase_tokens WHERE token IN (%s))
ORDER BY rowid;
`, placeholders(len(unique)))
	matched, err := s.queryPhrases(ctx, query, stringArgs(unique)...)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return s.ListPhrases(ctx)
	}

	legacy, err := s.queryPhrases(ctx, phraseSelect+` WHERE normalized_tokens IS NULL ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	return append(matched, legacy...), nil
}

// SavePhrase inserts or updates a phrase and its token index
func (s *sqliteStore) SavePhrase(ctx context.Context, p store.ContextPhrase) error {
	if p.ID == "" {
		return nil
	}
	tokensJSON, err := json.Marshal(nonNil(p.Tokens))
	if err != nil {
		return err
	}
	var normalized interface{}
	if len(p.NormalizedTokens) > 0 {
		b, err := json.Marshal(p.NormalizedTokens)
		if err != nil {
			return err
		}
		normalized = string(b)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO phrases (id, text, normalized_text, normalized_tokens, translation, tokens, token_count, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	text=excluded.text,
	normalized_text=excluded.normalized_text,
	normalized_tokens=excluded.normalized_tokens,
	translation=excluded.translation,
	tokens=excluded.tokens,
	token_count=excluded.token_count,
	status=excluded.status;
`, p.ID, p.Text, p.NormalizedText, normalized, p.Translation, string(tokensJSON), p.TokenCount, string(p.Status))
	if err != nil {
		return err
	}

	if err := replacePhraseTokens(ctx, tx, p.ID, uniqueStrings(p.NormalizedTokens)); err != nil {
		return err
	}
	return tx.Commit()
}

func replacePhraseTokens(ctx context.Context, tx *sql.Tx, id string, tokens []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM phrase_tokens WHERE phrase_id=?`, id); err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO phrase_tokens (phrase_id, token) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, tok := range tokens {
		if _, err := stmt.ExecContext(ctx, id, tok); err != nil {
			return err
		}
	}
	return nil
}

const phraseSelect = `SELECT id, text, normalized_text, normalized_tokens, translation, tokens, token_count, status FROM phrases`

func (s *sqliteStore) queryPhrases(ctx context.Context, query string, args ...interface{}) ([]store.ContextPhrase, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ContextPhrase
	for rows.Next() {
		p, err := scanPhrase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPhrase(sc scanner) (store.ContextPhrase, error) {
	var (
		p                       store.ContextPhrase
		normalized, translation sql.NullString
		tokensJSON, status      string
	)
	if err := sc.Scan(&p.ID, &p.Text, &p.NormalizedText, &normalized, &translation, &tokensJSON, &p.TokenCount, &status); err != nil {
		return store.ContextPhrase{}, err
	}
	if err := json.Unmarshal([]byte(tokensJSON), &p.Tokens); err != nil {
		return store.ContextPhrase{}, fmt.Errorf("decode tokens of %s: %w", p.ID, err)
	}
	if normalized.Valid && normalized.String != "" {
		if err := json.Unmarshal([]byte(normalized.String), &p.NormalizedTokens); err != nil {
			return store.ContextPhrase{}, fmt.Errorf("decode normalized tokens of %s: %w", p.ID, err)
		}
	}
	p.Translation = translation.String
	p.Status = store.Status(status)
	return p, nil
}

// LinksForText retrieves the links recorded for a text
func (s *sqliteStore) LinksForText(ctx context.Context, textID string) ([]store.ContextLink, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT text_id, context_id, word_indexes, normalized_tokens, token_count, updated_at
FROM links
WHERE text_id = ?
ORDER BY rowid;
`, textID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ContextLink
	for rows.Next() {
		var (
			l                   store.ContextLink
			indexes, normalized string
			updated             sql.NullString
		)
		if err := rows.Scan(&l.TextID, &l.ContextID, &indexes, &normalized, &l.TokenCount, &updated); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(indexes), &l.WordIndexes); err != nil {
			return nil, fmt.Errorf("decode link indexes: %w", err)
		}
		if err := json.Unmarshal([]byte(normalized), &l.NormalizedTokens); err != nil {
			return nil, fmt.Errorf("decode link tokens: %w", err)
		}
		l.UpdatedAt = parseTime(updated.String)
		out = append(out, l)
	}
	return out, rows.Err()
}

// SaveLink inserts or merges a link under its key
func (s *sqliteStore) SaveLink(ctx context.Context, l store.ContextLink) error {
	if l.TextID == "" || l.ContextID == "" {
		return nil
	}
	indexes, err := json.Marshal(nonNilInts(l.WordIndexes))
	if err != nil {
		return err
	}
	normalized, err := json.Marshal(nonNil(l.NormalizedTokens))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO links (key, text_id, context_id, word_indexes, normalized_tokens, token_count, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	word_indexes=excluded.word_indexes,
	normalized_tokens=excluded.normalized_tokens,
	token_count=excluded.token_count,
	updated_at=excluded.updated_at;
`, l.Key(), l.TextID, l.ContextID, string(indexes), string(normalized), l.TokenCount, formatTime(l.UpdatedAt))
	return err
}

// ActiveText retrieves the active text
func (s *sqliteStore) ActiveText(ctx context.Context) (store.Text, bool, error) {
	var (
		t       store.Text
		created sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, raw_text, created_at FROM active_text WHERE slot = 1`).Scan(&t.ID, &t.RawText, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Text{}, false, nil
	}
	if err != nil {
		return store.Text{}, false, err
	}
	t.CreatedAt = parseTime(created.String)
	return t, true, nil
}

// SaveActiveText replaces the active text
func (s *sqliteStore) SaveActiveText(ctx context.Context, t store.Text) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO active_text (slot, id, raw_text, created_at) VALUES (1, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
	id=excluded.id,
	raw_text=excluded.raw_text,
	created_at=excluded.created_at;
`, t.ID, t.RawText, formatTime(t.CreatedAt))
	return err
}

// ClearActiveText removes the active text
func (s *sqliteStore) ClearActiveText(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM active_text WHERE slot = 1`)
	return err
}

// GetUsage retrieves the translation usage counter
func (s *sqliteStore) GetUsage(ctx context.Context) (store.Usage, error) {
	var (
		u       store.Usage
		started sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT total_chars, started_at FROM translation_usage WHERE slot = 1`).Scan(&u.TotalChars, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Usage{}, nil
	}
	if err != nil {
		return store.Usage{}, err
	}
	u.StartedAt = parseTime(started.String)
	return u, nil
}

// SaveUsage replaces the translation usage counter
func (s *sqliteStore) SaveUsage(ctx context.Context, u store.Usage) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO translation_usage (slot, total_chars, started_at) VALUES (1, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
	total_chars=excluded.total_chars,
	started_at=excluded.started_at;
`, u.TotalChars, formatTime(u.StartedAt))
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilInts(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
