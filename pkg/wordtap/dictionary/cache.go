package dictionary

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/cognicore/wordtap/pkg/wordtap/ingest"
)

// Cache memoizes a Lookup by normalized term. Definitive answers are kept
// for the life of the cache; errors are not cached. Concurrent lookups for
// the same term share a single call to the underlying Lookup.
type Cache struct {
	lookup Lookup

	mu    sync.RWMutex
	known map[string]bool

	group singleflight.Group
}

// NewCache wraps lookup.
func NewCache(lookup Lookup) *Cache {
	return &Cache{lookup: lookup, known: make(map[string]bool)}
}

// Has returns the cached answer for term, or asks the wrapped Lookup.
// A caller joining an in-flight lookup gets that call's result, which runs
// under the first caller's context.
func (c *Cache) Has(ctx context.Context, term string) (bool, error) {
	term = ingest.NormalizeWord(term)
	if term == "" {
		return false, nil
	}
	if found, ok := c.cached(term); ok {
		return found, nil
	}

	v, err, shared := c.group.Do(term, func() (interface{}, error) {
		if found, ok := c.cached(term); ok {
			return found, nil
		}
		slog.Debug("dictionary lookup", "term", term)
		found, err := c.lookup.Has(ctx, term)
		if err != nil {
			return false, err
		}
		c.mu.Lock()
		c.known[term] = found
		c.mu.Unlock()
		return found, nil
	})
	if shared {
		slog.Debug("dictionary lookup shared", "term", term)
	}
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Len returns the number of cached answers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.known)
}

func (c *Cache) cached(term string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	found, ok := c.known[term]
	return found, ok
}
