package translate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

// UsageWindow is how long a usage counter accumulates before it restarts.
// Characters are counted as Unicode code points, not UTF-16 code units, so
// a character outside the Basic Multilingual Plane such as an emoji counts
// once.
const UsageWindow = 30 * 24 * time.Hour

// UsageStore persists the usage counter. store.Store satisfies it.
type UsageStore interface {
	GetUsage(ctx context.Context) (store.Usage, error)
	SaveUsage(ctx context.Context, u store.Usage) error
}

// Usage counts translated characters over a rolling 30-day window.
type Usage struct {
	st  UsageStore
	now func() time.Time
	mu  sync.Mutex
}

// NewUsage returns a tracker persisting through st.
func NewUsage(st UsageStore) *Usage {
	return &Usage{st: st, now: time.Now}
}

// Current returns the counter, restarted if its window has expired.
func (u *Usage) Current(ctx context.Context) (store.Usage, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.current(ctx)
}

// Add records chars translated characters and returns the new total.
// Negative counts are ignored.
func (u *Usage) Add(ctx context.Context, chars int) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	cur, err := u.current(ctx)
	if err != nil {
		return 0, err
	}
	if chars > 0 {
		cur.TotalChars += chars
	}
	if err := u.st.SaveUsage(ctx, cur); err != nil {
		return 0, fmt.Errorf("save usage: %w", err)
	}
	return cur.TotalChars, nil
}

func (u *Usage) current(ctx context.Context) (store.Usage, error) {
	cur, err := u.st.GetUsage(ctx)
	if err != nil {
		return store.Usage{}, fmt.Errorf("load usage: %w", err)
	}
	now := u.now()
	if cur.StartedAt.IsZero() || now.Sub(cur.StartedAt) > UsageWindow {
		return store.Usage{StartedAt: now}, nil
	}
	return cur, nil
}
