package translate

import (
	"context"
	"testing"
	"time"

	"github.com/cognicore/wordtap/pkg/wordtap/store"
	"github.com/cognicore/wordtap/pkg/wordtap/store/memstore"
)

func TestUsageAccumulates(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	u := NewUsage(st)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	u.now = func() time.Time { return start }

	if total, _ := u.Add(ctx, 10); total != 10 {
		t.Errorf("total = %d, want 10", total)
	}
	if total, _ := u.Add(ctx, -5); total != 10 {
		t.Errorf("negative counts should be ignored, total = %d", total)
	}
	total, err := u.Add(ctx, 7)
	if err != nil || total != 17 {
		t.Fatalf("total=%d err=%v", total, err)
	}

	saved, _ := st.GetUsage(ctx)
	if saved.TotalChars != 17 || !saved.StartedAt.Equal(start) {
		t.Errorf("unexpected saved usage %+v", saved)
	}
}

func TestUsageWindowExpires(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.SaveUsage(ctx, store.Usage{TotalChars: 500, StartedAt: start})

	u := NewUsage(st)
	u.now = func() time.Time { return start.Add(29 * 24 * time.Hour) }
	if cur, _ := u.Current(ctx); cur.TotalChars != 500 {
		t.Errorf("usage inside window should persist, got %+v", cur)
	}

	later := start.Add(31 * 24 * time.Hour)
	u.now = func() time.Time { return later }
	cur, err := u.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.TotalChars != 0 || !cur.StartedAt.Equal(later) {
		t.Errorf("expired usage should restart, got %+v", cur)
	}
	if total, _ := u.Add(ctx, 3); total != 3 {
		t.Errorf("total after restart = %d, want 3", total)
	}
}
