package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

func TestWords_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	w := store.Word{Key: "cat", Text: "Cat", Stem: "cat", Status: store.StatusLearning, Translation: "gato", UpdatedAt: time.Now()}
	if err := s.SaveWord(ctx, w); err != nil {
		t.Fatalf("SaveWord: %v", err)
	}

	got, ok, err := s.GetWord(ctx, "cat")
	if err != nil || !ok {
		t.Fatalf("GetWord: ok=%v err=%v", ok, err)
	}
	if got.Translation != "gato" || got.Status != store.StatusLearning {
		t.Errorf("unexpected word: %+v", got)
	}

	if _, ok, _ := s.GetWord(ctx, "dog"); ok {
		t.Error("dog should not be found")
	}
}

func TestWords_ByKeysAndStem(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SaveWord(ctx, store.Word{Key: "play", Stem: "play"})
	s.SaveWord(ctx, store.Word{Key: "playing", Stem: "play"})
	s.SaveWord(ctx, store.Word{Key: "stone", Stem: "stone"})

	byKeys, _ := s.GetWordsByKeys(ctx, []string{"stone", "play", "play", "missing", ""})
	if len(byKeys) != 2 || byKeys[0].Key != "play" || byKeys[1].Key != "stone" {
		t.Errorf("GetWordsByKeys = %+v", byKeys)
	}

	family, _ := s.WordsByStem(ctx, "play")
	if len(family) != 2 {
		t.Errorf("expected 2 words with stem play, got %d", len(family))
	}

	all, _ := s.ListWords(ctx)
	if len(all) != 3 {
		t.Errorf("expected 3 words, got %d", len(all))
	}
}

func TestPhrases_InsertionOrderAndUpsert(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SavePhrase(ctx, store.ContextPhrase{ID: "ctx_a", Text: "gave up", NormalizedTokens: []string{"gave", "up"}})
	s.SavePhrase(ctx, store.ContextPhrase{ID: "ctx_b", Text: "look after", NormalizedTokens: []string{"look", "after"}})
	s.SavePhrase(ctx, store.ContextPhrase{ID: "ctx_a", Text: "gave up", Translation: "desistiu", NormalizedTokens: []string{"gave", "up"}})

	all, _ := s.ListPhrases(ctx)
	if len(all) != 2 || all[0].ID != "ctx_a" || all[1].ID != "ctx_b" {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[0].Translation != "desistiu" {
		t.Error("upsert should replace the record")
	}
}

func TestPhrases_ByTokens(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SavePhrase(ctx, store.ContextPhrase{ID: "ctx_a", NormalizedTokens: []string{"gave", "up"}})
	s.SavePhrase(ctx, store.ContextPhrase{ID: "ctx_b", NormalizedTokens: []string{"look", "after"}})
	s.SavePhrase(ctx, store.ContextPhrase{ID: "ctx_legacy", Tokens: []string{"old", "one"}})

	got, _ := s.ListPhrasesByTokens(ctx, []string{"up", "smoking"})
	if len(got) != 2 || got[0].ID != "ctx_a" || got[1].ID != "ctx_legacy" {
		t.Errorf("expected matched + legacy, got %+v", got)
	}

	// Nothing intersects: everything is returned.
	got, _ = s.ListPhrasesByTokens(ctx, []string{"zebra"})
	if len(got) != 3 {
		t.Errorf("expected all 3 phrases, got %d", len(got))
	}

	got, _ = s.ListPhrasesByTokens(ctx, nil)
	if len(got) != 0 {
		t.Errorf("no tokens should return nothing, got %d", len(got))
	}
}

func TestPhrases_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SavePhrase(ctx, store.ContextPhrase{ID: "ctx_a", Tokens: []string{"gave", "up"}})

	p, _, _ := s.GetPhrase(ctx, "ctx_a")
	p.Tokens[0] = "mutated"

	again, _, _ := s.GetPhrase(ctx, "ctx_a")
	if again.Tokens[0] != "gave" {
		t.Error("callers must not be able to mutate stored phrases")
	}
}

func TestLinks_MergeByKey(t *testing.T) {
	ctx := context.Background()
	s := New()
	first := store.ContextLink{TextID: "t1", ContextID: "ctx_a", WordIndexes: []int{1, 2}, TokenCount: 2}
	second := first
	second.NormalizedTokens = []string{"gave", "up"}

	s.SaveLink(ctx, first)
	s.SaveLink(ctx, second)
	s.SaveLink(ctx, store.ContextLink{TextID: "t2", ContextID: "ctx_a", WordIndexes: []int{0, 1}})

	links, _ := s.LinksForText(ctx, "t1")
	if len(links) != 1 {
		t.Fatalf("expected merged link, got %d", len(links))
	}
	if len(links[0].NormalizedTokens) != 2 {
		t.Error("second save should replace the link")
	}
	if first.Key() != "t1_ctx_a_1-2" {
		t.Errorf("unexpected key %q", first.Key())
	}
}

func TestActiveTextAndUsage(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, _ := s.ActiveText(ctx); ok {
		t.Fatal("no active text expected")
	}
	s.SaveActiveText(ctx, store.Text{ID: "01H", RawText: "hello"})
	txt, ok, _ := s.ActiveText(ctx)
	if !ok || txt.RawText != "hello" {
		t.Errorf("unexpected active text %+v", txt)
	}
	s.ClearActiveText(ctx)
	if _, ok, _ := s.ActiveText(ctx); ok {
		t.Error("active text should be cleared")
	}

	start := time.Now()
	s.SaveUsage(ctx, store.Usage{TotalChars: 12, StartedAt: start})
	u, _ := s.GetUsage(ctx)
	if u.TotalChars != 12 || !u.StartedAt.Equal(start) {
		t.Errorf("unexpected usage %+v", u)
	}
}
