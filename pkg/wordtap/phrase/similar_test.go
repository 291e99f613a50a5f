package phrase

import (
	"testing"

	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

func TestSuggest(t *testing.T) {
	known := []store.ContextPhrase{
		{ID: "a", Text: "look after", NormalizedText: "look after"},
		{ID: "b", Text: "give up", NormalizedText: "give up"},
		{ID: "c", Text: "Gave up."},
	}

	got := Suggest("give up!", known, 0)
	if len(got) == 0 || got[0].Phrase.ID != "b" || got[0].Score != 1 {
		t.Fatalf("expected exact match first, got %+v", got)
	}
	for _, s := range got {
		if s.Phrase.ID == "a" {
			t.Errorf("unrelated phrase suggested: %+v", s)
		}
	}

	limited := Suggest("give up", known, 1)
	if len(limited) != 1 {
		t.Errorf("limit not applied, got %d", len(limited))
	}

	if Suggest("  ...  ", known, 0) != nil {
		t.Error("empty selection should suggest nothing")
	}
}

func TestSimilarityJoinsSpaces(t *testing.T) {
	if similarity("give up", "giveup") < SuggestThreshold {
		t.Error("space-stripped forms should be similar")
	}
}
