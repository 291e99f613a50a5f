package phrase

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

func TestHashVectors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq", "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1"},
	}
	for _, tt := range tests {
		if got := Hash(tt.in); got != tt.want {
			t.Errorf("Hash(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBuildContextID(t *testing.T) {
	id := BuildContextID("abc")
	if id != "ctx_ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("unexpected id %s", id)
	}
	if !IsContextID(id) {
		t.Errorf("IsContextID(%s) = false", id)
	}
	for _, bad := range []string{"", "ctx_", "abc", "ctx_" + strings.Repeat("G", 64), "ctx_" + strings.Repeat("a", 63)} {
		if IsContextID(bad) {
			t.Errorf("IsContextID(%q) = true", bad)
		}
	}
}

func TestIDForIgnoresCaseAndPunctuation(t *testing.T) {
	base := IDFor("gave up")
	for _, variant := range []string{"Gave Up", "gave up.", "  gave   up!", "GAVE, UP"} {
		if got := IDFor(variant); got != base {
			t.Errorf("IDFor(%q) = %s, want %s", variant, got, base)
		}
	}
	if IDFor("gave in") == base {
		t.Error("different phrases must not share an id")
	}
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord([]string{"Gave", "up", ","}, " desistiu ", store.StatusLearning)
	if rec.Text != "Gave up ," {
		t.Errorf("Text = %q", rec.Text)
	}
	if rec.NormalizedText != "gave up" {
		t.Errorf("NormalizedText = %q", rec.NormalizedText)
	}
	if rec.ID != BuildContextID("gave up") {
		t.Errorf("ID = %s", rec.ID)
	}
	if len(rec.NormalizedTokens) != 2 || rec.NormalizedTokens[1] != "up" {
		t.Errorf("NormalizedTokens = %v", rec.NormalizedTokens)
	}
	if rec.TokenCount != 3 || rec.Translation != "desistiu" || rec.Status != store.StatusLearning {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestNewLink(t *testing.T) {
	tokens := []string{"I", "Gave", "up", ",", "smoking"}
	now := time.Now()
	link := NewLink("t1", "ctx_a", []int{2, 1, 2, 9, -1}, tokens, now)

	if len(link.WordIndexes) != 2 || link.WordIndexes[0] != 1 || link.WordIndexes[1] != 2 {
		t.Errorf("WordIndexes = %v", link.WordIndexes)
	}
	if len(link.NormalizedTokens) != 2 || link.NormalizedTokens[0] != "gave" {
		t.Errorf("NormalizedTokens = %v", link.NormalizedTokens)
	}
	if link.TokenCount != 2 || !link.UpdatedAt.Equal(now) {
		t.Errorf("unexpected link %+v", link)
	}
	if link.Key() != "t1_ctx_a_1-2" {
		t.Errorf("Key = %s", link.Key())
	}

	withPunct := NewLink("t1", "ctx_b", []int{2, 3, 4}, tokens, now)
	if !reflect.DeepEqual(withPunct.NormalizedTokens, []string{"up", ",", "smoking"}) || withPunct.TokenCount != 3 {
		t.Errorf("every selected index should keep a normalized token: %+v", withPunct)
	}
}
