package store

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"learned", StatusLearned, true},
		{" Learning ", StatusLearning, true},
		{"not-learned", StatusNotLearned, true},
		{"new", StatusNotLearned, true},
		{"forgotten", "", false},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseStatus(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.ok && !got.Valid() {
			t.Errorf("%q should be valid", got)
		}
	}
	if Status("bogus").Valid() {
		t.Error("bogus status should be invalid")
	}
}

func TestContextLinkKey(t *testing.T) {
	l := ContextLink{TextID: "01HX", ContextID: "ctx_ab", WordIndexes: []int{3, 4, 5}}
	if got := l.Key(); got != "01HX_ctx_ab_3-4-5" {
		t.Errorf("Key() = %q", got)
	}
}
