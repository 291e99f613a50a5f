package ingest

import "testing"

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Hello ", "hello"},
		{"Don't", "don't"},
		{"end.", "end."},
		{"ÉCOLE", "école"},
	}
	for _, tt := range tests {
		if got := NormalizeWord(tt.in); got != tt.want {
			t.Errorf("NormalizeWord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeContext(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Good Morning", "good morning"},
		{"good   morning ", "good morning"},
		{"  Good morning.", "good morning"},
		{"Don't give up!", "don't give up"},
		{"gave up , smoking", "gave up smoking"},
		{"Room 101", "room 101"},
		{"l’été", "lété"},
		{"", ""},
		{" ... ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeContext(tt.in); got != tt.want {
			t.Errorf("NormalizeContext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeContextIdempotent(t *testing.T) {
	inputs := []string{
		"Good Morning",
		"a - b",
		"hello !",
		"  spaced\t\tout\n text ",
		"ΣΊΣΥΦΟΣ",
		"it's a “quoted” phrase…",
		"x\xffy",
	}
	for _, in := range inputs {
		once := NormalizeContext(in)
		twice := NormalizeContext(once)
		if once != twice {
			t.Errorf("NormalizeContext not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeTokens(t *testing.T) {
	got := NormalizeTokens([]string{"Gave", "UP", ",", "smoking", "."})
	want := []string{"gave", "up", "smoking"}
	if !equalStrings(got, want) {
		t.Errorf("NormalizeTokens = %q, want %q", got, want)
	}
}
