package util

import "testing"

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no quotes", "hello", "hello"},
		{"double quoted", `"hello"`, "hello"},
		{"single quotes only", "'hello'", "'hello'"},
		{"quotes in middle", `he"llo`, `he"llo`},
		{"only quotes", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimQuotes(tt.input); got != tt.expected {
				t.Errorf("TrimQuotes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFixEscapeQuotes(t *testing.T) {
	if got := FixEscapeQuotes(`say ""hi""`); got != `say "hi"` {
		t.Errorf("FixEscapeQuotes = %q", got)
	}
}

func TestCleanArgs(t *testing.T) {
	in := []string{`"12"`, ` "1,2,3" `, `plain`}
	got := CleanArgs(in)

	want := []string{"12", "1,2,3", "plain"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CleanArgs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if in[0] != `"12"` {
		t.Error("CleanArgs modified its input")
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{-3, "0"},
		{0, "0"},
		{42, "42"},
		{60, "60"},
		{61, "1:01"},
		{600, "10:00"},
		{1199, "19:59"},
	}

	for _, tt := range tests {
		if got := FormatCountdown(tt.seconds); got != tt.want {
			t.Errorf("FormatCountdown(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
