package ui

import (
	"bytes"
	"strings"
	"testing"
)

// TestAskYesNo covers the prefix-match loop: valid answers on the first
// try, case-insensitivity, and re-prompting on garbage input.
func TestAskYesNo(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		prompts int
	}{
		{"plain yes", "y\n", true, 1},
		{"plain no", "n\n", false, 1},
		{"word yes", "yes\n", true, 1},
		{"uppercase", "YES\n", true, 1},
		{"no with trailing text", "nope\n", false, 1},
		{"reprompt until valid", "maybe\n\nok?\ny\n", true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := AskYesNo(strings.NewReader(tt.input), &out, "Enable buttons and LEDs?")
			if err != nil {
				t.Fatalf("ask failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("answer = %v, want %v", got, tt.want)
			}
			if n := strings.Count(out.String(), "[y/n]:"); n != tt.prompts {
				t.Errorf("prompted %d times, want %d", n, tt.prompts)
			}
		})
	}
}

// TestAskYesNoInputClosed: drained input without a valid answer is an
// error, not a default.
func TestAskYesNoInputClosed(t *testing.T) {
	var out bytes.Buffer
	if _, err := AskYesNo(strings.NewReader("maybe\n"), &out, "Enable?"); err == nil {
		t.Error("expected error on exhausted input")
	}
}
