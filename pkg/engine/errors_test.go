package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStepErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		fatal   bool
		warning bool
		skipped bool
	}{
		{"fatal", NewFatalError("package installation failed", errors.New("exit 100")), true, false, false},
		{"warning", NewWarning("no expander found", nil), false, true, false},
		{"skipped", Skip("already installed"), false, false, true},
		{"wrapped fatal", fmt.Errorf("step: %w", NewFatalError("inner", nil)), true, false, false},
		{"plain error", errors.New("plain"), false, false, false},
		{"nil", nil, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal() = %v, want %v", got, tt.fatal)
			}
			if got := IsWarning(tt.err); got != tt.warning {
				t.Errorf("IsWarning() = %v, want %v", got, tt.warning)
			}
			if got := IsSkipped(tt.err); got != tt.skipped {
				t.Errorf("IsSkipped() = %v, want %v", got, tt.skipped)
			}
		})
	}
}

func TestStepErrorMessage(t *testing.T) {
	err := NewFatalError("firmware update failed", errors.New("permission denied")).WithStep("firmware")
	msg := err.Error()
	for _, want := range []string{"fatal", "firmware update failed", "step=firmware", "permission denied"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestStepErrorUnwrap(t *testing.T) {
	inner := errors.New("exit status 1")
	err := NewFatalError("modprobe failed", inner)
	if !errors.Is(err, inner) {
		t.Error("errors.Is should reach the wrapped error")
	}
}

func TestSkipf(t *testing.T) {
	err := Skipf("address already set to %s", "0x20")
	if !IsSkipped(err) {
		t.Fatal("Skipf should produce a skipped-class error")
	}
	if err.Message != "address already set to 0x20" {
		t.Errorf("Message = %q", err.Message)
	}
}
