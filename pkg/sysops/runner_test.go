package sysops

import (
	"bytes"
	"context"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quadify/quadify-setup/pkg/telemetry"
)

func testRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	var transcript bytes.Buffer
	r := NewRunner(telemetry.NewTestLogger(&transcript), &transcript)
	return r, &transcript
}

// TestRunnerRedirectsOutput verifies command output lands in the
// transcript sink, not on the interactive surface.
func TestRunnerRedirectsOutput(t *testing.T) {
	r, transcript := testRunner(t)

	if err := r.Run(context.Background(), "echo", "hello transcript"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(transcript.String(), "hello transcript") {
		t.Errorf("transcript missing command output: %q", transcript.String())
	}
}

// TestRunnerCaptureMirrors verifies Capture returns stdout and mirrors it
// to the extra writer in real time.
func TestRunnerCaptureMirrors(t *testing.T) {
	r, _ := testRunner(t)

	var mirror bytes.Buffer
	out, err := r.Capture(context.Background(), &mirror, "echo", "scan grid")
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if strings.TrimSpace(out) != "scan grid" {
		t.Errorf("unexpected stdout: %q", out)
	}
	if strings.TrimSpace(mirror.String()) != "scan grid" {
		t.Errorf("mirror missing output: %q", mirror.String())
	}
}

// TestRunnerReportsFailure verifies a non-zero exit surfaces as an error
// naming the command.
func TestRunnerReportsFailure(t *testing.T) {
	r, _ := testRunner(t)

	err := r.Run(context.Background(), "false")
	if err == nil {
		t.Fatal("expected error from failing command")
	}
	if !strings.Contains(err.Error(), "false") {
		t.Errorf("error does not name the command: %v", err)
	}
}

// TestInstalled checks the PATH short-circuit helper.
func TestInstalled(t *testing.T) {
	if !Installed("echo") {
		t.Error("echo should be on PATH")
	}
	if Installed("definitely-not-a-binary-qx") {
		t.Error("nonexistent binary reported as installed")
	}
}

// TestNormalizeTree runs the ownership/permission pass over a small tree
// as the current user.
func TestNormalizeTree(t *testing.T) {
	u, err := user.Current()
	if err != nil {
		t.Skipf("cannot resolve current user: %v", err)
	}

	root := t.TempDir()
	sub := filepath.Join(root, "src")
	if err := os.MkdirAll(sub, 0o700); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "main.py")
	if err := os.WriteFile(file, []byte("print()\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := NormalizeTree(root, u.Username, 0o755); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %o, want 755", info.Mode().Perm())
	}
}
