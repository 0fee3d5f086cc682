package sysops

import (
	"os"
	"path/filepath"
	"testing"
)

// TestInstallUnitSubstitution verifies the {USER} placeholder resolves
// everywhere in the template and that rewriting an identical unit
// reports no change.
func TestInstallUnitSubstitution(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "quadify.service.tmpl")
	dest := filepath.Join(dir, "quadify.service")

	content := "[Service]\nUser={USER}\nExecStart=/home/{USER}/Quadify/venv/bin/python3 src/main.py\n"
	if err := os.WriteFile(tmpl, []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	sd := NewSystemd(nil)
	changed, err := sd.InstallUnit(tmpl, dest, "volumio")
	if err != nil {
		t.Fatalf("install unit: %v", err)
	}
	if !changed {
		t.Fatal("expected first install to write the unit")
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read unit: %v", err)
	}
	want := "[Service]\nUser=volumio\nExecStart=/home/volumio/Quadify/venv/bin/python3 src/main.py\n"
	if string(got) != want {
		t.Errorf("unexpected unit:\n%s\nwant:\n%s", got, want)
	}

	changed, err = sd.InstallUnit(tmpl, dest, "volumio")
	if err != nil {
		t.Fatalf("second install: %v", err)
	}
	if changed {
		t.Error("identical unit should not be rewritten")
	}
}

// TestInstallUnitMissingTemplate: a missing template signals a broken
// install tree and must error.
func TestInstallUnitMissingTemplate(t *testing.T) {
	sd := NewSystemd(nil)
	if _, err := sd.InstallUnit("/nonexistent/unit.tmpl", filepath.Join(t.TempDir(), "u.service"), "pi"); err == nil {
		t.Error("expected error for missing template")
	}
}
