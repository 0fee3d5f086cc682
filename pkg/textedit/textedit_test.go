package textedit

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// applyLines runs a transform over raw content and returns the result.
func applyLines(t *testing.T, tr Transform, content string) (string, bool) {
	t.Helper()
	out, changed := tr(splitLines(content))
	return strings.Join(out, "\n"), changed
}

// TestUpsertDirectiveRewritesInPlace verifies a wrong value is rewritten
// on its original line while every other line is preserved verbatim.
func TestUpsertDirectiveRewritesInPlace(t *testing.T) {
	content := "# boot config\ndtparam=audio=on\ndtparam=i2c_arm=off\ngpu_mem=16\n"
	tr := UpsertDirective("dtparam=i2c_arm=", "dtparam=i2c_arm=on")

	out, changed := applyLines(t, tr, content)
	if !changed {
		t.Fatal("expected change")
	}
	want := "# boot config\ndtparam=audio=on\ndtparam=i2c_arm=on\ngpu_mem=16"
	if out != want {
		t.Errorf("unexpected result:\n%s\nwant:\n%s", out, want)
	}
}

// TestUpsertDirectiveAppendsWhenAbsent verifies the directive is appended
// when no line matches the key prefix.
func TestUpsertDirectiveAppendsWhenAbsent(t *testing.T) {
	content := "gpu_mem=16\n"
	tr := UpsertDirective("dtparam=spi=", "dtparam=spi=on")

	out, changed := applyLines(t, tr, content)
	if !changed {
		t.Fatal("expected change")
	}
	if out != "gpu_mem=16\ndtparam=spi=on" {
		t.Errorf("unexpected result: %q", out)
	}
}

// TestUpsertDirectiveIdempotent verifies a second application is a no-op.
func TestUpsertDirectiveIdempotent(t *testing.T) {
	tr := UpsertDirective("dtparam=i2c_arm=", "dtparam=i2c_arm=on")

	out1, changed := applyLines(t, tr, "dtparam=i2c_arm=off\n")
	if !changed {
		t.Fatal("first application should change the file")
	}
	out2, changed := applyLines(t, tr, out1+"\n")
	if changed {
		t.Error("second application should be a no-op")
	}
	if out1 != out2 {
		t.Errorf("content diverged: %q vs %q", out1, out2)
	}
}

// TestReplaceValue covers the downstream address patch: an existing hex
// literal is replaced in place, otherwise a definition line is appended.
func TestReplaceValue(t *testing.T) {
	re := regexp.MustCompile(`^mcp23017_address\s*=\s*(0x[0-9a-fA-F]+)`)

	tests := []struct {
		name    string
		content string
		want    string
		changed bool
	}{
		{
			name:    "replace existing literal",
			content: "import smbus\nmcp23017_address = 0x20\n",
			want:    "import smbus\nmcp23017_address = 0x24",
			changed: true,
		},
		{
			name:    "append when absent",
			content: "import smbus\n",
			want:    "import smbus\nmcp23017_address = 0x24",
			changed: true,
		},
		{
			name:    "no-op when already correct",
			content: "mcp23017_address = 0x24\n",
			want:    "mcp23017_address = 0x24",
			changed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := ReplaceValue(re, "0x24", "mcp23017_address = 0x24")
			out, changed := applyLines(t, tr, tt.content)
			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
			if out != tt.want {
				t.Errorf("unexpected result:\n%s\nwant:\n%s", out, tt.want)
			}
		})
	}
}

// TestSetCommented verifies the feature toggle: only the matching lines
// change, indentation is preserved, and untouched lines stay
// byte-identical.
func TestSetCommented(t *testing.T) {
	re := regexp.MustCompile(`^buttons_leds(\s*=\s*ButtonsLEDController\(|\.start\(\))`)
	content := strings.Join([]string{
		"def main():",
		"    # 17. Optional ButtonsLEDController",
		"    #buttons_leds = ButtonsLEDController(config_path=config_path)",
		"    #buttons_leds.start()",
		"    run_loop()",
	}, "\n") + "\n"

	enabled, changed := applyLines(t, SetCommented(re, false), content)
	if !changed {
		t.Fatal("enable should uncomment the marker lines")
	}
	wantEnabled := strings.Join([]string{
		"def main():",
		"    # 17. Optional ButtonsLEDController",
		"    buttons_leds = ButtonsLEDController(config_path=config_path)",
		"    buttons_leds.start()",
		"    run_loop()",
	}, "\n")
	if enabled != wantEnabled {
		t.Errorf("unexpected result:\n%s\nwant:\n%s", enabled, wantEnabled)
	}

	// Enabling again is a no-op.
	if _, changed := applyLines(t, SetCommented(re, false), enabled+"\n"); changed {
		t.Error("enable on already-enabled file should be a no-op")
	}

	// Disabling restores the original marker lines.
	disabled, changed := applyLines(t, SetCommented(re, true), enabled+"\n")
	if !changed {
		t.Fatal("disable should comment the marker lines")
	}
	if disabled+"\n" != content {
		t.Errorf("disable did not restore original content:\n%s", disabled)
	}
}

// TestSetCommentedLeavesDescriptiveCommentAlone: the prose comment above
// the marker lines starts with "# 17." and must never match the anchored
// pattern.
func TestSetCommentedLeavesDescriptiveCommentAlone(t *testing.T) {
	re := regexp.MustCompile(`^buttons_leds`)
	content := "    # 17. Optional ButtonsLEDController\n"
	if _, changed := applyLines(t, SetCommented(re, true), content); changed {
		t.Error("descriptive comment must not be touched")
	}
}

// TestAppendStanza verifies stanza-level idempotence for the mpd and
// samba config appends.
func TestAppendStanza(t *testing.T) {
	block := "audio_output {\n    type \"fifo\"\n    name \"cava_fifo\"\n}"
	tr := AppendStanza(`name "cava_fifo"`, block)

	out, changed := applyLines(t, tr, "bind_to_address \"localhost\"\n")
	if !changed {
		t.Fatal("expected stanza append")
	}
	if !strings.Contains(out, `type "fifo"`) {
		t.Errorf("stanza missing from output:\n%s", out)
	}

	if _, changed := applyLines(t, tr, out+"\n"); changed {
		t.Error("second append should be a no-op")
	}
}

// TestApply covers the file-level wrapper: create-if-absent, rewrite only
// on change, error on missing file without create.
func TestApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")

	changed, err := Apply(path, true, 0o644, UpsertDirective("dtparam=i2c_arm=", "dtparam=i2c_arm=on"))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !changed {
		t.Fatal("expected change on fresh file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "dtparam=i2c_arm=on\n" {
		t.Errorf("unexpected file content: %q", data)
	}

	changed, err = Apply(path, true, 0o644, UpsertDirective("dtparam=i2c_arm=", "dtparam=i2c_arm=on"))
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if changed {
		t.Error("second apply should not rewrite the file")
	}

	if _, err := Apply(filepath.Join(dir, "missing.py"), false, 0o644, UpsertDirective("x", "x=1")); err == nil {
		t.Error("expected error for missing file without create")
	}
}
