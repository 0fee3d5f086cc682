// Package textedit implements idempotent line-oriented file transforms:
// upsert a key=value directive, replace a value by pattern, toggle a
// comment marker, append a stanza once. All transforms preserve unrelated
// lines verbatim and in their original order, which is what makes the
// provisioning pipeline safe to re-run.
package textedit

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Transform rewrites a file's lines. It returns the new lines and whether
// anything changed. Transforms must be pure: same input, same output.
type Transform func(lines []string) ([]string, bool)

// Apply runs a transform against the file at path. When create is true a
// missing file is treated as empty and created on write; otherwise a
// missing file is an error. The file is rewritten only when the transform
// reports a change.
func Apply(path string, create bool, perm os.FileMode, t Transform) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) || !create {
			return false, err
		}
		data = nil
	}

	lines := splitLines(string(data))
	out, changed := t(lines)
	if !changed {
		return false, nil
	}

	content := strings.Join(out, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// splitLines splits file content into lines without a trailing empty
// element for a final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// UpsertDirective rewrites the first line starting with prefix to the
// desired full line, or appends the line when no match exists. A line
// already equal to the desired text is left untouched.
func UpsertDirective(prefix, line string) Transform {
	return func(lines []string) ([]string, bool) {
		for i, l := range lines {
			if strings.HasPrefix(strings.TrimSpace(l), prefix) {
				if strings.TrimSpace(l) == line {
					return lines, false
				}
				out := make([]string, len(lines))
				copy(out, lines)
				out[i] = line
				return out, true
			}
		}
		return append(append([]string{}, lines...), line), true
	}
}

// ReplaceValue substitutes the first submatch of re on the first matching
// line with value. When no line matches, appendLine is appended instead.
// The pattern must contain exactly one capturing group marking the value
// to rewrite; the rest of the line is preserved byte for byte.
func ReplaceValue(re *regexp.Regexp, value, appendLine string) Transform {
	return func(lines []string) ([]string, bool) {
		for i, l := range lines {
			m := re.FindStringSubmatchIndex(l)
			if m == nil {
				continue
			}
			if len(m) < 4 {
				// No capturing group; treat the whole match as the value.
				m = append(m, m[0], m[1])
			}
			if l[m[2]:m[3]] == value {
				return lines, false
			}
			out := make([]string, len(lines))
			copy(out, lines)
			out[i] = l[:m[2]] + value + l[m[3]:]
			return out, true
		}
		return append(append([]string{}, lines...), appendLine), true
	}
}

// SetCommented adds or strips a leading "#" on every line whose code text
// matches the anchored pattern, preserving indentation. Only the intended
// lines are touched; everything else stays byte-identical. Enabling an
// already-uncommented line (or disabling an already-commented one) is a
// no-op.
func SetCommented(re *regexp.Regexp, commented bool) Transform {
	return func(lines []string) ([]string, bool) {
		var out []string
		changed := false
		for _, l := range lines {
			indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
			rest := l[len(indent):]
			code := strings.TrimPrefix(rest, "#")
			isCommented := rest != code
			if !re.MatchString(code) || isCommented == commented {
				out = append(out, l)
				continue
			}
			if commented {
				out = append(out, indent+"#"+rest)
			} else {
				out = append(out, indent+code)
			}
			changed = true
		}
		if !changed {
			return lines, false
		}
		return out, true
	}
}

// AppendStanza appends block (a multi-line stanza) when no existing line
// contains sentinel. The sentinel should be a string unique to the stanza,
// such as its section header.
func AppendStanza(sentinel, block string) Transform {
	return func(lines []string) ([]string, bool) {
		for _, l := range lines {
			if strings.Contains(l, sentinel) {
				return lines, false
			}
		}
		out := append([]string{}, lines...)
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, splitLines(block)...)
		return out, true
	}
}
