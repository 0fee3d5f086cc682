// Package ui implements the operator-facing surface of the provisioner:
// colored progress lines and the interactive yes/no prompt. Nothing here
// touches host state; the orchestrator drives it through the Reporter
// interface.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// AskYesNo writes the question to w and reads answers from r until one
// starts with "y" or "n" (case-insensitive). Invalid input re-prompts
// and never counts as a failure; only r running dry is an error.
func AskYesNo(r io.Reader, w io.Writer, question string) (bool, error) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprintf(w, "%s [y/n]: ", question)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, fmt.Errorf("failed to read answer: %w", err)
			}
			return false, fmt.Errorf("input closed before a valid answer")
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch {
		case strings.HasPrefix(answer, "y"):
			return true, nil
		case strings.HasPrefix(answer, "n"):
			return false, nil
		default:
			fmt.Fprintln(w, "Please answer y or n.")
		}
	}
}
