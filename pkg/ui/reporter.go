package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/quadify/quadify-setup/pkg/engine"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

const (
	okMark   = "[OK]"
	warnMark = "[??]"
	failMark = "[!!]"
	skipMark = "[--]"
)

// Reporter renders progress events as human-readable status lines.
type Reporter struct {
	out   io.Writer
	color bool
}

// NewReporter creates a reporter writing to out. Color is used only when
// out is a terminal.
func NewReporter(out io.Writer) *Reporter {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{out: out, color: color}
}

// Banner prints the run header.
func (r *Reporter) Banner(version, user, logPath string) {
	fmt.Fprintln(r.out, r.style(headerStyle, "Quadify setup "+version))
	fmt.Fprintf(r.out, "install user: %s\n", user)
	fmt.Fprintf(r.out, "transcript:   %s\n\n", logPath)
}

// StepStart implements engine.Reporter.
func (r *Reporter) StepStart(index, total int, description string) {
	fmt.Fprintf(r.out, "%s %s\n", r.style(dimStyle, fmt.Sprintf("[%2d/%d]", index, total)), description)
}

// StepDone implements engine.Reporter.
func (r *Reporter) StepDone(index, total int, outcome engine.StepOutcome, detail string) {
	switch outcome {
	case engine.StepOutcomeOK:
		fmt.Fprintf(r.out, "       %s\n", r.style(okStyle, okMark))
	case engine.StepOutcomeSkipped:
		fmt.Fprintf(r.out, "       %s %s\n", r.style(dimStyle, skipMark), r.style(dimStyle, detail))
	case engine.StepOutcomeWarning:
		fmt.Fprintf(r.out, "       %s %s\n", r.style(warnStyle, warnMark), detail)
	case engine.StepOutcomeFailed:
		fmt.Fprintf(r.out, "       %s %s\n", r.style(failStyle, failMark), detail)
	}
}

// RunDone implements engine.Reporter.
func (r *Reporter) RunDone(status engine.RunStatus) {
	fmt.Fprintln(r.out)
	if status == engine.RunStatusSucceeded {
		fmt.Fprintln(r.out, r.style(okStyle, "Provisioning complete. Reboot to finish."))
	} else {
		fmt.Fprintln(r.out, r.style(failStyle, "Provisioning failed. See the transcript for details."))
	}
}

func (r *Reporter) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}
