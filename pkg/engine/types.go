package engine

import (
	"context"
	"io"
	"time"

	"github.com/quadify/quadify-setup/pkg/telemetry"
)

// StepFunc is the action performed by a single pipeline step. It must be
// idempotent: running it twice in a row on an already-provisioned host
// produces the same end state and does not itself fail.
type StepFunc func(ctx context.Context, ec *Context) error

// Step is one unit of the provisioning pipeline. Steps are constructed
// once into an ordered sequence and never mutated afterwards.
type Step struct {
	// Name is a short machine-friendly identifier (e.g. "firmware").
	Name string

	// Description is shown to the operator in the progress line.
	Description string

	// Fatal marks a step whose failure halts the whole run with a
	// non-zero exit. Non-fatal failures log a warning and continue.
	Fatal bool

	// Run performs the step's action.
	Run StepFunc
}

// Context is the shared mutable state threaded through all steps of one
// provisioning run. It is owned exclusively by the orchestrator for the
// duration of the run; there is no concurrent access.
type Context struct {
	// User is the target install user (owner of the install tree and the
	// account the service runs as).
	User string

	// InstallRoot is the root of the player's install tree.
	InstallRoot string

	// DetectedAddr is the MCP23017 address found by the bus scan, as a
	// hex literal ("0x24"). Empty until the scan step runs, and stays
	// empty when no expander responds.
	DetectedAddr string

	// ButtonsLEDs records the operator's answer to the buttons/LEDs
	// feature prompt.
	ButtonsLEDs bool

	// Log is the run's logger; its sink is the transcript file.
	Log *telemetry.Logger

	// LogPath is the transcript file location, quoted in fatal-error
	// guidance to the operator.
	LogPath string

	// CmdOutput receives stdout/stderr of every external command. Command
	// output goes to the transcript, never to the operator surface.
	CmdOutput io.Writer

	// Stdin and Stdout are the interactive operator surface, used only by
	// the feature prompt and the bus-scan mirror.
	Stdin  io.Reader
	Stdout io.Writer
}

// StepOutcome is the terminal state of one executed step.
type StepOutcome string

const (
	StepOutcomeOK      StepOutcome = "ok"
	StepOutcomeSkipped StepOutcome = "skipped"
	StepOutcomeWarning StepOutcome = "warning"
	StepOutcomeFailed  StepOutcome = "failed"
)

// RunStatus is the overall status of a provisioning run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Reporter receives progress events for an external progress indicator.
// The orchestrator itself has no UI concerns.
type Reporter interface {
	// StepStart is emitted before each step with its 1-based index.
	StepStart(index, total int, description string)

	// StepDone is emitted after each step with its outcome. detail is
	// the skip reason, warning, or error text; empty on plain success.
	StepDone(index, total int, outcome StepOutcome, detail string)

	// RunDone is emitted once, after the pipeline stops.
	RunDone(status RunStatus)
}

// Recorder persists the step-by-step history of a run. Implementations
// must tolerate their own failure: history is an audit convenience and
// never blocks provisioning.
type Recorder interface {
	StepFinished(ctx context.Context, name string, ordinal int, outcome StepOutcome, detail string, took time.Duration)
	RunFinished(ctx context.Context, status RunStatus, failedStep string)
}

// NopReporter discards all progress events.
type NopReporter struct{}

func (NopReporter) StepStart(int, int, string)             {}
func (NopReporter) StepDone(int, int, StepOutcome, string) {}
func (NopReporter) RunDone(RunStatus)                      {}

// NopRecorder discards all history.
type NopRecorder struct{}

func (NopRecorder) StepFinished(context.Context, string, int, StepOutcome, string, time.Duration) {
}
func (NopRecorder) RunFinished(context.Context, RunStatus, string) {}
