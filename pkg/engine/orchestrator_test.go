package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quadify/quadify-setup/pkg/telemetry"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	var buf bytes.Buffer
	return &Context{
		User:        "volumio",
		InstallRoot: t.TempDir(),
		Log:         telemetry.NewTestLogger(&buf),
		LogPath:     "/var/log/quadify/install.log",
		CmdOutput:   &buf,
		Stdin:       bytes.NewReader(nil),
		Stdout:      &buf,
	}
}

func named(name string, fatal bool, fn StepFunc) Step {
	return Step{Name: name, Description: name, Fatal: fatal, Run: fn}
}

func ok(_ context.Context, _ *Context) error   { return nil }
func boom(_ context.Context, _ *Context) error { return errors.New("boom") }

type recordingReporter struct {
	started  []string
	outcomes []StepOutcome
	status   RunStatus
}

func (r *recordingReporter) StepStart(_, _ int, description string) {
	r.started = append(r.started, description)
}

func (r *recordingReporter) StepDone(_, _ int, outcome StepOutcome, _ string) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingReporter) RunDone(status RunStatus) { r.status = status }

func TestRunAllSucceed(t *testing.T) {
	rep := &recordingReporter{}
	o := New([]Step{
		named("one", true, ok),
		named("two", false, ok),
	}, testContext(t), WithReporter(rep))

	if code := o.Run(context.Background()); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if len(rep.started) != 2 {
		t.Fatalf("started %d steps, want 2", len(rep.started))
	}
	if rep.status != RunStatusSucceeded {
		t.Errorf("run status = %q, want %q", rep.status, RunStatusSucceeded)
	}
}

func TestRunFatalFailureShortCircuits(t *testing.T) {
	rep := &recordingReporter{}
	var reached bool
	o := New([]Step{
		named("one", true, ok),
		named("two", true, boom),
		named("three", true, func(_ context.Context, _ *Context) error {
			reached = true
			return nil
		}),
	}, testContext(t), WithReporter(rep))

	if code := o.Run(context.Background()); code != 1 {
		t.Fatalf("Run() = %d, want 1", code)
	}
	if reached {
		t.Error("step after fatal failure was executed")
	}
	if len(rep.started) != 2 {
		t.Errorf("started %d steps, want 2", len(rep.started))
	}
	if rep.status != RunStatusFailed {
		t.Errorf("run status = %q, want %q", rep.status, RunStatusFailed)
	}
	last := rep.outcomes[len(rep.outcomes)-1]
	if last != StepOutcomeFailed {
		t.Errorf("final outcome = %q, want %q", last, StepOutcomeFailed)
	}
}

func TestRunNonFatalFailureContinues(t *testing.T) {
	rep := &recordingReporter{}
	o := New([]Step{
		named("scan", false, boom),
		named("after", true, ok),
	}, testContext(t), WithReporter(rep))

	if code := o.Run(context.Background()); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	want := []StepOutcome{StepOutcomeWarning, StepOutcomeOK}
	for i, o := range rep.outcomes {
		if o != want[i] {
			t.Errorf("outcome[%d] = %q, want %q", i, o, want[i])
		}
	}
}

func TestRunExplicitWarningNeverAborts(t *testing.T) {
	rep := &recordingReporter{}
	o := New([]Step{
		named("flaky", true, func(_ context.Context, _ *Context) error {
			return NewWarning("device did not appear", errors.New("timeout"))
		}),
		named("after", true, ok),
	}, testContext(t), WithReporter(rep))

	if code := o.Run(context.Background()); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if rep.outcomes[0] != StepOutcomeWarning {
		t.Errorf("outcome[0] = %q, want %q", rep.outcomes[0], StepOutcomeWarning)
	}
}

func TestRunSkipCountsAsSuccess(t *testing.T) {
	rep := &recordingReporter{}
	o := New([]Step{
		named("cava", true, func(_ context.Context, _ *Context) error {
			return Skip("already on PATH")
		}),
	}, testContext(t), WithReporter(rep))

	if code := o.Run(context.Background()); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if rep.outcomes[0] != StepOutcomeSkipped {
		t.Errorf("outcome[0] = %q, want %q", rep.outcomes[0], StepOutcomeSkipped)
	}
	if rep.status != RunStatusSucceeded {
		t.Errorf("run status = %q, want %q", rep.status, RunStatusSucceeded)
	}
}

type recordingRecorder struct {
	steps      []string
	details    []string
	status     RunStatus
	failedStep string
}

func (r *recordingRecorder) StepFinished(_ context.Context, name string, _ int, _ StepOutcome, detail string, _ time.Duration) {
	r.steps = append(r.steps, name)
	r.details = append(r.details, detail)
}

func (r *recordingRecorder) RunFinished(_ context.Context, status RunStatus, failedStep string) {
	r.status = status
	r.failedStep = failedStep
}

func TestRunRecordsHistory(t *testing.T) {
	rec := &recordingRecorder{}
	o := New([]Step{
		named("one", true, ok),
		named("two", true, func(_ context.Context, _ *Context) error {
			return Skip("nothing to do")
		}),
		named("three", true, boom),
	}, testContext(t), WithRecorder(rec))

	o.Run(context.Background())

	if got := len(rec.steps); got != 3 {
		t.Fatalf("recorded %d step events, want 3", got)
	}
	if rec.details[1] != "nothing to do" {
		t.Errorf("skip detail = %q, want skip reason", rec.details[1])
	}
	if rec.status != RunStatusFailed {
		t.Errorf("recorded status = %q, want %q", rec.status, RunStatusFailed)
	}
	if rec.failedStep != "three" {
		t.Errorf("failed step = %q, want %q", rec.failedStep, "three")
	}
}

type countingObserver struct {
	stepCalls int
	runCalls  int
}

func (c *countingObserver) ObserveStep(context.Context, string, StepOutcome, time.Duration) {
	c.stepCalls++
}

func (c *countingObserver) ObserveRun(context.Context, RunStatus, time.Duration) {
	c.runCalls++
}

func TestRunNotifiesObserver(t *testing.T) {
	obs := &countingObserver{}
	o := New([]Step{
		named("one", true, ok),
		named("two", true, ok),
	}, testContext(t), WithObserver(obs))

	o.Run(context.Background())

	if obs.stepCalls != 2 {
		t.Errorf("ObserveStep called %d times, want 2", obs.stepCalls)
	}
	if obs.runCalls != 1 {
		t.Errorf("ObserveRun called %d times, want 1", obs.runCalls)
	}
}
