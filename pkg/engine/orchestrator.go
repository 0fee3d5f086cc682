package engine

import (
	"context"
	"errors"
	"time"
)

// Orchestrator runs a fixed, ordered pipeline of idempotent provisioning
// steps exactly once per invocation.
type Orchestrator struct {
	steps    []Step
	ec       *Context
	reporter Reporter
	recorder Recorder
	observer StepObserver
}

// StepObserver receives timing callbacks for metrics and tracing. It is
// optional and must not influence control flow.
type StepObserver interface {
	ObserveStep(ctx context.Context, name string, outcome StepOutcome, took time.Duration)
	ObserveRun(ctx context.Context, status RunStatus, took time.Duration)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithRecorder sets the run-history recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithObserver sets the metrics/tracing observer.
func WithObserver(obs StepObserver) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// New creates an orchestrator for the given pipeline and shared context.
func New(steps []Step, ec *Context, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		steps:    steps,
		ec:       ec,
		reporter: NopReporter{},
		recorder: NopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes all registered steps in strictly increasing ordinal order.
// It returns 0 if every step completed (or only non-fatal steps failed)
// and 1 immediately on the first fatal step failure. No further steps
// execute after a fatal failure, and no rollback is attempted: the
// pipeline is idempotent, so re-running it after fixing the root cause
// converges to the same end state.
func (o *Orchestrator) Run(ctx context.Context) int {
	total := len(o.steps)
	runStart := time.Now()

	for i, step := range o.steps {
		ordinal := i + 1
		o.reporter.StepStart(ordinal, total, step.Description)
		o.ec.Log.WithField("step", step.Name).Infof("step %d/%d: %s", ordinal, total, step.Description)

		stepStart := time.Now()
		err := step.Run(ctx, o.ec)
		took := time.Since(stepStart)

		outcome, detail := classify(step, err)
		if o.observer != nil {
			o.observer.ObserveStep(ctx, step.Name, outcome, took)
		}
		o.recorder.StepFinished(ctx, step.Name, ordinal, outcome, detail, took)
		o.reporter.StepDone(ordinal, total, outcome, detail)

		log := o.ec.Log.WithField("step", step.Name)
		switch outcome {
		case StepOutcomeOK:
			log.Infof("step %q completed", step.Name)
		case StepOutcomeSkipped:
			log.Infof("step %q already satisfied: %s", step.Name, detail)
		case StepOutcomeWarning:
			log.WithError(err).Warnf("step %q failed (non-fatal), continuing", step.Name)
		case StepOutcomeFailed:
			log.WithError(err).Errorf("step %q failed, aborting; see %s", step.Name, o.ec.LogPath)
			o.finish(ctx, RunStatusFailed, step.Name, time.Since(runStart))
			return 1
		}
	}

	o.finish(ctx, RunStatusSucceeded, "", time.Since(runStart))
	return 0
}

func (o *Orchestrator) finish(ctx context.Context, status RunStatus, failedStep string, took time.Duration) {
	if o.observer != nil {
		o.observer.ObserveRun(ctx, status, took)
	}
	o.recorder.RunFinished(ctx, status, failedStep)
	o.reporter.RunDone(status)
}

// classify maps a step result to its outcome. The step's Fatal flag only
// applies to genuine failures; skips count as success and explicit
// warnings never abort, regardless of the flag.
func classify(step Step, err error) (StepOutcome, string) {
	switch {
	case err == nil:
		return StepOutcomeOK, ""
	case IsSkipped(err):
		var se *StepError
		if errors.As(err, &se) {
			return StepOutcomeSkipped, se.Message
		}
		return StepOutcomeSkipped, err.Error()
	case IsWarning(err) || !step.Fatal:
		return StepOutcomeWarning, err.Error()
	default:
		return StepOutcomeFailed, err.Error()
	}
}
