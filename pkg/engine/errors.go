package engine

import (
	"errors"
	"fmt"
)

// ErrorClass classifies a step failure for the orchestrator's
// continue-or-abort decision.
type ErrorClass string

const (
	// ErrorClassFatal indicates a non-recoverable environment or
	// precondition failure. Examples: missing privilege, package manager
	// failure, a required file absent from the install tree.
	ErrorClassFatal ErrorClass = "fatal"

	// ErrorClassWarning indicates a recoverable condition the run can
	// survive. Example: the hardware bus scan finds no expander.
	ErrorClassWarning ErrorClass = "warning"

	// ErrorClassSkipped indicates the step found its work already done
	// and performed no mutation. Not a failure.
	ErrorClassSkipped ErrorClass = "skipped"
)

// StepError is a classified error produced by a pipeline step.
type StepError struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Step is the name of the step that produced the error.
	Step string `json:"step,omitempty"`

	// Err is the underlying error, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Err != nil {
		if e.Step != "" {
			return fmt.Sprintf("[%s] %s (step=%s): %v", e.Class, e.Message, e.Step, e.Err)
		}
		return fmt.Sprintf("[%s] %s: %v", e.Class, e.Message, e.Err)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s (step=%s)", e.Class, e.Message, e.Step)
	}
	return fmt.Sprintf("[%s] %s", e.Class, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Is implements error equality for errors.Is.
func (e *StepError) Is(target error) bool {
	t, ok := target.(*StepError)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// WithStep adds step context to an error.
func (e *StepError) WithStep(name string) *StepError {
	e.Step = name
	return e
}

// NewFatalError creates a new fatal error.
func NewFatalError(message string, err error) *StepError {
	return &StepError{Class: ErrorClassFatal, Message: message, Err: err}
}

// NewWarning creates a new warning-class error.
func NewWarning(message string, err error) *StepError {
	return &StepError{Class: ErrorClassWarning, Message: message, Err: err}
}

// Skip reports that a step's work is already satisfied. The orchestrator
// logs the message at info level and continues.
func Skip(message string) *StepError {
	return &StepError{Class: ErrorClassSkipped, Message: message}
}

// Skipf is Skip with formatting.
func Skipf(format string, args ...any) *StepError {
	return Skip(fmt.Sprintf(format, args...))
}

// IsFatal returns true if the error is classified as fatal.
func IsFatal(err error) bool {
	var e *StepError
	if errors.As(err, &e) {
		return e.Class == ErrorClassFatal
	}
	return false
}

// IsWarning returns true if the error is classified as a warning.
func IsWarning(err error) bool {
	var e *StepError
	if errors.As(err, &e) {
		return e.Class == ErrorClassWarning
	}
	return false
}

// IsSkipped returns true if the error reports already-satisfied work.
func IsSkipped(err error) bool {
	var e *StepError
	if errors.As(err, &e) {
		return e.Class == ErrorClassSkipped
	}
	return false
}
