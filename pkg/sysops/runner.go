package sysops

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/quadify/quadify-setup/pkg/telemetry"
)

// CommandResult is the exit status and captured output of one external
// command. It is transient and only survives for error reporting.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Duration time.Duration
}

// Runner executes external commands with their stdout/stderr redirected
// to the transcript sink. Long-running commands (package install, source
// build) are allowed to block until done; success criteria is
// "completed", not "completed quickly".
type Runner struct {
	log *telemetry.Logger

	// Output receives the stdout/stderr of every command.
	Output io.Writer

	// Env is appended to the process environment of every command.
	Env []string
}

// NewRunner creates a runner writing command output to out.
func NewRunner(log *telemetry.Logger, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{log: log.NewComponentLogger("exec"), Output: out}
}

// Run executes a command, streaming its output to the transcript. A
// non-zero exit status is returned as an error naming the command.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	_, err := r.run(ctx, r.Output, name, args...)
	return err
}

// Capture executes a command and returns its stdout, additionally
// mirroring it to extra when non-nil (the bus scan must surface to the
// operator in real time).
func (r *Runner) Capture(ctx context.Context, extra io.Writer, name string, args ...string) (string, error) {
	var buf bytes.Buffer
	out := io.Writer(&buf)
	if extra != nil {
		out = io.MultiWriter(&buf, extra)
	}
	res, err := r.run(ctx, out, name, args...)
	res.Stdout = buf.String()
	return res.Stdout, err
}

// RunIn executes a command with a working directory.
func (r *Runner) RunIn(ctx context.Context, dir, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)
	cmd.Dir = dir
	return r.wait(cmd, r.Output, name, args)
}

func (r *Runner) run(ctx context.Context, out io.Writer, name string, args ...string) (CommandResult, error) {
	cmd := r.command(ctx, name, args...)
	start := time.Now()
	err := r.wait(cmd, out, name, args)
	res := CommandResult{Duration: time.Since(start)}
	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
	}
	return res, err
}

func (r *Runner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

func (r *Runner) wait(cmd *exec.Cmd, out io.Writer, name string, args []string) error {
	cmd.Stdout = out
	cmd.Stderr = out

	r.log.Debugf("running: %s %s", name, strings.Join(args, " "))
	start := time.Now()
	err := cmd.Run()
	if err != nil {
		r.log.WithError(err).Errorf("command failed: %s %s", name, strings.Join(args, " "))
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	r.log.Debugf("completed in %s: %s", time.Since(start).Round(time.Millisecond), name)
	return nil
}

// Installed reports whether an executable is on PATH. Used by
// idempotence short-circuits ("skip build if binary already present").
func Installed(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
