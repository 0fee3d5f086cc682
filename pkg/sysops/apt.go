package sysops

import (
	"context"
	"fmt"
	"os/exec"
)

// Apt drives the Debian package manager non-interactively.
type Apt struct {
	r *Runner
}

// NewApt creates an apt wrapper on the given runner.
func NewApt(r *Runner) *Apt {
	return &Apt{r: r}
}

// Available reports whether apt-get exists on this host.
func (a *Apt) Available() bool {
	_, err := exec.LookPath("apt-get")
	return err == nil
}

// Update refreshes the package index.
func (a *Apt) Update(ctx context.Context) error {
	return a.runNoninteractive(ctx, "update")
}

// Install installs the named packages. apt treats already-installed
// packages as satisfied, so the call is idempotent by itself.
func (a *Apt) Install(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	args := append([]string{"install", "-y"}, packages...)
	return a.runNoninteractive(ctx, args...)
}

func (a *Apt) runNoninteractive(ctx context.Context, args ...string) error {
	saved := a.r.Env
	a.r.Env = append(append([]string{}, saved...), "DEBIAN_FRONTEND=noninteractive")
	defer func() { a.r.Env = saved }()

	if err := a.r.Run(ctx, "apt-get", args...); err != nil {
		return fmt.Errorf("apt-get %s failed: %w", args[0], err)
	}
	return nil
}
