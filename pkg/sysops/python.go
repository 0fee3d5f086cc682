package sysops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Python manages the player's isolated Python environment. Raspberry Pi
// OS (Bookworm) marks the system interpreter externally managed, so
// dependencies go into a virtualenv under the install tree.
type Python struct {
	r *Runner
}

// NewPython creates a python wrapper on the given runner.
func NewPython(r *Runner) *Python {
	return &Python{r: r}
}

// VenvPath returns the virtualenv location for an install root.
func VenvPath(installRoot string) string {
	return filepath.Join(installRoot, "venv")
}

// EnsureVenv creates the virtualenv if it does not exist yet. An existing
// venv (pip binary present) is left alone.
func (p *Python) EnsureVenv(ctx context.Context, venv string) (bool, error) {
	if _, err := os.Stat(filepath.Join(venv, "bin", "pip")); err == nil {
		return false, nil
	}
	if err := p.r.Run(ctx, "python3", "-m", "venv", "--system-site-packages", venv); err != nil {
		return false, fmt.Errorf("failed to create virtualenv: %w", err)
	}
	return true, nil
}

// InstallRequirements installs a requirements manifest into the venv.
func (p *Python) InstallRequirements(ctx context.Context, venv, requirements string) error {
	if _, err := os.Stat(requirements); err != nil {
		return fmt.Errorf("requirements manifest %s: %w", requirements, err)
	}
	pip := filepath.Join(venv, "bin", "pip")
	if err := p.r.Run(ctx, pip, "install", "--upgrade", "-r", requirements); err != nil {
		return fmt.Errorf("pip install failed: %w", err)
	}
	return nil
}
