package sysops

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// UserPlaceholder is the token substituted with the resolved install user
// in unit templates and generated configuration.
const UserPlaceholder = "{USER}"

// Systemd manages service units through systemctl.
type Systemd struct {
	r *Runner
}

// NewSystemd creates a systemd wrapper on the given runner.
func NewSystemd(r *Runner) *Systemd {
	return &Systemd{r: r}
}

// InstallUnit renders a unit template to destPath, substituting
// UserPlaceholder with user. Rewriting an identical unit is a no-op so
// callers can decide whether a daemon-reload is needed.
func (s *Systemd) InstallUnit(templatePath, destPath, user string) (bool, error) {
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return false, fmt.Errorf("unit template %s: %w", templatePath, err)
	}
	rendered := strings.ReplaceAll(string(tmpl), UserPlaceholder, user)

	if existing, err := os.ReadFile(destPath); err == nil && string(existing) == rendered {
		return false, nil
	}
	if err := os.WriteFile(destPath, []byte(rendered), 0o644); err != nil {
		return false, fmt.Errorf("failed to install unit %s: %w", destPath, err)
	}
	return true, nil
}

// DaemonReload reloads the systemd manager configuration.
func (s *Systemd) DaemonReload(ctx context.Context) error {
	return s.r.Run(ctx, "systemctl", "daemon-reload")
}

// Enable enables a unit.
func (s *Systemd) Enable(ctx context.Context, unit string) error {
	return s.r.Run(ctx, "systemctl", "enable", unit)
}

// Restart restarts (or starts) a unit.
func (s *Systemd) Restart(ctx context.Context, unit string) error {
	return s.r.Run(ctx, "systemctl", "restart", unit)
}

// IsActive reports whether a unit is currently active.
func (s *Systemd) IsActive(ctx context.Context, unit string) bool {
	out, err := s.r.Capture(ctx, nil, "systemctl", "is-active", unit)
	return err == nil && strings.TrimSpace(out) == "active"
}

// IsEnabled reports whether a unit is enabled.
func (s *Systemd) IsEnabled(ctx context.Context, unit string) bool {
	out, err := s.r.Capture(ctx, nil, "systemctl", "is-enabled", unit)
	return err == nil && strings.TrimSpace(out) == "enabled"
}
