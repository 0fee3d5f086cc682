package steps

import (
	"context"

	"github.com/quadify/quadify-setup/pkg/engine"
	"github.com/quadify/quadify-setup/pkg/playerconfig"
	"github.com/quadify/quadify-setup/pkg/profile"
	"github.com/quadify/quadify-setup/pkg/sysops"
)

// generatePlayerConfig writes the player's configuration file unless the
// operator already has one.
func generatePlayerConfig(p *profile.Profile) engine.StepFunc {
	return func(_ context.Context, ec *engine.Context) error {
		doc := playerconfig.Build(p, ec.DetectedAddr)
		written, err := playerconfig.WriteOnce(p.PlayerConfigPath(), doc, ec.User)
		if err != nil {
			return engine.NewFatalError("player configuration generation failed", err)
		}
		if !written {
			return engine.Skipf("%s already exists", p.PlayerConfigPath())
		}
		ec.Log.Infof("generated %s", p.PlayerConfigPath())
		return nil
	}
}

// registerService installs the unit, reloads systemd and brings the
// service up. Re-running against an installed, active service is a
// skip.
func registerService(sd *sysops.Systemd, p *profile.Profile) engine.StepFunc {
	return func(ctx context.Context, ec *engine.Context) error {
		changed, err := sd.InstallUnit(p.UnitTemplate, p.UnitPath(), ec.User)
		if err != nil {
			return engine.NewFatalError("service unit installation failed", err)
		}
		if !changed && sd.IsEnabled(ctx, p.ServiceName) && sd.IsActive(ctx, p.ServiceName) {
			return engine.Skipf("%s already enabled and active", p.ServiceName)
		}

		if err := sd.DaemonReload(ctx); err != nil {
			return engine.NewFatalError("daemon-reload failed", err)
		}
		if err := sd.Enable(ctx, p.ServiceName); err != nil {
			return engine.NewFatalError("service enable failed", err)
		}
		if err := sd.Restart(ctx, p.ServiceName); err != nil {
			return engine.NewFatalError("service start failed", err)
		}
		ec.Log.Infof("service %s enabled and started", p.ServiceName)
		return nil
	}
}
