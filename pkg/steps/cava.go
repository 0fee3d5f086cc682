package steps

import (
	"context"

	"github.com/quadify/quadify-setup/pkg/engine"
	"github.com/quadify/quadify-setup/pkg/profile"
	"github.com/quadify/quadify-setup/pkg/sysops"
)

// installed is swapped in tests.
var installed = sysops.Installed

// buildCava compiles the spectrum visualizer from source. No armhf
// package exists, so this is clone + autotools. An existing binary on
// PATH short-circuits the whole build.
func buildCava(apt *sysops.Apt, builder *sysops.Builder, p *profile.Profile) engine.StepFunc {
	return func(ctx context.Context, ec *engine.Context) error {
		if installed("cava") {
			return engine.Skip("cava already on PATH")
		}

		if err := apt.Install(ctx, p.BuildPackages...); err != nil {
			return engine.NewFatalError("build dependency installation failed", err)
		}
		if err := builder.CloneOrUpdate(ctx, p.CavaRepo, p.CavaDir); err != nil {
			return engine.NewFatalError("cava source checkout failed", err)
		}
		if err := builder.Autotools(ctx, p.CavaDir); err != nil {
			return engine.NewFatalError("cava build failed", err)
		}
		ec.Log.Infof("cava built and installed from %s", p.CavaDir)
		return nil
	}
}
