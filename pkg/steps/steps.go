// Package steps defines the concrete provisioning pipeline for the
// Quadify appliance. Build assembles the ordered step table from an
// install profile; every step is idempotent and classified fatal or
// non-fatal per its failure mode.
package steps

import (
	"context"
	"os"

	"github.com/quadify/quadify-setup/pkg/engine"
	"github.com/quadify/quadify-setup/pkg/profile"
	"github.com/quadify/quadify-setup/pkg/sysops"
	"github.com/quadify/quadify-setup/pkg/ui"
)

// euid is swapped in privilege tests.
var euid = os.Geteuid

// Build assembles the pipeline for a profile. The step order mirrors the
// physical dependencies: firmware before bus scan, bus scan before the
// address patch, everything before the ownership pass.
func Build(p *profile.Profile, r *sysops.Runner) []engine.Step {
	apt := sysops.NewApt(r)
	sd := sysops.NewSystemd(r)
	py := sysops.NewPython(r)
	builder := sysops.NewBuilder(r)

	return []engine.Step{
		{
			Name:        "privilege",
			Description: "Checking for superuser privilege",
			Fatal:       true,
			Run:         checkPrivilege,
		},
		{
			Name:        "feature-prompt",
			Description: "Asking about the buttons/LEDs board",
			Fatal:       true,
			Run:         askButtonsLEDs,
		},
		{
			Name:        "packages",
			Description: "Installing OS packages",
			Fatal:       true,
			Run:         installPackages(apt, p),
		},
		{
			Name:        "firmware",
			Description: "Enabling I2C and SPI in the firmware configuration",
			Fatal:       true,
			Run:         configureFirmware(r, p),
		},
		{
			Name:        "i2c-scan",
			Description: "Scanning the I2C bus for the MCP23017 expander",
			Fatal:       false,
			Run:         scanExpander(r, p),
		},
		{
			Name:        "buttonsleds-address",
			Description: "Writing the detected expander address",
			Fatal:       true,
			Run:         patchExpanderAddress(p),
		},
		{
			Name:        "python-deps",
			Description: "Installing Python dependencies",
			Fatal:       true,
			Run:         installPythonDeps(py, p),
		},
		{
			Name:        "mpd-fifo",
			Description: "Adding the MPD FIFO output for the visualizer",
			Fatal:       false,
			Run:         configureMPDFifo(sd, p),
		},
		{
			Name:        "samba-share",
			Description: "Publishing the music library over Samba",
			Fatal:       false,
			Run:         configureSambaShare(sd, p),
		},
		{
			Name:        "player-config",
			Description: "Generating the player configuration",
			Fatal:       true,
			Run:         generatePlayerConfig(p),
		},
		{
			Name:        "service",
			Description: "Registering and starting the Quadify service",
			Fatal:       true,
			Run:         registerService(sd, p),
		},
		{
			Name:        "cava",
			Description: "Building the CAVA spectrum visualizer",
			Fatal:       true,
			Run:         buildCava(apt, builder, p),
		},
		{
			Name:        "feature-toggle",
			Description: "Applying the buttons/LEDs feature toggle",
			Fatal:       true,
			Run:         toggleButtonsLEDs(p),
		},
		{
			Name:        "permissions",
			Description: "Normalizing ownership of the install tree",
			Fatal:       true,
			Run:         normalizePermissions(p),
		},
	}
}

// checkPrivilege fails fast when the process lacks root. Everything
// after this touches the package database, /boot and systemd.
func checkPrivilege(_ context.Context, _ *engine.Context) error {
	if euid() != 0 {
		return engine.NewFatalError("superuser privilege required; re-run with sudo", nil)
	}
	return nil
}

// askButtonsLEDs records the operator's answer in the shared context.
func askButtonsLEDs(_ context.Context, ec *engine.Context) error {
	enabled, err := ui.AskYesNo(ec.Stdin, ec.Stdout, "Enable the buttons/LEDs board (MCP23017)?")
	if err != nil {
		return engine.NewFatalError("could not read feature answer", err)
	}
	ec.ButtonsLEDs = enabled
	return nil
}

func installPackages(apt *sysops.Apt, p *profile.Profile) engine.StepFunc {
	return func(ctx context.Context, ec *engine.Context) error {
		if err := apt.Update(ctx); err != nil {
			return engine.NewFatalError("package index refresh failed", err)
		}
		if err := apt.Install(ctx, p.Packages...); err != nil {
			return engine.NewFatalError("package installation failed", err)
		}
		return nil
	}
}

func normalizePermissions(p *profile.Profile) engine.StepFunc {
	return func(_ context.Context, ec *engine.Context) error {
		if err := sysops.NormalizeTree(ec.InstallRoot, ec.User, 0o755); err != nil {
			return engine.NewFatalError("ownership normalization failed", err)
		}
		return nil
	}
}
