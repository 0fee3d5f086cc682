package steps

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/quadify/quadify-setup/pkg/engine"
	"github.com/quadify/quadify-setup/pkg/i2c"
	"github.com/quadify/quadify-setup/pkg/profile"
	"github.com/quadify/quadify-setup/pkg/sysops"
	"github.com/quadify/quadify-setup/pkg/textedit"
)

var (
	// Case-insensitive so both a module-level mcp23017_address and the
	// driver's uppercase DEFAULT_MCP23017_ADDRESS constant are updated
	// in place rather than shadowed by an appended line.
	addrLine   = regexp.MustCompile(`(?i)mcp23017_address\s*=\s*(0x[0-9a-fA-F]+)`)
	markerLine = regexp.MustCompile(`^buttons_leds\s*=\s*ButtonsLEDController\(|^buttons_leds\.start\(\)`)
)

// scanExpander probes the bus and records the first candidate address in
// the shared context. The scan runs regardless of the feature answer so
// a re-run with the feature enabled needs no re-detection; absent
// hardware is a warning, not a failure.
func scanExpander(r *sysops.Runner, p *profile.Profile) engine.StepFunc {
	return func(ctx context.Context, ec *engine.Context) error {
		scanner := i2c.NewScanner(r, p.I2CBus)
		addr, found, err := scanner.Detect(ctx, ec.Stdout)
		if err != nil {
			return engine.NewWarning("bus scan failed", err)
		}
		if !found {
			return engine.NewWarning("no MCP23017 responded on the bus; buttons/LEDs will stay inactive", nil)
		}
		ec.DetectedAddr = addr
		ec.Log.Infof("MCP23017 detected at %s", addr)
		return nil
	}
}

// patchExpanderAddress rewrites the address constant in the downstream
// controller source. A missing source file signals a broken install
// tree and is fatal; a missing detection is a clean skip.
func patchExpanderAddress(p *profile.Profile) engine.StepFunc {
	return func(_ context.Context, ec *engine.Context) error {
		if ec.DetectedAddr == "" {
			return engine.Skip("no expander detected; leaving buttonsleds.py unchanged")
		}

		target := p.ButtonsLEDsFile()
		tr := textedit.ReplaceValue(addrLine, ec.DetectedAddr, "mcp23017_address = "+ec.DetectedAddr)
		changed, err := textedit.Apply(target, false, 0o644, tr)
		if err != nil {
			if os.IsNotExist(err) {
				return engine.NewFatalError(fmt.Sprintf("%s is missing; the install tree is incomplete", target), err)
			}
			return engine.NewFatalError("failed to patch expander address", err)
		}
		if !changed {
			return engine.Skipf("address already set to %s", ec.DetectedAddr)
		}
		ec.Log.Infof("wrote %s to %s", ec.DetectedAddr, target)
		return nil
	}
}

// toggleButtonsLEDs comments or uncomments the two activation marker
// lines in the player entry point, per the operator's answer.
func toggleButtonsLEDs(p *profile.Profile) engine.StepFunc {
	return func(_ context.Context, ec *engine.Context) error {
		target := p.EntryPointFile()
		changed, err := textedit.Apply(target, false, 0o644, textedit.SetCommented(markerLine, !ec.ButtonsLEDs))
		if err != nil {
			if os.IsNotExist(err) {
				return engine.NewFatalError(fmt.Sprintf("%s is missing; the install tree is incomplete", target), err)
			}
			return engine.NewFatalError("failed to apply feature toggle", err)
		}
		if !changed {
			return engine.Skipf("feature already %s", enabledWord(ec.ButtonsLEDs))
		}
		ec.Log.Infof("buttons/LEDs %s in %s", enabledWord(ec.ButtonsLEDs), target)
		return nil
	}
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

// installPythonDeps provisions the virtualenv and installs the player's
// requirements manifest into it.
func installPythonDeps(py *sysops.Python, p *profile.Profile) engine.StepFunc {
	return func(ctx context.Context, ec *engine.Context) error {
		venv := sysops.VenvPath(ec.InstallRoot)
		created, err := py.EnsureVenv(ctx, venv)
		if err != nil {
			return engine.NewFatalError("virtualenv creation failed", err)
		}
		if created {
			ec.Log.Infof("created virtualenv at %s", venv)
		}
		if err := py.InstallRequirements(ctx, venv, p.RequirementsPath()); err != nil {
			return engine.NewFatalError("python dependency installation failed", err)
		}
		return nil
	}
}
