package steps

import (
	"context"
	"time"

	"github.com/quadify/quadify-setup/pkg/engine"
	"github.com/quadify/quadify-setup/pkg/i2c"
	"github.com/quadify/quadify-setup/pkg/profile"
	"github.com/quadify/quadify-setup/pkg/sysops"
	"github.com/quadify/quadify-setup/pkg/textedit"
)

// firmwareDirectives are the key=value lines required in the firmware
// configuration. The upsert preserves everything else in the file.
var firmwareDirectives = []struct {
	prefix string
	line   string
}{
	{"dtparam=i2c_arm=", "dtparam=i2c_arm=on"},
	{"dtparam=spi=", "dtparam=spi=on"},
}

const deviceWaitTimeout = 10 * time.Second

// configureFirmware upserts the bus directives and loads the i2c-dev
// module so the bus is usable before the next reboot.
func configureFirmware(r *sysops.Runner, p *profile.Profile) engine.StepFunc {
	return func(ctx context.Context, ec *engine.Context) error {
		changedAny := false
		for _, d := range firmwareDirectives {
			changed, err := textedit.Apply(p.BootConfig, true, 0o644, textedit.UpsertDirective(d.prefix, d.line))
			if err != nil {
				return engine.NewFatalError("firmware configuration update failed", err)
			}
			changedAny = changedAny || changed
		}
		if changedAny {
			ec.Log.Infof("updated %s", p.BootConfig)
		} else {
			ec.Log.Infof("%s already contains the required directives", p.BootConfig)
		}

		if err := r.Run(ctx, "modprobe", "i2c-dev"); err != nil {
			return engine.NewFatalError("failed to load i2c-dev", err)
		}
		if err := i2c.WaitForDevice(ctx, p.I2CDevice, deviceWaitTimeout); err != nil {
			// The directives are in place and take effect on reboot;
			// only the immediate scan is at risk.
			return engine.NewWarning("i2c device node not available yet", err)
		}
		return nil
	}
}
