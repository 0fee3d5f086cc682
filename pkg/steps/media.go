package steps

import (
	"context"
	"strings"

	"github.com/quadify/quadify-setup/pkg/engine"
	"github.com/quadify/quadify-setup/pkg/profile"
	"github.com/quadify/quadify-setup/pkg/sysops"
	"github.com/quadify/quadify-setup/pkg/textedit"
)

// mpdFifoStanza feeds the visualizer: CAVA reads raw PCM from the FIFO.
const mpdFifoStanza = `audio_output {
    type            "fifo"
    name            "cava_fifo"
    path            "/tmp/cava.fifo"
    format          "44100:16:2"
}`

const sambaStanza = `[Quadify]
   path = {INSTALL_ROOT}
   browseable = yes
   read only = no
   guest ok = yes
   create mask = 0775
   directory mask = 0775`

// configureMPDFifo appends the FIFO output stanza once and restarts the
// daemon. The player works without it, so failures are non-fatal.
func configureMPDFifo(sd *sysops.Systemd, p *profile.Profile) engine.StepFunc {
	return func(ctx context.Context, ec *engine.Context) error {
		changed, err := textedit.Apply(p.MPDConf, false, 0o644, textedit.AppendStanza(`"cava_fifo"`, mpdFifoStanza))
		if err != nil {
			return engine.NewWarning("could not update mpd.conf", err)
		}
		if !changed {
			return engine.Skip("mpd FIFO output already configured")
		}
		if err := sd.Restart(ctx, "mpd"); err != nil {
			return engine.NewWarning("mpd restart failed", err)
		}
		ec.Log.Infof("added FIFO output to %s", p.MPDConf)
		return nil
	}
}

// configureSambaShare publishes the install tree as a guest share so
// music and configuration are reachable from the network.
func configureSambaShare(sd *sysops.Systemd, p *profile.Profile) engine.StepFunc {
	return func(ctx context.Context, ec *engine.Context) error {
		stanza := strings.ReplaceAll(sambaStanza, "{INSTALL_ROOT}", ec.InstallRoot)
		changed, err := textedit.Apply(p.SambaConf, false, 0o644, textedit.AppendStanza("[Quadify]", stanza))
		if err != nil {
			return engine.NewWarning("could not update smb.conf", err)
		}
		if !changed {
			return engine.Skip("samba share already configured")
		}
		if err := sd.Restart(ctx, "smbd"); err != nil {
			return engine.NewWarning("smbd restart failed", err)
		}
		ec.Log.Infof("added [Quadify] share to %s", p.SambaConf)
		return nil
	}
}
