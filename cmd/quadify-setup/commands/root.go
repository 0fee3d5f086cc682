package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quadify/quadify-setup/pkg/profile"
)

var (
	// Global flags
	profilePath string
	verbose     bool
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	install := newInstallCommand(version)

	rootCmd := &cobra.Command{
		Use:   "quadify-setup",
		Short: "Quadify appliance installer",
		Long: `quadify-setup provisions a Raspberry Pi for the Quadify music player.

It runs an ordered, idempotent pipeline: OS packages, I2C/SPI firmware
configuration, bus scan for the MCP23017 buttons/LEDs expander, Python
dependencies, MPD and Samba configuration, the systemd service, and a
from-source CAVA build. The full transcript of every run is written to
a log file, and run history is kept in a local database.

Running with no subcommand performs a full install.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          install.RunE,
	}

	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "p", "", "install profile YAML (defaults are built in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(install)
	rootCmd.AddCommand(newDetectCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newRunsCommand())

	return rootCmd
}

// loadProfile resolves the effective install profile: the built-in
// defaults, or a validated YAML override when --profile is given.
func loadProfile() (*profile.Profile, error) {
	if profilePath == "" {
		return profile.Default(), nil
	}
	return profile.Load(profilePath)
}
