package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quadify/quadify-setup/pkg/i2c"
	"github.com/quadify/quadify-setup/pkg/sysops"
	"github.com/quadify/quadify-setup/pkg/telemetry"
)

func newDetectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Scan the I2C bus for the MCP23017 expander",
		Long: `Scan the I2C bus and report the buttons/LEDs expander address.

Only addresses in the expander's configurable range (0x20-0x27) count
as a detection. The raw scan grid is printed so other devices on the
bus stay visible.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			logger, err := telemetry.NewLogger(telemetry.LoggingConfig{
				Level:  level,
				Format: "console",
				Output: "stderr",
			})
			if err != nil {
				return err
			}

			scanner := i2c.NewScanner(sysops.NewRunner(logger, os.Stdout), p.I2CBus)
			addr, found, err := scanner.Detect(cmd.Context(), os.Stdout)
			if err != nil {
				return fmt.Errorf("bus scan failed: %w", err)
			}
			if !found {
				fmt.Println("No MCP23017 expander detected.")
				return nil
			}
			fmt.Printf("MCP23017 expander detected at %s\n", addr)
			return nil
		},
	}
	return cmd
}
