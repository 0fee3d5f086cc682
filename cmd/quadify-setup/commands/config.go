package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quadify/quadify-setup/pkg/playerconfig"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with the generated player configuration",
	}
	cmd.AddCommand(newConfigRenderCommand())
	return cmd
}

func newConfigRenderCommand() *cobra.Command {
	var mcpAddr string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the player configuration to stdout",
		Long: `Render the player configuration the installer would generate.

Useful for inspecting the defaults before an install, or for
regenerating a configuration the install step skipped because one
already existed.`,
		Example: `  # Render with no expander
  quadify-setup config render

  # Render with a known expander address
  quadify-setup config render --mcp-addr 0x20

  # Replace an existing configuration by hand
  quadify-setup config render > /home/volumio/Quadify/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}

			doc := playerconfig.Build(p, mcpAddr)
			data, err := playerconfig.Render(doc, p.User)
			if err != nil {
				return err
			}
			if _, err := os.Stdout.Write(data); err != nil {
				return fmt.Errorf("failed to write configuration: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mcpAddr, "mcp-addr", "", "MCP23017 address to embed (e.g. 0x20)")
	return cmd
}
