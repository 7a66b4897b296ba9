package cli

import (
	"os"

	"github.com/evanw/esbuild-plugin-monaco/internal/config"
	"github.com/evanw/esbuild-plugin-monaco/internal/exitcode"
	"github.com/spf13/cobra"
)

func newConfigCommand(g *globals) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, g, cwd)
			if err != nil {
				return err
			}
			text, err := config.Encode(cfg, format)
			if err != nil {
				return exitcode.Set(err, exitcode.Unresolved)
			}
			_, err = cmd.OutOrStdout().Write(text)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "yaml, toml or json")
	return cmd
}
