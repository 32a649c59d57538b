// ABOUTME: Config command
// ABOUTME: Writes the default config file and prints the effective configuration
package cli

import (
	"fmt"

	"github.com/hmicap/hmicap-go/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a commented default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no config directory available; pass a path")
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
