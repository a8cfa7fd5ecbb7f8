package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/appgate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowOutput string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configShowOutput != "yaml" && configShowOutput != "json" {
			return fmt.Errorf("unknown output format %q (want yaml or json)", configShowOutput)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if file := config.ConfigFileUsed(); file != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "# config file: %s\n", file)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "# backend: %s\n", cfg.ResolveBaseURL())
		return writeStructured(cmd.OutOrStdout(), configShowOutput, cfg)
	},
}

func init() {
	configShowCmd.Flags().StringVarP(&configShowOutput, "output", "o", "yaml", "output format: yaml or json")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
