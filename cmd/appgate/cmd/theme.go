package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/appgate/internal/domain/theme"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light|system|toggle]",
	Short:     "Show or change the theme",
	Long:      `Without an argument, print the saved theme mode and the effective theme.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"dark", "light", "system", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if len(args) == 1 {
			switch args[0] {
			case "toggle":
				if _, err := a.themes.Toggle(); err != nil {
					return err
				}
			default:
				mode, ok := theme.ParseMode(args[0])
				if !ok {
					return fmt.Errorf("unknown theme %q (want dark, light, system or toggle)", args[0])
				}
				if err := a.themes.Set(mode); err != nil {
					return err
				}
			}
		}

		effective := "light"
		if a.themes.IsDark() {
			effective = "dark"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "theme: %s (%s)\n", a.themes.Mode(), effective)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
