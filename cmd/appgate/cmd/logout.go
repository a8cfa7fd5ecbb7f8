package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		a.gate.Start(ctx)
		snap, err := a.gate.Logout(ctx)
		if err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		a.render.Status(snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
