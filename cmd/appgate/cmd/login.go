package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/appgate/internal/domain/handshake"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in through the system browser",
	Long: `Open the provider login in the system browser and wait for the result.

The login page reports back to a loopback callback server. If the browser
window is closed without a result, the session is checked once more in
case the login completed anyway.`,
	RunE: runLoginCmd,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLoginCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.startCallback(ctx, false); err != nil {
		return err
	}
	a.gate.Start(ctx)

	outcome, snap, err := a.gate.Login(ctx, a.returnURL())
	if err != nil {
		return fmt.Errorf("login %s: %w", outcome, err)
	}

	out := cmd.OutOrStdout()
	switch outcome {
	case handshake.OutcomeSucceeded:
		fmt.Fprintln(out, "Signed in.")
	case handshake.OutcomeAbandoned:
		if snap.Session.Authenticated {
			fmt.Fprintln(out, "Signed in.")
		} else {
			fmt.Fprintln(out, "Login window closed before the login completed.")
		}
	case handshake.OutcomeFailed:
		fmt.Fprintln(out, "Login failed.")
	case handshake.OutcomeRedirected:
		fmt.Fprintln(out, "Continue the login in your browser.")
		return nil
	}
	a.render.Status(snap)
	return nil
}
