package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
	"github.com/Sentinel-Gate/appgate/internal/port/inbound"
	"github.com/Sentinel-Gate/appgate/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gate and show what the visitor may see",
	Long: `Run the monetization gate.

The session probe and the access policy are loaded together, then the
matching screen is shown: the content, the login screen, the payment
screen or the subscription plans.

Examples:
  # Show the current screen
  appgate run

  # Log in right away if the login screen is shown
  appgate run --login

  # Open the checkout for a price on the payment screen
  appgate run --price price_123

  # Keep running and re-render whenever the view or session changes
  appgate run --watch`,
	RunE: runGate,
}

var (
	runLogin bool
	runPrice string
	runPlan  string
	runWatch bool
)

func init() {
	runCmd.Flags().BoolVar(&runLogin, "login", false, "start the login flow when the login screen is shown")
	runCmd.Flags().StringVar(&runPrice, "price", "", "open the checkout for this price when the payment screen is shown")
	runCmd.Flags().StringVar(&runPlan, "plan", "", "select this plan when the subscription screen is shown")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "keep running and re-render when the view or session changes")
	rootCmd.AddCommand(runCmd)
}

func runGate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if runLogin || runWatch {
		if err := a.startCallback(ctx, runWatch); err != nil {
			return err
		}
	}

	a.render.Loading()
	snap := a.gate.Start(ctx)

	if snap.View == policy.ViewLogin && runLogin {
		outcome, next, err := a.gate.Login(ctx, a.returnURL())
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		a.logger.Debug("login finished", "outcome", outcome)
		snap = next
	}

	if err := a.show(ctx, snap); err != nil {
		return err
	}

	if !runWatch {
		return nil
	}

	changes := make(chan inbound.Snapshot, 1)
	unsubscribe := a.gate.Subscribe(func(s inbound.Snapshot) {
		select {
		case changes <- s:
		default:
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			// Render the latest state, not the notified one, so a burst of
			// changes ends on the current view.
			if err := a.show(ctx, a.gate.Snapshot()); err != nil {
				a.logger.Warn("render failed", "error", err)
			}
		}
	}
}

// show renders the screen for snap.
func (a *app) show(ctx context.Context, snap inbound.Snapshot) error {
	switch snap.View {
	case policy.ViewLogin:
		a.render.Login("Run \"appgate login\" to continue.")
		return nil

	case policy.ViewPayment:
		prices, err := a.payments.Prices(ctx)
		if err != nil {
			a.render.Error(service.ErrPricingUnavailable)
			return err
		}
		if runPrice == "" {
			a.render.Payment(prices)
			return nil
		}
		if _, err := a.payments.Checkout(ctx, prices, runPrice, a.returnURL()); err != nil {
			return err
		}
		return nil

	case policy.ViewSubscription:
		sub := service.NewSubscriptionGate(nil)
		if runPlan != "" {
			if err := sub.Select(runPlan); err != nil {
				return err
			}
		}
		a.render.Subscription(sub.Plans(), sub.Selected())
		return nil

	default:
		a.render.View(snap.View)
		return nil
	}
}
