package policy

import "github.com/Sentinel-Gate/appgate/internal/domain/session"

// Decide maps an access mode and a probed session to the view to render.
//
//	open                   -> content
//	login_required         -> content if authenticated, else login
//	payment_required       -> login if unauthenticated, payment unless
//	                          billing is current, else content
//	subscription_required  -> subscription (the gate checks on its own)
//
// Unknown modes render content, matching the fail-open config default.
func Decide(mode Mode, s session.Session) View {
	switch mode {
	case ModeLoginRequired:
		if s.Authenticated {
			return ViewContent
		}
		return ViewLogin
	case ModePaymentRequired:
		if !s.Authenticated {
			return ViewLogin
		}
		if s.Profile.BillingStatus() != session.BillingCurrent {
			return ViewPayment
		}
		return ViewContent
	case ModeSubscriptionRequired:
		return ViewSubscription
	default:
		return ViewContent
	}
}
