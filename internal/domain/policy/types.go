// Package policy contains the domain types for the remotely configured
// access policy and the gate decision derived from it.
package policy

import "time"

// Mode is the gating mode configured for an application instance.
type Mode string

const (
	// ModeOpen renders protected content for everyone.
	ModeOpen Mode = "open"
	// ModeLoginRequired requires an authenticated visitor.
	ModeLoginRequired Mode = "login_required"
	// ModePaymentRequired requires an authenticated visitor with current billing.
	ModePaymentRequired Mode = "payment_required"
	// ModeSubscriptionRequired hands off to the subscription gate.
	ModeSubscriptionRequired Mode = "subscription_required"
)

// IsValid returns true if the mode is a known gating mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeOpen, ModeLoginRequired, ModePaymentRequired, ModeSubscriptionRequired:
		return true
	default:
		return false
	}
}

// ParseMode converts the monetization.type string from the config endpoint.
// An empty string is ModeOpen. Unknown values return ModeOpen and false.
func ParseMode(s string) (Mode, bool) {
	if s == "" {
		return ModeOpen, true
	}
	m := Mode(s)
	if !m.IsValid() {
		return ModeOpen, false
	}
	return m, true
}

// Policy is the access policy sourced once per gate mount.
type Policy struct {
	// Mode is the gating mode.
	Mode Mode
	// Fallback is true when Mode is the fail-open default because the
	// config endpoint could not be read.
	Fallback bool
	// FetchedAt is when the policy was resolved (UTC).
	FetchedAt time.Time
}

// Open returns the fail-open policy used when the control plane is unreachable.
func Open() Policy {
	return Policy{Mode: ModeOpen, Fallback: true, FetchedAt: time.Now().UTC()}
}

// View is what the gate renders.
type View string

const (
	// ViewLoading is shown until both the session and the policy are known.
	ViewLoading View = "loading"
	// ViewContent is the protected content.
	ViewContent View = "content"
	// ViewLogin is the login gate.
	ViewLogin View = "login"
	// ViewPayment is the payment gate.
	ViewPayment View = "payment"
	// ViewSubscription is the subscription gate.
	ViewSubscription View = "subscription"
)

// Views lists every view, in display order.
var Views = []View{ViewLoading, ViewContent, ViewLogin, ViewPayment, ViewSubscription}
