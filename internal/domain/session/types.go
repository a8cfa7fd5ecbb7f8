// Package session models a visitor's authentication status for one
// application instance, as reported by the identity endpoint.
package session

import "time"

// BillingStatus is the billing state carried in a user profile.
type BillingStatus string

const (
	// BillingCurrent means the user's payment is up to date.
	BillingCurrent BillingStatus = "current"
	// BillingAbsent is returned when the profile carries no billing status.
	BillingAbsent BillingStatus = ""
)

// Profile is the opaque user record returned by GET /apps/{appId}/me.
// Only a handful of keys are interpreted; everything else is passed through.
type Profile map[string]any

// AppID returns the application id the profile belongs to.
func (p Profile) AppID() string {
	return p.str("appId")
}

// BillingStatus returns the profile's billing status, or BillingAbsent.
func (p Profile) BillingStatus() BillingStatus {
	return BillingStatus(p.str("billingStatus"))
}

// Email returns the user's email address if the profile has one.
func (p Profile) Email() string {
	return p.str("email")
}

// Name returns the user's display name if the profile has one.
func (p Profile) Name() string {
	return p.str("name")
}

func (p Profile) str(key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return s
}

// Session is the result of one session probe. It is recomputed on every
// probe and never patched in place.
type Session struct {
	// Authenticated reports whether the identity endpoint recognised the visitor.
	Authenticated bool `json:"authenticated" yaml:"authenticated"`
	// Profile is nil whenever Authenticated is false.
	Profile Profile `json:"profile,omitempty" yaml:"profile,omitempty"`
	// ProbedAt is when the probe completed (UTC).
	ProbedAt time.Time `json:"probed_at" yaml:"probed_at"`
}
