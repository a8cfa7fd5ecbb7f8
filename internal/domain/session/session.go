package session

import (
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Unauthenticated returns the fail-safe session used whenever a probe
// cannot establish an authenticated visitor.
func Unauthenticated() Session {
	return Session{ProbedAt: time.Now().UTC()}
}

// Authenticated returns a session for a recognised visitor.
func Authenticated(profile Profile) Session {
	return Session{
		Authenticated: true,
		Profile:       profile,
		ProbedAt:      time.Now().UTC(),
	}
}

// BillingCurrent reports whether the visitor is authenticated and paid up.
func (s Session) BillingCurrent() bool {
	return s.Authenticated && s.Profile.BillingStatus() == BillingCurrent
}

// Fingerprint returns a stable hash of the session's observable state.
// Two probes with the same fingerprint saw the same visitor and profile.
func (s Session) Fingerprint() uint64 {
	if !s.Authenticated {
		return 0
	}
	// encoding/json sorts map keys, so the encoding is deterministic.
	data, err := json.Marshal(s.Profile)
	if err != nil {
		return 1
	}
	return xxhash.Sum64(data)
}
