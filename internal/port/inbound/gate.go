// Package inbound defines the inbound port interfaces for the gate core.
// Inbound adapters (the CLI, the login callback server) call or implement these.
package inbound

import (
	"context"

	"github.com/Sentinel-Gate/appgate/internal/domain/handshake"
	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
	"github.com/Sentinel-Gate/appgate/internal/domain/session"
)

// Snapshot is what the gate currently shows and why.
type Snapshot struct {
	// View is the view to render.
	View policy.View `json:"view" yaml:"view"`
	// Mode is the access mode, empty while loading.
	Mode policy.Mode `json:"mode,omitempty" yaml:"mode,omitempty"`
	// PolicyFallback is true when Mode is the fail-open default.
	PolicyFallback bool `json:"policy_fallback" yaml:"policy_fallback"`
	// Session is the most recently applied probe result.
	Session session.Session `json:"session" yaml:"session"`
}

// Gate is the inbound port for the gate controller.
type Gate interface {
	// Start loads the session and the access policy, once per mount.
	Start(ctx context.Context) Snapshot
	// Snapshot returns the current state without side effects.
	Snapshot() Snapshot
	// Login runs one login handshake and re-evaluates when it may have succeeded.
	Login(ctx context.Context, returnURL string) (handshake.Outcome, Snapshot, error)
	// Reprobe re-runs the session probe alone and re-evaluates.
	Reprobe(ctx context.Context) Snapshot
	// Subscribe registers fn for view changes and returns a func that removes it.
	Subscribe(fn func(Snapshot)) (unsubscribe func())
}

// CallbackServer receives messages from the login window.
type CallbackServer interface {
	// Start serves until ctx is cancelled.
	Start(ctx context.Context) error
	// Close shuts the server down.
	Close() error
	// Origin is the origin messages from the callback page carry.
	Origin() string
	// CallbackURL is the page the provider redirects to after login.
	CallbackURL(handshakeID string) string
}
