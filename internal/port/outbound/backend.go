// Package outbound defines the outbound port interfaces for reaching the
// collaborator backend and the user's browser.
package outbound

import (
	"context"

	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
	"github.com/Sentinel-Gate/appgate/internal/domain/pricing"
	"github.com/Sentinel-Gate/appgate/internal/domain/session"
)

// SessionProber asks the identity endpoint who the visitor is.
// Implementations never fail: any error yields an unauthenticated session.
type SessionProber interface {
	ProbeSession(ctx context.Context, appID string) session.Session
}

// PolicyFetcher reads the remotely configured access policy.
// Implementations never fail: any error yields policy.Open().
type PolicyFetcher interface {
	FetchAccessPolicy(ctx context.Context, appID string) policy.Policy
}

// PriceLister lists the prices offered by the payment gate.
type PriceLister interface {
	ListPrices(ctx context.Context, appID string) ([]pricing.Price, error)
}

// SessionEnder ends the visitor's session.
type SessionEnder interface {
	Logout(ctx context.Context, appID string) error
}

// CredentialSink accepts a session credential handed over by a login window.
type CredentialSink interface {
	SetSessionToken(token string)
}
