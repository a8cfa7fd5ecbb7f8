package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/Sentinel-Gate/appgate/internal/domain/links"
	"github.com/Sentinel-Gate/appgate/internal/domain/session"
)

// errAppMismatch is logged when the identity endpoint answers for another app.
var errAppMismatch = errors.New("profile belongs to a different app")

// ProbeSession asks GET /apps/{appID}/me who the visitor is. It never fails:
// a non-2xx answer, a transport error, an undecodable body or a profile for
// another app all yield an unauthenticated session.
func (c *Client) ProbeSession(ctx context.Context, appID string) session.Session {
	var profile session.Profile
	err := c.doRequest(ctx, "me", http.MethodGet, links.AppPath(appID, "me"), nil, &profile)
	if err == nil && profile.AppID() != appID {
		err = errAppMismatch
	}

	switch {
	case err == nil:
		c.metrics.ObserveProbe("authenticated")
		c.logger.Debug("session probe authenticated", "app_id", appID)
		return session.Authenticated(profile)
	case isAPIError(err):
		c.metrics.ObserveProbe("unauthenticated")
		c.logger.Debug("session probe unauthenticated", "app_id", appID, "error", err)
	default:
		c.metrics.ObserveProbe("error")
		c.logger.Warn("session probe failed, treating visitor as unauthenticated",
			"app_id", appID,
			"error", err,
		)
	}
	return session.Unauthenticated()
}
