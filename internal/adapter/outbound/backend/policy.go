package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/Sentinel-Gate/appgate/internal/domain/links"
	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
)

// appConfig is the body of GET /apps/{appID}/config.
type appConfig struct {
	Monetization struct {
		Type string `json:"type"`
	} `json:"monetization"`
}

// FetchAccessPolicy reads the gating mode from GET /apps/{appID}/config.
// It fails open: any error yields policy.Open(). An unknown mode is also
// treated as open.
func (c *Client) FetchAccessPolicy(ctx context.Context, appID string) policy.Policy {
	var cfg appConfig
	if err := c.doRequest(ctx, "config", http.MethodGet, links.AppPath(appID, "config"), nil, &cfg); err != nil {
		c.logger.Warn("access policy unavailable, failing open",
			"app_id", appID,
			"error", err,
		)
		p := policy.Open()
		c.metrics.ObservePolicy(p)
		return p
	}

	mode, known := policy.ParseMode(cfg.Monetization.Type)
	if !known {
		c.logger.Warn("unknown monetization type, treating as open",
			"app_id", appID,
			"type", cfg.Monetization.Type,
		)
	}

	p := policy.Policy{Mode: mode, FetchedAt: time.Now().UTC()}
	c.metrics.ObservePolicy(p)
	return p
}
