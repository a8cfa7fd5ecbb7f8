package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Sentinel-Gate/appgate/internal/domain/links"
	"github.com/Sentinel-Gate/appgate/internal/domain/pricing"
)

// ListPrices returns the prices offered by GET /apps/{appID}/stripe/prices.
func (c *Client) ListPrices(ctx context.Context, appID string) ([]pricing.Price, error) {
	var prices []pricing.Price
	if err := c.doRequest(ctx, "prices", http.MethodGet, links.AppPath(appID, "stripe", "prices"), nil, &prices); err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	return prices, nil
}

// Logout ends the visitor's session with POST /apps/{appID}/logout and
// forgets the bearer session token on success.
func (c *Client) Logout(ctx context.Context, appID string) error {
	if err := c.doRequest(ctx, "logout", http.MethodPost, links.AppPath(appID, "logout"), nil, nil); err != nil {
		c.logger.Error("logout failed", "app_id", appID, "error", err)
		return fmt.Errorf("logout: %w", err)
	}
	c.SetSessionToken("")
	return nil
}
