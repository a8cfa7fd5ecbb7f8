package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sentinel-Gate/appgate/internal/domain/links"
	"github.com/Sentinel-Gate/appgate/internal/domain/pricing"
	"github.com/Sentinel-Gate/appgate/internal/port/outbound"
)

// ErrPricingUnavailable is returned when the price list cannot be loaded.
var ErrPricingUnavailable = errors.New("failed to load pricing options")

// ErrUnknownPrice is returned when a checkout names a price that is not offered.
var ErrUnknownPrice = errors.New("unknown price")

// PaymentGate lists the prices offered to a visitor whose billing is not
// current and starts checkouts.
type PaymentGate struct {
	appID     string
	baseURL   string
	prices    outbound.PriceLister
	navigator outbound.Navigator
	logger    *slog.Logger
}

// NewPaymentGate creates a PaymentGate. navigator may be nil if checkouts
// are only built, never opened.
func NewPaymentGate(appID, baseURL string, prices outbound.PriceLister, navigator outbound.Navigator, logger *slog.Logger) *PaymentGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentGate{
		appID:     appID,
		baseURL:   baseURL,
		prices:    prices,
		navigator: navigator,
		logger:    logger,
	}
}

// Prices loads the offered prices.
func (p *PaymentGate) Prices(ctx context.Context) ([]pricing.Price, error) {
	prices, err := p.prices.ListPrices(ctx, p.appID)
	if err != nil {
		p.logger.Error("failed to load prices", "app_id", p.appID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPricingUnavailable, err)
	}
	return prices, nil
}

// CheckoutURL is the checkout page for priceID. The visitor comes back to
// successURL afterwards.
func (p *PaymentGate) CheckoutURL(priceID, successURL string) string {
	return links.CheckoutURL(p.baseURL, p.appID, priceID, successURL)
}

// PortalURL is the billing portal page, returning to returnURL.
func (p *PaymentGate) PortalURL(returnURL string) string {
	return links.PortalURL(p.baseURL, p.appID, returnURL)
}

// Checkout opens the checkout for priceID, which must be one of prices.
func (p *PaymentGate) Checkout(ctx context.Context, prices []pricing.Price, priceID, successURL string) (string, error) {
	if !containsPrice(prices, priceID) {
		return "", fmt.Errorf("%w: %s", ErrUnknownPrice, priceID)
	}
	u := p.CheckoutURL(priceID, successURL)
	if p.navigator == nil {
		return u, nil
	}
	if err := p.navigator.Navigate(ctx, u); err != nil {
		return u, fmt.Errorf("open checkout: %w", err)
	}
	p.logger.Info("checkout opened", "price_id", priceID)
	return u, nil
}

// OpenPortal opens the billing portal.
func (p *PaymentGate) OpenPortal(ctx context.Context, returnURL string) (string, error) {
	u := p.PortalURL(returnURL)
	if p.navigator == nil {
		return u, nil
	}
	if err := p.navigator.Navigate(ctx, u); err != nil {
		return u, fmt.Errorf("open billing portal: %w", err)
	}
	return u, nil
}

func containsPrice(prices []pricing.Price, id string) bool {
	for _, pr := range prices {
		if pr.ID == id {
			return true
		}
	}
	return false
}
