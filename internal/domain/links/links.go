// Package links builds the collaborator service URLs that the gate hands to
// the browser: provider login, checkout, billing portal.
package links

import (
	"net/url"
	"strings"
)

// AuthURL is the provider login entry point:
// {base}/auth/google?appId=...&redirectUrl=...
func AuthURL(baseURL, appID, redirectURL string) string {
	q := url.Values{}
	q.Set("appId", appID)
	q.Set("redirectUrl", redirectURL)
	return join(baseURL, "/auth/google") + "?" + q.Encode()
}

// CheckoutURL starts a checkout for one price:
// {base}/apps/{appId}/stripe/checkout/prices/{priceId}?successUrl=...
func CheckoutURL(baseURL, appID, priceID, successURL string) string {
	q := url.Values{}
	q.Set("successUrl", successURL)
	return join(baseURL, AppPath(appID, "stripe", "checkout", "prices", priceID)) + "?" + q.Encode()
}

// PortalURL opens the billing portal:
// {base}/apps/{appId}/stripe/portal?returnUrl=...
func PortalURL(baseURL, appID, returnURL string) string {
	q := url.Values{}
	q.Set("returnUrl", returnURL)
	return join(baseURL, AppPath(appID, "stripe", "portal")) + "?" + q.Encode()
}

// AppPath builds /apps/{appId}/seg/seg..., escaping each segment.
func AppPath(appID string, segments ...string) string {
	var b strings.Builder
	b.WriteString("/apps/")
	b.WriteString(url.PathEscape(appID))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Origin returns scheme://host[:port] of rawURL, or "" if it has none.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func join(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}
