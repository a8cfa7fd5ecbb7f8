package links

import (
	"net/url"
	"testing"
)

func TestAuthURL(t *testing.T) {
	t.Parallel()

	got := AuthURL("https://db.example.com/", "app-1", "http://127.0.0.1:8765/auth-callback.html?handshake=abc")
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("AuthURL() produced invalid URL %q: %v", got, err)
	}
	if u.Scheme != "https" || u.Host != "db.example.com" || u.Path != "/auth/google" {
		t.Errorf("AuthURL() = %q, unexpected scheme/host/path", got)
	}
	if u.Query().Get("appId") != "app-1" {
		t.Errorf("appId = %q, want app-1", u.Query().Get("appId"))
	}
	if u.Query().Get("redirectUrl") != "http://127.0.0.1:8765/auth-callback.html?handshake=abc" {
		t.Errorf("redirectUrl not round-tripped: %q", u.Query().Get("redirectUrl"))
	}
}

func TestCheckoutURL(t *testing.T) {
	t.Parallel()

	got := CheckoutURL("http://localhost:3500", "app-1", "price_123", "http://localhost:5173/")
	want := "http://localhost:3500/apps/app-1/stripe/checkout/prices/price_123?successUrl=http%3A%2F%2Flocalhost%3A5173%2F"
	if got != want {
		t.Errorf("CheckoutURL() = %q, want %q", got, want)
	}
}

func TestPortalURL(t *testing.T) {
	t.Parallel()

	got := PortalURL("http://localhost:3500", "app-1", "http://localhost:5173/")
	want := "http://localhost:3500/apps/app-1/stripe/portal?returnUrl=http%3A%2F%2Flocalhost%3A5173%2F"
	if got != want {
		t.Errorf("PortalURL() = %q, want %q", got, want)
	}
}

func TestAppPath_EscapesSegments(t *testing.T) {
	t.Parallel()

	if got := AppPath("app/1", "entities", "to do"); got != "/apps/app%2F1/entities/to%20do" {
		t.Errorf("AppPath() = %q", got)
	}
}

func TestOrigin(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"http://127.0.0.1:8765/auth-callback.html?x=1": "http://127.0.0.1:8765",
		"https://app.fly.dev/preview/":                  "https://app.fly.dev",
		"not a url":                                     "",
		"/relative/path":                                "",
	}
	for in, want := range tests {
		if got := Origin(in); got != want {
			t.Errorf("Origin(%q) = %q, want %q", in, got, want)
		}
	}
}
