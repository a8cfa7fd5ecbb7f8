package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
	"github.com/Sentinel-Gate/appgate/internal/domain/session"
	"github.com/Sentinel-Gate/appgate/internal/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// unreachableURL returns a base URL nothing listens on.
func unreachableURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return "http://" + addr
}

func TestProbeSession_Authenticated(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apps/app-1/me" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		writeJSON(w, map[string]any{"appId": "app-1", "billingStatus": "current", "email": "ada@example.com"})
	})

	s := client.ProbeSession(context.Background(), "app-1")
	if !s.Authenticated {
		t.Fatal("expected authenticated session")
	}
	if s.Profile.Email() != "ada@example.com" {
		t.Errorf("Email() = %q, want %q", s.Profile.Email(), "ada@example.com")
	}
	if s.Profile.BillingStatus() != session.BillingCurrent {
		t.Errorf("BillingStatus() = %q, want current", s.Profile.BillingStatus())
	}
}

func TestProbeSession_FailuresAreUnauthenticated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"401", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}},
		{"500", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}},
		{"app mismatch", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"appId": "other-app"})
		}},
		{"json array", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("[]"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, tt.handler)
			s := client.ProbeSession(context.Background(), "app-1")
			if s.Authenticated {
				t.Error("expected unauthenticated session")
			}
			if s.Profile != nil {
				t.Errorf("Profile = %v, want nil", s.Profile)
			}
		})
	}
}

func TestProbeSession_Unreachable(t *testing.T) {
	t.Parallel()

	client := NewClient(unreachableURL(t), WithLogger(quietLogger()))
	s := client.ProbeSession(context.Background(), "app-1")
	if s.Authenticated || s.Profile != nil {
		t.Errorf("unreachable backend produced %+v, want unauthenticated", s)
	}
}

func TestProbeSession_SendsCredentials(t *testing.T) {
	t.Parallel()

	var sawCookie, sawToken atomic.Bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/apps/app-1/logout":
			return
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
			return
		}
		if c, err := r.Cookie("sid"); err == nil && c.Value == "abc" {
			sawCookie.Store(true)
		}
		if r.Header.Get("Authorization") == "Bearer tok-1" {
			sawToken.Store(true)
		}
		writeJSON(w, map[string]any{"appId": "app-1"})
	}, WithSessionToken("tok-1"))

	if err := client.doRequest(context.Background(), "set", http.MethodGet, "/set", nil, nil); err != nil {
		t.Fatalf("doRequest() error: %v", err)
	}
	client.ProbeSession(context.Background(), "app-1")

	if !sawCookie.Load() {
		t.Error("cookie jar did not carry the session cookie")
	}
	if !sawToken.Load() {
		t.Error("bearer session token not sent")
	}

	if err := client.Logout(context.Background(), "app-1"); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if client.SessionToken() != "" {
		t.Error("Logout() should clear the session token")
	}
}

func TestFetchAccessPolicy_Modes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		body string
		want policy.Mode
	}{
		{`{"monetization":{"type":"login_required"}}`, policy.ModeLoginRequired},
		{`{"monetization":{"type":"payment_required"}}`, policy.ModePaymentRequired},
		{`{"monetization":{"type":"subscription_required"}}`, policy.ModeSubscriptionRequired},
		{`{"monetization":{"type":"open"}}`, policy.ModeOpen},
		{`{"monetization":{}}`, policy.ModeOpen},
		{`{}`, policy.ModeOpen},
		{`{"monetization":{"type":"pay_what_you_want"}}`, policy.ModeOpen},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/apps/app-1/config" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})
			p := client.FetchAccessPolicy(context.Background(), "app-1")
			if p.Mode != tt.want {
				t.Errorf("Mode = %q, want %q", p.Mode, tt.want)
			}
			if p.Fallback {
				t.Error("a readable policy must not be marked as fallback")
			}
		})
	}
}

func TestFetchAccessPolicy_FailsOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		opts    []Option
	}{
		{"500", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}, nil},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		}, nil},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}, []Option{WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, tt.handler, tt.opts...)
			p := client.FetchAccessPolicy(context.Background(), "app-1")
			if p.Mode != policy.ModeOpen {
				t.Errorf("Mode = %q, want open", p.Mode)
			}
			if !p.Fallback {
				t.Error("expected fallback policy")
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		client := NewClient(unreachableURL(t), WithLogger(quietLogger()))
		p := client.FetchAccessPolicy(context.Background(), "app-1")
		if p.Mode != policy.ModeOpen || !p.Fallback {
			t.Errorf("policy = %+v, want fallback open", p)
		}
	})
}

func TestClient_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}, WithMetrics(m))

	client.ProbeSession(context.Background(), "app-1")
	client.FetchAccessPolicy(context.Background(), "app-1")

	if got := testutil.ToFloat64(m.SessionProbes.WithLabelValues("unauthenticated")); got != 1 {
		t.Errorf("session_probes_total{unauthenticated} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PolicyFetches.WithLabelValues("open", "fallback")); got != 1 {
		t.Errorf("policy_fetches_total{open,fallback} = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.BackendDuration); n != 2 {
		t.Errorf("backend duration series = %d, want 2", n)
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})

	err := client.doRequest(context.Background(), "x", http.MethodGet, "/x", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusGone {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusGone)
	}
	if apiErr.Body != "gone" {
		t.Errorf("Body = %q, want %q", apiErr.Body, "gone")
	}
	if !errors.Is(err, ErrUnexpectedResponse) {
		t.Error("APIError should match ErrUnexpectedResponse")
	}
}
