package backend

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
)

func TestListPrices(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apps/app-1/stripe/prices" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id":"price_1","nickname":"Pro","unit_amount":999,"currency":"usd","type":"recurring","recurring":{"interval":"month","interval_count":1}},
			{"id":"price_2","unit_amount":4900,"currency":"eur","type":"one_time"}
		]`))
	})

	prices, err := client.ListPrices(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("ListPrices() error: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("len(prices) = %d, want 2", len(prices))
	}
	if prices[0].Recurring == nil || prices[0].Recurring.Interval != "month" {
		t.Errorf("prices[0].Recurring = %+v", prices[0].Recurring)
	}
	if !prices[1].OneTime() {
		t.Error("prices[1] should be one-time")
	}
}

func TestListPrices_Error(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "stripe down", http.StatusBadGateway)
	})

	_, err := client.ListPrices(context.Background(), "app-1")
	if !errors.Is(err, ErrUnexpectedResponse) {
		t.Errorf("ListPrices() error = %v, want ErrUnexpectedResponse", err)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()

	var called atomic.Bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/apps/app-1/logout" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	if err := client.Logout(context.Background(), "app-1"); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if !called.Load() {
		t.Error("logout endpoint not called")
	}
}

func TestLogout_Error(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no session", http.StatusUnauthorized)
	}, WithSessionToken("keep"))

	if err := client.Logout(context.Background(), "app-1"); err == nil {
		t.Fatal("expected error")
	}
	if client.SessionToken() != "keep" {
		t.Error("failed logout must not clear the session token")
	}
}
