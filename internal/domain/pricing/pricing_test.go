package pricing

import "testing"

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		minor    int64
		currency string
		want     string
	}{
		{999, "usd", "$9.99"},
		{999, "USD", "$9.99"},
		{999, "", "$9.99"},
		{0, "usd", "$0.00"},
		{5, "usd", "$0.05"},
		{129900, "usd", "$1,299.00"},
		{123456789, "usd", "$1,234,567.89"},
		{2500, "eur", "€25.00"},
		{2500, "gbp", "£25.00"},
		{1250, "chf", "CHF 12.50"},
		{-500, "usd", "-$5.00"},
		{129900, "jpy", "¥1,299"},
		{129950, "JPY", "¥1,300"},
		{5000000, "krw", "₩50,000"},
		{2500, "cad", "CA$25.00"},
		{1250, "zzz", "ZZZ 12.50"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.minor, tt.currency); got != tt.want {
			t.Errorf("FormatAmount(%d, %q) = %q, want %q", tt.minor, tt.currency, got, tt.want)
		}
	}
}

func TestRecurrenceText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price Price
		want  string
	}{
		{"one time", Price{Type: PriceTypeOneTime}, "One-time payment"},
		{"one time with stray recurring", Price{Type: PriceTypeOneTime, Recurring: &Recurring{Interval: "month", IntervalCount: 1}}, "One-time payment"},
		{"monthly", Price{Type: "recurring", Recurring: &Recurring{Interval: "month", IntervalCount: 1}}, "Per month"},
		{"quarterly", Price{Type: "recurring", Recurring: &Recurring{Interval: "month", IntervalCount: 3}}, "Every 3 months"},
		{"yearly", Price{Type: "recurring", Recurring: &Recurring{Interval: "year", IntervalCount: 1}}, "Per year"},
		{"recurring without interval data", Price{Type: "recurring"}, "One-time payment"},
	}

	for _, tt := range tests {
		if got := RecurrenceText(tt.price); got != tt.want {
			t.Errorf("%s: RecurrenceText() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestPrice_DisplayName(t *testing.T) {
	t.Parallel()

	if got := (Price{}).DisplayName(); got != "Plan" {
		t.Errorf("DisplayName() = %q, want Plan", got)
	}
	if got := (Price{Nickname: "Pro"}).DisplayName(); got != "Pro" {
		t.Errorf("DisplayName() = %q, want Pro", got)
	}
}

func TestDefaultPlans(t *testing.T) {
	t.Parallel()

	plans := DefaultPlans()
	if len(plans) != 3 {
		t.Fatalf("len(DefaultPlans()) = %d, want 3", len(plans))
	}
	found := false
	for _, p := range plans {
		if p.ID == DefaultPlanID {
			found = true
		}
		if len(p.Features) == 0 {
			t.Errorf("plan %q has no features", p.ID)
		}
	}
	if !found {
		t.Errorf("default plan %q missing from catalogue", DefaultPlanID)
	}
}
