package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m.SessionProbes == nil || m.PolicyFetches == nil || m.Handshakes == nil {
		t.Fatal("counters not initialized")
	}
	if m.GateView == nil || m.BackendDuration == nil {
		t.Fatal("gauges/histograms not initialized")
	}
	if m.CallbackRequests == nil || m.CallbackDuration == nil {
		t.Fatal("callback metrics not initialized")
	}
}

func TestMetrics_Recording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveProbe("authenticated")
	m.ObserveProbe("authenticated")
	m.ObservePolicy(policy.Open())
	m.ObservePolicy(policy.Policy{Mode: policy.ModePaymentRequired})
	m.ObserveHandshake("abandoned")

	if got := testutil.ToFloat64(m.SessionProbes.WithLabelValues("authenticated")); got != 2 {
		t.Errorf("session_probes_total{authenticated} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PolicyFetches.WithLabelValues("open", "fallback")); got != 1 {
		t.Errorf("policy_fetches_total{open,fallback} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PolicyFetches.WithLabelValues("payment_required", "ok")); got != 1 {
		t.Errorf("policy_fetches_total{payment_required,ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Handshakes.WithLabelValues("abandoned")); got != 1 {
		t.Errorf("handshakes_total{abandoned} = %v, want 1", got)
	}
}

func TestMetrics_SetViewIsExclusive(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SetView(policy.ViewLogin)
	m.SetView(policy.ViewContent)

	for _, v := range policy.Views {
		want := 0.0
		if v == policy.ViewContent {
			want = 1
		}
		if got := testutil.ToFloat64(m.GateView.WithLabelValues(string(v))); got != want {
			t.Errorf("gate_view{%s} = %v, want %v", v, got, want)
		}
	}
}

func TestMetrics_BackendHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveBackend("me", "200", 0.05)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	var hist *dto.Histogram
	for _, mf := range families {
		if mf.GetName() == "appgate_backend_request_duration_seconds" {
			hist = mf.GetMetric()[0].GetHistogram()
		}
	}
	if hist == nil {
		t.Fatal("backend histogram not gathered")
	}
	if hist.GetSampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", hist.GetSampleCount())
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveProbe("error")
	m.ObservePolicy(policy.Open())
	m.ObserveHandshake("failed")
	m.ObserveBackend("config", "500", 1)
	m.SetView(policy.ViewLoading)
}
