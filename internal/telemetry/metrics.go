// Package telemetry provides the Prometheus metrics and OpenTelemetry
// tracing shared by the gate components.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
)

// Metrics holds all Prometheus metrics for appgate.
// Pass to components that need to record metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	SessionProbes    *prometheus.CounterVec
	PolicyFetches    *prometheus.CounterVec
	Handshakes       *prometheus.CounterVec
	GateView         *prometheus.GaugeVec
	BackendDuration  *prometheus.HistogramVec
	CallbackRequests *prometheus.CounterVec
	CallbackDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SessionProbes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "appgate",
				Name:      "session_probes_total",
				Help:      "Total session probes",
			},
			[]string{"result"}, // authenticated/unauthenticated/error
		),
		PolicyFetches: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "appgate",
				Name:      "policy_fetches_total",
				Help:      "Total access policy fetches",
			},
			[]string{"mode", "result"}, // result=ok/fallback
		),
		Handshakes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "appgate",
				Name:      "handshakes_total",
				Help:      "Login handshakes by terminal outcome",
			},
			[]string{"outcome"},
		),
		GateView: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "appgate",
				Name:      "gate_view",
				Help:      "1 for the view currently rendered by the gate, 0 otherwise",
			},
			[]string{"view"},
		),
		BackendDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "appgate",
				Name:      "backend_request_duration_seconds",
				Help:      "Collaborator backend request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint", "status"},
		),
		CallbackRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "appgate",
				Name:      "callback_requests_total",
				Help:      "Requests served by the login callback server",
			},
			[]string{"method", "status"},
		),
		CallbackDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "appgate",
				Name:      "callback_request_duration_seconds",
				Help:      "Login callback server request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// ObserveProbe counts one session probe.
func (m *Metrics) ObserveProbe(result string) {
	if m == nil {
		return
	}
	m.SessionProbes.WithLabelValues(result).Inc()
}

// ObservePolicy counts one policy fetch.
func (m *Metrics) ObservePolicy(p policy.Policy) {
	if m == nil {
		return
	}
	result := "ok"
	if p.Fallback {
		result = "fallback"
	}
	m.PolicyFetches.WithLabelValues(string(p.Mode), result).Inc()
}

// ObserveHandshake counts one finished handshake.
func (m *Metrics) ObserveHandshake(outcome string) {
	if m == nil {
		return
	}
	m.Handshakes.WithLabelValues(outcome).Inc()
}

// ObserveBackend records one backend round trip.
func (m *Metrics) ObserveBackend(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.BackendDuration.WithLabelValues(endpoint, status).Observe(seconds)
}

// SetView marks v as the rendered view.
func (m *Metrics) SetView(v policy.View) {
	if m == nil {
		return
	}
	for _, view := range policy.Views {
		value := 0.0
		if view == v {
			value = 1
		}
		m.GateView.WithLabelValues(string(view)).Set(value)
	}
}
