package callback

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"github.com/Sentinel-Gate/appgate/internal/domain/message"
)

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version,omitempty"`
}

// HealthChecker reports the state of the callback server's collaborators.
type HealthChecker struct {
	bus     *message.Bus
	version string
}

// NewHealthChecker creates a HealthChecker. bus may be nil.
func NewHealthChecker(bus *message.Bus, version string) *HealthChecker {
	return &HealthChecker{bus: bus, version: version}
}

// Check reports component state. The server is healthy as long as it can
// answer.
func (h *HealthChecker) Check() HealthResponse {
	checks := make(map[string]string)

	if h.bus != nil {
		checks["message_bus"] = fmt.Sprintf("ok: %d subscribers", h.bus.Subscribers())
	} else {
		checks["message_bus"] = "not configured"
	}
	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	return HealthResponse{
		Status:  "healthy",
		Checks:  checks,
		Version: h.version,
	}
}

// Handler returns an HTTP handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(h.Check())
	})
}
