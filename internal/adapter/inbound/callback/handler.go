package callback

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Sentinel-Gate/appgate/internal/domain/message"
)

// maxBodyBytes bounds message and beacon bodies.
const maxBodyBytes = 64 << 10

// messageRequest is the body of POST /auth/message.
type messageRequest struct {
	Type         string `json:"type"`
	Handshake    string `json:"handshake"`
	SessionToken string `json:"session_token"`
}

// closedRequest is the body of POST /auth/closed.
type closedRequest struct {
	Handshake string `json:"handshake"`
}

// ClosureRecorder is told when a login window reports that it went away.
type ClosureRecorder interface {
	RecordClosed(handshakeID string) bool
}

func pageHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "no-referrer")
		_, _ = io.WriteString(w, callbackPage)
	})
}

// messageHandler republishes posted messages on bus, tagged with the
// request's Origin header. It does not judge the origin.
func messageHandler(bus *message.Bus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := LoggerFromContext(r.Context())

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req messageRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			logger.Debug("rejecting malformed callback message", "error", err)
			http.Error(w, "invalid message", http.StatusBadRequest)
			return
		}
		if req.Type == "" {
			http.Error(w, "missing message type", http.StatusBadRequest)
			return
		}

		delivered := bus.Publish(message.Message{
			Origin:       r.Header.Get("Origin"),
			Type:         req.Type,
			Handshake:    req.Handshake,
			SessionToken: req.SessionToken,
		})
		logger.Debug("callback message published",
			"type", req.Type,
			"origin", r.Header.Get("Origin"),
			"handshake_id", req.Handshake,
			"delivered", delivered,
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]int{"delivered": delivered})
	})
}

// closedHandler forwards window closure beacons to recorder.
func closedHandler(recorder ClosureRecorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req closedRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Handshake == "" {
			http.Error(w, "invalid beacon", http.StatusBadRequest)
			return
		}

		if recorder != nil && recorder.RecordClosed(req.Handshake) {
			LoggerFromContext(r.Context()).Debug("login window closed", "handshake_id", req.Handshake)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
