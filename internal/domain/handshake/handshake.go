// Package handshake models one in-flight cross-window login attempt.
package handshake

import (
	"sync"
	"time"
)

// Outcome is the state of a handshake.
type Outcome string

const (
	// OutcomePending means the handshake has not reached a terminal state.
	OutcomePending Outcome = "pending"
	// OutcomeSucceeded means the login window reported success.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed means the login window reported an error or could not be opened.
	OutcomeFailed Outcome = "failed"
	// OutcomeAbandoned means the login window closed without reporting.
	// The login may still have completed, so callers re-check the session.
	OutcomeAbandoned Outcome = "abandoned"
	// OutcomeRedirected means the whole host navigated to the provider.
	// Resumption happens outside the process.
	OutcomeRedirected Outcome = "redirected"
	// OutcomeCancelled means the handshake was torn down by its owner.
	OutcomeCancelled Outcome = "cancelled"
)

// Terminal reports whether the outcome ends the handshake.
func (o Outcome) Terminal() bool {
	return o != OutcomePending && o != ""
}

// RequiresReprobe reports whether the session must be probed again.
func (o Outcome) RequiresReprobe() bool {
	return o == OutcomeSucceeded || o == OutcomeAbandoned
}

// Handshake holds every mutable resource of one login attempt: the window,
// the message subscription and the poll timer are registered with Hold and
// released exactly once by the first call to Finish.
type Handshake struct {
	// ID identifies the handshake in callback URLs and messages.
	ID string
	// StartedAt is when the handshake was created (UTC).
	StartedAt time.Time

	mu       sync.Mutex
	outcome  Outcome
	releases []func()
	done     chan struct{}
}

// New creates a pending handshake.
func New(id string) *Handshake {
	return &Handshake{
		ID:        id,
		StartedAt: time.Now().UTC(),
		outcome:   OutcomePending,
		done:      make(chan struct{}),
	}
}

// Hold registers a release function. If the handshake already finished,
// release runs immediately.
func (h *Handshake) Hold(release func()) {
	h.mu.Lock()
	if h.outcome.Terminal() {
		h.mu.Unlock()
		release()
		return
	}
	h.releases = append(h.releases, release)
	h.mu.Unlock()
}

// Finish moves the handshake to a terminal outcome and releases all held
// resources in reverse registration order. Only the first call has any
// effect; it returns false if the handshake had already finished.
func (h *Handshake) Finish(o Outcome) bool {
	if !o.Terminal() {
		return false
	}

	h.mu.Lock()
	if h.outcome.Terminal() {
		h.mu.Unlock()
		return false
	}
	h.outcome = o
	releases := h.releases
	h.releases = nil
	close(h.done)
	h.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
	return true
}

// Outcome returns the current outcome.
func (h *Handshake) Outcome() Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome
}

// Done is closed when the handshake reaches a terminal outcome.
func (h *Handshake) Done() <-chan struct{} {
	return h.done
}

// Held returns the number of resources still held. Zero after Finish.
func (h *Handshake) Held() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.releases)
}
