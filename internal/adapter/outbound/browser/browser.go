// Package browser opens login windows in the user's system browser.
//
// A system browser tab cannot be polled for closure the way a popup can, so
// the login callback page reports its own closure and the callback server
// forwards that report to RecordClosed.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkg/browser"

	"github.com/Sentinel-Gate/appgate/internal/ctxkey"
	"github.com/Sentinel-Gate/appgate/internal/port/outbound"
)

// Opener opens URLs in the system browser and tracks the login windows it
// opened by handshake id.
type Opener struct {
	open   func(url string) error
	logger *slog.Logger

	mu      sync.Mutex
	windows map[string]*window
}

// Option configures an Opener.
type Option func(*Opener)

// WithOpenFunc replaces the function that launches the browser.
func WithOpenFunc(fn func(url string) error) Option {
	return func(o *Opener) {
		o.open = fn
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opener) {
		o.logger = logger
	}
}

// NewOpener creates an Opener that launches the system browser.
func NewOpener(opts ...Option) *Opener {
	o := &Opener{
		open:    browser.OpenURL,
		logger:  slog.Default(),
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open launches req.URL. A launch failure is reported as
// outbound.ErrWindowBlocked.
func (o *Opener) Open(ctx context.Context, req outbound.OpenRequest) (outbound.Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := &window{id: req.HandshakeID, owner: o}
	o.mu.Lock()
	if req.HandshakeID != "" {
		o.windows[req.HandshakeID] = w
	}
	o.mu.Unlock()

	if err := o.open(req.URL); err != nil {
		o.forget(req.HandshakeID, w)
		return nil, fmt.Errorf("%w: %v", outbound.ErrWindowBlocked, err)
	}

	ctxkey.Logger(ctx, o.logger).Debug("login window opened", "name", req.Name)
	return w, nil
}

// Navigate sends the user's browser to url. It is the redirect-mode
// counterpart of Open.
func (o *Opener) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.open(url); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	ctxkey.Logger(ctx, o.logger).Debug("browser navigated")
	return nil
}

// RecordClosed marks the window of handshakeID as closed by the user.
// It reports whether such a window was open.
func (o *Opener) RecordClosed(handshakeID string) bool {
	o.mu.Lock()
	w, ok := o.windows[handshakeID]
	o.mu.Unlock()
	if !ok {
		return false
	}
	w.markClosed()
	o.logger.Debug("login window reported closed", "handshake_id", handshakeID)
	return true
}

// Tracked returns the number of windows currently tracked.
func (o *Opener) Tracked() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.windows)
}

func (o *Opener) forget(id string, w *window) {
	if id == "" {
		return
	}
	o.mu.Lock()
	if o.windows[id] == w {
		delete(o.windows, id)
	}
	o.mu.Unlock()
}

// window is a login window opened in the system browser.
type window struct {
	id    string
	owner *Opener

	mu     sync.Mutex
	closed bool
}

func (w *window) markClosed() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// Closed reports whether the callback page reported the window closed or
// the window was closed by its owner.
func (w *window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Close stops tracking the window. The tab itself closes from the callback
// page once it has posted its message.
func (w *window) Close() error {
	w.markClosed()
	w.owner.forget(w.id, w)
	return nil
}
