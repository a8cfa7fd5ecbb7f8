package outbound

import (
	"context"
	"errors"

	"github.com/Sentinel-Gate/appgate/internal/domain/theme"
)

// ErrWindowBlocked is returned when a login window could not be opened.
var ErrWindowBlocked = errors.New("login window blocked")

// OpenRequest describes a login window.
type OpenRequest struct {
	// URL is the page to load.
	URL string
	// Name is the window name, e.g. "googleLogin".
	Name string
	// HandshakeID ties closure reports to this window.
	HandshakeID string
	// Width and Height are advisory.
	Width, Height int
}

// Window is a secondary window owned by one handshake.
type Window interface {
	// Closed reports whether the user closed the window.
	Closed() bool
	// Close closes the window. Safe to call more than once.
	Close() error
}

// WindowOpener opens login windows.
type WindowOpener interface {
	Open(ctx context.Context, req OpenRequest) (Window, error)
}

// Navigator moves the whole host to another URL.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// PreferenceStore persists per-user preferences.
type PreferenceStore interface {
	LoadTheme() (theme.Mode, error)
	SaveTheme(mode theme.Mode) error
}
