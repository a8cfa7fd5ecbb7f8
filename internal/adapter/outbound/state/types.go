// Package state provides file-based persistence for appgate's per-user
// preferences.
//
// The preferences file stores the theme mode and the session token handed
// over by the login window. This package provides atomic writes, file
// locking, and backup functionality.
package state

import "time"

// CurrentVersion is the schema version written by this package.
const CurrentVersion = "1"

// Preferences is the top-level structure persisted in the preferences file.
type Preferences struct {
	// Version is the schema version for forward compatibility. Currently "1".
	Version string `json:"version"`

	// ThemeMode is "dark", "light" or "system". Empty means the default.
	ThemeMode string `json:"theme_mode,omitempty"`

	// Session holds the credential handed over by the last login, if any.
	Session *SessionEntry `json:"session,omitempty"`

	// CreatedAt is when this file was first created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when this file was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionEntry is a persisted session credential.
type SessionEntry struct {
	// AppID is the application the token was issued for.
	AppID string `json:"app_id"`

	// Token is the bearer session token.
	Token string `json:"token"`

	// SavedAt is when the token was stored.
	SavedAt time.Time `json:"saved_at"`
}
