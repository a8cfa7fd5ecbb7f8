// Package config provides configuration types for appgate.
//
// Configuration is file-based (appgate.yaml) with environment overrides
// under the APPGATE_ prefix. Durations are written as Go duration strings
// ("1s", "100ms").
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Base URLs of the collaborator backend.
const (
	DevBaseURL        = "http://localhost:3500"
	ProductionBaseURL = "https://db.madewithmanifest.com"
)

// DevAppID is used in dev mode when no app id is configured.
const DevAppID = "not-defined"

// Config is the top-level configuration for appgate.
type Config struct {
	// AppID identifies the monetized application instance.
	AppID string `yaml:"app_id" mapstructure:"app_id" validate:"required"`

	// Backend configures the collaborator API client.
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`

	// Auth configures the cross-window login handshake.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Callback configures the loopback server the login window reports to.
	Callback CallbackConfig `yaml:"callback" mapstructure:"callback"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// PreferencesPath is the preferences file (theme, saved session).
	// Default: ~/.appgate/preferences.json.
	PreferencesPath string `yaml:"preferences_path" mapstructure:"preferences_path"`

	// Telemetry configures tracing output.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// DevMode forces debug logging and targets the local backend.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// BackendConfig configures the collaborator API client.
type BackendConfig struct {
	// BaseURL overrides base URL detection when set.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	// Timeout bounds every backend request. Default: "10s".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"duration"`
}

// AuthConfig configures the login handshake.
type AuthConfig struct {
	// Mode is popup, redirect or auto. Default: popup.
	Mode string `yaml:"mode" mapstructure:"mode" validate:"auth_mode"`
	// PopupHosts selects popup mode in auto mode when the hosting URL
	// contains one of them. Default: ["fly.dev"].
	PopupHosts []string `yaml:"popup_hosts" mapstructure:"popup_hosts"`
	// HostingURL is where the gated application is served. It is the
	// return target in redirect mode and drives base URL detection.
	HostingURL string `yaml:"hosting_url" mapstructure:"hosting_url" validate:"omitempty,url"`
	// PollInterval is how often the login window is checked for closure. Default: "1s".
	PollInterval string `yaml:"poll_interval" mapstructure:"poll_interval" validate:"duration"`
	// SuccessSettle is waited after a success message. Default: "100ms".
	SuccessSettle string `yaml:"success_settle" mapstructure:"success_settle" validate:"duration"`
	// AbandonSettle is waited after the window closed without a message. Default: "1s".
	AbandonSettle string `yaml:"abandon_settle" mapstructure:"abandon_settle" validate:"duration"`
}

// CallbackConfig configures the loopback callback server.
type CallbackConfig struct {
	// Addr is the listen address. Port 0 picks a free port. Default: "127.0.0.1:0".
	Addr string `yaml:"addr" mapstructure:"addr" validate:"listen_addr"`
}

// TelemetryConfig configures tracing.
type TelemetryConfig struct {
	// TraceStdout writes spans to stderr as JSON.
	TraceStdout bool `yaml:"trace_stdout" mapstructure:"trace_stdout"`
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.Backend.Timeout == "" {
		c.Backend.Timeout = "10s"
	}

	if c.Auth.Mode == "" {
		c.Auth.Mode = "popup"
	}
	if len(c.Auth.PopupHosts) == 0 {
		c.Auth.PopupHosts = []string{"fly.dev"}
	}
	if c.Auth.PollInterval == "" {
		c.Auth.PollInterval = "1s"
	}
	if c.Auth.SuccessSettle == "" {
		c.Auth.SuccessSettle = "100ms"
	}
	if c.Auth.AbandonSettle == "" {
		c.Auth.AbandonSettle = "1s"
	}

	// Loopback only; the login window runs on the same machine.
	if c.Callback.Addr == "" {
		c.Callback.Addr = "127.0.0.1:0"
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PreferencesPath == "" {
		c.PreferencesPath = DefaultPreferencesPath()
	}
}

// SetDevDefaults applies development defaults. It runs before validation
// so that a bare dev config is valid.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.AppID == "" {
		c.AppID = DevAppID
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DevBaseURL
	}
	c.LogLevel = "debug"
}

// DefaultPreferencesPath returns ~/.appgate/preferences.json, or a path in
// the working directory when the home directory is unknown.
func DefaultPreferencesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".appgate", "preferences.json")
	}
	return filepath.Join(home, ".appgate", "preferences.json")
}

// ResolveBaseURL returns the configured base URL, or detects it from the
// hosting URL: localhost-like hosts use the dev backend, everything else
// (including an unset hosting URL) the production backend.
func (c *Config) ResolveBaseURL() string {
	if c.Backend.BaseURL != "" {
		return strings.TrimRight(c.Backend.BaseURL, "/")
	}
	if isLocalhost(c.Auth.HostingURL) {
		return DevBaseURL
	}
	return ProductionBaseURL
}

func isLocalhost(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "127.0.0.1" || host == "::1" || strings.Contains(host, "localhost")
}

// BackendTimeout returns Backend.Timeout as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return mustDuration(c.Backend.Timeout)
}

// AuthDurations returns the poll interval and the two settle delays.
func (c *Config) AuthDurations() (poll, successSettle, abandonSettle time.Duration) {
	return mustDuration(c.Auth.PollInterval), mustDuration(c.Auth.SuccessSettle), mustDuration(c.Auth.AbandonSettle)
}

// mustDuration parses a validated duration string. Invalid input yields 0,
// which the consumers replace with their own defaults.
func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
