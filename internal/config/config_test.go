package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.Backend.Timeout != "10s" {
		t.Errorf("Backend.Timeout = %q, want 10s", cfg.Backend.Timeout)
	}
	if cfg.Auth.Mode != "popup" {
		t.Errorf("Auth.Mode = %q, want popup", cfg.Auth.Mode)
	}
	if len(cfg.Auth.PopupHosts) != 1 || cfg.Auth.PopupHosts[0] != "fly.dev" {
		t.Errorf("Auth.PopupHosts = %v, want [fly.dev]", cfg.Auth.PopupHosts)
	}
	if cfg.Callback.Addr != "127.0.0.1:0" {
		t.Errorf("Callback.Addr = %q, want 127.0.0.1:0", cfg.Callback.Addr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if filepath.Base(cfg.PreferencesPath) != "preferences.json" {
		t.Errorf("PreferencesPath = %q", cfg.PreferencesPath)
	}

	poll, success, abandon := cfg.AuthDurations()
	if poll != time.Second || success != 100*time.Millisecond || abandon != time.Second {
		t.Errorf("AuthDurations() = %v, %v, %v; want 1s, 100ms, 1s", poll, success, abandon)
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Backend:  BackendConfig{Timeout: "3s"},
		Auth:     AuthConfig{Mode: "redirect", PollInterval: "250ms", PopupHosts: []string{"example.dev"}},
		Callback: CallbackConfig{Addr: "127.0.0.1:8765"},
		LogLevel: "warn",
	}
	cfg.SetDefaults()

	if cfg.Backend.Timeout != "3s" {
		t.Errorf("Backend.Timeout was overwritten: %q", cfg.Backend.Timeout)
	}
	if cfg.Auth.Mode != "redirect" || cfg.Auth.PollInterval != "250ms" {
		t.Errorf("Auth was overwritten: %+v", cfg.Auth)
	}
	if cfg.Auth.PopupHosts[0] != "example.dev" {
		t.Errorf("PopupHosts was overwritten: %v", cfg.Auth.PopupHosts)
	}
	if cfg.Callback.Addr != "127.0.0.1:8765" {
		t.Errorf("Callback.Addr was overwritten: %q", cfg.Callback.Addr)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel was overwritten: %q", cfg.LogLevel)
	}
}

func TestConfig_SetDevDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{DevMode: true}
	cfg.SetDefaults()
	cfg.SetDevDefaults()

	if cfg.AppID != DevAppID {
		t.Errorf("AppID = %q, want %q", cfg.AppID, DevAppID)
	}
	if cfg.ResolveBaseURL() != DevBaseURL {
		t.Errorf("ResolveBaseURL() = %q, want dev URL", cfg.ResolveBaseURL())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("dev config should validate: %v", err)
	}

	prod := Config{}
	prod.SetDevDefaults()
	if prod.AppID != "" || prod.Backend.BaseURL != "" {
		t.Error("SetDevDefaults must do nothing outside dev mode")
	}
}

func TestConfig_ResolveBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		hosting string
		want    string
	}{
		{"explicit wins", "https://api.example.com/", "http://localhost:5173", "https://api.example.com"},
		{"localhost", "", "http://localhost:5173/app", DevBaseURL},
		{"loopback ip", "", "http://127.0.0.1:8080", DevBaseURL},
		{"localhost subdomain", "", "http://app.localhost", DevBaseURL},
		{"hosted", "", "https://my-app.fly.dev", ProductionBaseURL},
		{"unset", "", "", ProductionBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Config{Backend: BackendConfig{BaseURL: tt.baseURL}, Auth: AuthConfig{HostingURL: tt.hosting}}
			if got := cfg.ResolveBaseURL(); got != tt.want {
				t.Errorf("ResolveBaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	// Uses the global viper instance; not parallel.
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "appgate.yaml")
	content := "app_id: app-42\nauth:\n  mode: auto\n  popup_hosts: [example.dev]\n  success_settle: 50ms\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APPGATE_BACKEND_BASE_URL", "https://api.example.com")

	InitViper(path)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.AppID != "app-42" {
		t.Errorf("AppID = %q, want app-42", cfg.AppID)
	}
	if cfg.Auth.Mode != "auto" || cfg.Auth.PopupHosts[0] != "example.dev" {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if _, success, _ := cfg.AuthDurations(); success != 50*time.Millisecond {
		t.Errorf("SuccessSettle = %v, want 50ms", success)
	}
	if cfg.ResolveBaseURL() != "https://api.example.com" {
		t.Errorf("env override not applied: %q", cfg.ResolveBaseURL())
	}
	if ConfigFileUsed() != path {
		t.Errorf("ConfigFileUsed() = %q, want %q", ConfigFileUsed(), path)
	}
}

func TestLoadConfig_InvalidFileFailsValidation(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "appgate.yaml")
	if err := os.WriteFile(path, []byte("app_id: x\nauth:\n  mode: window\n"), 0600); err != nil {
		t.Fatal(err)
	}

	InitViper(path)
	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() should reject auth.mode=window")
	}
}

func TestFindConfigFileInPaths_EmptyDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if got := findConfigFileInPaths([]string{dir}); got != "" {
		t.Errorf("findConfigFileInPaths(empty dir) = %q, want empty", got)
	}
}

func TestFindConfigFileInPaths_MatchesYML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "appgate.yml")
	_ = os.WriteFile(cfgPath, []byte("app_id: a\n"), 0644)

	if got := findConfigFileInPaths([]string{dir}); got != cfgPath {
		t.Errorf("findConfigFileInPaths = %q, want %q", got, cfgPath)
	}
}

func TestFindConfigFileInPaths_IgnoresNoExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// The binary itself: same base name, no extension.
	_ = os.WriteFile(filepath.Join(dir, "appgate"), []byte("\x7fELF binary"), 0755)

	if got := findConfigFileInPaths([]string{dir}); got != "" {
		t.Errorf("findConfigFileInPaths matched binary = %q, want empty", got)
	}
}

func TestFindConfigFileInPaths_PrefersYAMLOverYML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "appgate.yaml")
	_ = os.WriteFile(yamlPath, []byte("app_id: a\n"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "appgate.yml"), []byte("app_id: b\n"), 0644)

	if got := findConfigFileInPaths([]string{dir}); got != yamlPath {
		t.Errorf("findConfigFileInPaths = %q, want %q (.yaml preferred)", got, yamlPath)
	}
}
