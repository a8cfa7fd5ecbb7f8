// Package cmd provides the CLI commands for appgate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/appgate/internal/config"
)

var (
	cfgFile   string
	prefsPath string
	devMode   bool
)

var rootCmd = &cobra.Command{
	Use:   "appgate",
	Short: "appgate - monetization gate for app instances",
	Long: `appgate decides whether a visitor may see an application's content.

It asks the backend who the visitor is and which access policy the
application uses (open, login, payment or subscription), then shows the
content or the matching gate. Login happens in the system browser; the
result is reported back to a loopback callback server.

Quick start:
  1. Create a config file: appgate.yaml with "app_id: <your app id>"
  2. Run: appgate run

Configuration:
  Config is loaded from appgate.yaml in the current directory,
  $HOME/.appgate/, or /etc/appgate/.

  Environment variables can override config values with the APPGATE_ prefix.
  Example: APPGATE_BACKEND_BASE_URL=http://localhost:3500`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./appgate.yaml)")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "preferences file (default: ~/.appgate/preferences.json)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "development mode (debug logging, local backend)")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// loadConfig loads the configuration and applies CLI flag overrides before
// validating it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}
	if prefsPath != "" {
		cfg.PreferencesPath = prefsPath
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
