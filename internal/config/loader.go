package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for appgate.yaml/.yml in standard locations.
// The search requires an explicit YAML extension so the appgate binary itself
// is never picked up as a config file.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No file anywhere: ReadInConfig then returns ConfigFileNotFoundError,
		// which LoadConfig tolerates.
		viper.SetConfigName("appgate")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: APPGATE_BACKEND_BASE_URL
	viper.SetEnvPrefix("APPGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for appgate.yaml or appgate.yml.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".appgate"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "appgate"))
		}
	} else {
		paths = append(paths, "/etc/appgate")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths returns the first appgate.yaml or .yml found in paths.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "appgate"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds every scalar key so nested values can be
// overridden from the environment, e.g. APPGATE_AUTH_POLL_INTERVAL.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("app_id")
	_ = viper.BindEnv("log_level")
	_ = viper.BindEnv("preferences_path")
	_ = viper.BindEnv("dev_mode")

	_ = viper.BindEnv("backend.base_url")
	_ = viper.BindEnv("backend.timeout")

	// auth.popup_hosts is a list; set it in the config file.
	_ = viper.BindEnv("auth.mode")
	_ = viper.BindEnv("auth.hosting_url")
	_ = viper.BindEnv("auth.poll_interval")
	_ = viper.BindEnv("auth.success_settle")
	_ = viper.BindEnv("auth.abandon_settle")

	_ = viper.BindEnv("callback.addr")

	_ = viper.BindEnv("telemetry.trace_stdout")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, and validates the result.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}

	cfg.SetDevDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults, but
// does NOT apply dev defaults or validate. Use this when CLI flags may
// override fields before validation.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was loaded.
// Returns an empty string if no config file was found (env vars only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
