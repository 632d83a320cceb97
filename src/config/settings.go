package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the file-backed configuration. Every accessor prefers the
// matching environment variable over the file value.
type Settings struct {
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`

	Reports struct {
		Dir string `yaml:"dir"`
	} `yaml:"reports"`

	Slither struct {
		Path           string `yaml:"path"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"slither"`

	Harness struct {
		Accounts int `yaml:"accounts"`
	} `yaml:"harness"`
}

var globalSettings *Settings

// LoadSettings loads the configuration file.
func LoadSettings(configPath string) error {
	if configPath == "" {
		configPath = "config/settings.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	globalSettings = &settings
	return nil
}

// GetDatabaseDSN returns the history database DSN, empty when history is not
// configured.
func GetDatabaseDSN() string {
	if dsn := os.Getenv("SENTINEL_DATABASE_DSN"); dsn != "" {
		return dsn
	}
	if globalSettings != nil {
		return globalSettings.Database.DSN
	}
	return ""
}

// GetReportsDir returns the artifact output directory.
func GetReportsDir() string {
	if dir := os.Getenv("SENTINEL_REPORTS_DIR"); dir != "" {
		return dir
	}
	if globalSettings != nil && globalSettings.Reports.Dir != "" {
		return globalSettings.Reports.Dir
	}
	return "reports"
}

// GetSlitherPath returns the slither binary path.
func GetSlitherPath() string {
	if path := os.Getenv("SENTINEL_SLITHER_PATH"); path != "" {
		return path
	}
	if globalSettings != nil && globalSettings.Slither.Path != "" {
		return globalSettings.Slither.Path
	}
	return "slither"
}

// GetSlitherTimeout returns the analyzer timeout.
func GetSlitherTimeout() time.Duration {
	if globalSettings != nil && globalSettings.Slither.TimeoutSeconds > 0 {
		return time.Duration(globalSettings.Slither.TimeoutSeconds) * time.Second
	}
	return 120 * time.Second
}

// GetHarnessAccounts returns the number of funded identities for the
// simulated chain.
func GetHarnessAccounts() int {
	if globalSettings != nil && globalSettings.Harness.Accounts >= 2 {
		return globalSettings.Harness.Accounts
	}
	return 4
}
