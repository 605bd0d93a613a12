// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigurationError reports an invalid or incomplete configuration. It is
// fatal at startup: the process surfaces it immediately rather than running
// partially configured.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config error: %s", e.Message)
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Connections
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key

	// Inbox
	Inbox         string `json:"inbox,omitempty"`          // Directory of raw .eml messages to ingest
	SweepSchedule string `json:"sweep_schedule,omitempty"` // Cron expression for periodic inbox sweeps
	Timezone      string `json:"timezone,omitempty"`       // IANA timezone for the sweep schedule

	// Pipeline
	Workers                  int `json:"workers,omitempty"`                    // Maximum documents processed concurrently
	CapabilityTimeoutSeconds int `json:"capability_timeout_seconds,omitempty"` // Per-call classifier/extractor timeout

	// Reconciliation
	Statement         string  `json:"statement,omitempty"`           // Default bank statement file for reconcile runs
	DateToleranceDays int     `json:"date_tolerance_days,omitempty"` // Posting-date lag window for matching
	AmountEpsilon     float64 `json:"amount_epsilon,omitempty"`      // Absolute amount tolerance for matching

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &ConfigurationError{Message: "config path is empty"}
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate numeric ranges
	if c.Workers < 0 {
		return &ConfigurationError{Message: "'workers' must be non-negative"}
	}
	if c.CapabilityTimeoutSeconds < 0 {
		return &ConfigurationError{Message: "'capability_timeout_seconds' must be non-negative"}
	}
	if c.DateToleranceDays < 0 {
		return &ConfigurationError{Message: "'date_tolerance_days' must be non-negative"}
	}
	if c.AmountEpsilon < 0 {
		return &ConfigurationError{Message: "'amount_epsilon' must be non-negative"}
	}

	// Validate paths exist (if specified)
	if c.Inbox != "" {
		if _, err := os.Stat(c.Inbox); os.IsNotExist(err) {
			return &ConfigurationError{Message: fmt.Sprintf("inbox directory not found: %s", c.Inbox)}
		}
	}

	if c.Statement != "" {
		if _, err := os.Stat(c.Statement); os.IsNotExist(err) {
			return &ConfigurationError{Message: fmt.Sprintf("statement file not found: %s", c.Statement)}
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Inbox == "" {
		result.Inbox = defaults.Inbox
	}
	if result.SweepSchedule == "" {
		result.SweepSchedule = defaults.SweepSchedule
	}
	if result.Timezone == "" {
		result.Timezone = defaults.Timezone
	}
	if result.Statement == "" {
		result.Statement = defaults.Statement
	}

	// Int fields: use default if zero
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.CapabilityTimeoutSeconds == 0 {
		result.CapabilityTimeoutSeconds = defaults.CapabilityTimeoutSeconds
	}
	if result.DateToleranceDays == 0 {
		result.DateToleranceDays = defaults.DateToleranceDays
	}

	// Float fields
	if result.AmountEpsilon == 0 {
		result.AmountEpsilon = defaults.AmountEpsilon
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
