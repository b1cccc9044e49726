package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Import-AF/pipedream-libs/pkg/mapping"
	"gopkg.in/yaml.v3"
)

// Config is the main sync configuration, loaded from a JSON or YAML file.
type Config struct {
	// Monday API connection settings
	Monday MondayConfig `json:"monday" yaml:"monday"`

	// Board the sync writes to
	BoardID string `json:"board_id" yaml:"board_id"`

	// Retry behavior for Monday API calls
	Retry RetryConfig `json:"retry" yaml:"retry"`

	// Log level: debug, info, warn, error
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Mapping from tags to field rules
	Mapping mapping.Config `json:"mapping" yaml:"mapping"`
}

// MondayConfig holds the Monday.com API connection settings.
type MondayConfig struct {
	APIToken              string `json:"api_token" yaml:"api_token"`
	Endpoint              string `json:"endpoint" yaml:"endpoint"`
	APIVersion            string `json:"api_version" yaml:"api_version"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

// RetryConfig holds the retry policy for Monday API calls.
type RetryConfig struct {
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"` // Total attempts including the first
	BaseDelayMs int `json:"base_delay_ms" yaml:"base_delay_ms"`
	MaxDelayMs  int `json:"max_delay_ms" yaml:"max_delay_ms"`
}

// LoadConfig loads the configuration from a file. The format is chosen by
// file extension: .yaml/.yml parse as YAML, everything else as JSON.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "qbo_to_monday_config.json"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// applyDefaults fills unset fields with their defaults.
func applyDefaults(config *Config) {
	if config.Monday.Endpoint == "" {
		config.Monday.Endpoint = "https://api.monday.com/v2"
	}

	if config.Monday.APIVersion == "" {
		config.Monday.APIVersion = "2024-10"
	}

	if config.Monday.RequestTimeoutSeconds <= 0 {
		config.Monday.RequestTimeoutSeconds = 30 // Default to 30 seconds
	}

	if config.Retry.MaxAttempts <= 0 {
		config.Retry.MaxAttempts = 2 // One retry after the initial attempt
	}

	if config.Retry.BaseDelayMs <= 0 {
		config.Retry.BaseDelayMs = 30000 // Default to 30s between attempts
	}

	if config.Retry.MaxDelayMs <= 0 {
		config.Retry.MaxDelayMs = 60000 // Default to 60s cap
	}

	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Monday.APIToken == "" {
		return fmt.Errorf("monday API token is required")
	}

	if config.BoardID == "" {
		return fmt.Errorf("board_id is required")
	}

	if len(config.Mapping) == 0 {
		return fmt.Errorf("at least one mapping entry is required")
	}

	for key, rule := range config.Mapping {
		if rule == nil {
			return fmt.Errorf("mapping entry %q has no rule body", key)
		}
	}

	return nil
}
