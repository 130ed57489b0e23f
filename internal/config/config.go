// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"resale-pricing/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing defaults
	Pricing PricingConfig `json:"pricing"`

	// RefData contains reference data settings
	RefData RefDataConfig `json:"refdata"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related defaults
type PricingConfig struct {
	// DefaultTargetMargin is the default target profit margin
	DefaultTargetMargin float64 `json:"default_target_margin"`

	// DefaultPriceRatio is the default product-price-to-total-price ratio
	DefaultPriceRatio float64 `json:"default_price_ratio"`

	// DefaultFVFRate is the default marketplace final value fee rate
	DefaultFVFRate float64 `json:"default_fvf_rate"`

	// SurchargeMonth overrides the month used for demand surcharge gating.
	// Zero means the caller supplies the month explicitly.
	SurchargeMonth int `json:"surcharge_month,omitempty"`
}

// RefDataConfig contains reference data settings
type RefDataConfig struct {
	// Directory is the directory containing reference data files
	Directory string `json:"directory"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// ShowSteps includes the calculation audit trail in output
	ShowSteps bool `json:"show_steps"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	refDir := filepath.Join(homeDir, ".resale-pricing", "refdata")

	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			DefaultTargetMargin: 0.15,
			DefaultPriceRatio:   0.8,
			DefaultFVFRate:      0.1315,
		},
		RefData: RefDataConfig{
			Directory: refDir,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowSteps:     true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
