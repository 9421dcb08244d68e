// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Tariff
	RatePerUnit    float64 `yaml:"rate_per_unit"`
	CurrencySymbol string  `yaml:"currency_symbol"`

	// Output directory for charts and forecast.json
	OutputDir string `yaml:"output_dir"`

	// Ledger database file
	StoragePath string `yaml:"storage_path"`

	// Year assigned to the first manually entered month
	ManualStartYear int `yaml:"manual_start_year"`

	// Concurrent tree fits, 0 for one per CPU
	Workers int `yaml:"workers"`

	MQTT MQTTConfig `yaml:"mqtt"`

	// Debugging
	Debug bool `yaml:"debug"`
}

// MQTTConfig holds the broker settings used by the publish command
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	ClientID    string `yaml:"client_id"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		RatePerUnit:     DefaultRatePerUnit,
		CurrencySymbol:  DefaultCurrencySymbol,
		OutputDir:       "outputs",
		StoragePath:     getDefaultStoragePath(),
		ManualStartYear: 2024,
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "ecobill",
			ClientID:    "ecobill",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	// If no path provided, return defaults with env var overrides
	if path == "" {
		if err := config.applyEnvironmentVariables(); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.applyEnvironmentVariables(); err != nil {
		return nil, err
	}

	return config, nil
}

// getDefaultStoragePath returns the default ledger location
func getDefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ecobill", "ledger.db")
	}
	return filepath.Join(home, ".config", "ecobill", "ledger.db")
}

// applyEnvironmentVariables overrides config with environment variables
func (c *Config) applyEnvironmentVariables() error {
	if val := os.Getenv("ECOBILL_RATE_PER_UNIT"); val != "" {
		rate, err := strconv.ParseFloat(val, 64)
		if err != nil || math.IsInf(rate, 0) || math.IsNaN(rate) {
			return &ConfigError{Field: "ECOBILL_RATE_PER_UNIT", Message: fmt.Sprintf("not a finite number: %q", val)}
		}
		c.RatePerUnit = rate
	}
	if val := os.Getenv("ECOBILL_CURRENCY_SYMBOL"); val != "" {
		c.CurrencySymbol = val
	}
	if val := os.Getenv("ECOBILL_OUTPUT_DIR"); val != "" {
		c.OutputDir = val
	}
	if val := os.Getenv("ECOBILL_STORAGE_PATH"); val != "" {
		c.StoragePath = val
	}
	if val := os.Getenv("ECOBILL_MANUAL_START_YEAR"); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return &ConfigError{Field: "ECOBILL_MANUAL_START_YEAR", Message: fmt.Sprintf("not a year: %q", val)}
		}
		c.ManualStartYear = year
	}
	if val := os.Getenv("ECOBILL_WORKERS"); val != "" {
		workers, err := strconv.Atoi(val)
		if err != nil {
			return &ConfigError{Field: "ECOBILL_WORKERS", Message: fmt.Sprintf("not an integer: %q", val)}
		}
		c.Workers = workers
	}
	if val := os.Getenv("ECOBILL_DEBUG"); val == "true" || val == "1" {
		c.Debug = true
	}

	if val := os.Getenv("ECOBILL_MQTT_ENABLED"); val == "true" || val == "1" {
		c.MQTT.Enabled = true
	}
	if val := os.Getenv("ECOBILL_MQTT_BROKER"); val != "" {
		c.MQTT.Broker = val
	}
	if val := os.Getenv("ECOBILL_MQTT_USERNAME"); val != "" {
		c.MQTT.Username = val
	}
	if val := os.Getenv("ECOBILL_MQTT_PASSWORD"); val != "" {
		c.MQTT.Password = val
	}
	if val := os.Getenv("ECOBILL_MQTT_TOPIC_PREFIX"); val != "" {
		c.MQTT.TopicPrefix = val
	}
	if val := os.Getenv("ECOBILL_MQTT_CLIENT_ID"); val != "" {
		c.MQTT.ClientID = val
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	switch {
	case math.IsInf(c.RatePerUnit, 0) || math.IsNaN(c.RatePerUnit):
		errors = append(errors, "rate_per_unit must be a finite number")
	case c.RatePerUnit <= 0:
		errors = append(errors, "rate_per_unit must be greater than 0")
	}

	if c.CurrencySymbol == "" {
		c.CurrencySymbol = DefaultCurrencySymbol
	}

	if c.OutputDir == "" {
		errors = append(errors, "output_dir is required")
	}

	if c.ManualStartYear < 1900 || c.ManualStartYear > 9999 {
		errors = append(errors, "manual_start_year must be between 1900 and 9999")
	}

	if c.Workers < 0 {
		errors = append(errors, "workers cannot be negative")
	}

	// Set default storage path if empty
	if c.StoragePath == "" {
		c.StoragePath = getDefaultStoragePath()
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errors = append(errors, "mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.TopicPrefix == "" {
			errors = append(errors, "mqtt.topic_prefix is required when mqtt is enabled")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
