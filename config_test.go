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
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ECOBILL_RATE_PER_UNIT", "ECOBILL_CURRENCY_SYMBOL", "ECOBILL_OUTPUT_DIR",
		"ECOBILL_STORAGE_PATH", "ECOBILL_MANUAL_START_YEAR", "ECOBILL_WORKERS",
		"ECOBILL_DEBUG", "ECOBILL_MQTT_ENABLED", "ECOBILL_MQTT_BROKER",
		"ECOBILL_MQTT_USERNAME", "ECOBILL_MQTT_PASSWORD", "ECOBILL_MQTT_TOPIC_PREFIX",
		"ECOBILL_MQTT_CLIENT_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 6.0, config.RatePerUnit)
	assert.Equal(t, "₹", config.CurrencySymbol)
	assert.Equal(t, "outputs", config.OutputDir)
	assert.Equal(t, 2024, config.ManualStartYear)
	assert.Equal(t, 0, config.Workers)
	assert.False(t, config.MQTT.Enabled)
	assert.NotEmpty(t, config.StoragePath)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rate_per_unit: 7.5
currency_symbol: "£"
output_dir: /tmp/ecobill
manual_start_year: 2020
workers: 4
mqtt:
  enabled: true
  broker: tcp://broker:1883
  topic_prefix: home/energy
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7.5, config.RatePerUnit)
	assert.Equal(t, "£", config.CurrencySymbol)
	assert.Equal(t, "/tmp/ecobill", config.OutputDir)
	assert.Equal(t, 2020, config.ManualStartYear)
	assert.Equal(t, 4, config.Workers)
	assert.True(t, config.MQTT.Enabled)
	assert.Equal(t, "tcp://broker:1883", config.MQTT.Broker)
	assert.Equal(t, "home/energy", config.MQTT.TopicPrefix)
	assert.Equal(t, "ecobill", config.MQTT.ClientID, "unset keys keep defaults")
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ECOBILL_RATE_PER_UNIT", "8.25")
	t.Setenv("ECOBILL_OUTPUT_DIR", "env-out")
	t.Setenv("ECOBILL_MANUAL_START_YEAR", "2019")
	t.Setenv("ECOBILL_DEBUG", "1")
	t.Setenv("ECOBILL_MQTT_BROKER", "mqtt.local:1883")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8.25, config.RatePerUnit)
	assert.Equal(t, "env-out", config.OutputDir)
	assert.Equal(t, 2019, config.ManualStartYear)
	assert.True(t, config.Debug)
	assert.Equal(t, "mqtt.local:1883", config.MQTT.Broker)
}

func TestLoadConfigBadEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ECOBILL_WORKERS", "many")

	_, err := LoadConfig("")
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ECOBILL_WORKERS", cfgErr.Field)
}

func TestLoadConfigNonFiniteRate(t *testing.T) {
	for _, val := range []string{"NaN", "inf", "-Inf"} {
		clearConfigEnv(t)
		t.Setenv("ECOBILL_RATE_PER_UNIT", val)

		_, err := LoadConfig("")
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr), "accepted %q", val)
		assert.Equal(t, "ECOBILL_RATE_PER_UNIT", cfgErr.Field)
	}
}

func TestConfigValidateNonFiniteRate(t *testing.T) {
	for _, rate := range []float64{math.NaN(), math.Inf(1)} {
		config := DefaultConfig()
		config.RatePerUnit = rate
		err := config.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_per_unit must be a finite number")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	config := DefaultConfig()
	config.RatePerUnit = 0
	config.OutputDir = ""
	config.Workers = -1
	config.MQTT.Enabled = true
	config.MQTT.Broker = ""

	err := config.Validate()
	require.Error(t, err)
	for _, want := range []string{"rate_per_unit", "output_dir", "workers", "mqtt.broker"} {
		assert.Contains(t, err.Error(), want)
	}
}
