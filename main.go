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
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	outputDir string
	debugLogs bool
	jsonLogs  bool
)

var rootCmd = &cobra.Command{
	Use:   "ecobill",
	Short: "Forecast electricity usage and bills from billing history",
	Long: `ecobill forecasts next month's electricity usage and bill from a bill CSV,
classifies current consumption as Low, Medium or High with saving tips,
compares usage across years and assembles everything into a report.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory for charts and forecast.json (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "write logs as JSON")
}

func main() {
	// A missing .env is normal
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the configuration and logger shared by every command
type app struct {
	config *Config
	logger *Logger
}

// getConfigPath returns the config file path, or "" to use defaults
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

// newApp loads configuration, applies global flags and builds the logger
func newApp() (*app, error) {
	config, err := LoadConfig(getConfigPath())
	if err != nil {
		return nil, err
	}

	if outputDir != "" {
		config.OutputDir = outputDir
	}
	if debugLogs {
		config.Debug = true
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := NewLogger(config.Debug)
	if jsonLogs {
		logger = NewJSONLogger(config.Debug)
	}
	logger.Debug("Configuration loaded", "config_file", getConfigPath(), "output_dir", config.OutputDir)

	return &app{config: config, logger: logger}, nil
}

// openLedger opens the configured ledger database
func (a *app) openLedger() (*Ledger, error) {
	return OpenLedger(a.config.StoragePath, a.logger)
}

// newAnalyzer creates an analyzer writing to the configured output directory
func (a *app) newAnalyzer() (*Analyzer, error) {
	return NewAnalyzer(a.config, a.config.OutputDir, a.logger)
}
