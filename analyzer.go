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
	"time"
)

// Analyzer runs the forecast, classification and yearly stages against one
// output directory
type Analyzer struct {
	config     *Config
	logger     *Logger
	store      *ArtifactStore
	forecaster *Forecaster
	classifier *Classifier
	yearly     *YearlyPlotter
	manual     *ManualPredictor
}

// NewAnalyzer creates an analyzer writing its artifacts to outputDir
func NewAnalyzer(config *Config, outputDir string, logger *Logger) (*Analyzer, error) {
	store, err := NewArtifactStore(outputDir, logger)
	if err != nil {
		return nil, err
	}

	classifier, err := NewClassifier(store, logger)
	if err != nil {
		return nil, err
	}

	forecaster := NewForecaster(store, config.Workers, logger)
	return &Analyzer{
		config:     config,
		logger:     logger,
		store:      store,
		forecaster: forecaster,
		classifier: classifier,
		yearly:     NewYearlyPlotter(store, logger),
		manual:     NewManualPredictor(forecaster, config.ManualStartYear, logger),
	}, nil
}

// Store returns the artifact store the analyzer writes to
func (a *Analyzer) Store() *ArtifactStore {
	return a.store
}

// Forecast predicts next month's usage and bill
func (a *Analyzer) Forecast(table *UsageTable) (*ForecastResult, error) {
	a.logger.LogAnalysisStage("forecast")
	return a.forecaster.Forecast(table, a.config.RatePerUnit)
}

// Tips classifies the latest usage and returns the matching advice
func (a *Analyzer) Tips(table *UsageTable) (*TipsResult, error) {
	a.logger.LogAnalysisStage("tips")
	return a.classifier.ClassifyAndTip(table)
}

// Yearly aggregates usage per year and writes both yearly charts. Plots are
// skipped when the table has no complete rows.
func (a *Analyzer) Yearly(table *UsageTable) (*YearlyAggregate, []string, error) {
	a.logger.LogAnalysisStage("yearly")
	agg, err := a.yearly.Aggregate(table)
	if err != nil {
		return nil, nil, err
	}
	if len(agg.Curves) == 0 {
		a.logger.Warn("No complete rows to plot per year")
		return agg, nil, nil
	}
	plots, err := a.yearly.Plot(agg)
	if err != nil {
		return nil, nil, err
	}
	return agg, plots, nil
}

// Manual predicts next month's usage from manually entered values
func (a *Analyzer) Manual(values []float64) (*ManualResult, error) {
	a.logger.LogAnalysisStage("manual")
	return a.manual.Predict(values, a.config.RatePerUnit)
}

// Analyze runs every stage over a table and collects the results for a report
func (a *Analyzer) Analyze(table *UsageTable) (*AnalysisResult, error) {
	a.logger.Info("Starting analysis", "source", table.Source, "rows", table.Len())

	result := &AnalysisResult{
		GeneratedAt:    time.Now(),
		Source:         table.Source,
		CurrencySymbol: a.config.CurrencySymbol,
		Summary:        Summarize(table),
	}

	var err error
	if result.Forecast, err = a.Forecast(table); err != nil {
		return nil, err
	}
	if result.Tips, err = a.Tips(table); err != nil {
		return nil, err
	}
	if result.Yearly, result.YearPlots, err = a.Yearly(table); err != nil {
		return nil, err
	}

	a.logger.Info("Analysis completed",
		"predicted_kwh", result.Forecast.PredictedUsageKWh,
		"category", result.Tips.Category,
		"years", len(result.Yearly.Averages),
	)
	return result, nil
}

// Summarize computes the headline figures from the complete rows of a table
func Summarize(table *UsageTable) UsageSummary {
	clean := CleanTable(table)
	summary := UsageSummary{Rows: clean.Len()}
	if clean.Len() == 0 {
		return summary
	}

	units := clean.Units()
	summary.ThisMonthUsage = int(units[len(units)-1])
	summary.AverageMonthlyKWh = roundTo(calculateMean(units), 1)

	summary.LatestYear = clean.Records[0].BillingYear
	for _, r := range clean.Records {
		if r.BillingYear > summary.LatestYear {
			summary.LatestYear = r.BillingYear
		}
	}
	total := 0.0
	for _, r := range clean.Records {
		if r.BillingYear == summary.LatestYear {
			total += r.UnitsKWh
		}
	}
	summary.LatestYearTotal = roundTo(total, 2)
	return summary
}
