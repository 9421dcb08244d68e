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
	"time"
)

// Forecaster predicts next month's usage with a seasonal random forest
type Forecaster struct {
	store   *ArtifactStore
	charts  *ChartGenerator
	workers int
	logger  *Logger
}

// NewForecaster creates a forecaster writing its plot and metrics to store
func NewForecaster(store *ArtifactStore, workers int, logger *Logger) *Forecaster {
	return &Forecaster{
		store:   store,
		charts:  NewChartGenerator(),
		workers: workers,
		logger:  logger.WithComponent("forecaster"),
	}
}

// monthFeatures encodes a billing month on the unit circle
func monthFeatures(month int) []float64 {
	angle := 2 * math.Pi * float64(month) / 12
	return []float64{math.Sin(angle), math.Cos(angle)}
}

// nextMonth returns the calendar month after month, wrapping December to January
func nextMonth(month int) int {
	return month%12 + 1
}

// Forecast fits the forest on a 70/30 split of the cleaned table, scores it on
// the held-out rows and predicts the month after the last row
func (f *Forecaster) Forecast(table *UsageTable, rate float64) (*ForecastResult, error) {
	if err := table.RequireColumns(ColumnUnitsConsumed, ColumnBillingMonth); err != nil {
		return nil, err
	}

	clean := CleanTable(table)
	n := clean.Len()
	if n < forecastMinRows {
		return nil, &DataError{
			DataType: "forecast",
			Message:  fmt.Sprintf("need at least %d complete rows, have %d", forecastMinRows, n),
		}
	}

	rows := make([]ForecastRow, n)
	x := make([][]float64, n)
	y := clean.Units()
	for i, r := range clean.Records {
		x[i] = monthFeatures(r.BillingMonth)
		rows[i] = ForecastRow{UsageRecord: r, SinMonth: x[i][0], CosMonth: x[i][1]}
	}

	train, test, err := trainTestSplit(n, forecastTestFraction, forecastSplitSeed)
	if err != nil {
		return nil, err
	}

	forest := NewRandomForestRegressor(forecastTrees, forecastForestSeed, f.workers)
	start := time.Now()
	if err := forest.Fit(pick(x, train), pick(y, train)); err != nil {
		return nil, fmt.Errorf("failed to fit forecast model: %w", err)
	}
	f.logger.LogModelFit("random_forest", len(train), time.Since(start))

	actual := pick(y, test)
	predicted := forest.PredictAll(pick(x, test))
	mae := meanAbsoluteError(actual, predicted)
	r2, ok := r2Score(actual, predicted)
	if !ok {
		f.logger.Warn("R² undefined for fewer than two held-out rows, reporting 0", "test_rows", len(test))
	}

	next := nextMonth(clean.Records[n-1].BillingMonth)
	usage := forest.Predict(monthFeatures(next))

	result := &ForecastResult{
		PredictedUsageKWh: roundTo(usage, 2),
		PredictedBill:     CalculateBill(usage, rate),
		RatePerUnit:       rate,
		MAEUnits:          roundTo(mae, 2),
		R2Score:           roundTo(r2, 4),
		NextMonth:         next,
		TrainRows:         len(train),
		TestRows:          len(test),
	}

	months := make([]int, n)
	for i, r := range clean.Records {
		months[i] = r.BillingMonth
	}
	plot, err := f.charts.GenerateForecastChart(ForecastChartData{
		Months:    months,
		Actual:    y,
		Fitted:    forest.PredictAll(x),
		NextMonth: next,
		Predicted: usage,
	})
	if err != nil {
		return nil, err
	}
	if result.PlotPath, err = f.store.WriteFile(ForecastPlotFile, plot); err != nil {
		return nil, err
	}
	f.logger.LogArtifact("forecast_plot", result.PlotPath)

	doc := ForecastDocument{
		PreviousMonths:    rows,
		PredictedUsageKWh: result.PredictedUsageKWh,
		PredictedBill:     result.PredictedBill,
		RatePerUnit:       result.RatePerUnit,
		MAEUnits:          result.MAEUnits,
		R2Score:           result.R2Score,
	}
	if result.MetricsPath, err = f.store.SaveJSON(ForecastJSONFile, doc); err != nil {
		return nil, err
	}
	f.logger.LogArtifact("forecast_metrics", result.MetricsPath)

	f.logger.Info("Forecast complete",
		"next_month", next,
		"predicted_kwh", result.PredictedUsageKWh,
		"predicted_bill", result.PredictedBill,
		"mae", result.MAEUnits,
		"r2", result.R2Score,
	)
	return result, nil
}
