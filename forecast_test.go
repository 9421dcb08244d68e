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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForecaster(t *testing.T) (*Forecaster, *ArtifactStore) {
	t.Helper()
	store := newTestStore(t)
	return NewForecaster(store, 0, NewDiscardLogger()), store
}

func TestMonthFeatures(t *testing.T) {
	december := monthFeatures(12)
	assert.InDelta(t, 0, december[0], 1e-12)
	assert.InDelta(t, 1, december[1], 1e-12)

	march := monthFeatures(3)
	assert.InDelta(t, 1, march[0], 1e-12)
	assert.InDelta(t, 0, march[1], 1e-12)
}

func TestNextMonth(t *testing.T) {
	assert.Equal(t, 1, nextMonth(12))
	assert.Equal(t, 6, nextMonth(5))
	assert.Equal(t, 2, nextMonth(1))
}

func TestForecast(t *testing.T) {
	forecaster, store := newTestForecaster(t)
	table := monthlyTable(seasonalUsage(24), 1, 2022)

	result, err := forecaster.Forecast(table, DefaultRatePerUnit)
	require.NoError(t, err)

	assert.Equal(t, 1, result.NextMonth)
	assert.Equal(t, 16, result.TrainRows)
	assert.Equal(t, 8, result.TestRows)
	assert.Equal(t, DefaultRatePerUnit, result.RatePerUnit)
	assert.Greater(t, result.PredictedUsageKWh, 0.0)
	assert.InDelta(t, result.PredictedUsageKWh*DefaultRatePerUnit, result.PredictedBill, 0.05)
	assert.LessOrEqual(t, result.R2Score, 1.0)
	assert.GreaterOrEqual(t, result.MAEUnits, 0.0)

	assert.Equal(t, roundTo(result.PredictedUsageKWh, 2), result.PredictedUsageKWh)
	assert.Equal(t, roundTo(result.R2Score, 4), result.R2Score)

	assert.FileExists(t, result.PlotPath)
	assert.Equal(t, store.Path(ForecastPlotFile), result.PlotPath)

	var doc ForecastDocument
	require.NoError(t, store.LoadJSON(ForecastJSONFile, &doc))
	require.Len(t, doc.PreviousMonths, 24)
	assert.Equal(t, result.PredictedUsageKWh, doc.PredictedUsageKWh)
	assert.Equal(t, result.PredictedBill, doc.PredictedBill)
	assert.Equal(t, result.MAEUnits, doc.MAEUnits)
	assert.Equal(t, result.R2Score, doc.R2Score)

	first := doc.PreviousMonths[0]
	assert.Equal(t, 1, first.BillingMonth)
	assert.InDelta(t, math.Sin(2*math.Pi/12), first.SinMonth, 1e-12)
	assert.InDelta(t, math.Cos(2*math.Pi/12), first.CosMonth, 1e-12)
}

func TestForecastDeterministic(t *testing.T) {
	table := monthlyTable(seasonalUsage(30), 4, 2021)

	f1, _ := newTestForecaster(t)
	first, err := f1.Forecast(table, 6)
	require.NoError(t, err)

	f2, _ := newTestForecaster(t)
	second, err := f2.Forecast(table, 6)
	require.NoError(t, err)

	assert.Equal(t, first.PredictedUsageKWh, second.PredictedUsageKWh)
	assert.Equal(t, first.PredictedBill, second.PredictedBill)
	assert.Equal(t, first.MAEUnits, second.MAEUnits)
	assert.Equal(t, first.R2Score, second.R2Score)
	assert.Equal(t, nextMonth(monthlyTable(seasonalUsage(30), 4, 2021).Records[29].BillingMonth), first.NextMonth)
}

func TestForecastTwoRows(t *testing.T) {
	forecaster, _ := newTestForecaster(t)

	result, err := forecaster.Forecast(monthlyTable([]float64{100, 120}, 11, 2023), 6)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TrainRows)
	assert.Equal(t, 1, result.TestRows)
	assert.Equal(t, 1, result.NextMonth)
	assert.Equal(t, 0.0, result.R2Score, "undefined for a single held-out row")
}

func TestForecastConstantUsage(t *testing.T) {
	forecaster, _ := newTestForecaster(t)
	units := make([]float64, 12)
	for i := range units {
		units[i] = 300
	}

	result, err := forecaster.Forecast(monthlyTable(units, 1, 2023), 6)
	require.NoError(t, err)
	assert.Equal(t, 300.0, result.PredictedUsageKWh)
	assert.Equal(t, 1800.0, result.PredictedBill)
	assert.Equal(t, 0.0, result.MAEUnits)
	assert.Equal(t, 1.0, result.R2Score)
}

func TestForecastErrors(t *testing.T) {
	forecaster, _ := newTestForecaster(t)

	t.Run("missing usage column", func(t *testing.T) {
		table := monthlyTable([]float64{1, 2, 3}, 1, 2023)
		table.Columns = []string{ColumnBillID, ColumnBillingMonth, ColumnBillingYear}
		_, err := forecaster.Forecast(table, 6)
		var schemaErr *SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, ColumnUnitsConsumed, schemaErr.Column)
	})

	t.Run("missing month column", func(t *testing.T) {
		table := monthlyTable([]float64{1, 2, 3}, 1, 2023)
		table.Columns = []string{ColumnUnitsConsumed}
		_, err := forecaster.Forecast(table, 6)
		var schemaErr *SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, ColumnBillingMonth, schemaErr.Column)
	})

	t.Run("single row", func(t *testing.T) {
		_, err := forecaster.Forecast(monthlyTable([]float64{100}, 1, 2023), 6)
		var dataErr *DataError
		assert.True(t, errors.As(err, &dataErr))
	})

	t.Run("incomplete rows are dropped first", func(t *testing.T) {
		table := monthlyTable([]float64{100, 110}, 1, 2023)
		table.Records[1].Incomplete = true
		_, err := forecaster.Forecast(table, 6)
		var dataErr *DataError
		assert.True(t, errors.As(err, &dataErr))
	})
}
