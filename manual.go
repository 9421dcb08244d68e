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
)

// DelegateThreshold is the number of positive values from which manual input
// is forecast with the full model
const DelegateThreshold = 6

// Regime is the prediction strategy chosen for manual input
type Regime int

const (
	CarryForward Regime = iota
	LinearTrend
	DelegatedForecast
)

func (r Regime) String() string {
	switch r {
	case CarryForward:
		return "carry_forward"
	case LinearTrend:
		return "linear_trend"
	case DelegatedForecast:
		return "delegated_forecast"
	default:
		return fmt.Sprintf("regime(%d)", int(r))
	}
}

// MarshalText encodes the regime by name
func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ManualResult is the prediction made from manually entered values
type ManualResult struct {
	Regime            Regime          `json:"regime"`
	Values            []float64       `json:"values"`
	PredictedUsageKWh float64         `json:"predicted_usage_kWh"`
	PredictedBill     float64         `json:"predicted_bill_inr"`
	Forecast          *ForecastResult `json:"forecast,omitempty"`
}

// SelectRegime picks the strategy for n positive values
func SelectRegime(n int) (Regime, error) {
	switch {
	case n <= 0:
		return 0, &InsufficientDataError{Have: n, Need: 1, Message: "enter at least one usage value greater than zero"}
	case n == 1:
		return CarryForward, nil
	case n < DelegateThreshold:
		return LinearTrend, nil
	default:
		return DelegatedForecast, nil
	}
}

// positiveValues keeps the values greater than zero, in order
func positiveValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

// ManualTable builds a bill table from consecutive monthly values starting in
// January of startYear
func ManualTable(values []float64, startYear int, rate float64) *UsageTable {
	table := &UsageTable{
		Source:  "manual entry",
		Columns: append([]string(nil), BillColumns...),
		Records: make([]UsageRecord, len(values)),
	}
	for i, v := range values {
		table.Records[i] = UsageRecord{
			BillID:        fmt.Sprintf("MANUAL-%d", i),
			BillingMonth:  i%12 + 1,
			BillingYear:   startYear + i/12,
			UnitsKWh:      v,
			TotalAmount:   CalculateBill(v, rate),
			PaymentStatus: "Manual",
		}
	}
	return table
}

// ManualPredictor turns a short list of monthly readings into a forecast
type ManualPredictor struct {
	forecaster *Forecaster
	startYear  int
	logger     *Logger
}

// NewManualPredictor creates a predictor that delegates long inputs to forecaster
func NewManualPredictor(forecaster *Forecaster, startYear int, logger *Logger) *ManualPredictor {
	return &ManualPredictor{
		forecaster: forecaster,
		startYear:  startYear,
		logger:     logger.WithComponent("manual"),
	}
}

// Predict selects a regime from the positive values and predicts next month's usage and bill
func (m *ManualPredictor) Predict(values []float64, rate float64) (*ManualResult, error) {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, &ValidationError{Field: "value", Value: fmt.Sprint(v), Message: "not a finite number"}
		}
	}

	kept := positiveValues(values)
	if dropped := len(values) - len(kept); dropped > 0 {
		m.logger.Debug("Ignoring non-positive manual values", "dropped", dropped)
	}

	regime, err := SelectRegime(len(kept))
	if err != nil {
		return nil, err
	}

	result := &ManualResult{Regime: regime, Values: kept}
	switch regime {
	case CarryForward:
		result.PredictedUsageKWh = kept[0]
	case LinearTrend:
		last, prev := kept[len(kept)-1], kept[len(kept)-2]
		result.PredictedUsageKWh = roundTo(last+(last-prev), 2)
	case DelegatedForecast:
		forecast, err := m.forecaster.Forecast(ManualTable(kept, m.startYear, rate), rate)
		if err != nil {
			return nil, err
		}
		result.Forecast = forecast
		result.PredictedUsageKWh = forecast.PredictedUsageKWh
	}
	if result.Forecast != nil {
		result.PredictedBill = result.Forecast.PredictedBill
	} else {
		result.PredictedBill = CalculateBill(result.PredictedUsageKWh, rate)
	}

	m.logger.Info("Manual prediction complete",
		"regime", regime.String(),
		"values", len(kept),
		"predicted_kwh", result.PredictedUsageKWh,
	)
	return result, nil
}
