// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
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

// UsageRecord represents one billing period
type UsageRecord struct {
	BillID        string  `json:"Bill_ID"`
	BillingMonth  int     `json:"Billing_Month"`
	BillingYear   int     `json:"Billing_Year"`
	UnitsKWh      float64 `json:"Units_Consumed_kWh"`
	TotalAmount   float64 `json:"Total_Amount"`
	PaymentStatus string  `json:"Payment_Status"`

	// Incomplete is set when any cell of the source row was missing
	Incomplete bool `json:"-"`
}

// UsageTable holds billing records in chronological (row) order
type UsageTable struct {
	Source  string        `json:"source"`
	Columns []string      `json:"columns"`
	Records []UsageRecord `json:"records"`
}

// HasColumn reports whether the source header contained the column
func (t *UsageTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of records
func (t *UsageTable) Len() int {
	return len(t.Records)
}

// Units returns the usage series in row order
func (t *UsageTable) Units() []float64 {
	units := make([]float64, len(t.Records))
	for i, r := range t.Records {
		units[i] = r.UnitsKWh
	}
	return units
}

// RequireColumns returns a SchemaError for the first absent column
func (t *UsageTable) RequireColumns(columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return &SchemaError{Column: c, Source: t.Source}
		}
	}
	return nil
}

// ForecastResult holds the outcome of a next-month forecast
type ForecastResult struct {
	PredictedUsageKWh float64 `json:"predicted_usage_kWh"`
	PredictedBill     float64 `json:"predicted_bill_inr"`
	RatePerUnit       float64 `json:"rate_per_unit"`
	MAEUnits          float64 `json:"mae_units"`
	R2Score           float64 `json:"r2_score"`
	NextMonth         int     `json:"next_month"`
	TrainRows         int     `json:"train_rows"`
	TestRows          int     `json:"test_rows"`
	PlotPath          string  `json:"plot_path,omitempty"`
	MetricsPath       string  `json:"metrics_path,omitempty"`
}

// ForecastRow is a cleaned record with its cyclical month features
type ForecastRow struct {
	UsageRecord
	SinMonth float64 `json:"sin_month"`
	CosMonth float64 `json:"cos_month"`
}

// ForecastDocument is the metrics/history file written after each forecast
type ForecastDocument struct {
	PreviousMonths    []ForecastRow `json:"previous_months"`
	PredictedUsageKWh float64       `json:"predicted_usage_kWh"`
	PredictedBill     float64       `json:"predicted_bill_inr"`
	RatePerUnit       float64       `json:"rate_per_unit"`
	MAEUnits          float64       `json:"mae_units"`
	R2Score           float64       `json:"r2_score"`
}

// TipsResult holds the predicted usage category and its advice
type TipsResult struct {
	PredictedClass int      `json:"predicted_class"`
	Category       string   `json:"category"`
	Tips           []string `json:"tips"`
	// RuleClass is the threshold-rule category of the latest row, kept for comparison
	RuleClass int    `json:"rule_class"`
	TreePath  string `json:"tree_path,omitempty"`
}

// YearCurve is one year's usage by month
type YearCurve struct {
	Year   int       `json:"year"`
	Months []int     `json:"months"`
	Units  []float64 `json:"units"`
}

// YearAverage is one year's mean monthly usage
type YearAverage struct {
	Year    int     `json:"year"`
	Average float64 `json:"average"`
}

// YearlyAggregate holds both per-year series
type YearlyAggregate struct {
	Curves   []YearCurve   `json:"curves"`
	Averages []YearAverage `json:"averages"`
}

// UsageSummary holds headline figures for the latest data
type UsageSummary struct {
	ThisMonthUsage    int     `json:"thisMonthUsage"`
	LatestYear        int     `json:"latestYear"`
	LatestYearTotal   float64 `json:"latestYearTotal"`
	AverageMonthlyKWh float64 `json:"averageMonthlyKWh"`
	Rows              int     `json:"rows"`
}

// AnalysisResult holds the complete analysis output
type AnalysisResult struct {
	GeneratedAt    time.Time        `json:"generatedAt"`
	Source         string           `json:"source"`
	CurrencySymbol string           `json:"currencySymbol"`
	Summary        UsageSummary     `json:"summary"`
	Forecast       *ForecastResult  `json:"forecast"`
	Tips           *TipsResult      `json:"tips"`
	Yearly         *YearlyAggregate `json:"yearly"`
	// YearPlots are the comparison and average chart paths, in that order
	YearPlots []string `json:"yearPlots"`
}

// Dataset describes a table imported into the ledger
type Dataset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ImportedAt time.Time `json:"importedAt"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
}
