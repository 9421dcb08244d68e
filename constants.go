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

// Bill CSV columns
const (
	ColumnBillID        = "Bill_ID"
	ColumnBillingMonth  = "Billing_Month"
	ColumnBillingYear   = "Billing_Year"
	ColumnUnitsConsumed = "Units_Consumed_kWh"
	ColumnTotalAmount   = "Total_Amount"
	ColumnPaymentStatus = "Payment_Status"
)

// BillColumns is the documented CSV layout, in order
var BillColumns = []string{
	ColumnBillID,
	ColumnBillingMonth,
	ColumnBillingYear,
	ColumnUnitsConsumed,
	ColumnTotalAmount,
	ColumnPaymentStatus,
}

// DefaultRatePerUnit is the currency charged per kWh
const DefaultRatePerUnit = 6.0

// DefaultCurrencySymbol is the symbol used in reports (Indian rupee)
const DefaultCurrencySymbol = "₹"

// Forecaster hyperparameters
const (
	forecastTestFraction = 0.3
	forecastSplitSeed    = 142
	forecastForestSeed   = 42
	forecastTrees        = 500
	forecastMinRows      = 2
)

// Classifier hyperparameters and category thresholds
const (
	tipsTreeMaxDepth = 3
	tipsTreeSeed     = 42
	lowUsageFactor   = 0.9
	highUsageFactor  = 1.1
)

// Artifact file names inside the output directory
const (
	ForecastPlotFile   = "forecast_plot.png"
	ForecastJSONFile   = "forecast.json"
	TipsTreeFile       = "tips_tree.png"
	YearComparisonFile = "year_comparison.png"
	YearAverageFile    = "year_avg.png"
)

// Usage categories
const (
	CategoryLow = iota
	CategoryMedium
	CategoryHigh
	numCategories
)

// CategoryNames maps a category index to its display name
var CategoryNames = [numCategories]string{"Low", "Medium", "High"}

// categoryTips are the fixed advice lists shown for each category
var categoryTips = [numCategories][]string{
	CategoryLow: {
		"Great job! Keep conserving energy.",
		"Turn off devices fully instead of standby.",
		"Use natural daylight whenever possible.",
		"Unplug chargers when not in use.",
		"Maintain fan efficiency by cleaning blades.",
	},
	CategoryMedium: {
		"Your usage is moderate.",
		"Switch to LED bulbs.",
		"Run appliances like washing machines only with full loads.",
		"Maintain AC at 24–26°C.",
		"Avoid peak-hour usage.",
	},
	CategoryHigh: {
		"High usage detected!",
		"Clean your AC filters regularly.",
		"Avoid unnecessary geyser/heater usage.",
		"Check for faulty or old appliances.",
		"Shift heavy appliances to off-peak hours.",
	},
}

// tipsFeatureNames label the classifier inputs in the tree rendering
var tipsFeatureNames = []string{"month_index", "usage", "usage_change"}

// missingTokens are cell values read as missing, matching common CSV exports
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"NULL": true,
	"null": true,
	"None": true,
	"#N/A": true,
}
