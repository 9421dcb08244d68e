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
	"sort"
)

// groupByYear collects records per year, with years ascending
func groupByYear(records []UsageRecord) ([]int, map[int][]UsageRecord) {
	byYear := make(map[int][]UsageRecord)
	for _, r := range records {
		byYear[r.BillingYear] = append(byYear[r.BillingYear], r)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, byYear
}

// CompareByYear returns one usage curve per year, with months ascending
func CompareByYear(table *UsageTable) ([]YearCurve, error) {
	if err := table.RequireColumns(ColumnBillingYear, ColumnBillingMonth, ColumnUnitsConsumed); err != nil {
		return nil, err
	}

	years, byYear := groupByYear(CleanTable(table).Records)
	curves := make([]YearCurve, 0, len(years))
	for _, year := range years {
		records := byYear[year]
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].BillingMonth < records[j].BillingMonth
		})

		curve := YearCurve{
			Year:   year,
			Months: make([]int, len(records)),
			Units:  make([]float64, len(records)),
		}
		for i, r := range records {
			curve.Months[i] = r.BillingMonth
			curve.Units[i] = r.UnitsKWh
		}
		curves = append(curves, curve)
	}
	return curves, nil
}

// AverageByYear returns the mean monthly usage of each year, years ascending
func AverageByYear(table *UsageTable) ([]YearAverage, error) {
	if err := table.RequireColumns(ColumnBillingYear, ColumnUnitsConsumed); err != nil {
		return nil, err
	}

	years, byYear := groupByYear(CleanTable(table).Records)
	averages := make([]YearAverage, 0, len(years))
	for _, year := range years {
		records := byYear[year]
		units := make([]float64, len(records))
		for i, r := range records {
			units[i] = r.UnitsKWh
		}
		averages = append(averages, YearAverage{Year: year, Average: calculateMean(units)})
	}
	return averages, nil
}

// YearlyPlotter renders the per-year charts
type YearlyPlotter struct {
	store  *ArtifactStore
	charts *ChartGenerator
	logger *Logger
}

// NewYearlyPlotter creates a plotter writing into store
func NewYearlyPlotter(store *ArtifactStore, logger *Logger) *YearlyPlotter {
	return &YearlyPlotter{
		store:  store,
		charts: NewChartGenerator(),
		logger: logger.WithComponent("yearly"),
	}
}

// Aggregate computes both per-year series
func (p *YearlyPlotter) Aggregate(table *UsageTable) (*YearlyAggregate, error) {
	curves, err := CompareByYear(table)
	if err != nil {
		return nil, err
	}
	averages, err := AverageByYear(table)
	if err != nil {
		return nil, err
	}
	return &YearlyAggregate{Curves: curves, Averages: averages}, nil
}

// PlotYearComparison writes the year-over-year line chart and returns its path
func (p *YearlyPlotter) PlotYearComparison(curves []YearCurve) (string, error) {
	image, err := p.charts.GenerateYearComparisonChart(curves)
	if err != nil {
		return "", err
	}
	path, err := p.store.WriteFile(YearComparisonFile, image)
	if err != nil {
		return "", err
	}
	p.logger.LogArtifact("year_comparison", path)
	return path, nil
}

// PlotYearAverages writes the yearly average bar chart and returns its path
func (p *YearlyPlotter) PlotYearAverages(averages []YearAverage) (string, error) {
	image, err := p.charts.GenerateYearAverageChart(averages)
	if err != nil {
		return "", err
	}
	path, err := p.store.WriteFile(YearAverageFile, image)
	if err != nil {
		return "", err
	}
	p.logger.LogArtifact("year_average", path)
	return path, nil
}

// Plot writes both charts and returns their paths, comparison first
func (p *YearlyPlotter) Plot(agg *YearlyAggregate) ([]string, error) {
	comparison, err := p.PlotYearComparison(agg.Curves)
	if err != nil {
		return nil, err
	}
	average, err := p.PlotYearAverages(agg.Averages)
	if err != nil {
		return nil, err
	}
	return []string{comparison, average}, nil
}
