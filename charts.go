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
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"

	charts "github.com/vicanso/go-charts/v2"
	"github.com/wcharczuk/go-chart/v2"
)

// ChartGenerator renders the forecast and yearly charts as PNG images
type ChartGenerator struct {
	theme string
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		theme: "light",
	}
}

// ForecastChartData is what the forecast chart plots
type ForecastChartData struct {
	Months    []int
	Actual    []float64
	Fitted    []float64
	NextMonth int
	Predicted float64
}

// GenerateForecastChart draws actual usage, the forest's fit and the next-month point.
// Rows sharing a billing month are averaged so the lines follow the seasonal profile.
func (cg *ChartGenerator) GenerateForecastChart(data ForecastChartData) ([]byte, error) {
	if len(data.Months) == 0 {
		return nil, fmt.Errorf("no forecast data to plot")
	}

	months, actual := meanByMonth(data.Months, data.Actual)
	_, fitted := meanByMonth(data.Months, data.Fitted)

	all := append(append(append([]float64{}, actual...), fitted...), data.Predicted)

	graph := chart.Chart{
		Title:  "Electricity Usage Forecast (Random Forest Seasonal)",
		Width:  800,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: monthAxis("Billing Month"),
		YAxis: chart.YAxis{
			Name:  "Usage (kWh)",
			Range: paddedRange(all),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Actual",
				XValues: months,
				YValues: actual,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
			chart.ContinuousSeries{
				Name:    "RF Seasonal Fit",
				XValues: months,
				YValues: fitted,
				Style: chart.Style{
					StrokeColor: chart.ColorOrange,
					StrokeWidth: 2,
				},
			},
			chart.ContinuousSeries{
				Name:    "Next Forecast",
				XValues: []float64{float64(data.NextMonth)},
				YValues: []float64{data.Predicted},
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotColor:    chart.ColorRed,
					DotWidth:    8,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render forecast chart: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateYearComparisonChart draws one usage line per year across the calendar months
func (cg *ChartGenerator) GenerateYearComparisonChart(curves []YearCurve) ([]byte, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("no yearly data to plot")
	}

	var all []float64
	series := make([]chart.Series, 0, len(curves))
	for i, curve := range curves {
		xs := make([]float64, len(curve.Months))
		for j, m := range curve.Months {
			xs[j] = float64(m)
		}
		all = append(all, curve.Units...)

		color := chart.GetDefaultColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    strconv.Itoa(curve.Year),
			XValues: xs,
			YValues: curve.Units,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    4,
			},
		})
	}

	graph := chart.Chart{
		Title:  "Year-over-Year Electricity Usage Comparison",
		Width:  900,
		Height: 500,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: monthAxis("Month"),
		YAxis: chart.YAxis{
			Name:  "Usage (kWh)",
			Range: paddedRange(all),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render year comparison chart: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateYearAverageChart draws mean monthly usage per year as bars
func (cg *ChartGenerator) GenerateYearAverageChart(averages []YearAverage) ([]byte, error) {
	if len(averages) == 0 {
		return nil, fmt.Errorf("no yearly data to plot")
	}

	labels := make([]string, len(averages))
	values := make([]float64, len(averages))
	for i, avg := range averages {
		labels[i] = strconv.Itoa(avg.Year)
		values[i] = avg.Average
	}

	p, err := charts.BarRender(
		[][]float64{values},
		charts.TitleTextOptionFunc("Average Electricity Usage Per Year"),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Average kWh"}, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(700),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render year average chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// meanByMonth averages values sharing a month and returns them in calendar order
func meanByMonth(months []int, values []float64) ([]float64, []float64) {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i, m := range months {
		sums[m] += values[i]
		counts[m]++
	}

	keys := make([]int, 0, len(sums))
	for m := range sums {
		keys = append(keys, m)
	}
	sort.Ints(keys)

	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	for i, m := range keys {
		xs[i] = float64(m)
		ys[i] = sums[m] / float64(counts[m])
	}
	return xs, ys
}

// monthAxis is an X axis fixed to the twelve calendar months
func monthAxis(name string) chart.XAxis {
	ticks := make([]chart.Tick, 12)
	for m := 1; m <= 12; m++ {
		ticks[m-1] = chart.Tick{Value: float64(m), Label: strconv.Itoa(m)}
	}
	return chart.XAxis{
		Name:  name,
		Range: &chart.ContinuousRange{Min: 0.5, Max: 12.5},
		Ticks: ticks,
	}
}

// paddedRange spans values with 10% headroom, and never collapses to zero width
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) {
		lo, hi = 0, 1
	}

	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(1, math.Abs(hi)*0.1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// getTheme returns the chart theme name
func (cg *ChartGenerator) getTheme() string {
	return cg.theme
}
