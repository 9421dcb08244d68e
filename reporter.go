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
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// Reporter generates markdown reports from analysis results
type Reporter struct {
	logger *Logger
}

// NewReporter creates a new report generator
func NewReporter(logger *Logger) *Reporter {
	return &Reporter{
		logger: logger,
	}
}

// GenerateReport creates a markdown report from analysis results
func (r *Reporter) GenerateReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	r.Write(writer, result)

	if outputPath != "" {
		r.logger.Info("Report saved", "path", outputPath)
	}

	return nil
}

// Write renders the markdown report to w
func (r *Reporter) Write(w io.Writer, result *AnalysisResult) {
	r.writeHeader(w, result)
	r.writeSummary(w, result)
	r.writeForecast(w, result)
	r.writeTips(w, result)
	r.writeYearly(w, result)
	r.writeGraphs(w, result)
	r.writeFooter(w)
}

// writeHeader writes the report header
func (r *Reporter) writeHeader(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "# Eco Electricity Usage Report\n\n")
	fmt.Fprintf(w, "**Generated on:** %s\n\n", result.GeneratedAt.Format("2006-01-02"))
	if result.Source != "" {
		fmt.Fprintf(w, "**Source:** %s\n\n", result.Source)
	}
	fmt.Fprintf(w, "**ecobill version:** %s\n\n", GetVersion())
	fmt.Fprintf(w, "---\n\n")
}

// writeSummary writes the headline usage figures
func (r *Reporter) writeSummary(w io.Writer, result *AnalysisResult) {
	s := result.Summary
	fmt.Fprintf(w, "## 📊 Summary\n\n")
	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| ⚡ This Month Usage | %s kWh |\n", humanize.Comma(int64(s.ThisMonthUsage)))
	if s.LatestYear != 0 {
		fmt.Fprintf(w, "| 📅 Total Usage %d | %s |\n", s.LatestYear, FormatKWh(s.LatestYearTotal))
	}
	fmt.Fprintf(w, "| 📈 Average Monthly Usage | %.1f kWh |\n", s.AverageMonthlyKWh)
	fmt.Fprintf(w, "| 🧾 Bills Analysed | %d |\n", s.Rows)
	fmt.Fprintf(w, "\n")
}

// writeForecast writes the forecast section
func (r *Reporter) writeForecast(w io.Writer, result *AnalysisResult) {
	f := result.Forecast
	if f == nil {
		return
	}
	fmt.Fprintf(w, "## 📈 Forecast Summary\n\n")
	fmt.Fprintf(w, "- **Predicted Usage:** %v kWh\n", f.PredictedUsageKWh)
	fmt.Fprintf(w, "- **Predicted Bill:** %s\n", FormatCurrency(f.PredictedBill, result.CurrencySymbol))
	fmt.Fprintf(w, "- **MAE:** %v\n", f.MAEUnits)
	fmt.Fprintf(w, "- **R2 Score:** %v\n", f.R2Score)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "> Forecast for month %d at %s per kWh, scored on %d held-out bills.\n\n",
		f.NextMonth, FormatCurrency(f.RatePerUnit, result.CurrencySymbol), f.TestRows)
}

// writeTips writes the usage category and its tips
func (r *Reporter) writeTips(w io.Writer, result *AnalysisResult) {
	t := result.Tips
	if t == nil {
		return
	}
	fmt.Fprintf(w, "## 💡 Smart Tips\n\n")
	fmt.Fprintf(w, "**Usage Category:** %s\n\n", t.Category)
	for _, tip := range t.Tips {
		fmt.Fprintf(w, "- %s\n", tip)
	}
	fmt.Fprintf(w, "\n")
}

// writeYearly writes the average usage per year
func (r *Reporter) writeYearly(w io.Writer, result *AnalysisResult) {
	if result.Yearly == nil || len(result.Yearly.Averages) == 0 {
		return
	}
	fmt.Fprintf(w, "## 🗓️ Yearly Usage\n\n")
	fmt.Fprintf(w, "| Year | Months | Average Usage |\n")
	fmt.Fprintf(w, "|------|--------|---------------|\n")
	months := make(map[int]int, len(result.Yearly.Curves))
	for _, c := range result.Yearly.Curves {
		months[c.Year] = len(c.Months)
	}
	for _, avg := range result.Yearly.Averages {
		fmt.Fprintf(w, "| %d | %d | %s |\n", avg.Year, months[avg.Year], FormatKWh(roundTo(avg.Average, 2)))
	}
	fmt.Fprintf(w, "\n")
}

// writeGraphs links every chart that exists on disk
func (r *Reporter) writeGraphs(w io.Writer, result *AnalysisResult) {
	plots := existingPlots(result.YearPlots, r.logger)
	if len(plots) == 0 {
		return
	}
	fmt.Fprintf(w, "## 📊 Electricity Usage Graphs\n\n")
	for _, plot := range plots {
		fmt.Fprintf(w, "![%s](%s)\n\n", filepath.Base(plot), plot)
	}
}

// writeFooter writes the report footer
func (r *Reporter) writeFooter(w io.Writer) {
	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "*Forecasts are based on historical bills and may vary with seasonal changes, tariff adjustments and usage patterns.*\n\n")
	fmt.Fprintf(w, "*Generated by ecobill*\n")
}

// existingPlots drops plot paths that are missing on disk, logging each one
func existingPlots(paths []string, logger *Logger) []string {
	var found []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			logger.Warn("file not found", "path", p)
			continue
		}
		found = append(found, p)
	}
	return found
}
