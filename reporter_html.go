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
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// HTMLReporter generates HTML reports from analysis results
type HTMLReporter struct {
	logger *Logger
}

// NewHTMLReporter creates a new HTML report generator
func NewHTMLReporter(logger *Logger) *HTMLReporter {
	return &HTMLReporter{
		logger: logger,
	}
}

// GenerateHTMLReport generates an HTML report
func (r *HTMLReporter) GenerateHTMLReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating HTML report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create HTML report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	r.Write(writer, result)

	if outputPath != "" {
		r.logger.Info("HTML report saved", "path", outputPath)
	}

	return nil
}

// Write renders the HTML report to w with every chart embedded
func (r *HTMLReporter) Write(w io.Writer, result *AnalysisResult) {
	r.writeHTMLHeader(w, result)
	r.writeHTMLSummary(w, result)
	r.writeHTMLForecast(w, result)
	r.writeHTMLTips(w, result)
	r.writeHTMLYearly(w, result)
	r.writeHTMLGraphs(w, result)
	r.writeHTMLFooter(w)
}

func (r *HTMLReporter) writeHTMLHeader(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Eco Electricity Usage Report</title>
    <style>
        :root {
            --primary-color: #2E7D32;
            --secondary-color: #00A6A6;
            --warning-color: #F5A623;
            --danger-color: #E53935;
            --bg-color: #F4F7F4;
            --card-bg: #FFFFFF;
            --text-color: #1B2A1E;
            --text-muted: #5F6F64;
            --border-color: #DCE5DD;
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            background: var(--bg-color);
            color: var(--text-color);
            line-height: 1.6;
            padding: 20px;
        }

        .container {
            max-width: 1100px;
            margin: 0 auto;
        }

        header {
            background: linear-gradient(135deg, var(--primary-color), var(--secondary-color));
            color: white;
            padding: 40px;
            border-radius: 16px;
            margin-bottom: 30px;
        }

        h1 {
            font-size: 2.5em;
            margin-bottom: 10px;
            font-weight: 700;
        }

        .subtitle {
            color: rgba(255, 255, 255, 0.9);
            font-size: 1.1em;
        }

        .card {
            background: var(--card-bg);
            border-radius: 12px;
            padding: 30px;
            margin-bottom: 30px;
            border: 1px solid var(--border-color);
        }

        h2 {
            color: var(--primary-color);
            margin-bottom: 20px;
            font-size: 1.8em;
            border-bottom: 2px solid var(--border-color);
            padding-bottom: 10px;
        }

        table {
            width: 100%%;
            border-collapse: collapse;
            margin: 20px 0;
        }

        th, td {
            padding: 12px;
            text-align: left;
            border-bottom: 1px solid var(--border-color);
        }

        th {
            background: rgba(46, 125, 50, 0.08);
            color: var(--primary-color);
            font-weight: 600;
        }

        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }

        .metric-card {
            background: rgba(46, 125, 50, 0.05);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 20px;
            text-align: center;
        }

        .metric-value {
            font-size: 2em;
            font-weight: bold;
            color: var(--secondary-color);
            margin: 10px 0;
        }

        .metric-label {
            color: var(--text-muted);
            font-size: 0.9em;
        }

        .badge {
            display: inline-block;
            padding: 6px 12px;
            border-radius: 20px;
            font-size: 0.85em;
            font-weight: 600;
            color: white;
        }

        .badge-Low {
            background: var(--primary-color);
        }

        .badge-Medium {
            background: var(--warning-color);
        }

        .badge-High {
            background: var(--danger-color);
        }

        .tips li {
            margin: 8px 0 8px 20px;
        }

        .graph img {
            max-width: 100%%;
            border: 1px solid var(--border-color);
            border-radius: 8px;
            margin: 10px 0;
        }

        footer {
            text-align: center;
            padding: 30px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
            margin-top: 40px;
        }

        @media print {
            .card {
                break-inside: avoid;
            }
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>⚡ Eco Electricity Usage Report</h1>
            <div class="subtitle">Generated on: %s</div>
            <div class="subtitle">Source: %s</div>
            <div class="subtitle" style="opacity: 0.7; font-size: 0.9em; margin-top: 10px;">ecobill %s</div>
        </header>
`,
		result.GeneratedAt.Format("Monday, 2 January 2006"),
		html.EscapeString(result.Source),
		GetVersion(),
	)
}

func (r *HTMLReporter) writeHTMLSummary(w io.Writer, result *AnalysisResult) {
	s := result.Summary
	fmt.Fprintf(w, `
        <div class="card">
            <h2>📊 Summary</h2>
            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-label">This Month Usage</div>
                    <div class="metric-value">%s kWh</div>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Total Usage %d</div>
                    <div class="metric-value">%s</div>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Average Monthly Usage</div>
                    <div class="metric-value">%.1f kWh</div>
                </div>
            </div>
        </div>
`,
		humanize.Comma(int64(s.ThisMonthUsage)),
		s.LatestYear,
		FormatKWh(s.LatestYearTotal),
		s.AverageMonthlyKWh,
	)
}

func (r *HTMLReporter) writeHTMLForecast(w io.Writer, result *AnalysisResult) {
	f := result.Forecast
	if f == nil {
		return
	}
	fmt.Fprintf(w, `
        <div class="card">
            <h2>📈 Forecast Summary</h2>
            <table>
                <tbody>
                    <tr><td>Predicted Usage</td><td>%v kWh</td></tr>
                    <tr><td>Predicted Bill</td><td>%s</td></tr>
                    <tr><td>MAE</td><td>%v</td></tr>
                    <tr><td>R2 Score</td><td>%v</td></tr>
                    <tr><td>Forecast Month</td><td>%d</td></tr>
                </tbody>
            </table>
        </div>
`,
		f.PredictedUsageKWh,
		html.EscapeString(FormatCurrency(f.PredictedBill, result.CurrencySymbol)),
		f.MAEUnits,
		f.R2Score,
		f.NextMonth,
	)
}

func (r *HTMLReporter) writeHTMLTips(w io.Writer, result *AnalysisResult) {
	t := result.Tips
	if t == nil {
		return
	}
	fmt.Fprintf(w, `
        <div class="card">
            <h2>💡 Smart Tips</h2>
            <p>Usage Category: <span class="badge badge-%s">%s</span></p>
            <ul class="tips">
`, t.Category, html.EscapeString(t.Category))
	for _, tip := range t.Tips {
		fmt.Fprintf(w, "                <li>%s</li>\n", html.EscapeString(tip))
	}
	fmt.Fprintf(w, `            </ul>
        </div>
`)
}

func (r *HTMLReporter) writeHTMLYearly(w io.Writer, result *AnalysisResult) {
	if result.Yearly == nil || len(result.Yearly.Averages) == 0 {
		return
	}
	fmt.Fprintf(w, `
        <div class="card">
            <h2>🗓️ Yearly Usage</h2>
            <table>
                <thead>
                    <tr>
                        <th>Year</th>
                        <th>Average Usage</th>
                    </tr>
                </thead>
                <tbody>
`)
	for _, avg := range result.Yearly.Averages {
		fmt.Fprintf(w, "                    <tr><td>%d</td><td>%s</td></tr>\n", avg.Year, FormatKWh(roundTo(avg.Average, 2)))
	}
	fmt.Fprintf(w, `                </tbody>
            </table>
        </div>
`)
}

// writeHTMLGraphs embeds each chart as a base64 PNG
func (r *HTMLReporter) writeHTMLGraphs(w io.Writer, result *AnalysisResult) {
	plots := existingPlots(result.YearPlots, r.logger)
	if len(plots) == 0 {
		return
	}

	fmt.Fprintf(w, `
        <div class="card graph">
            <h2>📊 Electricity Usage Graphs</h2>
`)
	for _, plot := range plots {
		data, err := os.ReadFile(plot)
		if err != nil {
			r.logger.Warn("Failed to read chart", "path", plot, "error", err)
			continue
		}
		fmt.Fprintf(w, "            <img alt=\"%s\" src=\"data:image/png;base64,%s\">\n",
			html.EscapeString(filepath.Base(plot)),
			base64.StdEncoding.EncodeToString(data),
		)
	}
	fmt.Fprintf(w, `        </div>
`)
}

func (r *HTMLReporter) writeHTMLFooter(w io.Writer) {
	fmt.Fprintf(w, `
        <footer>
            <p>Forecasts are based on historical bills and may vary with seasonal changes, tariff adjustments and usage patterns.</p>
            <p>Generated by ecobill</p>
        </footer>
    </div>
</body>
</html>
`)
}
