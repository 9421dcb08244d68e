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
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// sourceFlags selects the usage table a command reads
type sourceFlags struct {
	csvPath string
	dataset string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.csvPath, "csv", "", "bill CSV to analyse")
	cmd.Flags().StringVar(&s.dataset, "dataset", "", `imported dataset id, or "latest"`)
	cmd.MarkFlagsMutuallyExclusive("csv", "dataset")
}

// load reads the selected table. With neither flag set the latest imported dataset is used.
func (s *sourceFlags) load(a *app) (*UsageTable, error) {
	if s.csvPath != "" {
		return NewCollector(nil, a.logger).CollectCSV(s.csvPath)
	}

	ledger, err := a.openLedger()
	if err != nil {
		return nil, err
	}
	defer ledger.Close()

	id := s.dataset
	if id == "" || id == "latest" {
		latest, err := ledger.LatestDataset()
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, &ValidationError{Field: "source", Message: "no --csv given and the ledger has no datasets; run import first"}
		}
		id = latest.ID
	}
	return NewCollector(ledger, a.logger).CollectDataset(id)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var (
	forecastSource sourceFlags
	forecastJSON   bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast next month's usage and bill",
	Long:  `Fits a seasonal random forest on the bill history and predicts the month after the last bill. Writes forecast_plot.png and forecast.json to the output directory.`,
	Args:  cobra.NoArgs,
	RunE:  runForecast,
}

func runForecast(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	table, err := forecastSource.load(a)
	if err != nil {
		return err
	}
	analyzer, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	result, err := analyzer.Forecast(table)
	if err != nil {
		return err
	}
	if forecastJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Forecast for month %d\n", result.NextMonth)
	fmt.Fprintf(out, "  Predicted usage: %s\n", FormatKWh(result.PredictedUsageKWh))
	fmt.Fprintf(out, "  Predicted bill:  %s\n", FormatCurrency(result.PredictedBill, a.config.CurrencySymbol))
	fmt.Fprintf(out, "  MAE:             %v kWh\n", result.MAEUnits)
	fmt.Fprintf(out, "  R2 score:        %v\n", result.R2Score)
	fmt.Fprintf(out, "  Plot:            %s\n", result.PlotPath)
	return nil
}

var (
	tipsSource sourceFlags
	tipsJSON   bool
)

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Classify current usage and show saving tips",
	Args:  cobra.NoArgs,
	RunE:  runTips,
}

func runTips(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	table, err := tipsSource.load(a)
	if err != nil {
		return err
	}
	analyzer, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	result, err := analyzer.Tips(table)
	if err != nil {
		return err
	}
	if tipsJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage category: %s\n", result.Category)
	for _, tip := range result.Tips {
		fmt.Fprintf(out, "  - %s\n", tip)
	}
	return nil
}

var (
	yearlySource sourceFlags
	yearlyJSON   bool
)

var yearlyCmd = &cobra.Command{
	Use:   "yearly",
	Short: "Compare usage across years",
	Long:  `Aggregates usage per year and writes year_comparison.png and year_avg.png to the output directory.`,
	Args:  cobra.NoArgs,
	RunE:  runYearly,
}

func runYearly(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	table, err := yearlySource.load(a)
	if err != nil {
		return err
	}
	analyzer, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	agg, plots, err := analyzer.Yearly(table)
	if err != nil {
		return err
	}
	if yearlyJSON {
		return printJSON(cmd.OutOrStdout(), agg)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-6s  %8s  %14s\n", "Year", "Months", "Average")
	months := make(map[int]int, len(agg.Curves))
	for _, c := range agg.Curves {
		months[c.Year] = len(c.Months)
	}
	for _, avg := range agg.Averages {
		fmt.Fprintf(out, "%-6d  %8d  %14s\n", avg.Year, months[avg.Year], FormatKWh(roundTo(avg.Average, 2)))
	}
	for _, p := range plots {
		fmt.Fprintf(out, "Plot: %s\n", p)
	}
	return nil
}

var manualJSON bool

var manualCmd = &cobra.Command{
	Use:   "manual VALUE...",
	Short: "Predict next month from manually entered kWh values",
	Long: `Predicts next month's usage from monthly readings given oldest first, as
separate arguments or comma separated. Values of zero or less are ignored.
One value is carried forward, two to five are extrapolated linearly and six
or more are forecast with the full model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runManual,
}

// parseManualValues accepts values as separate arguments and/or comma separated lists
func parseManualValues(args []string) ([]float64, error) {
	var values []float64
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := parseFinite(field)
			if err != nil {
				return nil, &ValidationError{Field: "value", Value: field, Message: "not a finite number"}
			}
			values = append(values, v)
		}
	}
	return values, nil
}

func runManual(cmd *cobra.Command, args []string) error {
	values, err := parseManualValues(args)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	analyzer, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	result, err := analyzer.Manual(values)
	if err != nil {
		return err
	}
	if manualJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Method:          %s (%d values)\n", result.Regime, len(result.Values))
	fmt.Fprintf(out, "Predicted usage: %s\n", FormatKWh(result.PredictedUsageKWh))
	fmt.Fprintf(out, "Predicted bill:  %s\n", FormatCurrency(result.PredictedBill, a.config.CurrencySymbol))
	return nil
}

var (
	reportSource sourceFlags
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run every analysis and write a report",
	Long:  `Runs the forecast, tips and yearly analyses and writes a Markdown, HTML or PDF report.`,
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	table, err := reportSource.load(a)
	if err != nil {
		return err
	}
	analyzer, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	result, err := analyzer.Analyze(table)
	if err != nil {
		return err
	}

	switch strings.ToLower(reportFormat) {
	case "md", "markdown":
		return NewReporter(a.logger).GenerateReport(result, reportOutput)
	case "html":
		return NewHTMLReporter(a.logger).GenerateHTMLReport(result, reportOutput)
	case "pdf":
		output := reportOutput
		if output == "" {
			output = filepath.Join(a.config.OutputDir, "report.pdf")
		}
		return NewPDFReporter(a.logger).GeneratePDFReport(result, output)
	default:
		return &ValidationError{Field: "format", Value: reportFormat, Message: "must be md, html or pdf"}
	}
}

var importName string

var importCmd = &cobra.Command{
	Use:   "import CSV",
	Short: "Store a bill CSV in the ledger",
	Long:  `Stores a bill CSV as a new dataset in the local ledger. Incomplete rows are kept and skipped at analysis time.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	table, err := ReadCSVFile(args[0])
	if err != nil {
		return err
	}
	if err := table.RequireColumns(ColumnUnitsConsumed); err != nil {
		return err
	}

	ledger, err := a.openLedger()
	if err != nil {
		return err
	}
	defer ledger.Close()

	name := importName
	if name == "" {
		name = filepath.Base(args[0])
	}
	dataset, err := ledger.ImportTable(name, table)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s rows as dataset %s (%s)\n",
		humanize.Comma(int64(dataset.Rows)), dataset.ID, dataset.Name)
	return nil
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets stored in the ledger",
	Args:  cobra.NoArgs,
	RunE:  runDatasets,
}

func runDatasets(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ledger, err := a.openLedger()
	if err != nil {
		return err
	}
	defer ledger.Close()

	datasets, err := ledger.ListDatasets()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(datasets) == 0 {
		fmt.Fprintln(out, "No datasets imported")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-24s  %8s  %s\n", "ID", "Name", "Rows", "Imported")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, d := range datasets {
		fmt.Fprintf(out, "%-36s  %-24s  %8s  %s\n", d.ID, d.Name, humanize.Comma(int64(d.Rows)), humanize.Time(d.ImportedAt))
	}
	return nil
}

var publishSource sourceFlags

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the forecast and tips to MQTT",
	Args:  cobra.NoArgs,
	RunE:  runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	table, err := publishSource.load(a)
	if err != nil {
		return err
	}
	analyzer, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	result, err := analyzer.Analyze(table)
	if err != nil {
		return err
	}

	publisher, err := NewPublisher(a.config.MQTT, a.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	if err := publisher.PublishResult(result); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Published to %s and %s\n", publisher.Topic("forecast"), publisher.Topic("tips"))
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and exit",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), VersionString())
	},
}

func init() {
	forecastSource.register(forecastCmd)
	forecastCmd.Flags().BoolVar(&forecastJSON, "json", false, "print the result as JSON")

	tipsSource.register(tipsCmd)
	tipsCmd.Flags().BoolVar(&tipsJSON, "json", false, "print the result as JSON")

	yearlySource.register(yearlyCmd)
	yearlyCmd.Flags().BoolVar(&yearlyJSON, "json", false, "print the result as JSON")

	manualCmd.Flags().BoolVar(&manualJSON, "json", false, "print the result as JSON")

	reportSource.register(reportCmd)
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "report format: md, html or pdf")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "report file (default: stdout; PDF defaults to <output-dir>/report.pdf)")

	importCmd.Flags().StringVar(&importName, "name", "", "dataset name (default: file name)")

	publishSource.register(publishCmd)

	rootCmd.AddCommand(forecastCmd, tipsCmd, yearlyCmd, manualCmd, reportCmd, importCmd, datasetsCmd, publishCmd, versionCmd)
}
