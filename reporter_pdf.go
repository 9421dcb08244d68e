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
	"math"
	"os"

	"github.com/go-pdf/fpdf"
)

// PDF layout in points from the top-left of an A4 page
const (
	pdfMargin       = 50.0
	pdfPlotWidth    = 500.0
	pdfPlotHeight   = 200.0
	pdfPlotStep     = 240.0
	pdfPlotFirstTop = 120.0
	pdfPlotNextTop  = 100.0
	// a new page starts once the next plot's top is within this of the bottom edge
	pdfBottomLimit = 150.0
)

// PDFReporter generates A4 PDF reports from analysis results
type PDFReporter struct {
	logger *Logger
}

// NewPDFReporter creates a new PDF report generator
func NewPDFReporter(logger *Logger) *PDFReporter {
	return &PDFReporter{
		logger: logger,
	}
}

// GeneratePDFReport writes a PDF report to outputPath, or stdout when it is empty
func (r *PDFReporter) GeneratePDFReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating PDF report")

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create PDF report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	if err := r.Write(writer, result); err != nil {
		return err
	}

	if outputPath != "" {
		r.logger.Info("PDF report saved", "path", outputPath)
	}
	return nil
}

// Write renders the PDF: a summary page, then the charts
func (r *PDFReporter) Write(w io.Writer, result *AnalysisResult) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	currency := pdfCurrencySymbol(result.CurrencySymbol)

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Text(50, 50, "Eco Electricity Usage Report")

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(50, 75, "Generated on: "+result.GeneratedAt.Format("2006-01-02"))

	y := 110.0
	if f := result.Forecast; f != nil {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.Text(50, y, "Forecast Summary")

		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(60, y+30, fmt.Sprintf("Predicted Usage: %v kWh", f.PredictedUsageKWh))
		pdf.Text(60, y+50, tr("Predicted Bill: "+FormatCurrency(f.PredictedBill, currency)))
		pdf.Text(60, y+70, fmt.Sprintf("MAE: %v", f.MAEUnits))
		pdf.Text(60, y+90, fmt.Sprintf("R2 Score: %v", f.R2Score))
		y += 130
	}

	s := result.Summary
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(60, y, fmt.Sprintf("This month: %d kWh   Total %d: %s   Monthly average: %.1f kWh",
		s.ThisMonthUsage, s.LatestYear, FormatKWh(s.LatestYearTotal), s.AverageMonthlyKWh))
	y += 30

	if t := result.Tips; t != nil {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.Text(50, y, "Smart Tips ("+t.Category+")")

		y += 25
		pdf.SetFont("Helvetica", "", 11)
		for _, tip := range t.Tips {
			pdf.Text(60, y, tr("- "+tip))
			y += 20
		}
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(50, 50, "Electricity Usage Graphs")

	_, pageHeight := pdf.GetPageSize()
	top := pdfPlotFirstTop
	for _, plot := range existingPlots(result.YearPlots, r.logger) {
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		info := pdf.RegisterImageOptions(plot, opts)
		if info == nil || !pdf.Ok() {
			return fmt.Errorf("failed to load chart %s: %w", plot, pdf.Error())
		}

		width, height := fitBox(info.Width(), info.Height(), pdfPlotWidth, pdfPlotHeight)
		pdf.ImageOptions(plot, pdfMargin, top, width, height, false, opts, 0, "")

		top += pdfPlotStep
		if pageHeight-top < pdfBottomLimit {
			pdf.AddPage()
			top = pdfPlotNextTop
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	return nil
}

// fitBox scales w×h to fit inside maxW×maxH, keeping the aspect ratio
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := math.Min(maxW/w, maxH/h)
	return w * scale, h * scale
}

// pdfCurrencySymbol replaces symbols the core PDF fonts cannot encode
func pdfCurrencySymbol(symbol string) string {
	switch symbol {
	case "₹":
		return "Rs. "
	case "":
		return ""
	default:
		return symbol
	}
}
