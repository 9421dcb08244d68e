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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Collector gathers usage tables from bill CSV files or the ledger
type Collector struct {
	ledger *Ledger
	logger *Logger
}

// NewCollector creates a new collector. ledger may be nil when only CSV input is used.
func NewCollector(ledger *Ledger, logger *Logger) *Collector {
	return &Collector{
		ledger: ledger,
		logger: logger.WithComponent("collector"),
	}
}

// ReadCSVFile reads a bill CSV from disk without dropping incomplete rows
func ReadCSVFile(path string) (*UsageTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	return ReadUsageCSV(file, path)
}

// CollectCSV reads a bill CSV from disk and returns the cleaned table
func (c *Collector) CollectCSV(path string) (*UsageTable, error) {
	raw, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}

	cleaned := CleanTable(raw)
	c.logger.LogDataLoaded(path, cleaned.Len(), raw.Len()-cleaned.Len())
	return cleaned, nil
}

// CollectDataset loads an imported dataset from the ledger and returns the cleaned table
func (c *Collector) CollectDataset(id string) (*UsageTable, error) {
	if c.ledger == nil {
		return nil, &ConfigError{Field: "storage_path", Message: "ledger is not open"}
	}

	raw, err := c.ledger.LoadTable(id)
	if err != nil {
		return nil, err
	}

	cleaned := CleanTable(raw)
	c.logger.LogDataLoaded(raw.Source, cleaned.Len(), raw.Len()-cleaned.Len())
	return cleaned, nil
}

// ReadUsageCSV parses a bill CSV. Rows with missing cells are kept and flagged;
// CleanTable removes them.
func ReadUsageCSV(r io.Reader, source string) (*UsageTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataError{DataType: "csv", Message: "file is empty"}
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		columns[i] = name
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	table := &UsageTable{Source: source, Columns: columns}

	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		record, err := parseRecord(row, columns, index, line)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, record)
	}

	return table, nil
}

// parseRecord converts one CSV row into a UsageRecord
func parseRecord(row, columns []string, index map[string]int, line int) (UsageRecord, error) {
	var record UsageRecord

	for i := range columns {
		if i >= len(row) || isMissing(row[i]) {
			record.Incomplete = true
		}
	}

	cell := func(column string) (string, bool) {
		i, ok := index[column]
		if !ok || i >= len(row) || isMissing(row[i]) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	var err error
	if v, ok := cell(ColumnBillID); ok {
		record.BillID = v
	}
	if v, ok := cell(ColumnBillingMonth); ok {
		if record.BillingMonth, err = parseWhole(v); err != nil {
			return record, &ParseError{Line: line, Column: ColumnBillingMonth, Value: v, Err: err}
		}
		if record.BillingMonth < 1 || record.BillingMonth > 12 {
			return record, &ParseError{Line: line, Column: ColumnBillingMonth, Value: v, Err: errors.New("month must be between 1 and 12")}
		}
	}
	if v, ok := cell(ColumnBillingYear); ok {
		if record.BillingYear, err = parseWhole(v); err != nil {
			return record, &ParseError{Line: line, Column: ColumnBillingYear, Value: v, Err: err}
		}
	}
	if v, ok := cell(ColumnUnitsConsumed); ok {
		if record.UnitsKWh, err = parseFinite(v); err != nil {
			return record, &ParseError{Line: line, Column: ColumnUnitsConsumed, Value: v, Err: err}
		}
		if record.UnitsKWh < 0 {
			return record, &ParseError{Line: line, Column: ColumnUnitsConsumed, Value: v, Err: errors.New("usage cannot be negative")}
		}
	}
	if v, ok := cell(ColumnTotalAmount); ok {
		if record.TotalAmount, err = parseFinite(v); err != nil {
			return record, &ParseError{Line: line, Column: ColumnTotalAmount, Value: v, Err: err}
		}
	}
	if v, ok := cell(ColumnPaymentStatus); ok {
		record.PaymentStatus = v
	}

	return record, nil
}

// parseWhole accepts integers written as "3" or "3.0"
func parseWhole(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := parseFinite(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", v)
	}
	return int(f), nil
}

// parseFinite parses a float, rejecting infinities and NaN
func parseFinite(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%q is not a finite number", v)
	}
	return f, nil
}

func isMissing(v string) bool {
	return missingTokens[strings.TrimSpace(v)]
}

// CleanTable returns a copy of the table without incomplete records
func CleanTable(table *UsageTable) *UsageTable {
	cleaned := &UsageTable{
		Source:  table.Source,
		Columns: append([]string(nil), table.Columns...),
		Records: make([]UsageRecord, 0, len(table.Records)),
	}
	for _, r := range table.Records {
		if r.Incomplete {
			continue
		}
		cleaned.Records = append(cleaned.Records, r)
	}
	return cleaned
}
