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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Bill_ID,Billing_Month,Billing_Year,Units_Consumed_kWh,Total_Amount,Payment_Status
B001,1,2023,120.5,723,Paid
B002,2,2023,,690,Paid
B003,3,2023,140,840,NA
B004,4.0,2023,150,900,Paid
`

func TestReadUsageCSV(t *testing.T) {
	table, err := ReadUsageCSV(strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)

	assert.Equal(t, BillColumns, table.Columns)
	require.Equal(t, 4, table.Len())

	first := table.Records[0]
	assert.Equal(t, "B001", first.BillID)
	assert.Equal(t, 1, first.BillingMonth)
	assert.Equal(t, 2023, first.BillingYear)
	assert.Equal(t, 120.5, first.UnitsKWh)
	assert.Equal(t, 723.0, first.TotalAmount)
	assert.False(t, first.Incomplete)

	assert.True(t, table.Records[1].Incomplete, "missing usage")
	assert.True(t, table.Records[2].Incomplete, "NA payment status")
	assert.Equal(t, 4, table.Records[3].BillingMonth, "4.0 parses as a whole month")
}

func TestReadUsageCSVStripsBOM(t *testing.T) {
	table, err := ReadUsageCSV(strings.NewReader("\ufeff"+sampleCSV), "bom.csv")
	require.NoError(t, err)
	assert.True(t, table.HasColumn(ColumnBillID))
}

func TestReadUsageCSVErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		column string
	}{
		{"month out of range", "Billing_Month,Units_Consumed_kWh\n13,100\n", ColumnBillingMonth},
		{"fractional month", "Billing_Month,Units_Consumed_kWh\n2.5,100\n", ColumnBillingMonth},
		{"negative usage", "Billing_Month,Units_Consumed_kWh\n2,-1\n", ColumnUnitsConsumed},
		{"non-numeric usage", "Billing_Month,Units_Consumed_kWh\n2,lots\n", ColumnUnitsConsumed},
		{"infinite usage", "Billing_Month,Units_Consumed_kWh\n2,inf\n", ColumnUnitsConsumed},
		{"NaN usage", "Billing_Month,Units_Consumed_kWh\n2,NAN\n", ColumnUnitsConsumed},
		{"infinite amount", "Billing_Month,Units_Consumed_kWh,Total_Amount\n2,100,+Inf\n", ColumnTotalAmount},
		{"infinite month", "Billing_Month,Units_Consumed_kWh\nInfinity,100\n", ColumnBillingMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadUsageCSV(strings.NewReader(tt.input), "bad.csv")
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, tt.column, parseErr.Column)
			assert.Equal(t, 2, parseErr.Line)
		})
	}
}

func TestReadUsageCSVEmpty(t *testing.T) {
	_, err := ReadUsageCSV(strings.NewReader(""), "empty.csv")
	var dataErr *DataError
	assert.True(t, errors.As(err, &dataErr))
}

func TestCleanTable(t *testing.T) {
	table, err := ReadUsageCSV(strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)

	clean := CleanTable(table)
	assert.Equal(t, 2, clean.Len())
	assert.Equal(t, []float64{120.5, 150}, clean.Units())
	assert.Equal(t, 4, table.Len(), "source table is not modified")
}

func TestCollectCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bills.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	table, err := NewCollector(nil, NewDiscardLogger()).CollectCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, path, table.Source)
}

func TestCollectDatasetWithoutLedger(t *testing.T) {
	_, err := NewCollector(nil, NewDiscardLogger()).CollectDataset("anything")
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRequireColumns(t *testing.T) {
	table, err := ReadUsageCSV(strings.NewReader("Billing_Month,Billing_Year\n1,2023\n"), "no-usage.csv")
	require.NoError(t, err)

	err = table.RequireColumns(ColumnBillingMonth, ColumnUnitsConsumed)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, ColumnUnitsConsumed, schemaErr.Column)
	assert.Contains(t, err.Error(), "no-usage.csv")
}
