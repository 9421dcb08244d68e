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
	"testing"

	"github.com/stretchr/testify/require"
)

// monthlyTable builds a complete bill table of consecutive months starting at
// startMonth of startYear
func monthlyTable(units []float64, startMonth, startYear int) *UsageTable {
	table := &UsageTable{
		Source:  "test",
		Columns: append([]string(nil), BillColumns...),
	}
	for i, u := range units {
		offset := startMonth - 1 + i
		table.Records = append(table.Records, UsageRecord{
			BillID:        fmt.Sprintf("B%03d", i),
			BillingMonth:  offset%12 + 1,
			BillingYear:   startYear + offset/12,
			UnitsKWh:      u,
			TotalAmount:   u * DefaultRatePerUnit,
			PaymentStatus: "Paid",
		})
	}
	return table
}

// seasonalUsage returns n months of usage peaking in summer
func seasonalUsage(n int) []float64 {
	profile := []float64{210, 190, 230, 280, 340, 390, 410, 400, 330, 270, 220, 200}
	units := make([]float64, n)
	for i := range units {
		units[i] = profile[i%12] + float64(i/12)*10
	}
	return units
}

func newTestStore(t *testing.T) *ArtifactStore {
	t.Helper()
	store, err := NewArtifactStore(t.TempDir(), NewDiscardLogger())
	require.NoError(t, err)
	return store
}
