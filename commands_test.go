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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManualValues(t *testing.T) {
	values, err := parseManualValues([]string{"1,2", "3", " 4.5 , "})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4.5}, values)

	values, err = parseManualValues(nil)
	require.NoError(t, err)
	assert.Empty(t, values)

	_, err = parseManualValues([]string{"12", "abc"})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "abc", validationErr.Value)

	for _, bad := range []string{"inf", "+Inf", "NaN", "10,-infinity"} {
		_, err = parseManualValues([]string{bad})
		assert.True(t, errors.As(err, &validationErr), "accepted %q", bad)
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	config := DefaultConfig()
	config.OutputDir = t.TempDir()
	config.StoragePath = filepath.Join(t.TempDir(), "ledger.db")
	return &app{config: config, logger: NewDiscardLogger()}
}

func TestSourceFlagsCSV(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "bills.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	flags := sourceFlags{csvPath: path}
	table, err := flags.load(a)
	require.NoError(t, err)
	assert.NotZero(t, table.Len())
}

func TestSourceFlagsEmptyLedger(t *testing.T) {
	a := newTestApp(t)

	flags := sourceFlags{}
	_, err := flags.load(a)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "source", validationErr.Field)
}

func TestSourceFlagsLatestDataset(t *testing.T) {
	a := newTestApp(t)
	ledger, err := a.openLedger()
	require.NoError(t, err)
	_, err = ledger.ImportTable("bills", monthlyTable(seasonalUsage(12), 1, 2023))
	require.NoError(t, err)
	require.NoError(t, ledger.Close())

	flags := sourceFlags{dataset: "latest"}
	table, err := flags.load(a)
	require.NoError(t, err)
	assert.Equal(t, 12, table.Len())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"forecast", "tips", "yearly", "manual", "report", "import", "datasets", "publish", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
