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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outputs")
	store, err := NewArtifactStore(dir, NewDiscardLogger())
	require.NoError(t, err)

	assert.Equal(t, dir, store.Dir())
	assert.DirExists(t, dir)
}

func TestArtifactStoreWriteFileOverwrites(t *testing.T) {
	store := newTestStore(t)

	path, err := store.WriteFile("chart.png", []byte("first"))
	require.NoError(t, err)
	_, err = store.WriteFile("chart.png", []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestArtifactStoreJSON(t *testing.T) {
	store := newTestStore(t)

	in := ForecastDocument{PredictedUsageKWh: 123.45, PredictedBill: 740.7, RatePerUnit: 6, MAEUnits: 1.5, R2Score: 0.8123}
	path, err := store.SaveJSON(ForecastJSONFile, in)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"predicted_usage_kWh\": 123.45", "four-space indent")

	var out ForecastDocument
	require.NoError(t, store.LoadJSON(ForecastJSONFile, &out))
	assert.Equal(t, in, out)

	files, err := store.ListArtifacts()
	require.NoError(t, err)
	assert.Equal(t, []string{ForecastJSONFile}, files)
}

func TestArtifactStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)

	var out ForecastDocument
	err := store.LoadJSON("missing.json", &out)
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
