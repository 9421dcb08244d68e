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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestFitCARTGiniSplit(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{0, 0, 1, 1}

	tree, err := fitCART(cartParams{criterion: criterionGini, numClasses: 2}, x, y, unitWeights(4), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	root := tree.nodes[0]
	require.False(t, root.isLeaf())
	assert.Equal(t, 0, root.Feature)
	assert.Equal(t, 2.5, root.Threshold)
	assert.InDelta(t, 0.5, root.Impurity, 1e-12)
	assert.Equal(t, []float64{2, 2}, root.Value)
	assert.Equal(t, 1, tree.depth)

	assert.Equal(t, []float64{2, 0}, tree.leaf([]float64{1.5}).Value)
	assert.Equal(t, []float64{0, 2}, tree.leaf([]float64{3.5}).Value)
}

func TestFitCARTRegressionMemorizesDistinctRows(t *testing.T) {
	x := [][]float64{{1, 0}, {2, 1}, {3, 0}, {4, 1}, {5, 0}}
	y := []float64{10, 30, 20, 50, 40}

	tree, err := fitCART(cartParams{criterion: criterionMSE}, x, y, unitWeights(len(x)), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for i, row := range x {
		assert.Equal(t, y[i], tree.leaf(row).Value[0], "row %d", i)
	}
}

func TestFitCARTIgnoresZeroWeightRows(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{5, 100, 5}
	weights := []float64{1, 0, 2}

	tree, err := fitCART(cartParams{criterion: criterionMSE}, x, y, weights, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	require.Len(t, tree.nodes, 1, "remaining rows share one target")
	assert.Equal(t, 2, tree.nodes[0].Samples)
	assert.Equal(t, 3.0, tree.nodes[0].Weight)
	assert.Equal(t, 5.0, tree.leaf([]float64{2}).Value[0])
}

func TestFitCARTMaxDepth(t *testing.T) {
	x := make([][]float64, 32)
	y := make([]float64, 32)
	for i := range x {
		x[i] = []float64{float64(i)}
		y[i] = float64(i % 3)
	}

	tree, err := fitCART(cartParams{criterion: criterionGini, numClasses: 3, maxDepth: 3}, x, y, unitWeights(32), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.LessOrEqual(t, tree.depth, 3)
}

func TestFitCARTValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := fitCART(cartParams{}, nil, nil, nil, rng)
	assert.Error(t, err)

	_, err = fitCART(cartParams{}, [][]float64{{1}, {2}}, []float64{1}, []float64{1, 1}, rng)
	assert.Error(t, err)

	_, err = fitCART(cartParams{}, [][]float64{{1}, {2, 3}}, []float64{1, 2}, []float64{1, 1}, rng)
	assert.Error(t, err)

	_, err = fitCART(cartParams{criterion: criterionGini, numClasses: 2}, [][]float64{{1}}, []float64{2}, []float64{1}, rng)
	assert.Error(t, err, "label outside class range")

	_, err = fitCART(cartParams{}, [][]float64{{1}}, []float64{1}, []float64{0}, rng)
	assert.Error(t, err, "all weights zero")
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 1, argmax([]float64{1, 3, 2}))
	assert.Equal(t, 0, argmax([]float64{2, 2, 1}), "first maximum wins")
}

func TestGiniImpurity(t *testing.T) {
	assert.Equal(t, 0.0, giniImpurity([]float64{4, 0}, 4))
	assert.InDelta(t, 0.5, giniImpurity([]float64{2, 2}, 4), 1e-12)
	assert.Equal(t, 0.0, giniImpurity([]float64{0, 0}, 0))
}
