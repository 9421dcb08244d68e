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
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForestRegressor averages fully grown regression trees fitted on bootstrap samples
type RandomForestRegressor struct {
	NumTrees int
	Seed     int64
	// Workers bounds concurrent tree fits; zero uses every CPU
	Workers int

	trees []*cartTree
}

// NewRandomForestRegressor creates an unfitted forest
func NewRandomForestRegressor(numTrees int, seed int64, workers int) *RandomForestRegressor {
	return &RandomForestRegressor{
		NumTrees: numTrees,
		Seed:     seed,
		Workers:  workers,
	}
}

// Fit trains every tree. Each tree gets its own seed drawn up front, so the
// fitted forest does not depend on how the fits are scheduled.
func (f *RandomForestRegressor) Fit(x [][]float64, y []float64) error {
	if f.NumTrees < 1 {
		return errors.New("forest needs at least one tree")
	}
	if len(x) == 0 {
		return &DataError{DataType: "training set", Message: "no rows to fit"}
	}

	master := rand.New(rand.NewSource(f.Seed))
	seeds := make([]int64, f.NumTrees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	workers := f.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	params := cartParams{criterion: criterionMSE, minSamplesSplit: 2}
	trees := make([]*cartTree, f.NumTrees)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range trees {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[i]))
			weights := bootstrapWeights(len(x), rng)
			tree, err := fitCART(params, x, y, weights, rng)
			if err != nil {
				return err
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.trees = trees
	return nil
}

// Predict returns the mean prediction of all trees
func (f *RandomForestRegressor) Predict(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += t.leaf(x).Value[0]
	}
	return sum / float64(len(f.trees))
}

// PredictAll predicts every row of x
func (f *RandomForestRegressor) PredictAll(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = f.Predict(row)
	}
	return out
}

// bootstrapWeights draws n rows with replacement and returns how often each was drawn
func bootstrapWeights(n int, rng *rand.Rand) []float64 {
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		weights[rng.Intn(n)]++
	}
	return weights
}

// DecisionTreeClassifier is a single gini tree over integer class labels
type DecisionTreeClassifier struct {
	MaxDepth   int
	Seed       int64
	NumClasses int

	tree *cartTree
}

// NewDecisionTreeClassifier creates an unfitted classifier
func NewDecisionTreeClassifier(maxDepth int, seed int64, numClasses int) *DecisionTreeClassifier {
	return &DecisionTreeClassifier{
		MaxDepth:   maxDepth,
		Seed:       seed,
		NumClasses: numClasses,
	}
}

// Fit trains the tree on every row with unit weight
func (c *DecisionTreeClassifier) Fit(x [][]float64, labels []int) error {
	y := make([]float64, len(labels))
	weights := make([]float64, len(labels))
	for i, l := range labels {
		y[i] = float64(l)
		weights[i] = 1
	}

	params := cartParams{
		criterion:       criterionGini,
		maxDepth:        c.MaxDepth,
		minSamplesSplit: 2,
		numClasses:      c.NumClasses,
	}
	tree, err := fitCART(params, x, y, weights, rand.New(rand.NewSource(c.Seed)))
	if err != nil {
		return err
	}
	c.tree = tree
	return nil
}

// Predict returns the majority class of the leaf reached by x
func (c *DecisionTreeClassifier) Predict(x []float64) int {
	if c.tree == nil {
		return 0
	}
	return argmax(c.tree.leaf(x).Value)
}

// Depth returns the depth of the fitted tree
func (c *DecisionTreeClassifier) Depth() int {
	if c.tree == nil {
		return 0
	}
	return c.tree.depth
}
