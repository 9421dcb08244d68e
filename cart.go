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
	"math"
	"math/rand"
	"sort"
)

// splitCriterion selects the impurity measure used to grow a tree
type splitCriterion int

const (
	criterionMSE splitCriterion = iota
	criterionGini
)

const (
	// featureEpsilon is the smallest gap between two feature values that can be split
	featureEpsilon = 1e-7
	// impurityEpsilon marks a node as pure
	impurityEpsilon = 2.220446049250313e-16
)

// cartParams controls tree growth
type cartParams struct {
	criterion       splitCriterion
	maxDepth        int // 0 means unlimited
	minSamplesSplit int
	numClasses      int // gini only
}

// cartNode is one node of a fitted tree. Leaves have Left == -1.
type cartNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Impurity  float64
	Samples   int
	Weight    float64
	// Value is the weighted mean target (MSE) or weighted class counts (gini)
	Value []float64
}

func (n *cartNode) isLeaf() bool {
	return n.Left < 0
}

// cartTree is a binary CART tree stored as a flat node slice, root at index 0
type cartTree struct {
	params      cartParams
	numFeatures int
	depth       int
	nodes       []cartNode
}

// treeBuilder holds the training data while a tree is grown
type treeBuilder struct {
	params  cartParams
	x       [][]float64
	y       []float64
	weights []float64
	rng     *rand.Rand
	tree    *cartTree
}

// fitCART grows a tree on every row with a positive weight. Candidate features
// are visited in an order drawn from rng at each node.
func fitCART(params cartParams, x [][]float64, y, weights []float64, rng *rand.Rand) (*cartTree, error) {
	if len(x) == 0 {
		return nil, &DataError{DataType: "training set", Message: "no rows to fit"}
	}
	if len(x) != len(y) || len(x) != len(weights) {
		return nil, fmt.Errorf("training set has %d rows, %d targets and %d weights", len(x), len(y), len(weights))
	}
	numFeatures := len(x[0])
	for i, row := range x {
		if len(row) != numFeatures {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(row), numFeatures)
		}
	}
	if params.criterion == criterionGini {
		for i, label := range y {
			if label < 0 || int(label) >= params.numClasses {
				return nil, fmt.Errorf("row %d has label %v outside [0, %d)", i, label, params.numClasses)
			}
		}
	}
	if params.minSamplesSplit < 2 {
		params.minSamplesSplit = 2
	}

	samples := make([]int, 0, len(x))
	for i, w := range weights {
		if w > 0 {
			samples = append(samples, i)
		}
	}
	if len(samples) == 0 {
		return nil, &DataError{DataType: "training set", Message: "all sample weights are zero"}
	}

	b := &treeBuilder{
		params:  params,
		x:       x,
		y:       y,
		weights: weights,
		rng:     rng,
		tree:    &cartTree{params: params, numFeatures: numFeatures},
	}
	b.build(samples, 0)
	return b.tree, nil
}

// nodeStats computes the node value, impurity and total weight for samples
func (b *treeBuilder) nodeStats(samples []int) (value []float64, impurity, weight float64) {
	switch b.params.criterion {
	case criterionGini:
		counts := make([]float64, b.params.numClasses)
		for _, s := range samples {
			counts[int(b.y[s])] += b.weights[s]
			weight += b.weights[s]
		}
		return counts, giniImpurity(counts, weight), weight
	default:
		var sum, sumSq float64
		for _, s := range samples {
			w := b.weights[s]
			weight += w
			sum += w * b.y[s]
			sumSq += w * b.y[s] * b.y[s]
		}
		mean := sum / weight
		impurity = sumSq/weight - mean*mean
		if impurity < 0 {
			impurity = 0
		}
		return []float64{mean}, impurity, weight
	}
}

// build grows the subtree for samples and returns its node index
func (b *treeBuilder) build(samples []int, depth int) int {
	value, impurity, weight := b.nodeStats(samples)

	index := len(b.tree.nodes)
	b.tree.nodes = append(b.tree.nodes, cartNode{
		Feature:  -1,
		Left:     -1,
		Right:    -1,
		Impurity: impurity,
		Samples:  len(samples),
		Weight:   weight,
		Value:    value,
	})
	if depth > b.tree.depth {
		b.tree.depth = depth
	}

	if (b.params.maxDepth > 0 && depth >= b.params.maxDepth) ||
		len(samples) < b.params.minSamplesSplit ||
		impurity <= impurityEpsilon {
		return index
	}

	feature, threshold, ok := b.bestSplit(samples)
	if !ok {
		return index
	}

	var left, right []int
	for _, s := range samples {
		if b.x[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	leftIndex := b.build(left, depth+1)
	rightIndex := b.build(right, depth+1)

	node := &b.tree.nodes[index]
	node.Feature = feature
	node.Threshold = threshold
	node.Left = leftIndex
	node.Right = rightIndex
	return index
}

// bestSplit scans every feature for the threshold with the lowest weighted child impurity
func (b *treeBuilder) bestSplit(samples []int) (feature int, threshold float64, ok bool) {
	bestScore := math.Inf(1)
	sorted := make([]int, len(samples))

	for _, f := range b.rng.Perm(b.tree.numFeatures) {
		copy(sorted, samples)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		if b.x[sorted[len(sorted)-1]][f] <= b.x[sorted[0]][f]+featureEpsilon {
			continue
		}

		scan := b.newSplitScan(sorted)
		for i := 0; i < len(sorted)-1; i++ {
			scan.moveLeft(sorted[i])

			current := b.x[sorted[i]][f]
			next := b.x[sorted[i+1]][f]
			if next <= current+featureEpsilon {
				continue
			}

			score := scan.score()
			if score < bestScore {
				bestScore = score
				feature = f
				threshold = current + (next-current)/2
				if threshold == next || math.IsInf(threshold, 0) || math.IsNaN(threshold) {
					threshold = current
				}
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

// splitScan accumulates left/right statistics as samples move across a threshold
type splitScan struct {
	b *treeBuilder

	leftW, rightW         float64
	leftSum, rightSum     float64
	leftSumSq, rightSumSq float64

	leftCounts, rightCounts []float64
}

func (b *treeBuilder) newSplitScan(samples []int) *splitScan {
	s := &splitScan{b: b}
	if b.params.criterion == criterionGini {
		s.leftCounts = make([]float64, b.params.numClasses)
		s.rightCounts = make([]float64, b.params.numClasses)
	}
	for _, i := range samples {
		w := b.weights[i]
		s.rightW += w
		if s.rightCounts != nil {
			s.rightCounts[int(b.y[i])] += w
		} else {
			s.rightSum += w * b.y[i]
			s.rightSumSq += w * b.y[i] * b.y[i]
		}
	}
	return s
}

func (s *splitScan) moveLeft(i int) {
	w := s.b.weights[i]
	y := s.b.y[i]
	s.leftW += w
	s.rightW -= w
	if s.leftCounts != nil {
		s.leftCounts[int(y)] += w
		s.rightCounts[int(y)] -= w
		return
	}
	s.leftSum += w * y
	s.rightSum -= w * y
	s.leftSumSq += w * y * y
	s.rightSumSq -= w * y * y
}

// score is the weighted impurity of both children (lower is better)
func (s *splitScan) score() float64 {
	if s.leftCounts != nil {
		return s.leftW*giniImpurity(s.leftCounts, s.leftW) + s.rightW*giniImpurity(s.rightCounts, s.rightW)
	}
	left := s.leftSumSq - s.leftSum*s.leftSum/s.leftW
	right := s.rightSumSq - s.rightSum*s.rightSum/s.rightW
	return left + right
}

func giniImpurity(counts []float64, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range counts {
		p := c / weight
		sumSq += p * p
	}
	return 1 - sumSq
}

// leaf returns the leaf reached by x
func (t *cartTree) leaf(x []float64) *cartNode {
	node := &t.nodes[0]
	for !node.isLeaf() {
		if x[node.Feature] <= node.Threshold {
			node = &t.nodes[node.Left]
		} else {
			node = &t.nodes[node.Right]
		}
	}
	return node
}

// argmax returns the index of the largest value, the first one on ties
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
