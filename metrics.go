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

	"gonum.org/v1/gonum/stat"
)

// trainTestSplit shuffles row indices and holds out ceil(testFraction·n) of them
func trainTestSplit(n int, testFraction float64, seed int64) (train, test []int, err error) {
	nTest := int(math.Ceil(testFraction * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, &DataError{
			DataType: "train/test split",
			Message:  fmt.Sprintf("%d rows cannot be split %.0f/%.0f", n, (1-testFraction)*100, testFraction*100),
		}
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// meanAbsoluteError returns the mean of |actual − predicted|
func meanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// r2Score returns the coefficient of determination. Constant targets score 1
// when predicted exactly and 0 otherwise. ok is false for fewer than two
// samples, where the score is undefined.
func r2Score(actual, predicted []float64) (score float64, ok bool) {
	if len(actual) < 2 {
		return 0, false
	}

	if stat.Variance(actual, nil) == 0 {
		for i := range actual {
			if actual[i] != predicted[i] {
				return 0, true
			}
		}
		return 1, true
	}

	return stat.RSquaredFrom(predicted, actual, nil), true
}

// calculateMean calculates the mean of a slice of float64 values
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// pick returns the elements of values at the given indices
func pick[T any](values []T, indices []int) []T {
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = values[idx]
	}
	return out
}
