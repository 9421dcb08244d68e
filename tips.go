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
	"time"
)

// Classifier labels the latest usage Low, Medium or High and picks matching tips
type Classifier struct {
	store    *ArtifactStore
	renderer *TreeRenderer
	logger   *Logger
}

// NewClassifier creates a classifier writing its tree rendering to store
func NewClassifier(store *ArtifactStore, logger *Logger) (*Classifier, error) {
	renderer, err := NewTreeRenderer()
	if err != nil {
		return nil, err
	}
	return &Classifier{
		store:    store,
		renderer: renderer,
		logger:   logger.WithComponent("classifier"),
	}, nil
}

// categorizeUsage compares a value against the mean usage
func categorizeUsage(value, mean float64) int {
	switch {
	case value < mean*lowUsageFactor:
		return CategoryLow
	case value < mean*highUsageFactor:
		return CategoryMedium
	default:
		return CategoryHigh
	}
}

// tipsFeatures builds (month_index, usage, usage_change) for each row
func tipsFeatures(units []float64) [][]float64 {
	x := make([][]float64, len(units))
	for i, u := range units {
		change := 0.0
		if i > 0 {
			change = u - units[i-1]
		}
		x[i] = []float64{float64(i + 1), u, change}
	}
	return x
}

// ClassifyAndTip labels every row against the mean, fits a shallow tree on the
// labels and returns the tree's category for the latest row
func (c *Classifier) ClassifyAndTip(table *UsageTable) (*TipsResult, error) {
	if err := table.RequireColumns(ColumnUnitsConsumed); err != nil {
		return nil, err
	}

	clean := CleanTable(table)
	if clean.Len() == 0 {
		return nil, &DataError{DataType: "tips", Message: "no complete rows to classify"}
	}

	units := clean.Units()
	mean := calculateMean(units)
	labels := make([]int, len(units))
	for i, u := range units {
		labels[i] = categorizeUsage(u, mean)
	}
	x := tipsFeatures(units)

	clf := NewDecisionTreeClassifier(tipsTreeMaxDepth, tipsTreeSeed, numCategories)
	start := time.Now()
	if err := clf.Fit(x, labels); err != nil {
		return nil, fmt.Errorf("failed to fit tips model: %w", err)
	}
	c.logger.LogModelFit("decision_tree", len(x), time.Since(start))

	last := len(x) - 1
	class := clf.Predict(x[last])
	result := &TipsResult{
		PredictedClass: class,
		Category:       CategoryNames[class],
		Tips:           append([]string(nil), categoryTips[class]...),
		RuleClass:      labels[last],
	}
	if class != result.RuleClass {
		c.logger.Debug("Tree disagrees with threshold rule for latest row",
			"tree", CategoryNames[class],
			"rule", CategoryNames[result.RuleClass],
		)
	}

	image, err := c.renderer.Render(clf, tipsFeatureNames)
	if err != nil {
		return nil, err
	}
	if result.TreePath, err = c.store.WriteFile(TipsTreeFile, image); err != nil {
		return nil, err
	}
	c.logger.LogArtifact("tips_tree", result.TreePath)

	c.logger.Info("Usage classified", "category", result.Category, "mean_kwh", roundTo(mean, 2))
	return result, nil
}
