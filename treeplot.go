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
	"fmt"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	treeFontSize   = 12
	treeDPI        = 72
	treeLineHeight = 16
	treeBoxPadding = 8
	treeColumnGap  = 16
	treeLevelGap   = 40
	treeMargin     = 20
)

// categoryColors fill tree boxes by majority class
var categoryColors = [numCategories]drawing.Color{
	CategoryLow:    {R: 57, G: 181, B: 74, A: 255},
	CategoryMedium: {R: 245, G: 166, B: 35, A: 255},
	CategoryHigh:   {R: 229, G: 57, B: 53, A: 255},
}

var treeEdgeColor = drawing.Color{R: 90, G: 90, B: 90, A: 255}

// TreeRenderer draws a fitted classifier tree as a PNG
type TreeRenderer struct {
	font *truetype.Font
	face font.Face
}

// NewTreeRenderer loads the bundled Go font
func NewTreeRenderer() (*TreeRenderer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tree font: %w", err)
	}
	return &TreeRenderer{
		font: f,
		face: truetype.NewFace(f, &truetype.Options{Size: treeFontSize, DPI: treeDPI}),
	}, nil
}

// Render lays nodes out by depth, with leaves ordered left to right
func (tr *TreeRenderer) Render(clf *DecisionTreeClassifier, featureNames []string) ([]byte, error) {
	if clf == nil || clf.tree == nil {
		return nil, fmt.Errorf("classifier is not fitted")
	}
	tree := clf.tree

	labels := make([][]string, len(tree.nodes))
	boxWidth := 0
	maxLines := 0
	for i := range tree.nodes {
		labels[i] = nodeLabel(&tree.nodes[i], featureNames)
		for _, line := range labels[i] {
			if w := font.MeasureString(tr.face, line).Ceil(); w > boxWidth {
				boxWidth = w
			}
		}
		if len(labels[i]) > maxLines {
			maxLines = len(labels[i])
		}
	}
	boxWidth += 2 * treeBoxPadding
	boxHeight := maxLines*treeLineHeight + 2*treeBoxPadding

	// Leaves take consecutive columns; parents sit centred above their children
	columns := make([]float64, len(tree.nodes))
	depths := make([]int, len(tree.nodes))
	next := 0.0
	var place func(i, depth int)
	place = func(i, depth int) {
		depths[i] = depth
		n := &tree.nodes[i]
		if n.isLeaf() {
			columns[i] = next
			next++
			return
		}
		place(n.Left, depth+1)
		place(n.Right, depth+1)
		columns[i] = (columns[n.Left] + columns[n.Right]) / 2
	}
	place(0, 0)

	width := int(next)*(boxWidth+treeColumnGap) - treeColumnGap + 2*treeMargin
	height := (tree.depth+1)*(boxHeight+treeLevelGap) - treeLevelGap + 2*treeMargin

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create tree canvas: %w", err)
	}
	r.SetDPI(treeDPI)
	r.SetFont(tr.font)

	chart.Draw.Box(r, chart.Box{Top: 0, Left: 0, Right: width, Bottom: height}, chart.Style{
		FillColor:   drawing.ColorWhite,
		StrokeColor: drawing.ColorWhite,
		StrokeWidth: 1,
	})

	boxes := make([]chart.Box, len(tree.nodes))
	for i := range tree.nodes {
		x := treeMargin + int(columns[i]*float64(boxWidth+treeColumnGap))
		y := treeMargin + depths[i]*(boxHeight+treeLevelGap)
		boxes[i] = chart.Box{Top: y, Left: x, Right: x + boxWidth, Bottom: y + boxHeight}
	}

	for i := range tree.nodes {
		n := &tree.nodes[i]
		if n.isLeaf() {
			continue
		}
		from := boxes[i]
		for _, child := range []int{n.Left, n.Right} {
			to := boxes[child]
			r.SetStrokeColor(treeEdgeColor)
			r.SetStrokeWidth(1)
			r.MoveTo((from.Left+from.Right)/2, from.Bottom)
			r.LineTo((to.Left+to.Right)/2, to.Top)
			r.Stroke()
		}
	}

	for i := range tree.nodes {
		box := boxes[i]
		chart.Draw.Box(r, box, chart.Style{
			FillColor:   nodeFill(&tree.nodes[i]),
			StrokeColor: treeEdgeColor,
			StrokeWidth: 1,
		})

		r.SetFontSize(treeFontSize)
		r.SetFontColor(drawing.ColorBlack)
		for j, line := range labels[i] {
			lineWidth := font.MeasureString(tr.face, line).Ceil()
			x := box.Left + (boxWidth-lineWidth)/2
			y := box.Top + treeBoxPadding + (j+1)*treeLineHeight - 4
			r.Text(line, x, y)
		}
	}

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode tree image: %w", err)
	}
	return buf.Bytes(), nil
}

// nodeLabel formats a node the way tree plots usually read
func nodeLabel(n *cartNode, featureNames []string) []string {
	var lines []string
	if !n.isLeaf() {
		name := fmt.Sprintf("x[%d]", n.Feature)
		if n.Feature < len(featureNames) {
			name = featureNames[n.Feature]
		}
		lines = append(lines, fmt.Sprintf("%s <= %.3f", name, n.Threshold))
	}

	counts := make([]string, len(n.Value))
	for i, c := range n.Value {
		counts[i] = fmt.Sprintf("%.0f", c)
	}

	lines = append(lines,
		fmt.Sprintf("gini = %.3f", n.Impurity),
		fmt.Sprintf("samples = %d", n.Samples),
		fmt.Sprintf("value = [%s]", strings.Join(counts, ", ")),
		fmt.Sprintf("class = %s", CategoryNames[argmax(n.Value)]),
	)
	return lines
}

// nodeFill blends the majority class colour with white by how pure the node is
func nodeFill(n *cartNode) drawing.Color {
	class := argmax(n.Value)
	base := categoryColors[class]

	total := 0.0
	for _, c := range n.Value {
		total += c
	}
	alpha := 0.0
	if total > 0 {
		share := n.Value[class] / total
		floor := 1 / float64(len(n.Value))
		alpha = (share - floor) / (1 - floor)
	}

	blend := func(c uint8) uint8 {
		return uint8(255 - alpha*(255-float64(c)))
	}
	return drawing.Color{R: blend(base.R), G: blend(base.G), B: blend(base.B), A: 255}
}
