// Package flex is a single-line flexbox solver. It sizes and positions a tree
// of boxes from their width/height constraints, direction, justification and
// cross-axis alignment. Every item has flex-grow 0, flex-shrink 1 and an auto
// basis: children that do not fit shrink in proportion to their size. There
// is no wrapping.
package flex

import (
	"fmt"
	"math"

	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

// MeasureFunc reports the intrinsic size of a leaf, e.g. a run of text.
type MeasureFunc func() (width, height float32)

// Style is the subset of a node's styling the solver reads.
type Style struct {
	Width         style.Dimension
	Height        style.Dimension
	FlexDirection style.FlexDirection
	Justify       style.JustifyContent
	Align         style.AlignItems
}

// Layout is the solved box of a node, relative to its parent's origin.
type Layout struct {
	X, Y          float32
	Width, Height float32
}

// Node is one box in the constraint tree. Solve writes Layout.
type Node struct {
	Style    Style
	Measure  MeasureFunc
	Children []*Node
	Layout   Layout
}

// InvalidSizeError is returned when a constraint or a solved size is not a
// finite, non-negative number.
type InvalidSizeError struct {
	Field string
	Value float32
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

// Solve lays out root inside an available area of width x height. The root
// itself is placed at the origin.
func Solve(root *Node, width, height float32) error {
	if root == nil {
		return nil
	}
	if err := checkSize("available width", width); err != nil {
		return err
	}
	if err := checkSize("available height", height); err != nil {
		return err
	}
	if err := validate(root); err != nil {
		return err
	}

	w, h := measure(root, width, height, true, true)
	root.Layout = Layout{Width: w, Height: h}
	return place(root, w, h)
}

func checkSize(field string, v float32) error {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || v < 0 {
		return &InvalidSizeError{Field: field, Value: v}
	}
	return nil
}

func checkDimension(field string, d style.Dimension) error {
	switch d.Unit {
	case style.DimensionPoints:
		return checkSize(field, d.Value)
	case style.DimensionPercent:
		f := float64(d.Value)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &InvalidSizeError{Field: field, Value: d.Value}
		}
	}
	return nil
}

func validate(n *Node) error {
	if err := checkDimension("width", n.Style.Width); err != nil {
		return err
	}
	if err := checkDimension("height", n.Style.Height); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := validate(c); err != nil {
			return err
		}
	}
	return nil
}

// resolve turns a dimension into points. Percentages of an indefinite parent
// behave like auto.
func resolve(d style.Dimension, parent float32, parentDefinite bool) (float32, bool) {
	switch d.Unit {
	case style.DimensionPoints:
		return d.Value, true
	case style.DimensionPercent:
		if parentDefinite {
			return max(0, d.Value*parent), true
		}
	}
	return 0, false
}

// measure returns the outer size n wants inside a parent content box.
func measure(n *Node, parentW, parentH float32, defW, defH bool) (float32, float32) {
	w, wDef := resolve(n.Style.Width, parentW, defW)
	h, hDef := resolve(n.Style.Height, parentH, defH)
	if wDef && hDef {
		return w, h
	}

	var cw, ch float32
	if n.Measure != nil {
		cw, ch = n.Measure()
	} else {
		cw, ch = contentSize(n, w, h, wDef, hDef)
	}
	if !wDef {
		w = cw
	}
	if !hDef {
		h = ch
	}
	return w, h
}

// contentSize sums children along the main axis and takes the largest along
// the cross axis.
func contentSize(n *Node, w, h float32, defW, defH bool) (float32, float32) {
	row := n.Style.FlexDirection.IsRow()
	var main, cross float32
	for _, c := range n.Children {
		cw, chh := measure(c, w, h, defW, defH)
		if row {
			main += cw
			cross = max(cross, chh)
		} else {
			main += chh
			cross = max(cross, cw)
		}
	}
	if row {
		return main, cross
	}
	return cross, main
}

type item struct {
	node        *Node
	main, cross float32
}

// place positions the children of n, whose final size is w x h, then
// recurses into each child.
func place(n *Node, w, h float32) error {
	if len(n.Children) == 0 {
		return nil
	}

	dir := n.Style.FlexDirection
	row := dir.IsRow()
	mainAvail, crossAvail := w, h
	if !row {
		mainAvail, crossAvail = h, w
	}

	items := make([]item, len(n.Children))
	var used float32
	for i, c := range n.Children {
		cw, ch := measure(c, w, h, true, true)
		it := item{node: c, main: cw, cross: ch}
		crossDim := c.Style.Height
		if !row {
			it.main, it.cross = ch, cw
			crossDim = c.Style.Width
		}
		if n.Style.Align == style.AlignStretch && !crossDim.IsDefinite() {
			it.cross = crossAvail
		}
		items[i] = it
		used += it.main
	}
	if used-mainAvail > 0.001 {
		shrinkToFit(items, used-mainAvail)
		used = 0
		for _, it := range items {
			used += it.main
		}
	}

	offset, spacing := alignmentOffsets(len(items), used, mainAvail, n.Style.Justify)
	if dir.IsReverse() {
		offset = mainAvail - offset
	}

	for _, it := range items {
		var mainPos float32
		if dir.IsReverse() {
			mainPos = offset - it.main
			offset -= it.main + spacing
		} else {
			mainPos = offset
			offset += it.main + spacing
		}
		crossPos := crossOffset(n.Style.Align, crossAvail-it.cross)

		l := Layout{X: mainPos, Y: crossPos, Width: it.main, Height: it.cross}
		if !row {
			l = Layout{X: crossPos, Y: mainPos, Width: it.cross, Height: it.main}
		}
		if err := checkSize("solved width", l.Width); err != nil {
			return err
		}
		if err := checkSize("solved height", l.Height); err != nil {
			return err
		}
		it.node.Layout = l
		if err := place(it.node, l.Width, l.Height); err != nil {
			return err
		}
	}
	return nil
}

// shrinkToFit takes overflow away from the items' main sizes, each losing a
// share weighted by its own size. Items never go below zero.
func shrinkToFit(items []item, overflow float32) {
	var total float32
	for _, it := range items {
		total += it.main
	}
	if total <= 0 {
		return
	}
	ratio := min(1, overflow/total)
	for i := range items {
		items[i].main -= items[i].main * ratio
	}
}

func crossOffset(align style.AlignItems, free float32) float32 {
	switch align {
	case style.AlignFlexEnd:
		return free
	case style.AlignCenter:
		return free / 2
	default:
		// Stretch, FlexStart and Baseline all start at the cross start.
		return 0
	}
}

// alignmentOffsets returns where the first item starts and the gap between
// items for a justification. Negative free space packs at the start.
func alignmentOffsets(count int, used, avail float32, justify style.JustifyContent) (start, spacing float32) {
	free := avail - used
	if free <= 0.001 {
		return 0, 0
	}

	switch justify {
	case style.JustifyFlexEnd:
		start = free
	case style.JustifyCenter:
		start = free / 2
	case style.JustifySpaceBetween:
		if count > 1 {
			spacing = free / float32(count-1)
		}
	case style.JustifySpaceAround:
		if count > 0 {
			spacing = free / float32(count)
			start = spacing / 2
		}
	case style.JustifySpaceEvenly:
		if count > 0 {
			spacing = free / float32(count+1)
			start = spacing
		}
	}
	return start, spacing
}
