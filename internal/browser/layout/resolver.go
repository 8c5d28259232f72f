// internal/browser/layout/resolver.go
package layout

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
	"github.com/xkilldash9x/capsule-browser/internal/browser/layout/flex"
	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

// Resolver computes absolute geometry for a whole scene tree.
//
// Each call to Resolve runs three phases:
//  1. build a constraint tree from style snapshots,
//  2. solve it with the flex solver,
//  3. walk the constraint tree and the scene tree in lockstep, writing
//     absolute coordinates into each node's geometry record.
//
// The constraint tree lives only for the duration of the call.
type Resolver struct {
	width, height float32
	measurer      TextMeasurer
	logger        *zap.Logger
}

func NewResolver(width, height float32, measurer TextMeasurer, logger *zap.Logger) *Resolver {
	if measurer == nil {
		measurer = NewBasicFontMeasurer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		width:    width,
		height:   height,
		measurer: measurer,
		logger:   logger.Named("layout"),
	}
}

// Viewport returns the size the root is laid out into.
func (r *Resolver) Viewport() (float32, float32) {
	return r.width, r.height
}

// binding pairs a scene node with the constraint node built for it. The
// children captured here are the ones the apply phase walks, so nodes
// appended mid-resolve are simply picked up on the next relayout.
type binding struct {
	node     *dom.Node
	box      *flex.Node
	children []*binding
}

// Resolve lays out root. On a solver failure no geometry is written and a
// *SolverError is returned.
func (r *Resolver) Resolve(root *dom.Node) error {
	if root == nil {
		return nil
	}

	tree, count := r.build(root, true)
	if err := flex.Solve(tree.box, r.width, r.height); err != nil {
		r.logger.Warn("Layout solve failed, keeping previous geometry.", zap.Int("nodes", count), zap.Error(err))
		return &SolverError{Nodes: count, Err: err}
	}

	apply(tree, 0, 0)
	r.logger.Debug("Layout resolved.", zap.Int("nodes", count))
	return nil
}

func (r *Resolver) build(n *dom.Node, isRoot bool) (*binding, int) {
	s := n.Style().Snapshot()
	box := &flex.Node{
		Style: flex.Style{
			Width:         s.Width,
			Height:        s.Height,
			FlexDirection: s.FlexDirection,
			Justify:       s.Justify,
			Align:         s.Align,
		},
	}
	if isRoot {
		box.Style.Width = style.Points(r.width)
		box.Style.Height = style.Points(r.height)
		box.Style.FlexDirection = style.FlexColumn
	}

	if txt, ok := n.AsText(); ok {
		content, size := txt.Content(), s.FontSize
		box.Measure = func() (float32, float32) {
			return r.measurer.MeasureText(content, size)
		}
	}

	b := &binding{node: n, box: box}
	count := 1
	for _, child := range n.ChildrenSnapshot() {
		if child.Kind() == dom.KindScript {
			// Scripts take no space. They are still tracked so their
			// geometry follows the parent's origin.
			b.children = append(b.children, &binding{node: child})
			count++
			continue
		}
		cb, c := r.build(child, false)
		b.children = append(b.children, cb)
		box.Children = append(box.Children, cb.box)
		count += c
	}
	return b, count
}

// apply writes absolute geometry. ox, oy is the absolute origin of the
// parent's box.
func apply(b *binding, ox, oy float32) {
	if b.box == nil {
		b.node.Geometry().Set(dom.Geometry{X: ox, Y: oy})
		return
	}
	l := b.box.Layout
	x, y := ox+l.X, oy+l.Y
	b.node.Geometry().Set(dom.Geometry{X: x, Y: y, Width: l.Width, Height: l.Height})
	for _, c := range b.children {
		apply(c, x, y)
	}
}
