// Package render turns a laid-out scene tree into draw calls and replays them
// onto a drawing surface.
package render

import (
	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

// Surface is the minimal set of primitives a backend provides. Coordinates
// are absolute window pixels; text is positioned by its top-left corner.
type Surface interface {
	DrawRect(x, y, width, height float32, c style.Color)
	DrawText(text string, x, y float32, fontSize uint16, c style.Color)
}

// DrawCall is one visual node captured at a point in time.
type DrawCall struct {
	Kind       dom.Kind
	Box        dom.Geometry
	Text       string
	FontSize   uint16
	Color      *style.Color
	Background *style.Color
}

// Options controls how draw calls are replayed.
type Options struct {
	// DefaultTextColor applies to text nodes without a color.
	DefaultTextColor style.Color
}

// DefaultOptions draws text white.
func DefaultOptions() Options {
	return Options{DefaultTextColor: style.White}
}

// BuildDrawList captures every visual node in pre-order, so later calls
// paint over earlier ones.
func BuildDrawList(root *dom.Node) []DrawCall {
	var calls []DrawCall
	dom.ForEachDescendant(root, func(n *dom.Node) {
		if !n.Kind().IsVisual() {
			return
		}
		s := n.Style().Snapshot()
		call := DrawCall{
			Kind:       n.Kind(),
			Box:        n.Geometry().Get(),
			FontSize:   s.FontSize,
			Color:      s.Color,
			Background: s.BackgroundColor,
		}
		if txt, ok := n.AsText(); ok {
			call.Text = txt.Content()
		}
		calls = append(calls, call)
	})
	return calls
}

// Execute replays calls onto surface. Containers paint their background
// color if they have one; text nodes paint their content.
func Execute(calls []DrawCall, surface Surface, opts Options) {
	for _, c := range calls {
		if c.Background != nil && c.Box.Width > 0 && c.Box.Height > 0 {
			surface.DrawRect(c.Box.X, c.Box.Y, c.Box.Width, c.Box.Height, *c.Background)
		}
		if c.Kind == dom.KindText && c.Text != "" {
			col := opts.DefaultTextColor
			if c.Color != nil {
				col = *c.Color
			}
			surface.DrawText(c.Text, c.Box.X, c.Box.Y, c.FontSize, col)
		}
	}
}
