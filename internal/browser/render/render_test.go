package render_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
	"github.com/xkilldash9x/capsule-browser/internal/browser/render"
	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

type recordingSurface struct {
	ops []string
}

func (r *recordingSurface) DrawRect(x, y, w, h float32, c style.Color) {
	r.ops = append(r.ops, fmt.Sprintf("rect %v,%v %vx%v %s", x, y, w, h, c))
}

func (r *recordingSurface) DrawText(text string, x, y float32, size uint16, c style.Color) {
	r.ops = append(r.ops, fmt.Sprintf("text %q %v,%v %d %s", text, x, y, size, c))
}

func TestBuildDrawListSkipsNonVisual(t *testing.T) {
	label := dom.NewTextNode("hi", nil, nil)
	box := dom.NewNode(dom.KindContainer, []*dom.Node{label}, nil, nil)
	root := dom.NewNode(dom.KindView, []*dom.Node{box, dom.NewScriptNode("x")}, nil, nil)

	calls := render.BuildDrawList(root)
	require.Len(t, calls, 2)
	assert.Equal(t, dom.KindContainer, calls[0].Kind)
	assert.Equal(t, dom.KindText, calls[1].Kind)
	assert.Equal(t, "hi", calls[1].Text)
	assert.Equal(t, style.DefaultFontSize, calls[1].FontSize)
}

func TestExecute(t *testing.T) {
	bg := style.Color{R: 0x33, G: 0x66, B: 0x99, A: 255}
	red := style.Color{R: 255, A: 255}

	calls := []render.DrawCall{
		{Kind: dom.KindContainer, Box: dom.Geometry{X: 0, Y: 0, Width: 100, Height: 50}, Background: &bg},
		{Kind: dom.KindContainer, Box: dom.Geometry{X: 0, Y: 0, Width: 100, Height: 50}},
		{Kind: dom.KindContainer, Box: dom.Geometry{X: 5, Y: 5}, Background: &bg},
		{Kind: dom.KindText, Box: dom.Geometry{X: 10, Y: 20, Width: 40, Height: 20}, Text: "plain", FontSize: 20},
		{Kind: dom.KindText, Box: dom.Geometry{X: 10, Y: 40, Width: 40, Height: 20}, Text: "red", FontSize: 16, Color: &red},
		{Kind: dom.KindText, Box: dom.Geometry{X: 10, Y: 60}, Text: ""},
	}

	surface := &recordingSurface{}
	render.Execute(calls, surface, render.DefaultOptions())

	assert.Equal(t, []string{
		"rect 0,0 100x50 #336699ff",
		`text "plain" 10,20 20 #ffffffff`,
		`text "red" 10,40 16 #ff0000ff`,
	}, surface.ops)
}
