// Package raster is a headless render.Surface backed by gogpu/gg.
package raster

import (
	"fmt"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

// Canvas draws into an in-memory image. It is not safe for concurrent use.
type Canvas struct {
	ctx    *gg.Context
	source *text.FontSource
	faces  map[uint16]text.Face
}

// New creates a width x height canvas. An empty fontPath uses the built-in
// Go Regular face.
func New(width, height int, fontPath string) (*Canvas, error) {
	var (
		source *text.FontSource
		err    error
	)
	if fontPath == "" {
		source, err = text.NewFontSource(goregular.TTF)
	} else {
		source, err = text.NewFontSourceFromFile(fontPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}

	return &Canvas{
		ctx:    gg.NewContext(width, height),
		source: source,
		faces:  make(map[uint16]text.Face),
	}, nil
}

func toRGBA(c style.Color) gg.RGBA {
	return gg.RGBA2(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// Clear fills the whole canvas with c.
func (c *Canvas) Clear(col style.Color) {
	c.ctx.ClearWithColor(toRGBA(col))
}

func (c *Canvas) DrawRect(x, y, width, height float32, col style.Color) {
	c.ctx.SetColor(col)
	c.ctx.DrawRectangle(float64(x), float64(y), float64(width), float64(height))
	// Fill only fails for GPU-backed renderers; the software path is used here.
	_ = c.ctx.Fill()
}

func (c *Canvas) face(size uint16) text.Face {
	if f, ok := c.faces[size]; ok {
		return f
	}
	f := c.source.Face(float64(size))
	c.faces[size] = f
	return f
}

// DrawText draws s with its top-left corner at (x, y).
func (c *Canvas) DrawText(s string, x, y float32, fontSize uint16, col style.Color) {
	if fontSize == 0 {
		return
	}
	f := c.face(fontSize)
	c.ctx.SetFont(f)
	c.ctx.SetColor(col)
	c.ctx.DrawString(s, float64(x), float64(y)+f.Metrics().Ascent)
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.ctx.EncodePNG(w)
}

func (c *Canvas) SavePNG(path string) error {
	return c.ctx.SavePNG(path)
}

// Close releases the drawing context and the font source.
func (c *Canvas) Close() error {
	ctxErr := c.ctx.Close()
	if err := c.source.Close(); err != nil {
		return err
	}
	return ctxErr
}
