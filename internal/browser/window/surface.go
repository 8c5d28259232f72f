package window

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

// faceCache holds one Go Regular face per font size.
type faceCache struct {
	source *text.GoTextFaceSource
	faces  map[uint16]*text.GoTextFace
}

func newFaceCache() (*faceCache, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("loading window font: %w", err)
	}
	return &faceCache{source: src, faces: make(map[uint16]*text.GoTextFace)}, nil
}

func (c *faceCache) face(size uint16) *text.GoTextFace {
	if f, ok := c.faces[size]; ok {
		return f
	}
	f := &text.GoTextFace{Source: c.source, Size: float64(size)}
	c.faces[size] = f
	return f
}

// imageSurface adapts an ebiten image to render.Surface for one Draw call.
type imageSurface struct {
	dst   *ebiten.Image
	faces *faceCache
}

func (s imageSurface) DrawRect(x, y, width, height float32, col style.Color) {
	vector.DrawFilledRect(s.dst, x, y, width, height, col, false)
}

func (s imageSurface) DrawText(str string, x, y float32, fontSize uint16, col style.Color) {
	if fontSize == 0 {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(col)
	op.LineSpacing = float64(fontSize) * 1.2
	text.Draw(s.dst, str, s.faces.face(fontSize), op)
}
