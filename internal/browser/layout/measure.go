package layout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// TextMeasurer reports the rendered size of a run of text.
type TextMeasurer interface {
	MeasureText(text string, fontSize uint16) (width, height float32)
}

// BasicFontMeasurer measures with the fixed 7x13 bitmap face, scaled
// linearly to the requested font size.
type BasicFontMeasurer struct {
	face font.Face
}

func NewBasicFontMeasurer() *BasicFontMeasurer {
	return &BasicFontMeasurer{face: basicfont.Face7x13}
}

func (m *BasicFontMeasurer) MeasureText(text string, fontSize uint16) (float32, float32) {
	if text == "" {
		return 0, 0
	}
	lineHeight := float32(basicfont.Face7x13.Height)
	scale := float32(fontSize) / lineHeight

	lines := strings.Split(text, "\n")
	var widest float32
	for _, line := range lines {
		adv := font.MeasureString(m.face, line)
		widest = max(widest, float32(adv)/64)
	}
	return widest * scale, float32(len(lines)) * lineHeight * scale
}
