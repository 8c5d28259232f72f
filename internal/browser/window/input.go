package window

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/xkilldash9x/capsule-browser/internal/browser/events"
)

// Poller samples host input once per frame.
type Poller interface {
	// Poll returns pointer input for this frame and whether a reload was
	// requested.
	Poll() (in events.Input, reload bool)
}

var buttonMap = []struct {
	host   ebiten.MouseButton
	button events.Button
}{
	{ebiten.MouseButtonLeft, events.ButtonPrimary},
	{ebiten.MouseButtonMiddle, events.ButtonMiddle},
	{ebiten.MouseButtonRight, events.ButtonSecondary},
}

// ebitenPoller reports buttons that went down this frame, so a held button
// fires once.
type ebitenPoller struct{}

func (ebitenPoller) Poll() (events.Input, bool) {
	x, y := ebiten.CursorPosition()
	in := events.Input{X: float32(x), Y: float32(y)}
	for _, m := range buttonMap {
		if inpututil.IsMouseButtonJustPressed(m.host) {
			in.Pressed = append(in.Pressed, m.button)
		}
	}
	return in, inpututil.IsKeyJustPressed(ebiten.KeyF5)
}
