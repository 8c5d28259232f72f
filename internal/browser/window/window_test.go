package window

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/capsule-browser/internal/browser/events"
	"github.com/xkilldash9x/capsule-browser/internal/browser/session"
)

type scriptedPoller struct {
	frames []struct {
		in     events.Input
		reload bool
	}
}

func (p *scriptedPoller) push(in events.Input, reload bool) {
	p.frames = append(p.frames, struct {
		in     events.Input
		reload bool
	}{in, reload})
}

func (p *scriptedPoller) Poll() (events.Input, bool) {
	if len(p.frames) == 0 {
		return events.Input{}, false
	}
	f := p.frames[0]
	p.frames = p.frames[1:]
	return f.in, f.reload
}

const page = `<capsule>
  <meta>
    <title>%s</title>
    <script>function grow() { document.findById("box").style.width = 200; }</script>
  </meta>
  <view><obj id="box" width="50" height="50" onclick="grow"/></view>
</capsule>`

func newTestGame(t *testing.T, ctx context.Context) (*Game, *scriptedPoller, *[]string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.capsule")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(page, "First")), 0o644))

	s := session.New(session.Options{Width: 320, Height: 240}, zaptest.NewLogger(t))
	_, err := s.LoadFile(ctx, path)
	require.NoError(t, err)

	g := NewGame(ctx, s, Config{Width: 320, Height: 240}, zaptest.NewLogger(t))
	p := &scriptedPoller{}
	var titles []string
	g.poller = p
	g.setTitle = func(title string) { titles = append(titles, title) }
	return g, p, &titles, path
}

func TestUpdateTicksSessionAndSetsTitle(t *testing.T) {
	g, p, titles, _ := newTestGame(t, context.Background())

	require.NoError(t, g.Update())
	assert.Equal(t, []string{"First"}, *titles)

	p.push(events.Input{X: 10, Y: 10, Pressed: []events.Button{events.ButtonPrimary}}, false)
	require.NoError(t, g.Update())
	frame := g.Frame()
	assert.Equal(t, []string{"grow"}, frame.Dispatch.Callbacks)
	assert.True(t, frame.Relayout)
	assert.InDelta(t, 200, frame.DrawList[0].Box.Width, 0.01)

	// Title only changes hands when it differs.
	require.NoError(t, g.Update())
	assert.Len(t, *titles, 1)
}

func TestUpdateReloadsOnRequest(t *testing.T) {
	g, p, titles, path := newTestGame(t, context.Background())
	require.NoError(t, g.Update())
	first := g.Frame().DocumentID

	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(page, "Second")), 0o644))
	p.push(events.Input{}, true)
	require.NoError(t, g.Update())

	assert.NotEqual(t, first, g.Frame().DocumentID)
	assert.Equal(t, []string{"First", "Second"}, *titles)
}

func TestUpdateKeepsDocumentWhenReloadFails(t *testing.T) {
	g, p, _, path := newTestGame(t, context.Background())
	require.NoError(t, g.Update())
	first := g.Frame().DocumentID

	require.NoError(t, os.WriteFile(path, []byte("<capsule><view>"), 0o644))
	p.push(events.Input{}, true)
	require.NoError(t, g.Update())
	assert.Equal(t, first, g.Frame().DocumentID)
}

func TestUpdateTerminatesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, _, _, _ := newTestGame(t, ctx)
	cancel()
	assert.ErrorIs(t, g.Update(), ebiten.Termination)
}

func TestNewGameWithoutLogger(t *testing.T) {
	s := session.New(session.Options{Width: 320, Height: 240}, nil)
	var g *Game
	require.NotPanics(t, func() { g = NewGame(context.Background(), s, Config{Width: 320, Height: 240}, nil) })
	assert.NotNil(t, g.logger)
}

func TestLayoutIsFixed(t *testing.T) {
	g, _, _, _ := newTestGame(t, context.Background())
	w, h := g.Layout(1024, 768)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}
