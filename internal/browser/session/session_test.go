package session_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
	"github.com/xkilldash9x/capsule-browser/internal/browser/events"
	"github.com/xkilldash9x/capsule-browser/internal/browser/parser"
	"github.com/xkilldash9x/capsule-browser/internal/browser/session"
	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

const counterCapsule = `<capsule>
  <meta>
    <title>Counter</title>
    <script>
      var outerHits = 0;
      var innerHits = 0;
      var lastButton = -1;
      function outerClick(button) { outerHits++; lastButton = button; }
      function innerClick(button) {
        innerHits++;
        var inner = document.findById("inner");
        inner.style.width = 300;
        document.findById("label").text = "clicked " + innerHits;
      }
      function stats() { return [outerHits, innerHits, lastButton].join(","); }
    </script>
  </meta>
  <view>
    <obj id="outer" width="400" height="200" onclick="outerClick" onrightclick="outerClick">
      <obj id="inner" width="100" height="100" onclick="innerClick" background_color="#ff0000"/>
      <text id="label">idle</text>
    </obj>
  </view>
</capsule>`

func newSession(t *testing.T) *session.Session {
	return session.New(session.Options{Width: 800, Height: 600}, zaptest.NewLogger(t))
}

func stats(t *testing.T, doc *session.Document) string {
	t.Helper()
	out, err := doc.Engine.CallFunction(context.Background(), "stats")
	require.NoError(t, err)
	return out.(string)
}

func click(x, y float32, buttons ...events.Button) events.Input {
	if len(buttons) == 0 {
		buttons = []events.Button{events.ButtonPrimary}
	}
	return events.Input{X: x, Y: y, Pressed: buttons}
}

func TestTickBeforeLoad(t *testing.T) {
	_, err := newSession(t).Tick(context.Background(), events.Input{})
	assert.ErrorIs(t, err, session.ErrNoDocument)
}

func TestLoadLaysOutBeforeFirstTick(t *testing.T) {
	s := newSession(t)
	doc, err := s.LoadDocument(context.Background(), []byte(counterCapsule))
	require.NoError(t, err)

	assert.Equal(t, "Counter", doc.Title())
	assert.Same(t, doc, s.Current())
	inner := dom.FindByID(doc.Root, "inner")
	assert.Equal(t, dom.Geometry{X: 0, Y: 0, Width: 100, Height: 100}, inner.Geometry().Get())

	frame, err := s.Tick(context.Background(), events.Input{})
	require.NoError(t, err)
	assert.False(t, frame.Relayout, "nothing changed since load")
	assert.Equal(t, doc.ID, frame.DocumentID)
	// outer, inner and label; the view and scripts do not draw.
	assert.Len(t, frame.DrawList, 3)
}

// Clicking the inner box fires both the inner and the enclosing handler.
func TestClickFiresEveryContainingNode(t *testing.T) {
	s := newSession(t)
	doc, err := s.LoadDocument(context.Background(), []byte(counterCapsule))
	require.NoError(t, err)

	frame, err := s.Tick(context.Background(), click(50, 50))
	require.NoError(t, err)
	assert.Equal(t, []string{"outerClick", "innerClick"}, frame.Dispatch.Callbacks)
	assert.Equal(t, "1,1,0", stats(t, doc))

	// The callback changed style, so this same tick relaid out.
	assert.True(t, frame.Relayout)
	inner := dom.FindByID(doc.Root, "inner")
	assert.InDelta(t, 300, inner.Geometry().Get().Width, 0.01)
	label := dom.FindByID(doc.Root, "label")
	txt, _ := label.AsText()
	assert.Equal(t, "clicked 1", txt.Content())
	assert.InDelta(t, 300, label.Geometry().Get().X, 0.01)

	// Outside inner, only outer fires.
	_, err = s.Tick(context.Background(), click(350, 150, events.ButtonSecondary))
	require.NoError(t, err)
	assert.Equal(t, "2,1,2", stats(t, doc))
}

func TestLoadFailureKeepsPreviousDocument(t *testing.T) {
	s := newSession(t)
	first, err := s.LoadDocument(context.Background(), []byte(counterCapsule))
	require.NoError(t, err)

	_, err = s.LoadDocument(context.Background(), []byte(`<capsule><view><obj></capsule>`))
	var parseErr *parser.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Same(t, first, s.Current())

	frame, err := s.Tick(context.Background(), events.Input{})
	require.NoError(t, err)
	assert.Equal(t, first.ID, frame.DocumentID)
}

func TestScriptFailureLeavesDocumentUsable(t *testing.T) {
	src := `<capsule>
	  <meta><script>var ok = 1; throw new Error("init failed");</script></meta>
	  <view>
	    <obj id="box" width="10" height="10" onclick="missingFn"/>
	    <script>function later() { return "still here"; }</script>
	  </view>
	</capsule>`

	s := newSession(t)
	doc, err := s.LoadDocument(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Warnings, 1)

	out, err := doc.Engine.CallFunction(context.Background(), "later")
	require.NoError(t, err)
	assert.Equal(t, "still here", out)

	frame, err := s.Tick(context.Background(), click(5, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Dispatch.Failures)
}

func TestLayoutErrorKeepsGeometry(t *testing.T) {
	s := newSession(t)
	doc, err := s.LoadDocument(context.Background(), []byte(counterCapsule))
	require.NoError(t, err)
	inner := dom.FindByID(doc.Root, "inner")
	before := inner.Geometry().Get()

	inner.Style().SetWidth(style.Points(-5))
	frame, err := s.Tick(context.Background(), events.Input{})
	require.NoError(t, err)
	assert.True(t, frame.Relayout)
	assert.Error(t, frame.LayoutErr)
	assert.Equal(t, before, inner.Geometry().Get())
}

func capsuleWithLabel(title, label string) []byte {
	return []byte(fmt.Sprintf(`<capsule><meta><title>%s</title></meta><view><text>%s</text></view></capsule>`, title, label))
}

// Ticks running during reloads always see one whole document: the title,
// document ID and tree of a frame belong together.
func TestReloadAtomicity(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newSession(t)
	_, err := s.LoadDocument(context.Background(), capsuleWithLabel("B", "label-B"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg, ready sync.WaitGroup
	var mismatches, frames int
	var mu sync.Mutex

	const tickers = 4
	ready.Add(tickers)
	for i := 0; i < tickers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first := true
			for ctx.Err() == nil {
				frame, err := s.Tick(ctx, events.Input{})
				if err != nil {
					continue
				}
				mu.Lock()
				frames++
				if len(frame.DrawList) != 1 || frame.DrawList[0].Text != "label-"+frame.Title {
					mismatches++
				}
				mu.Unlock()
				if first {
					first = false
					ready.Done()
				}
			}
		}()
	}
	ready.Wait()

	names := []string{"A", "B"}
	for i := 0; i < 50; i++ {
		name := names[i%2]
		_, err := s.LoadDocument(context.Background(), capsuleWithLabel(name, "label-"+name))
		require.NoError(t, err)
	}
	cancel()
	wg.Wait()

	assert.Zero(t, mismatches)
	assert.GreaterOrEqual(t, frames, tickers)
	// i = 49 is odd, so the last load was "B".
	assert.Equal(t, "B", s.Current().Title())
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newSession(t)
	_, err := s.LoadDocument(context.Background(), []byte(counterCapsule))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var count int
	var mu sync.Mutex
	go func() {
		done <- s.Run(ctx, session.InputFunc(func() events.Input { return events.Input{} }), time.Millisecond, func(session.Frame) {
			mu.Lock()
			count++
			if count == 5 {
				cancel()
			}
			mu.Unlock()
		})
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("run loop did not stop")
	}
	mu.Lock()
	assert.GreaterOrEqual(t, count, 5)
	mu.Unlock()
}

func TestReloadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.capsule")
	require.NoError(t, os.WriteFile(path, capsuleWithLabel("one", "x"), 0o644))

	s := newSession(t)
	first, err := s.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, first.Path)

	require.NoError(t, os.WriteFile(path, capsuleWithLabel("two", "y"), 0o644))
	second, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "two", second.Title())
	assert.NotEqual(t, first.ID, second.ID)

	_, err = s.LoadFile(context.Background(), filepath.Join(dir, "missing.capsule"))
	assert.Error(t, err)
	assert.Same(t, second, s.Current())
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "watched.capsule")
	require.NoError(t, os.WriteFile(path, capsuleWithLabel("before", "x"), 0o644))

	s := newSession(t)
	_, err := s.LoadFile(context.Background(), path)
	require.NoError(t, err)

	w, err := session.NewWatcher(s, path, 10*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)
	reloaded := make(chan string, 8)
	w.OnReload(func(doc *session.Document, err error) {
		if err == nil {
			reloaded <- doc.Title()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, capsuleWithLabel("after", "y"), 0o644))

	select {
	case title := <-reloaded:
		assert.Equal(t, "after", title)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload")
	}
	assert.Equal(t, "after", s.Current().Title())

	cancel()
	assert.NoError(t, <-done)
}
