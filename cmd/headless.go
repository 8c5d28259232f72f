// File: cmd/headless.go
package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/browser/events"
	"github.com/xkilldash9x/capsule-browser/internal/browser/session"
	"github.com/xkilldash9x/capsule-browser/internal/config"
)

// parseClick reads "x,y" or "x,y,button".
func parseClick(s string) (events.Input, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return events.Input{}, fmt.Errorf("click %q: want x,y[,button]", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	if err != nil {
		return events.Input{}, fmt.Errorf("click %q: bad x: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if err != nil {
		return events.Input{}, fmt.Errorf("click %q: bad y: %w", s, err)
	}
	button := events.ButtonPrimary
	if len(parts) == 3 {
		b, ok := events.ParseButton(strings.TrimSpace(parts[2]))
		if !ok {
			return events.Input{}, fmt.Errorf("click %q: unknown button %q", s, parts[2])
		}
		button = b
	}
	return events.Input{X: float32(x), Y: float32(y), Pressed: []events.Button{button}}, nil
}

func parseClicks(specs []string) ([]events.Input, error) {
	inputs := make([]events.Input, 0, len(specs))
	for _, spec := range specs {
		in, err := parseClick(spec)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func newSession(cfg *config.Config, logger *zap.Logger) *session.Session {
	return session.New(session.Options{
		Width:           float32(cfg.Viewport.Width),
		Height:          float32(cfg.Viewport.Height),
		CallbackTimeout: cfg.Script.CallbackTimeout,
		LoadTimeout:     cfg.Script.LoadTimeout,
	}, logger)
}

// runHeadless loads path, feeds each click as its own tick, then runs idle
// ticks so script-driven changes settle. It returns the last frame.
func runHeadless(ctx context.Context, cfg *config.Config, logger *zap.Logger, path string, clicks []events.Input, idleTicks int) (*session.Session, session.Frame, error) {
	s := newSession(cfg, logger)
	if _, err := s.LoadFile(ctx, path); err != nil {
		return nil, session.Frame{}, err
	}

	var frame session.Frame
	tick := func(in events.Input) error {
		f, err := s.Tick(ctx, in)
		if err != nil {
			return err
		}
		if f.LayoutErr != nil {
			logger.Warn("Layout failed during headless run.", zap.Error(f.LayoutErr))
		}
		frame = f
		return nil
	}

	for _, in := range clicks {
		if err := tick(in); err != nil {
			return nil, session.Frame{}, err
		}
	}
	if idleTicks < 1 {
		idleTicks = 1
	}
	for i := 0; i < idleTicks; i++ {
		if err := tick(events.Input{}); err != nil {
			return nil, session.Frame{}, err
		}
	}
	return s, frame, nil
}
