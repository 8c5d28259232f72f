// Package window hosts a capsule session in a desktop window.
package window

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/browser/render"
	"github.com/xkilldash9x/capsule-browser/internal/browser/session"
	"github.com/xkilldash9x/capsule-browser/internal/browser/style"
)

const defaultTitle = "capsule"

// Config sizes the window.
type Config struct {
	Width, Height int
	Background    style.Color
	Render        render.Options
}

// Game drives one Session tick per ebiten update and paints the last frame.
type Game struct {
	ctx     context.Context
	session *session.Session
	cfg     Config
	logger  *zap.Logger

	poller   Poller
	setTitle func(string)
	faces    *faceCache

	frame session.Frame
	title string
}

// NewGame wires s to a window. Update returns ebiten.Termination once ctx
// is done.
func NewGame(ctx context.Context, s *session.Session, cfg Config, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		ctx:      ctx,
		session:  s,
		cfg:      cfg,
		logger:   logger.Named("window"),
		poller:   ebitenPoller{},
		setTitle: ebiten.SetWindowTitle,
	}
}

// Frame returns the most recent frame.
func (g *Game) Frame() session.Frame {
	return g.frame
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	in, reload := g.poller.Poll()
	if reload {
		if _, err := g.session.Reload(g.ctx); err != nil {
			g.logger.Warn("Reload failed, keeping current document.", zap.Error(err))
		}
	}

	frame, err := g.session.Tick(g.ctx, in)
	if err != nil {
		if errors.Is(err, session.ErrNoDocument) {
			return nil
		}
		return err
	}
	g.frame = frame

	title := frame.Title
	if title == "" {
		title = defaultTitle
	}
	if title != g.title {
		g.title = title
		g.setTitle(title)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.Background)
	if g.faces == nil {
		faces, err := newFaceCache()
		if err != nil {
			g.logger.Error("Text rendering disabled.", zap.Error(err))
			faces = &faceCache{}
		}
		g.faces = faces
	}
	var surface render.Surface = imageSurface{dst: screen, faces: g.faces}
	if g.faces.source == nil {
		surface = rectsOnly{surface}
	}
	render.Execute(g.frame.DrawList, surface, g.cfg.Render)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// rectsOnly drops text when no font could be loaded.
type rectsOnly struct{ render.Surface }

func (rectsOnly) DrawText(string, float32, float32, uint16, style.Color) {}

// Run opens the window and blocks until it is closed or ctx is done. It must
// be called from the main goroutine.
func Run(ctx context.Context, s *session.Session, cfg Config, logger *zap.Logger) error {
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(defaultTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	g := NewGame(ctx, s, cfg, logger)
	g.logger.Info("Opening window.", zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
