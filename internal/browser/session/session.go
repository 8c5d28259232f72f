// internal/browser/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/browser/dom"
	"github.com/xkilldash9x/capsule-browser/internal/browser/events"
	"github.com/xkilldash9x/capsule-browser/internal/browser/jsbind"
	"github.com/xkilldash9x/capsule-browser/internal/browser/jsexec"
	"github.com/xkilldash9x/capsule-browser/internal/browser/layout"
	"github.com/xkilldash9x/capsule-browser/internal/browser/parser"
	"github.com/xkilldash9x/capsule-browser/internal/browser/render"
)

// ErrNoDocument is returned by Tick and Reload before anything was loaded.
var ErrNoDocument = errors.New("no document loaded")

// InputSource is polled once per tick by the host loop.
type InputSource interface {
	Poll() events.Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func() events.Input

func (f InputFunc) Poll() events.Input { return f() }

// Options configures a Session.
type Options struct {
	Width, Height   float32
	CallbackTimeout time.Duration
	LoadTimeout     time.Duration
	Measurer        layout.TextMeasurer
}

// Frame is the outcome of a single tick.
type Frame struct {
	DocumentID uuid.UUID
	Title      string
	Dispatch   events.Result
	// Relayout is true when a dirty node triggered a layout pass.
	Relayout  bool
	LayoutErr error
	DrawList  []render.DrawCall
}

// Session owns the active Document and drives ticks against it.
//
// Lock order is document lock, then per-node locks. Tick holds the read lock
// for its whole duration; LoadDocument only takes the write lock to swap the
// pointer, so an in-flight tick always finishes against the document it
// started with.
type Session struct {
	mu  sync.RWMutex
	doc atomic.Pointer[Document]

	opts       Options
	parser     *parser.Parser
	resolver   *layout.Resolver
	dispatcher *events.Dispatcher
	logger     *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	log := logger.Named("session")
	return &Session{
		opts:       opts,
		parser:     parser.New(logger),
		resolver:   layout.NewResolver(opts.Width, opts.Height, opts.Measurer, logger),
		dispatcher: events.NewDispatcher(logger),
		logger:     log,
	}
}

// Current returns the active document, or nil.
func (s *Session) Current() *Document {
	return s.doc.Load()
}

// Dispatcher exposes the event dispatcher, mainly for its State.
func (s *Session) Dispatcher() *events.Dispatcher {
	return s.dispatcher
}

// LoadFile reads path (with ~ expanded) and loads it.
func (s *Session) LoadFile(ctx context.Context, path string) (*Document, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding path %q: %w", path, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", path, err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		s.logger.Error("Failed to read capsule, keeping current document.", zap.String("path", abs), zap.Error(err))
		return nil, fmt.Errorf("reading capsule: %w", err)
	}
	return s.load(ctx, src, abs)
}

// LoadDocument parses src into a fresh Document, lays it out, runs its
// scripts and only then makes it current. On failure the previous document
// stays active.
func (s *Session) LoadDocument(ctx context.Context, src []byte) (*Document, error) {
	return s.load(ctx, src, "")
}

// Reload loads the current document's file again.
func (s *Session) Reload(ctx context.Context) (*Document, error) {
	cur := s.Current()
	if cur == nil {
		return nil, ErrNoDocument
	}
	if cur.Path == "" {
		return nil, errors.New("current document was not loaded from a file")
	}
	return s.LoadFile(ctx, cur.Path)
}

func (s *Session) load(ctx context.Context, src []byte, path string) (*Document, error) {
	capsule, err := s.parser.Parse(src)
	if err != nil {
		s.logger.Error("Failed to load capsule, keeping current document.", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	id := uuid.New()
	docLogger := s.logger.With(zap.String("document_id", id.String()))
	engine := jsexec.New(docLogger,
		jsexec.WithCallbackTimeout(s.opts.CallbackTimeout),
		jsexec.WithLoadTimeout(s.opts.LoadTimeout),
	)

	doc := &Document{
		ID:       id,
		Meta:     capsule.Meta,
		Root:     capsule.Root,
		Engine:   engine,
		Path:     path,
		LoadedAt: time.Now(),
		Warnings: capsule.Warnings,
	}
	doc.Bridge = jsbind.NewBridge(engine, doc.Root, doc.Meta.Title, docLogger)
	if err := doc.Bridge.Install(); err != nil {
		return nil, fmt.Errorf("installing script bridge: %w", err)
	}

	// Initial layout so scripts observe real geometry.
	layout.ScanAndClearDirty(doc.Root)
	if err := s.resolver.Resolve(doc.Root); err != nil {
		docLogger.Warn("Initial layout failed.", zap.Error(err))
		doc.Root.Style().MarkDirty()
	}

	for _, script := range doc.scripts() {
		if err := engine.LoadAndRun(ctx, script.name, script.src); err != nil {
			doc.Warnings = append(doc.Warnings, err)
			docLogger.Warn("Script failed during load, document stays usable.", zap.String("script", script.name), zap.Error(err))
		}
	}

	s.mu.Lock()
	prev := s.doc.Swap(doc)
	s.mu.Unlock()

	fields := []zap.Field{
		zap.String("title", doc.Meta.Title),
		zap.Int("nodes", dom.Count(doc.Root)),
		zap.Int("warnings", len(doc.Warnings)),
	}
	if prev != nil {
		fields = append(fields, zap.String("replaced", prev.ID.String()))
	}
	docLogger.Info("Capsule loaded.", fields...)
	return doc, nil
}

// Tick runs one frame: dispatch input, relayout if anything is dirty, and
// capture the draw list.
func (s *Session) Tick(ctx context.Context, in events.Input) (Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := s.doc.Load()
	if doc == nil {
		return Frame{}, ErrNoDocument
	}

	frame := Frame{DocumentID: doc.ID, Title: doc.Meta.Title}
	frame.Dispatch = s.dispatcher.Dispatch(ctx, doc.Root, in, doc.Engine)

	if layout.ScanAndClearDirty(doc.Root) {
		frame.Relayout = true
		if err := s.resolver.Resolve(doc.Root); err != nil {
			// Geometry from the last good pass stays in place.
			frame.LayoutErr = err
		}
	}

	frame.DrawList = render.BuildDrawList(doc.Root)
	return frame, nil
}

// Run ticks every interval until ctx is done, handing each frame to onFrame.
func (s *Session) Run(ctx context.Context, input InputSource, interval time.Duration, onFrame func(Frame)) error {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Tick loop stopped.")
			return nil
		case <-ticker.C:
			var in events.Input
			if input != nil {
				in = input.Poll()
			}
			frame, err := s.Tick(ctx, in)
			if err != nil {
				if errors.Is(err, ErrNoDocument) {
					continue
				}
				return err
			}
			if onFrame != nil {
				onFrame(frame)
			}
		}
	}
}
