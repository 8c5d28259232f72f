// internal/browser/session/watcher.go
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultQuiet = 50 * time.Millisecond

// Watcher reloads a capsule file into a Session whenever it changes on disk.
// Bursts of events (editors often write several times per save) collapse
// into at most one reload per minInterval.
type Watcher struct {
	session  *Session
	path     string
	fsw      *fsnotify.Watcher
	limiter  *rate.Limiter
	quiet    time.Duration
	logger   *zap.Logger
	onReload func(*Document, error)
}

// NewWatcher watches the directory containing path, which survives editors
// that replace the file instead of writing it in place.
func NewWatcher(s *Session, path string, minInterval time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving watch path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	quiet := minInterval / 2
	if quiet <= 0 {
		quiet = defaultQuiet
	}
	return &Watcher{
		session: s,
		path:    abs,
		fsw:     fsw,
		limiter: rate.NewLimiter(limit, 1),
		quiet:   quiet,
		logger:  logger.Named("watcher").With(zap.String("path", abs)),
	}, nil
}

// OnReload registers a function called after every reload attempt. It must
// be set before Run.
func (w *Watcher) OnReload(fn func(*Document, error)) {
	w.onReload = fn
}

// Run blocks until ctx is done or the underlying watcher fails. It closes
// the watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.logger.Info("Watching capsule for changes.")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			if !w.settle(ctx) {
				return nil
			}
			doc, err := w.session.LoadFile(ctx, w.path)
			if err != nil {
				w.logger.Warn("Reload after change failed.", zap.Error(err))
			}
			if w.onReload != nil {
				w.onReload(doc, err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error.", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// settle waits until the file has been quiet for the minimum interval, so
// an editor's truncate-then-write is loaded once, complete. It returns false
// when ctx ends or the watcher closes.
func (w *Watcher) settle(ctx context.Context) bool {
	timer := time.NewTimer(w.quiet)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-w.fsw.Events:
			if !ok {
				return false
			}
			timer.Reset(w.quiet)
		case <-timer.C:
			return true
		}
	}
}
