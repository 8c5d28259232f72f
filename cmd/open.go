// File: cmd/open.go
package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/capsule-browser/internal/browser/render"
	"github.com/xkilldash9x/capsule-browser/internal/browser/session"
	"github.com/xkilldash9x/capsule-browser/internal/browser/window"
	"github.com/xkilldash9x/capsule-browser/internal/config"
	"github.com/xkilldash9x/capsule-browser/internal/observability"
)

func newOpenCmd(cfg *config.Config) *cobra.Command {
	openCmd := &cobra.Command{
		Use:   "open <file>",
		Short: "Open a capsule in a window (F5 reloads)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			s := newSession(cfg, logger)
			if _, err := s.LoadFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			return runWindow(cmd.Context(), cfg, s, logger)
		},
	}
	openCmd.Flags().Bool("watch", false, "reload when the file changes on disk")
	return openCmd
}

// runWindow blocks in the window loop on the calling goroutine, with the
// optional file watcher running alongside. Closing the window stops the
// watcher; a watcher failure closes the window.
func runWindow(ctx context.Context, cfg *config.Config, s *session.Session, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		w, err := session.NewWatcher(s, s.Current().Path, cfg.Watch.MinInterval, logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}

	winErr := window.Run(gctx, s, window.Config{
		Width:      cfg.Viewport.Width,
		Height:     cfg.Viewport.Height,
		Background: cfg.Render.ClearRGBA(),
		Render:     render.Options{DefaultTextColor: cfg.Render.TextRGBA()},
	}, logger)
	cancel()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return winErr
}
