// File: cmd/render.go
package cmd

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/capsule-browser/internal/browser/render"
	"github.com/xkilldash9x/capsule-browser/internal/browser/render/raster"
	"github.com/xkilldash9x/capsule-browser/internal/config"
	"github.com/xkilldash9x/capsule-browser/internal/observability"
)

func newRenderCmd(cfg *config.Config) *cobra.Command {
	var (
		out    string
		clicks []string
		ticks  int
	)

	renderCmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Run a capsule headlessly and write the final frame as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger().Named("render")
			inputs, err := parseClicks(clicks)
			if err != nil {
				return err
			}
			outPath, err := homedir.Expand(out)
			if err != nil {
				return fmt.Errorf("expanding output path: %w", err)
			}

			s, frame, err := runHeadless(cmd.Context(), cfg, logger, args[0], inputs, ticks)
			if err != nil {
				return err
			}

			canvas, err := raster.New(cfg.Viewport.Width, cfg.Viewport.Height, cfg.Render.FontPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := canvas.Close(); err != nil {
					logger.Debug("Closing canvas failed.", zap.Error(err))
				}
			}()

			canvas.Clear(cfg.Render.ClearRGBA())
			render.Execute(frame.DrawList, canvas, render.Options{DefaultTextColor: cfg.Render.TextRGBA()})
			if err := canvas.SavePNG(outPath); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			logger.Info("Frame written.",
				zap.String("document_id", s.Current().ID.String()),
				zap.String("out", outPath),
				zap.Int("draw_calls", len(frame.DrawList)))
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%dx%d)\n", outPath, cfg.Viewport.Width, cfg.Viewport.Height)
			return nil
		},
	}

	renderCmd.Flags().StringVarP(&out, "out", "o", "frame.png", "output PNG path")
	renderCmd.Flags().StringArrayVar(&clicks, "click", nil, "pointer press as x,y[,button]; repeatable, one tick each")
	renderCmd.Flags().IntVar(&ticks, "ticks", 1, "idle ticks to run after the clicks")
	return renderCmd
}
