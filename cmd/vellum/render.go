package main

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vellum/pkg/driver"
	"vellum/pkg/geom"
	"vellum/pkg/logging"
	"vellum/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output string
		scale  float64
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "render <file-or-url>",
		Short: "Render a document for the screen into a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.renderPNG(cmd.Context(), args[0], output, scale, full)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.png", "output PNG path")
	cmd.Flags().Float64Var(&scale, "scale", 1, "device pixels per CSS pixel")
	cmd.Flags().BoolVar(&full, "full", false, "grow the canvas to the whole document")
	return cmd
}

func (a *app) renderPNG(ctx context.Context, input, output string, scale float64, full bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := a.load(ctx, input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", input, err)
	}
	media, vp := a.screen()
	res, err := driver.Render(ctx, doc, media, vp, a.options())
	if err != nil {
		return err
	}
	logWarnings(input, res.Warnings)

	canvas := vp.Small
	if full {
		canvas = geom.Size{
			Width:  math.Max(canvas.Width, res.Size.Width),
			Height: math.Max(canvas.Height, res.Size.Height),
		}
	}
	r := render.ForSize(canvas, a.rasterOptions(scale))
	if err := r.Render(ctx, res.Scene); err != nil {
		return err
	}
	if err := r.SavePNG(output); err != nil {
		return fmt.Errorf("saving %s: %w", output, err)
	}
	logging.L().Info("Rendered", zap.String("input", input), zap.String("output", output))
	return nil
}
