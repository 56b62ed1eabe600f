package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vellum/pkg/css"
	"vellum/pkg/driver"
	"vellum/pkg/logging"
	"vellum/pkg/render"
)

func newPrintCmd(a *app) *cobra.Command {
	var (
		output string
		paper  string
		scale  float64
	)
	cmd := &cobra.Command{
		Use:   "print <file-or-url>",
		Short: "Lay out a document on paper and write each page as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if paper != "" {
				a.cfg.Print.Paper = paper
				a.cfg.Print.Width, a.cfg.Print.Height = 0, 0
			}
			size, err := a.paper()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			doc, err := a.load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}
			res, err := driver.Print(ctx, doc, css.Media{Width: size.Width, Height: size.Height}, a.options())
			if err != nil {
				return err
			}
			logWarnings(args[0], res.Warnings)

			for i, page := range res.Pages {
				name := pageName(output, i, len(res.Pages))
				r := render.ForSize(page.Size, a.rasterOptions(scale))
				if err := r.Render(ctx, page); err != nil {
					return err
				}
				if err := r.SavePNG(name); err != nil {
					return fmt.Errorf("saving %s: %w", name, err)
				}
				logging.L().Info("Printed page", zap.Int("page", i+1), zap.String("output", name))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "page.png", "output PNG path; pages after the first get a -N suffix")
	cmd.Flags().StringVar(&paper, "paper", "", "paper size (a3, a4, a5, letter, legal)")
	cmd.Flags().Float64Var(&scale, "scale", 1, "device pixels per CSS pixel")
	return cmd
}

func pageName(output string, i, n int) string {
	if n == 1 || i == 0 {
		return output
	}
	ext := filepath.Ext(output)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(output, ext), i+1, ext)
}
