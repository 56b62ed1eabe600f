package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vellum/pkg/driver"
	"vellum/pkg/logging"
	"vellum/pkg/render"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		diffPath string
		opts     = render.DefaultCompareOptions()
	)
	cmd := &cobra.Command{
		Use:   "compare <file-or-url> <reference.png>",
		Short: "Render a document and compare it with a reference image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			expected, err := readPNG(args[1])
			if err != nil {
				return err
			}
			doc, err := a.load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}
			media, vp := a.screen()
			res, err := driver.Render(ctx, doc, media, vp, a.options())
			if err != nil {
				return err
			}
			logWarnings(args[0], res.Warnings)

			size := expected.Bounds().Size()
			r := render.NewRenderer(size.X, size.Y, a.rasterOptions(1))
			if err := r.Render(ctx, res.Scene); err != nil {
				return err
			}
			opts.Diff = diffPath != ""
			cmp, err := render.Compare(r.Image(), expected, opts)
			if err != nil {
				return err
			}
			if cmp.Diff != nil && !cmp.Match {
				if err := writePNG(diffPath, cmp.Diff); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d pixels differ (max channel difference %d)\n",
				cmp.DifferentPixels, cmp.TotalPixels, cmp.MaxDifference)
			if !cmp.Match {
				return fmt.Errorf("%s does not match %s", args[0], args[1])
			}
			logging.L().Info("Reference matched", zap.String("input", args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&diffPath, "diff", "", "write a diff image here when the images differ")
	cmd.Flags().IntVar(&opts.Tolerance, "tolerance", opts.Tolerance, "largest channel difference that still matches")
	cmd.Flags().IntVar(&opts.FuzzyRadius, "fuzzy", 0, "match pixels within this radius")
	cmd.Flags().Float64Var(&opts.MaxDifferentPercent, "max-percent", 0, "allowed share of differing pixels")
	return cmd
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
