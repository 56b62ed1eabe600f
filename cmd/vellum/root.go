package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vellum/pkg/config"
	"vellum/pkg/css"
	"vellum/pkg/driver"
	"vellum/pkg/geom"
	"vellum/pkg/html"
	"vellum/pkg/images"
	"vellum/pkg/layout"
	"vellum/pkg/logging"
	"vellum/pkg/render"
	"vellum/pkg/resource"
	"vellum/pkg/text"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfgFile  string
	logLevel string

	cfg     *config.Config
	fetcher resource.Fetcher
	images  *images.Cache
	fonts   text.FontConfig
	measure text.Measurer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "vellum",
		Short:         "Lay out and paint HTML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newRenderCmd(a), newPrintCmd(a), newBoxesCmd(a), newBatchCmd(a), newCompareCmd(a))
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	logging.InitializeStderr(cfg.Log)

	a.fetcher = resource.NewFetcher(
		resource.WithTimeout(cfg.Fetch.Timeout),
		resource.WithUserAgent(cfg.Fetch.UserAgent),
		resource.WithLogger(logging.L()),
	)
	a.images = images.NewCache(a.fetcher)
	a.measure = text.FixedMeasurer{}
	if cfg.Text.FontPath != "" {
		a.fonts = text.FontConfig{Regular: cfg.Text.FontPath}
		m := text.NewFontMeasurer(a.fonts)
		if err := m.Check(); err != nil {
			logging.L().Warn("Falling back to the built-in face", zap.Error(err))
		} else {
			a.measure = m
		}
	}
	return nil
}

func (a *app) options() driver.Options {
	return driver.Options{
		Fetcher:  a.fetcher,
		BaseURL:  a.cfg.Fetch.BaseURL,
		Measurer: a.measure,
		Images:   a.images,
		Logger:   logging.L(),
	}
}

func (a *app) rasterOptions(scale float64) render.Options {
	return render.Options{Fonts: a.fonts, Images: a.images, Scale: scale, Logger: logging.L()}
}

// screen returns the screen media and viewport from the configuration.
func (a *app) screen() (css.Media, layout.Viewport) {
	v := a.cfg.Viewport
	vp := layout.Viewport{
		Small: geom.Size{Width: v.Width, Height: v.Height},
		Large: geom.Size{Width: v.LargeWidth, Height: v.LargeHeight},
	}
	large := vp.LargeSize()
	return css.Media{
		Type:        css.MediaScreen,
		Width:       v.Width,
		Height:      v.Height,
		LargeWidth:  large.Width,
		LargeHeight: large.Height,
	}, vp
}

// paper returns the print media box.
func (a *app) paper() (geom.Size, error) {
	p := a.cfg.Print
	if p.Width > 0 && p.Height > 0 {
		return geom.Size{Width: p.Width, Height: p.Height}, nil
	}
	size, ok := driver.PaperSize(p.Paper)
	if !ok {
		return geom.Size{}, fmt.Errorf("unknown paper size %q", p.Paper)
	}
	return size, nil
}

// load reads a document from a file path or a URL.
func (a *app) load(ctx context.Context, input string) (*html.Document, error) {
	if !resource.IsNetworkURL(input) {
		return html.ParseFile(input)
	}
	res, err := a.fetcher.Fetch(ctx, input)
	if err != nil {
		return nil, err
	}
	return html.Parse(bytes.NewReader(res.Body), res.URL)
}

func logWarnings(input string, warnings []error) {
	if len(warnings) > 0 {
		logging.L().Info("Rendered with warnings", zap.String("input", input), zap.Int("count", len(warnings)))
	}
}
