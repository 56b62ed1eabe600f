// Package driver runs the render pipeline: stylesheet collection, style
// computation, box tree construction, layout and paint.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"vellum/pkg/css"
	"vellum/pkg/geom"
	"vellum/pkg/html"
	"vellum/pkg/images"
	"vellum/pkg/layout"
	"vellum/pkg/logging"
	"vellum/pkg/resource"
	"vellum/pkg/scene"
	"vellum/pkg/style"
	"vellum/pkg/text"
)

// ErrNoUserAgentSheet is returned when the user-agent stylesheet cannot be
// loaded. Rendering without it is not attempted.
var ErrNoUserAgentSheet = errors.New("user agent stylesheet not available")

// Options configure a render. The zero value fetches with
// resource.NewFetcher and measures text with text.FixedMeasurer.
type Options struct {
	Fetcher resource.Fetcher
	// UserAgent replaces the bundled user-agent stylesheet.
	UserAgent *css.StyleSheet
	// BaseURL overrides the document's base URL.
	BaseURL  string
	Measurer text.Measurer
	// Images caches natural image sizes across renders.
	Images *images.Cache
	Logger *zap.Logger
}

// Result is the output of Render. Warnings holds the recoverable problems
// met on the way: failed fetches, bad links, unstylable elements.
type Result struct {
	StyleBook *style.Book
	Root      *layout.Box
	Scene     *scene.Stack
	// Size is the extent of the laid out document.
	Size     geom.Size
	Warnings []error
}

// Err combines the warnings into one error, or nil.
func (r *Result) Err() error { return multierr.Combine(r.Warnings...) }

// PrintResult is the output of Print.
type PrintResult struct {
	StyleBook *style.Book
	Root      *layout.Box
	Pages     []*scene.Page
	Warnings  []error
}

// Err combines the warnings into one error, or nil.
func (r *PrintResult) Err() error { return multierr.Combine(r.Warnings...) }

type pipeline struct {
	opts     Options
	baseURL  string
	media    css.Media
	fetcher  resource.Fetcher
	images   *images.Cache
	logger   *zap.Logger
	warnings []error
}

func newPipeline(doc *html.Document, media css.Media, opts Options) *pipeline {
	p := &pipeline{opts: opts, media: media, logger: logging.Or(opts.Logger).Named("driver")}
	p.fetcher = opts.Fetcher
	if p.fetcher == nil {
		p.fetcher = resource.NewFetcher(resource.WithLogger(opts.Logger))
	}
	p.images = opts.Images
	if p.images == nil {
		p.images = images.NewCache(p.fetcher)
	}
	p.baseURL = opts.BaseURL
	if p.baseURL == "" && doc != nil {
		p.baseURL = doc.BaseURL
	}
	return p
}

func (p *pipeline) warn(err error) {
	p.logger.Warn("Render warning", zap.Error(err))
	p.warnings = append(p.warnings, err)
}

// build runs style collection, tree building and layout.
func (p *pipeline) build(ctx context.Context, doc *html.Document, vp layout.Viewport) (*style.Book, *layout.Tree, geom.Size, error) {
	start := time.Now()
	book, err := p.styleBook(ctx, doc)
	if err != nil {
		return nil, nil, geom.Size{}, err
	}
	p.logger.Debug("Collected styles", zap.Int("sheets", book.Len()), zap.Duration("duration", time.Since(start)))

	start = time.Now()
	computer := style.NewComputer(book, p.media, p.opts.Logger)
	root, warnings := layout.Build(computer, doc, p.opts.Logger)
	p.warnings = append(p.warnings, warnings...)
	p.naturalSizes(ctx, root)
	p.logger.Debug("Built box tree", zap.Duration("duration", time.Since(start)))

	start = time.Now()
	tree := layout.NewTree(root, vp, p.opts.Measurer, p.opts.Logger)
	size := tree.Run()
	p.logger.Debug("Laid out", zap.Duration("duration", time.Since(start)))
	return book, tree, size, nil
}

// Render lays out doc for a screen viewport and paints it into a prepared
// scene. The only error is a missing user-agent stylesheet; everything
// recoverable ends up in Result.Warnings.
func Render(ctx context.Context, doc *html.Document, media css.Media, vp layout.Viewport, opts Options) (*Result, error) {
	p := newPipeline(doc, media, opts)
	book, tree, size, err := p.build(ctx, doc, vp)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	root := scene.NewStack()
	if tree.Root != nil {
		layout.Paint(tree.Root, root)
	}
	root.Prepare()
	p.logger.Debug("Painted", zap.Duration("duration", time.Since(start)))

	return &Result{StyleBook: book, Root: tree.Root, Scene: root, Size: size, Warnings: p.warnings}, nil
}

// Print lays out doc on the media box and returns one page. Content past
// the page is clipped.
func Print(ctx context.Context, doc *html.Document, media css.Media, opts Options) (*PrintResult, error) {
	media.Type = css.MediaPrint
	if media.Width <= 0 || media.Height <= 0 {
		return nil, fmt.Errorf("print media box %gx%g is empty", media.Width, media.Height)
	}
	size := geom.Size{Width: media.Width, Height: media.Height}
	p := newPipeline(doc, media, opts)
	book, tree, _, err := p.build(ctx, doc, layout.Viewport{Small: size})
	if err != nil {
		return nil, err
	}

	page := scene.NewPage(size)
	if tree.Root != nil {
		layout.Paint(tree.Root, &page.Stack)
	}
	page.Prepare()
	return &PrintResult{StyleBook: book, Root: tree.Root, Pages: []*scene.Page{page}, Warnings: p.warnings}, nil
}

// naturalSizes fills in image sizes the markup did not give, and resolves
// image sources against the base URL.
func (p *pipeline) naturalSizes(ctx context.Context, root *layout.Box) {
	if root == nil {
		return
	}
	root.Walk(func(b *layout.Box) bool {
		img := b.Image
		if b.Kind != layout.KindReplaced || img == nil || img.Src == "" {
			return true
		}
		img.Src = resource.ResolveURL(p.baseURL, img.Src)
		if img.NaturalWidth > 0 && img.NaturalHeight > 0 {
			return true
		}
		w, h, err := p.images.Dimensions(ctx, img.Src)
		if err != nil {
			p.warn(fmt.Errorf("image %s: %w", img.Src, err))
			return true
		}
		switch {
		case img.NaturalWidth > 0:
			img.NaturalHeight = img.NaturalWidth * float64(h) / float64(w)
		case img.NaturalHeight > 0:
			img.NaturalWidth = img.NaturalHeight * float64(w) / float64(h)
		default:
			img.NaturalWidth, img.NaturalHeight = float64(w), float64(h)
		}
		return true
	})
}
