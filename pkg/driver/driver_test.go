package driver

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"vellum/pkg/css"
	"vellum/pkg/geom"
	"vellum/pkg/html"
	"vellum/pkg/layout"
	"vellum/pkg/resource"
	"vellum/pkg/scene"
	"vellum/pkg/text"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	screen   = css.Media{Type: css.MediaScreen, Width: 800, Height: 600}
	viewport = layout.Viewport{Small: geom.Size{Width: 800, Height: 600}}
	red      = color.RGBA{R: 255, A: 255}
	blue     = color.RGBA{B: 255, A: 255}
)

func emptyUA() *css.StyleSheet { return css.ParseStylesheet("", css.OriginUserAgent) }

func parse(t *testing.T, src, base string) *html.Document {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src), base)
	require.NoError(t, err)
	return doc
}

func texts(s *scene.Stack) []*scene.Text {
	var out []*scene.Text
	scene.Walk(s, func(n scene.Node) bool {
		if t, ok := n.(*scene.Text); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

func TestRenderInlineStyle(t *testing.T) {
	doc := parse(t, `<html><style>p{color:red}</style><p>Hi</p></html>`, "")
	res, err := Render(context.Background(), doc, screen, viewport, Options{
		UserAgent: emptyUA(),
		Fetcher:   resource.NewMapFetcher(nil),
		Measurer:  text.FixedMeasurer{},
	})
	require.NoError(t, err)
	require.NoError(t, res.Err())

	got := texts(res.Scene)
	require.Len(t, got, 1)
	assert.Equal(t, "Hi", got[0].Text)
	assert.Equal(t, red, got[0].Color)
	assert.Equal(t, 2, res.StyleBook.Len())
}

func TestRenderSelectors(t *testing.T) {
	src := `<html><style>.a{color:red} #b{color:blue}</style><p class="a" id="b">x</p></html>`
	res, err := Render(context.Background(), parse(t, src, ""), screen, viewport, Options{UserAgent: emptyUA(), Fetcher: resource.NewMapFetcher(nil)})
	require.NoError(t, err)
	got := texts(res.Scene)
	require.Len(t, got, 1)
	assert.Equal(t, blue, got[0].Color, "id selector wins over class")
}

func TestRenderBundledUserAgent(t *testing.T) {
	doc := parse(t, `<html><body><p>one</p><p>two</p></body></html>`, "")
	res, err := Render(context.Background(), doc, screen, viewport, Options{})
	require.NoError(t, err)

	ps := 0
	res.Root.Walk(func(b *layout.Box) bool {
		if b.Tag == "p" {
			ps++
			assert.Equal(t, layout.KindBlock, b.Kind)
		}
		return true
	})
	assert.Equal(t, 2, ps)
	assert.Equal(t, resource.UserAgentStyleSheet, res.StyleBook.Sheets()[0].Href)
}

func TestRenderMissingUserAgent(t *testing.T) {
	doc := parse(t, `<p>x</p>`, "")
	_, err := Render(context.Background(), doc, screen, viewport, Options{
		Fetcher: resource.NewMapFetcher(nil),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoUserAgentSheet))
	assert.True(t, errors.Is(err, resource.ErrNotFound))
}

func TestLinkedStylesheets(t *testing.T) {
	f := resource.NewMapFetcher(map[string]string{
		"http://example.com/css/site.css":  `@import "base.css"; p { color: blue }`,
		"http://example.com/css/base.css":  `p { color: red; font-size: 20px }`,
		"http://example.com/css/print.css": `p { color: green }`,
	})
	src := `<html><head>
<link rel="stylesheet" href="css/site.css">
<link rel="Alternate Stylesheet" href="css/missing.css">
<link rel="icon" href="favicon.ico">
<link rel="stylesheet">
</head><body><p>x</p></body></html>`
	res, err := Render(context.Background(), parse(t, src, "http://example.com/index.html"), screen, viewport,
		Options{UserAgent: emptyUA(), Fetcher: f})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"http://example.com/css/site.css",
		"http://example.com/css/base.css",
		"http://example.com/css/missing.css",
	}, f.Requests())

	sheets := res.StyleBook.Sheets()
	require.Len(t, sheets, 3)
	assert.Equal(t, "http://example.com/css/base.css", sheets[1].Href, "imports come before the importer")
	assert.Equal(t, "http://example.com/css/site.css", sheets[2].Href)

	got := texts(res.Scene)
	require.Len(t, got, 1)
	assert.Equal(t, blue, got[0].Color)
	assert.Equal(t, 20.0, got[0].Font.Size)

	// missing.css and the link without href.
	assert.Len(t, res.Warnings, 2)
	assert.Error(t, res.Err())
}

func TestImportCycleAndMedia(t *testing.T) {
	f := resource.NewMapFetcher(map[string]string{
		"http://x/a.css": `@import "b.css"; @import "p.css" print; p { color: red }`,
		"http://x/b.css": `@import url(a.css); p { font-size: 30px }`,
		"http://x/p.css": `p { color: blue }`,
	})
	src := `<html><head><link rel=stylesheet href="a.css"></head><p>x</p></html>`
	res, err := Render(context.Background(), parse(t, src, "http://x/"), screen, viewport,
		Options{UserAgent: emptyUA(), Fetcher: f})
	require.NoError(t, err)

	assert.Equal(t, []string{"http://x/a.css", "http://x/b.css"}, f.Requests())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Error(), "cycle")

	got := texts(res.Scene)
	require.Len(t, got, 1)
	assert.Equal(t, red, got[0].Color)
	assert.Equal(t, 30.0, got[0].Font.Size)
}

func TestImportDepthLimit(t *testing.T) {
	bodies := map[string]string{}
	for i := 0; i < 12; i++ {
		bodies["http://x/"+string(rune('a'+i))+".css"] = `@import "` + string(rune('a'+i+1)) + `.css";`
	}
	f := resource.NewMapFetcher(bodies)
	src := `<html><head><link rel=stylesheet href="a.css"></head></html>`
	res, err := Render(context.Background(), parse(t, src, "http://x/"), screen, viewport,
		Options{UserAgent: emptyUA(), Fetcher: f})
	require.NoError(t, err)
	assert.Len(t, f.Requests(), maxImportDepth+1)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Error(), "deeper")
}

func TestImageNaturalSize(t *testing.T) {
	f := resource.NewMapFetcher(nil)
	src := `<html><body><img src="missing.png" width="40"></body></html>`
	res, err := Render(context.Background(), parse(t, src, "http://x/page.html"), screen, viewport,
		Options{UserAgent: emptyUA(), Fetcher: f})
	require.NoError(t, err)

	var img *layout.Box
	res.Root.Walk(func(b *layout.Box) bool {
		if b.Kind == layout.KindReplaced {
			img = b
		}
		return img == nil
	})
	require.NotNil(t, img)
	assert.Equal(t, "http://x/missing.png", img.Image.Src)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, 40.0, img.Frame.ContentBox().Width)
}

func TestPrint(t *testing.T) {
	a4, ok := PaperSize("A4")
	require.True(t, ok)
	assert.InDelta(t, 793.7, a4.Width, 0.1)
	assert.InDelta(t, 1122.5, a4.Height, 0.1)

	doc := parse(t, `<html><style>@media print { p { color: red } }</style><p>Hi</p></html>`, "")
	res, err := Print(context.Background(), doc, css.Media{Width: a4.Width, Height: a4.Height}, Options{UserAgent: emptyUA()})
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	assert.Equal(t, a4, res.Pages[0].Size)

	got := texts(&res.Pages[0].Stack)
	require.Len(t, got, 1)
	assert.Equal(t, red, got[0].Color)

	_, err = Print(context.Background(), doc, css.Media{}, Options{UserAgent: emptyUA()})
	assert.Error(t, err)
}

func TestPaperSizes(t *testing.T) {
	for _, name := range []string{"a3", "a5", "letter", "legal"} {
		s, ok := PaperSize(name)
		assert.True(t, ok, name)
		assert.Less(t, s.Width, s.Height, name)
	}
	letter, _ := PaperSize("letter")
	assert.Equal(t, geom.Size{Width: 816, Height: 1056}, letter)
	_, ok := PaperSize("tabloid-ish")
	assert.False(t, ok)
}

func TestConcurrentRenders(t *testing.T) {
	f := resource.NewMapFetcher(map[string]string{"http://x/s.css": `p { color: red }`})
	ua := emptyUA()
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			doc, err := html.ParseString(`<html><head><link rel=stylesheet href="http://x/s.css"></head><p>Hi</p></html>`)
			if err != nil {
				return err
			}
			res, err := Render(context.Background(), doc, screen, viewport, Options{UserAgent: ua, Fetcher: f})
			if err != nil {
				return err
			}
			if n := len(texts(res.Scene)); n != 1 {
				return errors.New("unexpected scene")
			}
			return res.Err()
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, f.Requests(), 8)
}
