package style

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/pkg/css"
	"vellum/pkg/html"
)

var (
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	green = color.RGBA{0, 128, 0, 255}
	black = color.RGBA{0, 0, 0, 255}
)

var screen = css.Media{Type: css.MediaScreen, Width: 800, Height: 600}

// resolvePath computes styles from the document root down to the element
// with the given id.
func resolvePath(t *testing.T, c *Computer, doc *html.Document, id string) *Computed {
	t.Helper()
	target := html.FindElement(doc.Root, id)
	require.NotNil(t, target, "no element #%s", id)
	var chain []*html.Node
	for n := target; n != nil && html.IsElement(n); n = n.Parent {
		chain = append([]*html.Node{n}, chain...)
	}
	var cs *Computed
	for _, n := range chain {
		var err error
		cs, err = c.Resolve(n, cs)
		require.NoError(t, err)
	}
	return cs
}

func setup(t *testing.T, markup string, sheets ...*css.StyleSheet) (*Computer, *html.Document) {
	t.Helper()
	doc, err := html.ParseString(markup)
	require.NoError(t, err)
	return NewComputer(NewBook(sheets...), screen, nil), doc
}

func author(src string) *css.StyleSheet { return css.ParseStylesheet(src, css.OriginAuthor) }
func agent(src string) *css.StyleSheet  { return css.ParseStylesheet(src, css.OriginUserAgent) }

func TestCascadeSpecificity(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		want  color.RGBA
	}{
		{"id beats class declared later", `#id{color:blue} .a{color:red}`, blue},
		{"id beats class declared earlier", `.a{color:red} #id{color:blue}`, blue},
		{"class beats type", `.a{color:blue} p{color:red}`, blue},
		{"equal specificity later wins", `.a{color:red} .b{color:blue}`, blue},
		{"equal specificity later wins reversed", `.b{color:blue} .a{color:red}`, red},
		{"later declaration in same rule wins", `p{color:red; color:blue}`, blue},
		{"selector list uses best match", `p, #id {color:blue} .a.b{color:red}`, blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, doc := setup(t, `<p id="id" class="a b">x</p>`, author(tt.sheet))
			cs := resolvePath(t, c, doc, "id")
			assert.Equal(t, tt.want, cs.Color(css.PropColor))
		})
	}
}

func TestCascadeOrigins(t *testing.T) {
	tests := []struct {
		name   string
		ua     string
		author string
		inline string
		want   color.RGBA
	}{
		{"author beats user agent", `p{color:red}`, `p{color:blue}`, ``, blue},
		{"user agent beats author despite specificity", `#id{color:red}`, `p{color:blue}`, ``, blue},
		{"important author beats user agent", `#id{color:red}`, `p{color:blue !important}`, ``, blue},
		{"important user agent beats important author", `p{color:red !important}`, `#id{color:blue !important}`, ``, red},
		{"inline beats author", ``, `#id{color:red}`, `color: blue`, blue},
		{"important author beats inline", ``, `p{color:red !important}`, `color: blue`, red},
		{"important inline beats important author", ``, `#id{color:red !important}`, `color: blue !important`, blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup := `<p id="id">x</p>`
			if tt.inline != "" {
				markup = `<p id="id" style="` + tt.inline + `">x</p>`
			}
			c, doc := setup(t, markup, author(tt.author), agent(tt.ua))
			assert.Equal(t, tt.want, resolvePath(t, c, doc, "id").Color(css.PropColor))
		})
	}
}

func TestInheritance(t *testing.T) {
	c, doc := setup(t, `<div id="d"><span id="s">x</span></div>`,
		author(`div{color:green; width:100px; font-size:20px; border: 1px solid} span{font-size:2em}`))
	span := resolvePath(t, c, doc, "s")
	assert.Equal(t, green, span.Color(css.PropColor), "color inherits")
	assert.True(t, span.Length(css.PropWidth).Auto, "width does not inherit")
	assert.Equal(t, 40.0, span.FontSize(), "em font-size is relative to the parent")
	assert.Equal(t, [4]float64{}, span.BorderWidths())
	div := resolvePath(t, c, doc, "d")
	assert.Equal(t, [4]float64{1, 1, 1, 1}, div.BorderWidths())
	assert.Equal(t, green, div.Color(css.PropBorderTopColor), "border color defaults to currentcolor")
}

func TestGlobalKeywords(t *testing.T) {
	c, doc := setup(t, `<div id="d"><p id="p">x</p></div>`, author(`
		div { color: red; width: 50px; padding: 3px }
		p { color: initial; width: inherit; padding: unset; background-color: currentcolor }
	`))
	p := resolvePath(t, c, doc, "p")
	assert.Equal(t, black, p.Color(css.PropColor))
	assert.Equal(t, Length{Value: 50}, p.Length(css.PropWidth))
	assert.Equal(t, Length{}, p.Length(css.PropPaddingTop))
	assert.Equal(t, black, p.Color(css.PropBackgroundColor))
}

func TestUnits(t *testing.T) {
	book := NewBook(author(`
		html { font-size: 10px }
		#a { width: 2rem; height: 50vh; margin-left: 1in; padding-top: 12pt; min-width: 10vmin; max-width: 50%; line-height: 150% }
		#b { width: 10lvw; height: 10svh; line-height: 2 }
	`))
	media := css.Media{Type: css.MediaScreen, Width: 400, Height: 600, LargeWidth: 500, LargeHeight: 700}
	c := NewComputer(book, media, nil)
	doc, err := html.ParseString(`<div id="a" style="font-size: 2em"></div><div id="b"></div>`)
	require.NoError(t, err)

	a := resolvePath(t, c, doc, "a")
	assert.Equal(t, 10.0, a.RootFontSize)
	assert.Equal(t, 20.0, a.FontSize())
	assert.Equal(t, Length{Value: 20}, a.Length(css.PropWidth))
	assert.Equal(t, Length{Value: 300}, a.Length(css.PropHeight))
	assert.Equal(t, Length{Value: 96}, a.Length(css.PropMarginLeft))
	assert.Equal(t, Length{Value: 16}, a.Length(css.PropPaddingTop))
	assert.Equal(t, Length{Value: 40}, a.Length(css.PropMinWidth))
	assert.Equal(t, Length{Value: 50, Percent: true}, a.Length(css.PropMaxWidth))
	assert.Equal(t, 30.0, a.LineHeight())

	b := resolvePath(t, c, doc, "b")
	assert.Equal(t, Length{Value: 50}, b.Length(css.PropWidth))
	assert.Equal(t, Length{Value: 60}, b.Length(css.PropHeight))
	assert.Equal(t, 20.0, b.LineHeight())
}

func TestMediaRules(t *testing.T) {
	sheet := author(`p{color:red} @media print { p{color:blue} }`)
	doc, err := html.ParseString(`<p id="p">x</p>`)
	require.NoError(t, err)

	onScreen := NewComputer(NewBook(sheet), screen, nil)
	assert.Equal(t, red, resolvePath(t, onScreen, doc, "p").Color(css.PropColor))

	onPaper := NewComputer(NewBook(sheet), css.Media{Type: css.MediaPrint, Width: 794, Height: 1123}, nil)
	assert.Equal(t, blue, resolvePath(t, onPaper, doc, "p").Color(css.PropColor))
}

func TestResolveNotElement(t *testing.T) {
	c, doc := setup(t, `<p>text</p>`)
	p := doc.DocumentElement().LastChild.FirstChild
	_, err := c.Resolve(p.FirstChild, nil)
	assert.ErrorIs(t, err, ErrNotElement)
	_, err = c.Resolve(nil, nil)
	assert.ErrorIs(t, err, ErrNotElement)
}

func TestResolveIsDeterministic(t *testing.T) {
	c, doc := setup(t, `<div id="d" class="x" style="margin: 1em">x</div>`,
		author(`.x { font-size: larger; font-weight: bolder } div { padding: 1em 2em }`))
	first := resolvePath(t, c, doc, "d")
	second := resolvePath(t, c, doc, "d")
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
	assert.InDelta(t, 19.2, first.FontSize(), 1e-9)
	assert.Equal(t, 700.0, first.Number(css.PropFontWeight))
	assert.Equal(t, Length{Value: 19.2}.Value, first.Length(css.PropMarginTop).Value)
}

func TestInheritHelper(t *testing.T) {
	c, doc := setup(t, `<p id="p">x</p>`, author(`p { color: red; display: block; margin: 4px }`))
	p := resolvePath(t, c, doc, "p")
	anon := Inherit(p)
	assert.Equal(t, red, anon.Color(css.PropColor))
	assert.Equal(t, "inline", anon.Display())
	assert.Equal(t, Length{}, anon.Length(css.PropMarginTop))
}
