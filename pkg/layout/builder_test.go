package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/pkg/css"
	"vellum/pkg/html"
	"vellum/pkg/style"
)

func TestBuildDisplayNoneDropsSubtree(t *testing.T) {
	root := buildDoc(t, `<div><section style="display:none"><p>gone</p><article>gone</article></section><footer>kept</footer></div>`, "")

	assert.Nil(t, find(root, "section"))
	assert.Nil(t, find(root, "p"))
	assert.Nil(t, find(root, "article"))
	assert.NotNil(t, find(root, "footer"))
	root.Walk(func(b *Box) bool {
		assert.NotEqual(t, "gone", b.Text)
		return true
	})
}

func TestBuildSkipsNonRenderedElements(t *testing.T) {
	doc, err := html.ParseString(`<html><head><title>t</title><style>p{color:red}</style></head><body><script>x()</script><p>Hi</p></body></html>`)
	require.NoError(t, err)
	computer := style.NewComputer(style.NewBook(css.ParseStylesheet("head, script, style, title { display: block }", css.OriginAuthor)), css.Media{Width: 800, Height: 600}, nil)
	root, warnings := Build(computer, doc, nil)
	require.Empty(t, warnings)

	for _, tag := range []string{"head", "title", "style", "script"} {
		assert.Nil(t, find(root, tag), tag)
	}
	assert.NotNil(t, find(root, "p"))
}

func TestBuildWithoutUserAgentSheet(t *testing.T) {
	doc, err := html.ParseString(`<style>p{color:red}</style><p>Hi</p>`)
	require.NoError(t, err)
	computer := style.NewComputer(style.NewBook(css.ParseStylesheet("p{color:red}", css.OriginAuthor)), css.Media{Width: 800, Height: 600}, nil)
	root, _ := Build(computer, doc, nil)
	require.NotNil(t, root)

	assert.Equal(t, KindBlock, root.Kind, "root is blockified")
	p := find(root, "p")
	require.NotNil(t, p)
	assert.Equal(t, KindInline, p.Kind)
	require.Len(t, p.Children, 1)
	run := p.Children[0]
	assert.Equal(t, KindText, run.Kind)
	assert.Equal(t, "Hi", run.Text)
	assert.Equal(t, uint8(255), run.Style.Color(css.PropColor).R)
}

func TestBuildWrapsMixedContent(t *testing.T) {
	root := buildDoc(t, `<div>before<p>block</p>after <span>x</span></div>`, "")
	div := find(root, "div")
	require.Len(t, div.Children, 3)

	assert.True(t, div.Children[0].Anonymous)
	assert.Equal(t, "before", div.Children[0].Children[0].Text)
	assert.Equal(t, "p", div.Children[1].Tag)
	assert.True(t, div.Children[2].Anonymous)
	assert.Len(t, div.Children[2].Children, 2)
	for _, c := range div.Children {
		assert.Equal(t, BlockLevel, c.Level)
	}
}

func TestBuildDropsWhitespaceBetweenBlocks(t *testing.T) {
	root := buildDoc(t, "<div>\n  <p>a</p>\n  <p>b</p>\n</div>", "")
	div := find(root, "div")
	require.Len(t, div.Children, 2)
	assert.Equal(t, "p", div.Children[0].Tag)
	assert.Equal(t, "p", div.Children[1].Tag)
}

func TestBuildInlineWithBlockChildBecomesBlock(t *testing.T) {
	root := buildDoc(t, `<div><span>a<p>b</p></span></div>`, "")
	span := find(root, "span")
	assert.Equal(t, KindBlock, span.Kind)
	assert.Equal(t, BlockLevel, span.Level)
}

func TestBuildDisplayContents(t *testing.T) {
	root := buildDoc(t, `<div><section style="display:contents"><p>a</p><p>b</p></section></div>`, "")
	assert.Nil(t, find(root, "section"))
	div := find(root, "div")
	require.Len(t, div.Children, 2)
	assert.Equal(t, "p", div.Children[0].Tag)
}

func TestBuildFlexItems(t *testing.T) {
	root := buildDoc(t, `<div style="display:flex">loose text<span>inline</span><p>block</p></div>`, "")
	div := find(root, "div")
	require.Equal(t, KindFlex, div.Kind)
	require.Len(t, div.Children, 3)

	assert.True(t, div.Children[0].Anonymous, "text runs are wrapped")
	assert.Equal(t, KindBlock, div.Children[1].Kind, "inline items are blockified")
	for _, c := range div.Children {
		assert.Equal(t, BlockLevel, c.Level)
	}
}

func TestBuildReplacedAndBreaks(t *testing.T) {
	root := buildDoc(t, `<p>a<br>b<img src="x.png" alt="pic" width="40" height="20px"></p>`, "")
	p := find(root, "p")
	require.Len(t, p.Children, 4)

	assert.True(t, p.Children[1].LineBreak)
	img := p.Children[3]
	assert.Equal(t, KindReplaced, img.Kind)
	assert.Equal(t, InlineLevel, img.Level)
	assert.Equal(t, &Image{Src: "x.png", Alt: "pic", NaturalWidth: 40, NaturalHeight: 20}, img.Image)
}

func TestBuildBlockifiesOutOfFlow(t *testing.T) {
	root := buildDoc(t, `<p><span style="position:absolute">x</span>y</p>`, "")
	span := find(root, "span")
	assert.Equal(t, KindBlock, span.Kind)
	assert.Equal(t, BlockLevel, span.Level)
	assert.True(t, find(root, "p").HasInlineContent())
}

func TestBuildGridMapsToColumnFlex(t *testing.T) {
	root := buildDoc(t, `<div style="display:grid"><p>a</p><p>b</p></div>`, "")
	div := find(root, "div")
	assert.Equal(t, KindFlex, div.Kind)
	assert.False(t, isRow(div))
}
