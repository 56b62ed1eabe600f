package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vellum/pkg/css"
	"vellum/pkg/geom"
	"vellum/pkg/html"
	"vellum/pkg/style"
	"vellum/pkg/text"
)

// testSheet gives the tests block elements and round text metrics: at
// 13px the fixed face advances 7px per glyph and lines are 20px tall.
const testSheet = `
html, body, div, p, section, article, aside, header, footer, main, nav { display: block }
html { font-size: 13px; line-height: 20px }
`

func buildDoc(t *testing.T, body, sheet string) *Box {
	t.Helper()
	doc, err := html.ParseString("<html><body>" + body + "</body></html>")
	require.NoError(t, err)
	book := style.NewBook(css.ParseStylesheet(testSheet+sheet, css.OriginAuthor))
	computer := style.NewComputer(book, css.Media{Type: css.MediaScreen, Width: 800, Height: 600}, nil)
	root, warnings := Build(computer, doc, nil)
	require.Empty(t, warnings)
	require.NotNil(t, root)
	return root
}

func render(t *testing.T, body, sheet string) *Tree {
	t.Helper()
	root := buildDoc(t, body, sheet)
	tree := NewTree(root, Viewport{Small: geom.Size{Width: 800, Height: 600}}, text.FixedMeasurer{}, nil)
	tree.Run()
	return tree
}

func find(root *Box, tag string) *Box {
	var found *Box
	root.Walk(func(b *Box) bool {
		if found == nil && b.Tag == tag {
			found = b
		}
		return found == nil
	})
	return found
}

func findAll(root *Box, tag string) []*Box {
	var out []*Box
	root.Walk(func(b *Box) bool {
		if b.Tag == tag {
			out = append(out, b)
		}
		return true
	})
	return out
}

func rect(b *Box) geom.Rect { return b.Frame.Rect }

func lineTexts(b *Box) []string {
	var out []string
	for _, l := range b.Lines {
		s := ""
		for _, f := range l.Fragments {
			if f.Kind == FragmentText {
				s += f.Text
			}
		}
		out = append(out, s)
	}
	return out
}
