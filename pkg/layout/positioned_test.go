package layout

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/pkg/geom"
)

const positionedDoc = `<div style="position:relative;margin-top:10px;padding:5px;height:100px"><section style="height:20px"></section><aside style="%s"></aside><footer style="height:20px"></footer></div>`

func renderPositioned(t *testing.T, asideStyle string) *Tree {
	t.Helper()
	return render(t, fmt.Sprintf(positionedDoc, asideStyle), "")
}

func TestAbsolutePlacement(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  geom.Rect
	}{
		{"top left", "position:absolute;top:10px;left:20px;width:50px;height:50px", geom.R(20, 20, 50, 50)},
		{"bottom right", "position:absolute;right:0;bottom:0;width:50px;height:50px", geom.R(750, 70, 50, 50)},
		{"stretched between offsets", "position:absolute;left:10px;right:10px;top:0;bottom:0", geom.R(10, 10, 780, 110)},
		{"percent offsets", "position:absolute;left:50%;top:50%;width:10px;height:10px", geom.R(400, 65, 10, 10)},
		{"static position", "position:absolute;width:10px;height:10px", geom.R(5, 35, 10, 10)},
		{"centered by auto margins", "position:absolute;left:0;right:0;top:0;width:100px;height:10px;margin:0 auto", geom.R(350, 10, 100, 10)},
		{"fixed uses the viewport", "position:fixed;bottom:0;left:0;width:10px;height:10px", geom.R(0, 590, 10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := renderPositioned(t, tt.style)
			assert.Equal(t, tt.want, rect(find(tree.Root, "aside")))
		})
	}
}

func TestAbsoluteShrinkToFit(t *testing.T) {
	tree := renderPositioned(t, "position:absolute;top:0;right:0")
	aside := find(tree.Root, "aside")
	assert.Equal(t, geom.R(800, 10, 0, 0), rect(aside))

	tree = render(t, `<div style="position:relative"><nav style="position:absolute;right:0;top:0">abc def</nav></div>`, "")
	assert.Equal(t, geom.R(751, 0, 49, 20), rect(find(tree.Root, "nav")))
}

func TestPositionedIndependence(t *testing.T) {
	a := renderPositioned(t, "position:absolute;top:10px;left:20px;width:50px;height:50px")
	b := renderPositioned(t, "position:absolute;bottom:3px;right:40%;width:200px;height:5px")

	for _, tag := range []string{"div", "section", "footer"} {
		assert.Equal(t, rect(find(a.Root, tag)), rect(find(b.Root, tag)), tag)
	}
	assert.Equal(t, geom.R(5, 35, 790, 20), rect(find(a.Root, "footer")))
}

func TestNestedContainingBlock(t *testing.T) {
	tree := render(t, `<div style="position:relative;left:100px;top:50px;padding:10px"><section style="height:10px"><nav style="position:absolute;left:0;top:0;width:5px;height:5px"></nav></section></div>`, "")
	assert.Equal(t, geom.R(100, 50, 5, 5), rect(find(tree.Root, "nav")), "placed in the shifted padding box")

	tree = render(t, `<div style="padding:10px"><section style="height:10px"><nav style="position:absolute;left:1px;top:2px;width:5px;height:5px"></nav></section></div>`, "")
	assert.Equal(t, geom.R(1, 2, 5, 5), rect(find(tree.Root, "nav")), "no positioned ancestor uses the viewport")
}

func TestRelativeOffsets(t *testing.T) {
	tree := render(t, `<section style="height:20px;position:relative;top:10px;left:5px"><p>x</p></section><footer style="height:20px"></footer><article style="position:relative;bottom:4px;right:6px;height:5px"></article>`, "")

	assert.Equal(t, geom.R(5, 10, 800, 20), rect(find(tree.Root, "section")))
	assert.Equal(t, geom.R(5, 10, 800, 20), rect(find(tree.Root, "p")), "descendants move along")
	assert.Equal(t, 24.5, find(tree.Root, "p").Lines[0].Baseline, "lines move along")
	assert.Equal(t, geom.R(0, 20, 800, 20), rect(find(tree.Root, "footer")), "siblings do not move")
	assert.Equal(t, geom.R(-6, 36, 800, 5), rect(find(tree.Root, "article")))
}

func TestRelativeInlineFragments(t *testing.T) {
	tree := render(t, `<p>ab<span style="position:relative;left:10px;top:5px">cd<b>e</b></span>f</p>`, "")
	p := find(tree.Root, "p")
	require.Len(t, p.Lines, 1)

	span := find(tree.Root, "span")
	assert.Equal(t, geom.R(24, 8.5, 21, 13), rect(span))

	got := map[string]geom.Rect{}
	for _, f := range p.Lines[0].Fragments {
		switch f.Kind {
		case FragmentText:
			got[f.Text] = f.Rect
			if f.Text == "cd" {
				assert.Equal(t, 19.5, f.Baseline)
			}
		case FragmentInline:
			got["<"+f.Box.Tag+">"] = f.Rect
		}
	}
	assert.Equal(t, geom.R(0, 0, 14, 20), got["ab"], "preceding text stays")
	assert.Equal(t, geom.R(24, 5, 14, 20), got["cd"])
	assert.Equal(t, geom.R(24, 8.5, 21, 13), got["<span>"])
	assert.Equal(t, geom.R(38, 5, 7, 20), got["e"], "descendants move along")
	assert.Equal(t, geom.R(35, 0, 7, 20), got["f"], "following text keeps its flow position")
}

func TestPositionedAfterReflow(t *testing.T) {
	tree := render(t, `<div style="position:relative;top:7px"><aside style="position:absolute;left:1px;top:1px;width:5px;height:5px"></aside><p>x</p></div>`, "")
	before := snapshot(tree.Root)
	assert.Equal(t, geom.R(1, 8, 5, 5), rect(find(tree.Root, "aside")))

	tree.Run()
	assert.Empty(t, cmp.Diff(before, snapshot(tree.Root)))
}
