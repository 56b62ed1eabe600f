package layout

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vellum/pkg/geom"
	"vellum/pkg/scene"
)

func paintDoc(t *testing.T, body string) *scene.Stack {
	t.Helper()
	tree := render(t, body, "")
	root := scene.NewStack()
	Paint(tree.Root, root)
	root.Prepare()
	return root
}

func TestPaintText(t *testing.T) {
	root := paintDoc(t, `<p style="color:red">Hi</p>`)
	nodes := root.Children()
	require.Len(t, nodes, 1)

	txt, ok := nodes[0].(*scene.Text)
	require.True(t, ok)
	assert.Equal(t, "Hi", txt.Text)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, txt.Color)
	assert.Equal(t, geom.Point{X: 0, Y: 14.5}, txt.Origin)
	assert.Equal(t, 13.0, txt.Font.Size)
	assert.Equal(t, geom.R(0, 0, 14, 20), txt.Bounds())
}

func TestPaintBackgroundAndBorders(t *testing.T) {
	root := paintDoc(t, `<div style="height:10px;background:blue;border-bottom:2px dashed red"></div><section style="height:10px"></section>`)
	nodes := root.Children()
	require.Len(t, nodes, 1, "boxes that paint nothing are skipped")

	box := nodes[0].(*scene.Box)
	assert.Equal(t, geom.R(0, 0, 800, 12), box.Rect)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, box.Background)
	assert.Equal(t, scene.BorderSide{Width: 2, Style: "dashed", Color: color.RGBA{R: 255, A: 255}}, box.Borders[2])
	assert.False(t, box.Borders[0].Visible())
}

func TestPaintStackingOrder(t *testing.T) {
	root := paintDoc(t, `
<section style="position:relative;z-index:2;height:10px;background:red"></section>
<article style="position:relative;z-index:-1;height:10px;background:green"></article>
<aside style="position:absolute;height:10px;width:10px;background:blue"></aside>
<div style="height:10px;background:black"></div>`)

	var order []color.RGBA
	for _, n := range root.Children() {
		group, ok := n.(*scene.Stack)
		if !ok {
			order = append(order, n.(*scene.Box).Background)
			continue
		}
		order = append(order, group.Children()[0].(*scene.Box).Background)
	}
	assert.Equal(t, []color.RGBA{
		{G: 128, A: 255},
		{A: 255},
		{B: 255, A: 255},
		{R: 255, A: 255},
	}, order)
}

func TestPaintOpacityGroup(t *testing.T) {
	root := paintDoc(t, `<div style="opacity:0.5;height:10px;background:red"></div>`)
	require.Len(t, root.Children(), 1)
	group := root.Children()[0].(*scene.Stack)
	assert.Equal(t, 0.5, group.Opacity)
	assert.Len(t, group.Children(), 1)
}

func TestPaintOverflowClips(t *testing.T) {
	root := paintDoc(t, `<div style="overflow:hidden;height:10px;border:1px solid black"><p style="height:50px;background:red"></p></div>`)
	nodes := root.Children()
	require.Len(t, nodes, 2)

	clip := nodes[1].(*scene.Clip)
	assert.Equal(t, geom.R(1, 1, 798, 10), clip.Rect)
	require.Len(t, clip.Content.Children(), 1)
	assert.Equal(t, geom.R(1, 1, 798, 10), clip.Bounds())
}

func TestPaintVisibilityHidden(t *testing.T) {
	root := paintDoc(t, `<div style="visibility:hidden;background:red;height:40px"><p style="visibility:visible">shown</p><p>hidden</p></div>`)
	var texts []string
	scene.Walk(root, func(n scene.Node) bool {
		switch n := n.(type) {
		case *scene.Text:
			texts = append(texts, n.Text)
		case *scene.Box:
			t.Errorf("unexpected box %v", n.Rect)
		}
		return true
	})
	assert.Equal(t, []string{"shown"}, texts)
}

func TestPaintImagesAndInlineBoxes(t *testing.T) {
	root := paintDoc(t, `<p><span style="background:yellow">a</span><img src="x.png" alt="x" width="10" height="10" style="padding:1px"></p>`)
	nodes := root.Children()
	require.Len(t, nodes, 3)

	assert.IsType(t, &scene.Box{}, nodes[0])
	assert.IsType(t, &scene.Text{}, nodes[1])
	img := nodes[2].(*scene.Image)
	assert.Equal(t, "x.png", img.Src)
	assert.Equal(t, geom.Size{Width: 10, Height: 10}, img.Rect.Size())
	assert.Equal(t, 8.0, img.Rect.X)
}

func TestPaintRelativeInline(t *testing.T) {
	root := paintDoc(t, `<p>ab<span style="position:relative;left:10px;top:5px;z-index:3;background:red">cd</span></p>`)

	var flow []string
	var group *scene.Stack
	for _, e := range root.Entries {
		switch n := e.Node.(type) {
		case *scene.Text:
			flow = append(flow, n.Text)
		case *scene.Stack:
			assert.Equal(t, scene.LayerPositioned, e.Layer)
			assert.Equal(t, 3, e.Z)
			group = n
		}
	}
	assert.Equal(t, []string{"ab"}, flow)
	require.NotNil(t, group, "positioned inline boxes paint in their own stack")

	nodes := group.Children()
	require.Len(t, nodes, 2)
	bg, ok := nodes[0].(*scene.Box)
	require.True(t, ok)
	assert.Equal(t, geom.R(24, 8.5, 14, 13), bg.Rect)
	txt, ok := nodes[1].(*scene.Text)
	require.True(t, ok)
	assert.Equal(t, "cd", txt.Text)
	assert.Equal(t, geom.Point{X: 24, Y: 19.5}, txt.Origin)
}
