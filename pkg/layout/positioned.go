package layout

import (
	"math"

	"vellum/pkg/css"
	"vellum/pkg/geom"
	"vellum/pkg/style"
)

// LayoutPositioned runs after normal flow has been committed. It applies
// relative offsets and places absolute and fixed boxes against the padding
// box of their nearest positioned ancestor, or the viewport. Neither
// changes the geometry of in-flow siblings.
func (t *Tree) LayoutPositioned(root *Box) {
	if root == nil {
		return
	}
	vp := t.Viewport.Small
	icb := geom.R(0, 0, vp.Width, vp.Height)
	if root.IsOutOfFlow() {
		t.placeAbsolute(root, icb)
	}
	t.positioned(root, icb, icb, icb, nil)
}

// positioned visits the already placed box b. cb is the containing block
// for absolute descendants, flow the containing block b sits in. ifc is the
// block container whose lines hold b's fragments, if b is inline content.
func (t *Tree) positioned(b *Box, cb, viewport, flow geom.Rect, ifc *Box) {
	if b.Style != nil && b.Style.Position() == "relative" {
		d := relativeOffset(b.Style, flow)
		translate(b, d)
		if ifc != nil && b.Kind == KindInline {
			translateFragments(ifc, b, d)
		}
	}
	if b.Style != nil && b.Style.IsPositioned() && b.Kind != KindText {
		cb = b.Frame.PaddingBox()
	}
	content := b.Frame.ContentBox()
	var inner *Box
	switch {
	case b.HasInlineContent():
		inner = b
	case b.Kind == KindInline:
		inner = ifc
	}
	for _, c := range b.Children {
		if c.IsOutOfFlow() {
			if c.Style.Position() == "fixed" {
				t.placeAbsolute(c, viewport)
			} else {
				t.placeAbsolute(c, cb)
			}
		}
		t.positioned(c, cb, viewport, content, inner)
	}
}

func insets(s *style.Computed, cb geom.Rect) (v [4]float64, auto [4]bool) {
	in := s.Inset()
	for i, l := range in {
		base := cb.Width
		if i%2 == 0 {
			base = cb.Height
		}
		auto[i] = l.Auto
		v[i] = resolvePct(l, base)
	}
	return v, auto
}

func relativeOffset(s *style.Computed, cb geom.Rect) geom.Point {
	v, auto := insets(s, cb)
	var d geom.Point
	switch {
	case !auto[3]:
		d.X = v[3]
	case !auto[1]:
		d.X = -v[1]
	}
	switch {
	case !auto[0]:
		d.Y = v[0]
	case !auto[2]:
		d.Y = -v[2]
	}
	return d
}

// translate shifts the committed geometry of a subtree.
func translate(b *Box, d geom.Point) {
	if d == (geom.Point{}) {
		return
	}
	b.Walk(func(c *Box) bool {
		c.Frame.Rect = c.Frame.Rect.Translate(d)
		c.staticPos = c.staticPos.Add(d)
		for i := range c.Lines {
			l := &c.Lines[i]
			l.Rect = l.Rect.Translate(d)
			l.Baseline += d.Y
			for j := range l.Fragments {
				f := &l.Fragments[j]
				f.Rect = f.Rect.Translate(d)
				f.Baseline += d.Y
			}
		}
		return true
	})
}

// translateFragments shifts the line fragments of the inline box b and its
// descendants held by the container ifc.
func translateFragments(ifc, b *Box, d geom.Point) {
	if d == (geom.Point{}) {
		return
	}
	owned := map[*Box]bool{}
	b.Walk(func(c *Box) bool {
		owned[c] = true
		return true
	})
	for i := range ifc.Lines {
		for j := range ifc.Lines[i].Fragments {
			f := &ifc.Lines[i].Fragments[j]
			if owned[f.Box] {
				f.Rect = f.Rect.Translate(d)
				f.Baseline += d.Y
			}
		}
	}
}

// placeAbsolute sizes and commits an out-of-flow box inside cb. Auto
// offsets fall back to the static position.
func (t *Tree) placeAbsolute(b *Box, cb geom.Rect) {
	s := b.Style
	e := t.boxEdges(b, cb.Width)
	v, auto := insets(s, cb)
	ccb := ContainingBlock{Width: cb.Width, Height: cb.Height, HasHeight: true}
	in := Input{Available: cb.Size(), ContainingBlock: ccb}

	// Horizontal axis.
	extraH := e.extraH()
	var width float64
	var definiteW bool
	if b.Kind == KindReplaced {
		width, _ = t.replacedSize(b, e, ccb)
		definiteW = true
	} else {
		width, definiteW = specifiedSize(s, css.PropWidth, cb.Width, true, extraH)
	}
	if !definiteW {
		avail := cb.Width - e.margin.Horizontal()
		if !auto[3] {
			avail -= v[3]
		}
		if !auto[1] {
			avail -= v[1]
		}
		if !auto[3] && !auto[1] {
			width = math.Max(0, avail-extraH)
		} else {
			width = t.shrinkToFit(b, in, math.Max(0, avail)) - extraH
		}
	}
	width = clampWidth(s, width, cb.Width, extraH)
	borderW := width + extraH
	x := absoluteOffset(cb.X, cb.Width, b.staticPos.X, borderW, v[3], v[1], auto[3], auto[1],
		e.margin.Left, e.margin.Right, e.autoMargin[3], e.autoMargin[1])

	// Vertical axis.
	extraV := e.extraV()
	var height float64
	var definiteH bool
	if b.Kind == KindReplaced {
		_, height = t.replacedSize(b, e, ccb)
		definiteH = true
	} else {
		height, definiteH = specifiedSize(s, css.PropHeight, cb.Height, true, extraV)
	}
	if !definiteH && !auto[0] && !auto[2] {
		height = math.Max(0, cb.Height-v[0]-v[2]-e.margin.Vertical()-extraV)
		definiteH = true
	}
	if definiteH {
		height = clampHeight(s, height, ccb, extraV)
	} else {
		height = t.Layout(b, in.WithWidth(borderW)).Size.Height - extraV
	}
	borderH := height + extraV
	y := absoluteOffset(cb.Y, cb.Height, b.staticPos.Y, borderH, v[0], v[2], auto[0], auto[2],
		e.margin.Top, e.margin.Bottom, e.autoMargin[0], e.autoMargin[2])

	out := Input{
		Commit:          true,
		Known:           Known{Width: borderW, HasWidth: true},
		Available:       cb.Size(),
		ContainingBlock: ccb,
		Position:        geom.Point{X: x, Y: y},
	}
	if definiteH {
		out.Known.Height, out.Known.HasHeight = borderH, true
	}
	t.Layout(b, out)
}

// absoluteOffset resolves the border-box start of an absolute box along one
// axis of its containing block.
func absoluteOffset(start, size, static, border, before, after float64, autoBefore, autoAfter bool,
	marginBefore, marginAfter float64, autoMarginBefore, autoMarginAfter bool) float64 {
	switch {
	case autoBefore && autoAfter:
		return static + marginBefore
	case autoBefore:
		return start + size - after - marginAfter - border
	case autoAfter:
		return start + before + marginBefore
	}
	free := size - before - after - border - marginBefore - marginAfter
	switch {
	case autoMarginBefore && autoMarginAfter && free > 0:
		return start + before + marginBefore + free/2
	case autoMarginBefore:
		return start + before + marginBefore + free
	}
	return start + before + marginBefore
}
