package layout

import (
	"math"

	"go.uber.org/zap"

	"vellum/pkg/css"
	"vellum/pkg/geom"
	"vellum/pkg/style"
)

// Layout sizes b under in and, in commit mode, writes the geometry of b and
// its in-flow descendants into the tree. Out-of-flow descendants only get
// their static position; LayoutPositioned places them. Repeating a call
// with the same input yields the same geometry.
func (t *Tree) Layout(b *Box, in Input) Output {
	switch b.Kind {
	case KindBlock:
		return t.layoutBlock(b, in)
	case KindFlex:
		return t.layoutFlex(b, in)
	case KindReplaced:
		return t.layoutReplaced(b, in)
	case KindInline, KindText:
		// Inline-level content is placed by its container's line boxes.
		t.Logger.Debug("Layout of bare inline box ignored", zap.Stringer("kind", b.Kind), zap.String("tag", b.Tag))
		return Output{}
	}
	panic("layout: unknown box kind " + b.Kind.String())
}

// Run lays out the whole tree against the viewport: normal flow first,
// then the positioned pass. It returns the extent of the root's margin box.
func (t *Tree) Run() geom.Size {
	if t.Root == nil {
		return geom.Size{}
	}
	vp := t.Viewport.Small
	in := Input{
		Commit:          true,
		Available:       vp,
		ContainingBlock: ContainingBlock{Width: vp.Width, Height: vp.Height, HasHeight: true},
	}
	height := t.layoutFlowChildren([]*Box{t.Root}, geom.Point{}, vp.Width, in.ContainingBlock, in)
	t.LayoutPositioned(t.Root)
	return geom.Size{Width: math.Max(vp.Width, t.Root.Frame.MarginBox().Right()), Height: height}
}

// edges are the resolved box-model edges of a box. Auto margins resolve to
// zero here and are flagged for the caller to distribute.
type edges struct {
	margin     geom.Edges
	border     geom.Edges
	padding    geom.Edges
	autoMargin [4]bool
}

func (e edges) extraH() float64 { return e.border.Horizontal() + e.padding.Horizontal() }
func (e edges) extraV() float64 { return e.border.Vertical() + e.padding.Vertical() }

// resolvePct resolves a length whose percentages refer to base. An
// unbounded base makes percentages zero.
func resolvePct(l style.Length, base float64) float64 {
	if l.Percent && math.IsInf(base, 0) {
		return 0
	}
	return l.Resolve(base)
}

func (t *Tree) boxEdges(b *Box, cbWidth float64) edges {
	var e edges
	s := b.Style
	if s == nil {
		return e
	}
	m := s.Margin()
	p := s.Padding()
	bw := s.BorderWidths()
	vals := [4]*float64{&e.margin.Top, &e.margin.Right, &e.margin.Bottom, &e.margin.Left}
	pads := [4]*float64{&e.padding.Top, &e.padding.Right, &e.padding.Bottom, &e.padding.Left}
	for i := 0; i < 4; i++ {
		if m[i].Auto {
			e.autoMargin[i] = true
		} else {
			*vals[i] = resolvePct(m[i], cbWidth)
		}
		*pads[i] = resolvePct(p[i], cbWidth)
	}
	e.border = geom.Edges{Top: bw[0], Right: bw[1], Bottom: bw[2], Left: bw[3]}
	return e
}

func borderBox(s *style.Computed) bool {
	return s.Keyword(css.PropBoxSizing) == "border-box"
}

// specifiedSize returns the content-box size given by a width or height
// property, when it is definite.
func specifiedSize(s *style.Computed, p css.Property, base float64, hasBase bool, extra float64) (float64, bool) {
	l := s.Length(p)
	if l.Auto || l.None || (l.Percent && (!hasBase || math.IsInf(base, 0))) {
		return 0, false
	}
	v := l.Resolve(base)
	if borderBox(s) {
		v -= extra
	}
	return math.Max(0, v), true
}

// clampSize applies min and max constraints to a content-box size.
func clampSize(s *style.Computed, minP, maxP css.Property, v, base float64, hasBase bool, extra float64) float64 {
	if mx, ok := specifiedSize(s, maxP, base, hasBase, extra); ok {
		v = math.Min(v, mx)
	}
	if mn, ok := specifiedSize(s, minP, base, hasBase, extra); ok {
		v = math.Max(v, mn)
	}
	return math.Max(0, v)
}

func clampWidth(s *style.Computed, v, cbWidth, extra float64) float64 {
	return clampSize(s, css.PropMinWidth, css.PropMaxWidth, v, cbWidth, true, extra)
}

func clampHeight(s *style.Computed, v float64, cb ContainingBlock, extra float64) float64 {
	return clampSize(s, css.PropMinHeight, css.PropMaxHeight, v, cb.Height, cb.HasHeight, extra)
}

// blockWidth computes the border-box width and used horizontal margins of
// a block-level, non-replaced box in normal flow.
func blockWidth(b *Box, e edges, cbWidth float64) (width, ml, mr float64) {
	extra := e.extraH()
	cw, definite := specifiedSize(b.Style, css.PropWidth, cbWidth, true, extra)
	if !definite {
		cw = cbWidth - e.margin.Horizontal() - extra
	}
	if clamped := clampWidth(b.Style, cw, cbWidth, extra); clamped != cw {
		cw, definite = clamped, true
	}
	width = math.Max(0, cw) + extra
	ml, mr = distributeAuto(e, cbWidth, width, definite)
	return width, ml, mr
}

// distributeAuto resolves auto horizontal margins against the free space.
func distributeAuto(e edges, cbWidth, width float64, definite bool) (ml, mr float64) {
	ml, mr = e.margin.Left, e.margin.Right
	if !definite || math.IsInf(cbWidth, 0) {
		return ml, mr
	}
	free := cbWidth - width - ml - mr
	autoL, autoR := e.autoMargin[3], e.autoMargin[1]
	switch {
	case autoL && autoR:
		if free > 0 {
			ml += free / 2
			mr += free / 2
		}
	case autoL:
		ml += math.Max(0, free)
	case autoR:
		mr += math.Max(0, free)
	}
	return ml, mr
}

// flowWidth is the border-box width and used margins of an in-flow
// block-level child.
func (t *Tree) flowWidth(c *Box, e edges, cb ContainingBlock) (width, ml, mr float64) {
	if c.Kind == KindReplaced {
		w, _ := t.replacedSize(c, e, cb)
		width = w + e.extraH()
		ml, mr = distributeAuto(e, cb.Width, width, true)
		return width, ml, mr
	}
	return blockWidth(c, e, cb.Width)
}

// shrinkToFit is the border-box width of a box sized to its content within
// available.
func (t *Tree) shrinkToFit(b *Box, in Input, available float64) float64 {
	minW := t.Layout(b, in.Measuring(SizeMinContent)).Size.Width
	maxW := t.Layout(b, in.Measuring(SizeMaxContent)).Size.Width
	return math.Min(math.Max(minW, available), maxW)
}

func collapseMargins(a, b float64) float64 {
	switch {
	case a >= 0 && b >= 0:
		return math.Max(a, b)
	case a < 0 && b < 0:
		return math.Min(a, b)
	}
	return a + b
}
