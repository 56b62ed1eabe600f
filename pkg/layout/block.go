package layout

import (
	"math"

	"vellum/pkg/css"
	"vellum/pkg/geom"
)

func (t *Tree) layoutBlock(b *Box, in Input) Output {
	e := t.boxEdges(b, in.ContainingBlock.Width)

	var width float64
	switch {
	case in.Known.HasWidth:
		width = in.Known.Width
	case in.Sizing != SizeStretch:
		width = t.intrinsicWidth(b, e, in)
	default:
		width, _, _ = blockWidth(b, e, in.ContainingBlock.Width)
	}
	contentW := math.Max(0, width-e.extraH())
	origin := in.Position.Add(geom.Point{X: e.border.Left + e.padding.Left, Y: e.border.Top + e.padding.Top})

	ch, definiteH := specifiedSize(b.Style, css.PropHeight, in.ContainingBlock.Height, in.ContainingBlock.HasHeight, e.extraV())
	if in.Known.HasHeight {
		ch, definiteH = math.Max(0, in.Known.Height-e.extraV()), true
	} else if definiteH {
		ch = clampHeight(b.Style, ch, in.ContainingBlock, e.extraV())
	}
	childCB := ContainingBlock{Width: contentW, Height: ch, HasHeight: definiteH}
	childIn := in
	childIn.Known = Known{}
	childIn.Sizing = SizeStretch

	var contentH, baseline float64
	if b.HasInlineContent() {
		lines, h, _ := t.layoutLines(b, origin, contentW, childCB, childIn)
		contentH = h
		if len(lines) > 0 {
			baseline = lines[0].Baseline - in.Position.Y
		}
		if in.Commit {
			b.Lines = lines
		}
	} else {
		contentH = t.layoutFlowChildren(b.Children, origin, contentW, childCB, childIn)
		if in.Commit {
			b.Lines = nil
		}
	}

	if !definiteH {
		ch = clampHeight(b.Style, contentH, in.ContainingBlock, e.extraV())
	}
	height := ch + e.extraV()
	if in.Known.HasHeight {
		height = in.Known.Height
	}
	if in.Commit {
		b.Frame = Frame{
			Rect:    geom.R(in.Position.X, in.Position.Y, width, height),
			Margin:  e.margin,
			Border:  e.border,
			Padding: e.padding,
		}
	}
	return Output{Size: geom.Size{Width: width, Height: height}, Baseline: baseline}
}

// layoutFlowChildren stacks block-level children vertically from origin,
// collapsing adjacent sibling margins, and returns the content height.
func (t *Tree) layoutFlowChildren(children []*Box, origin geom.Point, contentW float64, cb ContainingBlock, in Input) float64 {
	y := origin.Y
	prevBottom := 0.0
	first := true
	for _, c := range children {
		if c.IsOutOfFlow() {
			if in.Commit {
				c.staticPos = geom.Point{X: origin.X, Y: y + prevBottom}
			}
			continue
		}
		e := t.boxEdges(c, contentW)
		width, ml, mr := t.flowWidth(c, e, cb)
		top := e.margin.Top
		if !first {
			top = collapseMargins(prevBottom, e.margin.Top)
		}
		pos := geom.Point{X: origin.X + ml, Y: y + top}
		out := t.Layout(c, Input{
			Commit:          in.Commit,
			Known:           Known{Width: width, HasWidth: true},
			Available:       geom.Size{Width: contentW, Height: in.Available.Height},
			ContainingBlock: cb,
			Position:        pos,
		})
		if in.Commit {
			c.Frame.Margin.Left, c.Frame.Margin.Right = ml, mr
		}
		y = pos.Y + out.Size.Height
		prevBottom = e.margin.Bottom
		first = false
	}
	if !first {
		y += prevBottom
	}
	return y - origin.Y
}

// intrinsicWidth is the min- or max-content border-box width of a block
// container.
func (t *Tree) intrinsicWidth(b *Box, e edges, in Input) float64 {
	extra := e.extraH()
	if w, ok := specifiedSize(b.Style, css.PropWidth, in.ContainingBlock.Width, true, extra); ok {
		return clampWidth(b.Style, w, in.ContainingBlock.Width, extra) + extra
	}
	var content float64
	if b.HasInlineContent() {
		avail := 0.0
		if in.Sizing == SizeMaxContent {
			avail = unbounded
		}
		_, _, content = t.layoutLines(b, in.Position, avail, ContainingBlock{Width: in.ContainingBlock.Width}, in.Measuring(in.Sizing))
	} else {
		for _, c := range b.Children {
			if c.IsOutOfFlow() {
				continue
			}
			ce := t.boxEdges(c, unbounded)
			w := t.Layout(c, in.Measuring(in.Sizing)).Size.Width
			content = math.Max(content, w+ce.margin.Horizontal())
		}
	}
	return clampWidth(b.Style, content, in.ContainingBlock.Width, extra) + extra
}
