package layout

import (
	"math"

	"vellum/pkg/css"
	"vellum/pkg/geom"
)

// Default object size of replaced content with no natural dimensions.
const (
	defaultObjectWidth  = 300
	defaultObjectHeight = 150
)

// replacedSize is the content-box size of a replaced box, from its
// specified sizes, its natural size and aspect ratio, and min/max limits.
func (t *Tree) replacedSize(b *Box, e edges, cb ContainingBlock) (w, h float64) {
	var nw, nh float64
	if b.Image != nil {
		nw, nh = b.Image.NaturalWidth, b.Image.NaturalHeight
	}
	ratio := 0.0
	switch {
	case nw > 0 && nh > 0:
		ratio = nw / nh
	case nw > 0:
		nh = defaultObjectHeight
	case nh > 0:
		nw = defaultObjectWidth
	default:
		nw, nh = defaultObjectWidth, defaultObjectHeight
	}

	s := b.Style
	sw, okW := specifiedSize(s, css.PropWidth, cb.Width, true, e.extraH())
	sh, okH := specifiedSize(s, css.PropHeight, cb.Height, cb.HasHeight, e.extraV())
	switch {
	case okW && okH:
		w, h = sw, sh
	case okW:
		w, h = sw, nh
		if ratio > 0 {
			h = sw / ratio
		}
	case okH:
		w, h = nw, sh
		if ratio > 0 {
			w = sh * ratio
		}
	default:
		w, h = nw, nh
	}

	if cw := clampWidth(s, w, cb.Width, e.extraH()); cw != w {
		w = cw
		if ratio > 0 && !okH {
			h = w / ratio
		}
	}
	if ch := clampHeight(s, h, cb, e.extraV()); ch != h {
		h = ch
		if ratio > 0 && !okW {
			w = clampWidth(s, h*ratio, cb.Width, e.extraH())
		}
	}
	return math.Max(0, w), math.Max(0, h)
}

func (t *Tree) layoutReplaced(b *Box, in Input) Output {
	e := t.boxEdges(b, in.ContainingBlock.Width)
	w, h := t.replacedSize(b, e, in.ContainingBlock)
	size := geom.Size{Width: w + e.extraH(), Height: h + e.extraV()}
	if in.Known.HasWidth {
		size.Width = in.Known.Width
	}
	if in.Known.HasHeight {
		size.Height = in.Known.Height
	}
	if in.Commit {
		b.Frame = Frame{
			Rect:    geom.R(in.Position.X, in.Position.Y, size.Width, size.Height),
			Margin:  e.margin,
			Border:  e.border,
			Padding: e.padding,
		}
	}
	return Output{Size: size, Baseline: size.Height}
}
