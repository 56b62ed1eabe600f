package style

import (
	"vellum/pkg/css"
)

// DefaultFontSize is the pixel size of the "medium" font-size keyword.
const DefaultFontSize = 16.0

var absoluteFontSizes = map[string]float64{
	"xx-small":  9,
	"x-small":   10,
	"small":     13,
	"medium":    16,
	"large":     18,
	"x-large":   24,
	"xx-large":  32,
	"xxx-large": 48,
}

var borderWidthKeywords = map[string]float64{
	"thin":   1,
	"medium": 3,
	"thick":  5,
}

// lengthContext carries what relative units resolve against.
type lengthContext struct {
	fontSize     float64
	rootFontSize float64
	media        css.Media
}

// toPx converts a length value to pixels. Percentages are not lengths and
// report false.
func (lc lengthContext) toPx(v css.Value) (float64, bool) {
	if v.Kind != css.ValueLength {
		return 0, false
	}
	n := v.Num
	smallW, smallH := lc.media.Width, lc.media.Height
	largeW, largeH := lc.media.Large()
	switch v.Unit {
	case "em":
		return n * lc.fontSize, true
	case "rem":
		return n * lc.rootFontSize, true
	case "ex", "ch":
		return n * lc.fontSize / 2, true
	case "vw", "svw", "dvw":
		return n * smallW / 100, true
	case "vh", "svh", "dvh":
		return n * smallH / 100, true
	case "lvw":
		return n * largeW / 100, true
	case "lvh":
		return n * largeH / 100, true
	case "vmin":
		return n * min(smallW, smallH) / 100, true
	case "vmax":
		return n * max(smallW, smallH) / 100, true
	}
	return css.AbsoluteLength(n, v.Unit)
}

// Length is a computed length-percentage as layout consumes it.
type Length struct {
	Value   float64
	Percent bool
	Auto    bool
	None    bool
}

// Resolve returns the pixel value against base, used for percentages. Auto
// and none resolve to zero.
func (l Length) Resolve(base float64) float64 {
	switch {
	case l.Auto, l.None:
		return 0
	case l.Percent:
		return l.Value * base / 100
	}
	return l.Value
}

// Definite reports whether l resolves to a size without a percentage base,
// or with one when hasBase is true.
func (l Length) Definite(hasBase bool) bool {
	if l.Auto || l.None {
		return false
	}
	return !l.Percent || hasBase
}
