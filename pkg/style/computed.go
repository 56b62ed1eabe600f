package style

import (
	"image/color"
	"strings"

	"vellum/pkg/css"
)

// Computed is the computed style of one element. Lengths are in pixels,
// percentages stay percentages until layout, colors are resolved and
// keywords are lower-case. A Computed is never modified once returned.
type Computed struct {
	values [css.NumProperties]css.Value
	// RootFontSize is the root element's font size, for rem units.
	RootFontSize float64
}

// Get returns the computed value of p.
func (c *Computed) Get(p css.Property) css.Value {
	return c.values[p]
}

// Keyword returns the keyword value of p, or "" when it is not a keyword.
func (c *Computed) Keyword(p css.Property) string {
	v := c.values[p]
	if v.Kind != css.ValueKeyword {
		return ""
	}
	return v.Keyword
}

// Length returns p as a layout length.
func (c *Computed) Length(p css.Property) Length {
	v := c.values[p]
	switch v.Kind {
	case css.ValueLength:
		return Length{Value: v.Num}
	case css.ValuePercent:
		return Length{Value: v.Num, Percent: true}
	case css.ValueKeyword:
		switch v.Keyword {
		case "none":
			return Length{None: true}
		case "normal":
			return Length{}
		}
	}
	return Length{Auto: true}
}

// Number returns the numeric value of p.
func (c *Computed) Number(p css.Property) float64 {
	return c.values[p].Num
}

// Color returns the color value of p.
func (c *Computed) Color(p css.Property) color.RGBA {
	return c.values[p].Color
}

// Display returns the display keyword.
func (c *Computed) Display() string { return c.Keyword(css.PropDisplay) }

// Position returns the position keyword.
func (c *Computed) Position() string { return c.Keyword(css.PropPosition) }

// IsPositioned reports whether the element establishes a containing block
// for absolutely positioned descendants.
func (c *Computed) IsPositioned() bool {
	switch c.Position() {
	case "relative", "absolute", "fixed", "sticky":
		return true
	}
	return false
}

// IsOutOfFlow reports whether the element is absolutely or fixed positioned.
func (c *Computed) IsOutOfFlow() bool {
	p := c.Position()
	return p == "absolute" || p == "fixed"
}

// FontSize returns the font size in pixels.
func (c *Computed) FontSize() float64 { return c.values[css.PropFontSize].Num }

// LineHeight returns the used line height in pixels.
func (c *Computed) LineHeight() float64 {
	v := c.values[css.PropLineHeight]
	switch v.Kind {
	case css.ValueNumber:
		return v.Num * c.FontSize()
	case css.ValueLength:
		return v.Num
	}
	return c.FontSize() * 1.2
}

// ZIndex returns the integer z-index and whether it is not auto.
func (c *Computed) ZIndex() (int, bool) {
	v := c.values[css.PropZIndex]
	if v.Kind != css.ValueNumber {
		return 0, false
	}
	return int(v.Num), true
}

// Margin, padding and border accessors in top, right, bottom, left order.

func (c *Computed) Margin() [4]Length  { return c.sides(css.MarginProps) }
func (c *Computed) Padding() [4]Length { return c.sides(css.PaddingProps) }
func (c *Computed) Inset() [4]Length   { return c.sides(css.InsetProps) }

func (c *Computed) BorderWidths() [4]float64 {
	var out [4]float64
	for i, p := range css.BorderWidthProps {
		out[i] = c.values[p].Num
	}
	return out
}

func (c *Computed) sides(props [4]css.Property) [4]Length {
	var out [4]Length
	for i, p := range props {
		out[i] = c.Length(p)
	}
	return out
}

// FontFamilies returns the font-family list.
func (c *Computed) FontFamilies() []string {
	parts := strings.Split(c.values[css.PropFontFamily].Str, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Bold reports whether the font weight is 600 or more.
func (c *Computed) Bold() bool { return c.values[css.PropFontWeight].Num >= 600 }

// Inherit returns a style for an anonymous box or text run inside an
// element with style parent: inherited properties come from parent, the
// rest are initial.
func Inherit(parent *Computed) *Computed {
	out := Initial()
	if parent == nil {
		return out
	}
	for p := css.Property(0); p < css.NumProperties; p++ {
		if p.Inherited() {
			out.values[p] = parent.values[p]
		}
	}
	out.RootFontSize = parent.RootFontSize
	return out
}

// Initial returns the computed initial values of all properties.
func Initial() *Computed {
	c := &Computed{RootFontSize: DefaultFontSize}
	for p := css.Property(0); p < css.NumProperties; p++ {
		c.values[p] = p.Initial()
	}
	c.values[css.PropFontSize] = css.Px(DefaultFontSize)
	c.values[css.PropTextAlign] = css.Keyword("left")
	for _, p := range css.BorderWidthProps {
		c.values[p] = css.Px(0)
	}
	for _, p := range css.BorderColorProps {
		c.values[p] = c.values[css.PropColor]
	}
	return c
}

// String lists the non-initial values, for debugging.
func (c *Computed) String() string {
	init := Initial()
	var parts []string
	for p := css.Property(0); p < css.NumProperties; p++ {
		if c.values[p] != init.values[p] {
			parts = append(parts, p.String()+": "+c.values[p].String())
		}
	}
	return strings.Join(parts, "; ")
}
