package css

import (
	"image/color"
	"math"
	"strings"
)

// Property identifies a supported longhand CSS property.
type Property int

const (
	PropDisplay Property = iota
	PropPosition
	PropTop
	PropRight
	PropBottom
	PropLeft
	PropZIndex
	PropWidth
	PropHeight
	PropMinWidth
	PropMinHeight
	PropMaxWidth
	PropMaxHeight
	PropBoxSizing
	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft
	PropPaddingTop
	PropPaddingRight
	PropPaddingBottom
	PropPaddingLeft
	PropBorderTopWidth
	PropBorderRightWidth
	PropBorderBottomWidth
	PropBorderLeftWidth
	PropBorderTopStyle
	PropBorderRightStyle
	PropBorderBottomStyle
	PropBorderLeftStyle
	PropBorderTopColor
	PropBorderRightColor
	PropBorderBottomColor
	PropBorderLeftColor
	PropColor
	PropBackgroundColor
	PropOpacity
	PropVisibility
	PropOverflow
	PropFontFamily
	PropFontSize
	PropFontWeight
	PropFontStyle
	PropLineHeight
	PropTextAlign
	PropWhiteSpace
	PropFlexDirection
	PropFlexGrow
	PropFlexShrink
	PropFlexBasis
	PropJustifyContent
	PropAlignItems
	PropAlignSelf
	PropRowGap
	PropColumnGap

	NumProperties
)

// Side-indexed property groups, in top, right, bottom, left order.
var (
	MarginProps      = [4]Property{PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft}
	PaddingProps     = [4]Property{PropPaddingTop, PropPaddingRight, PropPaddingBottom, PropPaddingLeft}
	BorderWidthProps = [4]Property{PropBorderTopWidth, PropBorderRightWidth, PropBorderBottomWidth, PropBorderLeftWidth}
	BorderStyleProps = [4]Property{PropBorderTopStyle, PropBorderRightStyle, PropBorderBottomStyle, PropBorderLeftStyle}
	BorderColorProps = [4]Property{PropBorderTopColor, PropBorderRightColor, PropBorderBottomColor, PropBorderLeftColor}
	InsetProps       = [4]Property{PropTop, PropRight, PropBottom, PropLeft}
)

type valueParser func(terms []Node) (Value, bool)

type propertyInfo struct {
	name      string
	inherited bool
	initial   Value
	parse     valueParser
}

var (
	properties     [NumProperties]propertyInfo
	propertyByName = map[string]Property{}
)

func def(p Property, name string, inherited bool, initial Value, parse valueParser) {
	properties[p] = propertyInfo{name: name, inherited: inherited, initial: initial, parse: parse}
	propertyByName[name] = p
}

func init() {
	auto := Keyword("auto")
	def(PropDisplay, "display", false, Keyword("inline"), keywords("block", "inline", "inline-block", "flex", "inline-flex", "grid", "inline-grid", "none", "list-item", "contents"))
	def(PropPosition, "position", false, Keyword("static"), keywords("static", "relative", "absolute", "fixed", "sticky"))
	for i, name := range [4]string{"top", "right", "bottom", "left"} {
		def(InsetProps[i], name, false, auto, lengthOr(true, true, "auto"))
	}
	def(PropZIndex, "z-index", false, auto, integerOrAuto)
	def(PropWidth, "width", false, auto, lengthOr(true, false, "auto"))
	def(PropHeight, "height", false, auto, lengthOr(true, false, "auto"))
	def(PropMinWidth, "min-width", false, Px(0), lengthOr(true, false, "auto"))
	def(PropMinHeight, "min-height", false, Px(0), lengthOr(true, false, "auto"))
	def(PropMaxWidth, "max-width", false, Keyword("none"), lengthOr(true, false, "none"))
	def(PropMaxHeight, "max-height", false, Keyword("none"), lengthOr(true, false, "none"))
	def(PropBoxSizing, "box-sizing", false, Keyword("content-box"), keywords("content-box", "border-box"))

	sides := [4]string{"top", "right", "bottom", "left"}
	for i, side := range sides {
		def(MarginProps[i], "margin-"+side, false, Px(0), lengthOr(true, true, "auto"))
		def(PaddingProps[i], "padding-"+side, false, Px(0), lengthOr(true, false))
		def(BorderWidthProps[i], "border-"+side+"-width", false, Keyword("medium"), borderWidth)
		def(BorderStyleProps[i], "border-"+side+"-style", false, Keyword("none"), borderStyle)
		def(BorderColorProps[i], "border-"+side+"-color", false, Keyword("currentcolor"), colorParser)
	}

	def(PropColor, "color", true, ColorValue(black), colorParser)
	def(PropBackgroundColor, "background-color", false, ColorValue(Transparent), colorParser)
	def(PropOpacity, "opacity", false, Number(1), opacity)
	def(PropVisibility, "visibility", true, Keyword("visible"), keywords("visible", "hidden", "collapse"))
	def(PropOverflow, "overflow", false, Keyword("visible"), keywords("visible", "hidden", "clip", "scroll", "auto"))

	def(PropFontFamily, "font-family", true, Value{Kind: ValueString, Str: "sans-serif"}, fontFamily)
	def(PropFontSize, "font-size", true, Keyword("medium"), fontSize)
	def(PropFontWeight, "font-weight", true, Number(400), fontWeight)
	def(PropFontStyle, "font-style", true, Keyword("normal"), keywords("normal", "italic", "oblique"))
	def(PropLineHeight, "line-height", true, Keyword("normal"), lineHeight)
	def(PropTextAlign, "text-align", true, Keyword("start"), keywords("start", "end", "left", "right", "center", "justify"))
	def(PropWhiteSpace, "white-space", true, Keyword("normal"), keywords("normal", "pre", "nowrap", "pre-wrap", "pre-line", "break-spaces"))

	def(PropFlexDirection, "flex-direction", false, Keyword("row"), keywords("row", "row-reverse", "column", "column-reverse"))
	def(PropFlexGrow, "flex-grow", false, Number(0), nonNegativeNumber)
	def(PropFlexShrink, "flex-shrink", false, Number(1), nonNegativeNumber)
	def(PropFlexBasis, "flex-basis", false, auto, lengthOr(true, false, "auto", "content"))
	def(PropJustifyContent, "justify-content", false, Keyword("normal"), keywords("normal", "flex-start", "flex-end", "start", "end", "left", "right", "center", "space-between", "space-around", "space-evenly"))
	def(PropAlignItems, "align-items", false, Keyword("normal"), keywords("normal", "stretch", "flex-start", "flex-end", "start", "end", "center", "baseline"))
	def(PropAlignSelf, "align-self", false, auto, keywords("auto", "normal", "stretch", "flex-start", "flex-end", "start", "end", "center", "baseline"))
	def(PropRowGap, "row-gap", false, Keyword("normal"), lengthOr(true, false, "normal"))
	def(PropColumnGap, "column-gap", false, Keyword("normal"), lengthOr(true, false, "normal"))
}

// LookupProperty finds a longhand property by name.
func LookupProperty(name string) (Property, bool) {
	p, ok := propertyByName[strings.ToLower(name)]
	return p, ok
}

func (p Property) String() string {
	if p >= 0 && p < NumProperties {
		return properties[p].name
	}
	return "unknown"
}

// Inherited reports whether the property inherits by default.
func (p Property) Inherited() bool { return properties[p].inherited }

// Initial returns the property's initial value.
func (p Property) Initial() Value { return properties[p].initial }

var black = color.RGBA{A: 255}

// ParseValue validates CSS text as a value of p.
func ParseValue(p Property, src string) (Value, bool) {
	var parser Parser
	nodes := parser.ParseComponentValues(src)
	if len(parser.Errors) > 0 {
		return Value{}, false
	}
	return parseLonghand(p, terms(nodes))
}

func parseLonghand(p Property, ts []Node) (Value, bool) {
	if g, ok := globalKeyword(ts); ok {
		return g, true
	}
	if len(ts) == 0 {
		return Value{}, false
	}
	return properties[p].parse(ts)
}

func globalKeyword(ts []Node) (Value, bool) {
	if len(ts) != 1 {
		return Value{}, false
	}
	if id, ok := identOf(ts[0]); ok && (id == "inherit" || id == "initial" || id == "unset") {
		return Keyword(id), true
	}
	return Value{}, false
}

func single(f func(Node) (Value, bool)) valueParser {
	return func(ts []Node) (Value, bool) {
		if len(ts) != 1 {
			return Value{}, false
		}
		return f(ts[0])
	}
}

func keywordIn(n Node, allowed []string) (Value, bool) {
	id, ok := identOf(n)
	if !ok {
		return Value{}, false
	}
	for _, a := range allowed {
		if id == a {
			return Keyword(id), true
		}
	}
	return Value{}, false
}

func keywords(allowed ...string) valueParser {
	return single(func(n Node) (Value, bool) { return keywordIn(n, allowed) })
}

func lengthOr(percent, negative bool, kws ...string) valueParser {
	return single(func(n Node) (Value, bool) {
		if v, ok := keywordIn(n, kws); ok {
			return v, true
		}
		v, ok := parseLength(n, percent)
		if !ok || (!negative && v.Num < 0) {
			return Value{}, false
		}
		return v, true
	})
}

var colorParser = single(parseColor)

var borderWidth = single(func(n Node) (Value, bool) {
	if v, ok := keywordIn(n, []string{"thin", "medium", "thick"}); ok {
		return v, true
	}
	v, ok := parseLength(n, false)
	if !ok || v.Num < 0 {
		return Value{}, false
	}
	return v, true
})

var borderStyle = keywords("none", "hidden", "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset")

var integerOrAuto = single(func(n Node) (Value, bool) {
	if v, ok := keywordIn(n, []string{"auto"}); ok {
		return v, true
	}
	f, ok := parseNumber(n)
	if !ok || f != math.Trunc(f) {
		return Value{}, false
	}
	return Number(f), true
})

var nonNegativeNumber = single(func(n Node) (Value, bool) {
	f, ok := parseNumber(n)
	if !ok || f < 0 {
		return Value{}, false
	}
	return Number(f), true
})

var opacity = single(func(n Node) (Value, bool) {
	if n.Kind != NodeToken {
		return Value{}, false
	}
	f, unit, ok := numericToken(n.Token)
	if !ok || (unit != "" && unit != "%") {
		return Value{}, false
	}
	if unit == "%" {
		f /= 100
	}
	return Number(math.Max(0, math.Min(1, f))), true
})

func fontFamily(ts []Node) (Value, bool) {
	var names []string
	cur := ""
	for _, t := range ts {
		switch {
		case isToken(t, TokenComma):
			if cur == "" {
				return Value{}, false
			}
			names = append(names, cur)
			cur = ""
		case isToken(t, TokenString):
			cur = unquote(t.Token.Value)
		case isToken(t, TokenIdent):
			if cur != "" {
				cur += " "
			}
			cur += t.Token.Value
		default:
			return Value{}, false
		}
	}
	if cur == "" {
		return Value{}, false
	}
	names = append(names, cur)
	return Value{Kind: ValueString, Str: strings.Join(names, ", ")}, true
}

var fontSize = single(func(n Node) (Value, bool) {
	if v, ok := keywordIn(n, []string{"xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large", "xxx-large", "larger", "smaller"}); ok {
		return v, true
	}
	v, ok := parseLength(n, true)
	if !ok || v.Num < 0 {
		return Value{}, false
	}
	return v, true
})

var fontWeight = single(func(n Node) (Value, bool) {
	if id, ok := identOf(n); ok {
		switch id {
		case "normal":
			return Number(400), true
		case "bold":
			return Number(700), true
		case "bolder", "lighter":
			return Keyword(id), true
		}
		return Value{}, false
	}
	f, ok := parseNumber(n)
	if !ok || f < 1 || f > 1000 {
		return Value{}, false
	}
	return Number(f), true
})

var lineHeight = single(func(n Node) (Value, bool) {
	if v, ok := keywordIn(n, []string{"normal"}); ok {
		return v, true
	}
	if f, ok := parseNumber(n); ok {
		if f < 0 {
			return Value{}, false
		}
		return Number(f), true
	}
	v, ok := parseLength(n, true)
	if !ok || v.Num < 0 {
		return Value{}, false
	}
	return v, true
})
