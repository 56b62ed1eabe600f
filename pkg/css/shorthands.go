package css

import "strings"

// longhandValue is one property assignment produced by a shorthand.
type longhandValue struct {
	prop  Property
	value Value
}

type expander func(ts []Node) ([]longhandValue, bool)

var shorthands = map[string]struct {
	longhands []Property
	expand    expander
}{}

func shorthand(name string, longhands []Property, expand expander) {
	shorthands[name] = struct {
		longhands []Property
		expand    expander
	}{longhands, expand}
}

func init() {
	shorthand("margin", MarginProps[:], boxSides(MarginProps))
	shorthand("padding", PaddingProps[:], boxSides(PaddingProps))
	shorthand("inset", InsetProps[:], boxSides(InsetProps))
	shorthand("border-width", BorderWidthProps[:], boxSides(BorderWidthProps))
	shorthand("border-style", BorderStyleProps[:], boxSides(BorderStyleProps))
	shorthand("border-color", BorderColorProps[:], boxSides(BorderColorProps))

	all := []Property{}
	for i, side := range [4]string{"top", "right", "bottom", "left"} {
		props := []Property{BorderWidthProps[i], BorderStyleProps[i], BorderColorProps[i]}
		all = append(all, props...)
		shorthand("border-"+side, props, borderSide(props))
	}
	shorthand("border", all, borderSide(all))

	shorthand("background", []Property{PropBackgroundColor}, background)
	shorthand("flex", []Property{PropFlexGrow, PropFlexShrink, PropFlexBasis}, flex)
	shorthand("gap", []Property{PropRowGap, PropColumnGap}, gap)
}

// expandShorthand resolves a shorthand declaration into longhands. The
// second result is false when name is not a shorthand; the third reports
// whether the value was valid.
func expandShorthand(name string, value []Node) ([]longhandValue, bool, bool) {
	sh, ok := shorthands[name]
	if !ok {
		return nil, false, false
	}
	ts := terms(value)
	if g, ok := globalKeyword(ts); ok {
		out := make([]longhandValue, len(sh.longhands))
		for i, p := range sh.longhands {
			out[i] = longhandValue{p, g}
		}
		return out, true, true
	}
	out, valid := sh.expand(ts)
	return out, true, valid
}

// boxSides implements the 1-to-4 value top/right/bottom/left pattern.
func boxSides(props [4]Property) expander {
	return func(ts []Node) ([]longhandValue, bool) {
		if len(ts) < 1 || len(ts) > 4 {
			return nil, false
		}
		vals := make([]Value, len(ts))
		for i, t := range ts {
			v, ok := properties[props[0]].parse([]Node{t})
			if !ok {
				return nil, false
			}
			vals[i] = v
		}
		var top, right, bottom, left Value
		switch len(vals) {
		case 1:
			top, right, bottom, left = vals[0], vals[0], vals[0], vals[0]
		case 2:
			top, right, bottom, left = vals[0], vals[1], vals[0], vals[1]
		case 3:
			top, right, bottom, left = vals[0], vals[1], vals[2], vals[1]
		default:
			top, right, bottom, left = vals[0], vals[1], vals[2], vals[3]
		}
		return []longhandValue{{props[0], top}, {props[1], right}, {props[2], bottom}, {props[3], left}}, true
	}
}

// borderSide expands "<width> || <style> || <color>" onto groups of
// (width, style, color) longhands. Omitted parts reset to their initial
// values.
func borderSide(props []Property) expander {
	return func(ts []Node) ([]longhandValue, bool) {
		if len(ts) < 1 || len(ts) > 3 {
			return nil, false
		}
		width, style, col := Keyword("medium"), Keyword("none"), Keyword("currentcolor")
		var seenW, seenS, seenC bool
		for _, t := range ts {
			if v, ok := borderWidth([]Node{t}); ok && !seenW {
				width, seenW = v, true
				continue
			}
			if v, ok := borderStyle([]Node{t}); ok && !seenS {
				style, seenS = v, true
				continue
			}
			if v, ok := parseColor(t); ok && !seenC {
				col, seenC = v, true
				continue
			}
			return nil, false
		}
		out := make([]longhandValue, 0, len(props))
		for i := 0; i+2 < len(props); i += 3 {
			out = append(out,
				longhandValue{props[i], width},
				longhandValue{props[i+1], style},
				longhandValue{props[i+2], col})
		}
		return out, true
	}
}

var backgroundKeywords = map[string]bool{
	"none": true, "repeat": true, "no-repeat": true, "repeat-x": true, "repeat-y": true,
	"space": true, "round": true, "scroll": true, "fixed": true, "local": true,
	"top": true, "bottom": true, "left": true, "right": true, "center": true,
	"cover": true, "contain": true, "auto": true,
	"border-box": true, "padding-box": true, "content-box": true,
}

// background keeps only the color layer; image and position parts are
// accepted and dropped.
func background(ts []Node) ([]longhandValue, bool) {
	col := ColorValue(Transparent)
	for _, t := range ts {
		if v, ok := parseColor(t); ok {
			col = v
			continue
		}
		if id, ok := identOf(t); ok && backgroundKeywords[id] {
			continue
		}
		if isToken(t, TokenURL) || isToken(t, TokenDelim) {
			continue
		}
		if _, ok := parseLength(t, true); ok {
			continue
		}
		if t.Kind == NodeFunction && strings.HasSuffix(t.Token.Name(), "gradient") {
			continue
		}
		return nil, false
	}
	return []longhandValue{{PropBackgroundColor, col}}, true
}

func flex(ts []Node) ([]longhandValue, bool) {
	grow, shrink, basis := Number(0), Number(1), Keyword("auto")
	if len(ts) == 1 {
		if id, ok := identOf(ts[0]); ok {
			switch id {
			case "none":
				return flexValues(grow, Number(0), basis), true
			case "auto":
				return flexValues(Number(1), shrink, basis), true
			}
		}
	}
	if len(ts) < 1 || len(ts) > 3 {
		return nil, false
	}
	// A bare number sets grow; a second bare number sets shrink.
	var numbers []float64
	basisSet := false
	for _, t := range ts {
		if f, ok := parseNumber(t); ok && !(f == 0 && len(numbers) == 2) {
			if f < 0 || len(numbers) == 2 {
				return nil, false
			}
			numbers = append(numbers, f)
			continue
		}
		v, ok := properties[PropFlexBasis].parse([]Node{t})
		if !ok || basisSet {
			return nil, false
		}
		basis, basisSet = v, true
	}
	if len(numbers) > 0 {
		grow = Number(numbers[0])
		if !basisSet {
			basis = Percent(0)
		}
	} else {
		grow = Number(1)
	}
	if len(numbers) > 1 {
		shrink = Number(numbers[1])
	}
	return flexValues(grow, shrink, basis), true
}

func flexValues(grow, shrink, basis Value) []longhandValue {
	return []longhandValue{{PropFlexGrow, grow}, {PropFlexShrink, shrink}, {PropFlexBasis, basis}}
}

func gap(ts []Node) ([]longhandValue, bool) {
	if len(ts) < 1 || len(ts) > 2 {
		return nil, false
	}
	row, ok := properties[PropRowGap].parse(ts[:1])
	if !ok {
		return nil, false
	}
	col := row
	if len(ts) == 2 {
		if col, ok = properties[PropColumnGap].parse(ts[1:]); !ok {
			return nil, false
		}
	}
	return []longhandValue{{PropRowGap, row}, {PropColumnGap, col}}, true
}
