package css

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ValueKind classifies a specified value.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueKeyword
	ValueLength
	ValuePercent
	ValueNumber
	ValueColor
	ValueString
	ValueURL
)

// Value is a validated specified value. Lengths keep their unit; resolving
// relative units is the job of the style computer.
type Value struct {
	Kind    ValueKind
	Num     float64
	Unit    string
	Keyword string
	Color   color.RGBA
	Str     string
}

func Keyword(k string) Value           { return Value{Kind: ValueKeyword, Keyword: k} }
func Px(n float64) Value               { return Value{Kind: ValueLength, Num: n, Unit: "px"} }
func Length(n float64, u string) Value { return Value{Kind: ValueLength, Num: n, Unit: u} }
func Percent(n float64) Value          { return Value{Kind: ValuePercent, Num: n} }
func Number(n float64) Value           { return Value{Kind: ValueNumber, Num: n} }
func ColorValue(c color.RGBA) Value    { return Value{Kind: ValueColor, Color: c} }

// Is reports whether v is the given keyword.
func (v Value) Is(keyword string) bool {
	return v.Kind == ValueKeyword && v.Keyword == keyword
}

// IsGlobal reports whether v is one of the CSS-wide keywords.
func (v Value) IsGlobal() bool {
	return v.Is("inherit") || v.Is("initial") || v.Is("unset")
}

func (v Value) String() string {
	switch v.Kind {
	case ValueKeyword:
		return v.Keyword
	case ValueLength:
		return formatNum(v.Num) + v.Unit
	case ValuePercent:
		return formatNum(v.Num) + "%"
	case ValueNumber:
		return formatNum(v.Num)
	case ValueColor:
		c := v.Color
		if c.A == 255 {
			return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
		}
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatNum(float64(c.A)/255))
	case ValueString:
		return v.Str
	case ValueURL:
		return "url(" + strconv.Quote(v.Str) + ")"
	}
	return ""
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Transparent is the initial background color.
var Transparent = color.RGBA{}

// numericToken splits a number, percentage or dimension token.
func numericToken(t Token) (num float64, unit string, ok bool) {
	s := t.Value
	switch t.Kind {
	case TokenNumber:
		f, err := strconv.ParseFloat(s, 64)
		return f, "", err == nil
	case TokenPercentage:
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		return f, "%", err == nil
	case TokenDimension:
		i := 0
		for i < len(s) && (s[i] == '+' || s[i] == '-' || s[i] == '.' || (s[i] >= '0' && s[i] <= '9') ||
			((s[i] == 'e' || s[i] == 'E') && i+1 < len(s) && (s[i+1] >= '0' && s[i+1] <= '9'))) {
			i++
		}
		f, err := strconv.ParseFloat(s[:i], 64)
		return f, strings.ToLower(s[i:]), err == nil
	}
	return 0, "", false
}

var lengthUnits = map[string]bool{
	"px": true, "pt": true, "pc": true, "in": true, "cm": true, "mm": true, "q": true,
	"em": true, "rem": true, "ex": true, "ch": true,
	"vw": true, "vh": true, "vmin": true, "vmax": true,
	"svw": true, "svh": true, "lvw": true, "lvh": true, "dvw": true, "dvh": true,
}

// IsLengthUnit reports whether u is a supported length unit.
func IsLengthUnit(u string) bool { return lengthUnits[u] }

// parseLength parses a length, percentage or unitless zero.
func parseLength(n Node, allowPercent bool) (Value, bool) {
	if n.Kind != NodeToken {
		return Value{}, false
	}
	num, unit, ok := numericToken(n.Token)
	if !ok {
		return Value{}, false
	}
	switch {
	case unit == "" && num == 0:
		return Px(0), true
	case unit == "%" && allowPercent:
		return Percent(num), true
	case lengthUnits[unit]:
		return Length(num, unit), true
	}
	return Value{}, false
}

func parseNumber(n Node) (float64, bool) {
	if n.Kind != NodeToken || n.Token.Kind != TokenNumber {
		return 0, false
	}
	f, _, ok := numericToken(n.Token)
	return f, ok
}

func identOf(n Node) (string, bool) {
	if n.Kind != NodeToken || n.Token.Kind != TokenIdent {
		return "", false
	}
	return strings.ToLower(n.Token.Value), true
}

// ParseColor parses a color from CSS text such as "red", "#0f0" or
// "rgba(0, 0, 255, 0.5)".
func ParseColor(s string) (color.RGBA, bool) {
	var p Parser
	nodes := terms(p.ParseComponentValues(s))
	if len(nodes) != 1 || len(p.Errors) > 0 {
		return color.RGBA{}, false
	}
	v, ok := parseColor(nodes[0])
	if !ok || v.Kind != ValueColor {
		return color.RGBA{}, false
	}
	return v.Color, true
}

// parseColor returns a color value or the currentcolor keyword.
func parseColor(n Node) (Value, bool) {
	switch n.Kind {
	case NodeToken:
		switch n.Token.Kind {
		case TokenIdent:
			name := strings.ToLower(n.Token.Value)
			switch name {
			case "currentcolor":
				return Keyword("currentcolor"), true
			case "transparent":
				return ColorValue(Transparent), true
			}
			if c, ok := colornames.Map[name]; ok {
				return ColorValue(c), true
			}
		case TokenHash:
			if c, ok := parseHex(n.Token.Value[1:]); ok {
				return ColorValue(c), true
			}
		}
	case NodeFunction:
		switch n.Token.Name() {
		case "rgb", "rgba":
			if c, ok := parseRGB(n.Content); ok {
				return ColorValue(c), true
			}
		case "hsl", "hsla":
			if c, ok := parseHSL(n.Content); ok {
				return ColorValue(c), true
			}
		}
	}
	return Value{}, false
}

func parseHex(h string) (color.RGBA, bool) {
	var digits [8]uint8
	if len(h) != 3 && len(h) != 4 && len(h) != 6 && len(h) != 8 {
		return color.RGBA{}, false
	}
	for i := 0; i < len(h); i++ {
		d, err := strconv.ParseUint(h[i:i+1], 16, 8)
		if err != nil {
			return color.RGBA{}, false
		}
		digits[i] = uint8(d)
	}
	c := color.RGBA{A: 255}
	switch len(h) {
	case 3, 4:
		c.R, c.G, c.B = digits[0]*17, digits[1]*17, digits[2]*17
		if len(h) == 4 {
			c.A = digits[3] * 17
		}
	default:
		c.R = digits[0]<<4 | digits[1]
		c.G = digits[2]<<4 | digits[3]
		c.B = digits[4]<<4 | digits[5]
		if len(h) == 8 {
			c.A = digits[6]<<4 | digits[7]
		}
	}
	return c, true
}

// colorArgs accepts both the legacy comma syntax and the space syntax with
// an optional "/ alpha".
func colorArgs(content []Node) ([]Node, bool) {
	var out []Node
	for _, n := range content {
		if isToken(n, TokenWhitespace) || isToken(n, TokenComma) {
			continue
		}
		if n.Kind == NodeToken && n.Token.Kind == TokenDelim && n.Token.Value == "/" {
			continue
		}
		out = append(out, n)
	}
	return out, len(out) == 3 || len(out) == 4
}

func parseRGB(content []Node) (color.RGBA, bool) {
	args, ok := colorArgs(content)
	if !ok {
		return color.RGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		num, unit, ok := numericToken(args[i].Token)
		if !ok || args[i].Kind != NodeToken || (unit != "" && unit != "%") {
			return color.RGBA{}, false
		}
		if unit == "%" {
			num = num * 255 / 100
		}
		ch[i] = clampByte(num)
	}
	a, ok := alphaArg(args)
	if !ok {
		return color.RGBA{}, false
	}
	return premultiplied(ch[0], ch[1], ch[2], a), true
}

func parseHSL(content []Node) (color.RGBA, bool) {
	args, ok := colorArgs(content)
	if !ok {
		return color.RGBA{}, false
	}
	h, hu, ok1 := numericToken(args[0].Token)
	s, su, ok2 := numericToken(args[1].Token)
	l, lu, ok3 := numericToken(args[2].Token)
	if !ok1 || !ok2 || !ok3 || (hu != "" && hu != "deg") || su != "%" || lu != "%" {
		return color.RGBA{}, false
	}
	a, ok := alphaArg(args)
	if !ok {
		return color.RGBA{}, false
	}
	r, g, b := hslToRGB(math.Mod(math.Mod(h, 360)+360, 360)/360, s/100, l/100)
	return premultiplied(clampByte(r*255), clampByte(g*255), clampByte(b*255), a), true
}

func alphaArg(args []Node) (float64, bool) {
	if len(args) < 4 {
		return 1, true
	}
	num, unit, ok := numericToken(args[3].Token)
	if !ok || (unit != "" && unit != "%") {
		return 0, false
	}
	if unit == "%" {
		num /= 100
	}
	return math.Max(0, math.Min(1, num)), true
}

// premultiplied builds an image/color RGBA, whose channels are alpha
// premultiplied.
func premultiplied(r, g, b uint8, a float64) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(float64(r) * a)),
		G: uint8(math.Round(float64(g) * a)),
		B: uint8(math.Round(float64(b) * a)),
		A: uint8(math.Round(a * 255)),
	}
}

func clampByte(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, f))))
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hue(p, q, h+1.0/3), hue(p, q, h), hue(p, q, h-1.0/3)
}

func hue(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}
