package css

import "strings"

// MediaType is the target medium of a render.
type MediaType int

const (
	MediaAll MediaType = iota
	MediaScreen
	MediaPrint
)

func (t MediaType) String() string {
	switch t {
	case MediaScreen:
		return "screen"
	case MediaPrint:
		return "print"
	}
	return "all"
}

// Media describes the rendering medium for media query evaluation and
// viewport-relative units. Sizes are in CSS pixels. LargeWidth and
// LargeHeight are the large viewport; zero means same as the small one.
type Media struct {
	Type        MediaType
	Width       float64
	Height      float64
	LargeWidth  float64
	LargeHeight float64
}

// Large returns the large viewport size, falling back to the small one.
func (m Media) Large() (float64, float64) {
	w, h := m.LargeWidth, m.LargeHeight
	if w == 0 {
		w = m.Width
	}
	if h == 0 {
		h = m.Height
	}
	return w, h
}

// MediaFeature is a single "(name: value)" test. Value is in pixels for
// lengths; Keyword holds identifier values such as "portrait".
type MediaFeature struct {
	Name    string
	Value   float64
	Keyword string
	Bare    bool
}

// MediaQuery is one comma-separated entry of a media query list.
type MediaQuery struct {
	Not      bool
	Type     MediaType
	Features []MediaFeature
	// Never is set for queries using unknown types or features; such a
	// query matches nothing (and "not" of it matches everything).
	Never bool
}

// MediaQueryList matches when any of its queries matches. An empty list
// matches all media.
type MediaQueryList []MediaQuery

// Matches reports whether the list applies to m.
func (l MediaQueryList) Matches(m Media) bool {
	if len(l) == 0 {
		return true
	}
	for _, q := range l {
		if q.Matches(m) {
			return true
		}
	}
	return false
}

func (l MediaQueryList) String() string {
	parts := make([]string, len(l))
	for i, q := range l {
		parts[i] = q.String()
	}
	return strings.Join(parts, ", ")
}

// Matches reports whether the query applies to m.
func (q MediaQuery) Matches(m Media) bool {
	ok := !q.Never && (q.Type == MediaAll || q.Type == m.Type)
	if ok {
		for _, f := range q.Features {
			if !f.matches(m) {
				ok = false
				break
			}
		}
	}
	return ok != q.Not
}

func (q MediaQuery) String() string {
	var sb strings.Builder
	if q.Not {
		sb.WriteString("not ")
	}
	sb.WriteString(q.Type.String())
	for _, f := range q.Features {
		sb.WriteString(" and (")
		sb.WriteString(f.Name)
		if !f.Bare {
			sb.WriteString(": ")
			if f.Keyword != "" {
				sb.WriteString(f.Keyword)
			} else {
				sb.WriteString(formatNum(f.Value) + "px")
			}
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func (f MediaFeature) matches(m Media) bool {
	switch f.Name {
	case "width":
		if f.Bare {
			return m.Width > 0
		}
		return m.Width == f.Value
	case "min-width":
		return m.Width >= f.Value
	case "max-width":
		return m.Width <= f.Value
	case "height":
		if f.Bare {
			return m.Height > 0
		}
		return m.Height == f.Value
	case "min-height":
		return m.Height >= f.Value
	case "max-height":
		return m.Height <= f.Value
	case "orientation":
		portrait := m.Height >= m.Width
		if f.Bare {
			return true
		}
		return (f.Keyword == "portrait") == portrait
	case "color":
		return m.Type != MediaPrint || f.Bare
	}
	return false
}

// ParseMediaQueries parses a media query list such as the media attribute
// of a link element.
func ParseMediaQueries(src string) MediaQueryList {
	var p Parser
	return parseMediaQueryList(p.ParseComponentValues(src))
}

func parseMediaQueryList(nodes []Node) MediaQueryList {
	nodes = trimWhitespace(nodes)
	if len(nodes) == 0 {
		return nil
	}
	var out MediaQueryList
	for _, part := range splitCommas(nodes) {
		out = append(out, parseMediaQuery(terms(part)))
	}
	return out
}

func parseMediaQuery(ts []Node) MediaQuery {
	q := MediaQuery{}
	if len(ts) == 0 {
		return MediaQuery{Never: true}
	}
	if id, ok := identOf(ts[0]); ok && (id == "not" || id == "only") {
		q.Not = id == "not"
		ts = ts[1:]
	}
	expectFeature := true
	if len(ts) > 0 {
		if id, ok := identOf(ts[0]); ok {
			switch id {
			case "all":
				q.Type = MediaAll
			case "screen":
				q.Type = MediaScreen
			case "print":
				q.Type = MediaPrint
			default:
				q.Never = true
			}
			ts = ts[1:]
			expectFeature = false
		}
	}
	for len(ts) > 0 {
		if !expectFeature {
			if id, ok := identOf(ts[0]); !ok || id != "and" {
				q.Never = true
				return q
			}
			ts = ts[1:]
			if len(ts) == 0 {
				q.Never = true
				return q
			}
		}
		f, ok := parseMediaFeature(ts[0])
		if !ok {
			q.Never = true
			return q
		}
		q.Features = append(q.Features, f)
		ts = ts[1:]
		expectFeature = false
	}
	return q
}

func parseMediaFeature(n Node) (MediaFeature, bool) {
	if n.Kind != NodeBlock || n.Token.Kind != TokenLParen {
		return MediaFeature{}, false
	}
	ts := terms(n.Content)
	if len(ts) == 0 {
		return MediaFeature{}, false
	}
	name, ok := identOf(ts[0])
	if !ok {
		return MediaFeature{}, false
	}
	f := MediaFeature{Name: name}
	switch name {
	case "width", "min-width", "max-width", "height", "min-height", "max-height", "orientation", "color":
	default:
		return MediaFeature{}, false
	}
	if len(ts) == 1 {
		f.Bare = true
		return f, !strings.HasPrefix(name, "min-") && !strings.HasPrefix(name, "max-")
	}
	if len(ts) != 3 || !isToken(ts[1], TokenColon) {
		return MediaFeature{}, false
	}
	if name == "orientation" {
		kw, ok := identOf(ts[2])
		if !ok || (kw != "portrait" && kw != "landscape") {
			return MediaFeature{}, false
		}
		f.Keyword = kw
		return f, true
	}
	v, ok := parseLength(ts[2], false)
	if !ok {
		return MediaFeature{}, false
	}
	px, ok := absoluteLength(v.Num, v.Unit, 16)
	if !ok {
		return MediaFeature{}, false
	}
	f.Value = px
	return f, true
}

// absoluteLength converts absolute units, and font-relative units against
// fontSize, to pixels.
func absoluteLength(n float64, unit string, fontSize float64) (float64, bool) {
	switch unit {
	case "px", "":
		return n, true
	case "pt":
		return n * 96 / 72, true
	case "pc":
		return n * 16, true
	case "in":
		return n * 96, true
	case "cm":
		return n * 96 / 2.54, true
	case "mm":
		return n * 96 / 25.4, true
	case "q":
		return n * 96 / 101.6, true
	case "em", "rem":
		return n * fontSize, true
	case "ex", "ch":
		return n * fontSize / 2, true
	}
	return 0, false
}

// AbsoluteLength converts a length in an absolute unit to pixels.
func AbsoluteLength(n float64, unit string) (float64, bool) {
	switch unit {
	case "em", "rem", "ex", "ch":
		return 0, false
	}
	return absoluteLength(n, unit, 0)
}
