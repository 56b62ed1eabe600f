package style

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"vellum/pkg/css"
	"vellum/pkg/html"
	"vellum/pkg/logging"
)

// ErrNotElement is returned when resolving style for a non-element node.
var ErrNotElement = errors.New("style: node is not an element")

// Computer resolves computed styles from a book for one medium. It keeps no
// state between calls: the result depends only on the element, its
// parent's computed style, the book and the media.
type Computer struct {
	book   *Book
	media  css.Media
	logger *zap.Logger
}

// NewComputer creates a computer. A nil logger uses the global one.
func NewComputer(book *Book, media css.Media, logger *zap.Logger) *Computer {
	if book == nil {
		book = NewBook()
	}
	return &Computer{book: book, media: media, logger: logging.Or(logger).Named("style")}
}

// Media returns the medium styles are computed for.
func (c *Computer) Media() css.Media { return c.media }

// Cascade ranks, lowest first. Important declarations invert the origin
// order.
const (
	rankUserAgent = iota
	rankAuthor
	rankInline
	rankAuthorImportant
	rankInlineImportant
	rankUserAgentImportant
)

func rank(origin css.Origin, important bool) int {
	switch origin {
	case css.OriginUserAgent:
		if important {
			return rankUserAgentImportant
		}
		return rankUserAgent
	case css.OriginInline:
		if important {
			return rankInlineImportant
		}
		return rankInline
	}
	if important {
		return rankAuthorImportant
	}
	return rankAuthor
}

type candidate struct {
	value css.Value
	rank  int
	spec  css.Specificity
	order int
	set   bool
}

// beats reports whether c wins over other; ties go to c, which always comes
// later in source order.
func (c candidate) beats(other candidate) bool {
	if !other.set {
		return true
	}
	if c.rank != other.rank {
		return c.rank > other.rank
	}
	if c.spec != other.spec {
		return other.spec.Less(c.spec)
	}
	return c.order > other.order
}

// Cascade returns the winning specified value of every property for el,
// with unset entries where no declaration applies.
func (c *Computer) cascade(el *html.Node) [css.NumProperties]candidate {
	var won [css.NumProperties]candidate
	order := 0
	consider := func(d css.Declaration, origin css.Origin, spec css.Specificity) {
		order++
		cand := candidate{value: d.Value, rank: rank(origin, d.Important), spec: spec, order: order, set: true}
		if cand.beats(won[d.Property]) {
			won[d.Property] = cand
		}
	}
	for _, sheet := range c.book.Sheets() {
		for i := range sheet.Rules {
			r := &sheet.Rules[i]
			if !r.AppliesTo(c.media) {
				continue
			}
			spec, ok := r.Selectors.Match(el)
			if !ok {
				continue
			}
			for _, d := range r.Declarations {
				consider(d, sheet.Origin, spec)
			}
		}
	}
	if attr, ok := html.GetAttribute(el, "style"); ok && strings.TrimSpace(attr) != "" {
		decls, errs := css.ParseDeclarations(attr)
		for _, e := range errs {
			c.logger.Debug("Invalid inline style", zap.String("element", html.TagName(el)), zap.Error(e))
		}
		for _, d := range decls {
			consider(d, css.OriginInline, css.Specificity{})
		}
	}
	return won
}

// Resolve computes the style of el. parent is the computed style of el's
// parent element, or nil for the root.
func (c *Computer) Resolve(el *html.Node, parent *Computed) (*Computed, error) {
	if !html.IsElement(el) {
		return nil, fmt.Errorf("resolve %q: %w", describe(el), ErrNotElement)
	}
	won := c.cascade(el)
	root := parent == nil
	if root {
		parent = Initial()
	}
	out := &Computed{RootFontSize: parent.RootFontSize}
	spec := func(p css.Property) css.Value {
		v := p.Initial()
		if won[p].set {
			v = won[p].value
		} else if p.Inherited() {
			v = css.Keyword("inherit")
		}
		if v.Is("unset") {
			v = css.Keyword("initial")
			if p.Inherited() {
				v = css.Keyword("inherit")
			}
		}
		return v
	}

	// font-size first: em units everywhere else depend on it, and color
	// second because currentcolor does.
	fs := c.computeFontSize(spec(css.PropFontSize), parent)
	out.values[css.PropFontSize] = css.Px(fs)
	if root {
		out.RootFontSize = fs
	}
	lc := lengthContext{fontSize: fs, rootFontSize: out.RootFontSize, media: c.media}

	order := make([]css.Property, 0, css.NumProperties)
	order = append(order, css.PropColor)
	for p := css.Property(0); p < css.NumProperties; p++ {
		if p != css.PropFontSize && p != css.PropColor {
			order = append(order, p)
		}
	}
	for _, p := range order {
		v := spec(p)
		switch {
		case v.Is("inherit"):
			out.values[p] = parent.values[p]
			continue
		case v.Is("initial"):
			v = p.Initial()
		}
		out.values[p] = c.computeValue(p, v, lc, parent, out)
	}

	// Border widths compute to zero when the matching style is none.
	for i, p := range css.BorderWidthProps {
		switch out.Keyword(css.BorderStyleProps[i]) {
		case "none", "hidden":
			out.values[p] = css.Px(0)
		}
	}
	return out, nil
}

func (c *Computer) computeFontSize(v css.Value, parent *Computed) float64 {
	pfs := parent.FontSize()
	switch {
	case v.Is("inherit"):
		return pfs
	case v.Is("initial"):
		return DefaultFontSize
	case v.Kind == css.ValueKeyword:
		switch v.Keyword {
		case "larger":
			return pfs * 1.2
		case "smaller":
			return pfs / 1.2
		}
		if px, ok := absoluteFontSizes[v.Keyword]; ok {
			return px
		}
	case v.Kind == css.ValuePercent:
		return pfs * v.Num / 100
	case v.Kind == css.ValueLength:
		// em in font-size refers to the parent's font size.
		lc := lengthContext{fontSize: pfs, rootFontSize: parent.RootFontSize, media: c.media}
		if px, ok := lc.toPx(v); ok {
			return px
		}
	}
	return pfs
}

func (c *Computer) computeValue(p css.Property, v css.Value, lc lengthContext, parent, out *Computed) css.Value {
	switch v.Kind {
	case css.ValueLength:
		if p == css.PropLineHeight || v.Unit != "px" {
			if px, ok := lc.toPx(v); ok {
				return css.Px(px)
			}
		}
		return v
	case css.ValuePercent:
		if p == css.PropLineHeight {
			return css.Px(v.Num * lc.fontSize / 100)
		}
		return v
	case css.ValueKeyword:
		switch {
		case v.Keyword == "currentcolor":
			if p == css.PropColor {
				return parent.values[css.PropColor]
			}
			return out.values[css.PropColor]
		case p == css.PropFontWeight:
			return relativeWeight(v.Keyword, parent.Number(css.PropFontWeight))
		}
		if px, ok := borderWidthKeywords[v.Keyword]; ok && isBorderWidth(p) {
			return css.Px(px)
		}
		if (p == css.PropRowGap || p == css.PropColumnGap) && v.Keyword == "normal" {
			return css.Px(0)
		}
		if p == css.PropTextAlign {
			switch v.Keyword {
			case "start":
				return css.Keyword("left")
			case "end":
				return css.Keyword("right")
			}
		}
	}
	return v
}

func isBorderWidth(p css.Property) bool {
	for _, b := range css.BorderWidthProps {
		if p == b {
			return true
		}
	}
	return false
}

func relativeWeight(kw string, parent float64) css.Value {
	switch kw {
	case "bolder":
		switch {
		case parent < 350:
			return css.Number(400)
		case parent < 550:
			return css.Number(700)
		}
		return css.Number(900)
	case "lighter":
		switch {
		case parent < 550:
			return css.Number(100)
		case parent < 750:
			return css.Number(400)
		}
		return css.Number(700)
	}
	return css.Number(400)
}

func describe(n *html.Node) string {
	switch {
	case n == nil:
		return "<nil>"
	case html.IsText(n):
		return "#text"
	}
	return fmt.Sprintf("node type %d", n.Type)
}
