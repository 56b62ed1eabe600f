package layout

import (
	"math"
	"strings"
	"unicode"

	"vellum/pkg/css"
	"vellum/pkg/geom"
	"vellum/pkg/style"
	"vellum/pkg/text"
)

const epsilon = 0.01

type itemKind int

const (
	itemText itemKind = iota
	itemOpen
	itemClose
	itemAtomic
	itemBreak
	itemOutOfFlow
)

type inlineItem struct {
	kind itemKind
	box  *Box
}

// collectItems flattens an inline formatting context into a sequence of
// items, with inline boxes bracketed by open and close items.
func collectItems(children []*Box, items []inlineItem) []inlineItem {
	for _, c := range children {
		switch {
		case c.IsOutOfFlow():
			items = append(items, inlineItem{itemOutOfFlow, c})
		case c.Kind == KindText && c.LineBreak:
			items = append(items, inlineItem{itemBreak, c})
		case c.Kind == KindText:
			items = append(items, inlineItem{itemText, c})
		case c.Kind == KindInline:
			items = append(items, inlineItem{itemOpen, c})
			items = collectItems(c.Children, items)
			items = append(items, inlineItem{itemClose, c})
		default:
			items = append(items, inlineItem{itemAtomic, c})
		}
	}
	return items
}

func whiteSpace(s *style.Computed) string { return s.Keyword(css.PropWhiteSpace) }

// collapsible reports whether runs of white space collapse to one space.
func collapsible(s *style.Computed) bool {
	switch whiteSpace(s) {
	case "pre", "pre-wrap", "break-spaces":
		return false
	}
	return true
}

func wraps(s *style.Computed) bool {
	ws := whiteSpace(s)
	return ws != "nowrap" && ws != "pre"
}

func keepsNewlines(s *style.Computed) bool {
	ws := whiteSpace(s)
	return ws != "normal" && ws != "nowrap"
}

func textStyle(s *style.Computed) text.Style {
	return text.Style{
		Size:   s.FontSize(),
		Bold:   s.Bold(),
		Italic: s.Keyword(css.PropFontStyle) != "normal",
		Mono:   text.IsMonospace(s.FontFamilies()),
	}
}

// lineMetrics is the ascent and descent of s with half-leading applied.
func (t *Tree) lineMetrics(s *style.Computed) (ascent, descent float64) {
	m := t.Measurer.Metrics(textStyle(s))
	lead := (s.LineHeight() - (m.Ascent + m.Descent)) / 2
	return m.Ascent + lead, m.Descent + lead
}

type pendingKind int

const (
	pendingText pendingKind = iota
	pendingInline
	pendingAtomic
	pendingOutOfFlow
)

type pending struct {
	kind pendingKind
	box  *Box
	x, w float64
	text string

	// inline boxes
	e           edges
	first, last bool

	// atomics
	borderW, borderH float64
}

type openBox struct {
	box     *Box
	e       edges
	idx     int
	emitted bool
}

func (o *openBox) leftEdge() float64 {
	return o.e.margin.Left + o.e.border.Left + o.e.padding.Left
}

func (o *openBox) rightEdge() float64 {
	return o.e.margin.Right + o.e.border.Right + o.e.padding.Right
}

type lineBuilder struct {
	t         *Tree
	container *Box
	origin    geom.Point
	avail     float64
	cb        ContainingBlock
	in        Input

	items    []pending
	x        float64
	open     []*openBox
	deferred []*openBox

	inked      bool
	breakable  bool
	afterSpace bool

	y, maxWidth float64
	lines       []Line
}

// layoutLines breaks the inline content of b into line boxes of width avail
// starting at origin. It returns the lines, their total height and the
// widest line.
func (t *Tree) layoutLines(b *Box, origin geom.Point, avail float64, cb ContainingBlock, in Input) ([]Line, float64, float64) {
	lb := &lineBuilder{t: t, container: b, origin: origin, avail: avail, cb: cb, in: in, afterSpace: true}
	if in.Commit {
		resetInlineFrames(b.Children)
	}
	for _, it := range collectItems(b.Children, nil) {
		lb.add(it)
	}
	lb.finish(false)
	return lb.lines, lb.y, lb.maxWidth
}

func resetInlineFrames(children []*Box) {
	for _, c := range children {
		if c.Kind == KindInline || c.Kind == KindText {
			c.Frame = Frame{}
			resetInlineFrames(c.Children)
		}
	}
}

func (lb *lineBuilder) add(it inlineItem) {
	switch it.kind {
	case itemText:
		lb.addText(it.box)
	case itemBreak:
		lb.flushOpens()
		lb.finish(true)
	case itemOpen:
		lb.deferred = append(lb.deferred, &openBox{box: it.box, e: lb.t.boxEdges(it.box, lb.cb.Width)})
	case itemClose:
		lb.flushOpens()
		ob := lb.open[len(lb.open)-1]
		lb.open = lb.open[:len(lb.open)-1]
		lb.x += ob.rightEdge()
		p := &lb.items[ob.idx]
		p.w = lb.x - p.x
		p.last = true
	case itemAtomic:
		lb.addAtomic(it.box)
	case itemOutOfFlow:
		lb.items = append(lb.items, pending{kind: pendingOutOfFlow, box: it.box, x: lb.x})
	}
}

func (lb *lineBuilder) deferredEdges() float64 {
	var w float64
	for _, ob := range lb.deferred {
		w += ob.leftEdge()
	}
	return w
}

// flushOpens places inline boxes opened since the last content, so that a
// break before that content carries them to the next line.
func (lb *lineBuilder) flushOpens() {
	for _, ob := range lb.deferred {
		ob.idx = len(lb.items)
		lb.items = append(lb.items, pending{kind: pendingInline, box: ob.box, x: lb.x, e: ob.e, first: true})
		lb.x += ob.leftEdge()
		lb.open = append(lb.open, ob)
	}
	lb.deferred = lb.deferred[:0]
}

func (lb *lineBuilder) overflows(w float64) bool {
	return lb.x+lb.deferredEdges()+w > lb.avail+epsilon
}

func (lb *lineBuilder) addText(b *Box) {
	s := b.Style
	coll := collapsible(s)
	wrap := wraps(s)
	st := textStyle(s)

	src := strings.ReplaceAll(b.Text, "\r\n", "\n")
	if keepsNewlines(s) {
		src = strings.ReplaceAll(src, "\t", "        ")
	} else {
		src = strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' || r == '\t' {
				return ' '
			}
			return r
		}, src)
	}

	for _, tok := range splitText(src) {
		switch {
		case tok == "\n":
			lb.flushOpens()
			lb.finish(true)
		case isSpace(tok):
			if coll {
				if lb.afterSpace {
					continue
				}
				tok = " "
			}
			lb.flushOpens()
			lb.place(b, tok, lb.t.Measurer.Measure(tok, st))
			lb.afterSpace = coll
			lb.breakable = wrap
			if !coll {
				lb.inked = true
			}
		default:
			w := lb.t.Measurer.Measure(tok, st)
			if wrap && lb.breakable && lb.inked && lb.overflows(w) {
				lb.finish(false)
			}
			lb.flushOpens()
			lb.place(b, tok, w)
			lb.afterSpace = false
			lb.breakable = false
			lb.inked = true
		}
	}
}

// splitText splits s into words, space runs and newlines.
func splitText(s string) []string {
	var out []string
	start := 0
	class := func(r rune) int {
		switch {
		case r == '\n':
			return 2
		case r == ' ' || unicode.IsSpace(r) && r != ' ':
			return 1
		}
		return 0
	}
	prev := -1
	for i, r := range s {
		c := class(r)
		if i > start && (c != prev || c == 2) {
			out = append(out, s[start:i])
			start = i
		}
		prev = c
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isSpace(tok string) bool {
	return strings.TrimLeft(tok, " ") == "" || strings.TrimFunc(tok, unicode.IsSpace) == "" && !strings.ContainsRune(tok, ' ')
}

func (lb *lineBuilder) place(b *Box, s string, w float64) {
	if n := len(lb.items); n > 0 {
		last := &lb.items[n-1]
		if last.kind == pendingText && last.box == b && math.Abs(last.x+last.w-lb.x) < epsilon {
			last.text += s
			last.w += w
			lb.x += w
			return
		}
	}
	lb.items = append(lb.items, pending{kind: pendingText, box: b, x: lb.x, w: w, text: s})
	lb.x += w
}

func (lb *lineBuilder) addAtomic(b *Box) {
	e := lb.t.boxEdges(b, lb.cb.Width)
	ain := Input{
		Available:       geom.Size{Width: lb.avail, Height: lb.in.Available.Height},
		ContainingBlock: lb.cb,
	}
	var w float64
	switch {
	case b.Kind == KindReplaced:
		cw, _ := lb.t.replacedSize(b, e, lb.cb)
		w = cw + e.extraH()
	default:
		if cw, ok := specifiedSize(b.Style, css.PropWidth, lb.cb.Width, true, e.extraH()); ok {
			w = clampWidth(b.Style, cw, lb.cb.Width, e.extraH()) + e.extraH()
		} else {
			w = lb.t.shrinkToFit(b, ain, math.Max(0, lb.avail-e.margin.Horizontal()))
		}
	}
	out := lb.t.Layout(b, ain.WithWidth(w))
	outer := w + e.margin.Horizontal()
	if wraps(lb.container.Style) && lb.inked && lb.overflows(outer) {
		lb.finish(false)
	}
	lb.flushOpens()
	lb.items = append(lb.items, pending{
		kind: pendingAtomic, box: b, x: lb.x, w: outer, e: e,
		borderW: w, borderH: out.Size.Height,
	})
	lb.x += outer
	lb.inked = true
	lb.breakable = true
	lb.afterSpace = false
}

// trimTrailing removes collapsible spaces at the end of the line.
func (lb *lineBuilder) trimTrailing() {
	for i := len(lb.items) - 1; i >= 0; i-- {
		it := &lb.items[i]
		switch it.kind {
		case pendingAtomic:
			return
		case pendingInline, pendingOutOfFlow:
			continue
		}
		if !collapsible(it.box.Style) {
			return
		}
		trimmed := strings.TrimRight(it.text, " ")
		if trimmed == it.text {
			return
		}
		end := it.x + it.w
		nw := 0.0
		if trimmed != "" {
			nw = lb.t.Measurer.Measure(trimmed, textStyle(it.box.Style))
		}
		dw := it.w - nw
		it.text, it.w = trimmed, nw
		for j := range lb.items {
			o := &lb.items[j]
			if o.kind == pendingInline && o.x+o.w >= end-epsilon {
				o.w -= dw
			}
		}
		lb.x -= dw
		return
	}
}

func (lb *lineBuilder) hasContent() bool {
	if lb.inked {
		return true
	}
	for _, it := range lb.items {
		if it.kind == pendingInline && it.e.margin.Horizontal()+it.e.extraH() > 0 {
			return true
		}
	}
	return false
}

func (lb *lineBuilder) alignOffset(width float64) float64 {
	if math.IsInf(lb.avail, 0) || lb.avail <= width {
		return 0
	}
	switch lb.container.Style.Keyword(css.PropTextAlign) {
	case "right":
		return lb.avail - width
	case "center":
		return (lb.avail - width) / 2
	}
	return 0
}

// finish closes the current line. forced lines are kept even when empty.
func (lb *lineBuilder) finish(forced bool) {
	for _, ob := range lb.open {
		p := &lb.items[ob.idx]
		p.w = lb.x - p.x
	}
	lb.trimTrailing()
	top := lb.origin.Y + lb.y
	if !forced && !lb.hasContent() {
		lb.placeOutOfFlow(top)
		lb.reset(false)
		return
	}

	ascent, descent := lb.t.lineMetrics(lb.container.Style)
	for _, it := range lb.items {
		switch it.kind {
		case pendingText, pendingInline:
			a, d := lb.t.lineMetrics(it.box.Style)
			ascent = math.Max(ascent, a)
			descent = math.Max(descent, d)
		case pendingAtomic:
			ascent = math.Max(ascent, it.borderH+it.e.margin.Vertical())
		}
	}
	width := lb.x
	lb.maxWidth = math.Max(lb.maxWidth, width)
	lb.y += ascent + descent
	if !lb.in.Commit {
		lb.reset(true)
		return
	}

	off := lb.alignOffset(width)
	left := lb.origin.X + off
	baseline := top + ascent
	line := Line{Rect: geom.R(left, top, width, ascent+descent), Baseline: baseline}
	for _, it := range lb.items {
		switch it.kind {
		case pendingText:
			if it.text == "" {
				continue
			}
			a, d := lb.t.lineMetrics(it.box.Style)
			f := Fragment{Kind: FragmentText, Box: it.box, Rect: geom.R(left+it.x, baseline-a, it.w, a+d), Text: it.text, Baseline: baseline}
			line.Fragments = append(line.Fragments, f)
			it.box.Frame.Rect = it.box.Frame.Rect.Union(f.Rect)
		case pendingInline:
			m := lb.t.Measurer.Metrics(textStyle(it.box.Style))
			x, w := left+it.x, it.w
			if it.first {
				x += it.e.margin.Left
				w -= it.e.margin.Left
			}
			if it.last {
				w -= it.e.margin.Right
			}
			r := geom.R(x, baseline-m.Ascent-it.e.border.Top-it.e.padding.Top, math.Max(0, w), m.Ascent+m.Descent+it.e.extraV())
			line.Fragments = append(line.Fragments, Fragment{Kind: FragmentInline, Box: it.box, Rect: r, Baseline: baseline, First: it.first, Last: it.last})
			it.box.Frame.Rect = it.box.Frame.Rect.Union(r)
			if r.Empty() && it.box.Frame.Rect.Empty() {
				it.box.Frame.Rect = r
			}
			it.box.Frame.Margin, it.box.Frame.Border, it.box.Frame.Padding = it.e.margin, it.e.border, it.e.padding
		case pendingAtomic:
			pos := geom.Point{X: left + it.x + it.e.margin.Left, Y: baseline - it.e.margin.Bottom - it.borderH}
			lb.t.Layout(it.box, Input{
				Commit:          true,
				Known:           Known{Width: it.borderW, HasWidth: true},
				Available:       geom.Size{Width: lb.avail, Height: lb.in.Available.Height},
				ContainingBlock: lb.cb,
				Position:        pos,
			})
			it.box.Frame.Margin = it.e.margin
			r := geom.R(pos.X, pos.Y, it.borderW, it.borderH)
			line.Fragments = append(line.Fragments, Fragment{Kind: FragmentAtomic, Box: it.box, Rect: r, Baseline: baseline, First: true, Last: true})
		}
	}
	lb.placeOutOfFlow(top)
	lb.lines = append(lb.lines, line)
	lb.reset(true)
}

func (lb *lineBuilder) placeOutOfFlow(top float64) {
	if !lb.in.Commit {
		return
	}
	for _, it := range lb.items {
		if it.kind == pendingOutOfFlow {
			it.box.staticPos = geom.Point{X: lb.origin.X + it.x, Y: top}
		}
	}
}

// reset starts a new line. Inline boxes still open continue on it.
func (lb *lineBuilder) reset(emitted bool) {
	firsts := make([]bool, len(lb.open))
	for i, ob := range lb.open {
		firsts[i] = lb.items[ob.idx].first && !emitted
	}
	lb.items = lb.items[:0]
	lb.x = 0
	lb.inked = false
	lb.breakable = false
	lb.afterSpace = true
	for i, ob := range lb.open {
		ob.idx = len(lb.items)
		lb.items = append(lb.items, pending{kind: pendingInline, box: ob.box, x: lb.x, e: ob.e, first: firsts[i]})
		if firsts[i] {
			lb.x += ob.leftEdge()
		}
	}
}
