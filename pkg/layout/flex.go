package layout

import (
	"math"
	"strings"

	"vellum/pkg/css"
	"vellum/pkg/geom"
)

type flexItem struct {
	box       *Box
	container *Box
	e         edges

	base, hypo, target float64
	minMain, maxMain   float64
	grow, shrink       float64
	frozen             bool

	cross float64
}

// Main and cross axis margins of the item.
func (it *flexItem) mainMargins(row bool) (start, end float64) {
	if row {
		return it.e.margin.Left, it.e.margin.Right
	}
	return it.e.margin.Top, it.e.margin.Bottom
}

func (it *flexItem) crossMargins(row bool) (start, end float64) {
	if row {
		return it.e.margin.Top, it.e.margin.Bottom
	}
	return it.e.margin.Left, it.e.margin.Right
}

func (it *flexItem) outerMain(row bool) float64 {
	s, e := it.mainMargins(row)
	return it.target + s + e
}

// isRow reports the main axis. Grid containers lay out as a single column.
func isRow(b *Box) bool {
	if d := b.Style.Display(); d == "grid" || d == "inline-grid" {
		return false
	}
	return strings.HasPrefix(b.Style.Keyword(css.PropFlexDirection), "row")
}

func isReverse(b *Box) bool {
	if d := b.Style.Display(); d == "grid" || d == "inline-grid" {
		return false
	}
	return strings.HasSuffix(b.Style.Keyword(css.PropFlexDirection), "-reverse")
}

// layoutFlex lays out a single-line flex container.
func (t *Tree) layoutFlex(b *Box, in Input) Output {
	s := b.Style
	row := isRow(b)
	e := t.boxEdges(b, in.ContainingBlock.Width)

	var width float64
	switch {
	case in.Known.HasWidth:
		width = in.Known.Width
	case in.Sizing != SizeStretch:
		width = t.flexIntrinsicWidth(b, e, in)
	default:
		width, _, _ = blockWidth(b, e, in.ContainingBlock.Width)
	}
	contentW := math.Max(0, width-e.extraH())
	origin := in.Position.Add(geom.Point{X: e.border.Left + e.padding.Left, Y: e.border.Top + e.padding.Top})

	ch, definiteH := specifiedSize(s, css.PropHeight, in.ContainingBlock.Height, in.ContainingBlock.HasHeight, e.extraV())
	if in.Known.HasHeight {
		ch, definiteH = math.Max(0, in.Known.Height-e.extraV()), true
	} else if definiteH {
		ch = clampHeight(s, ch, in.ContainingBlock, e.extraV())
	}
	cb := ContainingBlock{Width: contentW, Height: ch, HasHeight: definiteH}
	itemIn := Input{Available: geom.Size{Width: contentW, Height: in.Available.Height}, ContainingBlock: cb}

	var items []*flexItem
	for _, c := range b.Children {
		if c.IsOutOfFlow() {
			if in.Commit {
				c.staticPos = origin
			}
			continue
		}
		it := &flexItem{box: c, container: b, e: t.boxEdges(c, contentW)}
		it.grow = c.Style.Number(css.PropFlexGrow)
		it.shrink = c.Style.Number(css.PropFlexShrink)
		t.flexBaseSize(it, row, itemIn)
		items = append(items, it)
	}

	gapProp, gapBase := css.PropColumnGap, contentW
	if !row {
		gapProp, gapBase = css.PropRowGap, ch
		if !definiteH {
			gapBase = 0
		}
	}
	gap := resolvePct(s.Length(gapProp), gapBase)
	gaps := 0.0
	if len(items) > 1 {
		gaps = gap * float64(len(items)-1)
	}

	mainSize, definiteMain := contentW, true
	if !row {
		mainSize, definiteMain = ch, definiteH
	}
	if !definiteMain {
		sum := gaps
		for _, it := range items {
			it.target = it.hypo
			sum += it.outerMain(row)
		}
		mainSize = clampHeight(s, sum, in.ContainingBlock, e.extraV())
		definiteMain = mainSize != sum
	}
	if definiteMain {
		resolveFlexible(items, mainSize-gaps, row)
	}

	// Cross sizes.
	crossSize, definiteCross := ch, definiteH
	if !row {
		crossSize, definiteCross = contentW, true
	}
	maxCross := 0.0
	for _, it := range items {
		it.cross = t.flexHypotheticalCross(it, row, itemIn)
		cs, ce := it.crossMargins(row)
		maxCross = math.Max(maxCross, it.cross+cs+ce)
	}
	if !definiteCross {
		crossSize = clampHeight(s, maxCross, in.ContainingBlock, e.extraV())
	}
	for _, it := range items {
		if flexAlign(b, it.box) == "stretch" && !crossSpecified(it, row, cb) && !autoCrossMargin(it, row) {
			cs, ce := it.crossMargins(row)
			it.cross = math.Max(0, crossSize-cs-ce)
			if row {
				it.cross = clampHeight(it.box.Style, it.cross-it.e.extraV(), cb, it.e.extraV()) + it.e.extraV()
			} else {
				it.cross = clampWidth(it.box.Style, it.cross-it.e.extraH(), contentW, it.e.extraH()) + it.e.extraH()
			}
		}
	}

	contentH := crossSize
	if !row {
		contentH = mainSize
	}

	if in.Commit {
		t.placeFlexItems(b, items, origin, mainSize, crossSize, gap, row, itemIn)
	}

	height := contentH + e.extraV()
	if in.Known.HasHeight {
		height = in.Known.Height
	}
	if in.Commit {
		b.Lines = nil
		b.Frame = Frame{
			Rect:    geom.R(in.Position.X, in.Position.Y, width, height),
			Margin:  e.margin,
			Border:  e.border,
			Padding: e.padding,
		}
	}
	return Output{Size: geom.Size{Width: width, Height: height}}
}

// flexBaseSize sets the flex base size, the min/max main limits and the
// hypothetical main size of an item, all as border-box sizes.
func (t *Tree) flexBaseSize(it *flexItem, row bool, in Input) {
	s := it.box.Style
	cb := in.ContainingBlock
	mainProp, minProp, maxProp := css.PropWidth, css.PropMinWidth, css.PropMaxWidth
	base, hasBase, extra := cb.Width, true, it.e.extraH()
	if !row {
		mainProp, minProp, maxProp = css.PropHeight, css.PropMinHeight, css.PropMaxHeight
		base, hasBase, extra = cb.Height, cb.HasHeight, it.e.extraV()
	}

	basis := s.Length(css.PropFlexBasis)
	content := s.Keyword(css.PropFlexBasis) == "content"
	switch {
	case !content && basis.Definite(hasBase):
		v := resolvePct(basis, base)
		if borderBox(s) {
			v -= extra
		}
		it.base = math.Max(0, v) + extra
	default:
		if v, ok := specifiedSize(s, mainProp, base, hasBase, extra); ok && !content {
			it.base = v + extra
			break
		}
		switch {
		case it.box.Kind == KindReplaced:
			w, h := t.replacedSize(it.box, it.e, cb)
			if row {
				it.base = w + extra
			} else {
				it.base = h + extra
			}
		case row:
			it.base = t.Layout(it.box, in.Measuring(SizeMaxContent)).Size.Width
		default:
			w := t.flexCrossWidth(it, in)
			it.base = t.Layout(it.box, in.WithWidth(w)).Size.Height
		}
	}

	it.minMain = extra
	if v, ok := specifiedSize(s, minProp, base, hasBase, extra); ok {
		it.minMain = v + extra
	}
	it.maxMain = math.Inf(1)
	if v, ok := specifiedSize(s, maxProp, base, hasBase, extra); ok {
		it.maxMain = v + extra
	}
	it.hypo = clamp(it.base, it.minMain, it.maxMain)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// resolveFlexible distributes free space among items by their grow or
// shrink factors, freezing items that hit their limits.
func resolveFlexible(items []*flexItem, space float64, row bool) {
	used := 0.0
	for _, it := range items {
		s, e := it.mainMargins(row)
		used += it.hypo + s + e
		it.frozen = false
		it.target = it.hypo
	}
	growing := used < space
	for _, it := range items {
		factor := it.shrink
		if growing {
			factor = it.grow
		}
		if factor == 0 || (growing && it.base > it.hypo) || (!growing && it.base < it.hypo) {
			it.frozen = true
		}
	}

	for {
		var unfrozen []*flexItem
		free := space
		for _, it := range items {
			s, e := it.mainMargins(row)
			if it.frozen {
				free -= it.target + s + e
			} else {
				free -= it.base + s + e
				unfrozen = append(unfrozen, it)
			}
		}
		if len(unfrozen) == 0 {
			return
		}

		var total float64
		for _, it := range unfrozen {
			if growing {
				total += it.grow
			} else {
				total += it.shrink * it.base
			}
		}
		violation := 0.0
		for _, it := range unfrozen {
			target := it.base
			if total > 0 {
				if growing {
					target += free * it.grow / total
				} else {
					target += free * it.shrink * it.base / total
				}
			}
			it.target = clamp(target, it.minMain, it.maxMain)
			violation += it.target - target
		}
		for _, it := range unfrozen {
			switch {
			case violation == 0:
				it.frozen = true
			case violation > 0 && it.target == it.minMain:
				it.frozen = true
			case violation < 0 && it.target == it.maxMain:
				it.frozen = true
			}
		}
	}
}

// flexCrossWidth is the border-box width of an item in a column container.
func (t *Tree) flexCrossWidth(it *flexItem, in Input) float64 {
	cb := in.ContainingBlock
	s := it.box.Style
	extra := it.e.extraH()
	if w, ok := specifiedSize(s, css.PropWidth, cb.Width, true, extra); ok {
		return clampWidth(s, w, cb.Width, extra) + extra
	}
	avail := math.Max(0, cb.Width-it.e.margin.Horizontal())
	if it.box.Kind == KindReplaced {
		w, _ := t.replacedSize(it.box, it.e, cb)
		return w + extra
	}
	if flexAlign(it.container, it.box) == "stretch" && !autoCrossMargin(it, false) {
		return avail
	}
	return t.shrinkToFit(it.box, in, avail)
}

// flexHypotheticalCross is the border-box cross size of an item laid out at
// its target main size.
func (t *Tree) flexHypotheticalCross(it *flexItem, row bool, in Input) float64 {
	if row {
		if it.box.Kind == KindReplaced {
			_, h := t.replacedSize(it.box, it.e, in.ContainingBlock)
			return h + it.e.extraV()
		}
		return t.Layout(it.box, in.WithWidth(it.target)).Size.Height
	}
	return t.flexCrossWidth(it, in)
}

// flexAlign is the used align-self of an item.
func flexAlign(container, item *Box) string {
	a := item.Style.Keyword(css.PropAlignSelf)
	if a == "auto" {
		a = container.Style.Keyword(css.PropAlignItems)
	}
	if a == "normal" {
		a = "stretch"
	}
	return a
}

func crossSpecified(it *flexItem, row bool, cb ContainingBlock) bool {
	if row {
		_, ok := specifiedSize(it.box.Style, css.PropHeight, cb.Height, cb.HasHeight, 0)
		return ok || it.box.Kind == KindReplaced
	}
	_, ok := specifiedSize(it.box.Style, css.PropWidth, cb.Width, true, 0)
	return ok || it.box.Kind == KindReplaced
}

func autoCrossMargin(it *flexItem, row bool) bool {
	if row {
		return it.e.autoMargin[0] || it.e.autoMargin[2]
	}
	return it.e.autoMargin[1] || it.e.autoMargin[3]
}

func (t *Tree) placeFlexItems(b *Box, items []*flexItem, origin geom.Point, mainSize, crossSize, gap float64, row bool, in Input) {
	used := 0.0
	autoMargins := 0
	for i, it := range items {
		used += it.outerMain(row)
		if i > 0 {
			used += gap
		}
		if row {
			autoMargins += boolInt(it.e.autoMargin[3]) + boolInt(it.e.autoMargin[1])
		} else {
			autoMargins += boolInt(it.e.autoMargin[0]) + boolInt(it.e.autoMargin[2])
		}
	}
	free := mainSize - used

	lead, between := 0.0, gap
	perAuto := 0.0
	if autoMargins > 0 && free > 0 {
		perAuto = free / float64(autoMargins)
	} else {
		n := float64(len(items))
		switch b.Style.Keyword(css.PropJustifyContent) {
		case "flex-end", "end", "right":
			lead = free
		case "center":
			lead = free / 2
		case "space-between":
			if len(items) > 1 && free > 0 {
				between += free / (n - 1)
			}
		case "space-around":
			if free > 0 {
				between += free / n
				lead = free / n / 2
			}
		case "space-evenly":
			if free > 0 {
				between += free / (n + 1)
				lead = free / (n + 1)
			}
		}
	}

	reverse := isReverse(b)
	pos := lead
	for _, it := range items {
		ms, me := it.mainMargins(row)
		if row {
			ms += perAuto * float64(boolInt(it.e.autoMargin[3]))
			me += perAuto * float64(boolInt(it.e.autoMargin[1]))
		} else {
			ms += perAuto * float64(boolInt(it.e.autoMargin[0]))
			me += perAuto * float64(boolInt(it.e.autoMargin[2]))
		}
		main := pos + ms
		if reverse {
			main = mainSize - main - it.target
		}
		pos += ms + it.target + me + between

		cs, ce := it.crossMargins(row)
		cross := cs
		freeCross := crossSize - it.cross - cs - ce
		switch {
		case autoCrossMargin(it, row):
			startAuto, endAuto := it.e.autoMargin[0], it.e.autoMargin[2]
			if !row {
				startAuto, endAuto = it.e.autoMargin[3], it.e.autoMargin[1]
			}
			switch {
			case startAuto && endAuto:
				cross += math.Max(0, freeCross) / 2
			case startAuto:
				cross += math.Max(0, freeCross)
			}
		default:
			switch flexAlign(b, it.box) {
			case "flex-end", "end":
				cross += freeCross
			case "center":
				cross += freeCross / 2
			}
		}

		var p geom.Point
		known := Known{HasWidth: true, HasHeight: true}
		if row {
			p = geom.Point{X: origin.X + main, Y: origin.Y + cross}
			known.Width, known.Height = it.target, it.cross
		} else {
			p = geom.Point{X: origin.X + cross, Y: origin.Y + main}
			known.Width, known.Height = it.cross, it.target
		}
		t.Layout(it.box, Input{
			Commit:          true,
			Known:           known,
			Available:       in.Available,
			ContainingBlock: in.ContainingBlock,
			Position:        p,
		})
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// flexIntrinsicWidth is the min- or max-content border-box width of a flex
// container.
func (t *Tree) flexIntrinsicWidth(b *Box, e edges, in Input) float64 {
	extra := e.extraH()
	if w, ok := specifiedSize(b.Style, css.PropWidth, in.ContainingBlock.Width, true, extra); ok {
		return clampWidth(b.Style, w, in.ContainingBlock.Width, extra) + extra
	}
	row := isRow(b)
	content := 0.0
	n := 0
	for _, c := range b.Children {
		if c.IsOutOfFlow() {
			continue
		}
		ce := t.boxEdges(c, unbounded)
		w := t.Layout(c, in.Measuring(in.Sizing)).Size.Width + ce.margin.Horizontal()
		if row {
			content += w
		} else {
			content = math.Max(content, w)
		}
		n++
	}
	if row && n > 1 {
		content += resolvePct(b.Style.Length(css.PropColumnGap), unbounded) * float64(n-1)
	}
	return clampWidth(b.Style, content, in.ContainingBlock.Width, extra) + extra
}
