package layout

import (
	"vellum/pkg/css"
	"vellum/pkg/geom"
	"vellum/pkg/scene"
	"vellum/pkg/style"
)

// Paint appends the scene nodes of the committed subtree b to stack.
// Positioned boxes and boxes with opacity below one get a stack of their
// own, ordered by z-index.
func Paint(b *Box, stack *scene.Stack) {
	if b == nil || b.Kind == KindText {
		return
	}
	s := b.Style
	target := stack
	if entry, group, ok := stackFor(s); ok {
		stack.AddEntry(entry)
		target = group
	}

	visible := s.Keyword(css.PropVisibility) == "visible"
	if visible {
		if bg := boxDrawable(s, b.Frame.Rect, true, true); bg != nil {
			target.Add(bg)
		}
		if b.Kind == KindReplaced && b.Image != nil {
			target.Add(&scene.Image{Rect: b.Frame.ContentBox(), Src: b.Image.Src, Alt: b.Image.Alt})
		}
	}

	content := target
	switch s.Keyword(css.PropOverflow) {
	case "hidden", "clip", "scroll", "auto":
		clip := &scene.Clip{Rect: b.Frame.PaddingBox(), Content: scene.NewStack()}
		target.Add(clip)
		content = clip.Content
	}

	if b.HasInlineContent() {
		paintLines(b, content)
		return
	}
	for _, c := range b.Children {
		Paint(c, content)
	}
}

// stackFor returns a stack for a box that paints as a group: positioned
// boxes, layered by z-index, and boxes with opacity below one.
func stackFor(s *style.Computed) (scene.Entry, *scene.Stack, bool) {
	opacity := s.Number(css.PropOpacity)
	if !s.IsPositioned() && opacity >= 1 {
		return scene.Entry{}, nil, false
	}
	group := scene.NewStack()
	group.Opacity = opacity
	entry := scene.Entry{Node: group}
	if s.IsPositioned() {
		entry.Layer = scene.LayerPositioned
		if z, ok := s.ZIndex(); ok {
			entry.Z = z
		}
	}
	return entry, group, true
}

// inlineGroups routes the fragments of an inline formatting context into
// the stacks of the positioned or translucent inline boxes they belong to.
// Stacks are created on the first fragment, so they keep paint order.
type inlineGroups struct {
	root   *scene.Stack
	parent map[*Box]*Box
	groups map[*Box]*scene.Stack
}

func newInlineGroups(b *Box, root *scene.Stack) *inlineGroups {
	g := &inlineGroups{root: root, parent: map[*Box]*Box{}, groups: map[*Box]*scene.Stack{}}
	var walk func(parent *Box, children []*Box)
	walk = func(parent *Box, children []*Box) {
		for _, c := range children {
			g.parent[c] = parent
			if c.Kind == KindInline {
				walk(c, c.Children)
			}
		}
	}
	walk(nil, b.Children)
	return g
}

// target returns the stack that fragments of b paint into.
func (g *inlineGroups) target(b *Box) *scene.Stack {
	for box := g.parent[b]; box != nil; box = g.parent[box] {
		if st := g.group(box); st != nil {
			return st
		}
	}
	return g.root
}

// group returns the stack of the inline box b, or nil when b paints in
// its parent's stack.
func (g *inlineGroups) group(b *Box) *scene.Stack {
	if st, ok := g.groups[b]; ok {
		return st
	}
	entry, st, ok := stackFor(b.Style)
	if !ok {
		g.groups[b] = nil
		return nil
	}
	g.target(b).AddEntry(entry)
	g.groups[b] = st
	return st
}

func paintLines(b *Box, root *scene.Stack) {
	groups := newInlineGroups(b, root)
	for _, l := range b.Lines {
		for _, f := range l.Fragments {
			s := f.Box.Style
			stack := groups.target(f.Box)
			if f.Kind == FragmentInline {
				if st := groups.group(f.Box); st != nil {
					stack = st
				}
			}
			visible := s.Keyword(css.PropVisibility) == "visible"
			switch f.Kind {
			case FragmentInline:
				if !visible {
					continue
				}
				if bg := boxDrawable(s, f.Rect, f.First, f.Last); bg != nil {
					stack.Add(bg)
				}
			case FragmentText:
				if !visible {
					continue
				}
				stack.Add(&scene.Text{
					Origin: geom.Point{X: f.Rect.X, Y: f.Baseline},
					Rect:   f.Rect,
					Text:   f.Text,
					Font: scene.Font{
						Families: s.FontFamilies(),
						Size:     s.FontSize(),
						Bold:     s.Bold(),
						Italic:   s.Keyword(css.PropFontStyle) != "normal",
					},
					Color: s.Color(css.PropColor),
				})
			case FragmentAtomic:
				Paint(f.Box, stack)
			}
		}
	}
	paintOutOfFlow(b.Children, root)
}

// paintOutOfFlow paints positioned boxes nested in inline content, which
// have no line fragment.
func paintOutOfFlow(children []*Box, stack *scene.Stack) {
	for _, c := range children {
		switch {
		case c.IsOutOfFlow():
			Paint(c, stack)
		case c.Kind == KindInline:
			paintOutOfFlow(c.Children, stack)
		}
	}
}

// boxDrawable returns the background and borders of a border box, or nil
// when nothing would paint. first and last select the left and right
// borders of an inline box split across lines.
func boxDrawable(s *style.Computed, r geom.Rect, first, last bool) *scene.Box {
	d := &scene.Box{Rect: r, Background: s.Color(css.PropBackgroundColor)}
	widths := s.BorderWidths()
	for i := range d.Borders {
		d.Borders[i] = scene.BorderSide{
			Width: widths[i],
			Style: s.Keyword(css.BorderStyleProps[i]),
			Color: s.Color(css.BorderColorProps[i]),
		}
	}
	if !first {
		d.Borders[3] = scene.BorderSide{}
	}
	if !last {
		d.Borders[1] = scene.BorderSide{}
	}
	painted := d.Background.A > 0
	for _, side := range d.Borders {
		painted = painted || side.Visible()
	}
	if !painted || r.Empty() {
		return nil
	}
	return d
}
