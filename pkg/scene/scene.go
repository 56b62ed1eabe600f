// Package scene is the retained paint tree handed to rasterizers. Nodes
// are built by the paint pass, then Prepare is called once on the root
// before the tree is drawn.
package scene

import (
	"image/color"
	"sort"

	"vellum/pkg/geom"
)

// Node is a paintable scene node.
type Node interface {
	// Bounds returns the area the node may paint. For stacks it is only
	// valid after Prepare.
	Bounds() geom.Rect
	prepare()
}

// Layer orders entries of a stack that share a z-index.
type Layer int

const (
	// LayerFlow holds in-flow, non-positioned content.
	LayerFlow Layer = iota
	// LayerPositioned holds positioned content with z-index auto or 0.
	LayerPositioned
)

// Entry is a child of a Stack with its paint-order key.
type Entry struct {
	Node  Node
	Z     int
	Layer Layer
}

// bucket implements the stacking order: negative z-index first, then
// in-flow content, then positioned content at z-index 0, then positive
// z-index.
func (e Entry) bucket() int {
	switch {
	case e.Z < 0:
		return 0
	case e.Z > 0:
		return 3
	case e.Layer == LayerPositioned:
		return 2
	}
	return 1
}

// Stack is a stacking container. Opacity applies to the composited group.
type Stack struct {
	Entries []Entry
	Opacity float64

	prepared bool
	bounds   geom.Rect
}

// NewStack returns an empty, fully opaque stack.
func NewStack() *Stack {
	return &Stack{Opacity: 1}
}

// Add appends a node in the flow layer.
func (s *Stack) Add(n Node) {
	s.AddEntry(Entry{Node: n})
}

// AddEntry appends a node with an explicit paint-order key. It panics once
// the stack is prepared.
func (s *Stack) AddEntry(e Entry) {
	if s.prepared {
		panic("scene: Add after Prepare")
	}
	s.Entries = append(s.Entries, e)
}

// Prepare sorts entries into paint order and caches bounds, recursively.
// It must be called exactly once, after the tree is complete.
func (s *Stack) Prepare() {
	if s.prepared {
		panic("scene: Prepare called twice")
	}
	s.prepare()
}

func (s *Stack) prepare() {
	s.prepared = true
	sort.SliceStable(s.Entries, func(i, j int) bool {
		a, b := s.Entries[i], s.Entries[j]
		if a.bucket() != b.bucket() {
			return a.bucket() < b.bucket()
		}
		return a.Z < b.Z
	})
	var bounds geom.Rect
	for _, e := range s.Entries {
		e.Node.prepare()
		bounds = bounds.Union(e.Node.Bounds())
	}
	s.bounds = bounds
}

// Prepared reports whether Prepare has run.
func (s *Stack) Prepared() bool { return s.prepared }

func (s *Stack) Bounds() geom.Rect { return s.bounds }

// Children returns the nodes in paint order (after Prepare).
func (s *Stack) Children() []Node {
	out := make([]Node, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Node
	}
	return out
}

// Page is the root of one printed page, sized to the media box. Content is
// clipped to the page.
type Page struct {
	Stack
	Size geom.Size
}

// NewPage creates an empty page.
func NewPage(size geom.Size) *Page {
	return &Page{Stack: Stack{Opacity: 1}, Size: size}
}

func (p *Page) Bounds() geom.Rect {
	return geom.R(0, 0, p.Size.Width, p.Size.Height)
}

// Clip restricts its content to Rect.
type Clip struct {
	Rect    geom.Rect
	Content *Stack
}

func (c *Clip) Bounds() geom.Rect { return c.Rect.Intersect(c.Content.Bounds()) }
func (c *Clip) prepare()          { c.Content.prepare() }

// BorderSide is one edge of a border.
type BorderSide struct {
	Width float64
	Style string
	Color color.RGBA
}

// Visible reports whether the side paints anything.
func (b BorderSide) Visible() bool {
	return b.Width > 0 && b.Color.A > 0 && b.Style != "none" && b.Style != "hidden"
}

// Box paints a background and borders. Rect is the border box.
type Box struct {
	Rect       geom.Rect
	Background color.RGBA
	// Borders in top, right, bottom, left order.
	Borders [4]BorderSide
}

func (b *Box) Bounds() geom.Rect { return b.Rect }
func (b *Box) prepare()          {}

// Font describes the face of a text run.
type Font struct {
	Families []string
	Size     float64
	Bold     bool
	Italic   bool
}

// Text is a run of text. Origin is the start of the baseline; Rect is the
// line-box slice the run occupies.
type Text struct {
	Origin geom.Point
	Rect   geom.Rect
	Text   string
	Font   Font
	Color  color.RGBA
}

func (t *Text) Bounds() geom.Rect { return t.Rect }
func (t *Text) prepare()          {}

// Image draws an image resource scaled into Rect (the content box).
type Image struct {
	Rect geom.Rect
	Src  string
	Alt  string
}

func (i *Image) Bounds() geom.Rect { return i.Rect }
func (i *Image) prepare()          {}

// Walk visits n and its descendants depth-first in paint order. Returning
// false skips a node's children.
func Walk(n Node, visit func(Node) bool) {
	if !visit(n) {
		return
	}
	switch v := n.(type) {
	case *Stack:
		for _, e := range v.Entries {
			Walk(e.Node, visit)
		}
	case *Page:
		for _, e := range v.Entries {
			Walk(e.Node, visit)
		}
	case *Clip:
		Walk(v.Content, visit)
	}
}
