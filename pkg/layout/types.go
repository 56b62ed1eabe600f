// Package layout builds the box tree from styled elements and runs
// normal-flow and positioned layout over it.
package layout

import (
	"math"

	"go.uber.org/zap"

	"vellum/pkg/geom"
	"vellum/pkg/logging"
	"vellum/pkg/style"
	"vellum/pkg/text"
)

// Kind is the formatting-context kind of a box.
type Kind int

const (
	// KindBlock is a block container. Its children are either all
	// block-level, or all inline-level and laid out in lines.
	KindBlock Kind = iota
	// KindInline is a non-atomic inline box such as a span.
	KindInline
	// KindFlex is a flex container.
	KindFlex
	// KindText is a leaf text run.
	KindText
	// KindReplaced is a replaced element (an image).
	KindReplaced
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindInline:
		return "inline"
	case KindFlex:
		return "flex"
	case KindText:
		return "text"
	case KindReplaced:
		return "replaced"
	}
	return "unknown"
}

// Level says how a box participates in its parent's formatting context.
type Level int

const (
	BlockLevel Level = iota
	InlineLevel
)

// Image holds what layout knows about a replaced element's resource.
// Natural sizes are zero when unknown.
type Image struct {
	Src           string
	Alt           string
	NaturalWidth  float64
	NaturalHeight float64
}

// Frame is the committed geometry of a box. Rect is the border box in
// document coordinates.
type Frame struct {
	Rect    geom.Rect
	Margin  geom.Edges
	Border  geom.Edges
	Padding geom.Edges
}

// PaddingBox returns the padding box.
func (f Frame) PaddingBox() geom.Rect { return f.Rect.Shrink(f.Border) }

// ContentBox returns the content box.
func (f Frame) ContentBox() geom.Rect { return f.Rect.Shrink(f.Border.Add(f.Padding)) }

// MarginBox returns the margin box.
func (f Frame) MarginBox() geom.Rect { return f.Rect.Grow(f.Margin) }

// FragmentKind classifies line fragments.
type FragmentKind int

const (
	FragmentText FragmentKind = iota
	FragmentInline
	FragmentAtomic
)

// Fragment is the part of an inline-level box placed on one line. For
// inline boxes Rect is the border box slice on that line; for text it is
// the run's advance by its line height.
type Fragment struct {
	Kind     FragmentKind
	Box      *Box
	Rect     geom.Rect
	Text     string
	Baseline float64
	// First and Last report whether an inline box starts or ends on this
	// line, which decides whether its left and right edges paint here.
	First bool
	Last  bool
}

// Line is a line box.
type Line struct {
	Rect      geom.Rect
	Baseline  float64
	Fragments []Fragment
}

// Box is a node of the box tree. Each box owns its children; there are no
// parent pointers and no references back into the document.
type Box struct {
	Kind      Kind
	Level     Level
	Style     *style.Computed
	Tag       string
	Anonymous bool

	// Text is the raw content of a text run.
	Text string
	// LineBreak marks a forced break (a br element).
	LineBreak bool
	Image     *Image

	Children []*Box

	Frame Frame
	// Lines holds the line boxes of a block container with inline content.
	Lines []Line

	staticPos geom.Point
}

// IsOutOfFlow reports whether the box is absolutely or fixed positioned.
func (b *Box) IsOutOfFlow() bool {
	return b.Style != nil && b.Style.IsOutOfFlow()
}

// HasInlineContent reports whether a block container lays its children out
// in lines.
func (b *Box) HasInlineContent() bool {
	if b.Kind != KindBlock {
		return false
	}
	for _, c := range b.Children {
		if !c.IsOutOfFlow() {
			return c.Level == InlineLevel
		}
	}
	return false
}

// Walk visits b and its descendants depth-first.
func (b *Box) Walk(visit func(*Box) bool) {
	if !visit(b) {
		return
	}
	for _, c := range b.Children {
		c.Walk(visit)
	}
}

// Viewport is the sizing context of a layout call. Large is the large
// viewport size; zero means it equals Small.
type Viewport struct {
	Small geom.Size
	Large geom.Size
}

// LargeSize returns the large viewport, falling back to the small one.
func (v Viewport) LargeSize() geom.Size {
	l := v.Large
	if l.Width == 0 {
		l.Width = v.Small.Width
	}
	if l.Height == 0 {
		l.Height = v.Small.Height
	}
	return l
}

// Tree carries what layout needs besides the boxes themselves.
type Tree struct {
	Root     *Box
	Viewport Viewport
	Measurer text.Measurer
	Logger   *zap.Logger
}

// NewTree creates a tree. A nil measurer uses text.FixedMeasurer and a nil
// logger the global one.
func NewTree(root *Box, vp Viewport, m text.Measurer, logger *zap.Logger) *Tree {
	if m == nil {
		m = text.FixedMeasurer{}
	}
	return &Tree{Root: root, Viewport: vp, Measurer: m, Logger: logging.Or(logger).Named("layout")}
}

// Sizing selects how a box sizes itself when its width is not imposed.
type Sizing int

const (
	// SizeStretch fills the available width.
	SizeStretch Sizing = iota
	// SizeMinContent shrinks to the narrowest width without overflow.
	SizeMinContent
	// SizeMaxContent grows to the width the content needs without breaks.
	SizeMaxContent
)

// Known holds sizes imposed by the parent, for the border box.
type Known struct {
	Width     float64
	Height    float64
	HasWidth  bool
	HasHeight bool
}

// ContainingBlock is the reference rectangle size for percentages.
type ContainingBlock struct {
	Width     float64
	Height    float64
	HasHeight bool
}

// Input is the constraint set of one layout call. In measure mode
// (Commit false) nothing is written into the tree.
type Input struct {
	Commit          bool
	Known           Known
	Available       geom.Size
	ContainingBlock ContainingBlock
	// Position is the border-box origin chosen by the parent.
	Position geom.Point
	Sizing   Sizing
}

// WithWidth returns a copy of in with a known border-box width.
func (in Input) WithWidth(w float64) Input {
	in.Known.Width, in.Known.HasWidth = w, true
	return in
}

// WithHeight returns a copy of in with a known border-box height.
func (in Input) WithHeight(h float64) Input {
	in.Known.Height, in.Known.HasHeight = h, true
	return in
}

// Measuring returns a copy of in for a measure pass.
func (in Input) Measuring(s Sizing) Input {
	in.Commit = false
	in.Sizing = s
	in.Known = Known{}
	return in
}

// Output is the result of a layout call.
type Output struct {
	// Size is the border-box size.
	Size geom.Size
	// Baseline is the first baseline, relative to the border-box top; zero
	// when the box has none.
	Baseline float64
}

var unbounded = math.Inf(1)
