package layout

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vellum/pkg/html"
	"vellum/pkg/logging"
	"vellum/pkg/style"
)

// nonRendered elements never produce boxes, whatever their style says.
var nonRendered = map[string]bool{
	"head":     true,
	"style":    true,
	"script":   true,
	"title":    true,
	"meta":     true,
	"link":     true,
	"base":     true,
	"template": true,
}

type builder struct {
	computer *style.Computer
	logger   *zap.Logger
	warnings []error
}

// Build walks the document depth-first and returns the root box. Elements
// whose style cannot be resolved get an initial style and a warning instead
// of failing the build. The root is nil when nothing renders.
func Build(computer *style.Computer, doc *html.Document, logger *zap.Logger) (*Box, []error) {
	b := &builder{computer: computer, logger: logging.Or(logger).Named("layout")}
	root := doc.DocumentElement()
	if root == nil {
		return nil, nil
	}
	boxes := b.element(root, nil, true)
	if len(boxes) == 0 {
		return nil, b.warnings
	}
	if len(boxes) > 1 {
		// display: contents on the root; wrap what it produced.
		wrapper := &Box{Kind: KindBlock, Style: style.Initial(), Anonymous: true, Children: boxes}
		b.fixup(wrapper)
		return wrapper, b.warnings
	}
	return boxes[0], b.warnings
}

func (b *builder) element(n *html.Node, parent *style.Computed, root bool) []*Box {
	tag := html.TagName(n)
	if nonRendered[tag] {
		return nil
	}
	cs, err := b.computer.Resolve(n, parent)
	if err != nil {
		err = fmt.Errorf("style for <%s>: %w", tag, err)
		b.logger.Warn("Using initial style", zap.Error(err))
		b.warnings = append(b.warnings, err)
		cs = style.Inherit(parent)
	}
	display := cs.Display()
	if display == "none" {
		return nil
	}
	if display == "contents" && !root {
		return b.children(n, cs)
	}

	box := &Box{Style: cs, Tag: tag}
	switch display {
	case "inline":
		box.Kind, box.Level = KindInline, InlineLevel
	case "inline-block":
		box.Kind, box.Level = KindBlock, InlineLevel
	case "flex", "grid":
		box.Kind, box.Level = KindFlex, BlockLevel
	case "inline-flex", "inline-grid":
		box.Kind, box.Level = KindFlex, InlineLevel
	default:
		box.Kind, box.Level = KindBlock, BlockLevel
	}

	switch tag {
	case "img":
		box.Kind = KindReplaced
		box.Image = imageOf(n)
	case "br":
		box.Kind, box.Level, box.LineBreak = KindText, InlineLevel, true
	default:
		box.Children = b.children(n, cs)
	}

	if root || cs.IsOutOfFlow() {
		blockify(box)
	}
	b.fixup(box)
	return []*Box{box}
}

func (b *builder) children(n *html.Node, cs *style.Computed) []*Box {
	var out []*Box
	for _, c := range html.Children(n) {
		switch {
		case html.IsElement(c):
			out = append(out, b.element(c, cs, false)...)
		case html.IsText(c):
			out = append(out, &Box{Kind: KindText, Level: InlineLevel, Style: style.Inherit(cs), Text: c.Data})
		}
	}
	return out
}

func imageOf(n *html.Node) *Image {
	img := &Image{}
	img.Src, _ = html.GetAttribute(n, "src")
	img.Alt, _ = html.GetAttribute(n, "alt")
	img.NaturalWidth = dimensionAttr(n, "width")
	img.NaturalHeight = dimensionAttr(n, "height")
	return img
}

func dimensionAttr(n *html.Node, name string) float64 {
	v, ok := html.GetAttribute(n, name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// blockify turns a box block-level, as happens to the root and to
// absolutely positioned and flex-item boxes.
func blockify(box *Box) {
	box.Level = BlockLevel
	if box.Kind == KindInline {
		box.Kind = KindBlock
	}
}

// fixup restores the box-tree invariants after a box's children are known.
func (b *builder) fixup(box *Box) {
	switch box.Kind {
	case KindInline:
		for _, c := range box.Children {
			if c.Level == BlockLevel && !c.IsOutOfFlow() {
				// Block-in-inline is not split; the inline becomes a block.
				box.Kind, box.Level = KindBlock, BlockLevel
				b.fixup(box)
				return
			}
		}
	case KindBlock:
		if mixedLevels(box.Children) {
			box.Children = wrapInlineRuns(box, box.Children)
		}
	case KindFlex:
		box.Children = flexItems(box, box.Children)
	}
}

func mixedLevels(children []*Box) bool {
	var inline, block bool
	for _, c := range children {
		if c.IsOutOfFlow() {
			continue
		}
		if c.Level == InlineLevel {
			inline = true
		} else {
			block = true
		}
	}
	return inline && block
}

// wrapInlineRuns puts each run of inline-level children into an anonymous
// block. Runs holding only collapsible whitespace are dropped.
func wrapInlineRuns(parent *Box, children []*Box) []*Box {
	var out, run []*Box
	flush := func() {
		if len(run) == 0 {
			return
		}
		if !onlyWhitespace(run) {
			out = append(out, &Box{
				Kind: KindBlock, Level: BlockLevel, Anonymous: true,
				Style: style.Inherit(parent.Style), Children: run,
			})
		} else {
			for _, c := range run {
				if c.IsOutOfFlow() {
					out = append(out, c)
				}
			}
		}
		run = nil
	}
	for _, c := range children {
		if c.Level == InlineLevel || (c.IsOutOfFlow() && len(run) > 0) {
			run = append(run, c)
			continue
		}
		flush()
		out = append(out, c)
	}
	flush()
	return out
}

// flexItems blockifies the in-flow children of a flex container and wraps
// runs of text in anonymous blocks.
func flexItems(parent *Box, children []*Box) []*Box {
	var out, run []*Box
	flush := func() {
		if len(run) > 0 && !onlyWhitespace(run) {
			out = append(out, &Box{
				Kind: KindBlock, Level: BlockLevel, Anonymous: true,
				Style: style.Inherit(parent.Style), Children: run,
			})
		}
		run = nil
	}
	for _, c := range children {
		if c.Kind == KindText {
			run = append(run, c)
			continue
		}
		flush()
		blockify(c)
		out = append(out, c)
	}
	flush()
	return out
}

func onlyWhitespace(run []*Box) bool {
	for _, c := range run {
		if c.IsOutOfFlow() {
			continue
		}
		if c.Kind != KindText || c.LineBreak || !collapsible(c.Style) || strings.TrimSpace(c.Text) != "" {
			return false
		}
	}
	return true
}
