package layout

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// Dump renders the box tree rooted at b with its committed geometry.
func Dump(b *Box) string {
	if b == nil {
		return ""
	}
	tree := treeprint.New()
	tree.SetValue(describeBox(b))
	dumpChildren(tree, b)
	return tree.String()
}

func dumpChildren(tree treeprint.Tree, b *Box) {
	for _, c := range b.Children {
		if len(c.Children) == 0 {
			tree.AddNode(describeBox(c))
			continue
		}
		dumpChildren(tree.AddBranch(describeBox(c)), c)
	}
}

func describeBox(b *Box) string {
	var sb strings.Builder
	sb.WriteString(b.Kind.String())
	switch {
	case b.Anonymous:
		sb.WriteString(" (anonymous)")
	case b.Tag != "":
		fmt.Fprintf(&sb, " <%s>", b.Tag)
	}
	if b.Kind == KindText {
		if b.LineBreak {
			sb.WriteString(" br")
		} else {
			fmt.Fprintf(&sb, " %q", b.Text)
		}
	}
	r := b.Frame.Rect
	fmt.Fprintf(&sb, " [%g,%g %gx%g]", r.X, r.Y, r.Width, r.Height)
	if n := len(b.Lines); n > 0 {
		fmt.Fprintf(&sb, " lines=%d", n)
	}
	return sb.String()
}
