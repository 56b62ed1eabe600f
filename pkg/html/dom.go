// Package html adapts golang.org/x/net/html parse trees into the read-only
// document source the render pipeline consumes. The pipeline never mutates
// a Document.
package html

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Node is a node of the parsed document tree.
type Node = xhtml.Node

// Node kinds the pipeline distinguishes.
const (
	ElementNode  = xhtml.ElementNode
	TextNode     = xhtml.TextNode
	DocumentNode = xhtml.DocumentNode
)

// Document is a parsed HTML document plus the URL relative references in it
// resolve against.
type Document struct {
	Root    *Node
	BaseURL string
}

// Parse parses an HTML document from r.
func Parse(r io.Reader, baseURL string) (*Document, error) {
	root, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	doc := &Document{Root: root, BaseURL: baseURL}
	if href, ok := doc.baseElementHref(); ok {
		doc.BaseURL = href
	}
	return doc, nil
}

// ParseString parses an in-memory HTML document with no base URL.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s), "")
}

// ParseFile reads and parses the file at path. The base URL is the file's
// directory so that relative stylesheet links resolve next to it.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Parse(bytes.NewReader(data), "file://"+filepath.ToSlash(abs))
}

// DocumentElement returns the root element (normally <html>), or nil.
func (d *Document) DocumentElement() *Node {
	if d == nil || d.Root == nil {
		return nil
	}
	if d.Root.Type == ElementNode {
		return d.Root
	}
	for c := d.Root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

func (d *Document) baseElementHref() (string, bool) {
	var href string
	var found bool
	Walk(d.Root, func(n *Node) bool {
		if found {
			return false
		}
		if IsElement(n) && TagName(n) == "base" {
			href, found = GetAttribute(n, "href")
			return false
		}
		return true
	})
	return href, found && href != ""
}

// IsElement reports whether n is an element node.
func IsElement(n *Node) bool {
	return n != nil && n.Type == ElementNode
}

// IsText reports whether n is a text node.
func IsText(n *Node) bool {
	return n != nil && n.Type == TextNode
}

// TagName returns the lower-cased tag name of an element, "" otherwise.
func TagName(n *Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// GetAttribute looks up an attribute by (case-insensitive) name.
func GetAttribute(n *Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// Children returns the ordered child nodes of n.
func Children(n *Node) []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// TextContent concatenates all descendant text of n.
func TextContent(n *Node) string {
	if n == nil {
		return ""
	}
	if n.Type == TextNode {
		return n.Data
	}
	var sb strings.Builder
	Walk(n, func(c *Node) bool {
		if c.Type == TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from visit skips the node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// FindElement returns the first element with the given id, or nil.
func FindElement(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if v, ok := GetAttribute(n, "id"); ok && v == id && IsElement(n) {
			found = n
			return false
		}
		return true
	})
	return found
}
