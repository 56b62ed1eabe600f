package html

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString_DocumentElement(t *testing.T) {
	doc, err := ParseString(`<div id="parent"><span>hello</span><p>world</p></div>`)
	require.NoError(t, err)

	root := doc.DocumentElement()
	require.NotNil(t, root)
	assert.Equal(t, "html", TagName(root))

	div := FindElement(doc.Root, "parent")
	require.NotNil(t, div)
	assert.Equal(t, "div", TagName(div))
	kids := Children(div)
	require.Len(t, kids, 2)
	assert.Equal(t, "span", TagName(kids[0]))
	assert.Equal(t, "helloworld", TextContent(div))
}

func TestGetAttribute_CaseInsensitive(t *testing.T) {
	doc, err := ParseString(`<p ID="x" Class="a b">t</p>`)
	require.NoError(t, err)
	p := FindElement(doc.Root, "x")
	require.NotNil(t, p)

	v, ok := GetAttribute(p, "class")
	assert.True(t, ok)
	assert.Equal(t, "a b", v)

	_, ok = GetAttribute(p, "style")
	assert.False(t, ok)
}

func TestParse_BaseElement(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<head><base href="https://example.com/dir/"></head><body></body>`), "https://other.org/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/dir/", doc.BaseURL)
}

func TestParseFile_BaseURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<p>hi</p>`), 0o644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.BaseURL, "file://"))
	assert.True(t, strings.HasSuffix(doc.BaseURL, "page.html"))
}

func TestWalk_SkipChildren(t *testing.T) {
	doc, err := ParseString(`<div><style>p{}</style><p>a</p></div>`)
	require.NoError(t, err)

	var tags []string
	Walk(doc.Root, func(n *Node) bool {
		if IsElement(n) {
			tags = append(tags, TagName(n))
		}
		return TagName(n) != "head"
	})
	assert.Equal(t, []string{"html", "head", "body", "div", "style", "p"}, tags)
}
