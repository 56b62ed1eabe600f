package style

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vellum/pkg/css"
)

func TestBookOrdersByOrigin(t *testing.T) {
	a1 := css.ParseStylesheetFrom("a1", "", css.OriginAuthor)
	a2 := css.ParseStylesheetFrom("a2", "", css.OriginAuthor)
	ua := css.ParseStylesheetFrom("ua", "", css.OriginUserAgent)
	in := css.ParseStylesheetFrom("in", "", css.OriginInline)

	b := NewBook()
	b.Add(a1)
	b.Add(in)
	b.Add(ua)
	b.Add(a2)
	b.Add(nil)

	var got []string
	for _, s := range b.Sheets() {
		got = append(got, s.Href)
	}
	assert.Equal(t, []string{"ua", "a1", "a2", "in"}, got)
	assert.Equal(t, 4, b.Len())
}
