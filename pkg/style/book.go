package style

import (
	"sort"

	"vellum/pkg/css"
)

// Book is the ordered collection of stylesheets that apply to a document.
// User-agent sheets come first, then author sheets in document order, then
// inline sheets; arrival order is kept within an origin.
type Book struct {
	sheets []*css.StyleSheet
}

// NewBook creates a book holding the given sheets.
func NewBook(sheets ...*css.StyleSheet) *Book {
	b := &Book{}
	for _, s := range sheets {
		b.Add(s)
	}
	return b
}

// Add appends a sheet after every sheet of the same or an earlier origin.
func (b *Book) Add(sheet *css.StyleSheet) {
	if sheet == nil {
		return
	}
	i := sort.Search(len(b.sheets), func(i int) bool {
		return b.sheets[i].Origin > sheet.Origin
	})
	b.sheets = append(b.sheets, nil)
	copy(b.sheets[i+1:], b.sheets[i:])
	b.sheets[i] = sheet
}

// Sheets returns the sheets in cascade order. The slice must not be
// modified.
func (b *Book) Sheets() []*css.StyleSheet {
	return b.sheets
}

// Len returns the number of sheets.
func (b *Book) Len() int { return len(b.sheets) }
