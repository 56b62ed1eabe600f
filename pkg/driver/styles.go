package driver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"vellum/pkg/css"
	"vellum/pkg/html"
	"vellum/pkg/resource"
	"vellum/pkg/style"
)

// maxImportDepth bounds @import chains.
const maxImportDepth = 8

// styleBook gathers the user-agent sheet and the document's author sheets.
func (p *pipeline) styleBook(ctx context.Context, doc *html.Document) (*style.Book, error) {
	ua := p.opts.UserAgent
	if ua == nil {
		src, err := resource.FetchCSS(ctx, p.fetcher, resource.UserAgentStyleSheet)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrNoUserAgentSheet, err)
			p.logger.Error("Cannot render", zap.Error(err))
			return nil, err
		}
		ua = css.ParseStylesheetFrom(resource.UserAgentStyleSheet, src, css.OriginUserAgent)
	}
	book := style.NewBook(ua)
	if doc != nil {
		p.collect(ctx, doc.Root, book)
	}
	return book, nil
}

// collect adds the sheets of style and link elements in document order.
func (p *pipeline) collect(ctx context.Context, n *html.Node, book *style.Book) {
	switch html.TagName(n) {
	case "style":
		p.addSheet(ctx, book, css.ParseStylesheetFrom(p.baseURL, html.TextContent(n), css.OriginAuthor), 0, nil)
		return
	case "link":
		if !isStylesheetLink(n) {
			return
		}
		href, ok := html.GetAttribute(n, "href")
		if !ok || strings.TrimSpace(href) == "" {
			p.warn(fmt.Errorf("link element missing href attribute"))
			return
		}
		if _, err := url.Parse(strings.TrimSpace(href)); err != nil {
			p.warn(fmt.Errorf("link element href is not a valid URL: %q", href))
			return
		}
		uri := resource.ResolveURL(p.baseURL, strings.TrimSpace(href))
		if sheet, ok := p.fetchSheet(ctx, uri); ok {
			p.addSheet(ctx, book, sheet, 0, map[string]bool{uri: true})
		}
		return
	}
	for _, c := range html.Children(n) {
		p.collect(ctx, c, book)
	}
}

func isStylesheetLink(n *html.Node) bool {
	rel, _ := html.GetAttribute(n, "rel")
	for _, tok := range strings.Fields(strings.ToLower(rel)) {
		if tok == "stylesheet" {
			return true
		}
	}
	return false
}

func (p *pipeline) fetchSheet(ctx context.Context, uri string) (*css.StyleSheet, bool) {
	src, err := resource.FetchCSS(ctx, p.fetcher, uri)
	if err != nil {
		p.warn(fmt.Errorf("stylesheet %s: %w", uri, err))
		return nil, false
	}
	return css.ParseStylesheetFrom(uri, src, css.OriginAuthor), true
}

// addSheet adds sheet after the sheets it imports. seen holds the URLs on
// the current import chain.
func (p *pipeline) addSheet(ctx context.Context, book *style.Book, sheet *css.StyleSheet, depth int, seen map[string]bool) {
	for _, e := range sheet.Errors {
		p.logger.Debug("CSS parse error", zap.String("sheet", sheet.Href), zap.Error(e))
	}
	for _, imp := range sheet.Imports {
		uri := resource.ResolveURL(sheet.Href, imp.Href)
		switch {
		case !imp.Media.Matches(p.media):
			continue
		case depth+1 > maxImportDepth:
			p.warn(fmt.Errorf("@import %s: nested deeper than %d", uri, maxImportDepth))
			continue
		case seen[uri]:
			p.warn(fmt.Errorf("@import %s: import cycle", uri))
			continue
		}
		imported, ok := p.fetchSheet(ctx, uri)
		if !ok {
			continue
		}
		chain := make(map[string]bool, len(seen)+1)
		for k := range seen {
			chain[k] = true
		}
		chain[uri] = true
		p.addSheet(ctx, book, imported, depth+1, chain)
	}
	book.Add(sheet)
}
