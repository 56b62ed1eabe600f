package css

import (
	"fmt"
	"strings"
)

// Origin is the cascade origin of a stylesheet.
type Origin int

const (
	OriginUserAgent Origin = iota
	OriginAuthor
	OriginInline
)

func (o Origin) String() string {
	switch o {
	case OriginUserAgent:
		return "user-agent"
	case OriginAuthor:
		return "author"
	case OriginInline:
		return "inline"
	}
	return fmt.Sprintf("Origin(%d)", int(o))
}

// Declaration is a validated property assignment. Shorthands are expanded
// into their longhands at parse time, so Property is always a longhand.
type Declaration struct {
	Property  Property
	Value     Value
	Important bool
}

func (d Declaration) String() string {
	s := d.Property.String() + ": " + d.Value.String()
	if d.Important {
		s += " !important"
	}
	return s
}

// Rule is a style rule: selectors plus declarations in source order. Media
// holds the conditions of the enclosing @media blocks, outermost first.
type Rule struct {
	Selectors    SelectorList
	Declarations []Declaration
	Media        []MediaQueryList
}

// AppliesTo reports whether every enclosing @media condition matches m.
func (r *Rule) AppliesTo(m Media) bool {
	for _, l := range r.Media {
		if !l.Matches(m) {
			return false
		}
	}
	return true
}

// Import is an @import reference. Href is unresolved.
type Import struct {
	Href  string
	Media MediaQueryList
}

// StyleSheet is an immutable parsed stylesheet.
type StyleSheet struct {
	Origin  Origin
	Href    string
	Rules   []Rule
	Imports []Import
	Errors  []ParseError
}

// ParseStylesheet parses CSS text. It never fails: malformed rules and
// declarations are dropped and reported in Errors.
func ParseStylesheet(src string, origin Origin) *StyleSheet {
	return ParseStylesheetFrom("", src, origin)
}

// ParseStylesheetFrom parses CSS text loaded from href.
func ParseStylesheetFrom(href, src string, origin Origin) *StyleSheet {
	b := &builder{sheet: &StyleSheet{Origin: origin, Href: href}}
	b.rules(b.p.ParseRuleList(src), nil, true)
	b.sheet.Errors = b.p.Errors
	return b.sheet
}

// ParseDeclarations parses the content of a style attribute.
func ParseDeclarations(src string) ([]Declaration, []ParseError) {
	var b builder
	decls := b.declarations(b.p.ParseComponentValues(src))
	return decls, b.p.Errors
}

type builder struct {
	p         Parser
	sheet     *StyleSheet
	seenRules bool
}

func (b *builder) rules(nodes []Node, media []MediaQueryList, top bool) {
	for _, n := range nodes {
		switch n.Kind {
		case NodeQualifiedRule:
			b.seenRules = true
			b.styleRule(n, media)
		case NodeAtRule:
			b.atRule(n, media, top)
		}
	}
}

func (b *builder) styleRule(n Node, media []MediaQueryList) {
	sels, err := compileSelectors(n.Prelude)
	if err != nil {
		b.p.errorf(n.Token, err.Error())
		return
	}
	b.sheet.Rules = append(b.sheet.Rules, Rule{
		Selectors:    sels,
		Declarations: b.declarations(n.Block.Content),
		Media:        media,
	})
}

func (b *builder) atRule(n Node, media []MediaQueryList, top bool) {
	switch name := n.Token.Name(); name {
	case "import":
		if !top || b.seenRules || n.Block != nil {
			b.p.errorf(n.Token, "misplaced @import")
			return
		}
		b.importRule(n)
	case "media":
		if n.Block == nil {
			b.p.errorf(n.Token, "@media without block")
			return
		}
		b.seenRules = true
		nested := b.p.consumeRuleList(&sliceSource{nodes: n.Block.Content}, false)
		cond := append(append([]MediaQueryList(nil), media...), parseMediaQueryList(n.Prelude))
		b.rules(nested, cond, false)
	case "charset", "namespace":
	default:
		b.seenRules = true
		b.p.errorf(n.Token, "unsupported at-rule @"+name)
	}
}

func (b *builder) importRule(n Node) {
	ts := terms(n.Prelude)
	if len(ts) == 0 {
		b.p.errorf(n.Token, "@import without url")
		return
	}
	var href string
	switch {
	case isToken(ts[0], TokenString):
		href = unquote(ts[0].Token.Value)
	case isToken(ts[0], TokenURL):
		href = urlValue(ts[0].Token.Value)
	case ts[0].Kind == NodeFunction && ts[0].Token.Name() == "url" && len(terms(ts[0].Content)) == 1:
		href = unquote(terms(ts[0].Content)[0].Token.Value)
	default:
		b.p.errorf(n.Token, "@import without url")
		return
	}
	b.sheet.Imports = append(b.sheet.Imports, Import{
		Href:  href,
		Media: parseMediaQueryList(trimWhitespace(n.Prelude)[1:]),
	})
}

func (b *builder) declarations(nodes []Node) []Declaration {
	var out []Declaration
	for _, raw := range b.p.ParseDeclarationList(nodes) {
		if strings.HasPrefix(raw.Name, "--") {
			continue
		}
		if longhands, isShorthand, valid := expandShorthand(raw.Name, raw.Value); isShorthand {
			if !valid {
				b.p.errorf(raw.Token, "invalid value for "+raw.Name)
				continue
			}
			for _, lh := range longhands {
				out = append(out, Declaration{Property: lh.prop, Value: lh.value, Important: raw.Important})
			}
			continue
		}
		prop, ok := LookupProperty(raw.Name)
		if !ok {
			b.p.errorf(raw.Token, "unknown property "+raw.Name)
			continue
		}
		v, ok := parseLonghand(prop, terms(raw.Value))
		if !ok {
			b.p.errorf(raw.Token, "invalid value for "+raw.Name)
			continue
		}
		out = append(out, Declaration{Property: prop, Value: v, Important: raw.Important})
	}
	return out
}
