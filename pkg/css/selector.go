package css

import (
	"fmt"

	"github.com/andybalholm/cascadia"

	"vellum/pkg/html"
)

// Specificity is the (id, class, type) weight of a selector; compare with
// Less.
type Specificity = cascadia.Specificity

// Selector is one complex selector of a rule's selector list.
type Selector struct {
	Raw string
	sel cascadia.Sel
}

// Match reports whether n matches the selector.
func (s Selector) Match(n *html.Node) bool {
	return s.sel != nil && s.sel.Match(n)
}

// Specificity returns the selector's specificity.
func (s Selector) Specificity() Specificity {
	if s.sel == nil {
		return Specificity{}
	}
	return s.sel.Specificity()
}

func (s Selector) String() string { return s.Raw }

// SelectorList is a comma-separated group of selectors.
type SelectorList []Selector

// Match returns the highest specificity among the selectors matching n.
func (l SelectorList) Match(n *html.Node) (Specificity, bool) {
	var best Specificity
	matched := false
	for _, s := range l {
		if !s.Match(n) {
			continue
		}
		if sp := s.Specificity(); !matched || best.Less(sp) {
			best = sp
		}
		matched = true
	}
	return best, matched
}

func (l SelectorList) String() string {
	out := ""
	for i, s := range l {
		if i > 0 {
			out += ", "
		}
		out += s.Raw
	}
	return out
}

// ParseSelectorList compiles a selector group. The whole list is invalid if
// any of its selectors is, matching how browsers drop such rules.
func ParseSelectorList(src string) (SelectorList, error) {
	var p Parser
	nodes := p.ParseComponentValues(src)
	if len(p.Errors) > 0 {
		return nil, p.Errors[0]
	}
	return compileSelectors(nodes)
}

func compileSelectors(prelude []Node) (SelectorList, error) {
	parts := splitCommas(trimWhitespace(prelude))
	out := make(SelectorList, 0, len(parts))
	for _, part := range parts {
		raw := Serialize(part)
		if raw == "" {
			return nil, fmt.Errorf("empty selector")
		}
		sel, err := cascadia.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", raw, err)
		}
		out = append(out, Selector{Raw: raw, sel: sel})
	}
	return out, nil
}
