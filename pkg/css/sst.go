package css

import "strings"

// NodeKind classifies a syntax tree node.
type NodeKind int

const (
	// NodeToken is a preserved token.
	NodeToken NodeKind = iota
	// NodeBlock is a simple {}, [] or () block; Token is its opening token.
	NodeBlock
	// NodeFunction is a function call; Token is the function token.
	NodeFunction
	// NodeQualifiedRule is a prelude followed by a {} block.
	NodeQualifiedRule
	// NodeAtRule is an at-keyword, a prelude and an optional {} block.
	NodeAtRule
)

// Node is an element of the CSS syntax tree: the generic structure of a
// stylesheet before any property or selector is interpreted.
type Node struct {
	Kind    NodeKind
	Token   Token
	Prelude []Node
	Block   *Node
	Content []Node
}

// componentSource yields component values. Top-level parsing reads them
// straight from the lexer; nested parsing re-reads the content of a block.
type componentSource interface {
	peek() Node
	next() Node
}

type lexerSource struct {
	lex    *Lexer
	p      *Parser
	peeked *Node
}

func (s *lexerSource) peek() Node {
	if s.peeked == nil {
		n := s.p.consumeComponentValue(s.lex)
		s.peeked = &n
	}
	return *s.peeked
}

func (s *lexerSource) next() Node {
	n := s.peek()
	s.peeked = nil
	return n
}

type sliceSource struct {
	nodes []Node
	pos   int
}

func (s *sliceSource) peek() Node {
	if s.pos >= len(s.nodes) {
		return Node{Kind: NodeToken, Token: Token{Kind: TokenEOF}}
	}
	return s.nodes[s.pos]
}

func (s *sliceSource) next() Node {
	n := s.peek()
	if s.pos < len(s.nodes) {
		s.pos++
	}
	return n
}

func isToken(n Node, kind TokenKind) bool {
	return n.Kind == NodeToken && n.Token.Kind == kind
}

func isBraceBlock(n Node) bool {
	return n.Kind == NodeBlock && n.Token.Kind == TokenLBrace
}

// Parser builds syntax trees and records recoverable errors on the way.
type Parser struct {
	Errors []ParseError
}

func (p *Parser) errorf(t Token, msg string) {
	p.Errors = append(p.Errors, ParseError{Line: t.Line, Column: t.Column, Msg: msg})
}

// ParseRuleList parses a whole stylesheet into its top-level rules.
func (p *Parser) ParseRuleList(src string) []Node {
	lex := NewLexer(src)
	rules := p.consumeRuleList(&lexerSource{lex: lex, p: p}, true)
	p.Errors = append(p.Errors, lex.Errors()...)
	return rules
}

// ParseComponentValues parses src into a flat list of component values.
func (p *Parser) ParseComponentValues(src string) []Node {
	lex := NewLexer(src)
	var out []Node
	for lex.Peek().Kind != TokenEOF {
		out = append(out, p.consumeComponentValue(lex))
	}
	p.Errors = append(p.Errors, lex.Errors()...)
	return out
}

func (p *Parser) consumeRuleList(src componentSource, topLevel bool) []Node {
	var rules []Node
	for {
		n := src.peek()
		switch {
		case isToken(n, TokenEOF):
			return rules
		case isToken(n, TokenWhitespace):
			src.next()
		case isToken(n, TokenCDO), isToken(n, TokenCDC):
			if topLevel {
				src.next()
				continue
			}
			if r, ok := p.consumeQualifiedRule(src); ok {
				rules = append(rules, r)
			}
		case isToken(n, TokenAtKeyword):
			rules = append(rules, p.consumeAtRule(src))
		default:
			if r, ok := p.consumeQualifiedRule(src); ok {
				rules = append(rules, r)
			}
		}
	}
}

func (p *Parser) consumeAtRule(src componentSource) Node {
	rule := Node{Kind: NodeAtRule, Token: src.next().Token}
	for {
		n := src.peek()
		switch {
		case isToken(n, TokenEOF):
			return rule
		case isToken(n, TokenSemicolon):
			src.next()
			return rule
		case isBraceBlock(n):
			src.next()
			rule.Block = &n
			return rule
		default:
			rule.Prelude = append(rule.Prelude, src.next())
		}
	}
}

func (p *Parser) consumeQualifiedRule(src componentSource) (Node, bool) {
	rule := Node{Kind: NodeQualifiedRule}
	start := src.peek().Token
	for {
		n := src.peek()
		switch {
		case isToken(n, TokenEOF):
			p.errorf(start, "unexpected end of input in rule prelude")
			return Node{}, false
		case isBraceBlock(n):
			src.next()
			rule.Block = &n
			rule.Token = start
			return rule, true
		default:
			rule.Prelude = append(rule.Prelude, src.next())
		}
	}
}

func (p *Parser) consumeComponentValue(lex *Lexer) Node {
	t := lex.Next()
	switch t.Kind {
	case TokenLBrace, TokenLBracket, TokenLParen:
		return p.consumeBlock(lex, t, closerOf(t.Kind))
	case TokenFunction:
		return p.consumeBlock(lex, t, TokenRParen)
	}
	return Node{Kind: NodeToken, Token: t}
}

func closerOf(k TokenKind) TokenKind {
	switch k {
	case TokenLBrace:
		return TokenRBrace
	case TokenLBracket:
		return TokenRBracket
	}
	return TokenRParen
}

func (p *Parser) consumeBlock(lex *Lexer, open Token, closer TokenKind) Node {
	kind := NodeBlock
	if open.Kind == TokenFunction {
		kind = NodeFunction
	}
	n := Node{Kind: kind, Token: open}
	for {
		t := lex.Peek()
		switch t.Kind {
		case TokenEOF:
			p.errorf(open, "unclosed "+open.Value)
			return n
		case closer:
			lex.Next()
			return n
		case TokenRBrace:
			// A stray } closes the enclosing {} block, or ends the rule
			// prelude at top level, rather than being swallowed.
			p.errorf(t, "unbalanced "+open.Value)
			return n
		}
		n.Content = append(n.Content, p.consumeComponentValue(lex))
	}
}

// RawDeclaration is a declaration as it appears in the syntax tree.
type RawDeclaration struct {
	Name      string
	Value     []Node
	Important bool
	Token     Token
}

// ParseDeclarationList parses the content of a {} block or a style
// attribute. Invalid declarations are skipped up to the next semicolon.
func (p *Parser) ParseDeclarationList(nodes []Node) []RawDeclaration {
	return p.consumeDeclarationList(&sliceSource{nodes: nodes})
}

func (p *Parser) consumeDeclarationList(src componentSource) []RawDeclaration {
	var decls []RawDeclaration
	for {
		n := src.peek()
		switch {
		case isToken(n, TokenEOF):
			return decls
		case isToken(n, TokenWhitespace), isToken(n, TokenSemicolon):
			src.next()
		case isToken(n, TokenAtKeyword):
			at := p.consumeAtRule(src)
			p.errorf(at.Token, "at-rule not allowed in declaration list")
		case isToken(n, TokenIdent):
			var tmp []Node
			for !isToken(src.peek(), TokenEOF) && !isToken(src.peek(), TokenSemicolon) {
				tmp = append(tmp, src.next())
			}
			if d, ok := p.consumeDeclaration(tmp); ok {
				decls = append(decls, d)
			}
		default:
			p.errorf(n.Token, "unexpected "+n.Token.Kind.String()+" in declaration list")
			for !isToken(src.peek(), TokenEOF) && !isToken(src.peek(), TokenSemicolon) {
				src.next()
			}
		}
	}
}

func (p *Parser) consumeDeclaration(nodes []Node) (RawDeclaration, bool) {
	name := nodes[0].Token
	d := RawDeclaration{Name: strings.ToLower(name.Value), Token: name}
	rest := trimWhitespace(nodes[1:])
	if len(rest) == 0 || !isToken(rest[0], TokenColon) {
		p.errorf(name, "expected ':' after "+name.Value)
		return d, false
	}
	value := trimWhitespace(rest[1:])
	if n := len(value); n >= 2 {
		last := value[n-1]
		prev := trimWhitespace(value[:n-1])
		if isToken(last, TokenIdent) && strings.EqualFold(last.Token.Value, "important") &&
			len(prev) > 0 && prev[len(prev)-1].Kind == NodeToken && prev[len(prev)-1].Token.Value == "!" {
			d.Important = true
			value = trimWhitespace(prev[:len(prev)-1])
		}
	}
	if len(value) == 0 {
		p.errorf(name, "empty value for "+name.Value)
		return d, false
	}
	d.Value = value
	return d, true
}

func trimWhitespace(nodes []Node) []Node {
	for len(nodes) > 0 && isToken(nodes[0], TokenWhitespace) {
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && isToken(nodes[len(nodes)-1], TokenWhitespace) {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

// terms splits a value into its whitespace-separated top-level parts.
func terms(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !isToken(n, TokenWhitespace) {
			out = append(out, n)
		}
	}
	return out
}

// splitCommas splits a component value list on top-level commas.
func splitCommas(nodes []Node) [][]Node {
	var out [][]Node
	var cur []Node
	for _, n := range nodes {
		if isToken(n, TokenComma) {
			out = append(out, trimWhitespace(cur))
			cur = nil
			continue
		}
		cur = append(cur, n)
	}
	return append(out, trimWhitespace(cur))
}

// Serialize turns component values back into CSS text. Runs of whitespace
// collapse to a single space.
func Serialize(nodes []Node) string {
	var sb strings.Builder
	serializeInto(&sb, nodes)
	return strings.TrimSpace(sb.String())
}

func serializeInto(sb *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n.Kind {
		case NodeToken:
			if n.Token.Kind == TokenWhitespace {
				sb.WriteByte(' ')
			} else {
				sb.WriteString(n.Token.Value)
			}
		case NodeBlock:
			sb.WriteString(n.Token.Value)
			serializeInto(sb, n.Content)
			switch n.Token.Kind {
			case TokenLBrace:
				sb.WriteByte('}')
			case TokenLBracket:
				sb.WriteByte(']')
			default:
				sb.WriteByte(')')
			}
		case NodeFunction:
			sb.WriteString(n.Token.Value)
			serializeInto(sb, n.Content)
			sb.WriteByte(')')
		}
	}
}
