package css

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/css/scanner"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWhitespace
	TokenIdent
	TokenAtKeyword
	TokenString
	TokenHash
	TokenNumber
	TokenPercentage
	TokenDimension
	TokenURL
	TokenFunction
	TokenUnicodeRange
	TokenMatch // ~= |= ^= $= *=
	TokenCDO
	TokenCDC
	TokenColon
	TokenSemicolon
	TokenComma
	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenDelim
	TokenBadString
)

var tokenKindNames = [...]string{
	"EOF", "whitespace", "ident", "at-keyword", "string", "hash", "number",
	"percentage", "dimension", "url", "function", "unicode-range", "match",
	"CDO", "CDC", "colon", "semicolon", "comma", "{", "}", "(", ")", "[", "]",
	"delim", "bad-string",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a lexical unit. Value holds the raw source text of the token, so
// concatenating token values reproduces the input minus comments.
type Token struct {
	Kind   TokenKind
	Value  string
	Line   int
	Column int
}

// Name returns the identifier part of at-keywords ("media"), functions
// ("rgb") and hashes ("id"), lower-cased. For idents it is the lower-cased
// ident.
func (t Token) Name() string {
	v := t.Value
	switch t.Kind {
	case TokenAtKeyword, TokenHash:
		v = v[1:]
	case TokenFunction:
		v = strings.TrimSuffix(v, "(")
	}
	return strings.ToLower(v)
}

// Is reports whether t is a delimiter-like token with the given text.
func (t Token) Is(kind TokenKind, value string) bool {
	return t.Kind == kind && strings.EqualFold(t.Value, value)
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Value, t.Line, t.Column)
}

// ParseError is a recoverable CSS syntax or validation error. Parsing never
// fails as a whole; errors are collected and the offending construct dropped.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("css:%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Lexer turns CSS source into tokens. Comments are stripped; whitespace is
// kept because selectors need it for the descendant combinator.
type Lexer struct {
	s      *scanner.Scanner
	peeked *Token
	held   *Token
	done   bool
	errs   []ParseError

	// The scanner gives up at the first unclosed string. It is then
	// restarted on the rest of the source; base and off are byte offsets
	// of the current scanner's input and of its read position, line and
	// col the source position where it started.
	src       string
	base, off int
	line, col int
}

// NewLexer creates a lexer over an in-memory source text.
func NewLexer(src string) *Lexer {
	return &Lexer{s: scanner.New(src), src: src, line: 1, col: 1}
}

// Errors returns tokenization errors seen so far.
func (l *Lexer) Errors() []ParseError {
	return l.errs
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	if l.peeked == nil {
		t := l.read()
		l.peeked = &t
	}
	return *l.peeked
}

// Next consumes and returns the next token.
func (l *Lexer) Next() Token {
	t := l.Peek()
	l.peeked = nil
	return t
}

// read returns the next token, folding a sign delimiter into the number
// that immediately follows it. The scanner has no signed numbers.
func (l *Lexer) read() Token {
	tok := l.scan()
	if tok.Kind != TokenDelim || (tok.Value != "-" && tok.Value != "+") {
		return tok
	}
	next := l.scan()
	switch next.Kind {
	case TokenNumber, TokenPercentage, TokenDimension:
		if next.Line == tok.Line && next.Column == tok.Column+1 {
			next.Value = tok.Value + next.Value
			next.Column = tok.Column
			return next
		}
	}
	l.held = &next
	return tok
}

func (l *Lexer) scan() Token {
	if l.held != nil {
		t := *l.held
		l.held = nil
		return t
	}
	for {
		if l.done {
			return Token{Kind: TokenEOF}
		}
		st := l.s.Next()
		tok := Token{Value: st.Value}
		tok.Line, tok.Column = l.position(st.Line, st.Column)
		if st.Type != scanner.TokenError {
			l.off += len(st.Value)
		}
		switch st.Type {
		case scanner.TokenEOF:
			l.done = true
			tok.Kind = TokenEOF
		case scanner.TokenError:
			return l.recover(tok, st.Value)
		case scanner.TokenComment, scanner.TokenBOM:
			continue
		case scanner.TokenS:
			tok.Kind = TokenWhitespace
		case scanner.TokenIdent:
			tok.Kind = TokenIdent
		case scanner.TokenAtKeyword:
			tok.Kind = TokenAtKeyword
		case scanner.TokenString:
			tok.Kind = TokenString
		case scanner.TokenHash:
			tok.Kind = TokenHash
		case scanner.TokenNumber:
			tok.Kind = TokenNumber
		case scanner.TokenPercentage:
			tok.Kind = TokenPercentage
		case scanner.TokenDimension:
			tok.Kind = TokenDimension
		case scanner.TokenURI:
			tok.Kind = TokenURL
		case scanner.TokenFunction:
			tok.Kind = TokenFunction
		case scanner.TokenUnicodeRange:
			tok.Kind = TokenUnicodeRange
		case scanner.TokenIncludes, scanner.TokenDashMatch, scanner.TokenPrefixMatch,
			scanner.TokenSuffixMatch, scanner.TokenSubstringMatch:
			tok.Kind = TokenMatch
		case scanner.TokenCDO:
			tok.Kind = TokenCDO
		case scanner.TokenCDC:
			tok.Kind = TokenCDC
		default:
			tok.Kind = charKind(st.Value)
		}
		return tok
	}
}

// position maps a position of the current scanner to the source.
func (l *Lexer) position(line, col int) (int, int) {
	if line == 1 {
		return l.line, l.col + col - 1
	}
	return l.line + line - 1, col
}

// recover handles a scanner error at tok's position. An unclosed comment
// runs to the end of input. An unclosed string becomes a bad-string token
// ending before the next unescaped newline, and scanning resumes there.
func (l *Lexer) recover(tok Token, msg string) Token {
	l.errs = append(l.errs, ParseError{Line: tok.Line, Column: tok.Column, Msg: msg})
	rest := l.src[l.base+l.off:]
	if !strings.HasPrefix(rest, `"`) && !strings.HasPrefix(rest, "'") {
		l.done = true
		return Token{Kind: TokenEOF, Line: tok.Line, Column: tok.Column}
	}
	end := len(rest)
	for i := 1; i < len(rest); i++ {
		if rest[i] == '\\' {
			i++
			continue
		}
		if rest[i] == '\n' {
			end = i
			break
		}
	}
	tok.Kind = TokenBadString
	tok.Value = rest[:end]
	l.base += l.off + end
	l.off = 0
	l.line, l.col = tok.Line, tok.Column+utf8.RuneCountInString(tok.Value)
	l.s = scanner.New(l.src[l.base:])
	return tok
}

func charKind(c string) TokenKind {
	switch c {
	case ":":
		return TokenColon
	case ";":
		return TokenSemicolon
	case ",":
		return TokenComma
	case "{":
		return TokenLBrace
	case "}":
		return TokenRBrace
	case "(":
		return TokenLParen
	case ")":
		return TokenRParen
	case "[":
		return TokenLBracket
	case "]":
		return TokenRBracket
	}
	return TokenDelim
}

// Tokenize returns all tokens of src up to (not including) EOF.
func Tokenize(src string) []Token {
	l := NewLexer(src)
	var out []Token
	for {
		t := l.Next()
		if t.Kind == TokenEOF {
			return out
		}
		out = append(out, t)
	}
}

// unquote strips matching quotes from a string token and resolves the
// simple backslash escapes.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == '\n' {
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// urlValue extracts the target of a url(...) token.
func urlValue(raw string) string {
	inner := strings.TrimSpace(raw)
	if len(inner) >= 4 && strings.EqualFold(inner[:4], "url(") {
		inner = inner[4:]
	}
	inner = strings.TrimSuffix(inner, ")")
	return unquote(strings.TrimSpace(inner))
}
