package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{
			name:  "simple rule",
			input: "p{color:red}",
			want:  []TokenKind{TokenIdent, TokenLBrace, TokenIdent, TokenColon, TokenIdent, TokenRBrace},
		},
		{
			name:  "comments are dropped",
			input: "/* c1 */p/* c2 */",
			want:  []TokenKind{TokenIdent},
		},
		{
			name:  "whitespace is kept",
			input: "div p",
			want:  []TokenKind{TokenIdent, TokenWhitespace, TokenIdent},
		},
		{
			name:  "numbers",
			input: "10px 50% 3",
			want:  []TokenKind{TokenDimension, TokenWhitespace, TokenPercentage, TokenWhitespace, TokenNumber},
		},
		{
			name:  "functions and hashes",
			input: "rgb(1,2,3) #fff",
			want: []TokenKind{TokenFunction, TokenNumber, TokenComma, TokenNumber, TokenComma, TokenNumber,
				TokenRParen, TokenWhitespace, TokenHash},
		},
		{
			name:  "at-keyword and string",
			input: `@import "a.css";`,
			want:  []TokenKind{TokenAtKeyword, TokenWhitespace, TokenString, TokenSemicolon},
		},
		{
			name:  "attribute match",
			input: `[lang|=en]`,
			want:  []TokenKind{TokenLBracket, TokenIdent, TokenMatch, TokenIdent, TokenRBracket},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(Tokenize(tt.input)))
		})
	}
}

func TestTokenNames(t *testing.T) {
	toks := Tokenize("@MEDIA rgb( #Main")
	assert.Equal(t, "media", toks[0].Name())
	assert.Equal(t, "rgb", toks[2].Name())
	assert.Equal(t, "main", toks[4].Name())
}

func TestLexerUnclosedComment(t *testing.T) {
	lex := NewLexer("p { color: red; } /* unterminated")
	var got []Token
	for tok := lex.Next(); tok.Kind != TokenEOF; tok = lex.Next() {
		got = append(got, tok)
	}
	assert.NotEmpty(t, got)
	assert.Len(t, lex.Errors(), 1)
	assert.Equal(t, TokenEOF, lex.Next().Kind, "EOF is sticky")
}

func TestLexerBadString(t *testing.T) {
	lex := NewLexer("a 'x\nb \"y")
	var got []Token
	for tok := lex.Next(); tok.Kind != TokenEOF; tok = lex.Next() {
		got = append(got, tok)
	}
	assert.Equal(t, []Token{
		{Kind: TokenIdent, Value: "a", Line: 1, Column: 1},
		{Kind: TokenWhitespace, Value: " ", Line: 1, Column: 2},
		{Kind: TokenBadString, Value: "'x", Line: 1, Column: 3},
		{Kind: TokenWhitespace, Value: "\n", Line: 1, Column: 5},
		{Kind: TokenIdent, Value: "b", Line: 2, Column: 1},
		{Kind: TokenWhitespace, Value: " ", Line: 2, Column: 2},
		{Kind: TokenBadString, Value: `"y`, Line: 2, Column: 3},
	}, got)
	require.Len(t, lex.Errors(), 2)
	assert.Equal(t, 2, lex.Errors()[1].Line)
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "a.css", unquote(`"a.css"`))
	assert.Equal(t, "it's", unquote(`'it\'s'`))
	assert.Equal(t, "x.png", urlValue(`url( "x.png" )`))
	assert.Equal(t, "x.png", urlValue(`url(x.png)`))
}
