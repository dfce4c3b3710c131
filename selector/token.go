package selector

import (
	"strings"
)

// TokenType identifies a selector token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenWhitespace
	TokenIdent
	TokenHash       // #name
	TokenString     // "value" or 'value'
	TokenComma      // ,
	TokenColon      // :
	TokenOpenBracket
	TokenCloseBracket
	TokenOpenParen
	TokenCloseParen
	TokenDelim // any other single character
)

// Token is one lexical unit of selector text.
type Token struct {
	Type  TokenType
	Value string // ident text, hash name, or string contents
	Delim byte
}

// Tokenizer splits selector text into tokens.
type Tokenizer struct {
	input string
	pos   int
}

// NewTokenizer creates a tokenizer over the given selector text.
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// TokenizeAll consumes the whole input and returns its tokens, excluding the
// trailing EOF.
func (t *Tokenizer) TokenizeAll() []Token {
	var tokens []Token
	for {
		tok := t.next()
		if tok.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (t *Tokenizer) next() Token {
	if t.pos >= len(t.input) {
		return Token{Type: TokenEOF}
	}

	c := t.input[t.pos]

	switch {
	case isWhitespace(c):
		start := t.pos
		for t.pos < len(t.input) && isWhitespace(t.input[t.pos]) {
			t.pos++
		}
		return Token{Type: TokenWhitespace, Value: t.input[start:t.pos]}

	case c == ',':
		t.pos++
		return Token{Type: TokenComma}

	case c == ':':
		t.pos++
		return Token{Type: TokenColon}

	case c == '[':
		t.pos++
		return Token{Type: TokenOpenBracket}

	case c == ']':
		t.pos++
		return Token{Type: TokenCloseBracket}

	case c == '(':
		t.pos++
		return Token{Type: TokenOpenParen}

	case c == ')':
		t.pos++
		return Token{Type: TokenCloseParen}

	case c == '#':
		t.pos++
		name := t.consumeIdent()
		return Token{Type: TokenHash, Value: name}

	case c == '"' || c == '\'':
		return t.consumeString(c)

	case isIdentStart(c):
		return Token{Type: TokenIdent, Value: t.consumeIdent()}

	default:
		t.pos++
		return Token{Type: TokenDelim, Delim: c}
	}
}

// consumeIdent reads an identifier starting at the current position. Allows
// leading hyphens and digits inside the name, which also covers An+B text
// like "2n+1" when it begins with a digit handled by the caller.
func (t *Tokenizer) consumeIdent() string {
	start := t.pos
	for t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		t.pos++
	}
	return t.input[start:t.pos]
}

func (t *Tokenizer) consumeString(quote byte) Token {
	t.pos++ // opening quote
	var sb strings.Builder
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if c == quote {
			t.pos++
			return Token{Type: TokenString, Value: sb.String()}
		}
		if c == '\\' && t.pos+1 < len(t.input) {
			t.pos++
			c = t.input[t.pos]
		}
		sb.WriteByte(c)
		t.pos++
	}
	// Unterminated string: return what we have, parser reports the error
	return Token{Type: TokenString, Value: sb.String()}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '-' || c == '\\' || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
