package selector

import (
	"fmt"
	"strings"
)

// Selector is a parsed selector list: one or more complex selectors separated
// by commas. The list matches an element iff any member matches.
type Selector struct {
	Complex []*ComplexSelector
}

// ComplexSelector is a chain of compound selectors joined by combinators.
type ComplexSelector struct {
	Compounds []*CompoundSelector
}

// CompoundSelector is a sequence of simple selectors applying to one element.
// Combinator is the combinator FOLLOWING this compound in the chain.
type CompoundSelector struct {
	TypeSelector   *TypeSelector
	IDSelectors    []string
	ClassSelectors []string
	AttrMatchers   []*AttributeMatcher
	PseudoClasses  []*PseudoClassSelector
	Combinator     CombinatorType
}

// CombinatorType represents the combinator between two compound selectors.
type CombinatorType int

const (
	CombinatorNone              CombinatorType = iota
	CombinatorDescendant                       // (whitespace)
	CombinatorChild                            // >
	CombinatorNextSibling                      // +
	CombinatorSubsequentSibling                // ~
)

// TypeSelector matches by tag name; "*" is the universal selector.
type TypeSelector struct {
	Name string
}

// AttributeMatcher represents an attribute selector.
type AttributeMatcher struct {
	Name            string
	Operator        AttributeOperator
	Value           string
	CaseInsensitive bool
}

// AttributeOperator represents the operator in an attribute selector.
type AttributeOperator int

const (
	AttrExists    AttributeOperator = iota // [attr]
	AttrEquals                             // [attr=value]
	AttrIncludes                           // [attr~=value]
	AttrDashMatch                          // [attr|=value]
	AttrPrefix                             // [attr^=value]
	AttrSuffix                             // [attr$=value]
	AttrSubstring                          // [attr*=value]
)

// PseudoClassSelector represents a pseudo-class, with a parsed inner selector
// for :not() and raw argument text for functional forms like :nth-child(2n+1).
type PseudoClassSelector struct {
	Name     string
	Argument string
	Inner    *Selector
}

// Parser parses selector text into a Selector.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse parses a selector list from its textual form.
func Parse(input string) (*Selector, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty selector")
	}
	tokens := NewTokenizer(input).TokenizeAll()
	p := &Parser{tokens: tokens}

	sel, err := p.parseSelectorList()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, fmt.Errorf("unexpected input after selector at position %d", p.pos)
	}
	return sel, nil
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) Token {
	pos := p.pos + offset
	if pos < 0 || pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[pos]
}

func (p *Parser) consume() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) skipWhitespace() bool {
	skipped := false
	for p.current().Type == TokenWhitespace {
		p.consume()
		skipped = true
	}
	return skipped
}

func (p *Parser) parseSelectorList() (*Selector, error) {
	sel := &Selector{}

	p.skipWhitespace()

	for {
		complex, err := p.parseComplexSelector()
		if err != nil {
			return nil, err
		}
		if complex == nil {
			return nil, fmt.Errorf("expected selector")
		}
		sel.Complex = append(sel.Complex, complex)

		p.skipWhitespace()
		if p.current().Type != TokenComma {
			break
		}
		p.consume()
		p.skipWhitespace()
	}

	return sel, nil
}

func (p *Parser) parseComplexSelector() (*ComplexSelector, error) {
	complex := &ComplexSelector{}

	for {
		compound, err := p.parseCompoundSelector()
		if err != nil {
			return nil, err
		}
		if compound == nil {
			break
		}
		complex.Compounds = append(complex.Compounds, compound)

		hadWhitespace := p.skipWhitespace()

		tok := p.current()
		if tok.Type == TokenDelim {
			switch tok.Delim {
			case '>':
				p.consume()
				compound.Combinator = CombinatorChild
				p.skipWhitespace()
				continue
			case '+':
				p.consume()
				compound.Combinator = CombinatorNextSibling
				p.skipWhitespace()
				continue
			case '~':
				p.consume()
				compound.Combinator = CombinatorSubsequentSibling
				p.skipWhitespace()
				continue
			}
		}
		if tok.Type == TokenEOF || tok.Type == TokenComma {
			break
		}
		if hadWhitespace {
			compound.Combinator = CombinatorDescendant
			continue
		}
		break
	}

	if len(complex.Compounds) == 0 {
		return nil, nil
	}
	// A trailing combinator has no right-hand side
	if complex.Compounds[len(complex.Compounds)-1].Combinator != CombinatorNone {
		last := complex.Compounds[len(complex.Compounds)-1].Combinator
		if last != CombinatorDescendant {
			return nil, fmt.Errorf("selector ends with a combinator")
		}
		complex.Compounds[len(complex.Compounds)-1].Combinator = CombinatorNone
	}
	return complex, nil
}

func (p *Parser) parseCompoundSelector() (*CompoundSelector, error) {
	compound := &CompoundSelector{}
	hasContent := false

	// Type or universal selector comes first in a compound
	tok := p.current()
	if tok.Type == TokenIdent {
		compound.TypeSelector = &TypeSelector{Name: strings.ToLower(tok.Value)}
		p.consume()
		hasContent = true
	} else if tok.Type == TokenDelim && tok.Delim == '*' {
		compound.TypeSelector = &TypeSelector{Name: "*"}
		p.consume()
		hasContent = true
	}

	for {
		tok := p.current()
		switch {
		case tok.Type == TokenHash:
			if tok.Value == "" {
				return nil, fmt.Errorf("expected identifier after '#'")
			}
			compound.IDSelectors = append(compound.IDSelectors, tok.Value)
			p.consume()
			hasContent = true

		case tok.Type == TokenDelim && tok.Delim == '.':
			p.consume()
			ident := p.current()
			if ident.Type != TokenIdent {
				return nil, fmt.Errorf("expected identifier after '.'")
			}
			compound.ClassSelectors = append(compound.ClassSelectors, ident.Value)
			p.consume()
			hasContent = true

		case tok.Type == TokenOpenBracket:
			attr, err := p.parseAttributeSelector()
			if err != nil {
				return nil, err
			}
			compound.AttrMatchers = append(compound.AttrMatchers, attr)
			hasContent = true

		case tok.Type == TokenColon:
			pc, err := p.parsePseudoClass()
			if err != nil {
				return nil, err
			}
			compound.PseudoClasses = append(compound.PseudoClasses, pc)
			hasContent = true

		default:
			if !hasContent {
				return nil, nil
			}
			return compound, nil
		}
	}
}

func (p *Parser) parseAttributeSelector() (*AttributeMatcher, error) {
	p.consume() // [
	p.skipWhitespace()

	nameTok := p.current()
	if nameTok.Type != TokenIdent {
		return nil, fmt.Errorf("expected attribute name")
	}
	p.consume()

	attr := &AttributeMatcher{Name: strings.ToLower(nameTok.Value)}

	p.skipWhitespace()

	tok := p.current()
	if tok.Type == TokenCloseBracket {
		p.consume()
		attr.Operator = AttrExists
		return attr, nil
	}

	if tok.Type != TokenDelim {
		return nil, fmt.Errorf("expected attribute operator or ']'")
	}
	switch tok.Delim {
	case '=':
		attr.Operator = AttrEquals
		p.consume()
	case '~', '|', '^', '$', '*':
		switch tok.Delim {
		case '~':
			attr.Operator = AttrIncludes
		case '|':
			attr.Operator = AttrDashMatch
		case '^':
			attr.Operator = AttrPrefix
		case '$':
			attr.Operator = AttrSuffix
		case '*':
			attr.Operator = AttrSubstring
		}
		p.consume()
		eq := p.current()
		if eq.Type != TokenDelim || eq.Delim != '=' {
			return nil, fmt.Errorf("expected '=' after attribute operator")
		}
		p.consume()
	default:
		return nil, fmt.Errorf("unexpected character %q in attribute selector", tok.Delim)
	}

	p.skipWhitespace()

	valueTok := p.current()
	switch valueTok.Type {
	case TokenString, TokenIdent:
		attr.Value = valueTok.Value
		p.consume()
	default:
		return nil, fmt.Errorf("expected attribute value")
	}

	p.skipWhitespace()

	// Optional case-insensitivity flag: [attr=value i]
	if flag := p.current(); flag.Type == TokenIdent && strings.EqualFold(flag.Value, "i") {
		attr.CaseInsensitive = true
		p.consume()
		p.skipWhitespace()
	}

	if p.current().Type != TokenCloseBracket {
		return nil, fmt.Errorf("expected ']' to close attribute selector")
	}
	p.consume()

	return attr, nil
}

func (p *Parser) parsePseudoClass() (*PseudoClassSelector, error) {
	p.consume() // :

	// Pseudo-elements (::before etc.) have no meaning without rendering
	if p.current().Type == TokenColon {
		return nil, fmt.Errorf("pseudo-elements are not supported")
	}

	nameTok := p.current()
	if nameTok.Type != TokenIdent {
		return nil, fmt.Errorf("expected pseudo-class name")
	}
	p.consume()

	pc := &PseudoClassSelector{Name: strings.ToLower(nameTok.Value)}

	if p.current().Type == TokenOpenParen {
		p.consume()
		arg, err := p.collectParenArgument()
		if err != nil {
			return nil, err
		}
		pc.Argument = strings.TrimSpace(arg)
	}

	switch pc.Name {
	case "not":
		if pc.Argument == "" {
			return nil, fmt.Errorf(":not() requires a selector argument")
		}
		inner, err := Parse(pc.Argument)
		if err != nil {
			return nil, fmt.Errorf(":not(%s): %w", pc.Argument, err)
		}
		pc.Inner = inner
	case "nth-child", "nth-last-child", "nth-of-type":
		if pc.Argument == "" {
			return nil, fmt.Errorf(":%s() requires an argument", pc.Name)
		}
		if _, _, err := parseAnPlusB(pc.Argument); err != nil {
			return nil, err
		}
	case "first-child", "last-child", "only-child", "empty", "root",
		"first-of-type", "last-of-type", "only-of-type":
		if pc.Argument != "" {
			return nil, fmt.Errorf(":%s takes no argument", pc.Name)
		}
	default:
		return nil, fmt.Errorf("unsupported pseudo-class :%s", pc.Name)
	}

	return pc, nil
}

// collectParenArgument reads tokens up to the matching close paren and
// reconstructs their text.
func (p *Parser) collectParenArgument() (string, error) {
	var sb strings.Builder
	depth := 1
	for {
		tok := p.current()
		switch tok.Type {
		case TokenEOF:
			return "", fmt.Errorf("unclosed '(' in pseudo-class")
		case TokenOpenParen:
			depth++
		case TokenCloseParen:
			depth--
			if depth == 0 {
				p.consume()
				return sb.String(), nil
			}
		}
		sb.WriteString(tokenText(tok))
		p.consume()
	}
}

func tokenText(tok Token) string {
	switch tok.Type {
	case TokenIdent:
		return tok.Value
	case TokenHash:
		return "#" + tok.Value
	case TokenString:
		return "\"" + tok.Value + "\""
	case TokenWhitespace:
		return " "
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenOpenBracket:
		return "["
	case TokenCloseBracket:
		return "]"
	case TokenOpenParen:
		return "("
	case TokenCloseParen:
		return ")"
	case TokenDelim:
		return string(tok.Delim)
	}
	return ""
}
