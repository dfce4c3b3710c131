// Package selector implements a CSS selector engine for the dom package:
// a tokenizer, a parser producing a small AST, and a right-to-left matcher.
// Importing the package registers it as the default engine.
package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hollowdom/hollowdom/dom"
)

// Engine compiles selector text into matchers. It satisfies
// dom.SelectorEngine and is registered as the default engine from init.
type Engine struct{}

func init() {
	dom.RegisterSelectorEngine(Engine{})
}

// Compile parses selector text into a matcher. Invalid text returns an error,
// which dom query operations surface as a SyntaxError.
func (Engine) Compile(text string) (dom.CompiledSelector, error) {
	sel, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return &Compiled{selector: sel}, nil
}

// Compiled is a parsed selector ready for matching.
type Compiled struct {
	selector *Selector
}

// Match reports whether the selector matches the element.
func (c *Compiled) Match(el *dom.Element) bool {
	return c.selector.Match(el)
}

// Match tests the selector list against an element; any member matching is a
// match.
func (s *Selector) Match(el *dom.Element) bool {
	for _, complex := range s.Complex {
		if complex.Match(el) {
			return true
		}
	}
	return false
}

// Match evaluates the complex selector right to left: the rightmost compound
// must match the subject element, then each combinator walks outward.
func (cs *ComplexSelector) Match(el *dom.Element) bool {
	if len(cs.Compounds) == 0 {
		return false
	}

	i := len(cs.Compounds) - 1
	current := el

	if !cs.Compounds[i].Match(current) {
		return false
	}

	for i > 0 {
		combinator := cs.Compounds[i-1].Combinator
		i--

		switch combinator {
		case CombinatorDescendant:
			matched := false
			for ancestor := current.AsNode().ParentElement(); ancestor != nil; ancestor = ancestor.AsNode().ParentElement() {
				if cs.Compounds[i].Match(ancestor) {
					current = ancestor
					matched = true
					break
				}
			}
			if !matched {
				return false
			}

		case CombinatorChild:
			parent := current.AsNode().ParentElement()
			if parent == nil || !cs.Compounds[i].Match(parent) {
				return false
			}
			current = parent

		case CombinatorNextSibling:
			prev := current.PreviousElementSibling()
			if prev == nil || !cs.Compounds[i].Match(prev) {
				return false
			}
			current = prev

		case CombinatorSubsequentSibling:
			matched := false
			for prev := current.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
				if cs.Compounds[i].Match(prev) {
					current = prev
					matched = true
					break
				}
			}
			if !matched {
				return false
			}

		default:
			return false
		}
	}

	return true
}

// Match tests every simple selector in the compound against one element.
func (c *CompoundSelector) Match(el *dom.Element) bool {
	if c.TypeSelector != nil && !matchTypeSelector(c.TypeSelector, el) {
		return false
	}

	for _, id := range c.IDSelectors {
		if el.Id() != id {
			return false
		}
	}

	for _, class := range c.ClassSelectors {
		if !el.HasClass(class) {
			return false
		}
	}

	for _, attr := range c.AttrMatchers {
		if !matchAttributeSelector(attr, el) {
			return false
		}
	}

	for _, pc := range c.PseudoClasses {
		if !matchPseudoClass(pc, el) {
			return false
		}
	}

	return true
}

func matchTypeSelector(ts *TypeSelector, el *dom.Element) bool {
	if ts.Name == "*" {
		return true
	}
	return strings.EqualFold(el.LocalName(), ts.Name)
}

func matchAttributeSelector(attr *AttributeMatcher, el *dom.Element) bool {
	if !el.HasAttribute(attr.Name) {
		return false
	}

	if attr.Operator == AttrExists {
		return true
	}

	attrValue := el.GetAttribute(attr.Name)
	matchValue := attr.Value

	if attr.CaseInsensitive {
		attrValue = strings.ToLower(attrValue)
		matchValue = strings.ToLower(matchValue)
	}

	switch attr.Operator {
	case AttrEquals:
		return attrValue == matchValue
	case AttrIncludes:
		for _, word := range strings.Fields(attrValue) {
			if word == matchValue {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return attrValue == matchValue || strings.HasPrefix(attrValue, matchValue+"-")
	case AttrPrefix:
		return matchValue != "" && strings.HasPrefix(attrValue, matchValue)
	case AttrSuffix:
		return matchValue != "" && strings.HasSuffix(attrValue, matchValue)
	case AttrSubstring:
		return matchValue != "" && strings.Contains(attrValue, matchValue)
	}

	return false
}

func matchPseudoClass(pc *PseudoClassSelector, el *dom.Element) bool {
	switch pc.Name {
	case "root":
		parent := el.AsNode().ParentNode()
		return parent != nil && parent.NodeType() == dom.DocumentNode

	case "empty":
		return !el.AsNode().HasChildNodes()

	case "first-child":
		return isChild(el) && el.PreviousElementSibling() == nil

	case "last-child":
		return isChild(el) && el.NextElementSibling() == nil

	case "only-child":
		return isChild(el) && el.PreviousElementSibling() == nil && el.NextElementSibling() == nil

	case "first-of-type":
		return previousOfType(el) == nil

	case "last-of-type":
		return nextOfType(el) == nil

	case "only-of-type":
		return previousOfType(el) == nil && nextOfType(el) == nil

	case "nth-child":
		return matchNth(pc.Argument, elementIndex(el, false))

	case "nth-last-child":
		return matchNth(pc.Argument, elementIndexFromLast(el))

	case "nth-of-type":
		return matchNth(pc.Argument, elementIndex(el, true))

	case "not":
		return pc.Inner != nil && !pc.Inner.Match(el)
	}

	return false
}

func isChild(el *dom.Element) bool {
	return el.AsNode().ParentNode() != nil
}

func previousOfType(el *dom.Element) *dom.Element {
	for prev := el.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
		if prev.LocalName() == el.LocalName() {
			return prev
		}
	}
	return nil
}

func nextOfType(el *dom.Element) *dom.Element {
	for next := el.NextElementSibling(); next != nil; next = next.NextElementSibling() {
		if next.LocalName() == el.LocalName() {
			return next
		}
	}
	return nil
}

// elementIndex returns the 1-based index of el among its element siblings,
// optionally counting only siblings of the same type.
func elementIndex(el *dom.Element, ofType bool) int {
	index := 1
	for prev := el.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
		if !ofType || prev.LocalName() == el.LocalName() {
			index++
		}
	}
	return index
}

func elementIndexFromLast(el *dom.Element) int {
	index := 1
	for next := el.NextElementSibling(); next != nil; next = next.NextElementSibling() {
		index++
	}
	return index
}

// matchNth tests a 1-based index against an An+B expression. The argument was
// validated at parse time, so the error path here is unreachable in practice.
func matchNth(arg string, index int) bool {
	a, b, err := parseAnPlusB(arg)
	if err != nil {
		return false
	}
	if a == 0 {
		return index == b
	}
	// index = a*k + b for some k >= 0
	diff := index - b
	if a > 0 {
		return diff >= 0 && diff%a == 0
	}
	return diff <= 0 && diff%a == 0
}

// parseAnPlusB parses the An+B microsyntax: "odd", "even", "3", "2n", "2n+1",
// "-n+3", "n".
func parseAnPlusB(s string) (a, b int, err error) {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))

	switch s {
	case "odd":
		return 2, 1, nil
	case "even":
		return 2, 0, nil
	case "":
		return 0, 0, fmt.Errorf("empty An+B expression")
	}

	nIdx := strings.IndexByte(s, 'n')
	if nIdx < 0 {
		b, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid An+B expression %q", s)
		}
		return 0, b, nil
	}

	aPart := s[:nIdx]
	switch aPart {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		a, err = strconv.Atoi(aPart)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid An+B expression %q", s)
		}
	}

	bPart := s[nIdx+1:]
	if bPart == "" {
		return a, 0, nil
	}
	if bPart[0] != '+' && bPart[0] != '-' {
		return 0, 0, fmt.Errorf("invalid An+B expression %q", s)
	}
	b, err = strconv.Atoi(bPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid An+B expression %q", s)
	}
	return a, b, nil
}
