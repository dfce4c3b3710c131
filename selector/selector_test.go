package selector

import (
	"testing"

	"github.com/hollowdom/hollowdom/dom"
)

func parseHelper(t *testing.T, text string) *Selector {
	t.Helper()
	sel, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	return sel
}

func TestParse_SimpleSelectors(t *testing.T) {
	sel := parseHelper(t, "div")
	if len(sel.Complex) != 1 || len(sel.Complex[0].Compounds) != 1 {
		t.Fatal("Expected one compound")
	}
	compound := sel.Complex[0].Compounds[0]
	if compound.TypeSelector == nil || compound.TypeSelector.Name != "div" {
		t.Error("Expected type selector 'div'")
	}

	sel = parseHelper(t, "#main")
	if got := sel.Complex[0].Compounds[0].IDSelectors; len(got) != 1 || got[0] != "main" {
		t.Errorf("Expected id selector 'main', got %v", got)
	}

	sel = parseHelper(t, ".btn.primary")
	if got := sel.Complex[0].Compounds[0].ClassSelectors; len(got) != 2 {
		t.Errorf("Expected 2 class selectors, got %v", got)
	}
}

func TestParse_Combinators(t *testing.T) {
	tests := []struct {
		input string
		want  CombinatorType
	}{
		{"div p", CombinatorDescendant},
		{"div > p", CombinatorChild},
		{"div + p", CombinatorNextSibling},
		{"div ~ p", CombinatorSubsequentSibling},
	}
	for _, tt := range tests {
		sel := parseHelper(t, tt.input)
		compounds := sel.Complex[0].Compounds
		if len(compounds) != 2 {
			t.Fatalf("%q: expected 2 compounds, got %d", tt.input, len(compounds))
		}
		if compounds[0].Combinator != tt.want {
			t.Errorf("%q: expected combinator %v, got %v", tt.input, tt.want, compounds[0].Combinator)
		}
	}
}

func TestParse_SelectorList(t *testing.T) {
	sel := parseHelper(t, "h1, h2 , h3")
	if len(sel.Complex) != 3 {
		t.Errorf("Expected 3 complex selectors, got %d", len(sel.Complex))
	}
}

func TestParse_AttributeSelectors(t *testing.T) {
	tests := []struct {
		input string
		op    AttributeOperator
		value string
	}{
		{"[disabled]", AttrExists, ""},
		{`[type="text"]`, AttrEquals, "text"},
		{"[type=text]", AttrEquals, "text"},
		{"[class~=primary]", AttrIncludes, "primary"},
		{"[lang|=en]", AttrDashMatch, "en"},
		{"[href^=https]", AttrPrefix, "https"},
		{"[src$=png]", AttrSuffix, "png"},
		{"[title*=hello]", AttrSubstring, "hello"},
	}
	for _, tt := range tests {
		sel := parseHelper(t, tt.input)
		matchers := sel.Complex[0].Compounds[0].AttrMatchers
		if len(matchers) != 1 {
			t.Fatalf("%q: expected 1 matcher, got %d", tt.input, len(matchers))
		}
		if matchers[0].Operator != tt.op {
			t.Errorf("%q: expected operator %v, got %v", tt.input, tt.op, matchers[0].Operator)
		}
		if matchers[0].Value != tt.value {
			t.Errorf("%q: expected value %q, got %q", tt.input, tt.value, matchers[0].Value)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"..double",
		"[unclosed",
		"[=noname]",
		"div >",
		":unknown-pseudo",
		":not()",
		":nth-child()",
		":nth-child(bogus!)",
		"::before",
		"#",
	}
	for _, input := range invalid {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}

func TestParseAnPlusB(t *testing.T) {
	tests := []struct {
		input string
		a, b  int
	}{
		{"odd", 2, 1},
		{"even", 2, 0},
		{"3", 0, 3},
		{"2n", 2, 0},
		{"2n+1", 2, 1},
		{"n", 1, 0},
		{"-n+3", -1, 3},
		{"+n-2", 1, -2},
	}
	for _, tt := range tests {
		a, b, err := parseAnPlusB(tt.input)
		if err != nil {
			t.Errorf("parseAnPlusB(%q) failed: %v", tt.input, err)
			continue
		}
		if a != tt.a || b != tt.b {
			t.Errorf("parseAnPlusB(%q): expected (%d,%d), got (%d,%d)", tt.input, tt.a, tt.b, a, b)
		}
	}

	for _, input := range []string{"", "x", "2m+1", "n++1"} {
		if _, _, err := parseAnPlusB(input); err == nil {
			t.Errorf("parseAnPlusB(%q) should fail", input)
		}
	}
}

// buildFixture constructs:
//
//	<html><body class="page">
//	  <ul id="list">
//	    <li class="item first">one</li>
//	    <li class="item">two</li>
//	    <li class="item last" data-state="done">three</li>
//	  </ul>
//	  <p lang="en-US">para</p>
//	</body></html>
func buildFixture(t *testing.T) (*dom.Document, []*dom.Element) {
	t.Helper()
	doc := dom.NewDocument()
	html := doc.CreateElement("html")
	doc.AsNode().AppendChild(html.AsNode())
	body := doc.CreateElement("body")
	body.SetAttribute("class", "page")
	html.AsNode().AppendChild(body.AsNode())

	list := doc.CreateElement("ul")
	list.SetAttribute("id", "list")
	body.AsNode().AppendChild(list.AsNode())

	classes := []string{"item first", "item", "item last"}
	texts := []string{"one", "two", "three"}
	items := make([]*dom.Element, 3)
	for i := range classes {
		li := doc.CreateElement("li")
		li.SetAttribute("class", classes[i])
		li.AsNode().AppendChild(doc.CreateTextNode(texts[i]))
		list.AsNode().AppendChild(li.AsNode())
		items[i] = li
	}
	items[2].SetAttribute("data-state", "done")

	p := doc.CreateElement("p")
	p.SetAttribute("lang", "en-US")
	body.AsNode().AppendChild(p.AsNode())

	return doc, items
}

func TestMatch_Table(t *testing.T) {
	doc, items := buildFixture(t)

	tests := []struct {
		selector string
		count    int
	}{
		{"li", 3},
		{"*", 7},
		{"#list", 1},
		{".item", 3},
		{".item.first", 1},
		{"ul li", 3},
		{"ul > li", 3},
		{"body > li", 0},
		{"li + li", 2},
		{"li ~ li", 2},
		{".first ~ li", 2},
		{"[data-state]", 1},
		{"[data-state=done]", 1},
		{"[data-state=DONE i]", 1},
		{"[class~=last]", 1},
		{"[lang|=en]", 1},
		{"li:first-child", 1},
		{"li:last-child", 1},
		{"li:nth-child(2)", 1},
		{"li:nth-child(odd)", 2},
		{"li:nth-child(2n+1)", 2},
		{"li:not(.first)", 2},
		{"li:not(.item)", 0},
		{"p:only-of-type", 1},
		{"html:root", 1},
		{"li:root", 0},
		{"h1, li", 3},
	}

	for _, tt := range tests {
		results, err := doc.QuerySelectorAll(tt.selector)
		if err != nil {
			t.Errorf("QuerySelectorAll(%q) failed: %v", tt.selector, err)
			continue
		}
		if len(results) != tt.count {
			t.Errorf("QuerySelectorAll(%q): expected %d matches, got %d", tt.selector, tt.count, len(results))
		}
	}

	_ = items
}

func TestMatch_DocumentOrderAndFirst(t *testing.T) {
	doc, items := buildFixture(t)

	results, err := doc.QuerySelectorAll(".item")
	if err != nil {
		t.Fatal(err)
	}
	for i := range items {
		if results[i] != items[i] {
			t.Errorf("Position %d: results out of document order", i)
		}
	}

	first, err := doc.QuerySelector(".item")
	if err != nil {
		t.Fatal(err)
	}
	if first != items[0] {
		t.Error("QuerySelector should return the first match")
	}
}

func TestMatch_EmptyPseudo(t *testing.T) {
	doc := dom.NewDocument()
	html := doc.CreateElement("html")
	doc.AsNode().AppendChild(html.AsNode())
	empty := doc.CreateElement("div")
	html.AsNode().AppendChild(empty.AsNode())
	full := doc.CreateElement("div")
	full.AsNode().AppendChild(doc.CreateTextNode("x"))
	html.AsNode().AppendChild(full.AsNode())

	results, err := doc.QuerySelectorAll("div:empty")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0] != empty {
		t.Errorf("Expected only the empty div, got %d matches", len(results))
	}
}

func TestEngine_RegisteredAsDefault(t *testing.T) {
	// Importing this package must be enough for dom queries to work.
	doc := dom.NewDocument()
	html := doc.CreateElement("html")
	doc.AsNode().AppendChild(html.AsNode())

	if _, err := doc.QuerySelector("div"); err != nil {
		t.Errorf("Default engine should be registered by init: %v", err)
	}
}
