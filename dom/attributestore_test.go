package dom

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

func TestElement_SetGetAttribute(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	if el.Attributes() != nil {
		t.Error("Fresh element should have no attribute store")
	}

	el.SetAttribute("data-x", "1")
	if got := el.GetAttribute("data-x"); got != "1" {
		t.Errorf("Expected '1', got '%s'", got)
	}
	if !el.HasAttribute("data-x") {
		t.Error("HasAttribute should be true after set")
	}
	if el.GetAttribute("missing") != "" {
		t.Error("Missing attribute should read as empty")
	}
}

func TestElement_AttributeNameLowercased(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	el.SetAttribute("DATA-Test", "v")
	if !el.HasAttribute("data-test") {
		t.Error("HTML attribute names should be lowercased")
	}
	if got := el.GetAttribute("Data-TEST"); got != "v" {
		t.Errorf("Case-insensitive lookup failed, got '%s'", got)
	}
}

func TestElement_SetAttribute_InvalidName(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	for _, name := range []string{"", "a b", "a=b", "a>b", "a/b"} {
		if err := el.SetAttributeWithError(name, "v"); err == nil {
			t.Errorf("Expected error for attribute name %q", name)
		}
	}
}

func TestElement_RemoveAttribute_ReleasesStore(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	el.SetAttribute("a", "1")
	if el.Attributes() == nil {
		t.Fatal("Store should exist after first write")
	}
	el.RemoveAttribute("a")
	if el.Attributes() != nil {
		t.Error("Store should be released when the last attribute is removed")
	}

	// Removing from an element with no store is a no-op
	el.RemoveAttribute("a")
}

func TestAttributeStore_InsertionOrder(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	el.SetAttribute("c", "3")
	el.SetAttribute("a", "1")
	el.SetAttribute("b", "2")
	// Overwriting keeps the original position
	el.SetAttribute("c", "30")

	want := []string{"c", "a", "b"}
	got := el.Attributes().Names()
	if len(got) != len(want) {
		t.Fatalf("Expected %d names, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if el.GetAttribute("c") != "30" {
		t.Error("Overwrite should update the value")
	}
}

func TestAttributeStore_NamespacedViews(t *testing.T) {
	const svgNS = "http://www.w3.org/2000/svg"
	const xlinkNS = "http://www.w3.org/1999/xlink"

	doc := NewDocument()
	el := doc.CreateElementNS(svgNS, "svg:use")

	el.SetAttributeNS(xlinkNS, "xlink:href", "#icon")
	el.SetAttribute("href", "plain")

	if got := el.GetAttributeNS(xlinkNS, "href"); got != "#icon" {
		t.Errorf("Namespaced lookup: expected '#icon', got '%s'", got)
	}
	if got := el.GetAttributeNS("", "href"); got != "plain" {
		t.Errorf("No-namespace lookup: expected 'plain', got '%s'", got)
	}

	// Two attributes share the local name across namespaces
	bucket := el.Attributes().ByLocalName("href")
	if len(bucket) != 2 {
		t.Fatalf("Expected 2 attributes with local name 'href', got %d", len(bucket))
	}

	el.RemoveAttributeNS(xlinkNS, "href")
	if el.HasAttributeNS(xlinkNS, "href") {
		t.Error("Namespaced attribute should be removed")
	}
	if !el.HasAttribute("href") {
		t.Error("No-namespace attribute should survive")
	}
}

func TestAttributeStore_ViewsStayConsistent(t *testing.T) {
	gofakeit.Seed(11)

	doc := NewDocument()
	el := doc.CreateElement("div")

	names := make(map[string]string)
	for i := 0; i < 200; i++ {
		name := fmt.Sprintf("data-%s%d", gofakeit.LetterN(6), i%40)
		value := gofakeit.SentenceSimple()
		el.SetAttribute(name, value)
		names[name] = value
	}

	store := el.Attributes()
	if store.Length() != len(names) {
		t.Fatalf("Expected %d attributes, got %d", len(names), store.Length())
	}

	// Every qualified-name entry must be reachable through all three views
	for _, name := range store.Names() {
		attr := store.Get(name)
		if attr == nil {
			t.Fatalf("Name view lost %q", name)
		}
		if attr.Value() != names[name] {
			t.Errorf("Value mismatch for %q", name)
		}
		foundLocal := false
		for _, a := range store.ByLocalName(attr.LocalName()) {
			if a == attr {
				foundLocal = true
			}
		}
		if !foundLocal {
			t.Errorf("Local-name view lost %q", name)
		}
		foundNS := false
		for _, a := range store.ByNamespace(attr.NamespaceURI()) {
			if a == attr {
				foundNS = true
			}
		}
		if !foundNS {
			t.Errorf("Namespace view lost %q", name)
		}
	}

	// Delete half and re-verify
	removed := 0
	for name := range names {
		if removed%2 == 0 {
			el.RemoveAttribute(name)
			delete(names, name)
		}
		removed++
	}
	if store.Length() != len(names) {
		t.Fatalf("After removal expected %d attributes, got %d", len(names), store.Length())
	}
	for name := range names {
		if !el.HasAttribute(name) {
			t.Errorf("Surviving attribute %q lost", name)
		}
	}
}

func TestElement_ToggleAttribute(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("input")

	if !el.ToggleAttribute("disabled") {
		t.Error("First toggle should add and return true")
	}
	if el.ToggleAttribute("disabled") {
		t.Error("Second toggle should remove and return false")
	}
	if !el.ToggleAttribute("disabled", true) {
		t.Error("Forced toggle should add")
	}
	if !el.ToggleAttribute("disabled", true) {
		t.Error("Forced toggle on present attribute stays true")
	}
	if el.ToggleAttribute("disabled", false) {
		t.Error("Forced removal should return false")
	}
}
