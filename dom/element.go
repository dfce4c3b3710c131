package dom

import (
	"strings"
)

// Element represents an element in the DOM tree.
// Element inherits from Node and provides element-specific properties and methods.
type Element Node

// AsNode returns the underlying Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// NodeType returns ElementNode (1).
func (e *Element) NodeType() NodeType {
	return ElementNode
}

// TagName returns the tag name in uppercase (for HTML elements).
func (e *Element) TagName() string {
	if e.AsNode().elementData != nil {
		return e.AsNode().elementData.tagName
	}
	return strings.ToUpper(e.AsNode().nodeName)
}

// LocalName returns the local name of the element (lowercase for HTML).
func (e *Element) LocalName() string {
	if e.AsNode().elementData != nil {
		return e.AsNode().elementData.localName
	}
	return strings.ToLower(e.AsNode().nodeName)
}

// NamespaceURI returns the namespace URI of the element.
func (e *Element) NamespaceURI() string {
	if e.AsNode().elementData != nil {
		return e.AsNode().elementData.namespaceURI
	}
	return ""
}

// Prefix returns the namespace prefix of the element.
func (e *Element) Prefix() string {
	if e.AsNode().elementData != nil {
		return e.AsNode().elementData.prefix
	}
	return ""
}

// isHTMLElementInHTMLDocument returns true if this element is an HTML element
// in an HTML document. This is used for case-insensitive attribute handling.
func (e *Element) isHTMLElementInHTMLDocument() bool {
	if e.NamespaceURI() != HTMLNamespace {
		return false
	}
	doc := e.AsNode().ownerDoc
	if doc == nil {
		return false
	}
	return doc.IsHTML()
}

// Id returns the id attribute value.
func (e *Element) Id() string {
	return e.GetAttribute("id")
}

// SetId sets the id attribute value.
func (e *Element) SetId(id string) {
	e.SetAttribute("id", id)
}

// ClassName returns the class attribute value.
func (e *Element) ClassName() string {
	return e.GetAttribute("class")
}

// SetClassName sets the class attribute value.
func (e *Element) SetClassName(className string) {
	e.SetAttribute("class", className)
}

// HasClass returns true if the class attribute contains the given token.
func (e *Element) HasClass(class string) bool {
	for _, token := range strings.Fields(e.ClassName()) {
		if token == class {
			return true
		}
	}
	return false
}

// Attributes returns the element's AttributeStore, or nil if the element has
// never had an attribute. Zero-attribute elements carry no store at all.
func (e *Element) Attributes() *AttributeStore {
	if e.AsNode().elementData == nil {
		return nil
	}
	return e.AsNode().elementData.attributes
}

// attributeStore returns the store, allocating it on first use.
func (e *Element) attributeStore() *AttributeStore {
	data := e.AsNode().elementData
	if data == nil {
		data = &elementData{}
		e.AsNode().elementData = data
	}
	if data.attributes == nil {
		data.attributes = newAttributeStore(e)
	}
	return data.attributes
}

// releaseAttributeStoreIfEmpty drops the store once the last attribute is
// removed, so long-lived attribute-free elements hold no empty container.
func (e *Element) releaseAttributeStoreIfEmpty() {
	data := e.AsNode().elementData
	if data != nil && data.attributes != nil && data.attributes.Length() == 0 {
		data.attributes = nil
	}
}

// normalizeAttributeName lowercases the name for HTML elements in HTML
// documents; other namespaces keep XML case sensitivity.
func (e *Element) normalizeAttributeName(name string) string {
	if e.isHTMLElementInHTMLDocument() {
		return strings.ToLower(name)
	}
	return name
}

// GetAttribute returns the value of the attribute with the given name, or ""
// if absent.
func (e *Element) GetAttribute(name string) string {
	store := e.Attributes()
	if store == nil {
		return ""
	}
	attr := store.Get(e.normalizeAttributeName(name))
	if attr == nil {
		return ""
	}
	return attr.value
}

// GetAttributeNS returns the value of the attribute with the given namespace and local name.
func (e *Element) GetAttributeNS(namespaceURI, localName string) string {
	store := e.Attributes()
	if store == nil {
		return ""
	}
	attr := store.GetNS(namespaceURI, localName)
	if attr == nil {
		return ""
	}
	return attr.value
}

// SetAttribute sets the value of the attribute with the given name.
// For HTML elements in an HTML document, the name is lowercased.
func (e *Element) SetAttribute(name, value string) {
	e.SetAttributeWithError(name, value)
}

// SetAttributeWithError sets the value of the attribute with the given name.
// Returns an error if the name is invalid.
func (e *Element) SetAttributeWithError(name, value string) error {
	if !IsValidAttributeLocalName(name) {
		return ErrInvalidCharacter("The string contains invalid characters.")
	}
	e.attributeStore().Set(e.normalizeAttributeName(name), value)
	return nil
}

// SetAttributeNS sets the value of the attribute with the given namespace.
func (e *Element) SetAttributeNS(namespaceURI, qualifiedName, value string) {
	e.SetAttributeNSWithError(namespaceURI, qualifiedName, value)
}

// SetAttributeNSWithError sets the value of the attribute with the given namespace.
// Returns an error if the qualified name or namespace is invalid.
func (e *Element) SetAttributeNSWithError(namespaceURI, qualifiedName, value string) error {
	if qualifiedName == "" {
		return ErrInvalidCharacter("The string contains invalid characters.")
	}

	prefix, localName := parseQualifiedName(qualifiedName)
	if prefix != "" && namespaceURI == "" {
		return ErrNamespace("A prefixed qualified name requires a namespace.")
	}

	store := e.attributeStore()
	if existing := store.GetNS(namespaceURI, localName); existing != nil {
		// Update the value in place, keeping the original prefix
		existing.value = value
		store.notifyMutation()
		return nil
	}

	store.SetAttr(&Attr{
		namespaceURI: namespaceURI,
		prefix:       prefix,
		localName:    localName,
		name:         qualifiedName,
		value:        value,
	})
	return nil
}

// HasAttribute returns true if the element has the given attribute.
func (e *Element) HasAttribute(name string) bool {
	store := e.Attributes()
	return store != nil && store.Has(e.normalizeAttributeName(name))
}

// HasAttributeNS returns true if the element has the attribute with the given namespace.
func (e *Element) HasAttributeNS(namespaceURI, localName string) bool {
	store := e.Attributes()
	return store != nil && store.HasNS(namespaceURI, localName)
}

// HasAttributes returns true if the element has any attributes.
func (e *Element) HasAttributes() bool {
	store := e.Attributes()
	return store != nil && store.Length() > 0
}

// RemoveAttribute removes the attribute with the given name.
func (e *Element) RemoveAttribute(name string) {
	store := e.Attributes()
	if store == nil {
		return
	}
	store.Remove(e.normalizeAttributeName(name))
	e.releaseAttributeStoreIfEmpty()
}

// RemoveAttributeNS removes the attribute with the given namespace.
func (e *Element) RemoveAttributeNS(namespaceURI, localName string) {
	store := e.Attributes()
	if store == nil {
		return
	}
	store.RemoveNS(namespaceURI, localName)
	e.releaseAttributeStoreIfEmpty()
}

// ToggleAttribute toggles the presence of an attribute.
// If force is provided, it forces add (true) or remove (false).
// Returns true if the attribute is present after the operation.
func (e *Element) ToggleAttribute(name string, force ...bool) bool {
	name = e.normalizeAttributeName(name)
	has := e.HasAttribute(name)

	if len(force) > 0 {
		if force[0] {
			if !has {
				e.SetAttribute(name, "")
			}
			return true
		}
		if has {
			e.RemoveAttribute(name)
		}
		return false
	}

	if has {
		e.RemoveAttribute(name)
		return false
	}
	e.SetAttribute(name, "")
	return true
}

// IsValidAttributeLocalName checks if a string is a valid attribute local
// name per DOM spec: non-empty and free of ASCII whitespace, NUL, '/', '=',
// and '>'.
func IsValidAttributeLocalName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for _, r := range name {
		if r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r' {
			return false
		}
		if r == '\x00' || r == '/' || r == '=' || r == '>' {
			return false
		}
	}
	return true
}

// parseQualifiedName splits a qualified name into prefix and local name.
func parseQualifiedName(qualifiedName string) (prefix, localName string) {
	if idx := strings.Index(qualifiedName, ":"); idx >= 0 {
		return qualifiedName[:idx], qualifiedName[idx+1:]
	}
	return "", qualifiedName
}

// Children returns the child elements in order.
func (e *Element) Children() []*Element {
	var children []*Element
	for child := e.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			children = append(children, (*Element)(child))
		}
	}
	return children
}

// FirstElementChild returns the first child element.
func (e *Element) FirstElementChild() *Element {
	for child := e.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			return (*Element)(child)
		}
	}
	return nil
}

// LastElementChild returns the last child element.
func (e *Element) LastElementChild() *Element {
	for child := e.AsNode().lastChild; child != nil; child = child.prevSibling {
		if child.nodeType == ElementNode {
			return (*Element)(child)
		}
	}
	return nil
}

// PreviousElementSibling returns the previous sibling element.
func (e *Element) PreviousElementSibling() *Element {
	for sibling := e.AsNode().prevSibling; sibling != nil; sibling = sibling.prevSibling {
		if sibling.nodeType == ElementNode {
			return (*Element)(sibling)
		}
	}
	return nil
}

// NextElementSibling returns the next sibling element.
func (e *Element) NextElementSibling() *Element {
	for sibling := e.AsNode().nextSibling; sibling != nil; sibling = sibling.nextSibling {
		if sibling.nodeType == ElementNode {
			return (*Element)(sibling)
		}
	}
	return nil
}

// QuerySelector returns the first descendant element matching the selector in
// document order, or nil. Invalid selector text returns a SyntaxError.
func (e *Element) QuerySelector(selector string) (*Element, error) {
	return e.AsNode().querySelector(selector)
}

// QuerySelectorAll returns all descendant elements matching the selector in
// pre-order document order. Invalid selector text returns a SyntaxError.
func (e *Element) QuerySelectorAll(selector string) ([]*Element, error) {
	return e.AsNode().querySelectorAll(selector)
}

// Matches returns true if the element itself matches the given selector.
func (e *Element) Matches(selector string) (bool, error) {
	n := e.AsNode()
	if c := n.queries; c != nil && c.matches != nil {
		if cached, ok := c.matches[selector]; ok {
			return cached, nil
		}
	}

	compiled, err := n.compileSelector(selector)
	if err != nil {
		return false, err
	}
	matched := compiled.Match(e)

	c := n.queryCacheFor()
	if c.matches == nil {
		c.matches = make(map[string]bool)
	}
	c.matches[selector] = matched

	return matched, nil
}

// Closest returns the closest inclusive ancestor element matching the
// selector, or nil.
func (e *Element) Closest(selector string) (*Element, error) {
	n := e.AsNode()
	if c := n.queries; c != nil && c.closest != nil {
		if cached, ok := c.closest[selector]; ok {
			return cached, nil
		}
	}

	compiled, err := n.compileSelector(selector)
	if err != nil {
		return nil, err
	}

	var found *Element
	for current := e; current != nil; {
		if compiled.Match(current) {
			found = current
			break
		}
		parent := current.AsNode().parentNode
		if parent == nil || parent.nodeType != ElementNode {
			break
		}
		current = (*Element)(parent)
	}

	c := n.queryCacheFor()
	if c.closest == nil {
		c.closest = make(map[string]*Element)
	}
	c.closest[selector] = found

	return found, nil
}

// GetElementsByTagName returns the descendant elements with the given tag
// name ("*" matches every element), in document order.
func (e *Element) GetElementsByTagName(tagName string) []*Element {
	var results []*Element
	collectByTagName(e.AsNode(), strings.ToLower(tagName), &results)
	return results
}

// GetElementsByClassName returns the descendant elements carrying every class
// in the whitespace-separated classNames list, in document order.
func (e *Element) GetElementsByClassName(classNames string) []*Element {
	var results []*Element
	collectByClassName(e.AsNode(), strings.Fields(classNames), &results)
	return results
}

func collectByTagName(root *Node, lowerTag string, results *[]*Element) {
	for child := root.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			el := (*Element)(child)
			if lowerTag == "*" || el.LocalName() == lowerTag {
				*results = append(*results, el)
			}
		}
		collectByTagName(child, lowerTag, results)
	}
}

func collectByClassName(root *Node, classes []string, results *[]*Element) {
	if len(classes) == 0 {
		return
	}
	for child := root.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			el := (*Element)(child)
			all := true
			for _, class := range classes {
				if !el.HasClass(class) {
					all = false
					break
				}
			}
			if all {
				*results = append(*results, el)
			}
		}
		collectByClassName(child, classes, results)
	}
}

// InnerHTML returns the serialized HTML content of the element.
func (e *Element) InnerHTML() string {
	var sb strings.Builder
	for child := e.AsNode().firstChild; child != nil; child = child.nextSibling {
		serializeNode(child, &sb)
	}
	return sb.String()
}

// OuterHTML returns the serialized HTML of the element including itself.
func (e *Element) OuterHTML() string {
	var sb strings.Builder
	serializeNode(e.AsNode(), &sb)
	return sb.String()
}

// Remove detaches the element from its parent, if any.
func (e *Element) Remove() {
	if parent := e.AsNode().parentNode; parent != nil {
		parent.RemoveChild(e.AsNode())
	}
}
