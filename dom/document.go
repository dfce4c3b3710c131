package dom

import (
	"strings"
)

// Document represents the root of a DOM tree. It is the factory for every
// other node type and carries the document-scoped lookup caches.
type Document Node

// documentData holds data specific to Document nodes, including the
// document-scoped memoization caches for id and tag lookups. Both caches
// record misses as well as hits and are discarded wholesale on any tree
// mutation.
type documentData struct {
	url         string
	contentType string
	selEngine   SelectorEngine

	idCache  map[string]*Element   // id -> element (nil entry = cached miss)
	tagCache map[string][]*Element // lowercase tag -> elements in document order
}

// NewDocument creates a new empty HTML document.
func NewDocument() *Document {
	node := newNode(DocumentNode, "#document", nil)
	node.documentData = &documentData{
		url:         "about:blank",
		contentType: "text/html",
	}
	doc := (*Document)(node)
	node.ownerDoc = doc
	return doc
}

// AsNode returns the underlying Node.
func (d *Document) AsNode() *Node {
	return (*Node)(d)
}

// docData returns the document's data, allocating it if a Document was built
// by hand without going through NewDocument.
func (d *Document) docData() *documentData {
	if d.AsNode().documentData == nil {
		d.AsNode().documentData = &documentData{
			url:         "about:blank",
			contentType: "text/html",
		}
	}
	return d.AsNode().documentData
}

// invalidateDocumentCaches discards the document-scoped id and tag caches.
// Called on every mutation anywhere in the document, including detached
// subtrees owned by it.
func (d *Document) invalidateDocumentCaches() {
	data := d.AsNode().documentData
	if data == nil {
		return
	}
	data.idCache = nil
	data.tagCache = nil
}

// ClearCaches discards the document-scoped lookup caches and every per-node
// query cache in the tree. Used by window teardown; normal mutations
// invalidate incrementally instead.
func (d *Document) ClearCaches() {
	d.invalidateDocumentCaches()
	clearQueryCaches(d.AsNode())
}

func clearQueryCaches(node *Node) {
	node.queries = nil
	for child := node.firstChild; child != nil; child = child.nextSibling {
		clearQueryCaches(child)
	}
}

// URL returns the document's URL.
func (d *Document) URL() string {
	return d.docData().url
}

// SetURL sets the document's URL.
func (d *Document) SetURL(url string) {
	d.docData().url = url
}

// ContentType returns the document's content type.
func (d *Document) ContentType() string {
	return d.docData().contentType
}

// IsHTML returns true if this is an HTML document. Attribute names on HTML
// elements are lowercased only in HTML documents.
func (d *Document) IsHTML() bool {
	return d.docData().contentType == "text/html"
}

// SetSelectorEngine sets the selector engine used by queries against this
// document. Passing nil falls back to the registered default engine.
func (d *Document) SetSelectorEngine(engine SelectorEngine) {
	d.docData().selEngine = engine
}

// CreateElement creates a new element with the given tag name in the HTML
// namespace. The local name is lowercased and the tag name uppercased, per
// HTML document conventions.
func (d *Document) CreateElement(tagName string) *Element {
	el, _ := d.CreateElementWithError(tagName)
	return el
}

// CreateElementWithError creates a new element with the given tag name.
// Returns an error if the tag name is invalid.
func (d *Document) CreateElementWithError(tagName string) (*Element, error) {
	if !isValidElementName(tagName) {
		return nil, ErrInvalidCharacter("The tag name provided is not a valid name.")
	}

	localName := tagName
	if d.IsHTML() {
		localName = strings.ToLower(tagName)
	}

	node := newNode(ElementNode, strings.ToUpper(localName), d)
	node.elementData = &elementData{
		localName:    localName,
		namespaceURI: HTMLNamespace,
		tagName:      strings.ToUpper(localName),
	}
	return (*Element)(node), nil
}

// CreateElementNS creates a new element with the given namespace and
// qualified name. Non-HTML namespaces keep the qualified name's case.
func (d *Document) CreateElementNS(namespaceURI, qualifiedName string) *Element {
	el, _ := d.CreateElementNSWithError(namespaceURI, qualifiedName)
	return el
}

// CreateElementNSWithError creates a new element with the given namespace and
// qualified name. Returns an error if the name or namespace is invalid.
func (d *Document) CreateElementNSWithError(namespaceURI, qualifiedName string) (*Element, error) {
	if !isValidElementName(qualifiedName) {
		return nil, ErrInvalidCharacter("The qualified name provided is not a valid name.")
	}

	prefix, localName := parseQualifiedName(qualifiedName)
	if prefix != "" && namespaceURI == "" {
		return nil, ErrNamespace("A prefixed qualified name requires a namespace.")
	}

	tagName := qualifiedName
	if namespaceURI == HTMLNamespace && d.IsHTML() {
		tagName = strings.ToUpper(qualifiedName)
	}

	node := newNode(ElementNode, tagName, d)
	node.elementData = &elementData{
		localName:    localName,
		namespaceURI: namespaceURI,
		prefix:       prefix,
		tagName:      tagName,
	}
	return (*Element)(node), nil
}

// CreateTextNode creates a new text node with the given data.
func (d *Document) CreateTextNode(data string) *Node {
	node := newNode(TextNode, "#text", d)
	node.nodeValue = &data
	return node
}

// CreateComment creates a new comment node with the given data.
func (d *Document) CreateComment(data string) *Node {
	node := newNode(CommentNode, "#comment", d)
	node.nodeValue = &data
	return node
}

// CreateDocumentFragment creates a new empty document fragment.
func (d *Document) CreateDocumentFragment() *Node {
	return newNode(DocumentFragmentNode, "#document-fragment", d)
}

// CreateDocumentType creates a new doctype node.
func (d *Document) CreateDocumentType(name, publicId, systemId string) *Node {
	node := newNode(DocumentTypeNode, name, d)
	node.docTypeData = &docTypeData{
		name:     name,
		publicId: publicId,
		systemId: systemId,
	}
	return node
}

// Doctype returns the document's doctype node, or nil.
func (d *Document) Doctype() *Node {
	for child := d.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == DocumentTypeNode {
			return child
		}
	}
	return nil
}

// DocumentElement returns the root element of the document (e.g. <html>),
// or nil if the document has no element child.
func (d *Document) DocumentElement() *Element {
	for child := d.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			return (*Element)(child)
		}
	}
	return nil
}

// Body returns the document's <body> element, or nil.
func (d *Document) Body() *Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for child := root.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			local := (*Element)(child).LocalName()
			if local == "body" || local == "frameset" {
				return (*Element)(child)
			}
		}
	}
	return nil
}

// Head returns the document's <head> element, or nil.
func (d *Document) Head() *Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for child := root.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode && (*Element)(child).LocalName() == "head" {
			return (*Element)(child)
		}
	}
	return nil
}

// Title returns the text content of the first <title> element.
func (d *Document) Title() string {
	head := d.Head()
	if head == nil {
		return ""
	}
	for child := head.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode && (*Element)(child).LocalName() == "title" {
			return strings.TrimSpace(child.TextContent())
		}
	}
	return ""
}

// GetElementById returns the first element in document order whose id
// attribute equals id, or nil. Lookups are memoized per id, including misses;
// the memo is discarded on any tree mutation, so a duplicate-id resolution is
// re-derived after the earlier occurrence is removed.
func (d *Document) GetElementById(id string) *Element {
	if id == "" {
		return nil
	}

	data := d.docData()
	if data.idCache != nil {
		if el, ok := data.idCache[id]; ok {
			return el
		}
	}

	found := findById(d.AsNode(), id)

	if data.idCache == nil {
		data.idCache = make(map[string]*Element)
	}
	data.idCache[id] = found

	return found
}

func findById(root *Node, id string) *Element {
	for child := root.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			el := (*Element)(child)
			if el.Id() == id {
				return el
			}
		}
		if found := findById(child, id); found != nil {
			return found
		}
	}
	return nil
}

// GetElementsByTagName returns the elements with the given tag name ("*"
// matches every element) in document order. Results are memoized per tag and
// discarded on any mutation; callers get a copy.
func (d *Document) GetElementsByTagName(tagName string) []*Element {
	lowerTag := strings.ToLower(tagName)

	data := d.docData()
	if data.tagCache != nil {
		if cached, ok := data.tagCache[lowerTag]; ok {
			out := make([]*Element, len(cached))
			copy(out, cached)
			return out
		}
	}

	var results []*Element
	collectByTagName(d.AsNode(), lowerTag, &results)

	if data.tagCache == nil {
		data.tagCache = make(map[string][]*Element)
	}
	data.tagCache[lowerTag] = results

	out := make([]*Element, len(results))
	copy(out, results)
	return out
}

// GetElementsByClassName returns the elements carrying every class in the
// whitespace-separated classNames list, in document order.
func (d *Document) GetElementsByClassName(classNames string) []*Element {
	var results []*Element
	collectByClassName(d.AsNode(), strings.Fields(classNames), &results)
	return results
}

// QuerySelector returns the first element in the document matching the
// selector in document order, or nil.
func (d *Document) QuerySelector(selector string) (*Element, error) {
	return d.AsNode().querySelector(selector)
}

// QuerySelectorAll returns all elements in the document matching the
// selector, in pre-order document order.
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	return d.AsNode().querySelectorAll(selector)
}

// isValidElementName checks the minimal constraints on element names: first
// character a letter, underscore, or colon, followed by name characters.
func isValidElementName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i, r := range name {
		valid := r == '_' || r == ':' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r > 0x7F
		if i == 0 {
			valid = r == '_' || r == ':' ||
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7F
		}
		if !valid {
			return false
		}
	}
	return true
}
