package dom

import (
	"strings"
)

// Node represents a node in the DOM tree. It is the base from which Document,
// Element, Text, Comment, and other node types are derived.
//
// The listeners and queries containers are nil until first use and are
// released again once emptied, so the overwhelming majority of nodes carry no
// allocation beyond the struct itself.
type Node struct {
	nodeType   NodeType
	nodeName   string
	nodeValue  *string // nil for Element, Document, DocumentFragment
	ownerDoc   *Document
	parentNode *Node

	// First/last child and sibling pointers for efficient traversal
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// Lazily allocated containers, nil on most nodes.
	listeners *ListenerRegistry
	queries   *queryCache

	// Type-specific data (only one will be non-nil based on nodeType)
	elementData  *elementData
	documentData *documentData
	docTypeData  *docTypeData
}

// elementData holds data specific to Element nodes. The attribute store is
// allocated on the first attribute write and released when the last attribute
// is removed.
type elementData struct {
	localName    string
	namespaceURI string
	prefix       string
	tagName      string
	attributes   *AttributeStore
}

// docTypeData holds data specific to DocumentType nodes.
type docTypeData struct {
	name     string
	publicId string
	systemId string
}

// newNode creates a new node with the given type and name.
func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the name of the node.
// For elements, this is the tag name in uppercase.
// For text nodes, this is "#text".
// For comments, this is "#comment".
// For documents, this is "#document".
// For document fragments, this is "#document-fragment".
func (n *Node) NodeName() string {
	return n.nodeName
}

// NodeValue returns the value of the node.
// For text and comment nodes, this is the text content.
// For other nodes, this is the empty string.
func (n *Node) NodeValue() string {
	if n.nodeValue != nil {
		return *n.nodeValue
	}
	return ""
}

// SetNodeValue sets the value of the node.
// This only has an effect on text and comment nodes.
func (n *Node) SetNodeValue(value string) {
	switch n.nodeType {
	case TextNode, CommentNode:
		n.nodeValue = &value
		n.invalidateCaches()
	}
	// For other node types, this is a no-op per the spec
}

// OwnerDocument returns the Document that owns this node.
// For Document nodes, this returns nil.
func (n *Node) OwnerDocument() *Document {
	if n.nodeType == DocumentNode {
		return nil
	}
	return n.ownerDoc
}

// ParentNode returns the parent of this node.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ParentElement returns the parent Element, or nil if the parent is not an element.
func (n *Node) ParentElement() *Element {
	if n.parentNode != nil && n.parentNode.nodeType == ElementNode {
		return (*Element)(n.parentNode)
	}
	return nil
}

// FirstChild returns the first child node, or nil if there are no children.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child node, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// PreviousSibling returns the previous sibling node, or nil if this is the first child.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// NextSibling returns the next sibling node, or nil if this is the last child.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// ChildNodes returns a snapshot of the node's children in order.
func (n *Node) ChildNodes() []*Node {
	var children []*Node
	for child := n.firstChild; child != nil; child = child.nextSibling {
		children = append(children, child)
	}
	return children
}

// HasChildNodes returns true if this node has any child nodes.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// IsConnected returns true if the node is connected to a document.
// A node is connected if its root is a document.
func (n *Node) IsConnected() bool {
	root := n.GetRootNode()
	return root != nil && root.nodeType == DocumentNode
}

// TextContent returns the text content of the node and its descendants.
func (n *Node) TextContent() string {
	switch n.nodeType {
	case DocumentNode, DocumentTypeNode:
		return ""
	case TextNode, CommentNode:
		return n.NodeValue()
	default:
		var sb strings.Builder
		n.collectTextContent(&sb)
		return sb.String()
	}
}

func (n *Node) collectTextContent(sb *strings.Builder) {
	for child := n.firstChild; child != nil; child = child.nextSibling {
		switch child.nodeType {
		case TextNode:
			sb.WriteString(child.NodeValue())
		case ElementNode, DocumentFragmentNode:
			child.collectTextContent(sb)
		}
	}
}

// SetTextContent sets the text content of the node.
// For elements and document fragments, this replaces all children with a single text node.
func (n *Node) SetTextContent(value string) {
	switch n.nodeType {
	case DocumentNode, DocumentTypeNode:
		// Do nothing per the spec
		return
	case TextNode, CommentNode:
		n.SetNodeValue(value)
	default:
		for n.firstChild != nil {
			n.RemoveChild(n.firstChild)
		}
		if value != "" && n.ownerDoc != nil {
			n.AppendChild(n.ownerDoc.CreateTextNode(value))
		}
	}
}

// AppendChild adds a node to the end of the list of children of this node.
// For error-returning version, use AppendChildWithError.
func (n *Node) AppendChild(child *Node) *Node {
	result, _ := n.AppendChildWithError(child)
	return result
}

// AppendChildWithError adds a node to the end of the list of children of this node.
// Returns an error if the operation violates DOM hierarchy constraints.
func (n *Node) AppendChildWithError(child *Node) (*Node, error) {
	return n.InsertBeforeWithError(child, nil)
}

// InsertBefore inserts a node before a reference child node.
// If refChild is nil, the node is appended to the end.
// For error-returning version, use InsertBeforeWithError.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	result, _ := n.InsertBeforeWithError(newChild, refChild)
	return result
}

// InsertBeforeWithError inserts a node before a reference child node.
// If refChild is nil, the node is appended to the end.
// Returns an error if the operation violates DOM hierarchy constraints.
func (n *Node) InsertBeforeWithError(newChild, refChild *Node) (*Node, error) {
	if err := n.validatePreInsertion(newChild, refChild); err != nil {
		return nil, err
	}
	return n.insertBefore(newChild, refChild), nil
}

// validatePreInsertion implements the pre-insertion validation steps from the
// DOM spec. https://dom.spec.whatwg.org/#concept-node-pre-insert
func (n *Node) validatePreInsertion(node, child *Node) error {
	// Parent must be a Document, DocumentFragment, or Element node
	if !n.canHaveChildren() {
		return ErrHierarchyRequest("The operation would yield an incorrect node tree.")
	}

	// Inserting an inclusive ancestor would create a cycle
	if n.isInclusiveAncestor(node) {
		return ErrHierarchyRequest("The new child element contains the parent.")
	}

	if child != nil && child.parentNode != n {
		return ErrNotFound("The node before which the new node is to be inserted is not a child of this node.")
	}

	if !isValidChildType(node) {
		return ErrHierarchyRequest("The operation would yield an incorrect node tree.")
	}

	if node.nodeType == TextNode && n.nodeType == DocumentNode {
		return ErrHierarchyRequest("Cannot insert Text node as a direct child of Document.")
	}
	if node.nodeType == DocumentTypeNode && n.nodeType != DocumentNode {
		return ErrHierarchyRequest("DocumentType nodes can only be children of Document.")
	}

	// A document keeps a single element child and at most one doctype
	if n.nodeType == DocumentNode {
		switch node.nodeType {
		case ElementNode:
			if n.hasChildOfType(ElementNode, nil) {
				return ErrHierarchyRequest("Document already has a document element.")
			}
		case DocumentTypeNode:
			if n.hasChildOfType(DocumentTypeNode, nil) {
				return ErrHierarchyRequest("Document already has a doctype.")
			}
		case DocumentFragmentNode:
			elementCount := 0
			for c := node.firstChild; c != nil; c = c.nextSibling {
				if c.nodeType == ElementNode {
					elementCount++
				}
				if c.nodeType == TextNode {
					return ErrHierarchyRequest("Cannot insert Text node as a direct child of Document.")
				}
			}
			if elementCount > 1 {
				return ErrHierarchyRequest("Document can have only one element child.")
			}
			if elementCount == 1 && n.hasChildOfType(ElementNode, nil) {
				return ErrHierarchyRequest("Document already has a document element.")
			}
		}
	}

	return nil
}

// canHaveChildren returns true if this node can have child nodes.
func (n *Node) canHaveChildren() bool {
	switch n.nodeType {
	case DocumentNode, DocumentFragmentNode, ElementNode:
		return true
	default:
		return false
	}
}

// isInclusiveAncestor returns true if node is this node or an ancestor of this node.
func (n *Node) isInclusiveAncestor(node *Node) bool {
	if node == nil {
		return false
	}
	for current := n; current != nil; current = current.parentNode {
		if current == node {
			return true
		}
	}
	return false
}

// isValidChildType returns true if node is a valid type for children.
func isValidChildType(node *Node) bool {
	if node == nil {
		return false
	}
	switch node.nodeType {
	case DocumentFragmentNode, DocumentTypeNode, ElementNode, TextNode, CommentNode:
		return true
	default:
		return false
	}
}

// hasChildOfType returns true if this node has a child of the given type other
// than exclude.
func (n *Node) hasChildOfType(t NodeType, exclude *Node) bool {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c != exclude && c.nodeType == t {
			return true
		}
	}
	return false
}

func (n *Node) insertBefore(newChild, refChild *Node) *Node {
	if newChild == nil {
		return nil
	}

	// If newChild is a DocumentFragment, move all its children
	if newChild.nodeType == DocumentFragmentNode {
		var children []*Node
		for child := newChild.firstChild; child != nil; child = child.nextSibling {
			children = append(children, child)
		}
		for _, child := range children {
			n.insertBefore(child, refChild)
		}
		return newChild
	}

	// Inserting a node before itself is a no-op
	if newChild == refChild {
		return newChild
	}

	// Remove from current parent if necessary
	if newChild.parentNode != nil {
		newChild.parentNode.RemoveChild(newChild)
	}

	newChild.parentNode = n

	// Adopt the node to this document if needed
	if n.ownerDoc != nil && newChild.ownerDoc != n.ownerDoc {
		adoptNode(newChild, n.ownerDoc)
	} else if n.nodeType == DocumentNode {
		adoptNode(newChild, (*Document)(n))
	}

	if refChild == nil {
		// Append to the end
		newChild.prevSibling = n.lastChild
		newChild.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		n.lastChild = newChild
	} else {
		// Insert before refChild
		newChild.prevSibling = refChild.prevSibling
		newChild.nextSibling = refChild
		if refChild.prevSibling != nil {
			refChild.prevSibling.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		refChild.prevSibling = newChild
	}

	n.invalidateCaches()

	return newChild
}

// adoptNode recursively sets the ownerDocument for a node and its descendants.
func adoptNode(node *Node, doc *Document) {
	node.ownerDoc = doc
	for child := node.firstChild; child != nil; child = child.nextSibling {
		adoptNode(child, doc)
	}
}

// RemoveChild removes a child node from this node.
// For error-returning version, use RemoveChildWithError.
func (n *Node) RemoveChild(child *Node) *Node {
	result, _ := n.RemoveChildWithError(child)
	return result
}

// RemoveChildWithError removes a child node from this node.
// Returns an error if the child is not a child of this node.
func (n *Node) RemoveChildWithError(child *Node) (*Node, error) {
	if child == nil {
		return nil, ErrNotFound("The node to be removed is null.")
	}
	if child.parentNode != n {
		return nil, ErrNotFound("The node to be removed is not a child of this node.")
	}

	n.removeChildInternal(child)
	n.invalidateCaches()

	return child, nil
}

// removeChildInternal unlinks a child from this node's children list without
// checking membership or invalidating caches.
func (n *Node) removeChildInternal(child *Node) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}

	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}

	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// ReplaceChild replaces a child node with a new node.
// For error-returning version, use ReplaceChildWithError.
func (n *Node) ReplaceChild(newChild, oldChild *Node) *Node {
	result, _ := n.ReplaceChildWithError(newChild, oldChild)
	return result
}

// ReplaceChildWithError replaces a child node with a new node.
// Returns an error if the operation violates DOM hierarchy constraints.
func (n *Node) ReplaceChildWithError(newChild, oldChild *Node) (*Node, error) {
	if oldChild == nil {
		return nil, ErrNotFound("The node to be replaced is null.")
	}
	if oldChild.parentNode != n {
		return nil, ErrNotFound("The node to be replaced is not a child of this node.")
	}
	if n.isInclusiveAncestor(newChild) {
		return nil, ErrHierarchyRequest("The new child element contains the parent.")
	}
	if !isValidChildType(newChild) {
		return nil, ErrHierarchyRequest("The operation would yield an incorrect node tree.")
	}

	if newChild == oldChild {
		return oldChild, nil
	}

	referenceChild := oldChild.nextSibling
	if referenceChild == newChild {
		referenceChild = newChild.nextSibling
	}

	if newChild.parentNode != nil {
		newChild.parentNode.RemoveChild(newChild)
	}
	n.removeChildInternal(oldChild)
	n.insertBefore(newChild, referenceChild)

	return oldChild, nil
}

// CloneNode creates a copy of this node.
// If deep is true, all descendants are also cloned.
func (n *Node) CloneNode(deep bool) *Node {
	clone := n.shallowClone()

	if deep {
		for child := n.firstChild; child != nil; child = child.nextSibling {
			clone.AppendChild(child.CloneNode(true))
		}
	}

	return clone
}

func (n *Node) shallowClone() *Node {
	clone := newNode(n.nodeType, n.nodeName, n.ownerDoc)

	if n.nodeValue != nil {
		value := *n.nodeValue
		clone.nodeValue = &value
	}

	switch n.nodeType {
	case ElementNode:
		if n.elementData != nil {
			clone.elementData = &elementData{
				localName:    n.elementData.localName,
				namespaceURI: n.elementData.namespaceURI,
				prefix:       n.elementData.prefix,
				tagName:      n.elementData.tagName,
			}
			if n.elementData.attributes != nil {
				clone.elementData.attributes = n.elementData.attributes.clone((*Element)(clone))
			}
		}
	case DocumentTypeNode:
		if n.docTypeData != nil {
			clone.docTypeData = &docTypeData{
				name:     n.docTypeData.name,
				publicId: n.docTypeData.publicId,
				systemId: n.docTypeData.systemId,
			}
		}
	case DocumentNode:
		clone.documentData = &documentData{
			url:         "about:blank",
			contentType: "text/html",
		}
		if n.documentData != nil {
			clone.documentData.url = n.documentData.url
			clone.documentData.contentType = n.documentData.contentType
			clone.documentData.selEngine = n.documentData.selEngine
		}
		// Document nodes own themselves
		clone.ownerDoc = (*Document)(clone)
	}

	return clone
}

// Contains returns true if the given node is this node or a descendant of it.
func (n *Node) Contains(other *Node) bool {
	if other == nil {
		return false
	}
	for node := other; node != nil; node = node.parentNode {
		if node == n {
			return true
		}
	}
	return false
}

// GetRootNode returns the root of the tree containing this node.
func (n *Node) GetRootNode() *Node {
	root := n
	for root.parentNode != nil {
		root = root.parentNode
	}
	return root
}

// AsElement returns the node as an Element, or nil if it is not one.
func (n *Node) AsElement() *Element {
	if n == nil || n.nodeType != ElementNode {
		return nil
	}
	return (*Element)(n)
}

// IsSameNode returns true if this node is the same node as the given node.
func (n *Node) IsSameNode(other *Node) bool {
	return n == other
}

// invalidateCaches discards every query cache that may cover this node: the
// node's own container, the containers of all its ancestors (a node's cache
// spans its subtree), and the document-scoped id/tag caches. Containers are
// dropped wholesale rather than cleared entry-by-entry so invalidation cost
// stays bounded.
func (n *Node) invalidateCaches() {
	for cur := n; cur != nil; cur = cur.parentNode {
		cur.queries = nil
		if cur.nodeType == DocumentNode {
			(*Document)(cur).invalidateDocumentCaches()
		}
	}
	// Disconnected subtrees still belong to a document whose global id/tag
	// lookups must not go stale.
	if n.ownerDoc != nil && n.GetRootNode() != (*Node)(n.ownerDoc) {
		n.ownerDoc.invalidateDocumentCaches()
	}
}
