package dom

// Attr represents an attribute of an Element.
type Attr struct {
	ownerElement *Element
	namespaceURI string
	prefix       string
	localName    string
	name         string // qualified name
	value        string
}

// NewAttr creates a new attribute with the given name and value and no
// namespace.
func NewAttr(name, value string) *Attr {
	return &Attr{
		name:      name,
		localName: name,
		value:     value,
	}
}

// Name returns the qualified name of the attribute.
func (a *Attr) Name() string {
	return a.name
}

// LocalName returns the local name of the attribute.
func (a *Attr) LocalName() string {
	return a.localName
}

// NamespaceURI returns the namespace URI of the attribute, or "" if none.
func (a *Attr) NamespaceURI() string {
	return a.namespaceURI
}

// Prefix returns the namespace prefix of the attribute, or "" if none.
func (a *Attr) Prefix() string {
	return a.prefix
}

// Value returns the value of the attribute.
func (a *Attr) Value() string {
	return a.value
}

// OwnerElement returns the element the attribute belongs to, or nil.
func (a *Attr) OwnerElement() *Element {
	return a.ownerElement
}
