package dom

// AttributeStore holds an element's attributes behind three synchronized
// views: by qualified name (unique, insertion order preserved for
// enumeration), by local name (ordered bucket, several namespaced attributes
// may share a local name), and by namespace URI. Every mutation updates all
// three views together, so an attribute is present in the qualified-name view
// iff matching entries exist in the other two.
//
// Elements allocate the store on the first attribute write and release it
// when the last attribute is removed.
type AttributeStore struct {
	ownerElement *Element
	order        []*Attr            // insertion order, one entry per attribute
	byName       map[string]*Attr   // qualified name -> attribute
	byLocal      map[string][]*Attr // local name -> ordered bucket
	byNS         map[string][]*Attr // namespace URI ("" for none) -> ordered bucket
}

// newAttributeStore creates an empty AttributeStore for the given element.
func newAttributeStore(element *Element) *AttributeStore {
	return &AttributeStore{
		ownerElement: element,
		byName:       make(map[string]*Attr),
		byLocal:      make(map[string][]*Attr),
		byNS:         make(map[string][]*Attr),
	}
}

// Length returns the number of attributes in the store.
func (s *AttributeStore) Length() int {
	return len(s.order)
}

// Item returns the attribute at the given insertion-order index, or nil if
// out of bounds.
func (s *AttributeStore) Item(index int) *Attr {
	if index < 0 || index >= len(s.order) {
		return nil
	}
	return s.order[index]
}

// Get returns the attribute with the given qualified name, or nil.
func (s *AttributeStore) Get(name string) *Attr {
	return s.byName[name]
}

// GetNS returns the attribute with the given namespace and local name, or nil.
func (s *AttributeStore) GetNS(namespaceURI, localName string) *Attr {
	for _, attr := range s.byNS[namespaceURI] {
		if attr.localName == localName {
			return attr
		}
	}
	return nil
}

// Has returns true if an attribute with the given qualified name exists.
func (s *AttributeStore) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// HasNS returns true if an attribute with the given namespace and local name exists.
func (s *AttributeStore) HasNS(namespaceURI, localName string) bool {
	return s.GetNS(namespaceURI, localName) != nil
}

// ByLocalName returns the ordered bucket of attributes sharing a local name.
func (s *AttributeStore) ByLocalName(localName string) []*Attr {
	bucket := s.byLocal[localName]
	out := make([]*Attr, len(bucket))
	copy(out, bucket)
	return out
}

// ByNamespace returns the attributes declared in the given namespace URI.
func (s *AttributeStore) ByNamespace(namespaceURI string) []*Attr {
	bucket := s.byNS[namespaceURI]
	out := make([]*Attr, len(bucket))
	copy(out, bucket)
	return out
}

// Names returns all qualified names in insertion order.
func (s *AttributeStore) Names() []string {
	names := make([]string, len(s.order))
	for i, attr := range s.order {
		names[i] = attr.name
	}
	return names
}

// Set upserts an attribute by qualified name. An existing attribute keeps its
// position in the enumeration order; a new one is appended.
func (s *AttributeStore) Set(name, value string) {
	if attr := s.byName[name]; attr != nil {
		attr.value = value
		s.notifyMutation()
		return
	}
	s.insert(NewAttr(name, value))
}

// SetAttr upserts a fully built attribute. The existing entry with the same
// namespace and local name, if any, is replaced in place in all three views.
// Returns the replaced attribute, or nil.
func (s *AttributeStore) SetAttr(attr *Attr) *Attr {
	if attr == nil {
		return nil
	}
	existing := s.GetNS(attr.namespaceURI, attr.localName)
	if existing != nil {
		attr.ownerElement = s.ownerElement
		s.replace(existing, attr)
		s.notifyMutation()
		return existing
	}
	s.insert(attr)
	return nil
}

// Remove deletes the attribute with the given qualified name from all three
// views. Returns the removed attribute, or nil.
func (s *AttributeStore) Remove(name string) *Attr {
	attr := s.byName[name]
	if attr == nil {
		return nil
	}
	s.unlink(attr)
	s.notifyMutation()
	attr.ownerElement = nil
	return attr
}

// RemoveNS deletes the attribute with the given namespace and local name.
// Returns the removed attribute, or nil.
func (s *AttributeStore) RemoveNS(namespaceURI, localName string) *Attr {
	attr := s.GetNS(namespaceURI, localName)
	if attr == nil {
		return nil
	}
	s.unlink(attr)
	s.notifyMutation()
	attr.ownerElement = nil
	return attr
}

func (s *AttributeStore) insert(attr *Attr) {
	attr.ownerElement = s.ownerElement
	s.order = append(s.order, attr)
	s.byName[attr.name] = attr
	s.byLocal[attr.localName] = append(s.byLocal[attr.localName], attr)
	s.byNS[attr.namespaceURI] = append(s.byNS[attr.namespaceURI], attr)
	s.notifyMutation()
}

func (s *AttributeStore) replace(old, attr *Attr) {
	for i, a := range s.order {
		if a == old {
			s.order[i] = attr
			break
		}
	}
	delete(s.byName, old.name)
	s.byName[attr.name] = attr
	s.byLocal[old.localName] = replaceInBucket(s.byLocal[old.localName], old, attr)
	s.byNS[old.namespaceURI] = replaceInBucket(s.byNS[old.namespaceURI], old, attr)
	old.ownerElement = nil
}

func (s *AttributeStore) unlink(attr *Attr) {
	for i, a := range s.order {
		if a == attr {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.byName, attr.name)
	s.byLocal[attr.localName] = removeFromBucket(s.byLocal[attr.localName], attr)
	if len(s.byLocal[attr.localName]) == 0 {
		delete(s.byLocal, attr.localName)
	}
	s.byNS[attr.namespaceURI] = removeFromBucket(s.byNS[attr.namespaceURI], attr)
	if len(s.byNS[attr.namespaceURI]) == 0 {
		delete(s.byNS, attr.namespaceURI)
	}
}

func replaceInBucket(bucket []*Attr, old, attr *Attr) []*Attr {
	for i, a := range bucket {
		if a == old {
			bucket[i] = attr
			return bucket
		}
	}
	return append(bucket, attr)
}

func removeFromBucket(bucket []*Attr, attr *Attr) []*Attr {
	for i, a := range bucket {
		if a == attr {
			return append(bucket[:i], bucket[i+1:]...)
		}
	}
	return bucket
}

// notifyMutation invalidates the query caches covering the owner element.
// Matching depends on attribute values, so any change routes through here.
func (s *AttributeStore) notifyMutation() {
	if s.ownerElement != nil {
		s.ownerElement.AsNode().invalidateCaches()
	}
}

// clone creates a deep copy of this store for a cloned element.
func (s *AttributeStore) clone(newOwner *Element) *AttributeStore {
	out := newAttributeStore(newOwner)
	for _, attr := range s.order {
		copied := &Attr{
			ownerElement: newOwner,
			namespaceURI: attr.namespaceURI,
			prefix:       attr.prefix,
			localName:    attr.localName,
			name:         attr.name,
			value:        attr.value,
		}
		out.order = append(out.order, copied)
		out.byName[copied.name] = copied
		out.byLocal[copied.localName] = append(out.byLocal[copied.localName], copied)
		out.byNS[copied.namespaceURI] = append(out.byNS[copied.namespaceURI], copied)
	}
	return out
}
