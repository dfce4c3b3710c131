package dom

// SelectorEngine is the external selector-matching collaborator. The dom
// package never parses selector text itself; it hands the raw text to the
// engine and caches the results it gets back.
//
// Compile must return an error for selector text it cannot parse. Query
// operations surface that as a SyntaxError DOMError and never cache it.
type SelectorEngine interface {
	Compile(selector string) (CompiledSelector, error)
}

// CompiledSelector is a parsed selector ready to be matched against elements.
type CompiledSelector interface {
	Match(el *Element) bool
}

// defaultSelectorEngine is consulted by documents that were not given an
// engine explicitly. The selector package registers itself here from init,
// the same way database/sql drivers self-register.
var defaultSelectorEngine SelectorEngine

// RegisterSelectorEngine installs the process-wide default selector engine
// used by documents constructed without an explicit engine.
func RegisterSelectorEngine(engine SelectorEngine) {
	defaultSelectorEngine = engine
}

// queryCache memoizes the results of the four selector-driven query
// operations for one node. Entries are keyed by the exact selector text:
// textually distinct but semantically equivalent selectors occupy separate
// entries, which is observable, documented behavior.
//
// The container is allocated on the first store and discarded wholesale on
// any mutation within the owning node's subtree (see Node.invalidateCaches);
// a nil map value records a cached miss.
type queryCache struct {
	selectorAll map[string][]*Element
	selectorOne map[string]*Element
	matches     map[string]bool
	closest     map[string]*Element
}

func (n *Node) queryCacheFor() *queryCache {
	if n.queries == nil {
		n.queries = &queryCache{}
	}
	return n.queries
}

// engine resolves the selector engine for queries rooted at this node.
func (n *Node) engine() SelectorEngine {
	if n.ownerDoc != nil && n.ownerDoc.docData().selEngine != nil {
		return n.ownerDoc.docData().selEngine
	}
	if n.nodeType == DocumentNode {
		if e := (*Document)(n).docData().selEngine; e != nil {
			return e
		}
	}
	return defaultSelectorEngine
}

func (n *Node) compileSelector(selector string) (CompiledSelector, error) {
	engine := n.engine()
	if engine == nil {
		return nil, ErrNotSupported("no selector engine is registered")
	}
	compiled, err := engine.Compile(selector)
	if err != nil {
		return nil, ErrSyntax(err.Error())
	}
	return compiled, nil
}

// querySelectorAll returns every element in n's subtree matching selector, in
// pre-order document order, consulting and populating n's cache.
func (n *Node) querySelectorAll(selector string) ([]*Element, error) {
	if c := n.queries; c != nil && c.selectorAll != nil {
		if cached, ok := c.selectorAll[selector]; ok {
			out := make([]*Element, len(cached))
			copy(out, cached)
			return out, nil
		}
	}

	compiled, err := n.compileSelector(selector)
	if err != nil {
		return nil, err
	}

	var results []*Element
	collectMatches(n, compiled, false, &results)

	c := n.queryCacheFor()
	if c.selectorAll == nil {
		c.selectorAll = make(map[string][]*Element)
	}
	c.selectorAll[selector] = results

	out := make([]*Element, len(results))
	copy(out, results)
	return out, nil
}

// querySelector returns the first element in n's subtree matching selector in
// document order, or nil.
func (n *Node) querySelector(selector string) (*Element, error) {
	if c := n.queries; c != nil && c.selectorOne != nil {
		if cached, ok := c.selectorOne[selector]; ok {
			return cached, nil
		}
	}

	compiled, err := n.compileSelector(selector)
	if err != nil {
		return nil, err
	}

	var results []*Element
	collectMatches(n, compiled, true, &results)
	var first *Element
	if len(results) > 0 {
		first = results[0]
	}

	c := n.queryCacheFor()
	if c.selectorOne == nil {
		c.selectorOne = make(map[string]*Element)
	}
	c.selectorOne[selector] = first

	return first, nil
}

// collectMatches walks the subtree below root in pre-order, appending matching
// elements. The root itself is excluded, per querySelector semantics.
func collectMatches(root *Node, compiled CompiledSelector, firstOnly bool, results *[]*Element) {
	for child := root.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			el := (*Element)(child)
			if compiled.Match(el) {
				*results = append(*results, el)
				if firstOnly {
					return
				}
			}
		}
		collectMatches(child, compiled, firstOnly, results)
		if firstOnly && len(*results) > 0 {
			return
		}
	}
}
