// Package html parses HTML text into dom documents using golang.org/x/net/html.
package html

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hollowdom/hollowdom/dom"
)

// Parse parses an HTML document from a string.
func Parse(content string) (*dom.Document, error) {
	return ParseReader(strings.NewReader(content))
}

// ParseReader parses an HTML document from a reader.
func ParseReader(r io.Reader) (*dom.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := dom.NewDocument()
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if converted := convertNode(child, doc); converted != nil {
			doc.AsNode().AppendChild(converted)
		}
	}
	return doc, nil
}

// ParseFragment parses an HTML fragment in the context of the given element
// and returns the resulting nodes, owned by the element's document.
func ParseFragment(fragment string, context *dom.Element) ([]*dom.Node, error) {
	ctx := &html.Node{
		Type: html.ElementNode,
		Data: "body",
	}
	if context != nil {
		ctx.Data = context.LocalName()
	}
	// html.ParseFragment requires DataAtom to be consistent with Data.
	ctx.DataAtom = atom.Lookup([]byte(ctx.Data))

	parsed, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, err
	}

	doc := dom.NewDocument()
	if context != nil && context.AsNode().OwnerDocument() != nil {
		doc = context.AsNode().OwnerDocument()
	}

	var nodes []*dom.Node
	for _, n := range parsed {
		if converted := convertNode(n, doc); converted != nil {
			nodes = append(nodes, converted)
		}
	}
	return nodes, nil
}

// convertNode converts one golang.org/x/net/html node (and its subtree) into
// a dom node owned by doc. Unsupported node types return nil.
func convertNode(n *html.Node, doc *dom.Document) *dom.Node {
	switch n.Type {
	case html.ElementNode:
		el := doc.CreateElement(n.Data)
		if el == nil {
			return nil
		}
		for _, attr := range n.Attr {
			if attr.Namespace != "" {
				el.SetAttributeNS(attr.Namespace, attr.Key, attr.Val)
			} else {
				el.SetAttribute(attr.Key, attr.Val)
			}
		}
		node := el.AsNode()
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if converted := convertNode(child, doc); converted != nil {
				node.AppendChild(converted)
			}
		}
		return node

	case html.TextNode:
		return doc.CreateTextNode(n.Data)

	case html.CommentNode:
		return doc.CreateComment(n.Data)

	case html.DoctypeNode:
		var publicId, systemId string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "public":
				publicId = attr.Val
			case "system":
				systemId = attr.Val
			}
		}
		return doc.CreateDocumentType(n.Data, publicId, systemId)

	default:
		return nil
	}
}
