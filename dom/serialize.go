package dom

import (
	"strings"
)

// voidElements never have children and serialize without a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// rawTextElements serialize their text children without escaping.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "xmp": true, "iframe": true,
	"noembed": true, "noframes": true, "plaintext": true,
}

// serializeNode writes the HTML serialization of node into sb.
func serializeNode(node *Node, sb *strings.Builder) {
	switch node.nodeType {
	case ElementNode:
		serializeElement((*Element)(node), sb)
	case TextNode:
		parent := node.ParentElement()
		if parent != nil && rawTextElements[parent.LocalName()] {
			sb.WriteString(node.NodeValue())
		} else {
			sb.WriteString(escapeText(node.NodeValue()))
		}
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(node.NodeValue())
		sb.WriteString("-->")
	case DocumentNode, DocumentFragmentNode:
		for child := node.firstChild; child != nil; child = child.nextSibling {
			serializeNode(child, sb)
		}
	case DocumentTypeNode:
		sb.WriteString("<!DOCTYPE ")
		sb.WriteString(node.nodeName)
		sb.WriteString(">")
	}
}

func serializeElement(el *Element, sb *strings.Builder) {
	tag := el.LocalName()
	sb.WriteString("<")
	sb.WriteString(tag)

	if store := el.Attributes(); store != nil {
		for i := 0; i < store.Length(); i++ {
			attr := store.Item(i)
			sb.WriteString(" ")
			sb.WriteString(attr.Name())
			sb.WriteString("=\"")
			sb.WriteString(escapeAttribute(attr.Value()))
			sb.WriteString("\"")
		}
	}
	sb.WriteString(">")

	if voidElements[tag] && el.NamespaceURI() == HTMLNamespace {
		return
	}

	for child := el.AsNode().firstChild; child != nil; child = child.nextSibling {
		serializeNode(child, sb)
	}

	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteString(">")
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttribute(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
