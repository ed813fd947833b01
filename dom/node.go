package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// NewFragment returns a detached container. Appending a fragment moves its
// children into the parent in a single mutation, like a DOM
// DocumentFragment.
func NewFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

// NewElement returns a detached element node.
func NewElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: strings.ToLower(tag)}
}

// NewText returns a detached text node.
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// CloneNode copies n. With deep set, the whole subtree is copied. The clone
// is detached and carries no form properties or listeners.
func CloneNode(n *html.Node, deep bool) *html.Node {
	if n == nil {
		return nil
	}
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	if deep {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			clone.AppendChild(CloneNode(c, true))
		}
	}
	return clone
}

// Children returns the child nodes of n in order.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildAt returns the i-th child of n, or nil.
func ChildAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

// ChildCount returns the number of children of n.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Attr returns the value of the attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if AttrName(a) == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries the attribute key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// AttrName returns the qualified name of an attribute as the DOM reports
// it, e.g. "xlink:href" for a namespaced attribute.
func AttrName(a html.Attribute) string {
	if a.Namespace == "" {
		return a.Key
	}
	return a.Namespace + ":" + a.Key
}

// splitName is the inverse of AttrName for the foreign attribute prefixes
// the HTML parser recognizes.
func splitName(name string) (namespace, key string) {
	if i := strings.IndexByte(name, ':'); i > 0 {
		switch name[:i] {
		case "xlink", "xml", "xmlns":
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

// Tag returns the lowercased tag name of an element, or "".
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return n.Data
}
