package vdom

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/vcrobe/morph/console"
	"github.com/vcrobe/morph/dom"
)

var scriptSelector = cascadia.MustCompile("script")

// Patch reconciles the children of live against the children of template.
// After it returns, the structure, attributes and text of live match the
// template, except for user-editable form state.
//
// A template that contains any script element is stripped of its scripts
// and not applied at all.
//
// The template is consumed: nodes may be removed from it.
func Patch(doc *dom.Document, template, live *html.Node, allowEvents bool) {
	if removeScripts(template) {
		console.Debug("template contains script elements, render skipped")
		return
	}
	diff(doc, template, live, allowEvents)
}

func diff(doc *dom.Document, template, live *html.Node, allowEvents bool) {
	nodes := dom.Children(template)
	cursor := live.FirstChild

	for _, node := range nodes {
		if cursor == nil {
			doc.AppendChild(live, materialize(doc, node, allowEvents))
			continue
		}

		current := cursor
		if isDifferentNode(node, current) {
			ahead := aheadInTree(node, current)
			if ahead == nil {
				doc.InsertBefore(live, materialize(doc, node, allowEvents), cursor)
				continue
			}
			doc.InsertBefore(live, ahead, cursor)
			current = ahead
		}

		if text := leafText(node); text != "" && text != leafText(current) {
			doc.SetText(current, text)
		}

		diffAttributes(doc, node, current, allowEvents)

		switch {
		case node.FirstChild == nil && current.FirstChild != nil:
			doc.ReplaceChildren(current)
		case node.FirstChild != nil && current.FirstChild == nil:
			frag := dom.NewFragment()
			diff(doc, node, frag, allowEvents)
			doc.AppendChild(current, frag)
		case node.FirstChild != nil:
			diff(doc, node, current, allowEvents)
		}

		cursor = current.NextSibling
	}

	trimExtraNodes(doc, live, len(nodes))
}

// materialize clones a template node for insertion into the live tree.
func materialize(doc *dom.Document, node *html.Node, allowEvents bool) *html.Node {
	clone := dom.CloneNode(node, true)
	addDefaults(doc, clone, allowEvents)
	return clone
}

// isDifferentNode compares node type, tag name, id and src. Content never
// takes part in identity.
func isDifferentNode(a, b *html.Node) bool {
	if a.Type != b.Type {
		return true
	}
	if a.Type != html.ElementNode {
		return false
	}
	if a.Data != b.Data {
		return true
	}
	idA, _ := dom.Attr(a, "id")
	idB, _ := dom.Attr(b, "id")
	return idA != idB || srcOf(a) != srcOf(b)
}

// srcOf returns the src a node ends up with once marked attributes are
// applied.
func srcOf(n *html.Node) string {
	for _, name := range []string{"src", deferredPrefix + "src", defaultPrefix + "src"} {
		if v, ok := dom.Attr(n, name); ok {
			return v
		}
	}
	return ""
}

// aheadInTree finds a later sibling of current that matches node.
func aheadInTree(node, current *html.Node) *html.Node {
	for s := current.NextSibling; s != nil; s = s.NextSibling {
		if !isDifferentNode(node, s) {
			return s
		}
	}
	return nil
}

// leafText is the text of a childless node: the data of a text or comment
// node, empty for an element. Nodes with children have no leaf text.
func leafText(n *html.Node) string {
	if n.FirstChild != nil {
		return ""
	}
	switch n.Type {
	case html.TextNode, html.CommentNode:
		return n.Data
	}
	return ""
}

// trimExtraNodes removes live children past want, last first.
func trimExtraNodes(doc *dom.Document, live *html.Node, want int) {
	for extra := dom.ChildCount(live) - want; extra > 0; extra-- {
		doc.RemoveChild(live, live.LastChild)
	}
}

// removeScripts strips every script element below n and reports whether it
// found any.
func removeScripts(n *html.Node) bool {
	scripts := cascadia.QueryAll(n, scriptSelector)
	for _, s := range scripts {
		if s.Parent != nil {
			s.Parent.RemoveChild(s)
		}
	}
	return len(scripts) > 0
}
