// Package vdom reconciles HTML template strings against a live dom.Document.
//
// A render parses the template into a detached tree with ParseToTree and
// patches the live subtree in place with Patch. Nodes are matched by
// position plus node type, tag, id and src; a mismatched node is moved from
// further along its sibling list when possible and created otherwise.
package vdom

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/vcrobe/morph/console"
	"github.com/vcrobe/morph/dom"
)

// ParseToTree parses s as an HTML document and returns its body, detached.
// Nodes the parser hoisted into <head> (title, style, meta, link, leading
// script) are moved to the front of the body in their original order. An
// unparsable template yields an empty body.
func ParseToTree(s string) *html.Node {
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		console.Debug("template parse failed", "err", err)
		return dom.NewElement("body")
	}
	body := htmlquery.FindOne(root, "//body")
	if body == nil {
		return dom.NewElement("body")
	}

	if head := htmlquery.FindOne(root, "//head"); head != nil {
		first := body.FirstChild
		for c := head.FirstChild; c != nil; {
			next := c.NextSibling
			head.RemoveChild(c)
			body.InsertBefore(c, first)
			c = next
		}
	}

	body.Parent.RemoveChild(body)
	return body
}
