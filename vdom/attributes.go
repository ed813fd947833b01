package vdom

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/vcrobe/morph/console"
	"github.com/vcrobe/morph/dom"
)

// formFields hold state the user can edit; formAttrs mirror that state.
// Neither side is touched on an existing node.
var formFields = map[string]bool{
	"input":    true,
	"option":   true,
	"select":   true,
	"textarea": true,
}

var formAttrs = map[string]bool{
	"value":    true,
	"checked":  true,
	"selected": true,
}

// booleanAttrs are present-or-absent attributes. A stringified falsy value
// removes them.
var booleanAttrs = map[string]bool{
	"disabled":       true,
	"checked":        true,
	"readonly":       true,
	"required":       true,
	"autofocus":      true,
	"autoplay":       true,
	"controls":       true,
	"loop":           true,
	"muted":          true,
	"selected":       true,
	"hidden":         true,
	"multiple":       true,
	"novalidate":     true,
	"open":           true,
	"reversed":       true,
	"default":        true,
	"ismap":          true,
	"formnovalidate": true,
}

var falsyValues = map[string]bool{
	"false":     true,
	"null":      true,
	"undefined": true,
	"0":         true,
	"-0":        true,
	"NaN":       true,
	"0n":        true,
	"-0n":       true,
}

var urlAttrs = map[string]bool{
	"src":        true,
	"href":       true,
	"xlink:href": true,
}

const (
	// deferredPrefix marks an attribute applied under its plain name, both
	// on creation and during sync. It keeps the parser from acting on the
	// attribute (autoplay, src loading) before sanitization.
	deferredPrefix = "@"
	// defaultPrefix marks an attribute applied only when the node is
	// created. Later renders leave the live value alone.
	defaultPrefix = "#"
)

func isFalsy(v string) bool {
	return falsyValues[v]
}

func isUnsafeURL(v string) bool {
	v = strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v))
	return strings.Contains(v, "javascript:") || strings.Contains(v, "data:text/html")
}

// skipAttribute reports whether name=value must never reach the live tree.
func skipAttribute(name, value string, allowEvents bool) bool {
	if urlAttrs[name] && isUnsafeURL(value) {
		return true
	}
	return !allowEvents && strings.HasPrefix(name, "on")
}

// plainName strips the deferred or default marker from name.
func plainName(name string) string {
	if strings.HasPrefix(name, deferredPrefix) || strings.HasPrefix(name, defaultPrefix) {
		return name[1:]
	}
	return name
}

func addAttribute(doc *dom.Document, n *html.Node, name, value string, allowEvents bool) {
	if skipAttribute(name, value, allowEvents) {
		console.Debug("unsafe attribute dropped", "tag", n.Data, "attr", name)
		removeAttribute(doc, n, name)
		return
	}
	if formAttrs[name] {
		if name == "value" {
			doc.SetProperty(n, name, value)
		} else {
			doc.SetProperty(n, name, "true")
		}
	}
	doc.SetAttribute(n, name, value)
}

func removeAttribute(doc *dom.Document, n *html.Node, name string) {
	if !dom.HasAttr(n, name) {
		return
	}
	if formAttrs[name] {
		if name == "value" {
			doc.SetProperty(n, name, "")
		} else {
			doc.SetProperty(n, name, "false")
		}
	}
	doc.RemoveAttribute(n, name)
}

// diffAttributes brings the attributes of live in line with template.
func diffAttributes(doc *dom.Document, template, live *html.Node, allowEvents bool) {
	if template.Type != html.ElementNode {
		return
	}

	wanted := make(map[string]bool, len(template.Attr))
	for _, a := range template.Attr {
		name := dom.AttrName(a)
		plain := plainName(name)
		wanted[plain] = true

		if strings.HasPrefix(name, defaultPrefix) {
			continue
		}
		if formFields[template.Data] && formAttrs[plain] {
			continue
		}
		if booleanAttrs[plain] && isFalsy(a.Val) {
			removeAttribute(doc, live, plain)
			continue
		}
		addAttribute(doc, live, plain, a.Val, allowEvents)
	}

	existing := make([]html.Attribute, len(live.Attr))
	copy(existing, live.Attr)
	for _, a := range existing {
		name := dom.AttrName(a)
		if wanted[name] {
			continue
		}
		if formFields[live.Data] && formAttrs[name] {
			continue
		}
		removeAttribute(doc, live, name)
	}
}

// addDefaults prepares a freshly cloned subtree: unsafe attributes go,
// marked attributes are rewritten to their plain names and falsy boolean
// attributes are dropped.
func addDefaults(doc *dom.Document, n *html.Node, allowEvents bool) {
	if n.Type == html.ElementNode {
		attrs := make([]html.Attribute, len(n.Attr))
		copy(attrs, n.Attr)

		for _, a := range attrs {
			name := dom.AttrName(a)
			if skipAttribute(name, a.Val, allowEvents) {
				console.Debug("unsafe attribute dropped", "tag", n.Data, "attr", name)
				removeAttribute(doc, n, name)
				continue
			}

			plain := plainName(name)
			if plain == name {
				if booleanAttrs[name] && isFalsy(a.Val) {
					removeAttribute(doc, n, name)
				}
				continue
			}

			removeAttribute(doc, n, name)
			if booleanAttrs[plain] && isFalsy(a.Val) {
				continue
			}
			addAttribute(doc, n, plain, a.Val, allowEvents)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		addDefaults(doc, c, allowEvents)
	}
}
