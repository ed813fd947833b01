package vdom

import (
	"golang.org/x/net/html"

	"github.com/vcrobe/morph/console"
	"github.com/vcrobe/morph/dom"
	"github.com/vcrobe/morph/events"
)

// Mount names the live node a render lands in: either a node or a CSS
// selector resolved against the document at render time.
type Mount struct {
	node     *html.Node
	selector string
}

// Selector returns a mount resolved by CSS selector on every render.
func Selector(s string) Mount {
	return Mount{selector: s}
}

// Node returns a mount bound to n.
func Node(n *html.Node) Mount {
	return Mount{node: n}
}

// Resolve returns the mount node, or nil when the selector matches nothing.
func (m Mount) Resolve(doc *dom.Document) (*html.Node, error) {
	if m.node != nil {
		return m.node, nil
	}
	if m.selector == "" {
		return nil, nil
	}
	return doc.QuerySelector(m.selector)
}

func (m Mount) String() string {
	if m.selector != "" {
		return m.selector
	}
	if m.node != nil {
		if id, ok := dom.Attr(m.node, "id"); ok {
			return "#" + id
		}
		return m.node.Data
	}
	return ""
}

// Render resolves mount and renders src into it. A mount that resolves to
// nothing makes the call a no-op.
func Render(doc *dom.Document, mount Mount, src string, allowEvents bool) {
	node, err := mount.Resolve(doc)
	if err != nil {
		console.Warn("render skipped", "mount", mount.String(), "err", err)
		return
	}
	RenderTo(doc, node, src, allowEvents)
}

// RenderToSelector renders src into the first element matching selector.
func RenderToSelector(doc *dom.Document, selector, src string, allowEvents bool) {
	Render(doc, Selector(selector), src, allowEvents)
}

// RenderTo parses src and patches it into mount, then dispatches a
// bubbling morph:render event on mount. A nil mount is a no-op.
func RenderTo(doc *dom.Document, mount *html.Node, src string, allowEvents bool) {
	if mount == nil {
		console.Debug("render skipped, mount not found")
		return
	}
	Patch(doc, ParseToTree(src), mount, allowEvents)
	doc.DispatchEvent(mount, events.New(events.Render, nil))
}
