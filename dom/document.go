// Package dom adapts an x/net/html node tree into a live document: it routes
// every structural, attribute and text change through methods that report
// mutation records, keeps user-editable form state apart from attributes,
// and dispatches events with bubbling.
//
// A Document is not safe for concurrent use. Own it from one goroutine, the
// way a browser owns its DOM from the event loop; runtime.Loop provides such
// a goroutine.
package dom

import (
	"bytes"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/vcrobe/morph/events"
)

// Document owns a live node tree.
type Document struct {
	root *html.Node

	events     events.Target
	nodeEvents map[*html.Node]*events.Target
	props      map[*html.Node]map[string]string

	observers    map[uint64]func(MutationRecord)
	nextObserver uint64
}

var _ events.Sink = (*Document)(nil)

// NewDocument wraps root. A nil root yields an empty html/head/body
// skeleton.
func NewDocument(root *html.Node) *Document {
	if root == nil {
		root, _ = html.Parse(strings.NewReader(""))
	}
	return &Document{
		root:       root,
		nodeEvents: make(map[*html.Node]*events.Target),
		props:      make(map[*html.Node]map[string]string),
		observers:  make(map[uint64]func(MutationRecord)),
	}
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(root), nil
}

// ParseString is Parse for an in-memory page.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the body element, or nil.
func (d *Document) Body() *html.Node {
	return htmlquery.FindOne(d.root, "//body")
}

// Contains reports whether n is attached to this document.
func (d *Document) Contains(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}

// HTML serializes the whole document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteTo serializes the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	s, err := d.HTML()
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, s)
	return int64(n), err
}

// OuterHTML serializes n and its subtree.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	return htmlquery.InnerText(n)
}

// SetProperty sets a form property such as the current value of an input.
// Properties shadow the attribute of the same name and never produce
// mutation records.
func (d *Document) SetProperty(n *html.Node, name, value string) {
	props := d.props[n]
	if props == nil {
		props = make(map[string]string)
		d.props[n] = props
	}
	props[name] = value
}

// Property returns a form property previously set on n.
func (d *Document) Property(n *html.Node, name string) (string, bool) {
	v, ok := d.props[n][name]
	return v, ok
}

// Value returns the current value of a form control: the value property
// when set, else the value attribute (or the text of a textarea).
func (d *Document) Value(n *html.Node) string {
	if v, ok := d.Property(n, "value"); ok {
		return v
	}
	if Tag(n) == "textarea" {
		return TextContent(n)
	}
	v, _ := Attr(n, "value")
	return v
}

// Checked reports the current checkedness of n.
func (d *Document) Checked(n *html.Node) bool {
	return d.flag(n, "checked")
}

// Selected reports the current selectedness of an option.
func (d *Document) Selected(n *html.Node) bool {
	return d.flag(n, "selected")
}

func (d *Document) flag(n *html.Node, name string) bool {
	if v, ok := d.Property(n, name); ok {
		return v == "true"
	}
	return HasAttr(n, name)
}

// AddEventListener registers fn for events of type typ on n. A nil node
// registers on the document itself.
func (d *Document) AddEventListener(n *html.Node, typ string, fn events.Listener) (remove func()) {
	return d.target(n).On(typ, fn)
}

// Events returns the document-level listener registry.
func (d *Document) Events() *events.Target {
	return &d.events
}

func (d *Document) target(n *html.Node) *events.Target {
	if n == nil || n == d.root {
		return &d.events
	}
	t := d.nodeEvents[n]
	if t == nil {
		t = &events.Target{}
		d.nodeEvents[n] = t
	}
	return t
}

// DispatchEvent delivers e to n, then to each ancestor while the event
// bubbles, ending at the document. Returns false when a listener canceled
// the event.
func (d *Document) DispatchEvent(n *html.Node, e *events.Event) bool {
	if n == nil {
		n = d.root
	}
	e.Target = n
	for cur := n; cur != nil; cur = cur.Parent {
		if t := d.lookup(cur); t != nil {
			e.CurrentTarget = cur
			t.Notify(e)
		}
		if !e.Bubbles || e.PropagationStopped() {
			return !e.DefaultPrevented()
		}
	}
	return !e.DefaultPrevented()
}

func (d *Document) lookup(n *html.Node) *events.Target {
	if n == d.root {
		return &d.events
	}
	return d.nodeEvents[n]
}

// Dispatch delivers e on the document itself.
func (d *Document) Dispatch(e *events.Event) bool {
	return d.DispatchEvent(d.root, e)
}
