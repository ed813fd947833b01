// Package testcomponents holds small components that exercise the render
// runtime end to end, and a harness that mounts them in a document.
package testcomponents

import (
	"golang.org/x/net/html"

	"github.com/vcrobe/morph/console"
	"github.com/vcrobe/morph/dom"
	"github.com/vcrobe/morph/runtime"
	"github.com/vcrobe/morph/store"
	"github.com/vcrobe/morph/vdom"
)

const harnessPage = `<!DOCTYPE html><html><head></head><body><div id="root"></div></body></html>`

// Harness owns a document with a single #root mount and a manual
// scheduler, so tests decide when frames run.
type Harness struct {
	Doc   *dom.Document
	Sched *runtime.ManualScheduler
}

// NewHarness returns a harness with an empty #root.
func NewHarness() *Harness {
	doc, err := dom.ParseString(harnessPage)
	if err != nil {
		panic(err)
	}
	return &Harness{Doc: doc, Sched: runtime.NewManualScheduler()}
}

// Store creates a store that notifies the harness document.
func (h *Harness) Store(data map[string]any, namespace string) *store.Store {
	return store.New(data, namespace, store.WithSink(h.Doc), store.WithLogger(console.NewNop()))
}

// Attach mounts comp at #root and runs its first frame.
func (h *Harness) Attach(comp runtime.Component, opts ...runtime.Option) *runtime.Controller {
	opts = append([]runtime.Option{
		runtime.WithScheduler(h.Sched),
		runtime.WithLogger(console.NewNop()),
	}, opts...)
	c := runtime.Attach(h.Doc, vdom.Selector("#root"), comp, opts...)
	h.Sched.Flush()
	return c
}

// Flush runs pending frames.
func (h *Harness) Flush() int {
	return h.Sched.Flush()
}

// Root returns the mount node.
func (h *Harness) Root() *html.Node {
	return h.Doc.GetElementByID("root")
}

// InnerHTML serializes the children of the mount.
func (h *Harness) InnerHTML() string {
	return dom.InnerHTML(h.Root())
}

// All returns the elements below the mount matching selector.
func (h *Harness) All(selector string) []*html.Node {
	nodes, err := h.Doc.QuerySelectorAll("#root " + selector)
	if err != nil {
		panic(err)
	}
	return nodes
}

// One returns the first element below the mount matching selector, or nil.
func (h *Harness) One(selector string) *html.Node {
	nodes := h.All(selector)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Texts returns the text content of every element matching selector.
func (h *Harness) Texts(selector string) []string {
	var out []string
	for _, n := range h.All(selector) {
		out = append(out, dom.TextContent(n))
	}
	return out
}
