package runtime

import (
	"github.com/vcrobe/morph/dom"
	"github.com/vcrobe/morph/vdom"
)

// Component is a widget that renders itself from a template method.
// Embedding ComponentBase provides SetController.
type Component interface {
	// Template returns the component markup for the current state.
	Template() (string, error)

	// SetController is called by Attach so that StateHasChanged can
	// request renders.
	SetController(c *Controller)
}

// Attach creates a controller for comp and hands it to the component.
func Attach(doc *dom.Document, mount vdom.Mount, comp Component, opts ...Option) *Controller {
	c := New(doc, mount, comp.Template, opts...)
	comp.SetController(c)
	return c
}
