package runtime

import "github.com/vcrobe/morph/console"

// ComponentBase is embedded by components to gain StateHasChanged.
type ComponentBase struct {
	controller *Controller
}

// SetController is called by Attach. It should not be called by user code.
func (b *ComponentBase) SetController(c *Controller) {
	b.controller = c
}

// Controller returns the controller rendering the component, or nil.
func (b *ComponentBase) Controller() *Controller {
	return b.controller
}

// StateHasChanged requests a render after component-local state changed.
// State held in a store does not need it; store changes render on their
// own.
func (b *ComponentBase) StateHasChanged() {
	if b.controller == nil {
		console.Warn("StateHasChanged called, but controller is nil (component not attached?)")
		return
	}
	b.controller.Render()
}
