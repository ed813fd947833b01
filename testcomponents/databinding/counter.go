package databinding

import (
	"fmt"
	"html"

	"github.com/vcrobe/morph/runtime"
)

// Counter keeps its state in fields and asks for renders through
// StateHasChanged.
type Counter struct {
	runtime.ComponentBase
	Count int
	Label string
}

func (c *Counter) Template() (string, error) {
	return fmt.Sprintf(`<div class="counter"><p>Count: %d</p><p>Label: %s</p><button onclick="increment()">+</button></div>`,
		c.Count, html.EscapeString(c.Label)), nil
}

func (c *Counter) Increment() {
	c.Count++
	c.StateHasChanged()
}

func (c *Counter) SetLabel(label string) {
	c.Label = label
	c.StateHasChanged()
}
