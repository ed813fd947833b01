package multiline

import (
	"fmt"
	"html"

	"github.com/vcrobe/morph/runtime"
)

// MultilineText renders tags whose attributes span several lines, with a
// user-editable input and a placeholder that is only set on creation.
type MultilineText struct {
	runtime.ComponentBase
	Title   string
	Message string
	Count   int
}

func (m *MultilineText) Template() (string, error) {
	return fmt.Sprintf(`
<section
  class="note"
  data-count="%d">
  <h2>%s</h2>
  <input
    type="text"
    name="message"
    value="%s"
    #placeholder="%s">
</section>`,
		m.Count,
		html.EscapeString(m.Title),
		html.EscapeString(m.Message),
		html.EscapeString(m.Title)), nil
}

func (m *MultilineText) SetTitle(title string) {
	m.Title = title
	m.Count++
	m.StateHasChanged()
}
