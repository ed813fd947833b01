package trackby

import (
	"fmt"
	"html"
	"strings"

	"github.com/vcrobe/morph/runtime"
)

// Item represents a data item with ID for trackBy
type Item struct {
	ID   int
	Name string
}

// MultiItemList renders two sibling elements per item, both keyed by the
// item id.
type MultiItemList struct {
	runtime.ComponentBase
	Items []Item
}

func (m *MultiItemList) Template() (string, error) {
	var b strings.Builder
	b.WriteString(`<dl>`)
	for _, it := range m.Items {
		fmt.Fprintf(&b, `<dt id="name-%d">%s</dt><dd id="desc-%d">#%d</dd>`,
			it.ID, html.EscapeString(it.Name), it.ID, it.ID)
	}
	b.WriteString(`</dl>`)
	return b.String(), nil
}

func (m *MultiItemList) AddItem(name string) {
	newID := 100 + len(m.Items) + 1
	m.Items = append(m.Items, Item{
		ID:   newID,
		Name: name,
	})
	m.StateHasChanged()
}

// MoveToFront moves the item with id to the start of the list.
func (m *MultiItemList) MoveToFront(id int) {
	for i, it := range m.Items {
		if it.ID == id {
			copy(m.Items[1:i+1], m.Items[:i])
			m.Items[0] = it
			break
		}
	}
	m.StateHasChanged()
}

func (m *MultiItemList) ClearItems() {
	m.Items = []Item{}
	m.StateHasChanged()
}
