package trackby

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/vcrobe/morph/runtime"
	"github.com/vcrobe/morph/store"
)

// TagList renders the "tags" list of a store. Each item carries an id, so
// reordering and removal move live nodes instead of rewriting them.
// Mutations go through the store, which triggers renders on its own.
type TagList struct {
	runtime.ComponentBase
	Tags *store.Store
}

func (t *TagList) list() (*store.Node, error) {
	v, err := t.Tags.Get("tags")
	if err != nil {
		return nil, err
	}
	list, ok := v.(*store.Node)
	if !ok || !list.IsList() {
		return nil, fmt.Errorf("tags: want a list, got %T", v)
	}
	return list, nil
}

func (t *TagList) Template() (string, error) {
	list, err := t.list()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(`<div class="tags"><ul>`)
	for i := 0; i < list.Len(); i++ {
		tag := html.EscapeString(fmt.Sprint(list.At(i)))
		fmt.Fprintf(&b, `<li id="tag-%s">Tag %d: %s</li>`, tag, i, tag)
	}
	fmt.Fprintf(&b, `</ul><p>%d tags</p></div>`, list.Len())
	return b.String(), nil
}

func (t *TagList) AddTag(tag string) error {
	list, err := t.list()
	if err != nil {
		return err
	}
	return list.Append(tag)
}

// RemoveTag deletes the first occurrence of tag.
func (t *TagList) RemoveTag(tag string) error {
	list, err := t.list()
	if err != nil {
		return err
	}
	for i := 0; i < list.Len(); i++ {
		if list.At(i) == tag {
			return list.Delete(strconv.Itoa(i))
		}
	}
	return nil
}

func (t *TagList) ClearTags() error {
	return t.Tags.Set("tags", []any{})
}
