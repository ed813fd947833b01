package databinding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/morph/dom"
	"github.com/vcrobe/morph/runtime"
	"github.com/vcrobe/morph/testcomponents"
)

func TestCounter_InitialRender(t *testing.T) {
	h := testcomponents.NewHarness()
	h.Attach(&Counter{Count: 5, Label: "Test Counter"})

	assert.Equal(t, []string{"Count: 5", "Label: Test Counter"}, h.Texts("p"))
	assert.Len(t, h.All("div.counter"), 1)
}

func TestCounter_StateUpdateKeepsNodes(t *testing.T) {
	counter := &Counter{Count: 3, Label: "Initial"}
	h := testcomponents.NewHarness()
	h.Attach(counter)
	first := h.One("p")

	counter.Increment()
	assert.Equal(t, "Count: 3", dom.TextContent(first), "render waits for the frame")
	require.Equal(t, 1, h.Flush())

	assert.Equal(t, []string{"Count: 4", "Label: Initial"}, h.Texts("p"))
	assert.Same(t, first, h.One("p"))
}

func TestCounter_UpdatesCoalesce(t *testing.T) {
	counter := &Counter{Count: 2, Label: "Start"}
	h := testcomponents.NewHarness()
	c := h.Attach(counter)

	for i := 0; i < 5; i++ {
		counter.Increment()
	}
	counter.SetLabel("Updated")
	assert.Equal(t, runtime.StateScheduled, c.State())

	assert.Equal(t, 1, h.Flush())
	assert.Equal(t, []string{"Count: 7", "Label: Updated"}, h.Texts("p"))
	assert.Equal(t, runtime.StateIdle, c.State())
}

func TestCounter_RenderIsolation(t *testing.T) {
	counter1 := &Counter{Count: 10, Label: "First"}
	counter2 := &Counter{Count: 20, Label: "Second"}
	h1 := testcomponents.NewHarness()
	h2 := testcomponents.NewHarness()
	h1.Attach(counter1)
	h2.Attach(counter2)

	counter1.Increment()
	h1.Flush()
	h2.Flush()

	assert.Equal(t, "Count: 11", h1.Texts("p")[0])
	assert.Equal(t, "Count: 20", h2.Texts("p")[0])
}

func TestCounter_LabelIsText(t *testing.T) {
	h := testcomponents.NewHarness()
	h.Attach(&Counter{Label: "<b>bold</b>"})

	assert.Empty(t, h.All("b"))
	assert.Equal(t, "Label: <b>bold</b>", h.Texts("p")[1])
}

func TestCounter_InlineEvents(t *testing.T) {
	h := testcomponents.NewHarness()
	h.Attach(&Counter{})
	_, ok := dom.Attr(h.One("button"), "onclick")
	assert.False(t, ok, "inline handlers are dropped by default")

	h = testcomponents.NewHarness()
	h.Attach(&Counter{}, runtime.WithInlineEvents(true))
	v, ok := dom.Attr(h.One("button"), "onclick")
	assert.True(t, ok)
	assert.Equal(t, "increment()", v)
}

func TestCounter_DetachedWarns(t *testing.T) {
	counter := &Counter{}

	assert.NotPanics(t, counter.Increment)
	assert.Equal(t, 1, counter.Count)
}
