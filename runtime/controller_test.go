package runtime

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/vcrobe/morph/console"
	"github.com/vcrobe/morph/dom"
	"github.com/vcrobe/morph/errors"
	"github.com/vcrobe/morph/metrics"
	"github.com/vcrobe/morph/store"
	"github.com/vcrobe/morph/vdom"
)

func newDoc(t *testing.T) (*dom.Document, *html.Node) {
	t.Helper()
	doc, err := dom.ParseString(`<div id="app"></div>`)
	require.NoError(t, err)
	app := doc.GetElementByID("app")
	require.NotNil(t, app)
	return doc, app
}

// captureErrors installs a handler collecting reported errors for the
// duration of the test.
func captureErrors(t *testing.T) *[]*errors.Error {
	t.Helper()
	var got []*errors.Error
	errors.SetHandler(errors.HandlerFunc(func(err *errors.Error) { got = append(got, err) }))
	t.Cleanup(func() { errors.SetHandler(nil) })
	return &got
}

func TestController_CoalescesStoreChanges(t *testing.T) {
	// Arrange
	doc, app := newDoc(t)
	s := store.New(map[string]any{"count": 0}, "counter", store.WithSink(doc), store.WithLogger(console.NewNop()))
	sched := NewManualScheduler()
	calls := 0
	tmpl := func() (string, error) {
		calls++
		return fmt.Sprintf("<p>%v</p>", s.Root().Get("count")), nil
	}
	c := New(doc, vdom.Selector("#app"), tmpl,
		WithStores("counter"),
		WithScheduler(sched),
		WithLogger(console.NewNop()))
	require.Equal(t, 1, sched.Flush())
	require.Equal(t, 1, calls)

	// Act
	require.NoError(t, s.Root().Set("count", 1))
	require.NoError(t, s.Root().Set("count", 2))
	require.NoError(t, s.Root().Set("count", 3))

	// Assert
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, StateScheduled, c.State())
	sched.Flush()
	assert.Equal(t, 2, calls)
	assert.Equal(t, "<p>3</p>", dom.InnerHTML(app))
	assert.Equal(t, StateIdle, c.State())
}

func TestController_RendersOnCreate(t *testing.T) {
	doc, app := newDoc(t)
	sched := NewManualScheduler()

	c := New(doc, vdom.Node(app), func() (string, error) { return "<p>hi</p>", nil },
		WithScheduler(sched), WithLogger(console.NewNop()))

	assert.Equal(t, StateScheduled, c.State())
	assert.Equal(t, "", dom.InnerHTML(app))
	sched.Flush()
	assert.Equal(t, "<p>hi</p>", dom.InnerHTML(app))
}

func TestController_DefaultStoreEvent(t *testing.T) {
	doc, _ := newDoc(t)
	sched := NewManualScheduler()
	c := New(doc, vdom.Selector("#app"), func() (string, error) { return "", nil },
		WithScheduler(sched), WithLogger(console.NewNop()))
	sched.Flush()

	assert.Equal(t, []string{"morph:store-change"}, c.Events())

	s := store.New(nil, "", store.WithSink(doc), store.WithLogger(console.NewNop()))
	require.NoError(t, s.Root().Set("x", 1))
	assert.Equal(t, 1, sched.Pending())

	other := store.New(nil, "other", store.WithSink(doc), store.WithLogger(console.NewNop()))
	sched.Flush()
	require.NoError(t, other.Root().Set("x", 1))
	assert.Equal(t, 0, sched.Pending())
}

func TestController_StopAndStart(t *testing.T) {
	doc, _ := newDoc(t)
	s := store.New(nil, "todos", store.WithSink(doc), store.WithLogger(console.NewNop()))
	sched := NewManualScheduler()
	c := New(doc, vdom.Selector("#app"), func() (string, error) { return "<p>x</p>", nil },
		WithStores("todos"), WithScheduler(sched), WithLogger(console.NewNop()))
	sched.Flush()

	c.Stop()
	require.NoError(t, s.Root().Set("a", 1))
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, doc.Events().Len("morph:store-change-todos"))

	c.Start()
	c.Start()
	assert.Equal(t, 1, doc.Events().Len("morph:store-change-todos"))
	require.NoError(t, s.Root().Set("a", 2))
	assert.Equal(t, 1, sched.Pending())
}

func TestController_StopKeepsPendingFrame(t *testing.T) {
	doc, app := newDoc(t)
	sched := NewManualScheduler()
	content := "<p>one</p>"
	c := New(doc, vdom.Node(app), func() (string, error) { return content, nil },
		WithScheduler(sched), WithLogger(console.NewNop()))
	sched.Flush()

	content = "<p>two</p>"
	c.Render()
	c.Stop()
	sched.Flush()

	assert.Equal(t, "<p>two</p>", dom.InnerHTML(app))
}

func TestController_TemplateErrorIsReported(t *testing.T) {
	doc, app := newDoc(t)
	reported := captureErrors(t)
	sched := NewManualScheduler()
	fail := true
	c := New(doc, vdom.Node(app), func() (string, error) {
		if fail {
			return "", stderrors.New("boom")
		}
		return "<p>ok</p>", nil
	}, WithScheduler(sched), WithName("widget"), WithLogger(console.NewNop()))

	sched.Flush()
	require.Len(t, *reported, 1)
	err := (*reported)[0]
	assert.Equal(t, errors.KindTemplate, err.Kind)
	assert.Equal(t, "runtime.Controller.render", err.Op)
	assert.Equal(t, "widget", err.Component)
	assert.EqualError(t, err.Err, "boom")
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 0, sched.Pending(), "failed frames are not retried")

	fail = false
	c.Render()
	sched.Flush()
	assert.Equal(t, "<p>ok</p>", dom.InnerHTML(app))
	assert.Len(t, *reported, 1)
}

func TestController_TemplatePanicPropagates(t *testing.T) {
	doc, app := newDoc(t)
	sched := NewManualScheduler()
	c := New(doc, vdom.Node(app), func() (string, error) { panic("template bug") },
		WithScheduler(sched), WithLogger(console.NewNop()))

	assert.PanicsWithValue(t, "template bug", func() { sched.Flush() })
	assert.Equal(t, StateIdle, c.State())
}

func TestController_StateWhileRendering(t *testing.T) {
	doc, app := newDoc(t)
	sched := NewManualScheduler()
	var c *Controller
	var during State
	c = New(doc, vdom.Node(app), func() (string, error) {
		during = c.State()
		return "", nil
	}, WithScheduler(sched), WithLogger(console.NewNop()))

	sched.Flush()

	assert.Equal(t, StateRendering, during)
	assert.Equal(t, "rendering", during.String())
}

func TestController_RenderDuringRenderSchedulesNextFrame(t *testing.T) {
	doc, app := newDoc(t)
	sched := NewManualScheduler()
	var c *Controller
	renders := 0
	c = New(doc, vdom.Node(app), func() (string, error) {
		renders++
		if renders == 1 {
			c.Render()
		}
		return "", nil
	}, WithScheduler(sched), WithLogger(console.NewNop()))

	sched.Flush()
	assert.Equal(t, StateScheduled, c.State())
	sched.Flush()
	assert.Equal(t, 2, renders)
	assert.Equal(t, StateIdle, c.State())
}

func TestController_MissingMount(t *testing.T) {
	doc, _ := newDoc(t)
	reported := captureErrors(t)
	sched := NewManualScheduler()
	New(doc, vdom.Selector("#missing"), func() (string, error) { return "<p>x</p>", nil },
		WithScheduler(sched), WithLogger(console.NewNop()))

	assert.NotPanics(t, func() { sched.Flush() })
	assert.Empty(t, *reported)

	New(doc, vdom.Selector("[["), func() (string, error) { return "<p>x</p>", nil },
		WithScheduler(sched), WithLogger(console.NewNop()))
	sched.Flush()
	require.Len(t, *reported, 1)
	assert.Equal(t, errors.KindMount, (*reported)[0].Kind)
}

func TestController_Metrics(t *testing.T) {
	doc, app := newDoc(t)
	reg := prometheus.NewRegistry()
	sched := NewManualScheduler()
	c := New(doc, vdom.Node(app), func() (string, error) { return "<p>x</p>", nil },
		WithScheduler(sched), WithMetrics(metrics.New(reg)), WithName("list"), WithLogger(console.NewNop()))

	c.Render()
	c.Render()
	sched.Flush()

	assert.Equal(t, 1.0, counterValue(t, reg, "morph_renders_total"))
	assert.Equal(t, 2.0, counterValue(t, reg, "morph_frames_coalesced_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "morph_render_duration_seconds"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestComponentBase(t *testing.T) {
	var base ComponentBase
	assert.NotPanics(t, base.StateHasChanged)
	assert.Nil(t, base.Controller())
}
