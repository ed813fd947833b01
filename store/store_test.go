package store

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/morph/console"
	"github.com/vcrobe/morph/dom"
	"github.com/vcrobe/morph/events"
)

// counting returns a store and a pointer to the number of notifications it
// has dispatched.
func counting(t *testing.T, data map[string]any, namespace string) (*Store, *int) {
	t.Helper()
	s := New(data, namespace, WithLogger(console.NewNop()))
	count := 0
	s.Events().On(s.EventName(), func(e *events.Event) { count++ })
	return s, &count
}

func TestNew_EventNames(t *testing.T) {
	assert.Equal(t, "morph:store-change", New(nil, "").EventName())
	assert.Equal(t, "morph:store-change-todos", New(nil, "todos").EventName())
	assert.Equal(t, "todos", New(nil, "todos").Namespace())
	assert.Equal(t, 0, New(nil, "").Root().Len())
}

func TestSet_SameValueIsNoop(t *testing.T) {
	s, count := counting(t, map[string]any{"count": 1}, "")

	require.NoError(t, s.Root().Set("count", 1))
	assert.Equal(t, 0, *count)

	require.NoError(t, s.Root().Set("count", 2))
	require.NoError(t, s.Root().Set("count", 2))
	assert.Equal(t, 1, *count)
	assert.Equal(t, 2, s.Root().Get("count"))
}

func TestGet_WrapperIdentity(t *testing.T) {
	s, count := counting(t, map[string]any{
		"todos": []any{"a"},
		"user":  map[string]any{"name": "Ann"},
	}, "")

	first, ok := s.Root().Get("todos").(*Node)
	require.True(t, ok)
	second := s.Root().Get("todos").(*Node)
	assert.Same(t, first, second)
	assert.True(t, first.IsList())

	user := s.Root().Get("user").(*Node)
	assert.Same(t, user, s.Root().Get("user"))
	assert.False(t, user.IsList())

	// Writing a wrapper back over itself changes nothing.
	require.NoError(t, s.Root().Set("todos", first))
	assert.Equal(t, 0, *count)
}

func TestNestedMutationsNotify(t *testing.T) {
	s, count := counting(t, map[string]any{
		"todos": []any{map[string]any{"title": "a", "done": false}},
	}, "todos")
	var detail any
	s.Events().On(s.EventName(), func(e *events.Event) { detail = e.Detail })

	todos := s.Root().Get("todos").(*Node)
	require.NoError(t, todos.Append(map[string]any{"title": "b"}))
	item := todos.At(0).(*Node)
	require.NoError(t, item.Set("done", true))

	assert.Equal(t, 2, *count)
	assert.Same(t, s.Root(), detail)
	assert.Equal(t, 2, todos.Len())
}

func TestDelete_AlwaysNotifies(t *testing.T) {
	s, count := counting(t, map[string]any{"a": 1}, "")

	require.NoError(t, s.Root().Delete("a"))
	require.NoError(t, s.Root().Delete("missing"))

	assert.Equal(t, 2, *count)
	assert.Equal(t, 0, s.Root().Len())
}

func TestListOperations(t *testing.T) {
	s, count := counting(t, map[string]any{"l": []any{"a", "b", "c"}}, "")
	l := s.Root().Get("l").(*Node)

	require.NoError(t, l.Delete("1"))
	assert.Equal(t, []any{"a", "c"}, l.Snapshot())

	require.NoError(t, l.Set("2", "d"))
	assert.Equal(t, []string{"0", "1", "2"}, l.Keys())

	assert.ErrorIs(t, l.Set("9", "x"), ErrBadIndex)
	assert.ErrorIs(t, l.Set("x", "x"), ErrBadIndex)
	assert.ErrorIs(t, l.Delete("-1"), ErrBadIndex)
	assert.ErrorIs(t, s.Root().Append("x"), ErrNotList)
	assert.Nil(t, l.At(7))

	assert.Equal(t, 2, *count)
}

func TestOpaqueValuesPassThrough(t *testing.T) {
	s, count := counting(t, nil, "")
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	fn := func() {}
	tags := []string{"x"}

	require.NoError(t, s.Root().Set("when", when))
	require.NoError(t, s.Root().Set("when", when))
	require.NoError(t, s.Root().Set("tags", tags))
	require.NoError(t, s.Root().Set("tags", tags))
	require.NoError(t, s.Root().Set("fn", fn))
	require.NoError(t, s.Root().Set("fn", fn))

	assert.Equal(t, when, s.Root().Get("when"))
	assert.Equal(t, tags, s.Root().Get("tags"))
	// Functions never compare equal, so both writes notify.
	assert.Equal(t, 4, *count)
}

func TestSnapshot_IsDeepPlainCopy(t *testing.T) {
	s := New(map[string]any{
		"todos": []any{map[string]any{"title": "a"}},
	}, "")
	// Force wrapping before the snapshot.
	s.Root().Get("todos").(*Node).At(0)

	snap := s.Snapshot()
	todos, ok := snap["todos"].([]any)
	require.True(t, ok)
	item, ok := todos[0].(map[string]any)
	require.True(t, ok)
	item["title"] = "changed"

	v, err := s.Get("todos[0].title")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestReplace(t *testing.T) {
	s, count := counting(t, map[string]any{"a": 1, "b": 2, "c": 3}, "")

	s.Replace(map[string]any{"a": 1, "b": 20, "d": 4})

	assert.Equal(t, []string{"a", "b", "d"}, s.Root().Keys())
	assert.Equal(t, 20, s.Root().Get("b"))
	// b changed, c deleted, d added.
	assert.Equal(t, 3, *count)
}

func TestWithSink_Document(t *testing.T) {
	doc := dom.NewDocument(nil)
	s := New(nil, "cart", WithSink(doc), WithLogger(console.NewNop()))
	var got *events.Event
	doc.Events().On("morph:store-change-cart", func(e *events.Event) { got = e })

	require.NoError(t, s.Root().Set("items", 3))

	require.NotNil(t, got)
	assert.Same(t, s.Root(), got.Detail)
	assert.True(t, got.Bubbles)
	assert.True(t, got.Cancelable)
	assert.Nil(t, s.Events())
}

func TestConcurrentWrites(t *testing.T) {
	s := New(nil, "", WithLogger(console.NewNop()))
	var count atomic.Int64
	s.Events().On(s.EventName(), func(e *events.Event) { count.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Root().Set("k", i)
			_ = s.Root().Get("k")
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, count.Load(), int64(50))
	assert.GreaterOrEqual(t, count.Load(), int64(1))
}

func TestSame(t *testing.T) {
	m := map[string]any{}
	l := []any{1}
	n := &Node{}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"int vs float", 1, 1.0, false},
		{"strings", "a", "a", true},
		{"nils", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"same map", m, m, true},
		{"different maps", m, map[string]any{}, false},
		{"same slice", l, l, true},
		{"resliced", l, l[:0], false},
		{"same node", n, n, true},
		{"different nodes", n, &Node{}, false},
		{"node vs map", n, m, false},
		{"func", func() {}, func() {}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, same(tt.a, tt.b), tt.name)
	}
}
