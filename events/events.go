// Package events carries notifications between the store, the live document
// and render controllers.
//
// Event names follow a single prefix so that several libraries can share a
// document without colliding:
//
//	morph:store-change            store created without a namespace
//	morph:store-change-<ns>       store created with namespace <ns>
//	morph:render                  a render pass finished on a mount
package events

import "sync"

// Prefix is prepended to every event name emitted by this module.
const Prefix = "morph:"

const (
	// StoreChange is the event type of a store without a namespace.
	StoreChange = Prefix + "store-change"
	// Render is dispatched on a mount node after each render pass.
	Render = Prefix + "render"
)

// StoreEventName returns the event type emitted by a store created with the
// given namespace.
func StoreEventName(namespace string) string {
	if namespace == "" {
		return StoreChange
	}
	return StoreChange + "-" + namespace
}

// Event is a single notification. Bubbling and cancelation mirror the DOM
// CustomEvent semantics.
type Event struct {
	Type       string
	Detail     any
	Bubbles    bool
	Cancelable bool

	// Target is the object the event was dispatched on. CurrentTarget is
	// the object whose listeners are running.
	Target        any
	CurrentTarget any

	defaultPrevented bool
	stopped          bool
}

// New returns a bubbling, cancelable event.
func New(typ string, detail any) *Event {
	return &Event{
		Type:       typ,
		Detail:     detail,
		Bubbles:    true,
		Cancelable: true,
	}
}

// PreventDefault marks a cancelable event as canceled.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether a listener canceled the event.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents the event from reaching further targets.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// Listener handles an event.
type Listener func(*Event)

// Sink receives dispatched events. Dispatch returns false when a listener
// canceled the event.
type Sink interface {
	Dispatch(e *Event) bool
}

// Target is a registry of listeners keyed by event type. The zero value is
// ready to use and safe for concurrent use.
type Target struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]listenerEntry
}

type listenerEntry struct {
	id uint64
	fn Listener
}

var _ Sink = (*Target)(nil)

// On registers fn for events of type typ.
// Returns a remove func; calling it more than once is harmless.
func (t *Target) On(typ string, fn Listener) (remove func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listeners == nil {
		t.listeners = make(map[string][]listenerEntry)
	}
	t.nextID++
	id := t.nextID
	t.listeners[typ] = append(t.listeners[typ], listenerEntry{id: id, fn: fn})

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		entries := t.listeners[typ]
		for i, entry := range entries {
			if entry.id == id {
				t.listeners[typ] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
		if len(t.listeners[typ]) == 0 {
			delete(t.listeners, typ)
		}
	}
}

// Len returns the number of listeners registered for typ.
func (t *Target) Len(typ string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.listeners[typ])
}

// Notify runs the listeners registered for e.Type in registration order.
// Listeners added or removed while the event is running take effect for
// the next event.
func (t *Target) Notify(e *Event) {
	t.mu.RLock()
	entries := make([]listenerEntry, len(t.listeners[e.Type]))
	copy(entries, t.listeners[e.Type])
	t.mu.RUnlock()

	for _, entry := range entries {
		entry.fn(e)
	}
}

// Dispatch delivers e to this target only.
func (t *Target) Dispatch(e *Event) bool {
	if e.Target == nil {
		e.Target = t
	}
	e.CurrentTarget = t
	t.Notify(e)
	return !e.DefaultPrevented()
}
