// Package store provides a reactive data store. Every mutation made through
// a Store or one of its Nodes dispatches a single change event named after
// the store's namespace, so render controllers can listen by name alone.
//
// Nested map[string]any and []any values are wrapped in a *Node the first
// time they are read. The wrapper replaces the raw value in its container,
// so reading the same path twice returns the same *Node and mutations made
// through it notify the owning store.
//
// A Store is safe for concurrent use. Notifications are dispatched after the
// store lock is released, on the goroutine that made the change; when the
// sink is a dom.Document, mutate the store from the goroutine that owns the
// document (see runtime.Loop.Post).
package store

import (
	"log/slog"
	"sync"

	"github.com/vcrobe/morph/console"
	"github.com/vcrobe/morph/events"
	"github.com/vcrobe/morph/metrics"
)

// Store is the root of a reactive data graph.
type Store struct {
	mu   sync.RWMutex
	root *Node

	namespace string
	event     string

	sink    events.Sink
	own     *events.Target
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithSink sends change events to sink instead of the store's own target.
// A dom.Document is the usual sink.
func WithSink(sink events.Sink) Option {
	return func(s *Store) {
		s.sink = sink
	}
}

// WithLogger sets the logger. Defaults to the console logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithMetrics counts notifications.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New wraps data in a store. A nil map starts the store empty. The store
// takes ownership of data; mutate it only through the store afterwards.
func New(data map[string]any, namespace string, opts ...Option) *Store {
	if data == nil {
		data = make(map[string]any)
	}
	s := &Store{
		namespace: namespace,
		event:     events.StoreEventName(namespace),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sink == nil {
		s.own = &events.Target{}
		s.sink = s.own
	}
	if s.logger == nil {
		s.logger = console.Logger()
	}
	s.root = &Node{store: s, m: data}
	return s
}

// Root returns the wrapper around the top-level map.
func (s *Store) Root() *Node {
	return s.root
}

// Namespace returns the namespace the store was created with.
func (s *Store) Namespace() string {
	return s.namespace
}

// EventName returns the type of the events the store dispatches.
func (s *Store) EventName() string {
	return s.event
}

// Events returns the store's own listener registry, or nil when the store
// was created WithSink.
func (s *Store) Events() *events.Target {
	return s.own
}

// Snapshot returns a deep plain copy of the store data.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return plain(s.root).(map[string]any)
}

// Replace makes the top-level keys match data: keys in data are set and
// keys missing from data are deleted. Each change notifies once. Keys whose
// value is unchanged under the write rules of Node.Set stay silent, so
// containers in data always count as changes.
func (s *Store) Replace(data map[string]any) {
	for _, k := range s.root.Keys() {
		if _, ok := data[k]; !ok {
			_ = s.root.Delete(k)
		}
	}
	for k, v := range data {
		_ = s.root.Set(k, v)
	}
}

// notify dispatches the change event. It must be called without s.mu held.
func (s *Store) notify(key string) {
	s.logger.Debug("store changed", "event", s.event, "key", key)
	s.metrics.StoreNotified(s.event)
	s.sink.Dispatch(events.New(s.event, s.root))
}
