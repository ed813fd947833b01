package store

import (
	"fmt"
	"sort"
	"strconv"
)

// Node wraps a map[string]any or []any held by a store. Reads wrap nested
// containers in place; writes and deletes notify the store.
type Node struct {
	store *Store
	m     map[string]any
	l     []any
	list  bool
}

// Store returns the store the node belongs to.
func (n *Node) Store() *Store {
	return n.store
}

// IsList reports whether the node wraps a []any.
func (n *Node) IsList() bool {
	return n.list
}

// Get returns the value at key: a primitive, an opaque value, or a *Node
// for a nested map or list. List nodes take decimal indexes as keys.
// Missing keys read as nil.
func (n *Node) Get(key string) any {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	v, _ := n.get(key)
	return v
}

// At returns the list element at i.
func (n *Node) At(i int) any {
	return n.Get(strconv.Itoa(i))
}

// Set stores v at key and notifies, unless v equals the current value.
// On a list, key may be one past the last index to append.
func (n *Node) Set(key string, v any) error {
	n.store.mu.Lock()
	changed, err := n.set(key, v)
	n.store.mu.Unlock()
	if err != nil || !changed {
		return err
	}
	n.store.notify(key)
	return nil
}

// Delete removes key and notifies, even when key was absent. Deleting from
// a list removes the element and shifts the rest down.
func (n *Node) Delete(key string) error {
	n.store.mu.Lock()
	err := n.del(key)
	n.store.mu.Unlock()
	if err != nil {
		return err
	}
	n.store.notify(key)
	return nil
}

// Append adds values to the end of a list and notifies once.
func (n *Node) Append(values ...any) error {
	if !n.list {
		return ErrNotList
	}
	if len(values) == 0 {
		return nil
	}
	n.store.mu.Lock()
	n.l = append(n.l, values...)
	key := strconv.Itoa(len(n.l) - 1)
	n.store.mu.Unlock()
	n.store.notify(key)
	return nil
}

// Len returns the number of keys or elements.
func (n *Node) Len() int {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()
	if n.list {
		return len(n.l)
	}
	return len(n.m)
}

// Keys returns the sorted map keys, or the indexes of a list.
func (n *Node) Keys() []string {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()
	if n.list {
		keys := make([]string, len(n.l))
		for i := range n.l {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	}
	keys := make([]string, 0, len(n.m))
	for k := range n.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a deep plain copy: map[string]any or []any with no
// *Node values inside.
func (n *Node) Snapshot() any {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()
	return plain(n)
}

// wrap returns v as a *Node when it is a raw container.
func (n *Node) wrap(v any) (any, bool) {
	switch c := v.(type) {
	case map[string]any:
		return &Node{store: n.store, m: c}, true
	case []any:
		return &Node{store: n.store, l: c, list: true}, true
	}
	return v, false
}

// get reads key, replacing a raw container with its wrapper. The caller
// holds the store lock for writing.
func (n *Node) get(key string) (any, bool) {
	if n.list {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(n.l) {
			return nil, false
		}
		v, wrapped := n.wrap(n.l[i])
		if wrapped {
			n.l[i] = v
		}
		return v, true
	}
	raw, ok := n.m[key]
	if !ok {
		return nil, false
	}
	v, wrapped := n.wrap(raw)
	if wrapped {
		n.m[key] = v
	}
	return v, true
}

func (n *Node) set(key string, v any) (bool, error) {
	if n.list {
		i, err := index(key)
		if err != nil {
			return false, err
		}
		switch {
		case i < len(n.l):
			if same(n.l[i], v) {
				return false, nil
			}
			n.l[i] = v
		case i == len(n.l):
			n.l = append(n.l, v)
		default:
			return false, fmt.Errorf("%w: %d past end of list of %d", ErrBadIndex, i, len(n.l))
		}
		return true, nil
	}
	if cur, ok := n.m[key]; ok && same(cur, v) {
		return false, nil
	}
	if n.m == nil {
		n.m = make(map[string]any)
	}
	n.m[key] = v
	return true, nil
}

func (n *Node) del(key string) error {
	if !n.list {
		delete(n.m, key)
		return nil
	}
	i, err := index(key)
	if err != nil {
		return err
	}
	if i < len(n.l) {
		n.l = append(n.l[:i], n.l[i+1:]...)
	}
	return nil
}

func index(key string) (int, error) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadIndex, key)
	}
	return i, nil
}

// plain deep-copies v, unwrapping nodes.
func plain(v any) any {
	switch c := v.(type) {
	case *Node:
		if c.list {
			return plainList(c.l)
		}
		return plainMap(c.m)
	case map[string]any:
		return plainMap(c)
	case []any:
		return plainList(c)
	}
	return v
}

func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plainList(l []any) []any {
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = plain(v)
	}
	return out
}
