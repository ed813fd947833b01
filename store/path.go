package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var (
	// ErrPathNotFound is returned when a path segment is missing or is not
	// a container.
	ErrPathNotFound = errors.New("store: path not found")
	// ErrBadIndex is returned for list indexes that are not non-negative
	// integers or are out of range.
	ErrBadIndex = errors.New("store: bad list index")
	// ErrNotList is returned by Append on a map node.
	ErrNotList = errors.New("store: not a list")
)

// splitPath turns "todos.items[0].title" into [todos items 0 title].
// Brackets and dots may be mixed freely: "items[0]title" and "items.[0]"
// are accepted.
func splitPath(path string) []string {
	var keys []string
	for _, item := range strings.Split(path, ".") {
		keys = append(keys, strings.FieldsFunc(item, func(r rune) bool {
			return r == '[' || r == ']'
		})...)
	}
	return keys
}

// Get returns the value at path. The empty path returns the root node.
func (s *Store) Get(path string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walk(path, splitPath(path))
}

// Set stores v at path. Every segment but the last must already exist.
func (s *Store) Set(path string, v any) error {
	parent, key, err := s.parent(path)
	if err != nil {
		return err
	}
	if err := parent.Set(key, v); err != nil {
		return fmt.Errorf("set %q: %w", path, err)
	}
	return nil
}

// Delete removes the value at path.
func (s *Store) Delete(path string) error {
	parent, key, err := s.parent(path)
	if err != nil {
		return err
	}
	if err := parent.Delete(key); err != nil {
		return fmt.Errorf("delete %q: %w", path, err)
	}
	return nil
}

// Decode copies the value at path into out with mapstructure, honoring
// `mapstructure` struct tags.
func (s *Store) Decode(path string, out any) error {
	v, err := s.Get(path)
	if err != nil {
		return err
	}
	s.mu.RLock()
	data := plain(v)
	s.mu.RUnlock()
	if err := mapstructure.Decode(data, out); err != nil {
		return fmt.Errorf("decode %q: %w", path, err)
	}
	return nil
}

func (s *Store) parent(path string) (*Node, string, error) {
	keys := splitPath(path)
	if len(keys) == 0 {
		return nil, "", fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}
	s.mu.Lock()
	v, err := s.walk(path, keys[:len(keys)-1])
	s.mu.Unlock()
	if err != nil {
		return nil, "", err
	}
	parent, ok := v.(*Node)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}
	return parent, keys[len(keys)-1], nil
}

// walk follows keys from the root. The caller holds s.mu for writing.
func (s *Store) walk(path string, keys []string) (any, error) {
	var cur any = s.root
	for _, key := range keys {
		n, ok := cur.(*Node)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, path)
		}
		v, found := n.get(key)
		if !found {
			if n.list {
				return nil, fmt.Errorf("%w: %q", ErrBadIndex, path)
			}
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, path)
		}
		cur = v
	}
	return cur, nil
}
