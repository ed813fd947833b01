package store

import "reflect"

// same reports whether writing b over a changes nothing. Primitives compare
// by value, wrappers by identity, maps, slices, pointers and channels by
// reference. Functions never compare equal.
func same(a, b any) bool {
	if an, ok := a.(*Node); ok {
		bn, ok := b.(*Node)
		return ok && an == bn
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() {
		return !ra.IsValid() && !rb.IsValid()
	}
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	case reflect.Func:
		return false
	}
	if ra.Comparable() && rb.Comparable() {
		return a == b
	}
	return false
}
