// Package tracker keeps an ordered list of owned native resources and
// releases them in reverse order of registration.
package tracker

import "reflect"

// Releaser is a native object that must be released exactly once.
// Resources are matched by identity, so implementations are usually
// pointers. A non-comparable Releaser can be tracked and torn down, but
// Untrack and Tracked never find it.
type Releaser interface {
	Release()
}

// Tracker owns registered resources until they are untracked or torn down.
// The zero value is ready to use. A Tracker is not safe for concurrent use.
type Tracker struct {
	items []Releaser
}

// Track registers r and returns it unchanged. Registering a resource that
// is already tracked is a no-op, so it is still released once.
func (t *Tracker) Track(r Releaser) Releaser {
	if !t.Tracked(r) {
		t.items = append(t.items, r)
	}
	return r
}

// Keep is Track for callers that want r back with its concrete type.
func Keep[T Releaser](t *Tracker, r T) T {
	t.Track(r)
	return r
}

// Untrack removes r from the tracker and releases it immediately.
// It reports false, and releases nothing, if r is not tracked.
func (t *Tracker) Untrack(r Releaser) bool {
	for i := len(t.items) - 1; i >= 0; i-- {
		if !same(t.items[i], r) {
			continue
		}
		t.items = append(t.items[:i], t.items[i+1:]...)
		r.Release()
		return true
	}
	return false
}

// TeardownAll releases every tracked resource, last registered first, and
// leaves the tracker empty.
func (t *Tracker) TeardownAll() {
	for len(t.items) > 0 {
		last := len(t.items) - 1
		r := t.items[last]
		t.items[last] = nil
		t.items = t.items[:last]
		r.Release()
	}
}

// Len returns the number of live tracked resources.
func (t *Tracker) Len() int {
	return len(t.items)
}

// Tracked reports whether r is currently registered.
func (t *Tracker) Tracked(r Releaser) bool {
	for _, it := range t.items {
		if same(it, r) {
			return true
		}
	}
	return false
}

// same compares by identity without panicking on non-comparable dynamic
// types.
func same(a, b Releaser) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
