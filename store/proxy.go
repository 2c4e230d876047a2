package store

import "reflect"

// Proxy builds dotted paths segment by segment with live validation: each
// At call re-checks the accumulated path against a fresh copy of the
// current state and fails immediately with a PathError if any segment is
// unknown. This lets calling code reference fields without hand-writing
// path strings and fail fast when a field is renamed or removed.
//
// A proxy owns nothing and caches nothing; it is recreated on every
// access. A proxy built before a shape-changing replacement can therefore
// go stale — re-derive proxies rather than storing them.
type Proxy[S any] struct {
	store *Store[S]
	path  string
}

// State returns the root proxy for fluent path construction.
func (s *Store[S]) State() Proxy[S] {
	return Proxy[S]{store: s}
}

// At appends segments to the accumulated path, validating each one
// against the current state. The first unknown segment aborts with a
// PathError naming it and the full attempted path.
func (p Proxy[S]) At(segments ...string) (Proxy[S], error) {
	cur := p
	for _, seg := range segments {
		next := cur.path
		if next == "" {
			next = seg
		} else {
			next = next + "." + seg
		}

		snapshot := cur.store.CurrentState()
		if _, err := resolveValue(reflect.ValueOf(&snapshot).Elem(), next); err != nil {
			return Proxy[S]{}, err
		}
		cur = Proxy[S]{store: cur.store, path: next}
	}
	return cur, nil
}

// MustAt is At for statically known paths; it panics on a PathError.
func (p Proxy[S]) MustAt(segments ...string) Proxy[S] {
	next, err := p.At(segments...)
	if err != nil {
		panic(err)
	}
	return next
}

// String returns the accumulated dotted path.
func (p Proxy[S]) String() string {
	return p.path
}

// PathOf validates and joins segments into a dotted path in one call.
func (s *Store[S]) PathOf(segments ...string) (string, error) {
	p, err := s.State().At(segments...)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}
