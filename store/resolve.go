package store

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// structTable is the precomputed accessor table for one struct type.
// Paths are resolved against this table instead of scanning fields on
// every call.
type structTable struct {
	// byName maps both the Go field name and its json tag name to the
	// field index. The json name wins when the two collide across fields.
	byName map[string]int

	// names holds the canonical path name of each addressable field in
	// declaration order (json tag name when present, Go name otherwise).
	// Used for whole-model replace fan-out.
	names []string

	// indexes holds the field index parallel to names.
	indexes []int
}

var tables sync.Map // reflect.Type -> *structTable

func tableFor(t reflect.Type) *structTable {
	if cached, ok := tables.Load(t); ok {
		return cached.(*structTable)
	}

	tbl := &structTable{byName: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		canonical := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name != "" && name != "-" {
				canonical = name
				tbl.byName[name] = i
			}
		}
		tbl.byName[f.Name] = i
		tbl.names = append(tbl.names, canonical)
		tbl.indexes = append(tbl.indexes, i)
	}

	actual, _ := tables.LoadOrStore(t, tbl)
	return actual.(*structTable)
}

// deref unwraps pointers and interfaces down to the underlying value.
// Nil pointers and nil interfaces are returned as-is for the caller to
// report.
func deref(v reflect.Value) reflect.Value {
	for {
		switch v.Kind() {
		case reflect.Pointer, reflect.Interface:
			if v.IsNil() {
				return v
			}
			v = v.Elem()
		default:
			return v
		}
	}
}

// walkSegment steps one segment into cur: struct fields by name, slice
// and array elements by decimal index, map entries by key.
func walkSegment(cur reflect.Value, seg, fullPath string) (reflect.Value, error) {
	cur = deref(cur)
	if !cur.IsValid() || ((cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface) && cur.IsNil()) {
		return reflect.Value{}, &PathError{Path: fullPath, Segment: seg, Message: "cannot descend into nil value"}
	}

	switch cur.Kind() {
	case reflect.Struct:
		tbl := tableFor(cur.Type())
		i, ok := tbl.byName[seg]
		if !ok {
			return reflect.Value{}, &PathError{Path: fullPath, Segment: seg, Message: "no such field on " + cur.Type().String()}
		}
		return cur.Field(i), nil

	case reflect.Slice, reflect.Array:
		n, err := strconv.Atoi(seg)
		if err != nil {
			return reflect.Value{}, &PathError{Path: fullPath, Segment: seg, Message: "sequence index must be a decimal integer"}
		}
		if n < 0 || n >= cur.Len() {
			return reflect.Value{}, &PathError{Path: fullPath, Segment: seg, Message: "index out of range (len " + strconv.Itoa(cur.Len()) + ")"}
		}
		return cur.Index(n), nil

	case reflect.Map:
		if cur.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, &PathError{Path: fullPath, Segment: seg, Message: "map key type is not string-like"}
		}
		key := reflect.ValueOf(seg).Convert(cur.Type().Key())
		v := cur.MapIndex(key)
		if !v.IsValid() {
			return reflect.Value{}, &PathError{Path: fullPath, Segment: seg, Message: "no such key in map"}
		}
		return v, nil

	default:
		return reflect.Value{}, &PathError{Path: fullPath, Segment: seg, Message: "cannot descend into " + cur.Kind().String()}
	}
}

// splitPath validates and splits a dotted path.
func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, &PathError{Path: path, Message: "empty path"}
	}
	segs := strings.Split(path, ".")
	for _, seg := range segs {
		if seg == "" {
			return nil, &PathError{Path: path, Segment: seg, Message: "empty segment"}
		}
	}
	return segs, nil
}

// resolveValue walks the full path read-only and returns the value at it.
func resolveValue(root reflect.Value, path string) (reflect.Value, error) {
	segs, err := splitPath(path)
	if err != nil {
		return reflect.Value{}, err
	}
	cur := root
	for _, seg := range segs {
		cur, err = walkSegment(cur, seg, path)
		if err != nil {
			return reflect.Value{}, err
		}
	}
	return cur, nil
}

// declaredType returns the declared type of the slot a path addresses:
// the struct field type, slice element type, or map value type —
// independent of what the slot currently holds.
func declaredType(root reflect.Value, path string) (reflect.Type, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		cur, err = walkSegment(cur, seg, path)
		if err != nil {
			return nil, err
		}
	}

	parent := deref(cur)
	last := segs[len(segs)-1]
	switch parent.Kind() {
	case reflect.Struct:
		tbl := tableFor(parent.Type())
		i, ok := tbl.byName[last]
		if !ok {
			return nil, &PathError{Path: path, Segment: last, Message: "no such field on " + parent.Type().String()}
		}
		return parent.Type().Field(i).Type, nil
	case reflect.Slice, reflect.Array:
		if _, err := walkSegment(parent, last, path); err != nil {
			return nil, err
		}
		return parent.Type().Elem(), nil
	case reflect.Map:
		if _, err := walkSegment(parent, last, path); err != nil {
			return nil, err
		}
		return parent.Type().Elem(), nil
	default:
		return nil, &PathError{Path: path, Segment: last, Message: "cannot descend into " + parent.Kind().String()}
	}
}

// leafFunc computes the replacement value for the final path segment,
// given its declared type and current value.
type leafFunc func(decl reflect.Type, old reflect.Value) (reflect.Value, error)

// setPath applies leaf at the path below cur and returns the (possibly
// replaced) value of cur. Slices and maps along the spine are copied
// rather than mutated, so references retained before the call keep their
// old contents. Structs reached through pointers are written through the
// pointer; the pointed-to struct was allocated by this store and is not
// shared with snapshots, which are deep copies.
func setPath(cur reflect.Value, segs []string, path string, leaf leafFunc) (reflect.Value, error) {
	switch cur.Kind() {
	case reflect.Pointer:
		if cur.IsNil() {
			return reflect.Value{}, &PathError{Path: path, Segment: segs[0], Message: "cannot descend into nil pointer"}
		}
		nv, err := setPath(cur.Elem(), segs, path, leaf)
		if err != nil {
			return reflect.Value{}, err
		}
		cur.Elem().Set(nv)
		return cur, nil

	case reflect.Struct:
		tbl := tableFor(cur.Type())
		i, ok := tbl.byName[segs[0]]
		if !ok {
			return reflect.Value{}, &PathError{Path: path, Segment: segs[0], Message: "no such field on " + cur.Type().String()}
		}

		out := cur
		if !cur.Field(i).CanSet() {
			// Reached as an unaddressable copy (e.g. a struct stored as a
			// map value): rebuild and hand the replacement to the caller.
			out = reflect.New(cur.Type()).Elem()
			out.Set(cur)
		}
		nv, err := descend(out.Field(i), out.Type().Field(i).Type, segs, path, leaf)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(i).Set(nv)
		return out, nil

	case reflect.Slice:
		n, err := strconv.Atoi(segs[0])
		if err != nil {
			return reflect.Value{}, &PathError{Path: path, Segment: segs[0], Message: "sequence index must be a decimal integer"}
		}
		if n < 0 || n >= cur.Len() {
			return reflect.Value{}, &PathError{Path: path, Segment: segs[0], Message: "index out of range (len " + strconv.Itoa(cur.Len()) + ")"}
		}
		cp := reflect.MakeSlice(cur.Type(), cur.Len(), cur.Len())
		reflect.Copy(cp, cur)
		nv, err := descend(cp.Index(n), cur.Type().Elem(), segs, path, leaf)
		if err != nil {
			return reflect.Value{}, err
		}
		cp.Index(n).Set(nv)
		return cp, nil

	case reflect.Map:
		if cur.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, &PathError{Path: path, Segment: segs[0], Message: "map key type is not string-like"}
		}
		key := reflect.ValueOf(segs[0]).Convert(cur.Type().Key())
		old := cur.MapIndex(key)
		if !old.IsValid() {
			return reflect.Value{}, &PathError{Path: path, Segment: segs[0], Message: "no such key in map"}
		}
		nv, err := descend(old, cur.Type().Elem(), segs, path, leaf)
		if err != nil {
			return reflect.Value{}, err
		}
		cp := reflect.MakeMapWithSize(cur.Type(), cur.Len())
		iter := cur.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), iter.Value())
		}
		cp.SetMapIndex(key, nv)
		return cp, nil

	default:
		return reflect.Value{}, &PathError{Path: path, Segment: segs[0], Message: "cannot descend into " + cur.Kind().String()}
	}
}

// descend either applies the leaf (final segment) or recurses.
func descend(child reflect.Value, decl reflect.Type, segs []string, path string, leaf leafFunc) (reflect.Value, error) {
	if len(segs) == 1 {
		return leaf(decl, child)
	}
	return setPath(child, segs[1:], path, leaf)
}
