package store

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// ApplyJSONMutation decodes a journaled mutation payload against the
// declared type at its path and applies it through the normal mutation
// methods, so replayed mutations emit the same notifications as live
// ones. This is the typed replay surface used by the journal package.
func (s *Store[S]) ApplyJSONMutation(op MutationOp, path, key string, value json.RawMessage) error {
	switch op {
	case OpUpdate:
		decl, err := declaredType(s.root(), path)
		if err != nil {
			return err
		}
		v, err := decodeAs(decl, value)
		if err != nil {
			return fmt.Errorf("apply %s at %q: %w", op, path, err)
		}
		return s.Update(path, v)

	case OpListAdd:
		decl, err := declaredType(s.root(), path)
		if err != nil {
			return err
		}
		if decl.Kind() != reflect.Slice {
			return &TypeError{Path: path, Op: string(op), Want: "slice", Got: decl.String()}
		}
		item, err := decodeAs(decl.Elem(), value)
		if err != nil {
			return fmt.Errorf("apply %s at %q: %w", op, path, err)
		}
		return s.AddToList(path, item)

	case OpDictAdd:
		decl, err := declaredType(s.root(), path)
		if err != nil {
			return err
		}
		if decl.Kind() != reflect.Map {
			return &TypeError{Path: path, Op: string(op), Want: "map", Got: decl.String()}
		}
		v, err := decodeAs(decl.Elem(), value)
		if err != nil {
			return fmt.Errorf("apply %s at %q: %w", op, path, err)
		}
		return s.AddToDict(path, key, v)

	case OpReplace:
		var ns S
		if err := json.Unmarshal(value, &ns); err != nil {
			return fmt.Errorf("apply %s: %w", op, err)
		}
		s.Replace(ns)
		return nil

	default:
		return fmt.Errorf("apply: unknown mutation op %q", op)
	}
}

// decodeAs unmarshals raw JSON into a fresh instance of t.
func decodeAs(t reflect.Type, raw json.RawMessage) (any, error) {
	inst := reflect.New(t)
	if err := json.Unmarshal(raw, inst.Interface()); err != nil {
		return nil, err
	}
	return inst.Elem().Interface(), nil
}
