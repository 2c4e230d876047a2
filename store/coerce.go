package store

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// coerce produces a value assignable to the declared slot type.
//
// Structural literals are accepted for struct-typed slots: a
// map[string]any of compatible shape is decoded into a fresh instance of
// the struct (honoring json tags), so callers need not pre-build typed
// values. Numeric and same-kind named types are converted. Anything else
// that is not directly assignable is a TypeError.
func coerce(decl reflect.Type, value any, path, op string) (reflect.Value, error) {
	if value == nil {
		if !isNilable(decl.Kind()) {
			return reflect.Value{}, &TypeError{Path: path, Op: op, Want: decl.String(), Got: "nil"}
		}
		return reflect.Zero(decl), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(decl) {
		return rv, nil
	}

	// Structural literal into a struct-typed (or *struct-typed) slot.
	base := decl
	wantPtr := false
	if base.Kind() == reflect.Pointer && base.Elem().Kind() == reflect.Struct {
		base = base.Elem()
		wantPtr = true
	}
	if base.Kind() == reflect.Struct {
		if m, ok := value.(map[string]any); ok {
			inst := reflect.New(base)
			dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				TagName: "json",
				Result:  inst.Interface(),
			})
			if err != nil {
				return reflect.Value{}, fmt.Errorf("coerce %q: %w", path, err)
			}
			if err := dec.Decode(m); err != nil {
				return reflect.Value{}, &TypeError{Path: path, Op: op, Want: decl.String(), Got: "map[string]any", Message: err.Error()}
			}
			if wantPtr {
				return inst, nil
			}
			return inst.Elem(), nil
		}
	}

	// Numeric widening/narrowing and named-type conversion.
	if rv.Type().ConvertibleTo(decl) {
		sameKind := rv.Kind() == decl.Kind()
		if sameKind || (isNumeric(rv.Kind()) && isNumeric(decl.Kind())) {
			return rv.Convert(decl), nil
		}
	}

	return reflect.Value{}, &TypeError{Path: path, Op: op, Want: decl.String(), Got: rv.Type().String()}
}
