// Package embed provides a high-level host-embedding API over
// runtime.Context/eval.Execute: reflection-based Go<->script value
// conversion plus a VM type that binds Go functions and values into a
// running context.
package embed

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rill-lang/rill/value"
)

// Marshaller converts between Go values and Rill value.Value via
// reflection.
type Marshaller struct{}

// NewMarshaller returns a ready-to-use Marshaller. It carries no state;
// the type exists as a constructor seam and to leave room for future
// caching.
func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value into the matching value.Value.
func (m *Marshaller) ToValue(v interface{}) (value.Value, error) {
	if v == nil {
		return value.Null{}, nil
	}
	switch t := v.(type) {
	case value.Value:
		return t, nil
	case bool:
		return value.Bool{Value: t}, nil
	case string:
		return value.String{Value: t}, nil
	case int:
		return value.Number{Value: float64(t)}, nil
	case int32:
		return value.Number{Value: float64(t)}, nil
	case int64:
		return value.Number{Value: float64(t)}, nil
	case float32:
		return value.Number{Value: float64(t)}, nil
	case float64:
		return value.Number{Value: t}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]value.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := m.ToValue(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return value.NewList(elems...), nil
	case reflect.Map:
		d := value.NewDict()
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			ev, err := m.ToValue(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			d = d.With(key, ev)
		}
		return d, nil
	case reflect.Func:
		return m.funcToHostFunction(rv), nil
	}

	return nil, fmt.Errorf("embed: cannot convert Go value of type %T to a script value", v)
}

// funcToHostFunction wraps an arbitrary Go func via reflection into a
// value.HostFunction, the same "call Go from a script" direction the
// teacher's hostCallHandler implements for bound functions.
func (m *Marshaller) funcToHostFunction(fn reflect.Value) *value.HostFunction {
	fnType := fn.Type()
	numIn := fnType.NumIn()
	variadic := fnType.IsVariadic()
	params := make([]value.ParamSpec, numIn)
	for i := 0; i < numIn; i++ {
		params[i] = value.ParamSpec{Name: fmt.Sprintf("arg%d", i)}
	}

	return &value.HostFunction{
		Params: params,
		Fn: func(_ context.Context, _ value.Host, args []value.Value) (value.Value, error) {
			if variadic {
				if len(args) < numIn-1 {
					return nil, fmt.Errorf("expected at least %d arguments, got %d", numIn-1, len(args))
				}
			} else if len(args) != numIn {
				return nil, fmt.Errorf("expected %d arguments, got %d", numIn, len(args))
			}

			goArgs := make([]reflect.Value, len(args))
			for i, a := range args {
				var targetType reflect.Type
				switch {
				case variadic && i >= numIn-1:
					targetType = fnType.In(numIn - 1).Elem()
				default:
					targetType = fnType.In(i)
				}
				gv, err := m.FromValue(a)
				if err != nil {
					return nil, fmt.Errorf("argument %d: %w", i, err)
				}
				if gv == nil {
					goArgs[i] = reflect.Zero(targetType)
				} else {
					goArgs[i] = reflect.ValueOf(gv).Convert(targetType)
				}
			}

			results := fn.Call(goArgs)
			if len(results) == 0 {
				return value.Null{}, nil
			}
			if len(results) == 1 {
				return m.ToValue(results[0].Interface())
			}
			elems := make([]value.Value, len(results))
			for i, r := range results {
				rv, err := m.ToValue(r.Interface())
				if err != nil {
					return nil, err
				}
				elems[i] = rv
			}
			return value.NewList(elems...), nil
		},
	}
}

// FromValue converts a value.Value back into a Go interface{}.
func (m *Marshaller) FromValue(v value.Value) (interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case value.Null:
		return nil, nil
	case value.Bool:
		return t.Value, nil
	case value.String:
		return t.Value, nil
	case value.Number:
		return t.Value, nil
	case *value.List:
		out := make([]interface{}, len(t.Elements))
		for i, el := range t.Elements {
			gv, err := m.FromValue(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case *value.Dict:
		out := make(map[string]interface{}, t.Len())
		for _, k := range t.Keys() {
			ev, _ := t.Get(k)
			gv, err := m.FromValue(ev)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = gv
		}
		return out, nil
	case *value.Vector:
		out := make([]float32, len(t.Values))
		copy(out, t.Values)
		return out, nil
	default:
		return v, nil
	}
}
