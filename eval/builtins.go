package eval

import (
	"sort"
	"strings"

	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// evalMethodCall implements the `.method(args)` pipe-segment target:
// a fixed set of runtime-builtin methods on strings,
// lists, dicts and vectors. Method calls don't go through the general
// Callable/ParamSpec machinery since their arity and typing are each
// method's own concern, not a user-declarable callable's.
func (e *Evaluator) evalMethodCall(name string, argExprs []ast.Expression, upstream value.Value, span token.Span) Result {
	args := make([]value.Value, len(argExprs))
	for i, a := range argExprs {
		ar := e.Eval(a)
		if ar.IsAbrupt() {
			return ar
		}
		args[i] = ar.Value
	}

	e.Ctx.Emit("host_call", map[string]interface{}{"function": "." + name})

	v, err := dispatchMethod(name, upstream, args, span)
	if err != nil {
		return Fail(err)
	}
	return Val(v)
}

func dispatchMethod(name string, recv value.Value, args []value.Value, span token.Span) (value.Value, *rillerr.Error) {
	switch name {
	case "len":
		return methodLen(recv, span)
	case "type":
		return value.String{Value: string(value.InferKind(recv))}, nil
	case "to_string":
		return value.String{Value: value.ToDisplayString(recv)}, nil
	case "upper":
		s, err := wantString(recv, name, span)
		if err != nil {
			return nil, err
		}
		return value.String{Value: strings.ToUpper(s)}, nil
	case "lower":
		s, err := wantString(recv, name, span)
		if err != nil {
			return nil, err
		}
		return value.String{Value: strings.ToLower(s)}, nil
	case "trim":
		s, err := wantString(recv, name, span)
		if err != nil {
			return nil, err
		}
		return value.String{Value: strings.TrimSpace(s)}, nil
	case "split":
		s, err := wantString(recv, name, span)
		if err != nil {
			return nil, err
		}
		sep := ""
		if len(args) > 0 {
			sepS, ok := args[0].(value.String)
			if !ok {
				return nil, rillerr.New("RILL-R-OperandType", span, ".split separator must be a string")
			}
			sep = sepS.Value
		}
		var parts []string
		if sep == "" {
			parts = strings.Fields(s)
		} else {
			parts = strings.Split(s, sep)
		}
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = value.String{Value: p}
		}
		return value.NewList(elems...), nil
	case "join":
		l, err := wantList(recv, name, span)
		if err != nil {
			return nil, err
		}
		sep := ""
		if len(args) > 0 {
			sepS, ok := args[0].(value.String)
			if !ok {
				return nil, rillerr.New("RILL-R-OperandType", span, ".join separator must be a string")
			}
			sep = sepS.Value
		}
		parts := make([]string, len(l.Elements))
		for i, el := range l.Elements {
			parts[i] = value.ToDisplayString(el)
		}
		return value.String{Value: strings.Join(parts, sep)}, nil
	case "contains":
		return methodContains(recv, args, span)
	case "push":
		l, err := wantList(recv, name, span)
		if err != nil {
			return nil, err
		}
		combined := make([]value.Value, 0, len(l.Elements)+len(args))
		combined = append(combined, l.Elements...)
		combined = append(combined, args...)
		return value.NewList(combined...), nil
	case "reverse":
		return methodReverse(recv, span)
	case "first":
		l, err := wantList(recv, name, span)
		if err != nil {
			return nil, err
		}
		if len(l.Elements) == 0 {
			return value.Null{}, nil
		}
		return l.Elements[0], nil
	case "last":
		l, err := wantList(recv, name, span)
		if err != nil {
			return nil, err
		}
		if len(l.Elements) == 0 {
			return value.Null{}, nil
		}
		return l.Elements[len(l.Elements)-1], nil
	case "slice":
		return methodSlice(recv, args, span)
	case "sort":
		return methodSort(recv, span)
	case "keys":
		d, err := wantDict(recv, name, span)
		if err != nil {
			return nil, err
		}
		keys := d.Keys()
		elems := make([]value.Value, len(keys))
		for i, k := range keys {
			elems[i] = value.String{Value: k}
		}
		return value.NewList(elems...), nil
	case "values":
		d, err := wantDict(recv, name, span)
		if err != nil {
			return nil, err
		}
		keys := d.Keys()
		elems := make([]value.Value, len(keys))
		for i, k := range keys {
			v, _ := d.Get(k)
			elems[i] = v
		}
		return value.NewList(elems...), nil
	case "entries":
		d, err := wantDict(recv, name, span)
		if err != nil {
			return nil, err
		}
		keys := d.Keys()
		elems := make([]value.Value, len(keys))
		for i, k := range keys {
			v, _ := d.Get(k)
			elems[i] = value.NewList(value.String{Value: k}, v)
		}
		return value.NewList(elems...), nil
	case "replace":
		s, err := wantString(recv, name, span)
		if err != nil {
			return nil, err
		}
		if len(args) < 2 {
			return nil, rillerr.New("RILL-R-MissingArgument", span, ".replace requires old and new arguments")
		}
		oldS, ok1 := args[0].(value.String)
		newS, ok2 := args[1].(value.String)
		if !ok1 || !ok2 {
			return nil, rillerr.New("RILL-R-OperandType", span, ".replace arguments must be strings")
		}
		return value.String{Value: strings.ReplaceAll(s, oldS.Value, newS.Value)}, nil
	default:
		return nil, rillerr.New("RILL-R-UnknownIdentifier", span, "unknown method %q", name)
	}
}

func methodLen(recv value.Value, span token.Span) (value.Value, *rillerr.Error) {
	switch t := recv.(type) {
	case value.String:
		return value.Number{Value: float64(len([]rune(t.Value)))}, nil
	case *value.List:
		return value.Number{Value: float64(t.Len())}, nil
	case *value.Dict:
		return value.Number{Value: float64(t.Len())}, nil
	case *value.Vector:
		return value.Number{Value: float64(len(t.Values))}, nil
	default:
		return nil, rillerr.New("RILL-R-OperandType", span, ".len is not defined for %s", value.InferKind(recv))
	}
}

func methodContains(recv value.Value, args []value.Value, span token.Span) (value.Value, *rillerr.Error) {
	if len(args) == 0 {
		return nil, rillerr.New("RILL-R-MissingArgument", span, ".contains requires one argument")
	}
	switch t := recv.(type) {
	case value.String:
		needle, ok := args[0].(value.String)
		if !ok {
			return nil, rillerr.New("RILL-R-OperandType", span, ".contains on a string requires a string argument")
		}
		return value.Bool{Value: strings.Contains(t.Value, needle.Value)}, nil
	case *value.List:
		for _, el := range t.Elements {
			if value.Equal(el, args[0]) {
				return value.Bool{Value: true}, nil
			}
		}
		return value.Bool{Value: false}, nil
	case *value.Dict:
		key, ok := args[0].(value.String)
		if !ok {
			return nil, rillerr.New("RILL-R-OperandType", span, ".contains on a dict requires a string key")
		}
		_, exists := t.Get(key.Value)
		return value.Bool{Value: exists}, nil
	default:
		return nil, rillerr.New("RILL-R-OperandType", span, ".contains is not defined for %s", value.InferKind(recv))
	}
}

func methodReverse(recv value.Value, span token.Span) (value.Value, *rillerr.Error) {
	switch t := recv.(type) {
	case *value.List:
		out := make([]value.Value, len(t.Elements))
		for i, el := range t.Elements {
			out[len(out)-1-i] = el
		}
		return value.NewList(out...), nil
	case value.String:
		rs := []rune(t.Value)
		for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
			rs[i], rs[j] = rs[j], rs[i]
		}
		return value.String{Value: string(rs)}, nil
	default:
		return nil, rillerr.New("RILL-R-OperandType", span, ".reverse is not defined for %s", value.InferKind(recv))
	}
}

func methodSlice(recv value.Value, args []value.Value, span token.Span) (value.Value, *rillerr.Error) {
	l, err := wantList(recv, "slice", span)
	if err != nil {
		return nil, err
	}
	n := len(l.Elements)
	start, end := 0, n
	if len(args) > 0 {
		sv, ok := args[0].(value.Number)
		if !ok {
			return nil, rillerr.New("RILL-R-OperandType", span, ".slice start must be a number")
		}
		start = clampIndex(int(sv.Value), n)
	}
	if len(args) > 1 {
		ev, ok := args[1].(value.Number)
		if !ok {
			return nil, rillerr.New("RILL-R-OperandType", span, ".slice end must be a number")
		}
		end = clampIndex(int(ev.Value), n)
	}
	if start > end {
		start = end
	}
	out := make([]value.Value, end-start)
	copy(out, l.Elements[start:end])
	return value.NewList(out...), nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func methodSort(recv value.Value, span token.Span) (value.Value, *rillerr.Error) {
	l, err := wantList(recv, "sort", span)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(l.Elements))
	copy(out, l.Elements)
	sort.SliceStable(out, func(i, j int) bool {
		ni, iok := out[i].(value.Number)
		nj, jok := out[j].(value.Number)
		if iok && jok {
			return ni.Value < nj.Value
		}
		return value.ToDisplayString(out[i]) < value.ToDisplayString(out[j])
	})
	return value.NewList(out...), nil
}

func wantString(v value.Value, method string, span token.Span) (string, *rillerr.Error) {
	s, ok := v.(value.String)
	if !ok {
		return "", rillerr.New("RILL-R-OperandType", span, ".%s requires a string, got %s", method, value.InferKind(v))
	}
	return s.Value, nil
}

func wantList(v value.Value, method string, span token.Span) (*value.List, *rillerr.Error) {
	l, ok := v.(*value.List)
	if !ok {
		return nil, rillerr.New("RILL-R-OperandType", span, ".%s requires a list, got %s", method, value.InferKind(v))
	}
	return l, nil
}

func wantDict(v value.Value, method string, span token.Span) (*value.Dict, *rillerr.Error) {
	d, ok := v.(*value.Dict)
	if !ok {
		return nil, rillerr.New("RILL-R-OperandType", span, ".%s requires a dict, got %s", method, value.InferKind(v))
	}
	return d, nil
}
