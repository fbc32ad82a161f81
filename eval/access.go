package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// recoverableAccess is the set of error IDs a `?? default` clause
// catches: failures intrinsic to resolving the access
// chain itself, never cancellation, stack-overflow or timeout errors
// that should always propagate.
var recoverableAccess = map[rillerr.ID]bool{
	"RILL-R-MissingField":       true,
	"RILL-R-IndexOutOfRange":    true,
	"RILL-R-AlternativesMissing": true,
}

// evalPostfixExpr implements the property-access chain: a
// primary expression followed by field/index/var-key/computed/
// alternatives/existence steps, with an optional `?? default` clause
// that substitutes a fallback value for any recoverable failure in the
// chain.
func (e *Evaluator) evalPostfixExpr(n *ast.PostfixExpr) Result {
	baseRes := e.Eval(n.Base)
	if baseRes.IsAbrupt() {
		return baseRes
	}

	cur := baseRes.Value
	for _, step := range n.Steps {
		res := e.evalAccessStep(cur, step, n.Span())
		if res.Err != nil {
			if n.Default != nil && recoverableAccess[res.Err.ErrID] {
				return e.Eval(n.Default)
			}
			return res
		}
		if res.IsAbrupt() {
			return res
		}
		cur = res.Value
	}
	if n.Default != nil {
		if _, isNull := cur.(value.Null); isNull || cur == nil {
			return e.Eval(n.Default)
		}
	}
	return Val(cur)
}

func (e *Evaluator) evalAccessStep(cur value.Value, step ast.AccessStep, span token.Span) Result {
	switch s := step.(type) {
	case ast.FieldAccess:
		return e.dictField(cur, s.Name, span)

	case ast.IndexAccess:
		kres := e.Eval(s.Key)
		if kres.IsAbrupt() {
			return kres
		}
		return e.indexInto(cur, kres.Value, span)

	case ast.VarKeyAccess:
		kv, ok := e.Ctx.Get(s.VarName)
		if !ok {
			return Fail(rillerr.New("RILL-R-UndefinedVariable", span, "undefined variable %q", s.VarName))
		}
		return e.indexInto(cur, kv, span)

	case ast.ComputedAccess:
		kres := e.Eval(s.Expr)
		if kres.IsAbrupt() {
			return kres
		}
		return e.indexInto(cur, kres.Value, span)

	case ast.AlternativesAccess:
		d, ok := cur.(*value.Dict)
		if !ok {
			return Fail(rillerr.New("RILL-R-OperandType", span, "alternatives access requires a dict, got %s", value.InferKind(cur)))
		}
		for _, key := range s.Keys {
			if _, ok := d.Get(key); ok {
				return e.dictField(d, key, span)
			}
		}
		return Fail(rillerr.New("RILL-R-AlternativesMissing", span, "none of the alternative keys %v are present", s.Keys))

	case ast.ExistenceAccess:
		d, ok := cur.(*value.Dict)
		if !ok {
			return Val(value.Bool{Value: false})
		}
		fv, exists := d.Get(s.Field)
		if !exists {
			return Val(value.Bool{Value: false})
		}
		if s.Type != "" && !value.CheckType(fv, s.Type) {
			return Val(value.Bool{Value: false})
		}
		return Val(value.Bool{Value: true})

	default:
		return Fail(rillerr.New("RILL-R-Generic", span, "unhandled access step %T", step))
	}
}

// dictField looks up key on a *value.Dict, auto-invoking a
// property-style closure field rather than returning the closure
// value itself.
func (e *Evaluator) dictField(cur value.Value, key string, span token.Span) Result {
	d, ok := cur.(*value.Dict)
	if !ok {
		return Fail(rillerr.New("RILL-R-OperandType", span, "field access requires a dict, got %s", value.InferKind(cur)))
	}
	fv, exists := d.Get(key)
	if !exists {
		return Fail(rillerr.New("RILL-R-MissingField", span, "dict has no field %q", key).
			WithContext(map[string]interface{}{"field": key}))
	}
	if sc, ok := fv.(*value.ScriptClosure); ok && sc.IsProperty {
		return e.invokeScriptClosure(sc, nil, sc.BoundDict, true, span)
	}
	return Val(fv)
}

// indexInto resolves a string-keyed or numeric index against a dict,
// list or vector (negative indices wrap from the end).
func (e *Evaluator) indexInto(cur value.Value, key value.Value, span token.Span) Result {
	switch c := cur.(type) {
	case *value.Dict:
		s, ok := key.(value.String)
		if !ok {
			return Fail(rillerr.New("RILL-R-OperandType", span, "dict index must be a string, got %s", value.InferKind(key)))
		}
		return e.dictField(c, s.Value, span)

	case *value.List:
		n, ok := key.(value.Number)
		if !ok {
			return Fail(rillerr.New("RILL-R-OperandType", span, "list index must be a number, got %s", value.InferKind(key)))
		}
		i, ok := c.Index(int(n.Value))
		if !ok {
			return Fail(rillerr.New("RILL-R-IndexOutOfRange", span, "index %d out of range for list of length %d", int(n.Value), c.Len()))
		}
		return Val(c.Elements[i])

	case *value.Vector:
		n, ok := key.(value.Number)
		if !ok {
			return Fail(rillerr.New("RILL-R-OperandType", span, "vector index must be a number, got %s", value.InferKind(key)))
		}
		i := int(n.Value)
		if i < 0 {
			i += len(c.Values)
		}
		if i < 0 || i >= len(c.Values) {
			return Fail(rillerr.New("RILL-R-IndexOutOfRange", span, "index %d out of range for vector of length %d", int(n.Value), len(c.Values)))
		}
		return Val(value.Number{Value: float64(c.Values[i])})

	case value.String:
		n, ok := key.(value.Number)
		if !ok {
			return Fail(rillerr.New("RILL-R-OperandType", span, "string index must be a number, got %s", value.InferKind(key)))
		}
		rs := []rune(c.Value)
		i := int(n.Value)
		if i < 0 {
			i += len(rs)
		}
		if i < 0 || i >= len(rs) {
			return Fail(rillerr.New("RILL-R-IndexOutOfRange", span, "index %d out of range for string of length %d", int(n.Value), len(rs)))
		}
		return Val(value.String{Value: string(rs[i])})

	default:
		return Fail(rillerr.New("RILL-R-OperandType", span, "value of type %s cannot be indexed", value.InferKind(cur)))
	}
}
