package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/value"
)

// evalStringLiteral renders interpolation parts left-to-right and
// concatenates them with the canonical to_string rendering.
func (e *Evaluator) evalStringLiteral(n *ast.StringLiteral) Result {
	var out []byte
	for _, part := range n.Parts {
		if part.Expr == nil {
			out = append(out, part.Text...)
			continue
		}
		res := e.Eval(part.Expr)
		if res.IsAbrupt() {
			return res
		}
		out = append(out, value.ToDisplayString(res.Value)...)
	}
	return Val(value.String{Value: string(out)})
}

func (e *Evaluator) evalListLiteral(n *ast.ListLiteral) Result {
	elems := make([]value.Value, len(n.Elements))
	for i, elExpr := range n.Elements {
		res := e.Eval(elExpr)
		if res.IsAbrupt() {
			return res
		}
		elems[i] = res.Value
	}
	return Val(value.NewList(elems...))
}

// evalDictLiteral evaluates fields left-to-right, rejecting reserved
// keys and duplicates.
//
// Property-style closures are bound to the dict
// that contains them, but that dict doesn't exist as a single value
// until every field has been evaluated. A DictBuilder lets us finalize
// one *value.Dict instance and then, in a second pass, point every
// such closure's BoundDict at it — rather than at whichever
// copy-on-write intermediate existed when the closure literal ran.
func (e *Evaluator) evalDictLiteral(n *ast.DictLiteral) Result {
	b := value.NewDictBuilder()
	seen := map[string]bool{}
	var propertyClosures []*value.ScriptClosure

	for _, entry := range n.Entries {
		key := entry.Key
		if entry.KeyExpr != nil {
			kres := e.Eval(entry.KeyExpr)
			if kres.IsAbrupt() {
				return kres
			}
			s, ok := kres.Value.(value.String)
			if !ok {
				return Fail(rillerr.New("RILL-R-OperandType", entry.KeyExpr.Span(), "dict key must be a string, got %s", value.InferKind(kres.Value)))
			}
			key = s.Value
		}
		if value.ReservedDictKeys[key] {
			return Fail(rillerr.New("RILL-R-ReservedMethod", n.Span(), "%q is a reserved method name and cannot be used as a dict key", key))
		}
		if seen[key] {
			return Fail(rillerr.New("RILL-R-Generic", n.Span(), "duplicate dict key %q", key))
		}
		seen[key] = true

		var vres Result
		if cl, ok := entry.Value.(*ast.ClosureLiteral); ok && len(cl.Params) == 0 {
			// Direct zero-param closure in a dict-literal field
			// position: mark it isProperty and fix up BoundDict once
			// the dict is finalized, below.
			vres = e.evalClosureLiteral(cl, true)
		} else {
			vres = e.Eval(entry.Value)
		}
		if vres.IsAbrupt() {
			return vres
		}
		b.Set(key, vres.Value)
		if sc, ok := vres.Value.(*value.ScriptClosure); ok && sc.IsProperty {
			propertyClosures = append(propertyClosures, sc)
		}
	}

	d := b.Dict()
	for _, sc := range propertyClosures {
		sc.BoundDict = d
	}
	return Val(d)
}
