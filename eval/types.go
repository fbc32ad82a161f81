package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// operandOrPipe evaluates operand if non-nil, otherwise reads the
// current pipe value (the bare `:T` / `:?T` form).
func (e *Evaluator) operandOrPipe(operand ast.Expression, span token.Span) Result {
	if operand != nil {
		return e.Eval(operand)
	}
	v, ok := e.Ctx.PipeValue()
	if !ok {
		return Fail(rillerr.New("RILL-R-UndefinedVariable", span, "$ is undefined at top level"))
	}
	return Val(v)
}

// evalTypeAssert implements `expr:T`: returns the operand unchanged
// when its inferred type matches T, else RILL-R-TypeAssertion.
func (e *Evaluator) evalTypeAssert(n *ast.TypeAssertExpr) Result {
	res := e.operandOrPipe(n.Operand, n.Span())
	if res.IsAbrupt() {
		return res
	}
	return e.assertType(res.Value, n.Type, n.Span())
}

func (e *Evaluator) assertType(v value.Value, t string, span token.Span) Result {
	if !value.CheckType(v, t) {
		return Fail(rillerr.New("RILL-R-TypeAssertion", span, "expected %s, got %s", t, value.InferKind(v)).
			WithContext(map[string]interface{}{"expected": t, "actual": string(value.InferKind(v))}))
	}
	return Val(v)
}

// evalTypeCheck implements `expr:?T`: a boolean test, never an error.
func (e *Evaluator) evalTypeCheck(n *ast.TypeCheckExpr) Result {
	res := e.operandOrPipe(n.Operand, n.Span())
	if res.IsAbrupt() {
		return res
	}
	return Val(value.Bool{Value: value.CheckType(res.Value, n.Type)})
}
