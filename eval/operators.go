package eval

import (
	"strings"

	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// evalBinaryExpr implements the arithmetic, comparison,
// logical and `??` operators. `&&`/`||` short-circuit and yield the
// deciding operand's own value rather than coercing to bool, matching
// the Language's "truthy short-circuit" wording; `??` yields its right
// operand only when the left is exactly null.
func (e *Evaluator) evalBinaryExpr(n *ast.BinaryExpr) Result {
	if n.Op == "&&" || n.Op == "||" {
		lres := e.Eval(n.Left)
		if lres.IsAbrupt() {
			return lres
		}
		truthy := value.IsTruthy(lres.Value)
		if (n.Op == "&&" && !truthy) || (n.Op == "||" && truthy) {
			return Val(lres.Value)
		}
		return e.Eval(n.Right)
	}

	if n.Op == "??" {
		lres := e.Eval(n.Left)
		if lres.IsAbrupt() {
			return lres
		}
		if _, isNull := lres.Value.(value.Null); isNull || lres.Value == nil {
			return e.Eval(n.Right)
		}
		return Val(lres.Value)
	}

	lres := e.Eval(n.Left)
	if lres.IsAbrupt() {
		return lres
	}
	rres := e.Eval(n.Right)
	if rres.IsAbrupt() {
		return rres
	}
	return evalBinaryOp(n.Op, lres.Value, rres.Value, n.Span())
}

func evalBinaryOp(op string, l, r value.Value, span token.Span) Result {
	switch op {
	case "==":
		return Val(value.Bool{Value: value.Equal(l, r)})
	case "!=":
		return Val(value.Bool{Value: !value.Equal(l, r)})
	}

	if op == "+" {
		if ls, ok := l.(value.String); ok {
			if rs, ok := r.(value.String); ok {
				return Val(value.String{Value: ls.Value + rs.Value})
			}
		}
		if ll, ok := l.(*value.List); ok {
			if rl, ok := r.(*value.List); ok {
				combined := make([]value.Value, 0, len(ll.Elements)+len(rl.Elements))
				combined = append(combined, ll.Elements...)
				combined = append(combined, rl.Elements...)
				return Val(value.NewList(combined...))
			}
		}
	}

	ln, lok := l.(value.Number)
	rn, rok := r.(value.Number)
	if !lok || !rok {
		if op == "<" || op == "<=" || op == ">" || op == ">=" {
			ls, lok2 := l.(value.String)
			rs, rok2 := r.(value.String)
			if lok2 && rok2 {
				return Val(value.Bool{Value: compareStrings(op, ls.Value, rs.Value)})
			}
		}
		return Fail(rillerr.New("RILL-R-OperandType", span,
			"operator %q requires numeric operands, got %s and %s", op, value.InferKind(l), value.InferKind(r)))
	}

	switch op {
	case "+":
		return Val(value.Number{Value: ln.Value + rn.Value})
	case "-":
		return Val(value.Number{Value: ln.Value - rn.Value})
	case "*":
		return Val(value.Number{Value: ln.Value * rn.Value})
	case "/":
		if rn.Value == 0 {
			return Fail(rillerr.New("RILL-R-DivisionByZero", span, "division by zero"))
		}
		return Val(value.Number{Value: ln.Value / rn.Value})
	case "%":
		if rn.Value == 0 {
			return Fail(rillerr.New("RILL-R-DivisionByZero", span, "division by zero"))
		}
		return Val(value.Number{Value: floatMod(ln.Value, rn.Value)})
	case "<":
		return Val(value.Bool{Value: ln.Value < rn.Value})
	case "<=":
		return Val(value.Bool{Value: ln.Value <= rn.Value})
	case ">":
		return Val(value.Bool{Value: ln.Value > rn.Value})
	case ">=":
		return Val(value.Bool{Value: ln.Value >= rn.Value})
	default:
		return Fail(rillerr.New("RILL-R-Generic", span, "unsupported binary operator %q", op))
	}
}

func compareStrings(op, l, r string) bool {
	c := strings.Compare(l, r)
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

func floatMod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

// evalUnaryExpr implements `!` (logical not) and unary `-` (numeric
// negation).
func (e *Evaluator) evalUnaryExpr(n *ast.UnaryExpr) Result {
	res := e.Eval(n.Operand)
	if res.IsAbrupt() {
		return res
	}
	switch n.Op {
	case "!":
		return Val(value.Bool{Value: !value.IsTruthy(res.Value)})
	case "-":
		num, ok := res.Value.(value.Number)
		if !ok {
			return Fail(rillerr.New("RILL-R-OperandType", n.Span(), "unary - requires a number, got %s", value.InferKind(res.Value)))
		}
		return Val(value.Number{Value: -num.Value})
	default:
		return Fail(rillerr.New("RILL-R-Generic", n.Span(), "unsupported unary operator %q", n.Op))
	}
}
