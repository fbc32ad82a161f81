package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// evalErrorExpr implements `error "message"`: raises a
// RILL-R-UserError carrying the rendered message.
func (e *Evaluator) evalErrorExpr(n *ast.ErrorExpr) Result {
	mres := e.Eval(n.Message)
	if mres.IsAbrupt() {
		return mres
	}
	return Fail(rillerr.New("RILL-R-UserError", n.Span(), "%s", value.ToDisplayString(mres.Value)))
}

// evalAssertExpr implements `assert cond, "message"`: passes through
// cond's value when truthy, otherwise raises RILL-R-AssertionFailed.
func (e *Evaluator) evalAssertExpr(n *ast.AssertExpr) Result {
	cres := e.Eval(n.Cond)
	if cres.IsAbrupt() {
		return cres
	}
	if value.IsTruthy(cres.Value) {
		return Val(cres.Value)
	}
	msg := "assertion failed"
	if n.Message != nil {
		mres := e.Eval(n.Message)
		if mres.IsAbrupt() {
			return mres
		}
		msg = value.ToDisplayString(mres.Value)
	}
	return Fail(rillerr.New("RILL-R-AssertionFailed", n.Span(), "%s", msg))
}

// checkAutoException implements the auto-exception
// sweep: after every statement and pipe segment, a string pipe value
// that fully matches one of the context's compiled patterns raises
// RILL-R-AutoException instead of flowing onward silently.
func (e *Evaluator) checkAutoException(v value.Value, span token.Span) *rillerr.Error {
	if len(e.Ctx.AutoExceptions) == 0 {
		return nil
	}
	s, ok := v.(value.String)
	if !ok {
		return nil
	}
	for _, p := range e.Ctx.AutoExceptions {
		if p.Compiled.MatchString(s.Value) {
			return rillerr.NewAutoException(span, p.Source, s.Value)
		}
	}
	return nil
}
