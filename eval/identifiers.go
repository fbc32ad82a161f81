package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
)

// evalIdentifier implements `get(name)`: a bound
// variable reference, falling back to the context's registered host
// functions when no variable has that name. It returns the callable
// itself rather than auto-invoking it — explicit invocation happens
// through CallExpr or a pipe-chain segment, never through a bare name
// reference.
func (e *Evaluator) evalIdentifier(n *ast.Identifier) Result {
	v, ok := e.Ctx.Get(n.Name)
	if !ok {
		if fn, isFn := e.Ctx.Functions[n.Name]; isFn {
			return Val(fn)
		}
		return Fail(rillerr.New("RILL-R-UndefinedVariable", n.Span(), "undefined variable %q", n.Name).
			WithContext(map[string]interface{}{"name": n.Name}))
	}
	return Val(v)
}
