package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/value"
)

// evalCallExpr implements the explicit invocation form `f(a, b)` /
// `closure($)`: it is not a pipe-chain segment, so it
// neither installs a new $ nor reads the upstream pipe value — $
// inside the callee/args expressions is whatever the enclosing scope's
// current pipe value already is.
func (e *Evaluator) evalCallExpr(n *ast.CallExpr) Result {
	calleeRes := e.Eval(n.Callee)
	if calleeRes.IsAbrupt() {
		return calleeRes
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		ar := e.Eval(a)
		if ar.IsAbrupt() {
			return ar
		}
		args[i] = ar.Value
	}
	return e.invokeAt(calleeRes.Value, args, nil, false, n.Span())
}
