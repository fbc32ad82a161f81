package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/signal"
	"github.com/rill-lang/rill/value"
)

// evalPipeChain is the central construct of the language: a head
// expression threaded through zero or more `->` segments, each
// evaluated with the prior result installed as $, and an optional
// capture/break/return terminator.
func (e *Evaluator) evalPipeChain(n *ast.PipeChain) Result {
	headRes := e.Eval(n.Head)
	if headRes.IsAbrupt() {
		return headRes
	}
	cur := headRes.Value
	if err := e.checkAutoException(cur, n.Head.Span()); err != nil {
		return Fail(err)
	}

	for _, seg := range n.Segments {
		upstream := cur
		segRes := withPipe(e, upstream, func() Result {
			return e.evalPipeSegment(seg, upstream)
		})
		if segRes.IsAbrupt() {
			return segRes
		}
		cur = segRes.Value
		if cur == nil {
			cur = value.Null{}
		}
		if err := e.checkAutoException(cur, seg.Sp); err != nil {
			return Fail(err)
		}
	}

	if n.Terminator == nil {
		return Val(cur)
	}

	switch t := n.Terminator.(type) {
	case ast.CaptureTerminator:
		var setErr error
		if t.Type != "" {
			setErr = e.Ctx.SetWithType(t.Name, cur, t.Type, n.Span())
		} else {
			setErr = e.Ctx.SetAt(t.Name, cur, n.Span())
		}
		if setErr != nil {
			if rerr, ok := setErr.(*rillerr.Error); ok {
				return Fail(rerr)
			}
			return Fail(rillerr.New("RILL-R-Generic", n.Span(), "%s", setErr.Error()))
		}
		e.Ctx.Emit("capture", map[string]interface{}{"name": t.Name, "value": value.ToDisplayString(cur)})
		return Val(cur)

	case ast.BreakTerminator:
		val := cur
		if t.Value != nil {
			vr := e.Eval(t.Value)
			if vr.IsAbrupt() {
				return vr
			}
			val = vr.Value
		}
		return Signaled(signal.Break{Value: val})

	case ast.ReturnTerminator:
		val := cur
		if t.Value != nil {
			vr := e.Eval(t.Value)
			if vr.IsAbrupt() {
				return vr
			}
			val = vr.Value
		}
		return Signaled(signal.Return{Value: val})
	}
	return Val(cur)
}

// evalPipeSegment evaluates one segment's target. Callers have already
// installed upstream as the current pipe value via withPipe, so any
// sub-evaluation that reads $ sees it automatically; upstream is also
// passed explicitly for targets that need it as a literal argument
// (method calls, bound-identifier auto-invocation).
func (e *Evaluator) evalPipeSegment(seg *ast.PipeSegment, upstream value.Value) Result {
	switch t := seg.Target.(type) {
	case ast.MethodCallTarget:
		return e.evalMethodCall(t.Name, t.Args, upstream, seg.Sp)

	case ast.BoundIdentifierTarget:
		v, ok := e.Ctx.Get(t.Name)
		if !ok {
			return Fail(rillerr.New("RILL-R-UndefinedVariable", seg.Sp, "undefined variable %q", t.Name))
		}
		if callee, ok := v.(value.Callable); ok {
			return e.invokeAt(callee, []value.Value{upstream}, upstream, true, seg.Sp)
		}
		return Val(v)

	case ast.ClosureCallTarget:
		calleeRes := e.Eval(t.Callee)
		if calleeRes.IsAbrupt() {
			return calleeRes
		}
		args := make([]value.Value, len(t.Args))
		for i, a := range t.Args {
			ar := e.Eval(a)
			if ar.IsAbrupt() {
				return ar
			}
			args[i] = ar.Value
		}
		return e.invokeAt(calleeRes.Value, args, upstream, false, seg.Sp)

	case ast.InlineClosureTarget:
		clRes := e.evalClosureLiteral(t.Closure, false)
		closure := clRes.Value.(*value.ScriptClosure)
		var args []value.Value
		if len(closure.Params) > 0 {
			args = []value.Value{upstream}
		}
		return e.invokeScriptClosure(closure, args, upstream, true, seg.Sp)

	case ast.InlineBlockTarget:
		return e.Eval(t.Block)

	case ast.ConditionalTarget:
		return e.evalConditional(t.Cond)

	case ast.TypeAssertTarget:
		return e.assertType(upstream, t.Type, seg.Sp)

	case ast.TypeCheckTarget:
		return Val(value.Bool{Value: value.CheckType(upstream, t.Type)})

	case ast.EachTarget:
		var initExpr ast.Expression
		if t.Init != nil {
			initExpr = *t.Init
		}
		return e.evalEachValue(upstream, initExpr, t.Body, seg.Sp)

	case ast.MapTarget:
		return e.evalMapValue(upstream, t.Body, seg.Sp)

	case ast.FoldTarget:
		return e.evalFoldValue(upstream, t.Init, t.Body, seg.Sp)

	case ast.FilterTarget:
		return e.evalFilterValue(upstream, t.Body, seg.Sp)

	case ast.SpreadTarget:
		return e.evalSpreadValue(upstream, t.Closures, seg.Sp)

	default:
		return Fail(rillerr.New("RILL-R-Generic", seg.Sp, "unhandled pipe segment target %T", seg.Target))
	}
}
