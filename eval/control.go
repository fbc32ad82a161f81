package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// evalConditional implements `cond ? then ! else`,
// testing the current pipe value when Cond is nil.
func (e *Evaluator) evalConditional(n *ast.ConditionalExpression) Result {
	var cond value.Value
	if n.Cond != nil {
		cres := e.Eval(n.Cond)
		if cres.IsAbrupt() {
			return cres
		}
		cond = cres.Value
	} else {
		v, ok := e.Ctx.PipeValue()
		if !ok {
			return Fail(rillerr.New("RILL-R-UndefinedVariable", n.Span(), "$ is undefined at top level"))
		}
		cond = v
	}
	if value.IsTruthy(cond) {
		return e.Eval(n.Then)
	}
	if n.Else != nil {
		return e.Eval(n.Else)
	}
	return Val(value.Null{})
}

// evalWhile implements `cond @ body`, enforcing the
// default 10,000-iteration guard against runaway scripts. Each
// iteration's body value becomes $ for the next condition and body;
// with zero iterations the loop yields its input $.
func (e *Evaluator) evalWhile(n *ast.WhileLoop) Result {
	var last value.Value = value.Null{}
	if v, ok := e.Ctx.PipeValue(); ok && v != nil {
		last = v
	}
	iterations := 0
	for {
		if err := e.Ctx.CheckAborted(n.Span()); err != nil {
			return Fail(err)
		}
		cur := last
		cres := withPipe(e, cur, func() Result { return e.Eval(n.Cond) })
		if cres.IsAbrupt() {
			return cres
		}
		if !value.IsTruthy(cres.Value) {
			break
		}
		iterations++
		if e.Ctx.IterationLimit > 0 && iterations > e.Ctx.IterationLimit {
			return Fail(rillerr.New("RILL-R-IterationLimit", n.Span(), "while loop exceeded iteration limit of %d", e.Ctx.IterationLimit))
		}
		bres := withPipe(e, cur, func() Result { return e.Eval(n.Body) })
		if bres.Err != nil {
			return bres
		}
		if bv, isBreak := unwrapBreak(bres); isBreak {
			if bv != nil {
				return Val(bv)
			}
			return Val(last)
		}
		if bres.Sig != nil {
			return bres
		}
		last = bres.Value
		if last == nil {
			last = value.Null{}
		}
	}
	return Val(last)
}

// evalDoWhile implements `@ body ? cond`: the body always runs once
// before the condition is tested.
func (e *Evaluator) evalDoWhile(n *ast.DoWhileLoop) Result {
	var last value.Value = value.Null{}
	iterations := 0
	for {
		if err := e.Ctx.CheckAborted(n.Span()); err != nil {
			return Fail(err)
		}
		iterations++
		if e.Ctx.IterationLimit > 0 && iterations > e.Ctx.IterationLimit {
			return Fail(rillerr.New("RILL-R-IterationLimit", n.Span(), "do-while loop exceeded iteration limit of %d", e.Ctx.IterationLimit))
		}
		bres := e.Eval(n.Body)
		if bres.Err != nil {
			return bres
		}
		if bv, isBreak := unwrapBreak(bres); isBreak {
			if bv != nil {
				return Val(bv)
			}
			return Val(last)
		}
		if bres.Sig != nil {
			return bres
		}
		last = bres.Value
		if last == nil {
			last = value.Null{}
		}
		cres := e.Eval(n.Cond)
		if cres.IsAbrupt() {
			return cres
		}
		if !value.IsTruthy(cres.Value) {
			break
		}
	}
	return Val(last)
}

// asIterable coerces v into the element sequence each/map/fold/filter
// walk: lists element-wise, vectors as numbers, dicts
// as [key, value] pairs in insertion order, strings as single-rune
// substrings.
func asIterable(v value.Value, span token.Span) ([]value.Value, *rillerr.Error) {
	switch t := v.(type) {
	case *value.List:
		return t.Elements, nil
	case *value.Vector:
		out := make([]value.Value, len(t.Values))
		for i, f := range t.Values {
			out[i] = value.Number{Value: float64(f)}
		}
		return out, nil
	case *value.Dict:
		keys := t.Keys()
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			fv, _ := t.Get(k)
			out[i] = value.NewList(value.String{Value: k}, fv)
		}
		return out, nil
	case value.String:
		rs := []rune(t.Value)
		out := make([]value.Value, len(rs))
		for i, r := range rs {
			out[i] = value.String{Value: string(r)}
		}
		return out, nil
	default:
		return nil, rillerr.New("RILL-R-OperandType", span, "value of type %s is not iterable", value.InferKind(v))
	}
}

// runIteration is the shared engine behind each/map/fold/filter:
// a single element-at-a-time loop with $ bound to the
// element and, for the accumulator forms (fold, or each with an init
// expression), a pseudo-variable "@" bound to the running accumulator
// and readable inside the body as `$@`.
//
// A break inside the body short-circuits: for an accumulator form it
// yields the (optionally overridden) accumulator; otherwise it yields
// whatever has been collected so far, with a non-accumulator each also
// appending the break's value (map and filter ignore it). A return
// signal always propagates to the enclosing closure.
func (e *Evaluator) runIteration(kind string, elems []value.Value, hasInit bool, init value.Value, body ast.Node, span token.Span) Result {
	e.Ctx.PushVarFrame(e.Ctx.Snapshot())
	defer e.Ctx.PopVarFrame()

	useAcc := hasInit || kind == "fold"
	acc := init
	var collected []value.Value

	for _, el := range elems {
		if err := e.Ctx.CheckAborted(span); err != nil {
			return Fail(err)
		}
		if useAcc {
			if err := e.Ctx.Set("@", acc); err != nil {
				if rerr, ok := err.(*rillerr.Error); ok {
					return Fail(rerr)
				}
				return Fail(rillerr.New("RILL-R-Generic", span, "%s", err.Error()))
			}
		}

		res := withPipe(e, el, func() Result { return e.Eval(body) })
		if res.Err != nil {
			return res
		}
		if bv, isBreak := unwrapBreak(res); isBreak {
			if useAcc {
				if bv != nil {
					acc = bv
				}
				return Val(acc)
			}
			if bv != nil && kind == "each" {
				collected = append(collected, bv)
			}
			return Val(value.NewList(collected...))
		}
		if res.Sig != nil {
			return res
		}

		rv := res.Value
		if rv == nil {
			rv = value.Null{}
		}
		switch kind {
		case "fold":
			acc = rv
		case "each":
			if hasInit {
				acc = rv
			} else {
				collected = append(collected, rv)
			}
		case "map":
			collected = append(collected, rv)
		case "filter":
			if value.IsTruthy(rv) {
				collected = append(collected, el)
			}
		}
	}

	if useAcc {
		return Val(acc)
	}
	return Val(value.NewList(collected...))
}

func (e *Evaluator) evalEach(sourceExpr, initExpr ast.Expression, body ast.Node) Result {
	sres := e.Eval(sourceExpr)
	if sres.IsAbrupt() {
		return sres
	}
	return e.evalEachValue(sres.Value, initExpr, body, sourceExpr.Span())
}

func (e *Evaluator) evalEachValue(source value.Value, initExpr ast.Expression, body ast.Node, span token.Span) Result {
	elems, err := asIterable(source, span)
	if err != nil {
		return Fail(err)
	}
	hasInit := initExpr != nil
	var initVal value.Value = value.Null{}
	if hasInit {
		ires := e.Eval(initExpr)
		if ires.IsAbrupt() {
			return ires
		}
		initVal = ires.Value
	}
	return e.runIteration("each", elems, hasInit, initVal, body, span)
}

func (e *Evaluator) evalMap(sourceExpr ast.Expression, body ast.Node) Result {
	sres := e.Eval(sourceExpr)
	if sres.IsAbrupt() {
		return sres
	}
	return e.evalMapValue(sres.Value, body, sourceExpr.Span())
}

func (e *Evaluator) evalMapValue(source value.Value, body ast.Node, span token.Span) Result {
	elems, err := asIterable(source, span)
	if err != nil {
		return Fail(err)
	}
	return e.runIteration("map", elems, false, nil, body, span)
}

func (e *Evaluator) evalFold(sourceExpr, initExpr ast.Expression, body ast.Node) Result {
	sres := e.Eval(sourceExpr)
	if sres.IsAbrupt() {
		return sres
	}
	return e.evalFoldValue(sres.Value, initExpr, body, sourceExpr.Span())
}

func (e *Evaluator) evalFoldValue(source value.Value, initExpr ast.Expression, body ast.Node, span token.Span) Result {
	elems, err := asIterable(source, span)
	if err != nil {
		return Fail(err)
	}
	ires := e.Eval(initExpr)
	if ires.IsAbrupt() {
		return ires
	}
	return e.runIteration("fold", elems, true, ires.Value, body, span)
}

func (e *Evaluator) evalFilter(sourceExpr ast.Expression, body ast.Node) Result {
	sres := e.Eval(sourceExpr)
	if sres.IsAbrupt() {
		return sres
	}
	return e.evalFilterValue(sres.Value, body, sourceExpr.Span())
}

func (e *Evaluator) evalFilterValue(source value.Value, body ast.Node, span token.Span) Result {
	elems, err := asIterable(source, span)
	if err != nil {
		return Fail(err)
	}
	return e.runIteration("filter", elems, false, nil, body, span)
}

// evalSpread implements sequential spread `value -> @[f1, f2, ...]`:
// each closure is invoked in turn, its result becoming
// the next closure's $ and the whole expression's final value.
func (e *Evaluator) evalSpread(n *ast.SpreadExpr) Result {
	vres := e.Eval(n.Value)
	if vres.IsAbrupt() {
		return vres
	}
	return e.evalSpreadValue(vres.Value, n.Closures, n.Span())
}

func (e *Evaluator) evalSpreadValue(v value.Value, closures []ast.Expression, span token.Span) Result {
	cur := v
	for _, cexpr := range closures {
		cres := e.Eval(cexpr)
		if cres.IsAbrupt() {
			return cres
		}
		ires := e.invokeAt(cres.Value, []value.Value{cur}, cur, true, span)
		if ires.IsAbrupt() {
			return ires
		}
		cur = ires.Value
	}
	return Val(cur)
}
