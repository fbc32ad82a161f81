// Package eval is the Rill tree-walking evaluator: the expression
// evaluator, control-flow evaluator, type evaluator, property access,
// closure machinery and host-call engine, unified behind a single
// Eval(node) entry point threading the implicit pipe value through
// every sub-evaluation.
//
// A type-switch over ast.Node is wrapped by a thin outer function
// that attaches source locations to any error the core switch
// produces, depth-limits recursion, and checks cooperative
// cancellation on every node.
package eval

import (
	"fmt"

	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/runtime"
	"github.com/rill-lang/rill/signal"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// maxGoRecursionDepth bounds Eval's own recursion so a pathological
// script overflows with a typed Rill error instead of a Go stack
// overflow.
const maxGoRecursionDepth = 4000

// Result is the outcome of evaluating one node: exactly one of Err,
// Sig, or Value is meaningful, checked in that priority order.
// Splitting Sig out of Value is what keeps break/return distinguishable
// from ordinary values and from errors.
type Result struct {
	Value value.Value
	Sig   signal.Signal
	Err   *rillerr.Error
}

func Val(v value.Value) Result           { return Result{Value: v} }
func Fail(e *rillerr.Error) Result       { return Result{Err: e} }
func Signaled(s signal.Signal) Result    { return Result{Sig: s} }
func (r Result) IsAbrupt() bool          { return r.Err != nil || r.Sig != nil }

// Evaluator owns no state of its own beyond a depth counter; all
// script-visible state lives in the attached *runtime.Context, so
// multiple Evaluators may share a context lifecycle only sequentially —
// the context is owned exclusively by the evaluator driving it; no
// other task may mutate it concurrently.
type Evaluator struct {
	Ctx   *runtime.Context
	depth int
}

// New builds an Evaluator over ctx and wires ctx's Invoker so host
// functions can call back into script closures (value.Host.Invoke)
// without package runtime importing package eval.
func New(ctx *runtime.Context) *Evaluator {
	e := &Evaluator{Ctx: ctx}
	ctx.SetInvoker(func(callee value.Value, args []value.Value) (value.Value, error) {
		res := e.Invoke(callee, args, token.Span{})
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Sig != nil {
			if ret, ok := res.Sig.(signal.Return); ok {
				return ret.Value, nil
			}
			return nil, fmt.Errorf("eval: unexpected %T signal escaped invocation", res.Sig)
		}
		return res.Value, nil
	})
	return e
}

// Execute is the host embedding entry point:
// `execute(ast, context) -> { value, variables }`.
func Execute(ctx *runtime.Context, program *ast.Program) (value.Value, map[string]value.Value, *rillerr.Error) {
	if err := ctx.Validate(); err != nil {
		ctx.EmitError(err)
		return nil, ctx.Snapshot(), err
	}
	e := New(ctx)
	res := e.Eval(program)
	if res.Err != nil {
		ctx.EmitError(res.Err)
		return nil, ctx.Snapshot(), res.Err
	}
	v := res.Value
	if v == nil {
		v = value.Null{}
	}
	return v, ctx.Snapshot(), nil
}

// Eval is the single dispatch entry point every sub-evaluation goes
// through, attaching a span to any error the core switch leaves
// unlocated and enforcing the recursion/cancellation guards.
func (e *Evaluator) Eval(node ast.Node) Result {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxGoRecursionDepth {
		return Fail(rillerr.New("RILL-R-Generic", spanOf(node), "maximum evaluator recursion depth exceeded"))
	}

	if err := e.Ctx.CheckAborted(spanOf(node)); err != nil {
		return Fail(err)
	}

	res := e.evalCore(node)
	if res.Err != nil && res.Err.Span.IsZero() {
		res.Err.Span = spanOf(node)
	}
	// Attach the call stack at the instant the error is born — the
	// deepest Eval frame that sees it, before any enclosing
	// invokeScriptClosure/invokeHostLike's deferred PopCallFrame runs
	// on the way back up — so a top-level error keeps the empty stack
	// it had, and a nested one freezes the frames active when it was
	// raised.
	if res.Err != nil && res.Err.CallStack == nil {
		res.Err.CallStack = e.Ctx.CallStackSnapshot()
	}
	return res
}

// withPipe scopes a Result-returning sub-evaluation under a new pipe
// value, via runtime.WithPipe's generic save/restore.
func withPipe(e *Evaluator, v value.Value, f func() Result) Result {
	return runtime.WithPipe(e.Ctx, v, f)
}

func spanOf(node ast.Node) token.Span {
	if node == nil {
		return token.Span{}
	}
	return node.Span()
}

func (e *Evaluator) evalCore(node ast.Node) Result {
	switch n := node.(type) {
	case *ast.Program:
		return e.evalProgram(n.Statements)
	case *ast.ExpressionStatement:
		return e.Eval(n.Expr)
	case *ast.BlockExpression:
		return e.evalBlock(n)

	case *ast.NullLiteral:
		return Val(value.Null{})
	case *ast.BoolLiteral:
		return Val(value.Bool{Value: n.Value})
	case *ast.NumberLiteral:
		return Val(value.Number{Value: n.Value})
	case *ast.StringLiteral:
		return e.evalStringLiteral(n)
	case *ast.ListLiteral:
		return e.evalListLiteral(n)
	case *ast.DictLiteral:
		return e.evalDictLiteral(n)
	case *ast.VectorLiteral:
		vals := make([]float32, len(n.Values))
		copy(vals, n.Values)
		return Val(&value.Vector{Values: vals, Origin: n.Origin})

	case *ast.Identifier:
		return e.evalIdentifier(n)
	case *ast.PipeValue:
		v, ok := e.Ctx.PipeValue()
		if !ok {
			return Fail(rillerr.New("RILL-R-UndefinedVariable", n.Span(), "$ is undefined at top level"))
		}
		return Val(v)

	case *ast.ClosureLiteral:
		return e.evalClosureLiteral(n, false)

	case *ast.CallExpr:
		return e.evalCallExpr(n)

	case *ast.PostfixExpr:
		return e.evalPostfixExpr(n)

	case *ast.BinaryExpr:
		return e.evalBinaryExpr(n)
	case *ast.UnaryExpr:
		return e.evalUnaryExpr(n)

	case *ast.TypeAssertExpr:
		return e.evalTypeAssert(n)
	case *ast.TypeCheckExpr:
		return e.evalTypeCheck(n)

	case *ast.ConditionalExpression:
		return e.evalConditional(n)
	case *ast.WhileLoop:
		return e.evalWhile(n)
	case *ast.DoWhileLoop:
		return e.evalDoWhile(n)
	case *ast.EachExpr:
		return e.evalEach(n.Source, n.Init, n.Body)
	case *ast.MapExpr:
		return e.evalMap(n.Source, n.Body)
	case *ast.FoldExpr:
		return e.evalFold(n.Source, n.Init, n.Body)
	case *ast.FilterExpr:
		return e.evalFilter(n.Source, n.Body)
	case *ast.SpreadExpr:
		return e.evalSpread(n)

	case *ast.PipeChain:
		return e.evalPipeChain(n)

	case *ast.ErrorExpr:
		return e.evalErrorExpr(n)
	case *ast.AssertExpr:
		return e.evalAssertExpr(n)

	default:
		return Fail(rillerr.New("RILL-R-Generic", spanOf(node), "unhandled AST node %T", node))
	}
}

// evalStatements threads $ sequentially through stmts: each statement
// sees the prior one's result as its input pipe value, and the
// block's value is the last statement's value (null for an empty
// list).
func (e *Evaluator) evalStatements(stmts []ast.Statement) Result {
	var last value.Value = value.Null{}
	for _, stmt := range stmts {
		es, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			return Fail(rillerr.New("RILL-R-Generic", token.Span{}, "unsupported statement %T", stmt))
		}
		res := e.Eval(es.Expr)
		if res.IsAbrupt() {
			return res
		}
		last = res.Value
		if last == nil {
			last = value.Null{}
		}
		e.Ctx.SetPipeValue(last)
		if err := e.checkAutoException(last, es.Expr.Span()); err != nil {
			return Fail(err)
		}
	}
	return Val(last)
}

func (e *Evaluator) evalBlock(b *ast.BlockExpression) Result {
	return e.evalStatements(b.Statements)
}

// evalProgram runs the top-level statements, emitting the step_start/
// step_end events the alternative stepping interface names
// (createStepper's next() advances one top-level statement and emits
// start/end events) around each one. Nested blocks/closures reuse
// plain evalStatements, so these events fire only at the granularity a
// host-level stepper would actually pause at.
func (e *Evaluator) evalProgram(stmts []ast.Statement) Result {
	var last value.Value = value.Null{}
	for i, stmt := range stmts {
		e.Ctx.Emit("step_start", map[string]interface{}{"index": i})
		es, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			return Fail(rillerr.New("RILL-R-Generic", token.Span{}, "unsupported statement %T", stmt))
		}
		res := e.Eval(es.Expr)
		e.Ctx.Emit("step_end", map[string]interface{}{"index": i})
		if res.IsAbrupt() {
			return res
		}
		last = res.Value
		if last == nil {
			last = value.Null{}
		}
		e.Ctx.SetPipeValue(last)
		if err := e.checkAutoException(last, es.Expr.Span()); err != nil {
			return Fail(err)
		}
	}
	return Val(last)
}
