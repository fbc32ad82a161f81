package eval

import (
	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/signal"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// runtimeWithPipe is a tiny local alias kept to read naturally at call
// sites that are explicitly about the $-binding rules.
func runtimeWithPipe(e *Evaluator, v value.Value, f func() Result) Result {
	return withPipe(e, v, f)
}

// evalClosureLiteral snapshots the
// current lexical environment, marks isProperty when asProperty is set
// (the literal sits directly in a dict-literal field position and has
// zero params), and return the callable. BoundDict is left nil here;
// evalDictLiteral fixes it up once the enclosing dict is finalized.
func (e *Evaluator) evalClosureLiteral(n *ast.ClosureLiteral, asProperty bool) Result {
	return Val(&value.ScriptClosure{
		Params:     n.Params,
		Body:       n.Body,
		Captured:   e.Ctx.Snapshot(),
		IsProperty: asProperty && len(n.Params) == 0,
	})
}

// invokeScriptClosure runs the call/$-binding sequence for a
// *value.ScriptClosure:
//
//  1. push_call_frame
//  2. bind params (positional args, defaults evaluated in the
//     closure's own captured environment, or RILL-R-MissingArgument)
//  3. install the $-binding: boundDict for a property
//     closure, the upstream pipe value at a pipe target, or the first
//     positional argument for an explicit call
//  4. evaluate the body in a fresh variable frame seeded from
//     captured+params
//  5. unwrap a `return` signal if present
//  6. pop_call_frame on every exit path
func (e *Evaluator) invokeScriptClosure(c *value.ScriptClosure, args []value.Value, pipeArg value.Value, atPipeTarget bool, span token.Span) Result {
	name := c.Name
	if name == "" {
		name = "<closure>"
	}
	if err := e.Ctx.PushCallFrame(span, name, ""); err != nil {
		return Fail(err)
	}
	defer e.Ctx.PopCallFrame()

	frame := c.Captured.Clone()
	for i, p := range c.Params {
		if i < len(args) {
			frame[p.Name] = args[i]
			continue
		}
		if p.Default != nil {
			e.Ctx.PushVarFrame(c.Captured)
			dres := e.Eval(p.Default)
			e.Ctx.PopVarFrame()
			if dres.IsAbrupt() {
				return dres
			}
			frame[p.Name] = dres.Value
			continue
		}
		return Fail(rillerr.New("RILL-R-MissingArgument", span, "missing argument %q", p.Name).
			WithContext(map[string]interface{}{"param": p.Name}))
	}

	var dollar value.Value
	switch {
	case c.IsProperty && c.BoundDict != nil:
		dollar = c.BoundDict
	case atPipeTarget:
		dollar = pipeArg
	case len(args) > 0:
		dollar = args[0]
	default:
		dollar = value.Null{}
	}

	e.Ctx.PushVarFrame(frame)
	defer e.Ctx.PopVarFrame()

	res := runtimeWithPipe(e, dollar, func() Result {
		return e.Eval(c.Body)
	})
	if res.Err != nil {
		return res
	}
	if ret, ok := res.Sig.(signal.Return); ok {
		return Val(ret.Value)
	}
	if res.Sig != nil {
		// A break escaping a closure body with no enclosing loop is a
		// script bug, not a silent no-op.
		return Fail(rillerr.New("RILL-R-Generic", span, "break used outside of a loop or iterator"))
	}
	return Val(res.Value)
}
