package eval

import (
	"context"
	"time"

	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/signal"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// Invoke is the uniform callable-invocation entry point, dispatching
// to the script-closure, host-function or runtime-builtin path.
// pipeArg/atPipeTarget carry the $-binding distinction through to
// script closures; host functions and builtins
// ignore them (they don't participate in the closure $-binding rules
// at all, and value.Host.Get reads named variables only, so a host
// body does not see the pipe value).
func (e *Evaluator) Invoke(callee value.Value, args []value.Value, span token.Span) Result {
	return e.invokeAt(callee, args, nil, false, span)
}

func (e *Evaluator) invokeAt(callee value.Value, args []value.Value, pipeArg value.Value, atPipeTarget bool, span token.Span) Result {
	if err := e.Ctx.CheckAborted(span); err != nil {
		return Fail(err)
	}

	switch c := callee.(type) {
	case *value.ScriptClosure:
		return e.invokeScriptClosure(c, args, pipeArg, atPipeTarget, span)

	case *value.HostFunction:
		return e.invokeHostLike(c.FnName, c.CallableParams(), c.Fn, args, span, c.TimeoutMs)

	case *value.RuntimeBuiltin:
		return e.invokeHostLike(c.FnName, c.CallableParams(), c.Fn, args, span, 0)

	default:
		return Fail(rillerr.New("RILL-R-NotCallable", span, "value of type %s is not callable", value.InferKind(callee)))
	}
}

// invokeHostLike handles invocation for host functions and runtime
// builtins: validate/complete arguments against
// declared ParamSpecs (using pre-built DefaultValue, never an AST
// default), push/pop a call frame, and race the async body against a
// timeout when one applies.
func (e *Evaluator) invokeHostLike(name string, params []value.ParamSpec, fn value.HostFunc, args []value.Value, span token.Span, timeoutMs int) Result {
	complete, err := completeArgs(params, args, span)
	if err != nil {
		return Fail(err)
	}

	if err := e.Ctx.PushCallFrame(span, name, ""); err != nil {
		return Fail(err)
	}
	defer e.Ctx.PopCallFrame()

	e.Ctx.Emit("host_call", map[string]interface{}{"function": name})

	effTimeout := timeoutMs
	if effTimeout == 0 {
		effTimeout = e.Ctx.DefaultTimeoutMs
	}

	v, callErr := e.raceTimeout(name, fn, complete, effTimeout, span)

	e.Ctx.Emit("function_return", map[string]interface{}{"function": name})

	if callErr != nil {
		if rerr, ok := callErr.(*rillerr.Error); ok {
			return Fail(rerr)
		}
		return Fail(rillerr.New("RILL-R-Generic", span, "%s", callErr.Error()))
	}
	if v == nil {
		v = value.Null{}
	}
	return Val(v)
}

// completeArgs fills missing trailing positional args from
// ParamSpec.DefaultValue or fails with RILL-R-MissingArgument. Extra
// args are passed through when the last declared parameter is untyped
// "any" and silently dropped otherwise.
func completeArgs(params []value.ParamSpec, args []value.Value, span token.Span) ([]value.Value, *rillerr.Error) {
	if len(args) > len(params) {
		allowExtra := len(params) > 0 && (params[len(params)-1].Type == "" || params[len(params)-1].Type == "any")
		if !allowExtra {
			// Extra positional args are reserved for future use;
			// silently ignore them here rather than erroring.
			args = args[:len(params)]
		}
	}
	out := make([]value.Value, len(params))
	for i, p := range params {
		if i < len(args) {
			out[i] = args[i]
			continue
		}
		if p.DefaultValue != nil {
			out[i] = p.DefaultValue
			continue
		}
		return nil, rillerr.New("RILL-R-MissingArgument", span, "missing argument %q", p.Name).
			WithContext(map[string]interface{}{"param": p.Name})
	}
	if len(args) > len(params) {
		out = append(out, args[len(params):]...)
	}
	return out, nil
}

// raceTimeout races a host call against its timeout: the
// evaluator returns whichever of {host body, deadline} resolves
// first. A fired timeout does not cancel the underlying host work —
// that's the host's own responsibility through ctx's cancellation.
func (e *Evaluator) raceTimeout(name string, fn value.HostFunc, args []value.Value, timeoutMs int, span token.Span) (value.Value, error) {
	if timeoutMs <= 0 {
		return fn(e.Ctx.GoContext, e.Ctx, args)
	}

	ctx, cancel := context.WithTimeout(e.Ctx.GoContext, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	type out struct {
		v   value.Value
		err error
	}
	ch := make(chan out, 1)
	go func() {
		v, err := fn(ctx, e.Ctx, args)
		ch <- out{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return nil, rillerr.NewTimeout(span, name, timeoutMs)
	}
}

// unwrapBreak is used by each/map/fold/filter to distinguish a break
// signal from a return signal escaping an inline body.
func unwrapBreak(r Result) (val value.Value, isBreak bool) {
	if b, ok := r.Sig.(signal.Break); ok {
		return b.Value, true
	}
	return nil, false
}
