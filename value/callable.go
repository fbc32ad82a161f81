package value

import (
	"context"
	"strings"

	"github.com/rill-lang/rill/ast"
)

// Host is the narrow surface a host-function or builtin body is given
// to interact with the runtime context that invoked it: read/write
// variables, emit observability events, and invoke other callables.
// It is an interface here, implemented by runtime.Context, so this
// package never imports package runtime.
type Host interface {
	Context() context.Context
	Get(name string) (Value, bool)
	Set(name string, v Value) error
	Emit(kind string, data map[string]interface{})
	Invoke(callee Value, args []Value) (Value, error)
}

// ParamSpec describes one declared parameter of any Callable.
// Exactly one of DefaultValue / DefaultExpr is meaningful, and only
// when a default exists at all:
//   - HostFunction / RuntimeBuiltin parameters carry a pre-built
//     DefaultValue (registered by the host in Go).
//   - ScriptClosure parameters carry a DefaultExpr, evaluated by the
//     evaluator in the closure's captured environment at call time,
//     since it may reference captured names.
type ParamSpec struct {
	Name         string
	Type         string // declared type name; "" or "any" means untyped
	Doc          string // per-param documentation, shown by introspect's coverage report
	DefaultValue Value
	DefaultExpr  ast.Expression
}

func (p ParamSpec) HasDefault() bool {
	return p.DefaultValue != nil || p.DefaultExpr != nil
}

// Callable unifies script closures, host functions and runtime
// builtins behind a single invocation contract.
type Callable interface {
	Value
	CallableName() string
	CallableParams() []ParamSpec
}

// AllowsExtraArgs reports whether trailing positional args beyond the
// declared parameter list are accepted (only when the last declared
// parameter is untyped "any").
func AllowsExtraArgs(c Callable) bool {
	params := c.CallableParams()
	if len(params) == 0 {
		return false
	}
	last := params[len(params)-1]
	return last.Type == "" || strings.EqualFold(last.Type, "any")
}

// Env is a closure's captured lexical environment: a snapshot of
// name -> Value taken at closure-literal evaluation time. It is
// never mutated after capture.
type Env map[string]Value

// Clone performs the shallow copy closure capture requires.
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ScriptClosure is a closure literal value: parameters, a body
// (expression or block), the captured environment, and the
// isProperty/boundDict bookkeeping that drives property-style
// auto-invocation.
type ScriptClosure struct {
	Name       string // empty for anonymous closures
	Params     []ast.Param
	Body       ast.Node
	Captured   Env
	BoundDict  *Dict // set when IsProperty and declared inside a dict literal
	IsProperty bool
}

func (*ScriptClosure) Kind() Kind        { return KindClosure }
func (c *ScriptClosure) CallableName() string { return c.Name }

func (c *ScriptClosure) Inspect() string {
	names := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = p.Name
	}
	return "|" + strings.Join(names, ", ") + "| { ... }"
}

func (c *ScriptClosure) CallableParams() []ParamSpec {
	out := make([]ParamSpec, len(c.Params))
	for i, p := range c.Params {
		out[i] = ParamSpec{Name: p.Name, DefaultExpr: p.Default}
	}
	return out
}

// HostFunc is the async body of a host-registered function, run by
// the evaluator's host-call engine.
type HostFunc func(ctx context.Context, h Host, args []Value) (Value, error)

// HostFunction is a host-provided callable, registered through
// package host's Registration contract.
type HostFunction struct {
	FnName      string
	Params      []ParamSpec
	Fn          HostFunc
	Description string
	ReturnType  string
	// TimeoutMs, when non-zero, overrides the context's default
	// timeout for invocations of this function.
	TimeoutMs int
}

func (*HostFunction) Kind() Kind             { return KindClosure }
func (h *HostFunction) CallableName() string { return h.FnName }
func (h *HostFunction) Inspect() string      { return "host fn " + h.FnName }
func (h *HostFunction) CallableParams() []ParamSpec {
	return h.Params
}

// RuntimeBuiltin is a method-style runtime-internal callable, e.g.
// `.len`, `.upper`, `.split`.
type RuntimeBuiltin struct {
	FnName      string
	Params      []ParamSpec
	Fn          HostFunc
	Description string
}

func (*RuntimeBuiltin) Kind() Kind             { return KindClosure }
func (b *RuntimeBuiltin) CallableName() string { return b.FnName }
func (b *RuntimeBuiltin) Inspect() string      { return "builtin ." + b.FnName }
func (b *RuntimeBuiltin) CallableParams() []ParamSpec {
	return b.Params
}
