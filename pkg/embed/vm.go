package embed

import (
	"context"
	"fmt"

	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/config"
	"github.com/rill-lang/rill/eval"
	"github.com/rill-lang/rill/host"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/runtime"
	"github.com/rill-lang/rill/value"
)

// VM wraps a runtime.Context and provides the high-level Bind/Set/Get/
// Run embedding surface over it.
type VM struct {
	marshaller *Marshaller
	vars       map[string]value.Value
	fns        map[string]value.Callable
	callbacks  *runtime.Callbacks
	cfg        config.Config
	goCtx      context.Context
	pipe       value.Value
	havePipe   bool
}

// New creates a VM seeded with config.Defaults().
func New() *VM {
	return &VM{
		marshaller: NewMarshaller(),
		vars:       make(map[string]value.Value),
		fns:        make(map[string]value.Callable),
		cfg:        config.Defaults(),
		goCtx:      context.Background(),
	}
}

// WithConfig overrides the VM's runtime tuning.
func (v *VM) WithConfig(cfg config.Config) *VM {
	v.cfg = cfg
	return v
}

// WithCallbacks attaches observability callbacks to every subsequent Run.
func (v *VM) WithCallbacks(cb *runtime.Callbacks) *VM {
	v.callbacks = cb
	return v
}

// WithGoContext overrides the context.Context used for cancellation and
// timeouts during Run.
func (v *VM) WithGoContext(ctx context.Context) *VM {
	v.goCtx = ctx
	return v
}

// WithHostRegistry merges every function in reg (already "ns::name"
// prefixed by host.Registry.RegisterNamespaced) into the VM's callable
// set: a host builds up a Registry from whichever extensions
// (vectorstore, llm, fetch, or its own) it wants a script to see, then
// hands the whole thing to the VM in one call.
func (v *VM) WithHostRegistry(reg *host.Registry) *VM {
	for name, fn := range reg.Functions() {
		v.fns[name] = fn
	}
	return v
}

// Bind registers a Go function as a callable script-visible function,
// converting arguments and return values via the Marshaller.
func (v *VM) Bind(name string, fn interface{}) error {
	val, err := v.marshaller.ToValue(fn)
	if err != nil {
		return fmt.Errorf("embed: binding %q: %w", name, err)
	}
	callable, ok := val.(value.Callable)
	if !ok {
		return fmt.Errorf("embed: %q is not a function", name)
	}
	v.fns[name] = callable
	return nil
}

// Set assigns a plain Go value as a script-visible variable.
func (v *VM) Set(name string, val interface{}) error {
	sv, err := v.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("embed: setting %q: %w", name, err)
	}
	v.vars[name] = sv
	return nil
}

// SetPipe seeds the implicit `$` a top-level program starts evaluating
// with, e.g. a CLI front-end surfacing positional args to a script.
func (v *VM) SetPipe(val interface{}) error {
	sv, err := v.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("embed: setting pipe value: %w", err)
	}
	v.pipe = sv
	v.havePipe = true
	return nil
}

// Get reads back a script-visible variable as a plain Go value.
func (v *VM) Get(name string) (interface{}, error) {
	sv, ok := v.vars[name]
	if !ok {
		return nil, fmt.Errorf("embed: variable %q not found", name)
	}
	return v.marshaller.FromValue(sv)
}

// RunValue executes program and returns the raw script result and
// captures without the Go-value round trip, for callers (the cmd/rill,
// cmd/rilleval binaries) that need to render a value.Value with the
// language's own rendering rules rather than Go's.
func (v *VM) RunValue(program *ast.Program) (value.Value, map[string]value.Value, *rillerr.Error) {
	ctx := runtime.New(v.options()...)
	return eval.Execute(ctx, program)
}

// options builds the runtime.Option set shared by RunValue and
// CreateStepper.
func (v *VM) options() []runtime.Option {
	opts := append(v.cfg.Options(),
		runtime.WithVariables(v.vars),
		runtime.WithFunctions(v.fns),
		runtime.WithCallbacks(v.callbacks),
		runtime.WithGoContext(v.goCtx),
	)
	if v.havePipe {
		opts = append(opts, runtime.WithPipeValue(v.pipe))
	}
	return opts
}

// CreateStepper builds an eval.Stepper over program using the VM's
// bound variables/functions/config, for hosts that want to pause
// between top-level statements (a debugger, an LSP "step" command)
// instead of calling Run/RunValue for the whole program at once.
func (v *VM) CreateStepper(program *ast.Program) *eval.Stepper {
	ctx := runtime.New(v.options()...)
	return eval.CreateStepper(ctx, program)
}

// Run executes an already-parsed program against the VM's bound
// variables and functions. Lexing and parsing source text is out of
// this module's scope; a host supplies *ast.Program directly, e.g.
// from its own front-end.
func (v *VM) Run(program *ast.Program) (interface{}, map[string]interface{}, error) {
	result, captures, err := v.RunValue(program)
	if err != nil {
		return nil, nil, err
	}

	goResult, convErr := v.marshaller.FromValue(result)
	if convErr != nil {
		return nil, nil, convErr
	}

	goCaptures := make(map[string]interface{}, len(captures))
	for name, cv := range captures {
		gv, convErr := v.marshaller.FromValue(cv)
		if convErr != nil {
			return nil, nil, convErr
		}
		goCaptures[name] = gv
	}

	return goResult, goCaptures, nil
}
