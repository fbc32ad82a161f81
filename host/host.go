// Package host implements the host-embedding registration contract: a
// namespaced registry of host functions a Go application hands to a
// runtime.Context before calling eval.Execute.
//
// A Registry is a value a host constructs explicitly per embedding,
// rather than a single global registry of virtual modules, since a
// runtime.Context is created fresh per execution rather than shared
// process-wide.
package host

import (
	"context"
	"sort"
	"sync"

	"github.com/rill-lang/rill/value"
)

// Registration is one host-provided callable, the unit a host
// application registers before execution.
type Registration struct {
	Name        string
	Params      []value.ParamSpec
	Fn          value.HostFunc
	Description string
	ReturnType  string
	TimeoutMs   int
}

// Registry accumulates Registrations under optional namespaces and
// produces the map[string]value.Callable a runtime.Context is
// constructed with (runtime.WithFunctions).
type Registry struct {
	mu        sync.Mutex
	funcs     map[string]*value.HostFunction
	disposers []*value.HostFunction
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*value.HostFunction)}
}

// Register adds r directly under its own Name, overwriting any prior
// registration of the same name.
func (reg *Registry) Register(r Registration) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.funcs[r.Name] = &value.HostFunction{
		FnName:      r.Name,
		Params:      r.Params,
		Fn:          r.Fn,
		Description: r.Description,
		ReturnType:  r.ReturnType,
		TimeoutMs:   r.TimeoutMs,
	}
}

// RegisterNamespaced registers every Registration in rs renamed to
// "ns::name", while preserving a top-level dispose hook if present: a
// zero-parameter
// registration literally named "dispose" is an extension's own
// lifecycle teardown (closing a connection, flushing a buffer), not a
// domain operation, so it's additionally tracked for Registry.Dispose
// to run at embedding teardown. A "dispose" registration that takes
// parameters (e.g. vectorstore's "remove this one entry" dispose) is a
// domain-specific operation under that name, not a lifecycle hook, and
// is only ever reachable via its prefixed "ns::dispose" name.
func (reg *Registry) RegisterNamespaced(ns string, rs []Registration) {
	for _, r := range rs {
		prefixed := r
		prefixed.Name = prefixFunction(ns, r.Name)
		reg.Register(prefixed)
		if r.Name == "dispose" && len(r.Params) == 0 {
			reg.mu.Lock()
			reg.disposers = append(reg.disposers, reg.funcs[prefixed.Name])
			reg.mu.Unlock()
		}
	}
}

// Dispose runs every namespaced extension's "dispose" hook in
// registration order, collecting (not short-circuiting on) errors so
// one misbehaving extension can't prevent the others from releasing
// their resources.
func (reg *Registry) Dispose(ctx context.Context) []error {
	reg.mu.Lock()
	hooks := make([]*value.HostFunction, len(reg.disposers))
	copy(hooks, reg.disposers)
	reg.mu.Unlock()

	var errs []error
	for _, h := range hooks {
		if _, err := h.Fn(ctx, noopHost{ctx}, nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// noopHost is the minimal value.Host a dispose hook is invoked with:
// dispose bodies release their own resources and don't need variable
// access or the ability to invoke further callables.
type noopHost struct{ ctx context.Context }

func (h noopHost) Context() context.Context                       { return h.ctx }
func (noopHost) Get(string) (value.Value, bool)                   { return nil, false }
func (noopHost) Set(string, value.Value) error                    { return nil }
func (noopHost) Emit(string, map[string]interface{})              {}
func (noopHost) Invoke(value.Value, []value.Value) (value.Value, error) {
	return nil, nil
}

func prefixFunction(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "::" + name
}

// Functions returns the registry contents as the map package runtime's
// WithFunctions option expects.
func (reg *Registry) Functions() map[string]value.Callable {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make(map[string]value.Callable, len(reg.funcs))
	for name, fn := range reg.funcs {
		out[name] = fn
	}
	return out
}

// Names returns every registered function name, sorted, for
// introspection and documentation tooling.
func (reg *Registry) Names() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]string, 0, len(reg.funcs))
	for name := range reg.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the registered function named name, if any.
func (reg *Registry) Lookup(name string) (*value.HostFunction, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	fn, ok := reg.funcs[name]
	return fn, ok
}
