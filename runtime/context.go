// Package runtime implements the Runtime Context: the per-execution
// state owned for the duration of one `execute` call — locked
// variables, the implicit pipe value, the host-function registry,
// observability callbacks, cooperative cancellation, the call stack,
// and auto-exception patterns.
//
// The variable store's locking shape builds on a conventional
// environment/scope design, extended here with a type-lock map since
// Rill locks each variable to the type of its first assignment.
package runtime

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

// AutoExceptionPattern is one compiled auto-exception rule: on any
// string pipe value, a full-string match fires rillerr.NewAutoException.
type AutoExceptionPattern struct {
	Source   string
	Compiled *regexp.Regexp
}

// Invoker is injected by package eval (see eval.New) so Context.Invoke
// can call back into the evaluator without runtime importing eval.
type Invoker func(callee value.Value, args []value.Value) (value.Value, error)

// Context is the Runtime Context.
type Context struct {
	mu         sync.Mutex
	variables  map[string]value.Value
	lockedType map[string]value.Kind

	pipeValue value.Value
	havePipe  bool

	varFrames []varFrame

	Functions map[string]value.Callable

	Callbacks *Callbacks

	// GoContext carries cooperative cancellation and deadlines.
	GoContext context.Context

	callStack []rillerr.Frame

	AutoExceptions  []AutoExceptionPattern
	invalidPatterns []invalidPattern

	MaxCallStackDepth int
	DefaultTimeoutMs  int
	IterationLimit    int

	// ExecutionID correlates every runtime.Event emitted by one
	// `execute` call, minted once per Context via google/uuid.
	ExecutionID string

	invoker Invoker
}

// Option configures a new Context.
type Option func(*Context)

func WithVariables(vars map[string]value.Value) Option {
	return func(c *Context) {
		for k, v := range vars {
			c.variables[k] = v
			c.lockedType[k] = value.InferKind(v)
		}
	}
}

func WithFunctions(fns map[string]value.Callable) Option {
	return func(c *Context) {
		for k, v := range fns {
			c.Functions[k] = v
		}
	}
}

func WithCallbacks(cb *Callbacks) Option {
	return func(c *Context) { c.Callbacks = cb }
}

func WithGoContext(ctx context.Context) Option {
	return func(c *Context) { c.GoContext = ctx }
}

func WithMaxCallStackDepth(n int) Option {
	return func(c *Context) { c.MaxCallStackDepth = n }
}

func WithDefaultTimeoutMs(ms int) Option {
	return func(c *Context) { c.DefaultTimeoutMs = ms }
}

func WithIterationLimit(n int) Option {
	return func(c *Context) { c.IterationLimit = n }
}

// WithPipeValue seeds the implicit `$` a top-level program starts
// evaluating with, e.g. a host surfacing CLI positional args to a
// script as its initial pipe value.
func WithPipeValue(v value.Value) Option {
	return func(c *Context) { c.pipeValue, c.havePipe = v, true }
}

// invalidPattern records a malformed auto-exception pattern caught at
// construction time, deferred to Validate rather than panicking a
// host's Context-building code.
type invalidPattern struct {
	Source string
	Err    error
}

// WithAutoExceptions compiles each pattern once, at context
// construction time.
func WithAutoExceptions(patterns []string) Option {
	return func(c *Context) {
		for _, p := range patterns {
			re, err := regexp.Compile("^(?:" + p + ")$")
			if err != nil {
				c.invalidPatterns = append(c.invalidPatterns, invalidPattern{Source: p, Err: err})
				continue
			}
			c.AutoExceptions = append(c.AutoExceptions, AutoExceptionPattern{Source: p, Compiled: re})
		}
	}
}

// Validate surfaces any auto-exception pattern rejected at construction
// time as a typed RILL-R-InvalidRegex error, letting a host fail fast
// on a bad configuration instead of silently dropping the pattern.
func (c *Context) Validate() *rillerr.Error {
	if len(c.invalidPatterns) == 0 {
		return nil
	}
	p := c.invalidPatterns[0]
	return rillerr.New("RILL-R-InvalidRegex", token.Span{}, "invalid auto-exception pattern %q: %s", p.Source, p.Err).
		WithContext(map[string]interface{}{"pattern": p.Source})
}

// New constructs a Context; one is created fresh per execute call and
// discarded at return.
func New(opts ...Option) *Context {
	c := &Context{
		variables:         make(map[string]value.Value),
		lockedType:        make(map[string]value.Kind),
		Functions:         make(map[string]value.Callable),
		GoContext:         context.Background(),
		MaxCallStackDepth: 256,
		IterationLimit:    10000,
		ExecutionID:       uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetInvoker wires the evaluator's invocation entry point; called once
// by eval.New.
func (c *Context) SetInvoker(inv Invoker) { c.invoker = inv }

// Get looks up a variable by name, reporting presence only (this is the
// form value.Host requires); GetOrFail is the error-returning form.
func (c *Context) Get(name string) (value.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.variables[name]
	return v, ok
}

// GetOrFail looks up a variable by name, failing with
// RILL-R-UndefinedVariable when absent.
func (c *Context) GetOrFail(name string, span token.Span) (value.Value, *rillerr.Error) {
	v, ok := c.Get(name)
	if !ok {
		return nil, rillerr.New("RILL-R-UndefinedVariable", span, "undefined variable %q", name).
			WithContext(map[string]interface{}{"name": name})
	}
	return v, nil
}

// Set assigns name to v: fails with RILL-R-TypeMismatch if the
// variable's locked type differs from the new value's type; otherwise
// records the value and, on first write, locks the type.
func (c *Context) Set(name string, v value.Value) error {
	return c.SetAt(name, v, token.Span{})
}

// SetAt is Set with a span attached to any resulting error, used by
// the evaluator so capture/assignment failures carry a precise
// location.
func (c *Context) SetAt(name string, v value.Value, span token.Span) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	newKind := value.InferKind(v)
	if locked, ok := c.lockedType[name]; ok {
		if locked != newKind {
			return rillerr.New("RILL-R-TypeMismatch", span,
				"cannot assign %s to %q, which is locked to %s", newKind, name, locked).
				WithContext(map[string]interface{}{
					"name":     name,
					"expected": string(locked),
					"actual":   string(newKind),
				})
		}
	} else {
		c.lockedType[name] = newKind
	}
	c.variables[name] = v
	return nil
}

// SetWithType asserts inferType(value) == declared before delegating
// to Set.
func (c *Context) SetWithType(name string, v value.Value, declared string, span token.Span) error {
	if !value.CheckType(v, declared) {
		return rillerr.New("RILL-R-TypeAssertion", span, "expected %s, got %s", declared, value.InferKind(v)).
			WithContext(map[string]interface{}{"expected": declared, "actual": string(value.InferKind(v))})
	}
	return c.SetAt(name, v, span)
}

// LockedType reports the type a variable is locked to, if assigned.
func (c *Context) LockedType(name string) (value.Kind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k, ok := c.lockedType[name]
	return k, ok
}

// PipeValue returns the current implicit `$`.
func (c *Context) PipeValue() (value.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipeValue, c.havePipe
}

// SetPipeValue mutates the current pipe slot in place, without saving
// or restoring a prior value. This is the mechanism a block or
// program uses to thread $ from one statement to the next within a
// single WithPipe boundary; the save/restore behavior comes from the
// enclosing WithPipe call that invoked the block, not from this
// method.
func (c *Context) SetPipeValue(v value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipeValue, c.havePipe = v, true
}

// WithPipe scopes acquisition of the pipe slot: it saves the prior
// value, installs newPipe, runs f, and restores the prior value on
// every exit path — including a panic, so a Go-level programmer error
// unwinding through the evaluator never corrupts Context.pipeValue
// for an enclosing frame.
func WithPipe[T any](c *Context, newPipe value.Value, f func() T) T {
	c.mu.Lock()
	oldPipe, oldHave := c.pipeValue, c.havePipe
	c.pipeValue, c.havePipe = newPipe, true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pipeValue, c.havePipe = oldPipe, oldHave
		c.mu.Unlock()
	}()

	return f()
}

// CheckAborted reports whether GoContext has been canceled.
func (c *Context) CheckAborted(span token.Span) *rillerr.Error {
	select {
	case <-c.GoContext.Done():
		return rillerr.NewAborted(span)
	default:
		return nil
	}
}

// Invoke implements value.Host, delegating to the evaluator-supplied
// Invoker.
func (c *Context) Invoke(callee value.Value, args []value.Value) (value.Value, error) {
	if c.invoker == nil {
		return nil, rillerr.New("RILL-R-NotCallable", token.Span{}, "no evaluator is attached to this context")
	}
	return c.invoker(callee, args)
}

// Context implements value.Host.
func (c *Context) Context() context.Context { return c.GoContext }

// Emit implements value.Host, stamping kind/data into a timestamped,
// execution-correlated Event and forwarding it to Callbacks.
func (c *Context) Emit(kind string, data map[string]interface{}) {
	if c.Callbacks == nil {
		return
	}
	c.Callbacks.emit(Event{
		Kind:        kind,
		Timestamp:   time.Now().UTC(),
		ExecutionID: c.ExecutionID,
		Data:        data,
	})
}
