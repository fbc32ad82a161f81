// Package rillerr implements the Rill error model: stable,
// category-prefixed error IDs, source locations, a context map, an
// optional frozen call-stack snapshot, and three output formats
// (human, compact, LSP-style JSON).
//
// Each Error carries a registry-validated ID and a structured context
// map rather than a bare message/line/column/stack-trace struct.
package rillerr

import (
	"fmt"

	"github.com/rill-lang/rill/token"
)

// Category is the error-ID prefix family.
type Category string

const (
	CategoryParse   Category = "P"
	CategoryLex     Category = "L"
	CategoryRuntime Category = "R"
	CategoryCheck   Category = "C"
)

// ID is a stable, registry-validated error identifier such as
// "RILL-R-TypeMismatch".
type ID string

// Frame is one call-stack entry attached to an error raised from
// within a host-function body or a nested script-closure invocation.
type Frame struct {
	FunctionName string
	Span         token.Span
	Context      string // optional free-form context, e.g. a method receiver type
}

// Error is the single error type the evaluator ever raises.
type Error struct {
	ErrID      ID
	Msg        string // human message, without the location suffix
	Span       token.Span
	Context    map[string]interface{}
	HelpURL    string
	CallStack  []Frame // empty for top-level errors
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Span.IsZero() {
		return fmt.Sprintf("[%s] %s", e.ErrID, e.Msg)
	}
	return fmt.Sprintf("[%s] %s at %s", e.ErrID, e.Msg, e.Span.Start)
}

// New constructs an Error, validating that id exists in the registry
// and matches the expected category for its kind — a mismatch is a
// programmer bug that raises an immediate type error at the host
// boundary.
func New(id ID, span token.Span, format string, args ...interface{}) *Error {
	def, ok := registry[id]
	if !ok {
		panic(fmt.Sprintf("rillerr: unknown error id %q — register it in rillerr.registry before use", id))
	}
	if id.Category() != def.Category {
		panic(fmt.Sprintf("rillerr: error id %q is registered under category %q", id, def.Category))
	}
	return &Error{
		ErrID:   id,
		Msg:     fmt.Sprintf(format, args...),
		Span:    span,
		Context: map[string]interface{}{},
		HelpURL: def.HelpURL,
	}
}

// WithContext attaches context entries and returns the receiver for
// chaining.
func (e *Error) WithContext(kv map[string]interface{}) *Error {
	for k, v := range kv {
		e.Context[k] = v
	}
	return e
}

// WithFrame appends a call-stack frame to the end of CallStack and
// returns the receiver for chaining.
func (e *Error) WithFrame(f Frame) *Error {
	e.CallStack = append(e.CallStack, f)
	return e
}

// Category extracts the category segment of an ID, e.g. "R" from
// "RILL-R-TypeMismatch". Panics if id isn't shaped "RILL-X-Name".
func (id ID) Category() Category {
	s := string(id)
	if len(s) < len("RILL-X-") || s[:5] != "RILL-" {
		panic(fmt.Sprintf("rillerr: malformed error id %q", s))
	}
	return Category(s[5:6])
}
