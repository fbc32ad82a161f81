package runtime

import "github.com/rill-lang/rill/value"

// varFrame is one saved (variables, lockedType) pair, stacked by
// PushVarFrame/PopVarFrame around a script-closure invocation.
type varFrame struct {
	variables  map[string]value.Value
	lockedType map[string]value.Kind
}

// PushVarFrame installs a fresh variable namespace seeded from
// initial — a script closure's captured environment overlaid with its
// parameter bindings — and saves the previous namespace to restore on
// PopVarFrame.
//
// This is the mechanism that keeps a callable's captured environment
// immutable once constructed: the call gets its own namespace rather
// than writing through to whatever frame invoked it, so assignments
// inside a closure body never leak into the caller's variables, and
// the caller's subsequent writes never leak into an already-captured
// closure.
func (c *Context) PushVarFrame(initial value.Env) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.varFrames = append(c.varFrames, varFrame{variables: c.variables, lockedType: c.lockedType})

	vars := make(map[string]value.Value, len(initial))
	locked := make(map[string]value.Kind, len(initial))
	for k, v := range initial {
		vars[k] = v
		locked[k] = value.InferKind(v)
	}
	c.variables = vars
	c.lockedType = locked
}

// PopVarFrame restores the namespace saved by the matching
// PushVarFrame. Callers must call it on every exit path (typically via
// defer immediately after PushVarFrame).
func (c *Context) PopVarFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.varFrames)
	if n == 0 {
		return
	}
	top := c.varFrames[n-1]
	c.varFrames = c.varFrames[:n-1]
	c.variables = top.variables
	c.lockedType = top.lockedType
}

// Snapshot returns a copy of the current frame's variables, the
// `variables` half of an `{ value, variables }` execute result.
func (c *Context) Snapshot() map[string]value.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]value.Value, len(c.variables))
	for k, v := range c.variables {
		out[k] = v
	}
	return out
}
