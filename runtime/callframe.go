package runtime

import (
	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/token"
)

// PushCallFrame pushes a new call frame, failing with
// RILL-R-CallStackOverflow if depth would exceed MaxCallStackDepth.
func (c *Context) PushCallFrame(span token.Span, functionName string, frameContext string) *rillerr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.callStack) >= c.MaxCallStackDepth {
		return rillerr.New("RILL-R-CallStackOverflow", span,
			"call stack overflow: exceeded maximum depth of %d", c.MaxCallStackDepth).
			WithContext(map[string]interface{}{"maxDepth": c.MaxCallStackDepth})
	}
	c.callStack = append(c.callStack, rillerr.Frame{
		FunctionName: functionName,
		Span:         span,
		Context:      frameContext,
	})
	return nil
}

// PopCallFrame pops the most recently pushed call frame; it always
// succeeds. Callers must invoke it on every exit path, typically via
// defer immediately after a successful PushCallFrame, so the call
// stack after execute returns has the same depth it had before, even
// on an error return.
func (c *Context) PopCallFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.callStack) > 0 {
		c.callStack = c.callStack[:len(c.callStack)-1]
	}
}

// CallStackDepth reports the current depth, used by tests asserting
// the balanced-stack invariant.
func (c *Context) CallStackDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.callStack)
}

// CallStackSnapshot freezes the current call stack for attachment to
// an error as an optional frozen snapshot.
func (c *Context) CallStackSnapshot() []rillerr.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]rillerr.Frame, len(c.callStack))
	copy(out, c.callStack)
	return out
}
