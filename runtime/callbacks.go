package runtime

import (
	"time"

	"github.com/rill-lang/rill/rillerr"
)

// Event is one observability event: an RFC3339 timestamp, a Kind tag
// (step start/end, capture, host-call, function-return, error, or an
// extension event carrying its own Subsystem), and an ExecutionID
// correlating every event from one `execute` call.
type Event struct {
	Kind        string
	Timestamp   time.Time
	ExecutionID string
	Subsystem   string // set for extension-originated events
	Data        map[string]interface{}
}

// ISO8601 renders Timestamp in RFC3339 form.
func (e Event) ISO8601() string {
	return e.Timestamp.Format(time.RFC3339)
}

// Callbacks holds the optional observers a host may register: onLog,
// onLogEvent, onStepStart, onStepEnd, onCapture, onHostCall,
// onFunctionReturn, onError. Each is nil-safe to call.
type Callbacks struct {
	OnLog            func(message string)
	OnLogEvent       func(Event)
	OnStepStart      func(Event)
	OnStepEnd        func(Event)
	OnCapture        func(name string, v interface{})
	OnHostCall       func(Event)
	OnFunctionReturn func(Event)
	OnError          func(*rillerr.Error)
}

// emit dispatches ev to every callback whose Kind it matches, and
// always to OnLogEvent if set (a catch-all observer).
func (cb *Callbacks) emit(ev Event) {
	if cb == nil {
		return
	}
	if cb.OnLogEvent != nil {
		cb.OnLogEvent(ev)
	}
	switch ev.Kind {
	case "step_start":
		if cb.OnStepStart != nil {
			cb.OnStepStart(ev)
		}
	case "step_end":
		if cb.OnStepEnd != nil {
			cb.OnStepEnd(ev)
		}
	case "host_call":
		if cb.OnHostCall != nil {
			cb.OnHostCall(ev)
		}
	case "function_return":
		if cb.OnFunctionReturn != nil {
			cb.OnFunctionReturn(ev)
		}
	case "capture":
		if cb.OnCapture != nil {
			name, _ := ev.Data["name"].(string)
			cb.OnCapture(name, ev.Data["value"])
		}
	}
}

// EmitError reports err through OnError, if set.
func (c *Context) EmitError(err *rillerr.Error) {
	if c.Callbacks != nil && c.Callbacks.OnError != nil {
		c.Callbacks.OnError(err)
	}
}

// Log reports a plain log message through OnLog, if set.
func (c *Context) Log(message string) {
	if c.Callbacks != nil && c.Callbacks.OnLog != nil {
		c.Callbacks.OnLog(message)
	}
}
