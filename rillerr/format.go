package rillerr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatHuman renders the multi-line human-readable format:
//
//	error[ID]: message
//	  --> line:col
//	   = help: suggestion
//	   = see: url (verbose only)
func (e *Error) FormatHuman(verbose bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "error[%s]: %s\n", e.ErrID, e.Msg)
	if !e.Span.IsZero() {
		fmt.Fprintf(&b, "  --> %s\n", e.Span.Start)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, "   = help: %s\n", e.Suggestions[0])
	}
	if verbose && e.HelpURL != "" {
		fmt.Fprintf(&b, "   = see: %s\n", e.HelpURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCompact renders the single-line compact format.
func (e *Error) FormatCompact() string {
	loc := ""
	if !e.Span.IsZero() {
		loc = fmt.Sprintf(" at %s", e.Span.Start)
	}
	hint := ""
	if len(e.Suggestions) > 0 {
		hint = fmt.Sprintf(" (hint: %s)", e.Suggestions[0])
	}
	return fmt.Sprintf("[%s] %s%s%s", e.ErrID, e.Msg, loc, hint)
}

// wireFrame / wireRange / wireDoc mirror an LSP-compatible JSON
// diagnostic shape.
type wireFrame struct {
	Location    string `json:"location"`
	FunctionName string `json:"functionName,omitempty"`
	Context     string `json:"context,omitempty"`
}

type wirePos struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type wireRange struct {
	Start wirePos `json:"start"`
	End   wirePos `json:"end"`
}

type wireDoc struct {
	ErrorID     string      `json:"errorId"`
	Severity    int         `json:"severity"`
	Message     string      `json:"message"`
	Source      string      `json:"source"`
	Code        string      `json:"code"`
	Range       wireRange   `json:"range"`
	Suggestions []string    `json:"suggestions,omitempty"`
	HelpURL     string      `json:"helpUrl,omitempty"`
	CallStack   []wireFrame `json:"callStack,omitempty"`
}

// FormatJSON renders an LSP-compatible diagnostic JSON document. Lines
// and characters are 0-indexed there even though Error.Span is
// 1-indexed internally (matching the human/compact formats and the
// source the evaluator walks).
func (e *Error) FormatJSON() ([]byte, error) {
	toPos := func(line, col int) wirePos {
		l, c := line-1, col-1
		if l < 0 {
			l = 0
		}
		if c < 0 {
			c = 0
		}
		return wirePos{Line: l, Character: c}
	}
	doc := wireDoc{
		ErrorID:     string(e.ErrID),
		Severity:    1,
		Message:     e.Msg,
		Source:      "rill",
		Code:        string(e.ErrID),
		Range:       wireRange{Start: toPos(e.Span.Start.Line, e.Span.Start.Column), End: toPos(e.Span.End.Line, e.Span.End.Column)},
		Suggestions: e.Suggestions,
		HelpURL:     e.HelpURL,
	}
	for _, f := range e.CallStack {
		doc.CallStack = append(doc.CallStack, wireFrame{
			Location:     f.Span.String(),
			FunctionName: f.FunctionName,
			Context:      f.Context,
		})
	}
	return json.Marshal(doc)
}
