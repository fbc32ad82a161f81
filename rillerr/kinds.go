package rillerr

import (
	"github.com/dustin/go-humanize"
	"github.com/rill-lang/rill/token"
)

// NewTimeout builds the specialised RILL-R-Timeout error: stores
// functionName + timeoutMs in Context and phrases the duration with
// go-humanize the way a host-facing CLI wants it rendered in the
// human format.
func NewTimeout(span token.Span, functionName string, timeoutMs int) *Error {
	e := New("RILL-R-Timeout", span, "call to %q exceeded its %s timeout", functionName,
		humanize.Comma(int64(timeoutMs))+"ms")
	return e.WithContext(map[string]interface{}{
		"functionName": functionName,
		"timeoutMs":    timeoutMs,
	})
}

// NewAborted builds the specialised RILL-R-Aborted error raised when
// the cooperative cancellation signal fires.
func NewAborted(span token.Span) *Error {
	return New("RILL-R-Aborted", span, "execution aborted")
}

// NewAutoException builds the specialised RILL-R-AutoException error
// fired when a string pipe value matches a configured auto-exception
// pattern.
func NewAutoException(span token.Span, pattern, matchedValue string) *Error {
	e := New("RILL-R-AutoException", span, "pipe value matched auto-exception pattern /%s/", pattern)
	return e.WithContext(map[string]interface{}{
		"pattern":      pattern,
		"matchedValue": matchedValue,
	})
}
