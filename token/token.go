// Package token defines source positions shared by the AST and the
// evaluator, so every error and every call-stack frame can carry a
// precise location.
package token

import "fmt"

// Position is a single point in source text, 1-indexed for the human
// and compact error formats and convertible to 0-indexed for the LSP
// wire format (see rillerr.Error.FormatJSON).
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

// Span is a half-open range in source text, [Start, End).
type Span struct {
	Start Position
	End   Position
	File  string
}

func (s Span) String() string {
	if s.File == "" {
		return s.Start.String()
	}
	return fmt.Sprintf("%s:%s", s.File, s.Start)
}

// IsZero reports whether the span carries no location information.
func (s Span) IsZero() bool {
	return s.Start.IsZero() && s.End.IsZero()
}
