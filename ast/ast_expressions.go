package ast

import "github.com/rill-lang/rill/token"

// BinaryExpr covers arithmetic, comparison, logical and the `??` operator.
type BinaryExpr struct {
	base
	Op    string
	Left  Expression
	Right Expression
}

func (*BinaryExpr) expressionNode() {}

// UnaryExpr covers `!`, unary `-`.
type UnaryExpr struct {
	base
	Op      string
	Operand Expression
}

func (*UnaryExpr) expressionNode() {}

// TypeAssertExpr is `expr:T`; Operand is nil for the bare `:T` form,
// meaning "assert the current pipe value".
type TypeAssertExpr struct {
	base
	Operand Expression
	Type    string
}

func (*TypeAssertExpr) expressionNode() {}

// TypeCheckExpr is `expr:?T`; Operand nil means the bare pipe value.
type TypeCheckExpr struct {
	base
	Operand Expression
	Type    string
}

func (*TypeCheckExpr) expressionNode() {}

// AccessStep is one step of a postfix access chain (§4.7).
type AccessStep interface {
	accessStepNode()
}

// FieldAccess is `.field`.
type FieldAccess struct{ Name string }

func (FieldAccess) accessStepNode() {}

// IndexAccess is `[expr]`, numeric or string-keyed.
type IndexAccess struct{ Key Expression }

func (IndexAccess) accessStepNode() {}

// VarKeyAccess is `.$var`.
type VarKeyAccess struct{ VarName string }

func (VarKeyAccess) accessStepNode() {}

// ComputedAccess is `.(expr)`.
type ComputedAccess struct{ Expr Expression }

func (ComputedAccess) accessStepNode() {}

// AlternativesAccess is `.(a || b || ...)`.
type AlternativesAccess struct{ Keys []string }

func (AlternativesAccess) accessStepNode() {}

// ExistenceAccess is `.?field` or `.?field&T`.
type ExistenceAccess struct {
	Field string
	Type  string // empty if no type check requested
}

func (ExistenceAccess) accessStepNode() {}

// PostfixExpr is a primary expression plus an access chain, with an
// optional `?? default` clause.
type PostfixExpr struct {
	base
	Base    Expression
	Steps   []AccessStep
	Default Expression // nil if no `?? d` clause
}

func (*PostfixExpr) expressionNode() {}

// PipeSegmentTarget is the right-hand side of one `->` step.
type PipeSegmentTarget interface {
	pipeSegmentTarget()
}

// MethodCallTarget is `.method(args)`.
type MethodCallTarget struct {
	Name string
	Args []Expression
}

func (MethodCallTarget) pipeSegmentTarget() {}

// BoundIdentifierTarget is a bare identifier at a pipe position: the
// upstream value flows in as $, and if the identifier resolves to a
// callable it is auto-invoked with $ as its sole argument.
type BoundIdentifierTarget struct{ Name string }

func (BoundIdentifierTarget) pipeSegmentTarget() {}

// ClosureCallTarget is `closure($)` or `closure(args...)`.
type ClosureCallTarget struct {
	Callee Expression
	Args   []Expression
}

func (ClosureCallTarget) pipeSegmentTarget() {}

// InlineClosureTarget is an inline `|x| ...` pipe target.
type InlineClosureTarget struct{ Closure *ClosureLiteral }

func (InlineClosureTarget) pipeSegmentTarget() {}

// InlineBlockTarget is an inline `{ ... }` pipe target.
type InlineBlockTarget struct{ Block *BlockExpression }

func (InlineBlockTarget) pipeSegmentTarget() {}

// ConditionalTarget is a conditional consuming the upstream pipe value
// as its condition when Cond is nil.
type ConditionalTarget struct{ Cond *ConditionalExpression }

func (ConditionalTarget) pipeSegmentTarget() {}

// TypeAssertTarget / TypeCheckTarget apply to the upstream pipe value.
type TypeAssertTarget struct{ Type string }

func (TypeAssertTarget) pipeSegmentTarget() {}

type TypeCheckTarget struct{ Type string }

func (TypeCheckTarget) pipeSegmentTarget() {}

// EachTarget / MapTarget / FoldTarget / FilterTarget / SpreadTarget
// are the control-flow iteration pipe targets described in §4.5.
type EachTarget struct {
	Init *Expression // nil unless the accumulator form each(init) is used
	Body Node
}

func (EachTarget) pipeSegmentTarget() {}

type MapTarget struct{ Body Node }

func (MapTarget) pipeSegmentTarget() {}

type FoldTarget struct {
	Init Expression
	Body Node
}

func (FoldTarget) pipeSegmentTarget() {}

type FilterTarget struct{ Body Node }

func (FilterTarget) pipeSegmentTarget() {}

type SpreadTarget struct{ Closures []Expression }

func (SpreadTarget) pipeSegmentTarget() {}

// PipeSegment is one `-> target` step of a pipe chain.
type PipeSegment struct {
	Sp     token.Span
	Target PipeSegmentTarget
}

// Terminator is the optional trailer of a pipe chain: a capture,
// break, or return.
type Terminator interface {
	terminatorNode()
}

// CaptureTerminator is `=> $name` or `=> $name:T`.
type CaptureTerminator struct {
	Name string
	Type string // empty if untyped
}

func (CaptureTerminator) terminatorNode() {}

// BreakTerminator is `break` or `break value`.
type BreakTerminator struct{ Value Expression }

func (BreakTerminator) terminatorNode() {}

// ReturnTerminator is `return` or `return value`.
type ReturnTerminator struct{ Value Expression }

func (ReturnTerminator) terminatorNode() {}

// PipeChain is the central construct of the language: a head
// expression threaded through zero or more segments, optionally
// terminated by a capture/break/return.
type PipeChain struct {
	base
	Head       Expression
	Segments   []*PipeSegment
	Terminator Terminator // nil if none
}

func (*PipeChain) expressionNode() {}
