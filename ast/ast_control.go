package ast

// ConditionalExpression is `cond ? then ! else`. Cond is nil when the
// conditional tests the upstream pipe value instead of an explicit
// expression. Else may itself be a *ConditionalExpression (else-if
// chain) or nil (then returns null when the condition is false).
type ConditionalExpression struct {
	base
	Cond Expression // nil => test the current pipe value
	Then Node
	Else Node // nil, Node, or *ConditionalExpression
}

func (*ConditionalExpression) expressionNode() {}

// WhileLoop is `cond @ body`.
type WhileLoop struct {
	base
	Cond Expression
	Body Node
}

func (*WhileLoop) expressionNode() {}

// DoWhileLoop is `@ body ? cond`.
type DoWhileLoop struct {
	base
	Body Node
	Cond Expression
}

func (*DoWhileLoop) expressionNode() {}

// EachExpr is standalone `source -> each { ... }` (also reachable via
// EachTarget when used as a pipe segment); Init is non-nil for the
// accumulator form `each(init) { ... }`.
type EachExpr struct {
	base
	Source Expression
	Init   Expression
	Body   Node
}

func (*EachExpr) expressionNode() {}

// MapExpr is standalone `source -> map { ... }`.
type MapExpr struct {
	base
	Source Expression
	Body   Node
}

func (*MapExpr) expressionNode() {}

// FoldExpr is standalone `source -> fold(init) { ... }`.
type FoldExpr struct {
	base
	Source Expression
	Init   Expression
	Body   Node
}

func (*FoldExpr) expressionNode() {}

// FilterExpr is standalone `source -> filter { ... }`.
type FilterExpr struct {
	base
	Source Expression
	Body   Node
}

func (*FilterExpr) expressionNode() {}

// SpreadExpr is `value -> @[f1, f2, ...]`.
type SpreadExpr struct {
	base
	Value    Expression
	Closures []Expression
}

func (*SpreadExpr) expressionNode() {}
