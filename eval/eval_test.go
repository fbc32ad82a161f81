package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/eval"
	"github.com/rill-lang/rill/runtime"
	"github.com/rill-lang/rill/value"
)

func run(t *testing.T, expr ast.Expression) eval.Result {
	t.Helper()
	program := &ast.Program{Statements: []ast.Statement{&ast.ExpressionStatement{Expr: expr}}}
	ctx := runtime.New()
	v, _, rerr := eval.Execute(ctx, program)
	if rerr != nil {
		return eval.Fail(rerr)
	}
	return eval.Val(v)
}

func num(n float64) *ast.NumberLiteral { return &ast.NumberLiteral{Value: n} }
func str(s string) *ast.StringLiteral {
	return &ast.StringLiteral{Parts: []ast.StringPart{{Text: s}}}
}

func TestArithmetic(t *testing.T) {
	res := run(t, &ast.BinaryExpr{Op: "+", Left: num(2), Right: num(3)})
	require.Nil(t, res.Err)
	assert.Equal(t, value.Number{Value: 5}, res.Value)
}

func TestDivisionByZero(t *testing.T) {
	res := run(t, &ast.BinaryExpr{Op: "/", Left: num(1), Right: num(0)})
	require.NotNil(t, res.Err)
	assert.Equal(t, "RILL-R-DivisionByZero", string(res.Err.ErrID))
}

func TestStringConcat(t *testing.T) {
	res := run(t, &ast.BinaryExpr{Op: "+", Left: str("foo"), Right: str("bar")})
	require.Nil(t, res.Err)
	assert.Equal(t, value.String{Value: "foobar"}, res.Value)
}

func TestLogicalAndShortCircuitsToOperandValue(t *testing.T) {
	res := run(t, &ast.BinaryExpr{Op: "&&", Left: &ast.BoolLiteral{Value: false}, Right: num(99)})
	require.Nil(t, res.Err)
	assert.Equal(t, value.Bool{Value: false}, res.Value)
}

func TestNullCoalesce(t *testing.T) {
	res := run(t, &ast.BinaryExpr{Op: "??", Left: &ast.NullLiteral{}, Right: num(7)})
	require.Nil(t, res.Err)
	assert.Equal(t, value.Number{Value: 7}, res.Value)
}

func TestListLiteralAndConcat(t *testing.T) {
	left := &ast.ListLiteral{Elements: []ast.Expression{num(1)}}
	right := &ast.ListLiteral{Elements: []ast.Expression{num(2), num(3)}}
	res := run(t, &ast.BinaryExpr{Op: "+", Left: left, Right: right})
	require.Nil(t, res.Err)
	l, ok := res.Value.(*value.List)
	require.True(t, ok)
	assert.Equal(t, 3, l.Len())
}

func TestConditionalExpression(t *testing.T) {
	cond := &ast.ConditionalExpression{
		Cond: &ast.BoolLiteral{Value: true},
		Then: num(1),
		Else: num(2),
	}
	res := run(t, cond)
	require.Nil(t, res.Err)
	assert.Equal(t, value.Number{Value: 1}, res.Value)
}

func TestConditionalFallsBackToNullWithoutElse(t *testing.T) {
	cond := &ast.ConditionalExpression{Cond: &ast.BoolLiteral{Value: false}, Then: num(1)}
	res := run(t, cond)
	require.Nil(t, res.Err)
	assert.Equal(t, value.Null{}, res.Value)
}

func TestDictFieldAccess(t *testing.T) {
	dict := &ast.DictLiteral{Entries: []ast.DictEntry{{Key: "x", Value: num(42)}}}
	access := &ast.PostfixExpr{Base: dict, Steps: []ast.AccessStep{ast.FieldAccess{Name: "x"}}}
	res := run(t, access)
	require.Nil(t, res.Err)
	assert.Equal(t, value.Number{Value: 42}, res.Value)
}

func TestDictMissingFieldWithDefault(t *testing.T) {
	dict := &ast.DictLiteral{Entries: []ast.DictEntry{{Key: "x", Value: num(1)}}}
	access := &ast.PostfixExpr{
		Base:    dict,
		Steps:   []ast.AccessStep{ast.FieldAccess{Name: "missing"}},
		Default: num(-1),
	}
	res := run(t, access)
	require.Nil(t, res.Err)
	assert.Equal(t, value.Number{Value: -1}, res.Value)
}

func TestDictMissingFieldWithoutDefaultErrors(t *testing.T) {
	dict := &ast.DictLiteral{Entries: []ast.DictEntry{{Key: "x", Value: num(1)}}}
	access := &ast.PostfixExpr{Base: dict, Steps: []ast.AccessStep{ast.FieldAccess{Name: "missing"}}}
	res := run(t, access)
	require.NotNil(t, res.Err)
	assert.Equal(t, "RILL-R-MissingField", string(res.Err.ErrID))
}

func TestFieldAccessOperandTypeNotSwallowedByDefault(t *testing.T) {
	// 42.field ?? "fallback" must surface RILL-R-OperandType, not
	// silently substitute the default: only missing-field,
	// out-of-range, and null are recoverable via `??`.
	access := &ast.PostfixExpr{
		Base:    num(42),
		Steps:   []ast.AccessStep{ast.FieldAccess{Name: "field"}},
		Default: str("fallback"),
	}
	res := run(t, access)
	require.NotNil(t, res.Err)
	assert.Equal(t, "RILL-R-OperandType", string(res.Err.ErrID))
}

func TestListNegativeIndex(t *testing.T) {
	list := &ast.ListLiteral{Elements: []ast.Expression{num(1), num(2), num(3)}}
	access := &ast.PostfixExpr{Base: list, Steps: []ast.AccessStep{ast.IndexAccess{Key: num(-1)}}}
	res := run(t, access)
	require.Nil(t, res.Err)
	assert.Equal(t, value.Number{Value: 3}, res.Value)
}

func TestClosureCallBindsFirstArgAsPipe(t *testing.T) {
	closure := &ast.ClosureLiteral{Params: []ast.Param{{Name: "n"}}, Body: &ast.BinaryExpr{Op: "*", Left: &ast.PipeValue{}, Right: num(2)}}
	call := &ast.CallExpr{Callee: closure, Args: []ast.Expression{num(21)}}
	res := run(t, call)
	require.Nil(t, res.Err)
	assert.Equal(t, value.Number{Value: 42}, res.Value)
}

func TestClosureDefaultParamEvaluatedInCapturedEnv(t *testing.T) {
	closure := &ast.ClosureLiteral{
		Params: []ast.Param{{Name: "n", Default: num(10)}},
		Body:   &ast.Identifier{Name: "n"},
	}
	call := &ast.CallExpr{Callee: closure, Args: nil}
	res := run(t, call)
	require.Nil(t, res.Err)
	assert.Equal(t, value.Number{Value: 10}, res.Value)
}

func TestUndefinedVariableErrors(t *testing.T) {
	res := run(t, &ast.Identifier{Name: "nope"})
	require.NotNil(t, res.Err)
	assert.Equal(t, "RILL-R-UndefinedVariable", string(res.Err.ErrID))
}

func TestWhileLoopAccumulatesViaBlockPipe(t *testing.T) {
	// while ($ < 3) { $ + 1 } starting from pipe 0, via a program of
	// statements rather than a bare expression so $ threads correctly.
	program := &ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expr: num(0)},
		&ast.ExpressionStatement{Expr: &ast.WhileLoop{
			Cond: &ast.BinaryExpr{Op: "<", Left: &ast.PipeValue{}, Right: num(3)},
			Body: &ast.BinaryExpr{Op: "+", Left: &ast.PipeValue{}, Right: num(1)},
		}},
	}}
	ctx := runtime.New()
	v, _, rerr := eval.Execute(ctx, program)
	require.Nil(t, rerr)
	assert.Equal(t, value.Number{Value: 3}, v)
}

func TestMapCollectsMappedResults(t *testing.T) {
	source := &ast.ListLiteral{Elements: []ast.Expression{num(1), num(2), num(3)}}
	m := &ast.MapExpr{Source: source, Body: &ast.BinaryExpr{Op: "*", Left: &ast.PipeValue{}, Right: num(10)}}
	res := run(t, m)
	require.Nil(t, res.Err)
	l, ok := res.Value.(*value.List)
	require.True(t, ok)
	assert.Equal(t, value.Number{Value: 10}, l.Elements[0])
	assert.Equal(t, value.Number{Value: 30}, l.Elements[2])
}

func TestFoldAccumulates(t *testing.T) {
	source := &ast.ListLiteral{Elements: []ast.Expression{num(1), num(2), num(3)}}
	f := &ast.FoldExpr{Source: source, Init: num(0), Body: &ast.BinaryExpr{Op: "+", Left: &ast.Identifier{Name: "@"}, Right: &ast.PipeValue{}}}
	res := run(t, f)
	require.Nil(t, res.Err)
	assert.Equal(t, value.Number{Value: 6}, res.Value)
}

func TestFilterKeepsTruthyElements(t *testing.T) {
	source := &ast.ListLiteral{Elements: []ast.Expression{num(1), num(2), num(3), num(4)}}
	filt := &ast.FilterExpr{Source: source, Body: &ast.BinaryExpr{Op: "==", Left: &ast.BinaryExpr{Op: "%", Left: &ast.PipeValue{}, Right: num(2)}, Right: num(0)}}
	res := run(t, filt)
	require.Nil(t, res.Err)
	l, ok := res.Value.(*value.List)
	require.True(t, ok)
	assert.Equal(t, 2, l.Len())
}

func TestEachBreakValueContributesToResultList(t *testing.T) {
	// [1,2,3] -> each { $ * 10 => break } — breaking on the first
	// element still contributes its value to each's result list rather
	// than discarding it.
	source := &ast.ListLiteral{Elements: []ast.Expression{num(1), num(2), num(3)}}
	body := &ast.PipeChain{
		Head:       &ast.BinaryExpr{Op: "*", Left: &ast.PipeValue{}, Right: num(10)},
		Terminator: ast.BreakTerminator{},
	}
	each := &ast.EachExpr{Source: source, Body: body}
	res := run(t, each)
	require.Nil(t, res.Err)
	l, ok := res.Value.(*value.List)
	require.True(t, ok)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, value.Number{Value: 10}, l.Elements[0])
}

func TestErrorExprProducesError(t *testing.T) {
	res := run(t, &ast.ErrorExpr{Message: str("boom")})
	require.NotNil(t, res.Err)
	assert.Contains(t, res.Err.Msg, "boom")
}

func TestAssertFailurePropagatesMessage(t *testing.T) {
	res := run(t, &ast.AssertExpr{Cond: &ast.BoolLiteral{Value: false}, Message: str("must hold")})
	require.NotNil(t, res.Err)
	assert.Contains(t, res.Err.Msg, "must hold")
}

func TestAssertSuccessYieldsCondValue(t *testing.T) {
	res := run(t, &ast.AssertExpr{Cond: &ast.BoolLiteral{Value: true}})
	require.Nil(t, res.Err)
	assert.Equal(t, value.Bool{Value: true}, res.Value)
}

func TestPostfixDefaultCatchesPlainNullNotJustErrors(t *testing.T) {
	dict := &ast.DictLiteral{Entries: []ast.DictEntry{{Key: "x", Value: &ast.NullLiteral{}}}}
	access := &ast.PostfixExpr{
		Base:    dict,
		Steps:   []ast.AccessStep{ast.FieldAccess{Name: "x"}},
		Default: str("fallback"),
	}
	res := run(t, access)
	require.Nil(t, res.Err)
	assert.Equal(t, value.String{Value: "fallback"}, res.Value)
}

func TestStepperAdvancesOneStatementAtATime(t *testing.T) {
	program := &ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expr: num(1)},
		&ast.ExpressionStatement{Expr: num(2)},
		&ast.ExpressionStatement{Expr: num(3)},
	}}
	ctx := runtime.New()
	stepper := eval.CreateStepper(ctx, program)

	v, done, err := stepper.Next()
	require.Nil(t, err)
	require.False(t, done)
	assert.Equal(t, value.Number{Value: 1}, v)

	v, done, err = stepper.Next()
	require.Nil(t, err)
	require.False(t, done)
	assert.Equal(t, value.Number{Value: 2}, v)

	v, done, err = stepper.Next()
	require.Nil(t, err)
	require.True(t, done)
	assert.Equal(t, value.Number{Value: 3}, v)
}

func TestNestedClosureErrorCarriesCallStack(t *testing.T) {
	// A closure invoked from inside another closure, erroring on an
	// undefined variable, should carry both frames: frames are attached
	// to errors thrown from within nested script-closure invocations.
	inner := &ast.ClosureLiteral{Body: &ast.Identifier{Name: "nope"}}
	outer := &ast.ClosureLiteral{
		Body: &ast.CallExpr{Callee: inner, Args: nil},
	}
	call := &ast.CallExpr{Callee: outer, Args: nil}
	res := run(t, call)
	require.NotNil(t, res.Err)
	assert.Equal(t, "RILL-R-UndefinedVariable", string(res.Err.ErrID))
	require.Len(t, res.Err.CallStack, 2)
}

func TestTopLevelErrorCarriesEmptyCallStack(t *testing.T) {
	res := run(t, &ast.Identifier{Name: "nope"})
	require.NotNil(t, res.Err)
	assert.Empty(t, res.Err.CallStack)
}

func TestStepperStopsOnError(t *testing.T) {
	program := &ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expr: &ast.Identifier{Name: "nope"}},
		&ast.ExpressionStatement{Expr: num(1)},
	}}
	ctx := runtime.New()
	stepper := eval.CreateStepper(ctx, program)

	_, done, err := stepper.Next()
	require.True(t, done)
	require.NotNil(t, err)
	assert.Equal(t, "RILL-R-UndefinedVariable", string(err.ErrID))
}
