package embed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/ast"
	"github.com/rill-lang/rill/host"
	"github.com/rill-lang/rill/pkg/embed"
	"github.com/rill-lang/rill/value"
)

func TestMarshallerScalarRoundTrip(t *testing.T) {
	m := embed.NewMarshaller()

	v, err := m.ToValue(42)
	require.NoError(t, err)
	assert.Equal(t, value.Number{Value: 42}, v)

	back, err := m.FromValue(v)
	require.NoError(t, err)
	assert.Equal(t, float64(42), back)
}

func TestMarshallerSliceAndMap(t *testing.T) {
	m := embed.NewMarshaller()

	v, err := m.ToValue([]int{1, 2, 3})
	require.NoError(t, err)
	l, ok := v.(*value.List)
	require.True(t, ok)
	assert.Equal(t, 3, l.Len())

	d, err := m.ToValue(map[string]int{"x": 1})
	require.NoError(t, err)
	dict, ok := d.(*value.Dict)
	require.True(t, ok)
	fv, exists := dict.Get("x")
	require.True(t, exists)
	assert.Equal(t, value.Number{Value: 1}, fv)
}

func TestMarshallerWrapsGoFunc(t *testing.T) {
	m := embed.NewMarshaller()
	v, err := m.ToValue(func(a, b int) int { return a + b })
	require.NoError(t, err)

	hf, ok := v.(*value.HostFunction)
	require.True(t, ok)
	result, callErr := hf.Fn(nil, nil, []value.Value{value.Number{Value: 2}, value.Number{Value: 3}})
	require.NoError(t, callErr)
	assert.Equal(t, value.Number{Value: 5}, result)
}

func TestVMSetAndGet(t *testing.T) {
	vm := embed.New()
	require.NoError(t, vm.Set("x", 7))

	v, err := vm.Get("x")
	require.NoError(t, err)
	assert.Equal(t, float64(7), v)
}

func TestVMGetMissingErrors(t *testing.T) {
	vm := embed.New()
	_, err := vm.Get("missing")
	assert.Error(t, err)
}

func TestVMBindAndRunValue(t *testing.T) {
	vm := embed.New()
	require.NoError(t, vm.Bind("double", func(n int) int { return n * 2 }))

	program := &ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: &ast.Identifier{Name: "double"},
			Args:   []ast.Expression{&ast.NumberLiteral{Value: 21}},
		}},
	}}

	result, _, rerr := vm.RunValue(program)
	require.Nil(t, rerr)
	assert.Equal(t, value.Number{Value: 42}, result)
}

func TestVMWithHostRegistryExposesPrefixedName(t *testing.T) {
	reg := host.NewRegistry()
	reg.RegisterNamespaced("greet", []host.Registration{
		{Name: "hello", Fn: func(_ context.Context, _ value.Host, args []value.Value) (value.Value, error) {
			return value.String{Value: "hi"}, nil
		}},
	})

	vm := embed.New().WithHostRegistry(reg)
	program := &ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expr: &ast.CallExpr{
			Callee: &ast.Identifier{Name: "greet::hello"},
		}},
	}}

	result, _, rerr := vm.RunValue(program)
	require.Nil(t, rerr)
	assert.Equal(t, value.String{Value: "hi"}, result)
}

func TestVMSetPipeSeedsTopLevelDollar(t *testing.T) {
	vm := embed.New()
	require.NoError(t, vm.SetPipe([]string{"a", "b"}))

	program := &ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expr: &ast.PipeValue{}},
	}}

	result, _, rerr := vm.RunValue(program)
	require.Nil(t, rerr)
	l, ok := result.(*value.List)
	require.True(t, ok)
	assert.Equal(t, 2, l.Len())
}

func TestVMRunReturnsGoValues(t *testing.T) {
	vm := embed.New()
	program := &ast.Program{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expr: &ast.NumberLiteral{Value: 9}},
	}}

	result, _, err := vm.Run(program)
	require.NoError(t, err)
	assert.Equal(t, float64(9), result)
}
