package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/runtime"
	"github.com/rill-lang/rill/token"
	"github.com/rill-lang/rill/value"
)

func token0() token.Span {
	return token.Span{Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 1, Column: 1}}
}

func TestSetLocksType(t *testing.T) {
	ctx := runtime.New()
	require.NoError(t, ctx.Set("x", value.Number{Value: 1}))
	err := ctx.Set("x", value.String{Value: "oops"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked to number")

	require.NoError(t, ctx.Set("x", value.Number{Value: 2}))
	v, ok := ctx.Get("x")
	require.True(t, ok)
	assert.Equal(t, value.Number{Value: 2}, v)
}

func TestSetWithTypeAssertsDeclared(t *testing.T) {
	ctx := runtime.New()
	err := ctx.SetWithType("x", value.Number{Value: 1}, "string", token0())
	require.Error(t, err)

	require.NoError(t, ctx.SetWithType("y", value.String{Value: "ok"}, "string", token0()))
	v, _ := ctx.Get("y")
	assert.Equal(t, value.String{Value: "ok"}, v)
}

func TestGetOrFailUndefined(t *testing.T) {
	ctx := runtime.New()
	_, err := ctx.GetOrFail("missing", token0())
	require.Error(t, err)
	assert.Equal(t, "RILL-R-UndefinedVariable", string(err.ErrID))
}

func TestWithPipeSavesAndRestores(t *testing.T) {
	ctx := runtime.New()
	ctx.SetPipeValue(value.Number{Value: 1})

	result := runtime.WithPipe(ctx, value.Number{Value: 2}, func() value.Value {
		inner, ok := ctx.PipeValue()
		require.True(t, ok)
		return inner
	})
	assert.Equal(t, value.Number{Value: 2}, result)

	restored, ok := ctx.PipeValue()
	require.True(t, ok)
	assert.Equal(t, value.Number{Value: 1}, restored)
}

func TestWithPipeRestoresOnPanic(t *testing.T) {
	ctx := runtime.New()
	ctx.SetPipeValue(value.Number{Value: 1})

	func() {
		defer func() { recover() }()
		runtime.WithPipe(ctx, value.Number{Value: 2}, func() value.Value {
			panic("boom")
		})
	}()

	restored, ok := ctx.PipeValue()
	require.True(t, ok)
	assert.Equal(t, value.Number{Value: 1}, restored)
}

func TestCheckAbortedRespectsGoContext(t *testing.T) {
	goCtx, cancel := context.WithCancel(context.Background())
	ctx := runtime.New(runtime.WithGoContext(goCtx))
	assert.Nil(t, ctx.CheckAborted(token0()))

	cancel()
	err := ctx.CheckAborted(token0())
	require.NotNil(t, err)
	assert.Equal(t, "RILL-R-Aborted", string(err.ErrID))
}

func TestAutoExceptionsCompileOnConstruction(t *testing.T) {
	ctx := runtime.New(runtime.WithAutoExceptions([]string{"ERR:.*"}))
	require.Len(t, ctx.AutoExceptions, 1)
	assert.True(t, ctx.AutoExceptions[0].Compiled.MatchString("ERR: boom"))
	assert.False(t, ctx.AutoExceptions[0].Compiled.MatchString("fine"))
}

func TestEmitDispatchesCapture(t *testing.T) {
	var gotName string
	var gotVal interface{}
	cb := &runtime.Callbacks{OnCapture: func(name string, v interface{}) {
		gotName, gotVal = name, v
	}}
	ctx := runtime.New(runtime.WithCallbacks(cb))
	ctx.Emit("capture", map[string]interface{}{"name": "result", "value": "42"})

	assert.Equal(t, "result", gotName)
	assert.Equal(t, "42", gotVal)
}

func TestExecutionIDIsUniquePerContext(t *testing.T) {
	a := runtime.New()
	b := runtime.New()
	assert.NotEqual(t, a.ExecutionID, b.ExecutionID)
	assert.NotEmpty(t, a.ExecutionID)
}

func TestInvokeWithoutEvaluatorFails(t *testing.T) {
	ctx := runtime.New()
	_, err := ctx.Invoke(value.Number{Value: 1}, nil)
	require.Error(t, err)
}

func TestValidateFlagsInvalidAutoExceptionPattern(t *testing.T) {
	ctx := runtime.New(runtime.WithAutoExceptions([]string{"("}))
	err := ctx.Validate()
	require.NotNil(t, err)
	assert.Equal(t, "RILL-R-InvalidRegex", string(err.ErrID))
}

func TestValidatePassesForWellFormedPatterns(t *testing.T) {
	ctx := runtime.New(runtime.WithAutoExceptions([]string{"ERR:.*"}))
	assert.Nil(t, ctx.Validate())
}

func TestEventISO8601(t *testing.T) {
	ev := runtime.Event{Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	assert.Equal(t, "2026-01-02T03:04:05Z", ev.ISO8601())
}
