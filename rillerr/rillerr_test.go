package rillerr_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/rillerr"
	"github.com/rill-lang/rill/token"
)

func span() token.Span {
	return token.Span{Start: token.Position{Line: 3, Column: 5}, End: token.Position{Line: 3, Column: 9}}
}

func TestNewUnknownIDPanics(t *testing.T) {
	assert.Panics(t, func() {
		rillerr.New("RILL-R-NotARealID", token.Span{}, "boom")
	})
}

func TestErrorMessage(t *testing.T) {
	err := rillerr.New("RILL-R-TypeMismatch", span(), "expected %s, got %s", "number", "string")
	assert.Equal(t, "[RILL-R-TypeMismatch] expected number, got string at 3:5", err.Error())
}

func TestErrorMessageWithoutSpan(t *testing.T) {
	err := rillerr.New("RILL-R-Generic", token.Span{}, "oops")
	assert.Equal(t, "[RILL-R-Generic] oops", err.Error())
}

func TestWithContextAndFrame(t *testing.T) {
	err := rillerr.New("RILL-R-OperandType", span(), "bad operand").
		WithContext(map[string]interface{}{"expected": "number"}).
		WithFrame(rillerr.Frame{FunctionName: "f", Span: span()})
	assert.Equal(t, "number", err.Context["expected"])
	require.Len(t, err.CallStack, 1)
	assert.Equal(t, "f", err.CallStack[0].FunctionName)
}

func TestCategory(t *testing.T) {
	assert.Equal(t, rillerr.CategoryRuntime, rillerr.ID("RILL-R-Generic").Category())
	assert.Equal(t, rillerr.CategoryParse, rillerr.ID("RILL-P-Syntax").Category())
}

func TestFormatHuman(t *testing.T) {
	err := rillerr.New("RILL-R-DivisionByZero", span(), "division by zero")
	err.Suggestions = []string{"check the divisor first"}
	out := err.FormatHuman(false)
	assert.Contains(t, out, "error[RILL-R-DivisionByZero]: division by zero")
	assert.Contains(t, out, "--> 3:5")
	assert.Contains(t, out, "= help: check the divisor first")
}

func TestFormatCompact(t *testing.T) {
	err := rillerr.New("RILL-R-DivisionByZero", span(), "division by zero")
	err.Suggestions = []string{"check the divisor first"}
	assert.Equal(t, "[RILL-R-DivisionByZero] division by zero at 3:5 (hint: check the divisor first)", err.FormatCompact())
}

func TestFormatJSON(t *testing.T) {
	err := rillerr.New("RILL-R-IndexOutOfRange", span(), "index out of range")
	data, marshalErr := err.FormatJSON()
	require.NoError(t, marshalErr)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "RILL-R-IndexOutOfRange", doc["errorId"])
	assert.Equal(t, float64(1), doc["severity"])
	assert.Equal(t, "rill", doc["source"])

	rng := doc["range"].(map[string]interface{})
	start := rng["start"].(map[string]interface{})
	assert.Equal(t, float64(2), start["line"])      // 0-indexed from 1-indexed line 3
	assert.Equal(t, float64(4), start["character"]) // 0-indexed from 1-indexed column 5
}
