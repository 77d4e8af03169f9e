package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fibSource = `
func fib(n int) int {
    if n < 2 {
        return n;
    }
    return fib(n - 1) + fib(n - 2);
}

func main() int {
    var i int = 0;
    while i < 10 {
        print fib(i);
        i = i + 1;
    }
    return 0;
}
`

func TestCompile_Success(t *testing.T) {
	res := Compile("fib.wb", fibSource, Options{})
	require.NotNil(t, res.Diagnostics)
	assert.False(t, res.Diagnostics.HasErrors())
	require.NotNil(t, res.Symbols)
	_, ok := res.Symbols.Funcs["fib"]
	assert.True(t, ok)
}

func TestCompile_EmitDebugIR(t *testing.T) {
	res := Compile("fib.wb", fibSource, Options{EmitDebugIR: true})
	require.False(t, res.Diagnostics.HasErrors())
	assert.Contains(t, res.IR, "func fib")
	assert.Contains(t, res.IR, "func __init")
}

func TestCompile_LexErrorStopsBeforeParsing(t *testing.T) {
	res := Compile("bad.wb", `var x int = 99999999999999999999;`, Options{})
	require.True(t, res.Diagnostics.HasErrors())
	assert.Nil(t, res.Symbols)
}

func TestCompile_UndeclaredNameIsCheckError(t *testing.T) {
	res := Compile("bad.wb", `
func f() int {
    return y;
}
`, Options{})
	require.True(t, res.Diagnostics.HasErrors())
	assert.Contains(t, res.Diagnostics.Format(), "undeclared name")
}

func TestCompileBatch_IndependentResults(t *testing.T) {
	sources := []Source{
		{File: "good.wb", Text: fibSource},
		{File: "bad.wb", Text: `func f() int { return y; }`},
	}
	results, err := CompileBatch(context.Background(), sources, Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Diagnostics.HasErrors())
	assert.True(t, results[1].Diagnostics.HasErrors())
}

func TestCheck_NoIRProduced(t *testing.T) {
	diags := Check("fib.wb", fibSource)
	assert.False(t, diags.HasErrors())
}
