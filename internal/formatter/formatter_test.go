package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wabbitc/internal/lexer"
	"github.com/lhaig/wabbitc/internal/parser"
)

func formatSource(t *testing.T, source string) string {
	t.Helper()
	tokens, lexDiags := lexer.Tokenize("<test>", source)
	require.False(t, lexDiags.HasErrors())
	p := parser.New("<test>", tokens)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors(), "parse errors: %s", p.Diagnostics().Format())
	return Format(prog)
}

func TestFormat_VarDecl(t *testing.T) {
	got := formatSource(t, `var x int=10;`)
	assert.Contains(t, got, "var x int = 10;")
}

func TestFormat_ConstDecl(t *testing.T) {
	got := formatSource(t, `const pi float=3.14;`)
	assert.Contains(t, got, "const pi float = 3.14;")
}

func TestFormat_VarDeclNoType(t *testing.T) {
	got := formatSource(t, `var x=10;`)
	assert.Contains(t, got, "var x = 10;")
}

func TestFormat_FuncDecl(t *testing.T) {
	got := formatSource(t, `
func add(x int, y int) int {
return x+y;
}`)
	assert.Contains(t, got, "func add(x int, y int) int {")
	assert.Contains(t, got, "    return x + y;")
	assert.True(t, strings.Contains(got, "}\n"))
}

func TestFormat_ImportFunc(t *testing.T) {
	got := formatSource(t, `import func sin(x float) float;`)
	assert.Contains(t, got, "import func sin(x float) float;")
}

func TestFormat_IfElse(t *testing.T) {
	got := formatSource(t, `
func f() int {
if x<10{return 1;}else{return 2;}
}`)
	assert.Contains(t, got, "if x < 10 {")
	assert.Contains(t, got, "} else {")
}

func TestFormat_ElseIf(t *testing.T) {
	got := formatSource(t, `
func f() int {
if a{return 1;}else if b{return 2;}else{return 3;}
}`)
	assert.Contains(t, got, "} else if b {")
}

func TestFormat_While(t *testing.T) {
	got := formatSource(t, `
func f() int {
while i<10{i=i+1;}
return 0;
}`)
	assert.Contains(t, got, "while i < 10 {")
	assert.Contains(t, got, "i = i + 1;")
}

func TestFormat_OperatorPrecedenceParenthesization(t *testing.T) {
	got := formatSource(t, `
func f() int {
return (1+2)*3;
}`)
	assert.Contains(t, got, "(1 + 2) * 3")
}

func TestFormat_NoSpuriousParens(t *testing.T) {
	got := formatSource(t, `
func f() int {
return 1+2*3;
}`)
	assert.Contains(t, got, "1 + 2 * 3")
	assert.NotContains(t, got, "(1 + 2 * 3)")
}

func TestFormat_MemoryStoreAndLoad(t *testing.T) {
	got := formatSource(t, "func f() int {\n`0 = 65;\nreturn `0;\n}")
	assert.Contains(t, got, "`0 = 65;")
	assert.Contains(t, got, "return `0;")
}

func TestFormat_Print(t *testing.T) {
	got := formatSource(t, `
func f() int {
print 42;
return 0;
}`)
	assert.Contains(t, got, "print 42;")
}

func TestFormat_CastVsCall(t *testing.T) {
	got := formatSource(t, `
func f() float {
return float(x)+g(y);
}`)
	assert.Contains(t, got, "float(x) + g(y)")
}
