package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/wabbitc/internal/ast"
)

func intLit(v int32) *ast.IntegerLit   { return &ast.IntegerLit{Value: v} }
func floatLit(v float64) *ast.FloatLit { return &ast.FloatLit{Value: v} }
func boolLit(v bool) *ast.BoolLit      { return &ast.BoolLit{Value: v} }
func name(n string) *ast.NameExpr      { return &ast.NameExpr{Name: n} }

func TestCheck_GlobalVarInferredType(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.VarDecl{Kind: ast.DeclVar, Name: "x", Init: intLit(5)},
	}}
	result := Check("t.wb", prog)
	require.False(t, result.Diagnostics.HasErrors())
	assert.True(t, TypeInt.Equal(result.Symbols.Vars["x"]))
}

func TestCheck_ConstRequiresInitializer(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.VarDecl{Kind: ast.DeclConst, Name: "x"},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_AssignToConstIsError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.VarDecl{Kind: ast.DeclConst, Name: "x", Init: intLit(5)},
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.Assign{Target: ast.Location{Name: "x"}, Value: intLit(6)},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_MismatchedBinaryOperandsIsError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.ExpressionStmt{Value: &ast.Binary{Op: ast.OpAdd, Left: intLit(1), Right: floatLit(2.0)}},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_RelationalYieldsBool(t *testing.T) {
	bin := &ast.Binary{Op: ast.OpLt, Left: intLit(1), Right: intLit(2)}
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.ExpressionStmt{Value: bin},
		}},
	}}
	result := Check("t.wb", prog)
	require.False(t, result.Diagnostics.HasErrors())
	assert.True(t, TypeBool.Equal(bin.Type()))
}

func TestCheck_LogicalRequiresBoolOperands(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.ExpressionStmt{Value: &ast.Binary{Op: ast.OpAnd, Left: intLit(1), Right: boolLit(true)}},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_BreakOutsideLoopIsError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{&ast.Break{}}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_BreakInsideLoopIsOK(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.While{Cond: boolLit(true), Body: []ast.Statement{&ast.Break{}}},
		}},
	}}
	result := Check("t.wb", prog)
	assert.False(t, result.Diagnostics.HasErrors())
}

func TestCheck_ReturnTypeMismatch(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", ReturnType: TypeInt, Body: []ast.Statement{
			&ast.Return{Value: boolLit(true)},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_MissingReturnOnAllPaths(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", ReturnType: TypeInt, Body: []ast.Statement{
			&ast.If{Cond: boolLit(true), Then: []ast.Statement{&ast.Return{Value: intLit(1)}}},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_ReturnOnAllPathsViaIfElse(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", ReturnType: TypeInt, Body: []ast.Statement{
			&ast.If{
				Cond: boolLit(true),
				Then: []ast.Statement{&ast.Return{Value: intLit(1)}},
				Else: []ast.Statement{&ast.Return{Value: intLit(2)}},
			},
		}},
	}}
	result := Check("t.wb", prog)
	assert.False(t, result.Diagnostics.HasErrors())
}

func TestCheck_ForwardReferenceBetweenFunctions(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "even", Params: []ast.FuncParam{{Name: "n", Type: TypeInt}}, ReturnType: TypeBool, Body: []ast.Statement{
			&ast.Return{Value: &ast.Call{Func: "odd", Args: []ast.Expression{name("n")}}},
		}},
		&ast.FuncDecl{Name: "odd", Params: []ast.FuncParam{{Name: "n", Type: TypeInt}}, ReturnType: TypeBool, Body: []ast.Statement{
			&ast.Return{Value: boolLit(false)},
		}},
	}}
	result := Check("t.wb", prog)
	assert.False(t, result.Diagnostics.HasErrors())
}

func TestCheck_BacktickLoadInfersTypeFromVarDecl(t *testing.T) {
	load := &ast.Unary{Op: ast.OpPeek, Operand: intLit(0)}
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.VarDecl{Kind: ast.DeclVar, Name: "x", Type: TypeFloat, Init: load},
		}},
	}}
	result := Check("t.wb", prog)
	require.False(t, result.Diagnostics.HasErrors())
	assert.True(t, TypeFloat.Equal(load.Type()))
}

func TestCheck_BacktickLoadWithNoContextIsError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.ExpressionStmt{Value: &ast.Unary{Op: ast.OpPeek, Operand: intLit(0)}},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_CastIntFloat(t *testing.T) {
	cast := &ast.Cast{Target: ast.Float, Value: intLit(1)}
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.ExpressionStmt{Value: cast},
		}},
	}}
	result := Check("t.wb", prog)
	require.False(t, result.Diagnostics.HasErrors())
	assert.True(t, TypeFloat.Equal(cast.Type()))
}

func TestCheck_CastBoolToIntIsError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.ExpressionStmt{Value: &ast.Cast{Target: ast.Int, Value: boolLit(true)}},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_IdentityCastToBoolIsError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.ExpressionStmt{Value: &ast.Cast{Target: ast.Bool, Value: boolLit(true)}},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_CastIntToCharIsError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.ExpressionStmt{Value: &ast.Cast{Target: ast.Char, Value: intLit(65)}},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_BacktickLoadOnLeftInfersTypeFromRight(t *testing.T) {
	load := &ast.Unary{Op: ast.OpPeek, Operand: intLit(0)}
	bin := &ast.Binary{Op: ast.OpAdd, Left: load, Right: intLit(1)}
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.ExpressionStmt{Value: bin},
		}},
	}}
	result := Check("t.wb", prog)
	require.False(t, result.Diagnostics.HasErrors(), result.Diagnostics.Format())
	assert.True(t, TypeInt.Equal(load.Type()))
}

func TestCheck_CallArityMismatch(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Params: []ast.FuncParam{{Name: "a", Type: TypeInt}}, ReturnType: TypeInt, Body: []ast.Statement{
			&ast.Return{Value: name("a")},
		}},
		&ast.FuncDecl{Name: "g", ReturnType: TypeInt, Body: []ast.Statement{
			&ast.Return{Value: &ast.Call{Func: "f", Args: []ast.Expression{intLit(1), intLit(2)}}},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}

func TestCheck_SynthesizesMainWhenAbsent(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.VarDecl{Kind: ast.DeclVar, Name: "x", Init: intLit(1)},
	}}
	result := Check("t.wb", prog)
	require.False(t, result.Diagnostics.HasErrors())
	_, ok := result.Symbols.Funcs["main"]
	require.True(t, ok)
	last := prog.Statements[len(prog.Statements)-1].(*ast.FuncDecl)
	assert.Equal(t, "main", last.Name)
}

func TestCheck_DoesNotSynthesizeMainWhenPresent(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "main", ReturnType: TypeInt, Body: []ast.Statement{
			&ast.Return{Value: intLit(0)},
		}},
	}}
	result := Check("t.wb", prog)
	require.False(t, result.Diagnostics.HasErrors())
	count := 0
	for _, s := range prog.Statements {
		if fd, ok := s.(*ast.FuncDecl); ok && fd.Name == "main" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCheck_ShadowingAcrossBlockScopesIsAllowed(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.VarDecl{Kind: ast.DeclVar, Name: "x", Init: intLit(1)},
			&ast.If{
				Cond: boolLit(true),
				Then: []ast.Statement{
					&ast.VarDecl{Kind: ast.DeclVar, Name: "x", Init: floatLit(1.5)},
				},
			},
		}},
	}}
	result := Check("t.wb", prog)
	assert.False(t, result.Diagnostics.HasErrors())
}

func TestCheck_RedeclarationInSameScopeIsError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.FuncDecl{Name: "f", Body: []ast.Statement{
			&ast.VarDecl{Kind: ast.DeclVar, Name: "x", Init: intLit(1)},
			&ast.VarDecl{Kind: ast.DeclVar, Name: "x", Init: intLit(2)},
		}},
	}}
	result := Check("t.wb", prog)
	assert.True(t, result.Diagnostics.HasErrors())
}
