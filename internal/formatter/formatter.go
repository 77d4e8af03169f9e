package formatter

import (
	"fmt"
	"strings"

	"github.com/lhaig/wabbitc/internal/ast"
)

// Format takes an AST Program and returns canonical Wabbit source code.
func Format(prog *ast.Program) string {
	f := &formatter{}
	f.formatProgram(prog)
	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

// --- helpers ---

func (f *formatter) emit(s string) {
	f.sb.WriteString(s)
}

func (f *formatter) emitLine(s string) {
	if s == "" {
		f.sb.WriteString("\n")
	} else {
		f.sb.WriteString(f.indentStr())
		f.sb.WriteString(s)
		f.sb.WriteString("\n")
	}
}

func (f *formatter) emitLinef(format string, args ...any) {
	f.sb.WriteString(f.indentStr())
	f.sb.WriteString(fmt.Sprintf(format, args...))
	f.sb.WriteString("\n")
}

func (f *formatter) incIndent() { f.indent++ }
func (f *formatter) decIndent() { f.indent-- }

func (f *formatter) indentStr() string {
	return strings.Repeat("    ", f.indent)
}

func (f *formatter) blankLine() {
	f.sb.WriteString("\n")
}

// --- program-level ---

func (f *formatter) formatProgram(prog *ast.Program) {
	for i, stmt := range prog.Statements {
		if i > 0 {
			f.blankLine()
		}
		f.formatTopLevel(stmt)
	}
	f.blankLine()
}

func (f *formatter) formatTopLevel(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.VarDecl:
		f.formatVarDecl(stmt)
	case *ast.FuncDecl:
		f.formatFuncDecl(stmt)
	default:
		f.formatStmt(s)
	}
}

// --- declarations ---

func (f *formatter) formatVarDecl(v *ast.VarDecl) {
	keyword := "var"
	if v.Kind == ast.DeclConst {
		keyword = "const"
	}
	f.emit(f.indentStr())
	f.emit(keyword + " " + v.Name)
	if v.Type != nil {
		f.emit(" " + v.Type.String())
	}
	if v.Init != nil {
		f.emit(" = " + f.formatExpr(v.Init))
	}
	f.emit(";\n")
}

func (f *formatter) formatFuncDecl(fn *ast.FuncDecl) {
	f.emit(f.indentStr())
	if fn.Imported {
		f.emit("import ")
	}
	f.emit("func " + fn.Name + "(")
	for i, p := range fn.Params {
		if i > 0 {
			f.emit(", ")
		}
		f.emit(p.Name + " " + p.Type.String())
	}
	f.emit(")")
	if fn.ReturnType != nil {
		f.emit(" " + fn.ReturnType.String())
	}

	if fn.Imported {
		f.emit(";\n")
		return
	}

	f.emit(" {\n")
	f.incIndent()
	f.formatBlock(fn.Body)
	f.decIndent()
	f.emitLine("}")
}

// --- statements ---

func (f *formatter) formatBlock(stmts []ast.Statement) {
	for _, stmt := range stmts {
		f.formatStmt(stmt)
	}
}

func (f *formatter) formatStmt(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.VarDecl:
		f.formatVarDecl(stmt)

	case *ast.Assign:
		f.emitLinef("%s = %s;", f.formatLocation(stmt.Target), f.formatExpr(stmt.Value))

	case *ast.If:
		f.formatIf(stmt, false)

	case *ast.While:
		f.emitLinef("while %s {", f.formatExpr(stmt.Cond))
		f.incIndent()
		f.formatBlock(stmt.Body)
		f.decIndent()
		f.emitLine("}")

	case *ast.Break:
		f.emitLine("break;")

	case *ast.Continue:
		f.emitLine("continue;")

	case *ast.Return:
		if stmt.Value != nil {
			f.emitLinef("return %s;", f.formatExpr(stmt.Value))
		} else {
			f.emitLine("return;")
		}

	case *ast.Print:
		f.emitLinef("print %s;", f.formatExpr(stmt.Value))

	case *ast.ExpressionStmt:
		f.emitLinef("%s;", f.formatExpr(stmt.Value))

	case *ast.FuncDecl:
		f.formatFuncDecl(stmt)
	}
}

func (f *formatter) formatIf(stmt *ast.If, isElseIf bool) {
	if isElseIf {
		f.emit(fmt.Sprintf(" else if %s {\n", f.formatExpr(stmt.Cond)))
	} else {
		f.emitLinef("if %s {", f.formatExpr(stmt.Cond))
	}
	f.incIndent()
	f.formatBlock(stmt.Then)
	f.decIndent()

	if stmt.Else == nil {
		f.emitLine("}")
		return
	}
	if len(stmt.Else) == 1 {
		if elseIf, ok := stmt.Else[0].(*ast.If); ok {
			f.emit(f.indentStr() + "}")
			f.formatIf(elseIf, true)
			return
		}
	}
	f.emitLine("} else {")
	f.incIndent()
	f.formatBlock(stmt.Else)
	f.decIndent()
	f.emitLine("}")
}

func (f *formatter) formatLocation(loc ast.Location) string {
	if loc.IsMemory {
		return "`" + f.formatExpr(loc.MemAddr)
	}
	return loc.Name
}

// --- expressions ---

func (f *formatter) formatExpr(e ast.Expression) string {
	return f.formatExprPrec(e, 0)
}

// formatExprPrec formats an expression, parenthesizing only when the
// child's precedence is lower than what the parent requires.
func (f *formatter) formatExprPrec(e ast.Expression, parentPrec int) string {
	switch expr := e.(type) {
	case *ast.Binary:
		prec := binaryPrecedence(expr.Op)
		left := f.formatExprPrec(expr.Left, prec)
		right := f.formatExprPrec(expr.Right, prec+1)
		result := fmt.Sprintf("%s %s %s", left, expr.Op, right)
		if prec < parentPrec {
			return "(" + result + ")"
		}
		return result

	case *ast.Unary:
		operand := f.formatExprPrec(expr.Operand, 10)
		switch expr.Op {
		case ast.OpNeg:
			return "-" + operand
		case ast.OpNot:
			return "!" + operand
		case ast.OpPeek:
			return "`" + operand
		case ast.OpGrow:
			return "^" + operand
		default:
			return operand
		}

	case *ast.Cast:
		return fmt.Sprintf("%s(%s)", expr.Target, f.formatExpr(expr.Value))

	case *ast.Call:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = f.formatExpr(a)
		}
		return fmt.Sprintf("%s(%s)", expr.Func, strings.Join(args, ", "))

	case *ast.NameExpr:
		return expr.Name

	case *ast.IntegerLit:
		return fmt.Sprintf("%d", expr.Value)

	case *ast.FloatLit:
		return fmt.Sprintf("%g", expr.Value)

	case *ast.CharLit:
		return fmt.Sprintf("'%c'", expr.Value)

	case *ast.BoolLit:
		if expr.Value {
			return "true"
		}
		return "false"

	case *ast.ErrorExpr:
		return "<error>"

	default:
		return "<unknown>"
	}
}

// binaryPrecedence mirrors the parser's own precedence climb (|| < &&
// < relational < additive < multiplicative), so the formatter only
// parenthesizes where the parser would otherwise read it differently.
func binaryPrecedence(op ast.BinOp) int {
	switch op {
	case ast.OpOr:
		return 1
	case ast.OpAnd:
		return 2
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe:
		return 3
	case ast.OpAdd, ast.OpSub:
		return 4
	case ast.OpMul, ast.OpDiv:
		return 5
	default:
		return 0
	}
}
