package linter

import (
	"unicode"

	"github.com/lhaig/wabbitc/internal/ast"
	"github.com/lhaig/wabbitc/internal/diagnostic"
)

// Linter performs style and best-practice checks on an AST program.
// It reports warnings (never errors) using the diagnostic system.
type Linter struct {
	file string
	prog *ast.Program
	diag *diagnostic.Diagnostics
}

// Lint runs all lint rules on the given program and returns diagnostics.
func Lint(file string, prog *ast.Program) *diagnostic.Diagnostics {
	l := &Linter{
		file: file,
		prog: prog,
		diag: diagnostic.New(),
	}
	l.lintFunctions()
	return l.diag
}

func (l *Linter) lintFunctions() {
	for _, stmt := range l.prog.Statements {
		fn, ok := stmt.(*ast.FuncDecl)
		if !ok || fn.Imported {
			continue
		}
		l.checkFunctionNaming(fn.Name, fn.Line, fn.Column)
		if len(fn.Body) == 0 {
			l.diag.Warningf(l.file, fn.Line, fn.Column, "function %q has an empty body", fn.Name)
			continue
		}
		used := l.collectUsedNames(fn.Body)
		l.checkUnusedParams(fn.Name, fn.Params, used)
		l.checkUnusedVariables(fn.Body, used)
	}
}

// --- Lint rules ---

func (l *Linter) checkFunctionNaming(name string, line, col int) {
	if !isSnakeCase(name) {
		l.diag.Warningf(l.file, line, col, "function %q should use snake_case naming", name)
	}
}

func (l *Linter) checkUnusedParams(fnName string, params []ast.FuncParam, used map[string]bool) {
	for _, p := range params {
		if !used[p.Name] {
			l.diag.Warningf(l.file, 0, 0, "parameter %q in %q is never used", p.Name, fnName)
		}
	}
}

// checkUnusedVariables warns about local var/const declarations whose
// name is never read anywhere in the enclosing function, including
// nested if/while blocks.
func (l *Linter) checkUnusedVariables(stmts []ast.Statement, used map[string]bool) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			if !used[s.Name] {
				l.diag.Warningf(l.file, s.Line, s.Column, "variable %q is declared but never used", s.Name)
			}
		case *ast.If:
			l.checkUnusedVariables(s.Then, used)
			l.checkUnusedVariables(s.Else, used)
		case *ast.While:
			l.checkUnusedVariables(s.Body, used)
		}
	}
}

// --- Name collection ---

// collectUsedNames walks every expression reachable from stmts and
// collects identifier names read by it. A var's own declaration is
// not a read; its initializer is.
func (l *Linter) collectUsedNames(stmts []ast.Statement) map[string]bool {
	used := make(map[string]bool)
	l.collectUsedNamesFromStmts(stmts, used)
	return used
}

func (l *Linter) collectUsedNamesFromStmts(stmts []ast.Statement, used map[string]bool) {
	for _, stmt := range stmts {
		l.collectUsedNamesFromStmt(stmt, used)
	}
}

func (l *Linter) collectUsedNamesFromStmt(stmt ast.Statement, used map[string]bool) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		l.collectUsedNamesFromExpr(s.Init, used)
	case *ast.Assign:
		if s.Target.IsMemory {
			l.collectUsedNamesFromExpr(s.Target.MemAddr, used)
		}
		l.collectUsedNamesFromExpr(s.Value, used)
	case *ast.If:
		l.collectUsedNamesFromExpr(s.Cond, used)
		l.collectUsedNamesFromStmts(s.Then, used)
		l.collectUsedNamesFromStmts(s.Else, used)
	case *ast.While:
		l.collectUsedNamesFromExpr(s.Cond, used)
		l.collectUsedNamesFromStmts(s.Body, used)
	case *ast.Return:
		l.collectUsedNamesFromExpr(s.Value, used)
	case *ast.Print:
		l.collectUsedNamesFromExpr(s.Value, used)
	case *ast.ExpressionStmt:
		l.collectUsedNamesFromExpr(s.Value, used)
	}
}

func (l *Linter) collectUsedNamesFromExpr(expr ast.Expression, used map[string]bool) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ast.NameExpr:
		used[e.Name] = true
	case *ast.Binary:
		l.collectUsedNamesFromExpr(e.Left, used)
		l.collectUsedNamesFromExpr(e.Right, used)
	case *ast.Unary:
		l.collectUsedNamesFromExpr(e.Operand, used)
	case *ast.Cast:
		l.collectUsedNamesFromExpr(e.Value, used)
	case *ast.Call:
		for _, arg := range e.Args {
			l.collectUsedNamesFromExpr(arg, used)
		}
	}
}

// --- Naming convention helpers ---

// isSnakeCase reports whether name uses only lowercase letters,
// digits, and underscores.
func isSnakeCase(name string) bool {
	if len(name) == 0 {
		return false
	}
	for _, r := range name {
		if !unicode.IsLower(r) && r != '_' && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
