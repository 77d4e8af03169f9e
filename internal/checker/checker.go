package checker

import (
	"github.com/lhaig/wabbitc/internal/ast"
	"github.com/lhaig/wabbitc/internal/diagnostic"
)

// SymbolTable is the global-scope name/type and name/signature maps a
// back-end needs alongside the lowered IR, per the back-end
// collaborator contract.
type SymbolTable struct {
	Vars  map[string]*Type
	Funcs map[string]*Signature
}

// CheckResult is the checker's output: the diagnostics it produced and
// the exported global symbol table. The input *ast.Program is
// annotated in place -- every Expression's resolved type is set by
// the time Check returns.
type CheckResult struct {
	Diagnostics *diagnostic.Diagnostics
	Symbols     *SymbolTable
}

// checker holds the mutable state of one Check call. It is not
// reentrant and not meant to be reused across programs.
type checker struct {
	file   string
	diag   *diagnostic.Diagnostics
	global *Scope
	scope  *Scope

	loopDepth  int
	funcReturn *Type // nil while checking global initializers
	funcName   string
}

// Check runs the two-pass semantic analysis described for the
// compiler core: pass one registers every top-level declaration so
// functions and globals may reference each other regardless of
// source order, pass two checks bodies and initializers in source
// order. If no function named "main" exists after checking, an empty
// one returning 0 is appended to prog.
func Check(file string, prog *ast.Program) *CheckResult {
	c := &checker{
		file:   file,
		diag:   diagnostic.New(),
		global: NewScope(nil),
	}
	c.scope = c.global

	c.registerTopLevel(prog)
	c.checkTopLevel(prog)
	c.synthesizeMain(prog)

	return &CheckResult{
		Diagnostics: c.diag,
		Symbols:     c.exportSymbols(),
	}
}

func (c *checker) exportSymbols() *SymbolTable {
	st := &SymbolTable{Vars: map[string]*Type{}, Funcs: map[string]*Signature{}}
	for name, sym := range c.global.symbols {
		switch sym.Kind {
		case SymVar, SymConst:
			st.Vars[name] = sym.Type
		case SymFunc, SymImportedFunc:
			st.Funcs[name] = sym.Sig
		}
	}
	return st
}

// ---- Pass 1: registration ----

func (c *checker) registerTopLevel(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.FuncDecl:
			c.registerFunc(s)
		case *ast.VarDecl:
			c.registerGlobalVar(s)
		default:
			l, cl := stmt.Pos()
			c.diag.Errorf(c.file, l, cl, "only var, const, and func declarations are allowed at the top level")
		}
	}
}

func (c *checker) registerFunc(f *ast.FuncDecl) {
	if f.Imported && f.Body != nil {
		c.diag.Errorf(c.file, f.Line, f.Column, "imported function %q must not have a body", f.Name)
	}
	if !f.Imported && f.Body == nil {
		c.diag.Errorf(c.file, f.Line, f.Column, "function %q must have a body", f.Name)
	}

	sig := &Signature{ReturnType: f.ReturnType, Imported: f.Imported}
	for _, p := range f.Params {
		sig.Params = append(sig.Params, p.Type)
	}

	kind := SymFunc
	if f.Imported {
		kind = SymImportedFunc
	}
	if err := c.global.Define(f.Name, &Symbol{Name: f.Name, Kind: kind, Sig: sig}); err != nil {
		c.diag.Errorf(c.file, f.Line, f.Column, "%s", err)
	}
}

func (c *checker) registerGlobalVar(v *ast.VarDecl) {
	kind := SymVar
	if v.Kind == ast.DeclConst {
		kind = SymConst
	}
	if v.Kind == ast.DeclConst && v.Init == nil {
		c.diag.Errorf(c.file, v.Line, v.Column, "const %q requires an initializer", v.Name)
	}
	// Declared type is known now; an inferred type (Type == nil) is
	// filled in during pass two once the initializer is checked.
	if err := c.global.Define(v.Name, &Symbol{Name: v.Name, Type: v.Type, Mutable: kind == SymVar, Kind: kind}); err != nil {
		c.diag.Errorf(c.file, v.Line, v.Column, "%s", err)
	}
}

// ---- Pass 2: checking ----

func (c *checker) checkTopLevel(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			c.checkGlobalVarInit(s)
		case *ast.FuncDecl:
			c.checkFunc(s)
		}
	}
}

func (c *checker) checkGlobalVarInit(v *ast.VarDecl) {
	sym := c.global.ResolveLocal(v.Name)
	if v.Init == nil {
		return
	}
	initType := c.checkExprNode(v.Init, v.Type)
	if v.Type == nil {
		v.Type = initType
		if sym != nil {
			sym.Type = initType
		}
		return
	}
	if !typesMatch(v.Type, initType) {
		c.diag.Errorf(c.file, v.Line, v.Column, "cannot initialize %q of type %s with value of type %s", v.Name, v.Type, initType)
	}
}

func (c *checker) checkFunc(f *ast.FuncDecl) {
	if f.Imported {
		return
	}
	prevScope, prevReturn, prevName := c.scope, c.funcReturn, c.funcName
	c.scope = NewScope(c.global)
	c.funcReturn = f.ReturnType
	c.funcName = f.Name

	for _, p := range f.Params {
		if err := c.scope.Define(p.Name, &Symbol{Name: p.Name, Type: p.Type, Mutable: true, Kind: SymParam}); err != nil {
			c.diag.Errorf(c.file, f.Line, f.Column, "%s", err)
		}
	}

	c.checkBlock(f.Body)

	if f.ReturnType != nil && !allPathsReturn(f.Body) {
		c.diag.Errorf(c.file, f.Line, f.Column, "function %q does not return a value on all paths", f.Name)
	}

	c.scope, c.funcReturn, c.funcName = prevScope, prevReturn, prevName
}

func (c *checker) checkBlock(stmts []ast.Statement) {
	for _, s := range stmts {
		c.checkStmt(s)
	}
}

func (c *checker) checkStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		c.checkLocalVar(s)
	case *ast.Assign:
		c.checkAssign(s)
	case *ast.If:
		c.checkIf(s)
	case *ast.While:
		c.checkWhile(s)
	case *ast.Break:
		if c.loopDepth == 0 {
			c.diag.Errorf(c.file, s.Line, s.Column, "break outside a loop")
		}
	case *ast.Continue:
		if c.loopDepth == 0 {
			c.diag.Errorf(c.file, s.Line, s.Column, "continue outside a loop")
		}
	case *ast.Return:
		c.checkReturn(s)
	case *ast.Print:
		c.checkExpr(s.Value)
	case *ast.ExpressionStmt:
		c.checkExpr(s.Value)
	case *ast.FuncDecl:
		c.diag.Errorf(c.file, s.Line, s.Column, "nested function definitions are not allowed")
	default:
		// nothing to check
	}
}

func (c *checker) checkLocalVar(v *ast.VarDecl) {
	if v.Kind == ast.DeclConst && v.Init == nil {
		c.diag.Errorf(c.file, v.Line, v.Column, "const %q requires an initializer", v.Name)
	}
	var initType *Type
	if v.Init != nil {
		initType = c.checkExprNode(v.Init, v.Type)
	}
	if v.Type == nil {
		v.Type = initType
	} else if v.Init != nil && !typesMatch(v.Type, initType) {
		c.diag.Errorf(c.file, v.Line, v.Column, "cannot initialize %q of type %s with value of type %s", v.Name, v.Type, initType)
	}

	kind := SymVar
	if v.Kind == ast.DeclConst {
		kind = SymConst
	}
	if err := c.scope.Define(v.Name, &Symbol{Name: v.Name, Type: v.Type, Mutable: kind == SymVar, Kind: kind}); err != nil {
		c.diag.Errorf(c.file, v.Line, v.Column, "%s", err)
	}
}

func (c *checker) checkAssign(a *ast.Assign) {
	var targetType *Type
	if a.Target.IsMemory {
		addrType := c.checkExprNode(a.Target.MemAddr, nil)
		if addrType != TypeError && !addrType.Equal(TypeInt) {
			c.diag.Errorf(c.file, a.Line, a.Column, "memory address must be int, got %s", addrType)
		}
	} else {
		sym := c.scope.Resolve(a.Target.Name)
		if sym == nil {
			c.diag.Errorf(c.file, a.Line, a.Column, "undeclared name %q", a.Target.Name)
		} else {
			if !sym.Mutable {
				c.diag.Errorf(c.file, a.Line, a.Column, "cannot assign to constant %q", a.Target.Name)
			}
			targetType = sym.Type
		}
	}

	valueType := c.checkExprNode(a.Value, targetType)
	if targetType != nil && valueType != TypeError && !typesMatch(targetType, valueType) {
		c.diag.Errorf(c.file, a.Line, a.Column, "cannot assign value of type %s to target of type %s", valueType, targetType)
	}
}

func (c *checker) checkIf(s *ast.If) {
	condType := c.checkExpr(s.Cond)
	if condType != TypeError && !condType.Equal(TypeBool) {
		c.diag.Errorf(c.file, s.Line, s.Column, "if condition must be bool, got %s", condType)
	}
	prevScope := c.scope
	c.scope = NewScope(prevScope)
	c.checkBlock(s.Then)
	c.scope = prevScope

	if s.Else != nil {
		c.scope = NewScope(prevScope)
		c.checkBlock(s.Else)
		c.scope = prevScope
	}
}

func (c *checker) checkWhile(s *ast.While) {
	condType := c.checkExpr(s.Cond)
	if condType != TypeError && !condType.Equal(TypeBool) {
		c.diag.Errorf(c.file, s.Line, s.Column, "while condition must be bool, got %s", condType)
	}
	prevScope := c.scope
	c.scope = NewScope(prevScope)
	c.loopDepth++
	c.checkBlock(s.Body)
	c.loopDepth--
	c.scope = prevScope
}

func (c *checker) checkReturn(s *ast.Return) {
	if s.Value == nil {
		if c.funcReturn != nil {
			c.diag.Errorf(c.file, s.Line, s.Column, "function %q must return a value of type %s", c.funcName, c.funcReturn)
		}
		return
	}
	t := c.checkExprNode(s.Value, c.funcReturn)
	if c.funcReturn == nil {
		c.diag.Errorf(c.file, s.Line, s.Column, "function %q does not return a value", c.funcName)
		return
	}
	if t != TypeError && !typesMatch(c.funcReturn, t) {
		c.diag.Errorf(c.file, s.Line, s.Column, "returned value has type %s, expected %s", t, c.funcReturn)
	}
}

// ---- Expressions ----

// checkExpr checks an expression with no expected type from context.
func (c *checker) checkExpr(e ast.Expression) *Type {
	return c.checkExprNode(e, nil)
}

// checkExprNode checks an expression, threading an expected type down
// for the sole construct that needs it: a backtick memory load has no
// type of its own, so its type comes from the surrounding context --
// an assignment target, a call parameter, the other operand of a
// binary expression, or a var declaration's declared type.
func (c *checker) checkExprNode(e ast.Expression, expect *Type) *Type {
	if e == nil {
		return TypeError
	}
	var t *Type
	switch n := e.(type) {
	case *ast.IntegerLit:
		t = TypeInt
	case *ast.FloatLit:
		t = TypeFloat
	case *ast.CharLit:
		t = TypeChar
	case *ast.BoolLit:
		t = TypeBool
	case *ast.NameExpr:
		t = c.checkName(n)
	case *ast.Binary:
		t = c.checkBinary(n)
	case *ast.Unary:
		t = c.checkUnary(n, expect)
	case *ast.Cast:
		t = c.checkCast(n)
	case *ast.Call:
		t = c.checkCall(n)
	default:
		t = TypeError
	}
	e.SetType(t)
	return t
}

func (c *checker) checkName(n *ast.NameExpr) *Type {
	sym := c.scope.Resolve(n.Name)
	if sym == nil {
		c.diag.Errorf(c.file, n.Line, n.Column, "undeclared name %q", n.Name)
		return TypeError
	}
	if sym.Kind == SymFunc || sym.Kind == SymImportedFunc {
		c.diag.Errorf(c.file, n.Line, n.Column, "%q is a function, not a value", n.Name)
		return TypeError
	}
	return sym.Type
}

func (c *checker) checkBinary(n *ast.Binary) *Type {
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		lt := c.checkExpr(n.Left)
		rt := c.checkExpr(n.Right)
		if lt != TypeError && !lt.Equal(TypeBool) {
			c.diag.Errorf(c.file, n.Line, n.Column, "operand of %s must be bool, got %s", n.Op, lt)
		}
		if rt != TypeError && !rt.Equal(TypeBool) {
			c.diag.Errorf(c.file, n.Line, n.Column, "operand of %s must be bool, got %s", n.Op, rt)
		}
		return TypeBool
	}

	// One side may be a context-free backtick load (a peek with no
	// expected type of its own); check the other operand first and
	// thread its type down as the expected type for the load.
	var lt, rt *Type
	if isContextFreeLoad(n.Left) && !isContextFreeLoad(n.Right) {
		rt = c.checkExprNode(n.Right, nil)
		lt = c.checkExprNode(n.Left, pick(rt))
	} else {
		lt = c.checkExprNode(n.Left, nil)
		rt = c.checkExprNode(n.Right, pick(lt))
	}
	if lt == TypeError || rt == TypeError {
		return TypeError
	}

	if !lt.Equal(rt) {
		c.diag.Errorf(c.file, n.Line, n.Column, "mismatched operand types %s and %s for %s", lt, rt, n.Op)
		return TypeError
	}

	if n.Op.IsRelational() {
		return TypeBool
	}
	switch lt.Kind {
	case ast.Int, ast.Float:
		return lt
	default:
		c.diag.Errorf(c.file, n.Line, n.Column, "operator %s is not defined for %s", n.Op, lt)
		return TypeError
	}
}

func pick(t *Type) *Type {
	if t == TypeError {
		return nil
	}
	return t
}

// isContextFreeLoad reports whether e is a backtick memory load with
// no type of its own -- the checker can only give it a type by
// borrowing one from context (the other operand of a binary
// expression, an assignment target, and so on).
func isContextFreeLoad(e ast.Expression) bool {
	u, ok := e.(*ast.Unary)
	return ok && u.Op == ast.OpPeek
}

func (c *checker) checkUnary(n *ast.Unary, expect *Type) *Type {
	switch n.Op {
	case ast.OpNeg:
		t := c.checkExpr(n.Operand)
		if t != TypeError && t.Kind != ast.Int && t.Kind != ast.Float {
			c.diag.Errorf(c.file, n.Line, n.Column, "unary - requires int or float, got %s", t)
			return TypeError
		}
		return t
	case ast.OpNot:
		t := c.checkExpr(n.Operand)
		if t != TypeError && !t.Equal(TypeBool) {
			c.diag.Errorf(c.file, n.Line, n.Column, "unary ! requires bool, got %s", t)
			return TypeError
		}
		return TypeBool
	case ast.OpPeek:
		addrType := c.checkExpr(n.Operand)
		if addrType != TypeError && !addrType.Equal(TypeInt) {
			c.diag.Errorf(c.file, n.Line, n.Column, "memory address must be int, got %s", addrType)
		}
		if expect == nil {
			c.diag.Errorf(c.file, n.Line, n.Column, "cannot infer the type of a memory load here")
			return TypeError
		}
		return expect
	case ast.OpGrow:
		t := c.checkExpr(n.Operand)
		if t != TypeError && !t.Equal(TypeInt) {
			c.diag.Errorf(c.file, n.Line, n.Column, "memory grow amount must be int, got %s", t)
		}
		return TypeInt
	default:
		return TypeError
	}
}

// checkCast allows only numeric-to-numeric conversions: int(e) and
// float(e) with e itself int or float. char(...) and bool(...) are
// never valid cast targets, and int/float never cast to or from
// char/bool, regardless of identity.
func (c *checker) checkCast(n *ast.Cast) *Type {
	from := c.checkExpr(n.Value)
	if from == TypeError {
		return TypeError
	}
	target := kindToType(n.Target)
	switch {
	case n.Target != ast.Int && n.Target != ast.Float:
		c.diag.Errorf(c.file, n.Line, n.Column, "cast target must be int or float, got %s", target)
		return TypeError
	case from.Kind != ast.Int && from.Kind != ast.Float:
		c.diag.Errorf(c.file, n.Line, n.Column, "cannot cast %s to %s: operand must be numeric", from, target)
		return TypeError
	default:
		return target
	}
}

func (c *checker) checkCall(n *ast.Call) *Type {
	sym := c.scope.Resolve(n.Func)
	if sym == nil {
		c.diag.Errorf(c.file, n.Line, n.Column, "undeclared function %q", n.Func)
		for _, a := range n.Args {
			c.checkExpr(a)
		}
		return TypeError
	}
	if sym.Kind != SymFunc && sym.Kind != SymImportedFunc {
		c.diag.Errorf(c.file, n.Line, n.Column, "%q is not a function", n.Func)
		return TypeError
	}
	sig := sym.Sig
	if len(n.Args) != len(sig.Params) {
		c.diag.Errorf(c.file, n.Line, n.Column, "%q expects %d argument(s), got %d", n.Func, len(sig.Params), len(n.Args))
	}
	for i, a := range n.Args {
		var want *Type
		if i < len(sig.Params) {
			want = sig.Params[i]
		}
		at := c.checkExprNode(a, want)
		if want != nil && at != TypeError && !typesMatch(want, at) {
			al, ac := a.Pos()
			c.diag.Errorf(c.file, al, ac, "argument %d to %q has type %s, expected %s", i+1, n.Func, at, want)
		}
	}
	if sig.ReturnType == nil {
		return TypeError
	}
	return sig.ReturnType
}

func typesMatch(want, got *Type) bool {
	if want == nil || got == nil {
		return true
	}
	return want.Equal(got)
}

func kindToType(k ast.Kind) *Type {
	switch k {
	case ast.Int:
		return TypeInt
	case ast.Float:
		return TypeFloat
	case ast.Char:
		return TypeChar
	case ast.Bool:
		return TypeBool
	default:
		return TypeError
	}
}

// allPathsReturn reports whether every control path through stmts
// ends in a return statement. A while loop never guarantees this,
// since its body may run zero times.
func allPathsReturn(stmts []ast.Statement) bool {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.Return:
			return true
		case *ast.If:
			if n.Else != nil && allPathsReturn(n.Then) && allPathsReturn(n.Else) {
				return true
			}
		}
	}
	return false
}

func (c *checker) synthesizeMain(prog *ast.Program) {
	if sym := c.global.ResolveLocal("main"); sym != nil && sym.Kind == SymFunc {
		return
	}
	zero := &ast.IntegerLit{Value: 0}
	zero.SetType(TypeInt)
	fn := &ast.FuncDecl{
		Name:       "main",
		ReturnType: TypeInt,
		Body:       []ast.Statement{&ast.Return{Value: zero}},
	}
	prog.Statements = append(prog.Statements, fn)
	_ = c.global.Define("main", &Symbol{Name: "main", Kind: SymFunc, Sig: &Signature{ReturnType: TypeInt}})
}
