package ir

import (
	"github.com/lhaig/wabbitc/internal/ast"
)

// lowerer walks a checked AST and emits a flat instruction list per
// function. The control-flow shape below -- evaluate condition, emit
// a structured marker, emit the body, emit the matching end marker --
// mirrors the block/loop/br_if/br pattern a structured-control-flow
// back end (WebAssembly chief among them) requires; the markers here
// are Wabbit's own IF/ELSE/ENDIF and LOOP/CBREAK/CONTINUE/ENDLOOP
// rather than raw opcodes, but the nesting discipline is the same.
type lowerer struct {
	globals   map[string]bool
	voidFuncs map[string]bool
	fn        *Function
}

// Lower transforms one checked program into a flat IR program. It
// always emits a synthetic __init function first, collecting every
// global var/const initializer in source order, followed by one
// function per FuncDecl in the program (imported functions are
// skipped -- they have no body to lower).
func Lower(prog *ast.Program) *Program {
	l := &lowerer{globals: map[string]bool{}, voidFuncs: map[string]bool{}}
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			l.globals[s.Name] = true
		case *ast.FuncDecl:
			if s.ReturnType == nil {
				l.voidFuncs[s.Name] = true
			}
		}
	}

	out := &Program{}

	initFn := &Function{Name: "__init"}
	l.fn = initFn
	for _, stmt := range prog.Statements {
		if v, ok := stmt.(*ast.VarDecl); ok {
			l.lowerGlobalDecl(v)
		}
	}
	initFn.Body = append(initFn.Body, instr(Return))
	out.Functions = append(out.Functions, initFn)

	for _, stmt := range prog.Statements {
		fd, ok := stmt.(*ast.FuncDecl)
		if !ok || fd.Imported {
			continue
		}
		out.Functions = append(out.Functions, l.lowerFunction(fd))
	}

	return out
}

func (l *lowerer) lowerGlobalDecl(v *ast.VarDecl) {
	l.fn.Body = append(l.fn.Body, instr(GlobalDecl, v.Name, typeTag(v.Type)))
	if v.Init != nil {
		l.lowerExpr(v.Init)
		l.fn.Body = append(l.fn.Body, instr(GlobalSet, v.Name))
	}
}

func (l *lowerer) lowerFunction(fd *ast.FuncDecl) *Function {
	prevFn := l.fn
	fn := &Function{Name: fd.Name}
	for _, p := range fd.Params {
		fn.Params = append(fn.Params, p.Name)
	}
	if fd.ReturnType != nil {
		fn.ReturnType = typeTag(fd.ReturnType)
	}
	l.fn = fn

	for _, s := range fd.Body {
		l.lowerStmt(s)
	}
	if !endsInReturn(fd.Body) {
		if fd.ReturnType != nil {
			fn.Body = append(fn.Body, zeroValue(fd.ReturnType))
		}
		fn.Body = append(fn.Body, instr(Return))
	}

	l.fn = prevFn
	return fn
}

// zeroValue is the constant a value-returning function returns when
// control falls off the end of its body.
func zeroValue(t *ast.Type) Instruction {
	switch t.Kind {
	case ast.Float:
		return instr(ConstF, float64(0))
	case ast.Char:
		return instr(ConstC, byte(0))
	case ast.Bool:
		return instr(ConstB, false)
	default:
		return instr(ConstI, int32(0))
	}
}

func endsInReturn(stmts []ast.Statement) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*ast.Return)
	return ok
}

func (l *lowerer) isGlobal(name string) bool {
	return l.globals[name]
}

func (l *lowerer) emit(i Instruction) {
	l.fn.Body = append(l.fn.Body, i)
}

func (l *lowerer) lowerStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		l.fn.Locals = append(l.fn.Locals, s.Name)
		l.emit(instr(LocalDecl, s.Name, typeTag(s.Type)))
		if s.Init != nil {
			l.lowerExpr(s.Init)
			l.emit(instr(LocalSet, s.Name))
		}
	case *ast.Assign:
		l.lowerAssign(s)
	case *ast.If:
		l.lowerIf(s)
	case *ast.While:
		l.lowerWhile(s)
	case *ast.Break:
		l.emit(instr(ConstB, true))
		l.emit(instr(CBreak))
	case *ast.Continue:
		l.emit(instr(Continue))
	case *ast.Return:
		if s.Value != nil {
			l.lowerExpr(s.Value)
		}
		l.emit(instr(Return))
	case *ast.Print:
		l.lowerExpr(s.Value)
		l.emit(instr(printTag(s.Value.Type())))
	case *ast.ExpressionStmt:
		l.lowerExpr(s.Value)
		l.emit(instr(Drop))
	}
}

func (l *lowerer) lowerAssign(a *ast.Assign) {
	if a.Target.IsMemory {
		l.lowerExpr(a.Target.MemAddr)
		l.lowerExpr(a.Value)
		l.emit(instr(pokeTag(a.Value.Type())))
		return
	}
	l.lowerExpr(a.Value)
	if l.isGlobal(a.Target.Name) {
		l.emit(instr(GlobalSet, a.Target.Name))
	} else {
		l.emit(instr(LocalSet, a.Target.Name))
	}
}

// lowerIf emits: cond; IF; then-body; [ELSE; else-body;] ENDIF.
func (l *lowerer) lowerIf(s *ast.If) {
	l.lowerExpr(s.Cond)
	l.emit(instr(If))
	for _, st := range s.Then {
		l.lowerStmt(st)
	}
	if s.Else != nil {
		l.emit(instr(Else))
		for _, st := range s.Else {
			l.lowerStmt(st)
		}
	}
	l.emit(instr(EndIf))
}

// lowerWhile emits: LOOP; cond; NOT; CBREAK; body; CONTINUE-target
// (implicit, the loop's own top); ENDLOOP. CBREAK guarded by NOT of
// the condition exits the loop as soon as the condition goes false,
// giving ordinary while-loop semantics out of the break-style marker.
func (l *lowerer) lowerWhile(s *ast.While) {
	l.emit(instr(Loop))
	l.lowerExpr(s.Cond)
	l.emit(instr(Not))
	l.emit(instr(CBreak))
	for _, st := range s.Body {
		l.lowerStmt(st)
	}
	l.emit(instr(EndLoop))
}

func (l *lowerer) lowerExpr(e ast.Expression) {
	switch n := e.(type) {
	case *ast.IntegerLit:
		l.emit(instr(ConstI, n.Value))
	case *ast.FloatLit:
		l.emit(instr(ConstF, n.Value))
	case *ast.CharLit:
		l.emit(instr(ConstC, n.Value))
	case *ast.BoolLit:
		l.emit(instr(ConstB, n.Value))
	case *ast.NameExpr:
		if l.isGlobal(n.Name) {
			l.emit(instr(GlobalGet, n.Name))
		} else {
			l.emit(instr(LocalGet, n.Name))
		}
	case *ast.Binary:
		l.lowerBinary(n)
	case *ast.Unary:
		l.lowerUnary(n)
	case *ast.Cast:
		l.lowerCast(n)
	case *ast.Call:
		for _, a := range n.Args {
			l.lowerExpr(a)
		}
		l.emit(instr(Call, n.Func, len(n.Args)))
	}
}

// lowerBinary lowers && and || with short-circuit evaluation via IF/
// ELSE rather than eager evaluation of both operands:
//
//	a && b  ->  a; IF; b; ELSE; CONSTB 0; ENDIF
//	a || b  ->  a; IF; CONSTB 1; ELSE; b; ENDIF
//
// Every other binary operator evaluates both operands and emits a
// single type-suffixed instruction.
func (l *lowerer) lowerBinary(n *ast.Binary) {
	switch n.Op {
	case ast.OpAnd:
		l.lowerExpr(n.Left)
		l.emit(instr(If))
		l.lowerExpr(n.Right)
		l.emit(instr(Else))
		l.emit(instr(ConstB, false))
		l.emit(instr(EndIf))
		return
	case ast.OpOr:
		l.lowerExpr(n.Left)
		l.emit(instr(If))
		l.emit(instr(ConstB, true))
		l.emit(instr(Else))
		l.lowerExpr(n.Right)
		l.emit(instr(EndIf))
		return
	}

	l.lowerExpr(n.Left)
	l.lowerExpr(n.Right)
	l.emit(instr(binOpTag(n.Op, n.Left.Type())))
}

func (l *lowerer) lowerUnary(n *ast.Unary) {
	switch n.Op {
	case ast.OpNeg:
		l.lowerExpr(n.Operand)
		if n.Type().Equal(ast.TypeFloat) {
			l.emit(instr(NegF))
		} else {
			l.emit(instr(NegI))
		}
	case ast.OpNot:
		l.lowerExpr(n.Operand)
		l.emit(instr(Not))
	case ast.OpPeek:
		l.lowerExpr(n.Operand)
		l.emit(instr(peekTag(n.Type())))
	case ast.OpGrow:
		l.lowerExpr(n.Operand)
		l.emit(instr(Grow))
	}
}

func (l *lowerer) lowerCast(n *ast.Cast) {
	l.lowerExpr(n.Value)
	from := n.Value.Type()
	switch {
	case from.Equal(ast.TypeInt) && n.Target == ast.Float:
		l.emit(instr(ItoF))
	case from.Equal(ast.TypeFloat) && n.Target == ast.Int:
		l.emit(instr(FtoI))
	}
	// int(i) and float(f) need no instruction -- already the target type
}

func typeTag(t *ast.Type) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case ast.Int:
		return "int"
	case ast.Float:
		return "float"
	case ast.Char:
		return "char"
	case ast.Bool:
		return "bool"
	default:
		return ""
	}
}

func printTag(t *ast.Type) string {
	switch {
	case t.Equal(ast.TypeInt):
		return PrintI
	case t.Equal(ast.TypeFloat):
		return PrintF
	case t.Equal(ast.TypeChar):
		return PrintC
	default:
		return PrintB
	}
}

func peekTag(t *ast.Type) string {
	switch {
	case t.Equal(ast.TypeInt):
		return PeekI
	case t.Equal(ast.TypeFloat):
		return PeekF
	case t.Equal(ast.TypeChar):
		return PeekC
	default:
		return PeekB
	}
}

func pokeTag(t *ast.Type) string {
	switch {
	case t.Equal(ast.TypeInt):
		return PokeI
	case t.Equal(ast.TypeFloat):
		return PokeF
	case t.Equal(ast.TypeChar):
		return PokeC
	default:
		return PokeB
	}
}

func binOpTag(op ast.BinOp, operandType *ast.Type) string {
	isFloat := operandType.Equal(ast.TypeFloat)
	isChar := operandType.Equal(ast.TypeChar)
	isBool := operandType.Equal(ast.TypeBool)

	switch op {
	case ast.OpAdd:
		if isFloat {
			return AddF
		}
		return AddI
	case ast.OpSub:
		if isFloat {
			return SubF
		}
		return SubI
	case ast.OpMul:
		if isFloat {
			return MulF
		}
		return MulI
	case ast.OpDiv:
		if isFloat {
			return DivF
		}
		return DivI
	case ast.OpLt:
		if isFloat {
			return LtF
		}
		if isChar {
			return LtC
		}
		return LtI
	case ast.OpLe:
		if isFloat {
			return LeF
		}
		if isChar {
			return LeC
		}
		return LeI
	case ast.OpGt:
		if isFloat {
			return GtF
		}
		if isChar {
			return GtC
		}
		return GtI
	case ast.OpGe:
		if isFloat {
			return GeF
		}
		if isChar {
			return GeC
		}
		return GeI
	case ast.OpEq:
		if isFloat {
			return EqF
		}
		if isChar {
			return EqC
		}
		if isBool {
			return EqB
		}
		return EqI
	case ast.OpNe:
		if isFloat {
			return NeF
		}
		if isChar {
			return NeC
		}
		if isBool {
			return NeB
		}
		return NeI
	default:
		return ""
	}
}
