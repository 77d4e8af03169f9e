package parser

import (
	"strconv"

	"github.com/lhaig/wabbitc/internal/ast"
	"github.com/lhaig/wabbitc/internal/diagnostic"
	"github.com/lhaig/wabbitc/internal/lexer"
)

// New creates a parser over file's already-lexed token stream. The
// caller is expected to have run the lexer first and checked its
// diagnostics before parsing, per the stage-gating contract; Parse
// still tolerates a token stream containing ILLEGAL tokens from a
// lexer that kept going after an error.
func New(file string, tokens []lexer.Token) *Parser {
	return &Parser{
		file:   file,
		tokens: tokens,
		diags:  diagnostic.New(),
	}
}

// Diagnostics returns the parser's diagnostics.
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the token stream into a Program, a flat sequence of
// top-level var/const/func declarations in source order.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	for !p.check(lexer.EOF) {
		stmt := p.parseTopLevel()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog
}

func (p *Parser) parseTopLevel() ast.Statement {
	switch p.current().Type {
	case lexer.VAR, lexer.CONST:
		return p.parseVarOrConst()
	case lexer.IMPORT, lexer.FUNC:
		return p.parseFuncDecl()
	default:
		tok := p.current()
		p.diags.Errorf(p.file, tok.Line, tok.Column, "expected a declaration, got %s", tok.Type)
		p.advance()
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseTypeName() *ast.Type {
	tok := p.current()
	if !lexer.IsTypeName(tok.Type) {
		p.diags.Errorf(p.file, tok.Line, tok.Column, "expected a type name, got %s", tok.Type)
		return nil
	}
	p.advance()
	switch tok.Type {
	case lexer.INT_TYPE:
		return ast.TypeInt
	case lexer.FLOAT_TYPE:
		return ast.TypeFloat
	case lexer.CHAR_TYPE:
		return ast.TypeChar
	case lexer.BOOL_TYPE:
		return ast.TypeBool
	default:
		return nil
	}
}

func (p *Parser) parseVarOrConst() ast.Statement {
	tok := p.advance() // VAR or CONST
	kind := ast.DeclVar
	if tok.Type == lexer.CONST {
		kind = ast.DeclConst
	}

	nameTok := p.expect(lexer.NAME)
	decl := &ast.VarDecl{Kind: kind, Name: nameTok.Literal, Line: tok.Line, Column: tok.Column}

	if lexer.IsTypeName(p.current().Type) {
		decl.Type = p.parseTypeName()
	}
	if p.match(lexer.ASSIGN) {
		decl.Init = p.parseExpression(decl.Type)
	}
	if kind == ast.DeclVar && decl.Type == nil && decl.Init == nil {
		p.diags.Errorf(p.file, tok.Line, tok.Column, "var %q needs a type or an initializer", decl.Name)
	}
	p.expectSemicolon()
	return decl
}

func (p *Parser) parseFuncDecl() ast.Statement {
	startTok := p.current()
	imported := p.match(lexer.IMPORT)
	p.expect(lexer.FUNC)
	nameTok := p.expect(lexer.NAME)

	fn := &ast.FuncDecl{Name: nameTok.Literal, Imported: imported, Line: startTok.Line, Column: startTok.Column}

	p.expect(lexer.LPAREN)
	for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		pname := p.expect(lexer.NAME)
		ptype := p.parseTypeName()
		fn.Params = append(fn.Params, ast.FuncParam{Name: pname.Literal, Type: ptype})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)

	if lexer.IsTypeName(p.current().Type) {
		fn.ReturnType = p.parseTypeName()
	}

	if imported {
		p.expectSemicolon()
		return fn
	}

	if !p.check(lexer.LBRACE) {
		p.diags.Errorf(p.file, p.current().Line, p.current().Column, "function %q must have a body", fn.Name)
		p.synchronize()
		return fn
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseBlock() []ast.Statement {
	p.expect(lexer.LBRACE)
	var stmts []ast.Statement
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expect(lexer.RBRACE)
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.current().Type {
	case lexer.VAR, lexer.CONST:
		return p.parseVarOrConst()
	case lexer.FUNC, lexer.IMPORT:
		tok := p.current()
		p.diags.Errorf(p.file, tok.Line, tok.Column, "functions may only be declared at the top level")
		return p.parseFuncDecl()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.BREAK:
		tok := p.advance()
		p.expectSemicolon()
		return &ast.Break{Line: tok.Line, Column: tok.Column}
	case lexer.CONTINUE:
		tok := p.advance()
		p.expectSemicolon()
		return &ast.Continue{Line: tok.Line, Column: tok.Column}
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.SEMICOLON:
		p.advance()
		return nil
	default:
		return p.parseAssignOrExprStmt()
	}
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.advance() // if
	cond := p.parseExpression(ast.TypeBool)
	then := p.parseBlock()
	stmt := &ast.If{Cond: cond, Then: then, Line: tok.Line, Column: tok.Column}
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			stmt.Else = []ast.Statement{p.parseIf()}
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.advance() // while
	cond := p.parseExpression(ast.TypeBool)
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.advance() // return
	stmt := &ast.Return{Line: tok.Line, Column: tok.Column}
	if !p.check(lexer.SEMICOLON) {
		stmt.Value = p.parseExpression(nil)
	}
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parsePrint() ast.Statement {
	tok := p.advance() // print
	value := p.parseExpression(nil)
	p.expectSemicolon()
	return &ast.Print{Value: value, Line: tok.Line, Column: tok.Column}
}

// parseAssignOrExprStmt parses an expression and, if it's followed by
// '=', reinterprets that expression as an assignment target: a plain
// name or a backtick-addressed memory location. Anything else on the
// left of '=' is an invalid target.
func (p *Parser) parseAssignOrExprStmt() ast.Statement {
	tok := p.current()
	expr := p.parseExpression(nil)

	if !p.match(lexer.ASSIGN) {
		p.expectSemicolon()
		return &ast.ExpressionStmt{Value: expr, Line: tok.Line, Column: tok.Column}
	}

	loc, ok := toLocation(expr)
	if !ok {
		p.diags.Errorf(p.file, tok.Line, tok.Column, "invalid assignment target")
	}
	value := p.parseExpression(nil)
	p.expectSemicolon()
	return &ast.Assign{Target: loc, Value: value, Line: tok.Line, Column: tok.Column}
}

func toLocation(e ast.Expression) (ast.Location, bool) {
	switch n := e.(type) {
	case *ast.NameExpr:
		return ast.Location{Name: n.Name, Line: n.Line, Column: n.Column}, true
	case *ast.Unary:
		if n.Op == ast.OpPeek {
			return ast.Location{IsMemory: true, MemAddr: n.Operand, Line: n.Line, Column: n.Column}, true
		}
	}
	l, c := e.Pos()
	return ast.Location{Line: l, Column: c}, false
}

// ---- Expressions: precedence-climbing per the operator table ----
//
// ||  (lowest)
// &&
// relational (< <= > >= == !=, not chainable)
// + -
// * /
// unary - ! ` ^
// primary (highest)

// parseExpression parses a full expression. expect is passed down the
// precedence chain, but no production reads it: the type of a backtick
// load is resolved from context by the checker, not here.
func (p *Parser) parseExpression(expect *ast.Type) ast.Expression {
	return p.parseOr(expect)
}

func (p *Parser) parseOr(expect *ast.Type) ast.Expression {
	left := p.parseAnd(expect)
	for p.check(lexer.OR) {
		tok := p.advance()
		right := p.parseAnd(nil)
		left = &ast.Binary{Op: ast.OpOr, Left: left, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseAnd(expect *ast.Type) ast.Expression {
	left := p.parseRelational(expect)
	for p.check(lexer.AND) {
		tok := p.advance()
		right := p.parseRelational(nil)
		left = &ast.Binary{Op: ast.OpAnd, Left: left, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

var relOps = map[lexer.TokenType]ast.BinOp{
	lexer.LT: ast.OpLt, lexer.LE: ast.OpLe,
	lexer.GT: ast.OpGt, lexer.GE: ast.OpGe,
	lexer.EQ: ast.OpEq, lexer.NE: ast.OpNe,
}

// parseRelational parses at most one relational operator; a second
// one immediately after is a hard error ("a < b < c" does not parse),
// per spec.md's no-chained-relations contract.
func (p *Parser) parseRelational(expect *ast.Type) ast.Expression {
	left := p.parseAdditive(expect)
	op, ok := relOps[p.current().Type]
	if !ok {
		return left
	}
	tok := p.advance()
	right := p.parseAdditive(nil)
	result := ast.Expression(&ast.Binary{Op: op, Left: left, Right: right, Line: tok.Line, Column: tok.Column})

	for {
		_, chained := relOps[p.current().Type]
		if !chained {
			break
		}
		badTok := p.current()
		p.diags.Errorf(p.file, badTok.Line, badTok.Column, "relational operators may not be chained")
		p.advance()
		p.parseAdditive(nil) // discard, recovery only
		result = &ast.ErrorExpr{Line: tok.Line, Column: tok.Column}
		result.SetType(ast.TypeError)
	}
	return result
}

func (p *Parser) parseAdditive(expect *ast.Type) ast.Expression {
	left := p.parseMultiplicative(expect)
	for p.check(lexer.PLUS) || p.check(lexer.MINUS) {
		tok := p.advance()
		op := ast.OpAdd
		if tok.Type == lexer.MINUS {
			op = ast.OpSub
		}
		right := p.parseMultiplicative(nil)
		left = &ast.Binary{Op: op, Left: left, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseMultiplicative(expect *ast.Type) ast.Expression {
	left := p.parseUnary(expect)
	for p.check(lexer.STAR) || p.check(lexer.SLASH) {
		tok := p.advance()
		op := ast.OpMul
		if tok.Type == lexer.SLASH {
			op = ast.OpDiv
		}
		right := p.parseUnary(nil)
		left = &ast.Binary{Op: op, Left: left, Right: right, Line: tok.Line, Column: tok.Column}
	}
	return left
}

func (p *Parser) parseUnary(expect *ast.Type) ast.Expression {
	switch p.current().Type {
	case lexer.MINUS:
		tok := p.advance()
		operand := p.parseUnary(expect)
		return &ast.Unary{Op: ast.OpNeg, Operand: operand, Line: tok.Line, Column: tok.Column}
	case lexer.NOT:
		tok := p.advance()
		operand := p.parseUnary(nil)
		return &ast.Unary{Op: ast.OpNot, Operand: operand, Line: tok.Line, Column: tok.Column}
	case lexer.BACKTICK:
		tok := p.advance()
		operand := p.parseUnary(nil)
		return &ast.Unary{Op: ast.OpPeek, Operand: operand, Line: tok.Line, Column: tok.Column}
	case lexer.CARET:
		tok := p.advance()
		operand := p.parseUnary(nil)
		return &ast.Unary{Op: ast.OpGrow, Operand: operand, Line: tok.Line, Column: tok.Column}
	default:
		return p.parsePrimary(expect)
	}
}

func (p *Parser) parsePrimary(expect *ast.Type) ast.Expression {
	tok := p.current()

	if lexer.IsTypeName(tok.Type) && p.peek().Type == lexer.LPAREN {
		return p.parseCast()
	}
	if tok.Type == lexer.NAME && p.peek().Type == lexer.LPAREN {
		return p.parseCall()
	}

	switch tok.Type {
	case lexer.INTEGER:
		p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			v = 0
		}
		return &ast.IntegerLit{Value: int32(v), Line: tok.Line, Column: tok.Column}
	case lexer.FLOAT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			v = 0
		}
		return &ast.FloatLit{Value: v, Line: tok.Line, Column: tok.Column}
	case lexer.CHAR:
		p.advance()
		var v byte
		if len(tok.Literal) > 0 {
			v = tok.Literal[0]
		}
		return &ast.CharLit{Value: v, Line: tok.Line, Column: tok.Column}
	case lexer.BOOL:
		p.advance()
		return &ast.BoolLit{Value: tok.Literal == "true", Line: tok.Line, Column: tok.Column}
	case lexer.NAME:
		p.advance()
		return &ast.NameExpr{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		e := p.parseExpression(expect)
		p.expect(lexer.RPAREN)
		return e
	default:
		p.diags.Errorf(p.file, tok.Line, tok.Column, "unexpected token %s in expression", tok.Type)
		p.advance()
		errExpr := &ast.ErrorExpr{Line: tok.Line, Column: tok.Column}
		errExpr.SetType(ast.TypeError)
		return errExpr
	}
}

func (p *Parser) parseCast() ast.Expression {
	tok := p.current()
	target := p.parseTypeName()
	p.expect(lexer.LPAREN)
	value := p.parseExpression(nil)
	p.expect(lexer.RPAREN)
	kind := ast.Invalid
	if target != nil {
		kind = target.Kind
	}
	return &ast.Cast{Target: kind, Value: value, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseCall() ast.Expression {
	nameTok := p.advance()
	p.expect(lexer.LPAREN)
	call := &ast.Call{Func: nameTok.Literal, Line: nameTok.Line, Column: nameTok.Column}
	for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		call.Args = append(call.Args, p.parseExpression(nil))
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return call
}
