package parser

import (
	"github.com/lhaig/wabbitc/internal/diagnostic"
	"github.com/lhaig/wabbitc/internal/lexer"
)

// syncTokens are tokens the parser resynchronizes to after a parse
// error: the start of a new statement, a block close, or EOF.
var syncTokens = map[lexer.TokenType]bool{
	lexer.VAR:      true,
	lexer.CONST:    true,
	lexer.FUNC:     true,
	lexer.IMPORT:   true,
	lexer.IF:       true,
	lexer.WHILE:    true,
	lexer.BREAK:    true,
	lexer.CONTINUE: true,
	lexer.RETURN:   true,
	lexer.PRINT:    true,
	lexer.RBRACE:   true,
	lexer.SEMICOLON: true,
	lexer.EOF:      true,
}

// Parser holds the parser's state: the buffered token stream, current
// position, and the parser's own diagnostic sink.
type Parser struct {
	file   string
	tokens []lexer.Token
	pos    int
	diags  *diagnostic.Diagnostics
}

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise
// reports a diagnostic and leaves the cursor in place so the caller's
// own recovery (usually synchronize) can decide what happens next.
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.current()
	if tok.Type != tt {
		p.diags.Errorf(p.file, tok.Line, tok.Column, "expected %s, got %s", tt, tok.Type)
		return tok
	}
	return p.advance()
}

func (p *Parser) check(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// expectSemicolon reports a recoverable diagnostic for a missing `;`
// rather than aborting the statement -- spec.md treats a missing
// terminator as the cheap, local recovery case.
func (p *Parser) expectSemicolon() {
	if !p.match(lexer.SEMICOLON) {
		tok := p.current()
		p.diags.ErrorWithHint(p.file, tok.Line, tok.Column, "expected ';' after statement", "add ';' at end of statement")
	}
}

// synchronize skips tokens until a statement boundary is found,
// consuming a semicolon if that's what it lands on.
func (p *Parser) synchronize() {
	for !p.check(lexer.EOF) {
		if p.current().Type == lexer.SEMICOLON {
			p.advance()
			return
		}
		if syncTokens[p.current().Type] {
			return
		}
		p.advance()
	}
}
