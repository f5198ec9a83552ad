// Package parser turns a token stream into an AST (spec §4.2). It is a
// straightforward recursive-descent / precedence-climbing parser following the
// EBNF grammar exactly, including non-associative comparison and right-associative
// exponentiation.
package parser

import (
	"github.com/nsforge/formcalc/ast"
	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/lexer"
)

// Parser consumes a fixed token slice (produced by lexer.Tokenize) and builds an AST.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse lexes and parses src into a formula body (spec's `block`).
func Parse(src string) (ast.Block, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: toks}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.EOF {
		return nil, p.errorf("unexpected %s after formula body", p.cur().Kind)
	}
	return block, nil
}

func (p *Parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(kind lexer.TokenKind) bool {
	return p.cur().Kind == kind
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	if !p.at(kind) {
		return lexer.Token{}, p.errorf("expected %s, found %s", kind, p.cur().Kind)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return cerr.New(cerr.ParseError, format, args...).WithOffset(p.cur().Offset)
}

// block := stmt+
func (p *Parser) parseBlock() (ast.Block, error) {
	var block ast.Block
	for {
		if p.blockTerminated() {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block = append(block, stmt)
	}
	if len(block) == 0 {
		return nil, p.errorf("empty block")
	}
	return block, nil
}

// blockTerminated reports whether the current token ends an enclosing block
// (end-of-input, or one of the if-chain continuation/terminator keywords).
func (p *Parser) blockTerminated() bool {
	switch p.cur().Kind {
	case lexer.EOF, lexer.KwEnd, lexer.KwElse:
		return true
	default:
		return false
	}
}

// stmt := return_stmt | if_stmt | error_stmt
func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur().Kind {
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwError:
		return p.parseError()
	default:
		return nil, p.errorf("expected statement, found %s", p.cur().Kind)
	}
}

// return_stmt := 'return' expr
func (p *Parser) parseReturn() (ast.Stmt, error) {
	tok := p.advance() // 'return'
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Expr: expr, Pos: tok.Offset}, nil
}

// error_stmt := 'error' '(' expr ')'
func (p *Parser) parseError() (ast.Stmt, error) {
	tok := p.advance() // 'error'
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return &ast.ErrorStmt{Expr: expr, Pos: tok.Offset}, nil
}

// if_stmt := 'if' '(' expr ')' 'then' block
//
//	('else' 'if' '(' expr ')' 'then' block)*
//	('else' block)? 'end'
func (p *Parser) parseIf() (ast.Stmt, error) {
	tok := p.advance() // 'if'
	node := &ast.If{Pos: tok.Offset}

	branch, err := p.parseIfBranch()
	if err != nil {
		return nil, err
	}
	node.Branches = append(node.Branches, branch)

	for p.at(lexer.KwElse) {
		p.advance() // 'else'
		if p.at(lexer.KwIf) {
			p.advance() // 'if'
			branch, err := p.parseIfBranch()
			if err != nil {
				return nil, err
			}
			node.Branches = append(node.Branches, branch)
			continue
		}
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Else = elseBlock
		break
	}

	if _, err := p.expect(lexer.KwEnd); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseIfBranch() (ast.IfBranch, error) {
	if _, err := p.expect(lexer.LParen); err != nil {
		return ast.IfBranch{}, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return ast.IfBranch{}, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return ast.IfBranch{}, err
	}
	if _, err := p.expect(lexer.KwThen); err != nil {
		return ast.IfBranch{}, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return ast.IfBranch{}, err
	}
	return ast.IfBranch{Cond: cond, Block: block}, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

// or_expr := and_expr ('or' and_expr)*
func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwOr) {
		pos := p.advance().Offset
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.Or, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

// and_expr := not_expr ('and' not_expr)*
func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwAnd) {
		pos := p.advance().Offset
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: ast.And, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

// not_expr := '!' not_expr | cmp_expr
func (p *Parser) parseNot() (ast.Expr, error) {
	if p.at(lexer.Bang) {
		pos := p.advance().Offset
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Not, Expr: inner, Pos: pos}, nil
	}
	return p.parseCmp()
}

var cmpOps = map[lexer.TokenKind]ast.BinaryOp{
	lexer.Eq:    ast.Eq,
	lexer.NotEq: ast.NotEq,
	lexer.Lt:    ast.Lt,
	lexer.Gt:    ast.Gt,
	lexer.LtEq:  ast.LtEq,
	lexer.GtEq:  ast.GtEq,
}

// cmp_expr := add_expr (('=' | '<>' | '<' | '>' | '<=' | '>=') add_expr)?
// Non-associative: only one comparison operator is permitted per expression.
func (p *Parser) parseCmp() (ast.Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if op, ok := cmpOps[p.cur().Kind]; ok {
		pos := p.advance().Offset
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Pos: pos}
		if _, stillCmp := cmpOps[p.cur().Kind]; stillCmp {
			return nil, p.errorf("comparison operators do not chain")
		}
	}
	return left, nil
}

// add_expr := mul_expr (('+' | '-') mul_expr)*
func (p *Parser) parseAdd() (ast.Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		op := ast.Add
		if p.cur().Kind == lexer.Minus {
			op = ast.Sub
		}
		pos := p.advance().Offset
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

// mul_expr := pow_expr (('*' | '/' | 'mod') pow_expr)*
func (p *Parser) parseMul() (ast.Expr, error) {
	left, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Star) || p.at(lexer.Slash) || p.at(lexer.KwMod) {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case lexer.Star:
			op = ast.Mul
		case lexer.Slash:
			op = ast.Div
		default:
			op = ast.Mod
		}
		pos := p.advance().Offset
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

// pow_expr := unary ('^' unary)*  (right-associative)
func (p *Parser) parsePow() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.Caret) {
		pos := p.advance().Offset
		right, err := p.parsePow() // right-recursion for right-associativity
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: ast.Pow, Left: left, Right: right, Pos: pos}, nil
	}
	return left, nil
}

// unary := ('-' | '+') unary | primary
func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Kind {
	case lexer.Minus:
		pos := p.advance().Offset
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Neg, Expr: inner, Pos: pos}, nil
	case lexer.Plus:
		pos := p.advance().Offset
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Pos, Expr: inner, Pos: pos}, nil
	default:
		return p.parsePrimary()
	}
}

// primary := number | string | bool | call | identifier | '(' expr ')'
func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		n, err := parseFloat(tok.Lexeme)
		if err != nil {
			return nil, cerr.New(cerr.LexError, "malformed number %q", tok.Lexeme).WithOffset(tok.Offset)
		}
		return &ast.NumberLit{Value: n, Pos: tok.Offset}, nil
	case lexer.String:
		p.advance()
		return &ast.StringLit{Value: tok.Lexeme, Pos: tok.Offset}, nil
	case lexer.KwTrue:
		p.advance()
		return &ast.BoolLit{Value: true, Pos: tok.Offset}, nil
	case lexer.KwFalse:
		p.advance()
		return &ast.BoolLit{Value: false, Pos: tok.Offset}, nil
	case lexer.Identifier:
		p.advance()
		if p.at(lexer.LParen) {
			return p.parseCall(tok)
		}
		return &ast.VarRef{Name: tok.Lexeme, Pos: tok.Offset}, nil
	case lexer.LParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf("unexpected %s", tok.Kind)
	}
}

// call := identifier '(' (expr (',' expr)*)? ')'
func (p *Parser) parseCall(name lexer.Token) (ast.Expr, error) {
	p.advance() // '('
	var args []ast.Expr
	if !p.at(lexer.RParen) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return &ast.Call{Name: name.Lexeme, Args: args, Pos: name.Offset}, nil
}
