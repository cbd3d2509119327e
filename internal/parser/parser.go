// Package parser implements the hand-written recursive-descent parser for
// the hobby language: Parse turns source text into a validated *ast.Program.
package parser

import (
	"fmt"

	"github.com/strager/hobbyc/internal/ast"
	"github.com/strager/hobbyc/internal/diagnostics"
	"github.com/strager/hobbyc/internal/token"
)

type parser struct {
	tokens     []token.Token
	pos        int
	sourceName string
	text       []byte
	program    *ast.Program
}

// Parse scans and parses text, returning a fully resolved program or a
// *diagnostics.ParseError describing the first failure encountered.
//
// The grammar is LL(1) except for one token of lookahead used to tell a
// function call apart from a bare variable reference; nothing in it
// requires backtracking, so the parser never needs to unwind a partial
// match and retry — every production is uniquely predicted by its leading
// token.
func Parse(text []byte, sourceName string) (*ast.Program, error) {
	tokens, err := tokenize(text)
	if err != nil {
		line, col := positionOf(text, len(text))
		return nil, &diagnostics.ParseError{SourceName: sourceName, Line: line, Col: col, Message: err.Error()}
	}

	p := &parser{tokens: tokens, sourceName: sourceName, text: text, program: &ast.Program{}}
	for p.cur().Kind != token.EOF {
		fn, err := p.parseDefinition()
		if err != nil {
			return nil, err
		}
		p.program.Functions = append(p.program.Functions, *fn)
	}

	if p.program.MainFunctionName == "" {
		return nil, p.errorf(p.cur(), "program has no entry point")
	}

	return p.program, nil
}

func (p *parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token.Token {
	t := p.tokens[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind token.Kind, what string) (token.Token, error) {
	if p.cur().Kind != kind {
		return token.Token{}, p.errorf(p.cur(), "expected %s, found %s", what, p.cur().Kind)
	}
	return p.advance(), nil
}

func (p *parser) errorf(at token.Token, format string, args ...any) error {
	line, col := positionOf(p.text, at.Offset)
	return &diagnostics.ParseError{SourceName: p.sourceName, Line: line, Col: col, Message: fmt.Sprintf(format, args...)}
}

// positionOf converts a byte offset into a 1-based (line, col) pair.
func positionOf(text []byte, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// repSince reconstructs the source spelling of a construct from its
// starting offset to the current cursor position. Used only for diagnostic
// "representation" text; it never influences parsing or type equality.
func (p *parser) repSince(startOffset int) string {
	endOffset := p.cur().Offset
	if p.pos > 0 {
		endOffset = p.tokens[p.pos-1].End
	}
	if startOffset > endOffset || endOffset > len(p.text) {
		return ""
	}
	return string(p.text[startOffset:endOffset])
}

// parseDefinition parses one top-level `def name = type funcBody ;`
// declaration.
func (p *parser) parseDefinition() (*ast.Function, error) {
	if _, err := p.expect(token.Def, "'def'"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Ident, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if typ.Kind != ast.FuncTypeKind {
		return nil, p.errorf(nameTok, "definition %q must have a function type", nameTok.Literal)
	}
	body, err := p.parseFuncBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "';'"); err != nil {
		return nil, err
	}

	if nameTok.Literal == "main" {
		if p.program.MainFunctionName != "" {
			return nil, p.errorf(nameTok, "function %q is already defined", nameTok.Literal)
		}
		if !ast.IsEntryPointType(typ) {
			return nil, p.errorf(nameTok, "function %q must have type fun(out exitCode: i32)", nameTok.Literal)
		}
		p.program.MainFunctionName = nameTok.Literal
	}

	return &ast.Function{
		Name:       nameTok.Literal,
		SourceFile: p.sourceName,
		Type:       typ,
		Body:       body,
	}, nil
}

// parseType parses either the scalar `i32` type or a `fun(...)` type,
// interning the result — every type the parser constructs, nested or
// top-level, is looked up against the program's type list and either
// reused or appended, per the type-interning rule.
func (p *parser) parseType() (ast.Type, error) {
	switch p.cur().Kind {
	case token.I32:
		p.advance()
		return p.program.Intern(ast.I32), nil
	case token.Fun:
		return p.parseFuncType()
	default:
		return ast.Type{}, p.errorf(p.cur(), "expected a type, found %s", p.cur().Kind)
	}
}

// parseFuncType parses `fun(dir name: type, ...)`.
func (p *parser) parseFuncType() (ast.Type, error) {
	start := p.cur().Offset
	p.advance() // 'fun'
	if _, err := p.expect(token.LParen, "'('"); err != nil {
		return ast.Type{}, err
	}

	var params []ast.FuncParameter
	if p.cur().Kind != token.RParen {
		for {
			param, err := p.parseParam()
			if err != nil {
				return ast.Type{}, err
			}
			params = append(params, param)
			if p.cur().Kind != token.Comma {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return ast.Type{}, err
	}

	funcType := ast.Type{Kind: ast.FuncTypeKind, Rep: p.repSince(start), Parameters: params}
	return p.program.Intern(funcType), nil
}

func (p *parser) parseParam() (ast.FuncParameter, error) {
	dir, err := p.parseDirection()
	if err != nil {
		return ast.FuncParameter{}, err
	}
	nameTok, err := p.expect(token.Ident, "parameter name")
	if err != nil {
		return ast.FuncParameter{}, err
	}
	if _, err := p.expect(token.Colon, "':'"); err != nil {
		return ast.FuncParameter{}, err
	}
	typ, err := p.parseType()
	if err != nil {
		return ast.FuncParameter{}, err
	}
	return ast.FuncParameter{Name: nameTok.Literal, Direction: dir, Type: typ}, nil
}

func (p *parser) parseDirection() (ast.Direction, error) {
	switch p.cur().Kind {
	case token.In:
		p.advance()
		return ast.In, nil
	case token.Out:
		p.advance()
		return ast.Out, nil
	case token.InOut:
		p.advance()
		return ast.InOut, nil
	default:
		return 0, p.errorf(p.cur(), "expected a parameter direction (in, out, inout), found %s", p.cur().Kind)
	}
}

// parseFuncBody parses `{ stmt+ }`, then enforces the single-statement
// restriction: the grammar admits one or more statements, but exactly one
// is accepted — zero or more than one is a parse error ("not implemented",
// a known limitation, not a design decision).
func (p *parser) parseFuncBody() (*ast.Expression, error) {
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}

	var stmts []*ast.Expression
	for p.cur().Kind != token.RBrace {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	closeBrace := p.cur()
	if _, err := p.expect(token.RBrace, "'}'"); err != nil {
		return nil, err
	}

	switch len(stmts) {
	case 0:
		return nil, p.errorf(closeBrace, "empty function body not implemented: exactly one statement is required")
	case 1:
		return stmts[0], nil
	default:
		return nil, p.errorf(closeBrace, "function bodies with more than one statement are not implemented")
	}
}

// parseStmt parses the sole statement form: `identifier = expr ;`.
func (p *parser) parseStmt() (*ast.Expression, error) {
	start := p.cur().Offset

	nameTok, err := p.expect(token.Ident, "a variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "';'"); err != nil {
		return nil, err
	}
	return &ast.Expression{
		Kind:      ast.InitAssignmentExpr,
		Rep:       p.repSince(start),
		InitVar:   nameTok.Literal,
		InitValue: value,
	}, nil
}

// parseExpr parses a left-associative chain of additive/multiplicative
// binary operators over terms. The grammar has no parenthesized-precedence
// ambiguity to climb, so a single flat loop (rather than a
// precedence-climbing table) suffices; every operator binds the same as
// every other, left to right.
func (p *parser) parseExpr() (*ast.Expression, error) {
	start := p.cur().Offset
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := binaryOpFor(p.cur().Kind)
		if !ok {
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Expression{Kind: ast.BinaryOpExpr, Rep: p.repSince(start), Op: op, LHS: lhs, RHS: rhs}
	}
}

func binaryOpFor(kind token.Kind) (ast.BinaryOperator, bool) {
	switch kind {
	case token.Plus:
		return ast.Add, true
	case token.Minus:
		return ast.Subtract, true
	case token.Star:
		return ast.Multiply, true
	case token.Slash:
		return ast.Divide, true
	case token.Percent:
		return ast.Modulo, true
	default:
		return 0, false
	}
}

// parseTerm parses a literal, a parenthesized expression, or an
// identifier — which, on seeing a following '(', is reinterpreted as a
// call rather than a variable reference. This one token of lookahead is
// the only lookahead the grammar needs.
func (p *parser) parseTerm() (*ast.Expression, error) {
	switch p.cur().Kind {
	case token.Int:
		tok := p.advance()
		return &ast.Expression{Kind: ast.LiteralExpr, Rep: tok.Literal, IntValue: tok.IntValue}, nil

	case token.LParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil

	case token.Ident:
		if p.tokens[p.pos+1].Kind == token.LParen {
			return p.parseCall()
		}
		tok := p.advance()
		return &ast.Expression{Kind: ast.VarRefExpr, Rep: tok.Literal, VarName: tok.Literal}, nil

	default:
		return nil, p.errorf(p.cur(), "expected an expression, found %s", p.cur().Kind)
	}
}

// parseCall parses `name(dir name: expr, ...)`.
func (p *parser) parseCall() (*ast.Expression, error) {
	start := p.cur().Offset
	nameTok := p.advance()
	p.advance() // '('

	var args []ast.FuncArgument
	if p.cur().Kind != token.RParen {
		for {
			arg, err := p.parseArgument()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().Kind != token.Comma {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(token.RParen, "')'"); err != nil {
		return nil, err
	}

	return &ast.Expression{
		Kind:         ast.CallExpr,
		Rep:          p.repSince(start),
		FunctionName: nameTok.Literal,
		Arguments:    args,
	}, nil
}

func (p *parser) parseArgument() (ast.FuncArgument, error) {
	dir, err := p.parseDirection()
	if err != nil {
		return ast.FuncArgument{}, err
	}
	nameTok, err := p.expect(token.Ident, "argument name")
	if err != nil {
		return ast.FuncArgument{}, err
	}
	if _, err := p.expect(token.Colon, "':'"); err != nil {
		return ast.FuncArgument{}, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return ast.FuncArgument{}, err
	}
	return ast.FuncArgument{Name: nameTok.Literal, Direction: dir, Expr: expr}, nil
}
