package parser

import (
	"fmt"
	"strconv"

	"github.com/mna/ink/lang/ast"
	"github.com/mna/ink/lang/token"
)

// parseProgram parses an entire source file: a top-level, comma-separated
// expression list, with no enclosing parentheses. A malformed top-level
// expression is skipped up to the next comma or EOF so the remaining
// expressions still get parsed and reported on, rather than aborting the
// whole file on the first error.
func (p *parser) parseProgram() (prog *ast.Program) {
	prog = &ast.Program{}
	exprs, commas := p.parseTopLevelExprList()
	prog.List = &ast.ExprList{Exprs: exprs, Commas: commas}
	if p.tok != token.EOF {
		p.errorExpected(p.pos, "',' or end of file")
	}
	prog.EOF = p.syncTo(token.EOF)
	return prog
}

func (p *parser) parseTopLevelExprList() ([]ast.Expr, []token.Pos) {
	var exprs []ast.Expr
	var commas []token.Pos

	if p.tok == token.EOF {
		return exprs, commas
	}

	if e, ok := p.parseTopLevelExpr(); ok {
		exprs = append(exprs, e)
	}
	for p.tok == token.COMMA {
		commas = append(commas, p.expect(token.COMMA))
		if p.tok == token.EOF {
			break
		}
		if e, ok := p.parseTopLevelExpr(); ok {
			exprs = append(exprs, e)
		}
	}
	return exprs, commas
}

// parseTopLevelExpr parses a single top-level expression, recovering from a
// parse error by skipping tokens up to the next top-level comma or EOF.
func (p *parser) parseTopLevelExpr() (e ast.Expr, ok bool) {
	defer func() {
		if err := recover(); err != nil {
			if err != errPanicMode {
				panic(err)
			}
			p.syncTo(token.COMMA, token.EOF)
			e, ok = nil, false
		}
	}()
	return p.parseExpr(), true
}

// syncTo advances the token stream until the current token is one of toks,
// returning its position.
func (p *parser) syncTo(toks ...token.Kind) token.Pos {
	for {
		for _, tok := range toks {
			if p.tok == tok {
				return p.pos
			}
		}
		if p.tok == token.EOF {
			return p.pos
		}
		p.advance()
	}
}

// parseExpr parses one top-level expression: a binary-precedence expression,
// optionally followed by a `:=` binding or a `::` match.
func (p *parser) parseExpr() ast.Expr {
	left := p.parseBinary(0)
	switch p.tok {
	case token.DEFINE:
		return p.parseBind(left)
	case token.MATCH:
		return p.parseMatch(left)
	default:
		return left
	}
}

func (p *parser) parseBind(left ast.Expr) *ast.BindExpr {
	colon := p.expect(token.DEFINE)
	right := p.parseExpr()
	return &ast.BindExpr{Left: left, Colon: colon, Right: right}
}

func (p *parser) parseMatch(subject ast.Expr) *ast.MatchExpr {
	var expr ast.MatchExpr
	expr.Subject = subject
	expr.Match = p.expect(token.MATCH)
	expr.Lbrace = p.expect(token.LBRACE)

	for p.tok != token.RBRACE && p.tok != token.EOF {
		expr.Clauses = append(expr.Clauses, p.parseMatchClause())
		if p.tok == token.COMMA {
			expr.Commas = append(expr.Commas, p.expect(token.COMMA))
		} else {
			break
		}
	}

	expr.Rbrace = p.expect(token.RBRACE)
	return &expr
}

func (p *parser) parseMatchClause() *ast.MatchClause {
	var clause ast.MatchClause
	clause.Pattern = p.parseBinary(0)
	clause.Arrow = p.expect(token.CASE)
	clause.Body = p.parseExpr()
	return &clause
}

// binary operator precedence, low to high; all are left-associative. `:=`
// and `::` are handled outside this table since they apply to a whole
// expression, not to two already-parsed operands.
func precedenceOf(tok token.Kind) int {
	switch tok {
	case token.AMP, token.PIPE, token.CARET:
		return 1
	case token.GTR, token.LSS, token.EQL:
		return 2
	case token.PLUS, token.MINUS:
		return 3
	case token.STAR, token.SLASH, token.MOD:
		return 4
	default:
		return -1
	}
}

func (p *parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec := precedenceOf(p.tok)
		if prec < 0 || prec < minPrec {
			return left
		}
		op := p.tok
		opPos := p.pos
		p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{X: left, Op: op, OpPos: opPos, Y: right}
	}
}

func (p *parser) parseUnary() ast.Expr {
	if p.tok == token.TILDE {
		opPos := p.expect(token.TILDE)
		x := p.parseUnary()
		return &ast.UnaryExpr{Op: token.TILDE, OpPos: opPos, X: x}
	}
	return p.parseSuffixed()
}

// parseSuffixed parses a primary expression followed by any number of
// `.name`/`.N`/`.(expr)` index accessors and `(args)` calls, left to right.
func (p *parser) parseSuffixed() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case token.DOT:
			x = p.parseIndex(x)
		case token.LPAREN:
			x = p.parseCall(x)
		case token.NUMBER:
			// the scanner reads the `.1` of `x.1` as a number literal; a number
			// never otherwise follows an operand, so it is the sugared index.
			if p.val.Str == "" || p.val.Str[0] != '.' {
				return x
			}
			raw := p.val.Str[1:]
			n, _ := strconv.ParseFloat(raw, 64)
			dot := p.expect(token.NUMBER)
			x = &ast.IndexExpr{X: x, Dot: dot, Index: &ast.NumberExpr{Start: dot + 1, Raw: raw, Value: n}}
		default:
			return x
		}
	}
}

func (p *parser) parseIndex(x ast.Expr) *ast.IndexExpr {
	var expr ast.IndexExpr
	expr.X = x
	expr.Dot = p.expect(token.DOT)
	if p.tok == token.LPAREN {
		expr.Lparen = p.expect(token.LPAREN)
		expr.Index = p.parseExpr()
		expr.Rparen = p.expect(token.RPAREN)
		return &expr
	}
	expr.Index = p.parseIdent()
	return &expr
}

func (p *parser) parseCall(fn ast.Expr) *ast.CallExpr {
	var expr ast.CallExpr
	expr.Fn = fn
	expr.Lparen = p.expect(token.LPAREN)
	if p.tok != token.RPAREN {
		expr.Args, expr.Commas = p.parseParenExprList()
	}
	expr.Rparen = p.expect(token.RPAREN)
	return &expr
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.tok {
	case token.NUMBER:
		return p.parseNumber()
	case token.STRING:
		return p.parseString()
	case token.TRUE, token.FALSE:
		return p.parseBool()
	case token.EMPTY:
		return p.parseEmpty()
	case token.IDENT:
		id := p.parseIdent()
		if p.tok == token.ARROW {
			// single-parameter function literal without parens: `x => body`
			return p.parseFuncFrom(id.Start, []*ast.IdentOrEmpty{{Ident: id}}, nil)
		}
		return id
	case token.LBRACE:
		return p.parseObject()
	case token.LBRACK:
		return p.parseList()
	case token.LPAREN:
		return p.parseParenOrFunc()
	default:
		p.errorExpected(p.pos, "expression")
		panic(errPanicMode)
	}
}

func (p *parser) parseNumber() *ast.NumberExpr {
	n := &ast.NumberExpr{Start: p.pos, Raw: p.val.Str, Value: p.val.Number}
	p.expect(token.NUMBER)
	return n
}

func (p *parser) parseString() *ast.StringExpr {
	n := &ast.StringExpr{Start: p.pos, Raw: p.val.Str, Value: p.val.Str}
	p.expect(token.STRING)
	return n
}

func (p *parser) parseBool() *ast.BoolExpr {
	n := &ast.BoolExpr{Start: p.pos, Value: p.tok == token.TRUE}
	p.expect(p.tok)
	return n
}

func (p *parser) parseEmpty() *ast.EmptyExpr {
	pos := p.expect(token.EMPTY)
	return &ast.EmptyExpr{Start: pos}
}

func (p *parser) parseIdent() *ast.IdentExpr {
	n := &ast.IdentExpr{Start: p.pos, Name: p.val.Str}
	p.expect(token.IDENT)
	return n
}

func (p *parser) parseObject() *ast.ObjectExpr {
	var expr ast.ObjectExpr
	expr.Lbrace = p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		expr.Entries = append(expr.Entries, p.parseObjectEntry())
		if p.tok == token.COMMA {
			expr.Commas = append(expr.Commas, p.expect(token.COMMA))
		} else {
			break
		}
	}
	expr.Rbrace = p.expect(token.RBRACE)
	return &expr
}

func (p *parser) parseObjectEntry() *ast.ObjectEntry {
	var entry ast.ObjectEntry
	switch p.tok {
	case token.IDENT:
		entry.Key = p.parseIdent()
	case token.STRING:
		entry.Key = p.parseString()
	case token.LPAREN:
		p.expect(token.LPAREN)
		entry.Key = p.parseExpr()
		p.expect(token.RPAREN)
	default:
		p.errorExpected(p.pos, "object key")
		panic(errPanicMode)
	}
	entry.Colon = p.expect(token.COLON)
	entry.Value = p.parseExpr()
	return &entry
}

func (p *parser) parseList() *ast.ListExpr {
	var expr ast.ListExpr
	expr.Lbrack = p.expect(token.LBRACK)
	for p.tok != token.RBRACK && p.tok != token.EOF {
		expr.Elems = append(expr.Elems, p.parseExpr())
		if p.tok == token.COMMA {
			expr.Commas = append(expr.Commas, p.expect(token.COMMA))
		} else {
			break
		}
	}
	expr.Rbrack = p.expect(token.RBRACK)
	return &expr
}

// parseParenOrFunc disambiguates, after the opening paren, between a
// parenthesized expression list `(a, b)` and a function literal's parameter
// list `(a, b) => body` without backtracking: a parameter is always a bare
// identifier or `_`, which already parses as a valid IdentExpr/EmptyExpr
// expression, so the whole parenthesized group is parsed once as an
// expression list and reinterpreted as a parameter list only if `=>`
// follows the closing paren.
func (p *parser) parseParenOrFunc() ast.Expr {
	lparen := p.expect(token.LPAREN)

	if p.tok == token.RPAREN {
		rparen := p.expect(token.RPAREN)
		if p.tok == token.ARROW {
			return p.parseFuncFrom(lparen, nil, nil)
		}
		// `()` is an empty expression list, which evaluates to null
		return &ast.ExprList{Lparen: lparen, Rparen: rparen}
	}

	exprs, commas := p.parseParenExprList()
	rparen := p.expect(token.RPAREN)

	if p.tok == token.ARROW {
		params, err := paramsFromExprs(exprs)
		if err != nil {
			p.error(lparen, err.Error())
			panic(errPanicMode)
		}
		return p.parseFuncFrom(lparen, params, commas)
	}

	if len(exprs) == 1 && len(commas) == 0 {
		return &ast.ParenExpr{Lparen: lparen, Expr: exprs[0], Rparen: rparen}
	}
	return &ast.ExprList{Lparen: lparen, Exprs: exprs, Commas: commas, Rparen: rparen}
}

func paramsFromExprs(exprs []ast.Expr) ([]*ast.IdentOrEmpty, error) {
	params := make([]*ast.IdentOrEmpty, len(exprs))
	for i, e := range exprs {
		switch v := e.(type) {
		case *ast.IdentExpr:
			params[i] = &ast.IdentOrEmpty{Ident: v}
		case *ast.EmptyExpr:
			params[i] = &ast.IdentOrEmpty{Empty: v}
		default:
			return nil, fmt.Errorf("function parameters must be identifiers or `_`")
		}
	}
	return params, nil
}

func (p *parser) parseFuncFrom(lparen token.Pos, params []*ast.IdentOrEmpty, commas []token.Pos) *ast.FuncExpr {
	var expr ast.FuncExpr
	expr.Lparen = lparen
	expr.Params = params
	expr.Commas = commas
	expr.Arrow = p.expect(token.ARROW)
	expr.Body = p.parseExpr()
	return &expr
}

func (p *parser) parseParenExprList() ([]ast.Expr, []token.Pos) {
	var exprs []ast.Expr
	var commas []token.Pos

	exprs = append(exprs, p.parseExpr())
	for p.tok == token.COMMA {
		commas = append(commas, p.expect(token.COMMA))
		if p.tok == token.RPAREN {
			break
		}
		exprs = append(exprs, p.parseExpr())
	}
	return exprs, commas
}
