package parser

import (
	"github.com/kestrelscript/dmtree/ast"
	"github.com/kestrelscript/dmtree/diag"
	"github.com/kestrelscript/dmtree/lexer"
	"github.com/kestrelscript/dmtree/location"
)

// block parses a proc body or nested block: either a brace-delimited
// list of statements, a bare semicolon (empty block), or a single
// statement with no braces at all, per spec §4.3's block forms.
func (p *Parser) block() []ast.Statement {
	if p.exact(lexer.LBrace) {
		var stmts []ast.Statement
		for !p.exact(lexer.RBrace) {
			if p.isEOF() {
				p.parseError(p.location(), "expected } to close block")
				return stmts
			}
			if p.exact(lexer.Semicolon) {
				continue
			}
			stmt, ok := p.statement()
			if !ok {
				lt := p.next()
				p.parseError(lt.Location, "expected a statement but found %s", lt.Token.Display())
				continue
			}
			stmts = append(stmts, stmt)
		}
		return stmts
	}
	if p.exact(lexer.Semicolon) {
		return nil
	}
	if p.isEOF() {
		return nil
	}
	stmt, ok := p.statement()
	if !ok {
		return nil
	}
	return []ast.Statement{stmt}
}

// statement parses one statement: the control-flow forms the original
// special-cases, falling back to simple_statement + a terminator.
func (p *Parser) statement() (ast.Statement, bool) {
	loc := p.location()
	switch {
	case p.exactIdent("if"):
		return p.ifStatement(loc)
	case p.exactIdent("while"):
		return p.whileStatement(loc)
	case p.exactIdent("do"):
		return p.doWhileStatement(loc)
	case p.exactIdent("for"):
		return p.forStatement(loc)
	case p.exactIdent("spawn"):
		return p.spawnStatement(loc)
	case p.exactIdent("switch"):
		return p.switchStatement(loc)
	case p.exactIdent("set"):
		return p.setStatement(loc)
	default:
		stmt, ok := p.simpleStatement(false)
		if !ok {
			return ast.Statement{}, false
		}
		p.exact(lexer.Semicolon)
		return stmt, true
	}
}

func (p *Parser) ifStatement(loc location.Location) (ast.Statement, bool) {
	var arms []ast.IfArm
	for {
		if !p.exact(lexer.LParen) {
			p.parseError(p.location(), "expected ( after if")
			return ast.Statement{Kind: ast.StmtIf, Location: loc, IfArms: arms}, true
		}
		cond, _ := p.expression()
		if !p.exact(lexer.RParen) {
			p.parseError(p.location(), "expected ) after if condition")
		}
		p.exact(lexer.Semicolon)
		body := p.block()
		arms = append(arms, ast.IfArm{Cond: cond, Block: body})

		if !p.exactIdent("else") {
			return ast.Statement{Kind: ast.StmtIf, Location: loc, IfArms: arms}, true
		}
		if p.exactIdent("if") {
			continue
		}
		elseBlock := p.block()
		return ast.Statement{Kind: ast.StmtIf, Location: loc, IfArms: arms, Else: elseBlock, HasElse: true}, true
	}
}

func (p *Parser) whileStatement(loc location.Location) (ast.Statement, bool) {
	if !p.exact(lexer.LParen) {
		p.parseError(p.location(), "expected ( after while")
	}
	cond, _ := p.expression()
	if !p.exact(lexer.RParen) {
		p.parseError(p.location(), "expected ) after while condition")
	}
	body := p.block()
	return ast.Statement{Kind: ast.StmtWhile, Location: loc, Cond: cond, Block: body}, true
}

func (p *Parser) doWhileStatement(loc location.Location) (ast.Statement, bool) {
	body := p.block()
	if !p.exactIdent("while") {
		p.parseError(p.location(), "expected while after do block")
	}
	if !p.exact(lexer.LParen) {
		p.parseError(p.location(), "expected ( after do...while")
	}
	cond, _ := p.expression()
	if !p.exact(lexer.RParen) {
		p.parseError(p.location(), "expected ) after do...while condition")
	}
	p.exact(lexer.Semicolon)
	return ast.Statement{Kind: ast.StmtDoWhile, Location: loc, Cond: cond, Block: body}, true
}

func (p *Parser) spawnStatement(loc location.Location) (ast.Statement, bool) {
	var delay *ast.Expression
	if p.exact(lexer.LParen) {
		if !p.exact(lexer.RParen) {
			e, _ := p.expression()
			delay = &e
			p.exact(lexer.RParen)
		}
	}
	body := p.block()
	return ast.Statement{Kind: ast.StmtSpawn, Location: loc, SpawnDelay: delay, Block: body}, true
}

// setStatement parses `set name = expr` or `set name in expr`.
func (p *Parser) setStatement(loc location.Location) (ast.Statement, bool) {
	name, ok := p.ident()
	if !ok {
		p.parseError(p.location(), "expected a setting name after set")
		return ast.Statement{}, false
	}
	stmt := ast.Statement{Kind: ast.StmtSetting, Location: loc, SettingName: name}
	switch {
	case p.exact(lexer.Equal):
		stmt.SettingMode = ast.SettingAssign
		stmt.SettingExpr, _ = p.expression()
	case p.exactIdentPunct(lexer.In):
		stmt.SettingMode = ast.SettingIn
		stmt.SettingExpr, _ = p.expression()
	default:
		p.parseError(p.location(), "expected = or in after set %s", name)
	}
	p.exact(lexer.Semicolon)
	return stmt, true
}

// switchStatement parses `switch (expr) { if (caselist) block ... else block }`.
func (p *Parser) switchStatement(loc location.Location) (ast.Statement, bool) {
	if !p.exact(lexer.LParen) {
		p.parseError(p.location(), "expected ( after switch")
	}
	expr, _ := p.expression()
	if !p.exact(lexer.RParen) {
		p.parseError(p.location(), "expected ) after switch expression")
	}
	stmt := ast.Statement{Kind: ast.StmtSwitch, Location: loc, SwitchExpr: expr}
	if !p.exact(lexer.LBrace) {
		p.parseError(p.location(), "expected { to begin switch body")
		return stmt, true
	}
	for {
		if p.exact(lexer.RBrace) {
			return stmt, true
		}
		if p.exactIdent("if") {
			if !p.exact(lexer.LParen) {
				p.parseError(p.location(), "expected ( after if in switch")
			}
			cases := separated(p, lexer.RParen, false, p.caseValue)
			body := p.block()
			stmt.SwitchArms = append(stmt.SwitchArms, ast.SwitchArm{Cases: cases, Block: body})
			continue
		}
		if p.exactIdent("else") {
			stmt.SwitchDefault = p.block()
			stmt.HasDefault = true
			continue
		}
		lt := p.next()
		if lt.Token.Kind == lexer.EOF {
			p.parseError(lt.Location, "unterminated switch body")
			return stmt, true
		}
		p.parseError(lt.Location, "expected if, else or } in switch body but found %s", lt.Token.Display())
	}
}

// caseValue parses one `E` or `E to E` switch case selector.
func (p *Parser) caseValue() (ast.Case, bool) {
	lo, ok := p.expression()
	if !ok {
		return ast.Case{}, false
	}
	if p.exactIdent("to") {
		hi, _ := p.expression()
		return ast.Case{IsRange: true, Low: lo, High: hi}, true
	}
	return ast.Case{Value: lo}, true
}

// forStatement disambiguates the three `for` forms: C-style
// `for(init; test; inc)`, `for(var in list)` and `for(var = lo to hi [step N])`.
func (p *Parser) forStatement(loc location.Location) (ast.Statement, bool) {
	if !p.exact(lexer.LParen) {
		p.parseError(p.location(), "expected ( after for")
		return ast.Statement{}, false
	}
	if p.exact(lexer.Semicolon) {
		return p.forCStyleRest(loc, nil)
	}

	varType, name, hasVarDecl, explicitVar, identTok := p.tryForVarDecl()

	if hasVarDecl && !explicitVar && !p.peekIsInOrEqual() {
		p.putBack(identTok)
		init, _ := p.simpleStatement(true)
		return p.forCStyleRest(loc, &init)
	}

	if hasVarDecl {
		switch {
		case p.exactIdentPunct(lexer.In):
			inList, _ := p.expression()
			if !p.exact(lexer.RParen) {
				p.parseError(p.location(), "expected ) after for-list expression")
			}
			body := p.block()
			return ast.Statement{Kind: ast.StmtForList, Location: loc, VarType: varType, Name: name, InList: &inList, Block: body}, true
		case p.exact(lexer.Equal):
			start, _ := p.expression()
			if p.exactIdent("to") {
				end, _ := p.expression()
				var step *ast.Expression
				if p.exactIdent("step") {
					s, _ := p.expression()
					step = &s
				}
				if !p.exact(lexer.RParen) {
					p.parseError(p.location(), "expected ) after for-range clause")
				}
				body := p.block()
				return ast.Statement{Kind: ast.StmtForRange, Location: loc, VarType: varType, Name: name, Start: start, End: end, Step: step, Block: body}, true
			}
			var init ast.Statement
			if explicitVar {
				init = ast.Statement{Kind: ast.StmtVar, Location: loc, VarType: varType, Name: name, Value: exprPtr(start)}
			} else {
				assign := ast.Expression{
					Kind:         ast.ExprAssignOp,
					AssignOpKind: ast.Assign,
					AssignLHS:    exprPtr(ast.ExprFromTerm(ast.Term{Kind: ast.TermIdent, Name: name})),
					AssignRHS:    exprPtr(start),
				}
				init = ast.Statement{Kind: ast.StmtExpr, Location: loc, Expr: assign}
			}
			return p.forCStyleRest(loc, &init)
		}
	}

	init, _ := p.simpleStatement(true)
	return p.forCStyleRest(loc, &init)
}

// tryForVarDecl attempts to read an optional `var/type` prefix followed
// by a name, the shape both for-list and for-range forms share before
// branching on `in` vs `=`. explicitVar reports whether the `var`
// keyword itself was present, distinguishing a genuine declaration from
// a bare identifier that merely might turn out to start an `in`/`to`
// clause; identTok carries the consumed identifier token so the caller
// can put it back if it turns out to be neither (e.g. a plain C-style
// for-loop init expression like `for (foo(); ...)`).
func (p *Parser) tryForVarDecl() (varType *ast.VarType, name string, hasVarDecl, explicitVar bool, identTok lexer.LocatedToken) {
	if p.exactIdent("var") {
		segments, _, ok := p.treePath(false)
		if ok && len(segments) > 0 {
			v := ast.VarTypeFromPath(segments[:len(segments)-1])
			return &v, segments[len(segments)-1], true, true, lexer.LocatedToken{}
		}
		n, ok := p.ident()
		if ok {
			return nil, n, true, true, lexer.LocatedToken{}
		}
		return nil, "", false, true, lexer.LocatedToken{}
	}
	lt := p.next()
	if lt.Token.Kind == lexer.Ident {
		return nil, lt.Token.Text, true, false, lt
	}
	p.putBack(lt)
	return nil, "", false, false, lexer.LocatedToken{}
}

// peekIsInOrEqual reports whether the next token is the `in` keyword or
// `=`, without consuming it.
func (p *Parser) peekIsInOrEqual() bool {
	lt := p.next()
	p.putBack(lt)
	if lt.Token.Kind != lexer.Punct {
		return false
	}
	return lt.Token.PunctKind == lexer.In || lt.Token.PunctKind == lexer.Equal
}

func (p *Parser) forCStyleRest(loc location.Location, init *ast.Statement) (ast.Statement, bool) {
	if init != nil {
		p.exact(lexer.Semicolon)
	}
	var test *ast.Expression
	if !p.exact(lexer.Semicolon) {
		t, _ := p.expression()
		test = &t
		p.exact(lexer.Semicolon)
	}
	var inc *ast.Statement
	if !p.exact(lexer.RParen) {
		s, ok := p.simpleStatement(true)
		if ok {
			inc = &s
		}
		p.exact(lexer.RParen)
	}
	body := p.block()
	return ast.Statement{Kind: ast.StmtForLoop, Location: loc, Init: init, Test: test, Inc: inc, Block: body}, true
}

// simpleStatement parses the non-control-flow statements: var
// declarations, return, throw, and bare expressions. inFor suppresses
// the input-specifier warning a bare `var` would otherwise get, since
// for-loop induction variables rarely carry one.
func (p *Parser) simpleStatement(inFor bool) (ast.Statement, bool) {
	loc := p.location()
	switch {
	case p.exactIdent("var"):
		return p.varStatement(loc, inFor)
	case p.exactIdent("return"):
		if p.peekIsTerminator() {
			return ast.Statement{Kind: ast.StmtReturn, Location: loc}, true
		}
		e, _ := p.expression()
		return ast.Statement{Kind: ast.StmtReturn, Location: loc, ReturnValue: &e}, true
	case p.exactIdent("throw"):
		e, _ := p.expression()
		return ast.Statement{Kind: ast.StmtThrow, Location: loc, Expr: e}, true
	default:
		e, ok := p.expression()
		if !ok {
			return ast.Statement{}, false
		}
		return ast.Statement{Kind: ast.StmtExpr, Location: loc, Expr: e}, true
	}
}

func (p *Parser) peekIsTerminator() bool {
	lt := p.next()
	p.putBack(lt)
	if lt.Token.Kind == lexer.EOF {
		return true
	}
	return lt.Token.Kind == lexer.Punct && (lt.Token.PunctKind == lexer.Semicolon || lt.Token.PunctKind == lexer.RBrace)
}

func (p *Parser) varStatement(loc location.Location, inFor bool) (ast.Statement, bool) {
	segments, _, ok := p.treePath(false)
	var vt *ast.VarType
	var name string
	if ok && len(segments) > 0 {
		if len(segments) > 1 {
			v := ast.VarTypeFromPath(segments[:len(segments)-1])
			vt = &v
		}
		name = segments[len(segments)-1]
	} else {
		n, idOK := p.ident()
		if !idOK {
			p.parseError(p.location(), "expected a variable name after var")
			return ast.Statement{}, false
		}
		name = n
	}
	p.varAnnotations()
	stmt := ast.Statement{Kind: ast.StmtVar, Location: loc, VarType: vt, Name: name}
	if p.exact(lexer.Equal) {
		e, _ := p.expression()
		stmt.Value = &e
	}
	if !inFor {
		if res, ok := p.inputSpecifier(false); ok {
			p.ctx.Report(p.location(), diag.Warning, diag.KindSyntactic, "input specifier has no effect outside proc parameters")
			stmt.InputType = res.Type
			stmt.InList = res.InList
		}
	}
	return stmt, true
}

