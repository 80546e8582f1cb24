package parser

import (
	"github.com/kestrelscript/dmtree/annotation"
	"github.com/kestrelscript/dmtree/ast"
	"github.com/kestrelscript/dmtree/diag"
	"github.com/kestrelscript/dmtree/lexer"
	"github.com/kestrelscript/dmtree/location"
	"github.com/kestrelscript/dmtree/objtree"
)

func varVar(path []string, name, def string) objtree.Var {
	return objtree.Var{Path: append([]string(nil), path...), Name: name, Default: def}
}

func procVar(path []string, params []ast.Parameter) objtree.Proc {
	names := make([]string, len(params))
	for i, pm := range params {
		names[i] = pm.Name
	}
	procName := ""
	if len(path) > 0 {
		procName = path[len(path)-1]
	}
	return objtree.Proc{Name: procName, Parameters: names}
}

// root parses a whole file as a sequence of tree entries at the root
// path, per spec §4.1.
func (p *Parser) root() {
	p.treeEntries(nil)
}

// treeEntries parses zero or more tree_entry()s at the current path
// until EOF.
func (p *Parser) treeEntries(path []string) {
	for !p.isEOF() {
		p.treeEntry(path)
	}
}

// treeBlock parses a `{ ... }` nested block of tree entries already past
// the opening brace, registering path itself even if the block turns out
// to be empty.
func (p *Parser) treeBlock(path []string) {
	p.tree.AddEntry(path)
	for {
		if p.exact(lexer.RBrace) {
			return
		}
		if p.isEOF() {
			p.parseError(p.location(), "unterminated tree block")
			return
		}
		p.treeEntry(path)
	}
}

// treePath reads a `/a/b/c`, `.a/b`, or `:a/b` path. A leading `.` or
// `:` is accepted with a warning (SUPPLEMENTED: the original never
// normalizes these to `/`, it only warns; we do the same and store
// segments as given).
func (p *Parser) treePath(pathOpRequired bool) ([]string, ast.PathOp, bool) {
	lt := p.next()
	op := ast.PathSlash
	sawSep := false

	switch {
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Slash:
		sawSep = true
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Dot:
		op = ast.PathDot
		sawSep = true
		p.ctx.Report(lt.Location, diag.Warning, diag.KindSyntactic, "relative paths with . are unusual outside a proc body")
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Colon:
		op = ast.PathColon
		sawSep = true
		p.ctx.Report(lt.Location, diag.Warning, diag.KindSyntactic, "relative paths with : are unusual outside a proc body")
	default:
		p.putBack(lt)
	}

	if pathOpRequired && !sawSep {
		return nil, op, false
	}

	var segments []string
	for {
		name, ok := p.ident()
		if !ok {
			break
		}
		segments = append(segments, name)
		if !p.exact(lexer.Slash) {
			break
		}
	}
	if len(segments) == 0 && !sawSep {
		return nil, op, false
	}
	return segments, op, true
}

// treeEntry parses one declaration at path: a nested block, a var, a
// proc (with its body buffered and parsed independently), or a bare
// type declaration.
func (p *Parser) treeEntry(path []string) {
	segments, _, ok := p.treePath(false)
	if !ok {
		// Not a path; resynchronize past one token to avoid looping
		// forever on garbage input.
		lt := p.next()
		if lt.Token.Kind == lexer.EOF {
			return
		}
		if lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Semicolon {
			return
		}
		p.parseError(lt.Location, "expected a tree path but found %s", lt.Token.Display())
		return
	}
	full := append(append([]string(nil), path...), segments...)

	lt := p.next()
	switch {
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.LBrace:
		start := lt.Location
		p.treeBlock(full)
		if p.ann != nil {
			p.ann.Insert(start, p.location(), annotation.Annotation{Kind: annotation.TreeBlock, Path: full})
		}
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Equal:
		p.putBack(lt)
		p.addVar(full, nil)
		p.exact(lexer.Semicolon)
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.LParen:
		p.addProc(full, lt.Location)
	default:
		p.putBack(lt)
		isVar := false
		for i := 0; i+1 < len(full); i++ {
			if full[i] == "var" {
				isVar = true
			}
		}
		if len(full) > 0 && full[len(full)-1] == "var" {
			// Bare `/datum/var` with no name is a malformed declaration;
			// just register the tree node.
			p.tree.AddEntry(full)
		} else if isVar {
			p.addVar(full[:len(full)-1], &full[len(full)-1])
		} else {
			p.tree.AddEntry(full)
		}
		p.comma_or_semicolon_or_brace()
	}
}

func (p *Parser) comma_or_semicolon_or_brace() {
	lt := p.next()
	if lt.Token.Kind == lexer.Punct && (lt.Token.PunctKind == lexer.Semicolon || lt.Token.PunctKind == lexer.Comma) {
		return
	}
	p.putBack(lt)
}

// addVar records a var declaration against the type that owns it (the
// path before its `var` segment), discarding array-size annotations via
// varAnnotations and recording a textual form of an optional `= expr`
// default.
func (p *Parser) addVar(path []string, nameOverride *string) {
	varPath := path
	name := ""
	if nameOverride != nil {
		name = *nameOverride
	} else if len(varPath) > 0 {
		name = varPath[len(varPath)-1]
		varPath = varPath[:len(varPath)-1]
	}
	for i, s := range varPath {
		if s == "var" {
			varPath = varPath[:i]
			break
		}
	}
	p.varAnnotations()
	def := ""
	if p.exact(lexer.Equal) {
		expr, _ := p.expression()
		def = describeExpr(expr)
	}
	if p.ann != nil {
		p.ann.Insert(p.location(), p.location(), annotation.Annotation{Kind: annotation.Variable, Path: append(append([]string(nil), varPath...), name)})
	}
	p.tree.AddVar(varPath, varVar(varPath, name, def))
}

// varAnnotations discards any number of `[...]` array-size groups
// following a var's name, per SPEC_FULL.md's supplemented feature.
func (p *Parser) varAnnotations() {
	for p.peekIsLBracket() {
		p.ignoreGroup(lexer.LBracket, lexer.RBracket)
	}
}

func (p *Parser) peekIsLBracket() bool {
	lt := p.next()
	p.putBack(lt)
	return lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.LBracket
}

// addProc parses a parenthesized parameter list (already past the
// opening paren) then buffers the proc body as a flat token tree and
// parses it with an independent sub-parser, so a malformed body cannot
// desynchronize the rest of the file's tree parse.
func (p *Parser) addProc(path []string, headerLoc location.Location) {
	params := p.properParameters()
	if p.ann != nil {
		p.ann.Insert(headerLoc, p.location(), annotation.Annotation{Kind: annotation.ProcHeader, Path: path})
	}
	owner := path[:len(path)-1]
	if n := len(owner); n > 0 && (owner[n-1] == "proc" || owner[n-1] == "verb") {
		owner = owner[:n-1]
	}
	p.tree.AddProc(owner, procVar(path, params))

	lt := p.next()
	if !(lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.LBrace) {
		p.putBack(lt)
		p.simpleStatementOrSemicolon()
		p.procsGood++
		return
	}
	start := lt.Location
	p.putBack(lt)
	bodyToks := p.readAnyTT()
	errsBefore := len(p.ctx.Errors())
	sub := newFromTokens(bodyToks, p.ctx, p.ann, p.tree)
	sub.block()
	if p.ann != nil {
		p.ann.Insert(start, p.location(), annotation.Annotation{Kind: annotation.ProcBody, Path: path})
	}
	bodyBad := false
	for _, d := range p.ctx.Errors()[errsBefore:] {
		if d.Severity == diag.Error {
			bodyBad = true
		}
	}
	if bodyBad {
		p.procsBad++
	} else {
		p.procsGood++
	}
}

func (p *Parser) simpleStatementOrSemicolon() {
	if p.exact(lexer.Semicolon) {
		return
	}
	p.statement()
}

// readBlockTokens buffers tokens from just after an already-consumed
// `{` through its matching `}`, using readAnyTT's balanced-group logic
// recursively for nested braces/parens/brackets.
func (p *Parser) readBlockTokens() []lexer.LocatedToken {
	var out []lexer.LocatedToken
	for {
		if p.isEOF() {
			return out
		}
		lt := p.next()
		if lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.RBrace {
			return out
		}
		p.putBack(lt)
		out = append(out, p.readAnyTT()...)
	}
}

// properParameters parses the comma-separated parameter list already
// past the opening `(`.
func (p *Parser) properParameters() []ast.Parameter {
	return separated(p, lexer.RParen, true, p.procParameter)
}

func (p *Parser) procParameter() (ast.Parameter, bool) {
	if p.exact(lexer.DotDotDot) {
		return ast.Parameter{Name: "..."}, true
	}
	segments, _, ok := p.treePath(false)
	if !ok {
		return ast.Parameter{}, false
	}
	name := ""
	pathOnly := segments
	if len(segments) > 0 {
		name = segments[len(segments)-1]
		pathOnly = segments[:len(segments)-1]
	}
	param := ast.Parameter{Path: pathOnly, Name: name}
	p.varAnnotations()
	if p.exact(lexer.Equal) {
		expr, _ := p.expression()
		param.Default = &expr
	}
	if it, ok := p.inputSpecifier(false); ok {
		param.InputType = it.Type
		param.InList = it.InList
	}
	return param, true
}

// inputSpecifierResult bundles the `as T|U` and optional `in expr`
// parts of an input specifier.
type inputSpecifierResult struct {
	Type   ast.InputType
	InList *ast.Expression
}

// inputSpecifier parses `as type|type... [in expr]`, returning ok=false
// without consuming anything when no `as` follows. A missing specifier
// is never warned about, and inForLoop does not change the result.
func (p *Parser) inputSpecifier(inForLoop bool) (inputSpecifierResult, bool) {
	if !p.exactIdent("as") {
		return inputSpecifierResult{}, false
	}
	var result ast.InputType
	for {
		name, ok := p.ident()
		if !ok {
			break
		}
		if t, ok := ast.InputTypeFromString(name); ok {
			result |= t
		} else {
			p.ctx.Reportf(p.location(), diag.Warning, diag.KindSemanticHint, "unknown input type %q", name)
		}
		if !p.exactPipe() {
			break
		}
	}
	res := inputSpecifierResult{Type: result}
	if p.exactIdentPunct(lexer.In) {
		expr, _ := p.expression()
		res.InList = &expr
	}
	return res, true
}

func (p *Parser) exactPipe() bool {
	lt := p.next()
	if lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Pipe {
		return true
	}
	p.putBack(lt)
	return false
}

func (p *Parser) exactIdentPunct(kind lexer.PunctKind) bool {
	lt := p.next()
	if lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == kind {
		return true
	}
	p.putBack(lt)
	return false
}

// pathSeparator reads one of the three path-joining punctuation forms
// used by prefab parsing: `/`, `.` or `:`.
func (p *Parser) pathSeparator() (ast.PathOp, bool) {
	lt := p.next()
	switch {
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Slash:
		return ast.PathSlash, true
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Dot:
		return ast.PathDot, true
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Colon:
		return ast.PathColon, true
	default:
		p.putBack(lt)
		return 0, false
	}
}

// prefab parses a typed path literal: one or more (PathOp Ident) pairs
// followed by an optional `{name=expr; ...}` override block.
func (p *Parser) prefab() (ast.Prefab, bool) {
	op, ok := p.pathSeparator()
	if !ok {
		return ast.Prefab{}, false
	}
	name, ok := p.ident()
	if !ok {
		p.parseError(p.location(), "expected an identifier after path separator")
		return ast.Prefab{}, false
	}
	return p.prefabRest([]ast.PrefabPart{{Op: op, Ident: name}})
}

// prefabRest continues a prefab path already seeded with parts (used
// when the caller has already consumed the first separator/ident pair,
// e.g. a bare-`.`-prefixed path in term()).
func (p *Parser) prefabRest(parts []ast.PrefabPart) (ast.Prefab, bool) {
	for {
		op, ok := p.pathSeparator()
		if !ok {
			break
		}
		name, ok := p.ident()
		if !ok {
			p.parseError(p.location(), "expected an identifier after path separator")
			break
		}
		parts = append(parts, ast.PrefabPart{Op: op, Ident: name})
	}
	pf := ast.Prefab{Path: parts}
	if p.exact(lexer.LBrace) {
		// prefabVar consumes each override's trailing `;`.
		for !p.exact(lexer.RBrace) {
			v, ok := p.prefabVar()
			if !ok {
				p.parseError(p.location(), "expected a var override or } in prefab")
				break
			}
			pf.Vars = append(pf.Vars, v)
		}
	}
	return pf, true
}

func (p *Parser) prefabVar() (ast.PrefabVar, bool) {
	name, ok := p.ident()
	if !ok {
		return ast.PrefabVar{}, false
	}
	if !p.exact(lexer.Equal) {
		p.parseError(p.location(), "expected = after prefab override name")
		return ast.PrefabVar{}, false
	}
	expr, _ := p.expression()
	if !p.exact(lexer.Semicolon) {
		lt := p.next()
		p.putBack(lt)
	}
	return ast.PrefabVar{Name: name, Value: expr}, true
}

// describeExpr renders an expression's surface form well enough for the
// objtree's textual Var.Default field; this core does not evaluate
// expressions (spec Non-goal), so only a best-effort description is
// recorded, not a value.
func describeExpr(e ast.Expression) string {
	if e.Kind == ast.ExprBase && e.Term.Kind == ast.TermIdent {
		return e.Term.Name
	}
	return "<expr>"
}
