// Package parser implements the recursive-descent parser described in
// spec §4.3: single-token lookahead, a Pratt/precedence-climbing
// expression parser driven by the optable, and token-tree buffering so
// a malformed proc body doesn't abort the rest of the tree.
package parser

import (
	"github.com/kestrelscript/dmtree/annotation"
	"github.com/kestrelscript/dmtree/diag"
	"github.com/kestrelscript/dmtree/lexer"
	"github.com/kestrelscript/dmtree/location"
	"github.com/kestrelscript/dmtree/objtree"
)

// Parser walks a token stream into an objtree.Tree, recording
// annotations and diagnostics as it goes. Most call sites put back at
// most one token, matching the lexer's own one-slot discipline, but a
// handful of disambiguation points (e.g. distinguishing a for-loop's
// three forms) need two tokens of lookahead, so put-back is a small
// LIFO queue rather than a single slot.
type Parser struct {
	lex  tokenSource
	ctx  *diag.Context
	ann  *annotation.Tree
	tree *objtree.Tree

	queue      []lexer.LocatedToken
	pendingEOF bool

	fallback location.Location

	procsGood int
	procsBad  int
}

// tokenSource abstracts *lexer.Lexer so the parser can be driven either
// by a live lexer or by a buffered token-tree slice (see read_any_tt /
// ignore_group), matching the original's design where proc bodies are
// first captured as a flat token list, then re-parsed by an independent
// sub-parser.
type tokenSource interface {
	Next() (lexer.LocatedToken, bool)
}

// sliceSource replays a fixed slice of tokens, used to parse a
// previously buffered proc body in isolation.
type sliceSource struct {
	toks []lexer.LocatedToken
	pos  int
}

func (s *sliceSource) Next() (lexer.LocatedToken, bool) {
	if s.pos >= len(s.toks) {
		return lexer.LocatedToken{}, false
	}
	t := s.toks[s.pos]
	s.pos++
	return t, true
}

// New returns a Parser reading from lx, reporting diagnostics to ctx and
// recording annotations into ann (which may be nil to skip annotation
// tracking entirely).
func New(lx *lexer.Lexer, ctx *diag.Context, ann *annotation.Tree) *Parser {
	return &Parser{lex: lx, ctx: ctx, ann: ann, tree: objtree.WithBuiltins()}
}

func newFromTokens(toks []lexer.LocatedToken, ctx *diag.Context, ann *annotation.Tree, tree *objtree.Tree) *Parser {
	return &Parser{lex: &sliceSource{toks: toks}, ctx: ctx, ann: ann, tree: tree}
}

// Run parses a complete file into the object tree, per spec §4.1's
// top-level "root" operation, and returns it regardless of whether any
// diagnostics were reported (errors are recorded, not fatal).
func (p *Parser) Run() *objtree.Tree {
	p.root()
	_ = p.tree.Finalize(p.ctx.AnyErrorSeverity())
	return p.tree
}

// next returns the next token, taking put-back tokens first. The lexer's
// synthetic trailing Newline is skipped. Once the source is exhausted,
// next returns a synthetic token with Kind == lexer.EOF so callers can
// treat it uniformly with real tokens, matching the original's sentinel
// approach.
func (p *Parser) next() lexer.LocatedToken {
	if n := len(p.queue); n > 0 {
		lt := p.queue[n-1]
		p.queue = p.queue[:n-1]
		return lt
	}
	if p.pendingEOF {
		return lexer.LocatedToken{Location: p.fallback, Token: lexer.Token{Kind: lexer.EOF}}
	}
	lt, ok := p.lex.Next()
	for ok && lt.Token.Kind == lexer.Newline {
		lt, ok = p.lex.Next()
	}
	if !ok {
		p.pendingEOF = true
		return lexer.LocatedToken{Location: p.fallback, Token: lexer.Token{Kind: lexer.EOF}}
	}
	p.fallback = lt.Location
	return lt
}

// putBack returns lt to be read again by the next call to next.
func (p *Parser) putBack(lt lexer.LocatedToken) {
	p.queue = append(p.queue, lt)
}

func (p *Parser) location() location.Location {
	return p.fallback
}

// parseError records a syntax-error diagnostic at loc.
func (p *Parser) parseError(loc location.Location, format string, args ...any) {
	p.ctx.Reportf(loc, diag.Error, diag.KindSyntactic, format, args...)
}

// exact consumes the next token if it is exactly Punct(kind), reporting
// expected/not-present semantics via ok.
func (p *Parser) exact(kind lexer.PunctKind) bool {
	lt := p.next()
	if lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == kind {
		return true
	}
	p.putBack(lt)
	return false
}

// ident consumes and returns the next Ident token's text, or ("", false)
// if the next token isn't one (putting it back).
func (p *Parser) ident() (string, bool) {
	lt := p.next()
	if lt.Token.Kind == lexer.Ident {
		return lt.Token.Text, true
	}
	p.putBack(lt)
	return "", false
}

// exactIdent consumes the next token only if it is the identifier name.
func (p *Parser) exactIdent(name string) bool {
	lt := p.next()
	if lt.Token.Kind == lexer.Ident && lt.Token.Text == name {
		return true
	}
	p.putBack(lt)
	return false
}

// peekIdentIs reports whether the next token is the identifier name,
// without consuming it.
func (p *Parser) peekIdentIs(name string) bool {
	lt := p.next()
	p.putBack(lt)
	return lt.Token.Kind == lexer.Ident && lt.Token.Text == name
}

// isEOF reports whether the next token is the EOF sentinel, without
// consuming it.
func (p *Parser) isEOF() bool {
	lt := p.next()
	p.putBack(lt)
	return lt.Token.Kind == lexer.EOF
}

// readAnyTT recursively buffers one balanced (), {} or [] group, or a
// single token if the next token isn't an opening delimiter, into a
// flat token list: the mechanism root() uses to isolate a proc body's
// tokens so a malformed body can't desynchronize the rest of the tree
// parse.
func (p *Parser) readAnyTT() []lexer.LocatedToken {
	lt := p.next()
	var closer lexer.PunctKind
	switch {
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.LParen:
		closer = lexer.RParen
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.LBrace:
		closer = lexer.RBrace
	case lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.LBracket:
		closer = lexer.RBracket
	default:
		return []lexer.LocatedToken{lt}
	}
	out := []lexer.LocatedToken{lt}
	for {
		if p.isEOF() {
			return out
		}
		next := p.next()
		if next.Token.Kind == lexer.Punct && next.Token.PunctKind == closer {
			out = append(out, next)
			return out
		}
		p.putBack(next)
		if next.Token.Kind == lexer.Punct && (next.Token.PunctKind == lexer.RParen || next.Token.PunctKind == lexer.RBrace || next.Token.PunctKind == lexer.RBracket) {
			// A closer of another kind ends this unbalanced group; it is
			// left for the enclosing group to match.
			return out
		}
		out = append(out, p.readAnyTT()...)
	}
}

// ignoreGroup skips one balanced bracket group (used to discard
// `var/list/x[N]` array-size annotations), per SPEC_FULL.md's
// supplemented var_annotations feature.
func (p *Parser) ignoreGroup(open, closeKind lexer.PunctKind) {
	if !p.exact(open) {
		return
	}
	depth := 1
	for depth > 0 {
		if p.isEOF() {
			return
		}
		lt := p.next()
		if lt.Token.Kind != lexer.Punct {
			continue
		}
		switch lt.Token.PunctKind {
		case open:
			depth++
		case closeKind:
			depth--
		}
	}
}

// separated parses a comma-separated list of items terminated by
// `closer`, tolerating a single leading or trailing empty slot when
// allowEmpty is true (spec's "separated()" generic list helper,
// SUPPLEMENTED in SPEC_FULL.md).
func separated[T any](p *Parser, closer lexer.PunctKind, allowEmpty bool, parseOne func() (T, bool)) []T {
	var out []T
	for {
		if p.exact(closer) {
			return out
		}
		v, ok := parseOne()
		if !ok {
			if allowEmpty {
				// Treat a failed parse at this position as an empty slot and
				// keep scanning for the terminator, matching the original's
				// tolerance for a single blank list entry.
				lt := p.next()
				if lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == closer {
					return out
				}
				if lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Comma {
					continue
				}
				p.putBack(lt)
			}
			return out
		}
		out = append(out, v)
		lt := p.next()
		if lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == closer {
			return out
		}
		if lt.Token.Kind == lexer.Punct && lt.Token.PunctKind == lexer.Comma {
			continue
		}
		p.parseError(lt.Location, "expected , or %s but found %s", closer.Text(), lt.Token.Display())
		return out
	}
}
