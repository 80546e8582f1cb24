package lexer

import (
	"strconv"

	"github.com/kestrelscript/dmtree/location"
)

// Kind tags the variant a Token holds.
type Kind int

const (
	// EOF is a sentinel the lexer never emits; the parser uses it to
	// terminate its own lookahead handling.
	EOF Kind = iota
	Punct
	Ident
	String
	InterpStringBegin
	InterpStringPart
	InterpStringEnd
	Resource
	Int
	Float
	// Newline is the single synthetic token emitted once, after the
	// underlying stream is exhausted.
	Newline
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "eof"
	case Punct:
		return "punct"
	case Ident:
		return "ident"
	case String:
		return "string"
	case InterpStringBegin:
		return "interp-begin"
	case InterpStringPart:
		return "interp-part"
	case InterpStringEnd:
		return "interp-end"
	case Resource:
		return "resource"
	case Int:
		return "int"
	case Float:
		return "float"
	case Newline:
		return "newline"
	default:
		return "unknown"
	}
}

// Token is a tagged variant over everything the lexer can emit. Rather
// than a sum type (Go has none), the fields relevant to a given Kind are
// populated and the rest left zero; Kind is always the discriminant.
type Token struct {
	Kind Kind

	// Punct
	PunctKind PunctKind

	// Ident: Text is the name, FollowedByWS records whether the byte
	// immediately following was a space or tab.
	Text         string
	FollowedByWS bool

	// String / InterpStringBegin / InterpStringPart / InterpStringEnd /
	// Resource reuse Text for their payload.

	// Int / Float
	IntValue   int32
	FloatValue float32
}

// LocatedToken pairs a Token with the location of its first byte.
type LocatedToken struct {
	Location location.Location
	Token    Token
}

func punctToken(k PunctKind) Token { return Token{Kind: Punct, PunctKind: k} }

// alwaysSeparatingPunct is the set of punctuation kinds that, on either
// side of a pair, force a separator regardless of the other token —
// ported verbatim from lexer.rs's Token::separate_from match arm that
// lists these by name before falling through to the ident-based rules.
var alwaysSeparatingPunct = map[PunctKind]bool{
	EqualEqual: true, BangEqual: true, Percent: true, AmpAmp: true,
	AmpEqual: true, Star: true, StarStar: true, StarEqual: true,
	Plus: true, PlusEqual: true, Minus: true, MinusEqual: true,
	SlashEqual: true, Colon: true, Less: true, LessLess: true,
	LessLessEqual: true, LessEqual: true, LessGreater: true, Equal: true,
	Greater: true, GreaterEqual: true, GreaterGreater: true,
	GreaterGreaterEqual: true, Quest: true, CaretEqual: true,
	PipeEqual: true, PipePipe: true,
}

// SeparatesFrom reports whether a single space must be inserted between
// prev and this token when reproducing source text, the rule the spec's
// round-trip testable property (§8 invariant 2) exercises. Ported from
// lexer.rs's Token::separate_from rule table.
func (t Token) SeparatesFrom(prev Token) bool {
	if prev.Kind == Punct && alwaysSeparatingPunct[prev.PunctKind] {
		return true
	}
	if t.Kind == Punct && alwaysSeparatingPunct[t.PunctKind] {
		return true
	}

	switch {
	case prev.Kind == Ident && prev.FollowedByWS:
		return true
	case prev.Kind == Punct && prev.PunctKind == Comma:
		return true
	case prev.Kind == Ident && t.Kind == Punct:
		return false
	case prev.Kind == Ident && t.Kind == InterpStringEnd:
		return false
	case prev.Kind == Ident && t.Kind == InterpStringPart:
		return false
	case prev.Kind == Punct && t.Kind == Ident:
		return false
	case prev.Kind == InterpStringBegin && t.Kind == Ident:
		return false
	case prev.Kind == InterpStringPart && t.Kind == Ident:
		return false
	case prev.Kind == Ident:
		return true
	case t.Kind == Ident:
		return true
	default:
		return false
	}
}

// Display renders the token approximately as it appeared in source,
// enough for diagnostics and for the round-trip property in tests.
func (t Token) Display() string {
	switch t.Kind {
	case Punct:
		return t.PunctKind.Text()
	case Ident:
		return t.Text
	case String, Resource:
		return t.Text
	case InterpStringBegin, InterpStringPart, InterpStringEnd:
		return t.Text
	case Int:
		return strconv.FormatInt(int64(t.IntValue), 10)
	case Float:
		return strconv.FormatFloat(float64(t.FloatValue), 'g', -1, 32)
	case Newline:
		return "\n"
	case EOF:
		return "<eof>"
	default:
		return "?"
	}
}

