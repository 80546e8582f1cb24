package lexer

import (
	"math"
	"strconv"
	"strings"

	"github.com/kestrelscript/dmtree/diag"
	"github.com/kestrelscript/dmtree/location"
)

// directiveState tracks progress through a `#warn`/`#error`-style
// preprocessor line, so the rest of the line can be lexed as an opaque
// "stringy" run of text rather than ordinary tokens.
type directiveState int

const (
	dirNone directiveState = iota
	dirHash
	dirOrdinary
	dirStringy
)

// interpFrame is one level of nested `"...[ expr ]..."` string
// interpolation: the closing delimiter to resume reading with once the
// bracketed expression's tokens are exhausted, and the bracket-depth
// counter tracking how many `[`/`]` pairs have been seen so a `[` inside
// the expression itself (e.g. a list literal) doesn't prematurely close
// the interpolation.
type interpFrame struct {
	end          []byte
	bracketDepth int
}

// Lexer tokenizes a single source file's byte stream into Tokens, per
// spec §4.2. It reads through a location.Tracker so every token carries
// an exact file/line/column, and reports I/O and lexical problems to a
// shared diag.Context rather than failing outright.
type Lexer struct {
	tracker *location.Tracker
	ctx     *diag.Context
	file    location.FileID

	pending  bool
	pendingB byte
	curLoc   location.Location

	atLineHead bool
	directive  directiveState

	interp []interpFrame

	finalNewlineEmitted bool
}

// New returns a Lexer reading from src, tagging every reported
// diagnostic and Location with file.
func New(ctx *diag.Context, file location.FileID, src location.ByteSource) *Lexer {
	return &Lexer{
		tracker:    location.NewTracker(src, file),
		ctx:        ctx,
		file:       file,
		atLineHead: true,
		directive:  dirNone,
	}
}

// readByte returns the next raw byte, first draining the one-byte
// put-back buffer. It reports I/O errors as diagnostics (the stream is
// still treated as exhausted) and maintains atLineHead/directive state.
func (l *Lexer) readByte() (byte, bool) {
	if l.pending {
		l.pending = false
		return l.pendingB, true
	}
	prevLine := l.curLoc.Line
	b, loc, err, ok := l.tracker.Next()
	if err != nil {
		l.ctx.Reportf(loc, diag.Error, diag.KindIO, "i/o error: %v", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	l.curLoc = loc
	if prevLine != 0 && loc.Line > prevLine {
		l.atLineHead = true
		l.directive = dirNone
	}
	if b != '\t' && b != ' ' {
		l.atLineHead = false
	}
	return b, true
}

// putBack returns b to be read again by the next readByte call. At most
// one byte may be pending at a time, matching the original's single-slot
// put_back.
func (l *Lexer) putBack(b byte) {
	if l.pending {
		panic("lexer: cannot put_back twice")
	}
	l.pending = true
	l.pendingB = b
}

// location returns the location of the most recently read byte.
func (l *Lexer) location() location.Location {
	return l.curLoc
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

func isDigitInRadix(b byte, radix int) bool {
	switch radix {
	case 16:
		return isDigitByte(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
	case 8:
		return b >= '0' && b <= '7'
	default:
		return isDigitByte(b)
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || isDigitByte(b)
}

// fromLatin1 widens a Latin-1 byte string to its Go string, one byte
// becoming one rune, matching the original's from_latin1 (DM source is
// not necessarily UTF-8).
func fromLatin1(bs []byte) string {
	var sb strings.Builder
	sb.Grow(len(bs))
	for _, b := range bs {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// skipBlockComment consumes a /* ... */ comment, already past the
// opening delimiter, honoring nesting.
func (l *Lexer) skipBlockComment() {
	depth := 1
	var prev byte
	havePrev := false
	for {
		b, ok := l.readByte()
		if !ok {
			l.ctx.Reportf(l.location(), diag.Error, diag.KindLexical, "still skipping comments at end of file")
			return
		}
		if havePrev && prev == '/' && b == '*' {
			depth++
			havePrev = false
			continue
		}
		if havePrev && prev == '*' && b == '/' {
			depth--
			havePrev = false
			if depth == 0 {
				return
			}
			continue
		}
		prev = b
		havePrev = true
	}
}

// skipLineComment consumes a // comment through the end of line,
// treating a backslash immediately before the newline as a line
// continuation rather than an end.
func (l *Lexer) skipLineComment() {
	for {
		b, ok := l.readByte()
		if !ok {
			return
		}
		if b == '\\' {
			if _, ok := l.readByte(); !ok {
				return
			}
			continue
		}
		if b == '\n' {
			return
		}
	}
}

// readNumberInner reads the raw digits (and, unless the literal is hex, a
// fractional part and exponent) of a numeric literal starting at first, returning
// whether it parsed as an integer, its radix, and the collected text.
func (l *Lexer) readNumberInner(first byte) (integer bool, radix int, buf string) {
	var sb strings.Builder
	sb.WriteByte(first)
	radix = 10
	integer = true

	if first == '0' {
		b, ok := l.readByte()
		if ok && (b == 'x' || b == 'X') {
			radix = 16
			sb.WriteByte(b)
			for {
				b, ok := l.readByte()
				if !ok {
					break
				}
				if isDigitInRadix(b, 16) {
					sb.WriteByte(b)
					continue
				}
				l.putBack(b)
				break
			}
			return true, radix, sb.String()
		}
		if ok {
			l.putBack(b)
		}
		radix = 8
	}

	for {
		b, ok := l.readByte()
		if !ok {
			break
		}
		if isDigitByte(b) {
			sb.WriteByte(b)
			continue
		}
		l.putBack(b)
		break
	}

	// 1.#INF special float form.
	b, ok := l.readByte()
	if ok && b == '.' {
		nb, nok := l.readByte()
		if nok && nb == '#' {
			matched := false
			want := "INF"
			var got strings.Builder
			for i := 0; i < len(want); i++ {
				cb, cok := l.readByte()
				if !cok {
					break
				}
				got.WriteByte(cb)
				if got.String() != want[:i+1] {
					break
				}
				if i == len(want)-1 {
					matched = true
				}
			}
			if matched {
				return false, radix, "inf"
			}
			sb.WriteByte('.')
			sb.WriteByte('#')
			sb.WriteString(got.String())
			integer = false
			return integer, radix, sb.String()
		}
		if nok {
			l.putBack(nb)
		}
		integer = false
		sb.WriteByte('.')
		for {
			b, ok := l.readByte()
			if !ok {
				break
			}
			if isDigitByte(b) {
				sb.WriteByte(b)
				continue
			}
			l.putBack(b)
			break
		}
	} else if ok {
		l.putBack(b)
	}

	// Exponent.
	b, ok = l.readByte()
	if ok && (b == 'e' || b == 'E') {
		var exp strings.Builder
		exp.WriteByte(b)
		sign, sok := l.readByte()
		if sok && (sign == '+' || sign == '-') {
			exp.WriteByte(sign)
		} else if sok {
			l.putBack(sign)
		}
		wroteDigit := false
		for {
			d, dok := l.readByte()
			if !dok {
				break
			}
			if isDigitByte(d) {
				exp.WriteByte(d)
				wroteDigit = true
				continue
			}
			l.putBack(d)
			break
		}
		if wroteDigit {
			integer = false
			sb.WriteString(exp.String())
		} else {
			// Not actually an exponent; push everything back is not
			// possible byte-by-byte here, so treat the collected bytes as
			// trailing garbage the caller's parse will reject explicitly.
			sb.WriteString(exp.String())
		}
	} else if ok {
		l.putBack(b)
	}

	return integer, radix, sb.String()
}

// readNumber reads a full numeric literal token starting at first.
func (l *Lexer) readNumber(first byte) Token {
	integer, radix, buf := l.readNumberInner(first)
	if integer {
		digits := buf
		if radix == 16 {
			// strconv only accepts the 0x prefix with base 0.
			digits = buf[2:]
		}
		v, err := strconv.ParseInt(digits, radix, 32)
		if err != nil {
			if radix == 10 {
				if f, ferr := strconv.ParseFloat(buf, 32); ferr == nil {
					l.ctx.Reportf(l.location(), diag.Warning, diag.KindLexical,
						"precision loss of integer constant %q to %v", buf, f)
					return Token{Kind: Float, FloatValue: float32(f)}
				}
			}
			l.ctx.Reportf(l.location(), diag.Error, diag.KindLexical,
				"bad base-%d integer %q: %v", radix, buf, err)
			return Token{Kind: Int, IntValue: 0}
		}
		return Token{Kind: Int, IntValue: int32(v)}
	}
	if buf == "inf" {
		return Token{Kind: Float, FloatValue: float32(math.Inf(1))}
	}
	f, err := strconv.ParseFloat(buf, 32)
	if err != nil {
		l.ctx.Reportf(l.location(), diag.Error, diag.KindLexical, "bad float %q: %v", buf, err)
		return Token{Kind: Float, FloatValue: 0}
	}
	return Token{Kind: Float, FloatValue: float32(f)}
}

// readIdent reads a bare identifier/keyword body starting at first.
func (l *Lexer) readIdent(first byte) string {
	var sb strings.Builder
	sb.WriteByte(first)
	for {
		b, ok := l.readByte()
		if !ok {
			break
		}
		if isIdentByte(b) {
			sb.WriteByte(b)
			continue
		}
		l.putBack(b)
		break
	}
	return sb.String()
}

// readResource reads a `'...'` file-path literal's body, already past
// the opening quote.
func (l *Lexer) readResource() string {
	var buf []byte
	for {
		b, ok := l.readByte()
		if !ok {
			l.ctx.Reportf(l.location(), diag.Error, diag.KindLexical, "unterminated resource literal")
			break
		}
		if b == '\'' {
			break
		}
		buf = append(buf, b)
	}
	return fromLatin1(buf)
}

// readString reads string content up to end (a byte sequence like `"`
// or `"}`), honoring backslash-escape deferral and `[` interpolation
// opens. interpClosed indicates this call is resuming after an
// interpolated expression (so the result is an InterpStringPart/End
// rather than a plain String/InterpStringBegin).
func (l *Lexer) readString(end []byte, interpClosed bool) Token {
	var buf []byte
	matched := 0
	interpOpened := false

readLoop:
	for {
		b, ok := l.readByte()
		if !ok {
			l.ctx.Reportf(l.location(), diag.Error, diag.KindLexical, "unterminated string literal")
			break
		}

		if b == end[matched] {
			matched++
			if matched == len(end) {
				break
			}
			continue
		}
		if matched > 0 {
			buf = append(buf, end[:matched]...)
			matched = 0
			if b == end[0] {
				matched = 1
				continue
			}
		}

		switch b {
		case '\\':
			nb, nok := l.readByte()
			if !nok {
				buf = append(buf, '\\')
				break readLoop
			}
			switch nb {
			case '"', '\'', '\\', '[', ']':
				buf = append(buf, '\\', nb)
			default:
				buf = append(buf, '\\', nb)
			}
		case '[':
			l.interp = append(l.interp, interpFrame{end: append([]byte(nil), end...), bracketDepth: 0})
			interpOpened = true
			break readLoop
		default:
			buf = append(buf, b)
		}
	}

	text := fromLatin1(buf)
	switch {
	case interpOpened && interpClosed:
		return Token{Kind: InterpStringPart, Text: text}
	case interpOpened:
		return Token{Kind: InterpStringBegin, Text: text}
	case interpClosed:
		return Token{Kind: InterpStringEnd, Text: text}
	default:
		return Token{Kind: String, Text: text}
	}
}

// skipWS consumes whitespace. When skipNewlines is true, at most one
// newline is consumed and treated as ordinary whitespace (the form used
// mid-expression, e.g. after a binary operator); once that newline (if
// any) is seen, further newlines stop the skip. Returns the first
// non-whitespace byte read, if any.
func (l *Lexer) skipWS(skipNewlines bool) (byte, bool) {
	remaining := 1
	if skipNewlines {
		remaining = 2
	}
	for {
		b, ok := l.readByte()
		if !ok {
			return 0, false
		}
		switch b {
		case ' ', '\t':
			continue
		case '\n':
			if remaining > 1 {
				remaining--
				continue
			}
			return b, true
		default:
			return b, true
		}
	}
}

// Next returns the next token from the stream, or ok == false once the
// stream (including the single synthetic trailing Newline) is
// exhausted.
func (l *Lexer) Next() (LocatedToken, bool) {
	foundIllegal := false

	for {
		if l.directive == dirStringy {
			loc := l.location()
			tok := l.readString([]byte("\n"), false)
			l.directive = dirNone
			return LocatedToken{Location: loc, Token: tok}, true
		}

		wasHead, prevLine := l.atLineHead, l.location().Line
		b, ok := l.readByte()
		if !ok {
			if !l.finalNewlineEmitted {
				l.finalNewlineEmitted = true
				return LocatedToken{Location: l.tracker.Current(), Token: Token{Kind: Newline}}, true
			}
			return LocatedToken{}, false
		}
		// readByte clears atLineHead on reading b itself, so whether b
		// opens its line is decided from the state before the read.
		atHead := wasHead || l.location().Line > prevLine

		switch {
		case b == ' ' || b == '\t':
			continue
		case b == '\n':
			continue
		case b == '\\':
			// Line continuation: swallow, keep scanning.
			continue
		case b == '@':
			// TODO: parse these rather than ignoring them, matching the
			// original's own unimplemented raw-string form.
			continue
		}

		loc := l.location()

		if kind, ok := l.readPunct(b); ok {
			switch kind {
			case Hash:
				if atHead && l.directive == dirNone {
					l.directive = dirHash
				}
				return LocatedToken{Location: loc, Token: punctToken(Hash)}, true
			case HashHash:
				return LocatedToken{Location: loc, Token: punctToken(HashHash)}, true
			case SlashStar:
				l.skipBlockComment()
				continue
			case SlashSlash:
				l.skipLineComment()
				continue
			case SingleQuote:
				text := l.readResource()
				return LocatedToken{Location: loc, Token: Token{Kind: Resource, Text: text}}, true
			case DoubleQuote:
				tok := l.readString([]byte("\""), false)
				return LocatedToken{Location: loc, Token: tok}, true
			case BlockStringOpen:
				tok := l.readString([]byte("\"}"), false)
				return LocatedToken{Location: loc, Token: tok}, true
			case LBracket:
				if n := len(l.interp); n > 0 {
					l.interp[n-1].bracketDepth++
				}
				return LocatedToken{Location: loc, Token: punctToken(LBracket)}, true
			case RBracket:
				if n := len(l.interp); n > 0 {
					if l.interp[n-1].bracketDepth > 0 {
						l.interp[n-1].bracketDepth--
						return LocatedToken{Location: loc, Token: punctToken(RBracket)}, true
					}
					frame := l.interp[n-1]
					l.interp = l.interp[:n-1]
					tok := l.readString(frame.end, true)
					return LocatedToken{Location: loc, Token: tok}, true
				}
				return LocatedToken{Location: loc, Token: punctToken(RBracket)}, true
			default:
				return LocatedToken{Location: loc, Token: punctToken(kind)}, true
			}
		}

		if isDigitByte(b) {
			tok := l.readNumber(b)
			return LocatedToken{Location: loc, Token: tok}, true
		}

		if isIdentByte(b) {
			name := l.readIdent(b)
			nb, nok := l.readByte()
			followedByWS := nok && (nb == ' ' || nb == '\t')
			if nok {
				l.putBack(nb)
			}
			if l.directive == dirHash {
				if name == "warn" || name == "error" {
					l.directive = dirStringy
				} else {
					l.directive = dirOrdinary
				}
			}
			if name == "in" {
				return LocatedToken{Location: loc, Token: punctToken(In)}, true
			}
			return LocatedToken{Location: loc, Token: Token{Kind: Ident, Text: name, FollowedByWS: followedByWS}}, true
		}

		if !foundIllegal {
			foundIllegal = true
			l.ctx.Reportf(loc, diag.Error, diag.KindLexical, "illegal byte 0x%x", b)
		}
	}
}
