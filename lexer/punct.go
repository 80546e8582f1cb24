package lexer

import "strings"

// PunctKind enumerates every entry in the punctuation table. Values map to
// byte strings (see punctText) rather than carrying the text themselves,
// so comparisons and switches stay cheap.
type PunctKind int

const (
	LBrace PunctKind = iota
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Semicolon
	Comma
	Colon
	ColonColon
	Dot
	DotDot
	DotDotDot
	Quest
	QuestDot
	QuestColon
	Tilde
	TildeEqual
	TildeBang
	HashHash
	Star
	StarStar
	StarEqual
	Slash
	SlashSlash
	SlashStar
	SlashEqual
	Percent
	PercentEqual
	Amp
	AmpAmp
	AmpEqual
	Pipe
	PipePipe
	PipeEqual
	Caret
	CaretEqual
	Plus
	PlusPlus
	PlusEqual
	Minus
	MinusMinus
	MinusEqual
	Equal
	EqualEqual
	Bang
	BangEqual
	Less
	LessEqual
	LessLess
	LessLessEqual
	LessGreater
	Greater
	GreaterEqual
	GreaterGreater
	GreaterGreaterEqual
	BlockStringOpen  // {"
	BlockStringClose // "}
	Hash
	DoubleQuote
	SingleQuote
	In // keyword lexed as punctuation, looked up after an identifier
)

type punctEntry struct {
	Text string
	Kind PunctKind
}

// punctTable lists every byte-sequence punctuation entry except `in`,
// which the lexer looks up separately after collecting an identifier
// (spec: "the table is scanned linearly for keyword entries"). The table
// is ordered so entries sharing a first byte are contiguous and shorter
// prefixes precede the longer entries that extend them, matching the
// shape read_punct's greedy-narrowing scan expects.
var punctTable = []punctEntry{
	{"{", LBrace},
	{"{\"", BlockStringOpen},
	{"}", RBrace},
	{"(", LParen},
	{")", RParen},
	{"[", LBracket},
	{"]", RBracket},
	{";", Semicolon},
	{",", Comma},
	{":", Colon},
	{"::", ColonColon},
	{".", Dot},
	{"..", DotDot},
	{"...", DotDotDot},
	{"?", Quest},
	{"?.", QuestDot},
	{"?:", QuestColon},
	{"~", Tilde},
	{"~=", TildeEqual},
	{"~!", TildeBang},
	{"\"", DoubleQuote},
	{"\"}", BlockStringClose},
	{"#", Hash},
	{"##", HashHash},
	{"'", SingleQuote},
	{"*", Star},
	{"**", StarStar},
	{"*=", StarEqual},
	{"/", Slash},
	{"//", SlashSlash},
	{"/*", SlashStar},
	{"/=", SlashEqual},
	{"%", Percent},
	{"%=", PercentEqual},
	{"&", Amp},
	{"&&", AmpAmp},
	{"&=", AmpEqual},
	{"|", Pipe},
	{"||", PipePipe},
	{"|=", PipeEqual},
	{"^", Caret},
	{"^=", CaretEqual},
	{"+", Plus},
	{"++", PlusPlus},
	{"+=", PlusEqual},
	{"-", Minus},
	{"--", MinusMinus},
	{"-=", MinusEqual},
	{"=", Equal},
	{"==", EqualEqual},
	{"!", Bang},
	{"!=", BangEqual},
	{"<", Less},
	{"<=", LessEqual},
	{"<<", LessLess},
	{"<<=", LessLessEqual},
	{"<>", LessGreater},
	{">", Greater},
	{">=", GreaterEqual},
	{">>", GreaterGreater},
	{">>=", GreaterGreaterEqual},
}

// punctByFirstByte indexes punctTable entries sharing a first byte, the
// contiguous runs read_punct scans.
var punctByFirstByte = func() map[byte][]punctEntry {
	m := make(map[byte][]punctEntry)
	for _, e := range punctTable {
		b := e.Text[0]
		m[b] = append(m[b], e)
	}
	return m
}()

// readPunct implements the greedy longest-match scan from spec §4.2:
// select the contiguous run sharing the first byte, extend the needle one
// byte at a time retaining only entries that still share it as a prefix,
// and return the longest entry matched before the retained set went
// empty, putting back any byte read past that point.
func (l *Lexer) readPunct(first byte) (PunctKind, bool) {
	candidates, ok := punctByFirstByte[first]
	if !ok {
		return 0, false
	}
	needle := string(first)
	var lastMatch *PunctKind
	for i := range candidates {
		if candidates[i].Text == needle {
			k := candidates[i].Kind
			lastMatch = &k
			break
		}
	}
	for {
		var extendable []punctEntry
		for _, e := range candidates {
			if len(e.Text) > len(needle) && strings.HasPrefix(e.Text, needle) {
				extendable = append(extendable, e)
			}
		}
		if len(extendable) == 0 {
			break
		}
		b, ok := l.readByte()
		if !ok {
			break
		}
		extended := needle + string(b)
		var filtered []punctEntry
		for _, e := range extendable {
			if strings.HasPrefix(e.Text, extended) {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			l.putBack(b)
			break
		}
		needle = extended
		candidates = filtered
		for i := range candidates {
			if candidates[i].Text == needle {
				k := candidates[i].Kind
				lastMatch = &k
				break
			}
		}
	}
	if lastMatch == nil {
		return 0, false
	}
	return *lastMatch, true
}

// Text returns the punctuation table spelling for k.
func (k PunctKind) Text() string {
	for _, e := range punctTable {
		if e.Kind == k {
			return e.Text
		}
	}
	if k == In {
		return "in"
	}
	return "?"
}
