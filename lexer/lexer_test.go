package lexer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelscript/dmtree/diag"
)

// collectTokens lexes input and returns every token up to (but not
// including) the synthetic trailing Newline, matching the test style of
// asserting on the meaningful token sequence.
func collectTokens(t *testing.T, input string) ([]Token, *diag.Context) {
	t.Helper()
	ctx := diag.NewContext()
	lx := New(ctx, 0, NewByteSliceSource([]byte(input)))
	var out []Token
	for {
		lt, ok := lx.Next()
		if !ok {
			break
		}
		if lt.Token.Kind == Newline {
			continue
		}
		out = append(out, lt.Token)
	}
	return out, ctx
}

type tokenCase struct {
	Input    string
	Expected []Token
}

func runTokenCases(t *testing.T, tests []tokenCase) {
	t.Helper()
	for _, tt := range tests {
		got, _ := collectTokens(t, tt.Input)
		assert.Equal(t, len(tt.Expected), len(got), "input %q", tt.Input)
		for i, want := range tt.Expected {
			if i >= len(got) {
				break
			}
			assert.Equal(t, want.Kind, got[i].Kind, "input %q token %d", tt.Input, i)
			assert.Equal(t, want.Display(), got[i].Display(), "input %q token %d", tt.Input, i)
		}
	}
}

func TestLexer_Punctuation(t *testing.T) {
	tests := []tokenCase{
		{
			Input: `{ } ( ) [ ] ; , `,
			Expected: []Token{
				punctToken(LBrace), punctToken(RBrace),
				punctToken(LParen), punctToken(RParen),
				punctToken(LBracket), punctToken(RBracket),
				punctToken(Semicolon), punctToken(Comma),
			},
		},
		{
			Input: `<< >> <<= == != <> ~= ~!`,
			Expected: []Token{
				punctToken(LessLess), punctToken(GreaterGreater),
				punctToken(LessLessEqual), punctToken(EqualEqual),
				punctToken(BangEqual), punctToken(LessGreater),
				punctToken(TildeEqual), punctToken(TildeBang),
			},
		},
	}
	runTokenCases(t, tests)
}

func TestLexer_IdentsAndIn(t *testing.T) {
	tests := []tokenCase{
		{
			Input: `foo bar_baz in`,
			Expected: []Token{
				{Kind: Ident, Text: "foo"},
				{Kind: Ident, Text: "bar_baz"},
				punctToken(In),
			},
		},
	}
	runTokenCases(t, tests)
}

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		input       string
		wantKind    Kind
		wantInt     int32
		wantFloat   float32
		isFloatWant bool
	}{
		{"123", Int, 123, 0, false},
		{"0x1F", Int, 31, 0, false},
		{"07", Int, 7, 0, false},
		{"010", Int, 8, 0, false},
		{"3.5", Float, 0, 3.5, true},
		{"1.#INF", Float, 0, float32(math.Inf(1)), true},
	}
	for _, tt := range tests {
		got, _ := collectTokens(t, tt.input)
		if assert.Len(t, got, 1, "input %q", tt.input) {
			assert.Equal(t, tt.wantKind, got[0].Kind, "input %q", tt.input)
			if tt.wantKind == Int {
				assert.Equal(t, tt.wantInt, got[0].IntValue, "input %q", tt.input)
			} else {
				assert.True(t, math.IsInf(float64(got[0].FloatValue), 1) || got[0].FloatValue == tt.wantFloat,
					"input %q float value %v", tt.input, got[0].FloatValue)
			}
		}
	}
}

func TestLexer_BadOctalDigitReportsErrorAndYieldsZero(t *testing.T) {
	// "08" has a leading zero (base-8 radix) but '8' is not a valid octal
	// digit, so strconv.ParseInt("08", 8, 32) fails and the lexer must
	// report an error rather than silently reading it as decimal 8.
	got, ctx := collectTokens(t, "08")
	if assert.Len(t, got, 1) {
		assert.Equal(t, Int, got[0].Kind)
		assert.Equal(t, int32(0), got[0].IntValue)
	}
	errs := ctx.Errors()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, diag.Error, errs[0].Severity)
		assert.Contains(t, errs[0].Message, "bad base-8 integer")
		assert.Contains(t, errs[0].Message, `"08"`)
	}
}

func TestLexer_IntegerOverflowToFloatIsWarning(t *testing.T) {
	got, ctx := collectTokens(t, "2147483648")
	if assert.Len(t, got, 1) {
		assert.Equal(t, Float, got[0].Kind)
		assert.Equal(t, float32(2147483648), got[0].FloatValue)
	}
	errs := ctx.Errors()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, diag.Warning, errs[0].Severity)
		assert.Contains(t, errs[0].Message, "precision loss")
	}
}

func TestLexer_StringsAndResources(t *testing.T) {
	got, _ := collectTokens(t, `"hello" 'icons/a.dmi'`)
	if assert.Len(t, got, 2) {
		assert.Equal(t, String, got[0].Kind)
		assert.Equal(t, "hello", got[0].Text)
		assert.Equal(t, Resource, got[1].Kind)
		assert.Equal(t, "icons/a.dmi", got[1].Text)
	}
}

func TestLexer_InterpolatedString(t *testing.T) {
	got, _ := collectTokens(t, `"a[1+2]b"`)
	if assert.Len(t, got, 5) {
		assert.Equal(t, InterpStringBegin, got[0].Kind)
		assert.Equal(t, "a", got[0].Text)
		assert.Equal(t, Int, got[1].Kind)
		assert.Equal(t, Punct, got[2].Kind)
		assert.Equal(t, Plus, got[2].PunctKind)
		assert.Equal(t, Int, got[3].Kind)
		assert.Equal(t, InterpStringEnd, got[4].Kind)
		assert.Equal(t, "b", got[4].Text)
	}
}

func TestLexer_BlockComment(t *testing.T) {
	got, ctx := collectTokens(t, "/* comment /* nested */ still comment */ 1")
	if assert.Len(t, got, 1) {
		assert.Equal(t, Int, got[0].Kind)
	}
	assert.Empty(t, ctx.Errors())
}

func TestLexer_LineComment(t *testing.T) {
	got, _ := collectTokens(t, "1 // trailing comment\n2")
	if assert.Len(t, got, 2) {
		assert.Equal(t, Int, got[0].Kind)
		assert.Equal(t, Int, got[1].Kind)
	}
}

func TestLexer_WarnDirectiveIsStringy(t *testing.T) {
	got, _ := collectTokens(t, "#warn this is one opaque line\n1")
	// #, warn, then one opaque stringy-line token, then the 1.
	if assert.Len(t, got, 4) {
		assert.Equal(t, Punct, got[0].Kind)
		assert.Equal(t, Hash, got[0].PunctKind)
		assert.Equal(t, Ident, got[1].Kind)
		assert.Equal(t, "warn", got[1].Text)
		assert.Equal(t, String, got[2].Kind)
		assert.Equal(t, Int, got[3].Kind)
	}
}

func TestLexer_IllegalByteReportsOnce(t *testing.T) {
	_, ctx := collectTokens(t, "\x01\x01\x011")
	errs := ctx.Errors()
	assert.Len(t, errs, 1)
	assert.Equal(t, diag.Error, errs[0].Severity)
}

func TestToken_SeparatesFrom(t *testing.T) {
	a := Token{Kind: Ident, Text: "foo"}
	b := Token{Kind: Ident, Text: "bar"}
	assert.True(t, b.SeparatesFrom(a))

	ident := Token{Kind: Ident, Text: "foo"}
	lparen := punctToken(LParen)
	assert.False(t, lparen.SeparatesFrom(ident))

	eq := punctToken(Equal)
	assert.True(t, eq.SeparatesFrom(ident))
}
