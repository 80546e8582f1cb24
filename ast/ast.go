// Package ast defines the expression and statement tree the parser builds
// for procedure bodies. The shapes mirror spec §3's Data Model: a
// discriminated Expression tree, a small Term/Follow/UnaryOp vocabulary for
// the group/term/follow grammar, and a Statement tree for everything
// statement() can produce.
package ast

import "github.com/kestrelscript/dmtree/location"

// UnaryOp is a prefix or postfix unary operator stacked onto a term inside
// group().
type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
	BitNot
	PreIncr
	PreDecr
	PostIncr
	PostDecr
)

// BinaryOp is a plain (non-assigning) binary operator, built from an
// optable entry in the Pow/Mul/Add/Compare/Shift/Equality/Bitwise/And/Or/In
// groups.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Pow
	Less
	Greater
	LessEq
	GreaterEq
	LShift
	RShift
	Eq
	NotEq
	Equiv
	NotEquiv
	BitAnd
	BitXor
	BitOr
	And
	Or
	In
)

// AssignOp is a compound or plain assignment operator, from the Assign
// optable group.
type AssignOp int

const (
	Assign AssignOp = iota
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
	BitAndAssign
	BitOrAssign
	BitXorAssign
	LShiftAssign
	RShiftAssign
)

// PathOp is the separator preceding one element of a Prefab path.
type PathOp int

const (
	PathSlash PathOp = iota
	PathDot
	PathColon
)

func (p PathOp) String() string {
	switch p {
	case PathSlash:
		return "/"
	case PathDot:
		return "."
	case PathColon:
		return ":"
	default:
		return "?"
	}
}

// PrefabVar is one `name = expr` override inside a `{...}` prefab block.
// Overrides are stored as a slice rather than a map so insertion order is
// preserved, matching spec §4.3's note that "the override set is an
// ordered mapping".
type PrefabVar struct {
	Name  string
	Value Expression
}

// Prefab is a typed path literal: `(PathOp Ident)+` optionally followed by
// `{name=expr; ...}` overrides.
type Prefab struct {
	Path []PrefabPart
	Vars []PrefabVar
}

// PrefabPart is one separator/ident pair of a Prefab's path.
type PrefabPart struct {
	Op    PathOp
	Ident string
}

// IndexKind distinguishes the four follow-field spellings: `.`, `?.`, `:`
// and `?:`.
type IndexKind int

const (
	Dot IndexKind = iota
	SafeDot
	Colon
	SafeColon
)

// NewKind distinguishes the three spellings `new`, `new Ident(...)` and
// `new /prefab(...)` can take.
type NewKind int

const (
	NewImplicit NewKind = iota
	NewIdent
	NewPrefab
)

// NewType is the optional type specifier following `new`.
type NewType struct {
	Kind   NewKind
	Ident  string
	Prefab Prefab
}

// TermKind discriminates Term's variant.
type TermKind int

const (
	TermNull TermKind = iota
	TermNew
	TermList
	TermDynamicCall
	TermInput
	TermLocate
	TermCall
	TermIdent
	TermParentCall
	TermPrefab
	TermString
	TermResource
	TermInt
	TermFloat
	TermExpr
	TermInterpString
)

// InterpPart is one `(expr, joiner)` pair following the opening literal of
// an interpolated string.
type InterpPart struct {
	Expr   Expression
	Joiner string
}

// Term is the innermost unit a group() parses: a literal, identifier,
// call form, prefab, parenthesized expression, or interpolated string.
type Term struct {
	Kind TermKind

	// TermNew
	NewType NewType
	Args    []Expression // call arguments, shared by New/List/Call/ParentCall/Locate

	// TermDynamicCall
	CallTarget []Expression // the `(target)` half of call(target)(args)

	// TermInput / TermLocate
	InputType InputType
	InList    *Expression

	// TermCall / TermIdent
	Name string

	// TermPrefab
	Prefab Prefab

	// TermString / TermResource
	Text string

	// TermInt
	IntValue int32
	// TermFloat
	FloatValue float32

	// TermExpr
	Inner *Expression

	// TermInterpString
	InterpPrefix string
	InterpParts  []InterpPart
}

// Follow is one postfix extension appended after a term: an index, a
// field access, or a method call through one of the four IndexKind
// spellings.
type Follow struct {
	IsIndex bool
	Index   *Expression // IsIndex == true

	Kind  IndexKind // IsIndex == false
	Name  string
	Call  bool // true if this field access is also a call
	Args  []Expression
}

// ExprKind discriminates Expression's variant.
type ExprKind int

const (
	ExprBase ExprKind = iota
	ExprBinaryOp
	ExprAssignOp
	ExprTernaryOp
)

// Expression is the AST produced by the Pratt expression parser. Most
// leaves are ExprBase (unary ops + term + follows); BinaryOp/AssignOp/
// TernaryOp nest further Expressions per spec §4.3's operator table.
type Expression struct {
	Kind ExprKind

	// ExprBase
	Unary  []UnaryOp
	Term   Term
	Follow []Follow

	// ExprBinaryOp
	BinOp    BinaryOp
	BinLHS   *Expression
	BinRHS   *Expression

	// ExprAssignOp
	AssignOpKind AssignOp
	AssignLHS    *Expression
	AssignRHS    *Expression

	// ExprTernaryOp
	Cond *Expression
	If   *Expression
	Else *Expression
}

// ExprFromTerm wraps a bare term with no unary ops or follows, the shape
// group() produces for a literal with nothing attached.
func ExprFromTerm(t Term) Expression {
	return Expression{Kind: ExprBase, Term: t}
}

// InputType is a bitset of verb/proc input-specifier types, consulted by
// `as obj|turf` and `input(...) as ...` parsing.
type InputType uint32

const (
	InputNone InputType = 0
	InputAny  InputType = 1 << iota
	InputText
	InputNum
	InputObj
	InputMob
	InputTurf
	InputArea
	InputIcon
	InputSound
	InputMessage
	InputColor
	InputCommandText
	InputPassword
	InputNull
)

var inputTypeNames = map[string]InputType{
	"anything":    InputAny,
	"text":        InputText,
	"num":         InputNum,
	"obj":         InputObj,
	"mob":         InputMob,
	"turf":        InputTurf,
	"area":        InputArea,
	"icon":        InputIcon,
	"sound":       InputSound,
	"message":     InputMessage,
	"color":       InputColor,
	"command_text": InputCommandText,
	"password":    InputPassword,
	"null":        InputNull,
}

// InputTypeFromString resolves one `as` keyword to its InputType flag.
func InputTypeFromString(s string) (InputType, bool) {
	t, ok := inputTypeNames[s]
	return t, ok
}

// IsEmpty reports whether no input type flags are set.
func (t InputType) IsEmpty() bool { return t == InputNone }

// SettingMode distinguishes `set name = expr` from `set name in expr`.
type SettingMode int

const (
	SettingAssign SettingMode = iota
	SettingIn
)

// VarType is the type-path prefix of a `var` declaration (everything
// before the final name segment), plus the `tmp` flag spec §4.3 warns
// about.
type VarType struct {
	Path  []string
	IsTmp bool
}

// VarTypeFromPath builds a VarType from a tree_path's segments (minus the
// trailing name), flagging `tmp` exactly like the original's
// `var_type.is_tmp` check.
func VarTypeFromPath(segments []string) VarType {
	vt := VarType{Path: append([]string(nil), segments...)}
	for _, s := range segments {
		if s == "tmp" {
			vt.IsTmp = true
		}
	}
	return vt
}

// Parameter is one proc parameter: `[var/]type/path/name[= default][as T][in L]`,
// or the literal `...` varargs marker.
type Parameter struct {
	Path      []string
	Name      string
	Default   *Expression
	InputType InputType
	InList    *Expression
}

// Case is one `if (...)` switch arm selector: either an exact value or an
// inclusive `E to E` range.
type Case struct {
	IsRange bool
	Value   Expression // IsRange == false
	Low     Expression // IsRange == true
	High    Expression // IsRange == true
}

// StmtKind discriminates Statement's variant.
type StmtKind int

const (
	StmtIf StmtKind = iota
	StmtWhile
	StmtDoWhile
	StmtForLoop
	StmtForList
	StmtForRange
	StmtSpawn
	StmtSwitch
	StmtSetting
	StmtVar
	StmtReturn
	StmtThrow
	StmtExpr
)

// IfArm is one `(condition, block)` pair of an if/else-if chain.
type IfArm struct {
	Cond  Expression
	Block []Statement
}

// SwitchArm is one `if (caselist) block` arm of a switch.
type SwitchArm struct {
	Cases []Case
	Block []Statement
}

// Statement is the AST for one statement inside a procedure body, block,
// or for-loop clause.
type Statement struct {
	Kind     StmtKind
	Location location.Location

	// StmtIf
	IfArms []IfArm
	Else   []Statement
	HasElse bool

	// StmtWhile / StmtDoWhile / StmtSpawn (block shared by several kinds)
	Cond  Expression
	Block []Statement

	// StmtDoWhile reuses Cond+Block above.

	// StmtSpawn
	SpawnDelay    *Expression

	// StmtForLoop
	Init *Statement
	Test *Expression
	Inc  *Statement

	// StmtForList / StmtForRange (shared fields)
	VarType   *VarType
	Name      string
	InputType InputType
	InList    *Expression // StmtForList
	Start     Expression  // StmtForRange
	End       Expression  // StmtForRange
	Step      *Expression // StmtForRange

	// StmtSwitch
	SwitchExpr    Expression
	SwitchArms    []SwitchArm
	SwitchDefault []Statement
	HasDefault    bool

	// StmtSetting
	SettingName string
	SettingMode SettingMode
	SettingExpr Expression

	// StmtVar
	Value *Expression

	// StmtReturn
	ReturnValue *Expression

	// StmtThrow / StmtExpr
	Expr Expression
}
