package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelscript/dmtree/annotation"
	"github.com/kestrelscript/dmtree/ast"
	"github.com/kestrelscript/dmtree/diag"
	"github.com/kestrelscript/dmtree/lexer"
)

func parseSource(t *testing.T, src string) (*Parser, *diag.Context) {
	t.Helper()
	ctx := diag.NewContext()
	lx := lexer.New(ctx, 0, lexer.NewByteSliceSource([]byte(src)))
	ann := annotation.New()
	p := New(lx, ctx, ann)
	p.Run()
	return p, ctx
}

func TestParser_TreeEntry_BareType(t *testing.T) {
	_, ctx := parseSource(t, "/obj/item/weapon\n")
	assert.Empty(t, ctx.Errors())
}

func TestParser_TreeEntry_VarDecl(t *testing.T) {
	p, ctx := parseSource(t, "/obj/item/weapon/var/damage = 5\n")
	assert.Empty(t, ctx.Errors())
	node := p.tree.Lookup([]string{"obj", "item", "weapon"})
	if assert.NotNil(t, node) {
		if assert.Len(t, node.Vars, 1) {
			assert.Equal(t, "damage", node.Vars[0].Name)
		}
	}
}

func TestParser_TreeEntry_ProcWithBody(t *testing.T) {
	src := "/obj/item/weapon/proc/use(mob/user)\n{\n\tuser.attack(src)\n\treturn 1\n}\n"
	p, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
	assert.Equal(t, 1, p.procsGood)
	assert.Equal(t, 0, p.procsBad)
	node := p.tree.Lookup([]string{"obj", "item", "weapon"})
	if assert.NotNil(t, node) {
		if assert.Len(t, node.Procs, 1) {
			assert.Equal(t, "use", node.Procs[0].Name)
			assert.Equal(t, []string{"user"}, node.Procs[0].Parameters)
		}
	}
}

func TestParser_MalformedProcBody_DoesNotAbortTree(t *testing.T) {
	src := "/obj/a/proc/broken()\n{\n\tif (\n}\n/obj/b\n"
	p, ctx := parseSource(t, src)
	assert.NotEmpty(t, ctx.Errors())
	assert.Equal(t, 1, p.procsBad)
	assert.NotNil(t, p.tree.Lookup([]string{"obj", "b"}))
}

func TestParser_NestedTreeBlock(t *testing.T) {
	src := "/obj/item\n{\n\tvar/x = 1\n\tweapon\n\t{\n\t\tvar/y = 2\n\t}\n}\n"
	p, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
	assert.NotNil(t, p.tree.Lookup([]string{"obj", "item"}))
	assert.NotNil(t, p.tree.Lookup([]string{"obj", "item", "weapon"}))
}

func TestParser_ExpressionPrecedence(t *testing.T) {
	e := parseExprOrFail(t, "1 + 2 * 3")
	assert.Equal(t, ast.ExprBinaryOp, e.Kind)
	assert.Equal(t, ast.Add, e.BinOp)
	assert.Equal(t, ast.ExprBase, e.BinLHS.Kind)
	rhs := e.BinRHS
	assert.Equal(t, ast.ExprBinaryOp, rhs.Kind)
	assert.Equal(t, ast.Mul, rhs.BinOp)
}

func TestParser_AssignIsRightAssociative(t *testing.T) {
	e := parseExprOrFail(t, "a = b = 1")
	assert.Equal(t, ast.ExprAssignOp, e.Kind)
	assert.Equal(t, ast.Assign, e.AssignOpKind)
	rhs := e.AssignRHS
	assert.Equal(t, ast.ExprAssignOp, rhs.Kind)
}

func TestParser_TernaryExpression(t *testing.T) {
	e := parseExprOrFail(t, "a ? 1 : 2")
	assert.Equal(t, ast.ExprTernaryOp, e.Kind)
}

// parseExprOrFail parses src directly with the expression parser,
// exercising expression()/group()/term() without going through a full
// tree/proc-body parse.
func parseExprOrFail(t *testing.T, src string) ast.Expression {
	t.Helper()
	ctx := diag.NewContext()
	lx := lexer.New(ctx, 0, lexer.NewByteSliceSource([]byte(src)))
	p := New(lx, ctx, nil)
	e, ok := p.expression()
	if !assert.True(t, ok) || !assert.Empty(t, ctx.Errors()) {
		t.FailNow()
	}
	return e
}

func TestParser_ForCStyle(t *testing.T) {
	src := "/proc/f()\n{\n\tfor(i=0; i<10; i++)\n\t{\n\t\tx += i\n\t}\n}\n"
	_, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
}

func TestParser_ForList(t *testing.T) {
	src := "/proc/f()\n{\n\tfor(var/obj/o in contents)\n\t{\n\t\tdel(o)\n\t}\n}\n"
	_, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
}

func TestParser_ForRange(t *testing.T) {
	src := "/proc/f()\n{\n\tfor(var/i = 1 to 10 step 2)\n\t{\n\t\tx += i\n\t}\n}\n"
	_, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
}

func TestParser_ForBareAssignNoTo(t *testing.T) {
	// A bare (non-var) assignment with no `to` clause is a plain C-style
	// for-loop init, not a var declaration.
	src := "/proc/f()\n{\n\tfor(i = 0; i < 10; i++)\n\t{\n\t}\n}\n"
	_, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
}

func TestParser_IfElseIfElse(t *testing.T) {
	src := "/proc/f()\n{\n\tif (1)\n\t{\n\t\treturn 1\n\t}\n\telse if (2)\n\t{\n\t\treturn 2\n\t}\n\telse\n\t{\n\t\treturn 3\n\t}\n}\n"
	_, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
}

func TestParser_InterpolatedStringInExpression(t *testing.T) {
	src := `/proc/f()` + "\n{\n\treturn \"hi [name]!\"\n}\n"
	_, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
}

func TestParser_PrefabLiteral(t *testing.T) {
	src := "/proc/f()\n{\n\tvar/obj/o = new /obj/item/weapon(loc)\n}\n"
	_, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
}

func TestParser_VarArrayAnnotationDiscarded(t *testing.T) {
	src := "/obj/var/list/items[5]\n"
	_, ctx := parseSource(t, src)
	assert.Empty(t, ctx.Errors())
}

func TestParser_RelativePathWarns(t *testing.T) {
	_, ctx := parseSource(t, "/mob\n{\n\t.x = 1\n}\n")
	var sawWarning bool
	for _, d := range ctx.Errors() {
		if d.Severity == diag.Warning {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning)
}
