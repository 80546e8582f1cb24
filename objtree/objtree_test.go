package objtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithBuiltins_SeedsConventionalRoots(t *testing.T) {
	tree := WithBuiltins()
	assert.NotNil(t, tree.Lookup([]string{"obj"}))
	assert.NotNil(t, tree.Lookup([]string{"mob"}))
	assert.NotNil(t, tree.Lookup([]string{"atom", "movable"}))
	assert.Nil(t, tree.Lookup([]string{"nonexistent"}))
}

func TestTree_AddEntry_CreatesIntermediateNodes(t *testing.T) {
	tree := New()
	node := tree.AddEntry([]string{"obj", "item", "weapon"})
	assert.Equal(t, "weapon", node.Name)
	assert.Equal(t, "/obj/item/weapon", node.Path())

	assert.NotNil(t, tree.Lookup([]string{"obj"}))
	assert.NotNil(t, tree.Lookup([]string{"obj", "item"}))

	// Re-adding the same path returns the same node rather than duplicating it.
	again := tree.AddEntry([]string{"obj", "item", "weapon"})
	assert.Same(t, node, again)
}

func TestTree_AddVar_AndAddProc(t *testing.T) {
	tree := New()
	path := []string{"obj", "item", "weapon"}
	tree.AddVar(path, Var{Path: path, Name: "damage", Default: "5"})
	tree.AddProc(path, Proc{Name: "use", Parameters: []string{"user"}})

	node := tree.Lookup(path)
	if assert.NotNil(t, node) {
		if assert.Len(t, node.Vars, 1) {
			assert.Equal(t, "damage", node.Vars[0].Name)
			assert.Equal(t, "5", node.Vars[0].Default)
		}
		if assert.Len(t, node.Procs, 1) {
			assert.Equal(t, "use", node.Procs[0].Name)
			assert.Equal(t, []string{"user"}, node.Procs[0].Parameters)
		}
	}
}

func TestNode_Path_RootIsEmpty(t *testing.T) {
	tree := New()
	assert.Equal(t, "", tree.Root().Path())
}

func TestTree_Finalize_EmptyTreeFailsUnlessSloppy(t *testing.T) {
	tree := New()
	err := tree.Finalize(false)
	assert.Error(t, err)

	tree2 := New()
	err = tree2.Finalize(true)
	assert.NoError(t, err)
}

func TestTree_Finalize_NonEmptyTreeAlwaysSucceeds(t *testing.T) {
	tree := New()
	tree.AddEntry([]string{"obj"})
	assert.NoError(t, tree.Finalize(false))
}

func TestTree_Finalize_CannotFinalizeTwice(t *testing.T) {
	tree := New()
	tree.AddEntry([]string{"obj"})
	assert.NoError(t, tree.Finalize(false))
	err := tree.Finalize(false)
	assert.Error(t, err)
}

func TestTree_Lookup_MissingPathReturnsNil(t *testing.T) {
	tree := New()
	tree.AddEntry([]string{"obj", "item"})
	assert.Nil(t, tree.Lookup([]string{"obj", "item", "weapon"}))
	assert.Nil(t, tree.Lookup([]string{"mob"}))
}
