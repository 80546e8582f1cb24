package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelscript/dmtree/location"
)

func TestTree_Insert_AndEntries(t *testing.T) {
	tree := New()
	assert.Empty(t, tree.Entries())

	start := location.Location{Line: 1, Column: 1}
	end := location.Location{Line: 1, Column: 8}
	tree.Insert(start, end, Annotation{Kind: Ident, Text: "weapon"})

	entries := tree.Entries()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, start, entries[0].Range.Start)
		assert.Equal(t, end, entries[0].Range.End)
		assert.Equal(t, Ident, entries[0].Annotation.Kind)
		assert.Equal(t, "weapon", entries[0].Annotation.Text)
	}
}

func TestTree_Insert_PreservesOrder(t *testing.T) {
	tree := New()
	tree.Insert(location.Location{Line: 1}, location.Location{Line: 1}, Annotation{Kind: TreePath, Path: []string{"obj"}})
	tree.Insert(location.Location{Line: 2}, location.Location{Line: 2}, Annotation{Kind: Variable, Path: []string{"obj", "x"}})
	tree.Insert(location.Location{Line: 3}, location.Location{Line: 3}, Annotation{Kind: ProcHeader, Path: []string{"obj", "use"}})

	entries := tree.Entries()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, TreePath, entries[0].Annotation.Kind)
		assert.Equal(t, Variable, entries[1].Annotation.Kind)
		assert.Equal(t, ProcHeader, entries[2].Annotation.Kind)
	}
}

func TestTree_Entries_ReturnsSnapshotNotLiveView(t *testing.T) {
	tree := New()
	tree.Insert(location.Location{}, location.Location{}, Annotation{Kind: Ident, Text: "a"})
	snapshot := tree.Entries()
	tree.Insert(location.Location{}, location.Location{}, Annotation{Kind: Ident, Text: "b"})

	assert.Len(t, snapshot, 1)
	assert.Len(t, tree.Entries(), 2)
}
