// Package annotation implements the optional annotation sink the parser
// reports half-open source ranges into: spans tagging an identifier,
// tree-path, tree-block, variable, proc-header, or proc-body occurrence,
// per spec §6 ("Annotation sink").
package annotation

import "github.com/kestrelscript/dmtree/location"

// Kind discriminates which of the parser's annotation sites produced a
// given Annotation.
type Kind int

const (
	Ident Kind = iota
	TreePath
	TreeBlock
	Variable
	ProcHeader
	ProcBody
	// ProcBodyDetails mirrors the original's debug-only kind for re-parsed
	// proc bodies; the parser never records it.
	ProcBodyDetails
)

// Annotation is one tagged value the parser attaches to a source range.
// Path holds the dotted path segments for Kind values that carry one
// (TreePath, TreeBlock, Variable, ProcHeader, ProcBody); Text holds the
// identifier name for Kind == Ident.
type Annotation struct {
	Kind Kind
	Text string
	Path []string
}

// Range is a half-open [Start, End) span over source locations.
type Range struct {
	Start location.Location
	End   location.Location
}

// Entry is one recorded (range, annotation) pair.
type Entry struct {
	Range      Range
	Annotation Annotation
}

// Tree collects annotation entries in the order they were inserted. It is
// not indexed for lookup by location: the parser's own in-order emission
// already gives range queries over the slice acceptable complexity for a
// single file's worth of annotations, and nothing in this core queries it
// except tests.
type Tree struct {
	entries []Entry
}

// New returns an empty annotation tree.
func New() *Tree {
	return &Tree{}
}

// Insert records that ann applies to the half-open range [start, end).
func (t *Tree) Insert(start, end location.Location, ann Annotation) {
	t.entries = append(t.entries, Entry{Range: Range{Start: start, End: end}, Annotation: ann})
}

// Entries returns a snapshot of every recorded entry, in insertion order.
func (t *Tree) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
