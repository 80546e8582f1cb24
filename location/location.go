// Package location tracks byte positions as the lexer advances through a
// source file and converts a fallible byte stream into a stream of
// byte/location pairs.
package location

import "fmt"

// FileID indexes an external file registry. The registry itself lives
// outside this module; FileID is an opaque handle assigned by the caller.
type FileID uint32

// Location is a triple of file, line and column. Lines and columns are
// 1-based and monotonic within a file.
type Location struct {
	File   FileID
	Line   uint32
	Column uint32
}

// String renders a location as "line:column", matching the diagnostic
// formatting used throughout the lexer and parser.
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Registry assigns stable FileIDs to file paths. It has no internal
// locking, so concurrent Register calls must be synchronized by the caller.
type Registry struct {
	paths []string
	index map[string]FileID
}

// NewRegistry returns an empty file registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]FileID)}
}

// Register returns the FileID for path, assigning a new one if this is the
// first time path has been seen.
func (r *Registry) Register(path string) FileID {
	if id, ok := r.index[path]; ok {
		return id
	}
	id := FileID(len(r.paths))
	r.paths = append(r.paths, path)
	r.index[path] = id
	return id
}

// Path returns the path registered under id, or "" if id is unknown.
func (r *Registry) Path(id FileID) string {
	if int(id) >= len(r.paths) {
		return ""
	}
	return r.paths[id]
}

// ByteResult is one element of the fallible byte stream a Tracker consumes:
// either a byte or a terminal error.
type ByteResult struct {
	Byte byte
	Err  error
}

// ByteSource yields bytes until it is exhausted.
type ByteSource interface {
	// Next returns the next byte with err == nil and ok == true, or
	// ok == false with err == nil once the source is exhausted. A non-nil
	// err reports a read failure; the Tracker passes it through unchanged
	// (io.EOF included), and the lexer reports any non-nil err as an i/o
	// diagnostic and stops reading.
	Next() (b byte, err error, ok bool)
}

// Tracker wraps a ByteSource and pairs each successful byte with its
// (line, column) location. A Tracker from NewTracker points "before
// line 1" so the first byte read lands at (1, 1).
type Tracker struct {
	src    ByteSource
	file   FileID
	line   uint32
	column uint32
	prevNL bool
}

// NewTracker creates a Tracker over src, attributing all locations to file.
func NewTracker(src ByteSource, file FileID) *Tracker {
	return &Tracker{src: src, file: file, line: 1, column: 0}
}

// Next advances the tracker by one byte, returning its location. ok is
// false once the underlying source is exhausted. Overflowing the line or
// column counter is a fatal condition reported via a panic, since it can
// only happen on pathologically large inputs the rest of the pipeline
// cannot handle either.
func (t *Tracker) Next() (b byte, loc Location, err error, ok bool) {
	raw, rerr, more := t.src.Next()
	if !more {
		return 0, Location{}, rerr, false
	}
	if t.prevNL {
		t.line++
		if t.line == 0 {
			panic("location: line counter overflow")
		}
		t.column = 0
		t.prevNL = false
	}
	t.column++
	if t.column == 0 {
		panic("location: column counter overflow")
	}
	loc = Location{File: t.file, Line: t.line, Column: t.column}
	if rerr != nil {
		return raw, loc, rerr, true
	}
	t.prevNL = raw == '\n'
	return raw, loc, nil, true
}

// Current returns the location one column past the most recently read
// byte, on that byte's line. Used by the lexer to stamp the synthetic
// trailing Newline token.
func (t *Tracker) Current() Location {
	return Location{File: t.file, Line: t.line, Column: t.column + 1}
}
