package location

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sliceSource struct {
	data []byte
	pos  int
}

func (s *sliceSource) Next() (byte, error, bool) {
	if s.pos >= len(s.data) {
		return 0, nil, false
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil, true
}

func TestTracker_LineColumnAdvance(t *testing.T) {
	src := &sliceSource{data: []byte("ab\ncd")}
	tr := NewTracker(src, 7)

	b, loc, err, ok := tr.Next()
	assert.True(t, ok)
	assert.Nil(t, err)
	assert.Equal(t, byte('a'), b)
	assert.Equal(t, Location{File: 7, Line: 1, Column: 1}, loc)

	_, loc, _, _ = tr.Next() // 'b'
	assert.Equal(t, Location{File: 7, Line: 1, Column: 2}, loc)

	_, loc, _, _ = tr.Next() // '\n'
	assert.Equal(t, Location{File: 7, Line: 1, Column: 3}, loc)

	_, loc, _, _ = tr.Next() // 'c', now on line 2
	assert.Equal(t, Location{File: 7, Line: 2, Column: 1}, loc)

	_, loc, _, _ = tr.Next() // 'd'
	assert.Equal(t, Location{File: 7, Line: 2, Column: 2}, loc)

	_, _, _, ok = tr.Next()
	assert.False(t, ok)
}

type errSource struct{ err error }

func (s errSource) Next() (byte, error, bool) { return 0, s.err, false }

func TestTracker_PropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	tr := NewTracker(errSource{err: wantErr}, 0)
	_, _, err, ok := tr.Next()
	assert.False(t, ok)
	assert.Equal(t, wantErr, err)
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	id1 := r.Register("a.dm")
	id2 := r.Register("b.dm")
	id3 := r.Register("a.dm")
	assert.Equal(t, id1, id3)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, "a.dm", r.Path(id1))
	assert.Equal(t, "b.dm", r.Path(id2))
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "3:4", Location{Line: 3, Column: 4}.String())
}
