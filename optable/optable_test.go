package optable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_KnownOperators(t *testing.T) {
	op, ok := Lookup("+")
	assert.True(t, ok)
	assert.Equal(t, Add, op.Strength)
	assert.Equal(t, KindBinary, op.Kind)

	op, ok = Lookup("=")
	assert.True(t, ok)
	assert.Equal(t, Assign, op.Strength)
	assert.Equal(t, KindAssign, op.Kind)

	_, ok = Lookup("@")
	assert.False(t, ok)
}

func TestStrength_Ordering(t *testing.T) {
	assert.True(t, Pow < Mul)
	assert.True(t, Mul < Add)
	assert.True(t, Add < Compare)
	assert.True(t, Compare < Shift)
	assert.True(t, Shift < Equality)
	assert.True(t, Equality < Bitwise)
	assert.True(t, Bitwise < And)
	assert.True(t, And < Or)
	assert.True(t, Or < Assign)
	assert.True(t, Assign < In)
}

func TestStrength_RightBinding(t *testing.T) {
	assert.True(t, Assign.RightBinding())
	assert.False(t, Add.RightBinding())
	assert.False(t, Mul.RightBinding())
	assert.False(t, In.RightBinding())
}

func TestBinaryOps_EveryEntryResolvesViaLookup(t *testing.T) {
	for _, entry := range BinaryOps {
		got, ok := Lookup(entry.Text)
		assert.True(t, ok, "missing lookup for %q", entry.Text)
		assert.Equal(t, entry, got)
	}
}
