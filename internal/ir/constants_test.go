package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternStringDedupes(t *testing.T) {
	pool := NewConstantPool()
	a := pool.InternString("hello")
	b := pool.InternString("hello")
	c := pool.InternString("world")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, a.ID, b.ID)
}

func TestInternF64BitExactNotFloatEqual(t *testing.T) {
	pool := NewConstantPool()

	posZero := pool.InternF64(math.Float64bits(0.0))
	negZero := pool.InternF64(math.Float64bits(math.Copysign(0, -1)))

	// +0.0 == -0.0 under float equality, but their bit patterns differ, so
	// they must intern to distinct constants.
	assert.NotEqual(t, posZero.ID, negZero.ID)
}

func TestInternF64SameBitsShareID(t *testing.T) {
	pool := NewConstantPool()
	bits := math.Float64bits(3.14)

	a := pool.InternF64(bits)
	b := pool.InternF64(bits)

	assert.Equal(t, a.ID, b.ID)
}

func TestInternIDsAreMonotonic(t *testing.T) {
	pool := NewConstantPool()
	a := pool.InternString("a")
	b := pool.InternString("b")
	assert.Less(t, a.ID, b.ID)
}

func TestInternXMM128(t *testing.T) {
	pool := NewConstantPool()
	var payload [16]byte
	payload[0] = 0xFF

	a := pool.InternXMM128(payload)
	b := pool.InternXMM128(payload)
	assert.Equal(t, a.ID, b.ID)

	payload[15] = 0x01
	c := pool.InternXMM128(payload)
	assert.NotEqual(t, a.ID, c.ID)
}
