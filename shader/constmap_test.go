package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xenos/ir"
)

func TestPackedFloatConstantIndex(t *testing.T) {
	m := NewConstantRegisterMap()
	for _, i := range []uint32{3, 250, 7, 3} {
		m.MarkFloat(i)
	}
	assert.Equal(t, uint32(3), m.FloatCount)
	assert.Equal(t, uint32(0), m.PackedFloatConstantIndex(3))
	assert.Equal(t, uint32(1), m.PackedFloatConstantIndex(7))
	assert.Equal(t, uint32(2), m.PackedFloatConstantIndex(250))
	assert.Equal(t, ir.InvalidConstantIndex, m.PackedFloatConstantIndex(4),
		"unreferenced registers have no packed slot")
	assert.Equal(t, ir.InvalidConstantIndex, m.PackedFloatConstantIndex(256),
		"out-of-range registers have no packed slot")
}

// Packed indices preserve register order and leave no holes.
func TestPackingMonotonicity(t *testing.T) {
	m := NewConstantRegisterMap()
	marked := []uint32{5, 9, 42, 120, 200, 255}
	for _, i := range marked {
		m.MarkFloat(i)
	}
	require.Equal(t, uint32(len(marked)), m.FloatCount)
	for slot, register := range marked {
		assert.Equal(t, uint32(slot), m.PackedFloatConstantIndex(register))
	}
}

func TestDynamicAddressingIdentity(t *testing.T) {
	m := NewConstantRegisterMap()
	m.MarkFloat(9)
	m.MarkFloatDynamic()
	require.True(t, m.FloatDynamicAddressing)
	assert.Equal(t, uint32(FloatConstantCount), m.FloatCount)
	for _, i := range []uint32{0, 9, 255} {
		assert.Equal(t, i, m.PackedFloatConstantIndex(i))
	}
	assert.Equal(t, ir.InvalidConstantIndex, m.PackedFloatConstantIndex(300))
}

func TestMarkRanges(t *testing.T) {
	m := NewConstantRegisterMap()
	m.MarkBool(255)
	m.MarkBool(256)
	m.MarkLoop(31)
	m.MarkLoop(32)
	assert.True(t, m.BoolBitmap.Test(255))
	assert.Equal(t, uint(1), m.BoolBitmap.Count())
	assert.True(t, m.LoopBitmap.Test(31))
	assert.Equal(t, uint(1), m.LoopBitmap.Count())
}
