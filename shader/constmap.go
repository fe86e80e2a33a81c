package shader

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/gogpu/xenos/ir"
)

// Register file sizes of the constant banks visible to microcode.
const (
	FloatConstantCount = 256
	BoolConstantCount  = 256
	LoopConstantCount  = 32
)

// ConstantRegisterMap records which constant registers a shader statically
// references. Translators use it to upload only the live float constants:
// PackedFloatConstantIndex maps a register index to its slot in that dense
// upload order.
type ConstantRegisterMap struct {
	FloatBitmap *bitset.BitSet
	BoolBitmap  *bitset.BitSet
	LoopBitmap  *bitset.BitSet

	// FloatCount is the number of set bits in FloatBitmap.
	FloatCount uint32

	// FloatDynamicAddressing is set when any float constant operand uses
	// a0 or aL addressing. The referenced set is then unknowable
	// statically, so every float constant counts as referenced and
	// packing degenerates to the identity.
	FloatDynamicAddressing bool
}

// NewConstantRegisterMap returns an empty map.
func NewConstantRegisterMap() *ConstantRegisterMap {
	return &ConstantRegisterMap{
		FloatBitmap: bitset.New(FloatConstantCount),
		BoolBitmap:  bitset.New(BoolConstantCount),
		LoopBitmap:  bitset.New(LoopConstantCount),
	}
}

// MarkFloat records a statically addressed float constant reference.
func (m *ConstantRegisterMap) MarkFloat(index uint32) {
	if index >= FloatConstantCount || m.FloatBitmap.Test(uint(index)) {
		return
	}
	m.FloatBitmap.Set(uint(index))
	m.FloatCount++
}

// MarkFloatDynamic records a dynamically addressed float constant
// reference, which makes the whole float bank live.
func (m *ConstantRegisterMap) MarkFloatDynamic() {
	m.FloatDynamicAddressing = true
	for i := uint(0); i < FloatConstantCount; i++ {
		m.FloatBitmap.Set(i)
	}
	m.FloatCount = FloatConstantCount
}

// MarkBool records a bool constant reference.
func (m *ConstantRegisterMap) MarkBool(index uint32) {
	if index < BoolConstantCount {
		m.BoolBitmap.Set(uint(index))
	}
}

// MarkLoop records a loop constant reference.
func (m *ConstantRegisterMap) MarkLoop(index uint32) {
	if index < LoopConstantCount {
		m.LoopBitmap.Set(uint(index))
	}
}

// PackedFloatConstantIndex maps a float constant register to its index in
// the dense upload order: referenced registers in ascending register order.
// With dynamic addressing the packing is the identity. Returns
// ir.InvalidConstantIndex for out-of-range and unreferenced registers.
func (m *ConstantRegisterMap) PackedFloatConstantIndex(index uint32) uint32 {
	if index >= FloatConstantCount {
		return ir.InvalidConstantIndex
	}
	if m.FloatDynamicAddressing {
		return index
	}
	if !m.FloatBitmap.Test(uint(index)) {
		return ir.InvalidConstantIndex
	}
	return uint32(m.FloatBitmap.Rank(uint(index))) - 1
}
