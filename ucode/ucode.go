// Package ucode defines the raw microcode vocabulary of the Xenos stream
// processor: opcode enumerations with their static properties, fetch data
// formats, and the bit-level codecs for the fixed-width instruction words.
//
// The package is the single source of truth for the container layout. A
// program is a sequence of native-endian 32-bit words: 48-bit control-flow
// instructions packed two per three dwords at the front, followed by
// fixed-size ALU/fetch instruction slots addressed in SlotDwords units from
// the start of the stream.
package ucode

// ShaderType identifies the pipeline stage a microcode stream was authored
// for. Export register namespaces and alloc semantics differ per stage.
type ShaderType uint32

const (
	ShaderVertex ShaderType = iota
	ShaderPixel
)

// String returns the stage tag used in disassembly headers and dump names.
func (t ShaderType) String() string {
	if t == ShaderPixel {
		return "ps"
	}
	return "vs"
}

// SlotDwords is the size of one ALU or fetch instruction slot.
// Exec instruction addresses are expressed in slot units.
const SlotDwords = 8

// Slot holds the raw words of one ALU or fetch instruction.
type Slot [SlotDwords]uint32

// bit-field helpers shared by the word codecs

func getBits(v uint64, lo, n uint) uint32 {
	return uint32((v >> lo) & (1<<n - 1))
}

func setBits(v uint64, lo, n uint, field uint32) uint64 {
	mask := uint64(1<<n-1) << lo
	return (v &^ mask) | (uint64(field)<<lo)&mask
}

func getFlag(v uint64, bit uint) bool {
	return v>>bit&1 != 0
}

func setFlag(v uint64, bit uint, on bool) uint64 {
	if on {
		return v | 1<<bit
	}
	return v &^ (1 << bit)
}

// signExtend interprets the low n bits of field as a two's complement value.
func signExtend(field uint32, n uint) int32 {
	shift := 32 - n
	return int32(field<<shift) >> shift
}
