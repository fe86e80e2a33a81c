// Package ir defines the parsed instruction representation for Xenos shader
// microcode.
//
// The structures are shared by disassembly and translation. To keep the
// assemble -> disassemble -> reassemble round trip bit-identical, decoding
// into this IR only generalizes - it never drops or rewrites encoding detail
// such as authored write masks that have no effect on the target. Anything
// lossy (nop skipping, dead-lane elimination) is the translator's business
// and is exposed only through advisory predicates.
package ir

import "github.com/gogpu/xenos/ucode"

// Instruction is the closed union over the ten parsed instruction kinds.
// Consumers dispatch with an exhaustive type switch.
type Instruction interface {
	isInstruction()
}

func (ExecInstruction) isInstruction()         {}
func (LoopStartInstruction) isInstruction()    {}
func (LoopEndInstruction) isInstruction()      {}
func (CallInstruction) isInstruction()         {}
func (ReturnInstruction) isInstruction()       {}
func (JumpInstruction) isInstruction()         {}
func (AllocInstruction) isInstruction()        {}
func (VertexFetchInstruction) isInstruction()  {}
func (TextureFetchInstruction) isInstruction() {}
func (AluInstruction) isInstruction()          {}

// Program is a decoded instruction stream in program order. ALU and fetch
// instructions immediately follow the exec that gates them.
type Program struct {
	ShaderType   ucode.ShaderType
	Instructions []Instruction
}

// SwizzleSource describes where one lane of an operand or result takes its
// value from: a source component, or a synthesized constant.
type SwizzleSource uint8

const (
	SwizzleX SwizzleSource = iota
	SwizzleY
	SwizzleZ
	SwizzleW
	Swizzle0 // constant 0
	Swizzle1 // constant 1
)

var swizzleChars = [6]byte{'x', 'y', 'z', 'w', '0', '1'}

// Char returns the single-character disassembly form of the selector.
func (s SwizzleSource) Char() byte {
	if s > Swizzle1 {
		return '?'
	}
	return swizzleChars[s]
}

// SwizzleFromChar resolves a disassembly swizzle character.
func SwizzleFromChar(c byte) (SwizzleSource, bool) {
	for i, sc := range swizzleChars {
		if sc == c {
			return SwizzleSource(i), true
		}
	}
	return SwizzleX, false
}

// SwizzleFromComponentIndex returns the selector reading lane i unchanged.
func SwizzleFromComponentIndex(i uint32) SwizzleSource {
	return SwizzleSource(i & 3)
}

// IdentitySwizzle is the xyzw arrangement.
func IdentitySwizzle() [4]SwizzleSource {
	return [4]SwizzleSource{SwizzleX, SwizzleY, SwizzleZ, SwizzleW}
}

// StorageTarget enumerates where an instruction result is written.
type StorageTarget uint8

const (
	// TargetNone discards the result.
	TargetNone StorageTarget = iota
	// TargetRegister writes a temporary register [0-31].
	TargetRegister
	// TargetInterpolator writes a vertex shader interpolator export [0-15].
	TargetInterpolator
	// TargetPosition writes the position export.
	TargetPosition
	// TargetPointSizeEdgeFlagKillVertex writes the three-lane misc vertex
	// export register.
	TargetPointSizeEdgeFlagKillVertex
	// TargetExportAddress writes the memexport destination address.
	TargetExportAddress
	// TargetExportData writes memexport destination data [0-4].
	TargetExportData
	// TargetColor writes a color target export [0-3].
	TargetColor
	// TargetDepth writes the depth export; only lane x exists.
	TargetDepth
)

// UsedComponents returns the mask of lanes that actually exist in the
// target. Only translation may use this to skip components; disassembly must
// keep the authored mask so reassembly is exact.
func (t StorageTarget) UsedComponents() uint32 {
	switch t {
	case TargetNone:
		return 0b0000
	case TargetPointSizeEdgeFlagKillVertex:
		return 0b0111
	case TargetDepth:
		return 0b0001
	default:
		return 0b1111
	}
}

// StorageSource enumerates where an instruction operand is read from.
type StorageSource uint8

const (
	// SourceRegister reads a temporary register [0-31].
	SourceRegister StorageSource = iota
	// SourceConstantFloat reads a float constant [0-511].
	SourceConstantFloat
	// SourceVertexFetchConstant reads a vertex fetch constant [0-95].
	SourceVertexFetchConstant
	// SourceTextureFetchConstant reads a texture fetch constant [0-31].
	SourceTextureFetchConstant
)

// AddressingMode describes how a storage index is addressed.
type AddressingMode uint8

const (
	// AddressStatic uses the index as-is.
	AddressStatic AddressingMode = iota
	// AddressAbsolute offsets the index by a0.
	AddressAbsolute
	// AddressRelative offsets the index by the loop counter aL.
	AddressRelative
)

// ConditionKind is the gating applied to an exec, call or jump. Boolean-
// constant and predicate gating are mutually exclusive, so they are one
// tagged choice rather than two flags.
type ConditionKind uint8

const (
	// ConditionNone runs unconditionally.
	ConditionNone ConditionKind = iota
	// ConditionBool compares a boolean constant against a required value.
	ConditionBool
	// ConditionPredicate compares the predicate register against a
	// required value.
	ConditionPredicate
)
