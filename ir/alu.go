package ir

import "github.com/gogpu/xenos/ucode"

// InvalidConstantIndex is returned by queries that fail to resolve a
// constant register index.
const InvalidConstantIndex = ^uint32(0)

// AluInstruction is one co-issued vector+scalar ALU operation. The two
// halves execute as if simultaneously: neither may observe the other's
// result within the same instruction, so aliasing between a half's result
// and the other half's operand carries no dependency - both halves read
// pre-instruction register state.
type AluInstruction struct {
	VectorOpcode ucode.AluVectorOpcode
	ScalarOpcode ucode.AluScalarOpcode

	Predicated         bool
	PredicateCondition bool

	// VectorAndConstantResult stores the vector result and, for exports,
	// any constant 0/1 lanes. Constant writes ride on the vector half so
	// an export destination stays expressed in the disassembly even when
	// only constants are written.
	VectorAndConstantResult InstructionResult
	// ScalarResult stores the scalar result.
	ScalarResult InstructionResult

	VectorOperandCount uint32
	VectorOperands     [3]InstructionOperand
	ScalarOperandCount uint32
	ScalarOperands     [2]InstructionOperand
}

// IsVectorOpDefaultNop reports whether the vector half matches the exact
// encoding the source assembler emits for an omitted vector operation, so
// leaving it out of reassembled text reproduces identical microcode. This is
// strictly a disassembly concern: translators must use write masks and
// opcode side effects instead, as instructions with an empty write mask may
// differ in other fields.
func (a AluInstruction) IsVectorOpDefaultNop() bool {
	if a.VectorOpcode != ucode.AluVectorMax ||
		a.VectorAndConstantResult.OriginalWriteMask != 0 ||
		a.VectorAndConstantResult.Clamp ||
		a.VectorOperands[0].StorageSource != SourceRegister ||
		a.VectorOperands[0].StorageIndex != 0 ||
		a.VectorOperands[0].StorageAddressingMode != AddressStatic ||
		a.VectorOperands[0].Negate ||
		a.VectorOperands[0].AbsoluteValue ||
		!a.VectorOperands[0].IsStandardSwizzle() ||
		a.VectorOperands[1].StorageSource != SourceRegister ||
		a.VectorOperands[1].StorageIndex != 0 ||
		a.VectorOperands[1].StorageAddressingMode != AddressStatic ||
		a.VectorOperands[1].Negate ||
		a.VectorOperands[1].AbsoluteValue ||
		!a.VectorOperands[1].IsStandardSwizzle() {
		return false
	}
	if a.VectorAndConstantResult.StorageTarget == TargetRegister {
		if a.VectorAndConstantResult.StorageIndex != 0 ||
			a.VectorAndConstantResult.StorageAddressingMode != AddressStatic {
			return false
		}
	} else {
		// When both halves are nop but the destination is an export, the
		// vector half must survive in the text so the reassembled
		// microcode still says "export" rather than r0.
		if a.IsScalarOpDefaultNop() {
			return false
		}
	}
	return true
}

// IsScalarOpDefaultNop reports whether the scalar half matches the exact
// encoding the source assembler emits for an omitted scalar operation. Like
// IsVectorOpDefaultNop, this is only meaningful for disassembly.
func (a AluInstruction) IsScalarOpDefaultNop() bool {
	if a.ScalarOpcode != ucode.AluScalarRetainPrev ||
		a.ScalarResult.OriginalWriteMask != 0 ||
		a.ScalarResult.Clamp {
		return false
	}
	if a.ScalarResult.StorageTarget == TargetRegister {
		if a.ScalarResult.StorageIndex != 0 ||
			a.ScalarResult.StorageAddressingMode != AddressStatic {
			return false
		}
	}
	// For exports the vector half is kept when both are nop, so the
	// scalar half alone can always be dropped.
	return true
}

// IsNop reports whether the instruction has no effect at all. Unlike the
// default-nop predicates this is a translation-safe notion: it checks the
// effective write masks and the vector opcode's side effects rather than
// the literal default encoding.
func (a AluInstruction) IsNop() bool {
	return a.ScalarOpcode == ucode.AluScalarRetainPrev &&
		a.ScalarResult.UsedWriteMask() == 0 &&
		a.VectorAndConstantResult.UsedWriteMask() == 0 &&
		!a.VectorOpcode.HasSideEffects()
}

// MemExportStreamConstant recognizes the canonical eA write - a MAD into the
// memexport address export whose third operand is a statically addressed,
// identity-swizzled, unmodified float constant - and returns that constant's
// index. Memexport addressing is otherwise opaque to static analysis; this
// is how the translator discovers which constants back export streams.
// Returns InvalidConstantIndex when the instruction does not match.
func (a AluInstruction) MemExportStreamConstant() uint32 {
	if a.VectorAndConstantResult.StorageTarget == TargetExportAddress &&
		a.VectorOpcode == ucode.AluVectorMad &&
		a.VectorAndConstantResult.UsedResultComponents() == 0b1111 &&
		!a.VectorAndConstantResult.Clamp &&
		a.VectorOperands[2].StorageSource == SourceConstantFloat &&
		a.VectorOperands[2].StorageAddressingMode == AddressStatic &&
		a.VectorOperands[2].IsStandardSwizzle() &&
		!a.VectorOperands[2].Negate &&
		!a.VectorOperands[2].AbsoluteValue {
		return a.VectorOperands[2].StorageIndex
	}
	return InvalidConstantIndex
}

// DefaultNopAlu returns the canonical instruction both default-nop
// predicates hold for: max r0._, r0, r0 paired with retain_prev r0._.
func DefaultNopAlu() AluInstruction {
	defaultOperand := InstructionOperand{
		StorageSource:  SourceRegister,
		ComponentCount: 4,
		Components:     IdentitySwizzle(),
	}
	return AluInstruction{
		VectorOpcode: ucode.AluVectorMax,
		ScalarOpcode: ucode.AluScalarRetainPrev,
		VectorAndConstantResult: InstructionResult{
			StorageTarget: TargetRegister,
			Components:    IdentitySwizzle(),
		},
		ScalarResult: InstructionResult{
			StorageTarget: TargetRegister,
			Components:    IdentitySwizzle(),
		},
		VectorOperandCount: 2,
		VectorOperands:     [3]InstructionOperand{defaultOperand, defaultOperand, defaultOperand},
		ScalarOperands:     [2]InstructionOperand{defaultOperand, defaultOperand},
	}
}
