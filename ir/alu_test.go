package ir

import (
	"testing"

	"github.com/gogpu/xenos/ucode"
)

func TestDefaultNopAlu(t *testing.T) {
	a := DefaultNopAlu()
	if !a.IsVectorOpDefaultNop() {
		t.Error("vector half of the canonical nop not recognized")
	}
	if !a.IsScalarOpDefaultNop() {
		t.Error("scalar half of the canonical nop not recognized")
	}
	if !a.IsNop() {
		t.Error("canonical nop not recognized as a nop")
	}
}

func TestVectorDefaultNopExactness(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AluInstruction)
	}{
		{"opcode", func(a *AluInstruction) { a.VectorOpcode = ucode.AluVectorAdd }},
		{"write mask", func(a *AluInstruction) { a.VectorAndConstantResult.OriginalWriteMask = 0b0001 }},
		{"clamp", func(a *AluInstruction) { a.VectorAndConstantResult.Clamp = true }},
		{"result index", func(a *AluInstruction) { a.VectorAndConstantResult.StorageIndex = 1 }},
		{"result addressing", func(a *AluInstruction) { a.VectorAndConstantResult.StorageAddressingMode = AddressAbsolute }},
		{"operand 0 index", func(a *AluInstruction) { a.VectorOperands[0].StorageIndex = 1 }},
		{"operand 0 source", func(a *AluInstruction) { a.VectorOperands[0].StorageSource = SourceConstantFloat }},
		{"operand 0 swizzle", func(a *AluInstruction) { a.VectorOperands[0].Components[0] = SwizzleY }},
		{"operand 0 count", func(a *AluInstruction) { a.VectorOperands[0].ComponentCount = 1 }},
		{"operand 1 negate", func(a *AluInstruction) { a.VectorOperands[1].Negate = true }},
		{"operand 1 absolute", func(a *AluInstruction) { a.VectorOperands[1].AbsoluteValue = true }},
		{"operand 1 addressing", func(a *AluInstruction) { a.VectorOperands[1].StorageAddressingMode = AddressRelative }},
	}
	for _, tt := range tests {
		a := DefaultNopAlu()
		tt.mutate(&a)
		if a.IsVectorOpDefaultNop() {
			t.Errorf("%s changed but the vector half still reads as the default nop", tt.name)
		}
	}
}

func TestScalarDefaultNopExactness(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AluInstruction)
	}{
		{"opcode", func(a *AluInstruction) { a.ScalarOpcode = ucode.AluScalarAdds }},
		{"write mask", func(a *AluInstruction) { a.ScalarResult.OriginalWriteMask = 0b1000 }},
		{"clamp", func(a *AluInstruction) { a.ScalarResult.Clamp = true }},
		{"result index", func(a *AluInstruction) { a.ScalarResult.StorageIndex = 2 }},
		{"result addressing", func(a *AluInstruction) { a.ScalarResult.StorageAddressingMode = AddressRelative }},
	}
	for _, tt := range tests {
		a := DefaultNopAlu()
		tt.mutate(&a)
		if a.IsScalarOpDefaultNop() {
			t.Errorf("%s changed but the scalar half still reads as the default nop", tt.name)
		}
	}
}

// An all-nop instruction whose vector destination is an export keeps the
// vector half in the disassembly so the export target survives reassembly.
func TestDefaultNopExportKeepsVectorHalf(t *testing.T) {
	a := DefaultNopAlu()
	a.VectorAndConstantResult.StorageTarget = TargetExportAddress
	if a.IsVectorOpDefaultNop() {
		t.Error("export destination dropped from the disassembly")
	}
	if !a.IsScalarOpDefaultNop() {
		t.Error("scalar half should still be omittable")
	}

	// Once the scalar half is live the vector half can be omitted again.
	a.ScalarResult.OriginalWriteMask = 0b0001
	if !a.IsVectorOpDefaultNop() {
		t.Error("vector half should be omittable when the scalar half is kept")
	}
}

func TestIsNop(t *testing.T) {
	masked := DefaultNopAlu()
	masked.VectorOpcode = ucode.AluVectorAdd
	masked.VectorAndConstantResult.StorageIndex = 3

	kill := DefaultNopAlu()
	kill.VectorOpcode = ucode.AluVectorKillEq

	scalarWrite := DefaultNopAlu()
	scalarWrite.ScalarOpcode = ucode.AluScalarMuls
	scalarWrite.ScalarResult.OriginalWriteMask = 0b0001

	phantom := DefaultNopAlu()
	phantom.VectorAndConstantResult.StorageTarget = TargetNone
	phantom.VectorAndConstantResult.OriginalWriteMask = 0b1111

	tests := []struct {
		name string
		alu  AluInstruction
		want bool
	}{
		{"canonical", DefaultNopAlu(), true},
		{"masked vector op", masked, true},
		{"kill with empty mask", kill, false},
		{"scalar write", scalarWrite, false},
		{"mask without target components", phantom, true},
	}
	for _, tt := range tests {
		if got := tt.alu.IsNop(); got != tt.want {
			t.Errorf("%s: IsNop() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func memExportMad(constant uint32) AluInstruction {
	a := DefaultNopAlu()
	a.VectorOpcode = ucode.AluVectorMad
	a.VectorAndConstantResult = InstructionResult{
		StorageTarget:     TargetExportAddress,
		OriginalWriteMask: 0b1111,
		Components:        IdentitySwizzle(),
	}
	a.VectorOperandCount = 3
	a.VectorOperands[2] = InstructionOperand{
		StorageSource:  SourceConstantFloat,
		StorageIndex:   constant,
		ComponentCount: 4,
		Components:     IdentitySwizzle(),
	}
	return a
}

func TestMemExportStreamConstant(t *testing.T) {
	if got := memExportMad(31).MemExportStreamConstant(); got != 31 {
		t.Fatalf("MemExportStreamConstant() = %d, want 31", got)
	}

	tests := []struct {
		name   string
		mutate func(*AluInstruction)
	}{
		{"wrong opcode", func(a *AluInstruction) { a.VectorOpcode = ucode.AluVectorAdd }},
		{"wrong target", func(a *AluInstruction) { a.VectorAndConstantResult.StorageTarget = TargetExportData }},
		{"partial mask", func(a *AluInstruction) { a.VectorAndConstantResult.OriginalWriteMask = 0b0111 }},
		{"clamped", func(a *AluInstruction) { a.VectorAndConstantResult.Clamp = true }},
		{"register stream operand", func(a *AluInstruction) { a.VectorOperands[2].StorageSource = SourceRegister }},
		{"relative stream operand", func(a *AluInstruction) { a.VectorOperands[2].StorageAddressingMode = AddressRelative }},
		{"swizzled stream operand", func(a *AluInstruction) { a.VectorOperands[2].Components[0] = SwizzleW }},
		{"negated stream operand", func(a *AluInstruction) { a.VectorOperands[2].Negate = true }},
		{"absolute stream operand", func(a *AluInstruction) { a.VectorOperands[2].AbsoluteValue = true }},
	}
	for _, tt := range tests {
		a := memExportMad(31)
		tt.mutate(&a)
		if got := a.MemExportStreamConstant(); got != InvalidConstantIndex {
			t.Errorf("%s: MemExportStreamConstant() = %d, want invalid", tt.name, got)
		}
	}
}
