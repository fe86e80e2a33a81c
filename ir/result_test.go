package ir

import "testing"

func TestTargetUsedComponents(t *testing.T) {
	tests := []struct {
		target StorageTarget
		want   uint32
	}{
		{TargetNone, 0b0000},
		{TargetRegister, 0b1111},
		{TargetInterpolator, 0b1111},
		{TargetPosition, 0b1111},
		{TargetPointSizeEdgeFlagKillVertex, 0b0111},
		{TargetExportAddress, 0b1111},
		{TargetExportData, 0b1111},
		{TargetColor, 0b1111},
		{TargetDepth, 0b0001},
	}
	for _, tt := range tests {
		if got := tt.target.UsedComponents(); got != tt.want {
			t.Errorf("%d.UsedComponents() = %04b, want %04b", tt.target, got, tt.want)
		}
	}
}

// The used mask is always contained in the authored mask.
func TestUsedWriteMaskContainment(t *testing.T) {
	targets := []StorageTarget{
		TargetNone, TargetRegister, TargetInterpolator, TargetPosition,
		TargetPointSizeEdgeFlagKillVertex, TargetExportAddress,
		TargetExportData, TargetColor, TargetDepth,
	}
	for _, target := range targets {
		for mask := uint32(0); mask < 16; mask++ {
			r := InstructionResult{StorageTarget: target, OriginalWriteMask: mask}
			used := r.UsedWriteMask()
			if used&^mask != 0 {
				t.Fatalf("target %d mask %04b: used mask %04b writes unauthored lanes", target, mask, used)
			}
			if used&^target.UsedComponents() != 0 {
				t.Fatalf("target %d mask %04b: used mask %04b writes missing lanes", target, mask, used)
			}
		}
	}
}

func TestUsedResultComponents(t *testing.T) {
	tests := []struct {
		name string
		r    InstructionResult
		want uint32
	}{
		{
			"identity full",
			InstructionResult{StorageTarget: TargetRegister, OriginalWriteMask: 0b1111, Components: IdentitySwizzle()},
			0b1111,
		},
		{
			"replicated x",
			InstructionResult{StorageTarget: TargetRegister, OriginalWriteMask: 0b1111},
			0b0001,
		},
		{
			"constant lanes only",
			InstructionResult{
				StorageTarget:     TargetRegister,
				OriginalWriteMask: 0b0011,
				Components:        [4]SwizzleSource{Swizzle0, Swizzle1, SwizzleZ, SwizzleW},
			},
			0b0000,
		},
		{
			"depth uses one lane",
			InstructionResult{StorageTarget: TargetDepth, OriginalWriteMask: 0b1111, Components: IdentitySwizzle()},
			0b0001,
		},
		{
			"mask filters swizzle",
			InstructionResult{
				StorageTarget:     TargetRegister,
				OriginalWriteMask: 0b1000,
				Components:        [4]SwizzleSource{SwizzleW, SwizzleZ, SwizzleY, SwizzleX},
			},
			0b0001,
		},
	}
	for _, tt := range tests {
		if got := tt.r.UsedResultComponents(); got != tt.want {
			t.Errorf("%s: UsedResultComponents() = %04b, want %04b", tt.name, got, tt.want)
		}
	}
}
