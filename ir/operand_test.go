package ir

import "testing"

func TestOperandComponentReplication(t *testing.T) {
	o := InstructionOperand{
		ComponentCount: 2,
		Components:     [4]SwizzleSource{SwizzleZ, SwizzleY, SwizzleX, SwizzleW},
	}
	want := [4]SwizzleSource{SwizzleZ, SwizzleY, SwizzleY, SwizzleY}
	for i := uint32(0); i < 4; i++ {
		if got := o.Component(i); got != want[i] {
			t.Errorf("Component(%d) = %v, want %v", i, got, want[i])
		}
	}
}

func TestIdenticalComponents(t *testing.T) {
	base := InstructionOperand{
		StorageSource:  SourceRegister,
		StorageIndex:   4,
		ComponentCount: 4,
		Components:     IdentitySwizzle(),
	}

	swizzled := base
	swizzled.Components = [4]SwizzleSource{SwizzleX, SwizzleX, SwizzleZ, SwizzleY}

	negated := base
	negated.Negate = true

	otherRegister := base
	otherRegister.StorageIndex = 5

	shortened := base
	shortened.ComponentCount = 1

	tests := []struct {
		name  string
		a, b  InstructionOperand
		want  uint32
		wantA uint32
	}{
		{"same operand", base, base, 0b1111, 0b1111},
		{"partly swizzled", base, swizzled, 0b0101, 0b0101},
		{"negated", base, negated, 0b0000, 0b1111},
		{"different register", base, otherRegister, 0b0000, 0b0000},
		{"replicated lane", base, shortened, 0b0001, 0b0001},
	}
	for _, tt := range tests {
		if got := tt.a.IdenticalComponents(tt.b); got != tt.want {
			t.Errorf("%s: IdenticalComponents() = %04b, want %04b", tt.name, got, tt.want)
		}
		if got := tt.a.AbsoluteIdenticalComponents(tt.b); got != tt.wantA {
			t.Errorf("%s: AbsoluteIdenticalComponents() = %04b, want %04b", tt.name, got, tt.wantA)
		}
		// Both relations are symmetric.
		if got, rev := tt.a.IdenticalComponents(tt.b), tt.b.IdenticalComponents(tt.a); got != rev {
			t.Errorf("%s: IdenticalComponents not symmetric: %04b vs %04b", tt.name, got, rev)
		}
	}
}
