package ir

// InstructionOperand describes where an instruction reads a value from and
// how the value is modified on the way in.
type InstructionOperand struct {
	// StorageSource is where the value comes from.
	StorageSource StorageSource
	// StorageIndex indexes into the source.
	StorageIndex uint32
	// StorageAddressingMode is how the index is dynamically addressed.
	StorageAddressingMode AddressingMode
	// Negate negates the value.
	Negate bool
	// AbsoluteValue takes the absolute value, before any negation.
	AbsoluteValue bool
	// ComponentCount is the number of components taken from the source,
	// 1 to 4.
	ComponentCount uint32
	// Components defines the source for each lane, up to ComponentCount.
	Components [4]SwizzleSource
}

// Component returns the swizzle source for a lane, replicating the rightmost
// specified component when fewer than four are given. This mirrors how the
// source compiler fills unspecified lanes.
func (o InstructionOperand) Component(i uint32) SwizzleSource {
	if o.ComponentCount > 0 && i > o.ComponentCount-1 {
		i = o.ComponentCount - 1
	}
	return o.Components[i&3]
}

// IsStandardSwizzle reports whether all four components are specified in
// their identity xyzw arrangement.
func (o InstructionOperand) IsStandardSwizzle() bool {
	return o.ComponentCount == 4 &&
		o.Components[0] == SwizzleX &&
		o.Components[1] == SwizzleY &&
		o.Components[2] == SwizzleZ &&
		o.Components[3] == SwizzleW
}

// AbsoluteIdenticalComponents returns the mask of lanes on which the two
// operands read the same value up to sign, treating the rightmost component
// as replicated.
func (o InstructionOperand) AbsoluteIdenticalComponents(other InstructionOperand) uint32 {
	if o.StorageSource != other.StorageSource ||
		o.StorageIndex != other.StorageIndex ||
		o.StorageAddressingMode != other.StorageAddressingMode {
		return 0
	}
	identical := uint32(0)
	for i := uint32(0); i < 4; i++ {
		if o.Component(i) == other.Component(i) {
			identical |= 1 << i
		}
	}
	return identical
}

// IdenticalComponents returns the mask of lanes on which the two operands
// always read bitwise-equal values, including sign treatment.
func (o InstructionOperand) IdenticalComponents(other InstructionOperand) uint32 {
	if o.Negate != other.Negate || o.AbsoluteValue != other.AbsoluteValue {
		return 0
	}
	return o.AbsoluteIdenticalComponents(other)
}
