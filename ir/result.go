package ir

// InstructionResult describes where an instruction stores its value.
type InstructionResult struct {
	// StorageTarget is where the result is going.
	StorageTarget StorageTarget
	// StorageIndex indexes into the target, if it is indexed.
	StorageIndex uint32
	// StorageAddressingMode is how the index is dynamically addressed.
	StorageAddressingMode AddressingMode
	// Clamp clamps the result value to [0, 1].
	Clamp bool
	// OriginalWriteMask is the authored write mask from the microcode,
	// regardless of whether the masked components exist in the target.
	OriginalWriteMask uint32
	// Components defines the source for each output lane xyzw.
	Components [4]SwizzleSource
}

// UsedWriteMask returns the authored mask restricted to components that are
// actually present in the target.
func (r InstructionResult) UsedWriteMask() uint32 {
	return r.OriginalWriteMask & r.StorageTarget.UsedComponents()
}

// IsStandardSwizzle reports whether all four lanes are written in their
// identity xyzw arrangement.
func (r InstructionResult) IsStandardSwizzle() bool {
	return r.UsedWriteMask() == 0b1111 &&
		r.Components[0] == SwizzleX &&
		r.Components[1] == SwizzleY &&
		r.Components[2] == SwizzleZ &&
		r.Components[3] == SwizzleW
}

// UsedResultComponents returns the mask of source lanes, before swizzling,
// that are neither discarded nor replaced with a constant. A translator may
// skip computing lanes outside this mask.
func (r InstructionResult) UsedResultComponents() uint32 {
	usedWriteMask := r.UsedWriteMask()
	used := uint32(0)
	for i := uint32(0); i < 4; i++ {
		if usedWriteMask&(1<<i) != 0 && r.Components[i] <= SwizzleW {
			used |= 1 << uint32(r.Components[i])
		}
	}
	return used
}
