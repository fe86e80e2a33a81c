package ucode

// CfWord is one 48-bit control-flow instruction. Lo holds bits 0..31, the
// low half of Hi holds bits 32..47. The opcode lives in bits 44..47.
//
// Field layout by instruction class:
//
//	exec family:  address 0..11, count 12..14, yield 15, sequence 16..27,
//	              bool constant 28..35, condition 36
//	loop_start:   skip address 0..11, loop constant 12..16, repeat 17
//	loop_end:     body address 0..11, loop constant 12..16,
//	              predicated break 17, condition 18
//	ccall/cjmp:   target address 0..11, bool constant 12..19,
//	              unconditional 20, predicated 21, condition 22
//	alloc:        count 0..3, alloc type 4..5
type CfWord struct {
	Lo uint32
	Hi uint32 // low 16 bits significant
}

func (w CfWord) raw() uint64 { return uint64(w.Lo) | uint64(w.Hi&0xFFFF)<<32 }

func (w *CfWord) setRaw(v uint64) {
	w.Lo = uint32(v)
	w.Hi = uint32(v>>32) & 0xFFFF
}

// PackCfPair packs two 48-bit control-flow words into three dwords.
func PackCfPair(a, b CfWord) [3]uint32 {
	av, bv := a.raw(), b.raw()
	return [3]uint32{
		uint32(av),
		uint32(av>>32) | uint32(bv)<<16,
		uint32(bv>>16) & 0xFFFF | uint32(bv>>32)<<16,
	}
}

// UnpackCfPair splits three dwords into two 48-bit control-flow words.
func UnpackCfPair(d [3]uint32) (a, b CfWord) {
	a.setRaw(uint64(d[0]) | uint64(d[1]&0xFFFF)<<32)
	b.setRaw(uint64(d[1]>>16) | uint64(d[2]&0xFFFF)<<16 | uint64(d[2]>>16)<<32)
	return a, b
}

// Opcode returns bits 44..47.
func (w CfWord) Opcode() ControlFlowOpcode {
	return ControlFlowOpcode(getBits(w.raw(), 44, 4))
}

// SetOpcode stores bits 44..47.
func (w *CfWord) SetOpcode(o ControlFlowOpcode) {
	w.setRaw(setBits(w.raw(), 44, 4, uint32(o)))
}

// Address returns the 12-bit address field shared by the exec, loop, call
// and jump classes.
func (w CfWord) Address() uint32      { return getBits(w.raw(), 0, 12) }
func (w *CfWord) SetAddress(v uint32) { w.setRaw(setBits(w.raw(), 0, 12, v)) }

// Exec class fields.

func (w CfWord) ExecCount() uint32             { return getBits(w.raw(), 12, 3) }
func (w *CfWord) SetExecCount(v uint32)        { w.setRaw(setBits(w.raw(), 12, 3, v)) }
func (w CfWord) ExecYield() bool               { return getFlag(w.raw(), 15) }
func (w *CfWord) SetExecYield(v bool)          { w.setRaw(setFlag(w.raw(), 15, v)) }
func (w CfWord) ExecSequence() uint32          { return getBits(w.raw(), 16, 12) }
func (w *CfWord) SetExecSequence(v uint32)     { w.setRaw(setBits(w.raw(), 16, 12, v)) }
func (w CfWord) ExecBoolConstant() uint32      { return getBits(w.raw(), 28, 8) }
func (w *CfWord) SetExecBoolConstant(v uint32) { w.setRaw(setBits(w.raw(), 28, 8, v)) }
func (w CfWord) ExecCondition() bool           { return getFlag(w.raw(), 36) }
func (w *CfWord) SetExecCondition(v bool)      { w.setRaw(setFlag(w.raw(), 36, v)) }

// Loop class fields.

func (w CfWord) LoopConstant() uint32      { return getBits(w.raw(), 12, 5) }
func (w *CfWord) SetLoopConstant(v uint32) { w.setRaw(setBits(w.raw(), 12, 5, v)) }
func (w CfWord) LoopRepeat() bool          { return getFlag(w.raw(), 17) }
func (w *CfWord) SetLoopRepeat(v bool)     { w.setRaw(setFlag(w.raw(), 17, v)) }
func (w CfWord) LoopPredBreak() bool       { return getFlag(w.raw(), 17) }
func (w *CfWord) SetLoopPredBreak(v bool)  { w.setRaw(setFlag(w.raw(), 17, v)) }
func (w CfWord) LoopCondition() bool       { return getFlag(w.raw(), 18) }
func (w *CfWord) SetLoopCondition(v bool)  { w.setRaw(setFlag(w.raw(), 18, v)) }

// Call/jump class fields.

func (w CfWord) JumpBoolConstant() uint32      { return getBits(w.raw(), 12, 8) }
func (w *CfWord) SetJumpBoolConstant(v uint32) { w.setRaw(setBits(w.raw(), 12, 8, v)) }
func (w CfWord) JumpUnconditional() bool       { return getFlag(w.raw(), 20) }
func (w *CfWord) SetJumpUnconditional(v bool)  { w.setRaw(setFlag(w.raw(), 20, v)) }
func (w CfWord) JumpPredicated() bool          { return getFlag(w.raw(), 21) }
func (w *CfWord) SetJumpPredicated(v bool)     { w.setRaw(setFlag(w.raw(), 21, v)) }
func (w CfWord) JumpCondition() bool           { return getFlag(w.raw(), 22) }
func (w *CfWord) SetJumpCondition(v bool)      { w.setRaw(setFlag(w.raw(), 22, v)) }

// Alloc class fields.

func (w CfWord) AllocCount() uint32      { return getBits(w.raw(), 0, 4) }
func (w *CfWord) SetAllocCount(v uint32) { w.setRaw(setBits(w.raw(), 0, 4, v)) }
func (w CfWord) AllocType() AllocType    { return AllocType(getBits(w.raw(), 4, 2)) }
func (w *CfWord) SetAllocType(t AllocType) {
	w.setRaw(setBits(w.raw(), 4, 2, uint32(t)))
}
