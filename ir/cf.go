package ir

import "github.com/gogpu/xenos/ucode"

// ExecInstruction runs a contiguous block of ALU/fetch instructions.
type ExecInstruction struct {
	// DwordIndex is the control-flow ordinal in the source microcode,
	// kept for diagnostics and disassembly ordering.
	DwordIndex uint32
	// Opcode is the exact control-flow opcode this exec decoded from.
	Opcode ucode.ControlFlowOpcode

	// InstructionAddress is where the gated instructions reside, in slot
	// units.
	InstructionAddress uint32
	// InstructionCount is the number of instructions to execute.
	InstructionCount uint32

	// Condition gates the block; BoolConstantIndex and ConditionValue
	// qualify it for ConditionBool and ConditionPredicate.
	Condition         ConditionKind
	BoolConstantIndex uint32
	ConditionValue    bool

	// End marks the last exec of the shader.
	End bool
	// Clean resets the current predicate before the block runs.
	Clean bool
	// Yield is preserved for round trips; its runtime meaning is not
	// confirmed.
	Yield bool

	// Sequence holds two bits per gated instruction: bit 0 tags the
	// instruction as fetch rather than ALU, bit 1 requests serialization.
	// The decoder relies on these to interpret the gated slots.
	Sequence uint32
}

// LoopStartInstruction begins a loop whose parameters live in an integer
// loop constant, byte-wise {count, start, step in [-128, 127]}.
type LoopStartInstruction struct {
	DwordIndex uint32

	// LoopConstantIndex selects the loop constant [0-31].
	LoopConstantIndex uint32
	// Repeat reuses the current aL instead of resetting it to loop start.
	Repeat bool
	// LoopSkipAddress is the target when the loop is skipped entirely.
	LoopSkipAddress uint32
}

// LoopEndInstruction closes a loop body.
type LoopEndInstruction struct {
	DwordIndex uint32

	// PredicatedBreak breaks out when the predicate matches
	// PredicateCondition.
	PredicatedBreak    bool
	PredicateCondition bool

	// LoopConstantIndex selects the loop constant [0-31].
	LoopConstantIndex uint32
	// LoopBodyAddress is the start of the loop body.
	LoopBodyAddress uint32
}

// CallInstruction transfers control to a subroutine.
type CallInstruction struct {
	DwordIndex uint32

	TargetAddress uint32

	Condition         ConditionKind
	BoolConstantIndex uint32
	ConditionValue    bool
}

// ReturnInstruction returns from a subroutine.
type ReturnInstruction struct {
	DwordIndex uint32
}

// JumpInstruction transfers control within the control-flow program.
type JumpInstruction struct {
	DwordIndex uint32

	TargetAddress uint32

	Condition         ConditionKind
	BoolConstantIndex uint32
	ConditionValue    bool
}

// AllocInstruction reserves export register space.
type AllocInstruction struct {
	DwordIndex uint32

	// Type is the resource being allocated.
	Type ucode.AllocType
	// Count is the total count associated with the allocation.
	Count int

	// IsVertexShader selects the export namespace the allocation lands in.
	IsVertexShader bool
}
