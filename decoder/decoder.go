// Package decoder turns raw Xenos microcode words into parsed instructions.
//
// The walk follows the container layout defined in package ucode: 48-bit
// control-flow instructions packed in pairs at the front of the stream,
// with exec instructions pointing at fixed-size ALU/fetch slots. Decoding
// stops once the terminating exec and its block have been consumed.
package decoder

import (
	"fmt"

	"github.com/gogpu/xenos/ir"
	"github.com/gogpu/xenos/ucode"
)

// Decode parses a microcode stream into program order: each control-flow
// instruction, with exec-gated ALU/fetch instructions directly after their
// exec.
func Decode(shaderType ucode.ShaderType, dwords []uint32) (*ir.Program, error) {
	if len(dwords) == 0 {
		return nil, fmt.Errorf("empty microcode stream")
	}
	p := &ir.Program{ShaderType: shaderType}
	cfIndex := uint32(0)
	for pair := 0; ; pair++ {
		base := pair * 3
		if base+3 > len(dwords) {
			return nil, fmt.Errorf("control flow ran past the end of the stream at dword %d", base)
		}
		a, b := ucode.UnpackCfPair([3]uint32{dwords[base], dwords[base+1], dwords[base+2]})
		for _, w := range [2]ucode.CfWord{a, b} {
			ended, err := decodeControlFlow(p, dwords, w, cfIndex)
			if err != nil {
				return nil, err
			}
			if ended {
				return p, nil
			}
			cfIndex++
		}
	}
}

// decodeControlFlow appends one control-flow instruction, plus its gated
// block for execs. It reports whether the stream has ended.
func decodeControlFlow(p *ir.Program, dwords []uint32, w ucode.CfWord, cfIndex uint32) (bool, error) {
	opcode := w.Opcode()
	switch {
	case opcode == ucode.CfNop, opcode == ucode.CfMarkVsFetchDone:
		return false, nil
	case opcode.IsExec():
		exec := execFromWord(w, cfIndex)
		p.Instructions = append(p.Instructions, exec)
		if err := decodeExecBody(p, dwords, exec); err != nil {
			return false, err
		}
		return exec.End, nil
	}
	switch opcode {
	case ucode.CfLoopStart:
		p.Instructions = append(p.Instructions, ir.LoopStartInstruction{
			DwordIndex:        cfIndex,
			LoopConstantIndex: w.LoopConstant(),
			Repeat:            w.LoopRepeat(),
			LoopSkipAddress:   w.Address(),
		})
	case ucode.CfLoopEnd:
		p.Instructions = append(p.Instructions, ir.LoopEndInstruction{
			DwordIndex:         cfIndex,
			PredicatedBreak:    w.LoopPredBreak(),
			PredicateCondition: w.LoopCondition(),
			LoopConstantIndex:  w.LoopConstant(),
			LoopBodyAddress:    w.Address(),
		})
	case ucode.CfCondCall:
		p.Instructions = append(p.Instructions, ir.CallInstruction{
			DwordIndex:        cfIndex,
			TargetAddress:     w.Address(),
			Condition:         branchCondition(w),
			BoolConstantIndex: w.JumpBoolConstant(),
			ConditionValue:    w.JumpCondition(),
		})
	case ucode.CfReturn:
		p.Instructions = append(p.Instructions, ir.ReturnInstruction{DwordIndex: cfIndex})
	case ucode.CfCondJmp:
		p.Instructions = append(p.Instructions, ir.JumpInstruction{
			DwordIndex:        cfIndex,
			TargetAddress:     w.Address(),
			Condition:         branchCondition(w),
			BoolConstantIndex: w.JumpBoolConstant(),
			ConditionValue:    w.JumpCondition(),
		})
	case ucode.CfAlloc:
		p.Instructions = append(p.Instructions, ir.AllocInstruction{
			DwordIndex:     cfIndex,
			Type:           w.AllocType(),
			Count:          int(w.AllocCount()),
			IsVertexShader: p.ShaderType == ucode.ShaderVertex,
		})
	default:
		return false, fmt.Errorf("unhandled control flow opcode %d at instruction %d", opcode, cfIndex)
	}
	return false, nil
}

func execFromWord(w ucode.CfWord, cfIndex uint32) ir.ExecInstruction {
	opcode := w.Opcode()
	exec := ir.ExecInstruction{
		DwordIndex:         cfIndex,
		Opcode:             opcode,
		InstructionAddress: w.Address(),
		InstructionCount:   w.ExecCount(),
		End:                opcode.IsEnd(),
		Clean:              opcode.ResetsPredicate(),
		Yield:              w.ExecYield(),
	}
	// Only the bits covering gated instructions are meaningful.
	exec.Sequence = w.ExecSequence() & (1<<(2*exec.InstructionCount) - 1)
	switch {
	case opcode.IsConditionalExec():
		exec.Condition = ir.ConditionBool
		exec.BoolConstantIndex = w.ExecBoolConstant()
		exec.ConditionValue = w.ExecCondition()
	case opcode.IsPredicatedExec():
		exec.Condition = ir.ConditionPredicate
		exec.ConditionValue = w.ExecCondition()
	}
	return exec
}

func branchCondition(w ucode.CfWord) ir.ConditionKind {
	switch {
	case w.JumpUnconditional():
		return ir.ConditionNone
	case w.JumpPredicated():
		return ir.ConditionPredicate
	}
	return ir.ConditionBool
}

func decodeExecBody(p *ir.Program, dwords []uint32, exec ir.ExecInstruction) error {
	for i := uint32(0); i < exec.InstructionCount; i++ {
		offset := int(exec.InstructionAddress+i) * ucode.SlotDwords
		if offset+ucode.SlotDwords > len(dwords) {
			return fmt.Errorf("exec at %d references slot %d past the end of the stream",
				exec.DwordIndex, exec.InstructionAddress+i)
		}
		var slot ucode.Slot
		copy(slot[:], dwords[offset:offset+ucode.SlotDwords])
		isFetch := exec.Sequence>>(2*i)&0b01 != 0
		switch {
		case !isFetch:
			p.Instructions = append(p.Instructions, aluFromSlot(ucode.UnpackAluSlot(slot)))
		case ucode.IsVertexFetchSlot(slot):
			p.Instructions = append(p.Instructions, vertexFetchFromSlot(ucode.UnpackVertexFetchSlot(slot)))
		default:
			p.Instructions = append(p.Instructions, textureFetchFromSlot(ucode.UnpackTextureFetchSlot(slot)))
		}
	}
	return nil
}

func aluFromSlot(s ucode.AluSlot) ir.AluInstruction {
	a := ir.AluInstruction{
		VectorOpcode:            s.VectorOpcode,
		ScalarOpcode:            s.ScalarOpcode,
		Predicated:              s.Predicated,
		PredicateCondition:      s.PredicateCondition,
		VectorAndConstantResult: resultFromWire(s.VectorResult),
		ScalarResult:            resultFromWire(s.ScalarResult),
		VectorOperandCount:      s.VectorOperandCount,
		ScalarOperandCount:      s.ScalarOperandCount,
	}
	for i, op := range s.VectorOperands {
		a.VectorOperands[i] = operandFromWire(op)
	}
	for i, op := range s.ScalarOperands {
		a.ScalarOperands[i] = operandFromWire(op)
	}
	return a
}

func vertexFetchFromSlot(s ucode.VertexFetchSlot) ir.VertexFetchInstruction {
	f := ir.VertexFetchInstruction{
		Opcode:             s.Opcode,
		MiniFetch:          s.MiniFetch,
		Predicated:         s.Predicated,
		PredicateCondition: s.PredicateCondition,
		Result:             resultFromWire(s.Result),
		OperandCount:       s.OperandCount,
		Attributes: ir.VertexFetchAttributes{
			DataFormat:     s.DataFormat,
			Offset:         s.Offset,
			Stride:         s.Stride,
			ExpAdjust:      s.ExpAdjust,
			IsIndexRounded: s.IndexRounded,
			IsSigned:       s.Signed,
			IsInteger:      s.Integer,
			PrefetchCount:  s.PrefetchCount,
		},
	}
	for i, op := range s.Operands {
		f.Operands[i] = operandFromWire(op)
	}
	return f
}

func textureFetchFromSlot(s ucode.TextureFetchSlot) ir.TextureFetchInstruction {
	f := ir.TextureFetchInstruction{
		Opcode:             s.Opcode,
		Dimension:          s.Dimension,
		Predicated:         s.Predicated,
		PredicateCondition: s.PredicateCondition,
		Result:             resultFromWire(s.Result),
		OperandCount:       s.OperandCount,
		Attributes: ir.TextureFetchAttributes{
			FetchValidOnly:          s.FetchValidOnly,
			UnnormalizedCoordinates: s.UnnormalizedCoordinates,
			MagFilter:               s.MagFilter,
			MinFilter:               s.MinFilter,
			MipFilter:               s.MipFilter,
			AnisoFilter:             s.AnisoFilter,
			VolMagFilter:            s.VolMagFilter,
			VolMinFilter:            s.VolMinFilter,
			UseComputedLOD:          s.UseComputedLod,
			UseRegisterLOD:          s.UseRegisterLod,
			UseRegisterGradients:    s.UseRegisterGradients,
			LODBias:                 float32(s.LodBias) / 32,
			OffsetX:                 float32(s.OffsetX) / 2,
			OffsetY:                 float32(s.OffsetY) / 2,
			OffsetZ:                 float32(s.OffsetZ) / 2,
		},
	}
	for i, op := range s.Operands {
		f.Operands[i] = operandFromWire(op)
	}
	return f
}

func resultFromWire(r ucode.Result) ir.InstructionResult {
	out := ir.InstructionResult{
		StorageTarget:         clampTarget(r.Target),
		StorageIndex:          r.Index,
		StorageAddressingMode: clampAddressing(r.AddressingMode),
		Clamp:                 r.Clamp,
		OriginalWriteMask:     r.WriteMask,
	}
	for i, s := range r.Swizzle {
		out.Components[i] = clampSwizzle(s)
	}
	return out
}

func operandFromWire(o ucode.Operand) ir.InstructionOperand {
	out := ir.InstructionOperand{
		StorageSource:         ir.StorageSource(o.Kind),
		StorageIndex:          o.Index,
		StorageAddressingMode: clampAddressing(o.AddressingMode),
		Negate:                o.Negate,
		AbsoluteValue:         o.Absolute,
		ComponentCount:        clampComponentCount(o.ComponentCount),
	}
	for i, s := range o.Swizzle {
		out.Components[i] = clampSwizzle(s)
	}
	return out
}

// Malformed field values are clamped rather than trapped: the IR predicates
// must stay total even on decoder-contract violations.

func clampSwizzle(v uint32) ir.SwizzleSource {
	if v > uint32(ir.Swizzle1) {
		v = uint32(ir.Swizzle1)
	}
	return ir.SwizzleSource(v)
}

func clampAddressing(v uint32) ir.AddressingMode {
	if v > uint32(ir.AddressRelative) {
		v = uint32(ir.AddressRelative)
	}
	return ir.AddressingMode(v)
}

func clampTarget(v uint32) ir.StorageTarget {
	if v > uint32(ir.TargetDepth) {
		v = uint32(ir.TargetNone)
	}
	return ir.StorageTarget(v)
}

func clampComponentCount(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	if v > 4 {
		return 4
	}
	return v
}
