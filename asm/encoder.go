package asm

import (
	"fmt"
	"math"

	"github.com/gogpu/xenos/ir"
	"github.com/gogpu/xenos/ucode"
)

const maxExecAddress = 1<<12 - 1

// Encode packs a program into microcode words: control-flow pairs at the
// front, exec-gated instruction slots at the dword offsets the exec
// addresses name. The inverse of decoder.Decode over canonical programs.
func Encode(p *ir.Program) ([]uint32, error) {
	var cf []ucode.CfWord
	type slotWrite struct {
		offset int
		slot   ucode.Slot
	}
	var slots []slotWrite

	insts := p.Instructions
	for i := 0; i < len(insts); i++ {
		w, err := controlFlowWord(insts[i])
		if err != nil {
			return nil, err
		}
		cf = append(cf, w)
		exec, isExec := insts[i].(ir.ExecInstruction)
		if !isExec {
			continue
		}
		if exec.InstructionCount > maxExecCount {
			return nil, fmt.Errorf("exec at %d gates %d instructions, at most %d fit", exec.DwordIndex, exec.InstructionCount, maxExecCount)
		}
		if exec.InstructionAddress+exec.InstructionCount > maxExecAddress+1 {
			return nil, fmt.Errorf("exec at %d places instructions past address %d", exec.DwordIndex, maxExecAddress)
		}
		for j := uint32(0); j < exec.InstructionCount; j++ {
			if i+1 >= len(insts) {
				return nil, fmt.Errorf("exec at %d gates %d instructions but the program ends after %d", exec.DwordIndex, exec.InstructionCount, j)
			}
			i++
			slot, err := gatedSlot(insts[i], exec.Sequence>>(2*j)&0b01 != 0)
			if err != nil {
				return nil, err
			}
			slots = append(slots, slotWrite{int(exec.InstructionAddress+j) * ucode.SlotDwords, slot})
		}
	}
	if len(cf) == 0 {
		return nil, fmt.Errorf("program has no control flow instructions")
	}

	cfDwords := (len(cf) + 1) / 2 * 3
	total := cfDwords
	for _, sw := range slots {
		if sw.offset < cfDwords {
			return nil, fmt.Errorf("instruction slot at dword %d overlaps the control flow section (%d dwords)", sw.offset, cfDwords)
		}
		if end := sw.offset + ucode.SlotDwords; end > total {
			total = end
		}
	}

	words := make([]uint32, total)
	for i := 0; i < len(cf); i += 2 {
		var b ucode.CfWord
		if i+1 < len(cf) {
			b = cf[i+1]
		}
		packed := ucode.PackCfPair(cf[i], b)
		copy(words[i/2*3:], packed[:])
	}
	for _, sw := range slots {
		copy(words[sw.offset:], sw.slot[:])
	}
	return words, nil
}

func controlFlowWord(inst ir.Instruction) (ucode.CfWord, error) {
	var w ucode.CfWord
	switch v := inst.(type) {
	case ir.ExecInstruction:
		w.SetOpcode(v.Opcode)
		w.SetAddress(v.InstructionAddress)
		w.SetExecCount(v.InstructionCount)
		w.SetExecYield(v.Yield)
		w.SetExecSequence(v.Sequence & (1<<(2*v.InstructionCount) - 1))
		switch v.Condition {
		case ir.ConditionBool:
			w.SetExecBoolConstant(v.BoolConstantIndex)
			w.SetExecCondition(v.ConditionValue)
		case ir.ConditionPredicate:
			w.SetExecCondition(v.ConditionValue)
		}
	case ir.LoopStartInstruction:
		w.SetOpcode(ucode.CfLoopStart)
		w.SetAddress(v.LoopSkipAddress)
		w.SetLoopConstant(v.LoopConstantIndex)
		w.SetLoopRepeat(v.Repeat)
	case ir.LoopEndInstruction:
		w.SetOpcode(ucode.CfLoopEnd)
		w.SetAddress(v.LoopBodyAddress)
		w.SetLoopConstant(v.LoopConstantIndex)
		w.SetLoopPredBreak(v.PredicatedBreak)
		w.SetLoopCondition(v.PredicateCondition)
	case ir.CallInstruction:
		w.SetOpcode(ucode.CfCondCall)
		encodeBranch(&w, v.TargetAddress, v.Condition, v.BoolConstantIndex, v.ConditionValue)
	case ir.ReturnInstruction:
		w.SetOpcode(ucode.CfReturn)
	case ir.JumpInstruction:
		w.SetOpcode(ucode.CfCondJmp)
		encodeBranch(&w, v.TargetAddress, v.Condition, v.BoolConstantIndex, v.ConditionValue)
	case ir.AllocInstruction:
		w.SetOpcode(ucode.CfAlloc)
		w.SetAllocCount(uint32(v.Count))
		w.SetAllocType(v.Type)
	default:
		return w, fmt.Errorf("instruction %T outside an exec block", inst)
	}
	return w, nil
}

func encodeBranch(w *ucode.CfWord, addr uint32, kind ir.ConditionKind, boolIndex uint32, value bool) {
	w.SetAddress(addr)
	switch kind {
	case ir.ConditionNone:
		w.SetJumpUnconditional(true)
	case ir.ConditionBool:
		w.SetJumpBoolConstant(boolIndex)
		w.SetJumpCondition(value)
	case ir.ConditionPredicate:
		w.SetJumpPredicated(true)
		w.SetJumpCondition(value)
	}
}

func gatedSlot(inst ir.Instruction, isFetch bool) (ucode.Slot, error) {
	switch v := inst.(type) {
	case ir.AluInstruction:
		if isFetch {
			return ucode.Slot{}, fmt.Errorf("exec sequence marks an ALU instruction as a fetch")
		}
		return aluSlot(v).Pack(), nil
	case ir.VertexFetchInstruction:
		if !isFetch {
			return ucode.Slot{}, fmt.Errorf("exec sequence marks a vertex fetch as an ALU instruction")
		}
		return vertexFetchSlot(v).Pack(), nil
	case ir.TextureFetchInstruction:
		if !isFetch {
			return ucode.Slot{}, fmt.Errorf("exec sequence marks a texture fetch as an ALU instruction")
		}
		return textureFetchSlot(v).Pack(), nil
	}
	return ucode.Slot{}, fmt.Errorf("%T cannot be gated by an exec", inst)
}

func aluSlot(a ir.AluInstruction) ucode.AluSlot {
	s := ucode.AluSlot{
		VectorOpcode:       a.VectorOpcode,
		ScalarOpcode:       a.ScalarOpcode,
		Predicated:         a.Predicated,
		PredicateCondition: a.PredicateCondition,
		VectorOperandCount: a.VectorOperandCount,
		ScalarOperandCount: a.ScalarOperandCount,
		VectorResult:       wireResult(a.VectorAndConstantResult),
		ScalarResult:       wireResult(a.ScalarResult),
	}
	for i, op := range a.VectorOperands {
		s.VectorOperands[i] = wireOperand(op)
	}
	for i, op := range a.ScalarOperands {
		s.ScalarOperands[i] = wireOperand(op)
	}
	return s
}

func vertexFetchSlot(f ir.VertexFetchInstruction) ucode.VertexFetchSlot {
	s := ucode.VertexFetchSlot{
		Opcode:             f.Opcode,
		MiniFetch:          f.MiniFetch,
		Predicated:         f.Predicated,
		PredicateCondition: f.PredicateCondition,
		OperandCount:       f.OperandCount,
		DataFormat:         f.Attributes.DataFormat,
		Signed:             f.Attributes.IsSigned,
		Integer:            f.Attributes.IsInteger,
		IndexRounded:       f.Attributes.IsIndexRounded,
		PrefetchCount:      f.Attributes.PrefetchCount,
		ExpAdjust:          f.Attributes.ExpAdjust,
		Result:             wireResult(f.Result),
		Offset:             f.Attributes.Offset,
		Stride:             f.Attributes.Stride,
	}
	for i, op := range f.Operands {
		s.Operands[i] = wireOperand(op)
	}
	return s
}

func textureFetchSlot(f ir.TextureFetchInstruction) ucode.TextureFetchSlot {
	attr := f.Attributes
	s := ucode.TextureFetchSlot{
		Opcode:                  f.Opcode,
		Dimension:               f.Dimension,
		Predicated:              f.Predicated,
		PredicateCondition:      f.PredicateCondition,
		OperandCount:            f.OperandCount,
		FetchValidOnly:          attr.FetchValidOnly,
		UnnormalizedCoordinates: attr.UnnormalizedCoordinates,
		UseComputedLod:          attr.UseComputedLOD,
		UseRegisterLod:          attr.UseRegisterLOD,
		UseRegisterGradients:    attr.UseRegisterGradients,
		MagFilter:               attr.MagFilter,
		MinFilter:               attr.MinFilter,
		MipFilter:               attr.MipFilter,
		VolMagFilter:            attr.VolMagFilter,
		VolMinFilter:            attr.VolMinFilter,
		AnisoFilter:             attr.AnisoFilter,
		LodBias:                 fixedPoint(attr.LODBias, 32, -64, 63),
		OffsetX:                 fixedPoint(attr.OffsetX, 2, -16, 15),
		OffsetY:                 fixedPoint(attr.OffsetY, 2, -16, 15),
		OffsetZ:                 fixedPoint(attr.OffsetZ, 2, -16, 15),
		Result:                  wireResult(f.Result),
	}
	for i, op := range f.Operands {
		s.Operands[i] = wireOperand(op)
	}
	return s
}

// fixedPoint converts a fetch attribute to its signed fixed-point field.
func fixedPoint(v float32, scale, lo, hi float64) int32 {
	steps := math.Round(float64(v) * scale)
	if steps < lo {
		steps = lo
	}
	if steps > hi {
		steps = hi
	}
	return int32(steps)
}

func wireResult(r ir.InstructionResult) ucode.Result {
	out := ucode.Result{
		Target:         uint32(r.StorageTarget),
		Index:          r.StorageIndex,
		AddressingMode: uint32(r.StorageAddressingMode),
		Clamp:          r.Clamp,
		WriteMask:      r.OriginalWriteMask,
	}
	for i, s := range r.Components {
		out.Swizzle[i] = uint32(s)
	}
	return out
}

func wireOperand(o ir.InstructionOperand) ucode.Operand {
	out := ucode.Operand{
		Kind:           uint32(o.StorageSource),
		Index:          o.StorageIndex,
		AddressingMode: uint32(o.StorageAddressingMode),
		Negate:         o.Negate,
		Absolute:       o.AbsoluteValue,
		ComponentCount: o.ComponentCount,
	}
	for i, s := range o.Components {
		out.Swizzle[i] = uint32(s)
	}
	return out
}
