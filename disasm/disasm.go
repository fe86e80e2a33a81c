// Package disasm renders parsed Xenos instructions back into microcode
// assembly text.
//
// Rendering is pure: the same instruction value always produces the same
// text, with no formatting state carried between instructions. The grammar
// is the one package asm parses, and the pair is lossless: assembling a
// listing reproduces the microcode words the listing was decoded from.
package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/xenos/ir"
	"github.com/gogpu/xenos/ucode"
)

const bodyIndent = "    "

// Program renders a whole instruction stream, one instruction per line,
// with exec bodies indented under their exec.
func Program(p *ir.Program) string {
	var sb strings.Builder
	if p.ShaderType == ucode.ShaderPixel {
		sb.WriteString("xps_3_0\n")
	} else {
		sb.WriteString("xvs_3_0\n")
	}
	insts := p.Instructions
	for i := 0; i < len(insts); i++ {
		exec, isExec := insts[i].(ir.ExecInstruction)
		sb.WriteString(Text(insts[i]))
		sb.WriteByte('\n')
		if !isExec {
			continue
		}
		for j := uint32(0); j < exec.InstructionCount && i+1 < len(insts); j++ {
			i++
			serialize := exec.Sequence>>(2*j)&0b10 != 0
			for _, line := range bodyLines(insts[i], serialize) {
				sb.WriteString(bodyIndent)
				sb.WriteString(line)
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

// Text renders a single instruction without exec-context markers. ALU
// instructions may span two lines.
func Text(inst ir.Instruction) string {
	switch v := inst.(type) {
	case ir.ExecInstruction:
		return execText(v)
	case ir.LoopStartInstruction:
		return loopStartText(v)
	case ir.LoopEndInstruction:
		return loopEndText(v)
	case ir.CallInstruction:
		return branchText("call", "ccall", v.TargetAddress, v.Condition, v.BoolConstantIndex, v.ConditionValue)
	case ir.ReturnInstruction:
		return "ret"
	case ir.JumpInstruction:
		return branchText("jmp", "cjmp", v.TargetAddress, v.Condition, v.BoolConstantIndex, v.ConditionValue)
	case ir.AllocInstruction:
		return allocText(v)
	case ir.VertexFetchInstruction:
		return vertexFetchText(v, false)
	case ir.TextureFetchInstruction:
		return textureFetchText(v, false)
	case ir.AluInstruction:
		return strings.Join(aluLines(v, false), "\n")
	}
	return ""
}

// bodyLines renders an exec-gated instruction, including the serialize
// marker from the exec sequence field.
func bodyLines(inst ir.Instruction, serialize bool) []string {
	switch v := inst.(type) {
	case ir.VertexFetchInstruction:
		return []string{vertexFetchText(v, serialize)}
	case ir.TextureFetchInstruction:
		return []string{textureFetchText(v, serialize)}
	case ir.AluInstruction:
		return aluLines(v, serialize)
	}
	return []string{Text(inst)}
}

func execText(e ir.ExecInstruction) string {
	var sb strings.Builder
	sb.WriteString(e.Opcode.String())
	switch e.Condition {
	case ir.ConditionBool:
		sb.WriteByte(' ')
		if !e.ConditionValue {
			sb.WriteByte('!')
		}
		fmt.Fprintf(&sb, "b%d", e.BoolConstantIndex)
	case ir.ConditionPredicate:
		sb.WriteByte(' ')
		if !e.ConditionValue {
			sb.WriteByte('!')
		}
		sb.WriteString("p0")
	}
	fmt.Fprintf(&sb, " addr(%d) cnt(%d)", e.InstructionAddress, e.InstructionCount)
	if e.Yield {
		sb.WriteString(" yield")
	}
	return sb.String()
}

func loopStartText(l ir.LoopStartInstruction) string {
	s := fmt.Sprintf("loop_start i%d skip(%d)", l.LoopConstantIndex, l.LoopSkipAddress)
	if l.Repeat {
		s += " repeat"
	}
	return s
}

func loopEndText(l ir.LoopEndInstruction) string {
	s := fmt.Sprintf("loop_end i%d addr(%d)", l.LoopConstantIndex, l.LoopBodyAddress)
	if l.PredicatedBreak {
		if l.PredicateCondition {
			s += " break(p0)"
		} else {
			s += " break(!p0)"
		}
	}
	return s
}

func branchText(plain, cond string, addr uint32, kind ir.ConditionKind, boolIndex uint32, value bool) string {
	switch kind {
	case ir.ConditionBool:
		bang := ""
		if !value {
			bang = "!"
		}
		return fmt.Sprintf("%s %sb%d addr(%d)", cond, bang, boolIndex, addr)
	case ir.ConditionPredicate:
		bang := ""
		if !value {
			bang = "!"
		}
		return fmt.Sprintf("%s %sp0 addr(%d)", cond, bang, addr)
	}
	return fmt.Sprintf("%s addr(%d)", plain, addr)
}

func allocText(a ir.AllocInstruction) string {
	var kind string
	switch a.Type {
	case ucode.AllocPosition:
		kind = "position"
	case ucode.AllocInterpolators:
		if a.IsVertexShader {
			kind = "interpolators"
		} else {
			kind = "colors"
		}
	case ucode.AllocMemory:
		kind = "export"
	default:
		kind = "none"
	}
	return fmt.Sprintf("alloc %s size(%d)", kind, a.Count)
}

// prefix renders the serialize marker and predication guard shared by all
// exec-gated instructions.
func prefix(serialize, predicated, condition bool) string {
	var sb strings.Builder
	if serialize {
		sb.WriteString("(s) ")
	}
	if predicated {
		if condition {
			sb.WriteString("(p0) ")
		} else {
			sb.WriteString("(!p0) ")
		}
	}
	return sb.String()
}

func vertexFetchText(f ir.VertexFetchInstruction, serialize bool) string {
	var sb strings.Builder
	sb.WriteString(prefix(serialize, f.Predicated, f.PredicateCondition))
	if f.MiniFetch {
		sb.WriteString("vfetch_mini ")
		sb.WriteString(Result(f.Result))
		return sb.String()
	}
	sb.WriteString("vfetch_full ")
	sb.WriteString(Result(f.Result))
	for i := uint32(0); i < f.OperandCount && i < 2; i++ {
		sb.WriteString(", ")
		sb.WriteString(Operand(f.Operands[i]))
	}
	attr := f.Attributes
	fmt.Fprintf(&sb, " fmt(%s) stride(%d)", attr.DataFormat, attr.Stride)
	if attr.Offset != 0 {
		fmt.Fprintf(&sb, " offset(%d)", attr.Offset)
	}
	if attr.ExpAdjust != 0 {
		fmt.Fprintf(&sb, " adjust(%d)", attr.ExpAdjust)
	}
	if attr.PrefetchCount != 0 {
		fmt.Fprintf(&sb, " prefetch(%d)", attr.PrefetchCount)
	}
	if attr.IsSigned {
		sb.WriteString(" signed")
	}
	if attr.IsInteger {
		sb.WriteString(" int")
	}
	if attr.IsIndexRounded {
		sb.WriteString(" rounded")
	}
	return sb.String()
}

func textureFetchText(f ir.TextureFetchInstruction, serialize bool) string {
	var sb strings.Builder
	sb.WriteString(prefix(serialize, f.Predicated, f.PredicateCondition))
	sb.WriteString(f.Opcode.String())
	sb.WriteString(f.Dimension.String())
	sb.WriteByte(' ')
	sb.WriteString(Result(f.Result))
	for i := uint32(0); i < f.OperandCount && i < 2; i++ {
		sb.WriteString(", ")
		sb.WriteString(Operand(f.Operands[i]))
	}
	attr := f.Attributes
	if attr.MagFilter != ucode.FilterUseFetchConst {
		fmt.Fprintf(&sb, " mag(%s)", attr.MagFilter)
	}
	if attr.MinFilter != ucode.FilterUseFetchConst {
		fmt.Fprintf(&sb, " min(%s)", attr.MinFilter)
	}
	if attr.MipFilter != ucode.FilterUseFetchConst {
		fmt.Fprintf(&sb, " mip(%s)", attr.MipFilter)
	}
	if attr.VolMagFilter != ucode.FilterUseFetchConst {
		fmt.Fprintf(&sb, " vmag(%s)", attr.VolMagFilter)
	}
	if attr.VolMinFilter != ucode.FilterUseFetchConst {
		fmt.Fprintf(&sb, " vmin(%s)", attr.VolMinFilter)
	}
	if attr.AnisoFilter != ucode.AnisoUseFetchConst {
		fmt.Fprintf(&sb, " aniso(%s)", attr.AnisoFilter)
	}
	if attr.LODBias != 0 {
		fmt.Fprintf(&sb, " lodbias(%s)", formatFloat(attr.LODBias))
	}
	if attr.OffsetX != 0 {
		fmt.Fprintf(&sb, " offx(%s)", formatFloat(attr.OffsetX))
	}
	if attr.OffsetY != 0 {
		fmt.Fprintf(&sb, " offy(%s)", formatFloat(attr.OffsetY))
	}
	if attr.OffsetZ != 0 {
		fmt.Fprintf(&sb, " offz(%s)", formatFloat(attr.OffsetZ))
	}
	if attr.UnnormalizedCoordinates {
		sb.WriteString(" unnorm")
	}
	if !attr.FetchValidOnly {
		sb.WriteString(" fetch_all")
	}
	if !attr.UseComputedLOD {
		sb.WriteString(" nocomplod")
	}
	if attr.UseRegisterLOD {
		sb.WriteString(" reglod")
	}
	if attr.UseRegisterGradients {
		sb.WriteString(" reggrad")
	}
	return sb.String()
}

func aluLines(a ir.AluInstruction, serialize bool) []string {
	vectorNop := a.IsVectorOpDefaultNop()
	scalarNop := a.IsScalarOpDefaultNop()
	guard := prefix(serialize, a.Predicated, a.PredicateCondition)
	if vectorNop && scalarNop {
		return []string{guard + "nop"}
	}
	var lines []string
	if !vectorNop {
		var sb strings.Builder
		sb.WriteString(guard)
		sb.WriteString(a.VectorOpcode.String())
		sb.WriteByte(' ')
		sb.WriteString(Result(a.VectorAndConstantResult))
		for i := uint32(0); i < a.VectorOperandCount && i < 3; i++ {
			sb.WriteString(", ")
			sb.WriteString(Operand(a.VectorOperands[i]))
		}
		lines = append(lines, sb.String())
	}
	if !scalarNop {
		var sb strings.Builder
		if len(lines) > 0 {
			sb.WriteString("+ ")
		} else {
			sb.WriteString(guard)
		}
		sb.WriteString(a.ScalarOpcode.String())
		sb.WriteByte(' ')
		sb.WriteString(Result(a.ScalarResult))
		for i := uint32(0); i < a.ScalarOperandCount && i < 2; i++ {
			sb.WriteString(", ")
			sb.WriteString(Operand(a.ScalarOperands[i]))
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// Result renders a result descriptor: destination name, then a combined
// mask/swizzle suffix. A full identity-masked write has no suffix.
func Result(r ir.InstructionResult) string {
	var sb strings.Builder
	switch r.StorageTarget {
	case ir.TargetNone:
		sb.WriteByte('_')
	case ir.TargetRegister:
		sb.WriteString(indexed("r", r.StorageIndex, r.StorageAddressingMode))
	case ir.TargetInterpolator:
		sb.WriteString(indexed("o", r.StorageIndex, r.StorageAddressingMode))
	case ir.TargetPosition:
		sb.WriteString("oPos")
	case ir.TargetPointSizeEdgeFlagKillVertex:
		sb.WriteString("oPts")
	case ir.TargetExportAddress:
		sb.WriteString("eA")
	case ir.TargetExportData:
		sb.WriteString(indexed("eM", r.StorageIndex, r.StorageAddressingMode))
	case ir.TargetColor:
		sb.WriteString(indexed("oC", r.StorageIndex, r.StorageAddressingMode))
	case ir.TargetDepth:
		sb.WriteString("oDepth")
	}
	if r.OriginalWriteMask == 0b1111 && r.Components == ir.IdentitySwizzle() {
		return sb.String()
	}
	sb.WriteByte('.')
	for i := uint32(0); i < 4; i++ {
		if r.OriginalWriteMask&(1<<i) != 0 {
			sb.WriteByte(r.Components[i].Char())
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// Operand renders an operand descriptor: sign, absolute-value bars, source
// name and an explicit swizzle unless it is the standard one.
func Operand(o ir.InstructionOperand) string {
	var sb strings.Builder
	if o.Negate {
		sb.WriteByte('-')
	}
	var base string
	switch o.StorageSource {
	case ir.SourceRegister:
		base = indexed("r", o.StorageIndex, o.StorageAddressingMode)
	case ir.SourceConstantFloat:
		base = indexed("c", o.StorageIndex, o.StorageAddressingMode)
	case ir.SourceVertexFetchConstant:
		base = indexed("vf", o.StorageIndex, o.StorageAddressingMode)
	case ir.SourceTextureFetchConstant:
		base = indexed("tf", o.StorageIndex, o.StorageAddressingMode)
	}
	if o.AbsoluteValue {
		sb.WriteByte('|')
		sb.WriteString(base)
		sb.WriteByte('|')
	} else {
		sb.WriteString(base)
	}
	if !o.IsStandardSwizzle() {
		sb.WriteByte('.')
		for i := uint32(0); i < o.ComponentCount && i < 4; i++ {
			sb.WriteByte(o.Components[i].Char())
		}
	}
	return sb.String()
}

func indexed(name string, index uint32, mode ir.AddressingMode) string {
	switch mode {
	case ir.AddressAbsolute:
		return fmt.Sprintf("%s[a0+%d]", name, index)
	case ir.AddressRelative:
		return fmt.Sprintf("%s[aL+%d]", name, index)
	}
	return fmt.Sprintf("%s%d", name, index)
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
