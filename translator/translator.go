// Package translator runs the analysis pass that turns raw microcode into
// a translated shader: it decodes the stream, derives the metadata hosts
// need (bindings, constant usage, render target writes) and optionally
// hands the parsed program to a backend for code generation.
package translator

import (
	"fmt"

	"github.com/gogpu/xenos/decoder"
	"github.com/gogpu/xenos/disasm"
	"github.com/gogpu/xenos/ir"
	"github.com/gogpu/xenos/shader"
	"github.com/gogpu/xenos/ucode"
)

// Backend generates host code from a parsed program. The returned binary
// may be source text for host compilers that consume source.
type Backend interface {
	Translate(p *ir.Program) (binary []byte, hostDisassembly, hostErrorLog string, err error)
}

// Options configures one translation pass.
type Options struct {
	// Backend is optional; without one the pass produces metadata and
	// disassembly only.
	Backend Backend

	// HostVertexShaderType selects the host stage a vertex shader is
	// translated for. Ignored for pixel shaders.
	HostVertexShaderType shader.HostVertexShaderType
}

// Translate decodes and analyzes a shader's microcode and applies the
// result. The shader must not be translated yet. Decode and backend
// failures are recorded on the shader as fatal errors and also returned.
func Translate(sh *shader.Shader, opts Options) error {
	if sh.IsTranslated() {
		return fmt.Errorf("shader %016x is already translated", sh.UcodeDataHash())
	}
	program, err := decoder.Decode(sh.Type(), sh.UcodeData())
	if err != nil {
		applyErr := sh.ApplyTranslation(&shader.Translation{
			Errors: []shader.Error{{Fatal: true, Message: err.Error()}},
		})
		if applyErr != nil {
			return applyErr
		}
		return err
	}

	a := &analysis{
		translation: &shader.Translation{
			Valid:                true,
			ConstantRegisterMap:  shader.NewConstantRegisterMap(),
			HostVertexShaderType: opts.HostVertexShaderType,
		},
		vertexBindingIndex: map[uint32]int{},
		textureBindingSeen: map[uint32]bool{},
		memExportSeen:      map[uint32]bool{},
	}
	for _, inst := range program.Instructions {
		a.instruction(inst)
	}
	t := a.translation
	t.UcodeDisassembly = disasm.Program(program)
	if program.ShaderType == ucode.ShaderPixel {
		t.ImplicitEarlyZAllowed = !t.WritesDepth && !a.writesMemExport && !a.killsPixels
	}

	var backendErr error
	if opts.Backend != nil {
		binary, hostDis, hostLog, err := opts.Backend.Translate(program)
		t.TranslatedBinary = binary
		t.HostDisassembly = hostDis
		t.HostErrorLog = hostLog
		if err != nil {
			backendErr = err
			t.Errors = append(t.Errors, shader.Error{Fatal: true, Message: err.Error()})
			t.Valid = false
		}
	}
	if err := sh.ApplyTranslation(t); err != nil {
		return err
	}
	return backendErr
}

type analysis struct {
	translation *shader.Translation

	vertexBindingIndex map[uint32]int
	textureBindingSeen map[uint32]bool
	memExportSeen      map[uint32]bool
	attribIndex        int

	writesMemExport bool
	killsPixels     bool
}

func (a *analysis) instruction(inst ir.Instruction) {
	t := a.translation
	switch v := inst.(type) {
	case ir.ExecInstruction:
		if v.Condition == ir.ConditionBool {
			t.ConstantRegisterMap.MarkBool(v.BoolConstantIndex)
		}
	case ir.LoopStartInstruction:
		t.ConstantRegisterMap.MarkLoop(v.LoopConstantIndex)
	case ir.LoopEndInstruction:
		t.ConstantRegisterMap.MarkLoop(v.LoopConstantIndex)
	case ir.CallInstruction:
		if v.Condition == ir.ConditionBool {
			t.ConstantRegisterMap.MarkBool(v.BoolConstantIndex)
		}
	case ir.JumpInstruction:
		if v.Condition == ir.ConditionBool {
			t.ConstantRegisterMap.MarkBool(v.BoolConstantIndex)
		}
	case ir.AllocInstruction:
	case ir.VertexFetchInstruction:
		a.vertexFetch(v)
	case ir.TextureFetchInstruction:
		a.textureFetch(v)
	case ir.AluInstruction:
		a.alu(v)
	}
}

func (a *analysis) vertexFetch(f ir.VertexFetchInstruction) {
	for i := uint32(0); i < f.OperandCount && i < 2; i++ {
		a.operand(f.Operands[i])
	}
	constant, ok := fetchConstant(f.Operands[:], f.OperandCount, ir.SourceVertexFetchConstant)
	if !ok {
		a.errorf(false, "vertex fetch without a fetch constant operand")
		return
	}
	t := a.translation
	idx, ok := a.vertexBindingIndex[constant]
	if !ok {
		idx = len(t.VertexBindings)
		a.vertexBindingIndex[constant] = idx
		t.VertexBindings = append(t.VertexBindings, shader.VertexBinding{
			BindingIndex:  idx,
			FetchConstant: constant,
			StrideWords:   f.Attributes.Stride,
		})
	}
	binding := &t.VertexBindings[idx]
	binding.Attributes = append(binding.Attributes, shader.VertexBindingAttribute{
		AttribIndex: a.attribIndex,
		FetchInstr:  f,
		SizeWords:   f.Attributes.DataFormat.SizeInWords(),
	})
	a.attribIndex++
}

func (a *analysis) textureFetch(f ir.TextureFetchInstruction) {
	for i := uint32(0); i < f.OperandCount && i < 2; i++ {
		a.operand(f.Operands[i])
	}
	constant, ok := fetchConstant(f.Operands[:], f.OperandCount, ir.SourceTextureFetchConstant)
	if !ok {
		a.errorf(false, "texture fetch without a fetch constant operand")
		return
	}
	if a.textureBindingSeen[constant] {
		return
	}
	a.textureBindingSeen[constant] = true
	t := a.translation
	t.TextureBindings = append(t.TextureBindings, shader.TextureBinding{
		BindingIndex:  len(t.TextureBindings),
		FetchConstant: constant,
		FetchInstr:    f,
	})
}

func fetchConstant(operands []ir.InstructionOperand, count uint32, source ir.StorageSource) (uint32, bool) {
	for i := uint32(0); i < count && int(i) < len(operands); i++ {
		if operands[i].StorageSource == source {
			return operands[i].StorageIndex, true
		}
	}
	return 0, false
}

func (a *analysis) alu(v ir.AluInstruction) {
	for i := uint32(0); i < v.VectorOperandCount && i < 3; i++ {
		a.operand(v.VectorOperands[i])
	}
	for i := uint32(0); i < v.ScalarOperandCount && i < 2; i++ {
		a.operand(v.ScalarOperands[i])
	}
	a.result(v.VectorAndConstantResult)
	a.result(v.ScalarResult)
	if isKillOpcode(v) {
		a.killsPixels = true
	}
	if constant := v.MemExportStreamConstant(); constant != ir.InvalidConstantIndex {
		if !a.memExportSeen[constant] {
			a.memExportSeen[constant] = true
			a.translation.MemExportStreamConstants = append(a.translation.MemExportStreamConstants, constant)
		}
	}
}

func (a *analysis) operand(o ir.InstructionOperand) {
	if o.StorageSource != ir.SourceConstantFloat {
		return
	}
	if o.StorageAddressingMode != ir.AddressStatic {
		a.translation.ConstantRegisterMap.MarkFloatDynamic()
		return
	}
	index := o.StorageIndex
	if index >= shader.FloatConstantCount {
		// 256..511 are the absolute pixel-stage indices; fold them back
		// to the stage-relative range the register map tracks.
		a.errorf(false, "float constant c%d out of the stage-relative range", index)
		index -= shader.FloatConstantCount
	}
	a.translation.ConstantRegisterMap.MarkFloat(index)
}

func (a *analysis) result(r ir.InstructionResult) {
	if r.UsedWriteMask() == 0 {
		return
	}
	switch r.StorageTarget {
	case ir.TargetColor:
		if r.StorageIndex < uint32(len(a.translation.WritesColorTargets)) {
			a.translation.WritesColorTargets[r.StorageIndex] = true
		}
	case ir.TargetDepth:
		a.translation.WritesDepth = true
	case ir.TargetExportAddress, ir.TargetExportData:
		a.writesMemExport = true
	}
}

func (a *analysis) errorf(fatal bool, format string, args ...any) {
	a.translation.Errors = append(a.translation.Errors, shader.Error{
		Fatal:   fatal,
		Message: fmt.Sprintf(format, args...),
	})
	if fatal {
		a.translation.Valid = false
	}
}

func isKillOpcode(a ir.AluInstruction) bool {
	switch a.VectorOpcode {
	case ucode.AluVectorKillEq, ucode.AluVectorKillGt, ucode.AluVectorKillGe, ucode.AluVectorKillNe:
		return true
	}
	switch a.ScalarOpcode {
	case ucode.AluScalarKillsEq, ucode.AluScalarKillsGt, ucode.AluScalarKillsGe,
		ucode.AluScalarKillsNe, ucode.AluScalarKillsOne:
		return true
	}
	return false
}
