package asm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/xenos/ir"
	"github.com/gogpu/xenos/ucode"
)

// Sequence fields hold two bits per gated instruction, which caps exec
// blocks at six instructions.
const maxExecCount = 6

var (
	execMnemonics   = map[string]ucode.ControlFlowOpcode{}
	vectorMnemonics = map[string]ucode.AluVectorOpcode{}
	scalarMnemonics = map[string]ucode.AluScalarOpcode{}
	fetchMnemonics  = map[string]textureMnemonic{}
)

type textureMnemonic struct {
	opcode    ucode.FetchOpcode
	dimension ucode.TextureDimension
}

func init() {
	for o := ucode.ControlFlowOpcode(0); o < ucode.ControlFlowOpcode(16); o++ {
		if o.IsExec() {
			execMnemonics[o.String()] = o
		}
	}
	for o := ucode.AluVectorAdd; o.String() != "unknown"; o++ {
		vectorMnemonics[o.String()] = o
	}
	for o := ucode.AluScalarAdds; o.String() != "unknown"; o++ {
		scalarMnemonics[o.String()] = o
	}
	textureOps := []ucode.FetchOpcode{
		ucode.FetchTexture,
		ucode.FetchGetTextureBorderColorFrac,
		ucode.FetchGetTextureComputedLod,
		ucode.FetchGetTextureGradients,
		ucode.FetchGetTextureWeights,
		ucode.FetchSetTextureLod,
		ucode.FetchSetTextureGradientsHorz,
		ucode.FetchSetTextureGradientsVert,
	}
	for _, op := range textureOps {
		for d := ucode.Dimension1D; d <= ucode.DimensionCube; d++ {
			fetchMnemonics[op.String()+d.String()] = textureMnemonic{op, d}
		}
	}
}

// Parse assembles source text into a parsed program. The text must follow
// the disassembler's grammar: a shader model header, then one control-flow
// instruction per line with exec-gated instructions on the lines after
// their exec.
func Parse(source string) (*ir.Program, error) {
	toks, err := lex(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	p.skipNewlines()
	head, err := p.expectWord()
	if err != nil {
		return nil, err
	}
	program := &ir.Program{}
	switch head.text {
	case "xvs_3_0":
		program.ShaderType = ucode.ShaderVertex
	case "xps_3_0":
		program.ShaderType = ucode.ShaderPixel
	default:
		return nil, fmt.Errorf("line %d: expected shader model xvs_3_0 or xps_3_0, got %q", head.line, head.text)
	}
	if err := p.expectEOL(); err != nil {
		return nil, err
	}
	p.program = program
	for {
		p.skipNewlines()
		if p.peek().kind == tokEOF {
			return program, nil
		}
		if err := p.parseControlFlow(); err != nil {
			return nil, err
		}
	}
}

type parser struct {
	toks []token
	pos  int

	program *ir.Program
	cfIndex uint32

	// Mini vertex fetches inherit operands and attributes from the most
	// recent full fetch.
	lastFullFetch *ir.VertexFetchInstruction
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(kind tokenKind) bool {
	if p.peek().kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("line %d: expected %s, got %s", t.line, kind, tokenText(t))
	}
	return t, nil
}

func (p *parser) expectWord() (token, error) { return p.expect(tokWord) }

func (p *parser) expectEOL() error {
	t := p.next()
	if t.kind != tokNewline && t.kind != tokEOF {
		return fmt.Errorf("line %d: unexpected %s at end of instruction", t.line, tokenText(t))
	}
	return nil
}

func (p *parser) skipNewlines() {
	for p.accept(tokNewline) {
	}
}

func tokenText(t token) string {
	if t.kind == tokWord {
		return fmt.Sprintf("%q", t.text)
	}
	return t.kind.String()
}

// keyword consumes the next word when it matches text.
func (p *parser) keyword(text string) bool {
	if t := p.peek(); t.kind == tokWord && t.text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectKeyword(text string) error {
	t := p.next()
	if t.kind != tokWord || t.text != text {
		return fmt.Errorf("line %d: expected %q, got %s", t.line, text, tokenText(t))
	}
	return nil
}

func parseUint32(t token) (uint32, error) {
	v, err := strconv.ParseUint(t.text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: bad number %q", t.line, t.text)
	}
	return uint32(v), nil
}

// parenUint parses a "(123)" argument.
func (p *parser) parenUint() (uint32, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return 0, err
	}
	t, err := p.expectWord()
	if err != nil {
		return 0, err
	}
	v, err := parseUint32(t)
	if err != nil {
		return 0, err
	}
	_, err = p.expect(tokRParen)
	return v, err
}

// parenInt parses a "(123)" or "(-123)" argument.
func (p *parser) parenInt() (int32, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return 0, err
	}
	neg := p.accept(tokMinus)
	t, err := p.expectWord()
	if err != nil {
		return 0, err
	}
	v, err := parseUint32(t)
	if err != nil {
		return 0, err
	}
	_, err = p.expect(tokRParen)
	if neg {
		return -int32(v), err
	}
	return int32(v), err
}

// parenFloat parses a possibly negative "(0.5)" argument.
func (p *parser) parenFloat() (float32, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return 0, err
	}
	neg := p.accept(tokMinus)
	t, err := p.expectWord()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t.text, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: bad number %q", t.line, t.text)
	}
	if neg {
		v = -v
	}
	_, err = p.expect(tokRParen)
	return float32(v), err
}

// parenWord parses a "(name)" argument.
func (p *parser) parenWord() (token, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return token{}, err
	}
	t, err := p.expectWord()
	if err != nil {
		return t, err
	}
	_, err = p.expect(tokRParen)
	return t, err
}

// indexedWord parses words like "b12" or "i3", stripping the prefix.
func indexedWord(t token, prefix string) (uint32, error) {
	if !strings.HasPrefix(t.text, prefix) {
		return 0, fmt.Errorf("line %d: expected %s register, got %q", t.line, prefix, t.text)
	}
	return parseUint32(token{tokWord, t.text[len(prefix):], t.line})
}

func (p *parser) parseControlFlow() error {
	tok, err := p.expectWord()
	if err != nil {
		return err
	}
	idx := p.cfIndex
	p.cfIndex++
	if opcode, ok := execMnemonics[tok.text]; ok {
		return p.parseExec(opcode, idx)
	}
	switch tok.text {
	case "loop_start":
		return p.parseLoopStart(idx)
	case "loop_end":
		return p.parseLoopEnd(idx)
	case "call", "ccall":
		return p.parseBranch(idx, tok.text == "ccall", false)
	case "jmp", "cjmp":
		return p.parseBranch(idx, tok.text == "cjmp", true)
	case "ret":
		p.program.Instructions = append(p.program.Instructions, ir.ReturnInstruction{DwordIndex: idx})
		return p.expectEOL()
	case "alloc":
		return p.parseAlloc(idx)
	}
	return fmt.Errorf("line %d: unknown control flow instruction %q", tok.line, tok.text)
}

func (p *parser) parseExec(opcode ucode.ControlFlowOpcode, idx uint32) error {
	exec := ir.ExecInstruction{
		DwordIndex: idx,
		Opcode:     opcode,
		End:        opcode.IsEnd(),
		Clean:      opcode.ResetsPredicate(),
	}
	switch {
	case opcode.IsConditionalExec():
		exec.Condition = ir.ConditionBool
		neg := p.accept(tokBang)
		t, err := p.expectWord()
		if err != nil {
			return err
		}
		if exec.BoolConstantIndex, err = indexedWord(t, "b"); err != nil {
			return err
		}
		exec.ConditionValue = !neg
	case opcode.IsPredicatedExec():
		exec.Condition = ir.ConditionPredicate
		neg := p.accept(tokBang)
		if err := p.expectKeyword("p0"); err != nil {
			return err
		}
		exec.ConditionValue = !neg
	}
	if err := p.expectKeyword("addr"); err != nil {
		return err
	}
	var err error
	if exec.InstructionAddress, err = p.parenUint(); err != nil {
		return err
	}
	if err = p.expectKeyword("cnt"); err != nil {
		return err
	}
	if exec.InstructionCount, err = p.parenUint(); err != nil {
		return err
	}
	if exec.InstructionCount > maxExecCount {
		return fmt.Errorf("exec at %d gates %d instructions, at most %d fit", idx, exec.InstructionCount, maxExecCount)
	}
	exec.Yield = p.keyword("yield")
	if err := p.expectEOL(); err != nil {
		return err
	}
	pos := len(p.program.Instructions)
	p.program.Instructions = append(p.program.Instructions, exec)
	for j := uint32(0); j < exec.InstructionCount; j++ {
		inst, isFetch, serialize, err := p.parseGatedInstruction()
		if err != nil {
			return err
		}
		if isFetch {
			exec.Sequence |= 1 << (2 * j)
		}
		if serialize {
			exec.Sequence |= 2 << (2 * j)
		}
		p.program.Instructions = append(p.program.Instructions, inst)
	}
	p.program.Instructions[pos] = exec
	return nil
}

func (p *parser) parseLoopStart(idx uint32) error {
	t, err := p.expectWord()
	if err != nil {
		return err
	}
	inst := ir.LoopStartInstruction{DwordIndex: idx}
	if inst.LoopConstantIndex, err = indexedWord(t, "i"); err != nil {
		return err
	}
	if err := p.expectKeyword("skip"); err != nil {
		return err
	}
	if inst.LoopSkipAddress, err = p.parenUint(); err != nil {
		return err
	}
	inst.Repeat = p.keyword("repeat")
	p.program.Instructions = append(p.program.Instructions, inst)
	return p.expectEOL()
}

func (p *parser) parseLoopEnd(idx uint32) error {
	t, err := p.expectWord()
	if err != nil {
		return err
	}
	inst := ir.LoopEndInstruction{DwordIndex: idx}
	if inst.LoopConstantIndex, err = indexedWord(t, "i"); err != nil {
		return err
	}
	if err := p.expectKeyword("addr"); err != nil {
		return err
	}
	if inst.LoopBodyAddress, err = p.parenUint(); err != nil {
		return err
	}
	if p.keyword("break") {
		if _, err := p.expect(tokLParen); err != nil {
			return err
		}
		neg := p.accept(tokBang)
		if err := p.expectKeyword("p0"); err != nil {
			return err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return err
		}
		inst.PredicatedBreak = true
		inst.PredicateCondition = !neg
	}
	p.program.Instructions = append(p.program.Instructions, inst)
	return p.expectEOL()
}

func (p *parser) parseBranch(idx uint32, conditional, jump bool) error {
	condition := ir.ConditionNone
	boolIndex := uint32(0)
	value := false
	if conditional {
		neg := p.accept(tokBang)
		t, err := p.expectWord()
		if err != nil {
			return err
		}
		if t.text == "p0" {
			condition = ir.ConditionPredicate
		} else {
			condition = ir.ConditionBool
			if boolIndex, err = indexedWord(t, "b"); err != nil {
				return err
			}
		}
		value = !neg
	}
	if err := p.expectKeyword("addr"); err != nil {
		return err
	}
	addr, err := p.parenUint()
	if err != nil {
		return err
	}
	if jump {
		p.program.Instructions = append(p.program.Instructions, ir.JumpInstruction{
			DwordIndex:        idx,
			TargetAddress:     addr,
			Condition:         condition,
			BoolConstantIndex: boolIndex,
			ConditionValue:    value,
		})
	} else {
		p.program.Instructions = append(p.program.Instructions, ir.CallInstruction{
			DwordIndex:        idx,
			TargetAddress:     addr,
			Condition:         condition,
			BoolConstantIndex: boolIndex,
			ConditionValue:    value,
		})
	}
	return p.expectEOL()
}

func (p *parser) parseAlloc(idx uint32) error {
	t, err := p.expectWord()
	if err != nil {
		return err
	}
	inst := ir.AllocInstruction{
		DwordIndex:     idx,
		IsVertexShader: p.program.ShaderType == ucode.ShaderVertex,
	}
	switch t.text {
	case "none":
		inst.Type = ucode.AllocNone
	case "position":
		inst.Type = ucode.AllocPosition
	case "interpolators", "colors":
		inst.Type = ucode.AllocInterpolators
	case "export":
		inst.Type = ucode.AllocMemory
	default:
		return fmt.Errorf("line %d: unknown alloc kind %q", t.line, t.text)
	}
	if err := p.expectKeyword("size"); err != nil {
		return err
	}
	size, err := p.parenUint()
	if err != nil {
		return err
	}
	inst.Count = int(size)
	p.program.Instructions = append(p.program.Instructions, inst)
	return p.expectEOL()
}

// parseGatedInstruction parses one exec-gated instruction, which may span
// two lines for a co-issued ALU pair. It reports the fetch and serialize
// bits for the exec's sequence field.
func (p *parser) parseGatedInstruction() (inst ir.Instruction, isFetch, serialize bool, err error) {
	p.skipNewlines()
	var predicated, predCondition bool
	for p.peek().kind == tokLParen {
		p.next()
		neg := p.accept(tokBang)
		t, err := p.expectWord()
		if err != nil {
			return nil, false, false, err
		}
		switch {
		case t.text == "s" && !neg:
			serialize = true
		case t.text == "p0":
			predicated = true
			predCondition = !neg
		default:
			return nil, false, false, fmt.Errorf("line %d: unknown guard %q", t.line, t.text)
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, false, false, err
		}
	}
	tok, err := p.expectWord()
	if err != nil {
		return nil, false, false, err
	}
	switch tok.text {
	case "nop":
		a := ir.DefaultNopAlu()
		a.Predicated, a.PredicateCondition = predicated, predCondition
		return a, false, serialize, p.expectEOL()
	case "vfetch_full", "vfetch_mini":
		f, err := p.parseVertexFetch(tok, predicated, predCondition)
		return f, true, serialize, err
	}
	if opcode, ok := vectorMnemonics[tok.text]; ok {
		a, err := p.parseAluVectorFirst(opcode, predicated, predCondition)
		return a, false, serialize, err
	}
	if opcode, ok := scalarMnemonics[tok.text]; ok {
		a := ir.DefaultNopAlu()
		a.Predicated, a.PredicateCondition = predicated, predCondition
		if err := p.parseScalarHalf(&a, opcode); err != nil {
			return nil, false, false, err
		}
		return a, false, serialize, p.expectEOL()
	}
	if m, ok := fetchMnemonics[tok.text]; ok {
		f, err := p.parseTextureFetch(m, predicated, predCondition)
		return f, true, serialize, err
	}
	return nil, false, false, fmt.Errorf("line %d: unknown instruction %q", tok.line, tok.text)
}

func (p *parser) parseAluVectorFirst(opcode ucode.AluVectorOpcode, predicated, predCondition bool) (ir.AluInstruction, error) {
	a := ir.DefaultNopAlu()
	a.Predicated, a.PredicateCondition = predicated, predCondition
	a.VectorOpcode = opcode
	result, err := p.parseResult()
	if err != nil {
		return a, err
	}
	a.VectorAndConstantResult = result
	n := 0
	for p.accept(tokComma) {
		if n == len(a.VectorOperands) {
			return a, fmt.Errorf("line %d: too many operands for %s", p.peek().line, opcode)
		}
		if a.VectorOperands[n], err = p.parseOperand(); err != nil {
			return a, err
		}
		n++
	}
	a.VectorOperandCount = uint32(n)
	if err := p.expectEOL(); err != nil {
		return a, err
	}
	// A co-issued scalar operation continues on the next line.
	if p.accept(tokPlus) {
		t, err := p.expectWord()
		if err != nil {
			return a, err
		}
		opcode, ok := scalarMnemonics[t.text]
		if !ok {
			return a, fmt.Errorf("line %d: unknown scalar instruction %q", t.line, t.text)
		}
		if err := p.parseScalarHalf(&a, opcode); err != nil {
			return a, err
		}
		return a, p.expectEOL()
	}
	return a, nil
}

func (p *parser) parseScalarHalf(a *ir.AluInstruction, opcode ucode.AluScalarOpcode) error {
	a.ScalarOpcode = opcode
	result, err := p.parseResult()
	if err != nil {
		return err
	}
	a.ScalarResult = result
	n := 0
	for p.accept(tokComma) {
		if n == len(a.ScalarOperands) {
			return fmt.Errorf("line %d: too many operands for %s", p.peek().line, opcode)
		}
		if a.ScalarOperands[n], err = p.parseOperand(); err != nil {
			return err
		}
		n++
	}
	a.ScalarOperandCount = uint32(n)
	return nil
}

func (p *parser) parseVertexFetch(mnemonic token, predicated, predCondition bool) (ir.VertexFetchInstruction, error) {
	var f ir.VertexFetchInstruction
	if mnemonic.text == "vfetch_mini" {
		if p.lastFullFetch == nil {
			return f, fmt.Errorf("line %d: vfetch_mini with no preceding vfetch_full", mnemonic.line)
		}
		f = *p.lastFullFetch
		f.MiniFetch = true
		f.Predicated, f.PredicateCondition = predicated, predCondition
		result, err := p.parseResult()
		if err != nil {
			return f, err
		}
		f.Result = result
		return f, p.expectEOL()
	}
	f.Opcode = ucode.FetchVertex
	f.Predicated, f.PredicateCondition = predicated, predCondition
	result, err := p.parseResult()
	if err != nil {
		return f, err
	}
	f.Result = result
	n := 0
	for p.accept(tokComma) {
		if n == len(f.Operands) {
			return f, fmt.Errorf("line %d: too many vfetch operands", p.peek().line)
		}
		if f.Operands[n], err = p.parseOperand(); err != nil {
			return f, err
		}
		n++
	}
	f.OperandCount = uint32(n)
	attr := &f.Attributes
	for p.peek().kind == tokWord {
		t := p.next()
		switch t.text {
		case "fmt":
			name, err := p.parenWord()
			if err != nil {
				return f, err
			}
			format, ok := ucode.VertexFormatFromString(name.text)
			if !ok {
				return f, fmt.Errorf("line %d: unknown vertex format %q", name.line, name.text)
			}
			attr.DataFormat = format
		case "stride":
			if attr.Stride, err = p.parenUint(); err != nil {
				return f, err
			}
		case "offset":
			if attr.Offset, err = p.parenUint(); err != nil {
				return f, err
			}
		case "adjust":
			if attr.ExpAdjust, err = p.parenInt(); err != nil {
				return f, err
			}
		case "prefetch":
			if attr.PrefetchCount, err = p.parenUint(); err != nil {
				return f, err
			}
		case "signed":
			attr.IsSigned = true
		case "int":
			attr.IsInteger = true
		case "rounded":
			attr.IsIndexRounded = true
		default:
			return f, fmt.Errorf("line %d: unknown vfetch attribute %q", t.line, t.text)
		}
	}
	full := f
	p.lastFullFetch = &full
	return f, p.expectEOL()
}

func (p *parser) parseTextureFetch(m textureMnemonic, predicated, predCondition bool) (ir.TextureFetchInstruction, error) {
	f := ir.TextureFetchInstruction{
		Opcode:             m.opcode,
		Dimension:          m.dimension,
		Predicated:         predicated,
		PredicateCondition: predCondition,
		Attributes: ir.TextureFetchAttributes{
			FetchValidOnly: true,
			UseComputedLOD: true,
			MagFilter:      ucode.FilterUseFetchConst,
			MinFilter:      ucode.FilterUseFetchConst,
			MipFilter:      ucode.FilterUseFetchConst,
			VolMagFilter:   ucode.FilterUseFetchConst,
			VolMinFilter:   ucode.FilterUseFetchConst,
			AnisoFilter:    ucode.AnisoUseFetchConst,
		},
	}
	result, err := p.parseResult()
	if err != nil {
		return f, err
	}
	f.Result = result
	n := 0
	for p.accept(tokComma) {
		if n == len(f.Operands) {
			return f, fmt.Errorf("line %d: too many tfetch operands", p.peek().line)
		}
		if f.Operands[n], err = p.parseOperand(); err != nil {
			return f, err
		}
		n++
	}
	f.OperandCount = uint32(n)
	attr := &f.Attributes
	for p.peek().kind == tokWord {
		t := p.next()
		switch t.text {
		case "mag", "min", "mip", "vmag", "vmin":
			name, err := p.parenWord()
			if err != nil {
				return f, err
			}
			filter, ok := ucode.TextureFilterFromString(name.text)
			if !ok {
				return f, fmt.Errorf("line %d: unknown filter %q", name.line, name.text)
			}
			switch t.text {
			case "mag":
				attr.MagFilter = filter
			case "min":
				attr.MinFilter = filter
			case "mip":
				attr.MipFilter = filter
			case "vmag":
				attr.VolMagFilter = filter
			case "vmin":
				attr.VolMinFilter = filter
			}
		case "aniso":
			name, err := p.parenWord()
			if err != nil {
				return f, err
			}
			aniso, ok := ucode.AnisoFilterFromString(name.text)
			if !ok {
				return f, fmt.Errorf("line %d: unknown aniso filter %q", name.line, name.text)
			}
			attr.AnisoFilter = aniso
		case "lodbias":
			v, err := p.parenFloat()
			if err != nil {
				return f, err
			}
			attr.LODBias = quantize(v, 32, -64, 63)
		case "offx":
			v, err := p.parenFloat()
			if err != nil {
				return f, err
			}
			attr.OffsetX = quantize(v, 2, -16, 15)
		case "offy":
			v, err := p.parenFloat()
			if err != nil {
				return f, err
			}
			attr.OffsetY = quantize(v, 2, -16, 15)
		case "offz":
			v, err := p.parenFloat()
			if err != nil {
				return f, err
			}
			attr.OffsetZ = quantize(v, 2, -16, 15)
		case "unnorm":
			attr.UnnormalizedCoordinates = true
		case "fetch_all":
			attr.FetchValidOnly = false
		case "nocomplod":
			attr.UseComputedLOD = false
		case "reglod":
			attr.UseRegisterLOD = true
		case "reggrad":
			attr.UseRegisterGradients = true
		default:
			return f, fmt.Errorf("line %d: unknown tfetch attribute %q", t.line, t.text)
		}
	}
	return f, p.expectEOL()
}

// quantize snaps a fixed-point fetch attribute to its encodable grid.
func quantize(v float32, scale, lo, hi float64) float32 {
	steps := math.Round(float64(v) * scale)
	if steps < lo {
		steps = lo
	}
	if steps > hi {
		steps = hi
	}
	return float32(steps / scale)
}
