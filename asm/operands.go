package asm

import (
	"fmt"
	"strings"

	"github.com/gogpu/xenos/ir"
)

// splitSuffix separates a storage name from its swizzle suffix at the
// first dot.
func splitSuffix(word string) (base, suffix string) {
	if i := strings.IndexByte(word, '.'); i >= 0 {
		return word[:i], word[i:]
	}
	return word, ""
}

// acceptSuffix consumes a standalone swizzle-suffix word, which appears
// after bracketed indices and absolute-value bars.
func (p *parser) acceptSuffix() string {
	if t := p.peek(); t.kind == tokWord && strings.HasPrefix(t.text, ".") {
		p.pos++
		return t.text
	}
	return ""
}

// parseBracket parses the "[a0+12]" and "[aL+12]" relative index forms.
func (p *parser) parseBracket() (uint32, ir.AddressingMode, error) {
	p.next()
	t, err := p.expectWord()
	if err != nil {
		return 0, ir.AddressStatic, err
	}
	var mode ir.AddressingMode
	switch t.text {
	case "a0":
		mode = ir.AddressAbsolute
	case "aL":
		mode = ir.AddressRelative
	default:
		return 0, mode, fmt.Errorf("line %d: expected a0 or aL, got %q", t.line, t.text)
	}
	if _, err := p.expect(tokPlus); err != nil {
		return 0, mode, err
	}
	t, err = p.expectWord()
	if err != nil {
		return 0, mode, err
	}
	index, err := parseUint32(t)
	if err != nil {
		return 0, mode, err
	}
	_, err = p.expect(tokRBracket)
	return index, mode, err
}

var resultTargets = []struct {
	prefix string
	target ir.StorageTarget
}{
	{"eM", ir.TargetExportData},
	{"oC", ir.TargetColor},
	{"o", ir.TargetInterpolator},
	{"r", ir.TargetRegister},
}

func (p *parser) parseResult() (ir.InstructionResult, error) {
	t, err := p.expectWord()
	if err != nil {
		return ir.InstructionResult{}, err
	}
	var r ir.InstructionResult
	base, suffix := splitSuffix(t.text)
	bracket := false
	if suffix == "" && p.peek().kind == tokLBracket {
		for _, rt := range resultTargets {
			if base == rt.prefix {
				bracket = true
				r.StorageTarget = rt.target
				break
			}
		}
		if bracket {
			if r.StorageIndex, r.StorageAddressingMode, err = p.parseBracket(); err != nil {
				return r, err
			}
			suffix = p.acceptSuffix()
		}
	}
	if !bracket {
		switch base {
		case "_":
			r.StorageTarget = ir.TargetNone
		case "oPos":
			r.StorageTarget = ir.TargetPosition
		case "oPts":
			r.StorageTarget = ir.TargetPointSizeEdgeFlagKillVertex
		case "oDepth":
			r.StorageTarget = ir.TargetDepth
		case "eA":
			r.StorageTarget = ir.TargetExportAddress
		default:
			matched := false
			for _, rt := range resultTargets {
				if !strings.HasPrefix(base, rt.prefix) {
					continue
				}
				index, err := parseUint32(token{tokWord, base[len(rt.prefix):], t.line})
				if err != nil {
					return r, fmt.Errorf("line %d: bad destination %q", t.line, t.text)
				}
				r.StorageTarget = rt.target
				r.StorageIndex = index
				matched = true
				break
			}
			if !matched {
				return r, fmt.Errorf("line %d: unknown destination %q", t.line, t.text)
			}
		}
	}
	return r, applyResultSuffix(&r, suffix, t.line)
}

// applyResultSuffix decodes the combined mask/swizzle suffix. An absent
// suffix is the full identity write; underscores are unwritten lanes and
// keep the identity swizzle so reassembly is exact.
func applyResultSuffix(r *ir.InstructionResult, suffix string, line int) error {
	if suffix == "" {
		r.OriginalWriteMask = 0b1111
		r.Components = ir.IdentitySwizzle()
		return nil
	}
	lanes := suffix[1:]
	if len(lanes) != 4 {
		return fmt.Errorf("line %d: write mask %q must name all four lanes", line, suffix)
	}
	for i := 0; i < 4; i++ {
		if lanes[i] == '_' {
			r.Components[i] = ir.SwizzleFromComponentIndex(uint32(i))
			continue
		}
		s, ok := ir.SwizzleFromChar(lanes[i])
		if !ok {
			return fmt.Errorf("line %d: bad swizzle component %q", line, lanes[i])
		}
		r.OriginalWriteMask |= 1 << i
		r.Components[i] = s
	}
	return nil
}

var operandSources = []struct {
	prefix string
	source ir.StorageSource
}{
	{"vf", ir.SourceVertexFetchConstant},
	{"tf", ir.SourceTextureFetchConstant},
	{"c", ir.SourceConstantFloat},
	{"r", ir.SourceRegister},
}

func (p *parser) parseOperand() (ir.InstructionOperand, error) {
	var o ir.InstructionOperand
	o.Negate = p.accept(tokMinus)
	abs := p.accept(tokPipe)
	o.AbsoluteValue = abs
	t, err := p.expectWord()
	if err != nil {
		return o, err
	}
	base, suffix := splitSuffix(t.text)
	if abs && suffix != "" {
		return o, fmt.Errorf("line %d: swizzle must follow the closing '|'", t.line)
	}
	var source ir.StorageSource
	matched := ""
	for _, os := range operandSources {
		if strings.HasPrefix(base, os.prefix) {
			source = os.source
			matched = os.prefix
			break
		}
	}
	if matched == "" {
		return o, fmt.Errorf("line %d: unknown operand %q", t.line, t.text)
	}
	o.StorageSource = source
	if base == matched && p.peek().kind == tokLBracket {
		if o.StorageIndex, o.StorageAddressingMode, err = p.parseBracket(); err != nil {
			return o, err
		}
	} else {
		index, err := parseUint32(token{tokWord, base[len(matched):], t.line})
		if err != nil {
			return o, fmt.Errorf("line %d: bad operand %q", t.line, t.text)
		}
		o.StorageIndex = index
	}
	if abs {
		if _, err := p.expect(tokPipe); err != nil {
			return o, err
		}
	}
	if suffix == "" {
		suffix = p.acceptSuffix()
	}
	return o, applyOperandSuffix(&o, suffix, t.line)
}

// applyOperandSuffix decodes an operand swizzle. An absent suffix is the
// four-lane identity; shorter swizzles replicate their last lane so the
// stored components are always fully populated.
func applyOperandSuffix(o *ir.InstructionOperand, suffix string, line int) error {
	if suffix == "" {
		o.ComponentCount = 4
		o.Components = ir.IdentitySwizzle()
		return nil
	}
	lanes := suffix[1:]
	if len(lanes) == 0 || len(lanes) > 4 {
		return fmt.Errorf("line %d: swizzle %q must name one to four lanes", line, suffix)
	}
	for i := 0; i < len(lanes); i++ {
		s, ok := ir.SwizzleFromChar(lanes[i])
		if !ok {
			return fmt.Errorf("line %d: bad swizzle component %q", line, lanes[i])
		}
		o.Components[i] = s
	}
	for i := len(lanes); i < 4; i++ {
		o.Components[i] = o.Components[len(lanes)-1]
	}
	o.ComponentCount = uint32(len(lanes))
	return nil
}
